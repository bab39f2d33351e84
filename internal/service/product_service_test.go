package service

import (
	"context"
	"errors"
	"testing"

	"belt-and-braces/internal/domain"
	"belt-and-braces/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Mock repositories for testing
type mockProductRepository struct {
	products map[int64]*domain.Product
	nextID   int64
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		products: make(map[int64]*domain.Product),
		nextID:   1,
	}
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	product.ID = m.nextID
	m.nextID++
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if _, exists := m.products[product.ID]; !exists {
		return repository.ErrProductNotFound
	}
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) error {
	if _, exists := m.products[id]; !exists {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	product, exists := m.products[id]
	if !exists {
		return nil, repository.ErrProductNotFound
	}
	found := *product
	return &found, nil
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	result := []*domain.Product{}
	for _, product := range m.products {
		if filter.Name != "" && product.Name != filter.Name {
			continue
		}
		if filter.Family != "" && product.Family != filter.Family {
			continue
		}
		found := *product
		result = append(result, &found)
	}
	return result, nil
}

type mockBuildRepository struct {
	builds map[int64]*domain.Build
	nextID int64
}

func newMockBuildRepository() *mockBuildRepository {
	return &mockBuildRepository{
		builds: make(map[int64]*domain.Build),
		nextID: 1,
	}
}

func (m *mockBuildRepository) Create(ctx context.Context, build *domain.Build) error {
	build.ID = m.nextID
	m.nextID++
	stored := *build
	m.builds[build.ID] = &stored
	return nil
}

func (m *mockBuildRepository) Update(ctx context.Context, build *domain.Build) error {
	existing, exists := m.builds[build.ID]
	if !exists || existing.ProductID != build.ProductID {
		return repository.ErrBuildNotFound
	}
	stored := *build
	m.builds[build.ID] = &stored
	return nil
}

func (m *mockBuildRepository) FindByID(ctx context.Context, productID, id int64) (*domain.Build, error) {
	build, exists := m.builds[id]
	if !exists || build.ProductID != productID {
		return nil, repository.ErrBuildNotFound
	}
	found := *build
	return &found, nil
}

func (m *mockBuildRepository) ListByProduct(ctx context.Context, productID int64) ([]*domain.Build, error) {
	result := []*domain.Build{}
	for _, build := range m.builds {
		if build.ProductID == productID {
			found := *build
			result = append(result, &found)
		}
	}
	return result, nil
}

func newTestProductService() (ProductService, *mockProductRepository, *mockBuildRepository) {
	productRepo := newMockProductRepository()
	buildRepo := newMockBuildRepository()
	return NewProductService(productRepo, buildRepo), productRepo, buildRepo
}

func validBuildInput() BuildInput {
	return BuildInput{
		Description: "the precious build",
		Source:      "https://example.com/vcs/branch/xyz/",
		Version:     "2022.9.4",
		Timestamp:   "2022-09-04 19:20:21.123456 +00:00",
		Target:      "https://example.com/brm/family/product/version/",
	}
}

func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all fields", prop.ForAll(
		func(family string, name string, description string) bool {
			svc, _, _ := newTestProductService()
			ctx := context.Background()

			created, err := svc.Create(ctx, family, name, description)
			if err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}
			if created.ID == 0 {
				t.Logf("FAIL: Created product has no id")
				return false
			}

			retrieved, err := svc.Get(ctx, created.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			return retrieved.Family == family &&
				retrieved.Name == name &&
				retrieved.Description == description
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestGetUnknownProductReturnsNotFound(t *testing.T) {
	svc, _, _ := newTestProductService()

	_, err := svc.Get(context.Background(), 12345)
	if !errors.Is(err, repository.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestGetIncludesBuilds(t *testing.T) {
	svc, _, _ := newTestProductService()
	ctx := context.Background()

	product, err := svc.Create(ctx, "things", "thing", "The simple thing.")
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	if _, err := svc.AddBuild(ctx, product.ID, validBuildInput()); err != nil {
		t.Fatalf("add build: %v", err)
	}

	retrieved, err := svc.Get(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}

	if len(retrieved.Builds) != 1 {
		t.Fatalf("expected 1 build, got %d", len(retrieved.Builds))
	}
	if retrieved.Builds[0].ProductID != product.ID {
		t.Errorf("build not owned by product: %d", retrieved.Builds[0].ProductID)
	}
}

func TestPatchAppliesOnlySuppliedFields(t *testing.T) {
	svc, _, _ := newTestProductService()
	ctx := context.Background()

	product, err := svc.Create(ctx, "no", "oh", "yes")
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	newDescription := "updated"
	patched, err := svc.Patch(ctx, product.ID, ProductPatch{Description: &newDescription})
	if err != nil {
		t.Fatalf("patch product: %v", err)
	}

	if patched.Family != "no" || patched.Name != "oh" {
		t.Errorf("unsupplied fields changed: family=%q name=%q", patched.Family, patched.Name)
	}
	if patched.Description != "updated" {
		t.Errorf("description not applied: %q", patched.Description)
	}
}

func TestPatchAppliesEmptyStringFields(t *testing.T) {
	svc, _, _ := newTestProductService()
	ctx := context.Background()

	product, err := svc.Create(ctx, "no", "oh", "yes")
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	// An empty string is a supplied value, not an omission.
	empty := ""
	patched, err := svc.Patch(ctx, product.ID, ProductPatch{Description: &empty})
	if err != nil {
		t.Fatalf("patch product: %v", err)
	}

	if patched.Description != "" {
		t.Errorf("empty description not applied: %q", patched.Description)
	}
	if patched.Name != "oh" {
		t.Errorf("unsupplied name changed: %q", patched.Name)
	}
}

func TestPatchUnknownProductReturnsNotFound(t *testing.T) {
	svc, _, _ := newTestProductService()

	name := "ghost"
	_, err := svc.Patch(context.Background(), 777, ProductPatch{Name: &name})
	if !errors.Is(err, repository.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestDeleteUnknownProductReturnsNotFound(t *testing.T) {
	svc, _, _ := newTestProductService()

	err := svc.Delete(context.Background(), 777)
	if !errors.Is(err, repository.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestAddBuildUnknownProductCreatesNoOrphan(t *testing.T) {
	svc, _, buildRepo := newTestProductService()

	_, err := svc.AddBuild(context.Background(), 4242, validBuildInput())
	if !errors.Is(err, repository.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if len(buildRepo.builds) != 0 {
		t.Fatalf("orphan build row created: %d", len(buildRepo.builds))
	}
}

func TestAddBuildDefaultsChecksum(t *testing.T) {
	svc, _, _ := newTestProductService()
	ctx := context.Background()

	product, err := svc.Create(ctx, "things", "thing", "The simple thing.")
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	build, err := svc.AddBuild(ctx, product.ID, validBuildInput())
	if err != nil {
		t.Fatalf("add build: %v", err)
	}

	if build.SHA512 != domain.EmptySHA512 {
		t.Errorf("checksum not defaulted: %q", build.SHA512)
	}
}

func TestAddBuildRejectsBadTimestamp(t *testing.T) {
	svc, _, buildRepo := newTestProductService()
	ctx := context.Background()

	product, err := svc.Create(ctx, "things", "thing", "The simple thing.")
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	input := validBuildInput()
	input.Timestamp = "20220904T192021Z"
	_, err = svc.AddBuild(ctx, product.ID, input)
	if !errors.Is(err, ErrBadBuild) {
		t.Fatalf("expected ErrBadBuild, got %v", err)
	}
	if len(buildRepo.builds) != 0 {
		t.Fatalf("invalid build persisted")
	}
}

func TestPatchBuildAppliesOnlySuppliedFields(t *testing.T) {
	svc, _, _ := newTestProductService()
	ctx := context.Background()

	product, err := svc.Create(ctx, "things", "thing", "The simple thing.")
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	created, err := svc.AddBuild(ctx, product.ID, validBuildInput())
	if err != nil {
		t.Fatalf("add build: %v", err)
	}

	version := "2022.9.5"
	patched, err := svc.PatchBuild(ctx, product.ID, created.ID, BuildPatch{Version: &version})
	if err != nil {
		t.Fatalf("patch build: %v", err)
	}

	if patched.Version != "2022.9.5" {
		t.Errorf("version not applied: %q", patched.Version)
	}
	if patched.Source != created.Source || patched.Timestamp != created.Timestamp {
		t.Errorf("unsupplied fields changed")
	}
}

func TestPatchBuildRejectsBadTimestamp(t *testing.T) {
	svc, _, _ := newTestProductService()
	ctx := context.Background()

	product, err := svc.Create(ctx, "things", "thing", "The simple thing.")
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	created, err := svc.AddBuild(ctx, product.ID, validBuildInput())
	if err != nil {
		t.Fatalf("add build: %v", err)
	}

	bad := "yesterday"
	_, err = svc.PatchBuild(ctx, product.ID, created.ID, BuildPatch{Timestamp: &bad})
	if !errors.Is(err, ErrBadBuild) {
		t.Fatalf("expected ErrBadBuild, got %v", err)
	}
}

func TestGetBuildUnknownIDsReturnNotFound(t *testing.T) {
	svc, _, _ := newTestProductService()
	ctx := context.Background()

	_, err := svc.GetBuild(ctx, 5, 1)
	if !errors.Is(err, repository.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	product, err := svc.Create(ctx, "things", "thing", "The simple thing.")
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	_, err = svc.GetBuild(ctx, product.ID, 99)
	if !errors.Is(err, repository.ErrBuildNotFound) {
		t.Fatalf("expected ErrBuildNotFound, got %v", err)
	}
}
