package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"belt-and-braces/internal/domain"
	"belt-and-braces/internal/repository"
)

var (
	// ErrBadBuild is returned when a build record violates a domain rule.
	// The server maps it centrally to a 422 response.
	ErrBadBuild = errors.New("bad build")
)

// ProductPatch describes a partial product update. A nil field was not
// supplied and is left untouched; a non-nil field is applied even when it
// points at an empty string.
type ProductPatch struct {
	Family      *string
	Name        *string
	Description *string
}

// BuildInput carries the caller-supplied fields of a new build.
type BuildInput struct {
	Description string
	Source      string
	Version     string
	Timestamp   string
	Target      string
	Taxonomy    string
	SHA512      string
}

// BuildPatch describes a partial build update with the same presence
// semantics as ProductPatch.
type BuildPatch struct {
	Description *string
	Source      *string
	Version     *string
	Timestamp   *string
	Target      *string
	Taxonomy    *string
	SHA512      *string
}

// ProductService defines the interface for product and build business logic
type ProductService interface {
	List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, family, name, description string) (*domain.Product, error)
	Replace(ctx context.Context, id int64, family, name, description string) (*domain.Product, error)
	Patch(ctx context.Context, id int64, patch ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	ListBuilds(ctx context.Context, productID int64) ([]*domain.Build, error)
	GetBuild(ctx context.Context, productID, id int64) (*domain.Build, error)
	AddBuild(ctx context.Context, productID int64, input BuildInput) (*domain.Build, error)
	PatchBuild(ctx context.Context, productID, id int64, patch BuildPatch) (*domain.Build, error)
}

type productService struct {
	productRepo repository.ProductRepository
	buildRepo   repository.BuildRepository
}

// NewProductService creates a new instance of ProductService
func NewProductService(productRepo repository.ProductRepository, buildRepo repository.BuildRepository) ProductService {
	return &productService{
		productRepo: productRepo,
		buildRepo:   buildRepo,
	}
}

// List returns products matching the filter; an empty filter returns all
func (s *productService) List(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error) {
	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Get returns a product together with its builds
func (s *productService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	builds, err := s.buildRepo.ListByProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load builds: %w", err)
	}
	product.Builds = builds

	return product, nil
}

// Create persists a new product with a store-assigned identifier
func (s *productService) Create(ctx context.Context, family, name, description string) (*domain.Product, error) {
	product := &domain.Product{
		Family:      family,
		Name:        name,
		Description: description,
		Builds:      []*domain.Build{},
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Replace overwrites all mutable fields of an existing product
func (s *productService) Replace(ctx context.Context, id int64, family, name, description string) (*domain.Product, error) {
	product := &domain.Product{
		ID:          id,
		Family:      family,
		Name:        name,
		Description: description,
		Builds:      []*domain.Build{},
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Patch applies only the supplied fields to an existing product
func (s *productService) Patch(ctx context.Context, id int64, patch ProductPatch) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Family != nil {
		product.Family = *patch.Family
	}
	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Delete removes a product and, through the store, its builds
func (s *productService) Delete(ctx context.Context, id int64) error {
	return s.productRepo.Delete(ctx, id)
}

// ListBuilds returns the builds owned by a product
func (s *productService) ListBuilds(ctx context.Context, productID int64) ([]*domain.Build, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.buildRepo.ListByProduct(ctx, productID)
}

// GetBuild returns one build of a product
func (s *productService) GetBuild(ctx context.Context, productID, id int64) (*domain.Build, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.buildRepo.FindByID(ctx, productID, id)
}

// AddBuild validates and persists a new build under an existing product
func (s *productService) AddBuild(ctx context.Context, productID int64, input BuildInput) (*domain.Build, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	build := &domain.Build{
		ProductID:   productID,
		Description: input.Description,
		Source:      input.Source,
		Version:     input.Version,
		Timestamp:   input.Timestamp,
		Target:      input.Target,
		Taxonomy:    input.Taxonomy,
		SHA512:      input.SHA512,
	}
	if build.SHA512 == "" {
		build.SHA512 = domain.EmptySHA512
	}

	if err := validateBuild(build); err != nil {
		return nil, err
	}

	if err := s.buildRepo.Create(ctx, build); err != nil {
		return nil, err
	}

	return build, nil
}

// PatchBuild applies only the supplied fields to an existing build
func (s *productService) PatchBuild(ctx context.Context, productID, id int64, patch BuildPatch) (*domain.Build, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	build, err := s.buildRepo.FindByID(ctx, productID, id)
	if err != nil {
		return nil, err
	}

	if patch.Description != nil {
		build.Description = *patch.Description
	}
	if patch.Source != nil {
		build.Source = *patch.Source
	}
	if patch.Version != nil {
		build.Version = *patch.Version
	}
	if patch.Timestamp != nil {
		build.Timestamp = *patch.Timestamp
	}
	if patch.Target != nil {
		build.Target = *patch.Target
	}
	if patch.Taxonomy != nil {
		build.Taxonomy = *patch.Taxonomy
	}
	if patch.SHA512 != nil {
		build.SHA512 = *patch.SHA512
	}

	if err := validateBuild(build); err != nil {
		return nil, err
	}

	if err := s.buildRepo.Update(ctx, build); err != nil {
		return nil, err
	}

	return build, nil
}

// validateBuild enforces the build shape rules. The timestamp must use the
// canonical textual layout. A build-window ordering rule (publication not
// before creation) has been discussed but is not confirmed by the product
// owner, so it is not enforced here.
func validateBuild(build *domain.Build) error {
	if _, err := time.Parse(domain.TimestampLayout, build.Timestamp); err != nil {
		return fmt.Errorf("%w: timestamp %q not in layout %q", ErrBadBuild, build.Timestamp, domain.TimestampLayout)
	}
	return nil
}
