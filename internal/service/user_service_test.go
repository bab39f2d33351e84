package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"belt-and-braces/internal/domain"
	"belt-and-braces/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type mockUserRepository struct {
	users  map[string]*domain.User
	nextID int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:  make(map[string]*domain.User),
		nextID: 1,
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	user.ID = m.nextID
	m.nextID++
	stored := *user
	m.users[user.Username] = &stored
	return nil
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, exists := m.users[username]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	found := *user
	return &found, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			found := *user
			return &found, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func newTestUserService() (UserService, *mockUserRepository) {
	repo := newMockUserRepository()
	return NewUserService(repo, "test-secret", 60), repo
}

func TestProperty_PasswordsAreHashedAndVerifiable(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("stored hashes are not plaintext and verify correctly", prop.ForAll(
		func(password string) bool {
			// bcrypt rejects inputs longer than 72 bytes
			if len(password) > 72 {
				password = password[:72]
			}

			svc, repo := newTestUserService()
			ctx := context.Background()

			username := "user-" + uuid.New().String()
			user, err := svc.CreateUser(ctx, username, password)
			if err != nil {
				t.Logf("FAIL: Failed to create user: %v", err)
				return false
			}

			stored := repo.users[username]
			if stored == nil {
				t.Logf("FAIL: User not persisted")
				return false
			}
			if password != "" && strings.Contains(stored.PasswordHash, password) {
				t.Logf("FAIL: Plaintext password in stored hash")
				return false
			}
			if !VerifyPassword(user.PasswordHash, password) {
				t.Logf("FAIL: Correct password rejected")
				return false
			}
			if VerifyPassword(user.PasswordHash, password+"x") {
				t.Logf("FAIL: Wrong password accepted")
				return false
			}

			return true
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestLoginMintsResolvableToken(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "rotor", "wheel-of-time"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	token, user, err := svc.Login(ctx, "rotor", "wheel-of-time")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Username != "rotor" {
		t.Errorf("unexpected user: %q", user.Username)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	resolved, err := svc.ResolveToken(ctx, token)
	if err != nil {
		t.Fatalf("resolve token: %v", err)
	}
	if resolved.Username != "rotor" {
		t.Errorf("token resolved to wrong user: %q", resolved.Username)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "rotor", "wheel-of-time"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if _, _, err := svc.Login(ctx, "rotor", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody", "wheel-of-time"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestResolveTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestUserService()

	for _, token := range []string{"", "rotor", "a.b.c"} {
		if _, err := svc.ResolveToken(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestResolveTokenRejectsForeignSecret(t *testing.T) {
	ctx := context.Background()

	repo := newMockUserRepository()
	minting := NewUserService(repo, "other-secret", 60)
	if _, err := minting.CreateUser(ctx, "rotor", "wheel-of-time"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, _, err := minting.Login(ctx, "rotor", "wheel-of-time")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	verifying := NewUserService(repo, "test-secret", 60)
	if _, err := verifying.ResolveToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestResolveTokenRejectsUnknownSubject(t *testing.T) {
	svc, repo := newTestUserService()
	ctx := context.Background()

	if _, err := svc.CreateUser(ctx, "rotor", "wheel-of-time"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, _, err := svc.Login(ctx, "rotor", "wheel-of-time")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// The account vanishes between token issuance and use.
	delete(repo.users, "rotor")

	if _, err := svc.ResolveToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
