package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/rentfolio/rentfolio/internal/authz"
	"github.com/rentfolio/rentfolio/internal/shared"
)

type stubRepository struct {
	byEmail map[string]*User
	byID    map[string]*User
}

func newStubRepository(users ...*User) *stubRepository {
	repo := &stubRepository{byEmail: make(map[string]*User), byID: make(map[string]*User)}
	for _, u := range users {
		repo.byEmail[u.Email] = u
		repo.byID[u.ID.String()] = u
	}
	return repo
}

func (r *stubRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (r *stubRepository) FindByID(ctx context.Context, id string) (*User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func newTestTokenStore(t *testing.T, ttl time.Duration) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenStore(client, ttl), mr
}

func testUser(t *testing.T, role, adminRole, landlordRole string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &User{
		ID:           uuid.New(),
		Email:        "user@rentfolio.test",
		PasswordHash: string(hash),
		Name:         "Test User",
		Role:         role,
		AdminRole:    adminRole,
		LandlordRole: landlordRole,
		IsActive:     true,
	}
}

func TestLoginIssuesToken(t *testing.T) {
	tokens, _ := newTestTokenStore(t, time.Hour)
	user := testUser(t, "admin", "", "")
	svc := NewService(newStubRepository(user), tokens, nil)

	got, token, err := svc.Login(context.Background(), authz.ConsoleAdmin, user.Email, "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}
	if got.ID != user.ID {
		t.Fatalf("unexpected user: %s", got.ID)
	}

	resolved, err := svc.ResolveToken(context.Background(), token)
	if err != nil {
		t.Fatalf("resolve token: %v", err)
	}
	if resolved.ID != user.ID {
		t.Fatalf("token resolved to wrong user: %s", resolved.ID)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	tokens, _ := newTestTokenStore(t, time.Hour)
	user := testUser(t, "admin", "", "")
	svc := NewService(newStubRepository(user), tokens, nil)

	_, _, err := svc.Login(context.Background(), authz.ConsoleAdmin, user.Email, "wrong")
	if !errors.Is(err, shared.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	tokens, _ := newTestTokenStore(t, time.Hour)
	user := testUser(t, "admin", "", "")
	user.IsActive = false
	svc := NewService(newStubRepository(user), tokens, nil)

	_, _, err := svc.Login(context.Background(), authz.ConsoleAdmin, user.Email, "secret")
	if !errors.Is(err, shared.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginWrongConsoleIssuesNoToken(t *testing.T) {
	tokens, mr := newTestTokenStore(t, time.Hour)
	user := testUser(t, "tenant", "", "")
	svc := NewService(newStubRepository(user), tokens, nil)

	_, _, err := svc.Login(context.Background(), authz.ConsoleAdmin, user.Email, "secret")
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected access denied, got %v", err)
	}
	if got := len(mr.Keys()); got != 0 {
		t.Fatalf("expected no stored tokens, found %d", got)
	}
}

func TestLandlordRoleSignalOpensLandlordConsole(t *testing.T) {
	tokens, _ := newTestTokenStore(t, time.Hour)
	user := testUser(t, "tenant", "", "property_manager")
	svc := NewService(newStubRepository(user), tokens, nil)

	if _, _, err := svc.Login(context.Background(), authz.ConsoleLandlord, user.Email, "secret"); err != nil {
		t.Fatalf("landlord login failed: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), authz.ConsoleAdmin, user.Email, "secret"); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected admin console denial, got %v", err)
	}
}

func TestResolveTokenExpiry(t *testing.T) {
	tokens, mr := newTestTokenStore(t, time.Minute)
	user := testUser(t, "admin", "", "")
	svc := NewService(newStubRepository(user), tokens, nil)

	_, token, err := svc.Login(context.Background(), authz.ConsoleAdmin, user.Email, "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := svc.ResolveToken(context.Background(), token); !errors.Is(err, shared.ErrTokenInvalid) {
		t.Fatalf("expected token invalid after expiry, got %v", err)
	}
}

func TestResolveTokenRefreshesTTL(t *testing.T) {
	tokens, mr := newTestTokenStore(t, time.Minute)
	userID := uuid.New()

	token, err := tokens.Issue(context.Background(), userID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	mr.FastForward(45 * time.Second)
	if _, err := tokens.Resolve(context.Background(), token); err != nil {
		t.Fatalf("resolve before expiry: %v", err)
	}

	// The resolve above reset the clock; the original deadline has passed but
	// the token must still be alive.
	mr.FastForward(45 * time.Second)
	resolved, err := tokens.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("resolve after refresh: %v", err)
	}
	if resolved != userID {
		t.Fatalf("unexpected user id: %s", resolved)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	tokens, _ := newTestTokenStore(t, time.Hour)
	user := testUser(t, "admin", "", "")
	svc := NewService(newStubRepository(user), tokens, nil)

	_, token, err := svc.Login(context.Background(), authz.ConsoleAdmin, user.Email, "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.ResolveToken(context.Background(), token); !errors.Is(err, shared.ErrTokenInvalid) {
		t.Fatalf("expected token invalid after logout, got %v", err)
	}

	// Revoking again is a no-op.
	if err := svc.Logout(context.Background(), token); err != nil {
		t.Fatalf("second logout failed: %v", err)
	}
}

func TestCapabilitiesBreakGlass(t *testing.T) {
	tokens, _ := newTestTokenStore(t, time.Hour)
	user := testUser(t, "tenant", "", "")
	user.Email = "oncall@rentfolio.test"
	svc := NewService(newStubRepository(user), tokens, []string{"OnCall@rentfolio.test"})

	caps := svc.Capabilities(user)
	if !caps.Has("settings.write") {
		t.Fatal("break-glass account should hold the full grant")
	}

	other := testUser(t, "tenant", "", "")
	if caps := svc.Capabilities(other); caps.Has("settings.write") {
		t.Fatal("regular tenant should not hold elevated capabilities")
	}
}
