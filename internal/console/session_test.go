package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfolio/rentfolio/internal/authz"
)

type fakeBackend struct {
	requests  atomic.Int64
	validTok  string
	principal authz.Principal
	loginOK   bool
}

func newFakeBackend(t *testing.T, principal authz.Principal, loginOK bool) (*fakeBackend, *httptest.Server) {
	t.Helper()
	backend := &fakeBackend{validTok: "tok-123", principal: principal, loginOK: loginOK}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admin/auth/login", func(w http.ResponseWriter, r *http.Request) {
		backend.requests.Add(1)
		if !backend.loginOK {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "invalid email or password"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"user":    backend.principal,
			"token":   backend.validTok,
		})
	})
	mux.HandleFunc("GET /api/admin/auth/profile", func(w http.ResponseWriter, r *http.Request) {
		backend.requests.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+backend.validTok {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "session expired"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "user": backend.principal})
	})
	mux.HandleFunc("POST /api/admin/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		backend.requests.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return backend, server
}

func adminPrincipal() authz.Principal {
	return authz.Principal{
		ID:    uuid.New(),
		Email: "ops@rentfolio.test",
		Name:  "Ops",
		Role:  authz.RoleAdmin,
		Permissions: []authz.RawPermission{
			authz.Flat("properties.update"),
			authz.Grouped("applications", "read", "update"),
		},
	}
}

func newTestSession(t *testing.T, server *httptest.Server, tokens TokenStore) *Session {
	t.Helper()
	client := NewClient(server.URL, authz.ConsoleAdmin, tokens, nil)
	return NewSession(SessionConfig{
		Console: authz.ConsoleAdmin,
		API:     client,
		Tokens:  tokens,
	})
}

func TestBootstrapWithoutTokenStaysAnonymous(t *testing.T) {
	backend, server := newFakeBackend(t, adminPrincipal(), true)
	session := newTestSession(t, server, &MemoryTokenStore{})

	require.NoError(t, session.Bootstrap(context.Background()))

	assert.False(t, session.IsAuthenticated())
	assert.False(t, session.IsLoading())
	assert.Nil(t, session.Principal())
	assert.EqualValues(t, 0, backend.requests.Load(), "no network call without a stored token")
}

func TestBootstrapRestoresValidToken(t *testing.T) {
	_, server := newFakeBackend(t, adminPrincipal(), true)
	tokens := &MemoryTokenStore{}
	require.NoError(t, tokens.Save("tok-123"))
	session := newTestSession(t, server, tokens)

	require.NoError(t, session.Bootstrap(context.Background()))

	assert.True(t, session.IsAuthenticated())
	require.NotNil(t, session.Principal())
	assert.Equal(t, "ops@rentfolio.test", session.Principal().Email)
	assert.True(t, session.HasPermission("properties.update"))
	assert.True(t, session.HasPermission("applications.read"))
	assert.False(t, session.HasPermission("payments.delete"))
}

func TestLoginEstablishesSessionAndPersistsToken(t *testing.T) {
	_, server := newFakeBackend(t, adminPrincipal(), true)
	tokens := &MemoryTokenStore{}
	session := newTestSession(t, server, tokens)

	require.NoError(t, session.Login(context.Background(), "ops@rentfolio.test", "secret"))

	assert.True(t, session.IsAuthenticated())
	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", stored)
}

func TestLoginBadCredentials(t *testing.T) {
	_, server := newFakeBackend(t, adminPrincipal(), false)
	session := newTestSession(t, server, &MemoryTokenStore{})

	err := session.Login(context.Background(), "ops@rentfolio.test", "wrong")

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Message, "invalid email or password")
	assert.False(t, session.IsAuthenticated())
	assert.ErrorAs(t, session.Err(), &authErr)
}

func TestLoginWrongConsoleRoleClearsToken(t *testing.T) {
	tenant := adminPrincipal()
	tenant.Role = authz.RoleTenant
	_, server := newFakeBackend(t, tenant, true)
	tokens := &MemoryTokenStore{}
	session := newTestSession(t, server, tokens)

	err := session.Login(context.Background(), "tenant@rentfolio.test", "secret")

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "access denied", authErr.Message)
	assert.False(t, session.IsAuthenticated())

	stored, loadErr := tokens.Load()
	require.NoError(t, loadErr)
	assert.Empty(t, stored, "token issued to a wrong-role principal must be discarded")
}

func TestRestoreExpiredTokenResetsSession(t *testing.T) {
	notes := &captureNotifier{}
	_, server := newFakeBackend(t, adminPrincipal(), true)
	tokens := &MemoryTokenStore{}
	require.NoError(t, tokens.Save("tok-stale"))

	client := NewClient(server.URL, authz.ConsoleAdmin, tokens, nil)
	session := NewSession(SessionConfig{
		Console:  authz.ConsoleAdmin,
		API:      client,
		Tokens:   tokens,
		Notifier: notes,
	})

	err := session.Restore(context.Background())

	var expired *SessionExpiredError
	require.ErrorAs(t, err, &expired)
	assert.False(t, session.IsAuthenticated())
	assert.False(t, session.IsLoading())

	stored, loadErr := tokens.Load()
	require.NoError(t, loadErr)
	assert.Empty(t, stored)
	// Anonymous session hit a 401: no expiry notice for a user who never saw
	// a signed-in state.
	assert.Empty(t, notes.messages(NoticeError))
}

func TestMidSessionExpiryNotifiesOnce(t *testing.T) {
	notes := &captureNotifier{}
	backend, server := newFakeBackend(t, adminPrincipal(), true)
	tokens := &MemoryTokenStore{}

	client := NewClient(server.URL, authz.ConsoleAdmin, tokens, nil)
	session := NewSession(SessionConfig{
		Console:  authz.ConsoleAdmin,
		API:      client,
		Tokens:   tokens,
		Notifier: notes,
	})
	require.NoError(t, session.Login(context.Background(), "ops@rentfolio.test", "secret"))
	require.True(t, session.IsAuthenticated())

	backend.validTok = "rotated"
	_, err := client.Profile(context.Background())

	var expired *SessionExpiredError
	require.ErrorAs(t, err, &expired)
	assert.False(t, session.IsAuthenticated())
	assert.Len(t, notes.messages(NoticeError), 1)

	stored, loadErr := tokens.Load()
	require.NoError(t, loadErr)
	assert.Empty(t, stored)
}

func TestInFlightGuardRejectsConcurrentLogin(t *testing.T) {
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admin/auth/login", func(w http.ResponseWriter, r *http.Request) {
		<-release
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"user":    adminPrincipal(),
			"token":   "tok-123",
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tokens := &MemoryTokenStore{}
	session := newTestSession(t, server, tokens)

	first := make(chan error, 1)
	go func() {
		first <- session.Login(context.Background(), "ops@rentfolio.test", "secret")
	}()

	require.Eventually(t, session.IsLoading, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, session.Login(context.Background(), "ops@rentfolio.test", "secret"), ErrBusy)

	close(release)
	require.NoError(t, <-first)
	assert.True(t, session.IsAuthenticated())
}

func TestUpdatePrincipalMergesFields(t *testing.T) {
	_, server := newFakeBackend(t, adminPrincipal(), true)
	session := newTestSession(t, server, &MemoryTokenStore{})
	require.NoError(t, session.Login(context.Background(), "ops@rentfolio.test", "secret"))

	name := "Ops Lead"
	phone := "+1-555-0100"
	session.UpdatePrincipal(PrincipalUpdate{Name: &name, Phone: &phone})

	got := session.Principal()
	require.NotNil(t, got)
	assert.Equal(t, "Ops Lead", got.Name)
	assert.Equal(t, "+1-555-0100", got.Phone)
	assert.Equal(t, "ops@rentfolio.test", got.Email, "unset fields keep their value")
	assert.True(t, session.HasPermission("properties.update"), "capabilities survive a profile edit")
}

func TestLogoutResetsEvenWhenBackendFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admin/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"user":    adminPrincipal(),
			"token":   "tok-123",
		})
	})
	mux.HandleFunc("POST /api/admin/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "boom"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	tokens := &MemoryTokenStore{}
	session := newTestSession(t, server, tokens)
	require.NoError(t, session.Login(context.Background(), "ops@rentfolio.test", "secret"))

	require.NoError(t, session.Logout(context.Background()))

	assert.False(t, session.IsAuthenticated())
	stored, err := tokens.Load()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestBreakGlassEmailGetsFullGrant(t *testing.T) {
	principal := adminPrincipal()
	principal.Email = "oncall@rentfolio.test"
	principal.Role = authz.RoleAdmin
	principal.Permissions = nil
	_, server := newFakeBackend(t, principal, true)

	tokens := &MemoryTokenStore{}
	client := NewClient(server.URL, authz.ConsoleAdmin, tokens, nil)
	session := NewSession(SessionConfig{
		Console:          authz.ConsoleAdmin,
		API:              client,
		Tokens:           tokens,
		BreakGlassEmails: []string{"OnCall@rentfolio.test"},
	})

	require.NoError(t, session.Login(context.Background(), "oncall@rentfolio.test", "secret"))
	assert.True(t, session.HasPermission("settings.write"))
	assert.True(t, session.HasAnyPermission("payments.delete", "nope"))
}

type captureNotifier struct {
	notices []struct{ kind, message string }
}

func (c *captureNotifier) Notify(kind, message string) {
	c.notices = append(c.notices, struct{ kind, message string }{kind, message})
}

func (c *captureNotifier) messages(kind string) []string {
	var out []string
	for _, n := range c.notices {
		if n.kind == kind {
			out = append(out, n.message)
		}
	}
	return out
}
