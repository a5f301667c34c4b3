package console

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/rentfolio/rentfolio/internal/authz"
)

// AuthAPI is the authentication collaborator consumed by the session.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*authz.Principal, string, error)
	Profile(ctx context.Context) (*authz.Principal, error)
	Logout(ctx context.Context) error
}

// SessionConfig collects the session's dependencies.
type SessionConfig struct {
	Console  authz.Console
	API      AuthAPI
	Tokens   TokenStore
	Notifier Notifier
	Logger   *slog.Logger

	// BreakGlassEmails is the configured superuser escape hatch: principals
	// on the list receive the full capability grant even when their
	// permission list is empty and their role is not privileged.
	BreakGlassEmails []string
}

// Session holds one console's authentication state: the principal, its
// derived capability set, and the loading/error status. All state is replaced
// wholesale on login and cleared on logout; capabilities are never partially
// mutated.
//
// Login, restore and logout are serialized by an in-flight guard: a second
// call while one is pending fails fast with ErrBusy. Every state replacement
// bumps a generation counter, and a network response started under an older
// generation is discarded, so a superseded request can never overwrite newer
// state.
type Session struct {
	console    authz.Console
	api        AuthAPI
	tokens     TokenStore
	notifier   Notifier
	logger     *slog.Logger
	breakGlass map[string]struct{}

	mu            sync.Mutex
	principal     *authz.Principal
	capabilities  authz.CapabilitySet
	authenticated bool
	loading       bool
	lastErr       error
	inFlight      bool
	generation    uint64
}

// NewSession constructs a Session. When the API is a *Client, the
// session-expired hook is wired automatically.
func NewSession(cfg SessionConfig) *Session {
	s := &Session{
		console:    cfg.Console,
		api:        cfg.API,
		tokens:     cfg.Tokens,
		notifier:   cfg.Notifier,
		logger:     cfg.Logger,
		breakGlass: make(map[string]struct{}, len(cfg.BreakGlassEmails)),
	}
	if s.notifier == nil {
		s.notifier = NopNotifier{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	for _, email := range cfg.BreakGlassEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			s.breakGlass[email] = struct{}{}
		}
	}
	if client, ok := cfg.API.(*Client); ok {
		client.OnSessionExpired(s.ForceExpire)
	}
	return s
}

// Bootstrap establishes the initial session state. Without a stored token it
// settles to anonymous immediately, no network call; with one it attempts a
// restore against the profile endpoint.
func (s *Session) Bootstrap(ctx context.Context) error {
	token, err := s.tokens.Load()
	if err != nil {
		s.logger.Warn("load stored token", slog.Any("error", err))
	}
	if token == "" {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		return nil
	}
	return s.Restore(ctx)
}

// Restore revalidates a stored token against the profile endpoint. A
// principal without the console's role signal discards the token.
func (s *Session) Restore(ctx context.Context) error {
	gen, err := s.begin()
	if err != nil {
		return err
	}

	principal, apiErr := s.api.Profile(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle(gen)
	if s.stale(gen) {
		// State was superseded while this call was in flight; report the
		// outcome but touch nothing.
		return apiErr
	}
	if apiErr != nil {
		// A 401 already reset the session through the expiry hook.
		if !errors.As(apiErr, new(*SessionExpiredError)) {
			s.lastErr = apiErr
		}
		return apiErr
	}
	if principal == nil || !principal.AuthorizedFor(s.console) {
		s.clearTokenLocked()
		s.resetLocked()
		return nil
	}
	s.installLocked(principal)
	return nil
}

// Login authenticates credentials and replaces the session state. The token
// is persisted before the role-signal check and discarded again when the
// check fails, mirroring the restore path.
func (s *Session) Login(ctx context.Context, email, password string) error {
	gen, err := s.begin()
	if err != nil {
		return err
	}

	principal, token, apiErr := s.api.Login(ctx, email, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle(gen)
	if s.stale(gen) {
		return apiErr
	}
	if apiErr != nil {
		authErr := asAuthenticationError(apiErr)
		s.lastErr = authErr
		s.authenticated = false
		return authErr
	}
	if principal == nil || token == "" {
		authErr := &AuthenticationError{Message: "login response missing user or token"}
		s.lastErr = authErr
		return authErr
	}
	if err := s.tokens.Save(token); err != nil {
		s.logger.Warn("persist token", slog.Any("error", err))
	}
	if !principal.AuthorizedFor(s.console) {
		s.clearTokenLocked()
		authErr := &AuthenticationError{Message: "access denied"}
		s.lastErr = authErr
		return authErr
	}
	s.installLocked(principal)
	return nil
}

// Logout ends the session. The collaborator call is best effort; the local
// reset is unconditional.
func (s *Session) Logout(ctx context.Context) error {
	if _, err := s.begin(); err != nil {
		return err
	}

	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn("logout", slog.Any("error", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.loading = false
	s.clearTokenLocked()
	s.resetLocked()
	s.generation++
	return nil
}

// PrincipalUpdate is a partial principal change.
type PrincipalUpdate struct {
	Name  *string
	Phone *string
	Email *string
}

// UpdatePrincipal merges a partial update into the current principal without
// touching authentication state or capabilities. No-op when unauthenticated.
func (s *Session) UpdatePrincipal(update PrincipalUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated || s.principal == nil {
		return
	}
	if update.Name != nil {
		s.principal.Name = *update.Name
	}
	if update.Phone != nil {
		s.principal.Phone = *update.Phone
	}
	if update.Email != nil {
		s.principal.Email = *update.Email
	}
}

// ForceExpire resets the session after a mid-session 401. The stored token is
// removed and a single notice is surfaced; an already anonymous session stays
// silent.
func (s *Session) ForceExpire() {
	s.mu.Lock()
	wasAuthenticated := s.authenticated
	s.clearTokenLocked()
	s.resetLocked()
	s.inFlight = false
	s.loading = false
	s.generation++
	s.mu.Unlock()

	if wasAuthenticated {
		s.notifier.Notify(NoticeError, "Your session has expired. Please sign in again.")
	}
}

// ClearError drops the last authentication error.
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
}

// Principal returns a copy of the authenticated principal, or nil.
func (s *Session) Principal() *authz.Principal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.principal == nil {
		return nil
	}
	copied := *s.principal
	return &copied
}

// IsAuthenticated reports whether a principal is established.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// IsLoading reports whether a session operation is in flight.
func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last authentication error, or nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// HasPermission reports whether the capability is held.
func (s *Session) HasPermission(capability string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capabilities.Has(capability)
}

// HasAnyPermission reports whether any of the capabilities is held.
func (s *Session) HasAnyPermission(capabilities ...string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capabilities.HasAny(capabilities...)
}

// begin acquires the in-flight guard and records the current generation.
func (s *Session) begin() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return 0, ErrBusy
	}
	s.inFlight = true
	s.loading = true
	s.lastErr = nil
	return s.generation, nil
}

// settle releases the guard. Must hold mu.
func (s *Session) settle(gen uint64) {
	if gen == s.generation {
		s.inFlight = false
		s.loading = false
	}
}

// stale reports whether the session moved on since gen. Must hold mu.
func (s *Session) stale(gen uint64) bool {
	return gen != s.generation
}

// installLocked replaces the session state with a freshly authenticated
// principal. Must hold mu.
func (s *Session) installLocked(principal *authz.Principal) {
	_, breakGlass := s.breakGlass[strings.ToLower(principal.Email)]
	capabilities := authz.Normalizer{BreakGlass: breakGlass}.
		Normalize(principal.Permissions, principal.RoleSignal(s.console))
	principal.Capabilities = capabilities

	s.principal = principal
	s.capabilities = capabilities
	s.authenticated = true
	s.lastErr = nil
	s.generation++
}

// resetLocked drops all session state. Must hold mu.
func (s *Session) resetLocked() {
	s.principal = nil
	s.capabilities = nil
	s.authenticated = false
	s.lastErr = nil
}

func (s *Session) clearTokenLocked() {
	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn("clear token", slog.Any("error", err))
	}
}

func asAuthenticationError(err error) *AuthenticationError {
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return authErr
	}
	message := err.Error()
	if message == "" {
		message = "login failed, please try again"
	}
	return &AuthenticationError{Message: message}
}
