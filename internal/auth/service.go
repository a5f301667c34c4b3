package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/rentfolio/rentfolio/internal/authz"
	"github.com/rentfolio/rentfolio/internal/shared"
)

// ErrAccessDenied indicates the account carries no role signal for the
// console it tried to enter.
var ErrAccessDenied = errors.New("access denied for this console")

// Service wraps authentication business rules.
type Service struct {
	repo       Repository
	tokens     *TokenStore
	breakGlass map[string]struct{}
}

// NewService constructs a Service. breakGlassEmails is the configured
// superuser escape hatch: accounts on the list receive the full capability
// grant regardless of their stored permissions.
func NewService(repo Repository, tokens *TokenStore, breakGlassEmails []string) *Service {
	bg := make(map[string]struct{}, len(breakGlassEmails))
	for _, email := range breakGlassEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			bg[email] = struct{}{}
		}
	}
	return &Service{repo: repo, tokens: tokens, breakGlass: bg}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates credentials for a console and issues a bearer token.
// Accounts without a role signal for the console are rejected before a token
// is issued.
func (s *Service) Login(ctx context.Context, console authz.Console, email, password string) (*User, string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	if !user.Principal().AuthorizedFor(console) {
		return nil, "", ErrAccessDenied
	}
	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ResolveToken maps a bearer token to its account.
func (s *Service) ResolveToken(ctx context.Context, token string) (*User, error) {
	userID, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, userID.String())
	if err != nil {
		return nil, shared.ErrTokenInvalid
	}
	if !user.IsActive {
		return nil, shared.ErrTokenInvalid
	}
	return user, nil
}

// Logout revokes a bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// Capabilities derives the account's capability set, applying the break-glass
// grant when the account is on the configured allowlist.
func (s *Service) Capabilities(user *User) authz.CapabilitySet {
	_, breakGlass := s.breakGlass[strings.ToLower(user.Email)]
	return authz.Normalizer{BreakGlass: breakGlass}.Normalize(user.Permissions, user.RoleFallback())
}

// Principal builds the fully derived principal for the account.
func (s *Service) Principal(user *User) *authz.Principal {
	principal := user.Principal()
	principal.Capabilities = s.Capabilities(user)
	return &principal
}
