package authz

import (
	"context"

	"github.com/google/uuid"
)

// Base roles carried by every account.
const (
	RoleTenant   = "tenant"
	RoleLandlord = "landlord"
	RoleAdmin    = "admin"
)

// Elevated role tiers shared by both consoles.
const (
	RoleModerator = "moderator"
	RoleAnalyst   = "analyst"
)

// Console identifies one of the two role-scoped consoles.
type Console string

const (
	ConsoleAdmin    Console = "admin"
	ConsoleLandlord Console = "landlord"
)

// PathPrefix returns the console's API path prefix.
func (c Console) PathPrefix() string {
	return "/api/" + string(c)
}

// Principal is the authenticated actor as seen by the authorization core. It
// is built server-side from the user record and decoded console-side from the
// auth payload; Capabilities is derived locally, never serialized.
type Principal struct {
	ID           uuid.UUID       `json:"id"`
	Email        string          `json:"email"`
	Name         string          `json:"name,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	Role         string          `json:"role"`
	AdminRole    string          `json:"adminRole,omitempty"`
	LandlordRole string          `json:"landlordRole,omitempty"`
	Permissions  []RawPermission `json:"permissions,omitempty"`

	Capabilities CapabilitySet `json:"-"`
}

// RoleSignal returns the strongest role indication for the console: the
// elevated role when present, otherwise the base role if it matches.
func (p Principal) RoleSignal(console Console) string {
	switch console {
	case ConsoleAdmin:
		if p.AdminRole != "" {
			return p.AdminRole
		}
		if p.Role == RoleAdmin {
			return p.Role
		}
	case ConsoleLandlord:
		if p.LandlordRole != "" {
			return p.LandlordRole
		}
		if p.Role == RoleLandlord {
			return p.Role
		}
	}
	return ""
}

// AuthorizedFor reports whether the principal carries any role signal for the
// console. A principal lacking both the base role and the console's elevated
// role is never authorized for it.
func (p Principal) AuthorizedFor(console Console) bool {
	return p.RoleSignal(console) != ""
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in the context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal, or nil when unauthenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
