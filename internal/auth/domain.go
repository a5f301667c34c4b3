package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/rentfolio/rentfolio/internal/authz"
)

// User represents a platform account.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	Role         string
	AdminRole    string
	LandlordRole string
	Permissions  []authz.RawPermission
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal converts the account into the authorization core's view of it.
// Capabilities are left for the caller to derive.
func (u *User) Principal() authz.Principal {
	return authz.Principal{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Phone:        u.Phone,
		Role:         u.Role,
		AdminRole:    u.AdminRole,
		LandlordRole: u.LandlordRole,
		Permissions:  u.Permissions,
	}
}

// RoleFallback returns the strongest role signal for permission fallback:
// elevated roles outrank the base role.
func (u *User) RoleFallback() string {
	if u.AdminRole != "" {
		return u.AdminRole
	}
	if u.LandlordRole != "" {
		return u.LandlordRole
	}
	return u.Role
}
