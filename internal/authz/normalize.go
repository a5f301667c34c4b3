package authz

import "strings"

// Platform resources and actions making up the full capability grant.
var (
	grantResources = []string{"users", "properties", "applications", "payments", "maintenance"}
	grantActions   = []string{"read", "write", "update", "create", "delete"}
	grantExtras    = []string{"analytics.read", "logs.read", "settings.read", "settings.write", "settings.update"}
)

// FullGrant returns every resource.action pairing plus the extra read-mostly
// capabilities. This is the fallback grant for privileged roles that carry no
// explicit permission list.
func FullGrant() CapabilitySet {
	set := make(CapabilitySet, len(grantResources)*len(grantActions)+len(grantExtras))
	for _, resource := range grantResources {
		for _, action := range grantActions {
			set[resource+"."+action] = struct{}{}
		}
	}
	for _, extra := range grantExtras {
		set[extra] = struct{}{}
	}
	return set
}

// IsPrivileged reports whether the role belongs to the platform's privileged
// set: the admin/landlord bases, their alpha_/super_ elevated variants, and
// the moderator/analyst tiers. Tenants are never privileged.
func IsPrivileged(role string) bool {
	switch role {
	case RoleAdmin, RoleLandlord, RoleModerator, RoleAnalyst:
		return true
	}
	return strings.HasPrefix(role, "alpha_") || strings.HasPrefix(role, "super_")
}

// Normalizer converts raw permission grants into a capability set.
//
// BreakGlass is the explicit superuser escape hatch: when set, the full grant
// is issued regardless of role or permission list. It is driven by
// configuration (a break-glass email allowlist matched by the caller), never
// by an implicit identity check.
type Normalizer struct {
	BreakGlass bool
}

// Normalize expands raw permissions into a capability set. When the expansion
// yields nothing and the role signal is privileged, the full grant applies so
// operators are not locked out by an empty permission list.
func (n Normalizer) Normalize(raw []RawPermission, role string) CapabilitySet {
	if n.BreakGlass {
		return FullGrant()
	}

	set := make(CapabilitySet)
	for _, perm := range raw {
		for _, capability := range perm.capabilities() {
			set[capability] = struct{}{}
		}
	}
	if len(set) > 0 {
		return set
	}

	if role != "" && IsPrivileged(role) {
		return FullGrant()
	}
	return set
}

// Normalize applies the default Normalizer without break-glass.
func Normalize(raw []RawPermission, role string) CapabilitySet {
	return Normalizer{}.Normalize(raw, role)
}
