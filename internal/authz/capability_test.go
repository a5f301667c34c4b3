package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilitySetHas(t *testing.T) {
	cases := []struct {
		name  string
		set   CapabilitySet
		check string
		want  bool
	}{
		{"direct member", NewCapabilitySet("x.y"), "x.y", true},
		{"absent member", NewCapabilitySet("x.y"), "x.z", false},
		{"wildcard grants anything", NewCapabilitySet(Wildcard), "x.y", true},
		{"wildcard with members", NewCapabilitySet("a.b", Wildcard), "c.d", true},
		{"empty set grants nothing", NewCapabilitySet(), "x.y", false},
		{"nil set grants nothing", nil, "x.y", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.set.Has(tc.check))
		})
	}
}

func TestCapabilitySetHasAny(t *testing.T) {
	set := NewCapabilitySet("properties.read", "applications.read")

	assert.True(t, set.HasAny("properties.update", "applications.read"))
	assert.False(t, set.HasAny("properties.update", "applications.update"))
	assert.False(t, set.HasAny())
	assert.False(t, CapabilitySet(nil).HasAny("properties.read"))
}

func TestPrincipalRoleSignal(t *testing.T) {
	cases := []struct {
		name    string
		p       Principal
		console Console
		signal  string
	}{
		{"base admin", Principal{Role: RoleAdmin}, ConsoleAdmin, "admin"},
		{"elevated admin wins", Principal{Role: RoleTenant, AdminRole: "alpha_admin"}, ConsoleAdmin, "alpha_admin"},
		{"tenant denied on admin", Principal{Role: RoleTenant}, ConsoleAdmin, ""},
		{"landlord base", Principal{Role: RoleLandlord}, ConsoleLandlord, "landlord"},
		{"landlord elevated", Principal{Role: RoleTenant, LandlordRole: "super_landlord"}, ConsoleLandlord, "super_landlord"},
		{"admin denied on landlord console", Principal{Role: RoleAdmin}, ConsoleLandlord, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.signal, tc.p.RoleSignal(tc.console))
			assert.Equal(t, tc.signal != "", tc.p.AuthorizedFor(tc.console))
		})
	}
}
