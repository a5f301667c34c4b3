package authz

import "sort"

// Wildcard authorizes every capability check.
const Wildcard = "*"

// CapabilitySet is a set of canonical "resource.action" capabilities. It is
// computed wholesale per authentication and never partially mutated.
type CapabilitySet map[string]struct{}

// NewCapabilitySet builds a set from capability strings, skipping empties.
func NewCapabilitySet(caps ...string) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		if c != "" {
			set[c] = struct{}{}
		}
	}
	return set
}

// Has reports whether the capability is granted, either directly or via the
// wildcard. The empty set grants nothing.
func (s CapabilitySet) Has(capability string) bool {
	if len(s) == 0 {
		return false
	}
	if _, ok := s[Wildcard]; ok {
		return true
	}
	_, ok := s[capability]
	return ok
}

// HasAny reports whether at least one of the capabilities is granted.
func (s CapabilitySet) HasAny(capabilities ...string) bool {
	for _, c := range capabilities {
		if s.Has(c) {
			return true
		}
	}
	return false
}

// List returns the capabilities in sorted order.
func (s CapabilitySet) List() []string {
	caps := make([]string, 0, len(s))
	for c := range s {
		caps = append(caps, c)
	}
	sort.Strings(caps)
	return caps
}
