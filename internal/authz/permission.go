// Package authz normalizes raw permission grants into canonical capability
// sets and gates access by them. Both consoles and the API server share this
// package so an authorization decision is computed the same way everywhere.
package authz

import "encoding/json"

// RawPermission is the tagged variant of the two permission shapes the
// platform has accumulated: a bare "resource.action" string, or a grouped
// record {resource, actions}. The shape is resolved once, at the JSON
// boundary; nothing downstream re-probes it.
type RawPermission struct {
	flat     string
	resource string
	actions  []string
}

// Flat builds a RawPermission from a canonical "resource.action" string.
func Flat(capability string) RawPermission {
	return RawPermission{flat: capability}
}

// Grouped builds a RawPermission from a resource and its granted actions.
func Grouped(resource string, actions ...string) RawPermission {
	return RawPermission{resource: resource, actions: actions}
}

// IsZero reports whether the permission carries no grant. Malformed wire
// entries decode to the zero value and contribute nothing.
func (p RawPermission) IsZero() bool {
	return p.flat == "" && (p.resource == "" || len(p.actions) == 0)
}

type groupedWire struct {
	Resource string   `json:"resource"`
	Actions  []string `json:"actions"`
}

// UnmarshalJSON accepts either wire shape. Entries that are neither a string
// nor a well-formed {resource, actions} record decode to the zero value
// rather than failing the whole permission list.
func (p *RawPermission) UnmarshalJSON(data []byte) error {
	*p = RawPermission{}

	var flat string
	if err := json.Unmarshal(data, &flat); err == nil {
		p.flat = flat
		return nil
	}

	var grouped groupedWire
	if err := json.Unmarshal(data, &grouped); err != nil {
		return nil
	}
	if grouped.Resource == "" || len(grouped.Actions) == 0 {
		return nil
	}
	p.resource = grouped.Resource
	p.actions = grouped.Actions
	return nil
}

// MarshalJSON emits the original wire shape.
func (p RawPermission) MarshalJSON() ([]byte, error) {
	if p.flat != "" {
		return json.Marshal(p.flat)
	}
	return json.Marshal(groupedWire{Resource: p.resource, Actions: p.actions})
}

// capabilities expands the permission into canonical capability strings.
func (p RawPermission) capabilities() []string {
	if p.flat != "" {
		return []string{p.flat}
	}
	if p.resource == "" {
		return nil
	}
	caps := make([]string, 0, len(p.actions))
	for _, action := range p.actions {
		if action == "" {
			continue
		}
		caps = append(caps, p.resource+"."+action)
	}
	return caps
}
