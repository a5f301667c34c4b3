package console

import "sort"

// Selection tracks the entities selected for bulk operations. It is scoped to
// the currently loaded page: select-all toggles between empty and exactly the
// page's ids, never the full result set.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection constructs an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Toggle flips the selection state of one id.
func (s *Selection) Toggle(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// ToggleAll selects every id on the page, or clears the selection when all of
// them are already selected.
func (s *Selection) ToggleAll(pageIDs []string) {
	if s.allSelected(pageIDs) {
		s.Clear()
		return
	}
	s.ids = make(map[string]struct{}, len(pageIDs))
	for _, id := range pageIDs {
		s.ids[id] = struct{}{}
	}
}

func (s *Selection) allSelected(pageIDs []string) bool {
	if len(pageIDs) == 0 || len(s.ids) != len(pageIDs) {
		return false
	}
	for _, id := range pageIDs {
		if _, ok := s.ids[id]; !ok {
			return false
		}
	}
	return true
}

// Contains reports whether the id is selected.
func (s *Selection) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Count returns the number of selected ids.
func (s *Selection) Count() int {
	return len(s.ids)
}

// IDs returns the selected ids in sorted order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clear empties the selection. Called after every bulk operation and on page
// change.
func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}
