// Package favorites keeps the questions a student has starred: an in-session
// ordered set, its per-user persistence, and the service joining both to the
// catalog.
package favorites

import "sync"

// Set is an insertion-ordered set of question ids. It is safe for concurrent use.
type Set struct {
	mu    sync.Mutex
	order []string
	index map[string]struct{}
}

func NewSet(ids ...string) *Set {
	s := &Set{index: make(map[string]struct{})}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add appends id unless it is already present.
func (s *Set) Add(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
}

// Remove deletes id. Removing an absent id is a no-op.
func (s *Set) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[id]; !ok {
		return
	}
	delete(s.index, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Set) IsFavorite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[id]
	return ok
}

// List returns the ids in the order they were added.
func (s *Set) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.order...)
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Clear empties the set, as logout does.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.index = make(map[string]struct{})
}
