package catalog

import "sync"

// Store serves the catalog for this process. Records never change; a dashboard
// delete only hides a slug from this process's view.
type Store struct {
	mu     sync.RWMutex
	pests  []Pest
	index  map[string]int
	hidden map[string]struct{}
}

// NewStore wraps an already sorted pest list.
func NewStore(pests []Pest) *Store {
	index := make(map[string]int, len(pests))
	for i, p := range pests {
		index[p.Slug] = i
	}
	return &Store{
		pests:  pests,
		index:  index,
		hidden: make(map[string]struct{}),
	}
}

// List returns the visible pests in catalog order.
func (s *Store) List() []Pest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Pest, 0, len(s.pests)-len(s.hidden))
	for _, p := range s.pests {
		if _, gone := s.hidden[p.Slug]; gone {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Get returns a visible pest by slug.
func (s *Store) Get(slug string) (Pest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[slug]
	if !ok {
		return Pest{}, ErrPestNotFound
	}
	if _, gone := s.hidden[slug]; gone {
		return Pest{}, ErrPestNotFound
	}
	return s.pests[i], nil
}

// Hide removes a pest from this process's view.
func (s *Store) Hide(slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[slug]; !ok {
		return ErrPestNotFound
	}
	if _, gone := s.hidden[slug]; gone {
		return ErrPestNotFound
	}
	s.hidden[slug] = struct{}{}
	return nil
}
