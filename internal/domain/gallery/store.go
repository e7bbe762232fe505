package gallery

import (
	"context"
	"sync"
	"time"
)

// Session is one open gallery.
type Session struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Viewer    Viewer    `json:"viewer"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store keeps gallery sessions until they expire or are deleted.
// Save and Update refresh the expiry. Update applies move atomically with
// respect to other updates of the same session.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, move func(*Viewer)) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]Session
}

// NewMemoryStore creates an in-memory store
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]Session),
	}
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.ExpiresAt = m.now().Add(m.ttl)
	stored := *s
	stored.Viewer.Images = append([]string(nil), s.Viewer.Images...)
	m.sessions[s.ID] = stored
	m.sweepLocked()
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !m.now().Before(s.ExpiresAt) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	s.Viewer.Images = append([]string(nil), s.Viewer.Images...)
	return &s, nil
}

func (m *MemoryStore) Update(_ context.Context, id string, move func(*Viewer)) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok || !m.now().Before(s.ExpiresAt) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}

	s.Viewer.Images = append([]string(nil), s.Viewer.Images...)
	move(&s.Viewer)
	s.ExpiresAt = m.now().Add(m.ttl)
	m.sessions[id] = s

	out := s
	out.Viewer.Images = append([]string(nil), s.Viewer.Images...)
	return &out, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len reports stored sessions, expired ones included until swept.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *MemoryStore) sweepLocked() {
	now := m.now()
	for id, s := range m.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(m.sessions, id)
		}
	}
}
