package dashboard

import (
	"context"
	"encoding/hex"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/blake2b"

	"github.com/pestguard/pestguard-web/internal/pkg/pestapi"
)

// MarketplaceAPI is everything a dashboard session calls upstream.
type MarketplaceAPI interface {
	ServicesAPI
	BookingsAPI
}

// Session is one company's dashboard: both views share its credentials.
type Session struct {
	Services *ServicesView
	Bookings *BookingsView

	lastUsed time.Time
}

func (s *Session) close() {
	s.Services.Close()
	s.Bookings.Close()
}

// Registry keeps one Session per bearer token. Tokens are only held in hashed
// form as map keys.
type Registry struct {
	api     MarketplaceAPI
	idleTTL time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates a dashboard registry
func NewRegistry(api MarketplaceAPI, idleTTL time.Duration) *Registry {
	return &Registry{
		api:      api,
		idleTTL:  idleTTL,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func sessionKey(creds pestapi.Credentials) string {
	sum := blake2b.Sum256([]byte(creds.Token))
	return hex.EncodeToString(sum[:])
}

// For returns the session for creds, creating it on first use.
func (r *Registry) For(creds pestapi.Credentials) *Session {
	key := sessionKey(creds)

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok {
		s = &Session{
			Services: NewServicesView(r.api, creds),
			Bookings: NewBookingsView(r.api, creds),
		}
		r.sessions[key] = s
	}
	s.lastUsed = r.now()
	return s
}

// Drop closes and forgets the session for creds, if any.
func (r *Registry) Drop(creds pestapi.Credentials) {
	key := sessionKey(creds)

	r.mu.Lock()
	s, ok := r.sessions[key]
	delete(r.sessions, key)
	r.mu.Unlock()

	if ok {
		s.close()
	}
}

// Sweep closes sessions idle for longer than the TTL and returns how many.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var idle []*Session
	for key, s := range r.sessions {
		if s.lastUsed.Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, key)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.close()
	}
	return len(idle)
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Run sweeps idle sessions until ctx is done. Open sessions are left to
// Close so requests still draining keep their views.
func (r *Registry) Run(ctx context.Context) {
	interval := r.idleTTL / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				log.Debug().Int("closed", n).Msg("Swept idle dashboard sessions")
			}
		}
	}
}

// Close closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}
