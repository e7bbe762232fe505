package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/pestguard/pestguard-web/internal/pkg/pestapi"
)

func TestRegistryReusesSessionPerToken(t *testing.T) {
	client := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {})
	reg := NewRegistry(client, time.Minute)

	a := reg.For(pestapi.Credentials{Token: "alpha"})
	if reg.For(pestapi.Credentials{Token: "alpha"}) != a {
		t.Fatal("expected the same session for the same token")
	}
	if reg.For(pestapi.Credentials{Token: "beta"}) == a {
		t.Fatal("different tokens must not share a session")
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", reg.Len())
	}
}

func TestRegistryKeysAreHashed(t *testing.T) {
	key := sessionKey(pestapi.Credentials{Token: "secret-token"})
	if strings.Contains(key, "secret-token") || len(key) != 64 {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestRegistrySweepClosesIdleSessions(t *testing.T) {
	client := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {})
	reg := NewRegistry(client, 10*time.Minute)
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	idle := reg.For(pestapi.Credentials{Token: "idle"})
	now = now.Add(8 * time.Minute)
	reg.For(pestapi.Credentials{Token: "active"})
	now = now.Add(5 * time.Minute)

	if n := reg.Sweep(); n != 1 {
		t.Fatalf("expected 1 swept session, got %d", n)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 remaining session, got %d", reg.Len())
	}
	if err := idle.Services.Refresh(context.Background()); !errors.Is(err, ErrViewClosed) {
		t.Fatalf("expected swept view to be closed, got %v", err)
	}
}

func TestRegistryDropAndClose(t *testing.T) {
	client := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {})
	reg := NewRegistry(client, time.Minute)

	s := reg.For(pestapi.Credentials{Token: "one"})
	reg.Drop(pestapi.Credentials{Token: "one"})
	if reg.Len() != 0 {
		t.Fatal("expected dropped session to be removed")
	}
	if err := s.Bookings.Refresh(context.Background()); !errors.Is(err, ErrViewClosed) {
		t.Fatalf("expected closed view, got %v", err)
	}

	reg.For(pestapi.Credentials{Token: "two"})
	reg.Close()
	if reg.Len() != 0 {
		t.Fatal("expected Close to empty the registry")
	}
}

func TestRegistryRunLeavesSessionsOpenOnStop(t *testing.T) {
	client := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bookings":[]}`))
	})
	reg := NewRegistry(client, time.Minute)
	s := reg.For(testCreds)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		reg.Run(ctx)
		close(stopped)
	}()
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if reg.Len() != 1 {
		t.Fatalf("expected session to survive Run stopping, have %d", reg.Len())
	}
	if err := s.Bookings.Refresh(context.Background()); err != nil {
		t.Fatalf("expected open view after Run stopped, got %v", err)
	}

	reg.Close()
	if err := s.Bookings.Refresh(context.Background()); !errors.Is(err, ErrViewClosed) {
		t.Fatalf("expected ErrViewClosed after Close, got %v", err)
	}
}
