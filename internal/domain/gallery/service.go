package gallery

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pestguard/pestguard-web/internal/domain/catalog"
)

// PestSource looks up catalog records.
type PestSource interface {
	Get(slug string) (catalog.Pest, error)
}

// Service opens and navigates gallery sessions.
type Service struct {
	store Store
	pests PestSource
}

// NewService creates gallery service
func NewService(store Store, pests PestSource) *Service {
	return &Service{store: store, pests: pests}
}

// Open starts a gallery at the first image of the pest.
func (s *Service) Open(ctx context.Context, slug string) (*Session, error) {
	pest, err := s.pests.Get(slug)
	if err != nil {
		return nil, err
	}

	viewer, err := NewViewer(pest.Images)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:     uuid.New().String(),
		Slug:   pest.Slug,
		Viewer: *viewer,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("open gallery for %s: %w", slug, err)
	}

	log.Debug().Str("session_id", session.ID).Str("slug", slug).Int("images", len(viewer.Images)).Msg("Gallery opened")
	return session, nil
}

// Get returns a session without moving it.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Load(ctx, id)
}

// Next advances the session one image.
func (s *Service) Next(ctx context.Context, id string) (*Session, error) {
	return s.update(ctx, id, func(v *Viewer) { v.Next() })
}

// Previous steps the session back one image.
func (s *Service) Previous(ctx context.Context, id string) (*Session, error) {
	return s.update(ctx, id, func(v *Viewer) { v.Previous() })
}

// JumpTo moves to index. An out of range index leaves the session unchanged.
func (s *Service) JumpTo(ctx context.Context, id string, index int) (*Session, error) {
	return s.update(ctx, id, func(v *Viewer) { v.JumpTo(index) })
}

// Close discards the session.
func (s *Service) Close(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) update(ctx context.Context, id string, move func(*Viewer)) (*Session, error) {
	session, err := s.store.Update(ctx, id, move)
	if err != nil {
		return nil, fmt.Errorf("update gallery %s: %w", id, err)
	}
	return session, nil
}
