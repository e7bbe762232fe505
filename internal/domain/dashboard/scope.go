package dashboard

import (
	"context"
	"errors"
	"sync"

	"github.com/pestguard/pestguard-web/internal/pkg/errorhandler"
	"github.com/pestguard/pestguard-web/internal/pkg/pestapi"
)

const upstreamService = "marketplace"

// scope is the lifetime of one view. Every request a view issues is bound to
// it, so Close cancels whatever is still in flight.
type scope struct {
	ctx    context.Context
	cancel context.CancelFunc

	seqMu  sync.Mutex
	issued uint64
}

func newScope() *scope {
	ctx, cancel := context.WithCancel(context.Background())
	return &scope{ctx: ctx, cancel: cancel}
}

// bind derives a request context that ends with either the caller or the view.
func (s *scope) bind(parent context.Context) (context.Context, context.CancelFunc, error) {
	if s.ctx.Err() != nil {
		return nil, nil, ErrViewClosed
	}
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}, nil
}

// next issues the sequence number for a new fetch.
func (s *scope) next() uint64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	s.issued++
	return s.issued
}

// latest reports whether seq is still the most recent fetch.
func (s *scope) latest(seq uint64) bool {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	return seq == s.issued
}

func (s *scope) close() {
	s.cancel()
}

func (s *scope) closed() bool {
	return s.ctx.Err() != nil
}

// logUpstream records a failed marketplace call with its status when known.
func logUpstream(ctx context.Context, endpoint string, err error) {
	status := 0
	var apiErr *pestapi.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.Status
	}
	errorhandler.LogExternalServiceError(ctx, upstreamService, endpoint, status, err)
}
