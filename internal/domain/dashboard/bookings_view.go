package dashboard

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/pestguard/pestguard-web/internal/pkg/pestapi"
)

// BookingsAPI is the part of the marketplace client the bookings view needs.
type BookingsAPI interface {
	ListBookings(ctx context.Context, creds pestapi.Credentials) ([]pestapi.Booking, error)
	UpdateBookingStatus(ctx context.Context, creds pestapi.Credentials, id pestapi.ID, status pestapi.BookingStatus) error
}

// BookingsSnapshot is what the bookings panel renders.
type BookingsSnapshot struct {
	Items   []pestapi.Booking `json:"items"`
	Loading bool              `json:"loading"`
}

// BookingsView holds one company's booking list.
type BookingsView struct {
	api   BookingsAPI
	creds pestapi.Credentials
	scope *scope

	mu      sync.Mutex
	items   []pestapi.Booking
	loading bool
}

// NewBookingsView creates a view with an empty list
func NewBookingsView(api BookingsAPI, creds pestapi.Credentials) *BookingsView {
	return &BookingsView{
		api:   api,
		creds: creds,
		scope: newScope(),
		items: []pestapi.Booking{},
	}
}

// Refresh re-fetches bookings with the same rules as ServicesView.Refresh.
func (v *BookingsView) Refresh(ctx context.Context) error {
	reqCtx, done, err := v.scope.bind(ctx)
	if err != nil {
		return err
	}
	defer done()

	seq := v.scope.next()
	v.mu.Lock()
	v.loading = true
	v.mu.Unlock()

	items, err := v.api.ListBookings(reqCtx, v.creds)

	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.scope.latest(seq) {
		log.Debug().Uint64("seq", seq).Msg("Discarding stale bookings response")
		return nil
	}
	v.loading = false
	if err != nil {
		logUpstream(ctx, "GET /api/bookings/company", err)
		return err
	}
	v.items = items
	return nil
}

// SetStatus requests a transition and re-fetches on success. Upstream
// failures are logged and not reported back; the list simply stays as it was.
func (v *BookingsView) SetStatus(ctx context.Context, id pestapi.ID, status pestapi.BookingStatus) error {
	if !status.Requestable() {
		return ErrInvalidStatus
	}
	reqCtx, done, err := v.scope.bind(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := v.api.UpdateBookingStatus(reqCtx, v.creds, id, status); err != nil {
		logUpstream(ctx, "PATCH /api/bookings/"+id.String()+"/status", err)
		return nil
	}

	_ = v.Refresh(ctx)
	return nil
}

// Snapshot returns a copy of the current state.
func (v *BookingsView) Snapshot() BookingsSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	items := make([]pestapi.Booking, len(v.items))
	copy(items, v.items)
	return BookingsSnapshot{Items: items, Loading: v.loading}
}

// Close cancels in-flight requests.
func (v *BookingsView) Close() {
	v.scope.close()
}
