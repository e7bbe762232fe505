package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/pestguard/pestguard-web/internal/pkg/pestapi"
)

// ServicesAPI is the part of the marketplace client the services view needs.
type ServicesAPI interface {
	ListServices(ctx context.Context, creds pestapi.Credentials) ([]pestapi.Service, error)
	CreateService(ctx context.Context, creds pestapi.Credentials, form pestapi.ServiceForm) error
	UpdateService(ctx context.Context, creds pestapi.Credentials, id pestapi.ID, form pestapi.ServiceForm) error
	DeleteService(ctx context.Context, creds pestapi.Credentials, id pestapi.ID) error
}

// ServicesSnapshot is what the services panel renders.
type ServicesSnapshot struct {
	Items   []pestapi.Service `json:"items"`
	Loading bool              `json:"loading"`
	Banner  string            `json:"banner,omitempty"`
}

// ServicesView holds one company's service list.
type ServicesView struct {
	api   ServicesAPI
	creds pestapi.Credentials
	scope *scope

	mu      sync.Mutex
	items   []pestapi.Service
	loading bool
	banner  string
}

// NewServicesView creates a view with an empty list
func NewServicesView(api ServicesAPI, creds pestapi.Credentials) *ServicesView {
	return &ServicesView{
		api:   api,
		creds: creds,
		scope: newScope(),
		items: []pestapi.Service{},
	}
}

// Refresh re-fetches the list. A failure keeps the previous list and is only
// logged; the error is returned so callers can tell auth failures apart.
// Responses to fetches that have been superseded are dropped.
func (v *ServicesView) Refresh(ctx context.Context) error {
	reqCtx, done, err := v.scope.bind(ctx)
	if err != nil {
		return err
	}
	defer done()

	seq := v.scope.next()
	v.mu.Lock()
	v.loading = true
	v.mu.Unlock()

	items, err := v.api.ListServices(reqCtx, v.creds)

	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.scope.latest(seq) {
		log.Debug().Uint64("seq", seq).Msg("Discarding stale services response")
		return nil
	}
	v.loading = false
	if err != nil {
		logUpstream(ctx, "GET /api/company/services", err)
		return err
	}
	v.items = items
	return nil
}

// Save creates the service when id is empty and updates it otherwise.
// On success the banner is cleared and the list re-fetched; a nil return
// means the form can close. On failure the banner carries the message.
func (v *ServicesView) Save(ctx context.Context, form pestapi.ServiceForm, id pestapi.ID) error {
	reqCtx, done, err := v.scope.bind(ctx)
	if err != nil {
		return err
	}
	defer done()

	endpoint := "POST /api/company/services"
	if id == "" {
		err = v.api.CreateService(reqCtx, v.creds, form)
	} else {
		endpoint = "PUT /api/company/services/" + id.String()
		err = v.api.UpdateService(reqCtx, v.creds, id, form)
	}
	if err != nil {
		logUpstream(ctx, endpoint, err)
		v.setBanner(pestapi.UserMessage(err))
		return err
	}

	v.setBanner("")
	v.refreshAfterMutation(ctx)
	return nil
}

// Delete removes a service once the user has confirmed it. A rejected delete
// leaves the service listed and puts the server's message in the banner.
func (v *ServicesView) Delete(ctx context.Context, id pestapi.ID, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	reqCtx, done, err := v.scope.bind(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := v.api.DeleteService(reqCtx, v.creds, id); err != nil {
		logUpstream(ctx, "DELETE /api/company/services/"+id.String(), err)
		v.setBanner(pestapi.UserMessage(err))
		return fmt.Errorf("delete service %s: %w", id, err)
	}

	v.setBanner("")
	v.refreshAfterMutation(ctx)
	return nil
}

// Snapshot returns a copy of the current state.
func (v *ServicesView) Snapshot() ServicesSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	items := make([]pestapi.Service, len(v.items))
	copy(items, v.items)
	return ServicesSnapshot{Items: items, Loading: v.loading, Banner: v.banner}
}

// Close cancels in-flight requests. Later calls fail with ErrViewClosed.
func (v *ServicesView) Close() {
	v.scope.close()
}

func (v *ServicesView) setBanner(msg string) {
	v.mu.Lock()
	v.banner = msg
	v.mu.Unlock()
}

func (v *ServicesView) refreshAfterMutation(ctx context.Context) {
	// failure is already logged by Refresh and the old list stays
	_ = v.Refresh(ctx)
}
