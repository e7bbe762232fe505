package catalog

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pestguard/pestguard-web/internal/pkg/errorhandler"
	"github.com/pestguard/pestguard-web/internal/pkg/response"
)

// Handler serves the public catalog API.
type Handler struct {
	store       *Store
	renderer    *Renderer
	images      ImageResolver
	placeholder string
}

// NewHandler creates catalog handler
func NewHandler(store *Store, renderer *Renderer, images ImageResolver, placeholder string) *Handler {
	return &Handler{
		store:       store,
		renderer:    renderer,
		images:      images,
		placeholder: placeholder,
	}
}

// Summary is the list form of a pest.
type Summary struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cover       string `json:"cover"`
	HasImages   bool   `json:"has_images"`
}

// Detail is the full form of a pest.
type Detail struct {
	Pest
	HTML      Rendered `json:"html"`
	Cover     string   `json:"cover"`
	HasImages bool     `json:"has_images"`
}

// List handles GET /pests?q=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	pests := Filter(h.store.List(), r.URL.Query().Get("q"))
	items := h.summaries(pests)

	response.OK(w, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}

// Recommend handles GET /pests/recommend?q=
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	pests := Recommend(h.store.List(), r.URL.Query().Get("q"))

	response.OK(w, map[string]interface{}{
		"items": h.summaries(pests),
	})
}

// Get handles GET /pests/{slug}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	pest, ok := h.lookup(w, r)
	if !ok {
		return
	}

	rendered, err := h.renderer.Render(pest)
	if err != nil {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "RENDER_FAILED", "Failed to render pest", err)
		return
	}

	response.OK(w, Detail{
		Pest:      pest,
		HTML:      rendered,
		Cover:     h.cover(pest),
		HasImages: len(pest.Images) > 0,
	})
}

// Images handles GET /pests/{slug}/images
func (h *Handler) Images(w http.ResponseWriter, r *http.Request) {
	pest, ok := h.lookup(w, r)
	if !ok {
		return
	}

	response.OK(w, map[string]interface{}{
		"images": pest.Images,
		"cover":  h.cover(pest),
	})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (Pest, bool) {
	pest, err := h.store.Get(chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, ErrPestNotFound) {
			response.NotFound(w, "Pest not found")
			return Pest{}, false
		}
		response.InternalError(w)
		return Pest{}, false
	}
	return pest, true
}

func (h *Handler) summaries(pests []Pest) []Summary {
	items := make([]Summary, 0, len(pests))
	for _, p := range pests {
		items = append(items, Summary{
			Slug:        p.Slug,
			Name:        p.Name,
			Description: p.Description,
			Cover:       h.cover(p),
			HasImages:   len(p.Images) > 0,
		})
	}
	return items
}

// cover falls back to the placeholder when the folder has no images.
func (h *Handler) cover(p Pest) string {
	if h.images != nil {
		if first := h.images.FirstImage(p.FolderName); first != "" {
			return first
		}
	}
	return h.placeholder
}

// Routes returns catalog routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/recommend", h.Recommend)
	r.Get("/{slug}", h.Get)
	r.Get("/{slug}/images", h.Images)

	return r
}
