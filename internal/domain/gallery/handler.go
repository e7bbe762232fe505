package gallery

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pestguard/pestguard-web/internal/domain/catalog"
	"github.com/pestguard/pestguard-web/internal/pkg/errorhandler"
	"github.com/pestguard/pestguard-web/internal/pkg/response"
	"github.com/pestguard/pestguard-web/internal/pkg/validator"
)

// Handler serves gallery sessions.
type Handler struct {
	service *Service
}

// NewHandler creates gallery handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// OpenRequest opens a gallery for a pest
type OpenRequest struct {
	Slug string `json:"slug" validate:"required,pest_slug"`
}

// JumpRequest moves to an index
type JumpRequest struct {
	Index *int `json:"index" validate:"required"`
}

// SessionResponse is the API form of a session
type SessionResponse struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Images    []string  `json:"images"`
	Index     int       `json:"index"`
	Current   string    `json:"current"`
	Total     int       `json:"total"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toResponse(s *Session) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		Slug:      s.Slug,
		Images:    s.Viewer.Images,
		Index:     s.Viewer.Index,
		Current:   s.Viewer.Current(),
		Total:     len(s.Viewer.Images),
		ExpiresAt: s.ExpiresAt,
	}
}

// Open handles POST /gallery
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	session, err := h.service.Open(r.Context(), req.Slug)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, toResponse(session))
}

// Get handles GET /gallery/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toResponse(session))
}

// Next handles POST /gallery/{id}/next
func (h *Handler) Next(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Next(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toResponse(session))
}

// Previous handles POST /gallery/{id}/previous
func (h *Handler) Previous(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Previous(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toResponse(session))
}

// Jump handles POST /gallery/{id}/jump
func (h *Handler) Jump(w http.ResponseWriter, r *http.Request) {
	var req JumpRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	session, err := h.service.JumpTo(r.Context(), chi.URLParam(r, "id"), *req.Index)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.OK(w, toResponse(session))
}

// Close handles DELETE /gallery/{id}
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}
	response.NoContent(w)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		response.NotFound(w, "Gallery session not found")
	case errors.Is(err, catalog.ErrPestNotFound):
		response.NotFound(w, "Pest not found")
	case errors.Is(err, ErrEmptyGallery):
		response.Error(w, http.StatusConflict, "EMPTY_GALLERY", "No images available for this pest")
	case errors.Is(err, ErrSessionBusy):
		response.Error(w, http.StatusConflict, "SESSION_BUSY", "Gallery session changed, please retry")
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "GALLERY_FAILED", "Gallery unavailable", err)
	}
}

// Routes returns gallery routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Open)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/next", h.Next)
		r.Post("/previous", h.Previous)
		r.Post("/jump", h.Jump)
		r.Delete("/", h.Close)
	})

	return r
}
