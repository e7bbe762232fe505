package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pestguard/pestguard-web/internal/domain/catalog"
	"github.com/pestguard/pestguard-web/internal/middleware"
	"github.com/pestguard/pestguard-web/internal/pkg/errorhandler"
	"github.com/pestguard/pestguard-web/internal/pkg/imaging"
	"github.com/pestguard/pestguard-web/internal/pkg/pestapi"
	"github.com/pestguard/pestguard-web/internal/pkg/response"
	"github.com/pestguard/pestguard-web/internal/pkg/validator"
)

const maxFormMemory = 10 << 20

// PestAPI covers the marketplace calls that are not tied to a dashboard view.
type PestAPI interface {
	SuggestServices(ctx context.Context, creds pestapi.Credentials, pest string) ([]pestapi.Service, error)
	AnalyzePest(ctx context.Context, creds pestapi.Credentials, image pestapi.FileUpload) (*pestapi.Analysis, error)
	DeletePest(ctx context.Context, creds pestapi.Credentials, slug string) error
}

// PestHider drops a pest from the local catalog after the marketplace deleted it.
type PestHider interface {
	Hide(slug string) error
}

// Handler serves the company dashboard and the public marketplace proxies.
type Handler struct {
	registry *Registry
	api      PestAPI
	pests    PestHider
	images   *imaging.Processor
}

// NewHandler creates dashboard handler
func NewHandler(registry *Registry, api PestAPI, pests PestHider, images *imaging.Processor) *Handler {
	return &Handler{
		registry: registry,
		api:      api,
		pests:    pests,
		images:   images,
	}
}

// StatusRequest asks for a booking transition
type StatusRequest struct {
	Status string `json:"status" validate:"required,booking_status"`
}

// ListServices handles GET /dashboard/services
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	view := h.session(r).Services
	if err := view.Refresh(r.Context()); err != nil && rejectsCaller(r, err) {
		h.upstreamError(w, r, err)
		return
	}
	response.OK(w, view.Snapshot())
}

// CreateService handles POST /dashboard/services
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	h.saveService(w, r, "")
}

// UpdateService handles PUT /dashboard/services/{id}
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	h.saveService(w, r, pestapi.ID(chi.URLParam(r, "id")))
}

func (h *Handler) saveService(w http.ResponseWriter, r *http.Request, id pestapi.ID) {
	form, err := parseServiceForm(r)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	if errs := validator.Validate(form); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	view := h.session(r).Services
	if err := view.Save(r.Context(), form, id); err != nil {
		h.upstreamError(w, r, err)
		return
	}

	if id == "" {
		response.Created(w, view.Snapshot())
		return
	}
	response.OK(w, view.Snapshot())
}

// DeleteService handles DELETE /dashboard/services/{id}?confirm=true
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	confirmed := r.URL.Query().Get("confirm") == "true"
	view := h.session(r).Services

	err := view.Delete(r.Context(), pestapi.ID(chi.URLParam(r, "id")), confirmed)
	if errors.Is(err, ErrConfirmationRequired) {
		response.Error(w, http.StatusPreconditionRequired, "CONFIRMATION_REQUIRED", "Please confirm the deletion")
		return
	}
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	response.OK(w, view.Snapshot())
}

// ListBookings handles GET /dashboard/bookings
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	view := h.session(r).Bookings
	if err := view.Refresh(r.Context()); err != nil && rejectsCaller(r, err) {
		h.upstreamError(w, r, err)
		return
	}
	response.OK(w, view.Snapshot())
}

// UpdateBookingStatus handles PATCH /dashboard/bookings/{id}/status
func (h *Handler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	view := h.session(r).Bookings
	err := view.SetStatus(r.Context(), pestapi.ID(chi.URLParam(r, "id")), pestapi.BookingStatus(req.Status))
	if errors.Is(err, ErrInvalidStatus) {
		response.ValidationError(w, map[string]string{"status": err.Error()})
		return
	}
	if err != nil {
		h.upstreamError(w, r, err)
		return
	}
	response.OK(w, view.Snapshot())
}

// DeletePest handles DELETE /dashboard/pests/{slug}
func (h *Handler) DeletePest(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if err := validator.ValidateVar(slug, "required,pest_slug"); err != nil {
		response.BadRequest(w, "Invalid pest slug")
		return
	}

	if err := h.api.DeletePest(r.Context(), middleware.GetCredentials(r.Context()), slug); err != nil {
		logUpstream(r.Context(), "DELETE /api/pests/"+slug, err)
		h.upstreamError(w, r, err)
		return
	}

	if err := h.pests.Hide(slug); err != nil && !errors.Is(err, catalog.ErrPestNotFound) {
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "CATALOG_UPDATE_FAILED", "Pest deleted upstream but still listed", err)
		return
	}
	response.NoContent(w)
}

// SuggestServices handles GET /services/suggest?pest=
func (h *Handler) SuggestServices(w http.ResponseWriter, r *http.Request) {
	pest := strings.TrimSpace(r.URL.Query().Get("pest"))
	if pest == "" {
		response.BadRequest(w, "pest is required")
		return
	}

	services, err := h.api.SuggestServices(r.Context(), middleware.GetCredentials(r.Context()), pest)
	if err != nil {
		logUpstream(r.Context(), "GET /api/services/suggest", err)
		h.upstreamError(w, r, err)
		return
	}
	if services == nil {
		services = []pestapi.Service{}
	}
	response.OK(w, map[string]interface{}{
		"pest":     pest,
		"services": services,
	})
}

// Analyze handles POST /analyze with a multipart "image" field
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxFileSize+(1<<20))
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		response.BadRequest(w, "Expected multipart form with an image")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.ValidationError(w, map[string]string{"image": "This field is required"})
		return
	}
	defer file.Close()

	if !imaging.ValidateType(header.Filename) {
		response.ValidationError(w, map[string]string{"image": "Unsupported image type"})
		return
	}

	processed, err := h.images.Normalize(file)
	if err != nil {
		switch {
		case errors.Is(err, imaging.ErrTooLarge):
			response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "Image is too large")
		case errors.Is(err, imaging.ErrUnsupported):
			response.ValidationError(w, map[string]string{"image": "Could not read image"})
		default:
			errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "IMAGE_PROCESSING_FAILED", "Failed to process image", err)
		}
		return
	}

	analysis, err := h.api.AnalyzePest(r.Context(), middleware.GetCredentials(r.Context()), pestapi.FileUpload{
		Filename:    imaging.JPEGName(header.Filename),
		ContentType: processed.ContentType,
		Data:        processed.Data,
	})
	if err != nil {
		logUpstream(r.Context(), "POST /api/analyze-pest", err)
		h.upstreamError(w, r, err)
		return
	}
	response.OK(w, analysis)
}

func (h *Handler) session(r *http.Request) *Session {
	return h.registry.For(middleware.GetCredentials(r.Context()))
}

// rejectsCaller reports list failures the caller must see; everything else
// leaves the previous list in place.
func rejectsCaller(r *http.Request, err error) bool {
	return pestapi.IsAuthError(err) || sessionClosed(r, err)
}

// sessionClosed reports whether err came from the dashboard view going away
// rather than from the caller disconnecting.
func sessionClosed(r *http.Request, err error) bool {
	if errors.Is(err, ErrViewClosed) {
		return true
	}
	return errors.Is(err, context.Canceled) && r.Context().Err() == nil
}

// upstreamError maps client errors onto the response envelope. Messages are
// the ones a banner would show.
func (h *Handler) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	msg := pestapi.UserMessage(err)

	var apiErr *pestapi.APIError
	var netErr *pestapi.NetworkError
	var schemaErr *pestapi.SchemaError
	switch {
	case pestapi.IsAuthError(err):
		response.Unauthorized(w, msg)
	case sessionClosed(r, err):
		response.Error(w, http.StatusServiceUnavailable, "SESSION_CLOSED", "Dashboard session was closed, please retry")
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			response.Error(w, apiErr.Status, "UPSTREAM_REJECTED", msg)
			return
		}
		response.BadGateway(w, msg)
	case errors.As(err, &netErr):
		if netErr.Timeout {
			response.Error(w, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", msg)
			return
		}
		response.BadGateway(w, msg)
	case errors.As(err, &schemaErr):
		response.BadGateway(w, msg)
	case errors.Is(err, context.Canceled):
		// caller went away
		return
	default:
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "INTERNAL_ERROR", msg, err)
	}
}

// parseServiceForm accepts multipart (with optional image) or JSON.
func parseServiceForm(r *http.Request) (pestapi.ServiceForm, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var form pestapi.ServiceForm
		if err := response.DecodeJSON(r.Body, &form); err != nil {
			return form, errors.New("Invalid JSON body")
		}
		return form, nil
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		return pestapi.ServiceForm{}, errors.New("Expected multipart form data")
	}

	form := pestapi.ServiceForm{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Price:       strings.TrimSpace(r.FormValue("price")),
		ServiceType: strings.TrimSpace(r.FormValue("service_type")),
	}

	pestTypes, err := parsePestTypes(r.MultipartForm.Value["pest_types"])
	if err != nil {
		return form, err
	}
	form.PestTypes = pestTypes

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return form, nil
	case err != nil:
		return form, errors.New("Invalid image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, imaging.MaxFileSize+1))
	if err != nil {
		return form, errors.New("Invalid image upload")
	}
	if int64(len(data)) > imaging.MaxFileSize {
		return form, errors.New("Image is too large")
	}

	form.Image = &pestapi.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return form, nil
}

// parsePestTypes accepts a JSON array string, comma separated text or
// repeated fields.
func parsePestTypes(values []string) ([]string, error) {
	out := []string{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if strings.HasPrefix(v, "[") {
			var list []string
			if err := json.Unmarshal([]byte(v), &list); err != nil {
				return nil, errors.New("pest_types must be a JSON array of strings")
			}
			for _, item := range list {
				if item = strings.TrimSpace(item); item != "" {
					out = append(out, item)
				}
			}
			continue
		}
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out, nil
}

// Routes returns dashboard routes
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Route("/services", func(r chi.Router) {
		r.Get("/", h.ListServices)
		r.Post("/", h.CreateService)
		r.Put("/{id}", h.UpdateService)
		r.Delete("/{id}", h.DeleteService)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Get("/", h.ListBookings)
		r.Patch("/{id}/status", h.UpdateBookingStatus)
	})

	r.Delete("/pests/{slug}", h.DeletePest)

	return r
}

// PublicRoutes registers the unauthenticated marketplace proxies on r
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Credentials)
		r.Get("/services/suggest", h.SuggestServices)
		r.Post("/analyze", h.Analyze)
	})
}
