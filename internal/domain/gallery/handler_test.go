package gallery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type galleryAPIResponse struct {
	Success bool            `json:"success"`
	Data    SessionResponse `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newGalleryRouter() http.Handler {
	h := NewHandler(NewService(NewMemoryStore(time.Minute), testPests()))
	r := chi.NewRouter()
	r.Mount("/api/v1/gallery", h.Routes())
	return r
}

func call(t *testing.T, r http.Handler, method, path, body string) (int, galleryAPIResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp galleryAPIResponse
	if w.Code != http.StatusNoContent {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w.Code, resp
}

func TestGalleryHTTPFlow(t *testing.T) {
	r := newGalleryRouter()

	code, opened := call(t, r, http.MethodPost, "/api/v1/gallery", `{"slug":"aphid"}`)
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if opened.Data.Total != 5 || opened.Data.Current != "/a/1.jpg" {
		t.Fatalf("unexpected session %+v", opened.Data)
	}
	base := "/api/v1/gallery/" + opened.Data.ID

	_, prev := call(t, r, http.MethodPost, base+"/previous", "")
	if prev.Data.Index != 4 {
		t.Fatalf("expected wraparound to 4, got %d", prev.Data.Index)
	}

	_, next := call(t, r, http.MethodPost, base+"/next", "")
	if next.Data.Index != 0 {
		t.Fatalf("expected 0, got %d", next.Data.Index)
	}

	_, jumped := call(t, r, http.MethodPost, base+"/jump", `{"index":3}`)
	if jumped.Data.Current != "/a/4.jpg" {
		t.Fatalf("expected fourth image, got %q", jumped.Data.Current)
	}

	_, ignored := call(t, r, http.MethodPost, base+"/jump", `{"index":7}`)
	if ignored.Data.Index != 3 {
		t.Fatalf("out of range jump moved to %d", ignored.Data.Index)
	}

	if code, _ := call(t, r, http.MethodPost, base+"/jump", `{}`); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing index, got %d", code)
	}

	if code, _ := call(t, r, http.MethodDelete, base, ""); code != http.StatusNoContent {
		t.Fatalf("expected 204 on close, got %d", code)
	}
	if code, resp := call(t, r, http.MethodGet, base, ""); code != http.StatusNotFound || resp.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected 404 after close, got %d", code)
	}
}

func TestGalleryOpenErrors(t *testing.T) {
	r := newGalleryRouter()

	if code, resp := call(t, r, http.MethodPost, "/api/v1/gallery", `{"slug":"silverfish"}`); code != http.StatusConflict || resp.Error.Code != "EMPTY_GALLERY" {
		t.Fatalf("expected 409 EMPTY_GALLERY, got %d", code)
	}
	if code, _ := call(t, r, http.MethodPost, "/api/v1/gallery", `{"slug":"dragon"}`); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if code, _ := call(t, r, http.MethodPost, "/api/v1/gallery", `{"slug":""}`); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
	if code, _ := call(t, r, http.MethodPost, "/api/v1/gallery", `not json`); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}
