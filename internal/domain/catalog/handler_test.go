package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pestguard/pestguard-web/internal/domain/images"
)

type catalogAPIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newCatalogRouter(t *testing.T) http.Handler {
	t.Helper()
	resolver := images.NewResolver("/images/pests", images.DefaultManifest())
	pests, err := Load(DefaultSource(), resolver)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	h := NewHandler(NewStore(pests), NewRenderer(), resolver, "/images/placeholder.svg")

	r := chi.NewRouter()
	r.Mount("/api/v1/pests", h.Routes())
	return r
}

func doCatalogRequest(t *testing.T, r http.Handler, path string) (*httptest.ResponseRecorder, catalogAPIResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body catalogAPIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return w, body
}

func TestListEndpointFilters(t *testing.T) {
	r := newCatalogRouter(t)

	w, body := doCatalogRequest(t, r, "/api/v1/pests?q=aph")
	if w.Code != http.StatusOK || !body.Success {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var data struct {
		Items []Summary `json:"items"`
		Total int       `json:"total"`
	}
	if err := json.Unmarshal(body.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Total != 1 || data.Items[0].Slug != "aphid" || !data.Items[0].HasImages {
		t.Fatalf("unexpected items %+v", data.Items)
	}
}

func TestRecommendEndpoint(t *testing.T) {
	r := newCatalogRouter(t)

	_, body := doCatalogRequest(t, r, "/api/v1/pests/recommend?q=t")
	var data struct {
		Items []Summary `json:"items"`
	}
	if err := json.Unmarshal(body.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data.Items) != 0 {
		t.Fatalf("expected no recommendations for one character, got %d", len(data.Items))
	}
}

func TestDetailEndpointUsesPlaceholderWithoutImages(t *testing.T) {
	r := newCatalogRouter(t)

	w, body := doCatalogRequest(t, r, "/api/v1/pests/silverfish")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var detail Detail
	if err := json.Unmarshal(body.Data, &detail); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if detail.Cover != "/images/placeholder.svg" || detail.HasImages {
		t.Fatalf("expected placeholder cover, got %q", detail.Cover)
	}
	if detail.HTML.Biology == "" {
		t.Fatal("expected rendered biology")
	}
}

func TestDetailEndpointNotFound(t *testing.T) {
	r := newCatalogRouter(t)

	w, body := doCatalogRequest(t, r, "/api/v1/pests/dragon")
	if w.Code != http.StatusNotFound || body.Error == nil || body.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected 404 NOT_FOUND, got %d", w.Code)
	}
}

func TestImagesEndpoint(t *testing.T) {
	r := newCatalogRouter(t)

	_, body := doCatalogRequest(t, r, "/api/v1/pests/aphid/images")
	var data struct {
		Images []string `json:"images"`
		Cover  string   `json:"cover"`
	}
	if err := json.Unmarshal(body.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data.Images) != 5 || data.Cover != data.Images[0] {
		t.Fatalf("unexpected images payload %+v", data)
	}
}
