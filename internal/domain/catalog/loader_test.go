package catalog

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/pestguard/pestguard-web/internal/domain/images"
)

func TestLoadEmbeddedCatalog(t *testing.T) {
	resolver := images.NewResolver("/images/pests", images.DefaultManifest())
	pests, err := Load(DefaultSource(), resolver)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(pests) < 3 {
		t.Fatalf("expected embedded pests, got %d", len(pests))
	}

	for i := 1; i < len(pests); i++ {
		if strings.ToLower(pests[i-1].Name) > strings.ToLower(pests[i].Name) {
			t.Fatalf("catalog not sorted: %s before %s", pests[i-1].Name, pests[i].Name)
		}
	}

	store := NewStore(pests)
	aphid, err := store.Get("aphid")
	if err != nil {
		t.Fatalf("get aphid: %v", err)
	}
	if len(aphid.Images) != 5 {
		t.Fatalf("expected 5 aphid images, got %d", len(aphid.Images))
	}
	if aphid.Biology == "" || aphid.DIY == "" {
		t.Fatalf("expected sections to be parsed, got %+v", aphid)
	}

	silverfish, err := store.Get("silverfish")
	if err != nil {
		t.Fatalf("get silverfish: %v", err)
	}
	if silverfish.Images == nil || len(silverfish.Images) != 0 {
		t.Fatalf("expected empty image list, got %#v", silverfish.Images)
	}
}

func TestLoadDerivesSlugAndFolder(t *testing.T) {
	fsys := fstest.MapFS{
		"fly.md": {Data: []byte("---\nname: Fruit Fly\ndescription: Tiny flies\n---\n## Signs\nHovering near fruit bowls.\n")},
	}
	pests, err := Load(fsys, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	p := pests[0]
	if p.Slug != "fruit-fly" {
		t.Fatalf("expected derived slug fruit-fly, got %q", p.Slug)
	}
	if p.FolderName != "Fruit Fly" {
		t.Fatalf("expected folder to default to name, got %q", p.FolderName)
	}
	if p.Signs != "Hovering near fruit bowls." {
		t.Fatalf("unexpected signs %q", p.Signs)
	}
}

func TestLoadRejectsDuplicateSlugs(t *testing.T) {
	fsys := fstest.MapFS{
		"a.md": {Data: []byte("---\nname: Moth\nslug: moth\n---\n")},
		"b.md": {Data: []byte("---\nname: Clothes Moth\nslug: moth\n---\n")},
	}
	_, err := Load(fsys, nil)
	if !errors.Is(err, ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestLoadRejectsMissingName(t *testing.T) {
	fsys := fstest.MapFS{
		"a.md": {Data: []byte("---\ndescription: nameless\n---\n")},
	}
	if _, err := Load(fsys, nil); err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestStoreHide(t *testing.T) {
	store := NewStore(sample())
	if err := store.Hide("aphid"); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if _, err := store.Get("aphid"); !errors.Is(err, ErrPestNotFound) {
		t.Fatalf("expected hidden pest to be gone, got %v", err)
	}
	if got := names(store.List()); strings.Join(got, ",") != "Ants,Termite" {
		t.Fatalf("unexpected list %v", got)
	}
	if err := store.Hide("aphid"); !errors.Is(err, ErrPestNotFound) {
		t.Fatalf("expected second hide to fail, got %v", err)
	}
	if err := store.Hide("unknown"); !errors.Is(err, ErrPestNotFound) {
		t.Fatalf("expected unknown hide to fail, got %v", err)
	}
}

func TestRendererProducesHTML(t *testing.T) {
	out, err := NewRenderer().Render(Pest{Slug: "x", Signs: "- one\n- two", DIY: "<script>alert(1)</script>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out.Signs, "<li>one</li>") {
		t.Fatalf("expected list markup, got %q", out.Signs)
	}
	if strings.Contains(out.DIY, "<script>") {
		t.Fatalf("raw html must not pass through, got %q", out.DIY)
	}
	if out.Biology != "" {
		t.Fatalf("empty section should stay empty, got %q", out.Biology)
	}
}
