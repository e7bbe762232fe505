package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pestguard/pestguard-web/internal/domain/images"
	"github.com/pestguard/pestguard-web/internal/pkg/storage"
)

type fakeLister struct {
	objects []storage.Object
	err     error
	prefix  string
}

func (f *fakeLister) ListObjects(_ context.Context, prefix string) ([]storage.Object, error) {
	f.prefix = prefix
	return f.objects, f.err
}

func TestBuildManifestSkipsEmptyObjects(t *testing.T) {
	lister := &fakeLister{objects: []storage.Object{
		{Key: "pests/Ants/ant-2.jpg", Size: 10},
		{Key: "pests/Ants/ant-1.jpg", Size: 12},
		{Key: "pests/Ants/empty.jpg", Size: 0},
	}}

	m, err := buildManifest(context.Background(), lister, "pests/")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if lister.prefix != "pests/" {
		t.Fatalf("unexpected prefix %q", lister.prefix)
	}
	if got := m["Ants"]; len(got) != 2 || got[0] != "ant-1.jpg" {
		t.Fatalf("unexpected files %v", got)
	}
}

func TestBuildManifestPropagatesErrors(t *testing.T) {
	want := errors.New("denied")
	if _, err := buildManifest(context.Background(), &fakeLister{err: want}, "pests/"); !errors.Is(err, want) {
		t.Fatalf("expected list error, got %v", err)
	}
}

func TestWriteManifest(t *testing.T) {
	out := filepath.Join(t.TempDir(), "manifest.json")
	if err := writeManifest(out, images.Manifest{"Rat": {"rat-1.jpg"}}); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	m, err := images.ParseManifest(f)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(m["Rat"]) != 1 {
		t.Fatalf("unexpected manifest %v", m)
	}
}
