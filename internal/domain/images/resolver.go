package images

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
)

//go:embed manifest.json
var embeddedManifest []byte

// Manifest maps an image folder name to its ordered raw filenames.
type Manifest map[string][]string

// DefaultManifest returns the manifest compiled into the binary.
func DefaultManifest() Manifest {
	m, err := ParseManifest(strings.NewReader(string(embeddedManifest)))
	if err != nil {
		panic(fmt.Sprintf("images: embedded manifest: %v", err))
	}
	return m
}

// ParseManifest decodes a manifest JSON document.
func ParseManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m == nil {
		m = Manifest{}
	}
	return m, nil
}

// Resolver turns folder names into public image URLs.
type Resolver struct {
	basePath string
	manifest Manifest
}

// NewResolver creates a resolver rooted at basePath (e.g. "/images/pests").
func NewResolver(basePath string, manifest Manifest) *Resolver {
	if manifest == nil {
		manifest = Manifest{}
	}
	return &Resolver{
		basePath: strings.TrimRight(basePath, "/"),
		manifest: manifest,
	}
}

// ImagesFor returns the ordered image URLs of a folder. Unknown folders yield an empty slice.
func (r *Resolver) ImagesFor(folder string) []string {
	files := r.manifest[folder]
	urls := make([]string, 0, len(files))
	for _, file := range files {
		urls = append(urls, r.url(folder, file))
	}
	return urls
}

// FirstImage returns the first image URL of a folder, or "".
func (r *Resolver) FirstImage(folder string) string {
	files := r.manifest[folder]
	if len(files) == 0 {
		return ""
	}
	return r.url(folder, files[0])
}

// Folders lists the folder names known to the manifest.
func (r *Resolver) Folders() []string {
	folders := make([]string, 0, len(r.manifest))
	for folder := range r.manifest {
		folders = append(folders, folder)
	}
	return folders
}

func (r *Resolver) url(folder, file string) string {
	return r.basePath + "/" + url.PathEscape(folder) + "/" + url.PathEscape(file)
}
