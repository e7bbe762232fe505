package images

import (
	"encoding/json"
	"io"
	"path"
	"sort"
	"strings"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".avif": true,
}

// ManifestFromKeys builds a manifest from object keys laid out as
// prefix + folder + "/" + filename. Keys that are not images, or that sit
// at the wrong depth, are skipped. Filenames are sorted per folder.
func ManifestFromKeys(keys []string, prefix string) Manifest {
	m := Manifest{}
	for _, key := range keys {
		rel, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		folder, file, ok := strings.Cut(strings.TrimPrefix(rel, "/"), "/")
		if !ok || folder == "" || file == "" || strings.Contains(file, "/") {
			continue
		}
		if !imageExtensions[strings.ToLower(path.Ext(file))] {
			continue
		}
		m[folder] = append(m[folder], file)
	}
	for folder := range m {
		sort.Strings(m[folder])
	}
	return m
}

// Encode writes the manifest as indented JSON with sorted folder keys.
func (m Manifest) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(m)
}
