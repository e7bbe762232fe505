package catalog

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-slug"
)

//go:embed data/*.md
var embedded embed.FS

// DefaultSource returns the pest files compiled into the binary.
func DefaultSource() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded data: %v", err))
	}
	return sub
}

type frontMatter struct {
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Folder      string `yaml:"folder"`
}

// Load parses every *.md file in fsys and returns pests sorted by name.
// Images are resolved once here; the records are not mutated afterwards.
func Load(fsys fs.FS, images ImageResolver) ([]Pest, error) {
	files, err := fs.Glob(fsys, "*.md")
	if err != nil {
		return nil, fmt.Errorf("list pest files: %w", err)
	}

	pests := make([]Pest, 0, len(files))
	seen := make(map[string]string, len(files))

	for _, file := range files {
		src, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}

		pest, err := parsePest(src)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}

		if other, ok := seen[pest.Slug]; ok {
			return nil, fmt.Errorf("%w: %q in %s and %s", ErrDuplicateSlug, pest.Slug, other, path.Base(file))
		}
		seen[pest.Slug] = path.Base(file)

		if images != nil {
			pest.Images = images.ImagesFor(pest.FolderName)
		}
		if pest.Images == nil {
			pest.Images = []string{}
		}

		pests = append(pests, pest)
	}

	sort.SliceStable(pests, func(i, j int) bool {
		return strings.ToLower(pests[i].Name) < strings.ToLower(pests[j].Name)
	})

	return pests, nil
}

func parsePest(src []byte) (Pest, error) {
	var meta frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		return Pest{}, fmt.Errorf("frontmatter: %w", err)
	}

	name := strings.TrimSpace(meta.Name)
	if name == "" {
		return Pest{}, fmt.Errorf("missing name")
	}

	pestSlug := strings.TrimSpace(meta.Slug)
	if pestSlug == "" {
		pestSlug, err = slug.Normalize(name)
		if err != nil {
			return Pest{}, fmt.Errorf("derive slug from %q: %w", name, err)
		}
	}
	if !slug.IsValid(pestSlug) {
		return Pest{}, fmt.Errorf("invalid slug %q", pestSlug)
	}

	folder := strings.TrimSpace(meta.Folder)
	if folder == "" {
		folder = name
	}

	sections := splitSections(body)

	return Pest{
		Slug:        pestSlug,
		Name:        name,
		Description: strings.TrimSpace(meta.Description),
		Biology:     sections["biology"],
		Signs:       sections["signs"],
		Prevention:  sections["prevention"],
		Treatment:   sections["treatment"],
		DIY:         sections["diy"],
		FolderName:  folder,
	}, nil
}

// splitSections groups body text under its "## Heading", keyed by lowercased heading.
func splitSections(body []byte) map[string]string {
	sections := make(map[string]string)
	var current string
	var buf strings.Builder

	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSpace(buf.String())
		}
		buf.Reset()
	}

	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if heading, ok := strings.CutPrefix(line, "## "); ok {
			flush()
			current = strings.ToLower(strings.TrimSpace(heading))
			continue
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	flush()

	return sections
}
