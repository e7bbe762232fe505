package catalog

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Rendered holds the HTML form of a pest's remediation sections.
type Rendered struct {
	Biology    string `json:"biology"`
	Signs      string `json:"signs"`
	Prevention string `json:"prevention"`
	Treatment  string `json:"treatment"`
	DIY        string `json:"diy"`
}

// Renderer converts section markdown to HTML. Raw HTML in the source is escaped.
type Renderer struct {
	md goldmark.Markdown
}

func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

// Render converts every section of p.
func (r *Renderer) Render(p Pest) (Rendered, error) {
	var out Rendered
	fields := []struct {
		name string
		src  string
		dst  *string
	}{
		{"biology", p.Biology, &out.Biology},
		{"signs", p.Signs, &out.Signs},
		{"prevention", p.Prevention, &out.Prevention},
		{"treatment", p.Treatment, &out.Treatment},
		{"diy", p.DIY, &out.DIY},
	}

	for _, f := range fields {
		if f.src == "" {
			continue
		}
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(f.src), &buf); err != nil {
			return Rendered{}, fmt.Errorf("render %s for %s: %w", f.name, p.Slug, err)
		}
		*f.dst = buf.String()
	}
	return out, nil
}
