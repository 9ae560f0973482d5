// Package markdown renders author-written descriptions with goldmark. Raw HTML
// is kept so macro output survives rendering.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown text to HTML.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a renderer with the GFM extensions enabled.
func New() *Renderer {
	return &Renderer{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)}
}

// Render converts text. A result that is a single paragraph is unwrapped so
// it can sit inside inline containers. On error the input is returned as is.
func (r *Renderer) Render(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return text
	}
	out := strings.TrimSpace(buf.String())
	if inner, ok := strings.CutPrefix(out, "<p>"); ok {
		if inner, ok = strings.CutSuffix(inner, "</p>"); ok && !strings.Contains(inner, "<p>") {
			return inner
		}
	}
	return out
}
