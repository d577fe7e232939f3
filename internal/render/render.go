package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer turns a document body (frontmatter already stripped) into HTML
// markup. It is the exporter's one external rendering collaborator, injected
// into the assembler so the pipeline is testable with a fake.
type Renderer interface {
	Render(sourcePath string, body []byte) ([]byte, error)
}

// Goldmark is the default Renderer: CommonMark plus GFM tables/strikethrough/
// task lists and vault-style wikilinks. Raw HTML in documents is passed
// through, matching how vault authors embed iframes and callout markup.
type Goldmark struct {
	md goldmark.Markdown
}

// NewGoldmark constructs the default renderer.
func NewGoldmark() *Goldmark {
	return &Goldmark{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				Wikilinks,
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

// Render converts one document body to HTML.
func (g *Goldmark) Render(sourcePath string, body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", sourcePath, err)
	}
	return buf.Bytes(), nil
}
