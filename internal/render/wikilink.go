package render

import (
	"bytes"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Wikilinks is the goldmark extension translating vault-style references into
// ordinary Link/Image AST nodes, so downstream link collection and rewriting
// treat them exactly like CommonMark links:
//
//	[[Note]]            -> link to "Note" with label "Note"
//	[[Note|alias]]      -> link to "Note" with label "alias"
//	[[Note#Heading]]    -> link to "Note#Heading"
//	![[image.png]]      -> image embed
//	![[Other Note]]     -> link (document transclusion renders as a link)
var Wikilinks goldmark.Extender = &wikilinkExtension{}

type wikilinkExtension struct{}

func (e *wikilinkExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		// Must run before goldmark's own link parser (priority 200).
		parser.WithInlineParsers(util.Prioritized(&wikilinkParser{}, 199)),
	)
}

type wikilinkParser struct{}

func (p *wikilinkParser) Trigger() []byte {
	return []byte{'!', '['}
}

func (p *wikilinkParser) Parse(parent gmast.Node, block text.Reader, pc parser.Context) gmast.Node {
	line, _ := block.PeekLine()

	embed := false
	offset := 0
	if len(line) > 0 && line[0] == '!' {
		embed = true
		offset = 1
	}

	if len(line) < offset+4 || line[offset] != '[' || line[offset+1] != '[' {
		return nil
	}

	end := bytes.Index(line[offset+2:], []byte("]]"))
	if end < 0 {
		return nil
	}

	inner := string(line[offset+2 : offset+2+end])
	if strings.TrimSpace(inner) == "" {
		return nil
	}

	target, label := splitAlias(inner)
	block.Advance(offset + 2 + end + 2)

	if embed && isImageTarget(target) {
		inline := gmast.NewLink()
		inline.Destination = []byte(target)
		img := gmast.NewImage(inline)
		img.AppendChild(img, gmast.NewString([]byte(label)))
		return img
	}

	link := gmast.NewLink()
	link.Destination = []byte(target)
	link.AppendChild(link, gmast.NewString([]byte(label)))
	return link
}

// splitAlias separates "target|alias". The default label is the target with
// any anchor rendered as "target > heading".
func splitAlias(inner string) (target, label string) {
	if idx := strings.IndexByte(inner, '|'); idx >= 0 {
		target = strings.TrimSpace(inner[:idx])
		label = strings.TrimSpace(inner[idx+1:])
		if label == "" {
			label = target
		}
		return target, label
	}
	target = strings.TrimSpace(inner)
	label = target
	if idx := strings.IndexByte(target, '#'); idx > 0 {
		label = target[:idx] + " > " + target[idx+1:]
	}
	return target, label
}

var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".avif": true, ".bmp": true,
}

func isImageTarget(target string) bool {
	if idx := strings.IndexByte(target, '#'); idx >= 0 {
		target = target[:idx]
	}
	return imageExtensions[strings.ToLower(path.Ext(target))]
}
