package search

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/solvang/webvault/internal/util/sets"
)

// skippedRegions are element subtrees whose text is never user-visible prose:
// scripts, styles, vector markup, math, and media containers.
var skippedRegions = sets.New(
	"script", "style", "svg", "math", "video", "audio", "canvas",
	"iframe", "object", "noscript", "template",
)

// VisibleText extracts the visible text content of an HTML fragment,
// skipping the non-prose regions above. Whitespace is collapsed to single
// spaces so the output tokenizes cleanly.
func VisibleText(fragment []byte) string {
	tokenizer := html.NewTokenizer(strings.NewReader(string(fragment)))

	var b strings.Builder
	depthSkipped := 0
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return collapseWhitespace(b.String())
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if skippedRegions.Has(string(name)) {
				depthSkipped++
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if skippedRegions.Has(string(name)) && depthSkipped > 0 {
				depthSkipped--
			}
		case html.TextToken:
			if depthSkipped == 0 {
				b.Write(tokenizer.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
