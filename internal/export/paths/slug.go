package paths

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold decomposes accented characters and drops the combining marks,
// so "Résumé" folds to "Resume" before slugification.
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify transliterates one path segment into web-style form: lowercase
// ASCII with hyphen-separated words. Used for both file and directory
// segments when web-style names are enabled, so every reference updates in
// lock-step.
func Slugify(segment string) string {
	folded, _, err := transform.String(asciiFold, segment)
	if err != nil {
		folded = segment
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == '.':
			// Preserve extension dots so "My Note.md" keeps its suffix.
			b.WriteByte('.')
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	out := strings.Trim(b.String(), "-")
	out = strings.ReplaceAll(out, "-.", ".")
	out = strings.ReplaceAll(out, ".-", ".")
	if out == "" {
		return "untitled"
	}
	return out
}

// NormalizeHeadingID converts heading text into the anchor id emitted on
// heading elements and used by anchor links: whitespace and colon characters
// are stripped, everything else is preserved.
func NormalizeHeadingID(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsSpace(r) || r == ':' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
