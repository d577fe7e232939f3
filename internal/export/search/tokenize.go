package search

import (
	"strings"
	"unicode"

	"github.com/solvang/webvault/internal/util/sets"
)

// stopWords is the fixed list stripped from every indexed field. Keeping it
// small and English-biased matches the client-side search runtime's list.
var stopWords = sets.New(
	"a", "an", "and", "are", "as", "at", "be", "but", "by", "for", "from",
	"has", "have", "he", "her", "his", "i", "if", "in", "into", "is", "it",
	"its", "no", "not", "of", "on", "or", "s", "she", "so", "such", "t",
	"that", "the", "their", "then", "there", "these", "they", "this", "to",
	"was", "we", "were", "will", "with", "you", "your",
)

// Tokenize case-folds text and splits it into index tokens, dropping
// stop-words and single-character fragments left over from punctuation.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if stopWords.Has(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// TokenizeAll tokenizes each input and concatenates the results.
func TokenizeAll(texts []string) []string {
	var out []string
	for _, t := range texts {
		out = append(out, Tokenize(t)...)
	}
	return out
}
