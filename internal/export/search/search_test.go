package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_CaseFoldsAndStripsStopWords(t *testing.T) {
	tokens := Tokenize("The Quick Brown Fox is a friend of the Site")
	assert.Equal(t, []string{"quick", "brown", "fox", "friend", "site"}, tokens)
}

func TestTokenize_SplitsOnPunctuation(t *testing.T) {
	tokens := Tokenize("link-resolution, backlinks/graphs!")
	assert.Equal(t, []string{"link", "resolution", "backlinks", "graphs"}, tokens)
}

func TestVisibleText_SkipsNonProseRegions(t *testing.T) {
	fragment := []byte(`<p>hello</p><script>var hidden = 1;</script>` +
		`<style>.x{}</style><svg><text>vector</text></svg><p>world</p>`)

	assert.Equal(t, "hello world", VisibleText(fragment))
}

func TestVisibleText_NestedSkip(t *testing.T) {
	fragment := []byte(`<video><track><span>caption internals</span></video><p>kept</p>`)
	assert.Equal(t, "kept", VisibleText(fragment))
}

func TestIndex_ReplaceOnRebuild(t *testing.T) {
	ix := NewIndex()
	ix.Add(Document{TargetPath: "a.html", Title: "First", HTML: []byte("<p>original wording</p>")})
	ix.Add(Document{TargetPath: "a.html", Title: "First", HTML: []byte("<p>rewritten body</p>")})

	require.Equal(t, 1, ix.Len())
	entry, ok := ix.Get("a.html")
	require.True(t, ok)
	assert.Contains(t, entry.Tokens, "rewritten")
	assert.NotContains(t, entry.Tokens, "original")
}

func TestIndex_Remove(t *testing.T) {
	ix := NewIndex()
	ix.Add(Document{TargetPath: "a.html", Title: "A"})
	ix.Remove("a.html")
	assert.Equal(t, 0, ix.Len())
}

func TestIndex_SerializeDeterministic(t *testing.T) {
	build := func() *Index {
		ix := NewIndex()
		ix.Add(Document{TargetPath: "b.html", Title: "B", HTML: []byte("<p>beta</p>")})
		ix.Add(Document{TargetPath: "a.html", Title: "A", HTML: []byte("<p>alpha</p>")})
		return ix
	}

	first, err := build().Serialize()
	require.NoError(t, err)
	second, err := build().Serialize()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIndex_RoundTrip(t *testing.T) {
	ix := NewIndex()
	ix.Add(Document{
		TargetPath: "notes/a.html",
		Title:      "Note A",
		Aliases:    []string{"Alpha Note"},
		Headings:   []string{"Getting Started"},
		Tags:       []string{"guide"},
		HTML:       []byte("<p>full body text</p>"),
	})

	data, err := ix.Serialize()
	require.NoError(t, err)

	loaded, err := Load(data)
	require.NoError(t, err)
	entry, ok := loaded.Get("notes/a.html")
	require.True(t, ok)
	assert.Equal(t, "Note A", entry.Title)
	assert.Contains(t, entry.Titles, "alpha")
	assert.Contains(t, entry.Headings, "getting")
	assert.Contains(t, entry.Tags, "guide")
}
