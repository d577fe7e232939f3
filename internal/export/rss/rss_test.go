package rss

import (
	"strings"
	"testing"
	"time"

	"github.com/solvang/webvault/internal/export/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedPage(target, title string, modified time.Time) *page.Record {
	return &page.Record{
		TargetPath: target,
		Title:      title,
		Stat:       page.StatBlock{Modified: modified},
	}
}

func TestGenerate_RequiresBaseURL(t *testing.T) {
	_, err := Generate("notes", "", "  ", nil)
	assert.ErrorIs(t, err, ErrNoBaseURL)
}

func TestGenerate_ItemsNewestFirst(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	out, err := Generate("notes", "my vault", "https://notes.example.com/", []*page.Record{
		feedPage("old.html", "Old", older),
		feedPage("new.html", "New", newer),
	})
	require.NoError(t, err)

	feed := string(out)
	assert.Contains(t, feed, `<rss version="2.0">`)
	assert.Contains(t, feed, "<link>https://notes.example.com/new.html</link>")
	assert.Less(t,
		indexOf(t, feed, "new.html"),
		indexOf(t, feed, "old.html"),
		"newer item must come first")
	assert.Contains(t, feed, older.Format("Mon, 02 Jan 2006 15:04:05 -0700"))
}

func TestGenerate_DeterministicOnEqualTimestamps(t *testing.T) {
	when := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	pages := []*page.Record{
		feedPage("b.html", "B", when),
		feedPage("a.html", "A", when),
	}

	first, err := Generate("notes", "", "https://x.example", pages)
	require.NoError(t, err)
	second, err := Generate("notes", "", "https://x.example", []*page.Record{pages[1], pages[0]})
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	i := strings.Index(haystack, needle)
	if i < 0 {
		t.Fatalf("%q not found in feed", needle)
	}
	return i
}
