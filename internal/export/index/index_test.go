package index

import (
	"testing"
	"time"

	"github.com/solvang/webvault/internal/export/page"
	"github.com/solvang/webvault/internal/export/search"
	"github.com/solvang/webvault/internal/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageRec(target string, links ...string) *page.Record {
	return &page.Record{
		SourcePath: target + ".md",
		TargetPath: target,
		Title:      target,
		Links:      links,
	}
}

func TestFinalize_BacklinkConsistency(t *testing.T) {
	ix := NewSiteIndex(NewSiteManifest("notes", "vault", "", "test"))
	ix.AddPage(pageRec("A.html", "B.html"), nil)
	ix.AddPage(pageRec("B.html", "C.html"), nil)
	ix.AddPage(pageRec("C.html", "A.html", "B.html"), nil)

	ix.Finalize(map[string]string{
		"A.md": "A.html", "B.md": "B.html", "C.md": "C.html",
	})

	for _, a := range ix.Pages() {
		for _, linked := range a.Links {
			b, ok := ix.Page(linked)
			require.True(t, ok)
			assert.Contains(t, b.Backlinks, a.TargetPath,
				"%s links %s, so %s must backlink %s", a.TargetPath, linked, linked, a.TargetPath)
		}
		for _, back := range a.Backlinks {
			b, ok := ix.Page(back)
			require.True(t, ok)
			assert.Contains(t, b.Links, a.TargetPath)
		}
	}
}

func TestFinalize_RecomputesAfterLinkChange(t *testing.T) {
	ix := NewSiteIndex(NewSiteManifest("notes", "vault", "", "test"))
	ix.AddPage(pageRec("A.html", "B.html"), nil)
	ix.AddPage(pageRec("B.html"), nil)
	ix.Finalize(map[string]string{"A.md": "A.html", "B.md": "B.html"})

	b, _ := ix.Page("B.html")
	require.Equal(t, []string{"A.html"}, b.Backlinks)

	// A stops linking to B; the stale backlink must disappear.
	a, _ := ix.Page("A.html")
	a.Links = nil
	ix.Finalize(map[string]string{"A.md": "A.html", "B.md": "B.html"})
	assert.Empty(t, b.Backlinks)
}

func TestFinalize_LinksToUnknownTargetsIgnored(t *testing.T) {
	ix := NewSiteIndex(NewSiteManifest("notes", "", "", "test"))
	ix.AddPage(pageRec("A.html", "gone.html"), nil)
	ix.Finalize(map[string]string{"A.md": "A.html"})

	a, _ := ix.Page("A.html")
	assert.Empty(t, a.Backlinks)
}

func TestAddAttachment_DedupByTarget(t *testing.T) {
	ix := NewSiteIndex(NewSiteManifest("notes", "", "", "test"))

	first := ix.AddAttachment(AttachmentRecord{SourcePath: "img/C.png", TargetPath: "img/C.png"})
	second := ix.AddAttachment(AttachmentRecord{SourcePath: "img/C.png", TargetPath: "img/C.png"})

	assert.True(t, first, "first reference schedules a copy")
	assert.False(t, second, "second reference must not schedule another copy")
	assert.Len(t, ix.Attachments(), 1)
}

func TestRemovePage_DropsSearchEntry(t *testing.T) {
	ix := NewSiteIndex(NewSiteManifest("notes", "", "", "test"))
	ix.AddPage(pageRec("A.html"), []byte("<p>hello world</p>"))
	require.Equal(t, 1, ix.Search().Len())

	ix.RemovePage("A.html")
	assert.Equal(t, 0, ix.Search().Len())
	_, ok := ix.Page("A.html")
	assert.False(t, ok)
}

func TestRestoreSearch_ReusesEntriesAndPrunesOrphans(t *testing.T) {
	first := NewSiteIndex(NewSiteManifest("notes", "", "", "test"))
	first.AddPage(pageRec("A.html"), []byte("<p>alpha text</p>"))
	first.AddPage(pageRec("B.html"), []byte("<p>beta text</p>"))
	blob, err := first.Search().Serialize()
	require.NoError(t, err)

	prior, err := search.Load(blob)
	require.NoError(t, err)

	// A new run where A is unmodified and B's source is gone. The reloaded
	// page keeps its tokenized entry without seeing the rendered fragment.
	second := NewSiteIndex(NewSiteManifest("notes", "", "", "test"))
	second.RestoreSearch(prior)
	second.AddReloadedPage(pageRec("A.html"), nil)
	second.Finalize(map[string]string{"A.md": "A.html"})

	require.Equal(t, 1, second.Search().Len())
	entry, ok := second.Search().Get("A.html")
	require.True(t, ok)
	assert.Contains(t, entry.Tokens, "alpha")
	_, ok = second.Search().Get("B.html")
	assert.False(t, ok, "entry for the retracted page must be pruned")
}

func TestManifest_RoundTripAndVersionGuard(t *testing.T) {
	m := NewSiteManifest("notes", "vault", "https://x.example", "0.1.0")
	m.SetMapping(map[string]string{"b.md": "b.html", "a.md": "a.html"})

	data, err := m.ToJSON()
	require.NoError(t, err)

	loaded, err := ManifestFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, m.SourceToTarget, loaded.SourceToTarget)
	assert.Equal(t, []string{"a.html", "b.html"}, loaded.Targets)
	assert.Equal(t, m.RunID, loaded.RunID)

	loaded.Version = ManifestVersion + 1
	newer, err := loaded.ToJSON()
	require.NoError(t, err)
	_, err = ManifestFromJSON(newer)
	assert.Error(t, err)
}

func TestDiffer_Classify(t *testing.T) {
	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	entry := vault.Entry{
		Kind:       vault.KindDocument,
		SourcePath: "a.md",
		Stat:       vault.Stat{Modified: base, Size: 10},
	}
	prior := &page.Record{
		SourcePath: "a.md",
		TargetPath: "a.html",
		Stat:       page.StatBlock{Modified: base, Size: 10},
	}

	d := NewDiffer(nil, false)
	assert.Equal(t, ChangeNew, d.Classify(entry, nil, ""))
	assert.Equal(t, ChangeUnmodified, d.Classify(entry, prior, ""))

	touched := entry
	touched.Stat.Modified = base.Add(time.Minute)
	assert.Equal(t, ChangeUpdated, d.Classify(touched, prior, ""))

	forced := NewDiffer(nil, true)
	assert.Equal(t, ChangeUpdated, forced.Classify(entry, prior, ""))
	assert.Equal(t, ChangeNew, forced.Classify(entry, nil, ""))
}

func TestDiffer_HashSettlesMtimeTies(t *testing.T) {
	cache, err := OpenStateCache(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	base := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	entry := vault.Entry{Kind: vault.KindDocument, SourcePath: "a.md", Stat: vault.Stat{Modified: base}}
	prior := &page.Record{SourcePath: "a.md", TargetPath: "a.html", Stat: page.StatBlock{Modified: base}}

	oldHash := HashBytes([]byte("old content"))
	require.NoError(t, cache.Record("a.md", Signature{Hash: oldHash, ModTime: base, Size: 11}))

	d := NewDiffer(cache, false)
	assert.Equal(t, ChangeUnmodified, d.Classify(entry, prior, oldHash))
	assert.Equal(t, ChangeUpdated, d.Classify(entry, prior, HashBytes([]byte("new content"))),
		"same mtime but different content hash must rebuild")
}

func TestStateCache_RecordLookupForget(t *testing.T) {
	cache, err := OpenStateCache(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	_, found, err := cache.Lookup("a.md")
	require.NoError(t, err)
	assert.False(t, found)

	sig := Signature{Hash: HashBytes([]byte("x")), ModTime: time.Now(), Size: 1}
	require.NoError(t, cache.Record("a.md", sig))
	require.NoError(t, cache.Record("a.md", Signature{Hash: "updated", ModTime: sig.ModTime, Size: 2}))

	got, found, err := cache.Lookup("a.md")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "updated", got.Hash)
	assert.Equal(t, int64(2), got.Size)

	require.NoError(t, cache.Forget("a.md"))
	_, found, err = cache.Lookup("a.md")
	require.NoError(t, err)
	assert.False(t, found)
}
