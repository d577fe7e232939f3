package paths

import (
	"testing"

	"github.com/solvang/webvault/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"My Note.md":      "my-note.md",
		"Résumé 2024.md":  "resume-2024.md",
		"Hello, World!":   "hello-world",
		"already-slugged": "already-slugged",
		"¯\\_(ツ)_/¯":      "untitled",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestNormalizeHeadingID_StripsWhitespaceAndColons(t *testing.T) {
	assert.Equal(t, "MyHeadingIntro", NormalizeHeadingID("My Heading: Intro"))
	assert.Equal(t, "Setup", NormalizeHeadingID(" Setup "))
}

func TestDetectExportRoot(t *testing.T) {
	assert.Equal(t, "notes", DetectExportRoot([]string{"notes/a.md", "notes/deep/b.md"}))
	assert.Equal(t, "", DetectExportRoot([]string{"notes/a.md", "other/b.md"}))
	// Single-file exports use the file's parent.
	assert.Equal(t, "notes/deep", DetectExportRoot([]string{"notes/deep/b.md"}))
	assert.Equal(t, "", DetectExportRoot(nil))
}

func TestMapper_AssignDocumentsAndAttachments(t *testing.T) {
	m := NewMapper(false)
	assert.Equal(t, "notes/A.html", m.Assign("notes/A.md"))
	assert.Equal(t, "img/photo.png", m.Assign("img/photo.png"))
	// Idempotent.
	assert.Equal(t, "notes/A.html", m.Assign("notes/A.md"))
}

func TestMapper_WebStyleNames(t *testing.T) {
	m := NewMapper(true)
	assert.Equal(t, "my-notes/getting-started.html", m.Assign("My Notes/Getting Started.md"))
	assert.Equal(t, "my-notes/some-photo.png", m.Assign("My Notes/Some Photo.PNG"))
}

func TestMapper_RootStripped(t *testing.T) {
	m := NewMapper(false)
	m.SetRoot("notes")
	assert.Equal(t, "A.html", m.Assign("notes/A.md"))
}

func TestMapper_Bijection_CollisionsSuffixed(t *testing.T) {
	m := NewMapper(true)
	first := m.Assign("A B.md")
	second := m.Assign("a-b.md")
	assert.Equal(t, "a-b.html", first)
	assert.Equal(t, "a-b-1.html", second)
	assert.NotEqual(t, first, second)

	src, ok := m.SourceOf("a-b.html")
	require.True(t, ok)
	assert.Equal(t, "A B.md", src)
}

func TestMapper_RestoreKeepsPriorAssignments(t *testing.T) {
	m := NewMapper(false)
	m.Restore(map[string]string{"notes/A.md": "notes/A.html"})
	assert.Equal(t, "notes/A.html", m.Assign("notes/A.md"))
}

func newTestResolver(t *testing.T, sources ...string) (*Mapper, *Resolver) {
	t.Helper()
	m := NewMapper(false)
	for _, s := range sources {
		m.Assign(s)
	}
	return m, NewResolver(m, config.AnchorLinksRelative, nil)
}

func TestResolve_ExternalPassThrough(t *testing.T) {
	_, r := newTestResolver(t, "A.md")
	from := Context{SourcePath: "A.md", TargetPath: "A.html"}

	for _, ref := range []string{
		"https://example.com/page",
		"data:image/png;base64,AAAA",
		"mailto:someone@example.com",
		"?query=only",
		"//cdn.example.com/lib.js",
	} {
		res := r.Resolve(ref, from)
		assert.Equal(t, KindExternal, res.Kind, "ref %q", ref)
		assert.Equal(t, ref, res.Href, "ref %q", ref)
	}
}

func TestResolve_AnchorOnly(t *testing.T) {
	_, r := newTestResolver(t, "A.md")
	res := r.Resolve("#My Heading: Intro", Context{SourcePath: "A.md", TargetPath: "A.html"})

	assert.Equal(t, KindAnchor, res.Kind)
	assert.Equal(t, "#MyHeadingIntro", res.Href)
	assert.Equal(t, "MyHeadingIntro", res.Anchor)
}

func TestResolve_AnchorAbsoluteMode(t *testing.T) {
	m := NewMapper(false)
	m.Assign("A.md")
	r := NewResolver(m, config.AnchorLinksAbsolute, nil)

	res := r.Resolve("#Setup", Context{SourcePath: "A.md", TargetPath: "A.html"})
	assert.Equal(t, "A.html#Setup", res.Href)
}

func TestResolve_RelativeDocumentLink(t *testing.T) {
	_, r := newTestResolver(t, "notes/A.md", "notes/B.md")
	res := r.Resolve("B.md", Context{SourcePath: "notes/A.md", TargetPath: "notes/A.html"})

	require.Equal(t, KindResolved, res.Kind)
	assert.Equal(t, "B.html", res.Href)
	assert.Equal(t, "notes/B.html", res.Target)
}

func TestResolve_ExtensionlessWikilinkTarget(t *testing.T) {
	_, r := newTestResolver(t, "notes/A.md", "other/Deep Note.md")
	res := r.Resolve("Deep Note", Context{SourcePath: "notes/A.md", TargetPath: "notes/A.html"})

	require.Equal(t, KindResolved, res.Kind)
	assert.Equal(t, "../other/Deep Note.html", res.Href)
}

func TestResolve_LinkWithAnchor(t *testing.T) {
	_, r := newTestResolver(t, "A.md", "B.md")
	res := r.Resolve("B.md#Some Heading", Context{SourcePath: "A.md", TargetPath: "A.html"})

	require.Equal(t, KindResolved, res.Kind)
	assert.Equal(t, "B.html#SomeHeading", res.Href)
}

func TestResolve_EncodedSpaces(t *testing.T) {
	_, r := newTestResolver(t, "A.md", "My Note.md")
	res := r.Resolve("My%20Note.md", Context{SourcePath: "A.md", TargetPath: "A.html"})

	require.Equal(t, KindResolved, res.Kind)
	assert.Equal(t, "My Note.html", res.Target)
}

func TestResolve_Unresolved_PreservesOriginal(t *testing.T) {
	_, r := newTestResolver(t, "A.md")
	res := r.Resolve("missing.md", Context{SourcePath: "A.md", TargetPath: "A.html"})

	assert.Equal(t, KindUnresolved, res.Kind)
	assert.Equal(t, "missing.md", res.Href)
}

func TestRelativeURL(t *testing.T) {
	assert.Equal(t, "b.html", RelativeURL("notes/a.html", "notes/b.html"))
	assert.Equal(t, "../c.html", RelativeURL("notes/a.html", "c.html"))
	assert.Equal(t, "notes/b.html", RelativeURL("a.html", "notes/b.html"))
	assert.Equal(t, "../c.html", RelativeURL("x/y/a.html", "x/c.html"))
}
