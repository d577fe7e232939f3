package template

import (
	"strings"
	"testing"

	"github.com/solvang/webvault/internal/export/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTemplate(t *testing.T, features Features, inline bool, customHead, navTree string) *PageTemplate {
	t.Helper()
	site := Site{Name: "My Notes", BaseURL: "https://notes.example.com", Author: "Ada"}
	tpl, err := New(site, features, "lib", inline, customHead, navTree)
	require.NoError(t, err)
	return tpl
}

func TestRender_HeadAssembly(t *testing.T) {
	tpl := testTemplate(t, Features{}, false, "", "")
	rec := &page.Record{
		TargetPath:  "notes/a.html",
		Title:       "Alpha",
		Description: "About alpha",
		Canonical:   "https://notes.example.com/notes/a.html",
		CoverURL:    "https://notes.example.com/lib/cover.png",
	}

	out, err := tpl.Render(rec, []byte("<p>body</p>"), nil)
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, "<title>Alpha - My Notes</title>")
	assert.Contains(t, html, `<meta name="description" content="About alpha">`)
	assert.Contains(t, html, `<link rel="canonical" href="https://notes.example.com/notes/a.html">`)
	assert.Contains(t, html, `<meta property="og:title" content="Alpha">`)
	assert.Contains(t, html, `<meta property="og:image" content="https://notes.example.com/lib/cover.png">`)
	assert.Contains(t, html, `<meta name="author" content="Ada">`)
	assert.Contains(t, html, `href="../lib/site.css"`, "nested page must climb to the library folder")
	assert.Contains(t, html, "<p>body</p>")
}

func TestRender_DescriptionFallback(t *testing.T) {
	tpl := testTemplate(t, Features{}, false, "", "")
	rec := &page.Record{TargetPath: "a.html", Title: "Alpha"}

	out, err := tpl.Render(rec, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), `<meta name="description" content="My Notes - Alpha">`)
}

func TestRender_FeatureSlots(t *testing.T) {
	all := Features{Search: true, GraphView: true, NavigationTree: true, ThemeToggle: true, Backlinks: true, Tags: true}
	tpl := testTemplate(t, all, false, "<script>init()</script>", "<ul><li>x</li></ul>")
	rec := &page.Record{TargetPath: "a.html", Title: "Alpha", FrontmatterTags: []string{"journal"}, InlineTags: []string{"draft"}}

	out, err := tpl.Render(rec, nil, []Backlink{{Href: "b.html", Title: "Beta"}})
	require.NoError(t, err)
	html := string(out)

	assert.Contains(t, html, `id="search-input"`)
	assert.Contains(t, html, `id="theme-toggle"`)
	assert.Contains(t, html, `id="graph-view" data-graph-href="lib/graph.json"`)
	assert.Contains(t, html, `<nav id="nav-tree"`)
	assert.Contains(t, html, "<ul><li>x</li></ul>", "nav tree fragment included verbatim")
	assert.Contains(t, html, "<script>init()</script>", "custom head included verbatim")
	assert.Contains(t, html, `<a href="b.html">Beta</a>`)
	assert.Contains(t, html, `<li class="tag">draft</li>`)
	assert.Contains(t, html, `<li class="tag">journal</li>`)

	none, err := testTemplate(t, Features{}, false, "", "").Render(rec, nil, nil)
	require.NoError(t, err)
	for _, slot := range []string{"search-input", "theme-toggle", "graph-view", "nav-tree", "backlinks", "page-tags"} {
		assert.NotContains(t, string(none), slot)
	}
}

func TestRender_InlineAssets(t *testing.T) {
	tpl := testTemplate(t, Features{}, true, "", "")
	out, err := tpl.Render(&page.Record{TargetPath: "a.html", Title: "A"}, nil, nil)
	require.NoError(t, err)

	assert.Contains(t, string(out), "<style>")
	assert.NotContains(t, string(out), "site.css")
}

func TestBuildNavTree(t *testing.T) {
	pages := []*page.Record{
		{TargetPath: "zeta.html", Title: "Zeta", ShowInTree: true},
		{TargetPath: "guides/setup.html", Title: "Setup", ShowInTree: true},
		{TargetPath: "hidden.html", Title: "Hidden", ShowInTree: false},
	}

	tree := BuildNavTree(pages)

	assert.Contains(t, tree, `<a href="zeta.html">Zeta</a>`)
	assert.Contains(t, tree, "<span>guides</span>")
	assert.Contains(t, tree, `<a href="guides/setup.html">Setup</a>`)
	assert.NotContains(t, tree, "Hidden")
	assert.Less(t, strings.Index(tree, "guides"), strings.Index(tree, "zeta.html"),
		"directories sort before pages")
}

func TestBuildNavTree_Empty(t *testing.T) {
	assert.Empty(t, BuildNavTree(nil))
}
