// Package template builds the shared page skeleton every exported page is
// spliced into. The skeleton is parsed once per run; feature slots (search
// box, navigation tree, graph view, theme toggle, backlinks panel, custom
// head content) are conditionally emitted from the feature snapshot.
package template

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"

	"github.com/solvang/webvault/internal/export/page"
	"github.com/solvang/webvault/internal/export/paths"
)

// Features mirrors the enabled feature slots for the run.
type Features struct {
	Search         bool
	GraphView      bool
	NavigationTree bool
	ThemeToggle    bool
	Backlinks      bool
	Tags           bool
}

// Site is the identity emitted into every page head.
type Site struct {
	Name    string
	BaseURL string
	Author  string
}

// Backlink is one entry of the rendered backlinks panel.
type Backlink struct {
	Href  string
	Title string
}

// PageTemplate renders full page documents from built page records.
type PageTemplate struct {
	tpl          *htmltemplate.Template
	site         Site
	features     Features
	libDir       string
	inlineAssets bool
	customHead   htmltemplate.HTML
	navTree      htmltemplate.HTML
}

// pageData is the execution context for one page.
type pageData struct {
	Title       string
	FullTitle   string
	SiteName    string
	Description string
	Author      string
	Canonical   string
	CoverURL    string
	Icon        string

	Features     Features
	InlineAssets bool
	LibHref      string
	CSS          htmltemplate.CSS
	CustomHead   htmltemplate.HTML
	NavTree      htmltemplate.HTML
	Backlinks    []Backlink
	Tags         []string

	Content htmltemplate.HTML
}

const skeleton = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.FullTitle}}</title>
<meta name="description" content="{{.Description}}">
{{- if .Author}}
<meta name="author" content="{{.Author}}">
{{- end}}
{{- if .Canonical}}
<link rel="canonical" href="{{.Canonical}}">
<meta property="og:url" content="{{.Canonical}}">
{{- end}}
<meta property="og:title" content="{{.Title}}">
<meta property="og:site_name" content="{{.SiteName}}">
<meta property="og:description" content="{{.Description}}">
{{- if .CoverURL}}
<meta property="og:image" content="{{.CoverURL}}">
{{- end}}
{{- if .InlineAssets}}
<style>{{.CSS}}</style>
{{- else}}
<link rel="stylesheet" href="{{.LibHref}}/site.css">
{{- end}}
{{.CustomHead}}
</head>
<body>
{{- if .Features.NavigationTree}}
<nav id="nav-tree" aria-label="Pages">{{.NavTree}}</nav>
{{- end}}
<main>
{{- if .Features.Search}}
<div id="search"><input type="search" id="search-input" placeholder="Search" data-index-href="{{.LibHref}}/search-index.json"></div>
{{- end}}
{{- if .Features.ThemeToggle}}
<button id="theme-toggle" aria-label="Toggle theme">&#9680;</button>
{{- end}}
{{- if .Icon}}
<span class="page-icon">{{.Icon}}</span>
{{- end}}
{{- if and .Features.Tags .Tags}}
<ul class="page-tags">
{{- range .Tags}}
<li class="tag">{{.}}</li>
{{- end}}
</ul>
{{- end}}
<article class="page-content">
{{.Content}}
</article>
{{- if and .Features.Backlinks .Backlinks}}
<aside id="backlinks">
<h2>Linked from</h2>
<ul>
{{- range .Backlinks}}
<li><a href="{{.Href}}">{{.Title}}</a></li>
{{- end}}
</ul>
</aside>
{{- end}}
{{- if .Features.GraphView}}
<div id="graph-view" data-graph-href="{{.LibHref}}/graph.json"></div>
{{- end}}
</main>
</body>
</html>
`

// defaultCSS is the stylesheet embedded when assets are inlined; otherwise it
// is written once to the library folder and linked.
const defaultCSS = `body{margin:0 auto;max-width:48rem;padding:1rem;font-family:system-ui,sans-serif;line-height:1.6}
nav#nav-tree ul{list-style:none;padding-left:1rem}
ul.page-tags{list-style:none;display:flex;gap:.5rem;padding:0}
ul.page-tags .tag{background:#eee;border-radius:.75rem;padding:0 .6rem}
a.is-unresolved{color:#a33;text-decoration:underline dotted}
aside#backlinks{border-top:1px solid #ddd;margin-top:2rem;padding-top:1rem}
`

// DefaultCSS returns the stylesheet written to the library folder when
// assets are linked instead of inlined.
func DefaultCSS() []byte { return []byte(defaultCSS) }

// New parses the page skeleton once for the whole run. customHead is raw
// author-provided markup included verbatim in every head; navTree is the
// pre-rendered navigation tree fragment shared by all pages.
func New(site Site, features Features, libDir string, inlineAssets bool, customHead, navTree string) (*PageTemplate, error) {
	tpl, err := htmltemplate.New("page").Parse(skeleton)
	if err != nil {
		return nil, fmt.Errorf("parse page skeleton: %w", err)
	}
	return &PageTemplate{
		tpl:          tpl,
		site:         site,
		features:     features,
		libDir:       libDir,
		inlineAssets: inlineAssets,
		customHead:   htmltemplate.HTML(customHead),
		navTree:      htmltemplate.HTML(navTree),
	}, nil
}

// Render splices a built page's content into the skeleton. backlinks come
// from the finalized site index; they are empty on the first pass over a new
// page and filled on the re-render that follows finalize when the backlinks
// panel is enabled.
func (t *PageTemplate) Render(rec *page.Record, content []byte, backlinks []Backlink) ([]byte, error) {
	description := rec.Description
	if strings.TrimSpace(description) == "" {
		description = t.site.Name + " - " + rec.Title
	}

	fullTitle := rec.Title
	if t.site.Name != "" && t.site.Name != rec.Title {
		fullTitle = rec.Title + " - " + t.site.Name
	}

	author := rec.Author
	if author == "" {
		author = t.site.Author
	}

	data := pageData{
		Title:        rec.Title,
		FullTitle:    fullTitle,
		SiteName:     t.site.Name,
		Description:  description,
		Author:       author,
		Canonical:    rec.Canonical,
		CoverURL:     rec.CoverURL,
		Icon:         rec.Icon,
		Features:     t.features,
		InlineAssets: t.inlineAssets,
		LibHref:      libHref(rec.TargetPath, t.libDir),
		CSS:          htmltemplate.CSS(defaultCSS),
		CustomHead:   t.customHead,
		NavTree:      t.navTree,
		Backlinks:    backlinks,
		Tags:         rec.AllTags(),
		Content:      htmltemplate.HTML(content),
	}

	var buf bytes.Buffer
	if err := t.tpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render page %s: %w", rec.TargetPath, err)
	}
	return buf.Bytes(), nil
}

// libHref computes the relative href from a page to the library folder.
func libHref(targetPath, libDir string) string {
	rel := paths.RelativeURL(targetPath, libDir+"/x")
	return strings.TrimSuffix(rel, "/x")
}
