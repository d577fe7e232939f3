package template

import (
	htmltemplate "html/template"
	"net/url"
	"sort"
	"strings"

	"github.com/solvang/webvault/internal/export/page"
)

// navNode is one directory or page in the navigation tree.
type navNode struct {
	name     string
	target   string // empty for directories
	title    string
	children map[string]*navNode
}

// BuildNavTree renders the site navigation as nested lists. Hrefs are
// site-root relative; every page links them through its computed library
// prefix, so the fragment itself stays shared across pages. Only records
// flagged for tree display appear.
func BuildNavTree(pages []*page.Record) string {
	root := &navNode{children: map[string]*navNode{}}

	for _, rec := range pages {
		if !rec.ShowInTree {
			continue
		}
		node := root
		segs := strings.Split(rec.TargetPath, "/")
		for i, seg := range segs {
			child, ok := node.children[seg]
			if !ok {
				child = &navNode{name: seg, children: map[string]*navNode{}}
				node.children[seg] = child
			}
			if i == len(segs)-1 {
				child.target = rec.TargetPath
				child.title = rec.Title
			}
			node = child
		}
	}

	if len(root.children) == 0 {
		return ""
	}

	var b strings.Builder
	writeNavList(&b, root)
	return b.String()
}

func writeNavList(b *strings.Builder, node *navNode) {
	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	// Directories before pages, then alphabetical, matching the usual
	// file-browser ordering.
	sort.Slice(names, func(i, j int) bool {
		a, c := node.children[names[i]], node.children[names[j]]
		aDir, cDir := len(a.children) > 0, len(c.children) > 0
		if aDir != cDir {
			return aDir
		}
		return names[i] < names[j]
	})

	b.WriteString("<ul>")
	for _, name := range names {
		child := node.children[name]
		b.WriteString("<li>")
		switch {
		case child.target != "":
			href := (&url.URL{Path: child.target}).EscapedPath()
			b.WriteString(`<a href="` + href + `">`)
			b.WriteString(htmltemplate.HTMLEscapeString(child.title))
			b.WriteString("</a>")
		default:
			b.WriteString("<span>" + htmltemplate.HTMLEscapeString(child.name) + "</span>")
		}
		if len(child.children) > 0 {
			writeNavList(b, child)
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
}
