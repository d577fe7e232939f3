package page

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/solvang/webvault/internal/export/paths"
	"github.com/solvang/webvault/internal/util/sets"
)

// UnresolvedClass marks link elements whose target is not part of the export
// set, so broken links are diagnosable in the output instead of failing
// silently.
const UnresolvedClass = "is-unresolved"

// embedClasses mark transcluded blocks; headings inside them are offset so
// they don't pollute the page's top-level outline.
var embedClasses = sets.New("markdown-embed", "transclusion", "embed-block")

// ContentDoc is the owned, mutable document tree of one page's rendered
// content. It exists only during the build and is serialized into the page
// artifacts; nothing retains it afterwards.
type ContentDoc struct {
	nodes []*html.Node
}

// ParseContent parses a rendered HTML fragment into an owned tree.
func ParseContent(fragment []byte) (*ContentDoc, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(bytes.NewReader(fragment), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse rendered content: %w", err)
	}
	return &ContentDoc{nodes: nodes}, nil
}

// Refs holds the original (unrewritten) references of a document. Attachment
// detection depends on the original src attributes, so collection happens
// strictly before rewriting.
type Refs struct {
	Links  []string // a[href]
	Embeds []string // img/audio/video/source/embed src
}

var embedTags = sets.New("img", "audio", "video", "source", "embed", "track")

// CollectRefs gathers every outgoing reference in document order.
func (d *ContentDoc) CollectRefs() Refs {
	var refs Refs
	d.walk(func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch {
		case n.Data == "a":
			if href, ok := getAttr(n, "href"); ok && href != "" {
				refs.Links = append(refs.Links, href)
			}
		case embedTags.Has(n.Data):
			if src, ok := getAttr(n, "src"); ok && src != "" {
				refs.Embeds = append(refs.Embeds, src)
			}
		}
	})
	return refs
}

// RewriteRefs rewrites every link and embed reference through resolve.
// Unresolved anchors keep their original href and gain the unresolved class.
func (d *ContentDoc) RewriteRefs(resolve func(ref string) paths.Resolution) {
	d.walk(func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch {
		case n.Data == "a":
			href, ok := getAttr(n, "href")
			if !ok || href == "" {
				return
			}
			res := resolve(href)
			setAttr(n, "href", res.Href)
			if res.Kind == paths.KindUnresolved {
				addClass(n, UnresolvedClass)
			}
		case embedTags.Has(n.Data):
			src, ok := getAttr(n, "src")
			if !ok || src == "" {
				return
			}
			res := resolve(src)
			setAttr(n, "src", res.Href)
		}
	})
}

var headingLevels = map[string]int{"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6}

// Headings extracts document headings in order, stamps each element with its
// normalized anchor id, and offsets the level of headings inside embedded
// blocks by their embed depth.
func (d *ContentDoc) Headings() []Heading {
	var out []Heading
	d.walkDepth(func(n *html.Node, embedDepth int) {
		if n.Type != html.ElementNode {
			return
		}
		level, ok := headingLevels[n.Data]
		if !ok {
			return
		}
		text := strings.TrimSpace(textContent(n))
		id := paths.NormalizeHeadingID(text)
		setAttr(n, "id", id)
		out = append(out, Heading{Text: text, Level: level + embedDepth, ID: id})
	})
	return out
}

var inlineTagPattern = regexp.MustCompile(`(^|\s)#([\p{L}\p{N}][\p{L}\p{N}/_-]*)`)

// InlineTags collects #tag occurrences from visible text, deduplicated and
// sorted. Code regions are skipped since #foo there is usually not a tag.
func (d *ContentDoc) InlineTags() []string {
	found := sets.New[string]()
	d.walk(func(n *html.Node) {
		if n.Type != html.TextNode {
			return
		}
		for p := n.Parent; p != nil; p = p.Parent {
			if p.Type == html.ElementNode && (p.Data == "code" || p.Data == "pre") {
				return
			}
		}
		for _, m := range inlineTagPattern.FindAllStringSubmatch(n.Data, -1) {
			found.Add(m[2])
		}
	})
	tags := found.Values()
	sort.Strings(tags)
	return tags
}

// LeadingElements returns up to n top-level element nodes, skipping
// whitespace-only text between them.
func (d *ContentDoc) LeadingElements(n int) []*html.Node {
	var out []*html.Node
	for _, node := range d.nodes {
		if node.Type == html.TextNode && strings.TrimSpace(node.Data) == "" {
			continue
		}
		out = append(out, node)
		if len(out) == n {
			break
		}
	}
	return out
}

// Remove detaches a top-level node from the document.
func (d *ContentDoc) Remove(target *html.Node) {
	for i, node := range d.nodes {
		if node == target {
			d.nodes = append(d.nodes[:i], d.nodes[i+1:]...)
			return
		}
	}
}

// HTML serializes the document tree back to a fragment.
func (d *ContentDoc) HTML() ([]byte, error) {
	var buf bytes.Buffer
	for _, node := range d.nodes {
		if err := html.Render(&buf, node); err != nil {
			return nil, fmt.Errorf("serialize content: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// walk visits every node in document order.
func (d *ContentDoc) walk(visit func(*html.Node)) {
	d.walkDepth(func(n *html.Node, _ int) { visit(n) })
}

// walkDepth visits every node with the count of enclosing embed blocks.
func (d *ContentDoc) walkDepth(visit func(n *html.Node, embedDepth int)) {
	var rec func(n *html.Node, depth int)
	rec = func(n *html.Node, depth int) {
		visit(n, depth)
		next := depth
		if n.Type == html.ElementNode && isEmbedBlock(n) {
			next++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c, next)
		}
	}
	for _, node := range d.nodes {
		rec(node, 0)
	}
}

func isEmbedBlock(n *html.Node) bool {
	class, ok := getAttr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(class) {
		if embedClasses.Has(c) {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return b.String()
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func addClass(n *html.Node, class string) {
	existing, ok := getAttr(n, "class")
	if !ok || existing == "" {
		setAttr(n, "class", class)
		return
	}
	for _, c := range strings.Fields(existing) {
		if c == class {
			return
		}
	}
	setAttr(n, "class", existing+" "+class)
}
