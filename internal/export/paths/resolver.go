package paths

import (
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/solvang/webvault/internal/config"
	"github.com/solvang/webvault/internal/vault"
)

// ResolutionKind classifies what a reference resolved to.
type ResolutionKind int

const (
	// KindExternal covers scheme:// URLs, data: URIs, and bare query strings:
	// not site-local, emitted as-is with no rewriting.
	KindExternal ResolutionKind = iota
	// KindAnchor is a same-document anchor link.
	KindAnchor
	// KindResolved is a site-local reference mapped through the path table.
	KindResolved
	// KindUnresolved references nothing known to the site. The original
	// reference is preserved so downstream can mark (not drop) the link.
	KindUnresolved
)

// Resolution is the outcome of resolving one in-document reference.
type Resolution struct {
	Kind   ResolutionKind
	Href   string // what to emit in the output document
	Target string // assigned target path for KindResolved, "" otherwise
	Anchor string // normalized anchor without '#', "" when absent
}

// Context identifies the page a reference appears on.
type Context struct {
	SourcePath string // vault-relative source path of the current document
	TargetPath string // assigned target path of the current page
}

// Resolver maps in-document references to final site-relative URLs through
// the Mapper's source→target table.
type Resolver struct {
	mapper      *Mapper
	anchorMode  config.AnchorLinkMode
	knownSource func(string) bool
}

// NewResolver creates a Resolver over an assigned path table. knownSource,
// when non-nil, answers "is this a known site-local path" for paths not yet
// in the table (it does not change resolution, only diagnostics upstream).
func NewResolver(mapper *Mapper, anchorMode config.AnchorLinkMode, knownSource func(string) bool) *Resolver {
	return &Resolver{mapper: mapper, anchorMode: anchorMode, knownSource: knownSource}
}

// Resolve maps one reference from the given page context.
func (r *Resolver) Resolve(ref string, from Context) Resolution {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return Resolution{Kind: KindUnresolved, Href: ref}
	}

	if isExternalRef(trimmed) {
		return Resolution{Kind: KindExternal, Href: ref}
	}

	if strings.HasPrefix(trimmed, "#") {
		anchor := NormalizeHeadingID(strings.TrimPrefix(trimmed, "#"))
		href := "#" + anchor
		if r.anchorMode == config.AnchorLinksAbsolute && from.TargetPath != "" {
			href = path.Base(from.TargetPath) + "#" + anchor
		}
		return Resolution{Kind: KindAnchor, Href: href, Anchor: anchor}
	}

	refPath, anchor := splitAnchor(trimmed)
	source, ok := r.resolveSource(refPath, from.SourcePath)
	if !ok {
		// Leave the original reference in place; the caller marks it.
		return Resolution{Kind: KindUnresolved, Href: ref, Anchor: anchor}
	}

	target, ok := r.mapper.TargetOf(source)
	if !ok {
		return Resolution{Kind: KindUnresolved, Href: ref, Anchor: anchor}
	}

	href := RelativeURL(from.TargetPath, target)
	if anchor != "" {
		href += "#" + anchor
	}
	return Resolution{Kind: KindResolved, Href: href, Target: target, Anchor: anchor}
}

// resolveSource finds the source path a reference points to. Candidates are
// probed in order: relative to the referencing document's directory, then
// vault-root relative, each with and without a .md extension; finally a
// vault-wide unique-basename match (how wikilinks name documents).
func (r *Resolver) resolveSource(refPath, fromSource string) (string, bool) {
	decoded, err := url.PathUnescape(refPath)
	if err != nil {
		decoded = refPath
	}
	decoded = strings.TrimPrefix(decoded, "./")

	fromDir := path.Dir(fromSource)
	if fromDir == "." {
		fromDir = ""
	}

	candidates := []string{
		path.Clean(path.Join(fromDir, decoded)),
		path.Clean(decoded),
	}
	for _, c := range candidates {
		for _, probe := range []string{c, c + ".md"} {
			if _, ok := r.mapper.TargetOf(probe); ok {
				return probe, true
			}
		}
	}

	// Basename lookup across the vault, deterministic by lexicographic order.
	base := strings.ToLower(decoded)
	var matches []string
	for _, source := range r.mapper.Sources() {
		name := strings.ToLower(path.Base(source))
		stem := strings.TrimSuffix(name, path.Ext(name))
		if name == base || (vault.IsDocumentPath(source) && stem == base) {
			matches = append(matches, source)
		}
	}
	if len(matches) > 0 {
		sort.Strings(matches)
		return matches[0], true
	}

	return "", false
}

func splitAnchor(ref string) (refPath, anchor string) {
	if idx := strings.IndexByte(ref, '#'); idx >= 0 {
		return ref[:idx], NormalizeHeadingID(ref[idx+1:])
	}
	return ref, ""
}

// isExternalRef reports whether a reference is not site-local: an absolute
// URL with a scheme, a data: URI, a protocol-relative URL, or a bare query.
func isExternalRef(ref string) bool {
	if strings.HasPrefix(ref, "?") || strings.HasPrefix(ref, "//") {
		return true
	}
	if strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "mailto:") {
		return true
	}
	if idx := strings.Index(ref, "://"); idx > 0 {
		return true
	}
	return false
}

// RelativeURL computes the relative URL from one target path to another.
// Both are site-relative slash paths; the result climbs out of fromTarget's
// directory as needed.
func RelativeURL(fromTarget, toTarget string) string {
	fromDir := path.Dir(fromTarget)
	if fromDir == "." || fromTarget == "" {
		return toTarget
	}

	up := strings.Count(fromDir, "/") + 1
	fromSegs := strings.Split(fromDir, "/")
	toSegs := strings.Split(toTarget, "/")

	shared := 0
	for shared < len(fromSegs) && shared < len(toSegs)-1 && fromSegs[shared] == toSegs[shared] {
		shared++
	}

	var b strings.Builder
	for i := shared; i < up; i++ {
		b.WriteString("../")
	}
	b.WriteString(strings.Join(toSegs[shared:], "/"))
	return b.String()
}
