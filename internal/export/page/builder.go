package page

import (
	"fmt"
	"log/slog"
	"path"
	"sort"

	"github.com/solvang/webvault/internal/config"
	"github.com/solvang/webvault/internal/export/paths"
	"github.com/solvang/webvault/internal/frontmatter"
	"github.com/solvang/webvault/internal/logfields"
	"github.com/solvang/webvault/internal/render"
	"github.com/solvang/webvault/internal/util/sets"
	"github.com/solvang/webvault/internal/vault"
)

// State is the page builder lifecycle. Transitions only move forward:
// Unloaded -> MetadataLoaded -> Built -> Saved -> Disposed. Unmodified pages
// stop at MetadataLoaded; their prior record still feeds the site index.
type State int

const (
	StateUnloaded State = iota
	StateMetadataLoaded
	StateBuilt
	StateSaved
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateMetadataLoaded:
		return "metadata_loaded"
	case StateBuilt:
		return "built"
	case StateSaved:
		return "saved"
	case StateDisposed:
		return "disposed"
	}
	return "unknown"
}

// Builder converts one vault document into a page: metadata extraction, link
// remapping, title normalization, and the content fragment the template
// assembly splices in.
type Builder struct {
	cfg      *config.Config
	source   vault.Source
	renderer render.Renderer
	resolver *paths.Resolver

	entry      vault.Entry
	targetPath string

	state         State
	record        *Record
	explicitTitle string // authored frontmatter title, short-circuits promotion
	content       []byte // serialized rewritten content fragment
}

// NewBuilder creates a page builder for one document entry.
func NewBuilder(cfg *config.Config, source vault.Source, renderer render.Renderer, resolver *paths.Resolver, entry vault.Entry, targetPath string) *Builder {
	return &Builder{
		cfg:        cfg,
		source:     source,
		renderer:   renderer,
		resolver:   resolver,
		entry:      entry,
		targetPath: targetPath,
		state:      StateUnloaded,
	}
}

// State returns the current lifecycle state.
func (b *Builder) State() State { return b.state }

// Record returns the page record; valid from MetadataLoaded onwards.
func (b *Builder) Record() *Record { return b.record }

// ContentHTML returns the rewritten content fragment; valid once Built.
func (b *Builder) ContentHTML() []byte { return b.content }

// LoadMetadata transitions Unloaded -> MetadataLoaded: adopt any prior
// record for this target path (or start empty), stamp current stat fields,
// and resolve frontmatter metadata.
func (b *Builder) LoadMetadata(prior *Record) error {
	if b.state != StateUnloaded {
		return fmt.Errorf("load metadata in state %s", b.state)
	}

	rec := prior
	if rec == nil {
		rec = &Record{}
	}
	rec.SourcePath = b.entry.SourcePath
	rec.TargetPath = b.targetPath

	// Re-stat at load time: in watch mode a file can change between
	// discovery and build, and the record should describe what gets read.
	stat := b.entry.Stat
	if fresh, err := b.source.Stat(b.entry.SourcePath); err == nil {
		stat = fresh
	}
	rec.Stat = StatBlock{
		Created:  stat.Created,
		Modified: stat.Modified,
		Size:     stat.Size,
	}
	rec.ShowInTree = true

	fields, _, err := b.source.Frontmatter(b.entry.SourcePath)
	if err != nil {
		return fmt.Errorf("load frontmatter: %w", err)
	}
	fm := frontmatter.ExtractFields(fields, b.cfg.Site.TitleProperty)

	// An explicit frontmatter title always wins. Otherwise a prior record
	// keeps its settled title (it may have been promoted from a heading on an
	// earlier build); only a fresh record falls back to the entry name.
	switch {
	case fm.Title != "":
		rec.Title = fm.Title
	case rec.Title == "":
		rec.Title = b.entry.Name
	}
	rec.Icon = fm.Icon
	rec.Description = fm.Description
	rec.Author = fm.Author
	rec.CoverURL = fm.CoverURL
	rec.Aliases = fm.Aliases
	rec.FrontmatterTags = fm.Tags
	if b.cfg.Site.BaseURL != "" {
		rec.Canonical = b.cfg.Site.BaseURL + "/" + b.targetPath
	}

	b.explicitTitle = fm.Title
	b.record = rec
	b.state = StateMetadataLoaded
	return nil
}

// Build transitions MetadataLoaded -> Built: render the document, collect
// outgoing references before rewriting, rewrite every reference through the
// resolver, extract headings and inline tags, and settle the title.
func (b *Builder) Build() error {
	if b.state != StateMetadataLoaded {
		return fmt.Errorf("build in state %s", b.state)
	}

	_, body, err := b.source.Frontmatter(b.entry.SourcePath)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	rendered, err := b.renderer.Render(b.entry.SourcePath, body)
	if err != nil {
		return fmt.Errorf("render document: %w", err)
	}

	doc, err := ParseContent(rendered)
	if err != nil {
		return err
	}

	from := paths.Context{SourcePath: b.entry.SourcePath, TargetPath: b.targetPath}

	// Collect original references first: attachment detection depends on the
	// unrewritten src attributes.
	refs := doc.CollectRefs()
	links := sets.New[string]()
	attachments := sets.New[string]()
	for _, ref := range refs.Links {
		res := b.resolver.Resolve(ref, from)
		switch res.Kind {
		case paths.KindResolved:
			links.Add(res.Target)
		case paths.KindUnresolved:
			slog.Warn("Unresolved link",
				logfields.SourcePath(b.entry.SourcePath), slog.String("ref", ref))
		}
	}
	for _, ref := range refs.Embeds {
		res := b.resolver.Resolve(ref, from)
		switch res.Kind {
		case paths.KindResolved:
			attachments.Add(res.Target)
		case paths.KindUnresolved:
			slog.Warn("Unresolved attachment reference",
				logfields.SourcePath(b.entry.SourcePath), slog.String("ref", ref))
		}
	}

	b.settleTitle(doc)

	doc.RewriteRefs(func(ref string) paths.Resolution {
		return b.resolver.Resolve(ref, from)
	})

	b.record.Headings = doc.Headings()
	b.record.InlineTags = doc.InlineTags()
	b.record.Links = links.Values()
	b.record.Attachments = attachments.Values()
	sort.Strings(b.record.Links)
	sort.Strings(b.record.Attachments)

	content, err := doc.HTML()
	if err != nil {
		return err
	}
	b.content = content

	b.record.ContentPath = ContentFragmentPath(b.targetPath)
	b.record.MetadataPath = MetadataPath(b.targetPath)

	b.state = StateBuilt
	return nil
}

func (b *Builder) settleTitle(doc *ContentDoc) {
	rules := TitleRules{
		SimilarityH1:  b.cfg.Export.TitleSimilarityH1,
		SimilarityH2:  b.cfg.Export.TitleSimilarityH2,
		HeadingWindow: b.cfg.Export.TitleHeadingWindow,
	}
	decision := ResolveTitle(b.explicitTitle, b.entry.Name, doc, rules)
	b.record.Title = decision.Title

	if decision.Removed != nil {
		doc.Remove(decision.Removed)
		switch decision.Outcome {
		case TitleFromHeading:
			slog.Debug("Leading heading promoted to page title",
				logfields.SourcePath(b.entry.SourcePath),
				slog.String("heading", decision.Heading))
		case TitleFromPosition:
			slog.Debug("Leading heading suppressed to avoid duplicate title",
				logfields.SourcePath(b.entry.SourcePath),
				slog.String("heading", decision.Heading),
				slog.String("title", decision.Title))
		}
	}
}

// MarkSaved transitions Built -> Saved once artifacts are persisted.
func (b *Builder) MarkSaved() error {
	if b.state != StateBuilt {
		return fmt.Errorf("mark saved in state %s", b.state)
	}
	b.state = StateSaved
	return nil
}

// Dispose releases the built content. With auto-dispose enabled this runs
// right after save; reusing the page afterwards costs a re-render.
func (b *Builder) Dispose() {
	b.content = nil
	b.state = StateDisposed
}

// ContentFragmentPath derives the persisted content fragment path for a
// target path ("notes/a.html" -> "notes/a-content.html").
func ContentFragmentPath(targetPath string) string {
	ext := path.Ext(targetPath)
	return targetPath[:len(targetPath)-len(ext)] + "-content" + ext
}

// MetadataPath derives the persisted page record path for a target path.
func MetadataPath(targetPath string) string {
	ext := path.Ext(targetPath)
	return targetPath[:len(targetPath)-len(ext)] + ".json"
}
