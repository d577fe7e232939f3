// Package assembler orchestrates a full export run: discovery, path
// assignment, per-page builds, site index fold-in, artifact writes, and
// site-wide persistence. The whole run executes on one task; cancellation is
// cooperative and polled between pages, so partial progress is always
// retained, never rolled back.
package assembler

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/solvang/webvault/internal/config"
	"github.com/solvang/webvault/internal/events"
	"github.com/solvang/webvault/internal/export/index"
	"github.com/solvang/webvault/internal/export/page"
	"github.com/solvang/webvault/internal/export/paths"
	"github.com/solvang/webvault/internal/export/rss"
	"github.com/solvang/webvault/internal/export/search"
	"github.com/solvang/webvault/internal/export/template"
	"github.com/solvang/webvault/internal/foundation/errors"
	"github.com/solvang/webvault/internal/logfields"
	"github.com/solvang/webvault/internal/metrics"
	"github.com/solvang/webvault/internal/render"
	"github.com/solvang/webvault/internal/storage"
	"github.com/solvang/webvault/internal/vault"
	"github.com/solvang/webvault/internal/version"
)

// Options are the optional collaborators of an export run.
type Options struct {
	Recorder  metrics.Recorder
	Publisher events.Publisher
	Cache     *index.StateCache
	Force     bool // rebuild every page regardless of modification state
}

// Summary is the final report of one export run.
type Summary struct {
	RunID       string
	New         int
	Updated     int
	Unmodified  int
	Removed     int
	Failed      int
	Attachments int
	Warnings    int
	Canceled    bool
	Duration    time.Duration
}

// Outcome maps the summary onto a run outcome label.
func (s *Summary) Outcome() metrics.RunOutcome {
	switch {
	case s.Canceled:
		return metrics.RunCanceled
	case s.Failed > 0 || s.Warnings > 0:
		return metrics.RunWarning
	default:
		return metrics.RunSuccess
	}
}

// Assembler runs exports against one vault and destination.
type Assembler struct {
	cfg       *config.Config
	source    vault.Source
	renderer  render.Renderer
	store     storage.Store
	recorder  metrics.Recorder
	publisher events.Publisher
	cache     *index.StateCache
	force     bool
}

// New wires an assembler. Nil optional collaborators default to no-ops.
func New(cfg *config.Config, source vault.Source, store storage.Store, opts Options) *Assembler {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NoopPublisher{}
	}
	return &Assembler{
		cfg:       cfg,
		source:    source,
		renderer:  render.NewGoldmark(),
		store:     store,
		recorder:  opts.Recorder,
		publisher: opts.Publisher,
		cache:     opts.Cache,
		force:     opts.Force,
	}
}

// pageState carries one document through the run's phases.
type pageState struct {
	entry          vault.Entry
	target         string
	builder        *page.Builder
	kind           index.ChangeKind
	hash           string
	content        []byte
	priorBacklinks []string
}

// Run executes a full export. Only fatal-to-run conditions surface as an
// error; page and feature failures are logged and folded into the summary.
func (a *Assembler) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}

	entries, err := a.source.List()
	if err != nil {
		return nil, errors.RunError(err, "enumerate vault")
	}

	var docs []vault.Entry
	entryBySource := map[string]vault.Entry{}
	sourcePaths := make([]string, 0, len(entries))
	for _, e := range entries {
		entryBySource[e.SourcePath] = e
		sourcePaths = append(sourcePaths, e.SourcePath)
		if e.IsDocument() {
			docs = append(docs, e)
		}
	}
	if len(docs) == 0 {
		return nil, errors.RunError(nil, "no documents selected for export")
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].SourcePath < docs[j].SourcePath })

	manifest := a.loadManifest(ctx)
	summary.RunID = manifest.RunID

	mapper := paths.NewMapper(a.cfg.Export.WebStyleNames)
	mapper.SetRoot(paths.DetectExportRoot(sourcePaths))
	mapper.Restore(manifest.SourceToTarget)
	for _, e := range entries {
		mapper.Assign(e.SourcePath)
	}

	siteIndex := index.NewSiteIndex(manifest)
	siteIndex.RestoreSearch(a.loadPriorSearch(ctx))

	removedTargets := a.retractDeleted(ctx, mapper, entryBySource, siteIndex, summary)

	resolver := paths.NewResolver(mapper, a.cfg.Export.AnchorLinks, a.source.IsKnownPath)
	differ := index.NewDiffer(a.cache, a.force)

	if err := a.publisher.PublishRunStarted(events.RunStarted{
		RunID:     manifest.RunID,
		SiteName:  a.cfg.Site.Name,
		VaultPath: a.source.Root(),
	}); err != nil {
		slog.Warn("Run event not published", logfields.Error(err))
	}

	slog.Info("Export started",
		logfields.RunID(manifest.RunID),
		logfields.Site(a.cfg.Site.Name),
		slog.Int("documents", len(docs)))

	// Phase 1: classify and build pages, folding every record (built or
	// reloaded) into the site index so the link graph covers the whole site.
	states := a.buildPages(ctx, docs, mapper, resolver, siteIndex, differ, removedTargets, summary)

	// Phase 2: register referenced attachments, deduplicated by target path.
	var copyList []index.AttachmentRecord
	for _, st := range states {
		for _, target := range st.builder.Record().Attachments {
			source, ok := mapper.SourceOf(target)
			if !ok {
				continue
			}
			rec := index.AttachmentRecord{SourcePath: source, TargetPath: target}
			if siteIndex.AddAttachment(rec) {
				copyList = append(copyList, rec)
			}
		}
	}

	// Phase 3: the backlink graph is only complete once every page's
	// outgoing links are known.
	siteIndex.Finalize(mapper.Mapping())

	tpl, navTree := a.buildTemplate(siteIndex, summary)

	// Phase 4: write artifacts.
	if a.cfg.Export.Mode == config.OutputModeCombined {
		a.writeCombined(ctx, siteIndex, states, summary)
	} else {
		navChanged := a.refreshNavTree(ctx, navTree, summary)
		a.writePages(ctx, tpl, siteIndex, states, navChanged, summary)
		for _, att := range copyList {
			entry, ok := entryBySource[att.SourcePath]
			if !ok {
				continue
			}
			if err := a.store.CopyFile(ctx, entry.AbsPath, att.TargetPath); err != nil {
				slog.Warn("Attachment not copied",
					logfields.SourcePath(att.SourcePath), logfields.Error(err))
				summary.Warnings++
				continue
			}
			summary.Attachments++
		}
	}

	a.persistSiteArtifacts(ctx, siteIndex, summary)

	summary.Duration = time.Since(start)
	a.recorder.ObserveRunDuration(summary.Duration)
	a.recorder.IncRunOutcome(summary.Outcome())
	a.recorder.SetPagesTotal(len(siteIndex.Pages()))

	if err := a.publisher.PublishRunFinished(events.RunFinished{
		RunID:      manifest.RunID,
		New:        summary.New,
		Updated:    summary.Updated,
		Unmodified: summary.Unmodified,
		Failed:     summary.Failed,
		Warnings:   summary.Warnings,
		DurationMS: summary.Duration.Milliseconds(),
	}); err != nil {
		slog.Warn("Run event not published", logfields.Error(err))
	}

	slog.Info("Export finished",
		logfields.RunID(manifest.RunID),
		slog.Int("new", summary.New),
		slog.Int("updated", summary.Updated),
		slog.Int("unmodified", summary.Unmodified),
		slog.Int("removed", summary.Removed),
		slog.Int("failed", summary.Failed),
		slog.Int("warnings", summary.Warnings),
		logfields.DurationMS(float64(summary.Duration.Milliseconds())))

	return summary, nil
}

// loadManifest loads the prior manifest from the destination, starting fresh
// when absent or unreadable. A corrupt manifest is advisory: target paths
// lose their stability guarantee but the export still runs.
func (a *Assembler) loadManifest(ctx context.Context) *index.SiteManifest {
	data, err := a.store.ReadArtifact(ctx, a.libPath("manifest.json"))
	if err == nil {
		m, perr := index.ManifestFromJSON(data)
		if perr == nil {
			m.TouchRun(version.Version)
			m.SiteName = a.cfg.Site.Name
			m.VaultName = a.cfg.Site.VaultName
			m.BaseURL = a.cfg.Site.BaseURL
			m.Features = a.featureSnapshot()
			return m
		}
		slog.Warn("Prior manifest unreadable, starting fresh", logfields.Error(perr))
	} else if !storage.IsNotFound(err) {
		slog.Warn("Prior manifest not loaded", logfields.Error(err))
	}
	m := index.NewSiteManifest(a.cfg.Site.Name, a.cfg.Site.VaultName, a.cfg.Site.BaseURL, version.Version)
	m.Features = a.featureSnapshot()
	return m
}

// loadPriorSearch restores the search index persisted by the previous run,
// so unmodified pages are not re-tokenized. Nil when absent or unreadable;
// the run then rebuilds the index from scratch.
func (a *Assembler) loadPriorSearch(ctx context.Context) *search.Index {
	if !a.cfg.Features.Search {
		return nil
	}
	data, err := a.store.ReadArtifact(ctx, a.libPath("search-index.json"))
	if err != nil {
		if !storage.IsNotFound(err) {
			slog.Debug("Prior search index not read", logfields.Error(err))
		}
		return nil
	}
	ix, err := search.Load(data)
	if err != nil {
		slog.Debug("Prior search index unreadable, re-indexing", logfields.Error(err))
		return nil
	}
	return ix
}

// featureSnapshot records the run's enabled features in the manifest so a
// later run (or an inspector) can tell what the destination was built with.
func (a *Assembler) featureSnapshot() index.FeatureSnapshot {
	return index.FeatureSnapshot{
		Search:         a.cfg.Features.Search,
		GraphView:      a.cfg.Features.GraphView,
		NavigationTree: a.cfg.Features.NavigationTree,
		ThemeToggle:    a.cfg.Features.ThemeToggle,
		Backlinks:      a.cfg.Features.Backlinks,
		Tags:           a.cfg.Features.Tags,
		RSS:            a.cfg.Features.RSS,
	}
}

// retractDeleted drops mappings restored from the prior manifest whose source
// file no longer exists, removing their persisted artifacts so deleted vault
// content does not linger in the destination. Returns the retracted target
// paths so pages that linked to them can be rebuilt.
func (a *Assembler) retractDeleted(ctx context.Context, mapper *paths.Mapper, entryBySource map[string]vault.Entry, siteIndex *index.SiteIndex, summary *Summary) map[string]bool {
	removed := map[string]bool{}
	for _, source := range mapper.Sources() {
		if _, ok := entryBySource[source]; ok {
			continue
		}
		target, _ := mapper.TargetOf(source)
		mapper.Forget(source)
		siteIndex.RemovePage(target)
		if a.cache != nil {
			if err := a.cache.Forget(source); err != nil {
				slog.Debug("Source signature not forgotten", logfields.SourcePath(source), logfields.Error(err))
			}
		}
		for _, artifact := range []string{target, page.ContentFragmentPath(target), page.MetadataPath(target)} {
			if err := a.store.Remove(ctx, artifact); err != nil && !storage.IsNotFound(err) {
				slog.Warn("Stale artifact not removed",
					logfields.TargetPath(artifact), logfields.Error(err))
				summary.Warnings++
			}
		}
		slog.Info("Removed deleted page", logfields.SourcePath(source), logfields.TargetPath(target))
		removed[target] = true
		summary.Removed++
	}
	return removed
}

func (a *Assembler) buildPages(ctx context.Context, docs []vault.Entry, mapper *paths.Mapper, resolver *paths.Resolver, siteIndex *index.SiteIndex, differ *index.Differ, removedTargets map[string]bool, summary *Summary) []*pageState {
	var states []*pageState
	for _, entry := range docs {
		if ctx.Err() != nil {
			summary.Canceled = true
			break
		}

		target, _ := mapper.TargetOf(entry.SourcePath)
		prior := a.loadPriorRecord(ctx, target)

		var hash string
		if a.cache != nil {
			if raw, err := a.source.Read(entry.SourcePath); err == nil {
				hash = index.HashBytes(raw)
			}
		}

		kind := differ.Classify(entry, prior, hash)
		if kind == index.ChangeUnmodified && prior != nil && linksAny(prior.Links, removedTargets) {
			// A link target disappeared; rebuild so the reference resolves
			// to its unresolved form instead of a dangling href.
			kind = index.ChangeUpdated
		}
		st := &pageState{entry: entry, target: target, kind: kind, hash: hash}
		if prior != nil {
			st.priorBacklinks = slices.Clone(prior.Backlinks)
			sort.Strings(st.priorBacklinks)
		}

		b := page.NewBuilder(a.cfg, a.source, a.renderer, resolver, entry, target)
		if err := b.LoadMetadata(prior); err != nil {
			a.pageFailed(entry.SourcePath, err, summary)
			continue
		}
		st.builder = b

		if kind == index.ChangeUnmodified {
			// The stored fragment still feeds search tokens and a possible
			// backlink re-render. A missing fragment forces a rebuild.
			content, err := a.store.ReadArtifact(ctx, page.ContentFragmentPath(target))
			if err == nil {
				st.content = content
			} else {
				kind = index.ChangeUpdated
				st.kind = kind
			}
		}

		if kind != index.ChangeUnmodified {
			t0 := time.Now()
			if err := b.Build(); err != nil {
				a.pageFailed(entry.SourcePath, err, summary)
				continue
			}
			st.content = b.ContentHTML()
			a.recorder.ObservePageDuration(time.Since(t0))
			a.recorder.IncUnresolvedLinks(bytes.Count(st.content, []byte(page.UnresolvedClass)))
			if err := a.publisher.PublishPageBuilt(events.PageBuilt{
				RunID:      siteIndex.Manifest().RunID,
				SourcePath: entry.SourcePath,
				TargetPath: target,
				Title:      b.Record().Title,
				DurationMS: time.Since(t0).Milliseconds(),
			}); err != nil {
				slog.Debug("Page event not published", logfields.Error(err))
			}
		}

		if st.kind == index.ChangeUnmodified {
			siteIndex.AddReloadedPage(b.Record(), st.content)
		} else {
			siteIndex.AddPage(b.Record(), st.content)
		}
		states = append(states, st)

		switch st.kind {
		case index.ChangeNew:
			summary.New++
			a.recorder.IncPageOutcome(metrics.PageBuilt)
		case index.ChangeUpdated:
			summary.Updated++
			a.recorder.IncPageOutcome(metrics.PageBuilt)
		case index.ChangeUnmodified:
			summary.Unmodified++
			a.recorder.IncPageOutcome(metrics.PageUnmodified)
		}
	}
	return states
}

func linksAny(links []string, targets map[string]bool) bool {
	for _, l := range links {
		if targets[l] {
			return true
		}
	}
	return false
}

func (a *Assembler) pageFailed(sourcePath string, err error, summary *Summary) {
	cerr := errors.PageError(err, sourcePath, "page build failed")
	slog.Error(cerr.Message(), logfields.SourcePath(sourcePath), logfields.Error(err))
	summary.Failed++
	a.recorder.IncPageOutcome(metrics.PageFailed)
}

func (a *Assembler) loadPriorRecord(ctx context.Context, target string) *page.Record {
	data, err := a.store.ReadArtifact(ctx, page.MetadataPath(target))
	if err != nil {
		return nil
	}
	rec, err := page.RecordFromJSON(data)
	if err != nil {
		slog.Debug("Prior page record unreadable", logfields.TargetPath(target), logfields.Error(err))
		return nil
	}
	return rec
}

// buildTemplate constructs the shared page skeleton with its feature slots.
// A feature that fails to initialize is dropped with a warning; the run
// continues without its slot.
func (a *Assembler) buildTemplate(siteIndex *index.SiteIndex, summary *Summary) (*template.PageTemplate, string) {
	features := template.Features{
		Search:         a.cfg.Features.Search,
		GraphView:      a.cfg.Features.GraphView,
		NavigationTree: a.cfg.Features.NavigationTree,
		ThemeToggle:    a.cfg.Features.ThemeToggle,
		Backlinks:      a.cfg.Features.Backlinks,
		Tags:           a.cfg.Features.Tags,
	}

	customHead := ""
	if p := a.cfg.Features.CustomHeadPath; p != "" {
		if !filepath.IsAbs(p) {
			p = filepath.Join(a.source.Root(), p)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			cerr := errors.FeatureError(err, "custom_head", "custom head content not loaded")
			slog.Warn(cerr.Message(), logfields.Feature("custom_head"), logfields.Error(err))
			summary.Warnings++
		} else {
			customHead = string(data)
		}
	}

	navTree := ""
	if features.NavigationTree {
		navTree = template.BuildNavTree(siteIndex.Pages())
	}

	site := template.Site{Name: a.cfg.Site.Name, BaseURL: a.cfg.Site.BaseURL, Author: a.cfg.Site.Author}
	tpl, err := template.New(site, features, a.cfg.Export.LibDir, a.cfg.Export.InlineAssets, customHead, navTree)
	if err != nil {
		// The skeleton is a compile-time constant; a parse failure here means
		// a broken build, not a broken vault. Fall back to bare fragments.
		cerr := errors.FeatureError(err, "template", "page skeleton not built")
		slog.Warn(cerr.Message(), logfields.Error(err))
		summary.Warnings++
		return nil, navTree
	}
	return tpl, navTree
}

// refreshNavTree persists the shared navigation fragment and reports whether
// it differs from the previous run's. Pages inline the tree, so a change
// forces even unmodified pages through a re-render.
func (a *Assembler) refreshNavTree(ctx context.Context, navTree string, summary *Summary) bool {
	if !a.cfg.Features.NavigationTree {
		return false
	}
	prior, err := a.store.ReadArtifact(ctx, a.libPath("nav-tree.html"))
	if err == nil && string(prior) == navTree {
		return false
	}
	if err != nil && !storage.IsNotFound(err) {
		slog.Warn("Prior navigation tree not read", logfields.Error(err))
	}
	if werr := a.store.WriteArtifact(ctx, a.libPath("nav-tree.html"), []byte(navTree)); werr != nil {
		slog.Warn("Navigation tree not persisted", logfields.Error(werr))
		summary.Warnings++
	}
	return true
}

// writePages persists the three per-page artifacts for every page that needs
// them. Unmodified pages are rewritten only when their backlink set or the
// shared navigation tree changed, keeping unchanged re-exports byte-identical.
func (a *Assembler) writePages(ctx context.Context, tpl *template.PageTemplate, siteIndex *index.SiteIndex, states []*pageState, navChanged bool, summary *Summary) {
	for _, st := range states {
		if ctx.Err() != nil {
			summary.Canceled = true
			return
		}

		rec := st.builder.Record()
		sort.Strings(rec.Backlinks)
		backlinksChanged := !slices.Equal(st.priorBacklinks, rec.Backlinks)

		if st.kind == index.ChangeUnmodified && !backlinksChanged && !navChanged {
			if ok, _ := a.store.Exists(ctx, st.target); ok {
				a.recordSignature(st)
				continue
			}
		}

		content := st.content

		full := content
		if tpl != nil {
			var backlinks []template.Backlink
			for _, back := range rec.Backlinks {
				title := back
				if backRec, ok := siteIndex.Page(back); ok {
					title = backRec.Title
				}
				backlinks = append(backlinks, template.Backlink{
					Href:  paths.RelativeURL(st.target, back),
					Title: title,
				})
			}
			rendered, err := tpl.Render(rec, content, backlinks)
			if err != nil {
				a.pageFailed(rec.SourcePath, err, summary)
				continue
			}
			full = rendered
		}

		recJSON, err := rec.ToJSON()
		if err != nil {
			a.pageFailed(rec.SourcePath, err, summary)
			continue
		}

		if err := a.writeAll(ctx, map[string][]byte{
			st.target:                            full,
			page.ContentFragmentPath(st.target): content,
			page.MetadataPath(st.target):        recJSON,
		}); err != nil {
			a.pageFailed(rec.SourcePath, err, summary)
			continue
		}

		if st.builder.State() == page.StateBuilt {
			if err := st.builder.MarkSaved(); err == nil && a.cfg.Export.AutoDisposePages {
				st.builder.Dispose()
			}
		}
		a.recordSignature(st)
	}
}

func (a *Assembler) writeAll(ctx context.Context, artifacts map[string][]byte) error {
	targets := make([]string, 0, len(artifacts))
	for t := range artifacts {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	for _, t := range targets {
		if err := a.store.WriteArtifact(ctx, t, artifacts[t]); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assembler) recordSignature(st *pageState) {
	if a.cache == nil || st.hash == "" {
		return
	}
	err := a.cache.Record(st.entry.SourcePath, index.Signature{
		Hash:    st.hash,
		ModTime: st.entry.Stat.Modified,
		Size:    st.entry.Stat.Size,
	})
	if err != nil {
		slog.Debug("Source signature not recorded",
			logfields.SourcePath(st.entry.SourcePath), logfields.Error(err))
	}
}

// persistSiteArtifacts writes the site-wide outputs under the library folder.
func (a *Assembler) persistSiteArtifacts(ctx context.Context, siteIndex *index.SiteIndex, summary *Summary) {
	write := func(name string, data []byte, what string) {
		if err := a.store.WriteArtifact(ctx, a.libPath(name), data); err != nil {
			slog.Warn(what+" not persisted", logfields.Error(err))
			summary.Warnings++
		}
	}

	if data, err := siteIndex.Manifest().ToJSON(); err == nil {
		write("manifest.json", data, "Manifest")
	} else {
		slog.Warn("Manifest not serialized", logfields.Error(err))
		summary.Warnings++
	}

	if a.cfg.Features.Search {
		if data, err := siteIndex.Search().Serialize(); err == nil {
			write("search-index.json", data, "Search index")
		} else {
			slog.Warn("Search index not serialized", logfields.Error(err))
			summary.Warnings++
		}
	}

	if a.cfg.Features.GraphView {
		if data, err := siteIndex.GraphJSON(); err == nil {
			write("graph.json", data, "Link graph")
		} else {
			slog.Warn("Link graph not serialized", logfields.Error(err))
			summary.Warnings++
		}
	}

	if a.cfg.Features.RSS {
		data, err := rss.Generate(a.cfg.Site.Name, a.cfg.Site.Description, a.cfg.Site.BaseURL, siteIndex.Pages())
		switch {
		case err == nil:
			write("feed.xml", data, "RSS feed")
		case err == rss.ErrNoBaseURL:
			adv := errors.Advisory(errors.CategoryConfig, "RSS feed skipped: no site base URL configured")
			slog.Warn(adv.Message())
			summary.Warnings++
		default:
			slog.Warn("RSS feed not generated", logfields.Error(err))
			summary.Warnings++
		}
	}

	if !a.cfg.Export.InlineAssets && a.cfg.Export.Mode != config.OutputModeCombined {
		write("site.css", template.DefaultCSS(), "Stylesheet")
	}
}

func (a *Assembler) libPath(name string) string {
	return a.cfg.Export.LibDir + "/" + name
}
