// Package index maintains the site-wide state of an export: the persisted
// manifest, the page record set with its link/backlink graph, attachment
// deduplication, and the search index. It is mutated only by the assembler's
// single task, strictly between page builds, so it needs no locking.
package index

import (
	"sort"

	"github.com/solvang/webvault/internal/export/page"
	"github.com/solvang/webvault/internal/export/search"
)

// AttachmentRecord tracks one referenced non-document file. Records are
// deduplicated by target path, so two pages embedding the same image produce
// a single copy in the output.
type AttachmentRecord struct {
	SourcePath string `json:"source_path"`
	TargetPath string `json:"target_path"`
	ShowInTree bool   `json:"show_in_tree"`
}

// SiteIndex correlates source paths, target paths, backlinks, and search
// entries across runs. Pages and attachments are keyed by target path, the
// stable identity that survives record reloads.
type SiteIndex struct {
	manifest    *SiteManifest
	pages       map[string]*page.Record
	attachments map[string]AttachmentRecord
	search      *search.Index
}

// NewSiteIndex wraps a manifest (fresh or loaded from a prior run).
func NewSiteIndex(manifest *SiteManifest) *SiteIndex {
	return &SiteIndex{
		manifest:    manifest,
		pages:       map[string]*page.Record{},
		attachments: map[string]AttachmentRecord{},
		search:      search.NewIndex(),
	}
}

// Manifest returns the manifest being maintained.
func (ix *SiteIndex) Manifest() *SiteManifest { return ix.manifest }

// Search returns the live search index.
func (ix *SiteIndex) Search() *search.Index { return ix.search }

// RestoreSearch adopts the search index persisted by the prior run, so
// unmodified pages keep their pre-tokenized entries. Entries without a
// registered page are pruned at Finalize.
func (ix *SiteIndex) RestoreSearch(prior *search.Index) {
	if prior != nil {
		ix.search = prior
	}
}

// AddPage registers or replaces a page record and its search entry. Called
// for built pages and for unmodified pages whose prior record was reloaded,
// so the backlink graph always covers the whole site.
func (ix *SiteIndex) AddPage(rec *page.Record, html []byte) {
	ix.pages[rec.TargetPath] = rec
	ix.search.Add(search.Document{
		TargetPath: rec.TargetPath,
		Title:      rec.Title,
		Aliases:    rec.Aliases,
		Headings:   rec.HeadingTexts(),
		Tags:       rec.AllTags(),
		HTML:       html,
	})
}

// AddReloadedPage registers an unmodified page's reloaded record. When the
// restored search index already holds the page's entry it is kept as is,
// skipping re-tokenization; a miss falls back to full indexing.
func (ix *SiteIndex) AddReloadedPage(rec *page.Record, html []byte) {
	if _, ok := ix.search.Get(rec.TargetPath); ok {
		ix.pages[rec.TargetPath] = rec
		return
	}
	ix.AddPage(rec, html)
}

// AddAttachment registers an attachment, reporting true when it is new and
// its payload still needs to be copied to the destination.
func (ix *SiteIndex) AddAttachment(rec AttachmentRecord) bool {
	if _, seen := ix.attachments[rec.TargetPath]; seen {
		return false
	}
	ix.attachments[rec.TargetPath] = rec
	return true
}

// RemovePage retracts a page that left the source tree, dropping its search
// entry. Backlinks pointing at it disappear at the next Finalize.
func (ix *SiteIndex) RemovePage(targetPath string) {
	delete(ix.pages, targetPath)
	ix.search.Remove(targetPath)
}

// Page looks up a registered record by target path.
func (ix *SiteIndex) Page(targetPath string) (*page.Record, bool) {
	rec, ok := ix.pages[targetPath]
	return rec, ok
}

// Pages returns all registered records sorted by target path.
func (ix *SiteIndex) Pages() []*page.Record {
	out := make([]*page.Record, 0, len(ix.pages))
	for _, rec := range ix.pages {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetPath < out[j].TargetPath })
	return out
}

// Attachments returns all registered attachments sorted by target path.
func (ix *SiteIndex) Attachments() []AttachmentRecord {
	out := make([]AttachmentRecord, 0, len(ix.attachments))
	for _, rec := range ix.attachments {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetPath < out[j].TargetPath })
	return out
}

// Finalize recomputes every backlink set from the complete link graph and
// folds the final path mapping into the manifest. Backlinks can only be
// settled here: a page's backlinks depend on every other page's outgoing
// links being known.
func (ix *SiteIndex) Finalize(sourceToTarget map[string]string) {
	for _, rec := range ix.pages {
		rec.Backlinks = rec.Backlinks[:0]
	}
	for _, rec := range ix.pages {
		for _, linked := range rec.Links {
			if target, ok := ix.pages[linked]; ok {
				target.Backlinks = append(target.Backlinks, rec.TargetPath)
			}
		}
	}
	for _, rec := range ix.pages {
		sort.Strings(rec.Backlinks)
	}

	// Restored search entries whose page left the run (deleted source,
	// narrowed include filter) must not survive serialization.
	for _, p := range ix.search.Paths() {
		if _, ok := ix.pages[p]; !ok {
			ix.search.Remove(p)
		}
	}

	ix.manifest.SetMapping(sourceToTarget)
}
