package index

import (
	"github.com/solvang/webvault/internal/export/page"
	"github.com/solvang/webvault/internal/vault"
)

// ChangeKind classifies a source file against the prior run.
type ChangeKind int

const (
	// ChangeNew means no prior record exists for the source path.
	ChangeNew ChangeKind = iota
	// ChangeUpdated means the source changed (or the rebuild was forced) and
	// the page must be rebuilt.
	ChangeUpdated
	// ChangeUnmodified means the page can skip the build step. Its metadata
	// is still loaded so other pages can link to it and show its backlinks.
	ChangeUnmodified
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeNew:
		return "new"
	case ChangeUpdated:
		return "updated"
	case ChangeUnmodified:
		return "unmodified"
	default:
		return "unknown"
	}
}

// Differ classifies candidate source files for an incremental run. The prior
// page records give the mtime baseline; the state cache, when present,
// settles mtime ties with a content hash.
type Differ struct {
	cache *StateCache // nil disables hash checks
	force bool
}

// NewDiffer builds a classifier. cache may be nil; force marks every
// candidate with a prior record as updated.
func NewDiffer(cache *StateCache, force bool) *Differ {
	return &Differ{cache: cache, force: force}
}

// Classify decides whether entry needs a rebuild. hash is the fingerprint of
// the current source bytes; pass "" to skip the hash comparison.
func (d *Differ) Classify(entry vault.Entry, prior *page.Record, hash string) ChangeKind {
	if prior == nil {
		return ChangeNew
	}
	if d.force {
		return ChangeUpdated
	}
	if entry.Stat.Modified.After(prior.Stat.Modified) {
		return ChangeUpdated
	}

	// mtime says unchanged. Tools that restore or copy vaults preserve
	// timestamps while changing content, so trust the hash when we have one.
	if d.cache != nil && hash != "" {
		sig, ok, err := d.cache.Lookup(entry.SourcePath)
		if err == nil && ok && sig.Hash != hash {
			return ChangeUpdated
		}
	}

	return ChangeUnmodified
}
