package search

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Entry is one page's contribution to the client-side search index. All
// fields are pre-tokenized so the browser runtime only has to match.
type Entry struct {
	Path     string   `json:"path"`
	Title    string   `json:"title"`
	Tokens   []string `json:"tokens"`             // full visible text
	Titles   []string `json:"titles,omitempty"`   // title + aliases
	Headings []string `json:"headings,omitempty"` // heading text
	Tags     []string `json:"tags,omitempty"`
}

// Index is the site-wide full-text search index, keyed by target path.
// Adding a page replaces any prior entry for the same path (rebuild
// semantics); removing retracts a deleted page.
type Index struct {
	entries map[string]Entry
}

// NewIndex creates an empty search index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]Entry)}
}

// Document is the untokenized per-page input to indexing.
type Document struct {
	TargetPath string
	Title      string
	Aliases    []string
	Headings   []string
	Tags       []string
	HTML       []byte // rendered content fragment
}

// Add tokenizes a page and inserts (or replaces) its entry.
func (ix *Index) Add(doc Document) {
	entry := Entry{
		Path:     doc.TargetPath,
		Title:    doc.Title,
		Tokens:   Tokenize(VisibleText(doc.HTML)),
		Titles:   TokenizeAll(append([]string{doc.Title}, doc.Aliases...)),
		Headings: TokenizeAll(doc.Headings),
		Tags:     TokenizeAll(doc.Tags),
	}
	ix.entries[doc.TargetPath] = entry
}

// AddEntry inserts a pre-tokenized entry, replacing any prior entry for the
// same path.
func (ix *Index) AddEntry(entry Entry) {
	ix.entries[entry.Path] = entry
}

// Remove retracts a page by target path.
func (ix *Index) Remove(targetPath string) {
	delete(ix.entries, targetPath)
}

// Get returns the entry for a target path.
func (ix *Index) Get(targetPath string) (Entry, bool) {
	e, ok := ix.entries[targetPath]
	return e, ok
}

// Len returns the number of indexed pages.
func (ix *Index) Len() int { return len(ix.entries) }

// Paths returns the indexed target paths, sorted.
func (ix *Index) Paths() []string {
	out := make([]string, 0, len(ix.entries))
	for p := range ix.entries {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Serialize renders the index as the persisted JSON blob. Entries are sorted
// by path so repeated exports of an unchanged vault are byte-identical.
func (ix *Index) Serialize() ([]byte, error) {
	paths := make([]string, 0, len(ix.entries))
	for p := range ix.entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	ordered := make([]Entry, 0, len(paths))
	for _, p := range paths {
		ordered = append(ordered, ix.entries[p])
	}

	data, err := json.MarshalIndent(struct {
		Version int     `json:"version"`
		Entries []Entry `json:"entries"`
	}{Version: 1, Entries: ordered}, "", " ")
	if err != nil {
		return nil, fmt.Errorf("marshal search index: %w", err)
	}
	return data, nil
}

// Load restores an index from a persisted blob.
func Load(data []byte) (*Index, error) {
	var blob struct {
		Version int     `json:"version"`
		Entries []Entry `json:"entries"`
	}
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("unmarshal search index: %w", err)
	}
	ix := NewIndex()
	for _, e := range blob.Entries {
		ix.AddEntry(e)
	}
	return ix, nil
}
