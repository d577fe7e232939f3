package page

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Heading is one extracted document heading in body order.
type Heading struct {
	Text  string `json:"text"`
	Level int    `json:"level"` // element nesting level, embeds offset deeper
	ID    string `json:"id"`    // normalized anchor id
}

// StatBlock records the source file's structural stat fields.
type StatBlock struct {
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	Size     int64     `json:"size"`
}

// Record is the persisted structural metadata of one exported page. It is
// keyed by target path; Links/Backlinks hold target paths (not object
// references) since records are reloaded across runs.
type Record struct {
	SourcePath string    `json:"source_path"`
	TargetPath string    `json:"target_path"`
	Stat       StatBlock `json:"stat"`

	// Content-addressable sub-paths used in split-output mode.
	ContentPath  string `json:"content_path,omitempty"`
	MetadataPath string `json:"metadata_path,omitempty"`

	Title       string `json:"title"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
	Canonical   string `json:"canonical_url,omitempty"`

	ShowInTree bool `json:"show_in_tree"`

	Headings []Heading `json:"headings,omitempty"`

	// Links and Attachments are authored (outgoing); Backlinks are derived
	// from the global link graph at finalize and never hand-maintained.
	Links       []string `json:"links,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
	Backlinks   []string `json:"backlinks,omitempty"`

	Aliases         []string `json:"aliases,omitempty"`
	InlineTags      []string `json:"inline_tags,omitempty"`
	FrontmatterTags []string `json:"frontmatter_tags,omitempty"`
}

// AllTags merges frontmatter and inline tags, deduplicated, sorted.
func (r *Record) AllTags() []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range append(append([]string{}, r.FrontmatterTags...), r.InlineTags...) {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// HeadingTexts returns the heading texts in body order.
func (r *Record) HeadingTexts() []string {
	out := make([]string, 0, len(r.Headings))
	for _, h := range r.Headings {
		out = append(out, h.Text)
	}
	return out
}

// ToJSON serializes the record with stable formatting. Link lists are sorted
// first so repeated exports of an unchanged vault are byte-identical.
func (r *Record) ToJSON() ([]byte, error) {
	sort.Strings(r.Links)
	sort.Strings(r.Attachments)
	sort.Strings(r.Backlinks)
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal page record %s: %w", r.TargetPath, err)
	}
	return data, nil
}

// RecordFromJSON deserializes a persisted page record.
func RecordFromJSON(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal page record: %w", err)
	}
	return &r, nil
}
