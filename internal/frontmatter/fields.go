package frontmatter

import (
	"fmt"
	"strings"
)

// Alternate keys recognized for each document-level field, probed in priority
// order. The first key present wins; the configured title key (if any) is
// probed before these defaults.
var (
	titleKeys       = []string{"title", "name", "page-title"}
	iconKeys        = []string{"icon", "sticker", "banner_icon"}
	descriptionKeys = []string{"description", "summary", "excerpt"}
	authorKeys      = []string{"author", "authors", "created-by"}
	coverKeys       = []string{"cover", "image", "banner", "cover-image"}
	aliasKeys       = []string{"aliases", "alias"}
	tagKeys         = []string{"tags", "tag"}
)

// Fields is the typed view of a document's frontmatter that the page builder
// consumes. Zero values mean "not authored".
type Fields struct {
	Title       string
	Icon        string
	Description string
	Author      string
	CoverURL    string
	Aliases     []string
	Tags        []string
	Publish     *bool
}

// ExtractFields probes the raw frontmatter map for the recognized document
// fields. titleKey, when non-empty, is the user-configured frontmatter key
// that takes precedence over the default title keys.
func ExtractFields(raw map[string]any, titleKey string) Fields {
	f := Fields{}
	if len(raw) == 0 {
		return f
	}

	probe := titleKeys
	if titleKey != "" {
		probe = append([]string{titleKey}, titleKeys...)
	}
	f.Title = firstString(raw, probe)
	f.Icon = firstString(raw, iconKeys)
	f.Description = firstString(raw, descriptionKeys)
	f.Author = firstString(raw, authorKeys)
	f.CoverURL = firstString(raw, coverKeys)
	f.Aliases = stringList(raw, aliasKeys)
	f.Tags = stringList(raw, tagKeys)

	if v, ok := raw["publish"]; ok {
		if b, ok := v.(bool); ok {
			f.Publish = &b
		}
	}

	return f
}

// firstString returns the first non-empty string value among keys.
func firstString(raw map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		switch s := v.(type) {
		case string:
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		case int, int64, float64, bool:
			return fmt.Sprintf("%v", s)
		}
	}
	return ""
}

// stringList flattens a scalar or list value into a string slice.
// Comma-separated scalars and YAML sequences are both authored in the wild.
func stringList(raw map[string]any, keys []string) []string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case string:
			var out []string
			for _, part := range strings.Split(val, ",") {
				if trimmed := strings.TrimSpace(part); trimmed != "" {
					out = append(out, trimmed)
				}
			}
			return out
		case []any:
			var out []string
			for _, item := range val {
				if s, ok := item.(string); ok {
					if trimmed := strings.TrimSpace(s); trimmed != "" {
						out = append(out, trimmed)
					}
				}
			}
			return out
		}
	}
	return nil
}
