package paths

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/solvang/webvault/internal/vault"
)

// Mapper owns the canonical source→target path table for one export
// destination. Target paths are derived deterministically from source paths
// and, once assigned, stay stable across re-exports; the mapping is bijective
// per export root.
type Mapper struct {
	root     string // export root as a source-path prefix, "" for the vault root
	webStyle bool

	sourceToTarget map[string]string
	targetToSource map[string]string
}

// NewMapper creates an empty path table.
func NewMapper(webStyle bool) *Mapper {
	return &Mapper{
		webStyle:       webStyle,
		sourceToTarget: make(map[string]string),
		targetToSource: make(map[string]string),
	}
}

// DetectExportRoot returns the deepest common ancestor directory of the
// selected source paths. A single file exports from its parent directory;
// no files yields the vault root.
func DetectExportRoot(sourcePaths []string) string {
	if len(sourcePaths) == 0 {
		return ""
	}

	common := ""
	first := true
	for _, p := range sourcePaths {
		dir := path.Dir(p)
		if dir == "." {
			dir = ""
		}
		if first {
			common = dir
			first = false
			continue
		}
		common = commonAncestor(common, dir)
		if common == "" {
			break
		}
	}
	return common
}

func commonAncestor(a, b string) string {
	if a == b {
		return a
	}
	as := strings.Split(a, "/")
	bs := strings.Split(b, "/")
	if a == "" {
		as = nil
	}
	if b == "" {
		bs = nil
	}
	var shared []string
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			break
		}
		shared = append(shared, as[i])
	}
	return strings.Join(shared, "/")
}

// SetRoot fixes the export root prefix stripped from every source path.
func (m *Mapper) SetRoot(root string) { m.root = strings.Trim(root, "/") }

// Root returns the export root prefix.
func (m *Mapper) Root() string { return m.root }

// Assign computes (or returns the already-assigned) target path for a source
// path. Documents map to .html targets; attachments keep their extension.
// Slug collisions are disambiguated with a numeric suffix in assignment
// order, keeping the table bijective.
func (m *Mapper) Assign(sourcePath string) string {
	if target, ok := m.sourceToTarget[sourcePath]; ok {
		return target
	}

	target := m.derive(sourcePath)
	if prior, taken := m.targetToSource[target]; taken && prior != sourcePath {
		base := strings.TrimSuffix(target, path.Ext(target))
		ext := path.Ext(target)
		for n := 1; ; n++ {
			candidate := fmt.Sprintf("%s-%d%s", base, n, ext)
			if _, exists := m.targetToSource[candidate]; !exists {
				target = candidate
				break
			}
		}
	}

	m.sourceToTarget[sourcePath] = target
	m.targetToSource[target] = sourcePath
	return target
}

// Restore seeds the table from a persisted manifest mapping, so target paths
// assigned in earlier runs stay stable.
func (m *Mapper) Restore(sourceToTarget map[string]string) {
	for source, target := range sourceToTarget {
		if _, ok := m.sourceToTarget[source]; ok {
			continue
		}
		if _, taken := m.targetToSource[target]; taken {
			continue
		}
		m.sourceToTarget[source] = target
		m.targetToSource[target] = source
	}
}

func (m *Mapper) derive(sourcePath string) string {
	rel := sourcePath
	if m.root != "" {
		rel = strings.TrimPrefix(rel, m.root+"/")
	}

	if vault.IsDocumentPath(rel) {
		rel = strings.TrimSuffix(rel, path.Ext(rel)) + ".html"
	}

	if m.webStyle {
		segments := strings.Split(rel, "/")
		for i, seg := range segments {
			segments[i] = Slugify(seg)
		}
		rel = strings.Join(segments, "/")
	}

	return rel
}

// TargetOf looks up the assigned target for a source path.
func (m *Mapper) TargetOf(sourcePath string) (string, bool) {
	t, ok := m.sourceToTarget[sourcePath]
	return t, ok
}

// SourceOf looks up the source for an assigned target path.
func (m *Mapper) SourceOf(targetPath string) (string, bool) {
	s, ok := m.targetToSource[targetPath]
	return s, ok
}

// Forget retracts a source path from the table (source file deleted).
func (m *Mapper) Forget(sourcePath string) {
	if target, ok := m.sourceToTarget[sourcePath]; ok {
		delete(m.targetToSource, target)
		delete(m.sourceToTarget, sourcePath)
	}
}

// Sources returns all mapped source paths, sorted.
func (m *Mapper) Sources() []string {
	out := make([]string, 0, len(m.sourceToTarget))
	for s := range m.sourceToTarget {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Targets returns all assigned target paths, sorted.
func (m *Mapper) Targets() []string {
	out := make([]string, 0, len(m.targetToSource))
	for t := range m.targetToSource {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Mapping returns a copy of the source→target table for persistence.
func (m *Mapper) Mapping() map[string]string {
	out := make(map[string]string, len(m.sourceToTarget))
	for s, t := range m.sourceToTarget {
		out[s] = t
	}
	return out
}
