package vault

import (
	"bufio"
	"os"
	"path"
	"strings"
)

// ignoreRules is a small gitignore-flavored matcher for the vault's ignore
// file. Supported: comment lines, blank lines, trailing-slash directory
// patterns, leading-slash root anchoring, and path globs.
type ignoreRules struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	glob    string
	dirOnly bool
	rooted  bool
}

// loadIgnoreRules reads the ignore file at path; a missing file yields an
// empty (match-nothing) rule set.
func loadIgnoreRules(filePath string) *ignoreRules {
	rules := &ignoreRules{}

	f, err := os.Open(filePath)
	if err != nil {
		return rules
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p := ignorePattern{glob: line}
		if strings.HasSuffix(p.glob, "/") {
			p.dirOnly = true
			p.glob = strings.TrimSuffix(p.glob, "/")
		}
		if strings.HasPrefix(p.glob, "/") {
			p.rooted = true
			p.glob = strings.TrimPrefix(p.glob, "/")
		}
		rules.patterns = append(rules.patterns, p)
	}

	return rules
}

// matches reports whether a slash-separated relative path is ignored.
// Directory candidates are passed with a trailing slash.
func (r *ignoreRules) matches(rel string) bool {
	isDir := strings.HasSuffix(rel, "/")
	rel = strings.TrimSuffix(rel, "/")

	for _, p := range r.patterns {
		if p.dirOnly && !isDir {
			// A directory pattern still ignores files below that directory.
			if !strings.Contains(rel, "/") {
				continue
			}
		}
		if p.matchPath(rel) {
			return true
		}
	}
	return false
}

func (p ignorePattern) matchPath(rel string) bool {
	if p.rooted {
		if ok, _ := path.Match(p.glob, rel); ok {
			return true
		}
		return strings.HasPrefix(rel, p.glob+"/")
	}

	// Unrooted patterns match at any depth.
	segments := strings.Split(rel, "/")
	for i := range segments {
		sub := strings.Join(segments[i:], "/")
		if ok, _ := path.Match(p.glob, sub); ok {
			return true
		}
		if ok, _ := path.Match(p.glob, segments[i]); ok {
			return true
		}
	}
	return false
}
