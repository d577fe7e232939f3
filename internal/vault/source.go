package vault

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/solvang/webvault/internal/config"
	"github.com/solvang/webvault/internal/frontmatter"
	"github.com/solvang/webvault/internal/logfields"
)

// Source is the capability the exporter consumes from the vault: enumerate
// entries, read bytes, answer path-membership queries, and expose document
// frontmatter. Injected explicitly so the core is testable without a live
// host application.
type Source interface {
	// List enumerates all exportable entries (documents and attachments).
	List() ([]Entry, error)
	// Read returns the raw bytes of a source path.
	Read(sourcePath string) ([]byte, error)
	// Stat returns the stat block for a source path.
	Stat(sourcePath string) (Stat, error)
	// Frontmatter returns the parsed frontmatter map of a document and its
	// body with the frontmatter stripped.
	Frontmatter(sourcePath string) (map[string]any, []byte, error)
	// IsKnownPath reports whether the source path exists in the vault.
	IsKnownPath(sourcePath string) bool
	// Root returns the absolute vault root directory.
	Root() string
}

// FSSource is the filesystem-backed Source used by the CLI. It walks the
// vault root, applies ignore rules and include filters, and classifies
// entries into the closed Document/Attachment variant.
type FSSource struct {
	root    string
	include []string
	ignore  *ignoreRules
	respect bool // respect publish: false frontmatter
	dates   *gitDates

	known map[string]Entry
}

// Open creates an FSSource for the configured vault.
func Open(cfg *config.Config) (*FSSource, error) {
	root, err := filepath.Abs(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve vault path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat vault root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault path %s is not a directory", root)
	}

	src := &FSSource{
		root:    root,
		include: cfg.Vault.Include,
		respect: cfg.Vault.RespectPublishFlag,
		known:   make(map[string]Entry),
	}

	src.ignore = loadIgnoreRules(filepath.Join(root, cfg.Vault.IgnoreFile))

	if cfg.Vault.GitDates {
		dates, err := openGitDates(root)
		if err != nil {
			slog.Warn("Vault is not a usable git repository, falling back to file stat dates",
				logfields.Vault(root), logfields.Error(err))
		} else {
			src.dates = dates
		}
	}

	return src, nil
}

// Root returns the absolute vault root directory.
func (s *FSSource) Root() string { return s.root }

// List walks the vault and returns all exportable entries. Hidden files and
// directories (dot-prefixed) are skipped, as is anything matching the ignore
// rules or falling outside the include filters.
func (s *FSSource) List() ([]Entry, error) {
	var entries []Entry
	s.known = make(map[string]Entry)

	err := filepath.WalkDir(s.root, func(absPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(s.root, absPath)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.ignore.matches(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}

		if s.ignore.matches(rel) || !s.included(rel) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			slog.Warn("Skipping unreadable vault entry", logfields.SourcePath(rel), logfields.Error(infoErr))
			return nil
		}

		entry := Entry{
			Kind:       classifyKind(rel),
			SourcePath: rel,
			AbsPath:    absPath,
			Name:       strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())),
			Extension:  strings.ToLower(filepath.Ext(d.Name())),
			Stat:       s.statOf(rel, info),
		}

		if entry.IsDocument() && s.respect && s.publishDisabled(entry) {
			slog.Debug("Skipping unpublished document", logfields.SourcePath(rel))
			return nil
		}

		s.known[rel] = entry
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault %s: %w", s.root, err)
	}

	return entries, nil
}

func (s *FSSource) included(rel string) bool {
	if len(s.include) == 0 {
		return true
	}
	for _, inc := range s.include {
		inc = strings.Trim(filepath.ToSlash(inc), "/")
		if rel == inc || strings.HasPrefix(rel, inc+"/") {
			return true
		}
	}
	return false
}

func (s *FSSource) statOf(rel string, info fs.FileInfo) Stat {
	st := Stat{
		Created:  info.ModTime(), // best available without git history
		Modified: info.ModTime(),
		Size:     info.Size(),
	}
	if s.dates != nil {
		if created, modified, ok := s.dates.lookup(rel); ok {
			st.Created = created
			st.Modified = modified
		}
	}
	return st
}

func (s *FSSource) publishDisabled(entry Entry) bool {
	fields, _, err := s.Frontmatter(entry.SourcePath)
	if err != nil {
		return false
	}
	f := frontmatter.ExtractFields(fields, "")
	return f.Publish != nil && !*f.Publish
}

// Read returns the raw bytes of a vault-relative path.
func (s *FSSource) Read(sourcePath string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(sourcePath)))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sourcePath, err)
	}
	return data, nil
}

// Stat returns the stat block for a vault-relative path.
func (s *FSSource) Stat(sourcePath string) (Stat, error) {
	info, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(sourcePath)))
	if err != nil {
		return Stat{}, fmt.Errorf("stat %s: %w", sourcePath, err)
	}
	return s.statOf(sourcePath, info), nil
}

// Frontmatter parses a document's frontmatter map and returns the body with
// the frontmatter stripped.
func (s *FSSource) Frontmatter(sourcePath string) (map[string]any, []byte, error) {
	data, err := s.Read(sourcePath)
	if err != nil {
		return nil, nil, err
	}
	fields, body := frontmatter.Parse(data)
	return fields, body, nil
}

// IsKnownPath reports whether the path was present in the last List walk.
func (s *FSSource) IsKnownPath(sourcePath string) bool {
	if len(s.known) == 0 {
		_, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(sourcePath)))
		return err == nil
	}
	_, ok := s.known[sourcePath]
	return ok
}
