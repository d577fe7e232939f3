package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/solvang/webvault/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVault(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		abs := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}
	return root
}

func openTestSource(t *testing.T, root string, mutate func(*config.Config)) *FSSource {
	t.Helper()
	cfg := &config.Config{}
	cfg.Vault.Path = root
	cfg.ApplyDefaults()
	if mutate != nil {
		mutate(cfg)
	}
	src, err := Open(cfg)
	require.NoError(t, err)
	return src
}

func sourcePaths(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.SourcePath)
	}
	return out
}

func TestList_ClassifiesDocumentsAndAttachments(t *testing.T) {
	root := testVault(t, map[string]string{
		"A.md":             "# A\n",
		"notes/B.md":       "# B\n",
		"assets/photo.png": "binary",
	})

	src := openTestSource(t, root, nil)
	entries, err := src.List()
	require.NoError(t, err)

	byPath := map[string]Entry{}
	for _, e := range entries {
		byPath[e.SourcePath] = e
	}
	assert.Equal(t, KindDocument, byPath["A.md"].Kind)
	assert.Equal(t, KindDocument, byPath["notes/B.md"].Kind)
	assert.Equal(t, KindAttachment, byPath["assets/photo.png"].Kind)
	assert.Equal(t, "photo", byPath["assets/photo.png"].Name)
	assert.Equal(t, ".png", byPath["assets/photo.png"].Extension)
}

func TestList_SkipsHiddenAndIgnored(t *testing.T) {
	root := testVault(t, map[string]string{
		"A.md":             "# A\n",
		".obsidian/app.js": "{}",
		"drafts/wip.md":    "# WIP\n",
		".webvaultignore":  "drafts/\n",
	})

	src := openTestSource(t, root, nil)
	entries, err := src.List()
	require.NoError(t, err)

	paths := sourcePaths(entries)
	assert.Contains(t, paths, "A.md")
	assert.NotContains(t, paths, ".obsidian/app.js")
	assert.NotContains(t, paths, "drafts/wip.md")
}

func TestList_IncludeFilter(t *testing.T) {
	root := testVault(t, map[string]string{
		"notes/A.md": "# A\n",
		"other/B.md": "# B\n",
	})

	src := openTestSource(t, root, func(cfg *config.Config) {
		cfg.Vault.Include = []string{"notes"}
	})
	entries, err := src.List()
	require.NoError(t, err)

	assert.Equal(t, []string{"notes/A.md"}, sourcePaths(entries))
}

func TestList_RespectPublishFlag(t *testing.T) {
	root := testVault(t, map[string]string{
		"public.md": "---\npublish: true\n---\nhello\n",
		"secret.md": "---\npublish: false\n---\nshh\n",
		"plain.md":  "no frontmatter\n",
	})

	src := openTestSource(t, root, func(cfg *config.Config) {
		cfg.Vault.RespectPublishFlag = true
	})
	entries, err := src.List()
	require.NoError(t, err)

	paths := sourcePaths(entries)
	assert.Contains(t, paths, "public.md")
	assert.Contains(t, paths, "plain.md")
	assert.NotContains(t, paths, "secret.md")
}

func TestFrontmatter_StripsBody(t *testing.T) {
	root := testVault(t, map[string]string{
		"A.md": "---\ntitle: Hello\n---\nbody text\n",
	})

	src := openTestSource(t, root, nil)
	fields, body, err := src.Frontmatter("A.md")
	require.NoError(t, err)
	assert.Equal(t, "Hello", fields["title"])
	assert.Equal(t, "body text\n", string(body))
}

func TestIsKnownPath(t *testing.T) {
	root := testVault(t, map[string]string{"A.md": "# A\n"})

	src := openTestSource(t, root, nil)
	_, err := src.List()
	require.NoError(t, err)

	assert.True(t, src.IsKnownPath("A.md"))
	assert.False(t, src.IsKnownPath("missing.md"))
}

func TestIgnoreRules_RootedAndGlob(t *testing.T) {
	root := testVault(t, map[string]string{
		"keep.md":          "x",
		"tmp/scratch.md":   "x",
		"deep/tmp/also.md": "x",
		"note.tmp":         "x",
		".webvaultignore":  "/tmp/\n*.tmp\n",
	})

	src := openTestSource(t, root, nil)
	entries, err := src.List()
	require.NoError(t, err)

	paths := sourcePaths(entries)
	assert.Contains(t, paths, "keep.md")
	assert.NotContains(t, paths, "tmp/scratch.md")
	assert.NotContains(t, paths, "note.tmp")
	// Rooted /tmp/ must not swallow nested tmp directories.
	assert.Contains(t, paths, "deep/tmp/also.md")
}
