package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "webvault.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "site:\n  name: Test Site\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, OutputModeSite, cfg.Export.Mode)
	assert.Equal(t, AnchorLinksRelative, cfg.Export.AnchorLinks)
	assert.Equal(t, DefaultLibDir, cfg.Export.LibDir)
	assert.Equal(t, DefaultTitleProperty, cfg.Site.TitleProperty)
	assert.Equal(t, DefaultTitleSimilarityH1, cfg.Export.TitleSimilarityH1)
	assert.Equal(t, DefaultTitleSimilarityH2, cfg.Export.TitleSimilarityH2)
	assert.Equal(t, "./site", cfg.Export.OutputDir)
}

func TestLoad_NormalizesBaseURL(t *testing.T) {
	path := writeConfig(t, "site:\n  name: S\n  base_url: \"https://example.com/ \"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", cfg.Site.BaseURL)
}

func TestLoad_InvalidMode_Fails(t *testing.T) {
	path := writeConfig(t, "export:\n  mode: everything\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid export mode")
}

func TestLoad_InvalidDebounce_Fails(t *testing.T) {
	path := writeConfig(t, "watch:\n  debounce: soonish\n")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_EventsWithoutURL_Fails(t *testing.T) {
	path := writeConfig(t, "events:\n  enabled: true\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nats_url")
}

func TestWatchDurations(t *testing.T) {
	path := writeConfig(t, "watch:\n  debounce: 2s\n  interval: 10m\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.WatchDebounce())
	assert.Equal(t, 10*time.Minute, cfg.WatchInterval())
}

func TestWriteStarter_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webvault.yaml")
	require.NoError(t, WriteStarter(path, false))
	require.Error(t, WriteStarter(path, false))
	require.NoError(t, WriteStarter(path, true))

	// The starter must itself load cleanly.
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "My Vault", cfg.Site.Name)
	assert.True(t, cfg.Features.Search)
}
