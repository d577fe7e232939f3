package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitCmd_WritesStarterAndRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	root := &CLI{Config: filepath.Join(dir, "webvault.yaml")}

	cmd := &InitCmd{}
	require.NoError(t, cmd.Run(nil, root))
	data, err := os.ReadFile(root.Config)
	require.NoError(t, err)
	require.Contains(t, string(data), "vault:")

	require.Error(t, cmd.Run(nil, root))
	require.NoError(t, (&InitCmd{Force: true}).Run(nil, root))
}

func TestLoadConfig_AppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	vaultDir := filepath.Join(dir, "vault")
	require.NoError(t, os.MkdirAll(vaultDir, 0o755))
	cfgPath := filepath.Join(dir, "webvault.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("vault:\n  path: "+vaultDir+"\n"), 0o644))

	root := &CLI{Config: cfgPath}
	cfg, err := loadConfig(root, "", "")
	require.NoError(t, err)
	require.Equal(t, vaultDir, cfg.Vault.Path)

	override := filepath.Join(dir, "other")
	cfg, err = loadConfig(root, override, filepath.Join(dir, "out"))
	require.NoError(t, err)
	require.Equal(t, override, cfg.Vault.Path)
	require.Equal(t, filepath.Join(dir, "out"), cfg.Export.OutputDir)
}
