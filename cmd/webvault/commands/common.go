package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/solvang/webvault/internal/config"
)

// Global is shared state passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI is the root command definition with global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"webvault.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Export   ExportCmd   `cmd:"" help:"Export the vault to a static site"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
	Discover DiscoverCmd `cmd:"" help:"List what an export would select, without building"`
	Watch    WatchCmd    `cmd:"" help:"Re-export automatically whenever the vault changes"`
}

// AfterApply runs after flag parsing; sets up logging once for all commands.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads the configuration file with CLI overrides applied.
func loadConfig(root *CLI, vaultOverride, outputOverride string) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	if vaultOverride != "" {
		cfg.Vault.Path = vaultOverride
	}
	if outputOverride != "" {
		cfg.Export.OutputDir = outputOverride
	}
	return cfg, nil
}
