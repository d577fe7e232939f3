package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/solvang/webvault/internal/config"
	"github.com/solvang/webvault/internal/events"
	"github.com/solvang/webvault/internal/export/assembler"
	"github.com/solvang/webvault/internal/export/index"
	"github.com/solvang/webvault/internal/logfields"
	"github.com/solvang/webvault/internal/metrics"
	"github.com/solvang/webvault/internal/storage"
	"github.com/solvang/webvault/internal/vault"
)

// ExportCmd implements the 'export' command.
type ExportCmd struct {
	Vault  string `help:"Vault directory (overrides config)"`
	Output string `short:"o" help:"Output directory (overrides config)"`
	Force  bool   `short:"f" help:"Rebuild every page regardless of modification state"`
}

func (e *ExportCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root, e.Vault, e.Output)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runExport(ctx, cfg, e.Force, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	printSummary(summary)
	return nil
}

// runExport wires one export run: destination store, state cache, event
// publisher, assembler. Shared by the export and watch commands.
func runExport(ctx context.Context, cfg *config.Config, force bool, recorder metrics.Recorder) (*assembler.Summary, error) {
	source, err := vault.Open(cfg)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewFSStore(cfg.Export.OutputDir)
	if err != nil {
		return nil, err
	}

	var cache *index.StateCache
	cachePath := filepath.Join(store.Root(), filepath.FromSlash(cfg.Export.LibDir), "state.db")
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err == nil {
		if c, cerr := index.OpenStateCache(cachePath); cerr == nil {
			cache = c
			defer cache.Close()
		} else {
			slog.Warn("State cache unavailable, falling back to mtime checks", logfields.Error(cerr))
		}
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Events.Enabled {
		if p, perr := events.NewNATSPublisher(&cfg.Events); perr == nil {
			publisher = p
			defer publisher.Close()
		} else {
			slog.Warn("Event publisher unavailable", logfields.Error(perr))
		}
	}

	a := assembler.New(cfg, source, store, assembler.Options{
		Recorder:  recorder,
		Publisher: publisher,
		Cache:     cache,
		Force:     force,
	})
	return a.Run(ctx)
}

func printSummary(s *assembler.Summary) {
	fmt.Printf("Export complete: %d new, %d updated, %d unmodified, %d failed",
		s.New, s.Updated, s.Unmodified, s.Failed)
	if s.Removed > 0 {
		fmt.Printf(", %d removed", s.Removed)
	}
	if s.Attachments > 0 {
		fmt.Printf(", %d attachments", s.Attachments)
	}
	if s.Warnings > 0 {
		fmt.Printf(", %d warnings", s.Warnings)
	}
	if s.Canceled {
		fmt.Print(" (canceled)")
	}
	fmt.Printf(" in %s\n", s.Duration.Round(time.Millisecond))
}
