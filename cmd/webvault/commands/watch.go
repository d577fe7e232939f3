package commands

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solvang/webvault/internal/logfields"
	"github.com/solvang/webvault/internal/metrics"
	"github.com/solvang/webvault/internal/watch"
)

// WatchCmd implements the 'watch' command: continuous re-export on
// vault changes, with an optional Prometheus endpoint.
type WatchCmd struct {
	Vault  string `help:"Vault directory (overrides config)"`
	Output string `short:"o" help:"Output directory (overrides config)"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root, w.Vault, w.Output)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if serr := srv.ListenAndServe(); serr != nil && serr != http.ErrServerClosed {
				slog.Error("Metrics endpoint failed", logfields.Error(serr))
			}
		}()
		go func() {
			<-ctx.Done()
			shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutCtx)
		}()
		slog.Info("Metrics endpoint listening", slog.String("addr", cfg.Metrics.Listen))
	}

	export := func(ctx context.Context) error {
		summary, err := runExport(ctx, cfg, false, recorder)
		if err != nil {
			return err
		}
		printSummary(summary)
		return nil
	}

	watcher, err := watch.New(cfg.Vault.Path, cfg.WatchDebounce(), cfg.WatchInterval(), export)
	if err != nil {
		return err
	}
	slog.Info("Watching vault for changes", slog.String("path", cfg.Vault.Path))
	return watcher.Run(ctx)
}
