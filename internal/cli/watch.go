package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/spyglass-sec/spyglass/internal/watch"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	Workers     int
	MetricsAddr string
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Monitor directories and evaluate files as they appear",
		Long: `Start the dispatch engine and monitor one or more directories. Files
created or modified under them are queued as targets once they stop
changing. Runs until interrupted.

Example:
  spyglass watch ./loot
  spyglass watch ./inbox ./downloads -c spyglass.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, args, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "worker pool size (default from config)")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Prometheus listen address (default from config)")

	return cmd
}

func runWatch(opts *WatchOptions, dirs []string, cmd *cobra.Command) error {
	rt, err := buildRuntime(opts.RootOptions)
	if err != nil {
		return err
	}
	defer rt.close()

	workers := rt.cfg.Workers
	if opts.Workers > 0 {
		workers = opts.Workers
	}
	metricsAddr := rt.cfg.MetricsAddr
	if opts.MetricsAddr != "" {
		metricsAddr = opts.MetricsAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rt.manager.Start(ctx, workers); err != nil {
		return WrapExitError(ExitCommandError, "failed to start engine", err)
	}

	watcher, err := watch.New(rt.manager, rt.cfg.Watch.Debounce.Std(), slog.Default())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create watcher", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return WrapExitError(ExitCommandError, "failed to watch directory", err)
		}
	}

	if metricsAddr != "" {
		go serveMetrics(ctx, metricsAddr, rt)
	}

	err = watcher.Run(ctx)

	rt.manager.Abort()
	rt.manager.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitCommandError, "watcher failed", err)
	}
	return nil
}

// serveMetrics exposes the engine's collectors until ctx is cancelled.
func serveMetrics(ctx context.Context, addr string, rt *runtime) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(rt.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("metrics server failed", "error", err)
	}
}
