package cli

import (
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spyglass-sec/spyglass/internal/artifact"
	"github.com/spyglass-sec/spyglass/internal/config"
	"github.com/spyglass-sec/spyglass/internal/engine"
	"github.com/spyglass-sec/spyglass/internal/monitor"
	"github.com/spyglass-sec/spyglass/internal/store"
	"github.com/spyglass-sec/spyglass/internal/units"
)

// runtime bundles everything a command needs to drive the engine.
type runtime struct {
	cfg       *config.Config
	manager   *engine.Manager
	collector *monitor.Collector
	registry  *prometheus.Registry
	st        *store.Store   // nil when persistence is disabled
	async     *monitor.Async // nil when persistence is disabled
}

// close releases command-lifetime resources in reverse build order.
func (r *runtime) close() {
	if r.async != nil {
		r.async.Close()
	}
	if r.st != nil {
		if err := r.st.Close(); err != nil {
			slog.Error("error closing database", "error", err)
		}
	}
}

// buildRuntime assembles the engine from configuration: logger, unit
// catalog (filtered and re-prioritized), artifact sink, outcome store,
// monitor chain, and manager.
func buildRuntime(opts *RootOptions) (*runtime, error) {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))

	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}

	pattern := cfg.FlagPattern()

	catalog := units.Catalog(pattern)
	catalog, err := catalog.Filter(cfg.Units.Include, cfg.Units.Exclude)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid unit filter", err)
	}
	catalog, err = catalog.ApplyOverrides(cfg.Units.Priorities)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid priority overrides", err)
	}

	sink, err := artifact.NewDir(cfg.OutputDir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create artifact sink", err)
	}

	rt := &runtime{cfg: cfg, registry: prometheus.NewRegistry()}

	// Monitor chain: flag detection in front, then fan-out to the log,
	// the in-memory collector the command reports from, and (if
	// configured) the outcome store. Store writes ride an async
	// consumer so sqlite latency never sits on the worker path.
	rt.collector = monitor.NewCollector()
	sinks := monitor.Multi{monitor.NewLog(slog.Default()), rt.collector}
	if cfg.Database != "" {
		st, err := store.Open(cfg.Database)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		rt.st = st
		rt.async = monitor.NewAsync(monitor.NewPersist(st, slog.Default()))
		sinks = append(sinks, rt.async)
	}
	detector := monitor.NewFlagDetector(pattern, sinks)

	rt.manager = engine.NewManager(catalog, detector, sink,
		engine.WithLogger(slog.Default()),
		engine.WithMetricsRegistry(rt.registry),
	)
	return rt, nil
}
