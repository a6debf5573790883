package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spyglass-sec/spyglass/internal/artifact"
	"github.com/spyglass-sec/spyglass/internal/monitor"
	"github.com/spyglass-sec/spyglass/internal/unit"
	"github.com/spyglass-sec/spyglass/internal/work"
)

// Manager owns the worker pool and drives the evaluate/recurse loop.
//
// Thread-safety model:
//   - QueueTarget / RequeueTarget / Recurse / AddResult: safe from any
//     goroutine, including from inside unit evaluations.
//   - Start: exactly once; a second call is an error.
//   - Join / Abort / Wait: safe from any goroutine.
//
// INVARIANTS:
//   - A Target is registered in the dedup registry before any Case for
//     it is enqueued (register-before-enqueue). A racing duplicate
//     therefore always observes the registration and creates no work.
//   - Cases are only enqueued for Targets that are not completed.
//   - Catalog iteration order never changes after construction.
type Manager struct {
	catalog []work.Unit
	queue   *workQueue
	mon     monitor.Monitor
	sink    artifact.Sink
	clock   *work.Clock
	ids     work.IDGenerator
	logger  *slog.Logger
	metrics *Metrics

	mu      sync.Mutex
	targets map[work.ContentKey]*work.Target
	roots   []*work.Target
	started bool
	aborted bool

	ctx context.Context // evaluation context, set at Start
	wg  sync.WaitGroup
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithIDGenerator sets the Case ID generator. Default: UUIDv7.
// Tests use work.NewFixedGenerator for deterministic traces.
func WithIDGenerator(g work.IDGenerator) Option {
	return func(m *Manager) { m.ids = g }
}

// WithMetricsRegistry binds the engine's Prometheus collectors to reg.
// Default: a private registry, so unexported metrics still collect and
// concurrent Managers in tests never collide on registration.
func WithMetricsRegistry(reg prometheus.Registerer) Option {
	return func(m *Manager) { m.metrics = NewMetrics(reg, m.queue) }
}

// NewManager creates a Manager over the given unit catalog.
//
// The catalog's registration order is captured here and never changes;
// it is the order applicability predicates run in during matching.
func NewManager(catalog *unit.Registry, mon monitor.Monitor, sink artifact.Sink, opts ...Option) *Manager {
	m := &Manager{
		catalog: catalog.Units(),
		queue:   newWorkQueue(),
		mon:     mon,
		sink:    sink,
		clock:   work.NewClock(),
		ids:     work.UUIDv7Generator{},
		logger:  slog.Default(),
		targets: make(map[work.ContentKey]*work.Target),
	}
	m.metrics = NewMetrics(prometheus.NewRegistry(), m.queue)

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start spawns the worker pool. Idempotent-once: a second call returns
// ErrAlreadyStarted.
//
// ctx is handed to unit evaluations for their own I/O; cancelling it
// does not interrupt a running evaluation (units are not preemptible)
// but lets well-behaved units cut network fetches short.
func (m *Manager) Start(ctx context.Context, workers int) error {
	if workers < 1 {
		return fmt.Errorf("worker count must be positive, got %d", workers)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	m.started = true
	m.ctx = ctx
	m.queue.setWorkers(workers)

	m.logger.Info("engine starting", "workers", workers, "units", len(m.catalog))

	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}
	return nil
}

// QueueTarget submits content for evaluation as a root target.
//
// Duplicate submission is a no-op success: if a live Target with the
// same ContentKey exists anywhere in the forest, it is returned and no
// new Cases are created. After Abort, returns ErrShutdown.
func (m *Manager) QueueTarget(ctx context.Context, src work.Source) (*work.Target, error) {
	return m.submit(ctx, src, nil, false)
}

// RequeueTarget is QueueTarget without dedup: an explicit user
// resubmission creates a fresh root Target and fresh Cases even when
// the content is already known. The dedup registry keeps the original
// entry, so recursion under the new root still dedups against the
// whole forest.
func (m *Manager) RequeueTarget(ctx context.Context, src work.Source) (*work.Target, error) {
	return m.submit(ctx, src, nil, true)
}

// Recurse submits derived content under the evaluation that produced
// it. Called from inside unit evaluations.
//
// The derived Target's Parent and ProducedBy are set to link it under
// c. If the derived content's key already exists anywhere in the
// forest, no new work is created - this is what terminates decode
// loops.
func (m *Manager) Recurse(c *work.Case, derived work.Source) (*work.Target, error) {
	return m.submit(m.ctx, derived, c, false)
}

// submit implements QueueTarget/RequeueTarget/Recurse: resolve, dedup,
// register, match, enqueue.
func (m *Manager) submit(ctx context.Context, src work.Source, origin *work.Case, force bool) (*work.Target, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	raw, err := src.Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve target source: %w", err)
	}
	key := work.NewContentKey(raw)

	// Cancellation is cooperative: a completed originating target stops
	// producing new work, it does not recall work already queued.
	if origin != nil && origin.Target.Completed() {
		return origin.Target, nil
	}

	m.mu.Lock()
	if m.aborted {
		m.mu.Unlock()
		return nil, ErrShutdown
	}
	if existing, ok := m.targets[key]; ok && !force {
		m.mu.Unlock()
		m.metrics.targetsDeduped.Inc()
		m.logger.Debug("duplicate target dropped", "key", key.Short(), "source", src.Describe())
		return existing, nil
	}

	var t *work.Target
	if origin != nil {
		t = work.NewDerivedTarget(src, raw, origin, m.clock.Next())
	} else {
		t = work.NewTarget(src, raw, m.clock.Next())
	}

	// Register before enqueue: racing duplicates must observe this
	// entry before any Case for t exists. A forced resubmission keeps
	// the original canonical entry.
	if _, ok := m.targets[key]; !ok {
		m.targets[key] = t
	}
	if t.IsRoot() {
		m.roots = append(m.roots, t)
	}
	m.mu.Unlock()

	m.metrics.targetsRegistered.Inc()
	m.logger.Debug("target registered",
		"key", key.Short(),
		"source", src.Describe(),
		"root", t.IsRoot(),
	)

	m.match(t)
	return t, nil
}

// match runs every catalog unit's applicability predicate against t and
// enqueues one Case per match at the unit's priority. Units that
// decline are skipped silently.
func (m *Manager) match(t *work.Target) {
	for _, u := range m.catalog {
		if !u.Applicable(t) {
			continue
		}

		c := &work.Case{
			ID:       m.ids.Generate(),
			Unit:     u,
			Target:   t,
			Priority: u.Priority(),
			Seq:      m.clock.Next(),
		}
		if m.queue.Enqueue(c) {
			m.metrics.casesEnqueued.Inc()
			m.logger.Debug("case enqueued",
				"case", c.ID,
				"unit", u.Name(),
				"priority", c.Priority,
				"target", t.Key.Short(),
			)
		}
	}
}

// AddResult forwards a unit's candidate output to the monitor, which
// decides whether it constitutes a flag.
func (m *Manager) AddResult(c *work.Case, data []byte) {
	m.metrics.resultsReported.Inc()
	m.mon.OnResult(c, data)
}

// CreateArtifact opens a named writable output scoped to the case's
// target. The returned path is usable as a new target source.
func (m *Manager) CreateArtifact(c *work.Case, name string) (string, io.WriteCloser, error) {
	return m.sink.Create(c.Target.Key.Short(), name)
}

// Join blocks until the engine reaches global idle (queue empty and
// every worker parked) or timeout elapses, and reports whether idle was
// reached.
//
// timeout == 0 is an immediate check; timeout < 0 waits without bound.
// Join never cancels outstanding work - a caller that wants to force
// completion after a timeout follows up with Abort.
func (m *Manager) Join(timeout time.Duration) bool {
	return m.queue.WaitIdle(timeout)
}

// Idle reports whether the engine is globally idle right now.
func (m *Manager) Idle() bool {
	return m.queue.Idle()
}

// QueueSize returns the number of Cases awaiting evaluation.
func (m *Manager) QueueSize() int {
	return m.queue.Size()
}

// Abort requests immediate termination. Workers finish their current
// evaluation (units are not preemptible) but dequeue nothing further;
// outstanding Cases are discarded. Subsequent QueueTarget/Recurse calls
// return ErrShutdown. Idempotent; does not block - use Wait to block
// until the pool drains.
func (m *Manager) Abort() {
	m.mu.Lock()
	already := m.aborted
	m.aborted = true
	m.mu.Unlock()

	if already {
		return
	}
	discarded := m.queue.Size()
	m.queue.Close()
	m.logger.Info("engine aborting", "discarded", discarded)
}

// Wait blocks until every worker has exited. Only meaningful after
// Abort.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Roots returns the root targets in submission order.
func (m *Manager) Roots() []*work.Target {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*work.Target, len(m.roots))
	copy(out, m.roots)
	return out
}

// Lookup returns the canonical Target for a content key, if registered.
func (m *Manager) Lookup(key work.ContentKey) (*work.Target, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.targets[key]
	return t, ok
}

// worker is one pool member: dequeue, evaluate, repeat until the queue
// closes.
func (m *Manager) worker(id int) {
	defer m.wg.Done()
	defer m.queue.workerExited()

	for {
		c, ok := m.queue.Dequeue()
		if !ok {
			m.logger.Debug("worker exiting", "worker", id)
			return
		}
		m.evaluate(c)
	}
}

// evaluate runs one Case and isolates its failures.
//
// A unit returning work.ErrNotApplicable declined after deeper
// inspection - expected and silent. Any other error, and any panic, is
// forwarded to the monitor's exception channel; the worker then
// proceeds to the next Case. Unit failures never crash the worker or
// the engine.
func (m *Manager) evaluate(c *work.Case) {
	name := c.Unit.Name()
	start := time.Now()

	defer func() {
		m.metrics.evalDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			m.metrics.casesEvaluated.WithLabelValues(name, outcomePanic).Inc()
			m.mon.OnException(c, fmt.Errorf("unit %s panicked on target %s: %v", name, c.Target.Key.Short(), r))
		}
	}()

	err := c.Unit.Evaluate(m.ctx, m, c)
	switch {
	case err == nil:
		m.metrics.casesEvaluated.WithLabelValues(name, outcomeOK).Inc()
	case errors.Is(err, work.ErrNotApplicable):
		m.metrics.casesEvaluated.WithLabelValues(name, outcomeNotApplicable).Inc()
		m.logger.Debug("unit declined target", "unit", name, "target", c.Target.Key.Short())
	default:
		m.metrics.casesEvaluated.WithLabelValues(name, outcomeError).Inc()
		m.mon.OnException(c, err)
	}
}
