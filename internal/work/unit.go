package work

import (
	"context"
	"errors"
	"io"
)

// ErrNotApplicable is the distinguished outcome a Unit returns when it
// discovers mid-evaluation that it cannot proceed against a Target.
//
// It is expected and silent: the worker loop drops the Case without
// reporting a failure. Any other error from Evaluate is forwarded to the
// monitor's exception channel.
var ErrNotApplicable = errors.New("unit not applicable to target")

// Unit is one transformation or solving procedure in the catalog.
//
// Implementations are stateless with respect to the engine: any
// per-evaluation continuation state travels on the Case's Aux field.
//
// Thread-safety: the engine may evaluate one Unit against many Targets
// concurrently; implementations must not keep mutable per-call state on
// the receiver.
type Unit interface {
	// Name identifies the unit in traces, logs, and persisted results.
	Name() string

	// Priority orders this unit's Cases in the work queue.
	// Lower values are served first.
	Priority() int

	// Applicable is a pure, cheap predicate deciding whether the unit
	// should be scheduled against a Target at all. It must not perform
	// I/O and must not fail.
	Applicable(t *Target) bool

	// Evaluate runs the unit against c.Target. It may report results via
	// eng.AddResult, request recursion on derived content via
	// eng.Recurse, or write a binary artifact via eng.CreateArtifact and
	// recurse on the resulting path. Returning ErrNotApplicable declines
	// the Target silently; any other error is reported as a unit failure.
	Evaluate(ctx context.Context, eng Engine, c *Case) error
}

// Engine is the handle a Unit receives for talking back to the dispatch
// core during Evaluate. Implemented by engine.Manager.
//
// All methods are safe to call from any worker goroutine.
type Engine interface {
	// AddResult reports candidate output produced by evaluating c.
	// The monitor decides whether the data constitutes a flag.
	AddResult(c *Case, data []byte)

	// Recurse submits derived content for evaluation as a child Target
	// of c.Target. Content already known anywhere in the forest is a
	// no-op returning the existing Target.
	Recurse(c *Case, derived Source) (*Target, error)

	// CreateArtifact opens a named writable output scoped to c, for
	// derived content that should live on disk (binary payloads,
	// extracted files). The caller must close the handle; the returned
	// path is usable as a new Target source.
	CreateArtifact(c *Case, name string) (string, io.WriteCloser, error)
}
