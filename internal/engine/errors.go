package engine

import "errors"

// Engine-invariant violations and lifecycle outcomes.
//
// Unit-local failures never surface through these: they are forwarded to
// the monitor's exception channel and the dispatch loop continues. Only
// misuse of the engine itself (starting twice, submitting after abort)
// is reported to the caller.
var (
	// ErrAlreadyStarted is returned by Start when the worker pool is
	// already running. Start is idempotent-once by contract.
	ErrAlreadyStarted = errors.New("engine already started")

	// ErrShutdown is returned by QueueTarget and Recurse after Abort.
	// Submissions after shutdown are rejected with this distinct outcome
	// rather than dropped silently, so callers can tell a rejected
	// submission from a dedup no-op.
	ErrShutdown = errors.New("engine shut down")
)
