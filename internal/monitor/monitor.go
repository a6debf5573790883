// Package monitor defines the observer surface the engine reports to,
// and the implementations that carry those reports to logs, durable
// storage, and the flag detector.
//
// The Monitor is the only sanctioned channel for cross-thread result
// visibility: workers call into it concurrently, and implementations
// must be safe for that and must not block the calling worker
// indefinitely. UI layers that want to consume events on their own
// goroutine wrap their monitor in Async.
package monitor

import (
	"regexp"
	"sync"

	"github.com/spyglass-sec/spyglass/internal/work"
)

// Monitor receives everything the engine discovers.
//
// All callbacks may be invoked from any worker goroutine concurrently.
type Monitor interface {
	// OnResult is called for every candidate output a unit reports.
	OnResult(c *work.Case, data []byte)

	// OnFlag is called at most once per logically distinct flag value.
	OnFlag(c *work.Case, flag string)

	// OnException is called when a unit's evaluation fails with
	// anything other than work.ErrNotApplicable.
	OnException(c *work.Case, err error)
}

// Nop is a Monitor that discards everything. Useful as a test default.
type Nop struct{}

func (Nop) OnResult(*work.Case, []byte)   {}
func (Nop) OnFlag(*work.Case, string)     {}
func (Nop) OnException(*work.Case, error) {}

// Multi fans every callback out to each wrapped monitor in order.
type Multi []Monitor

func (m Multi) OnResult(c *work.Case, data []byte) {
	for _, next := range m {
		next.OnResult(c, data)
	}
}

func (m Multi) OnFlag(c *work.Case, flag string) {
	for _, next := range m {
		next.OnFlag(c, flag)
	}
}

func (m Multi) OnException(c *work.Case, err error) {
	for _, next := range m {
		next.OnException(c, err)
	}
}

// FlagDetector wraps a Monitor and decides which results constitute
// flags.
//
// Every result is scanned against the configured pattern; each match is
// promoted to OnFlag on the wrapped monitor. Flags are deduplicated by
// value, not by provenance chain: a flag reachable through two different
// derivation chains is reported once, by whichever chain got there
// first.
type FlagDetector struct {
	pattern *regexp.Regexp
	next    Monitor

	mu   sync.Mutex
	seen map[string]bool
}

// NewFlagDetector creates a detector for the given flag pattern.
func NewFlagDetector(pattern *regexp.Regexp, next Monitor) *FlagDetector {
	return &FlagDetector{
		pattern: pattern,
		next:    next,
		seen:    make(map[string]bool),
	}
}

// OnResult forwards the result and promotes pattern matches to OnFlag.
func (d *FlagDetector) OnResult(c *work.Case, data []byte) {
	d.next.OnResult(c, data)

	for _, match := range d.pattern.FindAllString(string(data), -1) {
		d.report(c, match)
	}
}

// OnFlag forwards an already-identified flag, still subject to by-value
// dedup so double reports from a unit collapse to one.
func (d *FlagDetector) OnFlag(c *work.Case, flag string) {
	d.report(c, flag)
}

// OnException forwards unchanged.
func (d *FlagDetector) OnException(c *work.Case, err error) {
	d.next.OnException(c, err)
}

// report delivers a flag value exactly once.
func (d *FlagDetector) report(c *work.Case, flag string) {
	d.mu.Lock()
	if d.seen[flag] {
		d.mu.Unlock()
		return
	}
	d.seen[flag] = true
	d.mu.Unlock()

	d.next.OnFlag(c, flag)
}

// Flags returns the distinct flag values seen so far, in no particular
// order.
func (d *FlagDetector) Flags() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]string, 0, len(d.seen))
	for f := range d.seen {
		out = append(out, f)
	}
	return out
}
