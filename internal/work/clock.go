package work

import "sync/atomic"

// Clock is a monotonic logical clock.
//
// The engine stamps every Case with a sequence number from a single Clock
// at enqueue time; the work queue uses the stamp as the FIFO tiebreak
// within one priority tier. Wall-clock timestamps are never used for
// ordering.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
// Calls are linearizable - each call returns a unique, increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
