// Package engine implements the recursive work-dispatch core.
//
// The Manager turns one queued input into a tree of derived inputs: it
// wraps submitted content in a Target, matches the unit catalog against
// it, and schedules one Case per applicable unit on a priority work
// queue served by a fixed pool of workers. A unit's evaluation may report
// results, recurse on derived content (creating child Targets), or write
// a binary artifact and recurse on that.
//
// ARCHITECTURE:
//
// Worker Pool:
// Start(ctx, n) spawns n worker goroutines. Each worker loops: dequeue
// the highest-priority Case, evaluate it, repeat. Evaluations run to
// completion once dispatched - cancellation works by not issuing new
// work, never by interrupting running work.
//
// Dedup:
// Targets are registered in a ContentKey-keyed registry at the moment of
// creation, before any Case for them is enqueued. Concurrent recursions
// racing to create the same derived content resolve deterministically to
// a single winner; the loser reuses the winner's Target and creates no
// new work. This is also the termination argument: a unit that derives
// its own input recurses exactly once.
//
// Idle Detection:
// The queue counts workers parked on an empty heap. Global idle holds
// when every live worker is parked and the heap is empty, read under one
// lock so a Case pushed between the two checks cannot be missed.
// Join blocks on exactly this condition.
//
// Failure Isolation:
// A unit returning work.ErrNotApplicable is dropped silently. Any other
// error, and any panic, is caught at the worker boundary and forwarded
// to the monitor's exception channel; the worker moves on to the next
// Case. Unit failures never crash the engine.
package engine
