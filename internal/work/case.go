package work

import (
	"sync"

	"github.com/google/uuid"
)

// Case is one candidate (unit, target) pairing awaiting evaluation.
//
// Cases are immutable once enqueued and consumed exactly once by a
// worker. Aux carries opaque per-unit continuation data for units that
// evaluate in multiple steps; the engine never inspects it.
type Case struct {
	// ID is a unique identifier for correlation in logs and storage.
	ID string

	// Unit is the procedure to run.
	Unit Unit

	// Target is the node being evaluated.
	Target *Target

	// Priority is the queue tier, taken from the unit at match time
	// (after any configured override). Lower runs first.
	Priority int

	// Seq is the enqueue stamp used as the FIFO tiebreak within a tier.
	Seq int64

	// Aux is opaque per-unit continuation state. Nil for single-step
	// units.
	Aux any
}

// Result is a reported candidate output: the Case that produced it plus
// the data itself. Append-only; never mutated after creation.
type Result struct {
	Case *Case
	Data []byte
}

// IDGenerator produces Case identifiers.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 identifiers.
//
// UUIDv7 embeds a timestamp in the most significant bits, so Case IDs
// sort by creation time - helpful when eyeballing persisted results.
//
// Thread-safety: stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined identifiers for deterministic
// tests and golden trace comparison.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order and
// panics when exhausted.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined identifier.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
