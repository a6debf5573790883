package work

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Target is a node in the recursion forest: resolved raw content plus the
// provenance links that record how the engine derived it.
//
// Targets are immutable after construction except for the completed flag,
// which transitions false -> true at most once (user cancellation or
// natural exhaustion). The engine's registry holds the canonical Target
// per ContentKey; every other holder shares that instance.
//
// INVARIANTS:
//   - Raw and Key never change after construction.
//   - Parent/ProducedBy are nil for roots and set exactly once for
//     derived Targets, before the Target is visible to any worker.
//   - The Parent chain is finite and acyclic (dedup guarantees a key
//     never repeats along a chain).
type Target struct {
	// Key is the content-addressed identity used for dedup.
	Key ContentKey

	// Source records where the raw content came from.
	Source Source

	// Raw is the resolved content. Never mutated.
	Raw []byte

	// Parent is the Target whose evaluation produced this one.
	// Nil for root submissions.
	Parent *Target

	// ProducedBy is the Case whose evaluation created this Target.
	// Nil for root submissions. This link is the sole source of truth
	// for provenance reconstruction.
	ProducedBy *Case

	// Seq is the registration order stamp, for stable display ordering.
	Seq int64

	printable bool
	completed atomic.Bool
}

// NewTarget constructs a root Target from resolved content.
func NewTarget(src Source, raw []byte, seq int64) *Target {
	return &Target{
		Key:       NewContentKey(raw),
		Source:    src,
		Raw:       raw,
		Seq:       seq,
		printable: IsPrintable(raw),
	}
}

// NewDerivedTarget constructs a Target produced by evaluating c.
func NewDerivedTarget(src Source, raw []byte, c *Case, seq int64) *Target {
	t := NewTarget(src, raw, seq)
	t.Parent = c.Target
	t.ProducedBy = c
	return t
}

// IsPrintable reports whether the raw content is printable text.
// Computed once at construction; units consult it from Applicable, which
// must stay cheap and side-effect free.
func (t *Target) IsPrintable() bool {
	return t.printable
}

// IsRoot reports whether this Target was submitted externally rather than
// derived by a unit.
func (t *Target) IsRoot() bool {
	return t.Parent == nil
}

// Completed reports whether further work rooted at this Target has been
// cancelled or exhausted.
func (t *Target) Completed() bool {
	return t.completed.Load()
}

// Complete marks the Target completed. The flag is advisory and
// cooperative: the engine checks it before issuing new Cases for the
// subtree, it does not interrupt evaluations already dispatched.
// Returns false if the Target was already completed.
func (t *Target) Complete() bool {
	return t.completed.CompareAndSwap(false, true)
}

// Summary returns a short one-line description for traces and logs:
// a content preview for printable targets, the key prefix otherwise.
func (t *Target) Summary() string {
	if t.printable {
		preview := strings.ReplaceAll(string(t.Raw), "\n", `\n`)
		if len(preview) > 48 {
			preview = preview[:48] + "..."
		}
		return preview
	}
	return fmt.Sprintf("<binary %d bytes, %s>", len(t.Raw), t.Key.Short())
}
