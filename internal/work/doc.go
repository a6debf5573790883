// Package work defines the shared vocabulary of the dispatch engine:
// content-addressed identity (ContentKey), recursion-tree nodes (Target),
// schedulable units of evaluation (Case), reported outputs (Result), and
// the Unit capability interface implemented by the transformation catalog.
//
// Everything in this package is either immutable after construction or
// safe for concurrent use. The engine package owns all mutation; consumers
// hold references to values defined here.
//
// IDENTITY MODEL:
//
// A Target is identified by the SHA-256 digest of its normalized raw
// content (see ContentKey). Two Targets with equal keys are the same node
// in the recursion forest - the engine drops the second occurrence rather
// than re-evaluating it. Because a derivation cycle would require a
// repeated key, the Parent chain of any Target is finite and acyclic by
// construction.
package work
