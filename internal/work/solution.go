package work

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Step is one link in a reconstructed solution chain: the unit that ran
// and the target it ran against.
type Step struct {
	Unit   string `json:"unit"`
	Target string `json:"target"`
}

// Solution is the ordered trace from the root submission to the unit
// that produced a flag.
type Solution struct {
	Steps []Step `json:"steps"`
	Flag  string `json:"flag"`
}

// Reconstruct walks the provenance links of the Case that reported a
// flag back to the root submission and returns the chain in root-to-leaf
// order, terminated by the flag value.
//
// Each step pairs a target with the unit that was applied to it: the
// last step is the reporting unit against its target, earlier steps are
// the units whose evaluation derived each child from its parent. A flag
// found directly on a root target yields a single-step chain.
//
// Pure function over immutable data; the recursion forest is not
// touched. The walk terminates because a parent chain cannot repeat a
// ContentKey.
func Reconstruct(c *Case, flag string) Solution {
	var steps []Step

	cur, t := c, c.Target
	for t != nil {
		steps = append(steps, Step{Unit: cur.Unit.Name(), Target: t.Summary()})
		if t.ProducedBy == nil {
			break
		}
		cur = t.ProducedBy
		t = cur.Target
	}

	// Walked leaf to root; the trace reads root to leaf.
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}

	return Solution{Steps: steps, Flag: flag}
}

// JSON renders the solution as compact JSON.
func (s Solution) JSON() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal solution: %w", err)
	}
	return string(data), nil
}

// String renders the solution as a one-chain-per-line trace:
//
//	[1] base64_decode <- aGVsbG8...
//	[2] flag_scan <- hello FLAG{...}
//	flag: FLAG{...}
func (s Solution) String() string {
	var b strings.Builder
	for i, step := range s.Steps {
		fmt.Fprintf(&b, "[%d] %s <- %s\n", i+1, step.Unit, step.Target)
	}
	fmt.Fprintf(&b, "flag: %s", s.Flag)
	return b.String()
}
