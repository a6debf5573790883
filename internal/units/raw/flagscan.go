package raw

import (
	"context"
	"regexp"

	"github.com/spyglass-sec/spyglass/internal/work"
)

// FlagScan reports substrings of a target matching the configured flag
// pattern. It runs at the highest priority so a flag sitting in plain
// sight is found before any decoder spends time on the target.
//
// The scanner only reports; deciding that a report is a flag (and
// deduplicating values) remains the monitor's job.
type FlagScan struct {
	pattern *regexp.Regexp
}

// NewFlagScan creates a scanner for the given pattern.
func NewFlagScan(pattern *regexp.Regexp) *FlagScan {
	return &FlagScan{pattern: pattern}
}

func (*FlagScan) Name() string  { return "flag_scan" }
func (*FlagScan) Priority() int { return PriorityFlagScan }

// Applicable accepts every printable target; scanning is cheap.
func (s *FlagScan) Applicable(t *work.Target) bool {
	return t.IsPrintable()
}

// Evaluate reports each pattern match in the target. No recursion: a
// matched flag is terminal output, not derived content.
func (s *FlagScan) Evaluate(_ context.Context, eng work.Engine, c *work.Case) error {
	matches := s.pattern.FindAll(c.Target.Raw, -1)
	if len(matches) == 0 {
		return work.ErrNotApplicable
	}
	for _, m := range matches {
		eng.AddResult(c, m)
	}
	return nil
}
