package raw

import (
	"context"
	"encoding/ascii85"
	"strings"

	"github.com/spyglass-sec/spyglass/internal/work"
)

// Base85 decodes ascii85-encoded content.
type Base85 struct{}

func (Base85) Name() string  { return "base85_decode" }
func (Base85) Priority() int { return PriorityBase85 }

// Applicable accepts printable targets within the ascii85 character
// range. The alphabet covers most of printable ASCII, so the real
// filter is the decode attempt in Evaluate.
func (Base85) Applicable(t *work.Target) bool {
	if !t.IsPrintable() {
		return false
	}
	s := strings.TrimSpace(string(t.Raw))
	if len(s) < minDecodeLen {
		return false
	}
	for _, r := range s {
		if (r < '!' || r > 'u') && r != 'z' {
			return false
		}
	}
	return true
}

// Evaluate decodes the target, declining on malformed input.
func (u Base85) Evaluate(_ context.Context, eng work.Engine, c *work.Case) error {
	s := strings.TrimSpace(string(c.Target.Raw))

	decoded := make([]byte, ascii85.MaxEncodedLen(len(s)))
	n, _, err := ascii85.Decode(decoded, []byte(s), true)
	if err != nil || n == 0 {
		return work.ErrNotApplicable
	}

	return emit(eng, c, "base85_decoded", decoded[:n])
}
