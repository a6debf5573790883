package raw

import (
	"context"
	"unicode"

	"github.com/spyglass-sec/spyglass/internal/work"
)

// ROT13 applies the ROT13 substitution to alphabetic content.
//
// Unlike the codec units there is no syntactic signal that content is
// ROT13; the unit requires a minimum share of alphabetic characters so
// it stays off binary-ish text, and relies on dedup to terminate (ROT13
// of ROT13 is the original, which is already registered).
type ROT13 struct{}

func (ROT13) Name() string  { return "rot13" }
func (ROT13) Priority() int { return PriorityROT13 }

// Applicable accepts printable targets that are mostly letters.
func (ROT13) Applicable(t *work.Target) bool {
	if !t.IsPrintable() || len(t.Raw) < minDecodeLen {
		return false
	}

	letters := 0
	for _, r := range string(t.Raw) {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters*2 >= len(t.Raw)
}

// Evaluate rotates the target and recurses on the rotation. The result
// is always printable if the input was, so no artifact path exists
// here.
func (u ROT13) Evaluate(_ context.Context, eng work.Engine, c *work.Case) error {
	rotated := make([]byte, len(c.Target.Raw))
	for i, b := range c.Target.Raw {
		switch {
		case b >= 'a' && b <= 'z':
			rotated[i] = 'a' + (b-'a'+13)%26
		case b >= 'A' && b <= 'Z':
			rotated[i] = 'A' + (b-'A'+13)%26
		default:
			rotated[i] = b
		}
	}

	eng.AddResult(c, rotated)
	_, err := eng.Recurse(c, work.BytesSource(rotated))
	return err
}
