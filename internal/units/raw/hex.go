package raw

import (
	"context"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/spyglass-sec/spyglass/internal/work"
)

var hexPattern = regexp.MustCompile(`^(?:0[xX])?[0-9a-fA-F]+$`)

// Hex decodes hexadecimal content, with or without a 0x prefix.
type Hex struct{}

func (Hex) Name() string  { return "hex_decode" }
func (Hex) Priority() int { return PriorityHex }

// Applicable accepts printable targets of even-length hex digits.
func (Hex) Applicable(t *work.Target) bool {
	if !t.IsPrintable() {
		return false
	}
	s := strings.TrimSpace(string(t.Raw))
	if len(s) < minDecodeLen || !hexPattern.MatchString(s) {
		return false
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return len(s)%2 == 0
}

// Evaluate decodes the target, declining on malformed input.
func (u Hex) Evaluate(_ context.Context, eng work.Engine, c *work.Case) error {
	s := strings.TrimSpace(string(c.Target.Raw))
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")

	decoded, err := hex.DecodeString(s)
	if err != nil || len(decoded) == 0 {
		return work.ErrNotApplicable
	}

	return emit(eng, c, "hex_decoded", decoded)
}
