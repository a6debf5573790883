package raw

import (
	"context"
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/spyglass-sec/spyglass/internal/work"
)

// base64Pattern matches content that is plausibly base64: the standard
// alphabet with optional padding, nothing else.
var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)

// Base64 decodes standard base64 content.
type Base64 struct{}

func (Base64) Name() string  { return "base64_decode" }
func (Base64) Priority() int { return PriorityBase64 }

// Applicable accepts printable targets whose trimmed content looks like
// base64 and is long enough to be worth decoding.
func (Base64) Applicable(t *work.Target) bool {
	if !t.IsPrintable() {
		return false
	}
	s := strings.TrimSpace(string(t.Raw))
	return len(s) >= minDecodeLen && base64Pattern.MatchString(s)
}

// Evaluate decodes the target. Content that passes the syntactic check
// but fails to decode is declined, not an error.
func (u Base64) Evaluate(_ context.Context, eng work.Engine, c *work.Case) error {
	s := strings.TrimSpace(string(c.Target.Raw))

	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(s)
	}
	if err != nil {
		return work.ErrNotApplicable
	}
	if len(decoded) == 0 {
		return work.ErrNotApplicable
	}

	return emit(eng, c, "base64_decoded", decoded)
}
