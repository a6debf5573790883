package work

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DomainTarget is the domain prefix for content-addressed target identity.
// Version suffix enables future algorithm migration.
const DomainTarget = "spyglass/target/v1"

// ContentKey is the hex-encoded SHA-256 digest of normalized raw content.
//
// Equality of keys is equality of content: the engine uses ContentKey as
// the dedup key, so two submissions of byte-identical (after normalization)
// content resolve to a single Target.
type ContentKey string

// NewContentKey computes the content-addressed key for raw content.
//
// Normalization: printable UTF-8 content is NFC-normalized and stripped of
// trailing line terminators before hashing, so the same logical text
// arriving with encoding jitter (decomposed code points, a trailing
// newline from a file) maps to one key. Binary content is hashed as-is.
//
// The digest is domain-separated: SHA256(domain + 0x00 + data). The null
// byte prevents domain/data boundary ambiguity.
func NewContentKey(raw []byte) ContentKey {
	data := raw
	if IsPrintable(raw) {
		data = bytes.TrimRight(norm.NFC.Bytes(raw), "\r\n")
	}

	h := sha256.New()
	h.Write([]byte(DomainTarget))
	h.Write([]byte{0x00})
	h.Write(data)
	return ContentKey(hex.EncodeToString(h.Sum(nil)))
}

// Short returns a truncated form of the key for logs and summaries.
func (k ContentKey) Short() string {
	if len(k) <= 12 {
		return string(k)
	}
	return string(k[:12])
}

// IsPrintable reports whether data is valid UTF-8 consisting entirely of
// graphic runes and whitespace. Units use this to decide whether decoded
// output is worth recursing on directly or should be written out as a
// binary artifact first.
func IsPrintable(data []byte) bool {
	if len(data) == 0 || !utf8.Valid(data) {
		return false
	}
	for _, r := range string(data) {
		if r == utf8.RuneError {
			return false
		}
		if !unicode.IsGraphic(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
