package work

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContentKey_IdenticalContent(t *testing.T) {
	k1 := NewContentKey([]byte("hello world"))
	k2 := NewContentKey([]byte("hello world"))
	assert.Equal(t, k1, k2)
}

func TestNewContentKey_DifferentContent(t *testing.T) {
	k1 := NewContentKey([]byte("hello world"))
	k2 := NewContentKey([]byte("hello worlds"))
	assert.NotEqual(t, k1, k2)
}

func TestNewContentKey_TrailingNewlineNormalized(t *testing.T) {
	// A printable payload read from a file often carries a trailing
	// newline the inline submission lacks. Both must dedup to one key.
	k1 := NewContentKey([]byte("hello world"))
	k2 := NewContentKey([]byte("hello world\n"))
	k3 := NewContentKey([]byte("hello world\r\n"))
	assert.Equal(t, k1, k2)
	assert.Equal(t, k1, k3)
}

func TestNewContentKey_UnicodeNormalization(t *testing.T) {
	// U+00E9 (é) vs e + U+0301 (combining acute): same text, different
	// byte sequences. NFC normalization maps both to one key.
	composed := []byte("café")
	decomposed := []byte("café")
	assert.Equal(t, NewContentKey(composed), NewContentKey(decomposed))
}

func TestNewContentKey_BinaryNotNormalized(t *testing.T) {
	// Binary content is hashed as-is; a trailing 0x0a byte is content,
	// not a line terminator.
	k1 := NewContentKey([]byte{0x00, 0x01, 0x02})
	k2 := NewContentKey([]byte{0x00, 0x01, 0x02, 0x0a})
	assert.NotEqual(t, k1, k2)
}

func TestContentKey_Short(t *testing.T) {
	k := NewContentKey([]byte("hello"))
	require.Len(t, string(k), 64)
	assert.Len(t, k.Short(), 12)
	assert.Equal(t, string(k)[:12], k.Short())
}

func TestIsPrintable(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"ascii text", []byte("hello world"), true},
		{"multiline text", []byte("line one\nline two\n"), true},
		{"unicode text", []byte("héllo wörld"), true},
		{"empty", nil, false},
		{"binary", []byte{0x00, 0xff, 0x1b}, false},
		{"invalid utf8", []byte{0xc3, 0x28}, false},
		{"text with nul", []byte("hello\x00world"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPrintable(tt.data))
		})
	}
}
