package work

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTarget_Root(t *testing.T) {
	tgt := NewTarget(BytesSource([]byte("hello")), []byte("hello"), 1)

	assert.True(t, tgt.IsRoot())
	assert.Nil(t, tgt.Parent)
	assert.Nil(t, tgt.ProducedBy)
	assert.True(t, tgt.IsPrintable())
	assert.Equal(t, NewContentKey([]byte("hello")), tgt.Key)
}

func TestNewDerivedTarget_ProvenanceLinks(t *testing.T) {
	root := NewTarget(BytesSource([]byte("root")), []byte("root"), 1)
	c := &Case{ID: "case-1", Target: root}

	child := NewDerivedTarget(BytesSource([]byte("child")), []byte("child"), c, 2)

	require.False(t, child.IsRoot())
	assert.Same(t, root, child.Parent)
	assert.Same(t, c, child.ProducedBy)
	assert.Same(t, child.ProducedBy.Target, child.Parent,
		"producing case's target must be the parent")
}

func TestTarget_CompleteOnce(t *testing.T) {
	tgt := NewTarget(BytesSource([]byte("x")), []byte("x"), 1)

	assert.False(t, tgt.Completed())
	assert.True(t, tgt.Complete(), "first completion succeeds")
	assert.False(t, tgt.Complete(), "second completion is a no-op")
	assert.True(t, tgt.Completed())
}

func TestTarget_SummaryPrintable(t *testing.T) {
	tgt := NewTarget(BytesSource([]byte("short text")), []byte("short text"), 1)
	assert.Equal(t, "short text", tgt.Summary())
}

func TestTarget_SummaryTruncatesLongContent(t *testing.T) {
	long := strings.Repeat("a", 100)
	tgt := NewTarget(BytesSource([]byte(long)), []byte(long), 1)

	summary := tgt.Summary()
	assert.True(t, strings.HasSuffix(summary, "..."))
	assert.LessOrEqual(t, len(summary), 51)
}

func TestTarget_SummaryBinary(t *testing.T) {
	raw := []byte{0x00, 0x01, 0x02, 0x03}
	tgt := NewTarget(BytesSource(raw), raw, 1)

	summary := tgt.Summary()
	assert.Contains(t, summary, "binary 4 bytes")
	assert.Contains(t, summary, tgt.Key.Short())
}
