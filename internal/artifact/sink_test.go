package artifact

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_CreateWritesUnderScope(t *testing.T) {
	root := t.TempDir()
	sink, err := NewDir(filepath.Join(root, "artifacts"))
	require.NoError(t, err)

	path, w, err := sink.Create("deadbeef", "decoded.bin")
	require.NoError(t, err)
	_, err = w.Write([]byte{0x00, 0x01, 0x02})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, filepath.Join(sink.Root(), "deadbeef", "decoded.bin"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0x02}, data)
}

func TestDir_CreateTruncatesExisting(t *testing.T) {
	sink, err := NewDir(t.TempDir())
	require.NoError(t, err)

	_, err = WriteAll(sink, "scope", "a", []byte("long original content"))
	require.NoError(t, err)
	path, err := WriteAll(sink, "scope", "a", []byte("short"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("short"), data)
}

func TestDir_SanitizesEscapeAttempts(t *testing.T) {
	root := t.TempDir()
	sink, err := NewDir(filepath.Join(root, "artifacts"))
	require.NoError(t, err)

	for _, tc := range []struct{ scope, name string }{
		{"../../etc", "passwd"},
		{"scope", "../../../escape"},
		{"..", ".."},
		{"a/b/c", "d\\e\\f"},
	} {
		path, w, err := sink.Create(tc.scope, tc.name)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		rel, err := filepath.Rel(sink.Root(), path)
		require.NoError(t, err)
		assert.False(t, strings.HasPrefix(rel, ".."),
			"artifact %q/%q must stay inside the sink root, got %s", tc.scope, tc.name, path)
	}
}

// failingWriter satisfies io.WriteCloser and records whether Close ran.
type failingWriter struct {
	closed bool
}

func (w *failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }
func (w *failingWriter) Close() error              { w.closed = true; return nil }

type stubSink struct {
	w io.WriteCloser
}

func (s *stubSink) Create(scope, name string) (string, io.WriteCloser, error) {
	return "/stub/" + scope + "/" + name, s.w, nil
}

func TestWriteAll_ClosesOnWriteFailure(t *testing.T) {
	w := &failingWriter{}
	_, err := WriteAll(&stubSink{w: w}, "scope", "name", []byte("data"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, w.closed, "handle must be closed even when the write fails")
}

func TestWriteAll_RoundTrip(t *testing.T) {
	sink, err := NewDir(t.TempDir())
	require.NoError(t, err)

	path, err := WriteAll(sink, "scope", "blob", []byte("payload"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}
