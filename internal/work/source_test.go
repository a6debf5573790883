package work

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferSource_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target.txt")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	src := InferSource(path)
	assert.Equal(t, SourceFile, src.Kind)
	assert.Equal(t, path, src.Location)
}

func TestInferSource_URL(t *testing.T) {
	src := InferSource("https://example.org/chal.txt")
	assert.Equal(t, SourceURL, src.Kind)
}

func TestInferSource_InlineBytes(t *testing.T) {
	src := InferSource("just some text")
	assert.Equal(t, SourceBytes, src.Kind)
	assert.Equal(t, []byte("just some text"), src.Inline)
}

func TestInferSource_MissingPathIsBytes(t *testing.T) {
	src := InferSource("/does/not/exist/anywhere")
	assert.Equal(t, SourceBytes, src.Kind)
}

func TestSource_ResolveBytes(t *testing.T) {
	raw, err := BytesSource([]byte("payload")).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), raw)
}

func TestSource_ResolveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x01, 0x02}, 0o644))

	raw, err := FileSource(path).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, raw)
}

func TestSource_ResolveFileMissing(t *testing.T) {
	_, err := FileSource("/does/not/exist").Resolve(context.Background())
	assert.Error(t, err)
}

func TestSource_ResolveURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("remote payload"))
	}))
	defer srv.Close()

	raw, err := URLSource(srv.URL).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("remote payload"), raw)
}

func TestSource_ResolveURLBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := URLSource(srv.URL).Resolve(context.Background())
	assert.Error(t, err)
}

func TestSource_Describe(t *testing.T) {
	assert.Contains(t, BytesSource([]byte("abc")).Describe(), "abc")
	assert.Equal(t, "file(/tmp/x)", FileSource("/tmp/x").Describe())
	assert.Equal(t, "url(http://x)", URLSource("http://x").Describe())
}
