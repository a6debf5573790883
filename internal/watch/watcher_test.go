package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spyglass-sec/spyglass/internal/work"
)

// fakeSubmitter records queued sources and resolves their content.
type fakeSubmitter struct {
	mu     sync.Mutex
	queued [][]byte
	signal chan struct{}
}

func newFakeSubmitter() *fakeSubmitter {
	return &fakeSubmitter{signal: make(chan struct{}, 64)}
}

func (s *fakeSubmitter) QueueTarget(ctx context.Context, src work.Source) (*work.Target, error) {
	raw, err := src.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.queued = append(s.queued, raw)
	s.mu.Unlock()
	s.signal <- struct{}{}
	return work.NewTarget(src, raw, 1), nil
}

func (s *fakeSubmitter) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queued)
}

func (s *fakeSubmitter) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.signal:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for submission %d of %d", i+1, n)
		}
	}
}

func startWatcher(t *testing.T, sub Submitter, debounce time.Duration) (*Watcher, string) {
	t.Helper()

	dir := t.TempDir()
	w, err := New(sub, debounce, nil)
	require.NoError(t, err)
	require.NoError(t, w.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Run(ctx)

	return w, dir
}

func TestWatcher_QueuesCreatedFile(t *testing.T) {
	sub := newFakeSubmitter()
	_, dir := startWatcher(t, sub, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "dropped.txt"), []byte("fresh content"), 0o644))

	sub.wait(t, 1)
	assert.Equal(t, []byte("fresh content"), sub.queued[0])
}

func TestWatcher_DebouncesChunkedWrites(t *testing.T) {
	sub := newFakeSubmitter()
	_, dir := startWatcher(t, sub, 100*time.Millisecond)

	// Several writes inside the quiet period collapse to one submission
	// carrying the final content.
	path := filepath.Join(dir, "chunked.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = f.WriteString("chunk ")
		require.NoError(t, err)
		require.NoError(t, f.Sync())
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	sub.wait(t, 1)
	// Allow a stray second trigger to surface before asserting.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, sub.count(), "chunked write must submit once")
	assert.Equal(t, []byte("chunk chunk chunk chunk chunk "), sub.queued[0])
}

func TestWatcher_IgnoresHiddenFiles(t *testing.T) {
	sub := newFakeSubmitter()
	_, dir := startWatcher(t, sub, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("secret"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "visible"), []byte("content"), 0o644))

	sub.wait(t, 1)
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, 1, sub.count())
	assert.Equal(t, []byte("content"), sub.queued[0])
}

func TestWatcher_IgnoresSubdirectories(t *testing.T) {
	sub := newFakeSubmitter()
	_, dir := startWatcher(t, sub, 20*time.Millisecond)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "file"), []byte("content"), 0o644))

	sub.wait(t, 1)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, sub.count())
}

func TestWatcher_AddRejectsNonDirectory(t *testing.T) {
	w, err := New(newFakeSubmitter(), time.Millisecond, nil)
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.Error(t, w.Add(file))
	assert.Error(t, w.Add(filepath.Join(t.TempDir(), "missing")))
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	w, err := New(newFakeSubmitter(), time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, w.Add(t.TempDir()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}
