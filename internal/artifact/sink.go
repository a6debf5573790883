// Package artifact provides the minimal scoped-resource abstraction the
// engine needs for writing derived binary content to durable storage.
//
// A unit that decodes to something non-printable (an extracted archive
// member, a carved image) writes it through the sink and recurses on the
// returned path instead of passing raw bytes through the queue.
package artifact

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Sink hands out named writable outputs whose paths are usable as new
// target sources.
//
// Implementations must be safe for concurrent use by all workers.
type Sink interface {
	// Create opens a named artifact under the given scope and returns
	// its path and a writable handle. The caller owns the handle and
	// must close it on all exit paths.
	Create(scope, name string) (string, io.WriteCloser, error)
}

// Dir is a Sink backed by a directory tree: one subdirectory per scope,
// one file per artifact.
type Dir struct {
	root string
}

// NewDir creates a directory-backed sink rooted at root, creating the
// root if needed.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}
	return &Dir{root: root}, nil
}

// Root returns the sink's root directory.
func (d *Dir) Root() string {
	return d.root
}

// Create opens root/scope/name for writing. Both path components are
// sanitized: separators and parent references in unit-chosen names must
// not escape the sink root.
func (d *Dir) Create(scope, name string) (string, io.WriteCloser, error) {
	dir := filepath.Join(d.root, sanitize(scope))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create artifact scope: %w", err)
	}

	path := filepath.Join(dir, sanitize(name))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", nil, fmt.Errorf("create artifact %s: %w", path, err)
	}
	return path, f, nil
}

// WriteAll writes data to a named artifact and guarantees the handle is
// closed on every exit path, including write failures. Returns the
// artifact path.
func WriteAll(s Sink, scope, name string, data []byte) (string, error) {
	path, w, err := s.Create(scope, name)
	if err != nil {
		return "", err
	}

	_, werr := w.Write(data)
	cerr := w.Close()
	if werr != nil {
		return "", fmt.Errorf("write artifact %s: %w", path, werr)
	}
	if cerr != nil {
		return "", fmt.Errorf("close artifact %s: %w", path, cerr)
	}
	return path, nil
}

// sanitize strips path structure from a component so artifacts cannot
// escape the sink root.
func sanitize(component string) string {
	component = filepath.Base(strings.ReplaceAll(component, "\\", "/"))
	if component == "" || component == "." || component == ".." {
		return "_"
	}
	return component
}
