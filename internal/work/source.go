package work

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// SourceKind distinguishes how a submission's raw content is obtained.
type SourceKind int

const (
	// SourceBytes is inline content submitted directly.
	SourceBytes SourceKind = iota + 1
	// SourceFile is a path on the local filesystem.
	SourceFile
	// SourceURL is an http(s) URL fetched at resolution time.
	SourceURL
)

// String returns the kind name for logs and summaries.
func (k SourceKind) String() string {
	switch k {
	case SourceBytes:
		return "bytes"
	case SourceFile:
		return "file"
	case SourceURL:
		return "url"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// maxFetchBytes caps file and URL resolution. Inputs in this domain are
// small; the cap protects the engine from being pointed at a block device
// or an unbounded HTTP response.
const maxFetchBytes = 64 << 20 // 64 MiB

// Source describes where a Target's raw content comes from: inline bytes,
// a file path, or a URL. The engine treats all three uniformly once
// resolved to raw content and a ContentKey.
type Source struct {
	Kind     SourceKind
	Inline   []byte // set for SourceBytes
	Location string // path or URL for SourceFile/SourceURL
}

// BytesSource wraps inline content.
func BytesSource(data []byte) Source {
	return Source{Kind: SourceBytes, Inline: data}
}

// FileSource references a local file path.
func FileSource(path string) Source {
	return Source{Kind: SourceFile, Location: path}
}

// URLSource references an http(s) URL.
func URLSource(u string) Source {
	return Source{Kind: SourceURL, Location: u}
}

// InferSource classifies a raw user submission string.
//
// Classification order: an existing local path wins, then a well-formed
// http(s) URL, then inline bytes. A file named "http://..." on disk is
// therefore treated as a file, which matches what a user pointing the
// tool at their own directory expects.
func InferSource(s string) Source {
	if _, err := os.Stat(s); err == nil {
		return FileSource(s)
	}
	if u, err := url.Parse(s); err == nil {
		if u.Scheme == "http" || u.Scheme == "https" {
			return URLSource(s)
		}
	}
	return BytesSource([]byte(s))
}

// Resolve obtains the raw content for the source.
//
// File reads and URL fetches honor ctx and are capped at maxFetchBytes.
// Inline sources resolve to their bytes without copying.
func (s Source) Resolve(ctx context.Context) ([]byte, error) {
	switch s.Kind {
	case SourceBytes:
		return s.Inline, nil

	case SourceFile:
		f, err := os.Open(s.Location)
		if err != nil {
			return nil, fmt.Errorf("open target file: %w", err)
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, maxFetchBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read target file %s: %w", s.Location, err)
		}
		if len(data) > maxFetchBytes {
			return nil, fmt.Errorf("target file %s exceeds %d byte limit", s.Location, maxFetchBytes)
		}
		return data, nil

	case SourceURL:
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Location, nil)
		if err != nil {
			return nil, fmt.Errorf("build target request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch target url %s: %w", s.Location, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch target url %s: unexpected status %s", s.Location, resp.Status)
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes+1))
		if err != nil {
			return nil, fmt.Errorf("read target url %s: %w", s.Location, err)
		}
		if len(data) > maxFetchBytes {
			return nil, fmt.Errorf("target url %s exceeds %d byte limit", s.Location, maxFetchBytes)
		}
		return data, nil

	default:
		return nil, fmt.Errorf("unknown source kind: %d", int(s.Kind))
	}
}

// Describe returns a short human-readable description of the source.
func (s Source) Describe() string {
	switch s.Kind {
	case SourceBytes:
		preview := string(s.Inline)
		if len(preview) > 32 {
			preview = preview[:32] + "..."
		}
		preview = strings.ReplaceAll(preview, "\n", `\n`)
		return fmt.Sprintf("bytes(%q)", preview)
	case SourceFile:
		return "file(" + s.Location + ")"
	case SourceURL:
		return "url(" + s.Location + ")"
	default:
		return "unknown"
	}
}
