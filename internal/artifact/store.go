// Package artifact writes the captured output of evaluated programs to a
// per-run directory, optionally zstd-compressed.
package artifact

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const zstdExt = ".zst"

// Store is a run's artifact directory: <root>/<runID>/<repoID>/<name>.
type Store struct {
	dir      string
	compress bool
}

// NewStore creates the run directory under root.
func NewStore(root, runID string, compress bool) (*Store, error) {
	dir := filepath.Join(root, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifacts dir: %w", err)
	}
	return &Store{dir: dir, compress: compress}, nil
}

// Dir returns the run directory.
func (s *Store) Dir() string {
	return s.dir
}

// Write stores data as <repoID>/<name>, appending .zst when compressing.
// A later write for the same repository and name replaces the earlier one.
func (s *Store) Write(repoID, name string, data []byte) (string, error) {
	dir := filepath.Join(s.dir, repoID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	path := filepath.Join(dir, name)
	if !s.compress {
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		return path, nil
	}

	path += zstdExt
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	enc, err := zstd.NewWriter(f)
	if err != nil {
		return "", fmt.Errorf("create zstd writer: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return "", fmt.Errorf("compress %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("compress %s: %w", path, err)
	}
	return path, f.Close()
}

// WriteOutput stores a program's captured streams as stdout.log and
// stderr.log. Empty streams are skipped.
func (s *Store) WriteOutput(repoID, stdout, stderr string) ([]string, error) {
	var paths []string
	for _, stream := range []struct{ name, data string }{
		{"stdout.log", stdout},
		{"stderr.log", stderr},
	} {
		if stream.data == "" {
			continue
		}
		p, err := s.Write(repoID, stream.name, []byte(stream.data))
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// ReadFile returns the contents of an artifact, decompressing .zst files.
func ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if filepath.Ext(path) != zstdExt {
		return io.ReadAll(f)
	}

	d, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer d.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, d); err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	return buf.Bytes(), nil
}
