// Package persistence implements the on-disk formats used by graphword:
// the whitespace-separated edge list and the atomic file replacement that
// every snapshot and event-log partition is written through.
package persistence

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SnapshotWriter streams a new version of a file into a temporary sibling and
// swaps it over the target on Commit. Readers of the target never observe a
// half-written file.
type SnapshotWriter struct {
	file *os.File
	buf  *bufio.Writer
	path string
	done bool
}

// NewSnapshotWriter creates the parent directory of path (if missing) and
// opens a temporary file next to it.
func NewSnapshotWriter(path string) (*SnapshotWriter, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to open temp file for %s: %w", path, err)
	}

	return &SnapshotWriter{
		file: file,
		buf:  bufio.NewWriter(file),
		path: path,
	}, nil
}

// Write implements io.Writer.
func (s *SnapshotWriter) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

// Commit flushes, fsyncs and renames the temporary file over the target.
func (s *SnapshotWriter) Commit() error {
	if s.done {
		return fmt.Errorf("snapshot %s already finished", s.path)
	}
	s.done = true

	tmp := s.file.Name()
	if err := s.buf.Flush(); err != nil {
		s.file.Close()
		os.Remove(tmp)
		return err
	}
	if err := s.file.Sync(); err != nil {
		s.file.Close()
		os.Remove(tmp)
		return err
	}
	if err := s.file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// Abort discards the temporary file. Safe to call after Commit.
func (s *SnapshotWriter) Abort() {
	if s.done {
		return
	}
	s.done = true
	tmp := s.file.Name()
	_ = s.file.Close()
	_ = os.Remove(tmp)
}

// WriteFileAtomic replaces path with whatever fn writes.
// If fn fails the previous content of path is left untouched.
func WriteFileAtomic(path string, fn func(w io.Writer) error) error {
	sw, err := NewSnapshotWriter(path)
	if err != nil {
		return err
	}
	defer sw.Abort()

	if err := fn(sw); err != nil {
		return err
	}
	return sw.Commit()
}
