package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/fixup"
)

// Compile-time interface verification.
var _ fixup.AtomicWriter = (*Writer)(nil)

// Writer replaces file content atomically: the new content is written
// to a temp file in the target's directory, fsynced, then renamed
// over the target. When the rename fails across a filesystem boundary
// the content is copied into place instead, which loses rename
// atomicity; that degradation is surfaced as a warning.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteAtomic commits data to path. The target either keeps its old
// content or holds the complete new content; no observer sees a
// partial write at the target path.
func (w *Writer) WriteAtomic(path string, data []byte) ([]string, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".fixup-write-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return nil, fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		// Rename cannot cross filesystem boundaries; fall back to a
		// direct copy of the already-synced temp content.
		if copyErr := copyInto(tmpPath, path); copyErr != nil {
			return nil, fmt.Errorf("rename temp file: %v; copy fallback: %w", err, copyErr)
		}
		os.Remove(tmpPath)
		committed = true
		return []string{fmt.Sprintf("atomic rename unavailable for %s, used copy fallback", path)}, nil
	}

	committed = true
	return nil, nil
}

// copyInto writes src's content over dst and syncs it.
func copyInto(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
