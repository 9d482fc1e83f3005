// Package fs provides filesystem-backed implementations of the fixup
// collaborator interfaces: sandboxed path resolution, atomic content
// replacement and content fingerprinting.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/fixup"
)

// Compile-time interface verification.
var _ fixup.PathValidator = (*Sandbox)(nil)

// Sandbox validates request paths against a root directory. Absolute
// paths, traversal escapes and symlink escapes are rejected.
type Sandbox struct {
	root string
}

// NewSandbox creates a Sandbox rooted at root.
func NewSandbox(root string) *Sandbox {
	return &Sandbox{root: root}
}

// Validate resolves rel against the sandbox root and returns the
// absolute target path. The returned path may not exist yet; its
// parent directory is resolved and boundary-checked instead, so that
// a symlinked parent cannot smuggle a write outside the root.
func (s *Sandbox) Validate(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("path is required")
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("absolute paths are not allowed: %s", rel)
	}

	cleaned := filepath.Clean(rel)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes sandbox root: %s", rel)
	}

	rootResolved, err := filepath.EvalSymlinks(s.root)
	if err != nil {
		return "", fmt.Errorf("resolve sandbox root: %w", err)
	}

	abs := filepath.Join(rootResolved, cleaned)

	// If the target exists, resolve it fully so a symlink inside the
	// root cannot point outside it.
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("resolve path: %w", err)
		}
		// Target absent: resolve and check the parent instead.
		parent, err := filepath.EvalSymlinks(filepath.Dir(abs))
		if err != nil {
			return "", fmt.Errorf("resolve parent directory: %w", err)
		}
		if !within(parent, rootResolved) {
			return "", fmt.Errorf("path escapes sandbox root via symlink: %s", rel)
		}
		return filepath.Join(parent, filepath.Base(abs)), nil
	}

	if !within(resolved, rootResolved) {
		return "", fmt.Errorf("path escapes sandbox root via symlink: %s", rel)
	}

	// Reject symlinked targets themselves: patching through a link
	// would replace the link, not the file it points at.
	info, err := os.Lstat(abs)
	if err == nil && info.Mode()&os.ModeSymlink != 0 {
		return "", fmt.Errorf("symlinked targets are not allowed: %s", rel)
	}

	return resolved, nil
}

// within reports whether candidate equals parent or is a descendant of it.
func within(candidate, parent string) bool {
	return candidate == parent || strings.HasPrefix(candidate, parent+string(filepath.Separator))
}
