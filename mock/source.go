package mock

import (
	"context"

	"github.com/fwojciec/fixup"
)

// Compile-time interface verification.
var _ fixup.DiffSource = (*DiffSource)(nil)

// DiffSource is a mock implementation of fixup.DiffSource.
type DiffSource struct {
	DiffFn func(ctx context.Context, repoPath, ref string) (string, error)
}

func (s *DiffSource) Diff(ctx context.Context, repoPath, ref string) (string, error) {
	return s.DiffFn(ctx, repoPath, ref)
}
