package mock

import "github.com/fwojciec/fixup"

// Compile-time interface verification.
var _ fixup.Fixer = (*Fixer)(nil)

// Fixer is a mock implementation of fixup.Fixer.
type Fixer struct {
	PreviewChangesFn func(diffs []fixup.UnifiedDiff) (*fixup.Preview, error)
	ApplyChangesFn   func(diffs []fixup.UnifiedDiff) (*fixup.Result, error)
}

func (f *Fixer) PreviewChanges(diffs []fixup.UnifiedDiff) (*fixup.Preview, error) {
	return f.PreviewChangesFn(diffs)
}

func (f *Fixer) ApplyChanges(diffs []fixup.UnifiedDiff) (*fixup.Result, error) {
	return f.ApplyChangesFn(diffs)
}
