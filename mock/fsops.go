package mock

import "github.com/fwojciec/fixup"

// Compile-time interface verification.
var (
	_ fixup.PathValidator = (*PathValidator)(nil)
	_ fixup.AtomicWriter  = (*AtomicWriter)(nil)
	_ fixup.Fingerprinter = (*Fingerprinter)(nil)
	_ fixup.ReceiptSaver  = (*ReceiptSaver)(nil)
	_ fixup.ReceiptLoader = (*ReceiptLoader)(nil)
)

// PathValidator is a mock implementation of fixup.PathValidator.
type PathValidator struct {
	ValidateFn func(rel string) (string, error)
}

func (v *PathValidator) Validate(rel string) (string, error) {
	return v.ValidateFn(rel)
}

// AtomicWriter is a mock implementation of fixup.AtomicWriter.
type AtomicWriter struct {
	WriteAtomicFn func(path string, data []byte) ([]string, error)
}

func (w *AtomicWriter) WriteAtomic(path string, data []byte) ([]string, error) {
	return w.WriteAtomicFn(path, data)
}

// Fingerprinter is a mock implementation of fixup.Fingerprinter.
type Fingerprinter struct {
	FingerprintFn func(data []byte) string
}

func (f *Fingerprinter) Fingerprint(data []byte) string {
	return f.FingerprintFn(data)
}

// ReceiptSaver is a mock implementation of fixup.ReceiptSaver.
type ReceiptSaver struct {
	SaveFn func(path string, r fixup.Receipt) error
}

func (s *ReceiptSaver) Save(path string, r fixup.Receipt) error {
	return s.SaveFn(path, r)
}

// ReceiptLoader is a mock implementation of fixup.ReceiptLoader.
type ReceiptLoader struct {
	LoadFn func(path string) ([]fixup.Receipt, error)
}

func (l *ReceiptLoader) Load(path string) ([]fixup.Receipt, error) {
	return l.LoadFn(path)
}
