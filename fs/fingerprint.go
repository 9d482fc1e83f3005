package fs

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/fwojciec/fixup"
)

// Compile-time interface verification.
var _ fixup.Fingerprinter = (*Fingerprinter)(nil)

// fingerprintLen is the number of hex characters in a fingerprint,
// enough to identify content in reports without quoting a full digest.
const fingerprintLen = 12

// Fingerprinter produces short sha256-based content identifiers.
type Fingerprinter struct{}

// NewFingerprinter creates a new Fingerprinter.
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{}
}

// Fingerprint returns a stable short identifier for data.
func (f *Fingerprinter) Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}
