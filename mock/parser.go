package mock

import (
	"io"

	"github.com/fwojciec/fixup"
)

// Compile-time interface verification.
var _ fixup.Parser = (*Parser)(nil)

// Parser is a mock implementation of fixup.Parser.
type Parser struct {
	ParseFn func(r io.Reader) ([]fixup.UnifiedDiff, error)
}

func (p *Parser) Parse(r io.Reader) ([]fixup.UnifiedDiff, error) {
	return p.ParseFn(r)
}
