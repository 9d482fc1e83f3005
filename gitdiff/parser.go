// Package gitdiff implements diff parsing using bluekeyes/go-gitdiff.
package gitdiff

import (
	"fmt"
	"io"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/fwojciec/fixup"
)

// Compile-time interface verification.
var _ fixup.Parser = (*Parser)(nil)

// Parser parses unified diff content using go-gitdiff.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads diff content and returns one UnifiedDiff per target
// file, each with its hunks ordered by ascending old start line and
// the raw hunk text preserved. Binary files are rejected: the patch
// engine is line-oriented.
func (p *Parser) Parse(r io.Reader) ([]fixup.UnifiedDiff, error) {
	files, _, err := gitdiff.Parse(r)
	if err != nil {
		return nil, err
	}

	diffs := make([]fixup.UnifiedDiff, 0, len(files))
	for _, f := range files {
		target := f.NewName
		if target == "" {
			target = f.OldName
		}
		if target == "" {
			continue // Malformed entry with no usable path
		}
		if f.IsBinary {
			return nil, fmt.Errorf("binary file not supported: %s", target)
		}

		diff := fixup.UnifiedDiff{TargetFile: target}

		var content strings.Builder
		for _, frag := range f.TextFragments {
			hunk := convertFragment(frag)
			diff.Hunks = append(diff.Hunks, hunk)
			content.WriteString(hunk.Content)
		}
		diff.DiffContent = content.String()

		diffs = append(diffs, diff)
	}

	return diffs, nil
}

// convertFragment rebuilds a hunk's raw text (header plus prefixed
// body lines) from a parsed fragment.
func convertFragment(frag *gitdiff.TextFragment) fixup.Hunk {
	var sb strings.Builder
	sb.WriteString(frag.Header())
	sb.WriteString("\n")
	for _, l := range frag.Lines {
		sb.WriteString(l.Op.String())
		sb.WriteString(strings.TrimSuffix(l.Line, "\n"))
		sb.WriteString("\n")
		if l.NoEOL() {
			sb.WriteString("\\ No newline at end of file\n")
		}
	}

	return fixup.Hunk{
		OldStart: int(frag.OldPosition),
		OldCount: int(frag.OldLines),
		Content:  sb.String(),
	}
}
