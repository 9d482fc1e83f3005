package fixup

import (
	"fmt"
	"strings"
)

// PatchResult is the outcome of applying one file's diff in memory.
type PatchResult struct {
	Content  string   // New file content, LF separated, single trailing newline
	Warnings []string // Positional-drift notes from fuzzy-located hunks
}

// Engine applies a full diff's hunks, in order, to an in-memory line
// buffer, threading the net line-count shift of each hunk into the
// next hunk's expected position.
type Engine struct {
	locator *Locator
}

// NewEngine creates a new Engine.
func NewEngine() *Engine {
	return &Engine{locator: NewLocator()}
}

// Apply patches original with every hunk of diff and returns the new
// content. A hunk that cannot be located fails the whole file: a
// silently skipped hunk would desynchronize the remaining hunks'
// offsets.
func (e *Engine) Apply(original string, diff *UnifiedDiff) (*PatchResult, error) {
	buffer := splitLines(normalizeLineEndings(original))

	result := &PatchResult{}
	offset := 0

	for _, hunk := range diff.Hunks {
		body := hunk.bodyLines()

		expected := hunk.OldStart - 1 + offset
		if expected < 0 {
			expected = 0
		}

		pos, err := e.locator.Locate(buffer, expected, anchorLines(body))
		if err != nil {
			return nil, err
		}
		if pos != expected {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("hunk expected at line %d applied at line %d", expected+1, pos+1))
		}

		var applied int
		buffer, applied = applyBody(buffer, pos, body)
		offset += applied
	}

	result.Content = strings.Join(buffer, "\n") + "\n"
	return result, nil
}

// applyBody mutates lines starting at pos according to the hunk body
// and returns the new buffer along with the net line-count change.
// Context lines advance the cursor, removals delete in place (the
// following line shifts into the cursor), additions insert and
// advance. Insertions past the end of the buffer append.
func applyBody(lines []string, pos int, body []string) ([]string, int) {
	cursor := pos
	added, removed := 0, 0

	for _, line := range body {
		switch {
		case strings.HasPrefix(line, "+"):
			content := line[1:]
			if cursor >= len(lines) {
				lines = append(lines, content)
			} else {
				lines = append(lines[:cursor], append([]string{content}, lines[cursor:]...)...)
			}
			cursor++
			added++
		case strings.HasPrefix(line, "-"):
			if cursor < len(lines) {
				lines = append(lines[:cursor], lines[cursor+1:]...)
				removed++
			}
		default:
			cursor++
		}
	}

	return lines, added - removed
}

// anchorLines returns the hunk body lines that must exist in the
// current file (context and removals, stripped of their prefix).
// Additions are never part of the match target: they do not yet
// exist in the file.
func anchorLines(body []string) []string {
	var anchors []string
	for _, line := range body {
		switch {
		case strings.HasPrefix(line, "-"):
			anchors = append(anchors, line[1:])
		case strings.HasPrefix(line, "+"):
			// skip
		default:
			anchors = append(anchors, strings.TrimPrefix(line, " "))
		}
	}
	return anchors
}

// bodyLines extracts the prefixed body lines of a hunk, skipping the
// @@ header and no-newline markers. Hunk content never carries ---/+++
// file markers (the parser rebuilds it from individual fragment lines),
// so a leading -- or ++ is real content: a removal of "-- old" arrives
// here as "--- old" and must survive intact.
func (h Hunk) bodyLines() []string {
	var body []string
	for _, line := range strings.Split(h.Content, "\n") {
		switch {
		case strings.HasPrefix(line, "@@"):
			continue
		case strings.HasPrefix(line, `\`):
			continue
		case line == "":
			continue
		}
		body = append(body, line)
	}
	return body
}

// Stats returns the number of added and removed lines in the hunk.
func (h Hunk) Stats() (added, removed int) {
	for _, line := range h.bodyLines() {
		switch {
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}

// normalizeLineEndings collapses CRLF and lone CR to LF. Diffs are
// generated and matched against a canonical LF line model regardless
// of the file's on-disk line-ending style.
func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// splitLines splits LF-normalized content into a line buffer,
// dropping the empty element produced by a trailing newline.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
