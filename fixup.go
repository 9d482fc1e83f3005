// Package fixup applies machine-generated unified-diff patches to a
// working tree, tolerating drift between the diffed state and the
// files currently on disk.
package fixup

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// UnifiedDiff represents the parsed changes for a single target file.
type UnifiedDiff struct {
	TargetFile  string // Relative path of the file the diff applies to
	DiffContent string // Raw diff text as received from the review pass
	Hunks       []Hunk // Ordered by ascending OldStart
}

// Hunk is one contiguous block of a unified diff.
type Hunk struct {
	OldStart int    // 1-based start line in the original file, from @@ -X,Y
	OldCount int    // Line count in the original file, from @@ -X,Y
	Content  string // Raw hunk text including the @@ header line
}

// ChangeSummary describes the preview outcome for a single file.
type ChangeSummary struct {
	Path               string
	HunkCount          int
	LinesAdded         int
	LinesRemoved       int
	ValidationPassed   bool
	ValidationMessages []string
}

// Preview is the aggregate outcome of a preview run.
type Preview struct {
	Files    []ChangeSummary
	AllValid bool // True only if every file passed path and dry-run validation
}

// AppliedFile describes the apply outcome for a single file.
type AppliedFile struct {
	Path        string
	Fingerprint string // Short content hash of the new file content
	Applied     bool
	Warnings    []string
}

// Result is the aggregate outcome of an apply run.
type Result struct {
	RunID           uuid.UUID
	AppliedFiles    []AppliedFile
	FailedFiles     []string
	Warnings        []string
	LegacyMergeUsed bool
}

// Receipt is the persisted record of one apply run.
type Receipt struct {
	RunID        uuid.UUID     `json:"run_id"`
	Timestamp    time.Time     `json:"timestamp"`
	AppliedFiles []AppliedFile `json:"applied_files"`
	FailedFiles  []string      `json:"failed_files,omitempty"`
	Warnings     []string      `json:"warnings,omitempty"`
}

// Parser produces per-file diffs from raw unified diff text.
type Parser interface {
	Parse(r io.Reader) ([]UnifiedDiff, error)
}

// DiffSource provides raw unified diff text from a version-control
// working tree, as an alternative to diff files or stdin.
type DiffSource interface {
	// Diff returns the diff for ref in the repository at repoPath.
	// An empty ref means the uncommitted working-tree changes.
	Diff(ctx context.Context, repoPath, ref string) (string, error)
}

// PathValidator resolves a relative path against a sandbox root,
// rejecting absolute paths, traversal escapes and symlink escapes.
type PathValidator interface {
	Validate(rel string) (string, error)
}

// AtomicWriter replaces a file's content such that any observer sees
// either the fully old or fully new content, never an intermediate
// state. Returned warnings report degraded but successful writes
// (e.g. a cross-filesystem copy fallback).
type AtomicWriter interface {
	WriteAtomic(path string, data []byte) ([]string, error)
}

// Fingerprinter produces a stable, content-addressed short identifier
// used for reporting and auditing.
type Fingerprinter interface {
	Fingerprint(data []byte) string
}

// ReceiptSaver persists apply-run receipts.
type ReceiptSaver interface {
	Save(path string, r Receipt) error
}

// ReceiptLoader reads back previously persisted apply-run receipts.
type ReceiptLoader interface {
	Load(path string) ([]Receipt, error)
}

// Fixer validates and applies a batch of parsed diffs.
type Fixer interface {
	PreviewChanges(diffs []UnifiedDiff) (*Preview, error)
	ApplyChanges(diffs []UnifiedDiff) (*Result, error)
}
