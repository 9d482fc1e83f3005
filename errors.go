package fixup

import "fmt"

// FailureReason identifies why a file's patch application failed.
type FailureReason string

// Per-file failure reasons.
const (
	ReasonPathRejected  FailureReason = "path_rejected"
	ReasonTargetMissing FailureReason = "target_missing"
	ReasonNoMatch       FailureReason = "no_match"
	ReasonBackupFailed  FailureReason = "backup_failed"
	ReasonWriteFailed   FailureReason = "write_failed"
)

// FileError describes a single file's failure within a batch. It
// never aborts the batch; the orchestrator records it and continues.
type FileError struct {
	Path   string
	Reason FailureReason
	Err    error // Underlying cause, may be nil
}

// Error implements the error interface.
func (e *FileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *FileError) Unwrap() error {
	return e.Err
}

// NoMatchError reports that no candidate position within the search
// window reached the match-ratio threshold for a hunk.
type NoMatchError struct {
	ExpectedLine int // 1-based line the hunk was expected at
	Window       int // Half-width of the search window, in lines
}

// Error implements the error interface.
func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no acceptable match for hunk expected at line %d (searched ±%d lines)",
		e.ExpectedLine, e.Window)
}
