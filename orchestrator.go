package fixup

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Mode selects whether an Orchestrator validates only or mutates
// files. It is fixed at construction; the two are mutually exclusive
// per instance.
type Mode int

// Orchestrator modes.
const (
	ModePreview Mode = iota
	ModeApply
)

// ErrPreviewOnly is returned when ApplyChanges is called on an
// orchestrator constructed in ModePreview.
var ErrPreviewOnly = errors.New("orchestrator was constructed in preview mode; applying is refused")

// ErrApplyOnly is returned when PreviewChanges is called on an
// orchestrator constructed in ModeApply.
var ErrApplyOnly = errors.New("orchestrator was constructed in apply mode; previewing is refused")

// Compile-time interface verification.
var _ Fixer = (*Orchestrator)(nil)

// Orchestrator drives a batch of per-file diffs through validation,
// backup and atomic mutation. Per-file failures never abort the
// batch: every file's outcome is reported in the returned aggregate.
type Orchestrator struct {
	mode        Mode
	validator   PathValidator
	writer      AtomicWriter
	fingerprint Fingerprinter
	engine      *Engine
	legacyMerge bool
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLegacyMerge enables the pre-hunk-format fallback: a diff that
// parsed to zero hunks but carries content is treated as a whole-file
// replacement.
func WithLegacyMerge() OrchestratorOption {
	return func(o *Orchestrator) { o.legacyMerge = true }
}

// NewOrchestrator creates an Orchestrator in the given mode.
func NewOrchestrator(mode Mode, validator PathValidator, writer AtomicWriter, fingerprint Fingerprinter, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		mode:        mode,
		validator:   validator,
		writer:      writer,
		fingerprint: fingerprint,
		engine:      NewEngine(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PreviewChanges validates every diff without mutating anything. The
// dry run uses the same patch engine as ApplyChanges, so preview and
// apply share a single notion of "valid". Line statistics are
// counted from the hunk bodies themselves and reported even when the
// dry run fails. Refused outright in apply mode.
func (o *Orchestrator) PreviewChanges(diffs []UnifiedDiff) (*Preview, error) {
	if o.mode != ModePreview {
		return nil, ErrApplyOnly
	}

	preview := &Preview{AllValid: true}

	for _, diff := range diffs {
		summary := ChangeSummary{
			Path:      diff.TargetFile,
			HunkCount: len(diff.Hunks),
		}
		for _, hunk := range diff.Hunks {
			added, removed := hunk.Stats()
			summary.LinesAdded += added
			summary.LinesRemoved += removed
		}

		summary.ValidationPassed, summary.ValidationMessages = o.dryRun(diff)
		if !summary.ValidationPassed {
			preview.AllValid = false
		}
		preview.Files = append(preview.Files, summary)
	}

	return preview, nil
}

// dryRun checks a single diff's path and applies its hunks to the
// current content in memory, without writing.
func (o *Orchestrator) dryRun(diff UnifiedDiff) (bool, []string) {
	resolved, err := o.validator.Validate(diff.TargetFile)
	if err != nil {
		return false, []string{fmt.Sprintf("path rejected: %v", err)}
	}

	content, err := os.ReadFile(resolved)
	if err != nil {
		return false, []string{fmt.Sprintf("target unreadable: %v", err)}
	}

	result, err := o.engine.Apply(string(content), &diff)
	if err != nil {
		return false, []string{fmt.Sprintf("patch does not apply: %v", err)}
	}
	return true, result.Warnings
}

// ApplyChanges patches every diff's target file on disk. Each file is
// backed up to <target>.bak before its content is replaced through
// the atomic writer, and the original permissions are restored on the
// new file. Refused outright in preview mode.
func (o *Orchestrator) ApplyChanges(diffs []UnifiedDiff) (*Result, error) {
	if o.mode != ModeApply {
		return nil, ErrPreviewOnly
	}

	result := &Result{RunID: uuid.New()}

	for _, diff := range diffs {
		applied, legacy, err := o.applyOne(diff)
		if err != nil {
			var fe *FileError
			if errors.As(err, &fe) {
				result.FailedFiles = append(result.FailedFiles, fe.Path)
			} else {
				result.FailedFiles = append(result.FailedFiles, diff.TargetFile)
			}
			result.Warnings = append(result.Warnings, err.Error())
			continue
		}
		if legacy {
			result.LegacyMergeUsed = true
		}
		result.AppliedFiles = append(result.AppliedFiles, *applied)
	}

	return result, nil
}

// applyOne runs the full mutation pipeline for a single file:
// validate, read, snapshot permissions, patch, fingerprint, back up,
// commit atomically, restore permissions.
func (o *Orchestrator) applyOne(diff UnifiedDiff) (*AppliedFile, bool, error) {
	path := diff.TargetFile

	resolved, err := o.validator.Validate(path)
	if err != nil {
		return nil, false, &FileError{Path: path, Reason: ReasonPathRejected, Err: err}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, false, &FileError{Path: path, Reason: ReasonTargetMissing, Err: err}
	}

	original, err := os.ReadFile(resolved)
	if err != nil {
		return nil, false, &FileError{Path: path, Reason: ReasonTargetMissing, Err: err}
	}

	applied := &AppliedFile{Path: path}

	newContent, legacy, err := o.newContent(string(original), diff, applied)
	if err != nil {
		return nil, false, &FileError{Path: path, Reason: ReasonNoMatch, Err: err}
	}

	applied.Fingerprint = o.fingerprint.Fingerprint([]byte(newContent))

	// The backup must exist before anything destructive happens; a
	// backup that cannot be created means the write is never attempted.
	if err := writeBackup(resolved, original, info.Mode()); err != nil {
		return nil, false, &FileError{Path: path, Reason: ReasonBackupFailed, Err: err}
	}

	warnings, err := o.writer.WriteAtomic(resolved, []byte(newContent))
	if err != nil {
		return nil, false, &FileError{Path: path, Reason: ReasonWriteFailed, Err: err}
	}
	applied.Warnings = append(applied.Warnings, warnings...)

	// Content is already committed; permission drift is reported but
	// does not fail the file.
	if err := os.Chmod(resolved, info.Mode().Perm()); err != nil {
		applied.Warnings = append(applied.Warnings,
			fmt.Sprintf("failed to restore permissions: %v", err))
	}

	applied.Applied = true
	return applied, legacy, nil
}

// newContent computes the patched content for a file, falling back to
// whole-file replacement for hunkless legacy diffs when enabled.
func (o *Orchestrator) newContent(original string, diff UnifiedDiff, applied *AppliedFile) (string, bool, error) {
	if len(diff.Hunks) == 0 && o.legacyMerge && strings.TrimSpace(diff.DiffContent) != "" {
		applied.Warnings = append(applied.Warnings, "legacy merge: diff content used as full replacement")
		content := normalizeLineEndings(diff.DiffContent)
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		return content, true, nil
	}

	result, err := o.engine.Apply(original, &diff)
	if err != nil {
		return "", false, err
	}
	applied.Warnings = append(applied.Warnings, result.Warnings...)
	return result.Content, false, nil
}

// writeBackup copies the original content to <target>.bak, carrying
// over the original file mode. The backup is left on disk after a
// successful apply.
func writeBackup(path string, content []byte, mode os.FileMode) error {
	bak, err := os.OpenFile(path+".bak", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := bak.Write(content); err != nil {
		bak.Close()
		return err
	}
	if err := bak.Sync(); err != nil {
		bak.Close()
		return err
	}
	return bak.Close()
}
