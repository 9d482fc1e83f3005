package lipgloss_test

import (
	"testing"
	"time"

	"github.com/fwojciec/fixup"
	"github.com/fwojciec/fixup/lipgloss"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRenderer_RenderPreview(t *testing.T) {
	t.Parallel()

	r := lipgloss.NewRenderer()

	t.Run("lists every file with its stats", func(t *testing.T) {
		t.Parallel()

		out := r.RenderPreview(&fixup.Preview{
			Files: []fixup.ChangeSummary{
				{Path: "a.txt", HunkCount: 2, LinesAdded: 3, LinesRemoved: 1, ValidationPassed: true},
				{Path: "b.txt", HunkCount: 1, ValidationPassed: false, ValidationMessages: []string{"path rejected: absolute paths are not allowed"}},
			},
		})

		assert.Contains(t, out, "a.txt")
		assert.Contains(t, out, "2 hunks, +3 -1")
		assert.Contains(t, out, "b.txt")
		assert.Contains(t, out, "path rejected")
		assert.Contains(t, out, "validation failed")
	})

	t.Run("reports a clean batch as ready", func(t *testing.T) {
		t.Parallel()

		out := r.RenderPreview(&fixup.Preview{
			Files:    []fixup.ChangeSummary{{Path: "a.txt", ValidationPassed: true}},
			AllValid: true,
		})

		assert.Contains(t, out, "1 file(s) ready to apply")
	})
}

func TestRenderer_RenderResult(t *testing.T) {
	t.Parallel()

	r := lipgloss.NewRenderer()

	id := uuid.New()
	out := r.RenderResult(&fixup.Result{
		RunID: id,
		AppliedFiles: []fixup.AppliedFile{
			{Path: "a.txt", Fingerprint: "abc123def456", Applied: true, Warnings: []string{"hunk expected at line 2 applied at line 4"}},
		},
		FailedFiles: []string{"b.txt"},
		Warnings:    []string{"b.txt: no_match"},
	})

	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "abc123def456")
	assert.Contains(t, out, "applied at line 4")
	assert.Contains(t, out, "b.txt")
	assert.Contains(t, out, id.String())
	assert.Contains(t, out, "1 applied, 1 failed")
}

func TestRenderer_RenderReceipts(t *testing.T) {
	t.Parallel()

	r := lipgloss.NewRenderer()

	t.Run("summarises each recorded run", func(t *testing.T) {
		t.Parallel()

		clean := uuid.New()
		partial := uuid.New()
		out := r.RenderReceipts([]fixup.Receipt{
			{
				RunID:        clean,
				Timestamp:    time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC),
				AppliedFiles: []fixup.AppliedFile{{Path: "a.txt", Applied: true}},
			},
			{
				RunID:       partial,
				FailedFiles: []string{"b.txt"},
			},
		})

		assert.Contains(t, out, clean.String())
		assert.Contains(t, out, "2026-08-20 10:30:00")
		assert.Contains(t, out, "1 applied, 0 failed")
		assert.Contains(t, out, partial.String())
		assert.Contains(t, out, "0 applied, 1 failed")
	})

	t.Run("empty history", func(t *testing.T) {
		t.Parallel()

		out := r.RenderReceipts(nil)

		assert.Contains(t, out, "no receipts recorded")
	})
}
