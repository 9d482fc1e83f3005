// Package lipgloss renders fixup previews and results for terminal
// output using the Lipgloss styling library.
package lipgloss

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/fixup"
	"github.com/muesli/termenv"
)

// Renderer renders previews and results as styled terminal text.
type Renderer struct {
	ok      lipgloss.Style
	failed  lipgloss.Style
	warning lipgloss.Style
	path    lipgloss.Style
	muted   lipgloss.Style
}

// NewRenderer creates a Renderer, degrading to plain text when the
// environment advertises no color support.
func NewRenderer() *Renderer {
	if termenv.EnvColorProfile() == termenv.Ascii {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")), // Green
		failed:  lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8")), // Red
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af")), // Yellow
		path:    lipgloss.NewStyle().Bold(true),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086")), // Muted gray
	}
}

// RenderPreview formats a preview run, one line per file plus a
// summary line.
func (r *Renderer) RenderPreview(p *fixup.Preview) string {
	var sb strings.Builder

	for _, f := range p.Files {
		status := r.ok.Render("ok")
		if !f.ValidationPassed {
			status = r.failed.Render("invalid")
		}
		sb.WriteString(fmt.Sprintf("%s  %s  %s\n",
			status,
			r.path.Render(f.Path),
			r.muted.Render(fmt.Sprintf("%d hunks, +%d -%d", f.HunkCount, f.LinesAdded, f.LinesRemoved)),
		))
		for _, msg := range f.ValidationMessages {
			sb.WriteString("    " + r.warning.Render(msg) + "\n")
		}
	}

	if p.AllValid {
		sb.WriteString(r.ok.Render(fmt.Sprintf("%d file(s) ready to apply", len(p.Files))) + "\n")
	} else {
		sb.WriteString(r.failed.Render("validation failed; nothing will be applied cleanly") + "\n")
	}

	return sb.String()
}

// RenderResult formats an apply run.
func (r *Renderer) RenderResult(res *fixup.Result) string {
	var sb strings.Builder

	for _, f := range res.AppliedFiles {
		sb.WriteString(fmt.Sprintf("%s  %s  %s\n",
			r.ok.Render("applied"),
			r.path.Render(f.Path),
			r.muted.Render(f.Fingerprint),
		))
		for _, w := range f.Warnings {
			sb.WriteString("    " + r.warning.Render(w) + "\n")
		}
	}
	for _, path := range res.FailedFiles {
		sb.WriteString(fmt.Sprintf("%s  %s\n", r.failed.Render("failed"), r.path.Render(path)))
	}
	for _, w := range res.Warnings {
		sb.WriteString(r.warning.Render(w) + "\n")
	}

	sb.WriteString(r.muted.Render(fmt.Sprintf("run %s: %d applied, %d failed",
		res.RunID, len(res.AppliedFiles), len(res.FailedFiles))) + "\n")

	return sb.String()
}

// RenderReceipts formats persisted apply-run receipts, newest last,
// one summary line per run.
func (r *Renderer) RenderReceipts(receipts []fixup.Receipt) string {
	if len(receipts) == 0 {
		return r.muted.Render("no receipts recorded") + "\n"
	}

	var sb strings.Builder
	for _, rec := range receipts {
		status := r.ok.Render("clean")
		if len(rec.FailedFiles) > 0 {
			status = r.failed.Render("partial")
		}
		sb.WriteString(fmt.Sprintf("%s  %s  %s\n",
			status,
			r.path.Render(rec.RunID.String()),
			r.muted.Render(fmt.Sprintf("%s: %d applied, %d failed",
				rec.Timestamp.Format("2006-01-02 15:04:05"), len(rec.AppliedFiles), len(rec.FailedFiles))),
		))
	}
	return sb.String()
}
