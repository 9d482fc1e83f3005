// Package git provides diff text from a git working tree via shell commands.
package git

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/fwojciec/fixup"
)

// Compile-time interface verification.
var _ fixup.DiffSource = (*Runner)(nil)

// Runner executes git commands via shell.
type Runner struct{}

// NewRunner creates a new git runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Diff returns unified diff text for ref in the repository at
// repoPath. An empty ref returns the uncommitted working-tree
// changes; otherwise the diff introduced by that commit is returned.
func (r *Runner) Diff(ctx context.Context, repoPath, ref string) (string, error) {
	args := []string{"-C", repoPath}
	if ref == "" {
		args = append(args, "diff")
	} else {
		args = append(args, "show", "--format=", ref)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("git diff failed: %s", string(exitErr.Stderr))
		}
		return "", fmt.Errorf("git diff failed: %w", err)
	}
	return string(output), nil
}
