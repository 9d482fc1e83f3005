// Command fixup previews and applies machine-generated unified-diff
// patches against a sandboxed working tree.
//
// Usage:
//
//	fixup [-root DIR] [-apply] [-legacy] [-receipts FILE]
//	      [-git-worktree | -git-ref COMMIT] [diff files...]
//	fixup -receipts FILE -list-receipts
//
// With no file arguments the diff is read from stdin, or from git when
// one of the -git flags is set. Preview is the default; -apply mutates
// files (backing each one up to <target>.bak). -list-receipts prints
// the run history recorded in the receipts file instead of patching.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fwojciec/fixup"
	"github.com/fwojciec/fixup/fs"
	"github.com/fwojciec/fixup/git"
	"github.com/fwojciec/fixup/gitdiff"
	"github.com/fwojciec/fixup/jsonl"
	"github.com/fwojciec/fixup/lipgloss"
	"golang.org/x/sync/errgroup"
)

// ErrNoInput is returned when no diff input is provided.
var ErrNoInput = errors.New("no input: pipe a diff or provide diff file paths")

// ErrNotClean is returned when a preview finds invalid files or an
// apply run leaves failed files, so the process can exit non-zero.
var ErrNotClean = errors.New("some files did not validate or apply cleanly")

// parseWorkers bounds concurrent diff-file parsing. Application
// itself is always sequential.
const parseWorkers = 4

// App encapsulates the application logic for testing.
type App struct {
	Stdin        io.Reader // Diff source when Paths is empty and UseGit is false
	Paths        []string  // Diff files to load
	UseGit       bool      // Pull the diff from git instead of files/stdin
	GitRef       string    // Commit to diff; empty means working-tree changes
	Root         string    // Sandbox root, also the git repository path
	Source       fixup.DiffSource
	Parser       fixup.Parser
	Fixer        fixup.Fixer
	Apply        bool
	ListReceipts bool               // Print past run receipts instead of patching
	Receipts     fixup.ReceiptSaver // Optional, used with ReceiptPath on apply
	Loader       fixup.ReceiptLoader
	ReceiptPath  string
	Out          io.Writer
	Renderer     *lipgloss.Renderer
}

// Run loads and parses the diff inputs, then previews or applies them.
// In list mode it reads back the recorded receipts instead.
func (a *App) Run(ctx context.Context) error {
	if a.ListReceipts {
		if a.ReceiptPath == "" {
			return errors.New("-list-receipts requires -receipts FILE")
		}
		receipts, err := a.Loader.Load(a.ReceiptPath)
		if err != nil {
			return fmt.Errorf("load receipts: %w", err)
		}
		fmt.Fprint(a.Out, a.Renderer.RenderReceipts(receipts))
		return nil
	}

	diffs, err := a.loadDiffs(ctx)
	if err != nil {
		return err
	}
	if len(diffs) == 0 {
		return ErrNoInput
	}

	if !a.Apply {
		preview, err := a.Fixer.PreviewChanges(diffs)
		if err != nil {
			return err
		}
		fmt.Fprint(a.Out, a.Renderer.RenderPreview(preview))
		if !preview.AllValid {
			return ErrNotClean
		}
		return nil
	}

	result, err := a.Fixer.ApplyChanges(diffs)
	if err != nil {
		return err
	}
	fmt.Fprint(a.Out, a.Renderer.RenderResult(result))

	if a.Receipts != nil && a.ReceiptPath != "" {
		receipt := fixup.Receipt{
			RunID:        result.RunID,
			Timestamp:    time.Now().UTC(),
			AppliedFiles: result.AppliedFiles,
			FailedFiles:  result.FailedFiles,
			Warnings:     result.Warnings,
		}
		if err := a.Receipts.Save(a.ReceiptPath, receipt); err != nil {
			return fmt.Errorf("save receipt: %w", err)
		}
	}

	if len(result.FailedFiles) > 0 {
		return ErrNotClean
	}
	return nil
}

// loadDiffs parses git output, stdin, or the given diff files. Files are parsed
// concurrently but collected in argument order so batches stay
// deterministic.
func (a *App) loadDiffs(ctx context.Context) ([]fixup.UnifiedDiff, error) {
	if a.UseGit {
		text, err := a.Source.Diff(ctx, a.Root, a.GitRef)
		if err != nil {
			return nil, err
		}
		return a.Parser.Parse(strings.NewReader(text))
	}

	if len(a.Paths) == 0 {
		return a.Parser.Parse(a.Stdin)
	}

	parsed := make([][]fixup.UnifiedDiff, len(a.Paths))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(parseWorkers)

	for i, path := range a.Paths {
		i, path := i, path
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			diffs, err := a.Parser.Parse(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			parsed[i] = diffs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var diffs []fixup.UnifiedDiff
	for _, p := range parsed {
		diffs = append(diffs, p...)
	}
	return diffs, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := flag.String("root", ".", "sandbox root directory; patched paths must stay inside it")
	apply := flag.Bool("apply", false, "apply the changes (default is preview only)")
	legacy := flag.Bool("legacy", false, "treat hunkless diffs as whole-file replacements")
	receipts := flag.String("receipts", "", "append a JSONL receipt for apply runs to this file")
	listReceipts := flag.Bool("list-receipts", false, "print the run history from the receipts file and exit")
	gitWorktree := flag.Bool("git-worktree", false, "read the diff from the root's uncommitted git changes")
	gitRef := flag.String("git-ref", "", "read the diff introduced by this git commit in the root")
	flag.Parse()

	mode := fixup.ModePreview
	if *apply {
		mode = fixup.ModeApply
	}

	var opts []fixup.OrchestratorOption
	if *legacy {
		opts = append(opts, fixup.WithLegacyMerge())
	}

	store := jsonl.NewReceiptStore()

	app := &App{
		Paths:  flag.Args(),
		UseGit: *gitWorktree || *gitRef != "",
		GitRef: *gitRef,
		Root:   *root,
		Source: git.NewRunner(),
		Parser: gitdiff.NewParser(),
		Fixer: fixup.NewOrchestrator(mode,
			fs.NewSandbox(*root),
			fs.NewWriter(),
			fs.NewFingerprinter(),
			opts...),
		Apply:        *apply,
		ListReceipts: *listReceipts,
		Receipts:     store,
		Loader:       store,
		ReceiptPath:  *receipts,
		Out:          os.Stdout,
		Renderer:     lipgloss.NewRenderer(),
	}

	if len(app.Paths) == 0 && !app.UseGit && !app.ListReceipts {
		stat, err := os.Stdin.Stat()
		if err != nil {
			return fmt.Errorf("error checking stdin: %w", err)
		}
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			return ErrNoInput
		}
		app.Stdin = os.Stdin
	}

	return app.Run(ctx)
}
