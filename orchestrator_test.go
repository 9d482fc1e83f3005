package fixup_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/fixup"
	"github.com/fwojciec/fixup/fs"
	"github.com/fwojciec/fixup/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newApplyOrchestrator wires an apply-mode orchestrator against a real
// temp-directory sandbox.
func newApplyOrchestrator(root string, opts ...fixup.OrchestratorOption) *fixup.Orchestrator {
	return fixup.NewOrchestrator(fixup.ModeApply,
		fs.NewSandbox(root), fs.NewWriter(), fs.NewFingerprinter(), opts...)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// replaceBetaDiff patches "beta" to "beta prime" in a three-line file.
func replaceBetaDiff(target string) fixup.UnifiedDiff {
	return fixup.UnifiedDiff{
		TargetFile: target,
		Hunks: []fixup.Hunk{{
			OldStart: 1,
			OldCount: 3,
			Content:  "@@ -1,3 +1,3 @@\n alpha\n-beta\n+beta prime\n gamma\n",
		}},
	}
}

func TestOrchestrator_PreviewChanges(t *testing.T) {
	t.Parallel()

	t.Run("refuses to preview in apply mode", func(t *testing.T) {
		t.Parallel()

		o := fixup.NewOrchestrator(fixup.ModeApply,
			fs.NewSandbox(t.TempDir()), fs.NewWriter(), fs.NewFingerprinter())

		_, err := o.PreviewChanges(nil)

		assert.ErrorIs(t, err, fixup.ErrApplyOnly)
	})

	t.Run("reports stats and passes for a clean diff", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "alpha\nbeta\ngamma\n")

		o := fixup.NewOrchestrator(fixup.ModePreview,
			fs.NewSandbox(dir), fs.NewWriter(), fs.NewFingerprinter())

		preview, err := o.PreviewChanges([]fixup.UnifiedDiff{replaceBetaDiff("a.txt")})

		require.NoError(t, err)
		require.Len(t, preview.Files, 1)
		f := preview.Files[0]
		assert.True(t, f.ValidationPassed)
		assert.Equal(t, 1, f.HunkCount)
		assert.Equal(t, 1, f.LinesAdded)
		assert.Equal(t, 1, f.LinesRemoved)
		assert.True(t, preview.AllValid)

		// Preview never touches the file.
		assert.Equal(t, "alpha\nbeta\ngamma\n", readFile(t, filepath.Join(dir, "a.txt")))
		assert.NoFileExists(t, filepath.Join(dir, "a.txt.bak"))
	})

	t.Run("rejected path is recorded and the batch continues", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "alpha\nbeta\ngamma\n")

		o := fixup.NewOrchestrator(fixup.ModePreview,
			fs.NewSandbox(dir), fs.NewWriter(), fs.NewFingerprinter())

		preview, err := o.PreviewChanges([]fixup.UnifiedDiff{
			replaceBetaDiff("../escape.txt"),
			replaceBetaDiff("a.txt"),
		})

		require.NoError(t, err)
		require.Len(t, preview.Files, 2)
		assert.False(t, preview.Files[0].ValidationPassed)
		assert.NotEmpty(t, preview.Files[0].ValidationMessages)
		assert.True(t, preview.Files[1].ValidationPassed)
		assert.False(t, preview.AllValid)
	})

	t.Run("line stats are reported even when the dry run fails", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()

		o := fixup.NewOrchestrator(fixup.ModePreview,
			fs.NewSandbox(dir), fs.NewWriter(), fs.NewFingerprinter())

		preview, err := o.PreviewChanges([]fixup.UnifiedDiff{replaceBetaDiff("missing.txt")})

		require.NoError(t, err)
		require.Len(t, preview.Files, 1)
		f := preview.Files[0]
		assert.False(t, f.ValidationPassed)
		assert.Equal(t, 1, f.LinesAdded)
		assert.Equal(t, 1, f.LinesRemoved)
	})

	t.Run("dry-run drift warnings surface as validation messages", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "inserted 1\ninserted 2\nalpha\nbeta\ngamma\n")

		o := fixup.NewOrchestrator(fixup.ModePreview,
			fs.NewSandbox(dir), fs.NewWriter(), fs.NewFingerprinter())

		preview, err := o.PreviewChanges([]fixup.UnifiedDiff{replaceBetaDiff("a.txt")})

		require.NoError(t, err)
		f := preview.Files[0]
		assert.True(t, f.ValidationPassed)
		require.Len(t, f.ValidationMessages, 1)
		assert.Contains(t, f.ValidationMessages[0], "applied at line")
	})
}

func TestOrchestrator_ApplyChanges(t *testing.T) {
	t.Parallel()

	t.Run("refused in preview mode", func(t *testing.T) {
		t.Parallel()

		o := fixup.NewOrchestrator(fixup.ModePreview,
			fs.NewSandbox(t.TempDir()), fs.NewWriter(), fs.NewFingerprinter())

		_, err := o.ApplyChanges(nil)

		assert.ErrorIs(t, err, fixup.ErrPreviewOnly)
	})

	t.Run("patches the file and leaves a backup of the original", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		target := writeFile(t, dir, "a.txt", "alpha\nbeta\ngamma\n")

		o := newApplyOrchestrator(dir)

		result, err := o.ApplyChanges([]fixup.UnifiedDiff{replaceBetaDiff("a.txt")})

		require.NoError(t, err)
		require.Len(t, result.AppliedFiles, 1)
		applied := result.AppliedFiles[0]
		assert.True(t, applied.Applied)
		assert.Equal(t, "a.txt", applied.Path)
		assert.NotEmpty(t, applied.Fingerprint)
		assert.Empty(t, result.FailedFiles)
		assert.False(t, result.LegacyMergeUsed)
		assert.NotEqual(t, result.RunID.String(), "00000000-0000-0000-0000-000000000000")

		assert.Equal(t, "alpha\nbeta prime\ngamma\n", readFile(t, target))
		assert.Equal(t, "alpha\nbeta\ngamma\n", readFile(t, target+".bak"))
	})

	t.Run("preserves original file permissions", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		target := filepath.Join(dir, "a.txt")
		require.NoError(t, os.WriteFile(target, []byte("alpha\nbeta\ngamma\n"), 0o600))

		o := newApplyOrchestrator(dir)

		result, err := o.ApplyChanges([]fixup.UnifiedDiff{replaceBetaDiff("a.txt")})

		require.NoError(t, err)
		require.Len(t, result.AppliedFiles, 1)

		info, err := os.Stat(target)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("missing target fails that file only", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()

		o := newApplyOrchestrator(dir)

		result, err := o.ApplyChanges([]fixup.UnifiedDiff{replaceBetaDiff("missing.txt")})

		require.NoError(t, err)
		assert.Empty(t, result.AppliedFiles)
		assert.Equal(t, []string{"missing.txt"}, result.FailedFiles)
		require.NotEmpty(t, result.Warnings)
		assert.Contains(t, result.Warnings[0], "target_missing")
	})

	t.Run("unmatchable hunk leaves the file untouched", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		target := writeFile(t, dir, "a.txt", "completely\ndifferent\ncontent\nnow\n")

		o := newApplyOrchestrator(dir)

		result, err := o.ApplyChanges([]fixup.UnifiedDiff{replaceBetaDiff("a.txt")})

		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt"}, result.FailedFiles)
		assert.Equal(t, "completely\ndifferent\ncontent\nnow\n", readFile(t, target))
		assert.NoFileExists(t, target+".bak")
	})

	t.Run("failed backup prevents the write", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		target := writeFile(t, dir, "a.txt", "alpha\nbeta\ngamma\n")
		// A directory squatting on the backup path makes backup
		// creation fail before anything destructive happens.
		require.NoError(t, os.Mkdir(target+".bak", 0o755))

		o := newApplyOrchestrator(dir)

		result, err := o.ApplyChanges([]fixup.UnifiedDiff{replaceBetaDiff("a.txt")})

		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt"}, result.FailedFiles)
		require.NotEmpty(t, result.Warnings)
		assert.Contains(t, result.Warnings[0], "backup_failed")
		assert.Equal(t, "alpha\nbeta\ngamma\n", readFile(t, target))
	})

	t.Run("failed atomic write leaves the target unchanged", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		target := writeFile(t, dir, "a.txt", "alpha\nbeta\ngamma\n")

		o := fixup.NewOrchestrator(fixup.ModeApply,
			fs.NewSandbox(dir),
			&mock.AtomicWriter{
				WriteAtomicFn: func(path string, data []byte) ([]string, error) {
					return nil, errors.New("injected failure between temp write and rename")
				},
			},
			fs.NewFingerprinter())

		result, err := o.ApplyChanges([]fixup.UnifiedDiff{replaceBetaDiff("a.txt")})

		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt"}, result.FailedFiles)
		require.NotEmpty(t, result.Warnings)
		assert.Contains(t, result.Warnings[0], "write_failed")
		assert.Equal(t, "alpha\nbeta\ngamma\n", readFile(t, target))
	})

	t.Run("writer warnings are attached to the applied file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFile(t, dir, "a.txt", "alpha\nbeta\ngamma\n")

		o := fixup.NewOrchestrator(fixup.ModeApply,
			fs.NewSandbox(dir),
			&mock.AtomicWriter{
				WriteAtomicFn: func(path string, data []byte) ([]string, error) {
					require.NoError(t, os.WriteFile(path, data, 0o644))
					return []string{"used copy fallback"}, nil
				},
			},
			fs.NewFingerprinter())

		result, err := o.ApplyChanges([]fixup.UnifiedDiff{replaceBetaDiff("a.txt")})

		require.NoError(t, err)
		require.Len(t, result.AppliedFiles, 1)
		assert.Contains(t, result.AppliedFiles[0].Warnings, "used copy fallback")
	})

	t.Run("one failing file does not affect the rest of the batch", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		target := writeFile(t, dir, "a.txt", "alpha\nbeta\ngamma\n")

		o := newApplyOrchestrator(dir)

		result, err := o.ApplyChanges([]fixup.UnifiedDiff{
			replaceBetaDiff("a.txt"),
			replaceBetaDiff("../outside.txt"),
		})

		require.NoError(t, err)
		require.Len(t, result.AppliedFiles, 1)
		assert.Equal(t, "a.txt", result.AppliedFiles[0].Path)
		assert.Equal(t, []string{"../outside.txt"}, result.FailedFiles)
		assert.Equal(t, "alpha\nbeta prime\ngamma\n", readFile(t, target))
	})

	t.Run("legacy merge replaces whole file content when enabled", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		target := writeFile(t, dir, "a.txt", "old content\n")

		o := newApplyOrchestrator(dir, fixup.WithLegacyMerge())

		result, err := o.ApplyChanges([]fixup.UnifiedDiff{{
			TargetFile:  "a.txt",
			DiffContent: "replacement line 1\nreplacement line 2",
		}})

		require.NoError(t, err)
		require.Len(t, result.AppliedFiles, 1)
		assert.True(t, result.LegacyMergeUsed)
		assert.Equal(t, "replacement line 1\nreplacement line 2\n", readFile(t, target))
		assert.Equal(t, "old content\n", readFile(t, target+".bak"))
	})

	t.Run("hunkless diff without legacy merge applies as a no-op", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		target := writeFile(t, dir, "a.txt", "old content\n")

		o := newApplyOrchestrator(dir)

		result, err := o.ApplyChanges([]fixup.UnifiedDiff{{
			TargetFile:  "a.txt",
			DiffContent: "replacement line 1\n",
		}})

		require.NoError(t, err)
		require.Len(t, result.AppliedFiles, 1)
		assert.False(t, result.LegacyMergeUsed)
		assert.Equal(t, "old content\n", readFile(t, target))
	})
}
