package vcs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revtui/revtui/internal/core/model"
	"github.com/revtui/revtui/internal/core/unidiff"
	"github.com/revtui/revtui/pkg/executil"
)

const sampleDiff = `diff --git a/main.go b/main.go
index 1111111..2222222 100644
--- a/main.go
+++ b/main.go
@@ -1,3 +1,4 @@
 package main
+
 func main() {
 }
`

func TestDiscoverGit(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"git rev-parse --show-toplevel": []byte("/repo\n"),
			"git rev-parse HEAD":            []byte("abc123\n"),
			"git branch --show-current":     []byte("main\n"),
		},
	}

	b, err := DiscoverGit(context.Background(), exec, unidiff.NewParser(nil))
	require.NoError(t, err)

	info := b.Info()
	assert.Equal(t, "/repo", info.Root)
	assert.Equal(t, "abc123", info.Head)
	assert.Equal(t, "main", info.Branch)
	assert.Equal(t, KindGit, info.Kind)
}

func TestDiscoverGitNotARepository(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Errors: map[string]error{"git": errors.New("exit 128")},
	}

	_, err := DiscoverGit(context.Background(), exec, unidiff.NewParser(nil))
	assert.ErrorIs(t, err, ErrNotARepository)
}

func TestDiscoverGitHeadlessRepo(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"git rev-parse --show-toplevel": []byte("/repo\n"),
		},
		Errors: map[string]error{
			"git rev-parse HEAD": errors.New("exit 128"),
		},
	}

	b, err := DiscoverGit(context.Background(), exec, unidiff.NewParser(nil))
	require.NoError(t, err)
	assert.Equal(t, "unknown", b.Info().Head)
}

func TestGitWorkingTreeDiff(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"git rev-parse --show-toplevel": []byte("/repo\n"),
			"git diff HEAD":                 []byte(sampleDiff),
		},
	}

	b, err := DiscoverGit(context.Background(), exec, unidiff.NewParser(nil))
	require.NoError(t, err)

	cs, err := b.WorkingTreeDiff(context.Background())
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, "main.go", cs[0].DisplayPath())
}

func TestGitWorkingTreeDiffEmpty(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"git rev-parse --show-toplevel": []byte("/repo\n"),
			"git diff HEAD":                 []byte("\n"),
		},
	}

	b, err := DiscoverGit(context.Background(), exec, unidiff.NewParser(nil))
	require.NoError(t, err)

	_, err = b.WorkingTreeDiff(context.Background())
	assert.ErrorIs(t, err, unidiff.ErrNoChanges)
}

func TestGitRangeDiff(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"git rev-parse --show-toplevel": []byte("/repo\n"),
			"git diff abc..def":             []byte(sampleDiff),
		},
	}

	b, err := DiscoverGit(context.Background(), exec, unidiff.NewParser(nil))
	require.NoError(t, err)

	cs, err := b.RangeDiff(context.Background(), "abc", "def")
	require.NoError(t, err)
	require.Len(t, cs, 1)
}

func TestGitCommandError(t *testing.T) {
	cmdErr := errors.New("exit 1")
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"git rev-parse --show-toplevel": []byte("/repo\n"),
			"git diff HEAD":                 []byte("fatal: bad revision\n"),
		},
		Errors: map[string]error{
			"git diff HEAD": cmdErr,
		},
	}

	b, err := DiscoverGit(context.Background(), exec, unidiff.NewParser(nil))
	require.NoError(t, err)

	_, err = b.WorkingTreeDiff(context.Background())
	require.Error(t, err)

	var ce *CommandError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "git diff HEAD", ce.Cmd)
	assert.Equal(t, "fatal: bad revision", ce.Output)
	assert.ErrorIs(t, err, cmdErr)
}

func TestGitRecentCommits(t *testing.T) {
	log := "abc123\x00abc\x00fix parser\x00Ann\x002026-08-20T10:00:00+00:00\n" +
		"def456\x00def\x00add backend\x00Bob\x002026-08-19T09:30:00+00:00"
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"git rev-parse --show-toplevel": []byte("/repo\n"),
			"git log -n 2 --pretty=format:%H%x00%h%x00%s%x00%an%x00%aI": []byte(log),
		},
	}

	b, err := DiscoverGit(context.Background(), exec, unidiff.NewParser(nil))
	require.NoError(t, err)

	commits, err := b.RecentCommits(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "abc123", commits[0].ID)
	assert.Equal(t, "abc", commits[0].ShortID)
	assert.Equal(t, "fix parser", commits[0].Summary)
	assert.Equal(t, "Ann", commits[0].Author)
	assert.Equal(t, 2026, commits[0].Time.Year())
	assert.Equal(t, "add backend", commits[1].Summary)
}

func TestGitFetchContextLinesFromWorkingTree(t *testing.T) {
	root := t.TempDir()
	content := "one\ntwo\nthree\nfour\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.txt"), []byte(content), 0o644))

	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"git rev-parse --show-toplevel": []byte(root + "\n"),
		},
	}
	b, err := DiscoverGit(context.Background(), exec, unidiff.NewParser(nil))
	require.NoError(t, err)

	lines, err := b.FetchContextLines(context.Background(), "f.txt", model.StatusModified, 2, 3)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "two", lines[0].Content)
	assert.Equal(t, 2, lines[0].OldLineno)
	assert.Equal(t, 2, lines[0].NewLineno)
	assert.Equal(t, model.OriginContext, lines[0].Origin)
	assert.Equal(t, "three", lines[1].Content)
}

func TestGitFetchContextLinesDeletedFile(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"git rev-parse --show-toplevel": []byte("/repo\n"),
			"git show HEAD:gone.txt":        []byte("a\nb\nc\n"),
		},
	}
	b, err := DiscoverGit(context.Background(), exec, unidiff.NewParser(nil))
	require.NoError(t, err)

	lines, err := b.FetchContextLines(context.Background(), "gone.txt", model.StatusDeleted, 1, 3)
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, "a", lines[0].Content)
	assert.Equal(t, "c", lines[2].Content)
}

func TestFetchContextLinesInvalidRange(t *testing.T) {
	b := &GitBackend{exec: &executil.RecordingExecutor{}, parser: unidiff.NewParser(nil)}

	lines, err := b.FetchContextLines(context.Background(), "f.txt", model.StatusModified, 0, 3)
	require.NoError(t, err)
	assert.Nil(t, lines)

	lines, err = b.FetchContextLines(context.Background(), "f.txt", model.StatusModified, 5, 2)
	require.NoError(t, err)
	assert.Nil(t, lines)
}

func TestContextLinesClampsToFileEnd(t *testing.T) {
	lines := contextLines("a\nb\n", 1, 10)
	require.Len(t, lines, 2)
	assert.Equal(t, "b", lines[1].Content)
	assert.Equal(t, 2, lines[1].NewLineno)
}

func TestDiscoverHg(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"hg root":   []byte("/repo\n"),
			"hg id -i":  []byte("f00dcafe+\n"),
			"hg branch": []byte("default\n"),
		},
	}

	b, err := DiscoverHg(context.Background(), exec, unidiff.NewParser(nil))
	require.NoError(t, err)

	info := b.Info()
	assert.Equal(t, "/repo", info.Root)
	assert.Equal(t, "f00dcafe", info.Head)
	assert.Equal(t, "default", info.Branch)
	assert.Equal(t, KindHg, info.Kind)
}

func TestHgWorkingTreeDiff(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"hg root":       []byte("/repo\n"),
			"hg diff --git": []byte(sampleDiff),
		},
	}

	b, err := DiscoverHg(context.Background(), exec, unidiff.NewParser(nil))
	require.NoError(t, err)

	cs, err := b.WorkingTreeDiff(context.Background())
	require.NoError(t, err)
	require.Len(t, cs, 1)
}

func TestDiscoverJJ(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"jj root":                             []byte("/repo\n"),
			"jj log -r @ --no-graph -T commit_id": []byte("deadbeef\n"),
		},
	}

	b, err := DiscoverJJ(context.Background(), exec, unidiff.NewParser(nil))
	require.NoError(t, err)

	info := b.Info()
	assert.Equal(t, "/repo", info.Root)
	assert.Equal(t, "deadbeef", info.Head)
	assert.Equal(t, KindJJ, info.Kind)
}

func TestJJRangeDiff(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"jj root":                           []byte("/repo\n"),
			"jj diff --git --from abc --to def": []byte(sampleDiff),
		},
	}

	b, err := DiscoverJJ(context.Background(), exec, unidiff.NewParser(nil))
	require.NoError(t, err)

	cs, err := b.RangeDiff(context.Background(), "abc", "def")
	require.NoError(t, err)
	require.Len(t, cs, 1)
}

func TestDetectPrefersGit(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"git rev-parse --show-toplevel": []byte("/repo\n"),
			"hg root":                       []byte("/repo\n"),
		},
	}

	b, err := Detect(context.Background(), exec, unidiff.NewParser(nil), nil)
	require.NoError(t, err)
	assert.Equal(t, KindGit, b.Info().Kind)
}

func TestDetectFallsThroughOrder(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"hg root": []byte("/repo\n"),
		},
		Errors: map[string]error{
			"git": errors.New("exit 128"),
			"jj":  errors.New("exit 1"),
		},
	}

	b, err := Detect(context.Background(), exec, unidiff.NewParser(nil), nil)
	require.NoError(t, err)
	assert.Equal(t, KindHg, b.Info().Kind)
}

func TestDetectNoRepository(t *testing.T) {
	exec := &executil.RecordingExecutor{
		Errors: map[string]error{
			"git": errors.New("exit 128"),
			"hg":  errors.New("exit 255"),
			"jj":  errors.New("exit 1"),
		},
	}

	_, err := Detect(context.Background(), exec, unidiff.NewParser(nil), nil)
	assert.ErrorIs(t, err, ErrNotARepository)
}
