package vcs

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/revtui/revtui/internal/core/model"
	"github.com/revtui/revtui/internal/core/unidiff"
	"github.com/revtui/revtui/pkg/executil"
)

// GitBackend implements Backend using the git command-line tool.
type GitBackend struct {
	exec   executil.Executor
	parser *unidiff.Parser
	info   Info
}

// DiscoverGit discovers a git repository from the current directory. It
// returns ErrNotARepository when git cannot find one.
func DiscoverGit(ctx context.Context, exec executil.Executor, parser *unidiff.Parser) (*GitBackend, error) {
	out, err := exec.Run(ctx, "git", "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, ErrNotARepository
	}
	root := strings.TrimSpace(string(out))

	b := &GitBackend{exec: exec, parser: parser, info: Info{Root: root, Kind: KindGit}}

	// Head and branch are informational; a repo with no commits yet still
	// opens (the diff will fail with its own error if truly empty).
	if head, err := b.run(ctx, "rev-parse", "HEAD"); err == nil {
		b.info.Head = strings.TrimSpace(head)
	} else {
		b.info.Head = "unknown"
	}
	if branch, err := b.run(ctx, "branch", "--show-current"); err == nil {
		b.info.Branch = strings.TrimSpace(branch)
	}

	return b, nil
}

// Info returns the discovered repository metadata.
func (b *GitBackend) Info() Info { return b.info }

// WorkingTreeDiff diffs the working tree (including staged changes)
// against HEAD.
func (b *GitBackend) WorkingTreeDiff(ctx context.Context) (model.Changeset, error) {
	out, err := b.run(ctx, "diff", "HEAD")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out) == "" {
		return nil, unidiff.ErrNoChanges
	}
	return b.parser.Parse(out)
}

// RangeDiff diffs base against head.
func (b *GitBackend) RangeDiff(ctx context.Context, base, head string) (model.Changeset, error) {
	out, err := b.run(ctx, "diff", base+".."+head)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out) == "" {
		return nil, unidiff.ErrNoChanges
	}
	return b.parser.Parse(out)
}

// FetchContextLines reads lines start..end of the file. Deleted files are
// read from HEAD since they no longer exist in the working tree.
func (b *GitBackend) FetchContextLines(ctx context.Context, path string, status model.FileStatus, start, end int) ([]model.DiffLine, error) {
	if start < 1 || start > end {
		return nil, nil
	}

	var content string
	if status == model.StatusDeleted {
		out, err := b.run(ctx, "show", "HEAD:"+path)
		if err != nil {
			return nil, err
		}
		content = out
	} else {
		raw, err := os.ReadFile(filepath.Join(b.info.Root, path))
		if err != nil {
			return nil, err
		}
		content = string(raw)
	}

	return contextLines(content, start, end), nil
}

// RecentCommits lists the newest commits via git log.
func (b *GitBackend) RecentCommits(ctx context.Context, limit int) ([]CommitInfo, error) {
	out, err := b.run(ctx, "log", "-n", strconv.Itoa(limit), "--pretty=format:%H%x00%h%x00%s%x00%an%x00%aI")
	if err != nil {
		return nil, err
	}

	var commits []CommitInfo
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, "\x00")
		if len(fields) != 5 {
			continue
		}
		ts, _ := time.Parse(time.RFC3339, fields[4])
		commits = append(commits, CommitInfo{
			ID:      fields[0],
			ShortID: fields[1],
			Summary: fields[2],
			Author:  fields[3],
			Time:    ts,
		})
	}
	return commits, nil
}

func (b *GitBackend) run(ctx context.Context, args ...string) (string, error) {
	out, err := b.exec.RunDir(ctx, b.info.Root, "git", args...)
	if err != nil {
		return "", &CommandError{
			Cmd:    "git " + strings.Join(args, " "),
			Output: strings.TrimSpace(string(out)),
			Err:    err,
		}
	}
	return string(out), nil
}

// contextLines slices content into context-origin DiffLines numbered
// identically on both sides, the shape the navigation layer expects for
// on-demand surrounding context.
func contextLines(content string, start, end int) []model.DiffLine {
	all := strings.Split(strings.TrimSuffix(content, "\n"), "\n")

	var lines []model.DiffLine
	for n := start; n <= end; n++ {
		idx := n - 1
		if idx < 0 || idx >= len(all) {
			break
		}
		lines = append(lines, model.DiffLine{
			Origin:    model.OriginContext,
			Content:   all[idx],
			OldLineno: n,
			NewLineno: n,
		})
	}
	return lines
}
