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

// HgBackend implements Backend using the hg command-line tool.
type HgBackend struct {
	exec   executil.Executor
	parser *unidiff.Parser
	info   Info
}

// DiscoverHg discovers a mercurial repository from the current directory.
func DiscoverHg(ctx context.Context, exec executil.Executor, parser *unidiff.Parser) (*HgBackend, error) {
	out, err := exec.Run(ctx, "hg", "root")
	if err != nil {
		return nil, ErrNotARepository
	}
	root := strings.TrimSpace(string(out))

	b := &HgBackend{exec: exec, parser: parser, info: Info{Root: root, Kind: KindHg}}

	if head, err := b.run(ctx, "id", "-i"); err == nil {
		b.info.Head = strings.TrimSuffix(strings.TrimSpace(head), "+")
	} else {
		b.info.Head = "unknown"
	}
	if branch, err := b.run(ctx, "branch"); err == nil {
		b.info.Branch = strings.TrimSpace(branch)
	}

	return b, nil
}

// Info returns the discovered repository metadata.
func (b *HgBackend) Info() Info { return b.info }

// WorkingTreeDiff diffs the working tree against the working-copy parent.
// The --git flag selects the diff --git output format the parser consumes.
func (b *HgBackend) WorkingTreeDiff(ctx context.Context) (model.Changeset, error) {
	out, err := b.run(ctx, "diff", "--git")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out) == "" {
		return nil, unidiff.ErrNoChanges
	}
	return b.parser.Parse(out)
}

// RangeDiff diffs two revisions.
func (b *HgBackend) RangeDiff(ctx context.Context, base, head string) (model.Changeset, error) {
	out, err := b.run(ctx, "diff", "--git", "-r", base, "-r", head)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out) == "" {
		return nil, unidiff.ErrNoChanges
	}
	return b.parser.Parse(out)
}

// FetchContextLines reads lines start..end of the file; deleted files are
// read from the working-copy parent via hg cat.
func (b *HgBackend) FetchContextLines(ctx context.Context, path string, status model.FileStatus, start, end int) ([]model.DiffLine, error) {
	if start < 1 || start > end {
		return nil, nil
	}

	var content string
	if status == model.StatusDeleted {
		out, err := b.run(ctx, "cat", "-r", ".", path)
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

// RecentCommits lists the newest commits via hg log.
func (b *HgBackend) RecentCommits(ctx context.Context, limit int) ([]CommitInfo, error) {
	out, err := b.run(ctx, "log", "-l", strconv.Itoa(limit),
		"--template", `{node}\t{node|short}\t{desc|firstline}\t{author|person}\t{date|rfc3339date}\n`)
	if err != nil {
		return nil, err
	}

	var commits []CommitInfo
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Split(line, "\t")
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

func (b *HgBackend) run(ctx context.Context, args ...string) (string, error) {
	out, err := b.exec.RunDir(ctx, b.info.Root, "hg", args...)
	if err != nil {
		return "", &CommandError{
			Cmd:    "hg " + strings.Join(args, " "),
			Output: strings.TrimSpace(string(out)),
			Err:    err,
		}
	}
	return string(out), nil
}
