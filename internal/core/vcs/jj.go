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

// JJBackend implements Backend using the jj (jujutsu) command-line tool.
// `jj diff --git` emits standard unified-diff format, so parsing is shared
// with the other backends.
type JJBackend struct {
	exec   executil.Executor
	parser *unidiff.Parser
	info   Info
}

// DiscoverJJ discovers a jujutsu repository from the current directory.
func DiscoverJJ(ctx context.Context, exec executil.Executor, parser *unidiff.Parser) (*JJBackend, error) {
	out, err := exec.Run(ctx, "jj", "root")
	if err != nil {
		return nil, ErrNotARepository
	}
	root := strings.TrimSpace(string(out))

	b := &JJBackend{exec: exec, parser: parser, info: Info{Root: root, Kind: KindJJ}}

	if head, err := b.run(ctx, "log", "-r", "@", "--no-graph", "-T", "commit_id"); err == nil {
		b.info.Head = strings.TrimSpace(head)
	} else {
		b.info.Head = "unknown"
	}

	return b, nil
}

// Info returns the discovered repository metadata.
func (b *JJBackend) Info() Info { return b.info }

// WorkingTreeDiff diffs the working-copy commit against its parents.
func (b *JJBackend) WorkingTreeDiff(ctx context.Context) (model.Changeset, error) {
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
func (b *JJBackend) RangeDiff(ctx context.Context, base, head string) (model.Changeset, error) {
	out, err := b.run(ctx, "diff", "--git", "--from", base, "--to", head)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out) == "" {
		return nil, unidiff.ErrNoChanges
	}
	return b.parser.Parse(out)
}

// FetchContextLines reads lines start..end of the file; deleted files are
// read from the parent revision.
func (b *JJBackend) FetchContextLines(ctx context.Context, path string, status model.FileStatus, start, end int) ([]model.DiffLine, error) {
	if start < 1 || start > end {
		return nil, nil
	}

	var content string
	if status == model.StatusDeleted {
		out, err := b.run(ctx, "file", "show", "-r", "@-", path)
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

// RecentCommits lists the newest commits via jj log.
func (b *JJBackend) RecentCommits(ctx context.Context, limit int) ([]CommitInfo, error) {
	tmpl := `commit_id ++ "\t" ++ commit_id.short() ++ "\t" ++ description.first_line() ++ "\t" ++ author.name() ++ "\t" ++ author.timestamp().format("%+") ++ "\n"`
	out, err := b.run(ctx, "log", "-n", strconv.Itoa(limit), "--no-graph", "-T", tmpl)
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

func (b *JJBackend) run(ctx context.Context, args ...string) (string, error) {
	out, err := b.exec.RunDir(ctx, b.info.Root, "jj", args...)
	if err != nil {
		return "", &CommandError{
			Cmd:    "jj " + strings.Join(args, " "),
			Output: strings.TrimSpace(string(out)),
			Err:    err,
		}
	}
	return string(out), nil
}
