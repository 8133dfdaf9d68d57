// Package vcs abstracts version-control backends behind a single
// capability interface. Backends produce raw unified-diff text and feed it
// to the shared parser; none of them reimplements parsing.
//
// When auto-detecting, git is tried first since it is the most common; a
// directory that is both a git and a mercurial repository resolves to git.
package vcs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/revtui/revtui/internal/core/model"
	"github.com/revtui/revtui/internal/core/unidiff"
	"github.com/revtui/revtui/pkg/executil"
)

// ErrNotARepository is returned when no backend can discover a repository
// from the current directory.
var ErrNotARepository = errors.New("not a repository")

// CommandError reports a failed VCS invocation, carrying the command line
// and whatever the command wrote before failing.
type CommandError struct {
	Cmd    string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s: %s", e.Cmd, e.Output)
	}
	return fmt.Sprintf("%s: %v", e.Cmd, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Kind identifies a supported version control system.
type Kind string

const (
	KindGit Kind = "git"
	KindHg  Kind = "hg"
	KindJJ  Kind = "jj"
)

// DefaultDetectOrder is the order backends are tried during discovery.
var DefaultDetectOrder = []Kind{KindGit, KindJJ, KindHg}

// Info describes a discovered repository.
type Info struct {
	Root   string // repository root path
	Head   string // current head revision identifier
	Branch string // branch/bookmark name, empty when detached or unsupported
	Kind   Kind
}

// CommitInfo is one entry of a backend's recent-commit listing.
type CommitInfo struct {
	ID      string
	ShortID string
	Summary string
	Author  string
	Time    time.Time
}

// Backend is the capability the core consumes; one implementation exists
// per supported VCS.
type Backend interface {
	// Info returns the discovered repository metadata.
	Info() Info

	// WorkingTreeDiff returns the changeset for the current working tree.
	// It fails with unidiff.ErrNoChanges when the diff is empty.
	WorkingTreeDiff(ctx context.Context) (model.Changeset, error)

	// RangeDiff returns the changeset between two revisions.
	RangeDiff(ctx context.Context, base, head string) (model.Changeset, error)

	// FetchContextLines returns a contiguous run of content lines for the
	// file, as context-origin DiffLines numbered start..end on both sides.
	// For a deleted file it reads the last committed content rather than
	// the absent working copy.
	FetchContextLines(ctx context.Context, path string, status model.FileStatus, start, end int) ([]model.DiffLine, error)

	// RecentCommits lists up to limit commits, newest first.
	RecentCommits(ctx context.Context, limit int) ([]CommitInfo, error)
}

// Detect tries each backend in order and returns the first that discovers
// a repository, or ErrNotARepository when none do.
func Detect(ctx context.Context, exec executil.Executor, parser *unidiff.Parser, order []Kind) (Backend, error) {
	if len(order) == 0 {
		order = DefaultDetectOrder
	}

	for _, kind := range order {
		var (
			backend Backend
			err     error
		)
		switch kind {
		case KindGit:
			backend, err = DiscoverGit(ctx, exec, parser)
		case KindHg:
			backend, err = DiscoverHg(ctx, exec, parser)
		case KindJJ:
			backend, err = DiscoverJJ(ctx, exec, parser)
		default:
			continue
		}
		if err == nil {
			return backend, nil
		}
	}

	return nil, ErrNotARepository
}
