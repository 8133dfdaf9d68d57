package model

import (
	"time"

	"github.com/revtui/revtui/pkg/randid"
)

// SchemaVersion tags persisted review sessions so future format changes
// can be migrated instead of silently misread.
const SchemaVersion = "1.0"

// FileReview is the per-file review state: the reviewed flag, file-level
// comments, and line comments keyed by line number. Line numbers refer to
// the new side for additions/context and the old side for deletions.
type FileReview struct {
	Path         string            `yaml:"path"`
	Reviewed     bool              `yaml:"reviewed"`
	Status       FileStatus        `yaml:"status"`
	FileComments []Comment         `yaml:"file_comments,omitempty"`
	LineComments map[int][]Comment `yaml:"line_comments,omitempty"`
}

// NewFileReview creates an unreviewed FileReview for the given path.
func NewFileReview(path string, status FileStatus) *FileReview {
	return &FileReview{
		Path:         path,
		Status:       status,
		LineComments: map[int][]Comment{},
	}
}

// AddFileComment appends a file-level comment, preserving insertion order.
func (r *FileReview) AddFileComment(c Comment) {
	r.FileComments = append(r.FileComments, c)
}

// AddLineComment appends a comment on the given line. Multiple comments per
// line are permitted; order within a line is insertion order.
func (r *FileReview) AddLineComment(line int, c Comment) {
	if r.LineComments == nil {
		r.LineComments = map[int][]Comment{}
	}
	r.LineComments[line] = append(r.LineComments[line], c)
}

// CommentCount returns the total number of comments on this file.
func (r *FileReview) CommentCount() int {
	n := len(r.FileComments)
	for _, cs := range r.LineComments {
		n += len(cs)
	}
	return n
}

// ReviewSession identifies one review pass over one changeset.
//
// A session is created alongside the Changeset, mutated by user actions,
// and persisted at user request or process exit. Once comments exist it is
// never regenerated without surfacing the mismatch to the user, since
// regeneration would orphan line-anchored comments if line numbers shift.
type ReviewSession struct {
	ID           string                 `yaml:"id"`
	Version      string                 `yaml:"version"`
	RepoPath     string                 `yaml:"repo_path"`
	BaseRevision string                 `yaml:"base_revision"`
	CreatedAt    time.Time              `yaml:"created_at"`
	UpdatedAt    time.Time              `yaml:"updated_at"`
	Files        map[string]*FileReview `yaml:"files"`
	SessionNote  string                 `yaml:"session_note,omitempty"`
}

// NewReviewSession creates an empty session for the given repository root
// and base revision.
func NewReviewSession(repoPath, baseRevision string) *ReviewSession {
	now := time.Now().UTC()
	return &ReviewSession{
		ID:           randid.Generate(8),
		Version:      SchemaVersion,
		RepoPath:     repoPath,
		BaseRevision: baseRevision,
		CreatedAt:    now,
		UpdatedAt:    now,
		Files:        map[string]*FileReview{},
	}
}

// Touch updates the modification timestamp. Callers invoke it on every
// mutation that should be persisted.
func (s *ReviewSession) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// AddFile inserts a FileReview if the path is not yet tracked. It is
// idempotent and never overwrites an existing entry, so comments survive
// re-adds when a session is reattached to a fresh changeset.
func (s *ReviewSession) AddFile(path string, status FileStatus) {
	if s.Files == nil {
		s.Files = map[string]*FileReview{}
	}
	if _, ok := s.Files[path]; !ok {
		s.Files[path] = NewFileReview(path, status)
	}
}

// File returns the review entry for path, or nil if the path is unknown.
func (s *ReviewSession) File(path string) *FileReview {
	return s.Files[path]
}

// ToggleReviewed flips the reviewed flag for path. It reports false when
// the path is not tracked.
func (s *ReviewSession) ToggleReviewed(path string) bool {
	r, ok := s.Files[path]
	if !ok {
		return false
	}
	r.Reviewed = !r.Reviewed
	return true
}

// IsFileReviewed reports whether path is tracked and marked reviewed.
func (s *ReviewSession) IsFileReviewed(path string) bool {
	r, ok := s.Files[path]
	return ok && r.Reviewed
}

// ReviewedCount returns the number of files marked reviewed.
func (s *ReviewSession) ReviewedCount() int {
	n := 0
	for _, r := range s.Files {
		if r.Reviewed {
			n++
		}
	}
	return n
}

// TotalFiles returns the number of tracked files.
func (s *ReviewSession) TotalFiles() int {
	return len(s.Files)
}

// HasComments reports whether any file carries at least one comment.
func (s *ReviewSession) HasComments() bool {
	for _, r := range s.Files {
		if r.CommentCount() > 0 {
			return true
		}
	}
	return false
}
