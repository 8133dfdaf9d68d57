package model

import "time"

// CommentType classifies a review comment.
type CommentType string

const (
	CommentNote       CommentType = "note"
	CommentSuggestion CommentType = "suggestion"
	CommentIssue      CommentType = "issue"
	CommentPraise     CommentType = "praise"
)

// CommentTypes lists all types in the order the comment modal cycles them.
var CommentTypes = []CommentType{CommentNote, CommentSuggestion, CommentIssue, CommentPraise}

// Comment is free-text feedback attached either to a file as a whole or to
// a specific line. Side is meaningful only for line comments; when empty
// the comment is treated as a new-side comment.
type Comment struct {
	Type      CommentType `yaml:"type"`
	Content   string      `yaml:"content"`
	Side      LineSide    `yaml:"side,omitempty"`
	CreatedAt time.Time   `yaml:"created_at"`
}

// OnOldSide reports whether the comment anchors to the pre-image side.
// Comments without an explicit side default to the new side.
func (c Comment) OnOldSide() bool {
	return c.Side == SideOld
}
