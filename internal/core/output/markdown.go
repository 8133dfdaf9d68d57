// Package output renders a review session into shareable text formats.
package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/revtui/revtui/internal/core/model"
)

// Markdown renders the session as a markdown review summary. paths fixes
// the file order (normally changeset order); tracked files missing from
// paths are appended sorted so nothing is silently dropped.
func Markdown(session *model.ReviewSession, paths []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Review %s\n\n", session.ID)
	fmt.Fprintf(&b, "- Repository: %s\n", session.RepoPath)
	fmt.Fprintf(&b, "- Base revision: %s\n", session.BaseRevision)
	fmt.Fprintf(&b, "- Files reviewed: %d/%d\n", session.ReviewedCount(), session.TotalFiles())
	if session.SessionNote != "" {
		fmt.Fprintf(&b, "\n%s\n", session.SessionNote)
	}

	for _, path := range orderedPaths(session, paths) {
		writeFileSection(&b, session.Files[path])
	}

	return b.String()
}

func orderedPaths(session *model.ReviewSession, paths []string) []string {
	seen := make(map[string]bool, len(paths))
	ordered := make([]string, 0, len(session.Files))
	for _, p := range paths {
		if session.Files[p] != nil && !seen[p] {
			ordered = append(ordered, p)
			seen[p] = true
		}
	}

	var rest []string
	for p := range session.Files {
		if !seen[p] {
			rest = append(rest, p)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

func writeFileSection(b *strings.Builder, r *model.FileReview) {
	fmt.Fprintf(b, "\n## %c %s", r.Status.Rune(), r.Path)
	if r.Reviewed {
		b.WriteString(" (reviewed)")
	}
	b.WriteString("\n")

	for _, c := range r.FileComments {
		writeComment(b, c, 0)
	}

	lines := make([]int, 0, len(r.LineComments))
	for line := range r.LineComments {
		lines = append(lines, line)
	}
	sort.Ints(lines)

	for _, line := range lines {
		for _, c := range r.LineComments[line] {
			writeComment(b, c, line)
		}
	}
}

func writeComment(b *strings.Builder, c model.Comment, line int) {
	b.WriteString("\n")
	switch {
	case line == 0:
		fmt.Fprintf(b, "**[%s]**\n", c.Type)
	case c.OnOldSide():
		fmt.Fprintf(b, "**[%s]** old line %d\n", c.Type, line)
	default:
		fmt.Fprintf(b, "**[%s]** line %d\n", c.Type, line)
	}

	for _, text := range strings.Split(strings.TrimRight(c.Content, "\n"), "\n") {
		fmt.Fprintf(b, "> %s\n", text)
	}
}
