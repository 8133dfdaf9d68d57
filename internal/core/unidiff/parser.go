// Package unidiff parses raw unified-diff text into the diff model.
//
// The parser is VCS-agnostic: git, mercurial, and jujutsu backends all
// produce conventional `diff --git` output and feed it here, so no backend
// reimplements parsing.
package unidiff

import (
	"errors"
	"strconv"
	"strings"

	"github.com/revtui/revtui/internal/core/model"
)

// ErrNoChanges is returned when the input contains zero recognized file
// sections. It distinguishes "nothing changed" from an empty success.
var ErrNoChanges = errors.New("no changes to review")

// Highlighter decorates parsed lines with pre-rendered segments. A nil
// highlighter (or a nil return) leaves lines undecorated.
type Highlighter interface {
	// HighlightLines highlights the given content lines as belonging to
	// path. The outer slice is index-aligned with lines; nil means no
	// highlighting is available for this file.
	HighlightLines(path string, lines []string) [][]model.Segment
}

// Parser converts unified-diff text into a Changeset.
type Parser struct {
	hl Highlighter
}

// NewParser creates a parser. hl may be nil to disable highlighting.
func NewParser(hl Highlighter) *Parser {
	return &Parser{hl: hl}
}

// Parse converts raw diff text (multiple files' worth) into an ordered
// Changeset. It returns ErrNoChanges when no file section is recognized.
// Individual malformed lines and hunk fragments are skipped rather than
// aborting the whole parse.
func (p *Parser) Parse(text string) (model.Changeset, error) {
	var files model.Changeset

	// The final newline terminates the last line rather than starting an
	// empty one; splitting without stripping it would hand the last hunk a
	// phantom empty context line.
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	i := 0

	for i < len(lines) {
		if !strings.HasPrefix(lines[i], "diff --git ") {
			i++
			continue
		}
		gitOld, gitNew := parseGitHeaderPaths(lines[i])
		i++

		var file model.DiffFile
		file.OldPath, file.NewPath, file.Status, i = parseFileHeader(lines, i)

		// Binary and mode-only sections carry no ---/+++ pair, so the
		// "diff --git" line is the only path source.
		if file.OldPath == "" && file.NewPath == "" {
			switch file.Status {
			case model.StatusAdded:
				file.NewPath = gitNew
			case model.StatusDeleted:
				file.OldPath = gitOld
			default:
				file.OldPath, file.NewPath = gitOld, gitNew
			}
		}

		// A "Binary files ... differ" line takes the place of hunks.
		if i < len(lines) && strings.Contains(lines[i], "Binary") {
			i++
			file.IsBinary = true
			files = append(files, file)
			continue
		}

		for i < len(lines) {
			switch {
			case strings.HasPrefix(lines[i], "diff "):
				// next file section
			case strings.HasPrefix(lines[i], "@@"):
				var hunk *model.DiffHunk
				hunk, i = p.parseHunk(lines, i, file.DisplayPath())
				if hunk != nil {
					file.Hunks = append(file.Hunks, *hunk)
				}
				continue
			default:
				i++
				continue
			}
			break
		}

		files = append(files, file)
	}

	if len(files) == 0 {
		return nil, ErrNoChanges
	}

	return files, nil
}

// parseFileHeader consumes header metadata lines up to (and including) the
// "+++" path line, returning the paths, the status, and the next index.
// Status falls back to inference from path presence when no explicit
// marker line is found.
func parseFileHeader(lines []string, i int) (oldPath, newPath string, status model.FileStatus, next int) {
	status = model.StatusModified

	for i < len(lines) {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "--- "):
			if p := strings.TrimPrefix(strings.TrimPrefix(line, "--- "), "a/"); p != "/dev/null" {
				oldPath = p
			}
			i++
		case strings.HasPrefix(line, "+++ "):
			if p := strings.TrimPrefix(strings.TrimPrefix(line, "+++ "), "b/"); p != "/dev/null" {
				newPath = p
			}
			i++
			return oldPath, newPath, inferStatus(oldPath, newPath, status), i
		case strings.HasPrefix(line, "new file"):
			status = model.StatusAdded
			i++
		case strings.HasPrefix(line, "deleted file"):
			status = model.StatusDeleted
			i++
		case strings.HasPrefix(line, "rename from"):
			status = model.StatusRenamed
			i++
		case strings.HasPrefix(line, "rename to"):
			if oldPath == "" {
				// rename sections may omit ---/+++ lines entirely
				oldPath = rememberRenamePath(lines, i-1)
			}
			newPath = strings.TrimPrefix(line, "rename to ")
			i++
		case strings.HasPrefix(line, "copy from"):
			status = model.StatusCopied
			oldPath = strings.TrimPrefix(line, "copy from ")
			i++
		case strings.HasPrefix(line, "copy to"):
			newPath = strings.TrimPrefix(line, "copy to ")
			i++
		case strings.HasPrefix(line, "@@"), strings.HasPrefix(line, "diff "), strings.Contains(line, "Binary"):
			return oldPath, newPath, inferStatus(oldPath, newPath, status), i
		default:
			// index lines, mode lines, similarity scores
			i++
		}
	}

	return oldPath, newPath, inferStatus(oldPath, newPath, status), i
}

// parseGitHeaderPaths recovers both paths from a "diff --git a/<old> b/<new>"
// line. Paths containing " b/" are ambiguous in this format; the first
// occurrence wins, which matches how git itself is usually parsed.
func parseGitHeaderPaths(line string) (oldPath, newPath string) {
	rest := strings.TrimPrefix(line, "diff --git ")
	before, after, ok := strings.Cut(rest, " b/")
	if !ok {
		return "", ""
	}
	return strings.TrimPrefix(before, "a/"), after
}

// rememberRenamePath recovers the old path from the preceding
// "rename from" line when a rename section has no ---/+++ pair.
func rememberRenamePath(lines []string, i int) string {
	if i >= 0 && i < len(lines) && strings.HasPrefix(lines[i], "rename from ") {
		return strings.TrimPrefix(lines[i], "rename from ")
	}
	return ""
}

func inferStatus(oldPath, newPath string, status model.FileStatus) model.FileStatus {
	if status != model.StatusModified {
		return status
	}
	switch {
	case oldPath == "" && newPath != "":
		return model.StatusAdded
	case oldPath != "" && newPath == "":
		return model.StatusDeleted
	default:
		return model.StatusModified
	}
}

// parseHunk consumes one "@@" hunk and its body. It returns nil (and the
// index past the malformed header) when the range header cannot be parsed.
func (p *Parser) parseHunk(lines []string, i int, path string) (*model.DiffHunk, int) {
	header := lines[i]
	i++

	oldStart, oldCount, newStart, newCount, ok := parseHunkHeader(header)
	if !ok {
		return nil, i
	}

	hunk := &model.DiffHunk{
		Header:   header,
		OldStart: oldStart,
		OldCount: oldCount,
		NewStart: newStart,
		NewCount: newCount,
	}

	oldLineno := oldStart
	newLineno := newStart

	for i < len(lines) {
		line := lines[i]
		if strings.HasPrefix(line, "@@") || strings.HasPrefix(line, "diff ") {
			break
		}
		i++

		switch {
		case strings.HasPrefix(line, "\\"):
			// "\ No newline at end of file" consumes no slot
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			// stray path lines inside a body are upstream noise
		case strings.HasPrefix(line, "+"):
			hunk.Lines = append(hunk.Lines, model.DiffLine{
				Origin:    model.OriginAddition,
				Content:   line[1:],
				NewLineno: newLineno,
			})
			newLineno++
		case strings.HasPrefix(line, "-"):
			hunk.Lines = append(hunk.Lines, model.DiffLine{
				Origin:    model.OriginDeletion,
				Content:   line[1:],
				OldLineno: oldLineno,
			})
			oldLineno++
		case strings.HasPrefix(line, " "), line == "":
			content := ""
			if line != "" {
				content = line[1:]
			}
			hunk.Lines = append(hunk.Lines, model.DiffLine{
				Origin:    model.OriginContext,
				Content:   content,
				OldLineno: oldLineno,
				NewLineno: newLineno,
			})
			oldLineno++
			newLineno++
		default:
			// unknown line shape, skip defensively
		}
	}

	p.highlightHunk(hunk, path)

	return hunk, i
}

// highlightHunk attaches highlighted segments to the hunk's lines when a
// highlighter is configured and recognizes the file.
func (p *Parser) highlightHunk(hunk *model.DiffHunk, path string) {
	if p.hl == nil || path == "" || len(hunk.Lines) == 0 {
		return
	}

	contents := make([]string, len(hunk.Lines))
	for i := range hunk.Lines {
		contents[i] = hunk.Lines[i].Content
	}

	segments := p.hl.HighlightLines(path, contents)
	if segments == nil {
		return
	}
	for i := range hunk.Lines {
		if i < len(segments) {
			hunk.Lines[i].Segments = segments[i]
		}
	}
}

// parseHunkHeader parses "@@ -oldStart[,oldCount] +newStart[,newCount] @@".
// Missing counts default to 1.
func parseHunkHeader(line string) (oldStart, oldCount, newStart, newCount int, ok bool) {
	if !strings.HasPrefix(line, "@@") {
		return 0, 0, 0, 0, false
	}

	fields := strings.Fields(line)
	if len(fields) < 3 || fields[0] != "@@" {
		return 0, 0, 0, 0, false
	}
	if !strings.HasPrefix(fields[1], "-") || !strings.HasPrefix(fields[2], "+") {
		return 0, 0, 0, 0, false
	}

	oldStart, oldCount, okOld := parseRange(fields[1][1:])
	newStart, newCount, okNew := parseRange(fields[2][1:])
	if !okOld || !okNew {
		return 0, 0, 0, 0, false
	}

	return oldStart, oldCount, newStart, newCount, true
}

// parseRange parses "start[,count]"; a missing count means 1. An
// unparseable number fails the whole range, so a malformed hunk is skipped
// rather than mis-numbered.
func parseRange(s string) (start, count int, ok bool) {
	startStr, countStr, found := strings.Cut(s, ",")
	start, err := strconv.Atoi(startStr)
	if err != nil {
		return 0, 0, false
	}
	count = 1
	if found {
		count, err = strconv.Atoi(countStr)
		if err != nil {
			return 0, 0, false
		}
	}
	return start, count, true
}
