package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/revtui/revtui/internal/core/model"
	"github.com/revtui/revtui/internal/core/nav"
	"github.com/revtui/revtui/internal/core/output"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.lay.commentWrap = max(10, m.diffWidth()-6)
		m.commentInput.SetWidth(min(m.width-8, 72))
		m.commandInput.Width = max(10, m.width-4)
		m.nav.SetViewportHeight(m.contentHeight())
		m.nav.Clamp()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeCommand:
			return m.updateCommand(msg)
		case modeComment:
			return m.updateComment(msg)
		case modeHelp:
			m.mode = modeNormal
			return m, nil
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	m.msgIsErr = false

	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "q":
		if m.dirty {
			if err := m.save(); err != nil {
				m.setError(err)
				return m, nil
			}
		}
		m.quitting = true
		return m, tea.Quit

	case "j", "down":
		if m.focus == focusList {
			m.nav.JumpToFile(m.nav.Selected + 1)
		} else {
			m.nav.CursorBy(1)
		}
	case "k", "up":
		if m.focus == focusList {
			m.nav.JumpToFile(m.nav.Selected - 1)
		} else {
			m.nav.CursorBy(-1)
		}
	case "d", "ctrl+d":
		m.nav.CursorBy(m.cfg.Scroll.HalfPage)
	case "u", "ctrl+u":
		m.nav.CursorBy(-m.cfg.Scroll.HalfPage)
	case "f", "pgdown":
		m.nav.ScrollBy(m.cfg.Scroll.Page)
	case "b", "pgup":
		m.nav.ScrollBy(-m.cfg.Scroll.Page)
	case "g":
		m.nav.JumpToFile(0)
	case "G":
		m.nav.CursorBy(m.nav.TotalRows())

	case "]", "n":
		m.nav.NextFile()
	case "[", "p":
		m.nav.PrevFile()

	case "tab":
		if m.focus == focusList {
			m.focus = focusDiff
		} else {
			m.focus = focusList
		}

	case "enter":
		if m.focus == focusList {
			m.nav.JumpToFile(m.nav.Selected)
			m.focus = focusDiff
		}

	case " ":
		if file := m.currentFile(); file != nil {
			path := file.DisplayPath()
			m.session.AddFile(path, file.Status)
			m.session.ToggleReviewed(path)
			m.dirty = true
			m.nav.Clamp()
			if m.session.IsFileReviewed(path) {
				m.setMessage(path + " marked reviewed")
			} else {
				m.setMessage(path + " marked unreviewed")
			}
		}

	case "s":
		m.nav.SetSideBySide(!m.nav.SideBySide())

	case "x":
		m.expandContext()

	case "c":
		return m.beginLineComment()
	case "C":
		return m.beginFileComment()

	case ":":
		m.mode = modeCommand
		m.commandInput.SetValue("")
		return m, m.commandInput.Focus()

	case "?":
		m.mode = modeHelp
	}

	return m, nil
}

// beginLineComment opens the comment editor anchored to the line under the
// cursor. Deletions anchor to the old side, additions to the new side, and
// context lines default to the new side but can be switched.
func (m Model) beginLineComment() (tea.Model, tea.Cmd) {
	ref, ok := m.nav.RowAt(m.nav.CursorLine)
	if !ok {
		return m, nil
	}

	file := &m.files[ref.FileIdx]
	target := commentTarget{path: file.DisplayPath()}

	switch ref.Kind {
	case nav.RowLine:
		line := ref.Line
		switch line.Origin {
		case model.OriginDeletion:
			target.line = line.OldLineno
			target.side = model.SideOld
		case model.OriginAddition:
			target.line = line.NewLineno
			target.side = model.SideNew
		default:
			target.line = line.NewLineno
			target.side = model.SideNew
			target.twoSide = true
		}

	case nav.RowPair:
		pair := ref.Pair
		switch {
		case pair.Right != nil && pair.Left != nil:
			target.line = pair.Right.NewLineno
			target.side = model.SideNew
			target.twoSide = pair.Left.Origin == model.OriginContext
		case pair.Right != nil:
			target.line = pair.Right.NewLineno
			target.side = model.SideNew
		default:
			target.line = pair.Left.OldLineno
			target.side = model.SideOld
		}

	case nav.RowLineComment:
		target.line = ref.CommentLine
		target.side = model.SideNew
		if ref.Comment.OnOldSide() {
			target.side = model.SideOld
		}

	default:
		m.setMessage("move the cursor onto a diff line to comment")
		return m, nil
	}

	if target.line == 0 {
		m.setMessage("move the cursor onto a diff line to comment")
		return m, nil
	}

	return m.openCommentEditor(target)
}

func (m Model) beginFileComment() (tea.Model, tea.Cmd) {
	file := m.currentFile()
	if file == nil {
		return m, nil
	}
	return m.openCommentEditor(commentTarget{path: file.DisplayPath()})
}

func (m Model) openCommentEditor(target commentTarget) (tea.Model, tea.Cmd) {
	m.target = target
	m.commentTypeIdx = 0
	m.commentInput.Reset()
	m.mode = modeComment
	return m, m.commentInput.Focus()
}

func (m Model) updateComment(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.commentInput.Blur()
		m.mode = modeNormal
		return m, nil

	case "tab":
		m.commentTypeIdx = (m.commentTypeIdx + 1) % len(model.CommentTypes)
		return m, nil

	case "ctrl+o":
		if m.target.twoSide {
			if m.target.side == model.SideOld {
				m.target.side = model.SideNew
			} else {
				m.target.side = model.SideOld
			}
		}
		return m, nil

	case "ctrl+s":
		m.submitComment()
		m.commentInput.Blur()
		m.mode = modeNormal
		return m, nil
	}

	var cmd tea.Cmd
	m.commentInput, cmd = m.commentInput.Update(msg)
	return m, cmd
}

func (m *Model) submitComment() {
	content := strings.TrimSpace(m.commentInput.Value())
	if content == "" {
		m.setMessage("empty comment discarded")
		return
	}

	comment := model.Comment{
		Type:      model.CommentTypes[m.commentTypeIdx],
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if m.target.side == model.SideOld {
		comment.Side = model.SideOld
	}

	file := m.currentFile()
	status := model.StatusModified
	if file != nil {
		status = file.Status
	}
	m.session.AddFile(m.target.path, status)
	review := m.session.File(m.target.path)

	if m.target.line == 0 {
		review.AddFileComment(comment)
		m.setMessage("file comment added")
	} else {
		review.AddLineComment(m.target.line, comment)
		m.setMessage(fmt.Sprintf("comment added on line %d", m.target.line))
	}

	m.dirty = true
	m.nav.Clamp()
}

func (m Model) updateCommand(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.commandInput.Blur()
		m.mode = modeNormal
		return m, nil
	case "enter":
		line := strings.TrimSpace(m.commandInput.Value())
		m.commandInput.Blur()
		m.mode = modeNormal
		return m.execCommand(line)
	}

	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(msg)
	return m, cmd
}

func (m Model) execCommand(line string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "":
		return m, nil

	case "w":
		if err := m.save(); err != nil {
			m.setError(err)
		} else {
			m.setMessage("session saved to " + m.store.Path())
		}

	case "q":
		m.quitting = true
		return m, tea.Quit

	case "wq", "x":
		if err := m.save(); err != nil {
			m.setError(err)
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case "e", "export":
		path := arg
		if path == "" {
			path = "review.md"
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(m.session.RepoPath, path)
		}
		if err := os.WriteFile(path, []byte(m.exportMarkdown()), 0o644); err != nil {
			m.setError(err)
		} else {
			m.setMessage("review exported to " + path)
		}

	case "copy":
		if err := clipboard.WriteAll(m.exportMarkdown()); err != nil {
			m.setError(err)
		} else {
			m.setMessage("review copied to clipboard")
		}

	default:
		m.setMessage("unknown command :" + name)
		m.msgIsErr = true
	}

	return m, nil
}

func (m *Model) exportMarkdown() string {
	paths := make([]string, len(m.files))
	for i := range m.files {
		paths[i] = m.files[i].DisplayPath()
	}
	return output.Markdown(m.session, paths)
}

func (m *Model) save() error {
	if err := m.store.Save(m.session); err != nil {
		return err
	}
	m.dirty = false
	return nil
}

// expandContext pulls more surrounding lines into the hunk under the
// cursor, extending it upward by the configured step.
func (m *Model) expandContext() {
	ref, ok := m.nav.RowAt(m.nav.CursorLine)
	if !ok {
		return
	}
	switch ref.Kind {
	case nav.RowHunkHeader, nav.RowLine, nav.RowPair, nav.RowLineComment:
	default:
		m.setMessage("move the cursor into a hunk to expand context")
		return
	}

	file := &m.files[ref.FileIdx]
	hunk := &file.Hunks[ref.HunkIdx]
	step := m.cfg.ContextStep
	deleted := file.Status == model.StatusDeleted

	// Deleted files only exist on the old side, so expansion walks old
	// line numbers; everything else walks new line numbers and shifts the
	// old side by the hunk's offset.
	end := hunk.NewStart - 1
	floor := 1
	if deleted {
		end = hunk.OldStart - 1
		if ref.HunkIdx > 0 {
			prev := &file.Hunks[ref.HunkIdx-1]
			floor = prev.OldStart + prev.OldCount
		}
	} else if ref.HunkIdx > 0 {
		prev := &file.Hunks[ref.HunkIdx-1]
		floor = prev.NewStart + prev.NewCount
	}

	start := max(floor, end-step+1)
	if end < start {
		m.setMessage("no more context above this hunk")
		return
	}

	lines, err := m.backend.FetchContextLines(context.Background(), file.DisplayPath(), file.Status, start, end)
	if err != nil {
		m.setError(err)
		return
	}
	if len(lines) == 0 {
		m.setMessage("no more context above this hunk")
		return
	}

	if deleted {
		for i := range lines {
			lines[i].NewLineno = 0
		}
		hunk.OldStart = lines[0].OldLineno
		hunk.OldCount += len(lines)
	} else {
		delta := hunk.OldStart - hunk.NewStart
		for i := range lines {
			lines[i].OldLineno = lines[i].NewLineno + delta
		}
		hunk.NewStart = lines[0].NewLineno
		hunk.OldStart = hunk.NewStart + delta
		hunk.OldCount += len(lines)
		hunk.NewCount += len(lines)
	}
	hunk.Lines = append(lines, hunk.Lines...)
	hunk.Header = fmt.Sprintf("@@ -%d,%d +%d,%d @@", hunk.OldStart, hunk.OldCount, hunk.NewStart, hunk.NewCount)

	m.nav.Clamp()
	m.setMessage(fmt.Sprintf("added %d context lines", len(lines)))
}

func (m *Model) listWidth() int {
	w := m.width * 3 / 10
	if w < 20 {
		w = min(20, m.width)
	}
	return w
}

func (m *Model) diffWidth() int {
	return max(0, m.width-m.listWidth()-1)
}

func (m *Model) contentHeight() int {
	return max(1, m.height-2)
}
