package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/revtui/revtui/internal/core/model"
	"github.com/revtui/revtui/internal/core/nav"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting || m.width == 0 {
		return ""
	}

	var body string
	switch m.mode {
	case modeHelp:
		body = m.renderHelp()
	case modeComment:
		editor := m.renderCommentEditor()
		editorHeight := lipgloss.Height(editor)
		content := m.renderPanes(max(1, m.contentHeight()-editorHeight))
		body = lipgloss.JoinVertical(lipgloss.Left, content, editor)
	default:
		body = m.renderPanes(m.contentHeight())
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar(), m.renderBottomLine())
}

func (m Model) renderPanes(rows int) string {
	list := m.renderFileList(rows)
	diff := m.renderDiff(rows)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, " ", diff)
}

func (m Model) renderFileList(rows int) string {
	width := m.listWidth()
	lines := make([]string, 0, rows)

	title := fmt.Sprintf("Files %d/%d", m.session.ReviewedCount(), len(m.files))
	lines = append(lines, m.styles.listTitle.Render(runewidth.Truncate(title, width, "…")))

	// Keep the selected file visible when the list outgrows the pane.
	first := 0
	visible := rows - 1
	if visible > 0 && m.nav.Selected >= visible {
		first = m.nav.Selected - visible + 1
	}

	for i := first; i < len(m.files) && len(lines) < rows; i++ {
		file := &m.files[i]
		path := file.DisplayPath()

		marker := "  "
		if i == m.nav.Selected {
			marker = "❯ "
		}

		check := " "
		if m.session.IsFileReviewed(path) {
			check = "✓"
		}

		suffix := ""
		if r := m.session.File(path); r != nil && r.CommentCount() > 0 {
			suffix = fmt.Sprintf(" (%d)", r.CommentCount())
		}

		text := fmt.Sprintf("%s%c %s %s%s", marker, file.Status.Rune(), check, path, suffix)
		text = runewidth.Truncate(text, width, "…")

		switch {
		case i == m.nav.Selected && m.focus == focusList:
			text = m.styles.selected.Render(text)
		case i == m.nav.Selected:
			text = m.styles.fileHeader.Render(text)
		case m.session.IsFileReviewed(path):
			text = m.styles.muted.Render(text)
		}
		lines = append(lines, text)
	}

	pane := lipgloss.NewStyle().Width(width).Height(rows)
	return pane.Render(strings.Join(lines, "\n"))
}

func (m Model) renderDiff(rows int) string {
	width := m.diffWidth()
	refs := m.nav.Rows(m.nav.ScrollOffset, rows)

	lines := make([]string, 0, rows)
	for i, ref := range refs {
		cursor := "  "
		if m.nav.ScrollOffset+i == m.nav.CursorLine && m.focus == focusDiff {
			cursor = m.styles.selected.Render("▶") + " "
		}
		lines = append(lines, cursor+m.renderRow(ref, max(1, width-2)))
	}

	pane := lipgloss.NewStyle().Width(width).Height(rows)
	return pane.Render(strings.Join(lines, "\n"))
}

func (m Model) renderRow(ref nav.RowRef, width int) string {
	file := &m.files[ref.FileIdx]

	switch ref.Kind {
	case nav.RowFileHeader:
		path := file.DisplayPath()
		reviewed := m.session.IsFileReviewed(path)
		marker := "▾"
		if reviewed {
			marker = "▸"
		}
		text := fmt.Sprintf("%s %c %s", marker, file.Status.Rune(), path)
		if reviewed {
			text += " ✓"
		}
		style := m.styles.fileHeader
		if reviewed {
			style = m.styles.fileHeaderDone
		}
		return style.Render(runewidth.Truncate(text, width, "…"))

	case nav.RowFileComment, nav.RowLineComment:
		rows := wrapComment(*ref.Comment, m.lay.commentWrap)
		text := ""
		if ref.CommentRow < len(rows) {
			text = rows[ref.CommentRow]
		}
		return m.styles.comment.Render(runewidth.Truncate("  ┃ "+text, width, "…"))

	case nav.RowHunkHeader:
		header := file.Hunks[ref.HunkIdx].Header
		return m.styles.hunkHeader.Render(runewidth.Truncate(header, width, "…"))

	case nav.RowLine:
		return m.renderDiffLine(ref.Line, width)

	case nav.RowPair:
		return m.renderPairRow(ref.Pair, width)

	case nav.RowPlaceholder:
		if file.IsBinary {
			return m.styles.muted.Render("  (binary file)")
		}
		return m.styles.muted.Render("  (no changes)")

	default: // RowSeparator
		return ""
	}
}

func (m Model) renderDiffLine(line *model.DiffLine, width int) string {
	gutter := m.styles.lineno.Render(fmt.Sprintf("%s %s ", lineno(line.OldLineno), lineno(line.NewLineno)))
	bodyWidth := max(1, width-11)

	prefix := line.Origin.Prefix()
	switch line.Origin {
	case model.OriginAddition:
		return gutter + m.styles.addition.Render(runewidth.Truncate(prefix+line.Content, bodyWidth, "…"))
	case model.OriginDeletion:
		return gutter + m.styles.deletion.Render(runewidth.Truncate(prefix+line.Content, bodyWidth, "…"))
	default:
		return gutter + prefix + m.renderSegments(line, bodyWidth-1)
	}
}

// renderSegments renders a context line's highlighted segments, truncated
// to the available width. Lines without segments fall back to raw content.
func (m Model) renderSegments(line *model.DiffLine, width int) string {
	if width < 1 {
		width = 1
	}
	if len(line.Segments) == 0 {
		return runewidth.Truncate(line.Content, width, "…")
	}

	var b strings.Builder
	remaining := width
	for _, seg := range line.Segments {
		if remaining <= 0 {
			break
		}
		text := runewidth.Truncate(seg.Text, remaining, "")
		remaining -= runewidth.StringWidth(text)
		if seg.Color == "" {
			b.WriteString(text)
			continue
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(seg.Color)).Render(text))
	}
	return b.String()
}

func (m Model) renderPairRow(pair *nav.Pair, width int) string {
	colWidth := max(1, (width-3)/2)

	left, right := "", ""
	if pair.Left != nil {
		text := fmt.Sprintf("%s %s", lineno(pair.Left.OldLineno), pair.Left.Content)
		text = runewidth.FillRight(runewidth.Truncate(text, colWidth, "…"), colWidth)
		if pair.Left.Origin == model.OriginDeletion {
			left = m.styles.deletion.Render(text)
		} else {
			left = text
		}
	} else {
		left = strings.Repeat(" ", colWidth)
	}

	if pair.Right != nil {
		text := fmt.Sprintf("%s %s", lineno(pair.Right.NewLineno), pair.Right.Content)
		text = runewidth.Truncate(text, colWidth, "…")
		if pair.Right.Origin == model.OriginAddition {
			right = m.styles.addition.Render(text)
		} else {
			right = text
		}
	}

	return left + m.styles.muted.Render(" │ ") + right
}

func lineno(n int) string {
	if n == 0 {
		return "    "
	}
	return fmt.Sprintf("%4d", n)
}

func (m Model) renderCommentEditor() string {
	target := "file comment on " + m.target.path
	if m.target.line != 0 {
		side := ""
		if m.target.side == model.SideOld {
			side = " (old side)"
		} else if m.target.twoSide {
			side = " (new side)"
		}
		target = fmt.Sprintf("comment on %s:%d%s", m.target.path, m.target.line, side)
	}

	header := m.styles.commentType.Render("["+string(model.CommentTypes[m.commentTypeIdx])+"]") +
		" " + m.styles.muted.Render(target)
	hint := m.styles.help.Render("ctrl+s save · esc cancel · tab type" + m.sideHint())

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(defaultPalette.Surface).
		Padding(0, 1)

	return box.Render(lipgloss.JoinVertical(lipgloss.Left, header, m.commentInput.View(), hint))
}

func (m Model) sideHint() string {
	if m.target.twoSide {
		return " · ctrl+o side"
	}
	return ""
}

func (m Model) renderStatusBar() string {
	file := m.currentFile()
	name := ""
	if file != nil {
		name = file.DisplayPath()
	}

	dirty := ""
	if m.dirty {
		dirty = " [+]"
	}

	layoutName := "unified"
	if m.nav.SideBySide() {
		layoutName = "side-by-side"
	}

	left := fmt.Sprintf(" %s%s · %d/%d files · %s", name, dirty, m.nav.CurrentFile+1, max(1, len(m.files)), layoutName)
	right := "? help "

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return m.styles.statusBar.Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderBottomLine() string {
	if m.mode == modeCommand {
		return m.commandInput.View()
	}
	if m.message != "" {
		if m.msgIsErr {
			return m.styles.statusError.Render(m.message)
		}
		return m.styles.statusMessage.Render(m.message)
	}
	return m.styles.help.Render("j/k move · space reviewed · c comment · s layout · : command · q quit")
}

func (m Model) renderHelp() string {
	rows := []string{
		m.styles.listTitle.Render("Keys"),
		"",
		"  j/k, ↓/↑      move cursor",
		"  d/u           half page down/up",
		"  f/b           page down/up",
		"  g/G           first file / end",
		"  ]/[, n/p      next / previous file",
		"  tab           switch pane focus",
		"  enter         open selected file",
		"  space         toggle file reviewed (folds body)",
		"  c             comment on current line",
		"  C             comment on current file",
		"  x             expand context above hunk",
		"  s             toggle side-by-side layout",
		"  :w            save session",
		"  :q, :wq       quit / save and quit",
		"  :export [f]   write markdown review",
		"  :copy         copy markdown review to clipboard",
		"  q             save if needed and quit",
		"",
		m.styles.help.Render("press any key to close"),
	}
	box := lipgloss.NewStyle().Padding(1, 2)
	return box.Render(strings.Join(rows, "\n"))
}
