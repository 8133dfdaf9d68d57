// Package nav maps a single flattened "visible row" cursor onto the tree
// of files, hunks, lines, and injected comment rows that the renderer
// displays. Reviewed files fold away to just their header row; comments
// expand to however many rows their wrapped text occupies.
package nav

import "github.com/revtui/revtui/internal/core/model"

// RowKind identifies what a flattened row represents.
type RowKind int

const (
	RowFileHeader RowKind = iota
	RowFileComment
	RowHunkHeader
	RowLine        // one diff line (unified layout)
	RowPair        // one aligned column pair (side-by-side layout)
	RowLineComment // one wrapped row of a line comment
	RowPlaceholder // "(binary file)" or "(no changes)" body row
	RowSeparator   // blank row between files
)

// RowRef resolves a flattened row back to the position it represents.
// Only the fields relevant to Kind are set.
type RowRef struct {
	Kind    RowKind
	FileIdx int
	HunkIdx int

	Line *model.DiffLine // RowLine
	Pair *Pair           // RowPair

	Comment     *model.Comment // RowFileComment, RowLineComment
	CommentRow  int            // which wrapped row of the comment this is
	CommentLine int            // anchored line number (RowLineComment)
}

// CommentHeightFunc reports how many rows a comment occupies once wrapped
// for display. The engine treats the result as an opaque positive integer;
// values below 1 are clamped to 1.
type CommentHeightFunc func(model.Comment) int

// Navigator owns the coupled scroll/cursor/selection state for one
// changeset and review session. All operations are synchronous pure
// computations over in-memory state.
type Navigator struct {
	files   model.Changeset
	session *model.ReviewSession
	height  CommentHeightFunc

	sideBySide bool
	viewport   int

	// ScrollOffset is the first visible row; CursorLine the row considered
	// current. CurrentFile is the file owning the scroll position and
	// Selected the file-list selection; the two always agree.
	ScrollOffset int
	CursorLine   int
	CurrentFile  int
	Selected     int
}

// New creates a navigator over the given changeset and session. height may
// be nil, in which case every comment counts as one row.
func New(files model.Changeset, session *model.ReviewSession, height CommentHeightFunc) *Navigator {
	return &Navigator{files: files, session: session, height: height}
}

// SetViewportHeight records the number of visible rows so cursor movement
// can keep the cursor on screen.
func (n *Navigator) SetViewportHeight(h int) {
	if h < 0 {
		h = 0
	}
	n.viewport = h
}

// SideBySide reports whether the two-column layout is active.
func (n *Navigator) SideBySide() bool { return n.sideBySide }

// SetSideBySide switches between unified and two-column layouts. Row counts
// differ between the layouts, so the view re-anchors on the current file.
func (n *Navigator) SetSideBySide(on bool) {
	if n.sideBySide == on {
		return
	}
	n.sideBySide = on
	if len(n.files) > 0 {
		n.JumpToFile(n.CurrentFile)
	}
}

func (n *Navigator) commentHeight(c model.Comment) int {
	if n.height == nil {
		return 1
	}
	if h := n.height(c); h > 0 {
		return h
	}
	return 1
}

// walkFile invokes fn once per row the file contributes, in order. It
// returns false if fn stopped the walk.
func (n *Navigator) walkFile(idx int, fn func(RowRef) bool) bool {
	file := &n.files[idx]
	path := file.DisplayPath()

	if !fn(RowRef{Kind: RowFileHeader, FileIdx: idx}) {
		return false
	}

	var review *model.FileReview
	if n.session != nil {
		review = n.session.File(path)
	}

	// Reviewed files fold away: the body (comments included) is neither
	// counted nor shown.
	if review != nil && review.Reviewed {
		return true
	}

	if review != nil {
		for ci := range review.FileComments {
			c := &review.FileComments[ci]
			for r := 0; r < n.commentHeight(*c); r++ {
				if !fn(RowRef{Kind: RowFileComment, FileIdx: idx, Comment: c, CommentRow: r}) {
					return false
				}
			}
		}
	}

	if file.IsBinary || len(file.Hunks) == 0 {
		if !fn(RowRef{Kind: RowPlaceholder, FileIdx: idx}) {
			return false
		}
	} else {
		for hi := range file.Hunks {
			if !n.walkHunk(idx, hi, review, fn) {
				return false
			}
		}
	}

	return fn(RowRef{Kind: RowSeparator, FileIdx: idx})
}

func (n *Navigator) walkHunk(fileIdx, hunkIdx int, review *model.FileReview, fn func(RowRef) bool) bool {
	hunk := &n.files[fileIdx].Hunks[hunkIdx]

	if !fn(RowRef{Kind: RowHunkHeader, FileIdx: fileIdx, HunkIdx: hunkIdx}) {
		return false
	}

	if n.sideBySide {
		return n.walkHunkPairs(fileIdx, hunkIdx, hunk, review, fn)
	}

	for li := range hunk.Lines {
		line := &hunk.Lines[li]
		if !fn(RowRef{Kind: RowLine, FileIdx: fileIdx, HunkIdx: hunkIdx, Line: line}) {
			return false
		}
		if !n.walkLineComments(fileIdx, hunkIdx, review, line, true, fn) {
			return false
		}
		if !n.walkLineComments(fileIdx, hunkIdx, review, line, false, fn) {
			return false
		}
	}
	return true
}

func (n *Navigator) walkHunkPairs(fileIdx, hunkIdx int, hunk *model.DiffHunk, review *model.FileReview, fn func(RowRef) bool) bool {
	pairs := AlignHunk(hunk)
	for pi := range pairs {
		pair := &pairs[pi]
		if !fn(RowRef{Kind: RowPair, FileIdx: fileIdx, HunkIdx: hunkIdx, Pair: pair}) {
			return false
		}
		if pair.Left != nil {
			if !n.walkLineComments(fileIdx, hunkIdx, review, pair.Left, true, fn) {
				return false
			}
		}
		if pair.Right != nil {
			if !n.walkLineComments(fileIdx, hunkIdx, review, pair.Right, false, fn) {
				return false
			}
		}
	}
	return true
}

// walkLineComments emits the comment rows attached to one side of a diff
// line. Old-side comments anchor to the old line number and require an
// explicit Old side; everything else anchors to the new line number.
func (n *Navigator) walkLineComments(fileIdx, hunkIdx int, review *model.FileReview, line *model.DiffLine, oldSide bool, fn func(RowRef) bool) bool {
	if review == nil {
		return true
	}

	lineno := line.NewLineno
	if oldSide {
		lineno = line.OldLineno
	}
	if lineno == 0 {
		return true
	}

	comments := review.LineComments[lineno]
	for ci := range comments {
		c := &comments[ci]
		if c.OnOldSide() != oldSide {
			continue
		}
		for r := 0; r < n.commentHeight(*c); r++ {
			ref := RowRef{
				Kind:        RowLineComment,
				FileIdx:     fileIdx,
				HunkIdx:     hunkIdx,
				Comment:     c,
				CommentRow:  r,
				CommentLine: lineno,
			}
			if !fn(ref) {
				return false
			}
		}
	}
	return true
}

// FileRows returns the number of rows the file at idx contributes, given
// its current reviewed state and layout.
func (n *Navigator) FileRows(idx int) int {
	count := 0
	n.walkFile(idx, func(RowRef) bool {
		count++
		return true
	})
	return count
}

// FileStartRow returns the exact row count of all files strictly before idx.
func (n *Navigator) FileStartRow(idx int) int {
	total := 0
	for i := 0; i < idx && i < len(n.files); i++ {
		total += n.FileRows(i)
	}
	return total
}

// TotalRows returns the total number of visible rows in the changeset.
func (n *Navigator) TotalRows() int {
	return n.FileStartRow(len(n.files))
}

// RowAt resolves a flattened row index to the position it represents.
func (n *Navigator) RowAt(row int) (RowRef, bool) {
	if row < 0 {
		return RowRef{}, false
	}
	cumulative := 0
	for i := range n.files {
		h := n.FileRows(i)
		if cumulative+h > row {
			var found RowRef
			offset := row - cumulative
			k := 0
			n.walkFile(i, func(ref RowRef) bool {
				if k == offset {
					found = ref
					return false
				}
				k++
				return true
			})
			return found, true
		}
		cumulative += h
	}
	return RowRef{}, false
}

// Rows returns up to count row refs starting at the given row, for the
// renderer's visible window.
func (n *Navigator) Rows(start, count int) []RowRef {
	refs := make([]RowRef, 0, count)
	for row := start; row < start+count; row++ {
		ref, ok := n.RowAt(row)
		if !ok {
			break
		}
		refs = append(refs, ref)
	}
	return refs
}

// JumpToFile positions the view at the top of the file at idx. The scroll
// offset becomes the exact row count of all files before idx, and the
// file-list selection follows. On an empty changeset this is a no-op.
func (n *Navigator) JumpToFile(idx int) {
	if len(n.files) == 0 {
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx > len(n.files)-1 {
		idx = len(n.files) - 1
	}

	n.CurrentFile = idx
	n.Selected = idx
	n.ScrollOffset = n.FileStartRow(idx)
	n.CursorLine = n.ScrollOffset
}

// NextFile jumps to the following file, clamped to range.
func (n *Navigator) NextFile() { n.JumpToFile(n.CurrentFile + 1) }

// PrevFile jumps to the preceding file, clamped to range.
func (n *Navigator) PrevFile() { n.JumpToFile(n.CurrentFile - 1) }

// ScrollBy moves the scroll offset by delta (signed), floored at zero and
// clamped to the last row, then re-derives which file owns the new offset
// so the file-list selection never diverges from what is on screen.
func (n *Navigator) ScrollBy(delta int) {
	if len(n.files) == 0 {
		return
	}

	total := n.TotalRows()
	n.ScrollOffset += delta
	if n.ScrollOffset < 0 {
		n.ScrollOffset = 0
	}
	if n.ScrollOffset > total-1 {
		n.ScrollOffset = total - 1
	}

	n.rederiveFromOffset()
	n.snapCursor()
}

// CursorBy moves the cursor row by delta, scrolling just enough to keep it
// visible, then re-derives file selection from the scroll offset.
func (n *Navigator) CursorBy(delta int) {
	if len(n.files) == 0 {
		return
	}

	total := n.TotalRows()
	n.CursorLine += delta
	if n.CursorLine < 0 {
		n.CursorLine = 0
	}
	if n.CursorLine > total-1 {
		n.CursorLine = total - 1
	}

	if n.CursorLine < n.ScrollOffset {
		n.ScrollOffset = n.CursorLine
	} else if n.viewport > 0 && n.CursorLine >= n.ScrollOffset+n.viewport {
		n.ScrollOffset = n.CursorLine - n.viewport + 1
	}

	n.rederiveFromOffset()
}

// Clamp re-validates all positions against the current row counts. Call it
// after anything that changes row counts out from under the navigator
// (toggling reviewed, adding comments, expanding context).
func (n *Navigator) Clamp() {
	if len(n.files) == 0 {
		n.ScrollOffset, n.CursorLine, n.CurrentFile, n.Selected = 0, 0, 0, 0
		return
	}
	total := n.TotalRows()
	if n.ScrollOffset > total-1 {
		n.ScrollOffset = total - 1
	}
	if n.CursorLine > total-1 {
		n.CursorLine = total - 1
	}
	n.rederiveFromOffset()
	n.snapCursor()
}

func (n *Navigator) rederiveFromOffset() {
	cumulative := 0
	for i := range n.files {
		h := n.FileRows(i)
		if cumulative+h > n.ScrollOffset {
			n.CurrentFile = i
			n.Selected = i
			return
		}
		cumulative += h
	}
	n.CurrentFile = len(n.files) - 1
	n.Selected = len(n.files) - 1
}

func (n *Navigator) snapCursor() {
	if n.CursorLine < n.ScrollOffset {
		n.CursorLine = n.ScrollOffset
	}
	if n.viewport > 0 && n.CursorLine >= n.ScrollOffset+n.viewport {
		n.CursorLine = n.ScrollOffset + n.viewport - 1
	}
}
