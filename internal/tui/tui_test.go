package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revtui/revtui/internal/core/config"
	"github.com/revtui/revtui/internal/core/model"
	"github.com/revtui/revtui/internal/core/store"
	"github.com/revtui/revtui/internal/core/vcs"
)

type fakeBackend struct {
	context []model.DiffLine
}

func (f *fakeBackend) Info() vcs.Info { return vcs.Info{Root: "/repo", Kind: vcs.KindGit} }

func (f *fakeBackend) WorkingTreeDiff(ctx context.Context) (model.Changeset, error) {
	return nil, nil
}

func (f *fakeBackend) RangeDiff(ctx context.Context, base, head string) (model.Changeset, error) {
	return nil, nil
}

func (f *fakeBackend) FetchContextLines(ctx context.Context, path string, status model.FileStatus, start, end int) ([]model.DiffLine, error) {
	var out []model.DiffLine
	for _, l := range f.context {
		if l.NewLineno >= start && l.NewLineno <= end {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeBackend) RecentCommits(ctx context.Context, limit int) ([]vcs.CommitInfo, error) {
	return nil, nil
}

func testChangeset() model.Changeset {
	return model.Changeset{
		{
			NewPath: "a.go",
			OldPath: "a.go",
			Hunks: []model.DiffHunk{{
				Header:   "@@ -5,2 +5,3 @@",
				OldStart: 5, OldCount: 2, NewStart: 5, NewCount: 3,
				Lines: []model.DiffLine{
					{Origin: model.OriginContext, Content: "ctx", OldLineno: 5, NewLineno: 5},
					{Origin: model.OriginDeletion, Content: "gone", OldLineno: 6},
					{Origin: model.OriginAddition, Content: "new one", NewLineno: 6},
					{Origin: model.OriginAddition, Content: "new two", NewLineno: 7},
				},
			}},
		},
		{
			NewPath: "b.go",
			OldPath: "b.go",
			Hunks: []model.DiffHunk{{
				Header:   "@@ -1,1 +1,1 @@",
				OldStart: 1, OldCount: 1, NewStart: 1, NewCount: 1,
				Lines: []model.DiffLine{
					{Origin: model.OriginContext, Content: "only", OldLineno: 1, NewLineno: 1},
				},
			}},
		},
	}
}

func newTestModel(t *testing.T) Model {
	t.Helper()

	files := testChangeset()
	session := model.NewReviewSession("/repo", "abc123")
	for i := range files {
		session.AddFile(files[i].DisplayPath(), files[i].Status)
	}

	cfg := config.DefaultConfig()
	m := New(Options{
		Files:   files,
		Session: session,
		Store:   store.New(store.DefaultPath(t.TempDir())),
		Backend: &fakeBackend{},
		Config:  &cfg,
		Logger:  zerolog.Nop(),
	})

	resized, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return resized.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func send(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func TestCursorMovement(t *testing.T) {
	m := newTestModel(t)
	require.Equal(t, 0, m.nav.CursorLine)

	m = send(t, m, "j", "j")
	assert.Equal(t, 2, m.nav.CursorLine)

	m = send(t, m, "k")
	assert.Equal(t, 1, m.nav.CursorLine)
}

func TestFileJumpKeepsSelectionInSync(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, "]")
	assert.Equal(t, 1, m.nav.CurrentFile)
	assert.Equal(t, 1, m.nav.Selected)

	m = send(t, m, "[")
	assert.Equal(t, 0, m.nav.CurrentFile)
}

func TestListFocusNavigatesFiles(t *testing.T) {
	m := newTestModel(t)
	require.Equal(t, focusDiff, m.focus)

	m = send(t, m, "tab")
	require.Equal(t, focusList, m.focus)

	m = send(t, m, "j")
	assert.Equal(t, 1, m.nav.Selected)
	assert.Equal(t, 1, m.nav.CurrentFile)
	assert.Equal(t, m.nav.FileStartRow(1), m.nav.CursorLine)

	m = send(t, m, "k")
	assert.Equal(t, 0, m.nav.Selected)

	// clamped at the first file
	m = send(t, m, "k")
	assert.Equal(t, 0, m.nav.Selected)
}

func TestToggleReviewedFoldsFileAndMarksDirty(t *testing.T) {
	m := newTestModel(t)
	before := m.nav.TotalRows()

	m = send(t, m, " ")
	assert.True(t, m.dirty)
	assert.True(t, m.session.IsFileReviewed("a.go"))
	assert.Less(t, m.nav.TotalRows(), before)

	m = send(t, m, " ")
	assert.False(t, m.session.IsFileReviewed("a.go"))
	assert.Equal(t, before, m.nav.TotalRows())
}

func TestSideBySideToggle(t *testing.T) {
	m := newTestModel(t)
	require.False(t, m.nav.SideBySide())

	m = send(t, m, "s")
	assert.True(t, m.nav.SideBySide())

	m = send(t, m, "s")
	assert.False(t, m.nav.SideBySide())
}

func TestLineCommentFlow(t *testing.T) {
	m := newTestModel(t)

	// header, hunk header, context line, then the deletion
	m = send(t, m, "j", "j", "j", "c")
	require.Equal(t, modeComment, m.mode)
	assert.Equal(t, "a.go", m.target.path)
	assert.Equal(t, 6, m.target.line)
	assert.Equal(t, model.SideOld, m.target.side)

	before := m.nav.TotalRows()
	m.commentInput.SetValue("why was this removed?")
	m = send(t, m, "ctrl+s")

	require.Equal(t, modeNormal, m.mode)
	assert.True(t, m.dirty)

	comments := m.session.File("a.go").LineComments[6]
	require.Len(t, comments, 1)
	assert.True(t, comments[0].OnOldSide())
	assert.Equal(t, "why was this removed?", comments[0].Content)
	assert.Greater(t, m.nav.TotalRows(), before)
}

func TestCommentTypeCycling(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, "j", "j", "j", "c")
	require.Equal(t, modeComment, m.mode)
	require.Equal(t, 0, m.commentTypeIdx)

	m = send(t, m, "tab", "tab")
	assert.Equal(t, 2, m.commentTypeIdx)
}

func TestEmptyCommentDiscarded(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, "j", "j", "j", "c", "ctrl+s")

	assert.Equal(t, modeNormal, m.mode)
	assert.False(t, m.dirty)
	assert.Zero(t, m.session.File("a.go").CommentCount())
}

func TestFileCommentOnHeaderRow(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, "C")
	require.Equal(t, modeComment, m.mode)
	assert.Zero(t, m.target.line)

	m.commentInput.SetValue("looks fine overall")
	m = send(t, m, "ctrl+s")
	require.Len(t, m.session.File("a.go").FileComments, 1)
}

func TestCommentOnHeaderRowRejected(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, "c")
	assert.Equal(t, modeNormal, m.mode)
	assert.NotEmpty(t, m.message)
}

func TestSaveCommand(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, " ") // make it dirty

	next, _ := m.execCommand("w")
	m = next.(Model)
	assert.False(t, m.dirty)

	loaded, err := m.store.Load()
	require.NoError(t, err)
	assert.True(t, loaded.IsFileReviewed("a.go"))
}

func TestUnknownCommand(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.execCommand("frobnicate")
	m = next.(Model)
	assert.True(t, m.msgIsErr)
}

func TestQuitSavesWhenDirty(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, " ")
	require.True(t, m.dirty)

	next, cmd := m.Update(key("q"))
	m = next.(Model)
	assert.NotNil(t, cmd)
	assert.True(t, m.quitting)

	loaded, err := m.store.Load()
	require.NoError(t, err)
	assert.True(t, loaded.IsFileReviewed("a.go"))
}

func TestExpandContext(t *testing.T) {
	m := newTestModel(t)
	backend := &fakeBackend{}
	for n := 1; n <= 4; n++ {
		backend.context = append(backend.context, model.DiffLine{
			Origin:    model.OriginContext,
			Content:   "before",
			OldLineno: n,
			NewLineno: n,
		})
	}
	m.backend = backend

	// cursor onto the first hunk's context line
	m = send(t, m, "j", "j", "x")

	hunk := &m.files[0].Hunks[0]
	assert.Equal(t, 1, hunk.NewStart)
	assert.Equal(t, 1, hunk.OldStart)
	assert.Equal(t, 7, hunk.NewCount)
	assert.Equal(t, 6, hunk.OldCount)
	assert.Equal(t, "before", hunk.Lines[0].Content)
	assert.Equal(t, "@@ -1,6 +1,7 @@", hunk.Header)
}

func TestViewRendersWithoutPanic(t *testing.T) {
	m := newTestModel(t)
	out := m.View()
	assert.Contains(t, out, "a.go")
	assert.Contains(t, out, "@@ -5,2 +5,3 @@")

	m = send(t, m, "s")
	assert.NotEmpty(t, m.View())

	m = send(t, m, "?")
	assert.Contains(t, m.View(), "Keys")
}

func TestHelpClosesOnAnyKey(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, "?")
	require.Equal(t, modeHelp, m.mode)

	m = send(t, m, "j")
	assert.Equal(t, modeNormal, m.mode)
}
