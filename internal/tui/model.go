// Package tui implements the interactive review screen: a file list beside
// a scrollable diff, with comment entry and a vim-style command line.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"
	"github.com/rs/zerolog"

	"github.com/revtui/revtui/internal/core/config"
	"github.com/revtui/revtui/internal/core/model"
	"github.com/revtui/revtui/internal/core/nav"
	"github.com/revtui/revtui/internal/core/store"
	"github.com/revtui/revtui/internal/core/vcs"
)

type mode int

const (
	modeNormal mode = iota
	modeCommand
	modeComment
	modeHelp
)

type focusArea int

const (
	focusList focusArea = iota
	focusDiff
)

// commentTarget records where the comment being composed will attach.
type commentTarget struct {
	path    string
	line    int // 0 means a file-level comment
	side    model.LineSide
	twoSide bool // line exists on both sides, ctrl+o may switch
}

// layout is shared with the navigator's comment height callback, which
// outlives any single copy of the Model value.
type layout struct {
	commentWrap int
}

// Options wires the review screen to the rest of the application.
type Options struct {
	Files   model.Changeset
	Session *model.ReviewSession
	Store   *store.Store
	Backend vcs.Backend
	Config  *config.Config
	Logger  zerolog.Logger

	// Notice is shown in the status bar on startup, e.g. when a stored
	// session was created against a different base revision.
	Notice string
}

// Model is the bubbletea model for the review screen.
type Model struct {
	files   model.Changeset
	session *model.ReviewSession
	store   *store.Store
	backend vcs.Backend
	cfg     *config.Config
	log     zerolog.Logger

	nav    *nav.Navigator
	lay    *layout
	styles styleSet

	mode  mode
	focus focusArea

	width  int
	height int

	commandInput   textinput.Model
	commentInput   textarea.Model
	commentTypeIdx int
	target         commentTarget

	dirty    bool
	message  string
	msgIsErr bool
	quitting bool
}

// New creates the review screen model.
func New(opts Options) Model {
	lay := &layout{commentWrap: 60}

	heightFn := func(c model.Comment) int {
		return len(wrapComment(c, lay.commentWrap))
	}
	navigator := nav.New(opts.Files, opts.Session, heightFn)
	if opts.Config != nil && opts.Config.SideBySide {
		navigator.SetSideBySide(true)
	}

	cmd := textinput.New()
	cmd.Prompt = ":"
	cmd.CharLimit = 128

	ta := textarea.New()
	ta.Placeholder = "Write a comment. ctrl+s saves, esc cancels."
	ta.SetHeight(4)
	ta.ShowLineNumbers = false

	return Model{
		files:        opts.Files,
		session:      opts.Session,
		store:        opts.Store,
		backend:      opts.Backend,
		cfg:          opts.Config,
		log:          opts.Logger.With().Str("component", "tui").Logger(),
		nav:          navigator,
		lay:          lay,
		styles:       newStyles(defaultPalette),
		focus:        focusDiff,
		commandInput: cmd,
		commentInput: ta,
		message:      opts.Notice,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// wrapComment renders a comment's display lines at the given width. The
// first line carries the type tag; the navigator uses the line count as the
// comment's row height, so view and row math always agree.
func wrapComment(c model.Comment, width int) []string {
	if width < 10 {
		width = 10
	}
	text := "[" + string(c.Type) + "] " + c.Content
	return strings.Split(wordwrap.String(text, width), "\n")
}

func (m *Model) setMessage(s string) {
	m.message = s
	m.msgIsErr = false
}

func (m *Model) setError(err error) {
	m.message = err.Error()
	m.msgIsErr = true
	m.log.Error().Err(err).Msg("review screen error")
}

// currentFile returns the file under the navigator's current position, or
// nil on an empty changeset.
func (m *Model) currentFile() *model.DiffFile {
	if len(m.files) == 0 {
		return nil
	}
	idx := m.nav.CurrentFile
	if idx < 0 || idx >= len(m.files) {
		return nil
	}
	return &m.files[idx]
}

// selectedFile returns the file-list selection target.
func (m *Model) selectedFile() *model.DiffFile {
	if len(m.files) == 0 {
		return nil
	}
	idx := m.nav.Selected
	if idx < 0 || idx >= len(m.files) {
		return nil
	}
	return &m.files[idx]
}
