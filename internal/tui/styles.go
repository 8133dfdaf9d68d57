package tui

import "github.com/charmbracelet/lipgloss"

// Palette groups the colors the review screen uses. Kept as one struct so a
// future theme option only has to swap this out.
type Palette struct {
	Primary    lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

var defaultPalette = Palette{
	Primary:    lipgloss.Color("#7aa2f7"),
	Foreground: lipgloss.Color("#c0caf5"),
	Muted:      lipgloss.Color("#565f89"),
	Surface:    lipgloss.Color("#3b4261"),
	Success:    lipgloss.Color("#9ece6a"),
	Warning:    lipgloss.Color("#e0af68"),
	Error:      lipgloss.Color("#f7768e"),
}

type styleSet struct {
	fileHeader     lipgloss.Style
	fileHeaderDone lipgloss.Style
	hunkHeader     lipgloss.Style
	addition       lipgloss.Style
	deletion       lipgloss.Style
	lineno         lipgloss.Style
	muted          lipgloss.Style
	comment        lipgloss.Style
	commentType    lipgloss.Style
	cursor         lipgloss.Style
	selected       lipgloss.Style
	statusBar      lipgloss.Style
	statusMessage  lipgloss.Style
	statusError    lipgloss.Style
	listTitle      lipgloss.Style
	help           lipgloss.Style
}

func newStyles(p Palette) styleSet {
	return styleSet{
		fileHeader:     lipgloss.NewStyle().Bold(true).Foreground(p.Primary),
		fileHeaderDone: lipgloss.NewStyle().Bold(true).Foreground(p.Success),
		hunkHeader:     lipgloss.NewStyle().Foreground(p.Muted),
		addition:       lipgloss.NewStyle().Foreground(p.Success),
		deletion:       lipgloss.NewStyle().Foreground(p.Error),
		lineno:         lipgloss.NewStyle().Foreground(p.Muted),
		muted:          lipgloss.NewStyle().Foreground(p.Muted),
		comment:        lipgloss.NewStyle().Foreground(p.Warning),
		commentType:    lipgloss.NewStyle().Bold(true).Foreground(p.Warning),
		cursor:         lipgloss.NewStyle().Background(p.Surface),
		selected:       lipgloss.NewStyle().Bold(true).Foreground(p.Primary).Background(p.Surface),
		statusBar:      lipgloss.NewStyle().Foreground(p.Foreground).Background(p.Surface),
		statusMessage:  lipgloss.NewStyle().Foreground(p.Success),
		statusError:    lipgloss.NewStyle().Foreground(p.Error),
		listTitle:      lipgloss.NewStyle().Bold(true).Foreground(p.Foreground),
		help:           lipgloss.NewStyle().Foreground(p.Muted),
	}
}
