// Package highlight turns source lines into colored segments for display.
// It sits behind the parser's Highlighter interface so parsing never depends
// on a syntax library.
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/revtui/revtui/internal/core/model"
)

// Noop leaves every line as a single uncolored segment.
type Noop struct{}

// HighlightLines returns one plain segment per line.
func (Noop) HighlightLines(path string, lines []string) [][]model.Segment {
	out := make([][]model.Segment, len(lines))
	for i, line := range lines {
		out[i] = []model.Segment{{Text: line}}
	}
	return out
}

// Chroma highlights lines with the chroma lexer matched to the file path.
type Chroma struct {
	style *chroma.Style
}

// New creates a Chroma highlighter using the named style, falling back to
// the library default when the name is unknown.
func New(styleName string) *Chroma {
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	return &Chroma{style: style}
}

// HighlightLines tokenizes the lines as one block so multi-line constructs
// keep their coloring, then splits tokens back onto per-line segments. A
// file with no matching lexer comes back as plain segments.
func (h *Chroma) HighlightLines(path string, lines []string) [][]model.Segment {
	lexer := lexers.Match(path)
	if lexer == nil {
		return Noop{}.HighlightLines(path, lines)
	}
	lexer = chroma.Coalesce(lexer)

	content := strings.Join(lines, "\n")
	iterator, err := lexer.Tokenise(nil, content)
	if err != nil {
		return Noop{}.HighlightLines(path, lines)
	}

	out := make([][]model.Segment, len(lines))
	row := 0
	for _, token := range iterator.Tokens() {
		color := h.tokenColor(token.Type)
		parts := strings.Split(token.Value, "\n")
		for pi, part := range parts {
			if pi > 0 {
				row++
			}
			if row >= len(lines) {
				break
			}
			if part == "" {
				continue
			}
			out[row] = append(out[row], model.Segment{Text: part, Color: color})
		}
	}

	// Tokenization can drop trailing empty lines; keep row counts aligned.
	for i := range out {
		if out[i] == nil {
			out[i] = []model.Segment{{Text: lines[i]}}
		}
	}
	return out
}

func (h *Chroma) tokenColor(tt chroma.TokenType) string {
	entry := h.style.Get(tt)
	if !entry.Colour.IsSet() {
		return ""
	}
	return entry.Colour.String()
}
