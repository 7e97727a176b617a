package views

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Cell is one card of a grid
type Cell struct {
	Sequence string
	Label    string // collection title or artist
	Title    string // item title, empty for collections
	Empty    bool
	Focused  bool
}

// GridRenderer lays cards out in rows
type GridRenderer struct {
	styles *Styles
}

// NewGridRenderer creates a grid renderer
func NewGridRenderer(styles *Styles) *GridRenderer {
	return &GridRenderer{styles: styles}
}

const (
	minCardWidth = 14
	cardChrome   = 4 // border and padding
)

// CardWidth returns the inner width of a card for cols columns
func CardWidth(total, cols int) int {
	if cols < 1 {
		cols = 1
	}
	w := total/cols - cardChrome
	if w < minCardWidth {
		w = minCardWidth
	}
	return w
}

// Render draws cells row by row, cols per row
func (g *GridRenderer) Render(cells []Cell, cols, width int) string {
	if cols < 1 {
		cols = 1
	}
	inner := CardWidth(width, cols)

	var rows []string
	for start := 0; start < len(cells); start += cols {
		end := start + cols
		if end > len(cells) {
			end = len(cells)
		}
		cards := make([]string, 0, cols)
		for _, c := range cells[start:end] {
			cards = append(cards, g.card(c, inner))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (g *GridRenderer) card(c Cell, width int) string {
	style := g.styles.Card
	switch {
	case c.Empty:
		style = g.styles.CardEmpty
	case c.Focused:
		style = g.styles.CardFocused
	}
	style = style.Width(width)

	if c.Empty {
		return style.Render("\n\n")
	}

	// Width includes the padding
	text := width - style.GetHorizontalPadding()
	seq := g.styles.Sequence.Render(truncate(c.Sequence, text))
	label := g.styles.Artist.Render(truncate(c.Label, text))
	title := truncate(c.Title, text)
	return style.Render(fmt.Sprintf("%s\n%s\n%s", seq, label, title))
}

// truncate shortens s to at most n cells, marking the cut with an ellipsis
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > n {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
