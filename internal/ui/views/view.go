package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Screen names as rendered; they match navigation.Screen.String
const (
	ScreenCollections  = "collections"
	ScreenItems        = "items"
	ScreenPresentation = "presentation"
)

// StatusLevel colours the status line
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusSuccess
	StatusWarning
	StatusError
)

// Device is an input source shown in the title bar
type Device struct {
	Name   string
	Active bool
}

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width       int
	Height      int
	Screen      string
	Breadcrumb  []string
	Cells       []Cell
	Cols        int
	BackFocused bool
	Empty       bool
	Root        string
	SlideIndex  int
	SlideCount  int
	Image       string
	Prompt      []string
	Status      string
	StatusLevel StatusLevel
	Devices     []Device
	HelpView    string
}

// Renderer handles all view rendering
type Renderer struct {
	styles *Styles
	grid   *GridRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles: styles,
		grid:   NewGridRenderer(styles),
	}
}

// Styles returns the renderer's styles
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	width := state.Width
	if width <= 0 {
		width = 80 // Default terminal width
	}
	inner := width - 4 // Account for main container padding

	content := &strings.Builder{}
	content.WriteString(r.titleLine(state, inner))
	content.WriteString("\n")

	if len(state.Breadcrumb) > 0 {
		content.WriteString(r.styles.Breadcrumb.Render(strings.Join(state.Breadcrumb, " › ")))
		content.WriteString("\n\n")
	} else {
		content.WriteString("\n")
	}

	switch state.Screen {
	case ScreenPresentation:
		content.WriteString(r.renderPresentation(state, inner))
	case ScreenItems:
		content.WriteString(r.renderItems(state, inner))
	default:
		content.WriteString(r.renderCollections(state, inner))
	}

	if state.Status != "" {
		content.WriteString("\n")
		content.WriteString(r.styles.StatusStyle(state.StatusLevel).MarginTop(1).Render(state.Status))
	}
	if state.HelpView != "" {
		content.WriteString("\n\n")
		content.WriteString(r.styles.Help.Render(state.HelpView))
	}

	return r.styles.Main.Render(content.String())
}

func (r *Renderer) titleLine(state ViewState, width int) string {
	logo := r.styles.Title.Render("pedalprompt")
	if len(state.Devices) == 0 {
		return logo
	}

	names := make([]string, 0, len(state.Devices))
	for _, d := range state.Devices {
		if d.Active {
			names = append(names, r.styles.DeviceActive.Render("● "+d.Name))
		} else {
			names = append(names, r.styles.DeviceInactive.Render("○ "+d.Name))
		}
	}
	right := strings.Join(names, "  ")

	padding := width - lipgloss.Width(logo) - lipgloss.Width(right)
	if padding < 2 {
		padding = 2
	}
	return logo + strings.Repeat(" ", padding) + right
}

func (r *Renderer) renderCollections(state ViewState, width int) string {
	if state.Empty {
		msg := "No collections found"
		if state.Root != "" {
			msg = fmt.Sprintf("No collections found in %s", state.Root)
		}
		return r.styles.Dim.Render(msg + "\nAdd folders named like 1-Choir holding decks named like 1-Bach-Ave.pptx")
	}
	return r.grid.Render(state.Cells, state.Cols, width)
}

func (r *Renderer) renderItems(state ViewState, width int) string {
	back := r.styles.Back
	if state.BackFocused {
		back = r.styles.BackFocused
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		back.Render("← Back"),
		r.grid.Render(state.Cells, state.Cols, width),
	)
}

func (r *Renderer) renderPresentation(state ViewState, width int) string {
	var b strings.Builder

	b.WriteString(r.styles.SlideCounter.Render(fmt.Sprintf("Slide %d/%d", state.SlideIndex+1, state.SlideCount)))
	b.WriteString("\n")
	if state.Image != "" {
		b.WriteString(r.styles.Dim.Render(truncate(state.Image, width)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(state.Prompt) == 0 {
		b.WriteString(r.styles.Dim.Render("(no text on this slide)"))
		return b.String()
	}

	prompt := r.styles.Prompt.Width(width).Align(lipgloss.Center)
	for _, line := range state.Prompt {
		b.WriteString(prompt.Render(line))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
