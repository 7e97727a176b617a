package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"

	"pedalprompt/internal/domain"
)

var errNoProgram = errors.New("program not set")

// HelpRenderer handles help content rendering
type HelpRenderer struct {
	title   lipgloss.Style
	section lipgloss.Style
	key     lipgloss.Style
	desc    lipgloss.Style
	dim     lipgloss.Style
	failure lipgloss.Style
}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer() *HelpRenderer {
	return &HelpRenderer{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).MarginBottom(1),
		section: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginTop(1),
		key:     lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		desc:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// RenderHelpContent produces the pager text: controls for every screen
// followed by what was loaded from the library
func (r *HelpRenderer) RenderHelpContent(lib *domain.Library) string {
	var b strings.Builder

	b.WriteString(r.title.Render("pedalprompt Help"))
	b.WriteString("\n")

	b.WriteString(r.section.Render("Buttons"))
	b.WriteString("\n")
	r.line(&b, "A", "left pedal, 1, ←")
	r.line(&b, "B", "middle pedal, 2, Enter, Space")
	r.line(&b, "C", "right pedal, 3, →")
	r.line(&b, "Cancel", "Esc")
	b.WriteString("\n")

	b.WriteString(r.section.Render("Collections"))
	b.WriteString("\n")
	r.line(&b, "A / C", "previous / next collection, wrapping around")
	r.line(&b, "B", "open the collection")
	r.line(&b, "Cancel", "quit")
	b.WriteString("\n")

	b.WriteString(r.section.Render("Items"))
	b.WriteString("\n")
	r.line(&b, "A / C", "previous / next item, passing through Back")
	r.line(&b, "B", "present the item, or go back when Back is focused")
	r.line(&b, "Cancel", "back to collections")
	b.WriteString("\n")

	b.WriteString(r.section.Render("Presentation"))
	b.WriteString("\n")
	r.line(&b, "A / C", "previous / next slide, continuing into the neighbouring item")
	r.line(&b, "B, Cancel", "back to items")
	b.WriteString("\n")

	b.WriteString(r.section.Render("Other"))
	b.WriteString("\n")
	r.line(&b, "r", "reload the library")
	r.line(&b, "?", "this help")
	r.line(&b, "Ctrl+C", "quit")

	b.WriteString(r.section.Render("Library"))
	b.WriteString("\n")
	b.WriteString(r.renderLibrary(lib))

	return b.String()
}

func (r *HelpRenderer) line(b *strings.Builder, keys, desc string) {
	fmt.Fprintf(b, "  %-12s %s\n", r.key.Render(keys), r.desc.Render(desc))
}

func (r *HelpRenderer) renderLibrary(lib *domain.Library) string {
	if lib == nil {
		return r.dim.Render("  nothing loaded") + "\n"
	}

	var b strings.Builder
	b.WriteString(r.dim.Render("  " + lib.Root))
	b.WriteString("\n")

	for _, c := range lib.Collections {
		fmt.Fprintf(&b, "  %s %s\n", r.key.Render(c.Sequence), r.desc.Render(c.Title))
		for i := 0; i < c.RealCount(); i++ {
			it := c.Item(i)
			fmt.Fprintf(&b, "      %s %s - %s %s\n",
				r.key.Render(it.Sequence), it.Artist, it.Title,
				r.dim.Render(fmt.Sprintf("(%d slides)", it.SlideCount())))
		}
		if c.RealCount() == 0 {
			b.WriteString(r.dim.Render("      (empty)"))
			b.WriteString("\n")
		}
	}

	if len(lib.Failures) > 0 {
		b.WriteString("\n")
		b.WriteString(r.failure.Render("  Not loaded"))
		b.WriteString("\n")
		for _, f := range lib.Failures {
			fmt.Fprintf(&b, "    %s: %v\n", f.Path, f.Err)
		}
	}
	return b.String()
}

// HelpOps shows help in the ov pager
type HelpOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewHelpOps creates a new help operations instance
func NewHelpOps(program *tea.Program) *HelpOps {
	return &HelpOps{program: program}
}

// ShowHelpInPager hands the terminal to ov until the pager exits
func (h *HelpOps) ShowHelpInPager(content string) error {
	if h.program == nil {
		return errNoProgram
	}

	if err := h.program.ReleaseTerminal(); err != nil {
		return err
	}
	defer func() {
		// Let ov finish resetting the terminal first
		time.Sleep(100 * time.Millisecond)
		_ = h.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
