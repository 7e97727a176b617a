package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title          lipgloss.Style
	Breadcrumb     lipgloss.Style
	Dim            lipgloss.Style
	Status         lipgloss.Style
	Help           lipgloss.Style
	Main           lipgloss.Style
	Card           lipgloss.Style
	CardFocused    lipgloss.Style
	CardEmpty      lipgloss.Style
	Back           lipgloss.Style
	BackFocused    lipgloss.Style
	Sequence       lipgloss.Style
	Artist         lipgloss.Style
	Prompt         lipgloss.Style
	SlideCounter   lipgloss.Style
	StatusError    lipgloss.Style
	StatusWarning  lipgloss.Style
	StatusSuccess  lipgloss.Style
	DeviceActive   lipgloss.Style
	DeviceInactive lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("241")).
		Padding(0, 1)

	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Breadcrumb: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Dim:        lipgloss.NewStyle().Faint(true),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		Help: lipgloss.NewStyle().Faint(true),
		Main: lipgloss.NewStyle().
			Padding(1, 2),
		Card:        card,
		CardFocused: card.BorderForeground(lipgloss.Color("226")).Bold(true),
		CardEmpty:   card.BorderForeground(lipgloss.Color("236")).Faint(true),
		Back: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 2),
		BackFocused: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("226")).
			Bold(true).
			Padding(0, 2),
		Sequence:       lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Artist:         lipgloss.NewStyle().Foreground(lipgloss.Color("39")),  // blue
		Prompt:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")),
		SlideCounter:   lipgloss.NewStyle().Foreground(lipgloss.Color("51")), // cyan
		StatusError:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusWarning:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		StatusSuccess:  lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
		DeviceActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		DeviceInactive: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// StatusStyle picks the style for a status message of the given level
func (s *Styles) StatusStyle(level StatusLevel) lipgloss.Style {
	switch level {
	case StatusError:
		return s.StatusError
	case StatusWarning:
		return s.StatusWarning
	case StatusSuccess:
		return s.StatusSuccess
	default:
		return s.Status
	}
}
