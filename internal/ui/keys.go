package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"pedalprompt/internal/input"
)

type keyMap struct {
	Previous key.Binding
	Select   key.Binding
	Next     key.Binding
	Back     key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Previous: key.NewBinding(key.WithKeys("1", "left", "a"), key.WithHelp("1/←", "previous")),
		Select:   key.NewBinding(key.WithKeys("2", "enter", " ", "b"), key.WithHelp("2/enter", "select")),
		Next:     key.NewBinding(key.WithKeys("3", "right", "c"), key.WithHelp("3/→", "next")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Previous, k.Select, k.Next, k.Back, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Previous, k.Select, k.Next, k.Back},
		{k.Reload, k.Help, k.Quit},
	}
}

// terminalCodes translates terminal keys to the Linux key codes the
// terminal keymap understands
var terminalCodes = map[string]uint16{
	"1":     input.Key1,
	"2":     input.Key2,
	"3":     input.Key3,
	"left":  input.KeyLeft,
	"right": input.KeyRight,
	"enter": input.KeyEnter,
	" ":     input.KeySpace,
	"esc":   input.KeyEsc,
	"a":     input.KeyA,
	"b":     input.KeyB,
	"c":     input.KeyC,
}

// TerminalCode returns the key code for a terminal key press
func TerminalCode(msg tea.KeyMsg) (uint16, bool) {
	code, ok := terminalCodes[msg.String()]
	return code, ok
}
