package ui

import (
	"fmt"
	"log"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"pedalprompt/internal/eventbus"
	"pedalprompt/internal/input"
	"pedalprompt/internal/library"
	"pedalprompt/internal/navigation"
	"pedalprompt/internal/ui/views"
)

// Model is the bubbletea front end. It renders the navigation engine and
// feeds terminal keys into the input pipeline; it never moves focus itself.
type Model struct {
	bus      eventbus.EventBus
	engine   *navigation.Engine
	terminal *input.VirtualSource
	reload   func()

	renderer     *views.Renderer
	helpRenderer *HelpRenderer
	helpOps      *HelpOps
	keys         keyMap
	help         help.Model

	width   int
	height  int
	status  string
	level   views.StatusLevel
	devices []views.Device

	program *tea.Program
}

// Option configures a Model
type Option func(*Model)

// WithTerminal routes terminal key presses into src, which the input fuser
// reads like any other device
func WithTerminal(src *input.VirtualSource) Option {
	return func(m *Model) {
		m.terminal = src
	}
}

// WithReload sets the function run when a reload is requested from the
// keyboard. It runs off the UI loop.
func WithReload(fn func()) Option {
	return func(m *Model) {
		m.reload = fn
	}
}

// NewModel creates the UI model around engine
func NewModel(bus eventbus.EventBus, engine *navigation.Engine, opts ...Option) *Model {
	if bus == nil {
		bus = eventbus.NullBus{}
	}
	m := &Model{
		bus:          bus,
		engine:       engine,
		renderer:     views.NewRenderer(),
		helpRenderer: NewHelpRenderer(),
		keys:         newKeyMap(),
		help:         help.New(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.helpOps = NewHelpOps(p)
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case InputMsg:
		m.engine.Handle(msg.Event)
		if m.engine.QuitRequested() {
			return m, tea.Quit
		}
		return m, nil

	case LibraryMsg:
		if msg.Err != nil {
			log.Printf("Reload failed: %v", msg.Err)
			m.setStatus(views.StatusError, fmt.Sprintf("Reload failed: %v", msg.Err))
			return m, nil
		}
		m.engine.Rebuild(msg.Library)
		m.setStatus(views.StatusSuccess, library.Summary(msg.Library))
		return m, nil

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, nil

	case helpPagerMsg:
		if msg.err != nil {
			log.Printf("Help pager failed: %v", msg.err)
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		if m.helpOps == nil {
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		content := m.helpRenderer.RenderHelpContent(m.engine.Library())
		ops := m.helpOps
		return m, func() tea.Msg {
			return helpPagerMsg{err: ops.ShowHelpInPager(content)}
		}

	case key.Matches(msg, m.keys.Reload):
		if m.reload == nil {
			return m, nil
		}
		m.setStatus(views.StatusInfo, "Reloading library...")
		reload := m.reload
		return m, func() tea.Msg {
			reload()
			return nil
		}
	}

	code, ok := TerminalCode(msg)
	if !ok || m.terminal == nil {
		return m, nil
	}
	m.terminal.Press(code)
	return m, nil
}

func (m *Model) handleEvent(e eventbus.DomainEvent) {
	switch ev := e.(type) {
	case eventbus.DeviceAttachedEvent:
		m.setDevice(ev.Name, true)
		if ev.Path != "" {
			m.setStatus(views.StatusSuccess, fmt.Sprintf("Listening to %s (%s)", ev.Name, ev.Path))
		}

	case eventbus.DeviceLostEvent:
		m.setDevice(ev.Name, false)
		m.setStatus(views.StatusWarning, fmt.Sprintf("Lost %s: %v", ev.Name, ev.Err))

	case eventbus.ConversionFailedEvent:
		m.setStatus(views.StatusError, fmt.Sprintf("Could not render %s", ev.DeckPath))

	case eventbus.EntrySkippedEvent:
		m.setStatus(views.StatusWarning, fmt.Sprintf("Skipped %s", ev.Path))

	case eventbus.LibraryChangedEvent:
		m.setStatus(views.StatusInfo, "Library changed, reloading...")

	case eventbus.ErrorEvent:
		m.setStatus(views.StatusError, ev.Message)
	}
}

func (m *Model) setStatus(level views.StatusLevel, text string) {
	m.level = level
	m.status = text
}

func (m *Model) setDevice(name string, active bool) {
	for i := range m.devices {
		if m.devices[i].Name == name {
			m.devices[i].Active = active
			return
		}
	}
	m.devices = append(m.devices, views.Device{Name: name, Active: active})
}

// View renders the current screen
func (m *Model) View() string {
	return m.renderer.Render(m.buildViewState())
}

func (m *Model) buildViewState() views.ViewState {
	lib := m.engine.Library()
	st := m.engine.State()

	vs := views.ViewState{
		Width:       m.width,
		Height:      m.height,
		Screen:      st.Screen.String(),
		Status:      m.status,
		StatusLevel: m.level,
		Devices:     m.devices,
		HelpView:    m.help.View(m.keys),
		Empty:       lib.IsEmpty(),
	}
	if lib != nil {
		vs.Root = lib.Root
	}

	switch st.Screen {
	case navigation.ScreenCollections:
		if lib == nil {
			break
		}
		vs.Cols = lib.Cols
		for i, c := range lib.Collections {
			vs.Cells = append(vs.Cells, views.Cell{
				Sequence: c.Sequence,
				Label:    c.Title,
				Focused:  i == st.Collection,
			})
		}
		for len(vs.Cells) < lib.Rows*lib.Cols {
			vs.Cells = append(vs.Cells, views.Cell{Empty: true})
		}

	case navigation.ScreenItems:
		col := m.engine.Collection()
		if col == nil {
			break
		}
		vs.Breadcrumb = []string{col.Title}
		vs.Cols = col.Cols
		vs.BackFocused = st.BackFocused
		for i, it := range col.Items {
			if it.IsPlaceholder {
				vs.Cells = append(vs.Cells, views.Cell{Empty: true})
				continue
			}
			vs.Cells = append(vs.Cells, views.Cell{
				Sequence: it.Sequence,
				Label:    it.Artist,
				Title:    it.Title,
				Focused:  !st.BackFocused && i == st.Item,
			})
		}

	case navigation.ScreenPresentation:
		col := m.engine.Collection()
		item := m.engine.Item()
		if col == nil || item == nil {
			break
		}
		vs.Breadcrumb = []string{col.Title, item.Title}
		vs.SlideIndex = st.Slide
		vs.SlideCount = item.SlideCount()
		vs.Image = m.engine.Image()
		vs.Prompt = m.engine.Prompt()
	}

	return vs
}
