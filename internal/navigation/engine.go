// Package navigation is the state machine behind the three screens:
// collections, the items of one collection, and the slides of one item.
package navigation

import (
	"log"

	"pedalprompt/internal/domain"
	"pedalprompt/internal/eventbus"
	"pedalprompt/internal/input"
)

type action func(e *Engine)

// Engine owns the navigation state. It is not safe for concurrent use: the
// control loop is its only caller.
type Engine struct {
	lib   *domain.Library
	bus   eventbus.EventBus
	state State
	quit  bool

	// item focused when the presentation was entered
	entered int

	table map[Screen]map[input.Button]action
}

// NewEngine creates an engine at the collections screen
func NewEngine(lib *domain.Library, bus eventbus.EventBus) *Engine {
	if bus == nil {
		bus = eventbus.NullBus{}
	}
	e := &Engine{lib: lib, bus: bus}
	e.table = map[Screen]map[input.Button]action{
		ScreenCollections: {
			input.ButtonA:      (*Engine).previousCollection,
			input.ButtonC:      (*Engine).nextCollection,
			input.ButtonB:      (*Engine).enterCollection,
			input.ButtonCancel: (*Engine).requestQuit,
		},
		ScreenItems: {
			input.ButtonA:      (*Engine).previousItem,
			input.ButtonC:      (*Engine).nextItem,
			input.ButtonB:      (*Engine).selectItem,
			input.ButtonCancel: (*Engine).leaveCollection,
		},
		ScreenPresentation: {
			input.ButtonA:      (*Engine).previousSlide,
			input.ButtonC:      (*Engine).nextSlide,
			input.ButtonB:      (*Engine).leavePresentation,
			input.ButtonCancel: (*Engine).leavePresentation,
		},
	}
	return e
}

// Handle applies one logical event. Up events are observed but do
// nothing. It reports whether the state changed or quit was requested.
func (e *Engine) Handle(ev input.Event) bool {
	if !ev.Phase.Active() {
		return false
	}
	act, ok := e.table[e.state.Screen][ev.Button]
	if !ok {
		return false
	}

	before, quit := e.state, e.quit
	act(e)
	return e.state != before || e.quit != quit
}

// State returns a copy of the current state
func (e *Engine) State() State {
	return e.state
}

// Library returns the library being navigated
func (e *Engine) Library() *domain.Library {
	return e.lib
}

// QuitRequested reports whether cancel was pressed on the collections screen
func (e *Engine) QuitRequested() bool {
	return e.quit
}

// Collection returns the focused collection, or nil for an empty library
func (e *Engine) Collection() *domain.Collection {
	return e.lib.Collection(e.state.Collection)
}

// Item returns the focused real item, or nil when none is focused
func (e *Engine) Item() *domain.Item {
	if e.state.Screen == ScreenCollections || e.state.BackFocused {
		return nil
	}
	col := e.Collection()
	if col == nil {
		return nil
	}
	return col.Item(e.state.Item)
}

// Image returns the image of the presented slide, or ""
func (e *Engine) Image() string {
	item := e.Item()
	if e.state.Screen != ScreenPresentation || item == nil || e.state.Slide >= item.SlideCount() {
		return ""
	}
	return item.Images[e.state.Slide]
}

// Prompt returns the text runs of the presented slide
func (e *Engine) Prompt() []string {
	item := e.Item()
	if e.state.Screen != ScreenPresentation || item == nil || e.state.Slide >= len(item.Prompt) {
		return nil
	}
	return item.Prompt[e.state.Slide]
}

// Rebuild swaps in a freshly loaded library, keeping the screen and focus
// where they still make sense. Focus follows the collection key and deck
// path first, then falls back to the old index clamped to the new library.
func (e *Engine) Rebuild(lib *domain.Library) {
	prevCol := e.Collection()
	prevItem := e.Item()
	var prevEntered *domain.Item
	if e.state.Screen == ScreenPresentation && prevCol != nil {
		prevEntered = prevCol.Item(e.entered)
	}

	e.lib = lib
	s := e.state

	if lib.Len() == 0 {
		e.setState(State{Screen: ScreenCollections})
		return
	}
	sameCollection := false
	if prevCol != nil {
		if i := collectionIndex(lib, prevCol.Key); i >= 0 {
			s.Collection = i
			sameCollection = true
		}
	}
	if s.Collection >= lib.Len() {
		s.Collection = lib.Len() - 1
	}
	if s.Screen == ScreenCollections {
		e.setState(State{Screen: ScreenCollections, Collection: s.Collection})
		return
	}

	col := lib.Collection(s.Collection)
	if col.RealCount() == 0 {
		e.setState(State{Screen: ScreenItems, Collection: s.Collection, BackFocused: true})
		return
	}
	if sameCollection {
		if i := itemIndex(col, prevItem); i >= 0 {
			s.Item = i
		}
		if i := itemIndex(col, prevEntered); i >= 0 {
			e.entered = i
		}
	}
	if s.Item >= col.RealCount() {
		s.Item = col.RealCount() - 1
	}
	if s.Screen == ScreenItems {
		e.setState(State{Screen: ScreenItems, Collection: s.Collection, Item: s.Item, BackFocused: s.BackFocused})
		return
	}

	if e.entered >= col.RealCount() {
		e.entered = col.RealCount() - 1
	}
	item := col.Item(s.Item)
	if s.Slide >= item.SlideCount() {
		s.Slide = lastSlide(item)
	}
	e.setState(State{Screen: ScreenPresentation, Collection: s.Collection, Item: s.Item, Slide: s.Slide})
}

func collectionIndex(lib *domain.Library, key string) int {
	for i, c := range lib.Collections {
		if c.Key == key {
			return i
		}
	}
	return -1
}

// itemIndex finds the real item rendered from the same deck as item
func itemIndex(col *domain.Collection, item *domain.Item) int {
	if item == nil || item.DeckPath == "" {
		return -1
	}
	for i := 0; i < col.RealCount(); i++ {
		if col.Item(i).DeckPath == item.DeckPath {
			return i
		}
	}
	return -1
}

// setState replaces the state and announces what changed
func (e *Engine) setState(next State) {
	prev := e.state
	e.state = next

	if prev.Screen != next.Screen {
		e.bus.Publish(eventbus.ScreenChangedEvent{From: prev.Screen.String(), To: next.Screen.String()})
	}

	switch next.Screen {
	case ScreenCollections:
		if prev.Collection != next.Collection || prev.Screen != next.Screen {
			e.bus.Publish(eventbus.FocusChangedEvent{
				Screen:   next.Screen.String(),
				OldIndex: prev.Collection,
				NewIndex: next.Collection,
			})
		}
	case ScreenItems:
		if prev.Item != next.Item || prev.BackFocused != next.BackFocused || prev.Screen != next.Screen {
			e.bus.Publish(eventbus.FocusChangedEvent{
				Screen:      next.Screen.String(),
				OldIndex:    prev.Item,
				NewIndex:    next.Item,
				BackFocused: next.BackFocused,
			})
		}
	case ScreenPresentation:
		if prev != next {
			e.bus.Publish(eventbus.SlideChangedEvent{
				Collection: next.Collection,
				Item:       next.Item,
				Slide:      next.Slide,
				Image:      e.Image(),
			})
		}
	}
}

// Collections screen

func (e *Engine) previousCollection() {
	n := e.lib.Len()
	if n == 0 {
		return
	}
	e.setState(State{Screen: ScreenCollections, Collection: wrap(e.state.Collection-1, n)})
}

func (e *Engine) nextCollection() {
	n := e.lib.Len()
	if n == 0 {
		return
	}
	e.setState(State{Screen: ScreenCollections, Collection: wrap(e.state.Collection+1, n)})
}

func (e *Engine) enterCollection() {
	col := e.Collection()
	if col == nil {
		return
	}
	next := State{Screen: ScreenItems, Collection: e.state.Collection}
	if col.RealCount() == 0 {
		next.BackFocused = true
	}
	e.setState(next)
}

func (e *Engine) requestQuit() {
	if e.quit {
		return
	}
	log.Printf("Quit requested")
	e.quit = true
	e.bus.Publish(eventbus.QuitRequestedEvent{})
}

// Items screen. The back button sits before the first and after the last
// real item; placeholders are never focused.

func (e *Engine) previousItem() {
	count := e.Collection().RealCount()
	next := e.state

	switch {
	case count == 0:
		next.BackFocused = true
	case next.BackFocused:
		next.BackFocused = false
		next.Item = count - 1
	case next.Item-1 < 0:
		next.BackFocused = true
	default:
		next.Item--
	}
	e.setState(next)
}

func (e *Engine) nextItem() {
	count := e.Collection().RealCount()
	next := e.state

	switch {
	case count == 0:
		next.BackFocused = true
	case next.BackFocused:
		next.BackFocused = false
		next.Item = 0
	case next.Item+1 >= count:
		next.BackFocused = true
	default:
		next.Item++
	}
	e.setState(next)
}

func (e *Engine) selectItem() {
	if e.state.BackFocused {
		e.leaveCollection()
		return
	}
	item := e.Item()
	if item == nil || item.SlideCount() == 0 {
		return
	}
	e.entered = e.state.Item
	e.setState(State{
		Screen:     ScreenPresentation,
		Collection: e.state.Collection,
		Item:       e.state.Item,
	})
}

// leaveCollection keeps the collection focus and forgets the item focus
func (e *Engine) leaveCollection() {
	e.setState(State{Screen: ScreenCollections, Collection: e.state.Collection})
}

// Presentation screen. Stepping past either end of an item moves to the
// neighbouring real item, wrapping around the collection.

func (e *Engine) previousSlide() {
	next := e.state
	if next.Slide > 0 {
		next.Slide--
		e.setState(next)
		return
	}

	col := e.Collection()
	next.Item = wrap(next.Item-1, col.RealCount())
	next.Slide = lastSlide(col.Item(next.Item))
	e.setState(next)
}

func (e *Engine) nextSlide() {
	next := e.state
	if next.Slide+1 < e.Item().SlideCount() {
		next.Slide++
		e.setState(next)
		return
	}

	col := e.Collection()
	next.Item = wrap(next.Item+1, col.RealCount())
	next.Slide = 0
	e.setState(next)
}

// leavePresentation returns to the items screen with the item that was
// focused on entry, even if slides moved on to later items
func (e *Engine) leavePresentation() {
	item := e.entered
	if n := e.Collection().RealCount(); item >= n {
		item = n - 1
	}
	e.setState(State{
		Screen:     ScreenItems,
		Collection: e.state.Collection,
		Item:       item,
	})
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}

func lastSlide(item *domain.Item) int {
	if item == nil || item.SlideCount() == 0 {
		return 0
	}
	return item.SlideCount() - 1
}
