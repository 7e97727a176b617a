package navigation

// Screen is one of the three navigation levels
type Screen int

const (
	ScreenCollections Screen = iota
	ScreenItems
	ScreenPresentation
)

func (s Screen) String() string {
	switch s {
	case ScreenCollections:
		return "collections"
	case ScreenItems:
		return "items"
	case ScreenPresentation:
		return "presentation"
	default:
		return "unknown"
	}
}

// State is the complete navigation state.
//
// Collection is meaningful on every screen, Item on the items and
// presentation screens, Slide only while presenting. BackFocused is only
// ever set on the items screen.
type State struct {
	Screen      Screen
	Collection  int
	Item        int
	Slide       int
	BackFocused bool
}
