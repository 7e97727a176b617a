package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventLibraryLoaded    EventType = "LibraryLoaded"
	EventLibraryChanged   EventType = "LibraryChanged"
	EventEntrySkipped     EventType = "EntrySkipped"
	EventDeckConverted    EventType = "DeckConverted"
	EventConversionFailed EventType = "ConversionFailed"
	EventDeviceAttached   EventType = "DeviceAttached"
	EventDeviceLost       EventType = "DeviceLost"
	EventScreenChanged    EventType = "ScreenChanged"
	EventFocusChanged     EventType = "FocusChanged"
	EventSlideChanged     EventType = "SlideChanged"
	EventQuitRequested    EventType = "QuitRequested"
	EventError            EventType = "Error"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// LibraryLoadedEvent is emitted when a library load completes
type LibraryLoadedEvent struct {
	Library *Library
}

func (e LibraryLoadedEvent) Type() EventType { return EventLibraryLoaded }

// LibraryChangedEvent is emitted when the library root changes on disk
type LibraryChangedEvent struct {
	Root string
}

func (e LibraryChangedEvent) Type() EventType { return EventLibraryChanged }

// EntrySkippedEvent is emitted when a folder or deck name cannot be parsed
type EntrySkippedEvent struct {
	Path string
	Err  error
}

func (e EntrySkippedEvent) Type() EventType { return EventEntrySkipped }

// DeckConvertedEvent is emitted when a deck has been materialized
type DeckConvertedEvent struct {
	DeckPath string
	Slides   int
	Cached   bool
}

func (e DeckConvertedEvent) Type() EventType { return EventDeckConverted }

// ConversionFailedEvent is emitted when a deck cannot be rendered
type ConversionFailedEvent struct {
	DeckPath string
	Err      error
}

func (e ConversionFailedEvent) Type() EventType { return EventConversionFailed }

// DeviceAttachedEvent is emitted when an input source starts reading
type DeviceAttachedEvent struct {
	Name string
	Path string
}

func (e DeviceAttachedEvent) Type() EventType { return EventDeviceAttached }

// DeviceLostEvent is emitted when an input source stops on a read error
type DeviceLostEvent struct {
	Name string
	Err  error
}

func (e DeviceLostEvent) Type() EventType { return EventDeviceLost }

// ScreenChangedEvent is emitted when navigation moves between screens
type ScreenChangedEvent struct {
	From string
	To   string
}

func (e ScreenChangedEvent) Type() EventType { return EventScreenChanged }

// FocusChangedEvent is emitted when the focused cell on a grid changes
type FocusChangedEvent struct {
	Screen      string
	OldIndex    int
	NewIndex    int
	BackFocused bool
}

func (e FocusChangedEvent) Type() EventType { return EventFocusChanged }

// SlideChangedEvent is emitted when the presented slide changes
type SlideChangedEvent struct {
	Collection int
	Item       int
	Slide      int
	Image      string
}

func (e SlideChangedEvent) Type() EventType { return EventSlideChanged }

// QuitRequestedEvent is emitted when cancel is pressed on the top screen
type QuitRequestedEvent struct{}

func (e QuitRequestedEvent) Type() EventType { return EventQuitRequested }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }
