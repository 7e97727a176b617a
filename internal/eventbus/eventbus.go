package eventbus

import (
	"log"
	"runtime/debug"
	"sync"

	"pedalprompt/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventLibraryLoaded    = domain.EventLibraryLoaded
	EventLibraryChanged   = domain.EventLibraryChanged
	EventEntrySkipped     = domain.EventEntrySkipped
	EventDeckConverted    = domain.EventDeckConverted
	EventConversionFailed = domain.EventConversionFailed
	EventDeviceAttached   = domain.EventDeviceAttached
	EventDeviceLost       = domain.EventDeviceLost
	EventScreenChanged    = domain.EventScreenChanged
	EventFocusChanged     = domain.EventFocusChanged
	EventSlideChanged     = domain.EventSlideChanged
	EventQuitRequested    = domain.EventQuitRequested
	EventError            = domain.EventError
)

// Re-export domain event types
type LibraryLoadedEvent = domain.LibraryLoadedEvent
type LibraryChangedEvent = domain.LibraryChangedEvent
type EntrySkippedEvent = domain.EntrySkippedEvent
type DeckConvertedEvent = domain.DeckConvertedEvent
type ConversionFailedEvent = domain.ConversionFailedEvent
type DeviceAttachedEvent = domain.DeviceAttachedEvent
type DeviceLostEvent = domain.DeviceLostEvent
type ScreenChangedEvent = domain.ScreenChangedEvent
type FocusChangedEvent = domain.FocusChangedEvent
type SlideChangedEvent = domain.SlideChangedEvent
type QuitRequestedEvent = domain.QuitRequestedEvent
type ErrorEvent = domain.ErrorEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
}

type subscription struct {
	id      uint64
	handler EventHandler
}

// Bus is the concrete implementation of EventBus
type Bus struct {
	mu        sync.RWMutex
	handlers  map[EventType][]subscription
	nextID    uint64
	eventChan chan DomainEvent
	wg        sync.WaitGroup
	quit      chan struct{}
	closeOnce sync.Once
}

// New creates a new event bus
func New() *Bus {
	b := &Bus{
		handlers:  make(map[EventType][]subscription),
		eventChan: make(chan DomainEvent, 1000),
		quit:      make(chan struct{}),
	}

	// Start the event dispatcher
	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish publishes an event to all subscribers without blocking
func (b *Bus) Publish(event DomainEvent) {
	// Skip logging for high-frequency events
	switch event.Type() {
	case EventFocusChanged, EventSlideChanged:
	default:
		log.Printf("EventBus: Publishing event %s", event.Type())
	}

	select {
	case b.eventChan <- event:
	default:
		log.Printf("Event bus channel full, dropping event: %v", event.Type())
	}
}

// Subscribe subscribes to events of a specific type
// Returns an unsubscribe function
func (b *Bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close stops the dispatcher; pending events are discarded
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
	})
	b.wg.Wait()
}

// dispatch handles event distribution to subscribers
func (b *Bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			b.mu.RLock()
			subs := b.handlers[event.Type()]
			// Copy so handlers run without the lock held
			handlersCopy := make([]EventHandler, len(subs))
			for i, s := range subs {
				handlersCopy[i] = s.handler
			}
			b.mu.RUnlock()

			for _, handler := range handlersCopy {
				b.call(handler, event)
			}

		case <-b.quit:
			for {
				select {
				case <-b.eventChan:
				default:
					return
				}
			}
		}
	}
}

// call runs one handler, recovering from panics so one bad subscriber
// cannot stop the dispatcher
func (b *Bus) call(h EventHandler, event DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Event handler panic for %s: %v\nStack: %s", event.Type(), r, debug.Stack())
		}
	}()
	h(event)
}

// NullBus is a no-op implementation of EventBus
type NullBus struct{}

func (NullBus) Publish(event DomainEvent) {}
func (NullBus) Subscribe(eventType EventType, handler EventHandler) func() {
	return func() {}
}
