package ui

import (
	"context"
	"log"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"pedalprompt/internal/domain"
	"pedalprompt/internal/eventbus"
	"pedalprompt/internal/input"
)

// forwardedEvents are the bus events the status line reacts to
var forwardedEvents = []eventbus.EventType{
	eventbus.EventDeviceAttached,
	eventbus.EventDeviceLost,
	eventbus.EventConversionFailed,
	eventbus.EventEntrySkipped,
	eventbus.EventLibraryChanged,
	eventbus.EventError,
}

// Forwarder moves input events, reloaded libraries and bus events into a
// running program. send is usually (*tea.Program).Send.
type Forwarder struct {
	send func(tea.Msg)

	events chan tea.Msg
	unsubs []func()
	wg     sync.WaitGroup
	once   sync.Once

	// newest undelivered reload result
	libMu     sync.Mutex
	libraries chan LibraryMsg
}

// NewForwarder creates a forwarder delivering through send
func NewForwarder(send func(tea.Msg)) *Forwarder {
	return &Forwarder{
		send:      send,
		events:    make(chan tea.Msg, 100),
		libraries: make(chan LibraryMsg, 1),
	}
}

// Start subscribes to bus and drains inputs until ctx is done or Stop is
// called
func (f *Forwarder) Start(ctx context.Context, bus eventbus.EventBus, inputs <-chan input.Event) {
	for _, t := range forwardedEvents {
		f.unsubs = append(f.unsubs, bus.Subscribe(t, func(e eventbus.DomainEvent) {
			f.enqueue(EventMsg{Event: e})
		}))
	}

	f.wg.Add(2)
	go func() {
		defer f.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-f.libraries:
				f.send(msg)
			case msg, ok := <-f.events:
				if !ok {
					return
				}
				f.send(msg)
			}
		}
	}()

	// Input bypasses the status queue so a burst of bus events never
	// delays a pedal press
	go func() {
		defer f.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-inputs:
				if !ok {
					return
				}
				f.send(InputMsg{Event: ev})
			}
		}
	}()
}

// Library delivers the result of a reload. A result still waiting to be
// delivered is replaced by the newer one.
func (f *Forwarder) Library(lib *domain.Library, err error) {
	f.libMu.Lock()
	defer f.libMu.Unlock()
	select {
	case <-f.libraries:
	default:
	}
	f.libraries <- LibraryMsg{Library: lib, Err: err}
}

func (f *Forwarder) enqueue(msg tea.Msg) {
	select {
	case f.events <- msg:
	default:
		log.Println("Event channel full, dropping event")
	}
}

// Stop unsubscribes and waits for the forwarding goroutines. The context
// passed to Start must be cancelled first.
func (f *Forwarder) Stop() {
	f.once.Do(func() {
		for _, unsub := range f.unsubs {
			unsub()
		}
		f.wg.Wait()
	})
}
