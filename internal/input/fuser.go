package input

import (
	"context"
	"errors"
	"log"
	"sync"

	"pedalprompt/internal/eventbus"
)

// Fuser runs one read loop per source and merges their logical events into
// a single mailbox consumed by the control loop.
//
// Events from one source keep their order. Nothing is guaranteed between
// sources; running two physical sources at once is the caller's choice.
type Fuser struct {
	bus     eventbus.EventBus
	mailbox *Mailbox

	mu      sync.Mutex
	wg      *sync.WaitGroup
	cancel  context.CancelFunc
	sources []Source
	started bool
}

// NewFuser creates a fuser that publishes device lifecycle events on bus
func NewFuser(bus eventbus.EventBus) *Fuser {
	if bus == nil {
		bus = eventbus.NullBus{}
	}
	return &Fuser{
		bus:     bus,
		mailbox: NewMailbox(DefaultMailboxSize),
	}
}

// Events returns the channel the control loop drains
func (f *Fuser) Events() <-chan Event {
	return f.mailbox.C()
}

// Mailbox exposes the handoff for diagnostics
func (f *Fuser) Mailbox() *Mailbox {
	return f.mailbox
}

// Start begins a read loop for every source. With no sources the fuser
// simply never emits. Start returns immediately.
func (f *Fuser) Start(ctx context.Context, sources ...Source) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.started {
		log.Printf("Input fuser already started, ignoring %d sources", len(sources))
		return
	}
	f.started = true

	runCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.sources = sources
	f.wg = &sync.WaitGroup{}

	if len(sources) == 0 {
		log.Printf("Input fuser running with no sources")
	}

	// A failing source ends only its own loop, so the workers share no
	// error and are just waited for
	for _, src := range sources {
		src := src
		f.wg.Add(1)
		go func() {
			defer f.wg.Done()
			f.run(runCtx, src)
		}()
	}
}

// Stop cancels all read loops, releases the devices and waits for the
// workers to exit
func (f *Fuser) Stop() {
	f.mu.Lock()
	if !f.started {
		f.mu.Unlock()
		return
	}
	cancel := f.cancel
	wg := f.wg
	f.started = false
	f.mu.Unlock()

	cancel()
	wg.Wait()
}

// run is one source's read loop. It owns the source for its lifetime.
func (f *Fuser) run(ctx context.Context, src Source) {
	if err := src.Open(); err != nil {
		log.Printf("Could not open input %s: %v", src.Name(), err)
		f.bus.Publish(eventbus.DeviceLostEvent{Name: src.Name(), Err: err})
		return
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Printf("Closing input %s: %v", src.Name(), err)
		}
	}()

	attached := eventbus.DeviceAttachedEvent{Name: src.Name()}
	if p, ok := src.(interface{ Path() string }); ok {
		attached.Path = p.Path()
	}
	f.bus.Publish(attached)

	keymap := src.Keymap()
	var classifier Classifier

	for {
		tr, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrSourceClosed) {
				return
			}
			log.Printf("Input %s stopped: %v", src.Name(), err)
			f.bus.Publish(eventbus.DeviceLostEvent{Name: src.Name(), Err: err})
			return
		}

		button, ok := keymap.Lookup(tr.Code)
		if !ok {
			continue
		}

		f.mailbox.Put(Event{
			Button: button,
			Phase:  classifier.Classify(button, tr.Kind),
			Time:   tr.Time,
			Source: src.Name(),
		})
	}
}
