package input

import "sync"

// DefaultMailboxSize is the number of pending events kept for the control loop
const DefaultMailboxSize = 64

// Mailbox hands fused events from device workers to the control loop.
//
// Put never blocks. When the consumer falls behind and the mailbox is full,
// the oldest pending event is dropped so the latest one is always delivered.
// Events put by one goroutine are received in the order they were put.
type Mailbox struct {
	mu      sync.Mutex
	ch      chan Event
	dropped int
}

// NewMailbox creates a mailbox holding up to size pending events
func NewMailbox(size int) *Mailbox {
	if size < 1 {
		size = 1
	}
	return &Mailbox{ch: make(chan Event, size)}
}

// Put enqueues ev, evicting the oldest pending event if necessary
func (m *Mailbox) Put(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for {
		select {
		case m.ch <- ev:
			return
		default:
		}

		// Full: drop the oldest and retry. The consumer may race us and
		// empty a slot first, which is fine.
		select {
		case <-m.ch:
			m.dropped++
		default:
		}
	}
}

// C returns the receive side for the control loop
func (m *Mailbox) C() <-chan Event {
	return m.ch
}

// Dropped returns how many events were coalesced away
func (m *Mailbox) Dropped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// Drain removes and returns all pending events without blocking
func (m *Mailbox) Drain() []Event {
	var out []Event
	for {
		select {
		case ev := <-m.ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}
