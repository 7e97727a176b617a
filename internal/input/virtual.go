package input

import (
	"context"
	"log"
	"sync"
	"time"
)

const virtualBufferSize = 256

// VirtualSource is a manually driven source. The terminal front end feeds
// key presses into one, and tests use it to script input.
//
// Terminals report presses only. With a release delay set, a release is
// synthesized once a key has been quiet for that long, and presses of a key
// that is still considered down are reported as repeats.
type VirtualSource struct {
	name         string
	keymap       Keymap
	releaseAfter time.Duration

	ch        chan Transition
	closed    chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	timers map[uint16]*time.Timer
}

// VirtualOption configures a VirtualSource
type VirtualOption func(*VirtualSource)

// WithReleaseAfter enables synthesized releases after d without a press
func WithReleaseAfter(d time.Duration) VirtualOption {
	return func(v *VirtualSource) {
		v.releaseAfter = d
	}
}

// NewVirtualSource creates a virtual source using keymap
func NewVirtualSource(name string, keymap Keymap, opts ...VirtualOption) *VirtualSource {
	v := &VirtualSource{
		name:   name,
		keymap: keymap,
		ch:     make(chan Transition, virtualBufferSize),
		closed: make(chan struct{}),
		timers: make(map[uint16]*time.Timer),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *VirtualSource) Name() string   { return v.name }
func (v *VirtualSource) Keymap() Keymap { return v.keymap }

// Open is a no-op; a closed virtual source cannot be reopened
func (v *VirtualSource) Open() error {
	select {
	case <-v.closed:
		return ErrSourceClosed
	default:
		return nil
	}
}

// Next blocks until a transition is pushed
func (v *VirtualSource) Next(ctx context.Context) (Transition, error) {
	select {
	case tr := <-v.ch:
		return tr, nil
	case <-ctx.Done():
		return Transition{}, ctx.Err()
	case <-v.closed:
		return Transition{}, ErrSourceClosed
	}
}

// Close stops the source and cancels pending synthesized releases
func (v *VirtualSource) Close() error {
	v.closeOnce.Do(func() {
		close(v.closed)
		v.mu.Lock()
		for code, t := range v.timers {
			t.Stop()
			delete(v.timers, code)
		}
		v.mu.Unlock()
	})
	return nil
}

// Press records a press of code
func (v *VirtualSource) Press(code uint16) {
	kind := KindPress

	if v.releaseAfter > 0 {
		v.mu.Lock()
		if t, ok := v.timers[code]; ok && t.Stop() {
			kind = KindRepeat
		}
		var timer *time.Timer
		timer = time.AfterFunc(v.releaseAfter, func() {
			v.mu.Lock()
			if v.timers[code] == timer {
				delete(v.timers, code)
			}
			v.mu.Unlock()
			v.push(Transition{Code: code, Kind: KindRelease, Time: time.Now()})
		})
		v.timers[code] = timer
		v.mu.Unlock()
	}

	v.push(Transition{Code: code, Kind: kind, Time: time.Now()})
}

// Repeat records an auto-repeat of code
func (v *VirtualSource) Repeat(code uint16) {
	v.push(Transition{Code: code, Kind: KindRepeat, Time: time.Now()})
}

// Release records a release of code
func (v *VirtualSource) Release(code uint16) {
	v.push(Transition{Code: code, Kind: KindRelease, Time: time.Now()})
}

// Tap records a press immediately followed by a release
func (v *VirtualSource) Tap(code uint16) {
	v.push(Transition{Code: code, Kind: KindPress, Time: time.Now()})
	v.push(Transition{Code: code, Kind: KindRelease, Time: time.Now()})
}

// push never blocks the caller, which is usually the UI loop
func (v *VirtualSource) push(tr Transition) {
	select {
	case <-v.closed:
		return
	default:
	}

	select {
	case v.ch <- tr:
	default:
		log.Printf("Virtual input %s full, dropping key %d", v.name, tr.Code)
	}
}
