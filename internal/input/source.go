package input

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind is the raw direction of a key transition
type Kind int

const (
	KindPress   Kind = iota
	KindRepeat       // auto-repeat while physically held
	KindRelease
)

// Transition is one raw key transition read from a device
type Transition struct {
	Code uint16
	Kind Kind
	Time time.Time
}

// Source wraps one physical input channel.
//
// Open acquires the device (exclusively where the platform allows it) and
// Close releases it. Next blocks until a transition is available, the
// context is cancelled, or the device fails.
type Source interface {
	Name() string
	Keymap() Keymap
	Open() error
	Next(ctx context.Context) (Transition, error)
	Close() error
}

// ErrDeviceUnavailable is returned by discovery when no recognized device exists
var ErrDeviceUnavailable = errors.New("no recognized input device")

// ErrSourceClosed is returned by Next after Close
var ErrSourceClosed = errors.New("input source closed")

// DeviceReadError reports a device that failed mid-run, e.g. unplugged
type DeviceReadError struct {
	Device string
	Err    error
}

func (e *DeviceReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Device, e.Err)
}

func (e *DeviceReadError) Unwrap() error {
	return e.Err
}
