package input

import (
	"fmt"
	"time"
)

// Button is a logical control, independent of the physical device
type Button int

const (
	ButtonA Button = iota // previous
	ButtonB               // enter / select
	ButtonC               // next
	// ButtonCancel is the dedicated back input. It is not part of the
	// three-button pedal alphabet; keyboards provide it through Escape.
	ButtonCancel
)

func (b Button) String() string {
	switch b {
	case ButtonA:
		return "A"
	case ButtonB:
		return "B"
	case ButtonC:
		return "C"
	case ButtonCancel:
		return "Cancel"
	default:
		return fmt.Sprintf("Button(%d)", int(b))
	}
}

// Phase classifies a button transition
type Phase int

const (
	PhaseDown Phase = iota
	PhaseHold
	PhaseUp
)

func (p Phase) String() string {
	switch p {
	case PhaseDown:
		return "down"
	case PhaseHold:
		return "hold"
	case PhaseUp:
		return "up"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Active reports whether the phase triggers navigation
func (p Phase) Active() bool {
	return p == PhaseDown || p == PhaseHold
}

// Event is one fused logical input event
type Event struct {
	Button Button
	Phase  Phase
	Time   time.Time
	Source string
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s (%s)", e.Button, e.Phase, e.Source)
}
