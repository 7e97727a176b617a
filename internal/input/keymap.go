package input

// Linux input event codes (linux/input-event-codes.h) used by the key tables.
// Terminal keys are translated to the same codes so every source shares one
// code space.
const (
	KeyEsc   uint16 = 1
	Key1     uint16 = 2
	Key2     uint16 = 3
	Key3     uint16 = 4
	KeyEnter uint16 = 28
	KeyA     uint16 = 30
	KeyC     uint16 = 46
	KeyB     uint16 = 48
	KeySpace uint16 = 57
	KeyKP1   uint16 = 79
	KeyKP2   uint16 = 80
	KeyKP3   uint16 = 81
	KeyLeft  uint16 = 105
	KeyRight uint16 = 106
)

// Keymap maps raw key codes of one source to logical buttons.
// Codes missing from the map produce no event.
type Keymap map[uint16]Button

// Lookup returns the button for code
func (k Keymap) Lookup(code uint16) (Button, bool) {
	b, ok := k[code]
	return b, ok
}

// PedalKeymap is the table for the three-pedal foot switch, which reports
// its pedals as the letters a, b and c
func PedalKeymap() Keymap {
	return Keymap{
		KeyA: ButtonA,
		KeyB: ButtonB,
		KeyC: ButtonC,
	}
}

// KeyboardKeymap is the table for a generic keyboard: 1/2/3 on either the
// number row or the keypad, Escape for cancel
func KeyboardKeymap() Keymap {
	return Keymap{
		Key1:   ButtonA,
		Key2:   ButtonB,
		Key3:   ButtonC,
		KeyKP1: ButtonA,
		KeyKP2: ButtonB,
		KeyKP3: ButtonC,
		KeyEsc: ButtonCancel,
	}
}

// TerminalKeymap extends the keyboard table with arrow keys and Enter. It
// also carries the pedal letters, so a foot switch that could not be opened
// directly still works through the terminal.
func TerminalKeymap() Keymap {
	k := KeyboardKeymap()
	for code, b := range PedalKeymap() {
		k[code] = b
	}
	k[KeyLeft] = ButtonA
	k[KeyEnter] = ButtonB
	k[KeySpace] = ButtonB
	k[KeyRight] = ButtonC
	return k
}
