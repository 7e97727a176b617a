package input

// Classifier turns raw transitions into Down/Hold/Up phases.
//
// A press is Down unless the previous classification for the same button was
// Down or Hold with no Up in between, in which case it is Hold. Releases are
// always Up. The zero value is ready to use; it is not safe for concurrent use
// and each source loop owns its own.
type Classifier struct {
	held map[Button]bool
}

// Classify returns the phase of a transition on button b
func (c *Classifier) Classify(b Button, kind Kind) Phase {
	if c.held == nil {
		c.held = make(map[Button]bool)
	}

	if kind == KindRelease {
		c.held[b] = false
		return PhaseUp
	}

	if c.held[b] {
		return PhaseHold
	}
	c.held[b] = true
	return PhaseDown
}

// Held reports whether b is currently between Down and Up
func (c *Classifier) Held(b Button) bool {
	return c.held[b]
}

// Reset forgets all held buttons
func (c *Classifier) Reset() {
	c.held = nil
}
