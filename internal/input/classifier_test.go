package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestClassifierPressHoldRelease(t *testing.T) {
	var c Classifier

	assert.Equal(t, PhaseDown, c.Classify(ButtonB, KindPress))
	assert.True(t, c.Held(ButtonB))
	assert.Equal(t, PhaseHold, c.Classify(ButtonB, KindRepeat))
	assert.Equal(t, PhaseHold, c.Classify(ButtonB, KindPress))
	assert.Equal(t, PhaseUp, c.Classify(ButtonB, KindRelease))
	assert.False(t, c.Held(ButtonB))
	assert.Equal(t, PhaseDown, c.Classify(ButtonB, KindPress))
}

func TestClassifierButtonsAreIndependent(t *testing.T) {
	var c Classifier

	require.Equal(t, PhaseDown, c.Classify(ButtonA, KindPress))
	assert.Equal(t, PhaseDown, c.Classify(ButtonC, KindPress))
	assert.Equal(t, PhaseUp, c.Classify(ButtonC, KindRelease))
	assert.Equal(t, PhaseHold, c.Classify(ButtonA, KindPress))
}

func TestClassifierReset(t *testing.T) {
	var c Classifier
	c.Classify(ButtonA, KindPress)
	c.Reset()
	assert.False(t, c.Held(ButtonA))
	assert.Equal(t, PhaseDown, c.Classify(ButtonA, KindPress))
}

func TestClassifierReleaseWithoutPress(t *testing.T) {
	var c Classifier
	assert.Equal(t, PhaseUp, c.Classify(ButtonCancel, KindRelease))
	assert.Equal(t, PhaseDown, c.Classify(ButtonCancel, KindPress))
}

func TestClassifierPhases(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		kinds := rapid.SliceOf(rapid.SampledFrom([]Kind{KindPress, KindRepeat, KindRelease})).Draw(t, "kinds")
		button := rapid.SampledFrom([]Button{ButtonA, ButtonB, ButtonC, ButtonCancel}).Draw(t, "button")

		var c Classifier
		held := false
		for i, k := range kinds {
			got := c.Classify(button, k)
			switch {
			case k == KindRelease:
				if got != PhaseUp {
					t.Fatalf("step %d: release classified %s", i, got)
				}
				held = false
			case held:
				if got != PhaseHold {
					t.Fatalf("step %d: press while held classified %s", i, got)
				}
			default:
				if got != PhaseDown {
					t.Fatalf("step %d: first press classified %s", i, got)
				}
				held = true
			}
		}
	})
}
