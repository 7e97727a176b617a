package input

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pedalprompt/internal/eventbus"
)

// failingSource yields its transitions and then a read error
type failingSource struct {
	name    string
	script  []Transition
	openErr error
	closed  bool
	mu      sync.Mutex
}

func (s *failingSource) Name() string   { return s.name }
func (s *failingSource) Keymap() Keymap { return PedalKeymap() }
func (s *failingSource) Open() error    { return s.openErr }

func (s *failingSource) Next(ctx context.Context) (Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.script) == 0 {
		return Transition{}, &DeviceReadError{Device: s.name, Err: errors.New("no such device")}
	}
	tr := s.script[0]
	s.script = s.script[1:]
	return tr, nil
}

func (s *failingSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *failingSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func receive(t *testing.T, f *Fuser) Event {
	t.Helper()
	select {
	case ev := <-f.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for input event")
		return Event{}
	}
}

func TestFuserClassifiesAndMaps(t *testing.T) {
	f := NewFuser(nil)
	src := NewVirtualSource("test", KeyboardKeymap())
	f.Start(context.Background(), src)
	defer f.Stop()

	src.Press(Key3)
	src.Repeat(Key3)
	src.Release(Key3)
	src.Press(KeyEsc)

	want := []Event{
		{Button: ButtonC, Phase: PhaseDown},
		{Button: ButtonC, Phase: PhaseHold},
		{Button: ButtonC, Phase: PhaseUp},
		{Button: ButtonCancel, Phase: PhaseDown},
	}
	for _, w := range want {
		got := receive(t, f)
		assert.Equal(t, w.Button, got.Button)
		assert.Equal(t, w.Phase, got.Phase)
		assert.Equal(t, "test", got.Source)
	}
}

func TestFuserIgnoresUnmappedKeys(t *testing.T) {
	f := NewFuser(nil)
	src := NewVirtualSource("pedal", PedalKeymap())
	f.Start(context.Background(), src)
	defer f.Stop()

	src.Tap(Key1)
	src.Tap(KeyEnter)
	src.Tap(KeyB)

	got := receive(t, f)
	assert.Equal(t, ButtonB, got.Button)
	assert.Equal(t, PhaseDown, got.Phase)
	assert.Equal(t, PhaseUp, receive(t, f).Phase)
}

func TestFuserWithNoSources(t *testing.T) {
	f := NewFuser(nil)
	f.Start(context.Background())

	select {
	case ev := <-f.Events():
		t.Fatalf("unexpected event %v", ev)
	case <-time.After(50 * time.Millisecond):
	}
	f.Stop()
}

func TestFuserReadErrorStopsOnlyThatSource(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()

	var mu sync.Mutex
	var lost []string
	bus.Subscribe(eventbus.EventDeviceLost, func(e eventbus.DomainEvent) {
		mu.Lock()
		defer mu.Unlock()
		lost = append(lost, e.(eventbus.DeviceLostEvent).Name)
	})

	broken := &failingSource{
		name:   "pedal",
		script: []Transition{{Code: KeyA, Kind: KindPress}},
	}
	healthy := NewVirtualSource("keyboard", KeyboardKeymap())

	f := NewFuser(bus)
	f.Start(context.Background(), broken, healthy)
	defer f.Stop()

	first := receive(t, f)
	assert.Equal(t, ButtonA, first.Button)
	assert.Equal(t, "pedal", first.Source)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(lost) == 1
	}, time.Second, 5*time.Millisecond)
	assert.True(t, broken.isClosed())

	healthy.Press(Key2)
	got := receive(t, f)
	assert.Equal(t, ButtonB, got.Button)
	assert.Equal(t, "keyboard", got.Source)
}

func TestFuserOpenFailurePublishesLost(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()

	lost := make(chan eventbus.DeviceLostEvent, 1)
	bus.Subscribe(eventbus.EventDeviceLost, func(e eventbus.DomainEvent) {
		lost <- e.(eventbus.DeviceLostEvent)
	})

	src := &failingSource{name: "pedal", openErr: errors.New("permission denied")}
	f := NewFuser(bus)
	f.Start(context.Background(), src)
	defer f.Stop()

	select {
	case ev := <-lost:
		assert.Equal(t, "pedal", ev.Name)
		assert.EqualError(t, ev.Err, "permission denied")
	case <-time.After(time.Second):
		t.Fatal("no DeviceLost event")
	}
	assert.False(t, src.isClosed(), "a source that never opened is not closed")
}

func TestFuserStopClosesSources(t *testing.T) {
	f := NewFuser(nil)
	src := NewVirtualSource("terminal", TerminalKeymap())
	f.Start(context.Background(), src)

	f.Stop()

	assert.ErrorIs(t, src.Open(), ErrSourceClosed)
	f.Stop()
}

func TestFuserStartTwiceIsIgnored(t *testing.T) {
	f := NewFuser(nil)
	first := NewVirtualSource("first", KeyboardKeymap())
	second := NewVirtualSource("second", KeyboardKeymap())

	f.Start(context.Background(), first)
	f.Start(context.Background(), second)
	defer f.Stop()

	second.Press(Key1)
	first.Press(Key1)
	assert.Equal(t, "first", receive(t, f).Source)
}
