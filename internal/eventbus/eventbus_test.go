package eventbus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, b *Bus, eventType EventType) (func() []DomainEvent, func()) {
	t.Helper()
	var mu sync.Mutex
	var got []DomainEvent
	unsub := b.Subscribe(eventType, func(e DomainEvent) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e)
	})
	return func() []DomainEvent {
		mu.Lock()
		defer mu.Unlock()
		out := make([]DomainEvent, len(got))
		copy(out, got)
		return out
	}, unsub
}

func TestPublishDeliversInOrder(t *testing.T) {
	b := New()
	defer b.Close()

	events, _ := collect(t, b, EventDeviceAttached)

	for _, name := range []string{"pedal", "keyboard", "terminal"} {
		b.Publish(DeviceAttachedEvent{Name: name})
	}

	require.Eventually(t, func() bool { return len(events()) == 3 }, time.Second, 5*time.Millisecond)
	got := events()
	assert.Equal(t, "pedal", got[0].(DeviceAttachedEvent).Name)
	assert.Equal(t, "keyboard", got[1].(DeviceAttachedEvent).Name)
	assert.Equal(t, "terminal", got[2].(DeviceAttachedEvent).Name)
}

func TestSubscribeFiltersByType(t *testing.T) {
	b := New()
	defer b.Close()

	lost, _ := collect(t, b, EventDeviceLost)
	attached, _ := collect(t, b, EventDeviceAttached)

	b.Publish(DeviceLostEvent{Name: "pedal"})
	b.Publish(DeviceAttachedEvent{Name: "pedal"})

	require.Eventually(t, func() bool { return len(lost()) == 1 && len(attached()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	defer b.Close()

	first, unsub := collect(t, b, EventQuitRequested)
	second, _ := collect(t, b, EventQuitRequested)

	unsub()
	b.Publish(QuitRequestedEvent{})

	require.Eventually(t, func() bool { return len(second()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, first())
}

func TestHandlerPanicDoesNotStopDispatch(t *testing.T) {
	b := New()
	defer b.Close()

	b.Subscribe(EventError, func(DomainEvent) { panic("boom") })
	events, _ := collect(t, b, EventError)

	b.Publish(ErrorEvent{Message: "one"})
	b.Publish(ErrorEvent{Message: "two"})

	require.Eventually(t, func() bool { return len(events()) == 2 }, time.Second, 5*time.Millisecond)
}

func TestCloseIsIdempotent(t *testing.T) {
	b := New()
	b.Close()
	b.Close()
}

func TestNullBus(t *testing.T) {
	var bus EventBus = NullBus{}
	unsub := bus.Subscribe(EventError, func(DomainEvent) { t.Fatal("must not be called") })
	bus.Publish(ErrorEvent{})
	unsub()
}
