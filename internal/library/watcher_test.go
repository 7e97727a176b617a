package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pedalprompt/internal/eventbus"
)

func TestWatcherPublishesDebouncedChange(t *testing.T) {
	root := t.TempDir()
	col := filepath.Join(root, "1-Choir")
	require.NoError(t, os.MkdirAll(col, 0o755))

	bus := eventbus.New()
	defer bus.Close()
	changed := make(chan eventbus.LibraryChangedEvent, 8)
	bus.Subscribe(eventbus.EventLibraryChanged, func(e eventbus.DomainEvent) {
		changed <- e.(eventbus.LibraryChangedEvent)
	})

	w := NewWatcher(root, bus, 50*time.Millisecond, "~")
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()
	require.ErrorIs(t, w.Start(context.Background()), ErrWatcherStarted)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(col, "1-A-B.pptx"), []byte{byte(i)}, 0o644))
	}

	select {
	case ev := <-changed:
		require.Equal(t, root, ev.Root)
	case <-time.After(2 * time.Second):
		t.Fatal("no LibraryChanged event")
	}

	select {
	case <-changed:
		t.Fatal("burst should produce one event")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherIgnoresLockFiles(t *testing.T) {
	root := t.TempDir()

	bus := eventbus.New()
	defer bus.Close()
	changed := make(chan struct{}, 8)
	bus.Subscribe(eventbus.EventLibraryChanged, func(eventbus.DomainEvent) {
		changed <- struct{}{}
	})

	w := NewWatcher(root, bus, 20*time.Millisecond, "~")
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(root, "~lock.pptx"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".DS_Store"), nil, 0o644))

	select {
	case <-changed:
		t.Fatal("ignored files triggered a reload")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherWatchesNewCollections(t *testing.T) {
	root := t.TempDir()

	bus := eventbus.New()
	defer bus.Close()
	changed := make(chan struct{}, 8)
	bus.Subscribe(eventbus.EventLibraryChanged, func(eventbus.DomainEvent) {
		changed <- struct{}{}
	})

	w := NewWatcher(root, bus, 20*time.Millisecond, "~")
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	col := filepath.Join(root, "2-Band")
	require.NoError(t, os.MkdirAll(col, 0o755))
	waitChange(t, changed)

	// give the loop a moment to add the new folder
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(col, "1-A-B.pptx"), []byte("x"), 0o644))
	waitChange(t, changed)
}

func waitChange(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no LibraryChanged event")
	}
}

func TestWatcherMissingRoot(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing"), nil, 0, "")
	require.Error(t, w.Start(context.Background()))
	w.Stop()
}
