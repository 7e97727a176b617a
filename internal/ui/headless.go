package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"pedalprompt/internal/domain"
	"pedalprompt/internal/input"
	"pedalprompt/internal/navigation"
)

// RunHeadless drives engine without a terminal UI, writing one line per
// state change to out. It returns when quit is requested, events is
// closed, or ctx is done.
func RunHeadless(ctx context.Context, engine *navigation.Engine, events <-chan input.Event, libraries <-chan *domain.Library, out io.Writer) error {
	fmt.Fprintln(out, Describe(engine))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case lib, ok := <-libraries:
			if !ok {
				libraries = nil
				continue
			}
			engine.Rebuild(lib)
			fmt.Fprintln(out, Describe(engine))

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !engine.Handle(ev) {
				continue
			}
			if engine.QuitRequested() {
				fmt.Fprintln(out, "quit")
				return nil
			}
			fmt.Fprintln(out, Describe(engine))
		}
	}
}

// Describe renders the engine state as a single line, e.g.
//
//	items 1-Choir › 2 Bach - Ave
func Describe(engine *navigation.Engine) string {
	st := engine.State()
	lib := engine.Library()

	if lib.IsEmpty() {
		return st.Screen.String() + " (empty)"
	}

	col := engine.Collection()
	parts := []string{st.Screen.String(), fmt.Sprintf("%s-%s", col.Sequence, col.Title)}

	switch st.Screen {
	case navigation.ScreenItems:
		if st.BackFocused {
			parts = append(parts, "› back")
			break
		}
		it := engine.Item()
		parts = append(parts, fmt.Sprintf("› %s %s - %s", it.Sequence, it.Artist, it.Title))

	case navigation.ScreenPresentation:
		it := engine.Item()
		parts = append(parts, fmt.Sprintf("› %s %s - %s slide %d/%d", it.Sequence, it.Artist, it.Title, st.Slide+1, it.SlideCount()))
		if img := engine.Image(); img != "" {
			parts = append(parts, img)
		}
	}

	return strings.Join(parts, " ")
}
