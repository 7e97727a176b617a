package ui

import (
	"pedalprompt/internal/domain"
	"pedalprompt/internal/eventbus"
	"pedalprompt/internal/input"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// InputMsg carries one fused input event into the control loop
type InputMsg struct {
	Event input.Event
}

// LibraryMsg delivers a reloaded library, or the error that prevented it
type LibraryMsg struct {
	Library *domain.Library
	Err     error
}

// helpPagerMsg contains the result of a help pager command
type helpPagerMsg struct {
	err error
}
