// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package framework

// Event is a single notification delivered to observers. Concrete
// event types embed EventBase and add their payload fields, together
// with the Snapshot/Restore pair that round-trips the payload through
// the notebook. Payloads must be simple-shaped: strings, booleans,
// numbers, and lists/maps thereof.
type Event interface {
	// Handle identifies this emission; its parent is the handle of the
	// object whose event was emitted.
	Handle() Handle

	// Defer marks the event to be notified again on a future process
	// invocation, before any new event is emitted.
	Defer()

	// Deferred reports whether a handler has deferred the event.
	Deferred() bool

	// Snapshot returns the simple-shaped payload persisted for the
	// event while it awaits redelivery.
	Snapshot() (map[string]interface{}, error)

	// Restore recreates the payload from a snapshot previously
	// returned by Snapshot.
	Restore(snapshot map[string]interface{}) error
}

// EventBase supplies the Event behaviour common to all event types.
type EventBase struct {
	handle   Handle
	deferred bool
}

// NewEventBase returns an EventBase identified by handle.
func NewEventBase(handle Handle) EventBase {
	return EventBase{handle: handle}
}

// Handle is part of the Event interface.
func (e *EventBase) Handle() Handle {
	return e.handle
}

// Defer is part of the Event interface.
func (e *EventBase) Defer() {
	e.deferred = true
}

// Deferred is part of the Event interface.
func (e *EventBase) Deferred() bool {
	return e.deferred
}

// Snapshot is part of the Event interface. Events without payload
// persist an empty mapping.
func (e *EventBase) Snapshot() (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

// Restore is part of the Event interface.
func (e *EventBase) Restore(snapshot map[string]interface{}) error {
	return nil
}
