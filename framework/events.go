// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package framework

import (
	"fmt"

	"github.com/juju/errors"
)

// CreateFunc builds a fresh event identified by handle. For events
// emitted by the current invocation args carries the emit arguments;
// for events about to be restored from a snapshot args is nil.
type CreateFunc func(handle Handle, args []string) (Event, error)

// RestoreFunc recreates an event from its persisted snapshot.
type RestoreFunc func(handle Handle, snapshot map[string]interface{}) (Event, error)

// EventSource declares a single kind of event an object can emit. It
// is immutable once created; binding it to an owning object yields the
// BoundEvent used for observation and emission.
type EventSource struct {
	kind   string
	create CreateFunc
}

// NewEventSource returns a source for the given event kind whose
// events are built by create.
func NewEventSource(kind string, create CreateFunc) *EventSource {
	return &EventSource{kind: kind, create: create}
}

// Kind returns the event kind declared by the source.
func (s *EventSource) Kind() string {
	return s.kind
}

func (s *EventSource) restore(handle Handle, snapshot map[string]interface{}) (Event, error) {
	event, err := s.create(handle, nil)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := event.Restore(snapshot); err != nil {
		return nil, errors.Annotatef(err, "restoring %q event", s.kind)
	}
	return event, nil
}

// BoundEvent is an EventSource bound to a specific owning object. Its
// identity, the pair of the owner's handle path and the event kind, is
// the key observers are registered under, and is stable across process
// restarts.
type BoundEvent struct {
	source  *EventSource
	emitter Object
}

// Kind returns the bound event's kind.
func (b BoundEvent) Kind() string {
	return b.source.kind
}

// Emit synchronously notifies every observer of the bound event, in
// registration order. An error returned by a handler aborts the
// remaining observer chain and is returned to the caller; state saved
// by handlers that already completed is retained.
func (b BoundEvent) Emit(args ...string) error {
	return b.emitter.Framework().emit(b, args)
}

// identity returns the dispatch-registry key for the bound event. It
// equals the parent path of every event handle the binding emits.
func (b BoundEvent) identity() string {
	return b.emitter.Handle().Path() + "/" + b.source.kind
}

// ObjectEvents is the ordered set of events defined for one owning
// object: the static events the owner always has, plus any members
// synthesized from its metadata at construction time. Definitions are
// local to the owning instance.
type ObjectEvents struct {
	owner   Object
	kinds   []string
	sources map[string]*EventSource
}

// NewObjectEvents returns an empty events container owned by owner.
func NewObjectEvents(owner Object) *ObjectEvents {
	return &ObjectEvents{
		owner:   owner,
		sources: make(map[string]*EventSource),
	}
}

// DefineEvent adds source to the container under its declared kind.
// Kinds must be unique within a container; definition order determines
// enumeration order.
func (e *ObjectEvents) DefineEvent(source *EventSource) error {
	kind := source.kind
	if !validKind(kind) {
		return errors.Errorf("event kind %q not valid", kind)
	}
	if _, ok := e.sources[kind]; ok {
		return errors.Errorf("event kind %q already defined on %q", kind, e.owner.Handle())
	}
	e.kinds = append(e.kinds, kind)
	e.sources[kind] = source
	return nil
}

// Event returns the bound event for kind. The returned error satisfies
// errors.Is against ErrUnknownEventKind when no such event is defined.
func (e *ObjectEvents) Event(kind string) (BoundEvent, error) {
	source, ok := e.sources[kind]
	if !ok {
		return BoundEvent{}, fmt.Errorf(
			"no %q event defined on %q%w", kind, e.owner.Handle(), errors.Hide(ErrUnknownEventKind))
	}
	return BoundEvent{source: source, emitter: e.owner}, nil
}

// Events returns every bound event in definition order.
func (e *ObjectEvents) Events() []BoundEvent {
	bound := make([]BoundEvent, 0, len(e.kinds))
	for _, kind := range e.kinds {
		bound = append(bound, BoundEvent{source: e.sources[kind], emitter: e.owner})
	}
	return bound
}
