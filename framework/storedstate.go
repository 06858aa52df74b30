// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package framework

import (
	"github.com/juju/errors"

	"github.com/juju/operator/framework/notebook"
)

// StateChangedEvent is emitted by a StoredState every time one of its
// values is set or deleted.
type StateChangedEvent struct {
	EventBase
}

// StoredState is a named bag of simple-shaped values persisted under
// its own handle, giving a component state that survives across
// process invocations. Values written since the last framework Commit
// are discarded if the process exits without committing.
type StoredState struct {
	ObjectBase
	events *ObjectEvents
	data   map[string]interface{}
}

// NewStoredState returns the stored state named name belonging to
// owner, restored from the notebook if a snapshot exists.
func NewStoredState(owner Object, name string) (*StoredState, error) {
	parent := owner.Handle()
	base, err := NewObject(owner.Framework(), &parent, "stored-state", name)
	if err != nil {
		return nil, errors.Trace(err)
	}
	s := &StoredState{ObjectBase: base}
	s.events = NewObjectEvents(s)
	if err := s.events.DefineEvent(NewEventSource("changed", func(h Handle, args []string) (Event, error) {
		if len(args) > 0 {
			return nil, errors.Errorf(`"changed" event takes no arguments`)
		}
		return &StateChangedEvent{EventBase: NewEventBase(h)}, nil
	})); err != nil {
		return nil, errors.Trace(err)
	}
	data, err := base.Framework().LoadSnapshot(base.Handle())
	if errors.Is(err, notebook.ErrNoSnapshot) {
		data = make(map[string]interface{})
	} else if err != nil {
		return nil, errors.Trace(err)
	}
	s.data = data
	return s, nil
}

// Changed returns the bound event emitted on every mutation.
func (s *StoredState) Changed() BoundEvent {
	bound, _ := s.events.Event("changed")
	return bound
}

// Get returns the value stored under key and whether it is present.
func (s *StoredState) Get(key string) (interface{}, bool) {
	value, ok := s.data[key]
	return value, ok
}

// Set stores value under key, persists the state, and emits the
// changed event. Values must be simple-shaped; anything else is
// rejected so that the snapshot always round-trips.
func (s *StoredState) Set(key string, value interface{}) error {
	if err := checkSimpleValue(value); err != nil {
		return errors.Annotatef(err, "cannot store %q", key)
	}
	s.data[key] = value
	return errors.Trace(s.mutated())
}

// Delete removes key from the state, persists, and emits the changed
// event. Deleting an absent key is a no-op.
func (s *StoredState) Delete(key string) error {
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return errors.Trace(s.mutated())
}

func (s *StoredState) mutated() error {
	if err := s.Framework().SaveSnapshot(s.Handle(), s.data); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(s.Changed().Emit())
}

// checkSimpleValue rejects values that would not survive a snapshot
// round-trip unchanged.
func checkSimpleValue(value interface{}) error {
	switch value := value.(type) {
	case nil, bool, string, int, int64, float64:
		return nil
	case []interface{}:
		for _, elem := range value {
			if err := checkSimpleValue(elem); err != nil {
				return errors.Trace(err)
			}
		}
		return nil
	case map[string]interface{}:
		for _, elem := range value {
			if err := checkSimpleValue(elem); err != nil {
				return errors.Trace(err)
			}
		}
		return nil
	}
	return errors.Errorf("value of type %T is not a simple type (string/bool/number/list/map)", value)
}
