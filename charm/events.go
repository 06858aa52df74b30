// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm

import (
	"github.com/juju/errors"

	"github.com/juju/operator/framework"
)

// Lifecycle events carry no payload; their kind alone tells the
// handler what happened to the unit.

type InstallEvent struct{ framework.EventBase }

type StartEvent struct{ framework.EventBase }

type StopEvent struct{ framework.EventBase }

type ConfigChangedEvent struct{ framework.EventBase }

type UpdateStatusEvent struct{ framework.EventBase }

type UpgradeCharmEvent struct{ framework.EventBase }

type PreSeriesUpgradeEvent struct{ framework.EventBase }

type PostSeriesUpgradeEvent struct{ framework.EventBase }

type LeaderElectedEvent struct{ framework.EventBase }

type LeaderSettingsChangedEvent struct{ framework.EventBase }

// RelationEvent is the payload common to the four relation lifecycle
// events. RelationName identifies which declared relation the event
// concerns.
type RelationEvent struct {
	framework.EventBase
	RelationName string
}

// Snapshot is part of the framework.Event interface.
func (e *RelationEvent) Snapshot() (map[string]interface{}, error) {
	return map[string]interface{}{"relation-name": e.RelationName}, nil
}

// Restore is part of the framework.Event interface.
func (e *RelationEvent) Restore(snapshot map[string]interface{}) error {
	name, ok := snapshot["relation-name"].(string)
	if !ok {
		return errors.Errorf("relation event snapshot has no relation name")
	}
	e.RelationName = name
	return nil
}

// Relation returns the name of the relation the event concerns,
// letting a handler shared between relation events read the payload
// without switching on the concrete type.
func (e *RelationEvent) Relation() string {
	return e.RelationName
}

type RelationJoinedEvent struct{ RelationEvent }

type RelationChangedEvent struct{ RelationEvent }

type RelationDepartedEvent struct{ RelationEvent }

type RelationBrokenEvent struct{ RelationEvent }

// StorageEvent is the payload common to the two storage lifecycle
// events. StorageName identifies which declared storage the event
// concerns.
type StorageEvent struct {
	framework.EventBase
	StorageName string
}

// Snapshot is part of the framework.Event interface.
func (e *StorageEvent) Snapshot() (map[string]interface{}, error) {
	return map[string]interface{}{"storage-name": e.StorageName}, nil
}

// Restore is part of the framework.Event interface.
func (e *StorageEvent) Restore(snapshot map[string]interface{}) error {
	name, ok := snapshot["storage-name"].(string)
	if !ok {
		return errors.Errorf("storage event snapshot has no storage name")
	}
	e.StorageName = name
	return nil
}

// Storage returns the name of the storage the event concerns.
func (e *StorageEvent) Storage() string {
	return e.StorageName
}

type StorageAttachedEvent struct{ StorageEvent }

type StorageDetachingEvent struct{ StorageEvent }

// lifecycleKinds declares the static events every charm has, in
// enumeration order.
var lifecycleKinds = []struct {
	kind   string
	create func(base framework.EventBase) framework.Event
}{
	{"install", func(b framework.EventBase) framework.Event { return &InstallEvent{b} }},
	{"start", func(b framework.EventBase) framework.Event { return &StartEvent{b} }},
	{"stop", func(b framework.EventBase) framework.Event { return &StopEvent{b} }},
	{"update_status", func(b framework.EventBase) framework.Event { return &UpdateStatusEvent{b} }},
	{"config_changed", func(b framework.EventBase) framework.Event { return &ConfigChangedEvent{b} }},
	{"upgrade_charm", func(b framework.EventBase) framework.Event { return &UpgradeCharmEvent{b} }},
	{"pre_series_upgrade", func(b framework.EventBase) framework.Event { return &PreSeriesUpgradeEvent{b} }},
	{"post_series_upgrade", func(b framework.EventBase) framework.Event { return &PostSeriesUpgradeEvent{b} }},
	{"leader_elected", func(b framework.EventBase) framework.Event { return &LeaderElectedEvent{b} }},
	{"leader_settings_changed", func(b framework.EventBase) framework.Event { return &LeaderSettingsChangedEvent{b} }},
}

// relationActions declares the four relation lifecycle actions in the
// order their events are enumerated for each relation name.
var relationActions = []struct {
	action string
	create func(base framework.EventBase, name string) framework.Event
}{
	{"joined", func(b framework.EventBase, name string) framework.Event {
		return &RelationJoinedEvent{RelationEvent{EventBase: b, RelationName: name}}
	}},
	{"changed", func(b framework.EventBase, name string) framework.Event {
		return &RelationChangedEvent{RelationEvent{EventBase: b, RelationName: name}}
	}},
	{"departed", func(b framework.EventBase, name string) framework.Event {
		return &RelationDepartedEvent{RelationEvent{EventBase: b, RelationName: name}}
	}},
	{"broken", func(b framework.EventBase, name string) framework.Event {
		return &RelationBrokenEvent{RelationEvent{EventBase: b, RelationName: name}}
	}},
}

// storageActions declares the two storage lifecycle actions in the
// order their events are enumerated for each storage name.
var storageActions = []struct {
	action string
	create func(base framework.EventBase, name string) framework.Event
}{
	{"attached", func(b framework.EventBase, name string) framework.Event {
		return &StorageAttachedEvent{StorageEvent{EventBase: b, StorageName: name}}
	}},
	{"detaching", func(b framework.EventBase, name string) framework.Event {
		return &StorageDetachingEvent{StorageEvent{EventBase: b, StorageName: name}}
	}},
}

func lifecycleSource(kind string, create func(framework.EventBase) framework.Event) *framework.EventSource {
	return framework.NewEventSource(kind, func(h framework.Handle, args []string) (framework.Event, error) {
		if len(args) > 0 {
			return nil, errors.Errorf("%q event takes no arguments", kind)
		}
		return create(framework.NewEventBase(h)), nil
	})
}

// namedSource returns a source for a relation or storage scoped event
// kind. The single optional emit argument overrides the declared name,
// which is the default payload.
func namedSource(kind, name string, create func(framework.EventBase, string) framework.Event) *framework.EventSource {
	return framework.NewEventSource(kind, func(h framework.Handle, args []string) (framework.Event, error) {
		if len(args) > 1 {
			return nil, errors.Errorf("%q event takes at most one argument", kind)
		}
		eventName := name
		if len(args) == 1 {
			eventName = args[0]
		}
		return create(framework.NewEventBase(h), eventName), nil
	})
}
