// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package charm defines the event families a charm responds to: the
// static lifecycle events every charm has, and the relation- and
// storage-scoped families synthesized from the charm's metadata at
// construction time.
package charm

import (
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/juju/operator/framework"
)

var logger = loggo.GetLogger("juju.operator.charm")

// CharmBase is the root owning object whose lifecycle the framework
// manages. Concrete charms embed it, observe the events they care
// about during construction, and are reconstructed identically on
// every process invocation.
type CharmBase struct {
	framework.ObjectBase
	meta *Meta
	on   *framework.ObjectEvents
}

// NewCharmBase builds the charm's events container from meta: every
// static lifecycle event, plus one event per (relation name, action)
// and (storage name, action) pair declared in the metadata, in
// deterministic order. Construction never emits an event; a nil meta
// means only the static events are defined.
func NewCharmBase(fw *framework.Framework, key string, meta *Meta) (*CharmBase, error) {
	if meta == nil {
		meta = &Meta{}
	}
	base, err := framework.NewObject(fw, nil, "charm", key)
	if err != nil {
		return nil, errors.Trace(err)
	}
	c := &CharmBase{ObjectBase: base, meta: meta}
	c.on = framework.NewObjectEvents(c)

	for _, lk := range lifecycleKinds {
		if err := c.on.DefineEvent(lifecycleSource(lk.kind, lk.create)); err != nil {
			return nil, errors.Trace(err)
		}
	}
	for _, name := range meta.RelationNames() {
		for _, ra := range relationActions {
			kind := name + "_relation_" + ra.action
			if err := c.on.DefineEvent(namedSource(kind, name, ra.create)); err != nil {
				return nil, errors.Annotatef(err, "defining relation events for %q", name)
			}
		}
		logger.Debugf("defined relation events for %q", name)
	}
	for _, name := range meta.StorageNames() {
		for _, sa := range storageActions {
			kind := name + "_storage_" + sa.action
			if err := c.on.DefineEvent(namedSource(kind, name, sa.create)); err != nil {
				return nil, errors.Annotatef(err, "defining storage events for %q", name)
			}
		}
		logger.Debugf("defined storage events for %q", name)
	}
	return c, nil
}

// On returns the charm's events container, for observation, named
// lookup and ordered enumeration.
func (c *CharmBase) On() *framework.ObjectEvents {
	return c.on
}

// Meta returns the metadata the charm was constructed with.
func (c *CharmBase) Meta() *Meta {
	return c.meta
}

// RunHook dispatches the invocation's primary event: the hook kind
// selected by the external runtime is resolved to a bound event,
// deferred events from earlier invocations are redelivered, and then
// the primary event is emitted with the given arguments. Resolution
// failure returns an error satisfying errors.Is against
// framework.ErrUnknownEventKind before the notebook is touched.
func (c *CharmBase) RunHook(kind string, args ...string) error {
	bound, err := c.on.Event(kind)
	if err != nil {
		return errors.Trace(err)
	}
	if err := c.Framework().Reemit(); err != nil {
		return errors.Annotate(err, "redelivering deferred events")
	}
	return errors.Trace(bound.Emit(args...))
}
