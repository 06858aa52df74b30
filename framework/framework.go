// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package framework implements the event/observer engine backing
// charm-style components that are re-invoked as short-lived processes.
// Objects are addressed by hierarchical handles, observers are
// registered against bound events and notified synchronously in
// registration order, and events whose handling was deferred are
// persisted in the notebook and replayed at the start of the next
// invocation.
package framework

import (
	"fmt"
	"strconv"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"github.com/juju/operator/framework/notebook"
)

var logger = loggo.GetLogger("juju.operator.framework")

// frameworkDataPath is the notebook key under which the framework
// keeps its own bookkeeping, and a reserved object handle path.
const frameworkDataPath = "framework"

// Object is anything with a stable handle registered against a
// framework. Implementations embed ObjectBase.
type Object interface {
	Handle() Handle
	Framework() *Framework
}

// ObjectBase supplies the Object behaviour for stateful components.
type ObjectBase struct {
	framework *Framework
	handle    Handle
}

// NewObject registers a handle of the given kind and key under parent
// (nil for a root object) and returns the ObjectBase to embed. The
// returned error satisfies errors.Is against ErrDuplicateHandle if a
// live object already registered the same path.
func NewObject(fw *Framework, parent *Handle, kind, key string) (ObjectBase, error) {
	if !validKind(kind) {
		return ObjectBase{}, errors.Errorf("object kind %q not valid", kind)
	}
	handle := NewHandle(parent, kind, key)
	if err := fw.registerObject(handle); err != nil {
		return ObjectBase{}, errors.Trace(err)
	}
	return ObjectBase{framework: fw, handle: handle}, nil
}

// Handle is part of the Object interface.
func (o *ObjectBase) Handle() Handle {
	return o.handle
}

// Framework is part of the Object interface.
func (o *ObjectBase) Framework() *Framework {
	return o.framework
}

// Handler receives events. It is the capability an observer registers:
// one method, one event, an error aborting the dispatch chain.
type Handler interface {
	HandleEvent(event Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(event Event) error

// HandleEvent implements Handler.
func (f HandlerFunc) HandleEvent(event Event) error {
	return f(event)
}

// Framework ties together the live object graph, the observer
// registry, and the notebook that survives between process
// invocations. Exactly one Framework is active per invocation, and
// all dispatch runs on the caller's goroutine.
type Framework struct {
	store      *notebook.Notebook
	objects    set.Strings
	observers  map[string][]Handler
	types      map[string]RestoreFunc
	eventCount int
}

// NewFramework opens (creating if absent) the notebook at path and
// returns a framework ready for object construction and observation.
func NewFramework(path string) (*Framework, error) {
	store, err := notebook.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "opening notebook at %q", path)
	}
	f := &Framework{
		store:     store,
		objects:   set.NewStrings(frameworkDataPath),
		observers: make(map[string][]Handler),
		types:     make(map[string]RestoreFunc),
	}
	data, err := store.Load(frameworkDataPath)
	if err != nil && !errors.Is(err, notebook.ErrNoSnapshot) {
		_ = store.Close()
		return nil, errors.Trace(err)
	}
	if count, ok := data["event-count"].(int); ok {
		f.eventCount = count
	}
	return f, nil
}

// Commit makes every save and drop performed since the last commit
// durable. A crash between commits never exposes partial state.
func (f *Framework) Commit() error {
	return errors.Trace(f.store.Commit())
}

// Close discards uncommitted notebook changes and releases the store.
func (f *Framework) Close() error {
	return errors.Trace(f.store.Close())
}

func (f *Framework) registerObject(handle Handle) error {
	path := handle.Path()
	if f.objects.Contains(path) {
		return fmt.Errorf("object handle %q already registered%w", path, errors.Hide(ErrDuplicateHandle))
	}
	f.objects.Add(path)
	return nil
}

// RegisterType records how to recreate events of the given kind
// emitted by the object at parent, so deferred events found in the
// notebook can be redelivered. Observe registers types automatically;
// explicit registration is only needed for events that may sit in the
// notebook unobserved.
func (f *Framework) RegisterType(parent *Handle, kind string, restore RestoreFunc) {
	identity := kind
	if parent != nil {
		identity = parent.Path() + "/" + kind
	}
	f.types[identity] = restore
}

// Observe appends handler to the ordered observer list for the bound
// event. Observing the same pair again adds a second entry; callers
// re-register exactly once per construction, which the one-constructor-
// run-per-process model guarantees. The returned error satisfies
// errors.Is against ErrInvalidObserver for a nil handler.
func (f *Framework) Observe(bound BoundEvent, handler Handler) error {
	if handler == nil {
		return fmt.Errorf(
			"observer for %q is nil%w", bound.identity(), errors.Hide(ErrInvalidObserver))
	}
	identity := bound.identity()
	f.observers[identity] = append(f.observers[identity], handler)
	f.types[identity] = bound.source.restore
	return nil
}

// SaveSnapshot persists the object's current snapshot under its
// handle, overwriting any previous one.
func (f *Framework) SaveSnapshot(handle Handle, data map[string]interface{}) error {
	return errors.Trace(f.store.Save(handle.Path(), data))
}

// LoadSnapshot returns the snapshot saved under handle. The returned
// error satisfies errors.Is against notebook.ErrNoSnapshot when none
// exists.
func (f *Framework) LoadSnapshot(handle Handle) (map[string]interface{}, error) {
	data, err := f.store.Load(handle.Path())
	if err != nil {
		return nil, errors.Trace(err)
	}
	return data, nil
}

// DropSnapshot removes the snapshot saved under handle, if any.
func (f *Framework) DropSnapshot(handle Handle) error {
	return errors.Trace(f.store.Drop(handle.Path()))
}

// emit persists the event and delivers it through the same path used
// for redelivery, so the payload is snapshotted and restored before a
// handler ever sees it.
func (f *Framework) emit(b BoundEvent, args []string) error {
	f.eventCount++
	key := strconv.Itoa(f.eventCount)
	handle := b.emitter.Handle().Child(b.source.kind, key)
	event, err := b.source.create(handle, args)
	if err != nil {
		return errors.Annotatef(err, "emitting %q", b.Kind())
	}
	if err := f.store.Save(frameworkDataPath, map[string]interface{}{
		"event-count": f.eventCount,
	}); err != nil {
		return errors.Trace(err)
	}
	snapshot, err := event.Snapshot()
	if err != nil {
		return errors.Annotatef(err, "snapshotting %q event", b.Kind())
	}
	path := handle.Path()
	if err := f.store.Save(path, snapshot); err != nil {
		return errors.Trace(err)
	}
	if err := f.store.QueueNotice(path); err != nil {
		return errors.Trace(err)
	}
	f.types[b.identity()] = b.source.restore
	logger.Tracef("emitting %q", path)
	return f.reemitSingle(path)
}

// Reemit redelivers every deferred event still recorded in the
// notebook, oldest first. It must run after the owning objects have
// re-registered their observers and before the invocation's primary
// event is emitted.
func (f *Framework) Reemit() error {
	notices, err := f.store.Notices()
	if err != nil {
		return errors.Trace(err)
	}
	for _, path := range notices {
		if err := f.reemitSingle(path); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

func (f *Framework) reemitSingle(path string) error {
	handle, err := ParseHandle(path)
	if err != nil {
		return errors.Trace(err)
	}
	identity := handle.Kind()
	if parent := handle.Parent(); parent != nil {
		identity = parent.Path() + "/" + handle.Kind()
	}
	restore, ok := f.types[identity]
	if !ok {
		// The event type is gone for good and nobody observes it.
		logger.Debugf("dropping %q: no event type registered for %q", path, identity)
		return errors.Trace(f.forget(path))
	}
	snapshot, err := f.store.Load(path)
	if errors.Is(err, notebook.ErrNoSnapshot) {
		return errors.Trace(f.store.DropNotice(path))
	} else if err != nil {
		return errors.Trace(err)
	}
	event, err := restore(handle, snapshot)
	if err != nil {
		return errors.Trace(err)
	}
	for _, handler := range f.observers[identity] {
		if err := handler.HandleEvent(event); err != nil {
			return errors.Trace(err)
		}
	}
	if event.Deferred() {
		logger.Debugf("deferred %q", path)
		return nil
	}
	return errors.Trace(f.forget(path))
}

func (f *Framework) forget(path string) error {
	if err := f.store.Drop(path); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(f.store.DropNotice(path))
}
