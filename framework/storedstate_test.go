// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package framework_test

import (
	"path/filepath"

	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/operator/framework"
)

type StoredStateSuite struct {
	testing.IsolationSuite
	path string
}

var _ = gc.Suite(&StoredStateSuite{})

func (s *StoredStateSuite) SetUpTest(c *gc.C) {
	s.IsolationSuite.SetUpTest(c)
	s.path = filepath.Join(c.MkDir(), "notebook.db")
}

// stateful is an owning object that counts its stored-state changes,
// deferring each change event so it can be replayed after a restart.
type stateful struct {
	framework.ObjectBase
	state   *framework.StoredState
	changes int
}

func newStateful(c *gc.C, fw *framework.Framework, key string) *stateful {
	base, err := framework.NewObject(fw, nil, "some-object", key)
	c.Assert(err, jc.ErrorIsNil)
	obj := &stateful{ObjectBase: base}
	obj.state, err = framework.NewStoredState(obj, "state")
	c.Assert(err, jc.ErrorIsNil)
	err = fw.Observe(obj.state.Changed(), framework.HandlerFunc(func(ev framework.Event) error {
		obj.changes++
		ev.Defer()
		return nil
	}))
	c.Assert(err, jc.ErrorIsNil)
	return obj
}

func (s *StoredStateSuite) TestBasicStateStorage(c *gc.C) {
	fw, err := framework.NewFramework(s.path)
	c.Assert(err, jc.ErrorIsNil)
	obj := newStateful(c, fw, "1")

	_, ok := obj.state.Get("foo")
	c.Check(ok, jc.IsFalse)

	c.Assert(obj.state.Set("foo", 41), jc.ErrorIsNil)
	c.Assert(obj.state.Set("foo", 42), jc.ErrorIsNil)
	c.Assert(obj.state.Set("bar", "s"), jc.ErrorIsNil)

	foo, ok := obj.state.Get("foo")
	c.Check(ok, jc.IsTrue)
	c.Check(foo, gc.Equals, 42)
	c.Check(obj.changes, gc.Equals, 3)

	c.Assert(fw.Commit(), jc.ErrorIsNil)

	// This is not committed, and must not be seen after the restart.
	c.Assert(obj.state.Set("foo", 43), jc.ErrorIsNil)

	c.Assert(fw.Close(), jc.ErrorIsNil)

	// The same handle path gets its committed state back.
	fw2, err := framework.NewFramework(s.path)
	c.Assert(err, jc.ErrorIsNil)
	defer func() { c.Check(fw2.Close(), jc.ErrorIsNil) }()
	copied := newStateful(c, fw2, "1")

	foo, ok = copied.state.Get("foo")
	c.Check(ok, jc.IsTrue)
	c.Check(foo, gc.Equals, 42)
	bar, ok := copied.state.Get("bar")
	c.Check(ok, jc.IsTrue)
	c.Check(bar, gc.Equals, "s")

	// No changes observed since construction...
	c.Check(copied.changes, gc.Equals, 0)

	// ...but asking for the deferred events replays them.
	c.Assert(fw2.Reemit(), jc.ErrorIsNil)
	c.Check(copied.changes, gc.Equals, 3)
}

func (s *StoredStateSuite) TestSimpleTypesOnly(c *gc.C) {
	fw, err := framework.NewFramework(s.path)
	c.Assert(err, jc.ErrorIsNil)
	defer func() { c.Check(fw.Close(), jc.ErrorIsNil) }()
	obj := newStateful(c, fw, "1")

	type custom struct{ X int }
	err = obj.state.Set("foo", custom{1})
	c.Check(err, gc.ErrorMatches, `cannot store "foo": value of type framework_test.custom is not a simple type .*`)
	_, ok := obj.state.Get("foo")
	c.Check(ok, jc.IsFalse)

	err = obj.state.Set("list", []interface{}{"a", custom{1}})
	c.Check(err, gc.ErrorMatches, `cannot store "list": .* not a simple type .*`)

	err = obj.state.Set("map", map[string]interface{}{
		"a": map[string]interface{}{"b": "c"},
	})
	c.Check(err, jc.ErrorIsNil)
	c.Check(obj.changes, gc.Equals, 1)
}

func (s *StoredStateSuite) TestDelete(c *gc.C) {
	fw, err := framework.NewFramework(s.path)
	c.Assert(err, jc.ErrorIsNil)
	defer func() { c.Check(fw.Close(), jc.ErrorIsNil) }()
	obj := newStateful(c, fw, "1")

	c.Assert(obj.state.Set("foo", 1), jc.ErrorIsNil)
	c.Assert(obj.state.Delete("foo"), jc.ErrorIsNil)
	_, ok := obj.state.Get("foo")
	c.Check(ok, jc.IsFalse)
	c.Check(obj.changes, gc.Equals, 2)

	// Deleting an absent key emits nothing.
	c.Assert(obj.state.Delete("foo"), jc.ErrorIsNil)
	c.Check(obj.changes, gc.Equals, 2)
}

func (s *StoredStateSuite) TestDistinctNames(c *gc.C) {
	fw, err := framework.NewFramework(s.path)
	c.Assert(err, jc.ErrorIsNil)
	defer func() { c.Check(fw.Close(), jc.ErrorIsNil) }()
	obj := newStateful(c, fw, "1")

	other, err := framework.NewStoredState(obj, "other")
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(other.Set("foo", 1), jc.ErrorIsNil)
	_, ok := obj.state.Get("foo")
	c.Check(ok, jc.IsFalse)

	// The same name under the same owner is a duplicate handle.
	_, err = framework.NewStoredState(obj, "state")
	c.Check(err, jc.ErrorIs, framework.ErrDuplicateHandle)
}
