// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package framework_test

import (
	"github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/operator/framework"
)

type HandleSuite struct {
	testing.IsolationSuite
}

var _ = gc.Suite(&HandleSuite{})

func (s *HandleSuite) TestPath(c *gc.C) {
	root := framework.NewHandle(nil, "root", "")
	keyed := framework.NewHandle(nil, "root", "1")
	for i, t := range []struct {
		handle framework.Handle
		path   string
	}{
		{framework.NewHandle(nil, "root", ""), "root"},
		{framework.NewHandle(nil, "root", "1"), "root[1]"},
		{root.Child("child", ""), "root/child"},
		{keyed.Child("child", "2"), "root[1]/child[2]"},
		{keyed.Child("child", "2").Child("grand", "3"), "root[1]/child[2]/grand[3]"},
	} {
		c.Logf("test %d: %q", i, t.path)
		c.Check(t.handle.Path(), gc.Equals, t.path)
		c.Check(t.handle.String(), gc.Equals, t.path)

		parsed, err := framework.ParseHandle(t.path)
		c.Assert(err, jc.ErrorIsNil)
		c.Check(parsed.Path(), gc.Equals, t.path)
	}
}

func (s *HandleSuite) TestKeyEscaping(c *gc.C) {
	h := framework.NewHandle(nil, "root", `a/b[c]\d`)
	path := h.Path()
	c.Check(path, gc.Equals, `root[a\/b\[c\]\\d]`)

	parsed, err := framework.ParseHandle(path)
	c.Assert(err, jc.ErrorIsNil)
	c.Check(parsed.Key(), gc.Equals, `a/b[c]\d`)
	c.Check(parsed.Path(), gc.Equals, path)
}

func (s *HandleSuite) TestParseMalformed(c *gc.C) {
	for i, path := range []string{
		"",
		"/",
		"root/",
		"/root",
		"root//child",
		"root[]",
		"root[1",
		"root[1]x",
		"root[1]/",
		"1root",
		`root[a\`,
	} {
		c.Logf("test %d: %q", i, path)
		_, err := framework.ParseHandle(path)
		c.Check(err, jc.ErrorIs, framework.ErrMalformedHandle)
	}
}

func (s *HandleSuite) TestParentLinks(c *gc.C) {
	h, err := framework.ParseHandle("root[1]/child[2]")
	c.Assert(err, jc.ErrorIsNil)
	c.Check(h.Kind(), gc.Equals, "child")
	c.Check(h.Key(), gc.Equals, "2")
	parent := h.Parent()
	c.Assert(parent, gc.NotNil)
	c.Check(parent.Path(), gc.Equals, "root[1]")
	c.Check(parent.Parent(), gc.IsNil)
}
