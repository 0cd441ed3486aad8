package shellstate

import (
	"sort"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestScalarParam(t *testing.T) {
	c := qt.New(t)
	db := NewDB()
	c.Assert(db.GetParam("x"), qt.Equals, "")
	db.SetParam("x", "1")
	c.Assert(db.GetParam("x"), qt.Equals, "1")
	c.Assert(db.HasValue("x"), qt.IsTrue)
	c.Assert(db.HasValue("y"), qt.IsFalse)
}

func TestIndexedArray(t *testing.T) {
	c := qt.New(t)
	db := NewDB()
	db.SetArrayElem("arr", 0, "a")
	db.SetArrayElem("arr", 2, "c")
	c.Assert(db.IsArray("arr"), qt.IsTrue)
	c.Assert(db.GetArrayAll("arr"), qt.DeepEquals, []string{"a", "c"})
	c.Assert(db.GetIndexesAll("arr"), qt.DeepEquals, []string{"0", "2"})
	elem, err := db.GetArrayElem("arr", "2")
	c.Assert(err, qt.IsNil)
	c.Assert(elem, qt.Equals, "c")
}

func TestAssocArray(t *testing.T) {
	c := qt.New(t)
	db := NewDB()
	db.SetAssocElem("m", "k", "v")
	c.Assert(db.IsAssoc("m"), qt.IsTrue)
	elem, err := db.GetArrayElem("m", "k")
	c.Assert(err, qt.IsNil)
	c.Assert(elem, qt.Equals, "v")

	_, err = db.GetArrayElem("m", "missing")
	c.Assert(err, qt.ErrorMatches, ".*no such index")
}

func TestPositionParams(t *testing.T) {
	c := qt.New(t)
	db := NewDB()
	db.SetPositionParams([]string{"a", "b c", "d"})
	c.Assert(db.GetParam("#"), qt.Equals, "3")
	c.Assert(db.GetParam("1"), qt.Equals, "a")
	c.Assert(db.GetParam("2"), qt.Equals, "b c")
	c.Assert(db.GetPositionParams(), qt.DeepEquals, []string{"a", "b c", "d"})
}

func TestCloneIsIndependent(t *testing.T) {
	c := qt.New(t)
	db := NewDB()
	db.SetParam("x", "1")
	clone := db.Clone()
	clone.SetParam("x", "2")
	c.Assert(db.GetParam("x"), qt.Equals, "1")
	c.Assert(clone.GetParam("x"), qt.Equals, "2")
}

func TestUnsetAndNames(t *testing.T) {
	c := qt.New(t)
	db := NewDB()
	db.SetParam("x", "1")
	db.SetParam("y", "2")
	c.Assert(db.HasValue("x"), qt.IsTrue)
	names := db.Names()
	sort.Strings(names)
	c.Assert(names, qt.DeepEquals, []string{"x", "y"})

	db.Unset("x")
	c.Assert(db.HasValue("x"), qt.IsFalse)
	c.Assert(db.GetParam("x"), qt.Equals, "")
	c.Assert(db.Names(), qt.DeepEquals, []string{"y"})
}

func TestOptionsLetterAlias(t *testing.T) {
	c := qt.New(t)
	o := NewOptions()
	c.Assert(o.Query("errexit"), qt.IsFalse)
	o.Set("e", true)
	c.Assert(o.Query("errexit"), qt.IsTrue)
	c.Assert(o.Query("e"), qt.IsTrue)
}
