package expand

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/sushlang/sush/shellstate"
)

func TestArithPrecedence(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	cases := map[string]int{
		"2+3*4":      14,
		"(2+3)*4":    20,
		"10/3":       3,
		"10%3":       1,
		"2**10":      1024,
		"1 && 0":     0,
		"1 || 0":     1,
		"!0":         1,
		"5 > 3 ? 1:0": 1,
		"1 << 4":     16,
	}
	for expr, want := range cases {
		got, err := Arith(core, expr)
		c.Assert(err, qt.IsNil, qt.Commentf("expr %q", expr))
		c.Assert(got, qt.Equals, want, qt.Commentf("expr %q", expr))
	}
}

func TestArithVariableLookup(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	core.DB.SetParam("x", "5")
	got, err := Arith(core, "x+1")
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, 6)
}

func TestArithUndefinedVariableIsZero(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	got, err := Arith(core, "undefined+1")
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, 1)
}

func TestArithSyntaxError(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	_, err := Arith(core, "2 +")
	c.Assert(err, qt.Not(qt.IsNil))
}
