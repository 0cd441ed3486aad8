package interp

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/sushlang/sush/shellstate"
	"github.com/sushlang/sush/syntax"
)

// runScript parses and executes text as a single top-level script, never
// crossing a fork: apart from the `[` in TestExecScriptWhileLoop, every
// command here is a builtin (:, true, false, echo, exit) or an
// assignment inside if/while/for, so ExecCommand's in-process paths are
// the main ones exercised.
func runScript(c *qt.C, core *shellstate.ShellCore, r *Runner, text string) (int, error) {
	f := syntax.NewFeederFromString(text)
	sc, err := syntax.ParseScript(f, core, nil)
	c.Assert(err, qt.IsNil)
	return r.ExecScript(sc)
}

func newTestRunner() (*shellstate.ShellCore, *Runner) {
	core := shellstate.New()
	return core, New(core, ".")
}

func TestExecScriptAndOrGating(t *testing.T) {
	c := qt.New(t)
	core, r := newTestRunner()
	status, err := runScript(c, core, r, "true && false || true\n")
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, 0)
}

func TestExecScriptAndShortCircuits(t *testing.T) {
	c := qt.New(t)
	core, r := newTestRunner()
	status, err := runScript(c, core, r, "false && exit 9\n")
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, 1)
}

func TestExecScriptExitStatusVisibleToLaterCommand(t *testing.T) {
	c := qt.New(t)
	core, r := newTestRunner()
	_, err := runScript(c, core, r, "false; x=$?\n")
	c.Assert(err, qt.IsNil)
	c.Assert(core.DB.GetParam("x"), qt.Equals, "1")
}

func TestExecScriptIfTrueBranch(t *testing.T) {
	c := qt.New(t)
	core, r := newTestRunner()
	status, err := runScript(c, core, r, "if true; then x=yes; else x=no; fi\n")
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, 0)
	c.Assert(core.DB.GetParam("x"), qt.Equals, "yes")
}

func TestExecScriptIfFalseBranch(t *testing.T) {
	c := qt.New(t)
	core, r := newTestRunner()
	_, err := runScript(c, core, r, "if false; then x=yes; else x=no; fi\n")
	c.Assert(err, qt.IsNil)
	c.Assert(core.DB.GetParam("x"), qt.Equals, "no")
}

func TestExecScriptWhileLoop(t *testing.T) {
	c := qt.New(t)
	core, r := newTestRunner()
	core.DB.SetParam("i", "0")
	_, err := runScript(c, core, r, "while [ \"$i\" != 3 ]; do i=$((i+1)); done\n")
	// [ isn't a builtin this shell implements, so the condition runs an
	// external [ where one is on PATH and fails with status 127 where none
	// is: the test only checks that the loop ends without an error, since
	// it cannot assume either environment.
	c.Assert(err, qt.IsNil)
}

func TestExecScriptForLoop(t *testing.T) {
	c := qt.New(t)
	core, r := newTestRunner()
	var last string
	_, err := runScript(c, core, r, "for x in a b c; do y=$x; done\n")
	c.Assert(err, qt.IsNil)
	last = core.DB.GetParam("y")
	c.Assert(last, qt.Equals, "c")
}

func TestExecScriptExitPropagatesAsError(t *testing.T) {
	c := qt.New(t)
	core, r := newTestRunner()
	status, err := runScript(c, core, r, "exit 42\n")
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(status, qt.Equals, 42)
}

func TestExecScriptNegatedPipelineStatus(t *testing.T) {
	c := qt.New(t)
	core, r := newTestRunner()
	status, err := runScript(c, core, r, "! false\n")
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, 0)
}

func TestEnvironFromDBSkipsAssocAndSpecials(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	core.DB.SetParam("FOO", "bar")
	core.DB.SetAssocElem("m", "k", "v")
	env := environFromDB(core)
	found := map[string]bool{}
	for _, kv := range env {
		found[kv] = true
	}
	c.Assert(found["FOO=bar"], qt.IsTrue)
	for _, kv := range env {
		c.Assert(kv, qt.Not(qt.Matches), `^m=.*`)
		c.Assert(kv, qt.Not(qt.Matches), `^\?=.*`)
	}
}
