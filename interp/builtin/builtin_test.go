package builtin

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/sushlang/sush/shellstate"
)

func TestLookupKnownAndUnknown(t *testing.T) {
	c := qt.New(t)
	_, ok := Lookup("echo")
	c.Assert(ok, qt.IsTrue)
	_, ok = Lookup("definitely-not-a-builtin")
	c.Assert(ok, qt.IsFalse)
}

func TestEcho(t *testing.T) {
	c := qt.New(t)
	var out, errb bytes.Buffer
	status, err := echo(shellstate.New(), []string{"hello", "world"}, &out, &errb)
	c.Assert(err, qt.IsNil)
	c.Assert(status, qt.Equals, 0)
	c.Assert(out.String(), qt.Equals, "hello world\n")
}

func TestEchoDashN(t *testing.T) {
	c := qt.New(t)
	var out, errb bytes.Buffer
	_, err := echo(shellstate.New(), []string{"-n", "no-newline"}, &out, &errb)
	c.Assert(err, qt.IsNil)
	c.Assert(out.String(), qt.Equals, "no-newline")
}

func TestExitDefaultsToLastStatus(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	core.SetExitStatus(5)
	var out, errb bytes.Buffer
	status, err := exit(core, nil, &out, &errb)
	c.Assert(status, qt.Equals, 5)
	var exitErr *ExitError
	c.Assert(err, qt.ErrorAs, &exitErr)
	c.Assert(exitErr.Code, qt.Equals, 5)
}

func TestExitExplicitCode(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	var out, errb bytes.Buffer
	status, err := exit(core, []string{"200"}, &out, &errb)
	c.Assert(status, qt.Equals, 200)
	var exitErr *ExitError
	c.Assert(err, qt.ErrorAs, &exitErr)
}

func TestExitMasksToByte(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	var out, errb bytes.Buffer
	status, _ := exit(core, []string{"257"}, &out, &errb)
	c.Assert(status, qt.Equals, 1)
}

func TestSetToggleOption(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	var out, errb bytes.Buffer
	_, err := set(core, []string{"-e"}, &out, &errb)
	c.Assert(err, qt.IsNil)
	c.Assert(core.Options.Query("errexit"), qt.IsTrue)
}

func TestSetPositionalArgs(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	var out, errb bytes.Buffer
	_, err := set(core, []string{"--", "a", "b", "c"}, &out, &errb)
	c.Assert(err, qt.IsNil)
	c.Assert(core.DB.GetPositionParams(), qt.DeepEquals, []string{"a", "b", "c"})
}

func TestExportAssignsParam(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	var out, errb bytes.Buffer
	_, err := export(core, []string{"FOO=bar"}, &out, &errb)
	c.Assert(err, qt.IsNil)
	c.Assert(core.DB.GetParam("FOO"), qt.Equals, "bar")
}

func TestUnsetRemovesParam(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	core.DB.SetParam("FOO", "bar")
	var out, errb bytes.Buffer
	_, err := unset(core, []string{"FOO"}, &out, &errb)
	c.Assert(err, qt.IsNil)
	c.Assert(core.DB.HasValue("FOO"), qt.IsFalse)
}
