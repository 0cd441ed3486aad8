package interp

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/sushlang/sush/expand"
	"github.com/sushlang/sush/shellstate"
	"github.com/sushlang/sush/syntax"
)

func redirectTo(path string, op syntax.RedirectOp) *syntax.Redirect {
	return &syntax.Redirect{Op: op, Word: &syntax.Word{Raw: path, Parts: []syntax.Subword{&syntax.Lit{Value: path}}}}
}

// TestConnectRedirectsRoundTrips dup2's the real process fd 1 away to a
// temp file and back, the no-fork path execInProcess relies on for
// builtins and compound commands — so this writes through os.Stdout
// itself rather than any virtual stream, and checks restoreRedirects
// leaves the test binary's own stdout usable afterward.
func TestConnectRedirectsRoundTrips(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	core := shellstate.New()
	cfg := &expand.Config{}

	saved, err := connectRedirects(core, cfg, []*syntax.Redirect{redirectTo(path, syntax.RedirOut)})
	c.Assert(err, qt.IsNil)
	fmt.Fprint(os.Stdout, "redirected\n")
	restoreRedirects(saved)

	got, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(string(got), qt.Equals, "redirected\n")

	// fd 1 must still work normally for anything running after restore.
	_, err = os.Stdout.Stat()
	c.Assert(err, qt.IsNil)
}

func TestConnectRedirectsAppend(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	c.Assert(os.WriteFile(path, []byte("first\n"), 0644), qt.IsNil)
	core := shellstate.New()
	cfg := &expand.Config{}

	saved, err := connectRedirects(core, cfg, []*syntax.Redirect{redirectTo(path, syntax.RedirAppend)})
	c.Assert(err, qt.IsNil)
	fmt.Fprint(os.Stdout, "second\n")
	restoreRedirects(saved)

	got, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(string(got), qt.Equals, "first\nsecond\n")
}

func TestOpenRedirectHeredocBody(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	cfg := &expand.Config{}
	rd := &syntax.Redirect{Op: syntax.RedirHeredoc, HeredocBody: "line1\nline2\n"}
	f, err := openRedirect(core, cfg, rd)
	c.Assert(err, qt.IsNil)
	defer f.Close()
	buf := make([]byte, 64)
	n, _ := f.Read(buf)
	c.Assert(string(buf[:n]), qt.Equals, "line1\nline2\n")
}

func TestOpenRedirectHereString(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	cfg := &expand.Config{}
	rd := &syntax.Redirect{Op: syntax.RedirHereString, Word: &syntax.Word{Raw: "hi", Parts: []syntax.Subword{&syntax.Lit{Value: "hi"}}}}
	f, err := openRedirect(core, cfg, rd)
	c.Assert(err, qt.IsNil)
	defer f.Close()
	buf := make([]byte, 64)
	n, _ := f.Read(buf)
	c.Assert(string(buf[:n]), qt.Equals, "hi\n")
}
