// Package builtin holds the small set of commands the executor runs
// in-process rather than handing to execve — spec.md's Non-goals keep
// the full builtin registry out of scope, but a shell with none at all
// can't even change its own working directory, so this implements the
// handful (:, true, false, echo, cd, pwd, exit, set, export, unset) the core
// control structures and tests actually exercise. Shaped after the
// teacher's interp/builtin.go dispatch, at a fraction of its breadth.
package builtin

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"io"

	"github.com/sushlang/sush/shellstate"
)

// Func runs one builtin with its already-expanded argv[1:], writing to
// the given streams, and returns an exit status plus an error that, when
// non-nil, is always an *ExitError: the executor's (int, error) return
// chain carries it up to cmd/sush's main loop unwound, the same role the
// teacher's own typed exitStatus error plays for its runner.
type Func func(core *shellstate.ShellCore, args []string, stdout, stderr io.Writer) (int, error)

// ExitError unwinds the executor back to the top-level loop, which
// reports Code as the process's exit status instead of continuing the
// read-eval loop.
type ExitError struct{ Code int }

func (e *ExitError) Error() string { return fmt.Sprintf("exit %d", e.Code) }

var table = map[string]Func{
	":":      noop(0),
	"true":   noop(0),
	"false":  noop(1),
	"echo":   echo,
	"cd":     cd,
	"pwd":    pwd,
	"exit":   exit,
	"set":    set,
	"export": export,
	"unset":  unset,
}

// Lookup returns the builtin named name, if one exists.
func Lookup(name string) (Func, bool) {
	fn, ok := table[name]
	return fn, ok
}

func noop(status int) Func {
	return func(*shellstate.ShellCore, []string, io.Writer, io.Writer) (int, error) {
		return status, nil
	}
}

func echo(core *shellstate.ShellCore, args []string, stdout, stderr io.Writer) (int, error) {
	nl := true
	for len(args) > 0 && args[0] == "-n" {
		nl = false
		args = args[1:]
	}
	fmt.Fprint(stdout, strings.Join(args, " "))
	if nl {
		fmt.Fprint(stdout, "\n")
	}
	return 0, nil
}

func cd(core *shellstate.ShellCore, args []string, stdout, stderr io.Writer) (int, error) {
	dir := core.DB.GetParam("HOME")
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		fmt.Fprintln(stderr, "cd: HOME not set")
		return 1, nil
	}
	if !strings.HasPrefix(dir, "/") {
		if cwd := core.DB.GetParam("PWD"); cwd != "" {
			dir = cwd + "/" + dir
		}
	}
	if err := os.Chdir(dir); err != nil {
		fmt.Fprintf(stderr, "cd: %v\n", err)
		return 1, nil
	}
	wd, err := os.Getwd()
	if err == nil {
		core.DB.SetParam("PWD", wd)
	}
	return 0, nil
}

func pwd(core *shellstate.ShellCore, args []string, stdout, stderr io.Writer) (int, error) {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "pwd: %v\n", err)
		return 1, nil
	}
	fmt.Fprintln(stdout, wd)
	return 0, nil
}

func exit(core *shellstate.ShellCore, args []string, stdout, stderr io.Writer) (int, error) {
	code := core.ExitStatus()
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err == nil {
			code = n
		}
	}
	code &= 0xff
	return code, &ExitError{Code: code}
}

// set implements just the `-e`/`-u`/`-f`/... Options toggles and the
// `set -- args...` positional-parameter reassignment form; a real `set`
// also dumps every variable with no arguments, which this skips as
// outside spec.md's scope for the store contract.
func set(core *shellstate.ShellCore, args []string, stdout, stderr io.Writer) (int, error) {
	i := 0
	dashDash := false
	for i < len(args) {
		a := args[i]
		if a == "--" {
			i++
			dashDash = true
			break
		}
		if len(a) < 2 || (a[0] != '-' && a[0] != '+') {
			break
		}
		on := a[0] == '-'
		for _, r := range a[1:] {
			core.Options.Set(string(r), on)
		}
		i++
	}
	if dashDash || i < len(args) {
		core.DB.SetPositionParams(args[i:])
	}
	return 0, nil
}

func export(core *shellstate.ShellCore, args []string, stdout, stderr io.Writer) (int, error) {
	for _, a := range args {
		if eq := strings.IndexByte(a, '='); eq >= 0 {
			core.DB.SetParam(a[:eq], a[eq+1:])
		}
	}
	return 0, nil
}

func unset(core *shellstate.ShellCore, args []string, stdout, stderr io.Writer) (int, error) {
	for _, a := range args {
		core.DB.Unset(a)
	}
	return 0, nil
}
