package interp

import (
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sushlang/sush/shellstate"
	"github.com/sushlang/sush/syntax"
)

// SubshellFlag is the argument cmd/sush recognizes on startup to mean
// "run the script named by ScriptEnvVar as a subshell body, then exit
// with its status", rather than starting the interactive/script REPL.
//
// This whole mechanism is a deliberate adaptation rather than anything
// lifted from a single pack file: POSIX fork() has no equivalent once a
// Go process has more than one OS thread, which the runtime itself
// spawns, so the fork path spec.md §4.6/§9 describes (subshells,
// pipeline stages, command substitution) is realized here as a real
// re-executed child process instead. See DESIGN.md's interp/reexec.go
// entry for the full rationale.
const SubshellFlag = "--sush-subshell"

// ScriptEnvVar carries the subshell's script text; PositionalEnvVar
// carries a NUL-joined snapshot of its positional parameters. Both are
// read back by cmd/sush/main.go when SubshellFlag is present.
const (
	ScriptEnvVar     = "SUSH_SUBSHELL_SCRIPT"
	PositionalEnvVar = "SUSH_SUBSHELL_POSITIONAL"
)

// spawnSubshell re-executes the current binary to run body in a fresh
// process, wiring stdin/stdout/stderr to the given streams and returning
// its exit status. The child gets its own copy of every variable (the
// parent's store, passed as its environment) and its own positional
// parameters, but any
// assignment it makes is invisible to the parent once it exits — exactly
// the isolation a real fork would have given for free.
func spawnSubshell(core *shellstate.ShellCore, body *syntax.Script, dir string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	cmd := exec.Command(os.Args[0], SubshellFlag)
	cmd.Dir = dir
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = append(environFromDB(core),
		ScriptEnvVar+"="+body.Raw,
		PositionalEnvVar+"="+strings.Join(core.DB.GetPositionParams(), "\x00"),
	)

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if ee, ok := err.(*exec.ExitError); ok {
		return ee.ExitCode(), nil
	}
	return 127, err
}

// IsSubshellReexec reports whether args names the subshell re-exec flag,
// and if so returns the script body and positional parameters cmd/sush
// should run instead of starting its normal REPL.
func IsSubshellReexec(args []string) (script string, positional []string, ok bool) {
	if len(args) < 1 || args[0] != SubshellFlag {
		return "", nil, false
	}
	script = os.Getenv(ScriptEnvVar)
	if p := os.Getenv(PositionalEnvVar); p != "" {
		positional = strings.Split(p, "\x00")
	}
	return script, positional, true
}
