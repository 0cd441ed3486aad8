// Command sush is a POSIX-ish shell built on top of package interp.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/sushlang/sush/interp"
	"github.com/sushlang/sush/interp/builtin"
	"github.com/sushlang/sush/shellstate"
	"github.com/sushlang/sush/syntax"
)

var (
	command = flag.String("c", "", "command to execute")
	version = flag.Bool("version", false, "print version and exit")
)

const versionString = "sush, version 0.1.0"

func main() { os.Exit(main1()) }

// main1 holds the whole CLI entry point as a plain function returning an
// exit status, so it can be driven directly from a testscript harness
// (github.com/rogpeppe/go-internal/testscript.RunMain) without actually
// calling os.Exit inside the test process — the same split the teacher's
// cmd/shfmt/main_test.go drives its own main1 through.
func main1() int {
	if script, positional, ok := interp.IsSubshellReexec(os.Args[1:]); ok {
		return runSubshell(script, positional)
	}

	flag.Parse()
	if *version {
		fmt.Println(versionString)
		return 0
	}

	core := shellstate.New()
	core.DB.SetParam("0", progName())
	core.DB.SetPositionParams(flag.Args())

	installSigint(core)

	runner := interp.New(core, cwd())

	switch {
	case *command != "":
		return runText(runner, core, *command)
	case flag.NArg() > 0:
		return runFile(runner, core, flag.Arg(0))
	case term.IsTerminal(int(os.Stdin.Fd())):
		return runInteractive(runner, core)
	default:
		return runStream(runner, core, os.Stdin, false)
	}
}

func progName() string {
	if len(os.Args) > 0 {
		return os.Args[0]
	}
	return "sush"
}

func cwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

func installSigint(core *shellstate.ShellCore) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT)
	go func() {
		for range ch {
			core.SetSigint(true)
		}
	}()
}

// runSubshell is entered instead of the normal REPL when os.Args carries
// interp.SubshellFlag: a pipeline stage, a `( ... )`, or a command
// substitution re-executed this same binary to get fork-like isolation
// (see interp/reexec.go). It runs its script body once to completion and
// returns the exit status directly, with no prompt and no further input.
func runSubshell(script string, positional []string) int {
	core := shellstate.New()
	core.InitializeAsSubshell(os.Getpid())
	core.DB.SetPositionParams(positional)
	runner := interp.New(core, cwd())

	f := syntax.NewFeederFromString(script)
	sc, err := syntax.ParseScript(f, core, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	status, err := runner.ExecScript(sc)
	var exitErr *builtin.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return status
}

func runText(runner *interp.Runner, core *shellstate.ShellCore, text string) int {
	f := syntax.NewFeederFromString(text)
	return driveScript(runner, core, f)
}

func runFile(runner *interp.Runner, core *shellstate.ShellCore, path string) int {
	file, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sush: %v\n", err)
		return 127
	}
	defer file.Close()
	return runStream(runner, core, file, false)
}

func runStream(runner *interp.Runner, core *shellstate.ShellCore, r *os.File, interactive bool) int {
	src := syntax.NewReaderSource(r)
	f := syntax.NewFeeder(src, "", "")
	return driveLoop(runner, core, f, interactive)
}

func runInteractive(runner *interp.Runner, core *shellstate.ShellCore) int {
	src := syntax.NewReaderSource(os.Stdin)
	f := syntax.NewFeeder(src, "$ ", "> ")
	return driveLoop(runner, core, f, true)
}

// driveLoop pulls one physical line at a time and parses/executes
// whatever complete top-level script that buffer yields, which is
// exactly one unbroken top-level command unless the line opens a nested
// construct (if/while/{ ... }) that keeps asking the same Feeder for
// continuation lines until it closes (spec.md §4.1). This is the same
// shape whether the line source is a terminal or a plain file.
func driveLoop(runner *interp.Runner, core *shellstate.ShellCore, f *syntax.Feeder, interactive bool) int {
	status := 0
	for {
		core.ResetSigint()
		if err := f.FeedLine(core); err != nil {
			if ie, ok := err.(*syntax.InputError); ok && ie.Kind == syntax.Interrupt {
				fmt.Fprintln(os.Stderr)
				continue
			}
			break
		}
		var exited bool
		status, exited = execOne(runner, core, f, interactive)
		if exited {
			return status
		}
	}
	return status
}

func driveScript(runner *interp.Runner, core *shellstate.ShellCore, f *syntax.Feeder) int {
	status, _ := execOne(runner, core, f, false)
	return status
}

func execOne(runner *interp.Runner, core *shellstate.ShellCore, f *syntax.Feeder, interactive bool) (status int, exited bool) {
	sc, err := syntax.ParseScript(f, core, nil)
	if err != nil {
		if ie, ok := err.(*syntax.InputError); ok && ie.Kind == syntax.Eof {
			return core.ExitStatus(), true
		}
		if syntax.IsNeedMoreInput(err) {
			err = &syntax.ParseError{Kind: syntax.UnexpectedEOF}
		}
		fmt.Fprintln(os.Stderr, "sush: "+strings.TrimSpace(err.Error()))
		core.SetExitStatus(2)
		return 2, !interactive
	}
	status, err = runner.ExecScript(sc)
	var exitErr *builtin.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if core.Sigint() {
		status = 130
	}
	return status, false
}
