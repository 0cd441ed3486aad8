// Package interp implements the tree-walking executor spec.md §3/§4.6
// describes: it forks or runs in place depending on the command, wires
// pipes and redirections, and performs the word pipeline (package expand)
// before handing argv to execve. Go cannot fork() a multi-threaded
// process in place, so the "fork path" is realized as a self-reexec of
// the current binary — see reexec.go and DESIGN.md for the rationale.
package interp

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/sushlang/sush/expand"
	"github.com/sushlang/sush/interp/builtin"
	"github.com/sushlang/sush/shellstate"
	"github.com/sushlang/sush/syntax"
)

// Runner ties a ShellCore to the word-expansion Config it drives command
// substitution through; it operates on the real process's stdio
// descriptors directly rather than threading virtual streams through
// every call, since a command needing its own isolated stdio is always
// spawned as its own reexec'd process (see reexec.go) — the
// same way a real shell only juggles fds across a fork, never within one
// process.
type Runner struct {
	Core *shellstate.ShellCore
	Cfg  *expand.Config
	Dir  string
}

// New returns a Runner wired for command substitution via spawnSubshell:
// the AST under a $(...) or `...` runs in its own re-executed process, its
// captured stdout becoming the substitution's value, exactly like a
// subshell's isolation but with output captured instead of inherited.
func New(core *shellstate.ShellCore, dir string) *Runner {
	r := &Runner{Core: core, Dir: dir}
	r.Cfg = &expand.Config{Subshell: r.runCommandSubstitution}
	return r
}

func (r *Runner) runCommandSubstitution(core *shellstate.ShellCore, body *syntax.Script) (string, error) {
	var buf strings.Builder
	_, err := spawnSubshell(core, body, r.Dir, os.Stdin, &buf, os.Stderr)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// ExecScript runs a sequence of pipelines joined by ";"/"&"/"&&"/"||"/a
// newline (spec.md §3/§4.6), short-circuiting on &&/|| exactly like a real
// shell's left-associative and-or list.
func (r *Runner) ExecScript(sc *syntax.Script) (int, error) {
	status := 0
	gate := ""
	for _, item := range sc.Items {
		run := true
		switch gate {
		case "&&":
			run = status == 0
		case "||":
			run = status != 0
		}
		if run {
			if item.Sep == "&" {
				r.runBackground(item.Pipeline)
				status = 0
			} else {
				var err error
				status, err = r.ExecPipeline(item.Pipeline)
				if err != nil {
					return status, err
				}
			}
			// $? must be visible to later words in this same script (and to
			// a && / || that follows), not only to the caller once the whole
			// script has finished.
			r.Core.SetExitStatus(status)
		}
		gate = item.Sep
		if r.Core.Sigint() {
			return 130, nil
		}
	}
	return status, nil
}

func (r *Runner) runBackground(pl *syntax.Pipeline) {
	cmd := exec.Command(os.Args[0], SubshellFlag)
	cmd.Dir = r.Dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(),
		ScriptEnvVar+"="+pl.Raw,
		PositionalEnvVar+"="+strings.Join(r.Core.DB.GetPositionParams(), "\x00"),
	)
	if err := cmd.Start(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	job := &shellstate.Job{PGID: cmd.Process.Pid, PIDs: []int{cmd.Process.Pid}, Text: pl.Raw}
	r.Core.AddJob(job)
	go func() {
		err := cmd.Wait()
		job.Done = true
		if ee, ok := err.(*exec.ExitError); ok {
			job.Status = ee.ExitCode()
		}
	}()
}

// ExecPipeline runs one or more commands joined by "|" (spec.md §3). A
// single command may run in place; anything pipe-connected always runs
// as its own reexec'd process, since concurrently dup2-ing several
// commands' descriptors onto this one process's fd table would race.
func (r *Runner) ExecPipeline(pl *syntax.Pipeline) (int, error) {
	var status int
	var err error
	if len(pl.Commands) == 1 {
		status, err = r.ExecCommand(pl.Commands[0])
	} else {
		status, err = r.execPipedStages(pl)
	}
	if err != nil {
		return status, err
	}
	if pl.Negated {
		status = negate(status)
	}
	return status, nil
}

func negate(status int) int {
	if status == 0 {
		return 1
	}
	return 0
}

func (r *Runner) execPipedStages(pl *syntax.Pipeline) (int, error) {
	n := len(pl.Commands)
	readers := make([]*os.File, n)
	writers := make([]*os.File, n)
	for i := 0; i < n-1; i++ {
		pr, pw, err := os.Pipe()
		if err != nil {
			return 1, err
		}
		writers[i] = pw
		readers[i+1] = pr
	}

	cmds := make([]*exec.Cmd, n)
	for i, c := range pl.Commands {
		stdin := io.Reader(os.Stdin)
		if readers[i] != nil {
			stdin = readers[i]
		}
		stdout := io.Writer(os.Stdout)
		if writers[i] != nil {
			stdout = writers[i]
		}
		ec := exec.Command(os.Args[0], SubshellFlag)
		ec.Dir = r.Dir
		ec.Stdin = stdin
		ec.Stdout = stdout
		ec.Stderr = os.Stderr
		ec.Env = append(os.Environ(),
			ScriptEnvVar+"="+c.Text(),
			PositionalEnvVar+"="+strings.Join(r.Core.DB.GetPositionParams(), "\x00"),
		)
		if err := ec.Start(); err != nil {
			return 1, err
		}
		cmds[i] = ec
		// This process's copy of the pipe ends must close once the child
		// has its own, or the next stage never sees EOF.
		if readers[i] != nil {
			readers[i].Close()
		}
		if writers[i] != nil {
			writers[i].Close()
		}
	}

	statuses := make([]int, n)
	var wg sync.WaitGroup
	for i, ec := range cmds {
		i, ec := i, ec
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := ec.Wait()
			if err == nil {
				statuses[i] = 0
				return
			}
			if ee, ok := err.(*exec.ExitError); ok {
				statuses[i] = ee.ExitCode()
			} else {
				statuses[i] = 127
			}
		}()
	}
	wg.Wait()

	last := statuses[n-1]
	if r.Core.Options.Query("pipefail") {
		for _, s := range statuses {
			if s != 0 {
				last = s
			}
		}
	}
	return last, nil
}

// ExecCommand dispatches on the command's concrete type (spec.md §3).
func (r *Runner) ExecCommand(cmd syntax.Command) (int, error) {
	switch c := cmd.(type) {
	case *syntax.SimpleCommand:
		return r.execSimple(c)
	case *syntax.ParenCommand:
		return r.execParen(c)
	case *syntax.BraceCommand:
		return r.execInProcess(c.Redirs, func() (int, error) { return r.ExecScript(c.Body) })
	case *syntax.WhileCommand:
		return r.execInProcess(c.Redirs, func() (int, error) { return r.execWhile(c) })
	case *syntax.IfCommand:
		return r.execInProcess(c.Redirs, func() (int, error) { return r.execIf(c) })
	case *syntax.ForCommand:
		return r.execInProcess(c.Redirs, func() (int, error) { return r.execFor(c) })
	default:
		return 1, fmt.Errorf("interp: unknown command type %T", cmd)
	}
}

func (r *Runner) execInProcess(redirs []*syntax.Redirect, body func() (int, error)) (int, error) {
	saved, err := connectRedirects(r.Core, r.Cfg, redirs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1, nil
	}
	status, err := body()
	restoreRedirects(saved)
	return status, err
}

func (r *Runner) execParen(c *syntax.ParenCommand) (int, error) {
	files, err := filesForRedirects(r.Core, r.Cfg, c.Redirs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1, nil
	}
	defer closeFiles(files)
	stdin, stdout, stderr := io.Reader(os.Stdin), io.Writer(os.Stdout), io.Writer(os.Stderr)
	if f, ok := files[0]; ok {
		stdin = f
	}
	if f, ok := files[1]; ok {
		stdout = f
	}
	if f, ok := files[2]; ok {
		stderr = f
	}
	return spawnSubshell(r.Core, c.Body, r.Dir, stdin, stdout, stderr)
}

func (r *Runner) execWhile(c *syntax.WhileCommand) (int, error) {
	status := 0
	for {
		condStatus, err := r.ExecScript(c.Cond)
		if err != nil {
			return condStatus, err
		}
		proceed := condStatus == 0
		if c.Until {
			proceed = condStatus != 0
		}
		if !proceed {
			break
		}
		status, err = r.ExecScript(c.Body)
		if err != nil {
			return status, err
		}
		if r.Core.Sigint() {
			return 130, nil
		}
	}
	return status, nil
}

func (r *Runner) execIf(c *syntax.IfCommand) (int, error) {
	status, err := r.ExecScript(c.Cond)
	if err != nil {
		return status, err
	}
	if status == 0 {
		return r.ExecScript(c.Body)
	}
	for _, e := range c.Elifs {
		s2, err := r.ExecScript(e.Cond)
		if err != nil {
			return s2, err
		}
		if s2 == 0 {
			return r.ExecScript(e.Body)
		}
	}
	if c.Else != nil {
		return r.ExecScript(c.Else)
	}
	return 0, nil
}

func (r *Runner) execFor(c *syntax.ForCommand) (int, error) {
	var items []string
	if c.List == nil {
		items = r.Core.DB.GetPositionParams()
	} else {
		for _, w := range c.List {
			fields, err := expand.Fields(r.Core, r.Cfg, w)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1, nil
			}
			items = append(items, fields...)
		}
	}
	status := 0
	for _, v := range items {
		r.Core.DB.SetParam(c.Var, v)
		var err error
		status, err = r.ExecScript(c.Body)
		if err != nil {
			return status, err
		}
		if r.Core.Sigint() {
			return 130, nil
		}
	}
	return status, nil
}

func (r *Runner) execSimple(c *syntax.SimpleCommand) (int, error) {
	for _, a := range c.Assigns {
		val, err := expand.ValueOf(r.Core, r.Cfg, a.Value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1, nil
		}
		r.Core.DB.SetParam(a.Name, val)
	}

	var argv []string
	for _, w := range c.Args {
		fields, err := expand.Fields(r.Core, r.Cfg, w)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1, nil
		}
		argv = append(argv, fields...)
	}
	if len(argv) == 0 {
		return 0, nil
	}

	if fn, ok := builtin.Lookup(argv[0]); ok {
		saved, err := connectRedirects(r.Core, r.Cfg, c.Redirs)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1, nil
		}
		status, err := fn(r.Core, argv[1:], os.Stdout, os.Stderr)
		restoreRedirects(saved)
		return status, err
	}
	return r.execExternal(argv, c.Redirs)
}

func (r *Runner) execExternal(argv []string, redirs []*syntax.Redirect) (int, error) {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: command not found\n", argv[0])
		return 127, nil
	}
	cmd := exec.Command(path, argv[1:]...)
	cmd.Dir = r.Dir
	cmd.Env = environFromDB(r.Core)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr

	files, err := filesForRedirects(r.Core, r.Cfg, redirs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1, nil
	}
	defer closeFiles(files)
	for fd, f := range files {
		switch fd {
		case 0:
			cmd.Stdin = f
		case 1:
			cmd.Stdout = f
		case 2:
			cmd.Stderr = f
		default:
			for len(cmd.ExtraFiles) < fd-2 {
				cmd.ExtraFiles = append(cmd.ExtraFiles, nil)
			}
			cmd.ExtraFiles[fd-3] = f
		}
	}

	err = cmd.Run()
	if err == nil {
		return 0, nil
	}
	if ee, ok := err.(*exec.ExitError); ok {
		return ee.ExitCode(), nil
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", argv[0], err)
	return 126, nil
}

func filesForRedirects(core *shellstate.ShellCore, cfg *expand.Config, redirs []*syntax.Redirect) (map[int]*os.File, error) {
	out := map[int]*os.File{}
	for _, rd := range redirs {
		fd := targetFD(rd)
		switch rd.Op {
		case syntax.RedirDupOut, syntax.RedirDupIn:
			srcFD, err := strconv.Atoi(rd.Word.Raw)
			if err != nil {
				continue
			}
			out[fd] = os.NewFile(uintptr(srcFD), "")
		case syntax.RedirOutErr:
			f, err := openRedirect(core, cfg, rd)
			if err != nil {
				return nil, err
			}
			out[1] = f
			out[2] = f
		default:
			f, err := openRedirect(core, cfg, rd)
			if err != nil {
				return nil, err
			}
			out[fd] = f
		}
	}
	return out, nil
}

func closeFiles(files map[int]*os.File) {
	for _, f := range files {
		f.Close()
	}
}

// environFromDB builds a child process's environment from every scalar
// and indexed-array variable in the store. The store contract (spec.md
// §6) has no "exported" bit of its own, so — short of reintroducing one
// — every scalar is passed through; associative arrays have no flat env
// representation and are skipped.
func environFromDB(core *shellstate.ShellCore) []string {
	var out []string
	for _, name := range core.DB.Names() {
		if core.DB.IsAssoc(name) || !isEnvName(name) {
			continue
		}
		out = append(out, name+"="+core.DB.GetParam(name))
	}
	return out
}

// isEnvName reports whether name is a valid environment-variable
// identifier, excluding the special parameters ("?", "$", "#", "0"...)
// the store also keeps as ordinary entries — those have no business in
// a child's environment.
func isEnvName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return name[0] < '0' || name[0] > '9'
}
