package shellstate

import (
	"os"
	"strconv"
	"sync/atomic"
)

// Job is one entry of the (intentionally tiny) job table: spec.md §1 treats
// job-control signal wiring as an out-of-scope external collaborator, but
// the executor still needs somewhere to record a pipeline's process group
// so `wait` and status reporting have something to look at.
type Job struct {
	PGID   int
	PIDs   []int
	Text   string
	Status int
	Done   bool
}

// ShellCore is the process-wide state threaded explicitly through every
// parse and execution call — never a global, per spec.md §9's design note.
type ShellCore struct {
	DB      *DB
	Options *Options
	ShOpts  *ShOpts

	Jobs []*Job

	PGID int

	// sigint records that SIGINT arrived since the last time the main
	// loop cleared it; checked between units of work by long-running
	// builtins and by the feeder to abandon a partial line.
	sigint atomic.Bool
}

// New returns a fresh top-level ShellCore, seeded from the process
// environment per spec.md §6.
func New() *ShellCore {
	c := &ShellCore{
		DB:      NewDB(),
		Options: NewOptions(),
		ShOpts:  NewShOpts(),
		PGID:    os.Getpid(),
	}
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				c.DB.SetParam(kv[:i], kv[i+1:])
				break
			}
		}
	}
	if c.DB.GetParam("IFS") == "" {
		c.DB.SetParam("IFS", " \t\n")
	}
	c.DB.SetParam("?", "0")
	c.DB.SetParam("$", strconv.Itoa(os.Getpid()))
	c.DB.SetParam("BASHPID", strconv.Itoa(os.Getpid()))
	return c
}

// ExitStatus returns the last recorded $?.
func (c *ShellCore) ExitStatus() int {
	n, _ := strconv.Atoi(c.DB.GetParam("?"))
	return n
}

// SetExitStatus records $?.
func (c *ShellCore) SetExitStatus(n int) {
	c.DB.SetParam("?", strconv.Itoa(n))
}

// SetSigint is called by the process's signal handler.
func (c *ShellCore) SetSigint(v bool) { c.sigint.Store(v) }

// Sigint reports whether SIGINT has arrived since the last reset.
func (c *ShellCore) Sigint() bool { return c.sigint.Load() }

// ResetSigint clears the flag; the main loop does this after every
// top-level iteration.
func (c *ShellCore) ResetSigint() { c.sigint.Store(false) }

// InitializeAsSubshell mirrors rusty_bash's core.initialize_as_subshell: a
// forked child clears its job table and rewrites the PID-derived
// parameters, since in this Go port the "fork" is a real re-executed OS
// process (see interp/reexec.go) which already has its own PID — this just
// keeps $$ and $BASHPID consistent with that new process's identity.
func (c *ShellCore) InitializeAsSubshell(pgid int) {
	c.Jobs = nil
	c.PGID = pgid
	pid := os.Getpid()
	c.DB.SetParam("$", strconv.Itoa(pid))
	c.DB.SetParam("BASHPID", strconv.Itoa(pid))
}

// AddJob appends a new job table entry once the parent knows the
// pipeline's process group and member PIDs.
func (c *ShellCore) AddJob(j *Job) { c.Jobs = append(c.Jobs, j) }
