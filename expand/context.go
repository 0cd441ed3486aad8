// Package expand computes the value of a parsed syntax.Word: brace
// expansion, tilde expansion, parameter/arithmetic/command substitution,
// IFS field splitting and pathname expansion, in the order SPEC_FULL.md's
// word pipeline names. It never touches a file descriptor or forks a
// process itself — command substitution is handed back to package interp
// through the Config.Subshell callback, mirroring how the teacher's
// expand.Config carries a CmdSubst hook rather than importing interp
// directly (which would create an import cycle: interp needs expand to
// run a command's argv, and expand would need interp to run one).
package expand

import (
	"github.com/sushlang/sush/shellstate"
	"github.com/sushlang/sush/syntax"
)

// Config carries the one collaborator word expansion cannot provide for
// itself.
type Config struct {
	// Subshell runs body's command list and returns its captured stdout,
	// trailing newlines stripped, the way $(...) and `...` require.
	Subshell func(core *shellstate.ShellCore, body *syntax.Script) (string, error)
}
