package expand

import (
	"os/user"
	"strings"

	"github.com/sushlang/sush/shellstate"
	"github.com/sushlang/sush/syntax"
)

// expandTilde rewrites a leading unquoted "~" or "~user" Lit prefix of w
// into the owner's home directory, the prefix-length-up-to-first-slash
// algorithm grounded on original_source's tilde_expansion.rs. Only the
// word's leading run of bare Lits is ever eligible (the parser splits
// "~user/x" into several Lits) — "a~b" never expands — since a quoted or
// escaped "~" is never a tilde expansion (spec.md §4.3 step 2).
func expandTilde(core *shellstate.ShellCore, w *syntax.Word) *syntax.Word {
	lead, n := "", 0
	for n < len(w.Parts) {
		lit, ok := w.Parts[n].(*syntax.Lit)
		if !ok {
			break
		}
		lead += lit.Value
		n++
	}
	if !strings.HasPrefix(lead, "~") {
		return w
	}
	rest := lead[1:]
	name, tail, _ := strings.Cut(rest, "/")
	if strings.Contains(rest, "/") {
		tail = "/" + tail
	} else {
		tail = ""
		name = rest
	}

	home, ok := tildeHome(core, name)
	if !ok {
		return w
	}
	newParts := append([]syntax.Subword{&syntax.Lit{Value: home + tail}}, w.Parts[n:]...)
	return &syntax.Word{Raw: w.Raw, Parts: newParts}
}

func tildeHome(core *shellstate.ShellCore, name string) (string, bool) {
	if name == "" {
		if home := core.DB.GetParam("HOME"); home != "" {
			return home, true
		}
		if u, err := user.Current(); err == nil {
			return u.HomeDir, true
		}
		return "", false
	}
	u, err := user.Lookup(name)
	if err != nil {
		return "", false
	}
	return u.HomeDir, true
}
