package syntax

import "github.com/sushlang/sush/shellstate"

// eatKeyword consumes word if the buffer starts with it as a whole word
// (not a prefix of some longer identifier), returning whether it matched.
func eatKeyword(f *Feeder, word string) bool {
	if !f.StartsWith(word) {
		return false
	}
	r, ok := f.Nth(len([]rune(word)))
	if ok && isNameRune(r) {
		return false
	}
	f.Consume(len([]rune(word)))
	return true
}

// isReservedWord reports whether s is one of the keywords that may never
// be used as a SimpleCommand argument in command position (spec.md §4.4).
func isReservedWord(s string) bool {
	switch s {
	case "if", "then", "elif", "else", "fi", "while", "until", "do", "done", "for", "in":
		return true
	default:
		return false
	}
}

// ParseSimpleCommand parses leading NAME=word assignments followed by
// argv words, with redirections interleaved anywhere among them
// (spec.md §3/§4.4). It returns (nil, nil) when nothing at all matches,
// so ParseCommand's dispatch chain can fall through cleanly.
func ParseSimpleCommand(f *Feeder, core *shellstate.ShellCore) (Command, error) {
	c := &SimpleCommand{}
	var raw string

	for {
		eatBlankWithComment(f, core)
		a, consumed, err := eatAssign(f, core)
		if err != nil {
			return nil, err
		}
		if a == nil {
			break
		}
		c.Assigns = append(c.Assigns, a)
		raw += consumed
	}

	for {
		eatBlankWithComment(f, core)
		if r, err := ParseRedirect(f, core); err != nil {
			return nil, err
		} else if r != nil {
			c.Redirs = append(c.Redirs, r)
			raw += r.Raw
			continue
		}
		if f.Len() == 0 || stopsWord(f) {
			break
		}
		w, err := ParseWord(f, core, false)
		if err != nil {
			return nil, err
		}
		if w == nil {
			break
		}
		if len(c.Args) == 0 && len(c.Assigns) == 0 && isBareReservedWord(w) {
			return nil, nil
		}
		c.Args = append(c.Args, w)
		raw += w.Raw
	}

	if len(c.Assigns) == 0 && len(c.Args) == 0 && len(c.Redirs) == 0 {
		return nil, nil
	}
	c.Raw = raw
	return c, nil
}

// isBareReservedWord reports whether w is a single unquoted Lit matching
// a reserved word, meaning it belongs to a compound command's own
// grammar rather than to this SimpleCommand.
func isBareReservedWord(w *Word) bool {
	if len(w.Parts) != 1 {
		return false
	}
	lit, ok := w.Parts[0].(*Lit)
	return ok && isReservedWord(lit.Value)
}

// eatAssign recognizes a leading "NAME=word" assignment: a bare name
// immediately followed by "=" with no intervening blank.
func eatAssign(f *Feeder, core *shellstate.ShellCore) (*Assign, string, error) {
	n := f.ScannerName(core)
	if n == 0 {
		return nil, "", nil
	}
	r, ok := f.Nth(n)
	if !ok || r != '=' {
		return nil, "", nil
	}
	name := f.Consume(n)
	eq := f.Consume(1)
	w, err := ParseWord(f, core, false)
	if err != nil {
		return nil, "", err
	}
	raw := name + eq
	if w != nil {
		raw += w.Raw
	} else {
		w = &Word{}
	}
	return &Assign{Name: name, Value: w}, raw, nil
}
