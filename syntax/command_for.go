package syntax

import "github.com/sushlang/sush/shellstate"

// ParseForCommand parses `for name [in word...]; do body; done`
// (supplemented variant, SPEC_FULL.md §3). A missing `in` clause means
// "in \"$@\"", left as a nil List for the executor (package interp) to
// fill in from the positional parameters at execution time.
func ParseForCommand(f *Feeder, core *shellstate.ShellCore) (Command, error) {
	if !eatKeyword(f, "for") {
		return nil, nil
	}
	raw := "for"

	eatBlankWithComment(f, core)
	n := f.ScannerName(core)
	if n == 0 {
		return nil, &ParseError{Kind: UnexpectedSymbol, Text: "for"}
	}
	name := f.Consume(n)
	raw += name

	var list []*Word
	eatBlankWithComment(f, core)
	if eatKeyword(f, "in") {
		raw += "in"
		for {
			eatBlankWithComment(f, core)
			if f.StartsWith(";") || f.StartsWith("\n") || eatKeywordPeek(f, "do") {
				break
			}
			w, err := ParseWord(f, core, false)
			if err != nil {
				return nil, err
			}
			if w == nil {
				break
			}
			list = append(list, w)
			raw += w.Raw
		}
	}

	eatBlankWithComment(f, core)
	if n := f.ScannerJobEnd(); n != 0 {
		raw += f.Consume(n)
	}

	eatBlankWithComment(f, core)
	if !eatKeyword(f, "do") {
		return nil, &ParseError{Kind: UnexpectedEOF}
	}
	raw += "do"

	body, err := ParseScript(f, core, []string{"done"})
	if err != nil {
		return nil, err
	}
	raw += body.Raw
	eatBlankWithComment(f, core)
	if !eatKeyword(f, "done") {
		return nil, &ParseError{Kind: UnexpectedEOF}
	}
	raw += "done"

	redirs, err := eatRedirects(f, core)
	if err != nil {
		return nil, err
	}
	for _, r := range redirs {
		raw += r.Raw
	}

	c := &ForCommand{Var: name, List: list, Body: body}
	c.Raw = raw
	c.Redirs = redirs
	return c, nil
}

// eatKeywordPeek reports whether word follows as a whole word, without
// consuming it.
func eatKeywordPeek(f *Feeder, word string) bool {
	if !f.StartsWith(word) {
		return false
	}
	r, ok := f.Nth(len([]rune(word)))
	return !ok || !isNameRune(r)
}
