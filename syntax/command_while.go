package syntax

import "github.com/sushlang/sush/shellstate"

// ParseWhileCommand parses `while cond; do body; done`, or `until cond;
// do body; done` when Until is set (spec.md §3).
func ParseWhileCommand(f *Feeder, core *shellstate.ShellCore) (Command, error) {
	until := false
	var raw string
	switch {
	case eatKeyword(f, "while"):
		raw = "while"
	case eatKeyword(f, "until"):
		until = true
		raw = "until"
	default:
		return nil, nil
	}

	cond, err := ParseScript(f, core, []string{"do"})
	if err != nil {
		return nil, err
	}
	raw += cond.Raw
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

	c := &WhileCommand{Until: until, Cond: cond, Body: body}
	c.Raw = raw
	c.Redirs = redirs
	return c, nil
}
