package syntax

import "github.com/sushlang/sush/shellstate"

// ParseParenCommand parses `( script )`. It always forces a fork
// (spec.md §3): a subshell needs its own process so the parent's state is
// left untouched by whatever runs inside.
func ParseParenCommand(f *Feeder, core *shellstate.ShellCore) (Command, error) {
	if !f.StartsWith("(") {
		return nil, nil
	}
	raw := f.Consume(1)
	body, err := ParseScript(f, core, []string{")"})
	if err != nil {
		return nil, err
	}
	raw += body.Raw
	eatBlankWithComment(f, core)
	if !f.StartsWith(")") {
		return nil, &ParseError{Kind: UnexpectedEOF}
	}
	raw += f.Consume(1)

	redirs, err := eatRedirects(f, core)
	if err != nil {
		return nil, err
	}
	for _, r := range redirs {
		raw += r.Raw
	}

	c := &ParenCommand{Body: body}
	c.Raw = raw
	c.Redirs = redirs
	c.SetForceFork()
	return c, nil
}
