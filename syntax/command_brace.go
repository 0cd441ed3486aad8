package syntax

import "github.com/sushlang/sush/shellstate"

// ParseBraceCommand parses `{ script ; }`. Unlike ParenCommand it never
// sets ForceFork: the executor runs it in process, with its redirects
// applied and restored around the body, unless it is one stage of a
// multi-command pipeline.
func ParseBraceCommand(f *Feeder, core *shellstate.ShellCore) (Command, error) {
	if !eatKeyword(f, "{") {
		return nil, nil
	}
	raw := "{"
	body, err := ParseScript(f, core, []string{"}"})
	if err != nil {
		return nil, err
	}
	raw += body.Raw
	eatBlankWithComment(f, core)
	if !eatKeyword(f, "}") {
		return nil, &ParseError{Kind: UnexpectedEOF}
	}
	raw += "}"

	redirs, err := eatRedirects(f, core)
	if err != nil {
		return nil, err
	}
	for _, r := range redirs {
		raw += r.Raw
	}

	c := &BraceCommand{Body: body}
	c.Raw = raw
	c.Redirs = redirs
	return c, nil
}
