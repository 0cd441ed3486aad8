package syntax

import "github.com/sushlang/sush/shellstate"

// ParseIfCommand parses `if cond; then body; [elif cond; then body]...
// [else body]; fi` (spec.md §3, elif chain per SPEC_FULL.md §3).
func ParseIfCommand(f *Feeder, core *shellstate.ShellCore) (Command, error) {
	if !eatKeyword(f, "if") {
		return nil, nil
	}
	raw := "if"

	cond, body, consumed, err := parseCondThen(f, core)
	if err != nil {
		return nil, err
	}
	raw += consumed

	var elifs []ElifClause
	for {
		eatBlankWithComment(f, core)
		if !eatKeyword(f, "elif") {
			break
		}
		raw += "elif"
		ec, eb, consumed, err := parseCondThen(f, core)
		if err != nil {
			return nil, err
		}
		raw += consumed
		elifs = append(elifs, ElifClause{Cond: ec, Body: eb})
	}

	var elseBody *Script
	eatBlankWithComment(f, core)
	if eatKeyword(f, "else") {
		raw += "else"
		elseBody, err = ParseScript(f, core, []string{"fi"})
		if err != nil {
			return nil, err
		}
		raw += elseBody.Raw
	}

	eatBlankWithComment(f, core)
	if !eatKeyword(f, "fi") {
		return nil, &ParseError{Kind: UnexpectedEOF}
	}
	raw += "fi"

	redirs, err := eatRedirects(f, core)
	if err != nil {
		return nil, err
	}
	for _, r := range redirs {
		raw += r.Raw
	}

	c := &IfCommand{Cond: cond, Body: body, Elifs: elifs, Else: elseBody}
	c.Raw = raw
	c.Redirs = redirs
	return c, nil
}

// parseCondThen parses one "cond; then body" link shared by the leading
// `if` and every `elif` in the chain.
func parseCondThen(f *Feeder, core *shellstate.ShellCore) (cond, body *Script, raw string, err error) {
	cond, err = ParseScript(f, core, []string{"then"})
	if err != nil {
		return nil, nil, "", err
	}
	raw = cond.Raw
	eatBlankWithComment(f, core)
	if !eatKeyword(f, "then") {
		return nil, nil, "", &ParseError{Kind: UnexpectedEOF}
	}
	raw += "then"
	body, err = ParseScript(f, core, []string{"elif", "else", "fi"})
	if err != nil {
		return nil, nil, "", err
	}
	raw += body.Raw
	return cond, body, raw, nil
}
