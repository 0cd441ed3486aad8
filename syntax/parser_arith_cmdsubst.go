package syntax

import "github.com/sushlang/sush/shellstate"

// ParseArithmetic parses a `$((...))` subword. It only captures the raw
// expression text; package expand owns the arithmetic grammar itself.
func ParseArithmetic(f *Feeder, core *shellstate.ShellCore) (*Arithmetic, error) {
	if !f.StartsWith("$((") {
		return nil, nil
	}
	raw := f.Consume(3)
	var expr string
	depth := 1
	for depth > 0 {
		if f.Len() == 0 {
			if err := f.FeedAdditionalLine(core); err != nil {
				return nil, err
			}
			continue
		}
		if f.StartsWith("((") {
			depth++
			c := f.Consume(2)
			raw += c
			expr += c
			continue
		}
		if f.StartsWith("))") {
			depth--
			c := f.Consume(2)
			raw += c
			if depth > 0 {
				expr += c
			}
			continue
		}
		c := f.Consume(1)
		raw += c
		expr += c
	}
	return &Arithmetic{Raw: raw, Expr: expr}, nil
}

// ParseCommandSubstitution parses $(...) or `...`. The body is a full
// nested Script, parsed with its own Feeder seeded from the balanced raw
// text collected here — this keeps the outer feeder's nest stack
// untouched by whatever the inner script nests.
func ParseCommandSubstitution(f *Feeder, core *shellstate.ShellCore) (*CommandSubstitution, error) {
	switch {
	case f.StartsWith("$("):
		return parseDollarParenSubst(f, core)
	case f.StartsWith("`"):
		return parseBacktickSubst(f, core)
	default:
		return nil, nil
	}
}

func parseDollarParenSubst(f *Feeder, core *shellstate.ShellCore) (*CommandSubstitution, error) {
	raw := f.Consume(2)
	var inner string
	depth := 1
	for depth > 0 {
		if f.Len() == 0 {
			if err := f.FeedAdditionalLine(core); err != nil {
				return nil, err
			}
			continue
		}
		r, _ := f.Nth(0)
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				raw += f.Consume(1)
				continue
			}
		}
		c := f.Consume(1)
		raw += c
		if depth > 0 {
			inner += c
		}
	}
	body, err := parseScriptBody(inner, core)
	if err != nil {
		return nil, err
	}
	return &CommandSubstitution{Raw: raw, Body: body}, nil
}

func parseBacktickSubst(f *Feeder, core *shellstate.ShellCore) (*CommandSubstitution, error) {
	raw := f.Consume(1)
	var inner string
	for {
		if f.Len() == 0 {
			if err := f.FeedAdditionalLine(core); err != nil {
				return nil, err
			}
			continue
		}
		if f.StartsWith("\\`") {
			c := f.Consume(2)
			raw += c
			inner += c
			continue
		}
		if f.StartsWith("`") {
			raw += f.Consume(1)
			break
		}
		c := f.Consume(1)
		raw += c
		inner += c
	}
	body, err := parseScriptBody(inner, core)
	if err != nil {
		return nil, err
	}
	return &CommandSubstitution{Raw: raw, Body: body, Backtick: true}, nil
}

// parseScriptBody parses a complete, already-collected piece of source as
// its own Script, isolated from the enclosing feeder's nest stack. It
// never needs more input than it was given: the outer loop above already
// waited for balanced delimiters.
func parseScriptBody(text string, core *shellstate.ShellCore) (*Script, error) {
	inner := NewFeederFromString(text)
	return ParseScript(inner, core, nil)
}
