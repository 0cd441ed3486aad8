package syntax

import "github.com/sushlang/sush/shellstate"

// ParseSubword tries each subword kind in the fixed priority order spec.md
// §4.2 requires: BracedParam → Arithmetic → CommandSubstitution →
// special-or-positional-param or $NAME → `$` (literal) → escaped-char →
// SingleQuoted → DoubleQuoted → bare subword → single brace/tilde/slash
// symbol. It returns (nil, nil) when none match (the word has ended),
// never both a node and an error.
func ParseSubword(f *Feeder, core *shellstate.ShellCore) (Subword, error) {
	if bp, err := ParseBracedParam(f, core); err != nil {
		return nil, err
	} else if bp != nil {
		return bp, nil
	}
	if a, err := ParseArithmetic(f, core); err != nil {
		return nil, err
	} else if a != nil {
		return a, nil
	}
	if cs, err := ParseCommandSubstitution(f, core); err != nil {
		return nil, err
	} else if cs != nil {
		return cs, nil
	}
	if p := parseParameter(f, core); p != nil {
		return p, nil
	}
	if f.StartsWith("$") {
		return &Lit{Value: f.Consume(1)}, nil
	}
	if n := f.ScannerEscapedChar(core); n != 0 {
		return &EscapedChar{Raw: f.Consume(n)}, nil
	}
	if n := f.ScannerSingleQuotedSubword(core); n != 0 {
		return &SingleQuoted{Raw: f.Consume(n)}, nil
	}
	if dq, err := ParseDoubleQuoted(f, core); err != nil {
		return nil, err
	} else if dq != nil {
		return dq, nil
	}
	if n := f.ScannerSubword(); n != 0 {
		return &Lit{Value: f.Consume(n)}, nil
	}
	if n := f.ScannerSubwordSymbol(); n != 0 {
		return &Lit{Value: f.Consume(n)}, nil
	}
	return nil, nil
}

// parseParameter matches a special or positional parameter ($?, $@, $*,
// $#, $$, $-, $!, $_, $0..$9) or a bare $NAME variable reference.
func parseParameter(f *Feeder, core *shellstate.ShellCore) *Parameter {
	n := f.ScannerDollarSpecialAndPositionalParam(core)
	if n == 0 && f.StartsWith("$") {
		m := 1
		for {
			r, ok := f.Nth(m)
			if !ok || !isNameRune(r) {
				break
			}
			m++
		}
		if m > 1 {
			n = m
		}
	}
	if n == 0 {
		return nil
	}
	raw := f.Consume(n)
	return &Parameter{Name: raw[1:]}
}

// ParseDoubleQuoted parses a "..." word. Its internal eat-chain differs
// from ParseSubword's: it additionally recognizes a bare VarName (spec.md
// §3) and never recurses into another DoubleQuoted or SingleQuoted.
func ParseDoubleQuoted(f *Feeder, core *shellstate.ShellCore) (*DoubleQuoted, error) {
	if !f.StartsWith("\"") {
		return nil, nil
	}
	ans := &DoubleQuoted{}
	ans.Raw = f.Consume(1)

	for {
		progressed := true
		for progressed {
			progressed = false
			if bp, err := ParseBracedParam(f, core); err != nil {
				return nil, err
			} else if bp != nil {
				ans.Raw += bp.Text()
				ans.Parts = append(ans.Parts, bp)
				progressed = true
				continue
			}
			if a, err := ParseArithmetic(f, core); err != nil {
				return nil, err
			} else if a != nil {
				ans.Raw += a.Text()
				ans.Parts = append(ans.Parts, a)
				progressed = true
				continue
			}
			if cs, err := ParseCommandSubstitution(f, core); err != nil {
				return nil, err
			} else if cs != nil {
				ans.Raw += cs.Text()
				ans.Parts = append(ans.Parts, cs)
				progressed = true
				continue
			}
			if p := parseParameter(f, core); p != nil {
				ans.Raw += p.Text()
				ans.Parts = append(ans.Parts, p)
				progressed = true
				continue
			}
			if f.StartsWith("$") {
				txt := f.Consume(1)
				ans.Raw += txt
				ans.Parts = append(ans.Parts, &Lit{Value: txt})
				progressed = true
				continue
			}
			if f.StartsWith("\\$") || f.StartsWith("\\\\") || f.StartsWith("\\\"") {
				txt := f.Consume(2)
				ans.Raw += txt
				ans.Parts = append(ans.Parts, &EscapedChar{Raw: txt})
				progressed = true
				continue
			}
			if n := f.ScannerEscapedChar(core); n != 0 {
				txt := f.Consume(n)
				ans.Raw += txt
				ans.Parts = append(ans.Parts, &Lit{Value: txt})
				progressed = true
				continue
			}
			if n := f.ScannerName(core); n != 0 {
				txt := f.Consume(n)
				ans.Raw += txt
				ans.Parts = append(ans.Parts, &VarName{Name: txt})
				progressed = true
				continue
			}
			if n := f.ScannerDoubleQuotedSubword(core); n != 0 {
				txt := f.Consume(n)
				ans.Raw += txt
				ans.Parts = append(ans.Parts, &Lit{Value: txt})
				progressed = true
				continue
			}
		}

		if f.StartsWith("\"") {
			ans.Raw += f.Consume(1)
			return ans, nil
		}
		if f.Len() > 0 {
			return nil, &ParseError{Kind: UnexpectedSymbol, Text: string(f.remaining[0])}
		}
		if err := f.FeedAdditionalLine(core); err != nil {
			return nil, err
		}
	}
}
