package syntax

import (
	"strings"

	"github.com/sushlang/sush/shellstate"
)

// ParseBracedParam parses a `${...}` subword (spec.md §3/§4.2). It only
// builds the AST node; the substitution algorithm (the hardest in the
// spec) lives in package expand's substituteBracedParam, since evaluating it needs the
// variable store and possibly a command-substitution callback that this
// package deliberately has no access to.
func ParseBracedParam(f *Feeder, core *shellstate.ShellCore) (*BracedParam, error) {
	if !f.StartsWith("${") {
		return nil, nil
	}
	ans := &BracedParam{}
	ans.Raw = f.Consume(2)

	if f.StartsWith("#") && !f.StartsWith("#}") {
		ans.Num = true
		ans.Raw += f.Consume(1)
	} else if f.StartsWith("!") {
		ans.Indirect = true
		ans.Raw += f.Consume(1)
	}

	if eatBracedParamName(f, core, ans) {
		if err := eatSubscript(f, core, ans); err != nil {
			return nil, err
		}
		matched, err := eatValueCheck(f, core, ans)
		if err != nil {
			return nil, err
		}
		if !matched {
			matched, err = eatSubstr(f, core, ans)
			if err != nil {
				return nil, err
			}
		}
		if !matched {
			matched, err = eatRemove(f, core, ans)
			if err != nil {
				return nil, err
			}
		}
		if !matched {
			if _, err = eatReplace(f, core, ans); err != nil {
				return nil, err
			}
		}
	}

	for !f.StartsWith("}") {
		if err := eatBracedUnknown(f, core, ans); err != nil {
			return nil, err
		}
	}
	ans.Raw += f.Consume(1)
	return ans, nil
}

func eatBracedParamName(f *Feeder, core *shellstate.ShellCore, ans *BracedParam) bool {
	if n := f.ScannerName(core); n != 0 {
		ans.Name = f.Consume(n)
		ans.Raw += ans.Name
		return true
	}
	if n := f.ScannerSpecialAndPositionalParam(); n != 0 {
		ans.Name = f.Consume(n)
		ans.IsArray = ans.Name == "@"
		ans.Raw += ans.Name
		return true
	}
	return f.StartsWith("}")
}

func eatSubscript(f *Feeder, core *shellstate.ShellCore, ans *BracedParam) error {
	if !f.StartsWith("[") {
		return nil
	}
	raw := f.Consume(1)
	depth := 1
	for depth > 0 {
		if f.Len() == 0 {
			if err := f.FeedAdditionalLine(core); err != nil {
				return err
			}
			continue
		}
		r, _ := f.Nth(0)
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		}
		raw += f.Consume(1)
	}
	ans.Subscript = &Subscript{Raw: raw}
	if raw == "[@]" || raw == "[*]" {
		ans.IsArray = true
	}
	ans.Raw += raw
	return nil
}

// eatSubwordsUntil parses a Word's worth of subwords, stopping (without
// consuming) as soon as the buffer starts with one of ends. Mirrors
// BracedParam::eat_subwords in the source this is grounded on.
func eatSubwordsUntil(f *Feeder, core *shellstate.ShellCore, ends []string) (*Word, string, error) {
	w := &Word{}
	var raw string
	for !startsWithAny(f, ends) {
		sw, err := ParseSubword(f, core)
		if err != nil {
			return nil, "", err
		}
		if sw != nil {
			w.Parts = append(w.Parts, sw)
			w.Raw += sw.Text()
			raw += sw.Text()
		} else {
			c := f.Consume(1)
			w.Parts = append(w.Parts, &Filler{Raw: c})
			w.Raw += c
			raw += c
		}
		if f.Len() == 0 {
			if err := f.FeedAdditionalLine(core); err != nil {
				return nil, "", err
			}
		}
	}
	return w, raw, nil
}

func startsWithAny(f *Feeder, ends []string) bool {
	for _, e := range ends {
		if f.StartsWith(e) {
			return true
		}
	}
	return false
}

func eatValueCheck(f *Feeder, core *shellstate.ShellCore, ans *BracedParam) (bool, error) {
	colon := f.StartsWith(":")
	at := 0
	if colon {
		at = 1
	}
	r, ok := f.Nth(at)
	if !ok || !strings.ContainsRune("-=?+", r) {
		return false, nil
	}
	if colon {
		ans.Raw += f.Consume(2)
	} else {
		ans.Raw += f.Consume(1)
	}
	w, raw, err := eatSubwordsUntil(f, core, []string{"}"})
	if err != nil {
		return false, err
	}
	ans.Raw += raw
	ans.ValueCheckMod = &ValueCheck{Op: ValueCheckOp(r), Colon: colon, Operand: w}
	return true, nil
}

func eatSubstr(f *Feeder, core *shellstate.ShellCore, ans *BracedParam) (bool, error) {
	if !f.StartsWith(":") {
		return false, nil
	}
	raw := f.Consume(1)
	offset, err := eatArithText(f, core, []string{":", "}"})
	if err != nil {
		return false, err
	}
	raw += offset
	mod := &SubstrModifier{Offset: offset}
	if f.StartsWith(":") {
		raw += f.Consume(1)
		length, err := eatArithText(f, core, []string{"}"})
		if err != nil {
			return false, err
		}
		raw += length
		mod.Length = length
		mod.HasLength = true
	}
	ans.Raw += raw
	ans.SubstrMod = mod
	return true, nil
}

// eatArithText consumes raw text up to (not including) one of ends,
// honoring balanced parens so a nested arithmetic subexpression can
// contain "}" or ":" inside `$(( ))`.
func eatArithText(f *Feeder, core *shellstate.ShellCore, ends []string) (string, error) {
	var raw string
	depth := 0
	for depth > 0 || !startsWithAny(f, ends) {
		if f.Len() == 0 {
			if err := f.FeedAdditionalLine(core); err != nil {
				return "", err
			}
			continue
		}
		r, _ := f.Nth(0)
		if r == '(' {
			depth++
		} else if r == ')' {
			depth--
		}
		c := f.Consume(1)
		raw += c
	}
	return raw, nil
}

func eatRemove(f *Feeder, core *shellstate.ShellCore, ans *BracedParam) (bool, error) {
	var op RemoveModifier
	switch {
	case f.StartsWith("##"):
		op = RemoveModifier{Suffix: false, Longest: true}
		ans.Raw += f.Consume(2)
	case f.StartsWith("#"):
		op = RemoveModifier{Suffix: false, Longest: false}
		ans.Raw += f.Consume(1)
	case f.StartsWith("%%"):
		op = RemoveModifier{Suffix: true, Longest: true}
		ans.Raw += f.Consume(2)
	case f.StartsWith("%"):
		op = RemoveModifier{Suffix: true, Longest: false}
		ans.Raw += f.Consume(1)
	default:
		return false, nil
	}
	w, raw, err := eatSubwordsUntil(f, core, []string{"}"})
	if err != nil {
		return false, err
	}
	ans.Raw += raw
	op.Pattern = w
	ans.RemoveMod = &op
	return true, nil
}

func eatReplace(f *Feeder, core *shellstate.ShellCore, ans *BracedParam) (bool, error) {
	var mod ReplaceModifier
	switch {
	case f.StartsWith("//"):
		mod.All = true
		ans.Raw += f.Consume(2)
	case f.StartsWith("/#"):
		mod.AnchorL = true
		ans.Raw += f.Consume(2)
	case f.StartsWith("/%"):
		mod.AnchorR = true
		ans.Raw += f.Consume(2)
	case f.StartsWith("/"):
		ans.Raw += f.Consume(1)
	default:
		return false, nil
	}
	pat, rawPat, err := eatSubwordsUntil(f, core, []string{"/", "}"})
	if err != nil {
		return false, err
	}
	ans.Raw += rawPat
	mod.Pattern = pat
	if f.StartsWith("/") {
		ans.Raw += f.Consume(1)
		repl, rawRepl, err := eatSubwordsUntil(f, core, []string{"}"})
		if err != nil {
			return false, err
		}
		ans.Raw += rawRepl
		mod.Repl = repl
		mod.HasRepl = true
	}
	ans.ReplaceMod = &mod
	return true, nil
}

func eatBracedUnknown(f *Feeder, core *shellstate.ShellCore, ans *BracedParam) error {
	if f.Len() == 0 {
		if err := f.FeedAdditionalLine(core); err != nil {
			return err
		}
	}
	var unknown string
	if f.StartsWith("\\}") {
		unknown = f.Consume(2)
	} else {
		unknown = f.Consume(1)
	}
	ans.Unknown += unknown
	ans.Raw += unknown
	return nil
}
