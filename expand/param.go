package expand

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/sushlang/sush/pattern"
	"github.com/sushlang/sush/shellstate"
	"github.com/sushlang/sush/syntax"
)

// substituteBracedParam evaluates a `${...}` subword (spec.md §4.2): name
// resolution (with `!` indirection), subscript lookup, and at most one
// modifier family. Grounded step for step on
// original_source/src/elements/subword/braced_param.rs's dispatch order:
// resolve the name (following one level of indirection), then apply
// whichever single modifier matched at parse time.
func substituteBracedParam(core *shellstate.ShellCore, cfg *Config, bp *syntax.BracedParam) (string, error) {
	name := bp.Name
	sub := bp.Subscript

	if bp.Indirect {
		if bp.IsArray {
			if bp.Num || bp.ValueCheckMod != nil || bp.SubstrMod != nil || bp.RemoveMod != nil || bp.ReplaceMod != nil {
				return "", &InvalidNameError{Name: bp.Name}
			}
			indexes := core.DB.GetIndexesAll(bp.Name)
			return strings.Join(indexes, ifsJoiner(core)), nil
		}
		resolvedName, resolvedSub, err := resolveIndirectName(core, cfg, bp)
		if err != nil {
			return "", err
		}
		name, sub = resolvedName, resolvedSub
	}

	if bp.Num {
		return strconv.Itoa(lengthOf(core, name, sub)), nil
	}

	value, isSet, err := resolveValue(core, cfg, name, sub)
	if err != nil {
		return "", err
	}

	switch {
	case bp.ValueCheckMod != nil:
		return applyValueCheck(core, cfg, name, value, isSet, bp.ValueCheckMod)
	case bp.SubstrMod != nil:
		s, err := applySubstr(core, value, bp.SubstrMod)
		return s, err
	case bp.RemoveMod != nil:
		return applyRemove(core, cfg, value, bp.RemoveMod)
	case bp.ReplaceMod != nil:
		return applyReplace(core, cfg, value, bp.ReplaceMod)
	default:
		return value, nil
	}
}

// resolveIndirectName implements the non-array `${!x}` chain (spec.md §4.2
// step 2): evaluate the node (name plus any subscript, but without the
// indirect flag itself) to a string V; if V contains `[`, re-parse it as
// the name+subscript of a further `${V}`, else V is the new bare name.
// Grounded on original_source/src/elements/subword/braced_param.rs's
// `index_replace`/name-reparse handling for the scalar indirection case.
func resolveIndirectName(core *shellstate.ShellCore, cfg *Config, bp *syntax.BracedParam) (string, *syntax.Subscript, error) {
	v, _, err := resolveValue(core, cfg, bp.Name, bp.Subscript)
	if err != nil {
		return "", nil, err
	}
	name := v
	var sub *syntax.Subscript
	if i := strings.IndexByte(v, '['); i >= 0 {
		name = v[:i]
		sub = &syntax.Subscript{Raw: v[i:]}
	}
	if !isLegalParamName(name) {
		return "", nil, &InvalidNameError{Name: v}
	}
	return name, sub, nil
}

// isLegalParamName reports whether name could name a shell parameter:
// a special single-character parameter, an all-digit positional
// parameter, or a `[A-Za-z_][A-Za-z0-9_]*` identifier.
func isLegalParamName(name string) bool {
	if name == "" {
		return false
	}
	if len(name) == 1 && strings.ContainsRune("?*@#-!_", rune(name[0])) {
		return true
	}
	allDigits := true
	for _, r := range name {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return true
	}
	r0 := rune(name[0])
	if r0 != '_' && !(r0 >= 'a' && r0 <= 'z') && !(r0 >= 'A' && r0 <= 'Z') {
		return false
	}
	for _, r := range name[1:] {
		if r != '_' && !unicode.IsDigit(r) && !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}

// InvalidNameError reports spec.md §7's ExecError::InvalidName: an
// indirect reference (`${!x}`) that resolves to text which cannot name a
// parameter, or an indirect array-index listing (`${!arr[@]}`) combined
// with a modifier the spec forbids.
type InvalidNameError struct{ Name string }

func (e *InvalidNameError) Error() string { return "invalid indirect name: " + e.Name }

// resolveValue looks up name (honoring a `[@]`/`[*]` subscript by joining
// every element with IFS's first byte) and reports whether it was ever
// assigned at all, which only the ValueCheck family of modifiers needs to
// distinguish from "assigned but empty".
func resolveValue(core *shellstate.ShellCore, cfg *Config, name string, sub *syntax.Subscript) (string, bool, error) {
	if name == "@" || name == "*" {
		elems := core.DB.GetPositionParams()
		return strings.Join(elems, ifsJoiner(core)), len(elems) > 0, nil
	}
	if sub == nil {
		return core.DB.GetParam(name), core.DB.HasValue(name), nil
	}
	idx := strings.Trim(sub.Raw, "[]")
	if idx == "@" || idx == "*" {
		elems := core.DB.GetArrayAll(name)
		return strings.Join(elems, ifsJoiner(core)), len(elems) > 0, nil
	}
	n, err := Arith(core, idx)
	if err != nil {
		return "", false, err
	}
	s, err := core.DB.GetArrayElem(name, strconv.Itoa(n))
	if err != nil {
		if _, isKeyErr := err.(*shellstate.ArrayIndexError); isKeyErr {
			return "", false, nil
		}
		return "", false, err
	}
	return s, s != "", nil
}

func lengthOf(core *shellstate.ShellCore, name string, sub *syntax.Subscript) int {
	if sub != nil {
		idx := strings.Trim(sub.Raw, "[]")
		if idx == "@" || idx == "*" {
			return core.DB.Len(name)
		}
	}
	if name == "@" || name == "*" {
		return len(core.DB.GetPositionParams())
	}
	return len([]rune(core.DB.GetParam(name)))
}

func ifsJoiner(core *shellstate.ShellCore) string {
	ifs := core.DB.GetParam("IFS")
	if !core.DB.HasValue("IFS") {
		return " "
	}
	if ifs == "" {
		return ""
	}
	return string(ifs[0])
}

func applyValueCheck(core *shellstate.ShellCore, cfg *Config, name, value string, isSet bool, vc *syntax.ValueCheck) (string, error) {
	empty := !isSet || (vc.Colon && value == "")
	switch vc.Op {
	case syntax.CheckMinus:
		if empty {
			return expandOperand(core, cfg, vc.Operand)
		}
		return value, nil
	case syntax.CheckPlus:
		if empty {
			return "", nil
		}
		return expandOperand(core, cfg, vc.Operand)
	case syntax.CheckEqual:
		if empty {
			alt, err := expandOperand(core, cfg, vc.Operand)
			if err != nil {
				return "", err
			}
			core.DB.SetParam(name, alt)
			return alt, nil
		}
		return value, nil
	case syntax.CheckQuest:
		if empty {
			msg, err := expandOperand(core, cfg, vc.Operand)
			if err != nil {
				return "", err
			}
			if msg == "" {
				msg = name + ": parameter null or not set"
			}
			return "", &UnboundParamError{Name: name, Message: msg}
		}
		return value, nil
	}
	return value, nil
}

// UnboundParamError is returned by ${x:?message} when x is empty/unset;
// the executor maps it to exit status 1 and prints Message the way
// spec.md §4.2 describes.
type UnboundParamError struct {
	Name, Message string
}

func (e *UnboundParamError) Error() string { return e.Message }

func expandOperand(core *shellstate.ShellCore, cfg *Config, w *syntax.Word) (string, error) {
	if w == nil {
		return "", nil
	}
	val, _, err := substituteWord(core, cfg, w)
	return val, err
}

func applySubstr(core *shellstate.ShellCore, value string, m *syntax.SubstrModifier) (string, error) {
	runes := []rune(value)
	off, err := Arith(core, m.Offset)
	if err != nil {
		return "", err
	}
	if off < 0 {
		off += len(runes)
		if off < 0 {
			off = 0
		}
	}
	if off > len(runes) {
		off = len(runes)
	}
	if !m.HasLength {
		return string(runes[off:]), nil
	}
	length, err := Arith(core, m.Length)
	if err != nil {
		return "", err
	}
	end := off + length
	if length < 0 {
		end = len(runes) + length
	}
	if end > len(runes) {
		end = len(runes)
	}
	if end < off {
		return "", nil
	}
	return string(runes[off:end]), nil
}

func applyRemove(core *shellstate.ShellCore, cfg *Config, value string, m *syntax.RemoveModifier) (string, error) {
	pat, err := expandOperand(core, cfg, m.Pattern)
	if err != nil {
		return "", err
	}
	mode := pattern.Shortest
	if m.Longest {
		mode = 0
	}
	if !m.Suffix {
		return removePrefix(pat, value, mode)
	}
	return removeSuffix(pat, value, mode)
}

func removePrefix(pat, value string, mode pattern.Mode) (string, error) {
	runes := []rune(value)
	best := -1
	order := make([]int, len(runes)+1)
	for i := range order {
		order[i] = i
	}
	if mode&pattern.Shortest == 0 {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}
	for _, i := range order {
		ok, err := pattern.Match(pat, string(runes[:i]))
		if err != nil {
			return "", err
		}
		if ok {
			best = i
			break
		}
	}
	if best < 0 {
		return value, nil
	}
	return string(runes[best:]), nil
}

func removeSuffix(pat, value string, mode pattern.Mode) (string, error) {
	runes := []rune(value)
	best := -1
	order := make([]int, len(runes)+1)
	for i := range order {
		order[i] = len(runes) - i
	}
	if mode&pattern.Shortest == 0 {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}
	for _, i := range order {
		ok, err := pattern.Match(pat, string(runes[i:]))
		if err != nil {
			return "", err
		}
		if ok {
			best = i
			break
		}
	}
	if best < 0 {
		return value, nil
	}
	return string(runes[:best]), nil
}

func applyReplace(core *shellstate.ShellCore, cfg *Config, value string, m *syntax.ReplaceModifier) (string, error) {
	pat, err := expandOperand(core, cfg, m.Pattern)
	if err != nil {
		return "", err
	}
	repl := ""
	if m.HasRepl {
		repl, err = expandOperand(core, cfg, m.Repl)
		if err != nil {
			return "", err
		}
	}
	switch {
	case m.AnchorL:
		return replaceAnchored(pat, repl, value, true), nil
	case m.AnchorR:
		return replaceAnchored(pat, repl, value, false), nil
	case m.All:
		return replaceAll(pat, repl, value)
	default:
		return replaceFirst(pat, repl, value)
	}
}

func replaceAnchored(pat, repl, value string, left bool) string {
	runes := []rune(value)
	if left {
		for i := len(runes); i >= 0; i-- {
			if ok, _ := pattern.Match(pat, string(runes[:i])); ok {
				return repl + string(runes[i:])
			}
		}
		return value
	}
	for i := 0; i <= len(runes); i++ {
		if ok, _ := pattern.Match(pat, string(runes[i:])); ok {
			return string(runes[:i]) + repl
		}
	}
	return value
}

func replaceFirst(pat, repl, value string) (string, error) {
	runes := []rune(value)
	for start := 0; start <= len(runes); start++ {
		for end := len(runes); end >= start; end-- {
			ok, err := pattern.Match(pat, string(runes[start:end]))
			if err != nil {
				return "", err
			}
			if ok && end > start {
				return string(runes[:start]) + repl + string(runes[end:]), nil
			}
		}
	}
	return value, nil
}

func replaceAll(pat, repl, value string) (string, error) {
	var out strings.Builder
	runes := []rune(value)
	i := 0
	for i < len(runes) {
		matched := false
		for end := len(runes); end > i; end-- {
			ok, err := pattern.Match(pat, string(runes[i:end]))
			if err != nil {
				return "", err
			}
			if ok {
				out.WriteString(repl)
				i = end
				matched = true
				break
			}
		}
		if !matched {
			out.WriteRune(runes[i])
			i++
		}
	}
	return out.String(), nil
}
