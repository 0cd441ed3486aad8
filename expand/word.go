package expand

import (
	"strconv"
	"strings"

	"github.com/sushlang/sush/shellstate"
	"github.com/sushlang/sush/syntax"
)

// Fields runs the full word-expansion pipeline SPEC_FULL.md's word
// pipeline section names, in order: brace expansion, tilde expansion,
// parameter/command/arithmetic substitution, IFS field splitting, then
// pathname expansion. It is the entry point interp calls for every
// argument word and for-loop list word; redirection targets and
// assignment values go through ValueOf instead.
func Fields(core *shellstate.ShellCore, cfg *Config, w *syntax.Word) ([]string, error) {
	var allFields []string
	for _, raw := range ExpandBraces(w.Raw) {
		word, err := reparseWord(core, raw)
		if err != nil {
			return nil, err
		}
		if word == nil {
			continue
		}
		word = expandTilde(core, word)
		fields, err := substituteAndSplit(core, cfg, word)
		if err != nil {
			return nil, err
		}
		for _, f := range fields {
			allFields = append(allFields, expandPathnames(core, f)...)
		}
	}
	return allFields, nil
}

// ValueOf expands w to a single string with no field splitting or
// pathname expansion applied — the form needed for an assignment's
// right-hand side, a here-string body, or a BracedParam operand.
func ValueOf(core *shellstate.ShellCore, cfg *Config, w *syntax.Word) (string, error) {
	val, _, err := substituteWord(core, cfg, w)
	return val, err
}

func reparseWord(core *shellstate.ShellCore, raw string) (*syntax.Word, error) {
	f := syntax.NewFeederFromString(raw)
	return syntax.ParseWord(f, core, false)
}

// substituteAndSplit walks w's parts left to right, gluing literal text
// directly onto the current field and splitting only the output of a
// dynamic expansion (Parameter/BracedParam/Arithmetic/CommandSubstitution)
// on IFS — literal text was already word-bounded by the parser, so it
// never itself introduces a field break (spec.md §4.3 step 4).
//
// sawContent tracks whether anything other than a splittable expansion's
// own (possibly zero-field) output ever reached cur: a word that is
// nothing but e.g. an unset "$X" or a zero-length "$@" must vanish into
// zero fields entirely (spec.md §8's field-count law), while a genuinely
// empty literal/quoted word (bare "") still produces one empty field.
func substituteAndSplit(core *shellstate.ShellCore, cfg *Config, w *syntax.Word) ([]string, error) {
	ifs := ifsCharSet(core)
	var fields []string
	var cur strings.Builder
	have := false
	sawContent := len(w.Parts) == 0
	flush := func() {
		fields = append(fields, cur.String())
		cur.Reset()
		have = false
	}
	glue := func(segs []string) {
		if len(segs) == 0 {
			return
		}
		sawContent = true
		cur.WriteString(segs[0])
		have = true
		for _, extra := range segs[1:] {
			flush()
			cur.WriteString(extra)
			have = true
		}
	}

	for _, sw := range w.Parts {
		if dq, ok := sw.(*syntax.DoubleQuoted); ok {
			pieces, err := substituteDoubleQuoted(core, cfg, dq)
			if err != nil {
				return nil, err
			}
			glue(pieces)
			continue
		}
		val, err := substituteSubword(core, cfg, sw)
		if err != nil {
			return nil, err
		}
		if isSplittableExpansion(sw) {
			glue(splitOnIFS(val, ifs))
		} else {
			sawContent = true
			cur.WriteString(val)
			have = true
		}
	}
	if have || (len(fields) == 0 && sawContent) {
		fields = append(fields, cur.String())
	}
	return fields, nil
}

func isSplittableExpansion(sw syntax.Subword) bool {
	switch sw.(type) {
	case *syntax.Parameter, *syntax.BracedParam, *syntax.Arithmetic, *syntax.CommandSubstitution:
		return true
	default:
		return false
	}
}

// substituteWord expands every part of w and concatenates the results
// with no splitting at all — used wherever a single scalar value is
// wanted (BracedParam operands, assignment RHS, arithmetic/subscript
// text). The returned split points mirror DoubleQuoted.SplitPoints: byte
// offsets where an embedded array/@ expansion forced a field boundary,
// kept here only so a future caller embedding this word inside another
// DoubleQuoted can still see them.
func substituteWord(core *shellstate.ShellCore, cfg *Config, w *syntax.Word) (string, []int, error) {
	var out strings.Builder
	var splitPoints []int
	for _, sw := range w.Parts {
		if dq, ok := sw.(*syntax.DoubleQuoted); ok {
			pieces, err := substituteDoubleQuoted(core, cfg, dq)
			if err != nil {
				return "", nil, err
			}
			for i, p := range pieces {
				if i > 0 {
					splitPoints = append(splitPoints, out.Len())
				}
				out.WriteString(p)
			}
			continue
		}
		val, err := substituteSubword(core, cfg, sw)
		if err != nil {
			return "", nil, err
		}
		out.WriteString(val)
	}
	return out.String(), splitPoints, nil
}

// substituteDoubleQuoted evaluates a "..." subword's parts, returning the
// field pieces its embedded "$@"/"${arr[@]}" expansions force (spec.md
// §3/§4.3's split-point mechanism); a quoted word with no such embedded
// expansion always returns exactly one piece. A quoted word whose entire
// content is a single "$@"/"${arr[@]}" expansion over zero elements
// returns nil, not one empty piece, so it vanishes into zero fields
// instead of surviving as an empty argument (spec.md §8); a literal empty
// "" still returns one empty piece, since it has no Parts to begin with.
func substituteDoubleQuoted(core *shellstate.ShellCore, cfg *Config, dq *syntax.DoubleQuoted) ([]string, error) {
	pieces := []string{""}
	producedSomething := len(dq.Parts) == 0
	appendTo := func(s string) { pieces[len(pieces)-1] += s }
	appendArray := func(elems []string) {
		if len(elems) == 0 {
			return
		}
		producedSomething = true
		appendTo(elems[0])
		pieces = append(pieces, elems[1:]...)
	}

	for _, sw := range dq.Parts {
		switch v := sw.(type) {
		case *syntax.Parameter:
			if v.Name == "@" {
				appendArray(core.DB.GetPositionParams())
				continue
			}
			val, err := substituteSubword(core, cfg, sw)
			if err != nil {
				return nil, err
			}
			producedSomething = true
			appendTo(val)
		case *syntax.BracedParam:
			if v.IsArray && v.Subscript != nil {
				idx := strings.Trim(v.Subscript.Raw, "[]")
				if idx == "@" {
					name := v.Name
					var elems []string
					if name == "@" || name == "*" {
						elems = core.DB.GetPositionParams()
					} else {
						elems = core.DB.GetArrayAll(name)
					}
					appendArray(elems)
					continue
				}
			}
			val, err := substituteSubword(core, cfg, sw)
			if err != nil {
				return nil, err
			}
			producedSomething = true
			appendTo(val)
		default:
			val, err := substituteSubword(core, cfg, sw)
			if err != nil {
				return nil, err
			}
			producedSomething = true
			appendTo(val)
		}
	}
	if !producedSomething {
		return nil, nil
	}
	return pieces, nil
}

// substituteSubword evaluates one Subword leaf in isolation.
func substituteSubword(core *shellstate.ShellCore, cfg *Config, sw syntax.Subword) (string, error) {
	switch v := sw.(type) {
	case *syntax.Lit:
		return v.Value, nil
	case *syntax.EscapedChar:
		if len(v.Raw) >= 2 {
			return v.Raw[1:], nil
		}
		return "", nil
	case *syntax.SingleQuoted:
		return unquoteSingle(v.Raw), nil
	case *syntax.VarName:
		return v.Name, nil
	case *syntax.Filler:
		return v.Raw, nil
	case *syntax.DoubleQuoted:
		pieces, err := substituteDoubleQuoted(core, cfg, v)
		if err != nil {
			return "", err
		}
		return strings.Join(pieces, ifsJoiner(core)), nil
	case *syntax.Parameter:
		return substituteParameter(core, v), nil
	case *syntax.BracedParam:
		return substituteBracedParam(core, cfg, v)
	case *syntax.Arithmetic:
		n, err := Arith(core, v.Expr)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(n), nil
	case *syntax.CommandSubstitution:
		if cfg == nil || cfg.Subshell == nil {
			return "", nil
		}
		return cfg.Subshell(core, v.Body)
	default:
		return "", nil
	}
}

func substituteParameter(core *shellstate.ShellCore, p *syntax.Parameter) string {
	switch p.Name {
	case "@", "*":
		return strings.Join(core.DB.GetPositionParams(), ifsJoiner(core))
	default:
		return core.DB.GetParam(p.Name)
	}
}

func unquoteSingle(raw string) string {
	if len(raw) < 2 {
		return ""
	}
	return raw[1 : len(raw)-1]
}
