package expand

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	qt "github.com/frankban/quicktest"

	"github.com/sushlang/sush/shellstate"
	"github.com/sushlang/sush/syntax"
)

func parseWord(c *qt.C, core *shellstate.ShellCore, raw string) *syntax.Word {
	f := syntax.NewFeederFromString(raw)
	w, err := syntax.ParseWord(f, core, false)
	c.Assert(err, qt.IsNil)
	c.Assert(w, qt.Not(qt.IsNil))
	return w
}

func TestFieldsLiteral(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	w := parseWord(c, core, "hello")
	fields, err := Fields(core, &Config{}, w)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.DeepEquals, []string{"hello"})
}

func TestFieldsParameterExpansionAndSplit(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	core.DB.SetParam("X", "a  b   c")
	w := parseWord(c, core, "$X")
	fields, err := Fields(core, &Config{}, w)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.DeepEquals, []string{"a", "b", "c"})
}

func TestFieldsSingleQuotedNotSplit(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	w := parseWord(c, core, `'a  b'`)
	fields, err := Fields(core, &Config{}, w)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.DeepEquals, []string{"a  b"})
}

func TestFieldsDoubleQuotedParameterNotSplit(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	core.DB.SetParam("X", "a  b   c")
	w := parseWord(c, core, `"$X"`)
	fields, err := Fields(core, &Config{}, w)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.DeepEquals, []string{"a  b   c"})
}

func TestFieldsDoubleQuotedPositionalSplitsPerElement(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	core.DB.SetPositionParams([]string{"a b", "c", "d e"})
	w := parseWord(c, core, `"$@"`)
	fields, err := Fields(core, &Config{}, w)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.DeepEquals, []string{"a b", "c", "d e"})
}

func TestValueOfNoSplitting(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	core.DB.SetParam("X", "a  b")
	w := parseWord(c, core, "$X")
	val, err := ValueOf(core, &Config{}, w)
	c.Assert(err, qt.IsNil)
	c.Assert(val, qt.Equals, "a  b")
}

func TestFieldsBraceExpansion(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	w := parseWord(c, core, "file{1,2,3}.txt")
	fields, err := Fields(core, &Config{}, w)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.DeepEquals, []string{"file1.txt", "file2.txt", "file3.txt"})
}

func TestFieldsArithmeticExpansion(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	w := parseWord(c, core, "$((2+3*4))")
	fields, err := Fields(core, &Config{}, w)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.DeepEquals, []string{"14"})
}

func TestFieldsCommandSubstitutionCallsSubshellHook(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	cfg := &Config{Subshell: func(*shellstate.ShellCore, *syntax.Script) (string, error) {
		return "captured", nil
	}}
	w := parseWord(c, core, "$(anything)")
	fields, err := Fields(core, cfg, w)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.DeepEquals, []string{"captured"})
}

// TestFieldsMultipleArgsDiff diffs a whole argv expansion in one shot
// with go-cmp rather than field-by-field qt.Equals calls, the way
// SPEC_FULL's domain-stack section calls for go-cmp in expand's tests.
func TestFieldsMultipleArgsDiff(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	core.DB.SetParam("X", "one two")
	words := []*syntax.Word{
		parseWord(c, core, "literal"),
		parseWord(c, core, "$X"),
		parseWord(c, core, `"$X"`),
	}
	var got []string
	for _, w := range words {
		fields, err := Fields(core, &Config{}, w)
		c.Assert(err, qt.IsNil)
		got = append(got, fields...)
	}
	want := []string{"literal", "one", "two", "one two"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Fields() mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldsDefaultValueModifier(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	w := parseWord(c, core, "${X:-fallback}")
	fields, err := Fields(core, &Config{}, w)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.DeepEquals, []string{"fallback"})

	core.DB.SetParam("X", "set")
	w = parseWord(c, core, "${X:-fallback}")
	fields, err = Fields(core, &Config{}, w)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.DeepEquals, []string{"set"})
}

func TestFieldsIndirectScalar(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	core.DB.SetParam("ref", "target")
	core.DB.SetParam("target", "value")
	w := parseWord(c, core, "${!ref}")
	fields, err := Fields(core, &Config{}, w)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.DeepEquals, []string{"value"})
}

func TestFieldsIndirectArrayIndexes(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	core.DB.SetArrayElem("arr", 0, "a")
	core.DB.SetArrayElem("arr", 2, "c")
	w := parseWord(c, core, "${!arr[@]}")
	fields, err := Fields(core, &Config{}, w)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.DeepEquals, []string{"0", "2"})
}

func TestFieldsIndirectArrayIndexesRejectsModifier(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	core.DB.SetArrayElem("arr", 0, "a")
	w := parseWord(c, core, "${!arr[@]:-fallback}")
	_, err := Fields(core, &Config{}, w)
	c.Assert(err, qt.Not(qt.IsNil))
	var invalid *InvalidNameError
	c.Assert(errors.As(err, &invalid), qt.IsTrue)
}

func TestFieldsIndirectViaSubscriptedValue(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	core.DB.SetParam("ref", "arr[1]")
	core.DB.SetArrayElem("arr", 1, "b")
	w := parseWord(c, core, "${!ref}")
	fields, err := Fields(core, &Config{}, w)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.DeepEquals, []string{"b"})
}

func TestFieldsUnsetParamProducesZeroFields(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	w := parseWord(c, core, "$X")
	fields, err := Fields(core, &Config{}, w)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.HasLen, 0)
}

func TestFieldsBarePositionalParamsZeroArgsProducesZeroFields(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	core.DB.SetPositionParams(nil)
	w := parseWord(c, core, "$@")
	fields, err := Fields(core, &Config{}, w)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.HasLen, 0)
}

func TestFieldsQuotedPositionalParamsZeroArgsProducesZeroFields(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	core.DB.SetPositionParams(nil)
	w := parseWord(c, core, `"$@"`)
	fields, err := Fields(core, &Config{}, w)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.HasLen, 0)
}

func TestFieldsLiteralEmptyQuoteStillProducesOneField(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	w := parseWord(c, core, `""`)
	fields, err := Fields(core, &Config{}, w)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.DeepEquals, []string{""})
}

func TestFieldsLiteralPrefixWithZeroArgPositionalMerges(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	core.DB.SetPositionParams(nil)
	w := parseWord(c, core, `"a$@b"`)
	fields, err := Fields(core, &Config{}, w)
	c.Assert(err, qt.IsNil)
	c.Assert(fields, qt.DeepEquals, []string{"ab"})
}

func TestFieldsIndirectInvalidName(t *testing.T) {
	c := qt.New(t)
	core := shellstate.New()
	core.DB.SetParam("ref", "not a name")
	w := parseWord(c, core, "${!ref}")
	_, err := Fields(core, &Config{}, w)
	c.Assert(err, qt.Not(qt.IsNil))
	var invalid *InvalidNameError
	c.Assert(errors.As(err, &invalid), qt.IsTrue)
}
