package syntax

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	qt "github.com/frankban/quicktest"

	"github.com/sushlang/sush/shellstate"
)

func parseOneLine(c *qt.C, line string) *Script {
	f := NewFeederFromString(line)
	core := shellstate.New()
	sc, err := ParseScript(f, core, nil)
	c.Assert(err, qt.IsNil)
	return sc
}

func TestParseSimpleCommand(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "echo hello world\n")
	c.Assert(sc.Items, qt.HasLen, 1)
	cmd, ok := sc.Items[0].Pipeline.Commands[0].(*SimpleCommand)
	c.Assert(ok, qt.IsTrue)
	c.Assert(cmd.Args, qt.HasLen, 3)
	c.Assert(cmd.Args[0].Raw, qt.Equals, "echo")
	c.Assert(cmd.Args[2].Raw, qt.Equals, "world")
}

func TestParseAssignmentPrefix(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "X=1 Y=2 echo $X\n")
	cmd := sc.Items[0].Pipeline.Commands[0].(*SimpleCommand)
	c.Assert(cmd.Assigns, qt.HasLen, 2)
	c.Assert(cmd.Assigns[0].Name, qt.Equals, "X")
	c.Assert(cmd.Assigns[1].Name, qt.Equals, "Y")
	c.Assert(cmd.Args, qt.HasLen, 2)
}

func TestParsePipeline(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "echo hi | cat | wc -l\n")
	c.Assert(sc.Items, qt.HasLen, 1)
	pl := sc.Items[0].Pipeline
	c.Assert(pl.Commands, qt.HasLen, 3)
	c.Assert(pl.Negated, qt.IsFalse)
}

func TestParseNegatedPipeline(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "! grep foo file\n")
	pl := sc.Items[0].Pipeline
	c.Assert(pl.Negated, qt.IsTrue)
}

func TestParseAndOrSequence(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "true && echo a || echo b\n")
	c.Assert(sc.Items, qt.HasLen, 3)
	c.Assert(sc.Items[0].Sep, qt.Equals, "&&")
	c.Assert(sc.Items[1].Sep, qt.Equals, "||")
	c.Assert(sc.Items[2].Sep, qt.Equals, "\n")
}

func TestParseBackgroundSeparator(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "sleep 1 &\n")
	c.Assert(sc.Items[0].Sep, qt.Equals, "&")
}

func TestParseRedirectOnSimpleCommand(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "echo hi > out.txt 2>> err.txt\n")
	cmd := sc.Items[0].Pipeline.Commands[0].(*SimpleCommand)
	c.Assert(cmd.Redirs, qt.HasLen, 2)
	c.Assert(cmd.Redirs[0].Op, qt.Equals, RedirOut)
	c.Assert(cmd.Redirs[0].Word.Raw, qt.Equals, "out.txt")
	c.Assert(cmd.Redirs[1].Op, qt.Equals, RedirAppend)
	c.Assert(cmd.Redirs[1].TargetFD, qt.Equals, 2)
	c.Assert(cmd.Redirs[1].HasFD, qt.IsTrue)
}

func TestParseDupRedirect(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "echo hi 2>&1\n")
	cmd := sc.Items[0].Pipeline.Commands[0].(*SimpleCommand)
	c.Assert(cmd.Redirs, qt.HasLen, 1)
	c.Assert(cmd.Redirs[0].Op, qt.Equals, RedirDupOut)
	c.Assert(cmd.Redirs[0].Word.Raw, qt.Equals, "1")
}

func TestParseIfCommand(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "if true; then echo yes; else echo no; fi\n")
	c.Assert(sc.Items, qt.HasLen, 1)
	ifc, ok := sc.Items[0].Pipeline.Commands[0].(*IfCommand)
	c.Assert(ok, qt.IsTrue)
	c.Assert(ifc.Cond.Items, qt.HasLen, 1)
	c.Assert(ifc.Body.Items, qt.HasLen, 1)
	c.Assert(ifc.Else, qt.Not(qt.IsNil))
	c.Assert(ifc.Elifs, qt.HasLen, 0)
}

func TestParseIfElifChain(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "if false; then echo a; elif true; then echo b; fi\n")
	ifc := sc.Items[0].Pipeline.Commands[0].(*IfCommand)
	c.Assert(ifc.Elifs, qt.HasLen, 1)
	c.Assert(ifc.Else, qt.IsNil)
}

func TestParseWhileCommand(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "while true; do echo loop; done\n")
	w, ok := sc.Items[0].Pipeline.Commands[0].(*WhileCommand)
	c.Assert(ok, qt.IsTrue)
	c.Assert(w.Until, qt.IsFalse)
}

func TestParseUntilCommand(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "until false; do echo loop; done\n")
	w := sc.Items[0].Pipeline.Commands[0].(*WhileCommand)
	c.Assert(w.Until, qt.IsTrue)
}

func TestParseForCommand(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "for x in a b c; do echo $x; done\n")
	fc, ok := sc.Items[0].Pipeline.Commands[0].(*ForCommand)
	c.Assert(ok, qt.IsTrue)
	c.Assert(fc.Var, qt.Equals, "x")
	c.Assert(fc.List, qt.HasLen, 3)
}

func TestParseForCommandWithoutIn(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "for x; do echo $x; done\n")
	fc := sc.Items[0].Pipeline.Commands[0].(*ForCommand)
	c.Assert(fc.List, qt.IsNil)
}

func TestParseParenCommand(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "(echo sub; exit 1)\n")
	pc, ok := sc.Items[0].Pipeline.Commands[0].(*ParenCommand)
	c.Assert(ok, qt.IsTrue)
	c.Assert(pc.Body.Items, qt.HasLen, 2)
}

func TestParseBraceCommand(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "{ echo a; echo b; }\n")
	bc, ok := sc.Items[0].Pipeline.Commands[0].(*BraceCommand)
	c.Assert(ok, qt.IsTrue)
	c.Assert(bc.Body.Items, qt.HasLen, 2)
}

func TestParseStderrMergeDesugaring(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "cmd1 |& cmd2\n")
	pl := sc.Items[0].Pipeline
	c.Assert(pl.StderrMerge, qt.DeepEquals, []bool{true})
	first := pl.Commands[0].(*SimpleCommand)
	c.Assert(first.Redirs, qt.HasLen, 1)
	c.Assert(first.Redirs[0].Op, qt.Equals, RedirDupOut)
}

// TestParseForListWordsShape compares the parsed For-loop list word by
// word with go-cmp rather than just a length check, ignoring the Word's
// cached Parts slice (its exact subword split isn't this test's concern).
func TestParseForListWordsShape(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "for x in one two; do :; done\n")
	fc := sc.Items[0].Pipeline.Commands[0].(*ForCommand)
	want := []*Word{{Raw: "one"}, {Raw: "two"}}
	diff := cmp.Diff(want, fc.List, cmpopts.IgnoreFields(Word{}, "Parts"))
	c.Assert(diff, qt.Equals, "")
}

func TestParseContinuationAcrossNestedConstruct(t *testing.T) {
	c := qt.New(t)
	f := NewFeederFromString("if true\n")
	core := shellstate.New()
	// Parsing the opening line alone needs more input: the feeder has no
	// further LineSource, so FeedAdditionalLine must fail with
	// NeedMoreInput rather than silently returning a truncated script.
	_, err := ParseScript(f, core, nil)
	c.Assert(err, qt.Not(qt.IsNil))
	pe, ok := err.(*ParseError)
	c.Assert(ok, qt.IsTrue)
	c.Assert(pe.Kind, qt.Equals, NeedMoreInput)
}

func TestParseHeredocBody(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "cat <<EOF\nline one\nline two\nEOF\n")
	cmd := sc.Items[0].Pipeline.Commands[0].(*SimpleCommand)
	c.Assert(cmd.Redirs, qt.HasLen, 1)
	rd := cmd.Redirs[0]
	c.Assert(rd.Op, qt.Equals, RedirHeredoc)
	c.Assert(rd.HeredocBody, qt.Equals, "line one\nline two\n")
	c.Assert(rd.HeredocQuote, qt.IsFalse)
}

func TestParseHeredocTabsStripsLeadingTabs(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "cat <<-EOF\n\tindented\n\tEOF\n")
	cmd := sc.Items[0].Pipeline.Commands[0].(*SimpleCommand)
	rd := cmd.Redirs[0]
	c.Assert(rd.Op, qt.Equals, RedirHeredocTabs)
	c.Assert(rd.HeredocBody, qt.Equals, "indented\n")
}

func TestParseHeredocQuotedDelimiter(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "cat <<'EOF'\nliteral $x\nEOF\n")
	cmd := sc.Items[0].Pipeline.Commands[0].(*SimpleCommand)
	rd := cmd.Redirs[0]
	c.Assert(rd.HeredocQuote, qt.IsTrue)
	c.Assert(rd.HeredocBody, qt.Equals, "literal $x\n")
}

func TestParseHeredocThenPipeOnSameLine(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, "cat <<EOF | grep one\nline one\nline two\nEOF\n")
	pl := sc.Items[0].Pipeline
	c.Assert(pl.Commands, qt.HasLen, 2)
	first := pl.Commands[0].(*SimpleCommand)
	c.Assert(first.Redirs, qt.HasLen, 1)
	c.Assert(first.Redirs[0].HeredocBody, qt.Equals, "line one\nline two\n")
	second := pl.Commands[1].(*SimpleCommand)
	c.Assert(second.Args[0].Raw, qt.Equals, "grep")
}

func TestParseHereString(t *testing.T) {
	c := qt.New(t)
	sc := parseOneLine(c, `cat <<< "a here-string"`+"\n")
	cmd := sc.Items[0].Pipeline.Commands[0].(*SimpleCommand)
	c.Assert(cmd.Redirs, qt.HasLen, 1)
	rd := cmd.Redirs[0]
	c.Assert(rd.Op, qt.Equals, RedirHereString)
	c.Assert(rd.Word.Raw, qt.Equals, `"a here-string"`)
}
