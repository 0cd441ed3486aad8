package pattern

import (
	"regexp"
	"testing"

	qt "github.com/frankban/quicktest"
)

var regexpTests = []struct {
	pat  string
	mode Mode
	want string

	mustMatch    []string
	mustNotMatch []string
}{
	{pat: ``, want: ``},
	{pat: `foo`, want: `foo`},
	{pat: `.`, want: `(?s)\.`},
	{pat: `foo*`, want: `(?s)foo.*`},
	{pat: `foo*`, mode: Shortest, want: `(?sU)foo.*`},
	{pat: `foo?bar`, want: `(?s)foo.bar`},
	{
		pat: `*.go`, mode: EntireString, want: `(?s)^.*\.go$`,
		mustMatch:    []string{"a.go", "pkg/a.go"},
		mustNotMatch: []string{"a.gox"},
	},
	{
		pat: `[abc]`, mode: EntireString, want: `(?s)^[abc]$`,
		mustMatch:    []string{"a", "b", "c"},
		mustNotMatch: []string{"d"},
	},
	{
		pat: `[!abc]`, mode: EntireString, want: `(?s)^[^abc]$`,
		mustMatch:    []string{"d"},
		mustNotMatch: []string{"a"},
	},
}

func TestRegexp(t *testing.T) {
	c := qt.New(t)
	for _, tc := range regexpTests {
		got, err := Regexp(tc.pat, tc.mode)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, tc.want)

		re, err := regexp.Compile(got)
		c.Assert(err, qt.IsNil)
		for _, s := range tc.mustMatch {
			c.Assert(re.MatchString(s), qt.IsTrue, qt.Commentf("pat=%q s=%q", tc.pat, s))
		}
		for _, s := range tc.mustNotMatch {
			c.Assert(re.MatchString(s), qt.IsFalse, qt.Commentf("pat=%q s=%q", tc.pat, s))
		}
	}
}

func TestHasMeta(t *testing.T) {
	c := qt.New(t)
	c.Assert(HasMeta("foo"), qt.IsFalse)
	c.Assert(HasMeta("foo*"), qt.IsTrue)
	c.Assert(HasMeta(`foo\*bar`), qt.IsFalse)
	c.Assert(HasMeta("foo[bar]"), qt.IsTrue)
}

func TestQuoteMeta(t *testing.T) {
	c := qt.New(t)
	c.Assert(QuoteMeta("foo"), qt.Equals, "foo")
	c.Assert(QuoteMeta("foo*bar?"), qt.Equals, `foo\*bar\?`)
}

func TestMatch(t *testing.T) {
	c := qt.New(t)
	ok, err := Match("*.txt", "notes.txt")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)

	ok, err = Match("*.txt", "notes.go")
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
}
