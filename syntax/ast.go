// Package syntax implements the re-entrant feeder, the subword/word model
// and the recursive-descent parser described in spec.md §3–§4: it builds a
// polymorphic command tree plus the word-level AST that carries every
// shell quoting and substitution form. It never evaluates anything — word
// expansion lives in package expand, execution in package interp — so this
// package has no dependency on the operating system at all.
package syntax

// Subword is the sum type of word leaves (spec.md §3). It is a closed set
// of concrete types below; there is no virtual-dispatch escape hatch, by
// design (spec.md §9).
type Subword interface {
	// Text returns this subword's raw, unexpanded source text.
	Text() string
}

// Lit is an unquoted, unescaped run of literal bytes.
type Lit struct{ Value string }

func (s *Lit) Text() string { return s.Value }

// EscapedChar is a backslash followed by the single character it escapes,
// e.g. `\$`.
type EscapedChar struct{ Raw string }

func (s *EscapedChar) Text() string { return s.Raw }

// SingleQuoted holds the raw text of a '...' literal, quotes included.
type SingleQuoted struct{ Raw string }

func (s *SingleQuoted) Text() string { return s.Raw }

// VarName is a bare name recognized while scanning the inside of a
// DoubleQuoted subword; spec.md §3 notes it exists "for later $VAR
// recognition" — it never itself expands, it simply lets the double-quote
// scanner tell a variable name apart from surrounding literal text.
type VarName struct{ Name string }

func (s *VarName) Text() string { return s.Name }

// Filler is one opaque byte consumed inside a BracedParam's unrecognized
// trailing text (spec.md §4.2's "Unknown" bookkeeping).
type Filler struct{ Raw string }

func (s *Filler) Text() string { return s.Raw }

// DoubleQuoted is a "..." word: a list of subwords, plus a SplitPoints
// field for the boundaries where an embedded "$@" / "${arr[@]}" introduces
// a field break. The parser never fills SplitPoints; package expand
// computes those field pieces itself while substituting the word.
type DoubleQuoted struct {
	Raw         string
	Parts       []Subword
	SplitPoints []int
}

func (s *DoubleQuoted) Text() string { return s.Raw }

// Parameter is a special or positional parameter ($?, $@, $*, $#, $$, $-,
// $!, $_, $0..$9) or a bare $NAME reference (but not the braced ${...}
// form, which is BracedParam).
type Parameter struct{ Name string }

func (s *Parameter) Text() string { return "$" + s.Name }

// Arithmetic is a $((...)) expansion. Expr holds the raw text between the
// double parens; package expand parses and evaluates it.
type Arithmetic struct {
	Raw  string
	Expr string
}

func (s *Arithmetic) Text() string { return s.Raw }

// CommandSubstitution is $(...) or `...`.
type CommandSubstitution struct {
	Raw      string
	Body     *Script
	Backtick bool
}

func (s *CommandSubstitution) Text() string { return s.Raw }

// Subscript is the raw `[...]` text following a parameter name inside a
// BracedParam. Its contents are either an arithmetic expression or the
// literal `@`/`*`; package expand evaluates it against the variable's kind.
type Subscript struct{ Raw string }

// ValueCheckOp is the `:-`, `:=`, `:?`, `:+` family of BracedParam
// modifiers (spec.md §4.2).
type ValueCheckOp byte

const (
	CheckMinus ValueCheckOp = '-'
	CheckEqual ValueCheckOp = '='
	CheckQuest ValueCheckOp = '?'
	CheckPlus  ValueCheckOp = '+'
)

type ValueCheck struct {
	Op      ValueCheckOp
	Colon   bool // true tests "unset or empty"; false tests only "unset"
	Operand *Word
}

// SubstrModifier is `${x:off}` / `${x:off:len}`.
type SubstrModifier struct {
	Offset    string // arithmetic expression text
	Length    string // arithmetic expression text; only meaningful if HasLength
	HasLength bool
}

// RemoveModifier is `${x#p}` / `${x##p}` / `${x%p}` / `${x%%p}`.
type RemoveModifier struct {
	Suffix  bool // % / %% (false means # / ##, prefix)
	Longest bool // ## or %%
	Pattern *Word
}

// ReplaceModifier is `${x/p/r}`, `${x//p/r}`, `${x/#p/r}`, `${x/%p/r}`.
type ReplaceModifier struct {
	All      bool // //
	AnchorL  bool // /#
	AnchorR  bool // /%
	Pattern  *Word
	Repl     *Word
	HasRepl  bool
}

// BracedParam is the hardest subword: `${...}` with its optional
// subscript and at-most-one modifier (spec.md §3). At most one of
// ValueCheckMod/SubstrMod/RemoveMod/ReplaceMod is non-nil at a time.
type BracedParam struct {
	Raw       string
	Name      string
	Subscript *Subscript

	ValueCheckMod *ValueCheck
	SubstrMod     *SubstrModifier
	RemoveMod     *RemoveModifier
	ReplaceMod    *ReplaceModifier

	Num      bool // ${#x}
	Indirect bool // ${!x}
	IsArray  bool // subscript was [*] or [@], or the name is @
	Unknown  string
}

func (s *BracedParam) Text() string { return s.Raw }

// Word is an ordered list of subwords plus its cached raw text — the unit
// the parser emits and the word pipeline expands (spec.md §3).
type Word struct {
	Raw   string
	Parts []Subword
}

// --- Redirects and pipes -----------------------------------------------

// RedirectOp enumerates the redirection operators spec.md §3 names.
type RedirectOp int

const (
	RedirIn        RedirectOp = iota // <
	RedirOut                         // >
	RedirAppend                      // >>
	RedirOutErr                      // &>
	RedirDupOut                      // >&N or N>&M
	RedirDupIn                       // <&N
	RedirHeredoc                     // <<
	RedirHeredocTabs                 // <<-
	RedirHereString                  // <<<
)

// Redirect is one redirection attached to a command: target fd, operator,
// and the word providing the filename/fd/here-doc body (spec.md §3).
type Redirect struct {
	Raw      string
	TargetFD int
	HasFD    bool // an explicit N> was written, vs. the operator's default
	Op       RedirectOp
	Word     *Word
	// Heredoc body text exactly as read (leading tabs removed for "<<-"),
	// never expanded; only set when Op is RedirHeredoc/RedirHeredocTabs.
	HeredocBody  string
	HeredocQuote bool // delimiter was quoted; recorded only, no body is expanded either way
}

// --- Commands ------------------------------------------------------------

// Command is the sum type of command-tree nodes (spec.md §3): Simple,
// Paren, Brace, While, If, plus the supplemented For (SPEC_FULL.md §3).
// Every variant carries its own redirect list, force-fork flag and raw
// text, matching the shared capability set spec.md §9 describes.
type Command interface {
	Text() string
	Redirects() []*Redirect
	ForceFork() bool
	SetForceFork()
}

type base struct {
	Raw       string
	Redirs    []*Redirect
	ForceFork_ bool
}

func (b *base) Text() string           { return b.Raw }
func (b *base) Redirects() []*Redirect { return b.Redirs }
func (b *base) ForceFork() bool        { return b.ForceFork_ }
func (b *base) SetForceFork()          { b.ForceFork_ = true }

// Assign is a leading `NAME=word` assignment on a SimpleCommand.
type Assign struct {
	Name  string
	Value *Word
}

// SimpleCommand is argv words plus leading assignments.
type SimpleCommand struct {
	base
	Assigns []*Assign
	Args    []*Word
}

// ParenCommand is `( script )`; always forks (spec.md §3).
type ParenCommand struct {
	base
	Body *Script
}

// BraceCommand is `{ script }`; it runs in a separate process only when it
// is one stage of a multi-command pipeline, and otherwise in process even
// with redirects — the executor decides that, not the parser.
type BraceCommand struct {
	base
	Body *Script
}

// WhileCommand is `while cond; do body; done` (or `until`, with Until set).
type WhileCommand struct {
	base
	Until bool
	Cond  *Script
	Body  *Script
}

// ElifClause is one `elif cond; then body` link in an IfCommand's chain.
type ElifClause struct {
	Cond *Script
	Body *Script
}

// IfCommand is `if cond; then body; [elif ...]... [else ...]; fi`.
type IfCommand struct {
	base
	Cond  *Script
	Body  *Script
	Elifs []ElifClause
	Else  *Script // nil if no else clause
}

// ForCommand is `for name in word...; do body; done` — a supplemented
// variant, see SPEC_FULL.md §3.
type ForCommand struct {
	base
	Var  string
	List []*Word // nil means "in \"$@\"" (the default when no `in` clause is given)
	Body *Script
}

// --- Scripts and pipelines -------------------------------------------------

// Pipeline is a sequence of commands connected by `|`/`|&`.
type Pipeline struct {
	Negated  bool // leading `!`
	Commands []Command
	// StderrMerge[i] is true when Commands[i] is joined to Commands[i+1]
	// by `|&` rather than plain `|` (stderr is merged into the pipe).
	StderrMerge []bool
	Raw         string
}

// ListItem is one pipeline plus the separator that followed it: ";", "&",
// "&&", "||", "\n", or "" for the last item in a script with no trailing
// separator.
type ListItem struct {
	Pipeline *Pipeline
	Sep      string
}

// Script is an ordered sequence of pipelines (spec.md §3).
type Script struct {
	Items []ListItem
	Raw   string
}
