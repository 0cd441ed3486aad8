package syntax

import (
	"bufio"
	"io"

	"github.com/sushlang/sush/shellstate"
)

// LineSource supplies one line at a time to a Feeder. The one
// implementation here, NewReaderSource, reads a plain bufio.Reader and
// ignores the prompt; cmd/sush uses it for terminal input as well, so no
// prompt is written there either. It is the "terminal line
// editor" spec.md §1 calls an out-of-scope collaborator — the Feeder only
// needs the next line, never how it was edited.
type LineSource interface {
	// ReadLine returns the next line, including its trailing newline if
	// the source had one. Prompt is the text a source may show before
	// reading; NewReaderSource ignores it.
	ReadLine(prompt string) (string, error)
}

// bufLineSource adapts a bufio.Reader (a script file, or stdin treated as
// a plain byte stream) to LineSource.
type bufLineSource struct{ r *bufio.Reader }

// NewReaderSource returns a non-interactive LineSource over r.
func NewReaderSource(r io.Reader) LineSource {
	return &bufLineSource{r: bufio.NewReader(r)}
}

func (s *bufLineSource) ReadLine(prompt string) (string, error) {
	line, err := s.r.ReadString('\n')
	if line == "" && err != nil {
		return "", err
	}
	return line, nil
}

// nestFrame is one entry of the feeder's nest stack: an open delimiter and
// the set of tokens that legally close it, kept by Nest/Unnest/NestTop
// (spec.md §4.7). The parsers in this package do not push frames; they
// pass the closing words to ParseScript as stopWords instead.
type nestFrame struct {
	Opener  string
	Closers []string
}

// pendingHeredoc is a heredoc redirect whose delimiter has been parsed
// but whose body hasn't been read yet: the body starts only once the
// rest of the operator's own line has been consumed, which may be well
// after ParseRedirect returns (spec.md §4.1; mirrors the teacher's
// syntax/parser.go `heredocs`/`doHeredocs` deferred-body bookkeeping).
type pendingHeredoc struct {
	r         *Redirect
	delim     string
	stripTabs bool
}

// Feeder is the incremental, re-entrant input source described in
// spec.md §4.1. One Feeder exists per interactive session or script file;
// it is passed explicitly to every parse function, never stored globally.
type Feeder struct {
	src       LineSource
	remaining []rune
	nest      []nestFrame
	prompt1   string
	prompt2   string
	heredocs  []pendingHeredoc
}

// NewFeeder wraps src. prompt1/prompt2 are PS1/PS2; non-interactive
// sources ignore them.
func NewFeeder(src LineSource, prompt1, prompt2 string) *Feeder {
	return &Feeder{src: src, prompt1: prompt1, prompt2: prompt2}
}

// NewFeederFromString seeds a Feeder with text already in hand and no
// further line source — used for -c command text, subshell and
// command-substitution bodies, and package expand's re-parse of
// brace-expanded words, where no more input will ever arrive.
func NewFeederFromString(text string) *Feeder {
	return &Feeder{remaining: []rune(text)}
}

// Len reports the number of runes left unconsumed.
func (f *Feeder) Len() int { return len(f.remaining) }

// Nth returns the rune at offset i without consuming it, or false if i is
// out of range.
func (f *Feeder) Nth(i int) (rune, bool) {
	if i < 0 || i >= len(f.remaining) {
		return 0, false
	}
	return f.remaining[i], true
}

// StartsWith reports whether the unconsumed buffer begins with s.
func (f *Feeder) StartsWith(s string) bool {
	rs := []rune(s)
	if len(rs) > len(f.remaining) {
		return false
	}
	for i, r := range rs {
		if f.remaining[i] != r {
			return false
		}
	}
	return true
}

// Consume removes and returns the first n runes.
func (f *Feeder) Consume(n int) string {
	if n > len(f.remaining) {
		n = len(f.remaining)
	}
	s := string(f.remaining[:n])
	f.remaining = f.remaining[n:]
	return s
}

// Nest pushes an open-delimiter context.
func (f *Feeder) Nest(opener string, closers []string) {
	f.nest = append(f.nest, nestFrame{Opener: opener, Closers: closers})
}

// Unnest pops the innermost open-delimiter context.
func (f *Feeder) Unnest() {
	if len(f.nest) > 0 {
		f.nest = f.nest[:len(f.nest)-1]
	}
}

// NestTop reports the innermost open-delimiter context, if any.
func (f *Feeder) NestTop() (nestFrame, bool) {
	if len(f.nest) == 0 {
		return nestFrame{}, false
	}
	return f.nest[len(f.nest)-1], true
}

// FeedLine reads one fresh line into the buffer, replacing whatever is
// left. Used by the top-level read loop between commands.
func (f *Feeder) FeedLine(core *shellstate.ShellCore) error {
	line, err := f.src.ReadLine(f.prompt1)
	if err != nil {
		if core.Sigint() {
			return &InputError{Kind: Interrupt}
		}
		return &InputError{Kind: Eof}
	}
	f.remaining = []rune(line)
	return nil
}

// FeedAdditionalLine is called whenever a scanner needs a continuation:
// an unterminated quote, an open "${", an open here-document, or a
// trailing "\<newline>" line-continuation sequence. It appends the next
// line from the source itself; when there is no source or the source is
// exhausted it fails with ParseError{Kind: NeedMoreInput}, and the parse
// is not resumed (cmd/sush reports it as an unexpected end of file).
func (f *Feeder) FeedAdditionalLine(core *shellstate.ShellCore) error {
	if f.src == nil {
		// A Feeder built by NewFeederFromString (a one-shot -c command
		// string, a subshell or command-substitution body, or a re-parsed
		// word) has no line source
		// to go back to; running out mid-construct is simply "no more
		// input", never a panic on a nil LineSource.
		return &ParseError{Kind: NeedMoreInput}
	}
	line, err := f.src.ReadLine(f.prompt2)
	if err != nil {
		if core.Sigint() {
			return &InputError{Kind: Interrupt}
		}
		return &ParseError{Kind: NeedMoreInput}
	}
	f.remaining = append(f.remaining, []rune(line)...)
	return nil
}

// queueHeredoc records a heredoc redirect whose body hasn't been read
// yet; DrainHeredocs fills r.HeredocBody in once the line naming it has
// been fully consumed.
func (f *Feeder) queueHeredoc(r *Redirect, delim string, stripTabs bool) {
	f.heredocs = append(f.heredocs, pendingHeredoc{r: r, delim: delim, stripTabs: stripTabs})
}

// DrainHeredocs reads the body of every heredoc queued since the last
// drain, in the order their operators were parsed, directly off whatever
// immediately follows in the buffer. Called by ParseScript right after it
// consumes the newline ending the line those heredocs' operators
// appeared on (spec.md §4.1).
func (f *Feeder) DrainHeredocs(core *shellstate.ShellCore) error {
	pending := f.heredocs
	f.heredocs = nil
	for _, p := range pending {
		body, err := captureHeredocBody(f, core, p.delim, p.stripTabs)
		if err != nil {
			return err
		}
		p.r.HeredocBody = body
	}
	return nil
}
