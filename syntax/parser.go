package syntax

import (
	"strconv"
	"strings"

	"github.com/sushlang/sush/shellstate"
)

// eatBlankWithComment skips blanks and a trailing comment, repeatedly, so
// that e.g. a line consisting only of "  # comment\n" disappears entirely
// before the next token is looked for.
func eatBlankWithComment(f *Feeder, core *shellstate.ShellCore) {
	for {
		n := f.ScannerBlank(core)
		if n == 0 {
			n = f.ScannerComment()
		}
		if n == 0 {
			return
		}
		f.Consume(n)
	}
}

// ParseCommand dispatches to each command-variant parser in turn (spec.md
// §4.4): ParenCommand, BraceCommand, WhileCommand, IfCommand, the
// supplemented ForCommand (SPEC_FULL.md §3), and last SimpleCommand. It never
// mixes a non-nil Command with a non-nil error.
func ParseCommand(f *Feeder, core *shellstate.ShellCore) (Command, error) {
	eatBlankWithComment(f, core)

	if c, err := ParseParenCommand(f, core); err != nil || c != nil {
		return c, err
	}
	if c, err := ParseBraceCommand(f, core); err != nil || c != nil {
		return c, err
	}
	if c, err := ParseWhileCommand(f, core); err != nil || c != nil {
		return c, err
	}
	if c, err := ParseIfCommand(f, core); err != nil || c != nil {
		return c, err
	}
	if c, err := ParseForCommand(f, core); err != nil || c != nil {
		return c, err
	}
	return ParseSimpleCommand(f, core)
}

// eatRedirects consumes every redirection attached to a command at the
// current position, in the order spec.md §4.5 describes: they may be
// interleaved with argument words on a SimpleCommand, but on the compound
// commands they only ever trail the closing keyword/paren.
func eatRedirects(f *Feeder, core *shellstate.ShellCore) ([]*Redirect, error) {
	var redirs []*Redirect
	for {
		eatBlankWithComment(f, core)
		r, err := ParseRedirect(f, core)
		if err != nil {
			return nil, err
		}
		if r == nil {
			return redirs, nil
		}
		redirs = append(redirs, r)
	}
}

// ParseRedirect parses one redirection: an optional leading fd number,
// the operator, and its target word (spec.md §3/§4.5). "|&" is desugared
// by the pipeline parser into "2>&1" plus a plain "|", so this function
// never has to understand it directly.
func ParseRedirect(f *Feeder, core *shellstate.ShellCore) (*Redirect, error) {
	if !fdPrefixFollowedByRedirect(f) {
		return nil, nil
	}
	fd, hasFD := eatLeadingFD(f, core)
	n := f.ScannerRedirectSymbol(core)
	if n == 0 {
		return nil, nil
	}
	sym := f.Consume(n)
	op, ok := redirectOpFor(sym)
	if !ok {
		return nil, &ParseError{Kind: UnexpectedSymbol, Text: sym}
	}
	raw := sym

	// "N>&M" duplicates a descriptor rather than opening a file; bare
	// ">&" with no following fd/- means "redirect stdout and stderr".
	if sym == ">&" {
		if m, mraw, isFD := eatDupTarget(f, core); isFD {
			raw += mraw
			return &Redirect{Raw: raw, TargetFD: fd, HasFD: hasFD, Op: RedirDupOut, Word: wordOfInt(m)}, nil
		}
		op = RedirOutErr
	}

	if op == RedirHeredoc || op == RedirHeredocTabs {
		return parseHeredoc(f, core, raw, fd, hasFD, op)
	}

	eatBlankWithComment(f, core)
	w, err := ParseWord(f, core, false)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, &ParseError{Kind: UnexpectedEOF}
	}
	raw += w.Raw
	return &Redirect{Raw: raw, TargetFD: fd, HasFD: hasFD, Op: op, Word: w}, nil
}

// fdPrefixFollowedByRedirect looks ahead, without consuming anything, to
// decide whether the buffer is a redirection at all: a digit run (or
// none) immediately followed by one of the redirect operators. This lets
// ParseRedirect tell "2>file" apart from a bare argument word "2" without
// losing the digits it peeked at when no operator follows.
func fdPrefixFollowedByRedirect(f *Feeder) bool {
	i := 0
	for {
		r, ok := f.Nth(i)
		if !ok || r < '0' || r > '9' {
			break
		}
		i++
	}
	for _, sym := range []string{"<<<", "<<-", "<<", "&>", ">&", ">>", "<", ">"} {
		ok := true
		for j, r := range []rune(sym) {
			rr, present := f.Nth(i + j)
			if !present || rr != r {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func eatLeadingFD(f *Feeder, core *shellstate.ShellCore) (int, bool) {
	n := f.ScannerNonnegativeInteger(core)
	if n == 0 {
		return 0, false
	}
	digits := f.Consume(n)
	fd, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return fd, true
}

// eatDupTarget recognizes the "N" in ">&N" (duplicate to fd N) as opposed
// to ">&" meaning "redirect both stdout and stderr", i.e. RedirOutErr.
func eatDupTarget(f *Feeder, core *shellstate.ShellCore) (int, string, bool) {
	n := f.ScannerNonnegativeInteger(core)
	if n == 0 {
		if f.StartsWith("-") {
			return -1, f.Consume(1), true
		}
		return 0, "", false
	}
	digits := f.Consume(n)
	fd, err := strconv.Atoi(digits)
	if err != nil {
		return 0, "", false
	}
	return fd, digits, true
}

func wordOfInt(n int) *Word {
	s := strconv.Itoa(n)
	return &Word{Raw: s, Parts: []Subword{&Lit{Value: s}}}
}

func redirectOpFor(sym string) (RedirectOp, bool) {
	switch sym {
	case "<":
		return RedirIn, true
	case ">":
		return RedirOut, true
	case ">>":
		return RedirAppend, true
	case "&>":
		return RedirOutErr, true
	case ">&":
		return RedirOut, true // refined to RedirDupOut/RedirOutErr by the caller
	case "<<":
		return RedirHeredoc, true
	case "<<-":
		return RedirHeredocTabs, true
	case "<<<":
		return RedirHereString, true
	default:
		return 0, false
	}
}

// parseHeredoc handles "<<"/"<<-" once ParseRedirect has already consumed
// the operator: it reads only the delimiter word here and queues the
// actual body read on the Feeder (Feeder.queueHeredoc), since the body
// text itself starts only after the *rest of the current line* has been
// parsed — there may be more words, redirects, a pipe, or another command
// still to come before that line's own newline. Script.go's ParseScript
// drains every queued heredoc as soon as it consumes that newline
// (spec.md §4.1's continuation policy extended to here-documents), the
// same deferred-body shape as the teacher's syntax/parser.go's
// `heredocs`/`doHeredocs`. "<<<" needs none of this — its target is an
// ordinary word handled by the caller — so this function never sees
// RedirHereString.
func parseHeredoc(f *Feeder, core *shellstate.ShellCore, raw string, fd int, hasFD bool, op RedirectOp) (*Redirect, error) {
	delim, quoted, err := eatHeredocDelimiter(f, core)
	if err != nil {
		return nil, err
	}
	raw += delim
	r := &Redirect{Raw: raw, TargetFD: fd, HasFD: hasFD, Op: op, HeredocQuote: quoted}
	f.queueHeredoc(r, delim, op == RedirHeredocTabs)
	return r, nil
}

// eatHeredocDelimiter reads the word naming a heredoc's terminator. A
// single- or double-quoted delimiter reports quoted=true, meaning the
// body must not be expanded (spec.md §4.2's quoting rules extended to
// here-documents); this parser records that flag but, like the rest of
// this here-document support, does not yet perform the expansion itself.
func eatHeredocDelimiter(f *Feeder, core *shellstate.ShellCore) (delim string, quoted bool, err error) {
	eatBlankWithComment(f, core)
	switch {
	case f.StartsWith("'"):
		n := f.ScannerSingleQuotedSubword(core)
		if n < 2 {
			return "", false, &ParseError{Kind: UnexpectedEOF}
		}
		raw := f.Consume(n)
		return raw[1 : len(raw)-1], true, nil
	case f.StartsWith(`"`):
		f.Consume(1)
		var sb strings.Builder
		for {
			if f.Len() == 0 {
				if ferr := f.FeedAdditionalLine(core); ferr != nil {
					return "", false, ferr
				}
				continue
			}
			r, _ := f.Nth(0)
			if r == '"' {
				f.Consume(1)
				return sb.String(), true, nil
			}
			if r == '\\' {
				f.Consume(1)
				if f.Len() > 0 {
					c, _ := f.Nth(0)
					sb.WriteRune(c)
					f.Consume(1)
				}
				continue
			}
			sb.WriteRune(r)
			f.Consume(1)
		}
	default:
		n := f.ScannerSubword()
		if n == 0 {
			return "", false, &ParseError{Kind: UnexpectedEOF}
		}
		return f.Consume(n), false, nil
	}
}

// captureHeredocBody accumulates lines until one, stripped of its
// trailing newline (and leading tabs, for "<<-"), equals delim.
func captureHeredocBody(f *Feeder, core *shellstate.ShellCore, delim string, stripTabs bool) (string, error) {
	var sb strings.Builder
	for {
		line, ok := takeLine(f)
		if !ok {
			if err := f.FeedAdditionalLine(core); err != nil {
				if f.Len() == 0 {
					return sb.String(), err
				}
				line = f.Consume(f.Len())
			} else {
				continue
			}
		}
		check := strings.TrimRight(line, "\n")
		if stripTabs {
			check = strings.TrimLeft(check, "\t")
		}
		if check == delim {
			return sb.String(), nil
		}
		if stripTabs {
			line = strings.TrimLeft(line, "\t")
		}
		sb.WriteString(line)
	}
}

// takeLine consumes and returns the next "\n"-terminated line from f, or
// reports false if the buffer runs out before one is found.
func takeLine(f *Feeder) (string, bool) {
	n := f.Len()
	for i := 0; i < n; i++ {
		r, _ := f.Nth(i)
		if r == '\n' {
			return f.Consume(i + 1), true
		}
	}
	return "", false
}
