package syntax

import (
	"strings"
	"unicode"

	"github.com/sushlang/sush/shellstate"
)

// Scanners are pure functions that report how many runes of `remaining`
// belong to the next token, without consuming them; the caller (usually a
// subword or command parser) then calls Consume itself. Several scanners
// may splice in a continuation line when they find a trailing
// "\<newline>" sequence (spec.md §4.1's line-continuation policy) — this
// is the only place token scanning re-reads input mid-token.

// feedAndSplice drops a trailing "\<newline>" pair and tries to read one
// more line to replace it. Failures are swallowed: the scan simply ends
// with whatever was already matched, mirroring the upstream behavior this
// is ported from.
func (f *Feeder) feedAndSplice(core *shellstate.ShellCore) {
	if len(f.remaining) >= 2 {
		f.remaining = f.remaining[:len(f.remaining)-2]
	}
	_ = f.FeedAdditionalLine(core)
}

// backslashSpliceBefore checks whether the buffer is exactly one of the
// given lead-in tokens followed by "\<newline>", and if so splices a
// continuation line before the caller looks for its token. This lets
// e.g. "|\<newline>" be read as "|" continued on the next line.
func (f *Feeder) backslashSpliceBefore(leads []string, core *shellstate.ShellCore) {
	for _, s := range leads {
		if f.StartsWith(s + "\\\n") {
			f.feedAndSplice(core)
			return
		}
	}
}

func (f *Feeder) scannerChars(judge func(rune) bool, core *shellstate.ShellCore) int {
	for {
		n := 0
		for _, r := range f.remaining {
			if !judge(r) {
				break
			}
			n++
		}
		rest := f.remaining[n:]
		if len(rest) == 2 && rest[0] == '\\' && rest[1] == '\n' {
			f.feedAndSplice(core)
			continue
		}
		return n
	}
}

func (f *Feeder) scannerOneOf(cands []string) int {
	for _, c := range cands {
		if f.StartsWith(c) {
			return len([]rune(c))
		}
	}
	return 0
}

// ScannerBlank matches spaces and tabs.
func (f *Feeder) ScannerBlank(core *shellstate.ShellCore) int {
	return f.scannerChars(func(r rune) bool { return r == ' ' || r == '\t' }, core)
}

// ScannerMultilineBlank additionally matches newlines.
func (f *Feeder) ScannerMultilineBlank(core *shellstate.ShellCore) int {
	return f.scannerChars(func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }, core)
}

// ScannerComment matches from "#" to end-of-line.
func (f *Feeder) ScannerComment() int {
	if !f.StartsWith("#") {
		return 0
	}
	n := 0
	for _, r := range f.remaining {
		if r == '\n' {
			break
		}
		n++
	}
	return n
}

// ScannerName matches a shell identifier: [A-Za-z_][A-Za-z0-9_]*.
func (f *Feeder) ScannerName(core *shellstate.ShellCore) int {
	if len(f.remaining) == 0 || unicode.IsDigit(f.remaining[0]) {
		return 0
	}
	return f.scannerChars(func(r rune) bool {
		return r == '_' || unicode.IsDigit(r) || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}, core)
}

// ScannerNonnegativeInteger matches a run of ASCII digits.
func (f *Feeder) ScannerNonnegativeInteger(core *shellstate.ShellCore) int {
	return f.scannerChars(unicode.IsDigit, core)
}

// ScannerJobEnd matches ";", "&" or a newline.
func (f *Feeder) ScannerJobEnd() int {
	return f.scannerOneOf([]string{";", "&", "\n"})
}

// ScannerAndOr matches "&&" or "||".
func (f *Feeder) ScannerAndOr(core *shellstate.ShellCore) int {
	f.backslashSpliceBefore([]string{"|", "&"}, core)
	return f.scannerOneOf([]string{"||", "&&"})
}

// ScannerPipe matches "|" or "|&", but never "||".
func (f *Feeder) ScannerPipe(core *shellstate.ShellCore) int {
	f.backslashSpliceBefore([]string{"|"}, core)
	if f.StartsWith("||") {
		return 0
	}
	return f.scannerOneOf([]string{"|&", "|"})
}

// ScannerRedirectSymbol matches the redirection operators. Multi-char
// candidates that share a prefix with a shorter one ("<<<" vs "<<" vs
// "<") must be listed longest-first so scannerOneOf doesn't stop short.
func (f *Feeder) ScannerRedirectSymbol(core *shellstate.ShellCore) int {
	f.backslashSpliceBefore([]string{">", "&", "<"}, core)
	return f.scannerOneOf([]string{"<<<", "<<-", "<<", "&>", ">&", ">>", "<", ">"})
}

// ScannerEscapedChar matches a backslash plus the character it escapes.
func (f *Feeder) ScannerEscapedChar(core *shellstate.ShellCore) int {
	if f.StartsWith("\\\n") {
		f.feedAndSplice(core)
	}
	if !f.StartsWith("\\") {
		return 0
	}
	if len(f.remaining) < 2 {
		return 1
	}
	return 2
}

// ScannerDollarSpecialAndPositionalParam matches "$" followed by one of the
// special parameter characters or a digit: $?, $@, $*, $#, $$, $-, $!, $_, $0..$9.
func (f *Feeder) ScannerDollarSpecialAndPositionalParam(core *shellstate.ShellCore) int {
	if !f.StartsWith("$") {
		return 0
	}
	f.backslashSpliceBefore([]string{"$"}, core)
	if len(f.remaining) < 2 {
		return 0
	}
	if strings.ContainsRune("$?*@#-!_0123456789", f.remaining[1]) {
		return 2
	}
	return 0
}

// ScannerSpecialAndPositionalParam matches a special-parameter character
// (without a leading "$", for use inside "${...}") or a run of digits, so
// that both "${?}" and "${10}" are recognized as a parameter name.
func (f *Feeder) ScannerSpecialAndPositionalParam() int {
	if len(f.remaining) == 0 {
		return 0
	}
	if unicode.IsDigit(f.remaining[0]) {
		n := 0
		for _, r := range f.remaining {
			if !unicode.IsDigit(r) {
				break
			}
			n++
		}
		return n
	}
	if strings.ContainsRune("?*@#-!_", f.remaining[0]) {
		return 1
	}
	return 0
}

// ScannerSubword matches a run of bytes that belong to a bare (unquoted)
// subword: anything but whitespace and the shell metacharacters.
func (f *Feeder) ScannerSubword() int {
	n := 0
	for _, r := range f.remaining {
		if strings.ContainsRune(" \t\n;&|()<>{},\\'$/~", r) {
			break
		}
		n++
	}
	return n
}

// ScannerSubwordSymbol matches one of the single characters with special
// meaning inside a brace-expansion or tilde-expansion context.
func (f *Feeder) ScannerSubwordSymbol() int {
	return f.scannerOneOf([]string{"{", "}", ",", "$", "~", "/"})
}

// ScannerSingleQuotedSubword matches a '...' literal, including both
// quotes; an empty '' is 2 runes. Returns 0 if input runs out before the
// closing quote (single quotes allow no escapes, so there is nothing to
// splice around).
func (f *Feeder) ScannerSingleQuotedSubword(core *shellstate.ShellCore) int {
	if !f.StartsWith("'") {
		return 0
	}
	if f.StartsWith("''") {
		return 2
	}
	for {
		rest := f.remaining[1:]
		if idx := indexRune(rest, '\''); idx >= 0 {
			return idx + 2
		}
		if err := f.FeedAdditionalLine(core); err != nil {
			return 0
		}
	}
}

// ScannerDoubleQuotedSubword matches the literal run inside a "..." that
// precedes the next substitution trigger ($, `, ") or the closing quote.
func (f *Feeder) ScannerDoubleQuotedSubword(core *shellstate.ShellCore) int {
	n := 0
	for _, r := range f.remaining {
		if r == '"' || r == '$' || r == '`' {
			break
		}
		n++
	}
	return n
}

func indexRune(rs []rune, target rune) int {
	for i, r := range rs {
		if r == target {
			return i
		}
	}
	return -1
}
