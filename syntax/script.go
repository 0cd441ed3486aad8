package syntax

import "github.com/sushlang/sush/shellstate"

// ParseScript parses a sequence of pipelines joined by ";", "&", "&&",
// "||" or a newline (spec.md §3/§4.6). stopWords names the keywords that
// end this script without being consumed — e.g. ParseWhileCommand calls
// ParseScript with stopWords {"do"} for the condition and {"done"} for
// the body. A nil/empty stopWords means "run to end of input" (used for
// the top-level program and for command-substitution bodies).
func ParseScript(f *Feeder, core *shellstate.ShellCore, stopWords []string) (*Script, error) {
	sc := &Script{}
	for {
		eatBlankWithComment(f, core)
		if f.Len() == 0 {
			if len(stopWords) == 0 {
				if err := f.DrainHeredocs(core); err != nil {
					return nil, err
				}
				return sc, nil
			}
			if err := f.FeedAdditionalLine(core); err != nil {
				if _, isInput := err.(*InputError); isInput {
					return sc, nil
				}
				return nil, err
			}
			continue
		}
		if atStopWord(f, stopWords) {
			return sc, nil
		}

		pl, err := ParsePipeline(f, core)
		if err != nil {
			return nil, err
		}
		if pl == nil {
			return sc, nil
		}
		sc.Raw += pl.Raw

		eatBlankWithComment(f, core)
		sep := eatSeparator(f, core)
		sc.Items = append(sc.Items, ListItem{Pipeline: pl, Sep: sep})
		sc.Raw += sep
		if sep == "\n" {
			if err := f.DrainHeredocs(core); err != nil {
				return nil, err
			}
		}
		if sep == "" {
			return sc, nil
		}
	}
}

// atStopWord reports whether the buffer is positioned at one of
// stopWords, as a whole word (not a prefix of some longer identifier).
func atStopWord(f *Feeder, stopWords []string) bool {
	for _, w := range stopWords {
		if !f.StartsWith(w) {
			continue
		}
		r, ok := f.Nth(len([]rune(w)))
		if !ok || !isNameRune(r) {
			return true
		}
	}
	return false
}

func isNameRune(r rune) bool {
	return r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func eatSeparator(f *Feeder, core *shellstate.ShellCore) string {
	n := f.ScannerAndOr(core)
	if n == 0 {
		n = f.ScannerJobEnd()
	}
	if n == 0 {
		return ""
	}
	return f.Consume(n)
}

// ParsePipeline parses one or more commands joined by "|"/"|&", with an
// optional leading "!" negation (spec.md §3). A `cmd1 |& cmd2` is
// desugared here into cmd1 gaining an implicit "2>&1" redirect plus a
// plain pipe to cmd2, so the executor only ever sees ordinary pipes.
func ParsePipeline(f *Feeder, core *shellstate.ShellCore) (*Pipeline, error) {
	pl := &Pipeline{}
	eatBlankWithComment(f, core)
	if f.StartsWith("!") {
		r, ok := f.Nth(1)
		if !ok || !isNameRune(r) {
			pl.Negated = true
			pl.Raw += f.Consume(1)
			eatBlankWithComment(f, core)
		}
	}

	cmd, err := ParseCommand(f, core)
	if err != nil {
		return nil, err
	}
	if cmd == nil {
		if pl.Negated {
			return nil, &ParseError{Kind: UnexpectedEOF}
		}
		return nil, nil
	}
	pl.Commands = append(pl.Commands, cmd)
	pl.Raw += cmd.Text()

	for {
		eatBlankWithComment(f, core)
		n := f.ScannerPipe(core)
		if n == 0 {
			break
		}
		sym := f.Consume(n)
		pl.Raw += sym
		stderrMerge := sym == "|&"
		if stderrMerge {
			desugarStderrMerge(pl.Commands[len(pl.Commands)-1])
		}
		eatBlankWithComment(f, core)
		next, err := ParseCommand(f, core)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, &ParseError{Kind: UnexpectedEOF}
		}
		pl.Commands = append(pl.Commands, next)
		pl.StderrMerge = append(pl.StderrMerge, stderrMerge)
		pl.Raw += next.Text()
	}
	return pl, nil
}

// desugarStderrMerge attaches the implicit "2>&1" a "|&" connector
// implies to the command on its left.
func desugarStderrMerge(c Command) {
	switch v := c.(type) {
	case *SimpleCommand:
		v.Redirs = append(v.Redirs, mergeStderrRedirect())
	case *ParenCommand:
		v.Redirs = append(v.Redirs, mergeStderrRedirect())
	case *BraceCommand:
		v.Redirs = append(v.Redirs, mergeStderrRedirect())
	case *WhileCommand:
		v.Redirs = append(v.Redirs, mergeStderrRedirect())
	case *IfCommand:
		v.Redirs = append(v.Redirs, mergeStderrRedirect())
	case *ForCommand:
		v.Redirs = append(v.Redirs, mergeStderrRedirect())
	}
}

func mergeStderrRedirect() *Redirect {
	return &Redirect{Raw: "2>&1", TargetFD: 2, HasFD: true, Op: RedirDupOut, Word: wordOfInt(1)}
}
