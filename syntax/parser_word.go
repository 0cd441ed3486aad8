package syntax

import "github.com/sushlang/sush/shellstate"

// ParseWord parses one blank-delimited Word: a run of subwords with no
// intervening whitespace or metacharacter. asOperand skips the stopsWord
// check and leaves ParseSubword alone to end the word; ParseSubword has no
// subword form for a blank, `(` or `)`, so the word still ends there
// (mirrors the original Word::parse's as_operand mode).
func ParseWord(f *Feeder, core *shellstate.ShellCore, asOperand bool) (*Word, error) {
	w := &Word{}
	for {
		if f.Len() == 0 {
			break
		}
		if !asOperand && stopsWord(f) {
			break
		}
		sw, err := ParseSubword(f, core)
		if err != nil {
			return nil, err
		}
		if sw == nil {
			break
		}
		w.Parts = append(w.Parts, sw)
		w.Raw += sw.Text()
	}
	if len(w.Parts) == 0 {
		return nil, nil
	}
	return w, nil
}

// stopsWord reports whether the buffer is positioned at a character that
// ends a word outside of any quoting: blank, newline, or a shell
// metacharacter. ParseSubword itself refuses to start a Lit/bare subword
// across one of these, so this mainly exists to stop the loop cleanly
// before ever calling ParseSubword again.
func stopsWord(f *Feeder) bool {
	r, ok := f.Nth(0)
	if !ok {
		return true
	}
	switch r {
	case ' ', '\t', '\n', ';', '&', '|', '(', ')', '<', '>':
		return true
	}
	return false
}
