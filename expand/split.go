package expand

import "github.com/sushlang/sush/shellstate"

// ifsCharSet returns the set of bytes IFS currently names, defaulting to
// space/tab/newline when IFS is unset (spec.md §4.3 step 4). An IFS set
// to the empty string disables splitting entirely.
func ifsCharSet(core *shellstate.ShellCore) map[byte]bool {
	ifs := core.DB.GetParam("IFS")
	if !core.DB.HasValue("IFS") {
		ifs = " \t\n"
	}
	set := make(map[byte]bool, len(ifs))
	for i := 0; i < len(ifs); i++ {
		set[ifs[i]] = true
	}
	return set
}

// splitOnIFS splits an expansion's value into the fields IFS denotes,
// collapsing runs of IFS whitespace and dropping leading/trailing runs,
// matching POSIX field splitting; a non-whitespace IFS character (e.g.
// IFS=:) instead produces an empty field between two adjacent delimiters.
func splitOnIFS(val string, ifs map[byte]bool) []string {
	if len(ifs) == 0 {
		return []string{val}
	}
	var out []string
	var cur []byte
	seenContent := false
	i := 0
	for i < len(val) {
		c := val[i]
		if ifs[c] {
			if isIFSWhitespace(c) {
				if len(cur) > 0 {
					out = append(out, string(cur))
					cur = cur[:0]
					seenContent = false
				}
				i++
				continue
			}
			out = append(out, string(cur))
			cur = cur[:0]
			seenContent = true
			i++
			continue
		}
		cur = append(cur, c)
		seenContent = true
		i++
	}
	if seenContent || len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}

func isIFSWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}
