package expand

import "strings"

// ExpandBraces expands a `{a,b,c}` alternation (optionally with multiple
// sets, and recursively nested) into every combination it denotes,
// operating directly on raw source text: brace expansion is purely
// lexical and happens before any quoting or substitution is considered
// (spec pipeline order, step 1), mirroring the teacher's own
// syntax/braces.go, which likewise expands before anything else sees the
// word. A raw string with no unquoted, comma-containing brace set is
// returned unchanged, as the lone element of a 1-element slice.
func ExpandBraces(raw string) []string {
	set, ok := findBraceSet(raw)
	if !ok {
		return []string{raw}
	}
	var out []string
	for _, alt := range set.alts {
		combined := raw[:set.start] + alt + raw[set.end:]
		out = append(out, ExpandBraces(combined)...)
	}
	return out
}

type braceSet struct {
	start, end int // raw[start:end] is the whole "{...}", end exclusive
	alts       []string
}

// findBraceSet locates the first brace set with at least one top-level
// comma, skipping over single- and double-quoted spans and
// backslash-escaped characters (none of which brace expansion looks
// inside).
func findBraceSet(raw string) (braceSet, bool) {
	rs := []rune(raw)
	i := 0
	inSingle, inDouble := false, false
	for i < len(rs) {
		r := rs[i]
		switch {
		case r == '\\' && !inSingle:
			i += 2
			continue
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case r == '{' && !inSingle && !inDouble:
			if bs, ok := tryBraceSetAt(rs, i); ok {
				return bs, true
			}
		}
		i++
	}
	return braceSet{}, false
}

// tryBraceSetAt attempts to parse a brace set starting at the "{" found
// at index open, returning ok=false if it never finds a matching "}" or
// has no top-level comma (a lone "{foo}" is not an alternation).
func tryBraceSetAt(rs []rune, open int) (braceSet, bool) {
	depth := 1
	var parts []string
	var cur strings.Builder
	inSingle, inDouble := false, false
	i := open + 1
	for i < len(rs) {
		r := rs[i]
		switch {
		case r == '\\' && !inSingle && i+1 < len(rs):
			cur.WriteRune(r)
			cur.WriteRune(rs[i+1])
			i += 2
			continue
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case r == '{' && !inSingle && !inDouble:
			depth++
		case r == '}' && !inSingle && !inDouble:
			depth--
			if depth == 0 {
				parts = append(parts, cur.String())
				if len(parts) < 2 {
					return braceSet{}, false
				}
				return braceSet{start: open, end: i + 1, alts: parts}, true
			}
		case r == ',' && !inSingle && !inDouble && depth == 1:
			parts = append(parts, cur.String())
			cur.Reset()
			i++
			continue
		}
		cur.WriteRune(r)
		i++
	}
	return braceSet{}, false
}
