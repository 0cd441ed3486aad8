// Package shellstate holds the process-wide data a shell core needs to
// thread through parsing and execution: the variable/array/assoc store, the
// option and shopt tables, and the bits of process identity (pgid, $$,
// $BASHPID, $?) that a subshell resets on fork.
package shellstate

import (
	"fmt"
	"sort"
)

// ArrayIndexError reports a lookup against an associative array with a key
// that was never assigned.
type ArrayIndexError struct {
	Name, Index string
}

func (e *ArrayIndexError) Error() string {
	return fmt.Sprintf("%s: %s: no such index", e.Name, e.Index)
}

type kind int

const (
	scalarKind kind = iota
	indexedKind
	assocKind
)

type variable struct {
	kind   kind
	scalar string
	array  map[int]string
	assoc  map[string]string
}

// DB is the variable/array/assoc store. It implements the store contract
// named in spec.md §6: every lookup is infallible except associative
// lookups, which can fail with *ArrayIndexError.
type DB struct {
	vars  map[string]*variable
	posit []string // $1, $2, ...
}

// NewDB returns an empty store.
func NewDB() *DB {
	return &DB{vars: make(map[string]*variable)}
}

func (d *DB) entry(name string) *variable {
	v, ok := d.vars[name]
	if !ok {
		return nil
	}
	return v
}

// GetParam returns a scalar parameter's value, or "" if unset. For an
// indexed array it returns element 0; for an associative array it returns
// "" (use GetArrayElem for keyed access). "?", "$", "0" and friends are
// ordinary scalar entries the core keeps up to date (see ShellCore); "#"
// and the positional digits are computed here from the positional list.
func (d *DB) GetParam(name string) string {
	if name == "#" {
		return fmt.Sprint(len(d.posit))
	}
	if isDigits(name) && name != "0" {
		n := 0
		fmt.Sscanf(name, "%d", &n)
		if n == 0 || n > len(d.posit) {
			return ""
		}
		return d.posit[n-1]
	}
	v := d.entry(name)
	if v == nil {
		return ""
	}
	switch v.kind {
	case scalarKind:
		return v.scalar
	case indexedKind:
		return v.array[0]
	default:
		return ""
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SetParam assigns a scalar value to name, creating it if necessary.
func (d *DB) SetParam(name, value string) error {
	v := d.entry(name)
	if v == nil {
		v = &variable{kind: scalarKind}
		d.vars[name] = v
	}
	v.kind = scalarKind
	v.scalar = value
	return nil
}

// SetArrayElem assigns value at index i of an indexed array, creating the
// array if necessary.
func (d *DB) SetArrayElem(name string, i int, value string) {
	v := d.entry(name)
	if v == nil || v.kind != indexedKind {
		v = &variable{kind: indexedKind, array: map[int]string{}}
		d.vars[name] = v
	}
	v.array[i] = value
}

// SetAssocElem assigns value at key of an associative array, creating the
// array if necessary.
func (d *DB) SetAssocElem(name, key, value string) {
	v := d.entry(name)
	if v == nil || v.kind != assocKind {
		v = &variable{kind: assocKind, assoc: map[string]string{}}
		d.vars[name] = v
	}
	v.assoc[key] = value
}

// GetArrayElem returns indexed-array element index (a base-10 integer) or
// associative-array element key, depending on the variable's kind.
func (d *DB) GetArrayElem(name, index string) (string, error) {
	v := d.entry(name)
	if v == nil {
		return "", nil
	}
	switch v.kind {
	case assocKind:
		s, ok := v.assoc[index]
		if !ok {
			return "", &ArrayIndexError{Name: name, Index: index}
		}
		return s, nil
	case indexedKind:
		n := 0
		fmt.Sscanf(index, "%d", &n)
		return v.array[n], nil
	default:
		if index == "0" {
			return v.scalar, nil
		}
		return "", nil
	}
}

// GetArrayAll returns every element of an indexed or associative array, in
// index order, joined with no separator applied here (callers join with a
// space or IFS as appropriate).
func (d *DB) GetArrayAll(name string) []string {
	if name == "@" || name == "*" {
		return d.GetPositionParams()
	}
	v := d.entry(name)
	if v == nil {
		return nil
	}
	switch v.kind {
	case indexedKind:
		idxs := make([]int, 0, len(v.array))
		for i := range v.array {
			idxs = append(idxs, i)
		}
		sort.Ints(idxs)
		out := make([]string, len(idxs))
		for i, idx := range idxs {
			out[i] = v.array[idx]
		}
		return out
	case assocKind:
		keys := make([]string, 0, len(v.assoc))
		for k := range v.assoc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]string, len(keys))
		for i, k := range keys {
			out[i] = v.assoc[k]
		}
		return out
	default:
		if v.scalar == "" {
			return nil
		}
		return []string{v.scalar}
	}
}

// GetIndexesAll returns the defined indices of an array, as strings, in
// order — used by ${!name[@]}.
func (d *DB) GetIndexesAll(name string) []string {
	v := d.entry(name)
	if v == nil {
		return nil
	}
	switch v.kind {
	case indexedKind:
		idxs := make([]int, 0, len(v.array))
		for i := range v.array {
			idxs = append(idxs, i)
		}
		sort.Ints(idxs)
		out := make([]string, len(idxs))
		for i, idx := range idxs {
			out[i] = fmt.Sprint(idx)
		}
		return out
	case assocKind:
		keys := make([]string, 0, len(v.assoc))
		for k := range v.assoc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	default:
		if v.scalar == "" {
			return nil
		}
		return []string{"0"}
	}
}

// HasValue reports whether name is a defined parameter of any kind.
func (d *DB) HasValue(name string) bool {
	if name == "@" {
		return len(d.posit) > 0
	}
	return d.entry(name) != nil
}

// IsArray reports whether name holds an indexed array.
func (d *DB) IsArray(name string) bool {
	v := d.entry(name)
	return v != nil && v.kind == indexedKind
}

// IsAssoc reports whether name holds an associative array.
func (d *DB) IsAssoc(name string) bool {
	v := d.entry(name)
	return v != nil && v.kind == assocKind
}

// Len returns the element count of an array, or 1/0 for a scalar.
func (d *DB) Len(name string) int {
	if name == "@" || name == "*" {
		return len(d.posit)
	}
	v := d.entry(name)
	if v == nil {
		return 0
	}
	switch v.kind {
	case indexedKind:
		return len(v.array)
	case assocKind:
		return len(v.assoc)
	default:
		if v.scalar == "" {
			return 0
		}
		return 1
	}
}

// Unset removes name entirely, as opposed to SetParam(name, "") which
// would merely assign it an empty scalar value.
func (d *DB) Unset(name string) {
	delete(d.vars, name)
}

// Names returns every defined scalar/array variable name, in no
// particular order — used to build a child process's environment.
func (d *DB) Names() []string {
	out := make([]string, 0, len(d.vars))
	for name := range d.vars {
		out = append(out, name)
	}
	return out
}

// GetPositionParams returns $1..$N.
func (d *DB) GetPositionParams() []string {
	out := make([]string, len(d.posit))
	copy(out, d.posit)
	return out
}

// SetPositionParams replaces $1..$N, as used by `set -- ...`.
func (d *DB) SetPositionParams(args []string) {
	d.posit = append([]string(nil), args...)
}

// Clone returns a deep copy, used when a subshell forks: the child must see
// an independent store so assignments made inside it never leak back to
// the parent (spec.md §5, "any assignment executed in a forked child is
// lost").
func (d *DB) Clone() *DB {
	nd := NewDB()
	for name, v := range d.vars {
		nv := &variable{kind: v.kind, scalar: v.scalar}
		if v.array != nil {
			nv.array = make(map[int]string, len(v.array))
			for k, val := range v.array {
				nv.array[k] = val
			}
		}
		if v.assoc != nil {
			nv.assoc = make(map[string]string, len(v.assoc))
			for k, val := range v.assoc {
				nv.assoc[k] = val
			}
		}
		nd.vars[name] = nv
	}
	nd.posit = append([]string(nil), d.posit...)
	return nd
}
