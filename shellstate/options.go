package shellstate

// Options models the `set -e`/`-u`/`-B`/`-f` single-letter flag set plus
// the long-named options (`noglob`, `errexit`, `pipefail`, `nounset`, ...)
// spec.md §6 groups under "options.query(name)". Both views share one
// backing set: `-e` and `errexit` name the same flag.
type Options struct {
	set map[string]bool
}

// NewOptions returns the default option set: braceexpand on, everything
// else off.
func NewOptions() *Options {
	o := &Options{set: map[string]bool{}}
	o.Set("braceexpand", true)
	return o
}

var letterAlias = map[byte]string{
	'e': "errexit",
	'u': "nounset",
	'f': "noglob",
	'B': "braceexpand",
	'b': "notify",
	'x': "xtrace",
}

// canon resolves a single-letter flag (as used by db.flags) to its long
// name; unrecognized names pass through unchanged.
func canon(name string) string {
	if len(name) == 1 {
		if long, ok := letterAlias[name[0]]; ok {
			return long
		}
	}
	return name
}

// Query reports whether a named option is active.
func (o *Options) Query(name string) bool { return o.set[canon(name)] }

// Set turns a named option on or off.
func (o *Options) Set(name string, v bool) { o.set[canon(name)] = v }

// Flags returns the set of active single-letter option characters, the
// `db.flags` character set named in spec.md §6.
func (o *Options) Flags() string {
	var out []byte
	for letter, long := range letterAlias {
		if o.set[long] {
			out = append(out, letter)
		}
	}
	return string(out)
}

// ShOpts models `shopt`-style booleans: extglob, nullglob, dotglob.
type ShOpts struct {
	set map[string]bool
}

// NewShOpts returns every shopt off, matching bash's defaults.
func NewShOpts() *ShOpts { return &ShOpts{set: map[string]bool{}} }

func (s *ShOpts) Query(name string) bool { return s.set[name] }
func (s *ShOpts) Set(name string, v bool) { s.set[name] = v }
