package expand

import (
	"os"
	"sort"
	"strings"

	"github.com/sushlang/sush/pattern"
	"github.com/sushlang/sush/shellstate"
)

// expandPathnames performs pathname expansion (globbing) on one field,
// the word pipeline's last step. original_source's path_expansion::eval
// is a stub left for a later pass (spec.md §9's Open Question #1); this
// implements the walk for real, component by component, using the
// pattern package's glob-to-regexp bridge for each path segment rather
// than filepath.Glob, since filepath.Glob doesn't honor ShOpts like
// dotglob (hidden-file matching) or nullglob (empty-match behavior).
func expandPathnames(core *shellstate.ShellCore, field string) []string {
	if !pattern.HasMeta(field) {
		return []string{field}
	}

	abs := strings.HasPrefix(field, "/")
	segs := strings.Split(field, "/")
	if abs {
		segs = segs[1:]
	}

	matches := []string{""}
	if abs {
		matches = []string{"/"}
	}

	for i, seg := range segs {
		if seg == "" {
			continue
		}
		last := i == len(segs)-1
		var next []string
		for _, prefix := range matches {
			if !pattern.HasMeta(seg) {
				candidate := joinPath(prefix, seg)
				if _, err := os.Lstat(candidate); err == nil || !last {
					next = append(next, candidate)
				}
				continue
			}
			entries, err := listDir(prefix)
			if err != nil {
				continue
			}
			dotglob := core.ShOpts.Query("dotglob")
			for _, name := range entries {
				if strings.HasPrefix(name, ".") && !dotglob && !strings.HasPrefix(seg, ".") {
					continue
				}
				ok, err := pattern.Match(seg, name)
				if err != nil || !ok {
					continue
				}
				next = append(next, joinPath(prefix, name))
			}
		}
		matches = next
		if len(matches) == 0 {
			break
		}
	}

	sort.Strings(matches)
	if len(matches) == 0 {
		if core.ShOpts.Query("nullglob") {
			return nil
		}
		return []string{field}
	}
	return matches
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	if prefix == "/" {
		return "/" + name
	}
	return prefix + "/" + name
}

func listDir(dir string) ([]string, error) {
	d := dir
	if d == "" {
		d = "."
	}
	entries, err := os.ReadDir(d)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}
