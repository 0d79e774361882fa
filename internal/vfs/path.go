package vfs

import "strings"

// Separator is the path separator of the virtual filesystem.
const Separator = "/"

// Resolve turns path into a canonical component sequence relative to cwd.
// It never consults the tree: existence and type checks are left to callers.
// ".." at the root is absorbed rather than rejected.
func Resolve(cwd []string, path string) []string {
	if path == Separator {
		return []string{}
	}

	var raw []string
	if strings.HasPrefix(path, Separator) {
		path = path[1:]
	} else {
		raw = append(raw, cwd...)
	}
	for _, seg := range strings.Split(path, Separator) {
		if seg == "" || seg == "." {
			continue
		}
		raw = append(raw, seg)
	}

	resolved := make([]string, 0, len(raw))
	for _, seg := range raw {
		if seg == ".." {
			if len(resolved) > 0 {
				resolved = resolved[:len(resolved)-1]
			}
			continue
		}
		resolved = append(resolved, seg)
	}
	return resolved
}

// Join renders components as an absolute path; the root is "/".
func Join(components []string) string {
	if len(components) == 0 {
		return Separator
	}
	return Separator + strings.Join(components, Separator)
}

// Split resolves an absolute path, as handed out by Join or by a remote
// client, into components.
func Split(path string) []string {
	return Resolve(nil, Separator+strings.TrimPrefix(path, Separator))
}
