package layout

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FragmentCandidates lists the files an include name may refer to, in lookup
// order: the partial form "_name.json" before "name.json", first relative to
// fromDir and then relative to the layouts root. Qualified names such as
// "common/header" keep their directory part.
func FragmentCandidates(root, fromDir, name string) []string {
	name = strings.TrimSuffix(filepath.ToSlash(name), ".json")
	dir, base := path.Split(name)
	base = strings.TrimPrefix(base, "_")

	var out []string
	seen := make(map[string]bool)
	for _, d := range []string{fromDir, root} {
		if d == "" {
			continue
		}
		for _, file := range []string{"_" + base + ".json", base + ".json"} {
			p := filepath.Join(d, filepath.FromSlash(dir), file)
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// FindFragment returns the first existing candidate file for an include.
func FindFragment(root, fromDir, name string) (string, bool) {
	for _, p := range FragmentCandidates(root, fromDir, name) {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// IsPartialFile reports whether a layout file uses the partial naming
// convention (leading underscore).
func IsPartialFile(p string) bool {
	return strings.HasPrefix(filepath.Base(p), "_")
}

// BaseName returns a layout file's name without directory, extension or
// partial prefix: "Layouts/common/_header.json" -> "header".
func BaseName(p string) string {
	b := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
	return strings.TrimPrefix(b, "_")
}
