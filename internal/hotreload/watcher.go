package hotreload

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Change describes one modified file inside a watched directory.
type Change struct {
	// Path is relative to the watched directory, slash separated, with
	// extension.
	Path string
	// Dir is the watched directory's configured name, e.g. "Layouts".
	Dir string
	// Name is the base file name without extension.
	Name string
}

// Message is the wire form pushed to clients:
// [relativePath, dirName, fileNameWithoutExtension].
func (c Change) Message() []string {
	return []string{c.Path, c.Dir, c.Name}
}

// ParseMessage decodes a wire message.
func ParseMessage(msg []string) (Change, error) {
	if len(msg) != 3 {
		return Change{}, errors.New("hot reload message must have 3 elements")
	}
	if msg[0] == "" {
		return Change{}, errors.New("hot reload message has an empty path")
	}
	return Change{Path: msg[0], Dir: msg[1], Name: msg[2]}, nil
}

// Watcher detects changed files by comparing modification times between
// scans.
type Watcher struct {
	// dirs maps configured name to absolute path.
	dirs  map[string]string
	names []string
	seen  map[string]time.Time
}

// NewWatcher watches the given directories, keyed by configured name.
func NewWatcher(dirs map[string]string) *Watcher {
	w := &Watcher{dirs: dirs, seen: make(map[string]time.Time)}
	for name := range dirs {
		w.names = append(w.names, name)
	}
	sort.Strings(w.names)
	return w
}

// Prime records the current state without reporting changes.
func (w *Watcher) Prime() {
	w.Scan()
}

// Scan returns files created or modified since the previous scan, sorted by
// directory then path. Deleted files are forgotten silently.
func (w *Watcher) Scan() []Change {
	current := make(map[string]time.Time, len(w.seen))
	var changes []Change
	for _, name := range w.names {
		root := w.dirs[name]
		_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if p != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !watched(d.Name()) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)
			key := name + "/" + rel
			mod := info.ModTime()
			current[key] = mod
			if prev, ok := w.seen[key]; !ok || !prev.Equal(mod) {
				base := path.Base(rel)
				changes = append(changes, Change{
					Path: rel,
					Dir:  name,
					Name: strings.TrimSuffix(base, path.Ext(base)),
				})
			}
			return nil
		})
	}
	w.seen = current
	return changes
}

func watched(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".bak") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".js", ".ts", ".mjs":
		return true
	}
	return false
}

// Resolve maps a change back to an absolute file path. It rejects unknown
// directories and paths escaping their directory. A path without extension
// falls back to its .json file.
func (w *Watcher) Resolve(dir, rel string) (string, error) {
	root, ok := w.dirs[dir]
	if !ok {
		return "", errUnknownDir
	}
	clean := path.Clean("/" + filepath.ToSlash(rel))
	if clean == "/" {
		return "", errBadPath
	}
	p := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
	if _, err := os.Stat(p); err != nil {
		if path.Ext(clean) != "" {
			return "", err
		}
		if _, jerr := os.Stat(p + ".json"); jerr != nil {
			return "", err
		}
		p += ".json"
	}
	return p, nil
}

var (
	errUnknownDir = errors.New("unknown directory")
	errBadPath    = errors.New("invalid file path")
)
