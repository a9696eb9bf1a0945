// Package cache decides which layouts need regenerating. It remembers, per
// layout, the fragments it includes, and the time of the last successful
// build; a layout is stale when it or anything it transitively includes was
// modified after that time.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dejo1307/sjui/internal/layout"
)

// File names inside the cache directory.
const (
	IncludesFile    = "including_file.json"
	LastUpdatedFile = "last_updated.txt"
)

// Manager tracks include relationships and the last build time.
type Manager struct {
	dir  string // cache directory
	root string // layouts root

	entries     map[string][]string // layout rel path -> include names
	lastUpdated time.Time
	valid       bool

	recorded map[string][]string
	dirty    bool
}

// New creates a Manager storing its files in dir for layouts under root.
func New(dir, root string) *Manager {
	return &Manager{
		dir:      dir,
		root:     root,
		entries:  make(map[string][]string),
		recorded: make(map[string][]string),
	}
}

// Load reads the cache files. A missing or unreadable cache is treated as
// absent, so every layout is rebuilt.
func (m *Manager) Load() {
	m.valid = false
	m.entries = make(map[string][]string)

	stamp, err := os.ReadFile(filepath.Join(m.dir, LastUpdatedFile))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[cache] reading %s: %v", LastUpdatedFile, err)
		}
		return
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(string(stamp)))
	if err != nil {
		log.Printf("[cache] ignoring corrupt %s: %v", LastUpdatedFile, err)
		return
	}

	data, err := os.ReadFile(filepath.Join(m.dir, IncludesFile))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[cache] reading %s: %v", IncludesFile, err)
		}
		return
	}
	entries := make(map[string][]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("[cache] ignoring corrupt %s: %v", IncludesFile, err)
		return
	}
	m.entries = entries
	m.lastUpdated = t
	m.valid = true
}

// LastUpdated returns the time of the last recorded build and whether a
// usable cache was loaded.
func (m *Manager) LastUpdated() (time.Time, bool) {
	return m.lastUpdated, m.valid
}

// Includes returns the include names recorded for a layout.
func (m *Manager) Includes(rel string) []string {
	if inc, ok := m.recorded[rel]; ok {
		return inc
	}
	return m.entries[filepath.ToSlash(rel)]
}

// NeedsUpdate reports whether the layout at path must be regenerated: there
// is no cache, the file changed after the last build, or a fragment it
// includes, directly or through other fragments, did.
func (m *Manager) NeedsUpdate(path string) bool {
	if !m.valid {
		return true
	}
	if _, ok := m.entries[m.rel(path)]; !ok {
		return true
	}
	return m.stale(path, make(map[string]bool))
}

func (m *Manager) stale(path string, visited map[string]bool) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return true
	}
	if visited[abs] {
		return false
	}
	visited[abs] = true

	info, err := os.Stat(path)
	if err != nil || info.ModTime().After(m.lastUpdated) {
		return true
	}
	for _, name := range m.entries[m.rel(path)] {
		frag, ok := layout.FindFragment(m.root, filepath.Dir(path), name)
		if !ok {
			return true
		}
		if m.stale(frag, visited) {
			return true
		}
	}
	return false
}

func (m *Manager) rel(path string) string {
	if m.root == "" {
		return filepath.ToSlash(path)
	}
	absRoot, err1 := filepath.Abs(m.root)
	absPath, err2 := filepath.Abs(path)
	if err1 != nil || err2 != nil {
		return filepath.ToSlash(path)
	}
	r, err := filepath.Rel(absRoot, absPath)
	if err != nil || strings.HasPrefix(r, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(r)
}

// Record notes the include names of files visited while generating one
// layout, keyed by path relative to the layouts root.
func (m *Manager) Record(including map[string][]string) {
	for rel, names := range including {
		m.recorded[filepath.ToSlash(rel)] = append([]string(nil), names...)
	}
}

// Forget drops a layout that no longer exists.
func (m *Manager) Forget(rel string) {
	rel = filepath.ToSlash(rel)
	if _, ok := m.entries[rel]; ok {
		m.dirty = true
	}
	delete(m.entries, rel)
	delete(m.recorded, rel)
}

// Save merges recorded entries over the loaded ones and writes the cache,
// stamping it with started, the time the build began. Nothing is written
// when no layout was recorded or forgotten.
func (m *Manager) Save(started time.Time) error {
	if len(m.recorded) == 0 && !m.dirty {
		return nil
	}
	merged := make(map[string][]string, len(m.entries)+len(m.recorded))
	for k, v := range m.entries {
		merged[k] = v
	}
	for k, v := range m.recorded {
		merged[k] = v
	}
	for k, v := range merged {
		if v == nil {
			merged[k] = []string{}
		}
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding include cache: %w", err)
	}
	if err := writeFile(filepath.Join(m.dir, IncludesFile), append(data, '\n')); err != nil {
		return err
	}
	stamp := started.UTC().Format(time.RFC3339Nano) + "\n"
	if err := writeFile(filepath.Join(m.dir, LastUpdatedFile), []byte(stamp)); err != nil {
		return err
	}

	m.entries = merged
	m.recorded = make(map[string][]string)
	m.dirty = false
	m.lastUpdated = started
	m.valid = true
	return nil
}

// Dependents returns the layouts whose recorded includes name the fragment
// include, sorted.
func (m *Manager) Dependents(include string) []string {
	want := layout.BaseName(include)
	var out []string
	for rel, names := range m.entries {
		for _, n := range names {
			if layout.BaseName(n) == want {
				out = append(out, rel)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// Clear removes the cache files.
func (m *Manager) Clear() error {
	for _, name := range []string{IncludesFile, LastUpdatedFile} {
		if err := os.Remove(filepath.Join(m.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	m.entries = make(map[string][]string)
	m.recorded = make(map[string][]string)
	m.valid = false
	return nil
}

func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
