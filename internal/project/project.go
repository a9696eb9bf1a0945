// Package project keeps the host project's file list in sync with generated
// files. The build only talks to the Mutator interface; how a concrete
// project format records membership is up to the implementation.
package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Mutator adds and removes files from the host project. Paths are relative
// to the project source root.
type Mutator interface {
	AddFiles(ctx context.Context, group string, files []string) error
	RemoveFiles(ctx context.Context, files []string) error
}

// GroupConverter turns a directory into a folder-synchronized group whose
// membership follows the file system.
type GroupConverter interface {
	ConvertToGroup(ctx context.Context, dir string) error
}

// Manifest is the on-disk project membership file.
type Manifest struct {
	Name         string              `yaml:"name,omitempty"`
	Groups       map[string][]string `yaml:"groups"`
	Synchronized []string            `yaml:"synchronized,omitempty"`
}

// ManifestMutator records membership in a YAML manifest.
type ManifestMutator struct {
	mu   sync.Mutex
	path string
	name string
}

// NewManifestMutator creates a mutator for the manifest at path, created on
// first change.
func NewManifestMutator(path, projectName string) *ManifestMutator {
	return &ManifestMutator{path: path, name: projectName}
}

// Path returns the manifest path.
func (m *ManifestMutator) Path() string {
	return m.path
}

// Load reads the manifest. A missing file yields an empty manifest.
func (m *ManifestMutator) Load() (*Manifest, error) {
	man := &Manifest{Name: m.name, Groups: make(map[string][]string)}
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return man, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading project manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, man); err != nil {
		return nil, fmt.Errorf("parsing project manifest %s: %w", m.path, err)
	}
	if man.Groups == nil {
		man.Groups = make(map[string][]string)
	}
	return man, nil
}

func (m *ManifestMutator) save(man *Manifest) error {
	for g, files := range man.Groups {
		sort.Strings(files)
		man.Groups[g] = files
	}
	sort.Strings(man.Synchronized)
	data, err := yaml.Marshal(man)
	if err != nil {
		return fmt.Errorf("encoding project manifest: %w", err)
	}
	if old, err := os.ReadFile(m.path); err == nil && string(old) == string(data) {
		return nil
	}
	if dir := filepath.Dir(m.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing project manifest: %w", err)
	}
	return os.Rename(tmp, m.path)
}

// AddFiles adds files to group. Files already in the project, or inside a
// synchronized directory, are left alone.
func (m *ManifestMutator) AddFiles(ctx context.Context, group string, files []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	man, err := m.Load()
	if err != nil {
		return err
	}
	present := make(map[string]bool)
	for _, fs := range man.Groups {
		for _, f := range fs {
			present[f] = true
		}
	}
	for _, f := range files {
		f = clean(f)
		if present[f] || synchronized(man, f) {
			continue
		}
		present[f] = true
		man.Groups[group] = append(man.Groups[group], f)
	}
	return m.save(man)
}

// RemoveFiles removes files from every group.
func (m *ManifestMutator) RemoveFiles(ctx context.Context, files []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	man, err := m.Load()
	if err != nil {
		return err
	}
	drop := make(map[string]bool, len(files))
	for _, f := range files {
		drop[clean(f)] = true
	}
	for g, fs := range man.Groups {
		kept := fs[:0]
		for _, f := range fs {
			if !drop[f] {
				kept = append(kept, f)
			}
		}
		if len(kept) == 0 {
			delete(man.Groups, g)
			continue
		}
		man.Groups[g] = kept
	}
	return m.save(man)
}

// ConvertToGroup marks dir as synchronized and drops explicit entries for
// files below it.
func (m *ManifestMutator) ConvertToGroup(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	man, err := m.Load()
	if err != nil {
		return err
	}
	dir = clean(dir)
	for _, d := range man.Synchronized {
		if d == dir {
			return nil
		}
	}
	man.Synchronized = append(man.Synchronized, dir)
	for g, fs := range man.Groups {
		kept := fs[:0]
		for _, f := range fs {
			if !under(f, dir) {
				kept = append(kept, f)
			}
		}
		if len(kept) == 0 {
			delete(man.Groups, g)
			continue
		}
		man.Groups[g] = kept
	}
	return m.save(man)
}

func synchronized(man *Manifest, f string) bool {
	for _, d := range man.Synchronized {
		if under(f, d) {
			return true
		}
	}
	return false
}

func under(f, dir string) bool {
	return dir == "." || strings.HasPrefix(f, dir+"/")
}

func clean(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

// Recorder is an in-memory Mutator for dry runs and tests.
type Recorder struct {
	mu      sync.Mutex
	Added   map[string][]string
	Removed []string
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{Added: make(map[string][]string)}
}

func (r *Recorder) AddFiles(_ context.Context, group string, files []string) error {
	r.mu.Lock()
	r.Added[group] = append(r.Added[group], files...)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) RemoveFiles(_ context.Context, files []string) error {
	r.mu.Lock()
	r.Removed = append(r.Removed, files...)
	r.mu.Unlock()
	return nil
}
