package dynamic

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotFound is returned when a layout is neither cached nor present in the
// bundle directory.
var ErrNotFound = errors.New("layout not found")

// LayoutCache holds layout JSON by key. Entries pushed by hot reload shadow
// files in the bundle directory. Safe for concurrent use.
type LayoutCache struct {
	mu      sync.RWMutex
	layouts map[string][]byte
	updated map[string]time.Time
	bundle  string
}

// NewLayoutCache creates a cache falling back to bundleDir ("" for none).
func NewLayoutCache(bundleDir string) *LayoutCache {
	return &LayoutCache{
		layouts: make(map[string][]byte),
		updated: make(map[string]time.Time),
		bundle:  bundleDir,
	}
}

// Store caches data under the key for name. It reports whether the entry
// changed; storing identical bytes again is a no-op.
func (c *LayoutCache) Store(name string, data []byte) bool {
	key := Key(name)
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.layouts[key]; ok && bytes.Equal(old, data) {
		return false
	}
	c.layouts[key] = append([]byte(nil), data...)
	c.updated[key] = time.Now()
	return true
}

// Get returns the layout for key, reading the bundle directory when it is
// not cached.
func (c *LayoutCache) Get(name string) ([]byte, bool) {
	key := Key(name)
	c.mu.RLock()
	data, ok := c.layouts[key]
	bundle := c.bundle
	c.mu.RUnlock()
	if ok {
		return data, true
	}
	if bundle == "" {
		return nil, false
	}
	dir, base := filepath.Split(filepath.FromSlash(key))
	for _, file := range []string{"_" + base + ".json", base + ".json"} {
		if data, err := os.ReadFile(filepath.Join(bundle, dir, file)); err == nil {
			return data, true
		}
	}
	return nil, false
}

// Remove drops a cached entry.
func (c *LayoutCache) Remove(name string) {
	key := Key(name)
	c.mu.Lock()
	delete(c.layouts, key)
	delete(c.updated, key)
	c.mu.Unlock()
}

// Keys returns the cached keys, sorted. Bundle files are not listed.
func (c *LayoutCache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.layouts))
	for k := range c.layouts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UpdatedAt returns when an entry last changed.
func (c *LayoutCache) UpdatedAt(name string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.updated[Key(name)]
	return t, ok
}

// LoadDir caches every .json file under dir, keyed by path relative to dir.
func (c *LayoutCache) LoadDir(dir string) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".json") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			log.Printf("[dynamic] skipping %s: %v", p, err)
			return nil
		}
		if c.Store(filepath.ToSlash(rel), data) {
			n++
		}
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("loading layouts from %s: %w", dir, err)
	}
	return n, nil
}

type snapshot struct {
	Version int                  `msgpack:"v"`
	Layouts map[string][]byte    `msgpack:"layouts"`
	Updated map[string]time.Time `msgpack:"updated"`
}

const snapshotVersion = 1

// Save writes the cached entries as a msgpack snapshot.
func (c *LayoutCache) Save(w io.Writer) error {
	c.mu.RLock()
	s := snapshot{Version: snapshotVersion, Layouts: c.layouts, Updated: c.updated}
	err := msgpack.NewEncoder(w).Encode(&s)
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encoding layout cache: %w", err)
	}
	return nil
}

// Restore merges a snapshot written by Save. Entries already cached win.
func (c *LayoutCache) Restore(r io.Reader) error {
	var s snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return fmt.Errorf("decoding layout cache: %w", err)
	}
	if s.Version != snapshotVersion {
		return fmt.Errorf("decoding layout cache: unsupported version %d", s.Version)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, data := range s.Layouts {
		if _, ok := c.layouts[k]; ok {
			continue
		}
		c.layouts[k] = data
		if t, ok := s.Updated[k]; ok {
			c.updated[k] = t
		}
	}
	return nil
}

// SaveFile writes a snapshot to path atomically.
func (c *LayoutCache) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := c.Save(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// RestoreFile loads a snapshot from path. A missing file is not an error.
func (c *LayoutCache) RestoreFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	return c.Restore(f)
}
