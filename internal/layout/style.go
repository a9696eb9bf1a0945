package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Styles holds named attribute blocks from the styles directory. A style
// file is a JSON object of attributes; it may itself name a parent "style".
type Styles struct {
	dir   string
	cache map[string]map[string]any
}

// NewStyles creates a style set reading from dir. An empty dir yields a set
// that resolves nothing.
func NewStyles(dir string) *Styles {
	return &Styles{dir: dir, cache: make(map[string]map[string]any)}
}

// Lookup returns the flattened attributes of a named style.
func (s *Styles) Lookup(name string) (map[string]any, error) {
	return s.lookup(name, map[string]bool{})
}

func (s *Styles) lookup(name string, visiting map[string]bool) (map[string]any, error) {
	if attrs, ok := s.cache[name]; ok {
		return attrs, nil
	}
	if visiting[name] {
		return nil, fmt.Errorf("style %q: cyclic parent", name)
	}
	visiting[name] = true

	if s.dir == "" {
		return nil, fmt.Errorf("style %q: no styles directory", name)
	}
	p := filepath.Join(s.dir, filepath.FromSlash(strings.TrimSuffix(name, ".json"))+".json")
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("style %q: %w", name, err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("style %q: %w", name, err)
	}

	attrs := make(map[string]any)
	if parent, ok := raw[KeyStyle].(string); ok && parent != "" {
		pa, err := s.lookup(parent, visiting)
		if err != nil {
			return nil, err
		}
		for k, v := range pa {
			attrs[k] = v
		}
	}
	for k, v := range raw {
		switch k {
		case KeyStyle, KeyType, KeyID, KeyChild, KeyChildren, KeyInclude, KeyData:
			continue
		}
		attrs[k] = v
	}
	s.cache[name] = attrs
	return attrs, nil
}

// Apply merges referenced styles beneath each node's own attributes across
// the whole tree. A node's explicit attributes always win.
func (s *Styles) Apply(root *Node) error {
	var firstErr error
	root.Walk(func(n, _ *Node) bool {
		if n.Style == "" {
			return true
		}
		attrs, err := s.Lookup(n.Style)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return true
		}
		if n.Attrs == nil {
			n.Attrs = make(map[string]any)
		}
		for k, v := range attrs {
			if _, ok := n.Attrs[k]; !ok {
				n.Attrs[k] = CloneValue(v)
			}
		}
		return true
	})
	return firstErr
}
