// Package dynamic interprets layout JSON at run time. Layouts come from a
// LayoutCache fed by hot reload or a bundle directory, are decoded into
// Components, and are turned into a View tree by type-specific builders
// without any code generation step.
package dynamic

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/dejo1307/sjui/internal/analyzer"
	"github.com/dejo1307/sjui/internal/layout"
	"github.com/dejo1307/sjui/internal/mapping"
)

// Component is a decoded node ready for interpretation: includes are
// resolved, event attributes split out and static colors resolved.
type Component struct {
	Type     string             `json:"type"`
	ID       string             `json:"id,omitempty"`
	Attrs    map[string]any     `json:"attrs,omitempty"`
	Colors   map[string]string  `json:"colors,omitempty"` // attribute -> #RRGGBB / #AARRGGBB
	Events   map[string]string  `json:"events,omitempty"` // event key -> handler
	Data     []layout.DataField `json:"-"`
	Children []*Component       `json:"children,omitempty"`
}

var colorKeys = map[string]bool{
	"background": true, "fontColor": true, "borderColor": true, "tintColor": true,
	"onTintColor": true, "color": true, "hintColor": true, "highlightColor": true,
	"tapBackground": true, "selectedFontColor": true,
}

// String returns an attribute as a string.
func (c *Component) String(key string) string {
	s, _ := c.Attrs[key].(string)
	return s
}

// Orientation returns "horizontal" or "vertical".
func (c *Component) Orientation() string {
	if strings.EqualFold(c.String("orientation"), "horizontal") {
		return "horizontal"
	}
	return "vertical"
}

// Walk visits c and its descendants depth-first.
func (c *Component) Walk(fn func(*Component)) {
	fn(c)
	for _, ch := range c.Children {
		ch.Walk(fn)
	}
}

// FromNode converts a parsed node tree. Include nodes must already be
// resolved.
func FromNode(n *layout.Node, colors *mapping.ColorResolver) *Component {
	c := &Component{Type: n.Type, ID: n.ID, Data: n.Data, Attrs: make(map[string]any, len(n.Attrs))}
	for _, key := range n.Keys() {
		v := n.Attrs[key]
		if mapping.IsEventKey(key) {
			if h, ok := handlerName(v); ok {
				if c.Events == nil {
					c.Events = make(map[string]string)
				}
				c.Events[key] = h
			}
			continue
		}
		c.Attrs[key] = v
		if colorKeys[key] && colors != nil {
			if _, bound := layout.BindingExpr(v); bound {
				continue
			}
			if col, ok := colors.Value(v); ok {
				if c.Colors == nil {
					c.Colors = make(map[string]string)
				}
				c.Colors[key] = col.Hex()
			}
		}
	}
	for _, ch := range n.Children {
		c.Children = append(c.Children, FromNode(ch, colors))
	}
	return c
}

func handlerName(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	if expr, ok := layout.BindingExpr(s); ok {
		s = expr
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Loader decodes layouts held in a LayoutCache, resolving includes against
// the same cache.
type Loader struct {
	Cache  *LayoutCache
	Colors *mapping.ColorResolver
}

// NewLoader creates a Loader over cache.
func NewLoader(cache *LayoutCache, colors *mapping.ColorResolver) *Loader {
	if colors == nil {
		colors = mapping.NewColorResolver(nil)
	}
	return &Loader{Cache: cache, Colors: colors}
}

// Load decodes the named layout into its root components.
func (l *Loader) Load(name string) ([]*Component, error) {
	key := Key(name)
	data, ok := l.Cache.Get(key)
	if !ok {
		return nil, fmt.Errorf("layout %q: %w", key, ErrNotFound)
	}
	nodes, err := layout.Parse(data, key+".json")
	if err != nil {
		return nil, err
	}
	nodes, err = l.resolve(nodes, key, []string{key})
	if err != nil {
		return nil, err
	}
	out := make([]*Component, len(nodes))
	for i, n := range nodes {
		out[i] = FromNode(n, l.Colors)
	}
	return out, nil
}

func (l *Loader) resolve(nodes []*layout.Node, from string, stack []string) ([]*layout.Node, error) {
	var out []*layout.Node
	for _, n := range nodes {
		if !n.IsInclude() {
			children, err := l.resolve(n.Children, from, stack)
			if err != nil {
				return nil, err
			}
			n.Children = children
			out = append(out, n)
			continue
		}
		key, data, ok := l.fragment(from, n.Include)
		if !ok {
			return nil, &layout.IncludeError{File: from, Include: n.Include, Err: layout.ErrFragmentNotFound}
		}
		for _, s := range stack {
			if s == key {
				return nil, &layout.IncludeError{
					File:    from,
					Include: n.Include,
					Err:     fmt.Errorf("%w: %s -> %s", layout.ErrIncludeCycle, strings.Join(stack, " -> "), key),
				}
			}
		}
		var raw any
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, &layout.ParseError{File: key + ".json", Err: err}
		}
		parsed, err := layout.FromValue(analyzer.Substitute(raw, n.Variables), key+".json")
		if err != nil {
			return nil, err
		}
		spliced, err := l.resolve(parsed, key, append(stack, key))
		if err != nil {
			return nil, err
		}
		out = append(out, spliced...)
	}
	return out, nil
}

// fragment finds an include relative to the including layout's directory
// first, then at the top level.
func (l *Loader) fragment(from, include string) (string, []byte, bool) {
	name := Key(include)
	var candidates []string
	if dir := path.Dir(from); dir != "." {
		candidates = append(candidates, path.Join(dir, name))
	}
	candidates = append(candidates, name)
	for _, k := range candidates {
		if data, ok := l.Cache.Get(k); ok {
			return k, data, true
		}
	}
	return "", nil, false
}

// Key normalizes a layout name or relative path to its cache key:
// "common/_header.json" -> "common/header".
func Key(name string) string {
	return analyzer.LayoutKey(strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(name, "\\", "/")), "/"))
}
