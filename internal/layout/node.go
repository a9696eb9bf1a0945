// Package layout holds the parsed representation of layout JSON documents.
//
// A layout file is either a single component object or an array of them.
// Children may be written as a "children" array, or as a "child" field holding
// a single component, an array, or a mixed array that interleaves data
// declarations with components. Parsing normalizes all of these into
// Node.Children so later stages never see the historical variance.
package layout

import (
	"sort"
	"strings"
)

// Structural keys. Everything else on a component is a plain attribute.
const (
	KeyType       = "type"
	KeyID         = "id"
	KeyChild      = "child"
	KeyChildren   = "children"
	KeyInclude    = "include"
	KeyVariables  = "variables"
	KeySharedData = "shared_data"
	KeyData       = "data"
	KeyStyle      = "style"
)

// Node is one parsed UI component.
type Node struct {
	Type       string
	ID         string
	Attrs      map[string]any
	Children   []*Node
	Include    string
	Variables  map[string]any
	SharedData map[string]any
	Data       []DataField
	Style      string

	// Source is the file the node was read from. Nodes spliced in from a
	// fragment keep the fragment's path.
	Source string
	// Fragment is the include name this node was resolved from, if any.
	Fragment string
}

// IsInclude reports whether the node is an unresolved include reference.
func (n *Node) IsInclude() bool {
	return n.Include != ""
}

// Attr returns a raw attribute value.
func (n *Node) Attr(key string) (any, bool) {
	if n.Attrs == nil {
		return nil, false
	}
	v, ok := n.Attrs[key]
	return v, ok
}

// String returns an attribute as a string, or "" if absent or not a string.
func (n *Node) String(key string) string {
	v, _ := n.Attr(key)
	s, _ := v.(string)
	return s
}

// Keys returns attribute keys in sorted order. Generation iterates attributes
// through Keys so that output is byte-stable across runs.
func (n *Node) Keys() []string {
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Orientation returns "horizontal" or "vertical" (the default).
func (n *Node) Orientation() string {
	if strings.EqualFold(n.String("orientation"), "horizontal") {
		return "horizontal"
	}
	return "vertical"
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(node, parent *Node) bool) {
	walk(n, nil, fn)
}

func walk(n, parent *Node, fn func(node, parent *Node) bool) {
	if !fn(n, parent) {
		return
	}
	for _, c := range n.Children {
		walk(c, n, fn)
	}
}

// Clone returns a deep copy of the node tree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Attrs = cloneMap(n.Attrs)
	c.Variables = cloneMap(n.Variables)
	c.SharedData = cloneMap(n.SharedData)
	c.Data = append([]DataField(nil), n.Data...)
	c.Children = make([]*Node, len(n.Children))
	for i, ch := range n.Children {
		c.Children[i] = ch.Clone()
	}
	return &c
}

// Raw converts the node back into its canonical JSON shape. Children are
// always emitted under "children".
func (n *Node) Raw() map[string]any {
	m := cloneMap(n.Attrs)
	if m == nil {
		m = make(map[string]any)
	}
	if n.Include != "" {
		m[KeyInclude] = n.Include
		if len(n.Variables) > 0 {
			m[KeyVariables] = cloneMap(n.Variables)
		}
		if len(n.SharedData) > 0 {
			m[KeySharedData] = cloneMap(n.SharedData)
		}
		return m
	}
	m[KeyType] = n.Type
	if n.ID != "" {
		m[KeyID] = n.ID
	}
	if n.Style != "" {
		m[KeyStyle] = n.Style
	}
	if len(n.Data) > 0 {
		data := make([]any, 0, len(n.Data))
		for _, d := range n.Data {
			data = append(data, d.Raw())
		}
		m[KeyData] = data
	}
	if len(n.Children) > 0 {
		children := make([]any, 0, len(n.Children))
		for _, c := range n.Children {
			children = append(children, c.Raw())
		}
		m[KeyChildren] = children
	}
	return m
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// CloneValue deep-copies a decoded JSON value.
func CloneValue(v any) any {
	return cloneValue(v)
}
