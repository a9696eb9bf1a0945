package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// ParseFile reads and parses a layout file.
func ParseFile(path string) ([]*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses layout JSON. The root may be a single component or an array.
func Parse(data []byte, source string) ([]*Node, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &ParseError{File: source, Err: err}
	}
	return FromValue(v, source)
}

// FromValue converts an already-decoded JSON value into nodes.
func FromValue(v any, source string) ([]*Node, error) {
	switch t := v.(type) {
	case map[string]any:
		n, err := parseNode(t, source, "root")
		if err != nil {
			return nil, err
		}
		return []*Node{n}, nil
	case []any:
		// Data declarations at the root belong to the first component.
		var nodes []*Node
		holder := &Node{}
		for i, e := range t {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, &ParseError{File: source, Path: fmt.Sprintf("root[%d]", i), Err: fmt.Errorf("expected object, got %T", e)}
			}
			if IsDataDeclaration(m) {
				if err := holder.absorbData(m, source, fmt.Sprintf("root[%d]", i)); err != nil {
					return nil, err
				}
				continue
			}
			n, err := parseNode(m, source, fmt.Sprintf("root[%d]", i))
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
		}
		if len(nodes) > 0 && len(holder.Data) > 0 {
			nodes[0].Data = mergeData(nodes[0].Data, holder.Data)
		}
		return nodes, nil
	default:
		return nil, &ParseError{File: source, Err: fmt.Errorf("expected object or array at root, got %T", v)}
	}
}

// ParseNode converts one decoded component object.
func ParseNode(m map[string]any, source string) (*Node, error) {
	return parseNode(m, source, "root")
}

// IsDataDeclaration reports whether a child entry is a bare data declaration
// ({"data": [...]}) rather than a renderable component. The schema has no
// discriminator field, so the shape decides: a "data" key with no "type" and
// no "include".
func IsDataDeclaration(m map[string]any) bool {
	if _, ok := m[KeyData]; !ok {
		return false
	}
	if _, ok := m[KeyType]; ok {
		return false
	}
	if _, ok := m[KeyInclude]; ok {
		return false
	}
	return true
}

func parseNode(m map[string]any, source, path string) (*Node, error) {
	n := &Node{Source: source, Attrs: make(map[string]any)}

	if inc, ok := m[KeyInclude]; ok {
		name, ok := inc.(string)
		if !ok || name == "" {
			return nil, &ParseError{File: source, Path: path, Err: fmt.Errorf("include must be a non-empty string")}
		}
		n.Include = name
		n.Variables, _ = m[KeyVariables].(map[string]any)
		n.SharedData, _ = m[KeySharedData].(map[string]any)
		if id, ok := m[KeyID].(string); ok {
			n.ID = id
		}
		return n, nil
	}

	typ, _ := m[KeyType].(string)
	if typ == "" {
		return nil, &ParseError{File: source, Path: path, Err: ErrMissingType}
	}
	n.Type = typ

	for k, v := range m {
		switch k {
		case KeyType, KeyChild, KeyChildren:
		case KeyID:
			if s, ok := v.(string); ok {
				n.ID = s
			}
		case KeyStyle:
			if s, ok := v.(string); ok {
				n.Style = s
			}
		case KeyData:
			fields, err := ParseDataFields(v)
			if err != nil {
				return nil, &ParseError{File: source, Path: path + ".data", Err: err}
			}
			n.Data = mergeData(n.Data, fields)
		default:
			n.Attrs[k] = v
		}
	}

	for _, key := range []string{KeyChildren, KeyChild} {
		raw, ok := m[key]
		if !ok {
			continue
		}
		if err := n.appendChildren(raw, source, path+"."+key); err != nil {
			return nil, err
		}
	}

	return n, nil
}

// appendChildren normalizes the accepted child shapes: a single object, an
// array of objects, or a mixed array where data declarations are folded into
// the parent instead of being rendered.
func (n *Node) appendChildren(raw any, source, path string) error {
	switch t := raw.(type) {
	case map[string]any:
		if IsDataDeclaration(t) {
			return n.absorbData(t, source, path)
		}
		c, err := parseNode(t, source, path)
		if err != nil {
			return err
		}
		n.Children = append(n.Children, c)
	case []any:
		for i, e := range t {
			m, ok := e.(map[string]any)
			if !ok {
				continue
			}
			p := fmt.Sprintf("%s[%d]", path, i)
			if IsDataDeclaration(m) {
				if err := n.absorbData(m, source, p); err != nil {
					return err
				}
				continue
			}
			c, err := parseNode(m, source, p)
			if err != nil {
				return err
			}
			n.Children = append(n.Children, c)
		}
	}
	return nil
}

func (n *Node) absorbData(m map[string]any, source, path string) error {
	fields, err := ParseDataFields(m[KeyData])
	if err != nil {
		return &ParseError{File: source, Path: path + ".data", Err: err}
	}
	n.Data = mergeData(n.Data, fields)
	return nil
}
