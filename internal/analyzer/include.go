package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dejo1307/sjui/internal/layout"
)

// literalPrefix marks variables that are interpolated into any string
// containing them. Other variables only replace whole string values.
const literalPrefix = "@@"

// Substitute applies include variables to a decoded fragment. Keys starting
// with "@@" are replaced wherever they occur inside a string. Any other key
// replaces a string leaf only when the leaf equals the key exactly, and the
// replacement keeps its JSON type. Replacement values are spliced as-is and
// never walked themselves.
func Substitute(v any, vars map[string]any) any {
	if len(vars) == 0 {
		return v
	}
	var literal []string
	for k := range vars {
		if strings.HasPrefix(k, literalPrefix) {
			literal = append(literal, k)
		}
	}
	// Longest first so "@@title_color" is not clobbered by "@@title".
	sort.Slice(literal, func(i, j int) bool {
		if len(literal[i]) != len(literal[j]) {
			return len(literal[i]) > len(literal[j])
		}
		return literal[i] < literal[j]
	})
	return substitute(v, vars, literal)
}

func substitute(v any, vars map[string]any, literal []string) any {
	switch t := v.(type) {
	case string:
		if !strings.HasPrefix(t, literalPrefix) {
			if rep, ok := vars[t]; ok {
				return layout.CloneValue(rep)
			}
		}
		for _, k := range literal {
			if strings.Contains(t, k) {
				t = strings.ReplaceAll(t, k, interpolate(vars[k]))
			}
		}
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = substitute(e, vars, literal)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = substitute(e, vars, literal)
		}
		return out
	default:
		return v
	}
}

func interpolate(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case float64, bool:
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// resolver inlines include nodes. It keeps the chain of files being expanded,
// starting with the analyzed file, so that fragments including each other are
// reported instead of recursing forever.
type resolver struct {
	a     *Analyzer
	file  string
	stack []string

	// direct include names per file, keyed by path relative to the
	// layouts root
	including map[string][]string
	edges     []IncludeEdge
	partials  map[*layout.Node]*PartialBinding
	order     []*PartialBinding
}

// IncludeEdge is one resolved include, both ends relative to the layouts
// root.
type IncludeEdge struct {
	From    string `json:"from"`
	Include string `json:"include"`
	To      string `json:"to"`
}

func (r *resolver) resolveChildren(n *layout.Node, fromDir string) error {
	var out []*layout.Node
	for _, c := range n.Children {
		if !c.IsInclude() {
			if err := r.resolveChildren(c, fromDir); err != nil {
				return err
			}
			out = append(out, c)
			continue
		}
		spliced, err := r.resolveInclude(c, n.Source, fromDir, len(r.stack) == 1)
		if err != nil {
			return err
		}
		out = append(out, spliced...)
	}
	n.Children = out
	return nil
}

// resolveInclude loads the fragment an include node names and returns the
// nodes that replace it. Only includes written in the file being analyzed
// (top level) become partial bindings; nested ones belong to the fragment's
// own binding.
func (r *resolver) resolveInclude(inc *layout.Node, includingFile, fromDir string, topLevel bool) ([]*layout.Node, error) {
	name := strings.TrimSuffix(filepath.ToSlash(inc.Include), ".json")
	r.recordInclude(includingFile, name)

	path, ok := layout.FindFragment(r.a.root, fromDir, name)
	if !ok {
		return nil, &layout.IncludeError{File: r.file, Include: name, Err: layout.ErrFragmentNotFound}
	}
	r.addEdge(IncludeEdge{From: r.rel(includingFile), Include: name, To: r.rel(path)})
	abs, _ := filepath.Abs(path)
	for _, s := range r.stack {
		if s == abs {
			chain := append(append([]string{}, r.stack...), abs)
			for i := range chain {
				chain[i] = r.rel(chain[i])
			}
			return nil, &layout.IncludeError{
				File:    r.file,
				Include: name,
				Err:     fmt.Errorf("%w: %s", layout.ErrIncludeCycle, strings.Join(chain, " -> ")),
			}
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &layout.IncludeError{File: r.file, Include: name, Err: err}
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &layout.ParseError{File: path, Err: err}
	}
	raw = Substitute(raw, inc.Variables)

	nodes, err := layout.FromValue(raw, path)
	if err != nil {
		return nil, err
	}

	r.stack = append(r.stack, abs)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	var out []*layout.Node
	for _, n := range nodes {
		if n.IsInclude() {
			spliced, err := r.resolveInclude(n, path, filepath.Dir(path), false)
			if err != nil {
				return nil, err
			}
			out = append(out, spliced...)
			continue
		}
		if err := r.resolveChildren(n, filepath.Dir(path)); err != nil {
			return nil, err
		}
		n.Walk(func(c, _ *layout.Node) bool {
			if c.Fragment == "" {
				c.Fragment = name
			}
			return true
		})
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, nil
	}

	if topLevel && needsPartialBinding(out, inc) {
		pb := newPartialBinding(inc, name, path, r.rel(path), out)
		r.partials[out[0]] = pb
		for _, n := range out[1:] {
			r.partials[n] = pb
		}
		r.order = append(r.order, pb)
	}
	return out, nil
}

// needsPartialBinding reports whether an include gets its own binding
// object. Fragments that declare data, or includes that pass shared data,
// do; plain markup fragments are inlined into the parent binding.
func needsPartialBinding(nodes []*layout.Node, inc *layout.Node) bool {
	if len(inc.SharedData) > 0 {
		return true
	}
	found := false
	for _, n := range nodes {
		n.Walk(func(c, _ *layout.Node) bool {
			if len(c.Data) > 0 {
				found = true
			}
			return !found
		})
	}
	return found
}

func (r *resolver) recordInclude(file, name string) {
	key := r.rel(file)
	for _, existing := range r.including[key] {
		if existing == name {
			return
		}
	}
	r.including[key] = append(r.including[key], name)
}

func (r *resolver) addEdge(e IncludeEdge) {
	for _, existing := range r.edges {
		if existing == e {
			return
		}
	}
	r.edges = append(r.edges, e)
}

func (r *resolver) rel(p string) string {
	if r.a.root == "" {
		return filepath.ToSlash(p)
	}
	absRoot, err := filepath.Abs(r.a.root)
	if err != nil {
		return filepath.ToSlash(p)
	}
	absP, err := filepath.Abs(p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(absRoot, absP)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}
