// Package analyzer turns one layout document into the facts code generation
// needs: resolved includes, declared data, id-bearing views, event handlers,
// per-type attribute assignments, and the include edges the build cache uses
// for invalidation.
package analyzer

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dejo1307/sjui/internal/layout"
	"github.com/dejo1307/sjui/internal/mapping"
)

// ViewVariable is a weak view reference assigned in bindView through an id
// lookup.
type ViewVariable struct {
	ID    string // layout id
	Name  string // Swift property name
	Class string // UIKit class
	Type  string // layout component type
}

// Declaration returns the Swift property declaration.
func (v ViewVariable) Declaration() string {
	return fmt.Sprintf("weak var %s: %s!", v.Name, v.Class)
}

// PartialBinding is an included fragment with its own binding object.
type PartialBinding struct {
	Name    string // property name in the parent binding
	Include string // include name as written, without ".json"
	File    string // resolved fragment path
	Rel     string // fragment path relative to the layouts root
	Class   string // fragment binding class
	ID      string // binding id namespace passed to the initializer
	Roots   []*layout.Node
	Data    []layout.DataField

	// SharedDataBindings maps a fragment data property to the parent
	// expression that feeds it.
	SharedDataBindings map[string]string
}

// SharedKeys returns the shared data property names in sorted order.
func (p *PartialBinding) SharedKeys() []string {
	keys := make([]string, 0, len(p.SharedDataBindings))
	for k := range p.SharedDataBindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EventHandler is an "onX" attribute naming a handler.
type EventHandler struct {
	ViewID  string
	Var     string
	Type    string
	Event   string
	Handler string
}

// Assignment is one attribute set on a component.
type Assignment struct {
	ViewID string
	Var    string
	Key    string
	Value  any
	Expr   string // binding expression when Value is "@{...}"
}

// Bound reports whether the value is a data binding expression.
func (a Assignment) Bound() bool {
	return a.Expr != ""
}

// Result holds everything derived from one layout file.
type Result struct {
	File string // path as given
	Rel  string // path relative to the layouts root
	Name string // base name, e.g. "home" for Layouts/home.json

	Roots []*layout.Node

	DataSets        []layout.DataField
	WeakVars        []ViewVariable
	WeakVarsContent []string
	PartialBindings []*PartialBinding

	// IncludingFiles maps every file visited during resolution (relative to
	// the layouts root) to the include names it references directly.
	IncludingFiles map[string][]string
	// Edges lists the resolved includes in resolution order.
	Edges []IncludeEdge

	EventHandlers []EventHandler
	Assignments   map[string][]Assignment // component type -> assignments
	UnknownTypes  []string
	Warnings      []string

	nodes map[string]*layout.Node
}

// Node returns the node of an id-bearing view owned by this layout.
func (r *Result) Node(id string) *layout.Node {
	return r.nodes[id]
}

// Root returns the first root node, or nil for an empty document.
func (r *Result) Root() *layout.Node {
	if len(r.Roots) == 0 {
		return nil
	}
	return r.Roots[0]
}

// Includes returns the direct include names of the analyzed file.
func (r *Result) Includes() []string {
	return r.IncludingFiles[r.Rel]
}

// VarFor returns the weak variable name for a view id.
func (r *Result) VarFor(id string) (string, bool) {
	for _, v := range r.WeakVars {
		if v.ID == id {
			return v.Name, true
		}
	}
	return "", false
}

// HandlerNames returns distinct handler names in declaration order.
func (r *Result) HandlerNames() []string {
	var out []string
	seen := make(map[string]bool)
	for _, h := range r.EventHandlers {
		if seen[h.Handler] {
			continue
		}
		seen[h.Handler] = true
		out = append(out, h.Handler)
	}
	return out
}

// LayoutKey names a layout by its path relative to the layouts root without
// extension or partial prefix: "common/_header.json" -> "common/header".
func LayoutKey(rel string) string {
	rel = filepath.ToSlash(rel)
	dir := ""
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		dir = rel[:i+1]
	}
	return dir + layout.BaseName(rel)
}

// Options configures an Analyzer.
type Options struct {
	// Root is the layouts directory; includes fall back to it.
	Root string
	// Styles resolves "style" references. Nil disables styles.
	Styles *layout.Styles
	// Custom maps app-specific component types to UIKit classes.
	Custom map[string]string
}

// Analyzer analyzes layout documents.
type Analyzer struct {
	root   string
	styles *layout.Styles
	custom map[string]string
}

// New creates an Analyzer.
func New(opts Options) *Analyzer {
	return &Analyzer{root: opts.Root, styles: opts.Styles, custom: opts.Custom}
}

// Analyze reads and analyzes a layout file.
func (a *Analyzer) Analyze(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout %s: %w", path, err)
	}
	nodes, err := layout.Parse(data, path)
	if err != nil {
		return nil, err
	}
	return a.analyze(path, nodes)
}

// AnalyzeDocument analyzes an already-decoded document. The root may be an
// object or an array of objects.
func (a *Analyzer) AnalyzeDocument(path string, v any) (*Result, error) {
	nodes, err := layout.FromValue(v, path)
	if err != nil {
		return nil, err
	}
	return a.analyze(path, nodes)
}

func (a *Analyzer) analyze(path string, nodes []*layout.Node) (*Result, error) {
	r := &resolver{
		a:         a,
		file:      path,
		including: make(map[string][]string),
		partials:  make(map[*layout.Node]*PartialBinding),
	}
	rel := r.rel(path)
	abs, _ := filepath.Abs(path)
	r.stack = []string{abs}

	var roots []*layout.Node
	for _, n := range nodes {
		if n.IsInclude() {
			spliced, err := r.resolveInclude(n, path, filepath.Dir(path), true)
			if err != nil {
				return nil, err
			}
			roots = append(roots, spliced...)
			continue
		}
		if err := r.resolveChildren(n, filepath.Dir(path)); err != nil {
			return nil, err
		}
		roots = append(roots, n)
	}

	res := &Result{
		File:           path,
		Rel:            rel,
		Name:           layout.BaseName(path),
		Roots:          roots,
		IncludingFiles: r.including,
		Edges:          r.edges,
		Assignments:    make(map[string][]Assignment),
		nodes:          make(map[string]*layout.Node),
	}
	if _, ok := res.IncludingFiles[rel]; !ok {
		res.IncludingFiles[rel] = nil
	}

	if a.styles != nil {
		for _, root := range roots {
			if err := a.styles.Apply(root); err != nil {
				res.Warnings = append(res.Warnings, err.Error())
				log.Printf("[analyzer] %s: %v", path, err)
			}
		}
	}

	w := &walker{a: a, res: res, partials: r.partials, ids: make(map[string]bool), unknown: make(map[string]bool)}
	for _, root := range roots {
		w.walk(root)
	}
	res.PartialBindings = r.order
	w.finish()
	return res, nil
}

type walker struct {
	a        *Analyzer
	res      *Result
	partials map[*layout.Node]*PartialBinding
	ids      map[string]bool
	unknown  map[string]bool
}

func (w *walker) walk(root *layout.Node) {
	root.Walk(func(n, _ *layout.Node) bool {
		if pb, ok := w.partials[n]; ok {
			// The fragment's own binding owns everything below; the
			// parent only needs the fragment's declared data for shared
			// data wiring.
			pb.Data = layout.MergeData(pb.Data, collectData(n))
			w.classify(n)
			return false
		}
		w.visit(n)
		return true
	})
}

func collectData(n *layout.Node) []layout.DataField {
	var out []layout.DataField
	n.Walk(func(c, _ *layout.Node) bool {
		out = layout.MergeData(out, c.Data)
		return true
	})
	return out
}

func (w *walker) classify(n *layout.Node) (mapping.Component, bool) {
	if c, ok := mapping.LookupComponent(n.Type); ok {
		return c, true
	}
	if class, ok := w.a.custom[n.Type]; ok {
		return mapping.Component{Type: n.Type, UIKit: class, SwiftUI: n.Type, Suffix: n.Type}, true
	}
	if !w.unknown[n.Type] {
		w.unknown[n.Type] = true
		w.res.UnknownTypes = append(w.res.UnknownTypes, n.Type)
	}
	return mapping.Placeholder, false
}

func (w *walker) visit(n *layout.Node) {
	res := w.res
	comp, _ := w.classify(n)
	res.DataSets = layout.MergeData(res.DataSets, n.Data)

	varName := ""
	if n.ID != "" {
		varName = VarName(n.ID)
		if w.ids[n.ID] {
			res.Warnings = append(res.Warnings, fmt.Sprintf("duplicate id %q", n.ID))
		} else {
			w.ids[n.ID] = true
			res.nodes[n.ID] = n
			res.WeakVars = append(res.WeakVars, ViewVariable{
				ID:    n.ID,
				Name:  varName,
				Class: comp.UIKit,
				Type:  n.Type,
			})
		}
	}

	unreachable := false
	var unwired []string
	for _, key := range n.Keys() {
		v := n.Attrs[key]
		if mapping.IsEventKey(key) {
			if h, ok := handlerName(v); ok {
				if varName == "" {
					unwired = append(unwired, key)
				}
				res.EventHandlers = append(res.EventHandlers, EventHandler{
					ViewID:  n.ID,
					Var:     varName,
					Type:    n.Type,
					Event:   key,
					Handler: h,
				})
			}
			continue
		}
		a := Assignment{ViewID: n.ID, Var: varName, Key: key, Value: v}
		if expr, ok := layout.BindingExpr(v); ok {
			a.Expr = expr
			if varName == "" {
				unreachable = true
			}
		}
		res.Assignments[n.Type] = append(res.Assignments[n.Type], a)
	}
	if unreachable {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s without id has bound attributes; bindings are not applied", n.Type))
	}
	if len(unwired) > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s without id has event handlers (%s); bindings do not wire them", n.Type, strings.Join(unwired, ", ")))
	}
}

func (w *walker) finish() {
	res := w.res
	for _, v := range res.WeakVars {
		res.WeakVarsContent = append(res.WeakVarsContent, v.Declaration())
	}
	for _, pb := range res.PartialBindings {
		res.WeakVarsContent = append(res.WeakVarsContent, fmt.Sprintf("var %s: %s!", pb.Name, pb.Class))
	}
}

// handlerName extracts a handler from an event attribute: a plain name or
// an "@{name}" expression.
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

// VarName returns the Swift property name for a layout id.
func VarName(id string) string {
	name := layout.CamelCase(id)
	if name == "" {
		return "view"
	}
	if c := name[0]; c >= '0' && c <= '9' {
		name = "v" + name
	}
	return name
}

func newPartialBinding(inc *layout.Node, name, path, rel string, nodes []*layout.Node) *PartialBinding {
	base := layout.BaseName(name)
	id := inc.ID
	if id == "" {
		id = base
	}
	pb := &PartialBinding{
		Name:    VarName(id) + "Binding",
		Include: name,
		File:    path,
		Rel:     rel,
		Class:   layout.BindingClassName(base),
		ID:      id,
		Roots:   nodes,
	}
	if len(inc.SharedData) > 0 {
		pb.SharedDataBindings = make(map[string]string, len(inc.SharedData))
		for k, v := range inc.SharedData {
			pb.SharedDataBindings[k] = sharedExpr(v)
		}
	}
	return pb
}

// sharedExpr converts a shared_data value into the parent-side Swift
// expression: "@{expr}" and bare names refer to parent data, other values
// are literals.
func sharedExpr(v any) string {
	if expr, ok := layout.BindingExpr(v); ok {
		return expr
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return mapping.FormatNumber(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return "nil"
	}
	return fmt.Sprint(v)
}
