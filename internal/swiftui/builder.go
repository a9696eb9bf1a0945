// Package swiftui builds SwiftUI view expressions from layout trees.
//
// Containers nest their children in an HStack or VStack chosen by
// orientation. A container with one child renders the child directly, an
// empty one renders EmptyView(), and a container whose children use
// relative positioning rules renders a ZStack with solved offsets.
package swiftui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dejo1307/sjui/internal/constraints"
	"github.com/dejo1307/sjui/internal/layout"
	"github.com/dejo1307/sjui/internal/mapping"
)

// DefaultScreen is the container size used to solve relative layouts whose
// root has no fixed size.
var DefaultScreen = constraints.Size{W: 375, H: 667}

const indentUnit = "    "

// Options configures a Builder.
type Options struct {
	Colors *mapping.ColorResolver
	// Custom maps app-specific component types to SwiftUI view names.
	Custom map[string]string
	// Includes maps the root node of an included fragment to the view
	// expression that replaces it, e.g. "HeaderView(title: title)".
	Includes map[*layout.Node]string
	// Skip lists nodes that are not rendered (secondary roots of an
	// included fragment).
	Skip map[*layout.Node]bool
	// Estimator sizes wrapContent views in relative layouts.
	Estimator constraints.Estimator
	// Screen overrides DefaultScreen.
	Screen constraints.Size
}

// Builder renders layout trees as SwiftUI. A Builder accumulates the data
// fields and handlers referenced while building, so use one per view.
type Builder struct {
	opts     Options
	twoWay   map[string]bool
	handlers []string
	seen     map[string]bool

	// positioned holds children of relative containers, whose margins are
	// already part of their solved offset.
	positioned map[*layout.Node]bool
}

// NewBuilder creates a Builder.
func NewBuilder(opts Options) *Builder {
	if opts.Colors == nil {
		opts.Colors = mapping.NewColorResolver(nil)
	}
	if opts.Estimator == nil {
		opts.Estimator = constraints.EstimateSize
	}
	if opts.Screen == (constraints.Size{}) {
		opts.Screen = DefaultScreen
	}
	return &Builder{
		opts:       opts,
		twoWay:     make(map[string]bool),
		seen:       make(map[string]bool),
		positioned: make(map[*layout.Node]bool),
	}
}

// TwoWay returns data fields bound through a SwiftUI Binding ($field),
// sorted. They must be declared @State.
func (b *Builder) TwoWay() []string {
	out := make([]string, 0, len(b.twoWay))
	for f := range b.twoWay {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Handlers returns the event handler names referenced, in first-seen order.
func (b *Builder) Handlers() []string {
	return b.handlers
}

// Body renders the roots as the lines of a view body at the given indent
// depth. Several roots are wrapped in a VStack.
func (b *Builder) Body(roots []*layout.Node, depth int) ([]string, error) {
	var kept []*layout.Node
	for _, r := range roots {
		if !b.opts.Skip[r] {
			kept = append(kept, r)
		}
	}
	switch len(kept) {
	case 0:
		return []string{indent(depth) + "EmptyView()"}, nil
	case 1:
		return b.Node(kept[0], depth)
	}
	lines := []string{indent(depth) + "VStack(spacing: 0) {"}
	for _, r := range kept {
		child, err := b.Node(r, depth+1)
		if err != nil {
			return nil, err
		}
		lines = append(lines, child...)
	}
	return append(lines, indent(depth)+"}"), nil
}

// Node renders one node and its subtree.
func (b *Builder) Node(n *layout.Node, depth int) ([]string, error) {
	if expr, ok := b.opts.Includes[n]; ok {
		return []string{indent(depth) + expr}, nil
	}
	if n.String("visibility") == "gone" {
		return []string{indent(depth) + "EmptyView()"}, nil
	}
	lines, err := b.component(n, depth)
	if err != nil {
		return nil, err
	}
	for _, m := range b.modifiers(n) {
		lines = append(lines, indent(depth+1)+m)
	}
	return lines, nil
}

// container renders a node's children in a stack matching its orientation,
// or in a ZStack when they use relative positioning.
func (b *Builder) container(n *layout.Node, depth int) ([]string, error) {
	var children []*layout.Node
	for _, c := range n.Children {
		if !b.opts.Skip[c] {
			children = append(children, c)
		}
	}
	switch {
	case len(children) == 0:
		return []string{indent(depth) + "EmptyView()"}, nil
	case constraints.IsRelative(n):
		return b.relative(n, children, depth)
	case len(children) == 1:
		return b.Node(children[0], depth)
	}
	head := "VStack(alignment: .leading, spacing: 0) {"
	if n.Orientation() == "horizontal" {
		head = "HStack(alignment: .top, spacing: 0) {"
	}
	return b.stack(head, children, depth)
}

func (b *Builder) stack(head string, children []*layout.Node, depth int) ([]string, error) {
	lines := []string{indent(depth) + head}
	for _, c := range children {
		child, err := b.Node(c, depth+1)
		if err != nil {
			return nil, err
		}
		lines = append(lines, child...)
	}
	return append(lines, indent(depth)+"}"), nil
}

func (b *Builder) relative(n *layout.Node, children []*layout.Node, depth int) ([]string, error) {
	size := b.opts.Screen
	if w, ok := mapping.Number(n.Attrs["width"]); ok {
		size.W = w
	}
	if h, ok := mapping.Number(n.Attrs["height"]); ok {
		size.H = h
	}
	items := make([]constraints.Item, len(children))
	for i, c := range children {
		items[i] = constraints.ItemFromNode(c, b.opts.Estimator)
	}
	frames, err := constraints.Solve(size, constraints.Paddings(n), items)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", describe(n), err)
	}

	lines := []string{indent(depth) + "ZStack(alignment: .topLeading) {"}
	for i, c := range children {
		b.positioned[c] = true
		child, err := b.Node(c, depth+1)
		if err != nil {
			return nil, err
		}
		r := frames[constraints.Key(c, i)]
		if items[i].FillW || items[i].FillH {
			child = append(child, fmt.Sprintf("%s.frame(width: %s, height: %s)", indent(depth+2), num(r.W), num(r.H)))
		}
		child = append(child, fmt.Sprintf("%s.offset(x: %s, y: %s)", indent(depth+2), num(r.X), num(r.Y)))
		lines = append(lines, child...)
	}
	return append(lines, indent(depth)+"}"), nil
}

func describe(n *layout.Node) string {
	if n.ID != "" {
		return fmt.Sprintf("%s %q", n.Type, n.ID)
	}
	return n.Type
}

func (b *Builder) handler(name string) string {
	if !b.seen[name] {
		b.seen[name] = true
		b.handlers = append(b.handlers, name)
	}
	return name
}

// value renders an attribute as an expression: bound values pass through,
// strings are quoted.
func value(v any) string {
	if expr, ok := layout.BindingExpr(v); ok {
		return expr
	}
	switch t := v.(type) {
	case string:
		return mapping.SwiftString(t)
	case float64:
		return mapping.FormatNumber(t)
	case bool:
		return fmt.Sprint(t)
	case nil:
		return `""`
	}
	return mapping.SwiftString(fmt.Sprint(v))
}

// binding renders a two-way binding: "$field" for bound values, a
// constant otherwise.
func (b *Builder) binding(v any, zero string) string {
	if expr, ok := layout.BindingExpr(v); ok {
		idents := layout.ExprIdents(expr)
		if len(idents) == 1 && idents[0] == expr {
			b.twoWay[expr] = true
			return "$" + expr
		}
		return ".constant(" + expr + ")"
	}
	if v == nil {
		return ".constant(" + zero + ")"
	}
	return ".constant(" + value(v) + ")"
}

func (b *Builder) color(v any) (string, bool) {
	if expr, ok := layout.BindingExpr(v); ok {
		return expr, true
	}
	return b.opts.Colors.Expr(v, mapping.SwiftUI)
}

func num(f float64) string {
	return mapping.FormatNumber(f)
}

func indent(depth int) string {
	return strings.Repeat(indentUnit, depth)
}
