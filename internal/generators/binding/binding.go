// Package binding generates UIKit binding classes: one Swift class per
// layout holding weak references to the layout's views, its data
// properties, and the code that applies attributes and data to the views.
package binding

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dejo1307/sjui/internal/analyzer"
	"github.com/dejo1307/sjui/internal/converters"
	"github.com/dejo1307/sjui/internal/facts"
	"github.com/dejo1307/sjui/internal/layout"
	"github.com/dejo1307/sjui/internal/mapping"
)

// Options configures the binding generator.
type Options struct {
	Dir       string   // output directory relative to the source root
	BaseClass string   // superclass of generated bindings
	Imports   []string // modules imported by every binding
	// CustomModules maps custom component types to the module declaring
	// their view class.
	CustomModules map[string]string
	Colors        *mapping.ColorResolver
	Converters    *converters.Registry
}

// Generator produces binding classes.
type Generator struct {
	opts    Options
	factory *converters.Factory
}

// New creates a binding generator.
func New(opts Options) *Generator {
	if opts.BaseClass == "" {
		opts.BaseClass = "Binding"
	}
	if opts.Dir == "" {
		opts.Dir = "Bindings"
	}
	return &Generator{opts: opts, factory: converters.NewFactory(opts.Converters, opts.Colors)}
}

func (g *Generator) Name() string {
	return "binding"
}

// FileName returns the output path of the binding for a layout result.
func (g *Generator) FileName(res *analyzer.Result) string {
	return path.Join(g.opts.Dir, layout.BindingClassName(res.Name)+".swift")
}

// Generate renders the binding class for one layout.
func (g *Generator) Generate(_ context.Context, res *analyzer.Result) ([]facts.Artifact, error) {
	src, err := g.Render(res)
	if err != nil {
		return nil, err
	}
	return []facts.Artifact{{
		Name:      g.FileName(res),
		Content:   src,
		Type:      "binding",
		Generator: g.Name(),
		Layout:    analyzer.LayoutKey(res.Rel),
	}}, nil
}

// HandlerProtocol returns the name of the handler protocol for a binding
// class.
func HandlerProtocol(class string) string {
	return strings.TrimSuffix(class, "Binding") + "Handler"
}

// Render produces the binding source. Sections always appear in the same
// order: header, imports, handler protocol, class with data properties,
// views, partial bindings, initializers, bindView, data setters and
// invalidation methods.
func (g *Generator) Render(res *analyzer.Result) ([]byte, error) {
	class := layout.BindingClassName(res.Name)

	vars := make(map[string]string, len(res.WeakVars))
	for _, v := range res.WeakVars {
		vars[v.ID] = v.Name
	}
	out := converters.NewOutput()
	out.Optional = make(map[string]bool, len(res.DataSets))
	for _, d := range res.DataSets {
		out.Optional[d.Name] = d.IsOptional()
	}
	for _, v := range res.WeakVars {
		n := res.Node(v.ID)
		if n == nil {
			continue
		}
		g.factory.Convert(n, v.Name, vars, out)
	}

	w := &writer{}
	g.header(w, res, class)
	g.imports(w, res, out)

	handlers := res.HandlerNames()
	if len(handlers) > 0 {
		w.line(0, "protocol %s: AnyObject {", HandlerProtocol(class))
		for _, h := range handlers {
			w.line(1, "func %s()", h)
		}
		w.line(0, "}")
		w.blank()
	}

	w.line(0, "class %s: %s {", class, g.opts.BaseClass)
	g.dataSection(w, res)
	g.viewSection(w, res)
	if len(handlers) > 0 {
		w.line(1, "weak var handler: %s?", HandlerProtocol(class))
		w.blank()
	}
	g.initializers(w, res)
	g.bindView(w, res, out)
	g.dataSetters(w, res)
	g.invalidation(w, res, out)
	w.trimBlank()
	w.line(0, "}")
	return []byte(w.String()), nil
}

func (g *Generator) header(w *writer, res *analyzer.Result, class string) {
	w.line(0, "//")
	w.line(0, "//  %s.swift", class)
	w.line(0, "//  Generated by sjui from %s. Do not edit.", res.Rel)
	w.line(0, "//")
	w.blank()
}

func (g *Generator) imports(w *writer, res *analyzer.Result, out *converters.Output) {
	seen := make(map[string]bool)
	var mods []string
	add := func(m string) {
		if m == "" || seen[m] {
			return
		}
		seen[m] = true
		mods = append(mods, m)
	}
	for _, m := range g.opts.Imports {
		add(m)
	}
	var extra []string
	extra = append(extra, out.Imports()...)
	for _, v := range res.WeakVars {
		if m, ok := g.opts.CustomModules[v.Type]; ok {
			extra = append(extra, m)
		}
	}
	sort.Strings(extra)
	for _, m := range extra {
		add(m)
	}
	for _, m := range mods {
		w.line(0, "import %s", m)
	}
	w.blank()
}

// sharedFeeds maps a parent data field to the partial assignments its
// didSet performs.
func sharedFeeds(res *analyzer.Result) map[string][]string {
	fields := make(map[string]bool, len(res.DataSets))
	for _, d := range res.DataSets {
		fields[d.Name] = true
	}
	feeds := make(map[string][]string)
	for _, pb := range res.PartialBindings {
		for _, k := range pb.SharedKeys() {
			expr := pb.SharedDataBindings[k]
			for _, ident := range layout.ExprIdents(expr) {
				if fields[ident] {
					feeds[ident] = append(feeds[ident], fmt.Sprintf("%s?.%s = %s", pb.Name, k, expr))
				}
			}
		}
	}
	return feeds
}

func (g *Generator) dataSection(w *writer, res *analyzer.Result) {
	if len(res.DataSets) == 0 {
		return
	}
	feeds := sharedFeeds(res)
	w.line(1, "// MARK: - Data")
	w.blank()
	for _, d := range res.DataSets {
		decl := Declaration(d)
		lines, ok := feeds[d.Name]
		if !ok {
			w.line(1, "%s", decl)
			continue
		}
		w.line(1, "%s {", decl)
		w.line(2, "didSet {")
		for _, l := range lines {
			w.line(3, "%s", l)
		}
		w.line(2, "}")
		w.line(1, "}")
	}
	w.blank()
}

func (g *Generator) viewSection(w *writer, res *analyzer.Result) {
	if len(res.WeakVarsContent) == 0 {
		return
	}
	w.line(1, "// MARK: - Views")
	w.blank()
	for _, l := range res.WeakVarsContent {
		w.line(1, "%s", l)
	}
	w.blank()
}

func (g *Generator) initializers(w *writer, res *analyzer.Result) {
	partials := func() {
		for _, pb := range res.PartialBindings {
			w.line(2, "%s = %s(viewHolder: viewHolder, bindingId: %s)", pb.Name, pb.Class, mapping.SwiftString(pb.ID))
		}
	}
	w.line(1, "// MARK: - Init")
	w.blank()
	w.line(1, "required init(viewHolder: ViewHolder) {")
	w.line(2, "super.init(viewHolder: viewHolder)")
	partials()
	w.line(1, "}")
	w.blank()
	w.line(1, "required init(viewHolder: ViewHolder, bindingId: String?) {")
	w.line(2, "super.init(viewHolder: viewHolder, bindingId: bindingId)")
	partials()
	w.line(1, "}")
	w.blank()
}

func (g *Generator) bindView(w *writer, res *analyzer.Result, out *converters.Output) {
	w.line(1, "// MARK: - Bind")
	w.blank()
	w.line(1, "override func bindView() {")
	w.line(2, "super.bindView()")
	for _, v := range res.WeakVars {
		w.line(2, "%s = view(withId: %s) as? %s", v.Name, mapping.SwiftString(v.ID), v.Class)
	}

	static := out.Static()
	for _, s := range static {
		w.code(2, s.Code)
	}
	for _, v := range converters.ResetVars(static) {
		w.line(2, "UIViewDisposure.applyConstraint(onView: %s, toConstraintInfo: %s.constraintInfo!)", v, v)
	}

	for _, h := range res.EventHandlers {
		if h.Var == "" {
			continue
		}
		w.line(2, "%s.%s = { [weak self] in self?.handler?.%s() }", h.Var, h.Event, h.Handler)
	}

	for _, pb := range res.PartialBindings {
		w.line(2, "%s.bindView()", pb.Name)
		for _, k := range pb.SharedKeys() {
			w.line(2, "%s.%s = %s", pb.Name, k, pb.SharedDataBindings[k])
		}
	}
	w.line(2, "invalidateAll()")
	w.line(1, "}")
	w.blank()
}

func (g *Generator) dataSetters(w *writer, res *analyzer.Result) {
	w.line(1, "// MARK: - Data setters")
	w.blank()
	if len(res.DataSets) == 0 {
		w.line(1, "lazy var dataSetters: [String: (Any?) -> Void] = [:]")
	} else {
		w.line(1, "lazy var dataSetters: [String: (Any?) -> Void] = [")
		for _, d := range res.DataSets {
			if d.IsOptional() {
				w.line(2, "%s: { [weak self] value in self?.%s = value as? %s },", mapping.SwiftString(d.Name), d.Name, d.Class)
				continue
			}
			w.line(2, "%s: { [weak self] value in", mapping.SwiftString(d.Name))
			w.line(3, "if let value = value as? %s { self?.%s = value }", d.Class, d.Name)
			w.line(2, "},")
		}
		w.line(1, "]")
	}
	w.blank()
	w.line(1, "func setData(_ key: String, _ value: Any?) {")
	w.line(2, "dataSetters[key]?(value)")
	w.line(1, "}")
	w.blank()
	w.line(1, "func setData(_ values: [String: Any?]) {")
	w.line(2, "for (key, value) in values {")
	w.line(3, "setData(key, value)")
	w.line(2, "}")
	w.line(1, "}")
	w.blank()
}

// InvalidateMethod returns the per-field invalidation method name.
func InvalidateMethod(field string) string {
	return "invalidate" + layout.PascalCase(field)
}

func (g *Generator) invalidation(w *writer, res *analyzer.Result, out *converters.Output) {
	var fields []string
	for _, d := range res.DataSets {
		if len(out.ForField(d.Name)) > 0 {
			fields = append(fields, d.Name)
		}
	}

	w.line(1, "// MARK: - Invalidate")
	w.blank()
	w.line(1, "func invalidateAll() {")
	for _, f := range fields {
		w.line(2, "%s()", InvalidateMethod(f))
	}
	for _, pb := range res.PartialBindings {
		w.line(2, "%s.invalidateAll()", pb.Name)
	}
	w.line(1, "}")
	w.blank()

	for _, f := range fields {
		stmts := out.ForField(f)
		w.line(1, "func %s() {", InvalidateMethod(f))
		for _, s := range stmts {
			w.code(2, s.Code)
		}
		for _, v := range converters.ResetVars(stmts) {
			w.line(2, "UIViewDisposure.applyConstraint(onView: %s, toConstraintInfo: %s.constraintInfo!)", v, v)
		}
		w.line(1, "}")
		w.blank()
	}
}

type writer struct {
	strings.Builder
}

func (w *writer) line(depth int, format string, args ...any) {
	w.WriteString(strings.Repeat("    ", depth))
	fmt.Fprintf(w, format, args...)
	w.WriteByte('\n')
}

// code writes a possibly multi-line statement, indenting every line.
func (w *writer) code(depth int, code string) {
	for _, l := range strings.Split(code, "\n") {
		w.line(depth, "%s", l)
	}
}

func (w *writer) blank() {
	w.WriteByte('\n')
}

// trimBlank drops a trailing blank line so the closing brace follows the
// last member directly.
func (w *writer) trimBlank() {
	s := w.String()
	if strings.HasSuffix(s, "\n\n") {
		w.Reset()
		w.WriteString(s[:len(s)-1])
	}
}
