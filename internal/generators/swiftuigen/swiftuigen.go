// Package swiftuigen generates SwiftUI view structs from analyzed layouts.
package swiftuigen

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/dejo1307/sjui/internal/analyzer"
	"github.com/dejo1307/sjui/internal/constraints"
	"github.com/dejo1307/sjui/internal/facts"
	"github.com/dejo1307/sjui/internal/generators/binding"
	"github.com/dejo1307/sjui/internal/layout"
	"github.com/dejo1307/sjui/internal/mapping"
	"github.com/dejo1307/sjui/internal/swiftui"
)

// Options configures the SwiftUI generator.
type Options struct {
	Dir     string // output directory relative to the source root
	Imports []string
	// Custom maps app-specific component types to SwiftUI view names.
	Custom map[string]string
	// CustomModules maps custom component types to the module declaring
	// their view.
	CustomModules map[string]string
	Colors        *mapping.ColorResolver
	Screen        constraints.Size
}

// Generator produces one SwiftUI view per layout.
type Generator struct {
	opts Options
}

// New creates a SwiftUI generator.
func New(opts Options) *Generator {
	if opts.Dir == "" {
		opts.Dir = "Views"
	}
	if len(opts.Imports) == 0 {
		opts.Imports = []string{"SwiftUI"}
	}
	return &Generator{opts: opts}
}

func (g *Generator) Name() string {
	return "swiftui"
}

// FileName returns the output path of the view for a layout result.
func (g *Generator) FileName(res *analyzer.Result) string {
	return path.Join(g.opts.Dir, layout.ViewStructName(res.Name)+".swift")
}

func (g *Generator) Generate(_ context.Context, res *analyzer.Result) ([]facts.Artifact, error) {
	src, err := g.Render(res)
	if err != nil {
		return nil, err
	}
	return []facts.Artifact{{
		Name:      g.FileName(res),
		Content:   src,
		Type:      "swiftui",
		Generator: g.Name(),
		Layout:    analyzer.LayoutKey(res.Rel),
	}}, nil
}

// Render produces the view source: data fields become stored properties
// (@State when bound two-way), handlers become closure properties, and the
// layout tree becomes the body. Included fragments with their own binding
// render as their generated view.
func (g *Generator) Render(res *analyzer.Result) ([]byte, error) {
	includes := make(map[*layout.Node]string)
	skip := make(map[*layout.Node]bool)
	for _, pb := range res.PartialBindings {
		if len(pb.Roots) == 0 {
			continue
		}
		includes[pb.Roots[0]] = partialView(pb)
		for _, n := range pb.Roots[1:] {
			skip[n] = true
		}
	}

	b := swiftui.NewBuilder(swiftui.Options{
		Colors:   g.opts.Colors,
		Custom:   g.opts.Custom,
		Includes: includes,
		Skip:     skip,
		Screen:   g.opts.Screen,
	})
	body, err := b.Body(res.Roots, 2)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", res.Rel, err)
	}

	name := layout.ViewStructName(res.Name)
	var sb strings.Builder
	line := func(depth int, format string, args ...any) {
		sb.WriteString(strings.Repeat("    ", depth))
		fmt.Fprintf(&sb, format, args...)
		sb.WriteByte('\n')
	}

	line(0, "//")
	line(0, "//  %s.swift", name)
	line(0, "//  Generated by sjui from %s. Do not edit.", res.Rel)
	line(0, "//")
	sb.WriteByte('\n')
	for _, m := range g.imports(res) {
		line(0, "import %s", m)
	}
	sb.WriteByte('\n')

	line(0, "struct %s: View {", name)
	twoWay := make(map[string]bool)
	for _, f := range b.TwoWay() {
		twoWay[f] = true
	}
	for _, d := range res.DataSets {
		if twoWay[d.Name] {
			line(1, "@State %s", binding.Declaration(d))
			continue
		}
		line(1, "%s", binding.Declaration(d))
	}
	handlers := b.Handlers()
	for _, h := range handlers {
		line(1, "var %s: () -> Void = {}", h)
	}
	if len(res.DataSets)+len(handlers) > 0 {
		sb.WriteByte('\n')
	}

	line(1, "var body: some View {")
	for _, l := range body {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	line(1, "}")
	line(0, "}")
	sb.WriteByte('\n')
	line(0, "#Preview {")
	line(1, "%s()", name)
	line(0, "}")
	return []byte(sb.String()), nil
}

func (g *Generator) imports(res *analyzer.Result) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range g.opts.Imports {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	var extra []string
	for _, root := range res.Roots {
		root.Walk(func(n, _ *layout.Node) bool {
			m := g.opts.CustomModules[n.Type]
			if n.Type == "Web" {
				m = "WebKit"
			}
			if m != "" && !seen[m] {
				seen[m] = true
				extra = append(extra, m)
			}
			return true
		})
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// partialView renders the constructor call of an included fragment's view,
// passing shared data as arguments.
func partialView(pb *analyzer.PartialBinding) string {
	keys := pb.SharedKeys()
	args := make([]string, len(keys))
	for i, k := range keys {
		args[i] = k + ": " + pb.SharedDataBindings[k]
	}
	return fmt.Sprintf("%s(%s)", layout.ViewStructName(layout.BaseName(pb.Include)), strings.Join(args, ", "))
}
