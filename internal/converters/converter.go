// Package converters emits the UIKit statements a binding class uses to
// apply layout attributes to its views.
//
// Each component type has a Converter that recognizes the attributes
// specific to it. Attributes a converter does not recognize fall through to
// the shared handler (size, margins, background, visibility, ...), and
// anything neither recognizes is dropped so that layouts may carry
// attributes newer than the generator.
package converters

import (
	"sort"

	"github.com/dejo1307/sjui/internal/layout"
	"github.com/dejo1307/sjui/internal/mapping"
)

// Converter handles the attributes specific to one or more component types.
type Converter interface {
	// Types returns the component types the converter is registered for.
	Types() []string
	// HandleSpecific emits statements for one attribute and reports whether
	// it recognized the key.
	HandleSpecific(ctx *Context, key string, value any) bool
}

// Registry maps component types to converters.
type Registry struct {
	converters []Converter
	byType     map[string]Converter
}

// NewRegistry creates an empty converter registry.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[string]Converter)}
}

// Register adds a converter. A later registration for the same type
// replaces the earlier one.
func (r *Registry) Register(c Converter) {
	r.converters = append(r.converters, c)
	for _, t := range c.Types() {
		r.byType[t] = c
	}
}

// Lookup returns the converter for a type, or the placeholder converter for
// unknown types.
func (r *Registry) Lookup(typ string) Converter {
	if c, ok := r.byType[typ]; ok {
		return c
	}
	return Placeholder{}
}

// Has reports whether a converter is registered for typ.
func (r *Registry) Has(typ string) bool {
	_, ok := r.byType[typ]
	return ok
}

// Types returns all registered component types, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.byType))
	for t := range r.byType {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// All returns all registered converters in registration order.
func (r *Registry) All() []Converter {
	return r.converters
}

// Default returns a registry holding the built-in converters.
func Default() *Registry {
	r := NewRegistry()
	for _, c := range []Converter{
		View{}, GradientView{}, Blur{}, Scroll{}, Web{},
		Label{}, IconLabel{}, Button{}, TextField{}, TextView{},
		Image{}, NetworkImage{},
		Switch{}, Check{}, Radio{}, Segment{}, Slider{}, Progress{}, Indicator{}, SelectBox{},
		Collection{}, Table{},
	} {
		r.Register(c)
	}
	return r
}

// Placeholder converts component types no converter is registered for. It
// recognizes nothing itself, so only shared attributes are applied.
type Placeholder struct{}

// Types returns nil; the placeholder is never looked up by type.
func (Placeholder) Types() []string { return nil }

// HandleSpecific always reports the key as unhandled.
func (Placeholder) HandleSpecific(*Context, string, any) bool { return false }

// Factory converts nodes using a registry, the shared handler and a color
// resolver.
type Factory struct {
	registry *Registry
	shared   Converter
	colors   *mapping.ColorResolver
}

// NewFactory creates a Factory. A nil registry means Default(); a nil
// resolver means the default palette.
func NewFactory(reg *Registry, colors *mapping.ColorResolver) *Factory {
	if reg == nil {
		reg = Default()
	}
	if colors == nil {
		colors = mapping.NewColorResolver(nil)
	}
	return &Factory{registry: reg, shared: Shared{}, colors: colors}
}

// Registry returns the factory's converter registry.
func (f *Factory) Registry() *Registry {
	return f.registry
}

// Convert emits statements for every attribute of n, applied to the Swift
// variable varName. vars maps layout ids to variable names so relative
// positioning rules can refer to siblings.
func (f *Factory) Convert(n *layout.Node, varName string, vars map[string]string, out *Output) {
	conv := f.registry.Lookup(n.Type)
	ctx := &Context{
		Var:    varName,
		Node:   n,
		Colors: f.colors,
		Vars:   vars,
		out:    out,
		done:   make(map[string]bool),
	}
	if c, ok := mapping.LookupComponent(n.Type); ok && c.Module != "" {
		out.addImport(c.Module)
	}
	for _, key := range n.Keys() {
		if skipKey(key) {
			continue
		}
		v := n.Attrs[key]
		ctx.set(key, v)
		if conv.HandleSpecific(ctx, key, v) {
			continue
		}
		f.shared.HandleSpecific(ctx, key, v)
	}
}

// skipKey filters attributes that are not view properties: event handlers
// are wired by the binding generator, "orientation" is consumed by the
// runtime layout.
func skipKey(key string) bool {
	if mapping.IsEventKey(key) {
		return true
	}
	switch key {
	case "orientation", "propertyName", "binding_id":
		return true
	}
	return false
}
