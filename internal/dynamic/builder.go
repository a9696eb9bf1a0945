package dynamic

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dejo1307/sjui/internal/mapping"
)

// View is one node of an interpreted view tree. Kind names the SwiftUI
// view the component stands for.
type View struct {
	Kind     string            `json:"kind"`
	ID       string            `json:"id,omitempty"`
	StateKey string            `json:"state_key,omitempty"`
	Props    map[string]any    `json:"props,omitempty"`
	Events   map[string]string `json:"events,omitempty"`
	Children []*View           `json:"children,omitempty"`
}

// Find returns the first view in the tree with the given id.
func (v *View) Find(id string) *View {
	if v.ID == id {
		return v
	}
	for _, c := range v.Children {
		if f := c.Find(id); f != nil {
			return f
		}
	}
	return nil
}

func (v *View) set(key string, val any) {
	if val == nil {
		return
	}
	if v.Props == nil {
		v.Props = make(map[string]any)
	}
	v.Props[key] = val
}

// ViewBuilder builds the view for one component type.
type ViewBuilder func(b *Builder, c *Component, vm *ViewModel) *View

// Builder interprets components through ViewBuilders registered per type.
type Builder struct {
	mu       sync.RWMutex
	builders map[string]ViewBuilder
	events   *EventRegistry
}

// NewBuilder creates a Builder with the built-in component types.
func NewBuilder(events *EventRegistry) *Builder {
	if events == nil {
		events = NewEventRegistry(nil)
	}
	b := &Builder{builders: make(map[string]ViewBuilder), events: events}
	for typ, vb := range builtins {
		b.builders[typ] = vb
	}
	return b
}

// Register installs vb for a component type, replacing any builder already
// registered for it.
func (b *Builder) Register(typ string, vb ViewBuilder) {
	b.mu.Lock()
	b.builders[typ] = vb
	b.mu.Unlock()
}

// Types returns the registered component types, sorted.
func (b *Builder) Types() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.builders))
	for t := range b.builders {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Events returns the registry events are dispatched through.
func (b *Builder) Events() *EventRegistry {
	return b.events
}

// Build interprets one component. Unknown types build an empty view.
func (b *Builder) Build(c *Component, vm *ViewModel) *View {
	if vis, _ := vm.Resolve(c.Attrs["visibility"]).(string); vis == "gone" {
		return &View{Kind: "EmptyView", ID: c.ID}
	}
	b.mu.RLock()
	vb, ok := b.builders[c.Type]
	b.mu.RUnlock()
	if !ok {
		return &View{Kind: "EmptyView", ID: c.ID}
	}
	v := vb(b, c, vm)
	v.ID = c.ID
	if len(c.Events) > 0 {
		v.Events = c.Events
	}
	common(c, vm, v)
	return v
}

// Children builds a component's children in order.
func (b *Builder) Children(c *Component, vm *ViewModel) []*View {
	out := make([]*View, 0, len(c.Children))
	for _, ch := range c.Children {
		out = append(out, b.Build(ch, vm))
	}
	return out
}

// Render loads a layout, seeds its declared data defaults and builds it.
// Several roots are wrapped in a VStack.
func (b *Builder) Render(l *Loader, name string, vm *ViewModel) (*View, error) {
	roots, err := l.Load(name)
	if err != nil {
		return nil, err
	}
	vm.DropAnonymous()
	for _, r := range roots {
		r.Walk(func(c *Component) { vm.ApplyDefaults(c.Data) })
	}
	switch len(roots) {
	case 0:
		return &View{Kind: "EmptyView"}, nil
	case 1:
		return b.Build(roots[0], vm), nil
	}
	v := &View{Kind: "VStack"}
	for _, r := range roots {
		v.Children = append(v.Children, b.Build(r, vm))
	}
	return v, nil
}

// Trigger dispatches event on the view. Control events carry the view's
// current state as their value.
func (b *Builder) Trigger(ctx context.Context, v *View, event string, vm *ViewModel) error {
	h, ok := v.Events[event]
	if !ok {
		return fmt.Errorf("view %q has no %s handler", v.ID, event)
	}
	ev := Event{Name: event, ViewID: v.ID, Handler: h}
	if v.StateKey != "" {
		ev.Value = vm.State(v.StateKey, v.renderedState())
	}
	return b.events.Dispatch(ctx, ev)
}

// renderedState returns the control value the view was rendered with.
func (v *View) renderedState() any {
	for _, key := range []string{"isOn", "value", "selection", "checked", "text"} {
		if val, ok := v.Props[key]; ok {
			return val
		}
	}
	return nil
}

// common applies attributes every view shares.
func common(c *Component, vm *ViewModel, v *View) {
	for key, hex := range c.Colors {
		v.set(key, hex)
	}
	for _, key := range []string{"width", "height", "cornerRadius", "alpha", "opacity"} {
		raw, ok := c.Attrs[key]
		if !ok {
			continue
		}
		val := vm.Resolve(raw)
		if n, ok := mapping.Number(val); ok {
			v.set(key, n)
			continue
		}
		v.set(key, val)
	}
	if raw, ok := c.Attrs["hidden"]; ok {
		if h, ok := mapping.Bool(vm.Resolve(raw)); ok && h {
			v.set("hidden", true)
		}
	}
	if vis, _ := vm.Resolve(c.Attrs["visibility"]).(string); vis == "invisible" {
		v.set("hidden", true)
	}
}
