package swiftui

import (
	"fmt"
	"strings"

	"github.com/dejo1307/sjui/internal/constraints"
	"github.com/dejo1307/sjui/internal/layout"
	"github.com/dejo1307/sjui/internal/mapping"
)

// modifiers returns the modifier chain for a node in application order:
// text styling, padding, frame, background, border, corner radius,
// opacity, visibility, margins, then gestures.
func (b *Builder) modifiers(n *layout.Node) []string {
	var out []string
	add := func(format string, args ...any) {
		out = append(out, fmt.Sprintf(format, args...))
	}

	switch n.Type {
	case "Label", "Text", "IconLabel", "TextField", "TextView":
		if f, ok := mapping.FontFromAttrs(staticAttrs(n)); ok {
			add(".font(%s)", f.Expr(mapping.SwiftUI))
		}
		if c, ok := b.color(n.Attrs["fontColor"]); ok {
			add(".foregroundColor(%s)", c)
		}
		if a, ok := mapping.TextAlignments[n.String("textAlign")]; ok {
			add(".multilineTextAlignment(%s)", a.SwiftUI)
		}
		if v, ok := n.Attrs["lines"]; ok {
			if f, ok := mapping.Number(v); ok && f == 0 {
				add(".lineLimit(nil)")
			} else {
				add(".lineLimit(%s)", value(v))
			}
		}
	case "Image", "CircleImage":
		add(".resizable()")
		if m, ok := mapping.ContentModes[n.String("contentMode")]; ok {
			add(".aspectRatio(contentMode: %s)", m.SwiftUI)
		}
		if n.Type == "CircleImage" {
			add(".clipShape(Circle())")
		}
	case "Switch":
		if c, ok := b.color(n.Attrs["onTintColor"]); ok {
			add(".tint(%s)", c)
		}
	case "Indicator":
		if c, ok := b.color(n.Attrs["color"]); ok {
			add(".tint(%s)", c)
		}
	}

	if !constraints.IsRelative(n) {
		if p := constraints.Paddings(n); p != (constraints.Insets{}) {
			add(".padding(%s)", mapping.FormatInsets(p, mapping.SwiftUI))
		}
	}
	out = append(out, frames(n)...)
	if c, ok := b.color(n.Attrs["background"]); ok {
		add(".background(%s)", c)
	}
	if c, ok := b.color(n.Attrs["borderColor"]); ok {
		radius := "0"
		if r, ok := n.Attrs["cornerRadius"]; ok {
			radius = value(r)
		}
		width := "1"
		if w, ok := n.Attrs["borderWidth"]; ok {
			width = value(w)
		}
		add(".overlay(RoundedRectangle(cornerRadius: %s).stroke(%s, lineWidth: %s))", radius, c, width)
	}
	for _, key := range []string{"cornerRadius", "alpha", "opacity", "clipToBounds", "tag"} {
		v, ok := n.Attrs[key]
		if !ok {
			continue
		}
		mod := mapping.SwiftUIModifiers[key]
		if key == "clipToBounds" {
			if on, _ := mapping.Bool(v); on {
				add(".%s()", mod)
			}
			continue
		}
		add(".%s(%s)", mod, value(v))
	}
	if v, ok := n.Attrs["enabled"]; ok {
		if expr, bound := layout.BindingExpr(v); bound {
			add(".disabled(!(%s))", expr)
		} else if on, ok := mapping.Bool(v); ok && !on {
			add(".disabled(true)")
		}
	}
	b.visibility(n, add)
	if m := constraints.Margins(n); m != (constraints.Insets{}) && !b.positioned[n] {
		add(".padding(%s)", mapping.FormatInsets(m, mapping.SwiftUI))
	}

	if n.Type != "Button" && n.Type != "Radio" {
		if h, ok := handlerOf(n, "onClick"); ok {
			add(".onTapGesture { %s() }", b.handler(h))
		}
	}
	if h, ok := handlerOf(n, "onLongPress"); ok {
		add(".onLongPressGesture { %s() }", b.handler(h))
	}
	if h, ok := handlerOf(n, "onAppear"); ok {
		add(".onAppear { %s() }", b.handler(h))
	}
	if h, ok := handlerOf(n, "onDisappear"); ok {
		add(".onDisappear { %s() }", b.handler(h))
	}
	if h, ok := handlerOf(n, "onSubmit"); ok {
		add(".onSubmit { %s() }", b.handler(h))
	}
	return out
}

func (b *Builder) visibility(n *layout.Node, add func(string, ...any)) {
	if v, ok := n.Attrs["hidden"]; ok {
		if expr, bound := layout.BindingExpr(v); bound {
			add(".opacity(%s ? 0 : 1)", expr)
		} else if h, _ := mapping.Bool(v); h {
			add(".hidden()")
		}
	}
	v := n.String("visibility")
	if expr, bound := layout.BindingExpr(v); bound {
		add(".opacity(%s == .visible ? 1 : 0)", expr)
	} else if v == "invisible" {
		add(".hidden()")
	}
}

// frames renders width and height as frame modifiers. matchParent expands
// to the available space and wrapContent keeps the intrinsic size. Fixed
// and flexible dimensions go in separate calls since SwiftUI has no frame
// overload taking both.
func frames(n *layout.Node) []string {
	var fixed, flexible []string
	for _, d := range []struct{ key, fill string }{
		{"width", "maxWidth"},
		{"height", "maxHeight"},
	} {
		v, ok := n.Attrs[d.key]
		if !ok {
			continue
		}
		switch v {
		case mapping.MatchParent:
			flexible = append(flexible, d.fill+": .infinity")
			continue
		case mapping.WrapContent:
			continue
		}
		if expr, bound := layout.BindingExpr(v); bound {
			fixed = append(fixed, d.key+": CGFloat("+expr+")")
		} else if f, ok := mapping.Number(v); ok {
			fixed = append(fixed, d.key+": "+mapping.FormatNumber(f))
		}
	}
	var out []string
	if len(fixed) > 0 {
		out = append(out, ".frame("+strings.Join(fixed, ", ")+")")
	}
	if len(flexible) > 0 {
		out = append(out, ".frame("+strings.Join(flexible, ", ")+")")
	}
	return out
}

func staticAttrs(n *layout.Node) map[string]any {
	out := make(map[string]any, len(n.Attrs))
	for k, v := range n.Attrs {
		if _, ok := layout.BindingExpr(v); ok {
			continue
		}
		out[k] = v
	}
	return out
}
