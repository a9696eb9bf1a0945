package swiftui

import (
	"fmt"
	"strings"

	"github.com/dejo1307/sjui/internal/layout"
	"github.com/dejo1307/sjui/internal/mapping"
)

// component renders the view itself, without the shared modifiers.
func (b *Builder) component(n *layout.Node, depth int) ([]string, error) {
	in := indent(depth)
	one := func(format string, args ...any) ([]string, error) {
		return []string{in + fmt.Sprintf(format, args...)}, nil
	}

	switch n.Type {
	case "View", "SafeAreaView":
		return b.container(n, depth)
	case "Scroll", "ScrollView":
		axis := ".vertical"
		if n.Orientation() == "horizontal" || n.String("horizontalScroll") == "true" {
			axis = ".horizontal"
		}
		inner, err := b.container(n, depth+1)
		if err != nil {
			return nil, err
		}
		lines := append([]string{in + "ScrollView(" + axis + ") {"}, inner...)
		return append(lines, in+"}"), nil
	case "Table":
		return b.stack("List {", n.Children, depth)
	case "Collection":
		columns := "1"
		if c, ok := n.Attrs["columns"]; ok {
			columns = value(c)
		}
		head := fmt.Sprintf("LazyVGrid(columns: Array(repeating: GridItem(.flexible()), count: %s)) {", columns)
		return b.stack(head, n.Children, depth)
	case "Label", "Text":
		return one("Text(%s)", value(n.Attrs["text"]))
	case "IconLabel":
		icon := n.String("icon_on")
		if icon == "" {
			icon = n.String("iconOn")
		}
		return one("Label(%s, image: %s)", value(n.Attrs["text"]), mapping.SwiftString(icon))
	case "Button":
		return b.button(n, depth)
	case "Image", "CircleImage":
		src := n.Attrs["src"]
		if src == nil {
			src = n.Attrs["srcName"]
		}
		return one("Image(%s)", value(src))
	case "NetworkImage":
		return b.networkImage(n, depth)
	case "TextField":
		hint := n.Attrs["hint"]
		if hint == nil {
			hint = n.Attrs["placeholder"]
		}
		if hint == nil {
			hint = ""
		}
		ctor := "TextField"
		if s, _ := mapping.Bool(n.Attrs["secure"]); s || n.String("input") == "password" {
			ctor = "SecureField"
		}
		return one("%s(%s, text: %s)", ctor, value(hint), b.binding(n.Attrs["text"], `""`))
	case "TextView":
		return one("TextEditor(text: %s)", b.binding(n.Attrs["text"], `""`))
	case "Switch", "Check":
		on := n.Attrs["isOn"]
		if on == nil {
			on = n.Attrs["checked"]
		}
		label := n.Attrs["label"]
		if label == nil {
			label = ""
		}
		lines := []string{in + fmt.Sprintf("Toggle(%s, isOn: %s)", value(label), b.binding(on, "false"))}
		if n.Type == "Check" {
			lines = append(lines, indent(depth+1)+".toggleStyle(.button)")
		}
		return lines, nil
	case "Radio":
		checked := value(n.Attrs["checked"])
		if n.Attrs["checked"] == nil {
			checked = "false"
		}
		action := "{}"
		if h, ok := handlerOf(n, "onClick"); ok {
			action = b.handler(h)
		}
		return []string{
			in + fmt.Sprintf("Button(action: %s) {", action),
			indent(depth+1) + fmt.Sprintf(`Label(%s, systemImage: %s ? "largecircle.fill.circle" : "circle")`, value(n.Attrs["text"]), checked),
			in + "}",
		}, nil
	case "Segment", "SelectBox":
		return b.picker(n, depth)
	case "Slider":
		lo, hi := "0", "1"
		if v, ok := n.Attrs["minimum"]; ok {
			lo = value(v)
		}
		if v, ok := n.Attrs["maximum"]; ok {
			hi = value(v)
		}
		return one("Slider(value: %s, in: %s...%s)", b.binding(n.Attrs["value"], "0"), lo, hi)
	case "Progress":
		p := n.Attrs["progress"]
		if p == nil {
			p = n.Attrs["value"]
		}
		if p == nil {
			return one("ProgressView()")
		}
		return one("ProgressView(value: %s)", value(p))
	case "Indicator":
		return one("ProgressView()")
	case "GradientView":
		return b.gradient(n, depth)
	case "Blur":
		return one("Rectangle().fill(.ultraThinMaterial)")
	case "Web":
		return one("WebView(url: URL(string: %s))", value(n.Attrs["url"]))
	}
	if name, ok := b.opts.Custom[n.Type]; ok {
		if len(n.Children) == 0 {
			return one("%s()", name)
		}
		return b.stack(name+" {", n.Children, depth)
	}
	return one("EmptyView()")
}

func (b *Builder) button(n *layout.Node, depth int) ([]string, error) {
	in := indent(depth)
	action := "{}"
	if h, ok := handlerOf(n, "onClick"); ok {
		action = b.handler(h)
	}
	label := fmt.Sprintf("Text(%s)", value(n.Attrs["text"]))
	if img, ok := n.Attrs["image"]; ok && n.Attrs["text"] == nil {
		label = fmt.Sprintf("Image(%s)", value(img))
	}
	lines := []string{in + fmt.Sprintf("Button(action: %s) {", action), indent(depth+1) + label}
	if c, ok := b.color(n.Attrs["fontColor"]); ok {
		lines = append(lines, indent(depth+2)+".foregroundColor("+c+")")
	}
	return append(lines, in+"}"), nil
}

func (b *Builder) networkImage(n *layout.Node, depth int) ([]string, error) {
	in := indent(depth)
	mode := ".fill"
	if m, ok := mapping.ContentModes[n.String("contentMode")]; ok {
		mode = m.SwiftUI
	}
	placeholder := "Color.gray.opacity(0.2)"
	if d := n.String("defaultImage"); d != "" {
		placeholder = fmt.Sprintf("Image(%s)", mapping.SwiftString(d))
	}
	return []string{
		in + fmt.Sprintf("AsyncImage(url: URL(string: %s)) { image in", value(n.Attrs["url"])),
		indent(depth+1) + fmt.Sprintf("image.resizable().aspectRatio(contentMode: %s)", mode),
		in + "} placeholder: {",
		indent(depth+1) + placeholder,
		in + "}",
	}, nil
}

func (b *Builder) picker(n *layout.Node, depth int) ([]string, error) {
	in := indent(depth)
	sel := n.Attrs["selectedIndex"]
	if sel == nil {
		sel = n.Attrs["selectedSegmentIndex"]
	}
	label := ""
	if p := n.String("prompt"); p != "" {
		label = p
	}
	lines := []string{in + fmt.Sprintf("Picker(%s, selection: %s) {", mapping.SwiftString(label), b.binding(sel, "0"))}
	items := n.Attrs["items"]
	if expr, ok := layout.BindingExpr(items); ok {
		lines = append(lines, indent(depth+1)+fmt.Sprintf("ForEach(Array(%s.enumerated()), id: \\.offset) { i, item in", expr))
		lines = append(lines, indent(depth+2)+"Text(item).tag(i)")
		lines = append(lines, indent(depth+1)+"}")
	} else if arr, ok := items.([]any); ok {
		for i, it := range arr {
			lines = append(lines, indent(depth+1)+fmt.Sprintf("Text(%s).tag(%d)", mapping.SwiftString(fmt.Sprint(it)), i))
		}
	}
	lines = append(lines, in+"}")
	if n.Type == "Segment" {
		lines = append(lines, indent(depth+1)+".pickerStyle(.segmented)")
	} else {
		lines = append(lines, indent(depth+1)+".pickerStyle(.menu)")
	}
	return lines, nil
}

func (b *Builder) gradient(n *layout.Node, depth int) ([]string, error) {
	var colors []string
	if arr, ok := n.Attrs["gradient"].([]any); ok {
		for _, c := range arr {
			if expr, ok := b.color(c); ok {
				colors = append(colors, expr)
			}
		}
	}
	start, end := ".top", ".bottom"
	switch n.String("gradientDirection") {
	case "Horizontal":
		start, end = ".leading", ".trailing"
	case "Oblique":
		start, end = ".topLeading", ".bottomTrailing"
	}
	expr := fmt.Sprintf("LinearGradient(colors: [%s], startPoint: %s, endPoint: %s)", strings.Join(colors, ", "), start, end)
	if len(n.Children) == 0 {
		return []string{indent(depth) + expr}, nil
	}
	inner, err := b.container(n, depth)
	if err != nil {
		return nil, err
	}
	return append(inner, indent(depth+1)+".background("+expr+")"), nil
}

// handlerOf returns the handler name of an event attribute.
func handlerOf(n *layout.Node, key string) (string, bool) {
	s := n.String(key)
	if expr, ok := layout.BindingExpr(s); ok {
		s = expr
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}
