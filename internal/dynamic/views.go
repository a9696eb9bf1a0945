package dynamic

import (
	"fmt"

	"github.com/dejo1307/sjui/internal/mapping"
)

var builtins = map[string]ViewBuilder{
	"View":         container,
	"SafeAreaView": container,
	"GradientView": container,
	"Text":         text,
	"Label":        text,
	"IconLabel":    iconLabel,
	"Button":       button,
	"TextField":    textInput("TextField"),
	"TextView":     textInput("TextEditor"),
	"Image":        image,
	"CircleImage":  image,
	"NetworkImage": networkImage,
	"SelectBox":    picker,
	"Segment":      picker,
	"Collection":   collection,
	"Table":        table,
	"Scroll":       scroll,
	"ScrollView":   scroll,
	"Switch":       toggle,
	"Check":        toggle,
	"Radio":        radio,
	"Slider":       slider,
	"Progress":     progress,
	"Indicator":    indicator,
}

func container(b *Builder, c *Component, vm *ViewModel) *View {
	kind := "VStack"
	switch {
	case isRelative(c):
		kind = "ZStack"
	case c.Orientation() == "horizontal":
		kind = "HStack"
	}
	v := &View{Kind: kind, Children: b.Children(c, vm)}
	if c.Type == "GradientView" {
		var colors []string
		if arr, ok := c.Attrs["gradient"].([]any); ok {
			res := mapping.NewColorResolver(nil)
			for _, e := range arr {
				if col, ok := res.Value(e); ok {
					colors = append(colors, col.Hex())
				}
			}
		}
		v.set("gradient", colors)
	}
	return v
}

func isRelative(c *Component) bool {
	for _, ch := range c.Children {
		for key := range ch.Attrs {
			if relativeKeys[key] {
				return true
			}
		}
	}
	return false
}

var relativeKeys = map[string]bool{
	"alignTop": true, "alignBottom": true, "alignLeft": true, "alignRight": true,
	"centerHorizontal": true, "centerVertical": true, "centerInParent": true,
	"alignTopOfView": true, "alignBottomOfView": true, "alignLeftOfView": true, "alignRightOfView": true,
}

func str(vm *ViewModel, v any) any {
	r := vm.Resolve(v)
	switch t := r.(type) {
	case nil:
		return nil
	case string:
		return t
	case float64:
		return mapping.FormatNumber(t)
	}
	return fmt.Sprint(r)
}

func text(b *Builder, c *Component, vm *ViewModel) *View {
	v := &View{Kind: "Text"}
	v.set("text", str(vm, c.Attrs["text"]))
	if f, ok := mapping.FontFromAttrs(c.Attrs); ok {
		v.set("fontSize", f.Size)
		if f.Weight != "" {
			v.set("fontWeight", f.Weight)
		}
		if f.Name != "" {
			v.set("font", f.Name)
		}
	}
	v.set("lines", c.Attrs["lines"])
	v.set("textAlign", c.Attrs["textAlign"])
	return v
}

func iconLabel(b *Builder, c *Component, vm *ViewModel) *View {
	v := text(b, c, vm)
	v.Kind = "Label"
	icon := c.String("icon_on")
	if icon == "" {
		icon = c.String("iconOn")
	}
	if icon != "" {
		v.set("icon", icon)
	}
	return v
}

func button(b *Builder, c *Component, vm *ViewModel) *View {
	v := &View{Kind: "Button"}
	v.set("text", str(vm, c.Attrs["text"]))
	v.set("image", str(vm, c.Attrs["image"]))
	if e, ok := mapping.Bool(vm.Resolve(c.Attrs["enabled"])); ok && !e {
		v.set("disabled", true)
	}
	return v
}

func textInput(kind string) ViewBuilder {
	return func(b *Builder, c *Component, vm *ViewModel) *View {
		key := vm.StateKey(c)
		initial := str(vm, c.Attrs["text"])
		if initial == nil {
			initial = ""
		}
		v := &View{Kind: kind, StateKey: key}
		v.set("text", vm.State(key, initial))
		hint := c.Attrs["hint"]
		if hint == nil {
			hint = c.Attrs["placeholder"]
		}
		v.set("hint", str(vm, hint))
		if s, _ := mapping.Bool(c.Attrs["secure"]); s {
			v.Kind = "SecureField"
		}
		return v
	}
}

func image(b *Builder, c *Component, vm *ViewModel) *View {
	src := c.Attrs["src"]
	if src == nil {
		src = c.Attrs["srcName"]
	}
	v := &View{Kind: "Image"}
	v.set("name", str(vm, src))
	v.set("contentMode", c.Attrs["contentMode"])
	if c.Type == "CircleImage" {
		v.set("clipShape", "circle")
	}
	return v
}

func networkImage(b *Builder, c *Component, vm *ViewModel) *View {
	v := &View{Kind: "AsyncImage"}
	v.set("url", str(vm, c.Attrs["url"]))
	v.set("placeholder", c.Attrs["defaultImage"])
	return v
}

func items(vm *ViewModel, raw any) []string {
	var out []string
	if arr, ok := vm.Resolve(raw).([]any); ok {
		for _, e := range arr {
			out = append(out, fmt.Sprint(e))
		}
	}
	if arr, ok := vm.Resolve(raw).([]string); ok {
		out = append(out, arr...)
	}
	return out
}

func picker(b *Builder, c *Component, vm *ViewModel) *View {
	sel := c.Attrs["selectedIndex"]
	if sel == nil {
		sel = c.Attrs["selectedSegmentIndex"]
	}
	initial := 0
	if n, ok := mapping.Number(vm.Resolve(sel)); ok {
		initial = int(n)
	}
	key := vm.StateKey(c)
	v := &View{Kind: "Picker", StateKey: key}
	v.set("items", items(vm, c.Attrs["items"]))
	v.set("selection", vm.State(key, initial))
	style := "menu"
	if c.Type == "Segment" {
		style = "segmented"
	}
	v.set("style", style)
	return v
}

func collection(b *Builder, c *Component, vm *ViewModel) *View {
	columns := 1
	if n, ok := mapping.Number(vm.Resolve(c.Attrs["columns"])); ok && n > 0 {
		columns = int(n)
	}
	v := &View{Kind: "LazyVGrid", Children: b.Children(c, vm)}
	v.set("columns", columns)
	return v
}

func table(b *Builder, c *Component, vm *ViewModel) *View {
	return &View{Kind: "List", Children: b.Children(c, vm)}
}

func scroll(b *Builder, c *Component, vm *ViewModel) *View {
	axis := "vertical"
	if c.Orientation() == "horizontal" {
		axis = "horizontal"
	}
	inner := container(b, c, vm)
	v := &View{Kind: "ScrollView"}
	v.set("axis", axis)
	if len(inner.Children) == 1 {
		v.Children = inner.Children
	} else {
		v.Children = []*View{inner}
	}
	return v
}

func toggle(b *Builder, c *Component, vm *ViewModel) *View {
	on := c.Attrs["isOn"]
	if on == nil {
		on = c.Attrs["checked"]
	}
	initial, _ := mapping.Bool(vm.Resolve(on))
	key := vm.StateKey(c)
	v := &View{Kind: "Toggle", StateKey: key}
	v.set("isOn", vm.State(key, initial))
	v.set("label", str(vm, c.Attrs["label"]))
	if c.Type == "Check" {
		v.set("style", "button")
	}
	return v
}

func radio(b *Builder, c *Component, vm *ViewModel) *View {
	initial, _ := mapping.Bool(vm.Resolve(c.Attrs["checked"]))
	key := vm.StateKey(c)
	v := &View{Kind: "Radio", StateKey: key}
	v.set("text", str(vm, c.Attrs["text"]))
	v.set("group", c.Attrs["group"])
	v.set("checked", vm.State(key, initial))
	return v
}

func slider(b *Builder, c *Component, vm *ViewModel) *View {
	lo, hi := 0.0, 1.0
	if n, ok := mapping.Number(c.Attrs["minimum"]); ok {
		lo = n
	}
	if n, ok := mapping.Number(c.Attrs["maximum"]); ok {
		hi = n
	}
	initial := lo
	if n, ok := mapping.Number(vm.Resolve(c.Attrs["value"])); ok {
		initial = n
	}
	key := vm.StateKey(c)
	v := &View{Kind: "Slider", StateKey: key}
	v.set("minimum", lo)
	v.set("maximum", hi)
	v.set("value", vm.State(key, initial))
	return v
}

func progress(b *Builder, c *Component, vm *ViewModel) *View {
	p := c.Attrs["progress"]
	if p == nil {
		p = c.Attrs["value"]
	}
	v := &View{Kind: "ProgressView"}
	if n, ok := mapping.Number(vm.Resolve(p)); ok {
		v.set("value", n)
	}
	return v
}

func indicator(b *Builder, c *Component, vm *ViewModel) *View {
	v := &View{Kind: "ProgressView"}
	if a, ok := mapping.Bool(vm.Resolve(c.Attrs["animating"])); ok {
		v.set("animating", a)
	}
	return v
}
