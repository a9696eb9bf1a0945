package converters

import (
	"fmt"
	"strings"

	"github.com/dejo1307/sjui/internal/mapping"
)

// Image converts image views, including the circular variant.
type Image struct{}

func (Image) Types() []string { return []string{"Image", "CircleImage"} }

func (Image) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "src", "srcName":
		if img, ok := ctx.Image(value); ok {
			ctx.Set("image", img)
		}
		return true
	case "highlightSrc":
		if img, ok := ctx.Image(value); ok {
			ctx.Set("highlightedImage", img)
		}
		return true
	case "contentMode":
		return contentMode(ctx, value)
	}
	return false
}

func contentMode(ctx *Context, value any) bool {
	if ctx.Bound() {
		ctx.Set("contentMode", ctx.Expr())
		return true
	}
	s, _ := value.(string)
	if m, ok := mapping.ContentModes[s]; ok {
		ctx.Set("contentMode", m.UIKit)
	}
	return true
}

// NetworkImage converts images loaded from a URL.
type NetworkImage struct{}

func (NetworkImage) Types() []string { return []string{"NetworkImage"} }

func (NetworkImage) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "url":
		ctx.Emit("%s.setImageURL(string: %s)", ctx.Var, ctx.String(value))
		return true
	case "defaultImage", "placeholder":
		if img, ok := ctx.Image(value); ok {
			ctx.Set("defaultImage", img)
		}
		return true
	case "errorImage":
		if img, ok := ctx.Image(value); ok {
			ctx.Set("errorImage", img)
		}
		return true
	case "contentMode":
		return contentMode(ctx, value)
	}
	return false
}

// Switch converts on/off switches.
type Switch struct{}

func (Switch) Types() []string { return []string{"Switch"} }

func (Switch) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "isOn", "checked", "value":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set("isOn", b)
		}
		return true
	case "onTintColor", "tint":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("onTintColor", c)
		}
		return true
	case "thumbTintColor":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("thumbTintColor", c)
		}
		return true
	case "enabled":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set("isEnabled", b)
		}
		return true
	}
	return false
}

// Check converts check boxes.
type Check struct{}

func (Check) Types() []string { return []string{"Check"} }

func (Check) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "checked", "isOn":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set("isChecked", b)
		}
		return true
	case "icon", "onSrc":
		if img, ok := ctx.Image(value); ok {
			ctx.Set("onImage", img)
		}
		return true
	case "offSrc":
		if img, ok := ctx.Image(value); ok {
			ctx.Set("offImage", img)
		}
		return true
	case "label":
		ctx.Set("label", ctx.String(value))
		return true
	}
	return false
}

// Radio converts radio buttons. Buttons sharing a group are mutually
// exclusive at runtime.
type Radio struct{}

func (Radio) Types() []string { return []string{"Radio"} }

func (Radio) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "group":
		ctx.Set("group", ctx.String(value))
		return true
	case "checked":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set("isChecked", b)
		}
		return true
	case "text":
		ctx.Set("text", ctx.String(value))
		return true
	case "icon", "selectedIcon":
		prop := "iconImage"
		if key == "selectedIcon" {
			prop = "selectedIconImage"
		}
		if img, ok := ctx.Image(value); ok {
			ctx.Set(prop, img)
		}
		return true
	}
	return false
}

// Segment converts segmented controls.
type Segment struct{}

func (Segment) Types() []string { return []string{"Segment"} }

func (Segment) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "items":
		if ctx.Bound() {
			ctx.Emit("%s.removeAllSegments()\nfor (i, title) in %s.enumerated() { %s.insertSegment(withTitle: title, at: i, animated: false) }",
				ctx.Var, ctx.Expr(), ctx.Var)
			return true
		}
		arr, ok := value.([]any)
		if !ok {
			return true
		}
		lines := []string{ctx.Var + ".removeAllSegments()"}
		for i, e := range arr {
			lines = append(lines, fmt.Sprintf("%s.insertSegment(withTitle: %s, at: %d, animated: false)",
				ctx.Var, mapping.SwiftString(fmt.Sprint(e)), i))
		}
		ctx.Emit("%s", strings.Join(lines, "\n"))
		return true
	case "selectedIndex", "selectedSegmentIndex":
		if n, ok := ctx.Int(value); ok {
			ctx.Set("selectedSegmentIndex", n)
		}
		return true
	case "selectedTabColor", "selectedSegmentTintColor":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("selectedSegmentTintColor", c)
		}
		return true
	case "normalColor", "selectedColor":
		if c, ok := ctx.Color(value); ok {
			state := ".normal"
			if key == "selectedColor" {
				state = ".selected"
			}
			ctx.Emit("%s.setTitleTextAttributes([.foregroundColor: %s], for: %s)", ctx.Var, c, state)
		}
		return true
	case "enabled":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set("isEnabled", b)
		}
		return true
	}
	return false
}

// Slider converts sliders.
type Slider struct{}

func (Slider) Types() []string { return []string{"Slider"} }

func (Slider) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "value", "minimum", "maximum":
		if f, ok := ctx.Float(value); ok {
			ctx.Set(mapping.UIKitProperties[key], f)
		}
		return true
	case "minimumTrackTintColor", "maximumTrackTintColor", "thumbTintColor":
		if c, ok := ctx.Color(value); ok {
			ctx.Set(key, c)
		}
		return true
	case "continuous":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set("isContinuous", b)
		}
		return true
	}
	return false
}

// Progress converts progress bars.
type Progress struct{}

func (Progress) Types() []string { return []string{"Progress"} }

func (Progress) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "progress", "value":
		if f, ok := ctx.Float(value); ok {
			ctx.Set("progress", f)
		}
		return true
	case "progressTintColor", "trackTintColor":
		if c, ok := ctx.Color(value); ok {
			ctx.Set(key, c)
		}
		return true
	}
	return false
}

// Indicator converts activity indicators.
type Indicator struct{}

func (Indicator) Types() []string { return []string{"Indicator"} }

func (Indicator) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "indicatorStyle", "style":
		styles := map[string]string{"large": ".large", "medium": ".medium", "White": ".white", "WhiteLarge": ".whiteLarge", "Gray": ".gray"}
		if s, ok := ctx.Enum(value, styles); ok {
			ctx.Set("style", s)
		}
		return true
	case "color":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("color", c)
		}
		return true
	case "animating":
		if ctx.Bound() {
			ctx.Emit("if %s { %s.startAnimating() } else { %s.stopAnimating() }", ctx.Expr(), ctx.Var, ctx.Var)
			return true
		}
		if b, ok := mapping.Bool(value); ok {
			if b {
				ctx.Emit("%s.startAnimating()", ctx.Var)
			} else {
				ctx.Emit("%s.stopAnimating()", ctx.Var)
			}
		}
		return true
	case "hidesWhenStopped":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set("hidesWhenStopped", b)
		}
		return true
	}
	return false
}

// SelectBox converts drop-down pickers.
type SelectBox struct{}

func (SelectBox) Types() []string { return []string{"SelectBox"} }

func (SelectBox) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "items":
		if arr, ok := ctx.StringArray(value); ok {
			ctx.Set("items", arr)
		}
		return true
	case "selectedIndex":
		if n, ok := ctx.Int(value); ok {
			ctx.Set("selectedIndex", n)
		}
		return true
	case "prompt", "hint":
		ctx.Set("prompt", ctx.String(value))
		return true
	case "selectItemType":
		types := map[string]string{"Normal": ".normal", "Date": ".date"}
		if t, ok := ctx.Enum(value, types); ok {
			ctx.Set("selectItemType", t)
		}
		return true
	case "datePickerMode":
		modes := map[string]string{"date": ".date", "time": ".time", "dateAndTime": ".dateAndTime"}
		if m, ok := ctx.Enum(value, modes); ok {
			ctx.Set("datePickerMode", m)
		}
		return true
	case "minimumDate", "maximumDate":
		ctx.Emit("%s.%s = %s.dateFormatter.date(from: %s)", ctx.Var, key, ctx.Var, ctx.String(value))
		return true
	case "fontColor":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("textColor", c)
		}
		return true
	case "font", "fontSize", "fontWeight":
		font(ctx, key)
		return true
	}
	return false
}

// Collection converts collection views.
type Collection struct{}

func (Collection) Types() []string { return []string{"Collection"} }

func (Collection) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "cellClasses", "headerClasses", "footerClasses":
		return registerClasses(ctx, key, value)
	case "columnSpacing", "lineSpacing":
		prop := "minimumInteritemSpacing"
		if key == "lineSpacing" {
			prop = "minimumLineSpacing"
		}
		if n, ok := ctx.Number(value); ok {
			ctx.Emit("(%s.collectionViewLayout as? UICollectionViewFlowLayout)?.%s = %s", ctx.Var, prop, n)
		}
		return true
	case "contentInsets", "sectionInset":
		if in, ok := ctx.Insets(value); ok {
			ctx.Emit("(%s.collectionViewLayout as? UICollectionViewFlowLayout)?.sectionInset = %s", ctx.Var, in)
		}
		return true
	case "horizontalScroll":
		if b, ok := mapping.Bool(value); ok && b {
			ctx.Emit("(%s.collectionViewLayout as? UICollectionViewFlowLayout)?.scrollDirection = .horizontal", ctx.Var)
		}
		return true
	case "columns":
		if n, ok := ctx.Int(value); ok {
			ctx.Set("columns", n)
		}
		return true
	case "paging", "bounces", "scrollEnabled":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set(mapping.UIKitProperties[key], b)
		}
		return true
	}
	return false
}

// registerClasses emits cell registrations for the view classes listed in
// value: a class name or an array of class names or {"className": ...}.
func registerClasses(ctx *Context, key string, value any) bool {
	var names []string
	switch t := value.(type) {
	case string:
		names = []string{t}
	case []any:
		for _, e := range t {
			switch c := e.(type) {
			case string:
				names = append(names, c)
			case map[string]any:
				if s, ok := c["className"].(string); ok {
					names = append(names, s)
				}
			}
		}
	}
	for _, n := range names {
		switch key {
		case "cellClasses":
			ctx.Emit("%s.register(%s.self, forCellWithReuseIdentifier: %s)", ctx.Var, n, mapping.SwiftString(n))
		case "headerClasses":
			ctx.Emit("%s.register(%s.self, forSupplementaryViewOfKind: UICollectionView.elementKindSectionHeader, withReuseIdentifier: %s)",
				ctx.Var, n, mapping.SwiftString(n))
		case "footerClasses":
			ctx.Emit("%s.register(%s.self, forSupplementaryViewOfKind: UICollectionView.elementKindSectionFooter, withReuseIdentifier: %s)",
				ctx.Var, n, mapping.SwiftString(n))
		case "tableCellClasses":
			ctx.Emit("%s.register(%s.self, forCellReuseIdentifier: %s)", ctx.Var, n, mapping.SwiftString(n))
		}
	}
	return true
}

// Table converts table views.
type Table struct{}

func (Table) Types() []string { return []string{"Table"} }

func (Table) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "cellClasses":
		return registerClasses(ctx, "tableCellClasses", value)
	case "separatorStyle":
		styles := map[string]string{"None": ".none", "SingleLine": ".singleLine"}
		if s, ok := ctx.Enum(value, styles); ok {
			ctx.Set("separatorStyle", s)
		}
		return true
	case "separatorColor":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("separatorColor", c)
		}
		return true
	case "rowHeight", "estimatedRowHeight":
		if n, ok := ctx.Number(value); ok {
			ctx.Set(key, n)
		}
		return true
	case "setTableFooterView":
		if b, ok := mapping.Bool(value); ok && b {
			ctx.Set("tableFooterView", "UIView()")
		}
		return true
	case "bounces", "scrollEnabled":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set(mapping.UIKitProperties[key], b)
		}
		return true
	}
	return false
}
