package converters

import (
	"strings"

	"github.com/dejo1307/sjui/internal/mapping"
)

// View converts container views.
type View struct{}

func (View) Types() []string { return []string{"View", "SafeAreaView"} }

func (View) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "direction":
		// Stack direction for the runtime's linear layout.
		s, _ := value.(string)
		switch s {
		case "topToBottom", "bottomToTop", "leftToRight", "rightToLeft":
			ctx.EmitConstraint("%s.direction = .%s", ctx.Var, s)
		}
		return true
	case "safeAreaInsetPositions":
		if arr, ok := ctx.StringArray(value); ok {
			ctx.Set("safeAreaInsetPositions", arr)
		}
		return true
	case "highlighted":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set("isHighlighted", b)
		}
		return true
	}
	return false
}

// GradientView converts gradient backgrounds.
type GradientView struct{}

func (GradientView) Types() []string { return []string{"GradientView"} }

func (GradientView) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "gradient":
		if ctx.Bound() {
			ctx.Set("gradientColors", ctx.Expr())
			return true
		}
		arr, ok := value.([]any)
		if !ok {
			return true
		}
		var colors []string
		for _, e := range arr {
			if c, ok := ctx.Colors.Expr(e, mapping.UIKit); ok {
				colors = append(colors, c+".cgColor")
			}
		}
		ctx.Set("gradientLayer.colors", "["+strings.Join(colors, ", ")+"]")
		return true
	case "gradientDirection":
		s, _ := value.(string)
		points := map[string][2]string{
			"Vertical":   {"CGPoint(x: 0.5, y: 0)", "CGPoint(x: 0.5, y: 1)"},
			"Horizontal": {"CGPoint(x: 0, y: 0.5)", "CGPoint(x: 1, y: 0.5)"},
			"Oblique":    {"CGPoint(x: 0, y: 0)", "CGPoint(x: 1, y: 1)"},
		}
		if p, ok := points[s]; ok {
			ctx.Set("gradientLayer.startPoint", p[0])
			ctx.Set("gradientLayer.endPoint", p[1])
		}
		return true
	case "locations":
		arr, ok := value.([]any)
		if !ok {
			return true
		}
		var locs []string
		for _, e := range arr {
			if f, ok := mapping.Number(e); ok {
				locs = append(locs, mapping.FormatNumber(f))
			}
		}
		ctx.Set("gradientLayer.locations", "["+strings.Join(locs, ", ")+"]")
		return true
	}
	return false
}

// Blur converts visual effect views.
type Blur struct{}

func (Blur) Types() []string { return []string{"Blur"} }

func (Blur) HandleSpecific(ctx *Context, key string, value any) bool {
	if key != "effectStyle" {
		return false
	}
	styles := map[string]string{
		"Light":      ".light",
		"Dark":       ".dark",
		"ExtraLight": ".extraLight",
		"Regular":    ".regular",
		"Prominent":  ".prominent",
	}
	if s, ok := ctx.Enum(value, styles); ok {
		ctx.Set("effect", "UIBlurEffect(style: "+s+")")
	}
	return true
}

// Scroll converts scroll views.
type Scroll struct{}

func (Scroll) Types() []string { return []string{"Scroll", "ScrollView"} }

func (Scroll) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "paging", "bounces", "scrollEnabled":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set(mapping.UIKitProperties[key], b)
		}
		return true
	case "showsHorizontalScrollIndicator", "showsVerticalScrollIndicator":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set(key, b)
		}
		return true
	case "contentInsets":
		if in, ok := ctx.Insets(value); ok {
			ctx.Set("contentInset", in)
		}
		return true
	case "maxZoom", "minZoom":
		prop := "maximumZoomScale"
		if key == "minZoom" {
			prop = "minimumZoomScale"
		}
		if n, ok := ctx.Number(value); ok {
			ctx.Set(prop, n)
		}
		return true
	}
	return false
}

// Web converts web views.
type Web struct{}

func (Web) Types() []string { return []string{"Web"} }

func (Web) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "url":
		u := ctx.String(value)
		ctx.Emit("if let url = URL(string: %s) { %s.load(URLRequest(url: url)) }", u, ctx.Var)
		return true
	case "html":
		ctx.Emit("%s.loadHTMLString(%s, baseURL: nil)", ctx.Var, ctx.String(value))
		return true
	case "allowsBackForwardNavigationGestures":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set(key, b)
		}
		return true
	}
	return false
}
