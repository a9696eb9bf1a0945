package converters

import (
	"fmt"
	"strings"

	"github.com/dejo1307/sjui/internal/constraints"
	"github.com/dejo1307/sjui/internal/mapping"
)

// Shared handles attributes every view type understands: sizing and
// positioning (which write constraint info), appearance, visibility and
// interaction.
type Shared struct{}

// Types returns nil; Shared is the fallback for every type.
func (Shared) Types() []string { return nil }

var constraintEdges = map[string]string{
	"topMargin":     "topMargin",
	"leftMargin":    "leftMargin",
	"bottomMargin":  "bottomMargin",
	"rightMargin":   "rightMargin",
	"paddingTop":    "paddingTop",
	"paddingLeft":   "paddingLeft",
	"paddingBottom": "paddingBottom",
	"paddingRight":  "paddingRight",
	"minWidth":      "minWidth",
	"maxWidth":      "maxWidth",
	"minHeight":     "minHeight",
	"maxHeight":     "maxHeight",
	"weight":        "weight",
	"widthWeight":   "widthWeight",
	"heightWeight":  "heightWeight",
}

// HandleSpecific emits the shared attribute statements.
func (Shared) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "width", "height":
		return sizeConstraint(ctx, key, value)
	case "margins", "paddings", "padding":
		prop := "margins"
		if key != "margins" {
			prop = "paddings"
		}
		if expr, ok := ctx.Insets(value); ok {
			ctx.EmitConstraint("%s.constraintInfo?.%s = %s", ctx.Var, prop, expr)
		}
		return true
	case "visibility":
		return visibility(ctx, value)
	case "hidden":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set("isHidden", b)
		}
		return true
	case "background":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("backgroundColor", c)
		}
		return true
	case "tapBackground", "highlightBackground":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("tapBackgroundColor", c)
		}
		return true
	case "borderColor":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("layer.borderColor", c+".cgColor")
		}
		return true
	case "tintColor":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("tintColor", c)
		}
		return true
	case "cornerRadius", "borderWidth":
		if n, ok := ctx.Number(value); ok {
			ctx.Set(mapping.UIKitProperties[key], n)
		}
		return true
	case "alpha", "opacity":
		if n, ok := ctx.Number(value); ok {
			ctx.Set("alpha", n)
		}
		return true
	case "canTap":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set("canTap", b)
			ctx.Set("isUserInteractionEnabled", b)
		}
		return true
	case "userInteraction", "clipToBounds":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set(mapping.UIKitProperties[key], b)
		}
		return true
	case "tag":
		if n, ok := ctx.Int(value); ok {
			ctx.Set("tag", n)
		}
		return true
	case "accessibilityLabel", "accessibilityIdentifier":
		ctx.Set(key, ctx.String(value))
		return true
	case "gravity":
		return gravity(ctx, value)
	}
	if prop, ok := constraintEdges[key]; ok {
		if n, ok := ctx.Number(value); ok {
			ctx.EmitConstraint("%s.constraintInfo?.%s = %s", ctx.Var, prop, n)
		}
		return true
	}
	if constraints.IsRuleKey(key) {
		return rule(ctx, key, value)
	}
	return false
}

func sizeConstraint(ctx *Context, key string, value any) bool {
	var expr string
	switch {
	case ctx.Bound():
		expr = "CGFloat(" + ctx.Expr() + ")"
	case value == mapping.MatchParent:
		expr = "UILayoutConstraintInfo.LayoutParams.matchParent.rawValue"
	case value == mapping.WrapContent:
		expr = "UILayoutConstraintInfo.LayoutParams.wrapContent.rawValue"
	default:
		n, ok := mapping.Number(value)
		if !ok {
			return true
		}
		expr = mapping.FormatNumber(n)
	}
	ctx.EmitConstraint("%s.constraintInfo?.%s = %s", ctx.Var, key, expr)
	return true
}

func visibility(ctx *Context, value any) bool {
	if ctx.Bound() {
		ctx.Set("visibility", ctx.Expr())
		return true
	}
	s, _ := value.(string)
	if _, ok := mapping.Visibility[s]; ok {
		ctx.Set("visibility", "."+s)
	}
	return true
}

func gravity(ctx *Context, value any) bool {
	var names []string
	switch t := value.(type) {
	case string:
		names = strings.Split(t, "|")
	case []any:
		for _, e := range t {
			names = append(names, fmt.Sprint(e))
		}
	}
	var cases []string
	for _, n := range names {
		if g, ok := mapping.Gravities[strings.TrimSpace(n)]; ok {
			cases = append(cases, g)
		}
	}
	if len(cases) > 0 {
		ctx.EmitConstraint("%s.constraintInfo?.gravities = [%s]", ctx.Var, strings.Join(cases, ", "))
	}
	return true
}

// rule emits relative positioning rules. View references are resolved to
// sibling variables; references to views without a variable are dropped.
func rule(ctx *Context, key string, value any) bool {
	if strings.HasSuffix(key, "View") {
		id, ok := value.(string)
		if !ok {
			return true
		}
		v, ok := ctx.Vars[id]
		if !ok {
			return true
		}
		ctx.EmitConstraint("%s.constraintInfo?.%s = %s", ctx.Var, key, v)
		return true
	}
	if b, ok := ctx.Bool(value); ok {
		if key == "centerInParent" {
			ctx.EmitConstraint("%s.constraintInfo?.centerHorizontal = %s", ctx.Var, b)
			ctx.EmitConstraint("%s.constraintInfo?.centerVertical = %s", ctx.Var, b)
			return true
		}
		ctx.EmitConstraint("%s.constraintInfo?.%s = %s", ctx.Var, key, b)
	}
	return true
}
