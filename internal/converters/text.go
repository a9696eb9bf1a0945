package converters

import (
	"github.com/dejo1307/sjui/internal/mapping"
)

// font emits the font for a text view once per node. Bound font keys
// adjust the current font instead of replacing it.
func font(ctx *Context, key string) {
	if ctx.Bound() {
		switch key {
		case "fontSize":
			ctx.Emit("%s.font = %s.font.withSize(CGFloat(%s))", ctx.Var, ctx.Var, ctx.Expr())
		case "font":
			ctx.Emit("%s.font = UIFont(name: %s, size: %s.font.pointSize) ?? %s.font", ctx.Var, ctx.Expr(), ctx.Var, ctx.Var)
		}
		return
	}
	if !ctx.Once("font") {
		return
	}
	if f, ok := mapping.FontFromAttrs(ctx.staticAttrs()); ok {
		ctx.Set("font", f.Expr(mapping.UIKit))
	}
}

func textAlign(ctx *Context, value any) {
	if ctx.Bound() {
		ctx.Set("textAlignment", ctx.Expr())
		return
	}
	s, _ := value.(string)
	if a, ok := mapping.TextAlignments[s]; ok {
		ctx.Set("textAlignment", a.UIKit)
	}
}

// Label converts labels.
type Label struct{}

func (Label) Types() []string { return []string{"Label", "Text"} }

func (Label) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "text":
		if _, ok := ctx.Node.Attrs["partialAttributes"]; ok {
			// Applied through the attributed string.
			return true
		}
		ctx.Set("text", ctx.String(value))
		return true
	case "partialAttributes":
		partialAttributes(ctx, value)
		return true
	case "font", "fontSize", "fontWeight":
		font(ctx, key)
		return true
	case "fontColor":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("textColor", c)
		}
		return true
	case "highlightColor":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("highlightedTextColor", c)
		}
		return true
	case "textAlign":
		textAlign(ctx, value)
		return true
	case "lines":
		if n, ok := ctx.Int(value); ok {
			ctx.Set("numberOfLines", n)
		}
		return true
	case "lineBreakMode":
		modes := map[string]string{
			"Char":   ".byCharWrapping",
			"Clip":   ".byClipping",
			"Word":   ".byWordWrapping",
			"Head":   ".byTruncatingHead",
			"Middle": ".byTruncatingMiddle",
			"Tail":   ".byTruncatingTail",
		}
		if m, ok := ctx.Enum(value, modes); ok {
			ctx.Set("lineBreakMode", m)
		}
		return true
	case "autoShrink":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set("adjustsFontSizeToFitWidth", b)
		}
		return true
	case "minimumScaleFactor", "lineHeightMultiple":
		if n, ok := ctx.Number(value); ok {
			ctx.Set(key, n)
		}
		return true
	case "edgeInset":
		if in, ok := ctx.Insets(value); ok {
			ctx.Set("padding", in)
		}
		return true
	case "linkable":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set("linkable", b)
		}
		return true
	}
	return false
}

// IconLabel converts labels with a leading icon.
type IconLabel struct{}

func (IconLabel) Types() []string { return []string{"IconLabel"} }

func (IconLabel) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "text":
		ctx.Set("label.text", ctx.String(value))
		return true
	case "font", "fontSize", "fontWeight":
		if ctx.Bound() || !ctx.Once("font") {
			return true
		}
		if f, ok := mapping.FontFromAttrs(ctx.staticAttrs()); ok {
			ctx.Set("label.font", f.Expr(mapping.UIKit))
		}
		return true
	case "fontColor":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("label.textColor", c)
		}
		return true
	case "selectedFontColor":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("selectedFontColor", c)
		}
		return true
	case "icon_on", "iconOn":
		if img, ok := ctx.Image(value); ok {
			ctx.Set("iconOn", img)
		}
		return true
	case "icon_off", "iconOff":
		if img, ok := ctx.Image(value); ok {
			ctx.Set("iconOff", img)
		}
		return true
	case "iconPosition":
		positions := map[string]string{"Top": ".top", "Left": ".left", "Right": ".right", "Bottom": ".bottom"}
		if p, ok := ctx.Enum(value, positions); ok {
			ctx.EmitConstraint("%s.iconPosition = %s", ctx.Var, p)
		}
		return true
	case "iconMargin":
		if n, ok := ctx.Number(value); ok {
			ctx.EmitConstraint("%s.iconMargin = %s", ctx.Var, n)
		}
		return true
	case "selected":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set("isSelected", b)
		}
		return true
	}
	return false
}

// Button converts buttons.
type Button struct{}

func (Button) Types() []string { return []string{"Button"} }

func (Button) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "text":
		ctx.Emit("%s.setTitle(%s, for: .normal)", ctx.Var, ctx.String(value))
		return true
	case "fontColor":
		if c, ok := ctx.Color(value); ok {
			ctx.Emit("%s.setTitleColor(%s, for: .normal)", ctx.Var, c)
		}
		return true
	case "disabledFontColor":
		if c, ok := ctx.Color(value); ok {
			ctx.Emit("%s.setTitleColor(%s, for: .disabled)", ctx.Var, c)
		}
		return true
	case "hilightColor", "highlightColor":
		if c, ok := ctx.Color(value); ok {
			ctx.Emit("%s.setTitleColor(%s, for: .highlighted)", ctx.Var, c)
		}
		return true
	case "image":
		if img, ok := ctx.Image(value); ok {
			ctx.Emit("%s.setImage(%s, for: .normal)", ctx.Var, img)
		}
		return true
	case "font", "fontSize", "fontWeight":
		if ctx.Bound() || !ctx.Once("font") {
			return true
		}
		if f, ok := mapping.FontFromAttrs(ctx.staticAttrs()); ok {
			ctx.Set("titleLabel?.font", f.Expr(mapping.UIKit))
		}
		return true
	case "enabled":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set("isEnabled", b)
		}
		return true
	case "disabledBackground":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("disabledBackgroundColor", c)
		}
		return true
	case "defaultBackground":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("defaultBackgroundColor", c)
		}
		return true
	}
	return false
}

// TextField converts single-line text inputs.
type TextField struct{}

func (TextField) Types() []string { return []string{"TextField"} }

func (TextField) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "text":
		ctx.Set("text", ctx.String(value))
		return true
	case "hint", "placeholder":
		ctx.Set("placeholder", ctx.String(value))
		return true
	case "hintColor":
		if c, ok := ctx.Color(value); ok && !ctx.Bound() {
			ph := ctx.Node.String("hint")
			if ph == "" {
				ph = ctx.Node.String("placeholder")
			}
			ctx.Emit("%s.attributedPlaceholder = NSAttributedString(string: %s, attributes: [.foregroundColor: %s])",
				ctx.Var, mapping.SwiftString(ph), c)
		}
		return true
	case "font", "fontSize", "fontWeight":
		font(ctx, key)
		return true
	case "fontColor":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("textColor", c)
		}
		return true
	case "textAlign":
		textAlign(ctx, value)
		return true
	case "input":
		if k, ok := ctx.Enum(value, mapping.KeyboardTypes); ok {
			ctx.Set("keyboardType", k)
		}
		if s, _ := value.(string); s == "password" {
			ctx.Set("isSecureTextEntry", "true")
		}
		return true
	case "secure":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set("isSecureTextEntry", b)
		}
		return true
	case "returnKeyType":
		if r, ok := ctx.Enum(value, mapping.ReturnKeyTypes); ok {
			ctx.Set("returnKeyType", r)
		}
		return true
	case "contentType":
		types := map[string]string{
			"username":    ".username",
			"password":    ".password",
			"newPassword": ".newPassword",
			"email":       ".emailAddress",
			"oneTimeCode": ".oneTimeCode",
			"name":        ".name",
			"tel":         ".telephoneNumber",
		}
		if t, ok := ctx.Enum(value, types); ok {
			ctx.Set("textContentType", t)
		}
		return true
	case "borderStyle":
		styles := map[string]string{"RoundedRect": ".roundedRect", "Line": ".line", "Bezel": ".bezel", "None": ".none"}
		if s, ok := ctx.Enum(value, styles); ok {
			ctx.Set("borderStyle", s)
		}
		return true
	case "textPaddingLeft", "fieldPadding":
		if n, ok := ctx.Number(value); ok {
			ctx.Set("textPaddingLeft", n)
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

// TextView converts multi-line text inputs.
type TextView struct{}

func (TextView) Types() []string { return []string{"TextView"} }

func (TextView) HandleSpecific(ctx *Context, key string, value any) bool {
	switch key {
	case "text":
		ctx.Set("text", ctx.String(value))
		return true
	case "hint", "placeholder":
		ctx.Set("placeholder", ctx.String(value))
		return true
	case "hintColor":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("placeholderColor", c)
		}
		return true
	case "font", "fontSize", "fontWeight":
		font(ctx, key)
		return true
	case "fontColor":
		if c, ok := ctx.Color(value); ok {
			ctx.Set("textColor", c)
		}
		return true
	case "textAlign":
		textAlign(ctx, value)
		return true
	case "editable", "selectable", "scrollEnabled":
		if b, ok := ctx.Bool(value); ok {
			ctx.Set(mapping.UIKitProperties[key], b)
		}
		return true
	case "containerInset":
		if in, ok := ctx.Insets(value); ok {
			ctx.Set("textContainerInset", in)
		}
		return true
	case "flexible":
		if b, ok := ctx.Bool(value); ok {
			ctx.EmitConstraint("%s.isFlexible = %s", ctx.Var, b)
		}
		return true
	}
	return false
}
