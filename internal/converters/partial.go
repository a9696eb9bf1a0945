package converters

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/dejo1307/sjui/internal/layout"
	"github.com/dejo1307/sjui/internal/mapping"
)

// utf16Len returns the length of s in UTF-16 code units, the unit
// NSRange counts in.
func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// Range locates a partial attribute range in text, in UTF-16 units. A
// range is either [start, end] in UTF-16 units or a substring whose first
// occurrence is used.
func Range(text string, spec any) (loc, length int, ok bool) {
	switch t := spec.(type) {
	case []any:
		if len(t) != 2 {
			return 0, 0, false
		}
		start, ok1 := mapping.Number(t[0])
		end, ok2 := mapping.Number(t[1])
		if !ok1 || !ok2 || start < 0 || end < start {
			return 0, 0, false
		}
		if n := utf16Len(text); int(end) > n {
			return 0, 0, false
		}
		return int(start), int(end - start), true
	case string:
		if t == "" {
			return 0, 0, false
		}
		i := strings.Index(text, t)
		if i < 0 {
			return 0, 0, false
		}
		return utf16Len(text[:i]), utf16Len(t), true
	}
	return 0, 0, false
}

// partialAttributes builds an attributed string from the label's text and
// applies per-range attributes to it.
func partialAttributes(ctx *Context, value any) {
	items, ok := value.([]any)
	if !ok {
		return
	}
	rawText := ctx.Node.Attrs["text"]
	textExpr, bound := layout.BindingExpr(rawText)
	fields := ctx.fieldsOf("text")
	text, _ := rawText.(string)
	if !bound {
		textExpr = mapping.SwiftString(text)
	}

	name := ctx.Var + "Attributed"
	var lines []string
	if bound {
		textVar := ctx.Var + "Text"
		lines = append(lines, fmt.Sprintf("let %s: String = %s", textVar, unwrapped(ctx, textExpr, fields)))
		textExpr = textVar
	}
	lines = append(lines, fmt.Sprintf("let %s = NSMutableAttributedString(string: %s)", name, textExpr))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		attrs := "[" + strings.Join(partialAttrs(ctx, m), ", ") + "]"
		if attrs == "[]" {
			continue
		}
		if !bound {
			if loc, length, ok := Range(text, m["range"]); ok {
				lines = append(lines, fmt.Sprintf("%s.addAttributes(%s, range: NSRange(location: %d, length: %d))", name, attrs, loc, length))
			}
			continue
		}
		// Offsets are only known at runtime.
		rng, ok := boundRange(textExpr, m["range"])
		if !ok {
			continue
		}
		r := fmt.Sprintf("%sRange%d", ctx.Var, i)
		lines = append(lines,
			fmt.Sprintf("let %s = %s", r, rng),
			fmt.Sprintf("if %s.location != NSNotFound && NSMaxRange(%s) <= %s.length {", r, r, name),
			fmt.Sprintf("    %s.addAttributes(%s, range: %s)", name, attrs, r),
			"}",
		)
	}
	lines = append(lines, fmt.Sprintf("%s.attributedText = %s", ctx.Var, name))
	ctx.EmitFields(fields, "%s", strings.Join(lines, "\n"))
}

// boundRange renders the Swift range of spec within the runtime text. Literal
// ranges must be non-negative and ordered; whether they fit is checked at
// runtime.
func boundRange(textVar string, spec any) (string, bool) {
	switch t := spec.(type) {
	case string:
		if t == "" {
			return "", false
		}
		return fmt.Sprintf("(%s as NSString).range(of: %s)", textVar, mapping.SwiftString(t)), true
	case []any:
		if len(t) != 2 {
			return "", false
		}
		start, ok1 := mapping.Number(t[0])
		end, ok2 := mapping.Number(t[1])
		if !ok1 || !ok2 || start < 0 || end < start {
			return "", false
		}
		return fmt.Sprintf("NSRange(location: %d, length: %d)", int(start), int(end-start)), true
	}
	return "", false
}

// unwrapped defaults expr to "" when it reads an optional data field.
func unwrapped(ctx *Context, expr string, fields []string) string {
	for _, f := range fields {
		if !ctx.out.Optional[f] {
			continue
		}
		if f != expr {
			expr = "(" + expr + ")"
		}
		return expr + ` ?? ""`
	}
	return expr
}

func partialAttrs(ctx *Context, m map[string]any) []string {
	var out []string
	if v, ok := m["fontColor"]; ok {
		if c, ok := ctx.Colors.Expr(v, mapping.UIKit); ok {
			out = append(out, ".foregroundColor: "+c)
		}
	}
	if v, ok := m["background"]; ok {
		if c, ok := ctx.Colors.Expr(v, mapping.UIKit); ok {
			out = append(out, ".backgroundColor: "+c)
		}
	}
	if f, ok := mapping.FontFromAttrs(m); ok {
		if _, sized := m["fontSize"]; !sized {
			if base, ok := mapping.Number(ctx.Node.Attrs["fontSize"]); ok {
				f.Size = base
			}
		}
		out = append(out, ".font: "+f.Expr(mapping.UIKit))
	}
	if b, _ := mapping.Bool(m["underline"]); b {
		out = append(out, ".underlineStyle: NSUnderlineStyle.single.rawValue")
	}
	if b, _ := mapping.Bool(m["strikethrough"]); b {
		out = append(out, ".strikethroughStyle: NSUnderlineStyle.single.rawValue")
	}
	return out
}
