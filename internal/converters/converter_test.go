package converters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dejo1307/sjui/internal/layout"
)

func node(t *testing.T, src string) *layout.Node {
	t.Helper()
	nodes, err := layout.Parse([]byte(src), "t.json")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	return nodes[0]
}

func codes(stmts []Statement) []string {
	var out []string
	for _, s := range stmts {
		out = append(out, s.Code)
	}
	return out
}

func convert(t *testing.T, src string) *Output {
	t.Helper()
	n := node(t, src)
	out := NewOutput()
	NewFactory(nil, nil).Convert(n, "v", map[string]string{"anchor": "anchorView"}, out)
	return out
}

func TestRegistry_LookupFallsBackToPlaceholder(t *testing.T) {
	r := Default()
	assert.IsType(t, Label{}, r.Lookup("Label"))
	assert.IsType(t, Label{}, r.Lookup("Text"))
	assert.IsType(t, Image{}, r.Lookup("CircleImage"))
	assert.IsType(t, Placeholder{}, r.Lookup("Fancy"))
	assert.False(t, r.Has("Fancy"))
	assert.Contains(t, r.Types(), "SelectBox")
}

type fancy struct{}

func (fancy) Types() []string { return []string{"Label"} }
func (fancy) HandleSpecific(ctx *Context, key string, value any) bool {
	if key == "text" {
		ctx.Emit("%s.fancyText = %s", ctx.Var, ctx.String(value))
		return true
	}
	return false
}

func TestRegistry_LaterRegistrationWins(t *testing.T) {
	r := Default()
	r.Register(fancy{})
	out := NewOutput()
	NewFactory(r, nil).Convert(node(t, `{"type": "Label", "id": "t", "text": "hi"}`), "v", nil, out)
	assert.Equal(t, []string{`v.fancyText = "hi"`}, codes(out.Statements))
}

func TestConvert_LabelStaticAndBound(t *testing.T) {
	out := convert(t, `{"type": "Label", "id": "title", "text": "@{title}", "fontSize": 18, "fontWeight": "bold", "fontColor": "#FF0000", "lines": 0, "textAlign": "center"}`)

	assert.Equal(t, []string{
		"v.textColor = UIColor(red: 1.000, green: 0.000, blue: 0.000, alpha: 1.000)",
		"v.font = UIFont.systemFont(ofSize: 18, weight: .bold)",
		"v.numberOfLines = 0",
		"v.textAlignment = .center",
	}, codes(out.Static()))

	bound := out.ForField("title")
	require.Len(t, bound, 1)
	assert.Equal(t, "v.text = title", bound[0].Code)
	assert.Equal(t, "text", bound[0].Key)
}

func TestConvert_UnknownAttributeDropped(t *testing.T) {
	out := convert(t, `{"type": "Label", "id": "x", "sparkle": true, "onClick": "onTap"}`)
	assert.Empty(t, out.Statements)
}

func TestConvert_SizeSentinelsResetConstraints(t *testing.T) {
	out := convert(t, `{"type": "View", "id": "box", "width": "matchParent", "height": "wrapContent", "margins": [4, 8]}`)
	assert.Equal(t, []string{
		"v.constraintInfo?.height = UILayoutConstraintInfo.LayoutParams.wrapContent.rawValue",
		"v.constraintInfo?.margins = UIEdgeInsets(top: 4, left: 8, bottom: 4, right: 8)",
		"v.constraintInfo?.width = UILayoutConstraintInfo.LayoutParams.matchParent.rawValue",
	}, codes(out.Statements))
	assert.True(t, out.ResetConstraintViews["v"])
	assert.Equal(t, []string{"v"}, ResetVars(out.Statements))
}

func TestConvert_BoundWidthIsReset(t *testing.T) {
	out := convert(t, `{"type": "View", "id": "bar", "width": "@{barWidth}", "background": "@{barColor}"}`)
	w := out.ForField("barWidth")
	require.Len(t, w, 1)
	assert.Equal(t, "v.constraintInfo?.width = CGFloat(barWidth)", w[0].Code)
	assert.True(t, w[0].Reset)

	bg := out.ForField("barColor")
	require.Len(t, bg, 1)
	assert.Equal(t, "v.backgroundColor = barColor", bg[0].Code)
	assert.False(t, bg[0].Reset)
	assert.Empty(t, ResetVars(bg))
}

func TestConvert_RelativeRules(t *testing.T) {
	out := convert(t, `{"type": "View", "id": "x", "alignBottomOfView": "anchor", "alignLeftOfView": "ghost", "centerInParent": true}`)
	assert.Equal(t, []string{
		"v.constraintInfo?.alignBottomOfView = anchorView",
		"v.constraintInfo?.centerHorizontal = true",
		"v.constraintInfo?.centerVertical = true",
	}, codes(out.Statements))
}

func TestConvert_ButtonAndColors(t *testing.T) {
	out := convert(t, `{"type": "Button", "id": "ok", "text": "OK", "fontColor": 1, "background": "#80000000", "enabled": "@{canSubmit}"}`)
	assert.Equal(t, []string{
		"v.backgroundColor = UIColor(red: 0.000, green: 0.000, blue: 0.000, alpha: 0.502)",
		"v.setTitleColor(UIColor.white, for: .normal)",
		`v.setTitle("OK", for: .normal)`,
	}, codes(out.Static()))
	assert.Equal(t, []string{"v.isEnabled = canSubmit"}, codes(out.ForField("canSubmit")))
}

func TestConvert_Visibility(t *testing.T) {
	out := convert(t, `{"type": "View", "id": "x", "visibility": "gone"}`)
	assert.Equal(t, []string{"v.visibility = .gone"}, codes(out.Statements))

	out = convert(t, `{"type": "View", "id": "x", "visibility": "@{state}"}`)
	assert.Equal(t, []string{"v.visibility = state"}, codes(out.ForField("state")))
}

func TestConvert_PlaceholderAppliesShared(t *testing.T) {
	out := convert(t, `{"type": "MyWidget", "id": "w", "alpha": 0.5, "title": "ignored"}`)
	assert.Equal(t, []string{"v.alpha = 0.5"}, codes(out.Statements))
}

func TestConvert_WebImportsWebKit(t *testing.T) {
	out := convert(t, `{"type": "Web", "id": "w", "url": "https://example.com"}`)
	assert.Contains(t, out.Imports(), "WebKit")
	assert.Equal(t, []string{`if let url = URL(string: "https://example.com") { v.load(URLRequest(url: url)) }`}, codes(out.Statements))
}

func TestRange_UTF16(t *testing.T) {
	loc, length, ok := Range("héllo 😀 world", "world")
	require.True(t, ok)
	// "héllo " is 6 units, the emoji is a surrogate pair, then a space
	assert.Equal(t, 9, loc)
	assert.Equal(t, 5, length)

	loc, length, ok = Range("abcdef", []any{float64(1), float64(3)})
	require.True(t, ok)
	assert.Equal(t, 1, loc)
	assert.Equal(t, 2, length)

	_, _, ok = Range("abc", []any{float64(1), float64(9)})
	assert.False(t, ok)
	_, _, ok = Range("abc", "zzz")
	assert.False(t, ok)
}

func TestConvert_PartialAttributes(t *testing.T) {
	out := convert(t, `{
		"type": "Label", "id": "terms", "text": "Agree to Terms", "fontSize": 12,
		"partialAttributes": [
			{"range": "Terms", "fontColor": "#0000FF", "underline": true},
			{"range": [0, 5], "fontWeight": "bold"},
			{"range": "missing", "fontColor": 1}
		]
	}`)
	got := codes(out.Statements)
	require.Len(t, got, 2, "font and the attributed text block; text itself is not set separately")
	assert.Equal(t, "v.font = UIFont.systemFont(ofSize: 12)", got[0])
	assert.Equal(t, `let vAttributed = NSMutableAttributedString(string: "Agree to Terms")
vAttributed.addAttributes([.foregroundColor: UIColor(red: 0.000, green: 0.000, blue: 1.000, alpha: 1.000), .underlineStyle: NSUnderlineStyle.single.rawValue], range: NSRange(location: 9, length: 5))
vAttributed.addAttributes([.font: UIFont.systemFont(ofSize: 12, weight: .bold)], range: NSRange(location: 0, length: 5))
v.attributedText = vAttributed`, got[1])
}

func TestConvert_PartialAttributesBoundText(t *testing.T) {
	out := convert(t, `{"type": "Label", "id": "t", "text": "@{message}", "partialAttributes": [{"range": "!", "underline": true}]}`)
	stmts := out.ForField("message")
	require.Len(t, stmts, 1)
	assert.Equal(t, `let vText: String = message
let vAttributed = NSMutableAttributedString(string: vText)
let vRange0 = (vText as NSString).range(of: "!")
if vRange0.location != NSNotFound && NSMaxRange(vRange0) <= vAttributed.length {
    vAttributed.addAttributes([.underlineStyle: NSUnderlineStyle.single.rawValue], range: vRange0)
}
v.attributedText = vAttributed`, stmts[0].Code)
	assert.Empty(t, out.Static())
}

func TestConvert_PartialAttributesBoundTextRanges(t *testing.T) {
	n := node(t, `{
		"type": "Label", "id": "t", "text": "@{title}",
		"partialAttributes": [
			{"range": [-3, 500], "underline": true},
			{"range": [4, 2], "underline": true},
			{"range": [0, 4], "underline": true},
			{"range": "", "underline": true}
		]
	}`)
	out := NewOutput()
	out.Optional = map[string]bool{"title": true}
	NewFactory(nil, nil).Convert(n, "v", nil, out)

	stmts := out.ForField("title")
	require.Len(t, stmts, 1)
	code := stmts[0].Code
	assert.Contains(t, code, `let vText: String = title ?? ""`)
	assert.Contains(t, code, "let vRange2 = NSRange(location: 0, length: 4)")
	assert.Contains(t, code, "if vRange2.location != NSNotFound && NSMaxRange(vRange2) <= vAttributed.length {")
	assert.NotContains(t, code, "location: -3")
	assert.NotContains(t, code, "vRange1")
	assert.NotContains(t, code, "vRange3")
}

func TestConvert_PartialAttributesOptionalExpression(t *testing.T) {
	n := node(t, `{"type": "Label", "id": "t", "text": "@{name?.uppercased()}", "partialAttributes": [{"range": "A", "underline": true}]}`)
	out := NewOutput()
	out.Optional = map[string]bool{"name": true}
	NewFactory(nil, nil).Convert(n, "v", nil, out)
	require.Len(t, out.Statements, 1)
	assert.Contains(t, out.Statements[0].Code, `let vText: String = (name?.uppercased()) ?? ""`)
}

func TestConvert_BoundFontSizeKeepsStaticWeight(t *testing.T) {
	out := convert(t, `{"type": "Label", "id": "t", "fontSize": "@{size}", "fontWeight": "bold"}`)
	assert.Equal(t, []string{"v.font = UIFont.systemFont(ofSize: 14, weight: .bold)"}, codes(out.Static()))
	assert.Equal(t, []string{"v.font = v.font.withSize(CGFloat(size))"}, codes(out.ForField("size")))
}
