package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#FF0000", Color{R: 1, G: 0, B: 0, A: 1}, true},
		{"00FF00", Color{R: 0, G: 1, B: 0, A: 1}, true},
		{"#F00", Color{R: 1, G: 0, B: 0, A: 1}, true},
		{"#00000000", Color{R: 0, G: 0, B: 0, A: 0}, true},
		{"#GG0000", Color{}, false},
		{"red", Color{}, false},
		{"", Color{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseHex(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestColorResolver(t *testing.T) {
	r := NewColorResolver(nil)

	expr, ok := r.Expr("#FF0000", UIKit)
	require.True(t, ok)
	assert.Equal(t, "UIColor(red: 1.000, green: 0.000, blue: 0.000, alpha: 1.000)", expr)

	expr, ok = r.Expr("#FF0000", SwiftUI)
	require.True(t, ok)
	assert.Equal(t, "Color(red: 1.000, green: 0.000, blue: 0.000, opacity: 1.000)", expr)

	expr, ok = r.Expr(float64(2), UIKit)
	require.True(t, ok)
	assert.Equal(t, "UIColor.red", expr, "integer codes index the palette")

	expr, ok = r.Expr(float64(9), SwiftUI)
	require.True(t, ok)
	assert.Equal(t, "Color(UIColor.lightGray)", expr)

	_, ok = r.Expr(float64(99), UIKit)
	assert.False(t, ok)

	_, ok = r.Expr(true, UIKit)
	assert.False(t, ok)
}

func TestColorResolver_CustomPaletteAndOverride(t *testing.T) {
	r := NewColorResolver([]string{"#112233", "white"})
	c, ok := r.Value(float64(0))
	require.True(t, ok)
	assert.Equal(t, "#112233", c.Hex())

	r.Override = func(v any) (Color, bool) {
		if v == "brand" {
			return Color{R: 0.2, G: 0.4, B: 0.6, A: 1}, true
		}
		if v == float64(1) {
			return Color{A: 1}, true
		}
		return Color{}, false
	}
	c, ok = r.Value("brand")
	require.True(t, ok)
	assert.Equal(t, "#336699", c.Hex())

	c, ok = r.Value(float64(1))
	require.True(t, ok)
	assert.Empty(t, c.Name, "override wins over palette")

	c, ok = r.Value("#FFFFFF")
	require.True(t, ok)
	assert.Equal(t, 1.0, c.R)
}

func TestFontFromAttrs(t *testing.T) {
	f, ok := FontFromAttrs(map[string]any{"fontSize": float64(18), "font": "bold"})
	require.True(t, ok)
	assert.Equal(t, "UIFont.systemFont(ofSize: 18, weight: .bold)", f.Expr(UIKit))
	assert.Equal(t, ".system(size: 18, weight: .bold)", f.Expr(SwiftUI))

	f, ok = FontFromAttrs(map[string]any{"font": "Avenir-Heavy"})
	require.True(t, ok)
	assert.Equal(t, `UIFont(name: "Avenir-Heavy", size: 14) ?? UIFont.systemFont(ofSize: 14)`, f.Expr(UIKit))
	assert.Equal(t, `.custom("Avenir-Heavy", size: 14)`, f.Expr(SwiftUI))

	_, ok = FontFromAttrs(map[string]any{"text": "x"})
	assert.False(t, ok)
}

func TestInsets(t *testing.T) {
	tests := []struct {
		in   any
		want [4]float64
		ok   bool
	}{
		{float64(8), [4]float64{8, 8, 8, 8}, true},
		{[]any{float64(4), float64(8)}, [4]float64{4, 8, 4, 8}, true},
		{[]any{float64(1), float64(2), float64(3), float64(4)}, [4]float64{1, 2, 3, 4}, true},
		{[]any{float64(1), float64(2), float64(3)}, [4]float64{}, false},
		{"wide", [4]float64{}, false},
	}
	for _, tt := range tests {
		got, ok := Insets(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
	assert.Equal(t, "UIEdgeInsets(top: 1, left: 2, bottom: 3, right: 4)", FormatInsets([4]float64{1, 2, 3, 4}, UIKit))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "100", FormatNumber(100))
	assert.Equal(t, "1.5", FormatNumber(1.5))
	assert.Equal(t, "-3", FormatNumber(-3))
}

func TestSwiftString(t *testing.T) {
	assert.Equal(t, `"say \"hi\"\n"`, SwiftString("say \"hi\"\n"))
}

func TestLookupComponent(t *testing.T) {
	c, ok := LookupComponent("Label")
	require.True(t, ok)
	assert.Equal(t, "SJUILabel", c.UIKit)
	assert.Equal(t, "Label", c.Suffix)

	_, ok = LookupComponent("Foo")
	assert.False(t, ok)
	assert.Contains(t, ComponentTypes(), "SelectBox")
}
