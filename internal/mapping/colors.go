package mapping

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGBA color with components in [0, 1]. Name is set for system
// colors so generated code can use the symbolic constant.
type Color struct {
	R, G, B, A float64
	Name       string
}

// Target selects the UI framework a color expression is emitted for.
type Target int

const (
	UIKit Target = iota
	SwiftUI
)

// DefaultPalette is the enumerated palette integer color codes index into
// when the project does not configure its own.
var DefaultPalette = []string{
	"black", "white", "red", "green", "blue", "yellow",
	"orange", "purple", "gray", "lightGray", "darkGray", "clear",
}

var systemColors = map[string]Color{
	"black":     {0, 0, 0, 1, "black"},
	"white":     {1, 1, 1, 1, "white"},
	"red":       {1, 0, 0, 1, "red"},
	"green":     {0, 1, 0, 1, "green"},
	"blue":      {0, 0, 1, 1, "blue"},
	"yellow":    {1, 1, 0, 1, "yellow"},
	"orange":    {1, 0.5, 0, 1, "orange"},
	"purple":    {0.5, 0, 0.5, 1, "purple"},
	"gray":      {0.5, 0.5, 0.5, 1, "gray"},
	"lightGray": {2.0 / 3.0, 2.0 / 3.0, 2.0 / 3.0, 1, "lightGray"},
	"darkGray":  {1.0 / 3.0, 1.0 / 3.0, 1.0 / 3.0, 1, "darkGray"},
	"clear":     {0, 0, 0, 0, "clear"},
}

// ColorOverride lets an app resolve colors itself (theming). Returning
// false defers to the palette and hex rules.
type ColorOverride func(v any) (Color, bool)

// ColorResolver turns JSON color values into colors. Integer codes index the
// palette; strings are hex colors. The override, when set, is consulted
// first for both.
type ColorResolver struct {
	Palette  []string
	Override ColorOverride
}

// NewColorResolver creates a resolver over palette, or DefaultPalette when
// palette is empty.
func NewColorResolver(palette []string) *ColorResolver {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return &ColorResolver{Palette: palette}
}

// Value resolves v to a color.
func (r *ColorResolver) Value(v any) (Color, bool) {
	if r.Override != nil {
		if c, ok := r.Override(v); ok {
			return c, true
		}
	}
	switch t := v.(type) {
	case float64:
		return r.paletteColor(int(t))
	case int:
		return r.paletteColor(t)
	case string:
		return ParseHex(t)
	}
	return Color{}, false
}

func (r *ColorResolver) paletteColor(idx int) (Color, bool) {
	if idx < 0 || idx >= len(r.Palette) {
		return Color{}, false
	}
	entry := r.Palette[idx]
	if c, ok := systemColors[entry]; ok {
		return c, true
	}
	return ParseHex(entry)
}

// Expr resolves v and formats it as a color expression for target.
func (r *ColorResolver) Expr(v any, target Target) (string, bool) {
	c, ok := r.Value(v)
	if !ok {
		return "", false
	}
	return c.Expr(target), true
}

// Expr formats the color for the given framework.
func (c Color) Expr(target Target) string {
	if c.Name != "" {
		if target == SwiftUI {
			switch c.Name {
			case "lightGray", "darkGray":
				return fmt.Sprintf("Color(UIColor.%s)", c.Name)
			}
			return "Color." + c.Name
		}
		return "UIColor." + c.Name
	}
	if target == SwiftUI {
		return fmt.Sprintf("Color(red: %.3f, green: %.3f, blue: %.3f, opacity: %.3f)", c.R, c.G, c.B, c.A)
	}
	return fmt.Sprintf("UIColor(red: %.3f, green: %.3f, blue: %.3f, alpha: %.3f)", c.R, c.G, c.B, c.A)
}

// Hex formats the color as #RRGGBB or #AARRGGBB when not opaque.
func (c Color) Hex() string {
	to := func(f float64) int { return int(f*255 + 0.5) }
	if c.A < 1 {
		return fmt.Sprintf("#%02X%02X%02X%02X", to(c.A), to(c.R), to(c.G), to(c.B))
	}
	return fmt.Sprintf("#%02X%02X%02X", to(c.R), to(c.G), to(c.B))
}

// ParseHex parses #RGB, #RRGGBB and #AARRGGBB (alpha first). The leading
// '#' is optional.
func ParseHex(s string) (Color, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 3:
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	case 6, 8:
	default:
		return Color{}, false
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, false
	}
	c := Color{A: 1}
	if len(s) == 8 {
		c.A = float64((n>>24)&0xFF) / 255
	}
	c.R = float64((n>>16)&0xFF) / 255
	c.G = float64((n>>8)&0xFF) / 255
	c.B = float64(n&0xFF) / 255
	return c, true
}
