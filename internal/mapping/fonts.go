package mapping

import "fmt"

// DefaultFontSize is used when a font is set without a size.
const DefaultFontSize = 14

// Font is the resolved font of a text component.
type Font struct {
	Name   string // custom font name, empty for the system font
	Size   float64
	Weight string // Swift weight case, e.g. ".bold"
}

// FontFromAttrs reads "font", "fontSize" and "fontWeight". The "font"
// attribute may be a weight keyword ("bold") or a custom font name. It
// returns false when none of the keys are present.
func FontFromAttrs(attrs map[string]any) (Font, bool) {
	f := Font{Size: DefaultFontSize}
	found := false
	if v, ok := attrs["fontSize"]; ok {
		if n, ok := Number(v); ok {
			f.Size = n
			found = true
		}
	}
	if v, ok := attrs["font"].(string); ok && v != "" {
		found = true
		if w, ok := FontWeights[v]; ok {
			f.Weight = w
		} else {
			f.Name = v
		}
	}
	if v, ok := attrs["fontWeight"].(string); ok {
		if w, ok := FontWeights[v]; ok {
			f.Weight = w
			found = true
		}
	}
	return f, found
}

// Expr formats the font for target.
func (f Font) Expr(target Target) string {
	size := FormatNumber(f.Size)
	if target == SwiftUI {
		if f.Name != "" {
			return fmt.Sprintf(".custom(%s, size: %s)", SwiftString(f.Name), size)
		}
		if f.Weight != "" {
			return fmt.Sprintf(".system(size: %s, weight: %s)", size, f.Weight)
		}
		return fmt.Sprintf(".system(size: %s)", size)
	}
	if f.Name != "" {
		return fmt.Sprintf("UIFont(name: %s, size: %s) ?? UIFont.systemFont(ofSize: %s)", SwiftString(f.Name), size, size)
	}
	if f.Weight != "" {
		return fmt.Sprintf("UIFont.systemFont(ofSize: %s, weight: %s)", size, f.Weight)
	}
	return fmt.Sprintf("UIFont.systemFont(ofSize: %s)", size)
}

// IsFontKey reports whether key participates in font resolution.
func IsFontKey(key string) bool {
	switch key {
	case "font", "fontSize", "fontWeight":
		return true
	}
	return false
}
