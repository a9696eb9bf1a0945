package binding

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dejo1307/sjui/internal/layout"
	"github.com/dejo1307/sjui/internal/mapping"
)

// FormatDefault renders a data field's default value as a Swift literal.
//
// String defaults are normalized: a bare word, 'single quoted', "double
// quoted" and empty values all become one escaped Swift string literal.
// Bool defaults are lowercased. Other classes are emitted verbatim. Fields
// without a default are optional and render as nil.
func FormatDefault(f layout.DataField) string {
	if !f.HasDefault {
		return "nil"
	}
	switch f.Class {
	case "String":
		return mapping.SwiftString(unquote(fmt.Sprint(stringish(f.DefaultValue))))
	case "Bool":
		switch t := f.DefaultValue.(type) {
		case bool:
			return fmt.Sprint(t)
		case string:
			return strings.ToLower(strings.TrimSpace(t))
		}
	}
	return literal(f.DefaultValue)
}

func stringish(v any) any {
	if n, ok := v.(float64); ok {
		return mapping.FormatNumber(n)
	}
	return v
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// literal renders a decoded JSON value verbatim as Swift source. Strings
// are taken to be Swift expressions already (e.g. "UIColor.red", ".none").
func literal(v any) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case string:
		return t
	case float64:
		return mapping.FormatNumber(t)
	case bool:
		return fmt.Sprint(t)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			if s, ok := e.(string); ok {
				parts[i] = mapping.SwiftString(s)
				continue
			}
			parts[i] = literal(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		if len(t) == 0 {
			return "[:]"
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			val := t[k]
			if s, ok := val.(string); ok {
				parts[i] = mapping.SwiftString(k) + ": " + mapping.SwiftString(s)
				continue
			}
			parts[i] = mapping.SwiftString(k) + ": " + literal(val)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprint(v)
}

// Declaration renders the property declaration of a data field, without
// any observer body.
func Declaration(f layout.DataField) string {
	prefix := "var"
	if f.Modifier != "" {
		prefix = f.Modifier + " var"
	}
	if f.IsOptional() {
		if f.HasDefault {
			return fmt.Sprintf("%s %s: %s? = %s", prefix, f.Name, f.Class, FormatDefault(f))
		}
		return fmt.Sprintf("%s %s: %s?", prefix, f.Name, f.Class)
	}
	return fmt.Sprintf("%s %s: %s = %s", prefix, f.Name, f.Class, FormatDefault(f))
}
