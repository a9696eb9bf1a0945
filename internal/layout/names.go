package layout

import (
	"regexp"
	"strings"
	"unicode"
)

var bindingExprRe = regexp.MustCompile(`^@\{(.+)\}$`)

// BindingExpr returns the expression inside an "@{...}" value.
func BindingExpr(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	m := bindingExprRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

var identRe = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// ExprIdents returns the leading identifiers referenced by a binding
// expression, skipping member accesses and Swift keywords.
func ExprIdents(expr string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, loc := range identRe.FindAllStringIndex(expr, -1) {
		if loc[0] > 0 && expr[loc[0]-1] == '.' {
			continue
		}
		if loc[0] > 0 && expr[loc[0]-1] == '"' {
			continue
		}
		id := expr[loc[0]:loc[1]]
		if swiftKeywords[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

var swiftKeywords = map[string]bool{
	"true": true, "false": true, "nil": true, "self": true, "let": true,
	"var": true, "if": true, "else": true, "as": true, "is": true, "in": true,
	"try": true, "String": true, "Int": true, "Double": true, "CGFloat": true,
	"Bool": true, "Float": true,
}

// CamelCase converts snake_case or kebab-case into lowerCamelCase.
func CamelCase(s string) string {
	words := splitWords(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	for i, w := range words {
		if i == 0 {
			b.WriteString(lowerFirst(w))
			continue
		}
		b.WriteString(upperFirst(w))
	}
	return b.String()
}

// PascalCase converts a name into UpperCamelCase.
func PascalCase(s string) string {
	return upperFirst(CamelCase(s))
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.' || r == '/'
	})
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// BindingClassName returns the generated binding class for a layout name.
func BindingClassName(base string) string {
	return PascalCase(base) + "Binding"
}

// ViewStructName returns the generated SwiftUI view struct for a layout name.
func ViewStructName(base string) string {
	return PascalCase(base) + "View"
}
