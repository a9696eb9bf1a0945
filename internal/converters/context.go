package converters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dejo1307/sjui/internal/layout"
	"github.com/dejo1307/sjui/internal/mapping"
)

// Statement is one emitted line (or block) of Swift.
type Statement struct {
	Var  string // view variable the statement applies to
	Key  string // attribute that produced it
	Code string
	// Fields lists the data properties the statement reads. Statements
	// with no fields are static and belong in bindView.
	Fields []string
	// Reset marks statements that change constraint info, so the view's
	// constraints must be reapplied afterwards.
	Reset bool
}

// Static reports whether the statement reads no data.
func (s Statement) Static() bool {
	return len(s.Fields) == 0
}

// Output collects the statements for one binding class.
type Output struct {
	Statements []Statement
	// ResetConstraintViews holds the variables whose constraint info was
	// changed.
	ResetConstraintViews map[string]bool
	// Optional holds the data fields generated as optional properties.
	// Set it before converting.
	Optional map[string]bool
	imports  map[string]bool
}

// NewOutput creates an empty Output.
func NewOutput() *Output {
	return &Output{ResetConstraintViews: make(map[string]bool), imports: make(map[string]bool)}
}

func (o *Output) addImport(module string) {
	if o.imports == nil {
		o.imports = make(map[string]bool)
	}
	o.imports[module] = true
}

// Imports returns the modules referenced by converted views, sorted.
func (o *Output) Imports() []string {
	out := make([]string, 0, len(o.imports))
	for m := range o.imports {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Static returns statements that read no data, in emission order.
func (o *Output) Static() []Statement {
	var out []Statement
	for _, s := range o.Statements {
		if s.Static() {
			out = append(out, s)
		}
	}
	return out
}

// ForField returns the statements that read field, in emission order.
func (o *Output) ForField(field string) []Statement {
	var out []Statement
	for _, s := range o.Statements {
		for _, f := range s.Fields {
			if f == field {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

// ResetVars returns the variables in stmts whose constraints changed,
// deduplicated in first-seen order.
func ResetVars(stmts []Statement) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range stmts {
		if s.Reset && !seen[s.Var] {
			seen[s.Var] = true
			out = append(out, s.Var)
		}
	}
	return out
}

// Context is passed to converters for each attribute of a node.
type Context struct {
	Var    string
	Node   *layout.Node
	Colors *mapping.ColorResolver
	Vars   map[string]string // layout id -> variable name

	key    string
	expr   string
	fields []string
	done   map[string]bool
	out    *Output
}

func (c *Context) set(key string, v any) {
	c.key = key
	c.expr = ""
	c.fields = nil
	if expr, ok := layout.BindingExpr(v); ok {
		c.expr = expr
		c.fields = layout.ExprIdents(expr)
	}
}

// Bound reports whether the current attribute is a binding expression.
func (c *Context) Bound() bool {
	return c.expr != ""
}

// Expr returns the current binding expression.
func (c *Context) Expr() string {
	return c.expr
}

// Once reports whether group has not been handled yet for this node and
// marks it handled. Converters use it for attributes that are read
// together, like the font keys.
func (c *Context) Once(group string) bool {
	if c.done[group] {
		return false
	}
	c.done[group] = true
	return true
}

// Emit appends a statement for the current attribute.
func (c *Context) Emit(format string, args ...any) {
	c.emit(false, c.fields, fmt.Sprintf(format, args...))
}

// EmitFields appends a statement reading the given fields, for
// attributes whose output depends on other attributes.
func (c *Context) EmitFields(fields []string, format string, args ...any) {
	c.emit(false, fields, fmt.Sprintf(format, args...))
}

// EmitConstraint appends a statement that changes constraint info and
// marks the view for constraint reset.
func (c *Context) EmitConstraint(format string, args ...any) {
	c.emit(true, c.fields, fmt.Sprintf(format, args...))
	if c.out.ResetConstraintViews == nil {
		c.out.ResetConstraintViews = make(map[string]bool)
	}
	c.out.ResetConstraintViews[c.Var] = true
}

func (c *Context) emit(reset bool, fields []string, code string) {
	c.out.Statements = append(c.out.Statements, Statement{
		Var:    c.Var,
		Key:    c.key,
		Code:   code,
		Fields: fields,
		Reset:  reset,
	})
}

// Set emits "var.prop = value".
func (c *Context) Set(prop, value string) {
	c.Emit("%s.%s = %s", c.Var, prop, value)
}

// String renders v as a Swift string expression.
func (c *Context) String(v any) string {
	if c.Bound() {
		return c.expr
	}
	switch t := v.(type) {
	case string:
		return mapping.SwiftString(t)
	case float64:
		return mapping.SwiftString(mapping.FormatNumber(t))
	}
	return mapping.SwiftString(fmt.Sprint(v))
}

// Number renders v as a CGFloat expression.
func (c *Context) Number(v any) (string, bool) {
	if c.Bound() {
		return "CGFloat(" + c.expr + ")", true
	}
	f, ok := mapping.Number(v)
	if !ok {
		return "", false
	}
	return mapping.FormatNumber(f), true
}

// Int renders v as an Int expression.
func (c *Context) Int(v any) (string, bool) {
	if c.Bound() {
		return c.expr, true
	}
	f, ok := mapping.Number(v)
	if !ok {
		return "", false
	}
	return fmt.Sprint(int(f)), true
}

// Float renders v as a Float expression, for UISlider and UIProgressView.
func (c *Context) Float(v any) (string, bool) {
	if c.Bound() {
		return "Float(" + c.expr + ")", true
	}
	f, ok := mapping.Number(v)
	if !ok {
		return "", false
	}
	return mapping.FormatNumber(f), true
}

// Bool renders v as a Bool expression.
func (c *Context) Bool(v any) (string, bool) {
	if c.Bound() {
		return c.expr, true
	}
	b, ok := mapping.Bool(v)
	if !ok {
		return "", false
	}
	if b {
		return "true", true
	}
	return "false", true
}

// Color renders v as a UIColor expression.
func (c *Context) Color(v any) (string, bool) {
	if c.Bound() {
		return c.expr, true
	}
	return c.Colors.Expr(v, mapping.UIKit)
}

// Image renders v as a UIImage expression.
func (c *Context) Image(v any) (string, bool) {
	if c.Bound() {
		return "UIImage(named: " + c.expr + ")", true
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return "UIImage(named: " + mapping.SwiftString(s) + ")", true
}

// Insets renders v as UIEdgeInsets.
func (c *Context) Insets(v any) (string, bool) {
	if c.Bound() {
		return c.expr, true
	}
	in, ok := mapping.Insets(v)
	if !ok {
		return "", false
	}
	return mapping.FormatInsets(in, mapping.UIKit), true
}

// Enum renders a string value through table, or the bound expression.
func (c *Context) Enum(v any, table map[string]string) (string, bool) {
	if c.Bound() {
		return c.expr, true
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	e, ok := table[s]
	return e, ok
}

// StringArray renders an array of strings as a Swift array literal.
func (c *Context) StringArray(v any) (string, bool) {
	if c.Bound() {
		return c.expr, true
	}
	arr, ok := v.([]any)
	if !ok {
		return "", false
	}
	parts := make([]string, 0, len(arr))
	for _, e := range arr {
		parts = append(parts, mapping.SwiftString(fmt.Sprint(e)))
	}
	return "[" + strings.Join(parts, ", ") + "]", true
}

// staticAttrs returns the node's attributes without binding expressions.
func (c *Context) staticAttrs() map[string]any {
	out := make(map[string]any, len(c.Node.Attrs))
	for k, v := range c.Node.Attrs {
		if _, ok := layout.BindingExpr(v); ok {
			continue
		}
		out[k] = v
	}
	return out
}

// fieldsOf returns the data fields read by the node's attribute key.
func (c *Context) fieldsOf(key string) []string {
	expr, ok := layout.BindingExpr(c.Node.Attrs[key])
	if !ok {
		return nil
	}
	return layout.ExprIdents(expr)
}
