package analyzer

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// Document returns the resolved layout in its canonical JSON shape: an
// object for a single root, an array otherwise.
func (r *Result) Document() any {
	if len(r.Roots) == 1 {
		return r.Roots[0].Raw()
	}
	out := make([]any, 0, len(r.Roots))
	for _, n := range r.Roots {
		out = append(out, n.Raw())
	}
	return out
}

// Query evaluates a JSONPath expression against the resolved document.
// Includes are already spliced in, so "$..[?(@.type == 'Button')].id"
// sees buttons from fragments too.
func (r *Result) Query(expr string) ([]any, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath %q: %w", expr, err)
	}
	return x.Get(r.Document()), nil
}
