// Package diagnostics runs checks over the fact store after a build and
// reports problems that no single layout can see on its own.
package diagnostics

import (
	"context"
	"log"

	"github.com/dejo1307/sjui/internal/facts"
)

// Diagnostic analyzes facts and produces insights.
type Diagnostic interface {
	// Name returns the diagnostic identifier (e.g. "include_cycles").
	Name() string
	// Explain analyzes the fact store and returns insights.
	Explain(ctx context.Context, store *facts.Store) ([]facts.Insight, error)
}

// Registry holds registered diagnostics.
type Registry struct {
	diagnostics []Diagnostic
}

// NewRegistry creates a new diagnostic registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a diagnostic to the registry.
func (r *Registry) Register(d Diagnostic) {
	r.diagnostics = append(r.diagnostics, d)
}

// Get returns the diagnostic with the given name, or nil if not found.
func (r *Registry) Get(name string) Diagnostic {
	for _, d := range r.diagnostics {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

// All returns all registered diagnostics.
func (r *Registry) All() []Diagnostic {
	return r.diagnostics
}

// Names returns the names of all registered diagnostics in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.diagnostics))
	for _, d := range r.diagnostics {
		names = append(names, d.Name())
	}
	return names
}

// Run executes every diagnostic. A failing diagnostic is logged and skipped.
func (r *Registry) Run(ctx context.Context, store *facts.Store) []facts.Insight {
	var out []facts.Insight
	for _, d := range r.diagnostics {
		if err := ctx.Err(); err != nil {
			return out
		}
		insights, err := d.Explain(ctx, store)
		if err != nil {
			log.Printf("[engine] diagnostic %s error: %v", d.Name(), err)
			continue
		}
		out = append(out, insights...)
	}
	return out
}
