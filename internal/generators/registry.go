// Package generators turns analysis results into generated Swift files and
// writes them to the project with per-file backup and restore.
package generators

import (
	"context"

	"github.com/dejo1307/sjui/internal/analyzer"
	"github.com/dejo1307/sjui/internal/facts"
)

// Generator produces output artifacts for one analyzed layout.
type Generator interface {
	// Name returns the generator identifier (e.g. "binding").
	Name() string
	// Generate produces artifacts from the analysis result. Artifact names
	// are paths relative to the project source root.
	Generate(ctx context.Context, res *analyzer.Result) ([]facts.Artifact, error)
}

// Registry holds registered generators.
type Registry struct {
	generators []Generator
}

// NewRegistry creates a new generator registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a generator to the registry.
func (r *Registry) Register(g Generator) {
	r.generators = append(r.generators, g)
}

// Get returns the generator with the given name, or nil if not found.
func (r *Registry) Get(name string) Generator {
	for _, g := range r.generators {
		if g.Name() == name {
			return g
		}
	}
	return nil
}

// All returns all registered generators.
func (r *Registry) All() []Generator {
	return r.generators
}

// Names returns the names of all registered generators.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.generators))
	for _, g := range r.generators {
		names = append(names, g.Name())
	}
	return names
}
