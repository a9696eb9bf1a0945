package cycles

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dejo1307/sjui/internal/facts"
)

// IncludeCycles detects layouts that include each other, directly or through
// other fragments, using Tarjan's SCC algorithm.
type IncludeCycles struct{}

// New creates a new IncludeCycles diagnostic.
func New() *IncludeCycles {
	return &IncludeCycles{}
}

func (d *IncludeCycles) Name() string {
	return "include_cycles"
}

// Explain builds the include graph from layout facts and reports every
// strongly connected component with more than one layout, plus self-includes.
func (d *IncludeCycles) Explain(ctx context.Context, store *facts.Store) ([]facts.Insight, error) {
	graph, files := buildIncludeGraph(store)

	var insights []facts.Insight
	for _, scc := range tarjanSCC(graph) {
		if len(scc) == 1 && !selfLoop(graph, scc[0]) {
			continue
		}
		sort.Strings(scc)

		cyclePath := strings.Join(scc, " -> ") + " -> " + scc[0]
		evidence := make([]facts.Evidence, 0, len(scc))
		for _, l := range scc {
			evidence = append(evidence, facts.Evidence{
				File:   files[l],
				Fact:   l,
				Detail: fmt.Sprintf("layout %q is part of the cycle", l),
			})
		}

		insights = append(insights, facts.Insight{
			Title:       fmt.Sprintf("Include cycle detected (%d layouts)", len(scc)),
			Description: fmt.Sprintf("The following layouts include each other: %s. None of them can be generated until the cycle is broken.", cyclePath),
			Confidence:  1.0,
			Evidence:    evidence,
			Actions: []string{
				"Remove the include that points back up the hierarchy",
				"Move the shared part into its own fragment",
			},
		})
	}

	sort.Slice(insights, func(i, j int) bool {
		return insights[i].Evidence[0].Fact < insights[j].Evidence[0].Fact
	})
	return insights, nil
}

// buildIncludeGraph returns layout -> included layouts, and layout -> file.
func buildIncludeGraph(store *facts.Store) (map[string][]string, map[string]string) {
	graph := make(map[string][]string)
	files := make(map[string]string)
	for _, l := range store.ByKind(facts.KindLayout) {
		files[l.Name] = l.File
		if _, ok := graph[l.Name]; !ok {
			graph[l.Name] = nil
		}
		for _, rel := range l.Relations {
			if rel.Kind == facts.RelIncludes {
				graph[l.Name] = append(graph[l.Name], rel.Target)
			}
		}
	}
	return graph, files
}

func selfLoop(graph map[string][]string, v string) bool {
	for _, w := range graph[v] {
		if w == v {
			return true
		}
	}
	return false
}

// tarjanSCC implements Tarjan's strongly connected components algorithm.
// Vertices are visited in sorted order so results are stable.
func tarjanSCC(graph map[string][]string) [][]string {
	var (
		index    int
		stack    []string
		onStack  = make(map[string]bool)
		indices  = make(map[string]int)
		lowlinks = make(map[string]int)
		sccs     [][]string
	)

	var strongConnect func(v string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlinks[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlinks[v] = min(lowlinks[v], lowlinks[w])
			} else if onStack[w] {
				lowlinks[v] = min(lowlinks[v], indices[w])
			}
		}

		if lowlinks[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	vertices := make([]string, 0, len(graph))
	for v := range graph {
		vertices = append(vertices, v)
	}
	sort.Strings(vertices)
	for _, v := range vertices {
		if _, visited := indices[v]; !visited {
			strongConnect(v)
		}
	}

	return sccs
}
