package facts

import "sort"

// Graph is an adjacency index over fact relations, rebuilt after each build.
// Include relations point at layout keys, so walking them in reverse answers
// which layouts must be regenerated when a fragment changes.
type Graph struct {
	out   map[string][]Edge
	in    map[string][]Edge
	nodes map[string]Fact // first fact recorded under each name
}

// Edge is one relation as seen from a node. Peer is the target for
// outgoing edges and the source for incoming ones.
type Edge struct {
	Kind string
	Peer string
}

// Direction selects which way Traverse follows relations.
type Direction int

const (
	Forward Direction = iota
	Reverse
)

// TraverseOptions restricts a traversal. Zero values mean no restriction,
// except MaxDepth (default 5, at most 20) and MaxNodes (default 100, at
// most 500).
type TraverseOptions struct {
	Direction Direction
	Relations []string // relation kinds to follow
	Kinds     []string // fact kinds to report; others are walked through
	MaxDepth  int
	MaxNodes  int
}

// TraversalResult is the outcome of a traversal. The start node is always
// Nodes[0] at depth 0.
type TraversalResult struct {
	Nodes     []TraversalNode `json:"nodes"`
	Edges     []TraversalEdge `json:"edges"`
	Truncated bool            `json:"truncated,omitempty"`
}

// TraversalNode is a node reached by a traversal.
type TraversalNode struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	File  string `json:"file,omitempty"`
	Line  int    `json:"line,omitempty"`
	Depth int    `json:"depth"`
}

// TraversalEdge is a relation followed by a traversal, always oriented
// source to target regardless of direction.
type TraversalEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
}

// NewGraph indexes the relations of ff.
func NewGraph(ff []Fact) *Graph {
	g := &Graph{
		out:   make(map[string][]Edge),
		in:    make(map[string][]Edge),
		nodes: make(map[string]Fact, len(ff)),
	}
	for _, f := range ff {
		if f.Name == "" {
			continue
		}
		if _, ok := g.nodes[f.Name]; !ok {
			g.nodes[f.Name] = f
		}
		for _, r := range f.Relations {
			g.out[f.Name] = append(g.out[f.Name], Edge{Kind: r.Kind, Peer: r.Target})
			g.in[r.Target] = append(g.in[r.Target], Edge{Kind: r.Kind, Peer: f.Name})
		}
	}
	return g
}

// Out returns the outgoing edges of name.
func (g *Graph) Out(name string) []Edge {
	return g.out[name]
}

// In returns the incoming edges of name.
func (g *Graph) In(name string) []Edge {
	return g.in[name]
}

// NodeCount returns the number of named facts in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of relations in the graph.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, edges := range g.out {
		n += len(edges)
	}
	return n
}

// Traverse walks the graph breadth-first from start. Each node is reported
// once, at the depth it was first reached.
func (g *Graph) Traverse(start string, opts TraverseOptions) TraversalResult {
	maxDepth := clamp(opts.MaxDepth, 5, 20)
	maxNodes := clamp(opts.MaxNodes, 100, 500)
	rels := toSet(opts.Relations)
	kinds := toSet(opts.Kinds)

	adj := g.out
	if opts.Direction == Reverse {
		adj = g.in
	}

	res := TraversalResult{Nodes: []TraversalNode{g.node(start, 0)}}
	seen := map[string]bool{start: true}
	frontier := []string{start}

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, name := range frontier {
			for _, e := range adj[name] {
				if rels != nil && !rels[e.Kind] {
					continue
				}
				if opts.Direction == Reverse {
					res.Edges = append(res.Edges, TraversalEdge{Source: e.Peer, Target: name, Kind: e.Kind})
				} else {
					res.Edges = append(res.Edges, TraversalEdge{Source: name, Target: e.Peer, Kind: e.Kind})
				}
				if seen[e.Peer] {
					continue
				}
				seen[e.Peer] = true

				n := g.node(e.Peer, depth)
				if kinds == nil || kinds[n.Kind] {
					if len(res.Nodes) >= maxNodes {
						res.Truncated = true
						continue
					}
					res.Nodes = append(res.Nodes, n)
				}
				next = append(next, e.Peer)
			}
		}
		frontier = next
	}
	return res
}

// Dependents returns the layouts that include layout, directly or through
// other fragments, ordered by depth then name. The layout itself is not
// part of the result.
func (g *Graph) Dependents(layout string, maxDepth int) ([]TraversalNode, bool) {
	res := g.Traverse(layout, TraverseOptions{
		Direction: Reverse,
		Relations: []string{RelIncludes},
		Kinds:     []string{KindLayout},
		MaxDepth:  maxDepth,
		MaxNodes:  500,
	})
	deps := res.Nodes[1:]
	sort.SliceStable(deps, func(i, j int) bool {
		if deps[i].Depth != deps[j].Depth {
			return deps[i].Depth < deps[j].Depth
		}
		return deps[i].Name < deps[j].Name
	})
	return deps, res.Truncated
}

func (g *Graph) node(name string, depth int) TraversalNode {
	n := TraversalNode{Name: name, Depth: depth}
	if f, ok := g.nodes[name]; ok {
		n.Kind = f.Kind
		n.File = f.File
		n.Line = f.Line
	}
	return n
}

func clamp(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

func toSet(ss []string) map[string]bool {
	var set map[string]bool
	for _, s := range ss {
		if s == "" {
			continue
		}
		if set == nil {
			set = make(map[string]bool, len(ss))
		}
		set[s] = true
	}
	return set
}
