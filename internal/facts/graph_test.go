package facts

import (
	"strings"
	"testing"
)

// buildIncludeGraph creates a layout include graph for testing:
//
//	home --includes--> header --includes--> logo
//	home --includes--> footer
//	detail --includes--> header
//	settings (no includes)
func buildIncludeGraph() (*Graph, *Store) {
	s := NewStore()
	s.Add(
		makeLayout("home", "home.json", "header", "footer"),
		makeLayout("detail", "detail.json", "header"),
		makeLayout("header", "_header.json", "logo"),
		makeLayout("footer", "_footer.json"),
		makeLayout("logo", "_logo.json"),
		makeLayout("settings", "settings.json"),
	)
	s.BuildGraph()
	return s.Graph(), s
}

func TestNewGraph_BuildsAdjacencyLists(t *testing.T) {
	g, _ := buildIncludeGraph()

	if g.NodeCount() != 6 {
		t.Errorf("NodeCount = %d, want 6", g.NodeCount())
	}
	if g.EdgeCount() != 4 {
		t.Errorf("EdgeCount = %d, want 4", g.EdgeCount())
	}
	if got := len(g.Out("home")); got != 2 {
		t.Errorf("home outgoing edges = %d, want 2", got)
	}
	if got := len(g.In("header")); got != 2 {
		t.Errorf("header incoming edges = %d, want 2", got)
	}
}

func TestTraverse_Forward(t *testing.T) {
	g, _ := buildIncludeGraph()
	res := g.Traverse("home", TraverseOptions{})

	if names := nodeNames(res.Nodes); names != "home,header,footer,logo" {
		t.Errorf("forward traversal = %s", names)
	}
	if last := res.Nodes[len(res.Nodes)-1]; last.Depth != 2 || last.File != "_logo.json" {
		t.Errorf("logo node = %+v", last)
	}
}

func TestTraverse_ReverseDepthLimit(t *testing.T) {
	g, _ := buildIncludeGraph()
	res := g.Traverse("logo", TraverseOptions{Direction: Reverse, Relations: []string{RelIncludes}, MaxDepth: 1})
	if names := nodeNames(res.Nodes); names != "logo,header" {
		t.Errorf("reverse traversal depth 1 = %s", names)
	}
	if len(res.Edges) != 1 || res.Edges[0].Source != "header" || res.Edges[0].Target != "logo" {
		t.Errorf("edges = %+v", res.Edges)
	}
}

func TestTraverse_RelFilter(t *testing.T) {
	g, _ := buildIncludeGraph()
	res := g.Traverse("home", TraverseOptions{Relations: []string{RelDeclares}})
	if len(res.Nodes) != 1 {
		t.Errorf("filtered traversal = %s, want only start", nodeNames(res.Nodes))
	}
}

func TestTraverse_KindFilterWalksThrough(t *testing.T) {
	s := NewStore()
	s.Add(
		Fact{Kind: KindLayout, Name: "home", Relations: []Relation{{Kind: RelDeclares, Target: "home#btn"}}},
		Fact{Kind: KindView, Name: "home#btn", Relations: []Relation{{Kind: RelHandles, Target: "home.onTap"}}},
		Fact{Kind: KindHandler, Name: "home.onTap"},
	)
	s.BuildGraph()
	res := s.Graph().Traverse("home", TraverseOptions{Kinds: []string{KindHandler}})
	if names := nodeNames(res.Nodes); names != "home,home.onTap" {
		t.Errorf("kind filtered traversal = %s", names)
	}
}

func TestTraverse_Truncates(t *testing.T) {
	g, _ := buildIncludeGraph()
	res := g.Traverse("home", TraverseOptions{MaxNodes: 2})
	if !res.Truncated || len(res.Nodes) != 2 {
		t.Errorf("truncated = %v, nodes = %s", res.Truncated, nodeNames(res.Nodes))
	}
}

func TestDependents(t *testing.T) {
	g, _ := buildIncludeGraph()

	deps, truncated := g.Dependents("logo", 0)
	if truncated {
		t.Error("unexpected truncation")
	}
	if got := nodeNames(deps); got != "header,detail,home" {
		t.Errorf("dependents = %s, want header,detail,home", got)
	}
	if deps[0].Depth != 1 || deps[1].Depth != 2 {
		t.Errorf("depths = %d,%d", deps[0].Depth, deps[1].Depth)
	}

	if deps, _ := g.Dependents("logo", 1); nodeNames(deps) != "header" {
		t.Errorf("depth-limited dependents = %s", nodeNames(deps))
	}
	if deps, _ := g.Dependents("settings", 0); len(deps) != 0 {
		t.Errorf("settings dependents = %s", nodeNames(deps))
	}
}

func TestTraverse_UnknownStart(t *testing.T) {
	g, _ := buildIncludeGraph()
	res := g.Traverse("missing", TraverseOptions{})
	if len(res.Nodes) != 1 || res.Nodes[0].Kind != "" {
		t.Errorf("unknown start = %+v", res.Nodes)
	}
}

func nodeNames(nodes []TraversalNode) string {
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.Name
	}
	return strings.Join(names, ",")
}
