package cycles

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dejo1307/sjui/internal/facts"
)

func makeStore(includes map[string][]string) *facts.Store {
	s := facts.NewStore()
	for name, targets := range includes {
		f := facts.Fact{Kind: facts.KindLayout, Name: name, File: name + ".json"}
		for _, t := range targets {
			f.Relations = append(f.Relations, facts.Relation{Kind: facts.RelIncludes, Target: t})
		}
		s.Add(f)
	}
	return s
}

func TestTarjanSCC_KnownGraphs(t *testing.T) {
	tests := []struct {
		name           string
		graph          map[string][]string
		wantCycleSizes []int
	}{
		{"empty graph", map[string][]string{}, nil},
		{"single node no edges", map[string][]string{"A": nil}, nil},
		{"simple cycle A<->B", map[string][]string{"A": {"B"}, "B": {"A"}}, []int{2}},
		{"triangle", map[string][]string{"A": {"B"}, "B": {"C"}, "C": {"A"}}, []int{3}},
		{"two disjoint cycles", map[string][]string{"A": {"B"}, "B": {"A"}, "C": {"D"}, "D": {"C"}}, []int{2, 2}},
		{"chain", map[string][]string{"A": {"B"}, "B": {"C"}, "C": nil}, nil},
		{"cycle with tail", map[string][]string{"A": {"B"}, "B": {"C"}, "C": {"A", "D"}, "D": nil}, []int{3}},
		{"edge to unknown node", map[string][]string{"A": {"Z"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sizes []int
			for _, scc := range tarjanSCC(tt.graph) {
				if len(scc) > 1 {
					sizes = append(sizes, len(scc))
				}
			}
			sort.Ints(sizes)
			assert.Equal(t, tt.wantCycleSizes, sizes)
		})
	}
}

func TestExplain_ReportsCycles(t *testing.T) {
	store := makeStore(map[string][]string{
		"home":          {"common/header"},
		"common/header": {"common/logo"},
		"common/logo":   {"common/header"},
		"about":         nil,
	})

	insights, err := New().Explain(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, insights, 1)

	in := insights[0]
	assert.Equal(t, "Include cycle detected (2 layouts)", in.Title)
	assert.Contains(t, in.Description, "common/header -> common/logo -> common/header")
	assert.Equal(t, 1.0, in.Confidence)
	require.Len(t, in.Evidence, 2)
	assert.Equal(t, "common/header.json", in.Evidence[0].File)
}

func TestExplain_SelfInclude(t *testing.T) {
	store := makeStore(map[string][]string{"loop": {"loop"}, "ok": nil})
	insights, err := New().Explain(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, insights, 1)
	assert.Equal(t, "Include cycle detected (1 layouts)", insights[0].Title)
	assert.Equal(t, "loop", insights[0].Evidence[0].Fact)
}

func TestExplain_NoCycles(t *testing.T) {
	store := makeStore(map[string][]string{"a": {"b"}, "b": nil})
	insights, err := New().Explain(context.Background(), store)
	require.NoError(t, err)
	assert.Empty(t, insights)
}
