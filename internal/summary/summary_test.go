package summary

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dejo1307/sjui/internal/facts"
)

func makeSnapshot(ff []facts.Fact, insights []facts.Insight) *facts.Snapshot {
	return &facts.Snapshot{
		Meta: facts.SnapshotMeta{
			GeneratedAt:  "2024-01-01T00:00:00Z",
			Duration:     "1s",
			Layouts:      len(ff),
			FactCount:    len(ff),
			InsightCount: len(insights),
		},
		Facts:    ff,
		Insights: insights,
	}
}

func layoutFact(name string, includes ...string) facts.Fact {
	f := facts.Fact{
		Kind:  facts.KindLayout,
		Name:  name,
		File:  name + ".json",
		Props: map[string]any{"binding_class": "XBinding", "views": 2, "data_fields": 1.0},
	}
	for _, inc := range includes {
		f.Relations = append(f.Relations, facts.Relation{Kind: facts.RelIncludes, Target: inc})
	}
	return f
}

func render(t *testing.T, r *Renderer, s *facts.Snapshot) string {
	t.Helper()
	artifacts, err := r.Render(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, FileName, artifacts[0].Name)
	return string(artifacts[0].Content)
}

func TestRender_EmptySnapshot(t *testing.T) {
	content := render(t, New(4000), makeSnapshot(nil, nil))
	assert.Contains(t, content, "# Layout Build Summary")
	assert.Contains(t, content, "_No layouts found._")
	assert.NotContains(t, content, "## Diagnostics")
}

func TestRender_LayoutsAndFragments(t *testing.T) {
	s := makeSnapshot([]facts.Fact{
		layoutFact("home", "common/header"),
		layoutFact("about", "common/header", "common/footer"),
		layoutFact("common/header"),
		{Kind: facts.KindHandler, Name: "home.onLogin()", File: "home.json", Props: map[string]any{"handler": "onLogin"}},
	}, []facts.Insight{
		{Title: "Unused data in home.json", Confidence: 0.6},
		{Title: "Include cycle detected (2 layouts)", Confidence: 1.0},
	})
	s.Meta.Failed = []facts.FileFailure{{File: "broken.json", Error: "invalid JSON"}}

	content := render(t, New(4000), s)
	assert.Contains(t, content, "| `home` | XBinding | 2 | 1 | common/header |")
	assert.Contains(t, content, "| `common/header` | 2 |")
	assert.Contains(t, content, "- `onLogin` in home.json")
	assert.Contains(t, content, "- `broken.json`: invalid JSON")
	assert.Less(t, strings.Index(content, "Include cycle"), strings.Index(content, "Unused data"))
}

func TestRender_TokenBudget(t *testing.T) {
	var ff []facts.Fact
	for i := 0; i < 80; i++ {
		ff = append(ff, layoutFact(strings.Repeat("screen_", 6)+string(rune('a'+i%26))))
	}
	content := render(t, New(100), makeSnapshot(ff, nil))
	assert.True(t, strings.Contains(content, "[Truncated in: Layouts]") || strings.Contains(content, "[Omitted:"))
	assert.LessOrEqual(t, len(content), 100*4+60)
}
