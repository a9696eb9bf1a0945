package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dejo1307/sjui/internal/config"
	"github.com/dejo1307/sjui/internal/engine"
	"github.com/dejo1307/sjui/internal/facts"
	"github.com/dejo1307/sjui/internal/project"
)

// --- test helpers ---

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

// newTestServer creates a Server over a small project: home includes the
// header fragment, which includes the logo fragment.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	layouts := filepath.Join(root, "Layouts")
	writeFile(t, filepath.Join(layouts, "home.json"), `{"type":"View","id":"root","child":[
		{"include":"common/header","shared_data":{"title":"@{pageTitle}"}},
		{"type":"Button","id":"login","text":"Login","onClick":"onLogin"},
		{"type":"Switch","id":"remember"}
	],"data":[{"name":"pageTitle","class":"String","defaultValue":"'Welcome'"}]}`)
	writeFile(t, filepath.Join(layouts, "common", "_header.json"), `{"type":"View","child":[
		{"type":"Label","id":"title_label","text":"@{title}"},
		{"include":"logo"}
	],"data":[{"name":"title","class":"String"}]}`)
	writeFile(t, filepath.Join(layouts, "_logo.json"), `{"type":"Image","id":"logo","src":"logo"}`)
	writeFile(t, filepath.Join(root, "Scripts", "home.ts"), "export function onLogin() {}\nclass Home {\n  onHelp() {}\n}\n")

	cfg := config.Default()
	eng, err := engine.New(cfg, root)
	require.NoError(t, err)
	eng.RegisterDefaults()
	eng.SetMutator(project.NewRecorder())

	s, err := New(eng, cfg)
	require.NoError(t, err)
	return s
}

func (s *Server) build(t *testing.T) {
	t.Helper()
	_, err := s.eng.Build(context.Background(), engine.BuildOptions{})
	require.NoError(t, err)
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content")
	return tc.Text
}

// --- tool tests ---

func TestBuildLayouts(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, _, err := s.buildLayouts(ctx, nil, buildLayoutsArgs{})
	require.NoError(t, err)
	text := resultText(t, res)
	assert.False(t, res.IsError, text)
	assert.Contains(t, text, "Build succeeded.")
	assert.Contains(t, text, "- Layouts: 3")
	assert.Contains(t, text, "- Regenerated: 3")

	res, _, err = s.buildLayouts(ctx, nil, buildLayoutsArgs{})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "- Up to date: 3")
	assert.Contains(t, resultText(t, res), "- Files written: 0")
}

func TestBuildLayouts_ReportsFailures(t *testing.T) {
	s := newTestServer(t)
	writeFile(t, filepath.Join(s.eng.LayoutsDir(), "broken.json"), `{"type":`)

	res, _, err := s.buildLayouts(context.Background(), nil, buildLayoutsArgs{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	text := resultText(t, res)
	assert.Contains(t, text, "Build finished with failures.")
	assert.Contains(t, text, "- broken.json:")
}

func TestAnalyzeLayout(t *testing.T) {
	s := newTestServer(t)

	res, _, err := s.analyzeLayout(context.Background(), nil, analyzeLayoutArgs{Layout: "home"})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var out layoutAnalysis
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, "home.json", out.File)
	assert.Equal(t, "HomeBinding", out.BindingClass)
	assert.Equal(t, []string{"onLogin"}, out.EventHandlers)
	require.Len(t, out.PartialBindings, 1)
	assert.Equal(t, "common/_header.json", out.PartialBindings[0].File)
	assert.Contains(t, out.PartialBindings[0].SharedData, "title")
	assert.Equal(t, []string{"common/header"}, out.IncludingFiles["home.json"])
	require.Len(t, out.DataSets, 1)
	assert.Equal(t, "pageTitle", out.DataSets[0]["name"])
}

func TestAnalyzeLayout_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, _, err := s.analyzeLayout(ctx, nil, analyzeLayoutArgs{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "layout is required")

	res, _, err = s.analyzeLayout(ctx, nil, analyzeLayoutArgs{Layout: "missing"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not found")
}

func TestQueryFacts(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, _, err := s.queryFacts(ctx, nil, queryFactsArgs{Kind: facts.KindLayout})
	require.NoError(t, err)
	assert.True(t, res.IsError, "no build yet")

	s.build(t)

	res, _, err = s.queryFacts(ctx, nil, queryFactsArgs{Kind: facts.KindLayout})
	require.NoError(t, err)
	var layouts []facts.Fact
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &layouts))
	var names []string
	for _, f := range layouts {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"home", "common/header", "logo"}, names)

	res, _, err = s.queryFacts(ctx, nil, queryFactsArgs{Prop: "binding_class", PropValue: "HomeBinding"})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"name": "home"`)

	res, _, err = s.queryFacts(ctx, nil, queryFactsArgs{Kind: facts.KindView, Limit: 1})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "use offset to page")

	res, _, err = s.queryFacts(ctx, nil, queryFactsArgs{Name: "no-such-fact"})
	require.NoError(t, err)
	assert.Equal(t, "[]", resultText(t, res))
}

func TestQueryLayout(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, _, err := s.queryLayout(ctx, nil, queryLayoutArgs{Layout: "home", Path: "$..id"})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	var ids []string
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &ids))
	assert.Subset(t, ids, []string{"root", "login", "remember", "title_label", "logo"})

	res, _, err = s.queryLayout(ctx, nil, queryLayoutArgs{Layout: "home"})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, _, err = s.queryLayout(ctx, nil, queryLayoutArgs{Layout: "home", Path: "$[?("})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "invalid jsonpath")
}

func TestIncludeImpact(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, _, err := s.includeImpact(ctx, nil, includeImpactArgs{Layout: "logo"})
	require.NoError(t, err)
	assert.True(t, res.IsError, "no graph before the first build")

	s.build(t)

	res, _, err = s.includeImpact(ctx, nil, includeImpactArgs{Layout: "_logo.json"})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))
	var out struct {
		Target   string                `json:"target"`
		Affected []facts.TraversalNode `json:"affected"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, "logo", out.Target)
	require.Len(t, out.Affected, 2)
	assert.Equal(t, "common/header", out.Affected[0].Name)
	assert.Equal(t, 1, out.Affected[0].Depth)
	assert.Equal(t, "home", out.Affected[1].Name)
	assert.Equal(t, 2, out.Affected[1].Depth)

	res, _, err = s.includeImpact(ctx, nil, includeImpactArgs{Layout: "home", MaxDepth: 1})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Empty(t, out.Affected, "nothing includes home")

	res, _, err = s.includeImpact(ctx, nil, includeImpactArgs{Layout: "nope"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestPreviewLayout(t *testing.T) {
	s := newTestServer(t)

	res, _, err := s.previewLayout(context.Background(), nil, previewLayoutArgs{
		Layout: "home",
		Data:   map[string]any{"pageTitle": "Hello"},
	})
	require.NoError(t, err)
	text := resultText(t, res)
	require.False(t, res.IsError, text)
	assert.Contains(t, text, `"id": "login"`)
	assert.Contains(t, text, `"id": "logo"`)

	res, _, err = s.previewLayout(context.Background(), nil, previewLayoutArgs{Layout: "missing"})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "preview failed")
}

func TestListScriptHandlers(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, _, err := s.listScriptHandlers(ctx, nil, listScriptHandlersArgs{})
	require.NoError(t, err)
	assert.Equal(t, "No script handlers found.", resultText(t, res))

	s.build(t)

	res, _, err = s.listScriptHandlers(ctx, nil, listScriptHandlersArgs{})
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "## Scripts/home.ts")
	assert.Contains(t, text, "- `onLogin` (function, exported) line 1")
	assert.Contains(t, text, "- `Home.onHelp` (method) line 3")
	assert.Less(t, strings.Index(text, "onLogin"), strings.Index(text, "Home.onHelp"))

	res, _, err = s.listScriptHandlers(ctx, nil, listScriptHandlersArgs{File: "Scripts/other.ts"})
	require.NoError(t, err)
	assert.Equal(t, "No script handlers found.", resultText(t, res))
}

func TestErrorResult(t *testing.T) {
	res := errorResult("boom")
	assert.True(t, res.IsError)
	assert.Equal(t, "boom", resultText(t, res))
}
