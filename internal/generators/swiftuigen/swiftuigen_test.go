package swiftuigen

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dejo1307/sjui/internal/analyzer"
)

func analyze(t *testing.T, files map[string]string, target string) *analyzer.Result {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	res, err := analyzer.New(analyzer.Options{Root: dir}).Analyze(filepath.Join(dir, target))
	require.NoError(t, err)
	return res
}

func TestRender_ViewStruct(t *testing.T) {
	res := analyze(t, map[string]string{
		"search.json": `{"type":"View","child":[
			{"data":[
				{"name":"query","class":"String","defaultValue":""},
				{"name":"resultCount","class":"Int","defaultValue":0}
			]},
			{"type":"TextField","id":"q","hint":"Search","text":"@{query}"},
			{"type":"Label","text":"@{String(resultCount)}"},
			{"type":"Button","text":"Go","onClick":"onSearch"}
		]}`,
	}, "search.json")

	src, err := New(Options{}).Render(res)
	require.NoError(t, err)
	out := string(src)

	assert.True(t, strings.HasPrefix(out, "//\n//  SearchView.swift\n//  Generated by sjui from search.json. Do not edit.\n//\n\nimport SwiftUI\n\nstruct SearchView: View {\n"))
	assert.Contains(t, out, "    @State var query: String = \"\"\n")
	assert.Contains(t, out, "    var resultCount: Int = 0\n")
	assert.Contains(t, out, "    var onSearch: () -> Void = {}\n")
	assert.Contains(t, out, "        VStack(alignment: .leading, spacing: 0) {\n            TextField(\"Search\", text: $query)")
	assert.Contains(t, out, "            Text(String(resultCount))")
	assert.Contains(t, out, "            Button(action: onSearch) {\n                Text(\"Go\")\n            }")
	assert.True(t, strings.HasSuffix(out, "#Preview {\n    SearchView()\n}\n"))
}

func TestRender_PartialAsView(t *testing.T) {
	res := analyze(t, map[string]string{
		"_header.json": `{"type":"View","child":[
			{"data":[{"name":"title","class":"String"}]},
			{"type":"Label","id":"header_title","text":"@{title}"}
		]}`,
		"home.json": `{"type":"View","child":[
			{"data":[{"name":"pageTitle","class":"String","defaultValue":"Home"}]},
			{"include":"header","shared_data":{"title":"@{pageTitle}"}},
			{"type":"Label","text":"body"}
		]}`,
	}, "home.json")

	src, err := New(Options{}).Render(res)
	require.NoError(t, err)
	out := string(src)
	assert.Contains(t, out, "            HeaderView(title: pageTitle)\n            Text(\"body\")")
	assert.NotContains(t, out, "Text(title)", "the fragment renders through its own view")
}

func TestRender_CustomModuleImport(t *testing.T) {
	res := analyze(t, map[string]string{
		"c.json": `{"type":"View","child":[{"type":"Chart"},{"type":"Web","url":"https://example.com"}]}`,
	}, "c.json")
	src, err := New(Options{
		Custom:        map[string]string{"Chart": "ChartView"},
		CustomModules: map[string]string{"Chart": "Charts"},
	}).Render(res)
	require.NoError(t, err)
	assert.Contains(t, string(src), "import SwiftUI\nimport Charts\nimport WebKit\n\n")
	assert.Contains(t, string(src), "ChartView()")
}

func TestGenerate_Artifact(t *testing.T) {
	res := analyze(t, map[string]string{"screens/login.json": `{"type":"Label","text":"x"}`}, "screens/login.json")
	arts, err := New(Options{Dir: "Gen/Views"}).Generate(context.Background(), res)
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.Equal(t, "Gen/Views/LoginView.swift", arts[0].Name)
	assert.Equal(t, "swiftui", arts[0].Type)
	assert.Equal(t, "screens/login", arts[0].Layout)
}
