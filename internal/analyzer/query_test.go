package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_Query(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "_footer.json", `{"type":"Button","id":"help","text":"Help"}`)
	p := writeFile(t, dir, "home.json", `{"type":"View","child":[
		{"type":"Button","id":"login","text":"Login"},
		{"type":"Label","id":"title","text":"Home"},
		{"include":"footer"}
	]}`)

	res, err := New(Options{Root: dir}).Analyze(p)
	require.NoError(t, err)

	ids, err := res.Query(`$..[?(@.type == 'Button')].id`)
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{"login", "help"}, ids)

	types, err := res.Query(`$.children[*].type`)
	require.NoError(t, err)
	assert.Equal(t, []any{"Button", "Label", "Button"}, types)

	_, err = res.Query(`$[?(`)
	assert.ErrorContains(t, err, "invalid jsonpath")
}

func TestResult_DocumentArrayRoot(t *testing.T) {
	res, err := New(Options{}).AnalyzeDocument("list.json", []any{
		map[string]any{"type": "Label", "text": "a"},
		map[string]any{"type": "Label", "text": "b"},
	})
	require.NoError(t, err)

	doc, ok := res.Document().([]any)
	require.True(t, ok)
	assert.Len(t, doc, 2)

	texts, err := res.Query(`$[*].text`)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, texts)
}
