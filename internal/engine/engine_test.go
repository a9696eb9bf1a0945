package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dejo1307/sjui/internal/analyzer"
	"github.com/dejo1307/sjui/internal/config"
	"github.com/dejo1307/sjui/internal/facts"
	"github.com/dejo1307/sjui/internal/project"
)

func TestIsIgnored(t *testing.T) {
	tests := []struct {
		name     string
		relPath  string
		isDir    bool
		patterns []string
		want     bool
	}{
		{
			"cache directory",
			".sjui_cache/facts.jsonl", false,
			[]string{".sjui_cache/**"},
			true,
		},
		{
			"cache dir itself",
			".sjui_cache", true,
			[]string{".sjui_cache/**"},
			true,
		},
		{
			"git directory",
			".git/HEAD", false,
			[]string{".git/**"},
			true,
		},
		{
			"backup files with ** prefix",
			"Layouts/home.json.bak", false,
			[]string{"**/*.bak"},
			true,
		},
		{
			"layout not ignored",
			"Layouts/home.json", false,
			[]string{"**/*.bak"},
			false,
		},
		{
			"legacy layouts",
			"Layouts/legacy/old.json", false,
			[]string{"Layouts/legacy/**"},
			true,
		},
		{
			"sibling of ignored dir",
			"Layouts/legacy_new.json", false,
			[]string{"Layouts/legacy/**"},
			false,
		},
		{
			"nested draft",
			"Layouts/settings/profile.draft.json", false,
			[]string{"**/*.draft.json"},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Ignore = tt.patterns

			eng, err := New(cfg, t.TempDir())
			require.NoError(t, err)
			got := eng.isIgnored(tt.relPath, tt.isDir)
			if got != tt.want {
				t.Errorf("isIgnored(%q, isDir=%v) with patterns %v = %v, want %v",
					tt.relPath, tt.isDir, tt.patterns, got, tt.want)
			}
		})
	}
}

type fixture struct {
	root     string
	eng      *Engine
	recorder *project.Recorder
}

func newFixture(t *testing.T, mode string, layouts map[string]string) *fixture {
	t.Helper()
	root := t.TempDir()
	for rel, content := range layouts {
		writeFile(t, filepath.Join(root, "Layouts", filepath.FromSlash(rel)), content)
	}
	cfg := config.Default()
	cfg.Mode = mode
	eng, err := New(cfg, root)
	require.NoError(t, err)
	eng.RegisterDefaults()
	rec := project.NewRecorder()
	eng.SetMutator(rec)
	return &fixture{root: root, eng: eng, recorder: rec}
}

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func (f *fixture) build(t *testing.T) *facts.Snapshot {
	t.Helper()
	snap, err := f.eng.Build(context.Background(), BuildOptions{})
	require.NoError(t, err)
	return snap
}

func TestBuild_GeneratesAndIsIdempotent(t *testing.T) {
	f := newFixture(t, config.ModeAll, map[string]string{
		"home.json":           `{"type":"View","child":[{"include":"header","shared_data":{"title":"@{pageTitle}"}},{"type":"Button","id":"login","text":"Login","onClick":"onLogin"}],"data":[{"name":"pageTitle","class":"String"}]}`,
		"_header.json":        `{"type":"Label","id":"title_label","text":"@{title}","data":[{"name":"title","class":"String"}]}`,
		"settings/about.json": `{"type":"Label","text":"About"}`,
	})

	snap := f.build(t)
	assert.True(t, snap.Meta.OK(), "%v", snap.Meta.Failed)
	assert.Equal(t, 3, snap.Meta.Layouts)
	assert.Equal(t, []string{"_header.json", "home.json", "settings/about.json"}, snap.Meta.Generated)
	assert.Equal(t, 6, snap.Meta.Writes)

	assert.FileExists(t, filepath.Join(f.root, "Bindings", "HomeBinding.swift"))
	assert.FileExists(t, filepath.Join(f.root, "Bindings", "HeaderBinding.swift"))
	assert.FileExists(t, filepath.Join(f.root, "View", "HomeView.swift"))
	assert.FileExists(t, filepath.Join(f.root, ".sjui_cache", "including_file.json"))
	assert.FileExists(t, filepath.Join(f.root, ".sjui_cache", FactsFile))
	assert.FileExists(t, filepath.Join(f.root, ".sjui_cache", "summary.md"))

	assert.Contains(t, f.recorder.Added["Bindings"], "Bindings/HomeBinding.swift")
	assert.Contains(t, f.recorder.Added["View"], "View/HomeView.swift")

	home := f.eng.Store().ByName("home")
	require.Len(t, home, 1)
	assert.ElementsMatch(t, []string{"Bindings/HomeBinding.swift", "View/HomeView.swift"}, outputsOf(home[0]))

	second := f.build(t)
	assert.Equal(t, 0, second.Meta.Writes, "nothing changed")
	assert.Equal(t, 3, second.Meta.Skipped)
	assert.Empty(t, second.Meta.Generated)

	// A fresh engine reloads facts from the cache and still skips.
	eng, err := New(f.eng.Config(), f.root)
	require.NoError(t, err)
	eng.RegisterDefaults()
	eng.SetMutator(nil)
	third, err := eng.Build(context.Background(), BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, third.Meta.Skipped)
	assert.NotEmpty(t, eng.Store().ByName("home"))

	forced, err := eng.Build(context.Background(), BuildOptions{Force: true})
	require.NoError(t, err)
	assert.Len(t, forced.Meta.Generated, 3)
	assert.Equal(t, 0, forced.Meta.Writes, "identical output is not rewritten")
}

func TestBuild_FragmentChangeRegeneratesIncluder(t *testing.T) {
	f := newFixture(t, config.ModeUIKit, map[string]string{
		"home.json":  `{"type":"View","child":[{"include":"row"}]}`,
		"_row.json":  `{"type":"Label","id":"row_label","text":"Row"}`,
		"other.json": `{"type":"Label","text":"Other"}`,
	})
	f.build(t)

	past := time.Now().Add(-time.Hour)
	for _, rel := range []string{"home.json", "_row.json", "other.json"} {
		p := filepath.Join(f.root, "Layouts", rel)
		require.NoError(t, os.Chtimes(p, past, past))
	}
	f.build(t)

	writeFile(t, filepath.Join(f.root, "Layouts", "_row.json"), `{"type":"Label","id":"row_label","text":"Changed"}`)
	snap := f.build(t)
	assert.Equal(t, []string{"_row.json", "home.json"}, snap.Meta.Generated)
}

func TestBuild_FailuresDoNotStopBatch(t *testing.T) {
	f := newFixture(t, config.ModeUIKit, map[string]string{
		"broken.json":  `{"type":"View",`,
		"cycle.json":   `{"include":"cycle"}`,
		"mystery.json": `{"type":"Hologram","id":"holo"}`,
		"ok.json":      `{"type":"Label","id":"hello","text":"Hi"}`,
	})

	snap := f.build(t)
	require.Len(t, snap.Meta.Failed, 2)
	assert.Equal(t, "broken.json", snap.Meta.Failed[0].File)
	assert.Equal(t, "cycle.json", snap.Meta.Failed[1].File)
	assert.Equal(t, []string{"mystery.json", "ok.json"}, snap.Meta.Generated)
	assert.FileExists(t, filepath.Join(f.root, "Bindings", "OkBinding.swift"))
	assert.FileExists(t, filepath.Join(f.root, "Bindings", "MysteryBinding.swift"))

	again := f.build(t)
	assert.Len(t, again.Meta.Failed, 2, "failed layouts are retried")
}

func TestBuild_RemovesOutputsOfDeletedLayouts(t *testing.T) {
	f := newFixture(t, config.ModeUIKit, map[string]string{
		"home.json": `{"type":"Label","text":"Home"}`,
		"old.json":  `{"type":"Label","text":"Old"}`,
	})
	f.build(t)
	out := filepath.Join(f.root, "Bindings", "OldBinding.swift")
	require.FileExists(t, out)

	require.NoError(t, os.Remove(filepath.Join(f.root, "Layouts", "old.json")))
	snap := f.build(t)
	assert.Equal(t, []string{"old.json"}, snap.Meta.Removed)
	assert.NoFileExists(t, out)
	assert.Equal(t, []string{"Bindings/OldBinding.swift"}, f.recorder.Removed)
	assert.Empty(t, f.eng.Store().ByFile("old.json"))
}

func TestBuild_IdleBuildWritesNothing(t *testing.T) {
	f := newFixture(t, config.ModeAll, map[string]string{
		"home.json":   `{"type":"View","child":[{"include":"row"},{"type":"Button","id":"go","onClick":"onGo"}]}`,
		"_row.json":   `{"type":"Label","id":"row_label","text":"Row"}`,
		"unused.json": `{"type":"Label","text":"Hi","data":[{"name":"spare","class":"String"}]}`,
	})
	writeFile(t, filepath.Join(f.root, "Scripts", "home.ts"), "export function onGo() {}\n")
	writeFile(t, filepath.Join(f.root, "Scripts", "extra.ts"), "export function helper() {}\n")
	f.build(t)

	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	var cached []string
	for _, dir := range []string{".sjui_cache", "Bindings", "View"} {
		require.NoError(t, filepath.WalkDir(filepath.Join(f.root, dir), func(p string, d os.DirEntry, err error) error {
			require.NoError(t, err)
			if !d.IsDir() {
				require.NoError(t, os.Chtimes(p, past, past))
				cached = append(cached, p)
			}
			return nil
		}))
	}
	require.NotEmpty(t, cached)
	for _, rel := range []string{"home.json", "_row.json", "unused.json"} {
		p := filepath.Join(f.root, "Layouts", rel)
		require.NoError(t, os.Chtimes(p, past.Add(-time.Hour), past.Add(-time.Hour)))
	}

	snap := f.build(t)
	assert.Equal(t, 0, snap.Meta.Writes)
	assert.Equal(t, 3, snap.Meta.Skipped)
	for _, p := range cached {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.True(t, info.ModTime().Equal(past), "idle build rewrote %s", filepath.Base(p))
	}

	forced, err := f.eng.Build(context.Background(), BuildOptions{Force: true})
	require.NoError(t, err)
	assert.Len(t, forced.Meta.Generated, 3)
	info, err := os.Stat(filepath.Join(f.root, ".sjui_cache", MetaFile))
	require.NoError(t, err)
	assert.True(t, info.ModTime().After(past), "forced build refreshes reports")
}

func TestBuild_ConflictingOutputsAreRejected(t *testing.T) {
	f := newFixture(t, config.ModeUIKit, map[string]string{
		"home.json":          `{"type":"Label","id":"top","text":"Top"}`,
		"settings/home.json": `{"type":"Label","id":"nested","text":"Nested"}`,
	})
	binding := filepath.Join(f.root, "Bindings", "HomeBinding.swift")

	snap := f.build(t)
	assert.Equal(t, []string{"home.json"}, snap.Meta.Generated)
	require.Len(t, snap.Meta.Failed, 1)
	assert.Equal(t, "settings/home.json", snap.Meta.Failed[0].File)
	assert.Contains(t, snap.Meta.Failed[0].Error, "Bindings/HomeBinding.swift is already generated from home.json")
	data, err := os.ReadFile(binding)
	require.NoError(t, err)
	assert.Contains(t, string(data), "top")

	// The loser going away leaves the owner's output alone.
	require.NoError(t, os.Remove(filepath.Join(f.root, "Layouts", "settings", "home.json")))
	snap = f.build(t)
	assert.Empty(t, snap.Meta.Failed)
	assert.FileExists(t, binding)

	// The owner going away hands the path to a layout that claims it in the
	// same build.
	writeFile(t, filepath.Join(f.root, "Layouts", "settings", "home.json"), `{"type":"Label","id":"nested","text":"Nested"}`)
	require.NoError(t, os.Remove(filepath.Join(f.root, "Layouts", "home.json")))
	snap = f.build(t)
	assert.Equal(t, []string{"settings/home.json"}, snap.Meta.Generated)
	assert.Equal(t, []string{"home.json"}, snap.Meta.Removed)
	data, err = os.ReadFile(binding)
	require.NoError(t, err)
	assert.Contains(t, string(data), "nested")
	assert.NotContains(t, f.recorder.Removed, "Bindings/HomeBinding.swift")
}

func TestBuild_ScriptsAndDiagnostics(t *testing.T) {
	f := newFixture(t, config.ModeUIKit, map[string]string{
		"home.json": `{"type":"View","child":[
			{"type":"Button","id":"login","onClick":"onLogin"},
			{"type":"Button","id":"help","onClick":"onHelp"}
		]}`,
	})
	writeFile(t, filepath.Join(f.root, "Scripts", "home.ts"), "export function onLogin() {}\n")

	snap := f.build(t)
	require.NotEmpty(t, f.eng.Store().ByKind(facts.KindScript))

	var titles []string
	for _, in := range snap.Insights {
		titles = append(titles, in.Title)
	}
	assert.Contains(t, titles, "Undeclared handler onHelp")
	assert.NotContains(t, titles, "Undeclared handler onLogin")

	summary, err := f.eng.GetArtifact("summary.md")
	require.NoError(t, err)
	assert.Contains(t, string(summary), "Undeclared handler onHelp")
}

func TestGetArtifact(t *testing.T) {
	f := newFixture(t, config.ModeUIKit, map[string]string{"a.json": `{"type":"Label"}`})
	_, err := f.eng.GetArtifact(FactsFile)
	assert.Error(t, err, "no build yet")

	f.build(t)
	data, err := f.eng.GetArtifact("Bindings/ABinding.swift")
	require.NoError(t, err)
	assert.Contains(t, string(data), "class ABinding: Binding")

	meta, err := f.eng.GetArtifact(MetaFile)
	require.NoError(t, err)
	assert.Contains(t, string(meta), `"layouts": 1`)

	_, err = f.eng.GetArtifact("nope")
	assert.Error(t, err)
}

func TestLayoutPath(t *testing.T) {
	f := newFixture(t, config.ModeUIKit, map[string]string{
		"home.json":           `{}`,
		"common/_header.json": `{}`,
	})
	for _, name := range []string{"home", "home.json", "common/header", "common/_header.json"} {
		p, err := f.eng.LayoutPath(name)
		require.NoError(t, err, name)
		assert.FileExists(t, p)
	}
	_, err := f.eng.LayoutPath("missing")
	assert.Error(t, err)

	p, _ := f.eng.LayoutPath("common/header")
	res, err := f.eng.Analyzer().Analyze(p)
	require.NoError(t, err)
	assert.Equal(t, "common/header", analyzer.LayoutKey(res.Rel))
}

// TestBuild_ConcurrentCallsSerialized verifies that the engine mutex keeps
// concurrent builds from corrupting shared state.
func TestBuild_ConcurrentCallsSerialized(t *testing.T) {
	f := newFixture(t, config.ModeUIKit, map[string]string{"a.json": `{"type":"Label","text":"A"}`})

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = f.eng.Build(context.Background(), BuildOptions{})
		}(i)
	}
	wg.Wait()
	assert.NoError(t, errors.Join(errs...))
	assert.NotNil(t, f.eng.Snapshot())
}

func TestBuild_MissingLayoutsDir(t *testing.T) {
	eng, err := New(config.Default(), t.TempDir())
	require.NoError(t, err)
	_, err = eng.Build(context.Background(), BuildOptions{})
	assert.Error(t, err)
}

func TestLoadPrevious(t *testing.T) {
	f := newFixture(t, config.ModeUIKit, map[string]string{
		"home.json": `{"type":"View","child":[{"include":"row"}]}`,
		"_row.json": `{"type":"Label","id":"row_label"}`,
	})
	f.build(t)

	eng, err := New(f.eng.Config(), f.root)
	require.NoError(t, err)
	assert.Positive(t, eng.LoadPrevious())
	require.NotNil(t, eng.Store().Graph())
	deps, _ := eng.Store().Graph().Dependents("row", 0)
	require.Len(t, deps, 1)
	assert.Equal(t, "home", deps[0].Name)

	empty, err := New(config.Default(), t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, empty.LoadPrevious())
	assert.Nil(t, empty.Store().Graph())
}
