package facts

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// --- helpers ---

func makeLayout(name, file string, includes ...string) Fact {
	f := Fact{Kind: KindLayout, Name: name, File: file}
	for _, inc := range includes {
		f.Relations = append(f.Relations, Relation{Kind: RelIncludes, Target: inc})
	}
	return f
}

func makeView(layout, id, typ string) Fact {
	return Fact{
		Kind:  KindView,
		Name:  layout + "#" + id,
		File:  layout + ".json",
		Props: map[string]any{"type": typ, "id": id},
	}
}

// --- tests ---

func TestAdd_IndexesAllThreeMaps(t *testing.T) {
	s := NewStore()
	s.Add(makeLayout("home", "home.json"))

	if got := s.ByKind(KindLayout); len(got) != 1 || got[0].Name != "home" {
		t.Errorf("ByKind(layout) = %v, want [home]", got)
	}
	if got := s.ByFile("home.json"); len(got) != 1 || got[0].Name != "home" {
		t.Errorf("ByFile(home.json) = %v, want [home]", got)
	}
	if got := s.ByName("home"); len(got) != 1 || got[0].Name != "home" {
		t.Errorf("ByName(home) = %v, want [home]", got)
	}
}

func TestAdd_EmptyFileAndNameNotIndexed(t *testing.T) {
	s := NewStore()
	s.Add(Fact{Kind: KindData})

	if got := s.ByKind(KindData); len(got) != 1 {
		t.Fatalf("ByKind(data) = %d facts, want 1", len(got))
	}
	if got := s.ByFile(""); len(got) != 0 {
		t.Errorf("ByFile('') = %d facts, want 0", len(got))
	}
	if got := s.ByName(""); len(got) != 0 {
		t.Errorf("ByName('') = %d facts, want 0", len(got))
	}
}

func TestReplaceFile(t *testing.T) {
	s := NewStore()
	s.Add(
		makeLayout("home", "home.json", "header"),
		makeView("home", "title", "Label"),
		makeLayout("header", "_header.json"),
	)
	s.BuildGraph()

	s.ReplaceFile("home.json", makeLayout("home", "home.json"), makeView("home", "subtitle", "Label"))

	if s.Graph() != nil {
		t.Error("graph should be invalidated by ReplaceFile")
	}
	if got := s.ByName("home#title"); len(got) != 0 {
		t.Errorf("stale view still present: %v", got)
	}
	if got := s.ByName("home#subtitle"); len(got) != 1 {
		t.Errorf("ByName(home#subtitle) = %d facts, want 1", len(got))
	}
	if got := s.ByFile("_header.json"); len(got) != 1 {
		t.Errorf("other files must be kept, got %d facts for _header.json", len(got))
	}
	if s.Count() != 3 {
		t.Errorf("Count = %d, want 3", s.Count())
	}
}

func TestFiles_Sorted(t *testing.T) {
	s := NewStore()
	s.Add(makeLayout("b", "b.json"), makeLayout("a", "a.json"), makeView("a", "x", "View"))
	got := strings.Join(s.Files(), ",")
	if got != "a.json,b.json" {
		t.Errorf("Files = %s, want a.json,b.json", got)
	}
}

func TestFilter_Match(t *testing.T) {
	s := NewStore()
	s.Add(
		makeLayout("home", "home.json", "header"),
		makeLayout("settings", "settings.json"),
		makeView("home", "title", "Label"),
	)

	tests := []struct {
		name string
		q    Filter
		want int
	}{
		{"all", Filter{}, 3},
		{"by kind", Filter{Kind: KindLayout}, 2},
		{"by file", Filter{File: "home.json"}, 2},
		{"name substring", Filter{Name: "set"}, 1},
		{"relation", Filter{Relation: RelIncludes}, 1},
		{"prop present", Filter{Prop: "type"}, 1},
		{"prop value mismatch", Filter{Prop: "type", PropValue: "Button"}, 0},
		{"no match", Filter{Kind: KindHandler}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total := s.Find(tt.q)
			if len(got) != tt.want || total != tt.want {
				t.Errorf("Find = %d facts (total %d), want %d", len(got), total, tt.want)
			}
		})
	}
}

func TestFind_Paging(t *testing.T) {
	s := NewStore()
	for i := 0; i < 10; i++ {
		s.Add(makeView("home", fmt.Sprintf("v%d", i), "Label"))
	}
	s.Add(makeView("common/header", "logo", "Image"))

	got, total := s.Find(Filter{Kind: KindView, Prop: "type", PropValue: "Label", Limit: 3, Offset: 2})
	if total != 10 {
		t.Errorf("total = %d, want 10", total)
	}
	if len(got) != 3 || got[0].Name != "home#v2" {
		t.Errorf("page = %v, want 3 facts starting at home#v2", got)
	}

	got, total = s.Find(Filter{FilePrefix: "common/"})
	if total != 1 || got[0].Name != "common/header#logo" {
		t.Errorf("prefix query = %v (%d)", got, total)
	}

	if got, total = s.Find(Filter{Offset: 50}); got != nil || total != 11 {
		t.Errorf("offset past end = %v (%d)", got, total)
	}
}

func TestByRelation(t *testing.T) {
	s := NewStore()
	s.Add(
		makeLayout("home", "home.json", "header"),
		makeLayout("detail", "detail.json", "header", "footer"),
		makeLayout("header", "_header.json"),
	)
	if got := s.ByRelation(RelIncludes); len(got) != 2 {
		t.Fatalf("ByRelation(includes) = %d facts, want 2", len(got))
	}
	if got := s.ByRelation(RelDeclares); len(got) != 0 {
		t.Errorf("ByRelation(declares) = %d facts, want 0", len(got))
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	s := NewStore()
	s.Add(makeLayout("home", "home.json", "header"), makeView("home", "title", "Label"))

	var buf bytes.Buffer
	if err := s.WriteJSONL(&buf); err != nil {
		t.Fatalf("WriteJSONL: %v", err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 2 {
		t.Errorf("wrote %d lines, want 2", lines)
	}

	s2 := NewStore()
	if err := s2.ReadJSONL(&buf); err != nil {
		t.Fatalf("ReadJSONL: %v", err)
	}
	if s2.Count() != 2 {
		t.Fatalf("Count = %d, want 2", s2.Count())
	}
	if got := s2.ByName("home"); len(got) != 1 || got[0].Relations[0].Target != "header" {
		t.Errorf("relations not preserved: %v", got)
	}
}

func TestJSONLFile(t *testing.T) {
	path := t.TempDir() + "/facts.jsonl"
	s := NewStore()
	s.Add(makeLayout("home", "home.json"))
	if err := s.WriteJSONLFile(path); err != nil {
		t.Fatalf("WriteJSONLFile: %v", err)
	}
	s2 := NewStore()
	if err := s2.ReadJSONLFile(path); err != nil {
		t.Fatalf("ReadJSONLFile: %v", err)
	}
	if s2.Count() != 1 {
		t.Errorf("Count = %d, want 1", s2.Count())
	}
	if err := s2.ReadJSONLFile(path + ".missing"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadJSONL_BadLine(t *testing.T) {
	s := NewStore()
	err := s.ReadJSONL(strings.NewReader("{\"kind\":\"layout\",\"name\":\"a\"}\nnot json\n"))
	if err == nil {
		t.Fatal("expected decode error")
	}
	if s.Count() != 1 {
		t.Errorf("facts before the bad line should be kept, Count = %d", s.Count())
	}
}

func TestClear(t *testing.T) {
	s := NewStore()
	s.Add(makeLayout("home", "home.json"))
	s.BuildGraph()
	s.Clear()
	if s.Count() != 0 || s.Graph() != nil || len(s.ByKind(KindLayout)) != 0 {
		t.Error("Clear should drop facts, indexes and graph")
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Add(makeView("home", fmt.Sprintf("v%d", i), "Label"))
			_ = s.ByKind(KindView)
			_, _ = s.Find(Filter{Kind: KindView})
		}(i)
	}
	wg.Wait()
	if s.Count() != 8 {
		t.Errorf("Count = %d, want 8", s.Count())
	}
}

func TestLayouts(t *testing.T) {
	s := NewStore()
	s.Add(makeLayout("home", "home.json"), makeView("home", "a", "View"), makeView("home", "b", "View"))
	if len(s.Layouts()) != 1 {
		t.Errorf("Layouts = %d, want 1", len(s.Layouts()))
	}
}
