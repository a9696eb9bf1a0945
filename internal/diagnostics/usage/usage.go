// Package usage cross-checks what layouts reference against what is
// declared: event handlers against script functions, and data fields
// against the views that bind them.
package usage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dejo1307/sjui/internal/facts"
)

// UndeclaredHandlers reports event handlers named in layouts that no script
// declares. It stays silent when the project has no scripts at all.
type UndeclaredHandlers struct{}

// NewUndeclaredHandlers creates the diagnostic.
func NewUndeclaredHandlers() *UndeclaredHandlers {
	return &UndeclaredHandlers{}
}

func (d *UndeclaredHandlers) Name() string {
	return "undeclared_handlers"
}

func (d *UndeclaredHandlers) Explain(ctx context.Context, store *facts.Store) ([]facts.Insight, error) {
	scripts := store.ByKind(facts.KindScript)
	if len(scripts) == 0 {
		return nil, nil
	}
	declared := make(map[string]bool, len(scripts))
	for _, s := range scripts {
		if fn, ok := s.Props["function"].(string); ok {
			declared[fn] = true
		}
	}

	missing := make(map[string][]facts.Evidence)
	for _, h := range store.ByKind(facts.KindHandler) {
		name, _ := h.Props["handler"].(string)
		if name == "" || declared[name] {
			continue
		}
		view, _ := h.Props["view"].(string)
		event, _ := h.Props["event"].(string)
		missing[name] = append(missing[name], facts.Evidence{
			File:   h.File,
			Symbol: view,
			Fact:   h.Name,
			Detail: fmt.Sprintf("%s on %q", event, view),
		})
	}

	names := sortedKeys(missing)
	var insights []facts.Insight
	for _, name := range names {
		insights = append(insights, facts.Insight{
			Title:       fmt.Sprintf("Undeclared handler %s", name),
			Description: fmt.Sprintf("%d layout event(s) call %q but no script declares a function with that name.", len(missing[name]), name),
			Confidence:  0.8,
			Evidence:    missing[name],
			Actions: []string{
				fmt.Sprintf("Declare function %s in a script under Scripts/", name),
				"Check the handler name in the layout for typos",
			},
		})
	}
	return insights, nil
}

// UnusedData reports data fields that no view binds and no including layout
// feeds through shared_data.
type UnusedData struct{}

// NewUnusedData creates the diagnostic.
func NewUnusedData() *UnusedData {
	return &UnusedData{}
}

func (d *UnusedData) Name() string {
	return "unused_data"
}

func (d *UnusedData) Explain(ctx context.Context, store *facts.Store) ([]facts.Insight, error) {
	used := make(map[string]bool)
	for _, kind := range []string{facts.RelBinds, facts.RelShares} {
		for _, f := range store.ByRelation(kind) {
			for _, r := range f.Relations {
				if r.Kind == kind {
					used[r.Target] = true
				}
			}
		}
	}

	byFile := make(map[string][]facts.Evidence)
	for _, f := range store.ByKind(facts.KindData) {
		if used[f.Name] {
			continue
		}
		field := f.Name[strings.LastIndex(f.Name, ".")+1:]
		byFile[f.File] = append(byFile[f.File], facts.Evidence{
			File:   f.File,
			Symbol: field,
			Fact:   f.Name,
		})
	}

	var insights []facts.Insight
	for _, file := range sortedKeys(byFile) {
		ev := byFile[file]
		fields := make([]string, 0, len(ev))
		for _, e := range ev {
			fields = append(fields, e.Symbol)
		}
		insights = append(insights, facts.Insight{
			Title:       fmt.Sprintf("Unused data in %s", file),
			Description: fmt.Sprintf("Declared but never bound: %s.", strings.Join(fields, ", ")),
			Confidence:  0.6,
			Evidence:    ev,
			Actions:     []string{"Remove the declarations or bind them with @{...}"},
		})
	}
	return insights, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
