// Package summary renders a compact markdown overview of a build: the layout
// tree, shared fragments, handlers and diagnostics, trimmed to a token
// budget so it can be handed to an assistant as context.
package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dejo1307/sjui/internal/facts"
)

// FileName is the name of the rendered artifact.
const FileName = "summary.md"

// Renderer produces the build summary.
type Renderer struct {
	maxTokens int
}

// New creates a Renderer with the given token budget.
func New(maxTokens int) *Renderer {
	if maxTokens <= 0 {
		maxTokens = 8000
	}
	return &Renderer{maxTokens: maxTokens}
}

func (r *Renderer) Name() string {
	return "summary"
}

type section struct {
	name    string
	content string
}

// Render produces summary.md. Sections are ordered by priority; lower
// priority sections are cut first when the budget is tight.
func (r *Renderer) Render(ctx context.Context, snapshot *facts.Snapshot) ([]facts.Artifact, error) {
	sections := []section{
		{"Build", r.renderBuild(snapshot)},
		{"Diagnostics", r.renderDiagnostics(snapshot)},
		{"Layouts", r.renderLayouts(snapshot)},
		{"Shared Fragments", r.renderFragments(snapshot)},
		{"Handlers", r.renderHandlers(snapshot)},
		{"Meta", r.renderMeta(snapshot)},
	}

	header := "# Layout Build Summary\n\n"
	maxChars := r.maxTokens * 4 // 1 token ~= 4 chars
	remaining := maxChars - len(header)

	var sb strings.Builder
	sb.WriteString(header)

	for i, sec := range sections {
		if sec.content == "" {
			continue
		}
		if len(sec.content) <= remaining {
			sb.WriteString(sec.content)
			remaining -= len(sec.content)
			continue
		}
		if remaining > 200 {
			sb.WriteString(sec.content[:remaining-100])
			fmt.Fprintf(&sb, "\n\n---\n*[Truncated in: %s]*\n", sec.name)
			break
		}
		var omitted []string
		for _, s := range sections[i:] {
			if s.content != "" {
				omitted = append(omitted, s.name)
			}
		}
		fmt.Fprintf(&sb, "\n\n---\n*[Omitted: %s]*\n", strings.Join(omitted, ", "))
		break
	}

	return []facts.Artifact{{
		Name:      FileName,
		Content:   []byte(sb.String()),
		Type:      "text/markdown",
		Generator: r.Name(),
	}}, nil
}

func (r *Renderer) renderBuild(snapshot *facts.Snapshot) string {
	m := snapshot.Meta
	var sb strings.Builder
	sb.WriteString("## Build\n\n")
	fmt.Fprintf(&sb, "- Layouts: %d (%d up to date)\n", m.Layouts, m.Skipped)
	fmt.Fprintf(&sb, "- Files written: %d\n", m.Writes)
	if len(m.Generated) > 0 {
		fmt.Fprintf(&sb, "- Regenerated: %s\n", strings.Join(m.Generated, ", "))
	}
	if len(m.Removed) > 0 {
		fmt.Fprintf(&sb, "- Removed: %s\n", strings.Join(m.Removed, ", "))
	}
	if len(m.Failed) > 0 {
		sb.WriteString("\n**Failed:**\n")
		for _, f := range m.Failed {
			fmt.Fprintf(&sb, "- `%s`: %s\n", f.File, f.Error)
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

func (r *Renderer) renderDiagnostics(snapshot *facts.Snapshot) string {
	if len(snapshot.Insights) == 0 {
		return ""
	}
	insights := append([]facts.Insight(nil), snapshot.Insights...)
	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Confidence > insights[j].Confidence
	})

	var sb strings.Builder
	sb.WriteString("## Diagnostics\n\n")
	for _, in := range insights {
		fmt.Fprintf(&sb, "- **%s** (confidence: %.0f%%): %s\n", in.Title, in.Confidence*100, in.Description)
	}
	sb.WriteString("\n")
	return sb.String()
}

func (r *Renderer) renderLayouts(snapshot *facts.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("## Layouts\n\n")

	layouts := filterByKind(snapshot.Facts, facts.KindLayout)
	if len(layouts) == 0 {
		sb.WriteString("_No layouts found._\n\n")
		return sb.String()
	}
	sort.Slice(layouts, func(i, j int) bool {
		return layouts[i].Name < layouts[j].Name
	})

	sb.WriteString("| Layout | Binding | Views | Data | Includes |\n")
	sb.WriteString("|--------|---------|-------|------|----------|\n")
	for _, l := range layouts {
		class, _ := l.Props["binding_class"].(string)
		var includes []string
		for _, rel := range l.Relations {
			if rel.Kind == facts.RelIncludes {
				includes = append(includes, rel.Target)
			}
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %d | %d | %s |\n",
			l.Name, class, intProp(l.Props, "views"), intProp(l.Props, "data_fields"), strings.Join(includes, ", "))
	}
	sb.WriteString("\n")
	return sb.String()
}

// renderFragments lists fragments by how many layouts include them.
func (r *Renderer) renderFragments(snapshot *facts.Snapshot) string {
	fanIn := make(map[string]int)
	for _, f := range snapshot.Facts {
		if f.Kind != facts.KindLayout {
			continue
		}
		for _, rel := range f.Relations {
			if rel.Kind == facts.RelIncludes {
				fanIn[rel.Target]++
			}
		}
	}
	if len(fanIn) == 0 {
		return ""
	}

	type frag struct {
		name  string
		count int
	}
	var frags []frag
	for name, n := range fanIn {
		frags = append(frags, frag{name, n})
	}
	sort.Slice(frags, func(i, j int) bool {
		if frags[i].count != frags[j].count {
			return frags[i].count > frags[j].count
		}
		return frags[i].name < frags[j].name
	})
	if len(frags) > 15 {
		frags = frags[:15]
	}

	var sb strings.Builder
	sb.WriteString("## Shared Fragments\n\n")
	sb.WriteString("| Fragment | Included by |\n")
	sb.WriteString("|----------|-------------|\n")
	for _, f := range frags {
		fmt.Fprintf(&sb, "| `%s` | %d |\n", f.name, f.count)
	}
	sb.WriteString("\n")
	return sb.String()
}

func (r *Renderer) renderHandlers(snapshot *facts.Snapshot) string {
	handlers := filterByKind(snapshot.Facts, facts.KindHandler)
	if len(handlers) == 0 {
		return ""
	}
	byName := make(map[string][]string)
	for _, h := range handlers {
		name, _ := h.Props["handler"].(string)
		byName[name] = append(byName[name], h.File)
	}
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("## Handlers\n\n")
	for _, n := range names {
		files := byName[n]
		sort.Strings(files)
		fmt.Fprintf(&sb, "- `%s` in %s\n", n, strings.Join(files, ", "))
	}
	sb.WriteString("\n")
	return sb.String()
}

func (r *Renderer) renderMeta(snapshot *facts.Snapshot) string {
	return fmt.Sprintf("---\n\n*Generated at %s in %s. %d facts, %d insights.*\n",
		snapshot.Meta.GeneratedAt, snapshot.Meta.Duration,
		snapshot.Meta.FactCount, snapshot.Meta.InsightCount)
}

func filterByKind(ff []facts.Fact, kind string) []facts.Fact {
	var result []facts.Fact
	for _, f := range ff {
		if f.Kind == kind {
			result = append(result, f)
		}
	}
	return result
}

// intProp reads a numeric prop that may have come back from JSON as float64.
func intProp(props map[string]any, key string) int {
	switch v := props[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
