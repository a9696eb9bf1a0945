package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dejo1307/sjui/internal/analyzer"
	"github.com/dejo1307/sjui/internal/dynamic"
	"github.com/dejo1307/sjui/internal/engine"
	"github.com/dejo1307/sjui/internal/facts"
	"github.com/dejo1307/sjui/internal/mapping"
)

// buildLayoutsArgs are the arguments for the build_layouts tool.
type buildLayoutsArgs struct {
	Force bool `json:"force,omitempty" jsonschema:"Regenerate every layout even when the build cache says it is up to date"`
}

// analyzeLayoutArgs are the arguments for the analyze_layout tool.
type analyzeLayoutArgs struct {
	Layout string `json:"layout" jsonschema:"Layout name or path relative to the layouts directory, e.g. home or common/_header.json"`
}

// queryFactsArgs are the arguments for the query_facts tool.
type queryFactsArgs struct {
	Kind       string `json:"kind,omitempty" jsonschema:"Filter by fact kind: layout, view, data, handler or script_handler"`
	File       string `json:"file,omitempty" jsonschema:"Filter by layout or script file path"`
	FilePrefix string `json:"file_prefix,omitempty" jsonschema:"Filter by file path prefix, e.g. common/"`
	Name       string `json:"name,omitempty" jsonschema:"Filter by name using substring match"`
	Relation   string `json:"relation,omitempty" jsonschema:"Filter by relation kind: includes, declares, handles, binds or shares"`
	Prop       string `json:"prop,omitempty" jsonschema:"Filter by property name (e.g. binding_class, class, event)"`
	PropValue  string `json:"prop_value,omitempty" jsonschema:"Filter by property value (requires prop to be set)"`
	Offset     int    `json:"offset,omitempty" jsonschema:"Number of results to skip"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Maximum results to return (default 100, max 500)"`
}

// queryLayoutArgs are the arguments for the query_layout tool.
type queryLayoutArgs struct {
	Layout string `json:"layout" jsonschema:"Layout name or path relative to the layouts directory"`
	Path   string `json:"path" jsonschema:"JSONPath expression, e.g. $..[?(@.type == 'Button')].id"`
}

// includeImpactArgs are the arguments for the include_impact tool.
type includeImpactArgs struct {
	Layout   string `json:"layout" jsonschema:"Layout key of the changed layout or fragment, e.g. common/header"`
	MaxDepth int    `json:"max_depth,omitempty" jsonschema:"Maximum include depth to follow (default 5, max 20)"`
}

// previewLayoutArgs are the arguments for the preview_layout tool.
type previewLayoutArgs struct {
	Layout string         `json:"layout" jsonschema:"Layout name or path relative to the layouts directory"`
	Data   map[string]any `json:"data,omitempty" jsonschema:"Values for the layout's data fields"`
}

// listScriptHandlersArgs are the arguments for the list_script_handlers tool.
type listScriptHandlersArgs struct {
	File string `json:"file,omitempty" jsonschema:"Script file relative to the project source root"`
}

func (s *Server) buildLayouts(ctx context.Context, req *mcp.CallToolRequest, args buildLayoutsArgs) (*mcp.CallToolResult, any, error) {
	snapshot, err := s.eng.Build(ctx, engine.BuildOptions{Force: args.Force})
	if err != nil {
		return errorResult(fmt.Sprintf("build failed: %v", err)), nil, nil
	}
	m := snapshot.Meta

	var sb strings.Builder
	if m.OK() {
		sb.WriteString("Build succeeded.\n\n")
	} else {
		sb.WriteString("Build finished with failures.\n\n")
	}
	fmt.Fprintf(&sb, "- Layouts: %d\n", m.Layouts)
	fmt.Fprintf(&sb, "- Regenerated: %d\n", len(m.Generated))
	fmt.Fprintf(&sb, "- Up to date: %d\n", m.Skipped)
	fmt.Fprintf(&sb, "- Removed: %d\n", len(m.Removed))
	fmt.Fprintf(&sb, "- Files written: %d\n", m.Writes)
	fmt.Fprintf(&sb, "- Insights: %d\n", m.InsightCount)
	fmt.Fprintf(&sb, "- Duration: %s\n", m.Duration)
	if len(m.Failed) > 0 {
		sb.WriteString("\nFailed:\n")
		for _, f := range m.Failed {
			fmt.Fprintf(&sb, "- %s: %s\n", f.File, f.Error)
		}
	}
	sb.WriteString("\nUse the sjui://build/summary resource to read the full report.")

	res := textResult(sb.String())
	res.IsError = !m.OK()
	return res, nil, nil
}

// layoutAnalysis is the JSON shape returned by analyze_layout.
type layoutAnalysis struct {
	File            string              `json:"file"`
	BindingClass    string              `json:"binding_class"`
	DataSets        []map[string]any    `json:"data_sets,omitempty"`
	WeakVars        []string            `json:"weak_vars,omitempty"`
	PartialBindings []partialSummary    `json:"partial_bindings,omitempty"`
	IncludingFiles  map[string][]string `json:"including_files,omitempty"`
	EventHandlers   []string            `json:"event_handlers,omitempty"`
	UnknownTypes    []string            `json:"unknown_types,omitempty"`
	Warnings        []string            `json:"warnings,omitempty"`
}

type partialSummary struct {
	Name       string            `json:"name"`
	Class      string            `json:"class"`
	File       string            `json:"file"`
	SharedData map[string]string `json:"shared_data,omitempty"`
}

func (s *Server) analyze(name string) (*analyzer.Result, error) {
	if name == "" {
		return nil, fmt.Errorf("layout is required")
	}
	p, err := s.eng.LayoutPath(name)
	if err != nil {
		return nil, err
	}
	return s.eng.Analyzer().Analyze(p)
}

func (s *Server) analyzeLayout(ctx context.Context, req *mcp.CallToolRequest, args analyzeLayoutArgs) (*mcp.CallToolResult, any, error) {
	res, err := s.analyze(args.Layout)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}

	out := layoutAnalysis{
		File:           res.Rel,
		BindingClass:   bindingClass(res),
		WeakVars:       res.WeakVarsContent,
		IncludingFiles: res.IncludingFiles,
		EventHandlers:  res.HandlerNames(),
		UnknownTypes:   res.UnknownTypes,
		Warnings:       res.Warnings,
	}
	for _, d := range res.DataSets {
		out.DataSets = append(out.DataSets, d.Raw())
	}
	for _, p := range res.PartialBindings {
		out.PartialBindings = append(out.PartialBindings, partialSummary{
			Name:       p.Name,
			Class:      p.Class,
			File:       p.Rel,
			SharedData: p.SharedDataBindings,
		})
	}
	return jsonResult(out)
}

func bindingClass(res *analyzer.Result) string {
	for _, f := range res.Facts() {
		if f.Kind == facts.KindLayout {
			if c, ok := f.Props["binding_class"].(string); ok {
				return c
			}
		}
	}
	return ""
}

func (s *Server) queryFacts(ctx context.Context, req *mcp.CallToolRequest, args queryFactsArgs) (*mcp.CallToolResult, any, error) {
	store := s.eng.Store()
	if store.Count() == 0 {
		return errorResult("No facts available. Run build_layouts first."), nil, nil
	}

	results, total := store.Find(facts.Filter{
		Kind:       args.Kind,
		File:       args.File,
		FilePrefix: args.FilePrefix,
		Name:       args.Name,
		Relation:   args.Relation,
		Prop:       args.Prop,
		PropValue:  args.PropValue,
		Offset:     args.Offset,
		Limit:      args.Limit,
	})
	if results == nil {
		results = []facts.Fact{}
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to marshal results: %v", err)), nil, nil
	}
	text := string(data)
	if shown := args.Offset + len(results); shown < total {
		text += fmt.Sprintf("\n\n... (showing %d-%d of %d results, use offset to page)", args.Offset+1, shown, total)
	}
	return textResult(text), nil, nil
}

func (s *Server) queryLayout(ctx context.Context, req *mcp.CallToolRequest, args queryLayoutArgs) (*mcp.CallToolResult, any, error) {
	if args.Path == "" {
		return errorResult("path is required"), nil, nil
	}
	res, err := s.analyze(args.Layout)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}
	matches, err := res.Query(args.Path)
	if err != nil {
		return errorResult(err.Error()), nil, nil
	}
	if matches == nil {
		matches = []any{}
	}
	return jsonResult(matches)
}

func (s *Server) includeImpact(ctx context.Context, req *mcp.CallToolRequest, args includeImpactArgs) (*mcp.CallToolResult, any, error) {
	g := s.eng.Store().Graph()
	if g == nil {
		return errorResult("No include graph available. Run build_layouts first."), nil, nil
	}
	target := analyzer.LayoutKey(args.Layout)
	if len(s.eng.Store().ByName(target)) == 0 {
		return errorResult(fmt.Sprintf("unknown layout %q", target)), nil, nil
	}

	affected, truncated := g.Dependents(target, args.MaxDepth)
	return jsonResult(map[string]any{
		"target":    target,
		"affected":  affected,
		"truncated": truncated,
	})
}

func (s *Server) previewLayout(ctx context.Context, req *mcp.CallToolRequest, args previewLayoutArgs) (*mcp.CallToolResult, any, error) {
	if args.Layout == "" {
		return errorResult("layout is required"), nil, nil
	}
	cache := dynamic.NewLayoutCache(s.eng.LayoutsDir())
	loader := dynamic.NewLoader(cache, mapping.NewColorResolver(s.cfg.Colors))
	builder := dynamic.NewBuilder(dynamic.NewEventRegistry(nil))

	vm := dynamic.NewViewModel()
	for k, v := range args.Data {
		vm.SetData(k, v)
	}
	view, err := builder.Render(loader, args.Layout, vm)
	if err != nil {
		return errorResult(fmt.Sprintf("preview failed: %v", err)), nil, nil
	}
	return jsonResult(view)
}

func (s *Server) listScriptHandlers(ctx context.Context, req *mcp.CallToolRequest, args listScriptHandlersArgs) (*mcp.CallToolResult, any, error) {
	var handlers []facts.Fact
	if args.File != "" {
		for _, f := range s.eng.Store().ByFile(args.File) {
			if f.Kind == facts.KindScript {
				handlers = append(handlers, f)
			}
		}
	} else {
		handlers = s.eng.Store().ByKind(facts.KindScript)
	}
	if len(handlers) == 0 {
		return textResult("No script handlers found."), nil, nil
	}
	sort.Slice(handlers, func(i, j int) bool {
		if handlers[i].File != handlers[j].File {
			return handlers[i].File < handlers[j].File
		}
		return handlers[i].Line < handlers[j].Line
	})

	var sb strings.Builder
	file := ""
	for _, h := range handlers {
		if h.File != file {
			if file != "" {
				sb.WriteString("\n")
			}
			file = h.File
			fmt.Fprintf(&sb, "## %s\n", file)
		}
		fn, _ := h.Props["function"].(string)
		kind, _ := h.Props["kind"].(string)
		if class, ok := h.Props["class"].(string); ok && class != "" {
			fn = class + "." + fn
		}
		exported := ""
		if e, _ := h.Props["exported"].(bool); e {
			exported = ", exported"
		}
		fmt.Fprintf(&sb, "- `%s` (%s%s) line %d\n", fn, kind, exported, h.Line)
	}
	return textResult(sb.String()), nil, nil
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("failed to marshal result: %v", err)), nil, nil
	}
	return textResult(string(data)), nil, nil
}
