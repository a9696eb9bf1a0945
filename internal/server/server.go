package server

import (
	"context"
	"fmt"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dejo1307/sjui/internal/config"
	"github.com/dejo1307/sjui/internal/engine"
)

// Server wraps the MCP server and connects it to the build engine.
type Server struct {
	mcp *mcp.Server
	eng *engine.Engine
	cfg *config.Config
}

// New creates a new MCP server wired to the given engine.
func New(eng *engine.Engine, cfg *config.Config) (*Server, error) {
	s := &Server{
		eng: eng,
		cfg: cfg,
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "sjui",
		Version: "0.1.0",
	}, nil)

	s.mcp = mcpServer
	s.registerResources()
	s.registerTools()

	return s, nil
}

// Run starts the MCP server on the stdio transport.
func (s *Server) Run(ctx context.Context) error {
	log.Println("[server] starting MCP server on stdio transport")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

type resourceSpec struct {
	uri, name, description, mime, artifact string
}

var resources = []resourceSpec{
	{"sjui://build/summary", "Build Summary", "Markdown summary of the last layout build", "text/markdown", "summary.md"},
	{"sjui://build/facts", "Layout Facts", "Facts about every layout, view, data field and handler in JSONL format", "application/jsonl", engine.FactsFile},
	{"sjui://build/insights", "Layout Diagnostics", "Diagnostics from the last build", "application/json", engine.InsightsFile},
	{"sjui://build/meta", "Build Metadata", "Metadata about the last build run", "application/json", engine.MetaFile},
}

// registerResources exposes the build reports as MCP resources.
func (s *Server) registerResources() {
	for _, r := range resources {
		s.mcp.AddResource(&mcp.Resource{
			URI:         r.uri,
			Name:        r.name,
			Description: r.description,
			MIMEType:    r.mime,
		}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			content, err := s.eng.GetArtifact(r.artifact)
			if err != nil {
				return nil, fmt.Errorf("no build available: %w (run build_layouts first)", err)
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: req.Params.URI, Text: string(content), MIMEType: r.mime},
				},
			}, nil
		})
	}
}

// registerTools adds the layout tools.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "build_layouts",
		Description: "Run the layout build: analyze changed layouts, regenerate Swift bindings and SwiftUI views, update the project and report diagnostics.",
	}, s.buildLayouts)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_layout",
		Description: "Analyze one layout without generating code. Returns data fields, view variables, partial bindings, includes, event handlers and warnings.",
	}, s.analyzeLayout)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "query_facts",
		Description: "Query layout facts by kind, file, name, relation or property. Returns matching facts as JSON.",
	}, s.queryFacts)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "query_layout",
		Description: "Evaluate a JSONPath expression against a layout with its includes resolved.",
	}, s.queryLayout)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "include_impact",
		Description: "List the layouts affected, directly or transitively, by a change to the given layout or fragment.",
	}, s.includeImpact)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "preview_layout",
		Description: "Interpret a layout with the dynamic runtime and return the resulting SwiftUI view tree as JSON.",
	}, s.previewLayout)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_script_handlers",
		Description: "List handler functions found in hot-reload scripts, optionally filtered by script file.",
	}, s.listScriptHandlers)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
		IsError: true,
	}
}
