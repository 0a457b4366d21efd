// Package mcpserver assembles the MCP stdio surface from the dispatch
// table. Tool schemas and handlers both derive from the same specs, so
// the surface cannot drift from the router.
package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/plcops/twincat-mcp/internal/router"
	"github.com/plcops/twincat-mcp/internal/toolset"
)

const serverName = "twincat-mcp"

// Server wraps the MCP protocol server.
type Server struct {
	mcp *server.MCPServer
}

func New(r *router.Router, tools *toolset.Set, version string) *Server {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	for _, spec := range tools.All() {
		s.AddTool(buildTool(spec), handler(r, spec.Name))
	}
	return &Server{mcp: s}
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCP exposes the underlying protocol server, for in-process tests.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

func buildTool(spec toolset.Spec) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(spec.Description)}
	for _, arg := range spec.Args {
		opts = append(opts, argOption(arg))
	}
	return mcp.NewTool(spec.Name, opts...)
}

func argOption(arg toolset.ArgSpec) mcp.ToolOption {
	var props []mcp.PropertyOption
	if arg.Description != "" {
		props = append(props, mcp.Description(arg.Description))
	}
	if arg.Required {
		props = append(props, mcp.Required())
	}

	switch arg.Type {
	case toolset.ArgBoolean:
		if def, ok := arg.Default.(bool); ok {
			props = append(props, mcp.DefaultBool(def))
		}
		return mcp.WithBoolean(arg.Name, props...)
	case toolset.ArgNumber:
		if def, ok := arg.Default.(float64); ok {
			props = append(props, mcp.DefaultNumber(def))
		}
		return mcp.WithNumber(arg.Name, props...)
	default:
		if def, ok := arg.Default.(string); ok {
			props = append(props, mcp.DefaultString(def))
		}
		return mcp.WithString(arg.Name, props...)
	}
}

// handler adapts one tool to the router. Guard denials and execution
// failures come back as error-flagged results with actionable text;
// a Go error would surface as a protocol fault, which nothing here
// warrants.
func handler(r *router.Router, tool string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out := r.Dispatch(ctx, tool, req.GetArguments())
		if out.Denied || (out.Exec != nil && out.Exec.Failed()) {
			return mcp.NewToolResultError(out.Text), nil
		}
		return mcp.NewToolResultText(out.Text), nil
	}
}
