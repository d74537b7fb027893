package mcpserver

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wailsapp/wails/v2/pkg/logger"

	"decknotes/internal/logging"
	"decknotes/internal/service"
)

// Server is the MCP server for the page store.
// It exposes the page operations as tools so agents can read and annotate
// a game's notes.
type Server struct {
	mcp   *server.MCPServer
	pages *service.PageService
	log   logger.Logger
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Pages   *service.PageService
	Logger  logger.Logger
	Version string
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	if deps.Version == "" {
		deps.Version = "1.0.0"
	}
	s := &Server{
		pages: deps.Pages,
		log:   deps.Logger,
	}

	s.mcp = server.NewMCPServer(
		"decknotes-mcp",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerPageTools()
	s.registerResources()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	logging.Infof(s.log, "[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// MCPServer exposes the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func boolPtr(v bool) *bool { return &v }
