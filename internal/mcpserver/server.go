package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/server"

	"github.com/apresai/personaswap/internal/transformer"
)

// Server exposes the transformer as MCP tools.
type Server struct {
	mcp      *server.MCPServer
	handlers *Handlers
	log      *slog.Logger
}

// New creates and configures the MCP server.
func New(svc *transformer.Service, version string, logger *slog.Logger) *Server {
	handlers := NewHandlers(svc, logger)

	mcpServer := server.NewMCPServer(
		"personaswap",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	tools := ToolDefs()
	mcpServer.AddTool(tools[0], handlers.HandleListPersonas)
	mcpServer.AddTool(tools[1], handlers.HandleTransformMessage)
	mcpServer.AddTool(tools[2], handlers.HandleGetHistory)

	return &Server{
		mcp:      mcpServer,
		handlers: handlers,
		log:      logger,
	}
}

// HTTPHandler serves the streamable HTTP transport. Sessions are not
// tracked, so any replica can answer any request.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp,
		server.WithStateLess(true),
	)
}

// ServeStdio speaks MCP over in and out until ctx is cancelled or in closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	s.log.Info("Starting MCP stdio server")
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.log.Handler(), slog.LevelError))
	return stdio.Listen(ctx, in, out)
}
