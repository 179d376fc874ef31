// ABOUTME: MCP server setup for the trackwise goal store and coach.
// ABOUTME: Wraps the MCP server with storage and coach service access.
package mcp

import (
	"context"

	"github.com/harperreed/trackwise/internal/coach"
	"github.com/harperreed/trackwise/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	coach     *coach.Service

	tools     []ToolInfo
	resources []string
}

// ToolInfo names a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// NewServer creates a new MCP server over repo. The coach must share the same repo.
func NewServer(repo storage.Repository, c *coach.Service) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "trackwise",
			Version: Version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		coach:     c,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Tools lists the registered tools in registration order.
func (s *Server) Tools() []ToolInfo {
	return append([]ToolInfo(nil), s.tools...)
}

// Resources lists the registered resource URIs.
func (s *Server) Resources() []string {
	return append([]string(nil), s.resources...)
}

// Catalog returns the tools and resources a server exposes without wiring storage.
func Catalog() ([]ToolInfo, []string) {
	s, _ := NewServer(nil, nil)
	return s.Tools(), s.Resources()
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
