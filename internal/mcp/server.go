package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/kettleby/autoctx/internal/contextloader"
	"github.com/kettleby/autoctx/internal/indexer"
	"github.com/kettleby/autoctx/internal/searcher"
)

const (
	// ServerName is the MCP server name.
	ServerName = "autoctx"
	// ServerVersion is the current server version.
	ServerVersion = "1.0.0"
)

// Server exposes one project's index over MCP. It is bound to a single
// project root at construction; tools never take a path argument.
type Server struct {
	mcp      *server.MCPServer
	indexer  *indexer.Indexer
	searcher *searcher.Searcher
	loader   *contextloader.Loader
	logger   *zap.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a logger for tool invocation diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates an MCP server over the given components.
func NewServer(idx *indexer.Indexer, srch *searcher.Searcher, loader *contextloader.Loader, opts ...Option) *Server {
	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		indexer:  idx,
		searcher: srch,
		loader:   loader,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(indexProjectTool(), s.handleIndexProject)
	s.mcp.AddTool(searchCodeTool(), s.handleSearchCode)
	s.mcp.AddTool(loadContextTool(), s.handleLoadContext)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}

// Serve runs the server on stdio and blocks until the client disconnects.
func (s *Server) Serve(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("serving on stdio",
			zap.String("name", ServerName),
			zap.String("root", s.indexer.Root()))
	}
	return server.ServeStdio(s.mcp)
}
