// Package mcptool exposes the decision engine to assistant runtimes as MCP
// tools.
package mcptool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MikeSquared-Agency/Underwriter/internal/present"
	"github.com/MikeSquared-Agency/Underwriter/internal/regulations"
	"github.com/MikeSquared-Agency/Underwriter/internal/simulation"
)

const (
	serverName    = "underwriter"
	serverVersion = "0.1.0"
)

// Server owns the MCP server and its tool bindings.
type Server struct {
	mcpServer *mcp.Server
	logger    *slog.Logger
}

// NewServer registers loan_calculator, and regulatory_search when a
// regulations client is supplied.
func NewServer(engine *simulation.Engine, presenter *present.Presenter, regs regulations.Client, logger *slog.Logger) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(mcpServer, LoanCalculatorTool(), LoanCalculatorHandler(engine, presenter, logger))
	if regs != nil {
		mcp.AddTool(mcpServer, RegulatorySearchTool(), RegulatorySearchHandler(regs))
	}
	return &Server{mcpServer: mcpServer, logger: logger}
}

// Serve starts the MCP server on stdio and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.ServeTransport(ctx, &mcp.StdioTransport{})
}

// ServeTransport runs the server over the given transport. Cancellation is a
// clean shutdown, not an error.
func (s *Server) ServeTransport(ctx context.Context, transport mcp.Transport) error {
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
