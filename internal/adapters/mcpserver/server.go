// Package mcpserver exposes loan search, extraction and assessment as MCP
// tools over stdio.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/green-loan-compliance/internal/core/ports"
)

const (
	Name    = "green-loan-compliance"
	Version = "0.1.0"
)

// Ports are the use cases the tools call into.
type Ports struct {
	Index      ports.IndexService
	Extraction ports.ExtractionService
	Assessment ports.AssessmentService
}

func (p *Ports) Validate() error {
	if p == nil || p.Index == nil || p.Extraction == nil || p.Assessment == nil {
		return errors.New("index, extraction and assessment services are required")
	}
	return nil
}

type Server struct {
	ports *Ports
	mcp   *server.MCPServer
}

func NewServer(p *Ports) (*Server, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	s := &Server{
		ports: p,
		mcp: server.NewMCPServer(Name, Version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
			server.WithInstructions("Tools answer questions about indexed green loan applications and run the GLP, DNSH and carbon lock-in rules."),
		),
	}
	s.registerTools()
	return s, nil
}

// Serve reads requests from in and writes responses to out until ctx is
// cancelled or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}
