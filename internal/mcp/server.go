// Package mcp exposes an extracted property document to MCP clients
// over stdio, as the property_get and property_search tools.
package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/propdoc/propdoc/internal/property"
	"github.com/propdoc/propdoc/internal/search"
)

// Server manages the MCP server lifecycle.
type Server struct {
	doc      *property.Document
	searcher *search.Searcher
	mcp      *server.MCPServer
}

// NewServer creates an MCP server over the given document. The version
// string is reported to clients during the MCP handshake.
func NewServer(ctx context.Context, doc *property.Document, version string) (*Server, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is required")
	}

	searcher, err := search.NewSearcher(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create searcher: %w", err)
	}

	mcpServer := server.NewMCPServer(
		"propdoc",
		version,
		server.WithToolCapabilities(true),
	)

	AddPropertyGetTool(mcpServer, doc)
	AddPropertySearchTool(mcpServer, searcher)

	return &Server{
		doc:      doc,
		searcher: searcher,
		mcp:      mcpServer,
	}, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Serving %d properties over stdio...", len(s.doc.Properties))
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		cancel()
		return nil
	case err := <-errCh:
		cancel()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases all resources.
func (s *Server) Close() error {
	if s.searcher != nil {
		return s.searcher.Close()
	}
	return nil
}
