package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/propdoc/propdoc/internal/mcp"
)

var (
	serveInput string
	serveDB    string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve extracted properties to LLM assistants over MCP",
	Long: `Start a Model Context Protocol (MCP) server that exposes extracted
property documentation to LLM-powered assistants.

The MCP server:
- Loads the property document from a JSON file or the snapshot store
- Provides property_get for exact name and alias lookup
- Provides property_search for full-text and filtered queries
- Communicates via stdio (standard MCP transport)

Example:
  propdoc serve --input properties.json`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveInput, "input", "i", "", "Extracted JSON document to serve (default: latest stored run)")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "Snapshot store path (default: from configuration)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	doc, source, err := loadTargetDocument(ctx, serveInput, serveDB)
	if err != nil {
		return err
	}

	// Startup information goes to stderr; stdout carries the MCP stream.
	fmt.Fprintf(os.Stderr, "Propdoc MCP Server\n")
	fmt.Fprintf(os.Stderr, "Document: %s (%d properties)\n", source, len(doc.Properties))
	fmt.Fprintf(os.Stderr, "\n")

	server, err := mcp.NewServer(ctx, doc, Version)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
