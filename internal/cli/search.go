package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/propdoc/propdoc/internal/search"
)

var (
	searchInput      string
	searchDB         string
	searchLimit      int
	searchVisibility string
	searchEnterprise bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search extracted property documentation",
	Long: `Search a previously extracted property document using full-text query
syntax. Field-scoped queries are supported, e.g. name:enable_sasl or
description:retention. An empty query ("") with filters lists every
property matching the filters.

Examples:
  # Search the latest stored run
  propdoc search "retention"

  # Search an extracted JSON file for tunables
  propdoc search --input properties.json --visibility tunable "memory"

  # List all enterprise properties
  propdoc search --enterprise ""`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVarP(&searchInput, "input", "i", "", "Extracted JSON document to search (default: latest stored run)")
	searchCmd.Flags().StringVar(&searchDB, "db", "", "Snapshot store path (default: from configuration)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 15, "Maximum number of results")
	searchCmd.Flags().StringVar(&searchVisibility, "visibility", "", "Filter by visibility class (user, tunable, deprecated)")
	searchCmd.Flags().BoolVar(&searchEnterprise, "enterprise", false, "Filter by enterprise licensing")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	doc, source, err := loadTargetDocument(ctx, searchInput, searchDB)
	if err != nil {
		return err
	}

	searcher, err := search.NewSearcher(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer searcher.Close()

	options := &search.Options{
		Limit:      searchLimit,
		Visibility: searchVisibility,
	}
	if cmd.Flags().Changed("enterprise") {
		options.Enterprise = &searchEnterprise
	}

	results, err := searcher.Search(ctx, args[0], options)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Searching %s\n", source)
	}
	if len(results) == 0 {
		fmt.Println("No properties matched.")
		return nil
	}
	for _, result := range results {
		printSearchResult(result)
	}
	return nil
}

func printSearchResult(result *search.Result) {
	record := result.Record

	var attrs []string
	if record.Type != "" {
		attrs = append(attrs, record.Type)
	}
	if record.Visibility != "" {
		attrs = append(attrs, record.Visibility)
	}
	if record.IsEnterprise {
		attrs = append(attrs, "enterprise")
	}
	if record.IsDeprecated {
		attrs = append(attrs, "deprecated")
	}

	line := record.Name
	if len(attrs) > 0 {
		line += "  (" + strings.Join(attrs, ", ") + ")"
	}
	fmt.Println(line)

	if record.Description != "" {
		fmt.Printf("    %s\n", record.Description)
	}
	if record.DefinedIn != "" {
		fmt.Printf("    defined in %s\n", record.DefinedIn)
	}
}
