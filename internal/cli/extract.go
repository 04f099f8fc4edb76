package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/propdoc/propdoc/internal/config"
	"github.com/propdoc/propdoc/internal/extractor"
	"github.com/propdoc/propdoc/internal/property"
	"github.com/propdoc/propdoc/internal/resolve"
	"github.com/propdoc/propdoc/internal/store"
	"github.com/propdoc/propdoc/internal/watcher"
)

var (
	extractRecursive   bool
	extractOutput      string
	extractDefinitions string
	extractWorkers     int
	extractStore       bool
	extractWatch       bool
	extractQuiet       bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract <source-dir>",
	Short: "Extract property documentation from a C++ source tree",
	Long: `Extract configuration property declarations from a C++ source tree and
render them as a JSON document.

Headers are paired with their implementation files by base name. Each
pair is parsed for property constructor calls; declarations and
definitions are merged, classified, and emitted sorted by name.

Examples:
  # Extract to stdout
  propdoc extract ./src

  # Extract to a file and persist the run for later search/serve
  propdoc extract ./src -o properties.json --store

  # Re-extract automatically when sources change
  propdoc extract ./src -o properties.json --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().BoolVarP(&extractRecursive, "recursive", "r", true, "Scan the source tree recursively")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Output file (default: stdout)")
	extractCmd.Flags().StringVarP(&extractDefinitions, "definitions", "d", "", "External definitions JSON file to merge")
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 0, "Extraction workers (0 means one per CPU)")
	extractCmd.Flags().BoolVar(&extractStore, "store", false, "Persist the run to the snapshot store")
	extractCmd.Flags().BoolVarP(&extractWatch, "watch", "w", false, "Watch for source changes and re-extract")
	extractCmd.Flags().BoolVarP(&extractQuiet, "quiet", "q", false, "Suppress progress output")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupts gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted! Cancelling extraction...")
		cancel()
	}()

	sourceDir := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Flags override configuration only when given explicitly.
	if cmd.Flags().Changed("recursive") {
		cfg.Extraction.Recursive = extractRecursive
	}
	if cmd.Flags().Changed("workers") {
		cfg.Extraction.Workers = extractWorkers
	}

	if extractDefinitions != "" {
		if _, err := os.Stat(extractDefinitions); err != nil {
			return fmt.Errorf("definitions file: %w", err)
		}
	}
	if extractWatch && extractOutput == "" {
		return fmt.Errorf("watch mode requires --output")
	}

	resolver, err := resolve.New(sourceDir, resolve.Options{
		Patterns:         cfg.Resolver.Patterns,
		Fallback:         cfg.Resolver.Fallback,
		EnterpriseMarker: cfg.Resolver.EnterpriseMarker,
		CacheSize:        cfg.Resolver.CacheSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create resolver: %w", err)
	}
	defer resolver.Close()

	ext, err := extractor.New(sourceDir, resolver, extractor.Options{
		Recursive:             cfg.Extraction.Recursive,
		DeclarationExtensions: cfg.Extraction.DeclarationExtensions,
		DefinitionExtensions:  cfg.Extraction.DefinitionExtensions,
		IgnorePatterns:        cfg.Extraction.Ignore,
		Workers:               cfg.Extraction.Workers,
		Progress:              NewCLIProgressReporter(extractQuiet),
	})
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	extractOnce := func(ctx context.Context) error {
		doc, stats, err := ext.Run(ctx)
		if err != nil {
			return err
		}

		if extractDefinitions != "" {
			if err := doc.LoadDefinitions(extractDefinitions); err != nil {
				return fmt.Errorf("failed to load definitions: %w", err)
			}
			doc.RewriteReferences()
		}

		if err := extractor.WriteDocument(doc, extractOutput); err != nil {
			return err
		}

		if extractStore {
			if err := saveRun(ctx, cfg, sourceDir, doc, stats); err != nil {
				return err
			}
		}
		return nil
	}

	if err := extractOnce(ctx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("extraction cancelled")
		}
		return err
	}

	if !extractWatch {
		return nil
	}
	return watchAndExtract(ctx, cfg, sourceDir, extractOnce)
}

// saveRun persists an extraction run to the snapshot store.
func saveRun(ctx context.Context, cfg *config.Config, sourceDir string, doc *property.Document, stats *extractor.Stats) error {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer st.Close()

	runID, err := st.SaveRun(ctx, sourceDir, doc, stats)
	if err != nil {
		return fmt.Errorf("failed to persist run: %w", err)
	}
	if !extractQuiet {
		log.Printf("Run %s saved to %s", runID, cfg.Store.Path)
	}
	return nil
}

// watchAndExtract re-runs extraction whenever watched source files change.
// Blocks until ctx is cancelled.
func watchAndExtract(ctx context.Context, cfg *config.Config, sourceDir string, extractOnce func(context.Context) error) error {
	extensions := append([]string{}, cfg.Extraction.DeclarationExtensions...)
	extensions = append(extensions, cfg.Extraction.DefinitionExtensions...)
	if len(extensions) == 0 {
		defaults := config.Default().Extraction
		extensions = append(defaults.DeclarationExtensions, defaults.DefinitionExtensions...)
	}

	w, err := watcher.New(sourceDir, extensions, 0)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Stop()

	callback := func(files []string) {
		log.Printf("Source changed (%d files), re-extracting...", len(files))
		// Events raised by our own activity during extraction are
		// accumulated and flushed after Resume.
		w.Pause()
		defer w.Resume()
		if err := extractOnce(ctx); err != nil && ctx.Err() == nil {
			log.Printf("Warning: re-extraction failed: %v", err)
		}
	}

	if err := w.Start(ctx, callback); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	log.Printf("Watching %s for changes...", sourceDir)
	<-ctx.Done()
	log.Println("Watch mode stopped")
	return nil
}
