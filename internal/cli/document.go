package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/propdoc/propdoc/internal/property"
	"github.com/propdoc/propdoc/internal/store"
)

// loadTargetDocument loads the document the search and serve commands
// operate on: an explicit JSON file when --input is given, otherwise the
// latest run from the snapshot store. The returned string describes the
// source for banners and verbose output.
func loadTargetDocument(ctx context.Context, inputFile, dbPath string) (*property.Document, string, error) {
	if inputFile != "" {
		doc, err := property.ReadDocument(inputFile)
		if err != nil {
			return nil, "", err
		}
		return doc, inputFile, nil
	}

	if dbPath == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, "", fmt.Errorf("failed to load configuration: %w", err)
		}
		dbPath = cfg.Store.Path
	}

	st, err := store.OpenReadOnly(dbPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open snapshot store %s: %w", dbPath, err)
	}
	defer st.Close()

	run, err := st.LatestRun(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoRuns) {
			return nil, "", fmt.Errorf("store %s holds no runs; extract with --store first", dbPath)
		}
		return nil, "", err
	}

	doc, err := st.LoadDocument(ctx, run.ID)
	if err != nil {
		return nil, "", err
	}
	source := fmt.Sprintf("run %s from %s", run.ID, run.CreatedAt.Format(time.RFC3339))
	return doc, source, nil
}
