package extractor

import (
	"context"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/propdoc/propdoc/internal/extractor/cpp"
	"github.com/propdoc/propdoc/internal/property"
	"github.com/propdoc/propdoc/internal/resolve"
	"github.com/propdoc/propdoc/internal/transform"
)

// Stats summarizes one extraction run.
type Stats struct {
	PairsDiscovered   int
	PairsExtracted    int
	PairsSkipped      int
	PropertiesEmitted int
	PropertiesDropped int
	EnterpriseCount   int
	Duration          time.Duration
}

// Options configures an Extractor. Zero values select the defaults:
// NumCPU workers, silent progress, the standard C++ extension families.
type Options struct {
	Recursive             bool
	DeclarationExtensions []string
	DefinitionExtensions  []string
	IgnorePatterns        []string
	Workers               int
	Progress              ProgressReporter
}

// Extractor drives the full pipeline: pair discovery, per-pair parsing
// and merging, transformation, and document assembly. Pairs are
// processed concurrently; results merge into one document at the end so
// output never depends on completion order.
type Extractor struct {
	discovery *Discovery
	pipeline  *transform.Pipeline
	workers   int
	progress  ProgressReporter
}

// New builds an Extractor rooted at sourceDir. The resolver is shared
// by the symbolic-default and enterprise transformers and is typically
// rooted at the same tree.
func New(sourceDir string, resolver *resolve.Resolver, opts Options) (*Extractor, error) {
	discovery, err := NewDiscovery(sourceDir, DiscoveryOptions{
		Recursive:             opts.Recursive,
		DeclarationExtensions: opts.DeclarationExtensions,
		DefinitionExtensions:  opts.DefinitionExtensions,
		IgnorePatterns:        opts.IgnorePatterns,
	})
	if err != nil {
		return nil, err
	}

	pipeline, err := transform.NewPipeline(resolver)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	progress := opts.Progress
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}

	return &Extractor{
		discovery: discovery,
		pipeline:  pipeline,
		workers:   workers,
		progress:  progress,
	}, nil
}

// pairResult is the outcome of processing one file pair.
type pairResult struct {
	pair    FilePair
	records []*property.Record
	dropped int
	skipped bool
}

// Run discovers pairs and extracts every property in the tree. A tree
// with no pairs at all returns ErrNoPairs; individual unparseable files
// skip their pair with a warning and the run continues.
func (e *Extractor) Run(ctx context.Context) (*property.Document, *Stats, error) {
	start := time.Now()

	e.progress.OnDiscoveryStart()
	pairs, err := e.discovery.DiscoverPairs()
	if err != nil {
		return nil, nil, err
	}
	if len(pairs) == 0 {
		return nil, nil, ErrNoPairs
	}
	e.progress.OnDiscoveryComplete(len(pairs))
	e.progress.OnExtractionStart(len(pairs))

	jobs := make(chan FilePair)
	results := make(chan pairResult)

	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pair := range jobs {
				results <- e.processPair(ctx, pair)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, pair := range pairs {
			select {
			case jobs <- pair:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	doc := property.NewDocument()
	stats := &Stats{PairsDiscovered: len(pairs)}
	for res := range results {
		if res.skipped {
			stats.PairsSkipped++
		} else {
			stats.PairsExtracted++
		}
		for _, rec := range res.records {
			doc.Add(rec)
			stats.PropertiesEmitted++
			if rec.IsEnterprise {
				stats.EnterpriseCount++
			}
		}
		stats.PropertiesDropped += res.dropped
		e.progress.OnPairProcessed(res.pair.Base, len(res.records))
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	stats.Duration = time.Since(start)
	e.progress.OnComplete(stats)
	return doc, stats, nil
}

// processPair parses one declaration/definition pair and runs every
// merged record through the pipeline. Parse failures skip the whole
// pair; transformer failures are handled inside the pipeline and only
// lose the affected fields.
func (e *Extractor) processPair(ctx context.Context, pair FilePair) pairResult {
	res := pairResult{pair: pair}

	decls, err := cpp.ExtractDeclarations(ctx, pair.Declaration, pair.RelDeclaration)
	if err != nil {
		log.Printf("Warning: skipping pair %s: %v", pair.RelDeclaration, err)
		res.skipped = true
		return res
	}
	args, err := cpp.ExtractArguments(ctx, pair.Definition)
	if err != nil {
		log.Printf("Warning: skipping pair %s: %v", pair.RelDeclaration, err)
		res.skipped = true
		return res
	}

	for _, rec := range MergeRecords(decls, args) {
		out, emitted := e.pipeline.Run(ctx, rec)
		if !emitted {
			res.dropped++
			continue
		}
		for _, warning := range transform.ReviewWarnings(out) {
			log.Printf("Warning: enterprise default review: %s", warning)
		}
		res.records = append(res.records, out)
	}
	return res
}
