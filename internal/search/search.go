// Package search provides full-text search over extracted property
// records, backed by an in-memory bleve index.
package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/propdoc/propdoc/internal/property"
)

// Options narrows a search beyond the query string. The zero value
// applies no filters and the default limit.
type Options struct {
	// Limit caps the number of hits. Values outside (0, 100] fall back
	// to the default of 15.
	Limit int

	// Visibility filters hits to an exact visibility class
	// (user, tunable, deprecated).
	Visibility string

	// Enterprise filters on the enterprise flag when non-nil.
	Enterprise *bool

	// DefinedIn filters on the declaration path, wildcard syntax
	// (e.g. "cluster/*").
	DefinedIn string
}

// Result is a single search hit.
type Result struct {
	Record     *property.Record `json:"record"`
	Score      float64          `json:"score"`
	Highlights []string         `json:"highlights"`
}

// Searcher answers queries over one extracted document. Safe for
// concurrent searches.
type Searcher struct {
	index   bleve.Index
	records map[string]*property.Record
	mu      sync.RWMutex
}

// NewSearcher builds an in-memory index over every property in the
// document.
func NewSearcher(ctx context.Context, doc *property.Document) (*Searcher, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	if err := indexRecords(ctx, index, doc); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to index properties: %w", err)
	}

	records := make(map[string]*property.Record, len(doc.Properties))
	for name, rec := range doc.Properties {
		records[name] = rec
	}

	return &Searcher{
		index:   index,
		records: records,
	}, nil
}

// buildIndexMapping creates the index mapping for property documents.
// Identity fields use the keyword analyzer for exact filtering; prose
// fields use the standard analyzer.
func buildIndexMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	// Description (primary search target) - standard analyzer
	descriptionMapping := bleve.NewTextFieldMapping()
	descriptionMapping.Analyzer = "standard"
	descriptionMapping.Store = true // Store for highlighting
	descriptionMapping.Index = true
	descriptionMapping.IncludeTermVectors = true // Enable phrase search

	// Name (exact matching) - keyword analyzer
	nameMapping := bleve.NewTextFieldMapping()
	nameMapping.Analyzer = "keyword"
	nameMapping.Store = true
	nameMapping.Index = true

	// Declaration path (wildcard filtering) - keyword analyzer
	definedInMapping := bleve.NewTextFieldMapping()
	definedInMapping.Analyzer = "keyword"
	definedInMapping.Store = true
	definedInMapping.Index = true

	// Visibility and type (filterable) - keyword analyzer
	visibilityMapping := bleve.NewTextFieldMapping()
	visibilityMapping.Analyzer = "keyword"
	visibilityMapping.Store = true
	visibilityMapping.Index = true

	typeMapping := bleve.NewTextFieldMapping()
	typeMapping.Analyzer = "keyword"
	typeMapping.Store = true
	typeMapping.Index = true

	// Aliases (exact matching, array) - keyword analyzer
	aliasMapping := bleve.NewTextFieldMapping()
	aliasMapping.Analyzer = "keyword"
	aliasMapping.Store = true
	aliasMapping.Index = true

	// Boolean flags (filterable)
	boolMapping := bleve.NewBooleanFieldMapping()
	boolMapping.Store = true
	boolMapping.Index = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("name", nameMapping)
	docMapping.AddFieldMappingsAt("description", descriptionMapping)
	docMapping.AddFieldMappingsAt("defined_in", definedInMapping)
	docMapping.AddFieldMappingsAt("visibility", visibilityMapping)
	docMapping.AddFieldMappingsAt("type", typeMapping)
	docMapping.AddFieldMappingsAt("aliases", aliasMapping)
	docMapping.AddFieldMappingsAt("is_enterprise", boolMapping)
	docMapping.AddFieldMappingsAt("is_deprecated", boolMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// indexRecords adds property records to the index in batches.
func indexRecords(ctx context.Context, index bleve.Index, doc *property.Document) error {
	const batchSize = 1000

	batch := index.NewBatch()
	for i, name := range doc.Names() {
		// Check cancellation periodically
		if i%batchSize == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		if err := batch.Index(name, recordToDocument(doc.Properties[name])); err != nil {
			return fmt.Errorf("failed to add property %s to batch: %w", name, err)
		}
		if batch.Size() >= batchSize {
			if err := index.Batch(batch); err != nil {
				return fmt.Errorf("failed to execute batch: %w", err)
			}
			batch = index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute final batch: %w", err)
		}
	}
	return nil
}

// recordToDocument converts a property record to a bleve document.
func recordToDocument(rec *property.Record) map[string]interface{} {
	return map[string]interface{}{
		"name":          rec.Name,
		"description":   rec.Description,
		"defined_in":    rec.DefinedIn,
		"visibility":    rec.Visibility,
		"type":          rec.Type,
		"aliases":       rec.Aliases,
		"is_enterprise": rec.IsEnterprise,
		"is_deprecated": rec.IsDeprecated,
	}
}

// Search executes a query-string search with optional filters. An empty
// query string matches everything, which makes filter-only searches
// possible.
func (s *Searcher) Search(ctx context.Context, queryStr string, options *Options) ([]*Result, error) {
	if options == nil {
		options = &Options{}
	}
	limit := options.Limit
	if limit <= 0 || limit > 100 {
		limit = 15
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var queries []query.Query
	if queryStr != "" {
		queries = append(queries, bleve.NewQueryStringQuery(queryStr))
	} else {
		queries = append(queries, bleve.NewMatchAllQuery())
	}

	if options.Visibility != "" {
		visQuery := bleve.NewMatchQuery(options.Visibility)
		visQuery.SetField("visibility")
		queries = append(queries, visQuery)
	}
	if options.Enterprise != nil {
		entQuery := bleve.NewBoolFieldQuery(*options.Enterprise)
		entQuery.SetField("is_enterprise")
		queries = append(queries, entQuery)
	}
	if options.DefinedIn != "" {
		pathQuery := bleve.NewWildcardQuery(options.DefinedIn)
		pathQuery.SetField("defined_in")
		queries = append(queries, pathQuery)
	}

	var finalQuery query.Query
	if len(queries) == 1 {
		finalQuery = queries[0]
	} else {
		finalQuery = bleve.NewConjunctionQuery(queries...)
	}

	searchRequest := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	highlightStyle := "html" // <em> tags around matches
	searchRequest.Highlight = bleve.NewHighlight()
	searchRequest.Highlight.Style = &highlightStyle
	searchRequest.Highlight.Fields = []string{"description"}
	searchRequest.Fields = []string{"name"}

	searchResult, err := s.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	results := make([]*Result, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		rec, ok := s.records[hit.ID]
		if !ok {
			continue
		}
		results = append(results, &Result{
			Record:     rec,
			Score:      hit.Score,
			Highlights: extractHighlights(hit.Fragments),
		})
	}
	return results, nil
}

// extractHighlights flattens bleve fragment snippets, keeping at most
// three per result.
func extractHighlights(fragments map[string][]string) []string {
	var highlights []string
	for _, snippets := range fragments {
		highlights = append(highlights, snippets...)
	}
	if len(highlights) > 3 {
		highlights = highlights[:3]
	}
	return highlights
}

// Close releases resources held by the searcher.
func (s *Searcher) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		return s.index.Close()
	}
	return nil
}
