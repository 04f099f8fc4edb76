// Package transform turns merged declaration/argument records into
// finished property records. Each transformer owns one concern, declares
// the transformers it must run after, and contributes fields only when
// its precondition matches.
package transform

import (
	"context"
	"fmt"
	"log"

	"github.com/dominikbraun/graph"

	"github.com/propdoc/propdoc/internal/property"
	"github.com/propdoc/propdoc/internal/resolve"
)

// Transformer contributes output fields for records it accepts.
type Transformer interface {
	// Name identifies the transformer in runs-after edges and logs.
	Name() string

	// After lists transformer names that must run before this one.
	After() []string

	// Accepts reports whether the record matches the transformer's
	// precondition. A false return contributes nothing and is not an
	// error.
	Accepts(rec *property.MergedRecord) bool

	// Apply contributes fields to out. Errors are logged and skip only
	// this transformer, never the property or the run.
	Apply(ctx context.Context, rec *property.MergedRecord, out *property.Record) error
}

// Pipeline applies an ordered transformer sequence to merged records.
type Pipeline struct {
	transformers []Transformer
}

// NewPipeline builds the standard pipeline. The resolver backs symbolic
// default and enterprise value resolution and may be shared across
// workers.
func NewPipeline(resolver *resolve.Resolver) (*Pipeline, error) {
	return newPipeline([]Transformer{
		&basicTransformer{},
		&metadataTransformer{},
		&enterpriseTransformer{resolver: resolver},
		&deprecationTransformer{},
		&experimentalTransformer{},
		&nullableTransformer{},
		&typeTransformer{},
		&numericBoundsTransformer{},
		&durationBoundsTransformer{},
		&defaultsTransformer{},
		&symbolicDefaultsTransformer{resolver: resolver},
	})
}

// newPipeline orders transformers by their runs-after edges. The sort is
// stable so the pipeline order is deterministic across runs.
func newPipeline(all []Transformer) (*Pipeline, error) {
	byName := make(map[string]Transformer, len(all))

	g := graph.New(func(t Transformer) string { return t.Name() }, graph.Directed(), graph.PreventCycles())
	for _, t := range all {
		if err := g.AddVertex(t); err != nil {
			return nil, fmt.Errorf("adding transformer %q: %w", t.Name(), err)
		}
		byName[t.Name()] = t
	}
	for _, t := range all {
		for _, dep := range t.After() {
			if _, ok := byName[dep]; !ok {
				return nil, fmt.Errorf("transformer %q runs after unknown %q", t.Name(), dep)
			}
			if err := g.AddEdge(dep, t.Name()); err != nil {
				return nil, fmt.Errorf("ordering %q after %q: %w", t.Name(), dep, err)
			}
		}
	}

	names, err := graph.StableTopologicalSort(g, func(a, b string) bool { return a < b })
	if err != nil {
		return nil, fmt.Errorf("ordering transformers: %w", err)
	}

	ordered := make([]Transformer, 0, len(names))
	for _, name := range names {
		ordered = append(ordered, byName[name])
	}
	return &Pipeline{transformers: ordered}, nil
}

// Run applies the pipeline to one merged record. emitted is false when
// the record never received its identity (a declaration with no
// constructor arguments), in which case it must be dropped rather than
// written as a half-empty property.
func (p *Pipeline) Run(ctx context.Context, rec *property.MergedRecord) (out *property.Record, emitted bool) {
	out = property.NewRecord()

	for _, t := range p.transformers {
		if !t.Accepts(rec) {
			continue
		}
		if err := t.Apply(ctx, rec, out); err != nil {
			log.Printf("Warning: %s transformer on %q: %v", t.Name(), rec.Name, err)
		}
	}
	return out, out.Name != ""
}

// Order returns the transformer names in execution order.
func (p *Pipeline) Order() []string {
	names := make([]string, len(p.transformers))
	for i, t := range p.transformers {
		names[i] = t.Name()
	}
	return names
}
