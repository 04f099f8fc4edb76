package transform

// Test Plan:
// 1. Transformer ordering honors runs-after edges and is deterministic
// 2. Records with no constructor arguments are never emitted
// 3. Transformer errors skip the transformer, not the property

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propdoc/propdoc/internal/property"
)

func TestPipelineOrderHonorsEdges(t *testing.T) {
	t.Parallel()

	p, err := NewPipeline(nil)
	require.NoError(t, err)

	order := p.Order()
	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}

	assert.Less(t, pos["basic_info"], pos["metadata"])
	assert.Less(t, pos["basic_info"], pos["enterprise"])
	assert.Less(t, pos["metadata"], pos["deprecation"])
	assert.Less(t, pos["type_mapping"], pos["numeric_bounds"])
	assert.Less(t, pos["type_mapping"], pos["duration_bounds"])
	assert.Less(t, pos["enterprise"], pos["default_value"],
		"classification must consume leading parameters before defaults bind")
	assert.Less(t, pos["default_value"], pos["symbolic_defaults"])

	// Deterministic across constructions.
	p2, err := NewPipeline(nil)
	require.NoError(t, err)
	assert.Equal(t, order, p2.Order())
}

func TestPipelineOrderRejectsUnknownEdge(t *testing.T) {
	t.Parallel()

	_, err := newPipeline([]Transformer{&stubTransformer{name: "a", after: []string{"missing"}}})
	require.Error(t, err)
}

func TestPipelineDropsRecordsWithoutContributions(t *testing.T) {
	t.Parallel()

	p, err := NewPipeline(nil)
	require.NoError(t, err)

	// Declared but never initialized: no parameters, so the record is
	// never named and must not be emitted.
	rec := &property.MergedRecord{
		DeclarationRecord: property.DeclarationRecord{
			Name:         "rm_violation_recovery_policy",
			BaseType:     "bool",
			WrapperKinds: []string{"property"},
		},
	}
	_, emitted := p.Run(context.Background(), rec)
	assert.False(t, emitted)
}

func TestPipelineSurvivesTransformerError(t *testing.T) {
	t.Parallel()

	p, err := newPipeline([]Transformer{
		&stubTransformer{name: "failing", err: errors.New("boom")},
		&stubTransformer{name: "working", apply: func(out *property.Record) { out.Name = "ok" }},
	})
	require.NoError(t, err)

	rec := &property.MergedRecord{DeclarationRecord: property.DeclarationRecord{Name: "p"}}
	out, emitted := p.Run(context.Background(), rec)
	require.True(t, emitted, "the working transformer still contributes")
	assert.Equal(t, "ok", out.Name)
}

type stubTransformer struct {
	name  string
	after []string
	err   error
	apply func(out *property.Record)
}

func (s *stubTransformer) Name() string                        { return s.name }
func (s *stubTransformer) After() []string                     { return s.after }
func (s *stubTransformer) Accepts(*property.MergedRecord) bool { return true }

func (s *stubTransformer) Apply(_ context.Context, _ *property.MergedRecord, out *property.Record) error {
	if s.err != nil {
		return s.err
	}
	if s.apply != nil {
		s.apply(out)
	}
	return nil
}
