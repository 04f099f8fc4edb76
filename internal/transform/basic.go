package transform

import (
	"context"

	"github.com/propdoc/propdoc/internal/property"
)

// basicTransformer contributes name, description, and provenance.
// Declarations with no constructor arguments never reach the output, so
// this transformer doubles as the emission gate.
type basicTransformer struct{}

func (t *basicTransformer) Name() string    { return "basic_info" }
func (t *basicTransformer) After() []string { return nil }

func (t *basicTransformer) Accepts(rec *property.MergedRecord) bool {
	return rec.Name != "" && len(rec.Parameters) > 0
}

func (t *basicTransformer) Apply(_ context.Context, rec *property.MergedRecord, out *property.Record) error {
	out.Name = rec.Name
	out.DefinedIn = rec.DefinedIn

	if r := bindRoles(rec); r.Description != nil {
		out.Description = r.Description.Value
	}
	return nil
}
