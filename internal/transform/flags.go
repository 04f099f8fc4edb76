package transform

import (
	"context"
	"strings"

	"github.com/propdoc/propdoc/internal/property"
)

// deprecationTransformer marks deprecated properties, whether declared
// through the deprecated wrapper alias or a deprecated visibility in the
// metadata blob.
type deprecationTransformer struct{}

func (t *deprecationTransformer) Name() string    { return "deprecation" }
func (t *deprecationTransformer) After() []string { return []string{"metadata"} }

func (t *deprecationTransformer) Accepts(rec *property.MergedRecord) bool {
	if rec.IsDeprecated {
		return true
	}
	meta := bindRoles(rec).Meta
	if meta == nil {
		return false
	}
	v, ok := meta.Fields["visibility"]
	return ok && property.Unqualify(v.Value) == "deprecated"
}

func (t *deprecationTransformer) Apply(_ context.Context, _ *property.MergedRecord, out *property.Record) error {
	out.IsDeprecated = true
	return nil
}

// experimentalTransformer marks development-only properties, declared
// either through the development wrapper or the development_ name
// prefix.
type experimentalTransformer struct{}

func (t *experimentalTransformer) Name() string    { return "experimental" }
func (t *experimentalTransformer) After() []string { return []string{"basic_info"} }

func (t *experimentalTransformer) Accepts(rec *property.MergedRecord) bool {
	return rec.IsDevelopment || strings.HasPrefix(rec.Name, "development_")
}

func (t *experimentalTransformer) Apply(_ context.Context, _ *property.MergedRecord, out *property.Record) error {
	out.IsExperimental = true
	return nil
}

// nullableTransformer marks optional-wrapped base types.
type nullableTransformer struct{}

func (t *nullableTransformer) Name() string    { return "nullable" }
func (t *nullableTransformer) After() []string { return []string{"basic_info"} }

func (t *nullableTransformer) Accepts(rec *property.MergedRecord) bool {
	return strings.HasPrefix(rec.BaseType, "std::optional<")
}

func (t *nullableTransformer) Apply(_ context.Context, _ *property.MergedRecord, out *property.Record) error {
	out.Nullable = true
	return nil
}
