package transform

import (
	"context"
	"strings"

	"github.com/propdoc/propdoc/internal/property"
)

// defaultsTransformer handles the structural default-value cases:
// literals whose JSON form follows directly from their syntax. Runs
// after enterprise classification so the default argument it binds is
// the canonical one, and after metadata so blob designators never shadow
// a default.
type defaultsTransformer struct{}

func (t *defaultsTransformer) Name() string { return "default_value" }

func (t *defaultsTransformer) After() []string {
	return []string{"enterprise", "metadata"}
}

func (t *defaultsTransformer) Accepts(rec *property.MergedRecord) bool {
	return bindRoles(rec).Default != nil
}

func (t *defaultsTransformer) Apply(_ context.Context, rec *property.MergedRecord, out *property.Record) error {
	d := bindRoles(rec).Default

	switch d.Kind {
	case property.KindBool:
		out.SetDefault(d.Value == "true")

	case property.KindString:
		out.SetDefault(d.Value)

	case property.KindNumber:
		// Chrono literals (10s, 150ms) are left for the symbolic pass.
		if v, ok := parseNumericLiteral(d.Value); ok {
			out.SetDefault(v)
		}

	case property.KindIdentifier:
		if property.Unqualify(d.Value) == "nullopt" {
			out.SetDefault(nil)
		}

	case property.KindInitializer:
		if d.IsDesignated() {
			return nil
		}
		// Typed brace constructors (T{...}) belong to the symbolic pass.
		if !strings.HasPrefix(strings.TrimSpace(d.Value), "{") {
			return nil
		}
		elems, ok := braceList(d.Value)
		if !ok || len(elems) == 0 {
			// Empty braces leave the default unset.
			return nil
		}
		values := make([]string, 0, len(elems))
		for _, e := range elems {
			values = append(values, literalString(e))
		}
		out.SetDefault(values)
	}
	return nil
}
