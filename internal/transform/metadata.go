package transform

import (
	"context"

	"github.com/propdoc/propdoc/internal/property"
)

// metadataTransformer unpacks the designated-initializer metadata blob
// into restart, visibility, secret, alias, example, and restore fields.
type metadataTransformer struct{}

func (t *metadataTransformer) Name() string    { return "metadata" }
func (t *metadataTransformer) After() []string { return []string{"basic_info"} }

func (t *metadataTransformer) Accepts(rec *property.MergedRecord) bool {
	return bindRoles(rec).Meta != nil
}

func (t *metadataTransformer) Apply(_ context.Context, rec *property.MergedRecord, out *property.Record) error {
	for key, value := range bindRoles(rec).Meta.Fields {
		switch key {
		case "needs_restart":
			out.NeedsRestart = property.Unqualify(value.Value) != "no"
		case "visibility":
			out.Visibility = property.Unqualify(value.Value)
		case "secret":
			out.IsSecret = property.Unqualify(value.Value) == "yes"
		case "aliases":
			if elems, ok := braceList(value.Value); ok {
				aliases := make([]string, 0, len(elems))
				for _, e := range elems {
					aliases = append(aliases, literalString(e))
				}
				out.Aliases = aliases
			}
		case "example":
			out.Example = value.Value
		case "gets_restored":
			restored := property.Unqualify(value.Value) != "no"
			out.GetsRestored = &restored
		}
	}
	return nil
}
