package extractor

import (
	"sort"

	"github.com/propdoc/propdoc/internal/property"
)

// MergeRecords joins declared fields with the constructor arguments
// found in the definition file, keyed by field name. Fields declared
// but never initialized are kept with empty Parameters so the pipeline
// can drop them; constructor calls without a matching declaration are
// discarded. The result is sorted by name.
func MergeRecords(decls map[string]property.DeclarationRecord, args map[string][]property.RawParameter) []*property.MergedRecord {
	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}
	sort.Strings(names)

	merged := make([]*property.MergedRecord, 0, len(names))
	for _, name := range names {
		rec := &property.MergedRecord{
			DeclarationRecord: decls[name],
			Parameters:        args[name],
		}
		NormalizeParameters(rec)
		merged = append(merged, rec)
	}
	return merged
}

// NormalizeParameters splits enterprise constructor arguments into the
// restriction prefix and the ordinary parameter list. Enterprise
// wrappers accept restriction values before the usual (name,
// description, ...) arguments; everything preceding the name literal is
// moved to Restriction so downstream transformers see the same
// positional layout for every property.
//
// A leading boolean is a plain default, not a restriction, so records
// starting with one are left untouched.
func NormalizeParameters(rec *property.MergedRecord) {
	if !rec.IsEnterprise || len(rec.Parameters) == 0 {
		return
	}
	if rec.Parameters[0].Kind == property.KindBool {
		return
	}
	for i, p := range rec.Parameters {
		if p.Kind == property.KindString && p.Value == rec.Name {
			if i > 0 {
				rec.Restriction = rec.Parameters[:i]
				rec.Parameters = rec.Parameters[i:]
			}
			return
		}
	}
}
