package transform

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/propdoc/propdoc/internal/property"
	"github.com/propdoc/propdoc/internal/resolve"
)

// enterpriseTransformer classifies gated properties into one of three
// mutually exclusive constructor shapes based on the restriction
// material stashed by the normalizer.
type enterpriseTransformer struct {
	resolver *resolve.Resolver
}

func (t *enterpriseTransformer) Name() string    { return "enterprise" }
func (t *enterpriseTransformer) After() []string { return []string{"basic_info"} }

func (t *enterpriseTransformer) Accepts(rec *property.MergedRecord) bool {
	return rec.IsEnterprise
}

func (t *enterpriseTransformer) Apply(ctx context.Context, rec *property.MergedRecord, out *property.Record) error {
	out.IsEnterprise = true

	groups := t.valueGroups(ctx, rec.Restriction)
	switch len(groups) {
	case 0:
		// Validator expressions and gated records without restriction
		// material.
		out.EnterpriseConstructor = property.EnterpriseSimple
		return nil

	case 1:
		out.EnterpriseConstructor = property.EnterpriseRestrictedOnly
		out.EnterpriseRestrictedValue = groups[0]
		return nil
	}

	if len(groups) > 2 {
		log.Printf("Warning: %d restriction values on %q, classifying from the first two", len(groups), rec.Name)
	}
	first, second := groups[0], groups[1]

	switch {
	case isSuperset(second, first):
		// The second vector is the full enum domain; only the first is
		// enterprise-gated.
		out.EnterpriseConstructor = property.EnterpriseRestrictedOnly
		out.EnterpriseRestrictedValue = first

	case isDisjoint(first, second):
		out.EnterpriseConstructor = property.EnterpriseRestrictedWithSanctioned
		out.EnterpriseRestrictedValue = first
		out.EnterpriseSanctionedValue = second

	default:
		log.Printf("Warning: restriction values on %q partially overlap, review classification", rec.Name)
		out.EnterpriseConstructor = property.EnterpriseRestrictedWithSanctioned
		out.EnterpriseRestrictedValue = first
		out.EnterpriseSanctionedValue = second
	}
	return nil
}

// valueGroups converts restriction parameters into value lists. A
// leading validator expression means no value groups at all.
func (t *enterpriseTransformer) valueGroups(ctx context.Context, restriction []property.RawParameter) [][]string {
	if len(restriction) == 0 {
		return nil
	}
	switch restriction[0].Kind {
	case property.KindLambda, property.KindPointer, property.KindOther:
		return nil
	}

	var groups [][]string
	for _, p := range restriction {
		if g, ok := t.valueGroup(ctx, p); ok {
			groups = append(groups, g)
		}
	}
	return groups
}

func (t *enterpriseTransformer) valueGroup(ctx context.Context, p property.RawParameter) ([]string, bool) {
	switch p.Kind {
	case property.KindString, property.KindNumber, property.KindBool:
		return []string{p.Value}, true

	case property.KindInitializer:
		if p.IsDesignated() {
			return nil, false
		}
		elems, ok := braceList(p.Value)
		if !ok || len(elems) == 0 {
			return nil, false
		}
		values := make([]string, 0, len(elems))
		for _, e := range elems {
			if strings.HasPrefix(e, `"`) {
				values = append(values, literalString(e))
			} else {
				values = append(values, t.resolveScalar(ctx, e))
			}
		}
		return values, true

	case property.KindIdentifier:
		if t.resolver != nil {
			if values, ok := t.resolver.ResolveArray(ctx, p.Value); ok {
				return values, true
			}
		}
		return []string{t.resolveScalar(ctx, p.Value)}, true

	case property.KindCall:
		// Vector constructed through a call still carries its braces.
		if elems, ok := braceList(p.Value); ok && len(elems) > 0 {
			values := make([]string, 0, len(elems))
			for _, e := range elems {
				values = append(values, literalString(e))
			}
			return values, true
		}
	}
	return nil, false
}

func (t *enterpriseTransformer) resolveScalar(ctx context.Context, ident string) string {
	if t.resolver != nil {
		if v, ok := t.resolver.Resolve(ctx, ident); ok {
			return v
		}
	}
	return property.Unqualify(ident)
}

func normalizeValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[normalizeValue(v)] = true
	}
	return set
}

// isSuperset reports whether outer contains every element of inner.
// Equal sets count as a superset (the enum-domain annotation case).
func isSuperset(outer, inner []string) bool {
	set := toSet(outer)
	for _, v := range inner {
		if !set[normalizeValue(v)] {
			return false
		}
	}
	return true
}

func isDisjoint(a, b []string) bool {
	set := toSet(a)
	for _, v := range b {
		if set[normalizeValue(v)] {
			return false
		}
	}
	return true
}

// ReviewWarnings checks the documented relationships between a finished
// record's default and its enterprise value sets. Violations are
// reported for review, never repaired.
func ReviewWarnings(out *property.Record) []string {
	if !out.IsEnterprise || !out.HasDefault() {
		return nil
	}
	def, ok := defaultAsString(out)
	if !ok {
		return nil
	}

	var warnings []string
	restricted := toSet(out.EnterpriseRestrictedValue)

	switch out.EnterpriseConstructor {
	case property.EnterpriseRestrictedOnly:
		if restricted[normalizeValue(def)] {
			warnings = append(warnings,
				fmt.Sprintf("%s: default %q is inside the restricted set", out.Name, def))
		}
	case property.EnterpriseRestrictedWithSanctioned:
		if !restricted[normalizeValue(def)] {
			warnings = append(warnings,
				fmt.Sprintf("%s: default %q is outside the restricted set", out.Name, def))
		}
	}
	return warnings
}

func defaultAsString(out *property.Record) (string, bool) {
	v, _ := out.DefaultValue()
	switch d := v.(type) {
	case string:
		return d, true
	case bool:
		if d {
			return "true", true
		}
		return "false", true
	case int64, uint64, float64:
		return fmt.Sprintf("%v", d), true
	}
	return "", false
}
