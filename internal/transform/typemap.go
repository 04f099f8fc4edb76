package transform

import (
	"context"
	"regexp"

	"github.com/propdoc/propdoc/internal/property"
)

// typeOverrides render known non-primitive domain types as objects
// instead of passing their raw names through.
var typeOverrides = map[string]string{
	"unresolved_address":  "object",
	"broker_endpoint":     "object",
	"endpoint_tls_config": "object",
	"tls_config":          "object",
	"seed_server":         "object",
}

// typeRules map C++ type text to JSON-schema type names. First match
// wins; the order is significant (string_view before the bare string
// suffix, durations after the exact integer names).
var typeRules = []struct {
	pattern *regexp.Regexp
	name    string
}{
	{regexp.MustCompile(`^(u?int(8|16|32|64)_t|size_t|unsigned|uint|int|long)$`), "integer"},
	{regexp.MustCompile(`^(double|float)$`), "number"},
	{regexp.MustCompile(`^bool$`), "boolean"},
	{regexp.MustCompile(`(sstring|string_view|string|filesystem::path)$`), "string"},
	{regexp.MustCompile(`chrono::(nanoseconds|microseconds|milliseconds|seconds|minutes|hours|days|weeks|months|years)$`), "integer"},
}

// typeTransformer maps the innermost declared type to a JSON-schema type
// name, rendering vector and one-or-many wrappers as arrays with typed
// items.
type typeTransformer struct{}

func (t *typeTransformer) Name() string    { return "type_mapping" }
func (t *typeTransformer) After() []string { return []string{"basic_info"} }

func (t *typeTransformer) Accepts(rec *property.MergedRecord) bool {
	return rec.BaseType != ""
}

func (t *typeTransformer) Apply(_ context.Context, rec *property.MergedRecord, out *property.Record) error {
	inner, isArray := unwrapBase(rec.BaseType)
	if rec.IsOneOrMany {
		isArray = true
	}

	mapped := mapTypeName(inner)
	if isArray {
		out.Type = "array"
		out.Items = &property.Items{Type: mapped}
		return nil
	}
	out.Type = mapped
	return nil
}

// unwrapBase strips optional and vector layers with balanced-bracket
// splitting, reporting whether a vector layer made the type an array.
func unwrapBase(base string) (inner string, isArray bool) {
	t := base
	for {
		name, args, ok := property.SplitTemplate(t)
		if !ok {
			return t, isArray
		}
		switch property.Unqualify(name) {
		case "optional":
			t = property.FirstTemplateArg(args)
		case "vector":
			isArray = true
			t = property.FirstTemplateArg(args)
		default:
			return t, isArray
		}
	}
}

func mapTypeName(t string) string {
	normalized := normalizeTypeName(t)
	if override, ok := typeOverrides[normalized]; ok {
		return override
	}
	for _, rule := range typeRules {
		if rule.pattern.MatchString(t) {
			return rule.name
		}
	}
	return normalized
}

// normalizeTypeName drops template arguments and namespace qualifiers.
func normalizeTypeName(t string) string {
	if name, _, ok := property.SplitTemplate(t); ok {
		t = name
	}
	return property.Unqualify(t)
}
