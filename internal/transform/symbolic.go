package transform

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/propdoc/propdoc/internal/property"
	"github.com/propdoc/propdoc/internal/resolve"
)

var numericLimitsPattern = regexp.MustCompile(`numeric_limits\s*<\s*([^>]+?)\s*>\s*::\s*max`)

// symbolicDefaultsTransformer handles default arguments that name
// something rather than spell a literal: duration constructors, maximum
// sentinels, address constructors, wrapped or bare constants. Resolution
// failures degrade to the bare identifier text, never to an error.
type symbolicDefaultsTransformer struct {
	resolver *resolve.Resolver
}

func (t *symbolicDefaultsTransformer) Name() string    { return "symbolic_defaults" }
func (t *symbolicDefaultsTransformer) After() []string { return []string{"default_value"} }

func (t *symbolicDefaultsTransformer) Accepts(rec *property.MergedRecord) bool {
	d := bindRoles(rec).Default
	if d == nil {
		return false
	}
	switch d.Kind {
	case property.KindCall, property.KindIdentifier, property.KindNumber, property.KindInitializer:
		return true
	}
	return false
}

func (t *symbolicDefaultsTransformer) Apply(ctx context.Context, rec *property.MergedRecord, out *property.Record) error {
	if out.HasDefault() {
		return nil
	}
	d := bindRoles(rec).Default

	switch d.Kind {
	case property.KindNumber:
		if count, unit, ok := chronoLiteral(d.Value); ok {
			out.SetDefault(count + " " + unit)
		}

	case property.KindIdentifier:
		out.SetDefault(t.resolveScalar(ctx, d.Value))

	case property.KindCall:
		t.applyCall(ctx, d.Value, out)

	case property.KindInitializer:
		// Typed duration brace constructor: std::chrono::weeks{2}.
		open := strings.IndexByte(d.Value, '{')
		if open <= 0 {
			return nil
		}
		unit := property.Unqualify(strings.TrimSpace(d.Value[:open]))
		if _, ok := durationWidths[unit]; !ok {
			return nil
		}
		elems, ok := braceList(d.Value)
		if !ok || len(elems) != 1 {
			return nil
		}
		if v, ok := parseNumericLiteral(elems[0]); ok {
			out.SetDefault(fmt.Sprintf("%v %s", v, unit))
		}
	}
	return nil
}

func (t *symbolicDefaultsTransformer) applyCall(ctx context.Context, text string, out *property.Record) {
	callee, args, ok := splitCall(text)
	if !ok {
		return
	}

	// Duration constructor: milliseconds(150) -> "150 milliseconds".
	unit := property.Unqualify(callee)
	if _, isDuration := durationWidths[unit]; isDuration && len(args) == 1 {
		if v, ok := parseNumericLiteral(args[0]); ok {
			out.SetDefault(fmt.Sprintf("%v %s", v, unit))
			return
		}
		if count, litUnit, ok := chronoLiteral(args[0]); ok {
			out.SetDefault(count + " " + litUnit)
			return
		}
	}

	// Maximum-representable sentinel: numeric_limits<T>::max().
	if m := numericLimitsPattern.FindStringSubmatch(callee); m != nil {
		if r, ok := integerRanges[property.Unqualify(m[1])]; ok {
			out.SetDefault(r.max)
		}
		return
	}

	// Address constructor: unresolved_address("127.0.0.1", 33145).
	if isAddressCallee(callee) && len(args) == 2 {
		host := args[0]
		port, ok := parseNumericLiteral(args[1])
		if strings.HasPrefix(host, `"`) && ok {
			out.SetDefault(map[string]any{
				"address": literalString(host),
				"port":    port,
			})
			return
		}
	}

	// Single-argument wrapper constructor around a literal or constant.
	if len(args) == 1 {
		arg := args[0]
		switch {
		case strings.HasPrefix(arg, `"`):
			out.SetDefault(literalString(arg))
		default:
			if v, ok := parseNumericLiteral(arg); ok {
				out.SetDefault(v)
				return
			}
			out.SetDefault(t.resolveScalar(ctx, arg))
		}
	}
}

// resolveScalar resolves an identifier to its literal value, degrading
// to the bare identifier text when no definition is found.
func (t *symbolicDefaultsTransformer) resolveScalar(ctx context.Context, ident string) string {
	if t.resolver != nil {
		if v, ok := t.resolver.Resolve(ctx, ident); ok {
			return v
		}
	}
	return property.Unqualify(ident)
}

func isAddressCallee(callee string) bool {
	name := strings.ToLower(property.Unqualify(callee))
	return strings.Contains(name, "address") || strings.Contains(name, "endpoint")
}
