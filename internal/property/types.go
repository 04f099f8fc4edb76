package property

// ParamKind tags a constructor argument with its syntactic category.
type ParamKind string

const (
	KindString      ParamKind = "string_literal"
	KindNumber      ParamKind = "number_literal"
	KindBool        ParamKind = "boolean_literal"
	KindIdentifier  ParamKind = "identifier"
	KindCall        ParamKind = "call_expression"
	KindInitializer ParamKind = "initializer_list"
	KindLambda      ParamKind = "lambda_expression"
	KindPointer     ParamKind = "pointer_expression"
	KindOther       ParamKind = "other"
)

// RawParameter is one constructor argument. Order is significant and
// positionally meaningful until the normalizer has run.
type RawParameter struct {
	// Value is the raw source text of the argument. String literals are
	// unquoted/unescaped and adjacent-literal concatenations folded.
	Value string

	// Kind is the syntactic category of the argument.
	Kind ParamKind

	// Fields holds the designator → value mapping when the argument is a
	// designated initializer list (the meta{...} blob). Values may
	// themselves carry nested Fields.
	Fields map[string]RawParameter
}

// IsDesignated reports whether the parameter is a designated initializer
// list (as opposed to a plain braced value list).
func (p RawParameter) IsDesignated() bool {
	return p.Kind == KindInitializer && len(p.Fields) > 0
}

// DeclarationRecord captures one declared configuration field. Immutable
// after extraction.
type DeclarationRecord struct {
	Name         string
	DeclaredType string // full declared type text, e.g. "enterprise<property<bool>>"
	Declaration  string // full declaration text as written
	BaseType     string // innermost unwrapped type, may be empty
	WrapperKinds []string
	DefinedIn    string // declaration file path relative to the scan root
	Line         int    // 1-based declaration line

	IsEnterprise        bool
	IsDeprecated        bool
	IsBounded           bool
	IsEnum              bool
	IsOneOrMany         bool
	IsEnterpriseWrapper bool // outermost wrapper is enterprise<...>
	IsDevelopment       bool
}

// MergedRecord joins a DeclarationRecord with the constructor arguments
// found in the definition file. Parameters is empty when no matching
// constructor call exists. Restriction holds enterprise-restriction
// arguments removed by the normalizer, in their original order.
type MergedRecord struct {
	DeclarationRecord
	Parameters  []RawParameter
	Restriction []RawParameter
}

// Unqualify strips namespace qualifiers from a C++ name, returning the
// final :: segment ("model::compression" -> "compression").
func Unqualify(name string) string {
	for i := len(name) - 2; i >= 0; i-- {
		if name[i] == ':' && name[i+1] == ':' {
			return name[i+2:]
		}
	}
	return name
}
