package cpp

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/propdoc/propdoc/internal/property"
)

// wrapperNames is the configuration-property wrapper family, as it appears
// in declared field types. Order matters only for scanning; classification
// uses the position of each match within the type text.
var wrapperNames = []string{
	"property",
	"bounded_property",
	"deprecated_property",
	"one_or_many_property",
	"enum_property",
	"development_property",
	"enterprise",
}

// bareWrappers may appear without template arguments.
var bareWrappers = map[string]bool{
	"deprecated_property": true,
}

// typeDenylist rejects common non-property member types. A field whose type
// starts with one of these is a plain data member even if a wrapper name
// appears nested somewhere inside it.
var typeDenylist = []string{
	"ss::sstring",
	"std::string",
	"string_view",
	"std::vector<",
	"std::unordered_map<",
	"std::optional<",
	"std::chrono::",
	"std::filesystem::path",
	"model::timeout_clock",
	"one_or_many_map_t",
}

// ExtractDeclarations parses a declaration file and returns every field
// whose declared type matches the property wrapper family, keyed by field
// name. definedIn is recorded on each record (typically the path relative
// to the scan root). Fields with unrecognized types are skipped.
func ExtractDeclarations(ctx context.Context, path, definedIn string) (map[string]property.DeclarationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records := make(map[string]property.DeclarationRecord)

	walkTree(file.root(), func(node *sitter.Node) bool {
		if node.Kind() != "field_declaration" {
			return true
		}

		typeNode := node.ChildByFieldName("type")
		declNode := node.ChildByFieldName("declarator")
		if typeNode == nil || declNode == nil {
			return true
		}

		nameNode := findDescendantByType(declNode, "field_identifier")
		if nameNode == nil {
			return true
		}

		typeText := strings.TrimSpace(extractNodeText(typeNode, file.source))
		rec, ok := classifyDeclaration(typeText)
		if !ok {
			return true
		}

		rec.Name = extractNodeText(nameNode, file.source)
		rec.Declaration = extractNodeText(node, file.source)
		rec.DefinedIn = definedIn
		rec.Line = int(node.StartPosition().Row) + 1
		records[rec.Name] = rec
		return true
	})

	return records, nil
}

// classifyDeclaration matches a declared type text against the wrapper
// family and fills the wrapper-derived parts of a DeclarationRecord. The
// denylist short-circuits plain data members unless the type itself starts
// with a wrapper.
func classifyDeclaration(typeText string) (property.DeclarationRecord, bool) {
	var rec property.DeclarationRecord

	kinds, leading := matchWrapperKinds(typeText)
	if len(kinds) == 0 {
		return rec, false
	}
	if !leading && denylisted(typeText) {
		return rec, false
	}

	rec.DeclaredType = typeText
	rec.WrapperKinds = kinds
	rec.BaseType = baseTypeText(typeText)
	for _, kind := range kinds {
		switch kind {
		case "enterprise":
			rec.IsEnterprise = true
		case "deprecated_property":
			rec.IsDeprecated = true
		case "bounded_property":
			rec.IsBounded = true
		case "enum_property":
			rec.IsEnum = true
		case "one_or_many_property":
			rec.IsOneOrMany = true
		case "development_property":
			rec.IsDevelopment = true
		}
	}
	rec.IsEnterpriseWrapper = kinds[0] == "enterprise"
	return rec, true
}

// matchWrapperKinds scans a type text for wrapper template names, returning
// them outermost-first (by position). leading reports whether the type
// itself starts with a wrapper (allowing for a namespace qualifier).
func matchWrapperKinds(typeText string) (kinds []string, leading bool) {
	type match struct {
		index int
		name  string
	}
	var matches []match

	for _, name := range wrapperNames {
		from := 0
		for {
			idx := strings.Index(typeText[from:], name)
			if idx < 0 {
				break
			}
			idx += from
			from = idx + len(name)

			if idx > 0 && isIdentChar(typeText[idx-1]) {
				continue
			}
			end := idx + len(name)
			if end < len(typeText) && typeText[end] == '<' {
				matches = append(matches, match{idx, name})
			} else if bareWrappers[name] && (end == len(typeText) || !isIdentChar(typeText[end])) {
				matches = append(matches, match{idx, name})
			}
		}
	}

	if len(matches) == 0 {
		return nil, false
	}

	// Outermost wrapper first. Insertion sort; the list is tiny.
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].index < matches[j-1].index; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}

	kinds = make([]string, len(matches))
	for i, m := range matches {
		kinds[i] = m.name
	}
	return kinds, isNamespacePrefix(typeText[:matches[0].index])
}

// denylisted reports whether the type text contains a known non-property
// type.
func denylisted(typeText string) bool {
	for _, deny := range typeDenylist {
		if strings.Contains(typeText, deny) {
			return true
		}
	}
	return false
}

// baseTypeText recovers the innermost unwrapped value type by repeatedly
// stripping wrapper templates with balanced-bracket scanning. Wrappers with
// multiple template arguments contribute their first top-level argument.
// Returns "" when the type carries no template arguments at all.
func baseTypeText(typeText string) string {
	t := strings.TrimSpace(typeText)
	for {
		name, inner, ok := property.SplitTemplate(t)
		if !ok {
			// No template arguments left. A bare wrapper (deprecated
			// alias form) has no base type; anything else is the base.
			if isWrapperName(property.Unqualify(t)) {
				return ""
			}
			return t
		}
		if !isWrapperName(property.Unqualify(name)) {
			return t
		}
		t = property.FirstTemplateArg(inner)
	}
}

func isWrapperName(name string) bool {
	for _, w := range wrapperNames {
		if name == w {
			return true
		}
	}
	return false
}

func isIdentChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// isNamespacePrefix reports whether text is empty or a pure namespace
// qualifier like "config::".
func isNamespacePrefix(text string) bool {
	if text == "" {
		return true
	}
	if !strings.HasSuffix(text, "::") {
		return false
	}
	for i := 0; i < len(text); i++ {
		if !isIdentChar(text[i]) && text[i] != ':' {
			return false
		}
	}
	return true
}
