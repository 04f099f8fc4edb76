package cpp

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/propdoc/propdoc/internal/property"
)

// ExtractArguments parses a definition file and returns, per field name,
// the ordered constructor arguments from the member-initializer list. The
// implicit leading self/context argument (*this) is dropped, string
// literals are unescaped with adjacent-literal concatenations folded, and
// designated initializer lists are flattened into designator → value
// mappings.
func ExtractArguments(ctx context.Context, path string) (map[string][]property.RawParameter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	args := make(map[string][]property.RawParameter)

	walkTree(file.root(), func(node *sitter.Node) bool {
		if node.Kind() != "field_initializer" {
			return true
		}

		nameNode := findChildByType(node, "field_identifier")
		if nameNode == nil {
			return true
		}
		name := extractNodeText(nameNode, file.source)

		list := findChildByType(node, "argument_list")
		if list == nil {
			// Brace-initialized member: field{...}
			list = findChildByType(node, "initializer_list")
		}
		if list == nil {
			return true
		}

		var params []property.RawParameter
		for i := 0; i < int(list.NamedChildCount()); i++ {
			child := list.NamedChild(uint(i))
			if child.Kind() == "comment" {
				continue
			}
			params = append(params, classifyArgument(child, file.source))
		}

		// Drop the leading self/context argument.
		if len(params) > 0 && params[0].Kind == property.KindPointer && params[0].Value == "*this" {
			params = params[1:]
		}

		args[name] = params
		return false
	})

	return args, nil
}

// classifyArgument tags one argument node with its syntactic kind and
// normalizes its text.
func classifyArgument(node *sitter.Node, source []byte) property.RawParameter {
	switch node.Kind() {
	case "string_literal", "raw_string_literal":
		return property.RawParameter{
			Value: unquoteString(extractNodeText(node, source)),
			Kind:  property.KindString,
		}

	case "concatenated_string":
		// Adjacent literals fold into one logical string.
		var b strings.Builder
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(uint(i))
			if child.Kind() == "string_literal" || child.Kind() == "raw_string_literal" {
				b.WriteString(unquoteString(extractNodeText(child, source)))
			}
		}
		return property.RawParameter{Value: b.String(), Kind: property.KindString}

	case "number_literal", "user_defined_literal":
		// User-defined literals (128_MiB, 10s) keep their suffix text;
		// the default-value transformers interpret it.
		return property.RawParameter{
			Value: extractNodeText(node, source),
			Kind:  property.KindNumber,
		}

	case "unary_expression":
		// Signed literals arrive as unary expressions.
		if findChildByType(node, "number_literal") != nil || findChildByType(node, "user_defined_literal") != nil {
			return property.RawParameter{
				Value: extractNodeText(node, source),
				Kind:  property.KindNumber,
			}
		}
		return property.RawParameter{
			Value: extractNodeText(node, source),
			Kind:  property.KindOther,
		}

	case "true", "false":
		return property.RawParameter{
			Value: node.Kind(),
			Kind:  property.KindBool,
		}

	case "identifier", "qualified_identifier", "field_expression":
		return property.RawParameter{
			Value: extractNodeText(node, source),
			Kind:  property.KindIdentifier,
		}

	case "call_expression":
		return property.RawParameter{
			Value: extractNodeText(node, source),
			Kind:  property.KindCall,
		}

	case "lambda_expression":
		return property.RawParameter{
			Value: extractNodeText(node, source),
			Kind:  property.KindLambda,
		}

	case "pointer_expression":
		return property.RawParameter{
			Value: extractNodeText(node, source),
			Kind:  property.KindPointer,
		}

	case "initializer_list":
		return property.RawParameter{
			Value:  extractNodeText(node, source),
			Kind:   property.KindInitializer,
			Fields: flattenInitializer(node, source),
		}

	case "compound_literal_expression":
		// Typed brace expression: meta{...}, std::vector<T>{...}.
		if init := findChildByType(node, "initializer_list"); init != nil {
			return property.RawParameter{
				Value:  extractNodeText(node, source),
				Kind:   property.KindInitializer,
				Fields: flattenInitializer(init, source),
			}
		}
		return property.RawParameter{
			Value: extractNodeText(node, source),
			Kind:  property.KindOther,
		}

	default:
		return property.RawParameter{
			Value: extractNodeText(node, source),
			Kind:  property.KindOther,
		}
	}
}

// flattenInitializer recursively flattens designated-initializer pairs
// (.designator = value) into a mapping. Returns nil when the list carries
// no designators (a plain value list).
func flattenInitializer(node *sitter.Node, source []byte) map[string]property.RawParameter {
	var fields map[string]property.RawParameter

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(uint(i))
		if child.Kind() != "initializer_pair" {
			continue
		}

		designator := child.ChildByFieldName("designator")
		value := child.ChildByFieldName("value")
		if designator == nil || value == nil {
			continue
		}

		key := strings.TrimPrefix(extractNodeText(designator, source), ".")
		if fields == nil {
			fields = make(map[string]property.RawParameter)
		}
		fields[key] = classifyArgument(value, source)
	}

	return fields
}
