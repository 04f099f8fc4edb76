// Package cpp is the syntax access layer: it parses C++ source with
// tree-sitter and extracts configuration-property declarations and
// constructor arguments from the resulting concrete syntax tree.
package cpp

import (
	"fmt"
	"os"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
)

// cppLanguage is shared across parses; tree-sitter languages are immutable.
var cppLanguage = sitter.NewLanguage(tree_sitter_cpp.Language())

// parsedFile holds a parsed source file and its syntax tree. Callers must
// Close it to release the tree.
type parsedFile struct {
	path   string
	source []byte
	tree   *sitter.Tree
}

// parseFile reads and parses a C++ source file.
func parseFile(path string) (*parsedFile, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseSource(path, source)
}

// parseSource parses C++ source bytes.
func parseSource(path string, source []byte) (*parsedFile, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(cppLanguage)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s", path)
	}

	return &parsedFile{
		path:   path,
		source: source,
		tree:   tree,
	}, nil
}

func (f *parsedFile) root() *sitter.Node {
	return f.tree.RootNode()
}

func (f *parsedFile) Close() {
	f.tree.Close()
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// walkTree recursively walks a tree-sitter tree and calls the visitor for
// each node. Returning false from the visitor skips the node's children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		walkTree(child, visitor)
	}
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == nodeType {
			return child
		}
	}
	return nil
}

// findDescendantByType finds the first descendant with the given type,
// depth-first.
func findDescendantByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.Kind() == nodeType {
		return node
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		if found := findDescendantByType(node.Child(uint(i)), nodeType); found != nil {
			return found
		}
	}
	return nil
}

// unquoteString strips the surrounding quotes from a C++ string literal and
// resolves the common escape sequences. Raw string literals R"(...)" lose
// only their delimiters.
func unquoteString(text string) string {
	if strings.HasPrefix(text, "R\"") {
		// R"delim(content)delim"
		open := strings.Index(text, "(")
		end := strings.LastIndex(text, ")")
		if open >= 0 && end > open {
			return text[open+1 : end]
		}
		return text
	}

	text = strings.TrimPrefix(text, "\"")
	text = strings.TrimSuffix(text, "\"")

	if !strings.Contains(text, "\\") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' || i+1 >= len(text) {
			b.WriteByte(c)
			continue
		}
		i++
		switch text[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case '\'':
			b.WriteByte('\'')
		case '0':
			b.WriteByte(0)
		default:
			b.WriteByte('\\')
			b.WriteByte(text[i])
		}
	}
	return b.String()
}
