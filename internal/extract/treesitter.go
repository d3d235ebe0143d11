package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// nodeText extracts the text content of a tree-sitter node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// nodeStartLine and nodeEndLine return 1-based line numbers.
func nodeStartLine(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

func nodeEndLine(node *sitter.Node) int {
	return int(node.EndPosition().Row) + 1
}

// firstChildOfKind finds the first direct child with the given kind.
func firstChildOfKind(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child.Kind() == kind {
			return child
		}
	}
	return nil
}

// namedChildren returns the named children of a node.
func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	children := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := 0; i < int(node.NamedChildCount()); i++ {
		children = append(children, node.NamedChild(uint(i)))
	}
	return children
}

// firstErrorLine walks the tree for the first syntax error node and returns
// its 1-based line, or 0 when the tree is clean.
func firstErrorLine(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	if node.IsError() || node.IsMissing() {
		return nodeStartLine(node)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if line := firstErrorLine(node.Child(uint(i))); line != 0 {
			return line
		}
	}
	return 0
}
