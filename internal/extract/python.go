package extract

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/lumendocs/lumen/internal/entity"
)

// pythonExtractor parses Python source with the language's own grammar and
// walks the tree for function and class definitions.
type pythonExtractor struct{}

func (pythonExtractor) Language() entity.Language { return entity.LangPython }

func (p pythonExtractor) Extract(src string) ([]Capture, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(sitter.NewLanguage(python.Language()))

	source := []byte(src)
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, &ParseError{Language: entity.LangPython}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		detail := "syntax error"
		if line := firstErrorLine(root); line > 0 {
			detail = fmt.Sprintf("syntax error near line %d", line)
		}
		return nil, &ParseError{Language: entity.LangPython, Detail: detail}
	}

	var captures []Capture

	// classIdx is the 1-based capture position of the class whose body the
	// walk is inside, without an intervening function scope. Function bodies
	// reset it so nested defs come out as plain functions.
	var walk func(node *sitter.Node, classIdx int)
	walk = func(node *sitter.Node, classIdx int) {
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(uint(i))
			switch child.Kind() {
			case "class_definition":
				captures = append(captures, p.captureClass(child, source, classIdx))
				walk(child, len(captures))
			case "function_definition":
				captures = append(captures, p.captureFunction(child, source, classIdx))
				walk(child, 0)
			default:
				walk(child, classIdx)
			}
		}
	}
	walk(root, 0)

	return captures, nil
}

func (p pythonExtractor) captureClass(node *sitter.Node, source []byte, classIdx int) Capture {
	return Capture{
		Kind:       entity.KindClass,
		Name:       nodeText(node.ChildByFieldName("name"), source),
		Doc:        p.docstring(node, source),
		StartLine:  nodeStartLine(node),
		EndLine:    nodeEndLine(node),
		SourceText: nodeText(node, source),
		Parent:     classIdx,
	}
}

func (p pythonExtractor) captureFunction(node *sitter.Node, source []byte, classIdx int) Capture {
	kind := entity.KindFunction
	if classIdx > 0 {
		kind = entity.KindMethod
	}

	params := p.parameters(node.ChildByFieldName("parameters"), source)
	if kind == entity.KindMethod && len(params) > 0 {
		if params[0].Name == "self" || params[0].Name == "cls" {
			params = params[1:]
		}
	}

	return Capture{
		Kind:       kind,
		Name:       nodeText(node.ChildByFieldName("name"), source),
		Parameters: params,
		ReturnType: nodeText(node.ChildByFieldName("return_type"), source),
		Doc:        p.docstring(node, source),
		StartLine:  nodeStartLine(node),
		EndLine:    nodeEndLine(node),
		SourceText: nodeText(node, source),
		Parent:     classIdx,
	}
}

// parameters reads a parameters node into ordered name/type pairs. Splat
// parameters and the bare */ separators are not call-site arguments and are
// skipped.
func (p pythonExtractor) parameters(node *sitter.Node, source []byte) []entity.Param {
	var params []entity.Param
	for _, child := range namedChildren(node) {
		switch child.Kind() {
		case "identifier":
			params = append(params, entity.Param{Name: nodeText(child, source)})
		case "typed_parameter":
			name := ""
			if inner := firstChildOfKind(child, "identifier"); inner != nil {
				name = nodeText(inner, source)
			}
			params = append(params, entity.Param{
				Name:         name,
				DeclaredType: nodeText(child.ChildByFieldName("type"), source),
			})
		case "default_parameter":
			params = append(params, entity.Param{
				Name:    nodeText(child.ChildByFieldName("name"), source),
				Default: nodeText(child.ChildByFieldName("value"), source),
			})
		case "typed_default_parameter":
			params = append(params, entity.Param{
				Name:         nodeText(child.ChildByFieldName("name"), source),
				DeclaredType: nodeText(child.ChildByFieldName("type"), source),
				Default:      nodeText(child.ChildByFieldName("value"), source),
			})
		}
	}
	return params
}

// docstring returns the first string-literal statement of a definition
// body, with quotes stripped and indentation cleaned.
func (p pythonExtractor) docstring(node *sitter.Node, source []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	stmt := body.NamedChild(0)
	if stmt.Kind() != "expression_statement" || stmt.NamedChildCount() == 0 {
		return ""
	}
	str := stmt.NamedChild(0)
	if str.Kind() != "string" {
		return ""
	}
	return cleanDocstring(nodeText(str, source))
}

// cleanDocstring strips quotes and string prefixes, then normalizes
// indentation the way inspect.cleandoc does.
func cleanDocstring(raw string) string {
	s := raw

	// String prefix letters (r, b, u, f in any combination).
	for len(s) > 0 && s[0] != '"' && s[0] != '\'' {
		s = s[1:]
	}

	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			s = s[len(q) : len(s)-len(q)]
			break
		}
	}

	lines := strings.Split(s, "\n")
	if len(lines) == 1 {
		return strings.TrimSpace(lines[0])
	}

	// Common leading whitespace of all lines after the first.
	indent := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		lead := len(line) - len(trimmed)
		if indent == -1 || lead < indent {
			indent = lead
		}
	}

	out := []string{strings.TrimSpace(lines[0])}
	for _, line := range lines[1:] {
		if indent > 0 && len(line) >= indent {
			line = line[indent:]
		}
		out = append(out, strings.TrimRight(line, " \t"))
	}

	return strings.Trim(strings.Join(out, "\n"), "\n")
}
