package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/mvp-joe/codenav/internal/graph"
)

var pythonCalls = callSpec{
	callKind:    "call",
	memberKind:  "attribute",
	memberField: "identifier",
}

type pythonParser struct {
	language *sitter.Language
}

// NewPythonParser returns the parser for Python source. The enclosing
// directory name stands in for the package, since Python has no in-file
// package declaration.
func NewPythonParser() FileParser {
	return &pythonParser{language: sitter.NewLanguage(python.Language())}
}

func (p *pythonParser) Language() string { return "python" }

func (p *pythonParser) Extensions() []string { return []string{".py"} }

func (p *pythonParser) IsTestFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test.py")
}

func (p *pythonParser) ParseFile(filePath string, g *graph.Graph) error {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return fmt.Errorf("failed to parse Python file: %s", filePath)
	}
	defer tree.Close()

	pkg := filepath.Base(filepath.Dir(filePath))
	if pkg == "." || pkg == string(filepath.Separator) {
		pkg = "default"
	}

	p.walk(tree.RootNode(), source, filePath, pkg, false, g)
	return nil
}

// walk carries an insideClass flag down the tree: function_definitions under
// a class_definition are methods, everything else is a plain function.
func (p *pythonParser) walk(n *sitter.Node, source []byte, filePath, pkg string, insideClass bool, g *graph.Graph) {
	if n.Kind() == "function_definition" {
		typ := graph.NodeFunction
		if insideClass {
			typ = graph.NodeMethod
		}
		p.extractDefinition(n, source, filePath, pkg, typ, g)
	}

	if n.Kind() == "class_definition" {
		insideClass = true
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		p.walk(n.Child(uint(i)), source, filePath, pkg, insideClass, g)
	}
}

func (p *pythonParser) extractDefinition(n *sitter.Node, source []byte, filePath, pkg string, typ graph.NodeType, g *graph.Graph) {
	var name string
	var params []graph.Parameter

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(uint(i))
		switch child.Kind() {
		case "identifier":
			if name == "" {
				name = nodeText(child, source)
			}
		case "parameters":
			params = pythonParameters(child, source)
		}
	}
	if name == "" {
		return
	}

	line := lineOf(n)
	id := nodeID(filePath, name, line)

	g.AddNode(graph.Node{
		ID:         id,
		Name:       name,
		Type:       typ,
		FilePath:   filePath,
		Line:       line,
		EndLine:    endLineOf(n),
		Package:    pkg,
		Signature:  signatureOf(n, source),
		Parameters: params,
	})

	collectCalls(n, source, filePath, id, pythonCalls, g)
}

// pythonParameters skips self and cls; untyped parameters get "Any".
func pythonParameters(list *sitter.Node, source []byte) []graph.Parameter {
	var params []graph.Parameter

	for i := 0; i < int(list.ChildCount()); i++ {
		child := list.Child(uint(i))
		switch child.Kind() {
		case "identifier":
			name := nodeText(child, source)
			if name == "self" || name == "cls" {
				continue
			}
			params = append(params, graph.Parameter{Name: name, ParamType: "Any"})
		case "typed_parameter", "default_parameter", "typed_default_parameter":
			var name, paramType string
			for j := 0; j < int(child.ChildCount()); j++ {
				sub := child.Child(uint(j))
				switch sub.Kind() {
				case "identifier":
					if name == "" {
						name = nodeText(sub, source)
					}
				case "type":
					paramType = nodeText(sub, source)
				}
			}
			if name == "" || name == "self" || name == "cls" {
				continue
			}
			if paramType == "" {
				paramType = "Any"
			}
			params = append(params, graph.Parameter{Name: name, ParamType: paramType})
		}
	}

	return params
}
