package parser

import (
	"fmt"
	"os"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"

	"github.com/mvp-joe/codenav/internal/graph"
)

var goCalls = callSpec{
	callKind:    "call_expression",
	memberKind:  "selector_expression",
	memberField: "field_identifier",
}

type goParser struct {
	language *sitter.Language
}

// NewGoParser returns the parser for Go source.
func NewGoParser() FileParser {
	return &goParser{language: sitter.NewLanguage(golang.Language())}
}

func (p *goParser) Language() string { return "go" }

func (p *goParser) Extensions() []string { return []string{".go"} }

func (p *goParser) IsTestFile(path string) bool {
	return strings.HasSuffix(path, "_test.go")
}

func (p *goParser) ParseFile(filePath string, g *graph.Graph) error {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return fmt.Errorf("failed to parse Go file: %s", filePath)
	}
	defer tree.Close()

	root := tree.RootNode()
	pkg := goPackageName(root, source)
	p.walk(root, source, filePath, pkg, g)
	return nil
}

func goPackageName(root *sitter.Node, source []byte) string {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(uint(i))
		if child.Kind() != "package_clause" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			if id := child.Child(uint(j)); id.Kind() == "package_identifier" {
				return nodeText(id, source)
			}
		}
	}
	return "unknown"
}

func (p *goParser) walk(n *sitter.Node, source []byte, filePath, pkg string, g *graph.Graph) {
	switch n.Kind() {
	case "function_declaration":
		p.extractFunction(n, source, filePath, pkg, g)
	case "method_declaration":
		p.extractMethod(n, source, filePath, pkg, g)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		p.walk(n.Child(uint(i)), source, filePath, pkg, g)
	}
}

func (p *goParser) extractFunction(n *sitter.Node, source []byte, filePath, pkg string, g *graph.Graph) {
	var name string
	var params []graph.Parameter

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(uint(i))
		switch child.Kind() {
		case "identifier":
			if name == "" {
				name = nodeText(child, source)
			}
		case "parameter_list":
			params = goParameters(child, source)
		}
	}
	if name == "" {
		return
	}

	p.addDeclaration(n, source, filePath, pkg, name, graph.NodeFunction, params, g)
}

func (p *goParser) extractMethod(n *sitter.Node, source []byte, filePath, pkg string, g *graph.Graph) {
	var name string
	var params []graph.Parameter
	paramLists := 0

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(uint(i))
		switch child.Kind() {
		case "field_identifier":
			if name == "" {
				name = nodeText(child, source)
			}
		case "parameter_list":
			// The first parameter_list is the receiver.
			paramLists++
			if paramLists == 2 {
				params = goParameters(child, source)
			}
		}
	}
	if name == "" {
		return
	}

	p.addDeclaration(n, source, filePath, pkg, name, graph.NodeMethod, params, g)
}

func (p *goParser) addDeclaration(n *sitter.Node, source []byte, filePath, pkg, name string, typ graph.NodeType, params []graph.Parameter, g *graph.Graph) {
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

	collectCalls(n, source, filePath, id, goCalls, g)
}

// goParameterTypeKinds are the grammar kinds accepted as a parameter's type.
var goParameterTypeKinds = map[string]struct{}{
	"type_identifier": {},
	"pointer_type":    {},
	"slice_type":      {},
	"array_type":      {},
	"map_type":        {},
	"interface_type":  {},
	"qualified_type":  {},
}

func goParameters(list *sitter.Node, source []byte) []graph.Parameter {
	var params []graph.Parameter

	for i := 0; i < int(list.ChildCount()); i++ {
		decl := list.Child(uint(i))
		if decl.Kind() != "parameter_declaration" {
			continue
		}

		var name, paramType string
		for j := 0; j < int(decl.ChildCount()); j++ {
			child := decl.Child(uint(j))
			if child.Kind() == "identifier" && name == "" {
				name = nodeText(child, source)
				continue
			}
			if _, ok := goParameterTypeKinds[child.Kind()]; ok {
				paramType = nodeText(child, source)
			}
		}

		if name == "" && paramType == "" {
			continue
		}
		if name == "" {
			name = "_"
		}
		params = append(params, graph.Parameter{Name: name, ParamType: paramType})
	}

	return params
}
