package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/mvp-joe/codenav/internal/graph"
)

var typescriptCalls = callSpec{
	callKind:    "call_expression",
	memberKind:  "member_expression",
	memberField: "property_identifier",
}

type typescriptParser struct {
	language   *sitter.Language
	lang       string
	extensions []string
}

// NewTypeScriptParser returns the parser for TypeScript or JavaScript
// source. The TypeScript grammar handles both; lang only selects the
// extension set and the language name in metadata.
func NewTypeScriptParser(lang string) FileParser {
	extensions := []string{".ts", ".tsx"}
	if lang == "javascript" {
		extensions = []string{".js", ".jsx"}
	}
	return &typescriptParser{
		language:   sitter.NewLanguage(typescript.LanguageTypescript()),
		lang:       lang,
		extensions: extensions,
	}
}

func (p *typescriptParser) Language() string { return p.lang }

func (p *typescriptParser) Extensions() []string { return p.extensions }

func (p *typescriptParser) IsTestFile(path string) bool {
	base := filepath.Base(path)
	return strings.Contains(base, ".test.") || strings.Contains(base, ".spec.")
}

func (p *typescriptParser) ParseFile(filePath string, g *graph.Graph) error {
	source, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return fmt.Errorf("failed to parse %s file: %s", p.lang, filePath)
	}
	defer tree.Close()

	pkg := filepath.Base(filepath.Dir(filePath))
	if pkg == "." || pkg == string(filepath.Separator) {
		pkg = "default"
	}

	p.walk(tree.RootNode(), source, filePath, pkg, g)
	return nil
}

func (p *typescriptParser) walk(n *sitter.Node, source []byte, filePath, pkg string, g *graph.Graph) {
	switch n.Kind() {
	case "function_declaration", "function_expression":
		p.extractFunction(n, source, filePath, pkg, g)
	case "method_definition":
		p.extractMethod(n, source, filePath, pkg, g)
	case "arrow_function":
		p.extractArrowFunction(n, source, filePath, pkg, g)
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		p.walk(n.Child(uint(i)), source, filePath, pkg, g)
	}
}

func (p *typescriptParser) extractFunction(n *sitter.Node, source []byte, filePath, pkg string, g *graph.Graph) {
	var name string
	var params []graph.Parameter

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(uint(i))
		switch child.Kind() {
		case "identifier":
			if name == "" {
				name = nodeText(child, source)
			}
		case "formal_parameters":
			params = typescriptParameters(child, source)
		}
	}
	if name == "" {
		name = "anonymous"
	}

	p.addDeclaration(n, source, filePath, pkg, name, graph.NodeFunction, params, g)
}

func (p *typescriptParser) extractMethod(n *sitter.Node, source []byte, filePath, pkg string, g *graph.Graph) {
	var name string
	var params []graph.Parameter

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(uint(i))
		switch child.Kind() {
		case "property_identifier":
			if name == "" {
				name = nodeText(child, source)
			}
		case "formal_parameters":
			params = typescriptParameters(child, source)
		}
	}
	if name == "" {
		return
	}

	p.addDeclaration(n, source, filePath, pkg, name, graph.NodeMethod, params, g)
}

// extractArrowFunction records arrow functions bound to a variable under the
// variable's name. Anonymous arrows (inline callbacks) are skipped; their
// call sites attach to the enclosing declaration instead.
func (p *typescriptParser) extractArrowFunction(n *sitter.Node, source []byte, filePath, pkg string, g *graph.Graph) {
	parent := n.Parent()
	if parent == nil || parent.Kind() != "variable_declarator" {
		return
	}

	var name string
	for i := 0; i < int(parent.ChildCount()); i++ {
		if child := parent.Child(uint(i)); child.Kind() == "identifier" {
			name = nodeText(child, source)
			break
		}
	}
	if name == "" {
		return
	}

	var params []graph.Parameter
	for i := 0; i < int(n.ChildCount()); i++ {
		if child := n.Child(uint(i)); child.Kind() == "formal_parameters" {
			params = typescriptParameters(child, source)
		}
	}

	p.addDeclaration(n, source, filePath, pkg, name, graph.NodeFunction, params, g)
}

func (p *typescriptParser) addDeclaration(n *sitter.Node, source []byte, filePath, pkg, name string, typ graph.NodeType, params []graph.Parameter, g *graph.Graph) {
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

	collectCalls(n, source, filePath, id, typescriptCalls, g)
}

// typescriptParameters reads required and optional parameters; untyped ones
// get "any".
func typescriptParameters(list *sitter.Node, source []byte) []graph.Parameter {
	var params []graph.Parameter

	for i := 0; i < int(list.ChildCount()); i++ {
		child := list.Child(uint(i))
		if child.Kind() != "required_parameter" && child.Kind() != "optional_parameter" {
			continue
		}

		var name, paramType string
		for j := 0; j < int(child.ChildCount()); j++ {
			sub := child.Child(uint(j))
			switch sub.Kind() {
			case "identifier":
				if name == "" {
					name = nodeText(sub, source)
				}
			case "type_annotation":
				for k := 0; k < int(sub.ChildCount()); k++ {
					if t := sub.Child(uint(k)); t.Kind() != ":" {
						paramType = nodeText(t, source)
					}
				}
			}
		}

		if name == "" {
			continue
		}
		if paramType == "" {
			paramType = "any"
		}
		params = append(params, graph.Parameter{Name: name, ParamType: paramType})
	}

	return params
}
