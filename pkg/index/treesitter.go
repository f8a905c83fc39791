package index

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

func languageFor(path string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return golang.GetLanguage()
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascript.GetLanguage()
	case ".ts":
		return typescript.GetLanguage()
	case ".tsx":
		return tsx.GetLanguage()
	case ".py":
		return python.GetLanguage()
	}
	return nil
}

// declarationKinds maps tree-sitter node types to symbol kinds.
var declarationKinds = map[string]string{
	// Go
	"function_declaration": "func",
	"method_declaration":   "method",
	"type_spec":            "type",
	// JavaScript / TypeScript
	"class_declaration":          "class",
	"abstract_class_declaration": "class",
	"method_definition":          "method",
	"interface_declaration":      "type",
	"type_alias_declaration":     "type",
	"enum_declaration":           "type",
	// Python
	"function_definition": "func",
	"class_definition":    "class",
}

// TreeSitterExtractor parses Go, JavaScript, TypeScript and Python with
// tree-sitter and defers every other language to Fallback.
type TreeSitterExtractor struct {
	Fallback Extractor
}

// NewTreeSitterExtractor returns an extractor falling back to RegexExtractor.
func NewTreeSitterExtractor() *TreeSitterExtractor {
	return &TreeSitterExtractor{Fallback: RegexExtractor{}}
}

func (e *TreeSitterExtractor) Supports(path string) bool {
	if languageFor(path) != nil {
		return true
	}
	return e.Fallback != nil && e.Fallback.Supports(path)
}

func (e *TreeSitterExtractor) Extract(path, content string) []Symbol {
	lang := languageFor(path)
	if lang == nil {
		if e.Fallback != nil {
			return e.Fallback.Extract(path, content)
		}
		return nil
	}

	// A parser per call keeps the extractor safe for concurrent use.
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	src := []byte(content)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil || tree == nil {
		if e.Fallback != nil {
			return e.Fallback.Extract(path, content)
		}
		return nil
	}
	defer tree.Close()

	var out []Symbol
	walk(tree.RootNode(), src, &out)
	return dedupe(out)
}

func walk(node *sitter.Node, src []byte, out *[]Symbol) {
	getText := func(n *sitter.Node) string {
		return string(src[n.StartByte():n.EndByte()])
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		nodeType := child.Type()

		if kind, ok := declarationKinds[nodeType]; ok {
			if name := child.ChildByFieldName("name"); name != nil {
				*out = append(*out, Symbol{Name: getText(name), Kind: kind})
			}
		}

		switch nodeType {
		case "lexical_declaration", "variable_declaration":
			// top-level and exported bindings only
			parent := child.Parent()
			if parent == nil || (parent.Type() != "program" && parent.Type() != "export_statement") {
				break
			}
			for j := 0; j < int(child.NamedChildCount()); j++ {
				decl := child.NamedChild(j)
				if decl.Type() != "variable_declarator" {
					continue
				}
				name := decl.ChildByFieldName("name")
				if name == nil || name.Type() != "identifier" {
					continue
				}
				kind := "var"
				if value := decl.ChildByFieldName("value"); value != nil {
					switch value.Type() {
					case "arrow_function", "function", "function_expression":
						kind = "func"
					}
				}
				*out = append(*out, Symbol{Name: getText(name), Kind: kind})
			}
		}

		walk(child, src, out)
	}
}
