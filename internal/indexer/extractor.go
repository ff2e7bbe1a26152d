package indexer

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/trackhub/backend/internal/models"
)

// declarationKinds maps tree-sitter node types to entity kinds, per
// language. Only top-level-ish declarations are indexed; statements and
// expressions stay out of the graph.
var declarationKinds = map[string]map[string]string{
	"go": {
		"function_declaration": "function",
		"method_declaration":   "method",
		"type_declaration":     "type",
	},
	"python": {
		"function_definition": "function",
		"class_definition":    "class",
	},
	"typescript": {
		"function_declaration":  "function",
		"method_definition":     "method",
		"class_declaration":     "class",
		"interface_declaration": "interface",
	},
	"javascript": {
		"function_declaration": "function",
		"method_definition":    "method",
		"class_declaration":    "class",
	},
	"java": {
		"method_declaration":    "method",
		"class_declaration":     "class",
		"interface_declaration": "interface",
	},
	"kotlin": {
		"function_declaration": "function",
		"class_declaration":    "class",
	},
}

// maxSummaryBytes caps what gets embedded per declaration.
const maxSummaryBytes = 1024

// Extractor pulls declarations out of source files for indexing.
type Extractor struct {
	parser *parser
}

func NewExtractor() *Extractor {
	return &Extractor{parser: newParser()}
}

func (e *Extractor) Close() {
	e.parser.close()
}

// Extract returns the declarations found in one source file.
func (e *Extractor) Extract(ctx context.Context, content []byte, language, filePath string) ([]models.CodeEntity, error) {
	kinds, ok := declarationKinds[language]
	if !ok {
		return nil, nil
	}

	tree, err := e.parser.parse(ctx, content, language)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var entities []models.CodeEntity
	walk(tree.RootNode(), func(node *sitter.Node) {
		kind, ok := kinds[node.Type()]
		if !ok {
			return
		}
		name := declarationName(node, content)
		if name == "" {
			return
		}
		entities = append(entities, models.CodeEntity{
			FilePath:  filePath,
			Kind:      kind,
			Name:      name,
			Summary:   summarize(node, content, filePath),
			StartLine: int(node.StartPoint().Row) + 1,
			EndLine:   int(node.EndPoint().Row) + 1,
		})
	})
	return entities, nil
}

func walk(node *sitter.Node, visit func(*sitter.Node)) {
	visit(node)
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child != nil {
			walk(child, visit)
		}
	}
}

// declarationName finds the declared identifier. Most grammars expose it as
// the "name" field; Go type_declaration nests it inside a type_spec.
func declarationName(node *sitter.Node, content []byte) string {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return nodeText(nameNode, content)
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		if child.Type() == "type_spec" {
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				return nodeText(nameNode, content)
			}
		}
	}
	return ""
}

// summarize builds the retrieval text: path, then the declaration up to its
// body, then a bounded slice of the source.
func summarize(node *sitter.Node, content []byte, filePath string) string {
	text := nodeText(node, content)
	if body := node.ChildByFieldName("body"); body != nil && body.StartByte() > node.StartByte() {
		signature := strings.TrimSpace(string(content[node.StartByte():body.StartByte()]))
		text = signature + "\n" + text
	}
	if len(text) > maxSummaryBytes {
		text = text[:maxSummaryBytes]
	}
	return filePath + "\n" + text
}

func nodeText(node *sitter.Node, content []byte) string {
	start, end := node.StartByte(), node.EndByte()
	if int(end) > len(content) || start >= end {
		return ""
	}
	return string(content[start:end])
}
