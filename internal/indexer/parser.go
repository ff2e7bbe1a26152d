package indexer

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

var languages = map[string]*sitter.Language{
	"go":         golang.GetLanguage(),
	"python":     python.GetLanguage(),
	"typescript": typescript.GetLanguage(),
	"javascript": javascript.GetLanguage(),
	"java":       java.GetLanguage(),
	"kotlin":     kotlin.GetLanguage(),
}

type parser struct {
	inner *sitter.Parser
}

func newParser() *parser {
	return &parser{inner: sitter.NewParser()}
}

func (p *parser) parse(ctx context.Context, content []byte, language string) (*sitter.Tree, error) {
	lang, ok := languages[language]
	if !ok {
		return nil, fmt.Errorf("unsupported language: %s", language)
	}

	p.inner.SetLanguage(lang)

	tree, err := p.inner.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return tree, nil
}

func (p *parser) close() {
	p.inner.Close()
}
