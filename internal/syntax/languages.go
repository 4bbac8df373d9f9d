package syntax

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// language is one source language lintel parses into modules. Only
// languages the built-in and embedded reviews query are registered.
type language struct {
	name       string
	extensions []string
	grammar    func() *sitter.Language
}

var languages = []language{
	{name: "go", extensions: []string{".go"}, grammar: golang.GetLanguage},
	{name: "python", extensions: []string{".py", ".pyi"}, grammar: python.GetLanguage},
	{name: "javascript", extensions: []string{".js", ".jsx", ".mjs", ".cjs"}, grammar: javascript.GetLanguage},
	{name: "typescript", extensions: []string{".ts", ".tsx", ".mts", ".cts"}, grammar: typescript.GetLanguage},
}

// Languages returns the names of the supported languages.
func Languages() []string {
	names := make([]string, len(languages))
	for i, l := range languages {
		names[i] = l.name
	}
	return names
}

// LanguageForFile names the language of path by its extension, ignoring
// case. Files of any other extension are not modules.
func LanguageForFile(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, l := range languages {
		for _, e := range l.extensions {
			if e == ext {
				return l.name, true
			}
		}
	}
	return "", false
}

// GrammarForLanguage returns the tree-sitter grammar for a language name.
func GrammarForLanguage(name string) (*sitter.Language, bool) {
	for _, l := range languages {
		if l.name == name {
			return l.grammar(), true
		}
	}
	return nil, false
}
