// Package syntax parses project modules with tree-sitter and converts node
// positions into lintel ranges.
package syntax

import (
	"context"
	"fmt"
	"math"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/lintel"
)

// Tree is a parsed module: the tree-sitter tree plus the source and
// language it was parsed from. It is the value workspaces store in
// lintel.Module.Syntax.
type Tree struct {
	Language string
	Source   []byte

	tree *sitter.Tree
}

// Parse parses src as the given language.
func Parse(ctx context.Context, lang string, src []byte) (*Tree, error) {
	grammar, ok := GrammarForLanguage(lang)
	if !ok {
		return nil, fmt.Errorf("syntax: unsupported language %q", lang)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("syntax: parse %s: %w", lang, err)
	}
	return &Tree{Language: lang, Source: src, tree: tree}, nil
}

// ParseFile parses src using the language implied by path's extension.
func ParseFile(ctx context.Context, path string, src []byte) (*Tree, error) {
	lang, ok := LanguageForFile(path)
	if !ok {
		return nil, fmt.Errorf("syntax: no language for %s", path)
	}
	return Parse(ctx, lang, src)
}

// Root returns the root node.
func (t *Tree) Root() *sitter.Node {
	return t.tree.RootNode()
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() {
	t.tree.Close()
}

// Text returns the source text covered by n.
func (t *Tree) Text(n *sitter.Node) string {
	return n.Content(t.Source)
}

// Match maps capture names to the captured nodes of one query match.
type Match map[string]*sitter.Node

// Query runs a tree-sitter query pattern under n and returns its matches in
// document order, with predicates (#eq?, #match?) applied.
func (t *Tree) Query(pattern string, n *sitter.Node) ([]Match, error) {
	grammar, ok := GrammarForLanguage(t.Language)
	if !ok {
		return nil, fmt.Errorf("syntax: unsupported language %q", t.Language)
	}
	q, err := sitter.NewQuery([]byte(pattern), grammar)
	if err != nil {
		return nil, fmt.Errorf("syntax: invalid query: %w", err)
	}
	defer q.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, n)

	var matches []Match
	for {
		m, ok := cursor.NextMatch()
		if !ok {
			break
		}
		m = cursor.FilterPredicates(m, t.Source)
		if len(m.Captures) == 0 {
			continue
		}
		match := make(Match, len(m.Captures))
		for _, c := range m.Captures {
			match[q.CaptureNameForId(c.Index)] = c.Node
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// NodeRange converts a node's zero-based byte points to a 1-indexed range.
func NodeRange(n *sitter.Node) lintel.Range {
	return lintel.Range{
		Start: PointPosition(n.StartPoint()),
		End:   PointPosition(n.EndPoint()),
	}
}

// PointPosition converts a zero-based tree-sitter point to a 1-indexed
// position.
func PointPosition(p sitter.Point) lintel.Position {
	return lintel.Position{Row: toInt(p.Row) + 1, Column: toInt(p.Column) + 1}
}

func toInt(v uint32) int {
	n, err := safecast.Conv[int](v)
	if err != nil {
		return math.MaxInt - 1
	}
	return n
}
