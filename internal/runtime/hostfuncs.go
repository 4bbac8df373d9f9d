package runtime

import (
	"context"
	"log/slog"

	"github.com/risor-io/risor/object"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/lintel/internal/syntax"
)

// nodeArg unwraps a proxied *sitter.Node argument.
func nodeArg(fn string, arg object.Object) (*sitter.Node, *object.Error) {
	proxy, ok := arg.(*object.Proxy)
	if !ok {
		return nil, object.Errorf("%s: expected proxy (Node), got %s", fn, arg.Type())
	}
	node, ok := proxy.Interface().(*sitter.Node)
	if !ok {
		return nil, object.Errorf("%s: expected *sitter.Node, got %T", fn, proxy.Interface())
	}
	return node, nil
}

// makeNodeTextFn creates the "node_text" host function.
//
// node_text(node) → string
//
// Exists because Risor's proxy system cannot convert strings to []byte
// for node.Content([]byte).
func makeNodeTextFn(tree *syntax.Tree) *object.Builtin {
	return object.NewBuiltin("node_text", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("node_text", 1, len(args))
		}
		if tree == nil {
			return object.Errorf("node_text: no syntax tree for this part")
		}
		node, errObj := nodeArg("node_text", args[0])
		if errObj != nil {
			return errObj
		}
		return object.NewString(tree.Text(node))
	})
}

// makeQueryFn creates the "query" host function.
//
// query(pattern, node) → []map[string]Node
//
// Each map has capture names as keys and proxied Nodes as values.
func makeQueryFn(tree *syntax.Tree) *object.Builtin {
	return object.NewBuiltin("query", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("query", 2, len(args))
		}
		if tree == nil {
			return object.Errorf("query: no syntax tree for this part")
		}

		patternStr, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("query: pattern must be a string, got %s", args[0].Type())
		}
		node, errObj := nodeArg("query", args[1])
		if errObj != nil {
			return errObj
		}

		matches, err := tree.Query(patternStr.Value(), node)
		if err != nil {
			return object.Errorf("query: %v", err)
		}

		results := make([]object.Object, 0, len(matches))
		for _, match := range matches {
			matchMap := make(map[string]object.Object, len(match))
			for name, n := range match {
				p, err := object.NewProxy(n)
				if err != nil {
					return object.Errorf("query: proxy error for capture %q: %v", name, err)
				}
				matchMap[name] = p
			}
			results = append(results, object.NewMap(matchMap))
		}
		return object.NewList(results)
	})
}

// makeNodeChildFn creates "node_child": a wrapper for ChildByFieldName
// that returns Risor nil instead of a proxied Go nil pointer.
//
// node_child(node, fieldName) → Node or nil
func makeNodeChildFn() *object.Builtin {
	return object.NewBuiltin("node_child", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("node_child", 2, len(args))
		}
		node, errObj := nodeArg("node_child", args[0])
		if errObj != nil {
			return errObj
		}
		fieldStr, ok := args[1].(*object.String)
		if !ok {
			return object.Errorf("node_child: field must be a string, got %s", args[1].Type())
		}

		child := node.ChildByFieldName(fieldStr.Value())
		if child == nil {
			return object.Nil
		}
		p, err := object.NewProxy(child)
		if err != nil {
			return object.Errorf("node_child: proxy error: %v", err)
		}
		return p
	})
}

// makeNodeRangeFn creates "node_range", which returns a node's 1-indexed
// range in the shape findings use.
//
// node_range(node) → {row, column, end_row, end_column}
func makeNodeRangeFn() *object.Builtin {
	return object.NewBuiltin("node_range", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("node_range", 1, len(args))
		}
		node, errObj := nodeArg("node_range", args[0])
		if errObj != nil {
			return errObj
		}
		r := syntax.NodeRange(node)
		return object.NewMap(map[string]object.Object{
			"row":        object.NewInt(int64(r.Start.Row)),
			"column":     object.NewInt(int64(r.Start.Column)),
			"end_row":    object.NewInt(int64(r.End.Row)),
			"end_column": object.NewInt(int64(r.End.Column)),
		})
	})
}

// logObject provides log.Info/Warn/Error methods for Risor scripts.
type logObject struct {
	logger *slog.Logger
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg)
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg)
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg)
}
