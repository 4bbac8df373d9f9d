package reviews

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/lintel"
	"github.com/jward/lintel/internal/syntax"
)

// DebugPrintName is the name of the debug-print review.
const DebugPrintName = "debug-print"

// debugPrintQueries capture the offending call as @call.
var debugPrintQueries = map[string]string{
	"go": `(call_expression
	function: (selector_expression
		operand: (identifier) @pkg
		field: (field_identifier) @fn)
	(#eq? @pkg "fmt")
	(#match? @fn "^Print(ln|f)?$")) @call`,
	"python": `(call
	function: (identifier) @fn
	(#eq? @fn "print")) @call`,
	"javascript": `(call_expression
	function: (member_expression
		object: (identifier) @obj
		property: (property_identifier) @prop)
	(#eq? @obj "console")
	(#match? @prop "^(log|debug)$")) @call`,
}

func init() {
	debugPrintQueries["typescript"] = debugPrintQueries["javascript"]
}

// DebugPrint reports print calls left in modules: fmt.Print* in Go,
// print() in Python and console.log/debug in JavaScript and TypeScript.
// When the call is the only statement on its line, the error carries a fix
// deleting that line.
func DebugPrint() lintel.Review[[]lintel.Error] {
	return lintel.NewReview(DebugPrintName, concat, identity,
		lintel.FromModule(debugPrints),
	)
}

func debugPrints(m lintel.Module) []lintel.Error {
	tree, ok := m.Syntax.(*syntax.Tree)
	if !ok || tree == nil {
		return nil
	}
	pattern, ok := debugPrintQueries[tree.Language]
	if !ok {
		return nil
	}
	matches, err := tree.Query(pattern, tree.Root())
	if err != nil {
		return nil
	}

	lines := strings.Split(m.Source, "\n")
	var errs []lintel.Error
	for _, match := range matches {
		call := match["call"]
		if call == nil {
			continue
		}
		e := lintel.Error{
			Path:    m.Path,
			Range:   syntax.NodeRange(call),
			Message: fmt.Sprintf("debug print %s", firstLine(tree.Text(call))),
		}
		if row, ok := soleStatementRow(call, lines); ok {
			e.Fixes = []lintel.Fix{lineRemoval(row)}
		}
		errs = append(errs, e)
	}
	return errs
}

// soleStatementRow returns the row of the statement wrapping call when that
// statement fills its line on its own.
func soleStatementRow(call *sitter.Node, lines []string) (int, bool) {
	stmt := call.Parent()
	if stmt == nil || stmt.Type() != "expression_statement" {
		return 0, false
	}
	r := syntax.NodeRange(stmt)
	if r.Start.Row != r.End.Row || r.Start.Row > len(lines) {
		return 0, false
	}
	line := strings.TrimSuffix(lines[r.Start.Row-1], "\r")
	if r.End.Column-1 > len(line) {
		return 0, false
	}
	before := line[:r.Start.Column-1]
	after := line[r.End.Column-1:]
	if strings.TrimSpace(before) != "" || strings.TrimSpace(after) != "" {
		return 0, false
	}
	return r.Start.Row, true
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
