package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/jward/lintel"
)

// report is the JSON envelope written by every command in json format.
type report struct {
	Command string         `json:"command"`
	Root    string         `json:"root,omitempty"`
	RunID   string         `json:"run_id,omitempty"`
	Count   int            `json:"count"`
	Errors  []lintel.Error `json:"errors"`
	Error   string         `json:"error,omitempty"`
}

var (
	locationStyle = lipgloss.NewStyle().Bold(true)
	ruleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	fixStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	caretStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	gutterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// outputReport writes rep to w in the selected format.
func outputReport(w io.Writer, rep report) error {
	switch flagFormat {
	case "json":
		if rep.Errors == nil {
			rep.Errors = []lintel.Error{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "table":
		formatErrorsTable(w, rep.Errors)
		return nil
	default:
		formatErrorsText(w, rep.Errors, newSourceLines(rep.Root))
		return nil
	}
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// report envelope. Otherwise it goes to stderr.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat != "json" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report{Command: command, Errors: []lintel.Error{}, Error: err.Error()})
	return err
}

// formatErrorsText prints each error as "path:row:col: message [rule]",
// followed by the highlighted source line with a caret under the range
// and any details.
func formatErrorsText(w io.Writer, errs []lintel.Error, src *sourceLines) {
	if len(errs) == 0 {
		fmt.Fprintln(w, "No errors.")
		return
	}

	files := 0
	prev := ""
	for _, e := range errs {
		if e.Path != prev {
			files++
			prev = e.Path
		}
		loc := fmt.Sprintf("%s:%d:%d:", e.Path, e.Range.Start.Row, e.Range.Start.Column)
		fmt.Fprintf(w, "%s %s %s", locationStyle.Render(loc), e.Message, ruleStyle.Render("["+e.Rule+"]"))
		if e.Fixable() {
			fmt.Fprintf(w, " %s", fixStyle.Render("(fixable)"))
		}
		fmt.Fprintln(w)

		if line, ok := src.line(e.Path, e.Range.Start.Row); ok {
			gutter := fmt.Sprintf("%5d | ", e.Range.Start.Row)
			fmt.Fprintf(w, "%s%s\n", gutterStyle.Render(gutter), highlightLine(e.Path, line))
			blank := strings.Repeat(" ", len(gutter)-2) + "| "
			fmt.Fprintf(w, "%s%s%s\n", gutterStyle.Render(blank), caretIndent(line, e.Range.Start.Column), caretStyle.Render(carets(line, e.Range)))
		}
		for _, d := range e.Details {
			fmt.Fprintf(w, "      = %s\n", d)
		}
	}

	fmt.Fprintf(w, "\n%d %s in %d %s\n",
		len(errs), plural(len(errs), "error", "errors"), files, plural(files, "file", "files"))
}

// caretIndent returns the whitespace that puts a caret under column col,
// keeping the line's tabs so the caret lines up.
func caretIndent(line string, col int) string {
	var b strings.Builder
	for i := 0; i < col-1 && i < len(line); i++ {
		if line[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// carets underlines r on its first line; a range running past the line is
// underlined to the end of it.
func carets(line string, r lintel.Range) string {
	end := len(line) + 1
	if r.End.Row == r.Start.Row && r.End.Column < end {
		end = r.End.Column
	}
	return strings.Repeat("^", max(end-r.Start.Column, 1))
}

// formatErrorsTable prints errors as aligned columns.
func formatErrorsTable(w io.Writer, errs []lintel.Error) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Line", "Col", "Rule", "Message", "Fix"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
	})
	for _, e := range errs {
		fix := ""
		if e.Fixable() {
			fix = "yes"
		}
		table.Append([]string{
			e.Path,
			strconv.Itoa(e.Range.Start.Row),
			strconv.Itoa(e.Range.Start.Column),
			e.Rule,
			e.Message,
			fix,
		})
	}
	table.Render()
}

// sourceLines reads project files on demand for the text format, caching
// each file's lines.
type sourceLines struct {
	root  string
	files map[string][]string
}

func newSourceLines(root string) *sourceLines {
	return &sourceLines{root: root, files: map[string][]string{}}
}

// line returns the 1-indexed row of path, if the file is readable and
// long enough.
func (s *sourceLines) line(path string, row int) (string, bool) {
	if s == nil || s.root == "" {
		return "", false
	}
	lines, ok := s.files[path]
	if !ok {
		data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(path)))
		if err == nil {
			lines = strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
		}
		s.files[path] = lines
	}
	if row < 1 || row > len(lines) {
		return "", false
	}
	return lines[row-1], true
}

// validFormats lists accepted values for --format.
var validFormats = []string{"text", "json", "table"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, ", "))
}
