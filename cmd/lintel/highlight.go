package main

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// highlightLine renders one source line with syntax colors chosen by the
// file name. Lines of unknown file types are returned as is.
func highlightLine(filename, line string) string {
	lexer := lexerForFile(filename)
	if lexer == nil {
		return line
	}
	iterator, err := lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}

	style := styles.Get("dracula")
	if style == nil {
		style = styles.Fallback
	}

	var b strings.Builder
	for _, token := range iterator.Tokens() {
		text := strings.TrimRight(token.Value, "\n")
		if text == "" {
			continue
		}
		if color := tokenColor(style, token.Type); color != "" {
			text = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(text)
		}
		b.WriteString(text)
	}
	return b.String()
}

func lexerForFile(filename string) chroma.Lexer {
	lexer := lexers.Match(filepath.Base(filename))
	if lexer == nil {
		if ext := filepath.Ext(filename); ext != "" {
			lexer = lexers.Match("file" + ext)
		}
	}
	if lexer != nil {
		lexer = chroma.Coalesce(lexer)
	}
	return lexer
}

func tokenColor(style *chroma.Style, tt chroma.TokenType) string {
	entry := style.Get(tt)
	if entry.Colour.IsSet() {
		return entry.Colour.String()
	}
	return ""
}
