package lsp

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/r9s-ai/semgrep-lsp/internal/catalog"
	"github.com/r9s-ai/semgrep-lsp/internal/indent"
)

// hoverAt documents the keyword that opens the hovered line, or the
// severity, language or metavariable token under the cursor.
func hoverAt(cat *catalog.Catalog, text string, pos Position) (Hover, bool) {
	lines := indent.SplitLines(text)
	line := lineAt(text, pos.Line)
	if line == "" {
		return Hover{}, false
	}
	ch := byteOffset(line, pos.Character)
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	start := len(line) - len(trimmed)
	if e, ok := cat.Match(trimmed); ok {
		end := start + len(e.Label())
		if ch >= start && ch <= end {
			return Hover{
				Contents: MarkupContent{
					Kind:  "markdown",
					Value: fmt.Sprintf("`%s` (%s level)\n\n%s", e.Label(), catalog.DepthName(e.Depth), e.Docs),
				},
				Range: lineRange(pos.Line, line, start, end),
			}, true
		}
	}

	word, left, right := wordAt(line, ch)
	if word == "" {
		return Hover{}, false
	}
	var doc string
	switch {
	case cat.IsSeverity(word):
		doc = "Severity level reported when the rule matches."
	case cat.IsLanguage(word):
		doc = "Target language of the rule."
	case slices.Contains(cat.Metavariables(), word):
		doc = "Metavariable: binds any expression matched at this position."
	default:
		return Hover{}, false
	}
	level := catalog.DepthName(indent.DepthAt(cat, lines, pos.Line))
	return Hover{
		Contents: MarkupContent{Kind: "markdown", Value: fmt.Sprintf("`%s` (%s level)\n\n%s", word, level, doc)},
		Range:    lineRange(pos.Line, line, left, right),
	}, true
}

// lineRange converts the byte span [start, end) of line to an LSP range.
func lineRange(lineNo int, line string, start, end int) *Range {
	return &Range{
		Start: Position{Line: lineNo, Character: utf16Col(line, start)},
		End:   Position{Line: lineNo, Character: utf16Col(line, end)},
	}
}

// wordAt returns the word around byte offset ch of line and its byte span.
func wordAt(line string, ch int) (string, int, int) {
	if ch < 0 {
		ch = 0
	}
	if ch > len(line) {
		ch = len(line)
	}
	left := ch
	for left > 0 && isWordChar(line[left-1]) {
		left--
	}
	right := ch
	for right < len(line) && isWordChar(line[right]) {
		right++
	}
	if left == right {
		return "", 0, 0
	}
	return line[left:right], left, right
}

func isWordChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_' || b == '$'
}
