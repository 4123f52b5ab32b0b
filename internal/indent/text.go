package indent

import (
	"strings"

	"github.com/r9s-ai/semgrep-lsp/internal/catalog"
)

// SplitLines splits text into lines without their "\n" or "\r\n"
// terminators. A trailing newline does not produce an empty last line.
func SplitLines(text string) []string {
	lines, _ := splitLines(text)
	return lines
}

func splitLines(text string) (lines []string, crlf []bool) {
	if text == "" {
		return nil, nil
	}
	lines = strings.Split(text, "\n")
	if strings.HasSuffix(text, "\n") {
		lines = lines[:len(lines)-1]
	}
	crlf = make([]bool, len(lines))
	for i, l := range lines {
		if strings.HasSuffix(l, "\r") {
			lines[i] = l[:len(l)-1]
			crlf[i] = true
		}
	}
	return lines, crlf
}

// Apply returns a copy of lines with edits applied. Edits naming a line
// outside lines are ignored.
func Apply(lines []string, edits []EditOp) []string {
	out := make([]string, len(lines))
	copy(out, lines)
	for _, e := range edits {
		if e.Line < 0 || e.Line >= len(out) {
			continue
		}
		l := out[e.Line]
		from := byteOffset(l, e.FromCol)
		to := byteOffset(l, e.ToCol)
		if to < from {
			to = from
		}
		out[e.Line] = l[:from] + e.NewText + l[to:]
	}
	return out
}

// FormatText re-indents a whole document. Line endings and the presence
// of a trailing newline are preserved.
func FormatText(cat *catalog.Catalog, text string, style Style) string {
	lines, crlf := splitLines(text)
	if len(lines) == 0 {
		return text
	}
	formatted := Apply(lines, ComputeEdits(cat, lines, style))

	var sb strings.Builder
	sb.Grow(len(text))
	for i, l := range formatted {
		if i > 0 {
			sb.WriteString(lineEnding(crlf[i-1]))
		}
		sb.WriteString(l)
	}
	last := len(crlf) - 1
	switch {
	case strings.HasSuffix(text, "\n"):
		sb.WriteString(lineEnding(crlf[last]))
	case crlf[last]:
		sb.WriteByte('\r')
	}
	return sb.String()
}

func lineEnding(crlf bool) string {
	if crlf {
		return "\r\n"
	}
	return "\n"
}

func byteOffset(s string, col int) int {
	if col <= 0 {
		return 0
	}
	n := 0
	for i := range s {
		if n == col {
			return i
		}
		n++
	}
	return len(s)
}
