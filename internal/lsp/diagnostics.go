package lsp

import (
	"fmt"

	"github.com/r9s-ai/semgrep-lsp/internal/catalog"
	"github.com/r9s-ai/semgrep-lsp/internal/indent"
)

const severityInformation = 3

type publishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

type Diagnostic struct {
	Range    Range  `json:"range"`
	Severity int    `json:"severity,omitempty"`
	Source   string `json:"source,omitempty"`
	Message  string `json:"message"`
}

func (s *Server) publishDiagnostics(uri string) error {
	text, ok := s.docs[uri]
	if !ok {
		return nil
	}
	params := publishDiagnosticsParams{
		URI:         uri,
		Diagnostics: collectDiagnostics(s.catalog, text, s.style),
	}
	return s.notify("textDocument/publishDiagnostics", params)
}

// collectDiagnostics reports every non-blank line the formatter would
// re-indent.
func collectDiagnostics(cat *catalog.Catalog, text string, style indent.Style) []Diagnostic {
	lines := indent.SplitLines(text)
	classified := indent.Classify(cat, lines)
	out := []Diagnostic{}
	for _, e := range indent.ComputeEdits(cat, lines, style) {
		l := classified[e.Line]
		if l.Trimmed == "" {
			continue
		}
		out = append(out, Diagnostic{
			Range: Range{
				Start: Position{Line: e.Line, Character: e.FromCol},
				End:   Position{Line: e.Line, Character: e.ToCol},
			},
			Severity: severityInformation,
			Source:   "semgrep-lsp",
			Message:  fmt.Sprintf("%s line should be indented by %s", catalog.DepthName(l.Depth), describeIndent(e.NewText, style)),
		})
	}
	return out
}

func describeIndent(ws string, style indent.Style) string {
	if ws == "" {
		return "nothing"
	}
	unit := "space"
	if !style.UseSpaces {
		unit = "tab"
	}
	if len(ws) > 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", len(ws), unit)
}
