package lsp

import (
	"encoding/json"

	"github.com/r9s-ai/semgrep-lsp/internal/indent"
)

type formattingOptions struct {
	TabSize      int  `json:"tabSize"`
	InsertSpaces bool `json:"insertSpaces"`
}

func (o formattingOptions) style() indent.Style {
	return indent.Style{UseSpaces: o.InsertSpaces, UnitWidth: o.TabSize}.Bounded()
}

type documentFormattingParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
	Options      formattingOptions      `json:"options"`
}

type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

func (s *Server) handleFormatting(id *json.RawMessage, params json.RawMessage) error {
	var p documentFormattingParams
	if err := json.Unmarshal(params, &p); err != nil {
		return s.replyError(id, codeInvalidParams, "invalid params for formatting")
	}
	text, ok := s.docs[p.TextDocument.URI]
	if !ok {
		s.logger.Printf("formatting request for unknown document %s", p.TextDocument.URI)
		return s.reply(id, []TextEdit{})
	}
	edits := s.edits.get(s.catalog, text, p.Options.style())
	return s.reply(id, toTextEdits(edits))
}

func toTextEdits(edits []indent.EditOp) []TextEdit {
	out := make([]TextEdit, 0, len(edits))
	for _, e := range edits {
		out = append(out, TextEdit{
			Range: Range{
				Start: Position{Line: e.Line, Character: e.FromCol},
				End:   Position{Line: e.Line, Character: e.ToCol},
			},
			NewText: e.NewText,
		})
	}
	return out
}
