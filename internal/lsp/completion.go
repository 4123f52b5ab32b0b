package lsp

import (
	"encoding/json"

	"github.com/r9s-ai/semgrep-lsp/internal/catalog"
)

// LSP CompletionItemKind values used by the catalog.
const (
	completionKindVariable   = 6
	completionKindValue      = 12
	completionKindKeyword    = 14
	completionKindEnumMember = 20
)

const insertTextFormatSnippet = 2

type CompletionItem struct {
	Label            string         `json:"label"`
	Kind             int            `json:"kind,omitempty"`
	Detail           string         `json:"detail,omitempty"`
	Documentation    *MarkupContent `json:"documentation,omitempty"`
	InsertText       string         `json:"insertText,omitempty"`
	InsertTextFormat int            `json:"insertTextFormat,omitempty"`
}

func (s *Server) handleCompletion(id *json.RawMessage, params json.RawMessage) error {
	var p completionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return s.replyError(id, codeInvalidParams, "invalid params for completion")
	}
	return s.reply(id, complete(s.catalog, s.style.UnitWidth))
}

// complete offers the whole catalog wherever the cursor is.
func complete(cat *catalog.Catalog, unitWidth int) []CompletionItem {
	candidates := cat.Candidates(unitWidth)
	items := make([]CompletionItem, 0, len(candidates))
	for _, c := range candidates {
		it := CompletionItem{
			Label: c.Label,
			Kind:  completionKind(c.Kind),
		}
		switch c.Kind {
		case catalog.KindKeyword:
			it.Detail = "semgrep keyword"
			it.InsertText = c.InsertText
			it.InsertTextFormat = insertTextFormatSnippet
		case catalog.KindEnumMember:
			it.Detail = "severity"
		case catalog.KindValue:
			it.Detail = "language"
		case catalog.KindVariable:
			it.Detail = "metavariable"
		}
		if c.Documentation != "" {
			it.Documentation = &MarkupContent{Kind: "markdown", Value: c.Documentation}
		}
		items = append(items, it)
	}
	return items
}

func completionKind(k catalog.Kind) int {
	switch k {
	case catalog.KindEnumMember:
		return completionKindEnumMember
	case catalog.KindValue:
		return completionKindValue
	case catalog.KindVariable:
		return completionKindVariable
	default:
		return completionKindKeyword
	}
}
