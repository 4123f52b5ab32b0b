package lsp

import (
	"github.com/r9s-ai/semgrep-lsp/internal/catalog"
	"github.com/r9s-ai/semgrep-lsp/internal/indent"
)

// FormatOptions controls indentation behavior for rule document formatting.
// A nil Catalog selects the built-in one.
type FormatOptions struct {
	TabSize      int
	InsertSpaces bool
	Catalog      *catalog.Catalog
}

// FormatText re-indents a Semgrep rule document.
func FormatText(text string, opts FormatOptions) string {
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	return indent.FormatText(cat, text, formattingOptions{TabSize: opts.TabSize, InsertSpaces: opts.InsertSpaces}.style())
}
