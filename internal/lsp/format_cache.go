package lsp

import (
	"crypto/sha256"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/r9s-ai/semgrep-lsp/internal/catalog"
	"github.com/r9s-ai/semgrep-lsp/internal/indent"
)

const defaultEditCacheSize = 128

type editKey struct {
	sum   [sha256.Size]byte
	style indent.Style
}

// editCache memoizes ComputeEdits per document content and style.
// The catalog is fixed for the server's lifetime and not part of the key.
type editCache struct {
	entries *lru.Cache[editKey, []indent.EditOp]
}

func newEditCache(size int) *editCache {
	if size <= 0 {
		size = defaultEditCacheSize
	}
	entries, err := lru.New[editKey, []indent.EditOp](size)
	if err != nil {
		// lru.New only fails for non-positive sizes
		panic(err)
	}
	return &editCache{entries: entries}
}

func (c *editCache) get(cat *catalog.Catalog, text string, style indent.Style) []indent.EditOp {
	key := editKey{sum: sha256.Sum256([]byte(text)), style: style}
	if edits, ok := c.entries.Get(key); ok {
		return edits
	}
	edits := indent.ComputeEdits(cat, indent.SplitLines(text), style)
	c.entries.Add(key, edits)
	return edits
}

func (c *editCache) len() int { return c.entries.Len() }
