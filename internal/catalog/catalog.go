// Package catalog holds the keyword table of the Semgrep rule language:
// the literal line prefixes that fix a line's nesting depth, together with
// the snippet and documentation text offered to editors.
//
// A Catalog is immutable once built. The built-in table is parsed from
// embedded YAML on first use and shared by every caller.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Nesting depths of the rule language.
const (
	DepthRoot = iota
	DepthRule
	DepthPattern

	levelCount
)

// ErrEmptyCatalog is returned when a catalog defines no keywords at all.
var ErrEmptyCatalog = errors.New("catalog defines no keywords")

//go:embed catalog.yaml
var builtinYAML []byte

var loadDefault = sync.OnceValues(func() (*Catalog, error) {
	return Parse(builtinYAML)
})

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := loadDefault()
	if err != nil {
		panic("catalog: invalid built-in catalog: " + err.Error())
	}
	return c
}

// Entry is one recognized construct: a literal line prefix at a fixed depth.
type Entry struct {
	Keyword string
	Snippet string
	Docs    string
	Depth   int
}

// Label is the keyword as shown in completion lists.
func (e Entry) Label() string {
	return strings.TrimSpace(e.Keyword)
}

// prefix is what a trimmed line is compared against. Root keywords are
// matched literally; deeper keywords with surrounding whitespace removed.
func (e Entry) prefix() string {
	if e.Depth == DepthRoot {
		return e.Keyword
	}
	return strings.TrimSpace(e.Keyword)
}

// Catalog is the validated, read-only keyword table.
type Catalog struct {
	levels        [levelCount][]Entry
	severities    []string
	languages     []string
	metavariables []string
}

// New validates t and builds a Catalog from it.
func New(t Table) (*Catalog, error) {
	c := &Catalog{
		severities:    cleanTokens(t.Severities),
		languages:     cleanTokens(t.Languages),
		metavariables: cleanTokens(t.Metavariables),
	}
	for depth, rows := range [levelCount][]TableEntry{t.Root, t.Rule, t.Pattern} {
		entries := make([]Entry, 0, len(rows))
		for _, r := range rows {
			entries = append(entries, Entry{
				Keyword: r.Keyword,
				Snippet: r.Snippet,
				Docs:    strings.TrimSpace(r.Docs),
				Depth:   depth,
			})
		}
		c.levels[depth] = entries
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Match returns the first entry whose prefix starts trimmed, checking root,
// rule and pattern keywords in that order.
func (c *Catalog) Match(trimmed string) (Entry, bool) {
	for _, entries := range c.levels {
		for _, e := range entries {
			if strings.HasPrefix(trimmed, e.prefix()) {
				return e, true
			}
		}
	}
	return Entry{}, false
}

// Level returns the ordered entries at depth.
func (c *Catalog) Level(depth int) []Entry {
	if depth < 0 || depth >= levelCount {
		return nil
	}
	return slices.Clone(c.levels[depth])
}

// Entries returns every entry in root, rule, pattern order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, c.size())
	for _, entries := range c.levels {
		out = append(out, entries...)
	}
	return out
}

func (c *Catalog) Severities() []string    { return slices.Clone(c.severities) }
func (c *Catalog) Languages() []string     { return slices.Clone(c.languages) }
func (c *Catalog) Metavariables() []string { return slices.Clone(c.metavariables) }

// IsSeverity reports whether word is one of the catalog's severity tokens.
func (c *Catalog) IsSeverity(word string) bool { return slices.Contains(c.severities, word) }

// IsLanguage reports whether word is one of the catalog's language tokens.
func (c *Catalog) IsLanguage(word string) bool { return slices.Contains(c.languages, word) }

func (c *Catalog) size() int {
	n := 0
	for _, entries := range c.levels {
		n += len(entries)
	}
	return n
}

// AmbiguityError reports a keyword that is a prefix of a keyword at another
// depth, which would make the depth of a line depend on evaluation order.
type AmbiguityError struct {
	Keyword    string
	Depth      int
	Other      string
	OtherDepth int
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("%s keyword %q is a prefix of %s keyword %q",
		DepthName(e.Depth), e.Keyword, DepthName(e.OtherDepth), e.Other)
}

func (c *Catalog) validate() error {
	if c.size() == 0 {
		return ErrEmptyCatalog
	}
	seen := make(map[string]int, c.size())
	for depth, entries := range c.levels {
		for i, e := range entries {
			p := e.prefix()
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("%s entry %d: empty keyword", DepthName(depth), i)
			}
			if prev, ok := seen[p]; ok {
				return fmt.Errorf("duplicate keyword %q in %s and %s", p, DepthName(prev), DepthName(depth))
			}
			seen[p] = depth
		}
	}
	all := c.Entries()
	for _, a := range all {
		for _, b := range all {
			if a.Depth == b.Depth {
				continue
			}
			if strings.HasPrefix(b.prefix(), a.prefix()) {
				return &AmbiguityError{Keyword: a.Keyword, Depth: a.Depth, Other: b.Keyword, OtherDepth: b.Depth}
			}
		}
	}
	return nil
}

// DepthName returns the name of a nesting depth.
func DepthName(depth int) string {
	switch depth {
	case DepthRoot:
		return "root"
	case DepthRule:
		return "rule"
	case DepthPattern:
		return "pattern"
	default:
		return fmt.Sprintf("depth(%d)", depth)
	}
}

func cleanTokens(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}
