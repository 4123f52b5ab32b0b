package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Table is the serialized form of a catalog.
type Table struct {
	Root          []TableEntry `yaml:"root" json:"root"`
	Rule          []TableEntry `yaml:"rule" json:"rule"`
	Pattern       []TableEntry `yaml:"pattern" json:"pattern"`
	Severities    []string     `yaml:"severities,flow" json:"severities"`
	Languages     []string     `yaml:"languages,flow" json:"languages"`
	Metavariables []string     `yaml:"metavariables,flow" json:"metavariables"`
}

type TableEntry struct {
	Keyword string `yaml:"keyword" json:"keyword"`
	Snippet string `yaml:"snippet,omitempty" json:"snippet,omitempty"`
	Docs    string `yaml:"docs,omitempty" json:"docs,omitempty"`
}

// Parse decodes a YAML catalog and validates it. Unknown fields are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var t Table
	if err := dec.Decode(&t); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(t)
}

// Load reads and parses the catalog file at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %q: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %q: %w", path, err)
	}
	return c, nil
}

// Table returns the serialized form of c.
func (c *Catalog) Table() Table {
	return Table{
		Root:          tableEntries(c.levels[DepthRoot]),
		Rule:          tableEntries(c.levels[DepthRule]),
		Pattern:       tableEntries(c.levels[DepthPattern]),
		Severities:    c.Severities(),
		Languages:     c.Languages(),
		Metavariables: c.Metavariables(),
	}
}

// MarshalYAML writes the catalog in the same shape Parse reads.
func (c *Catalog) MarshalYAML() (any, error) {
	return c.Table(), nil
}

func tableEntries(entries []Entry) []TableEntry {
	out := make([]TableEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, TableEntry{Keyword: e.Keyword, Snippet: e.Snippet, Docs: e.Docs})
	}
	return out
}
