package catalog

import "strings"

// Kind classifies a completion candidate.
type Kind int

const (
	KindKeyword Kind = iota
	KindEnumMember
	KindValue
	KindVariable
)

// Candidate is one completion suggestion. Plain candidates (severities,
// languages, metavariables) carry no insert text or documentation.
type Candidate struct {
	Label         string
	Kind          Kind
	InsertText    string
	Documentation string
}

// Candidates lists every keyword snippet followed by the severity, language
// and metavariable tokens. A keyword's snippet is prefixed with its depth
// times unitWidth spaces.
func (c *Catalog) Candidates(unitWidth int) []Candidate {
	if unitWidth < 0 {
		unitWidth = 0
	}
	out := make([]Candidate, 0, c.size()+len(c.severities)+len(c.languages)+len(c.metavariables))
	for _, entries := range c.levels {
		for _, e := range entries {
			out = append(out, Candidate{
				Label:         e.Label(),
				Kind:          KindKeyword,
				InsertText:    strings.Repeat(" ", e.Depth*unitWidth) + e.Snippet,
				Documentation: e.Docs,
			})
		}
	}
	out = appendPlain(out, c.severities, KindEnumMember)
	out = appendPlain(out, c.languages, KindValue)
	out = appendPlain(out, c.metavariables, KindVariable)
	return out
}

func appendPlain(out []Candidate, tokens []string, kind Kind) []Candidate {
	for _, t := range tokens {
		out = append(out, Candidate{Label: t, Kind: kind})
	}
	return out
}
