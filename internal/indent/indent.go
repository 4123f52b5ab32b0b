// Package indent normalizes the indentation of Semgrep rule documents.
//
// Each line's depth is decided from its leading keyword and the depth of
// the line before it; no syntax tree is built. The engine never fails:
// lines that match nothing keep the carried depth.
package indent

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/r9s-ai/semgrep-lsp/internal/catalog"
)

const (
	DefaultUnitWidth = 2
	// MaxUnitWidth bounds widths taken from editors, env and flags.
	MaxUnitWidth = 16
)

// Style is the indentation of one nesting level: UnitWidth spaces, or a
// single tab when UseSpaces is false.
type Style struct {
	UseSpaces bool
	UnitWidth int
}

// DefaultStyle is two spaces per level.
func DefaultStyle() Style {
	return Style{UseSpaces: true, UnitWidth: DefaultUnitWidth}
}

// Normalize returns s with a non-positive unit width replaced by the
// default. Any positive width is used as given.
func (s Style) Normalize() Style {
	if s.UnitWidth <= 0 {
		s.UnitWidth = DefaultUnitWidth
	}
	return s
}

// Bounded is Normalize for user-supplied styles: widths above
// MaxUnitWidth also fall back to the default.
func (s Style) Bounded() Style {
	if s.UnitWidth > MaxUnitWidth {
		s.UnitWidth = DefaultUnitWidth
	}
	return s.Normalize()
}

// Indentation returns the leading whitespace for depth. Tab indentation
// uses one tab per level regardless of UnitWidth.
func (s Style) Indentation(depth int) string {
	if depth <= 0 {
		return ""
	}
	if !s.UseSpaces {
		return strings.Repeat("\t", depth)
	}
	return strings.Repeat(" ", depth*s.Normalize().UnitWidth)
}

// Line is the classification of one input line.
type Line struct {
	Index      int
	Raw        string
	LeadingLen int
	Trimmed    string
	Depth      int
}

// EditOp replaces columns [FromCol, ToCol) of line Line with NewText.
// Columns count characters, not bytes.
type EditOp struct {
	Line    int
	FromCol int
	ToCol   int
	NewText string
}

// Classify assigns a depth to every line.
func Classify(cat *catalog.Catalog, lines []string) []Line {
	out := make([]Line, 0, len(lines))
	depth := catalog.DepthRoot
	for i, raw := range lines {
		l := classifyLine(cat, depth, raw)
		l.Index = i
		depth = l.Depth
		out = append(out, l)
	}
	return out
}

// ComputeEdits returns the edits that bring every line's leading whitespace
// to the length its depth requires under style. Lines whose whitespace
// already has that length are left alone even if they mix tabs and spaces.
func ComputeEdits(cat *catalog.Catalog, lines []string, style Style) []EditOp {
	style = style.Normalize()
	var edits []EditOp
	for _, l := range Classify(cat, lines) {
		target := style.Indentation(l.Depth)
		if len(target) == l.LeadingLen {
			continue
		}
		edits = append(edits, EditOp{
			Line:    l.Index,
			FromCol: 0,
			ToCol:   l.LeadingLen,
			NewText: target,
		})
	}
	return edits
}

// DepthAt returns the depth assigned to line, or the depth carried past the
// last line when line is out of range.
func DepthAt(cat *catalog.Catalog, lines []string, line int) int {
	if line < 0 {
		return catalog.DepthRoot
	}
	if line < len(lines) {
		lines = lines[:line+1]
	}
	classified := Classify(cat, lines)
	if len(classified) == 0 {
		return catalog.DepthRoot
	}
	return classified[len(classified)-1].Depth
}

func classifyLine(cat *catalog.Catalog, carried int, raw string) Line {
	trimmed := strings.TrimLeftFunc(raw, unicode.IsSpace)
	l := Line{
		Raw:        raw,
		Trimmed:    trimmed,
		LeadingLen: utf8.RuneCountInString(raw[:len(raw)-len(trimmed)]),
	}
	switch e, ok := cat.Match(trimmed); {
	case ok:
		l.Depth = e.Depth
	case trimmed != "" && strings.HasPrefix(trimmed, "-") && carried == catalog.DepthRule:
		// bare list item under a rule-level list key
		l.Depth = catalog.DepthPattern
	case trimmed != "" && carried == catalog.DepthRoot:
		l.Depth = catalog.DepthRule
	default:
		l.Depth = carried
	}
	return l
}
