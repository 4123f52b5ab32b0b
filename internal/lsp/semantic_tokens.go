package lsp

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/r9s-ai/semgrep-lsp/internal/catalog"
	"github.com/r9s-ai/semgrep-lsp/internal/indent"
)

const (
	semanticTypeKeyword = iota
	semanticTypeProperty
	semanticTypeEnumMember
	semanticTypeType
	semanticTypeVariable
	semanticTypeComment
)

var semanticTokenLegendTypes = []string{
	"keyword",
	"property",
	"enumMember",
	"type",
	"variable",
	"comment",
}

type semanticTokensLegend struct {
	TokenTypes     []string `json:"tokenTypes"`
	TokenModifiers []string `json:"tokenModifiers"`
}

type semanticTokensOptions struct {
	Legend semanticTokensLegend `json:"legend"`
	Full   bool                 `json:"full"`
}

type semanticTokens struct {
	Data []uint32 `json:"data"`
}

type semanticTokensParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type semanticSpan struct {
	line   int
	start  int
	length int
	typ    int
}

func (s *Server) handleSemanticTokens(id *json.RawMessage, params json.RawMessage) error {
	var p semanticTokensParams
	if err := json.Unmarshal(params, &p); err != nil {
		return s.replyError(id, codeInvalidParams, "invalid params for semanticTokens")
	}
	return s.reply(id, semanticTokensFull(s.catalog, s.docs[p.TextDocument.URI]))
}

func semanticTokensFull(cat *catalog.Catalog, text string) semanticTokens {
	spans := classifySemanticSpans(cat, text)
	return semanticTokens{Data: encodeSemanticSpans(toUTF16Spans(spans, indent.SplitLines(text)))}
}

// toUTF16Spans rewrites byte columns as the UTF-16 columns LSP expects.
func toUTF16Spans(spans []semanticSpan, lines []string) []semanticSpan {
	out := make([]semanticSpan, 0, len(spans))
	for _, s := range spans {
		if s.line < len(lines) {
			line := lines[s.line]
			start := utf16Col(line, s.start)
			s.length = utf16Col(line, s.start+s.length) - start
			s.start = start
		}
		out = append(out, s)
	}
	return out
}

// classifySemanticSpans walks the document line by line, in byte columns. Keys are keywords
// when the catalog knows them and properties otherwise; severity and
// language values are only recognized under their own keys.
func classifySemanticSpans(cat *catalog.Catalog, text string) []semanticSpan {
	var spans []semanticSpan
	inLanguages := false
	for _, l := range indent.Classify(cat, indent.SplitLines(text)) {
		if l.Trimmed == "" {
			continue
		}
		start := len(l.Raw) - len(l.Trimmed)
		body, comment := splitComment(l.Trimmed)
		line := make([]semanticSpan, 0, 4)
		if comment != "" {
			line = append(line, semanticSpan{line: l.Index, start: start + len(body), length: len(comment), typ: semanticTypeComment})
		}
		if body == "" {
			spans = append(spans, line...)
			continue
		}

		key, keyOff, value, valueOff := splitKey(body)
		if key != "" {
			typ := semanticTypeProperty
			if _, ok := cat.Match(body); ok {
				typ = semanticTypeKeyword
			}
			line = append(line, semanticSpan{line: l.Index, start: start + keyOff, length: len(key), typ: typ})
		}

		switch {
		case key == "severity":
			inLanguages = false
			line = appendWordSpans(line, l.Index, start+valueOff, value, func(w string) int {
				if cat.IsSeverity(w) {
					return semanticTypeEnumMember
				}
				return -1
			})
		case key == "languages":
			inLanguages = true
			line = appendWordSpans(line, l.Index, start+valueOff, value, languageType(cat))
		case key == "" && inLanguages && strings.HasPrefix(body, "-"):
			line = appendWordSpans(line, l.Index, start+1, body[1:], languageType(cat))
		default:
			inLanguages = false
		}
		line = appendMetavariableSpans(line, l.Index, start, body)

		sort.Slice(line, func(i, j int) bool { return line[i].start < line[j].start })
		spans = append(spans, line...)
	}
	return spans
}

func languageType(cat *catalog.Catalog) func(string) int {
	return func(w string) int {
		if cat.IsLanguage(w) {
			return semanticTypeType
		}
		return -1
	}
}

// splitComment separates a trailing "#" comment. A "#" only starts a
// comment outside quotes, at the beginning of the text or after whitespace.
func splitComment(s string) (body, comment string) {
	var quote byte
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == '#' && (i == 0 || s[i-1] == ' ' || s[i-1] == '\t'):
			return s[:i], s[i:]
		}
	}
	return s, ""
}

// splitKey finds a "key:" at the start of body, after an optional "- ".
func splitKey(body string) (key string, keyOff int, value string, valueOff int) {
	off := 0
	if strings.HasPrefix(body, "- ") {
		off = 2
	}
	rest := body[off:]
	colon := strings.Index(rest, ":")
	if colon <= 0 {
		return "", 0, "", 0
	}
	if colon+1 < len(rest) && rest[colon+1] != ' ' && rest[colon+1] != '\t' {
		return "", 0, "", 0
	}
	name := rest[:colon]
	for i := 0; i < len(name); i++ {
		if !isKeyChar(name[i]) {
			return "", 0, "", 0
		}
	}
	return name, off, rest[colon+1:], off + colon + 1
}

func isKeyChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_' || b == '-'
}

func appendWordSpans(spans []semanticSpan, line, base int, s string, typeOf func(string) int) []semanticSpan {
	for i := 0; i < len(s); {
		if !isWordChar(s[i]) {
			i++
			continue
		}
		j := i
		for j < len(s) && isWordChar(s[j]) {
			j++
		}
		if typ := typeOf(s[i:j]); typ >= 0 {
			spans = append(spans, semanticSpan{line: line, start: base + i, length: j - i, typ: typ})
		}
		i = j
	}
	return spans
}

// appendMetavariableSpans marks $NAME tokens, with NAME upper case like the
// catalog's placeholders. Any such name counts, listed or not.
func appendMetavariableSpans(spans []semanticSpan, line, base int, body string) []semanticSpan {
	for i := 0; i < len(body); i++ {
		if body[i] != '$' || i+1 >= len(body) || !isMetavarStart(body[i+1]) {
			continue
		}
		j := i + 2
		for j < len(body) && (isMetavarStart(body[j]) || (body[j] >= '0' && body[j] <= '9')) {
			j++
		}
		spans = append(spans, semanticSpan{line: line, start: base + i, length: j - i, typ: semanticTypeVariable})
		i = j - 1
	}
	return spans
}

func isMetavarStart(b byte) bool {
	return (b >= 'A' && b <= 'Z') || b == '_'
}

func encodeSemanticSpans(spans []semanticSpan) []uint32 {
	if len(spans) == 0 {
		return nil
	}
	data := make([]uint32, 0, len(spans)*5)
	prevLine := 0
	prevStart := 0
	for i, s := range spans {
		lineDelta := s.line
		startDelta := s.start
		if i > 0 {
			lineDelta = s.line - prevLine
			if lineDelta == 0 {
				startDelta = s.start - prevStart
			}
		}
		data = append(data, uint32(lineDelta), uint32(startDelta), uint32(s.length), uint32(s.typ), 0)
		prevLine = s.line
		prevStart = s.start
	}
	return data
}
