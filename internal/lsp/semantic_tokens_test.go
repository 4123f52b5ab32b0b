package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r9s-ai/semgrep-lsp/internal/catalog"
)

func TestSemanticTokensFull_EncodesData(t *testing.T) {
	text := "rules:\n  - id: foo\n    pattern: foo($X)\n    severity: ERROR\n"
	res := semanticTokensFull(catalog.Default(), text)
	require.NotEmpty(t, res.Data)
	assert.Zero(t, len(res.Data)%5, "semantic token data should be groups of 5")
}

func TestSemanticTokensFull_UTF16Columns(t *testing.T) {
	// U+3000 indent: three bytes, one UTF-16 unit each.
	text := "rules:\n　　severity: ERROR # é\n"
	res := semanticTokensFull(catalog.Default(), text)
	want := []uint32{
		0, 0, 5, semanticTypeKeyword, 0,
		1, 2, 8, semanticTypeKeyword, 0,
		0, 10, 5, semanticTypeEnumMember, 0,
		0, 6, 3, semanticTypeComment, 0,
	}
	assert.Equal(t, want, res.Data)
}

func TestClassifySemanticSpans(t *testing.T) {
	text := "# header\n" +
		"rules:\n" +
		"  - id: foo # trailing\n" +
		"    message: \"see # not a comment\"\n" +
		"    languages: [python, $Y]\n" +
		"    severity: ERROR\n" +
		"    languages:\n" +
		"      - go\n" +
		"      - cobol\n" +
		"    pattern-either:\n" +
		"      - pattern: eval($CODE_1)\n" +
		"    custom: go\n"
	spans := classifySemanticSpans(catalog.Default(), text)

	want := []semanticSpan{
		{line: 0, start: 0, length: 8, typ: semanticTypeComment},
		{line: 1, start: 0, length: 5, typ: semanticTypeKeyword},
		{line: 2, start: 4, length: 2, typ: semanticTypeKeyword},
		{line: 2, start: 12, length: 10, typ: semanticTypeComment},
		{line: 3, start: 4, length: 7, typ: semanticTypeKeyword},
		{line: 4, start: 4, length: 9, typ: semanticTypeKeyword},
		{line: 4, start: 16, length: 6, typ: semanticTypeType},
		{line: 4, start: 24, length: 2, typ: semanticTypeVariable},
		{line: 5, start: 4, length: 8, typ: semanticTypeKeyword},
		{line: 5, start: 14, length: 5, typ: semanticTypeEnumMember},
		{line: 6, start: 4, length: 9, typ: semanticTypeKeyword},
		{line: 7, start: 8, length: 2, typ: semanticTypeType},
		{line: 9, start: 4, length: 14, typ: semanticTypeKeyword},
		{line: 10, start: 8, length: 7, typ: semanticTypeKeyword},
		{line: 10, start: 22, length: 7, typ: semanticTypeVariable},
		{line: 11, start: 4, length: 6, typ: semanticTypeProperty},
	}
	assert.Equal(t, want, spans)
}

func TestSplitComment(t *testing.T) {
	cases := []struct{ in, body, comment string }{
		{"a: b # c", "a: b ", "# c"},
		{"# only", "", "# only"},
		{"a: b#c", "a: b#c", ""},
		{"a: 'x # y' # z", "a: 'x # y' ", "# z"},
	}
	for _, tc := range cases {
		body, comment := splitComment(tc.in)
		assert.Equal(t, tc.body, body, "body of %q", tc.in)
		assert.Equal(t, tc.comment, comment, "comment of %q", tc.in)
	}
}

func TestSplitKey(t *testing.T) {
	key, keyOff, value, valueOff := splitKey("- pattern: foo")
	assert.Equal(t, "pattern", key)
	assert.Equal(t, 2, keyOff)
	assert.Equal(t, " foo", value)
	assert.Equal(t, 10, valueOff)

	key, _, _, _ = splitKey("foo(a:b)")
	assert.Empty(t, key)
	key, _, _, _ = splitKey("http://x")
	assert.Empty(t, key, "url is not a key")
}

func TestEncodeSemanticSpans_Delta(t *testing.T) {
	spans := []semanticSpan{
		{line: 1, start: 2, length: 3, typ: semanticTypeKeyword},
		{line: 1, start: 8, length: 4, typ: semanticTypeProperty},
		{line: 2, start: 1, length: 2, typ: semanticTypeVariable},
	}
	data := encodeSemanticSpans(spans)
	require.Len(t, data, 15)
	assert.Equal(t, []uint32{1, 2}, data[0:2], "first token delta")
	assert.Equal(t, []uint32{0, 6}, data[5:7], "second token same-line delta")
	assert.Equal(t, []uint32{1, 1}, data[10:12], "third token next-line delta")
	assert.Nil(t, encodeSemanticSpans(nil))
}
