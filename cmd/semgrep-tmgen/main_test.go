package main

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r9s-ai/semgrep-lsp/internal/catalog"
)

func TestKeyNames(t *testing.T) {
	got := keyNames(catalog.Default().Level(catalog.DepthPattern))
	assert.Equal(t, []string{"focus-metavariable", "pattern", "pattern-inside", "pattern-not", "pattern-where"}, got)
}

func TestGrammarRegexesMatch(t *testing.T) {
	g := buildGrammar(catalog.Default())
	match := func(key string) *regexp.Regexp {
		t.Helper()
		entry, ok := g.Repo[key].(tmRepositoryEntry)
		require.True(t, ok, "repository entry %s", key)
		// Go's regexp lacks lookahead, so strip it for the check.
		expr := strings.Replace(entry.Patterns[0].Match, `(?=\s*:)`, `\s*:`, 1)
		re, err := regexp.Compile(expr)
		require.NoError(t, err, "compile %s", key)
		return re
	}

	assert.True(t, match("root-keys").MatchString("rules:"))
	rule := match("rule-keys")
	assert.Equal(t, "pattern-either:", strings.TrimSpace(rule.FindString("    pattern-either:")), "longest key wins")
	assert.True(t, rule.MatchString("  - id: x"))
	assert.True(t, match("severities").MatchString("severity: WARNING"))
	assert.True(t, match("metavariables").MatchString("foo($X_1)"))
}

func TestEncodeGrammar(t *testing.T) {
	b, err := encodeGrammar(buildGrammar(catalog.Default()))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "source.semgrep", decoded["scopeName"])
	assert.True(t, strings.HasSuffix(string(b), "}\n"), "expected trailing newline after grammar")
}
