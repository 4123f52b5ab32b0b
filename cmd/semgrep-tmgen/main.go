package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/r9s-ai/semgrep-lsp/internal/catalog"
)

type tmLanguage struct {
	Schema    string                 `json:"$schema"`
	Name      string                 `json:"name"`
	ScopeName string                 `json:"scopeName"`
	Patterns  []map[string]string    `json:"patterns"`
	Repo      map[string]interface{} `json:"repository"`
}

type tmPattern struct {
	Name  string `json:"name,omitempty"`
	Match string `json:"match,omitempty"`
	Begin string `json:"begin,omitempty"`
	End   string `json:"end,omitempty"`

	Include string `json:"include,omitempty"`

	Patterns []tmPattern `json:"patterns,omitempty"`
}

type tmRepositoryEntry struct {
	Patterns []tmPattern `json:"patterns"`
}

const metavariableMatch = `\$[A-Z_][A-Z0-9_]*\b`

var (
	output      = flag.String("output", "vscode/syntaxes/semgrep.tmLanguage.json", "output grammar file path")
	catalogPath = flag.String("catalog", "", "custom keyword catalog (YAML)")
)

func main() {
	flag.Parse()

	cat := catalog.Default()
	if *catalogPath != "" {
		var err error
		if cat, err = catalog.Load(*catalogPath); err != nil {
			fatalf("%v", err)
		}
	}

	b, err := encodeGrammar(buildGrammar(cat))
	if err != nil {
		fatalf("marshal grammar: %v", err)
	}

	outPath := *output
	if !filepath.IsAbs(outPath) {
		wd, err := os.Getwd()
		if err != nil {
			fatalf("getwd: %v", err)
		}
		outPath = filepath.Join(wd, outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		fatalf("mkdir output dir: %v", err)
	}
	if err := os.WriteFile(outPath, b, 0o644); err != nil {
		fatalf("write grammar: %v", err)
	}
}

func buildGrammar(cat *catalog.Catalog) tmLanguage {
	return tmLanguage{
		Schema:    "https://raw.githubusercontent.com/martinring/tmlanguage/master/tmlanguage.json",
		Name:      "Semgrep Rule",
		ScopeName: "source.semgrep",
		Patterns: []map[string]string{
			{"include": "#comments"},
			{"include": "#root-keys"},
			{"include": "#pattern-keys"},
			{"include": "#rule-keys"},
			{"include": "#severities"},
			{"include": "#languages"},
			{"include": "#metavariables"},
			{"include": "#strings"},
		},
		Repo: map[string]interface{}{
			"comments": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "comment.line.number-sign.semgrep", Match: `(?:^|\s)#.*$`},
			}},
			"root-keys": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "keyword.control.semgrep", Match: keyRegex(keyNames(cat.Level(catalog.DepthRoot)))},
			}},
			"rule-keys": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "support.type.property-name.semgrep", Match: keyRegex(keyNames(cat.Level(catalog.DepthRule)))},
			}},
			"pattern-keys": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "entity.name.tag.semgrep", Match: keyRegex(keyNames(cat.Level(catalog.DepthPattern)))},
			}},
			"severities": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "constant.language.severity.semgrep", Match: wordRegex(sortedUnique(cat.Severities()))},
			}},
			"languages": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "support.constant.language.semgrep", Match: wordRegex(sortedUnique(cat.Languages()))},
			}},
			"metavariables": tmRepositoryEntry{Patterns: []tmPattern{
				{Name: "variable.other.metavariable.semgrep", Match: metavariableMatch},
			}},
			"strings": tmRepositoryEntry{Patterns: []tmPattern{
				{
					Name:  "string.quoted.double.semgrep",
					Begin: `"`,
					End:   `"`,
					Patterns: []tmPattern{
						{Name: "constant.character.escape.semgrep", Match: `\\.`},
						{Include: "#metavariables"},
					},
				},
				{Name: "string.quoted.single.semgrep", Begin: `'`, End: `'`},
			}},
		},
	}
}

func encodeGrammar(g tmLanguage) ([]byte, error) {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// keyNames reduces catalog keywords such as "- pattern-inside:" to the bare key.
func keyNames(entries []catalog.Entry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := strings.TrimSpace(e.Label())
		name = strings.TrimSpace(strings.TrimPrefix(name, "-"))
		name = strings.TrimSuffix(name, ":")
		if name != "" {
			names = append(names, name)
		}
	}
	return sortedUnique(names)
}

func keyRegex(keys []string) string {
	if len(keys) == 0 {
		return `\b\B`
	}
	return `^\s*(?:-\s+)?(?:` + joinRegexAlternation(keys) + `)(?=\s*:)`
}

func wordRegex(words []string) string {
	if len(words) == 0 {
		return `\b\B`
	}
	return `\b(?:` + joinRegexAlternation(words) + `)\b`
}

// Longer alternatives come first so "pattern-either" wins over "pattern".
func joinRegexAlternation(words []string) string {
	ordered := append([]string(nil), words...)
	sort.SliceStable(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })
	escaped := make([]string, 0, len(ordered))
	for _, w := range ordered {
		escaped = append(escaped, regexp.QuoteMeta(w))
	}
	return strings.Join(escaped, "|")
}

func sortedUnique(in []string) []string {
	set := make(map[string]struct{}, len(in))
	for _, s := range in {
		set[s] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "semgrep-tmgen: "+format+"\n", args...)
	os.Exit(1)
}
