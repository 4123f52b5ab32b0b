package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/r9s-ai/semgrep-lsp/internal/catalog"
	"github.com/r9s-ai/semgrep-lsp/internal/indent"
)

const (
	EnvTabSize   = "SEMGREP_LSP_TAB_SIZE"
	EnvUseTabs   = "SEMGREP_LSP_USE_TABS"
	EnvCatalog   = "SEMGREP_LSP_CATALOG"
	EnvCacheSize = "SEMGREP_LSP_CACHE_SIZE"

	defaultCacheSize = 128
)

type Config struct {
	TabSize     int
	UseTabs     bool
	CatalogPath string
	CacheSize   int
}

// Load reads configuration from the environment after merging a .env file
// from the working directory, if there is one. Variables already set in the
// environment win over .env values. Invalid values fall back to defaults.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a variable lookup function.
func FromEnv(getenv func(string) string) Config {
	return Config{
		TabSize:     parsePositiveInt(getenv(EnvTabSize), indent.DefaultUnitWidth),
		UseTabs:     parseBool(getenv(EnvUseTabs), false),
		CatalogPath: strings.TrimSpace(getenv(EnvCatalog)),
		CacheSize:   parsePositiveInt(getenv(EnvCacheSize), defaultCacheSize),
	}
}

// Style returns the indentation style described by c.
func (c Config) Style() indent.Style {
	return indent.Style{UseSpaces: !c.UseTabs, UnitWidth: c.TabSize}.Bounded()
}

// Catalog returns the custom catalog at CatalogPath, or the built-in one
// when no path is configured.
func (c Config) Catalog() (*catalog.Catalog, error) {
	if c.CatalogPath == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(c.CatalogPath)
}

func parsePositiveInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func parseBool(raw string, fallback bool) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
