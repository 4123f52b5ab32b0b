package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r9s-ai/semgrep-lsp/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{TabSize: 2, CacheSize: 128}
}

func TestRootCmdHasSubcommands(t *testing.T) {
	t.Parallel()

	opts := normalizeOptions(Options{
		Config:      testConfig(),
		ServeRunner: func(opts ServeRuntimeOptions) error { return nil },
	})
	root := newRootCmd(opts)

	for _, name := range []string{"serve", "format", "catalog", "version"} {
		_, _, err := root.Find([]string{name})
		require.NoError(t, err, "find %s subcommand", name)
	}
}

func TestRunDefaultsToServe(t *testing.T) {
	t.Parallel()

	var got ServeRuntimeOptions
	called := false
	err := Run(nil, Options{
		Stdin:  strings.NewReader(""),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
		Config: &config.Config{TabSize: 4, UseTabs: true, CacheSize: 8},
		ServeRunner: func(opts ServeRuntimeOptions) error {
			called = true
			got = opts
			return nil
		},
	})
	require.NoError(t, err)
	assert.True(t, called, "expected default serve runner to be called")
	assert.Equal(t, config.Config{TabSize: 4, UseTabs: true, CacheSize: 8}, got.Config)
}

func TestServeRunnerErrorPropagates(t *testing.T) {
	t.Parallel()

	err := Run([]string{"serve"}, Options{
		Stdin:       strings.NewReader(""),
		Stdout:      &bytes.Buffer{},
		Stderr:      &bytes.Buffer{},
		Config:      testConfig(),
		ServeRunner: func(opts ServeRuntimeOptions) error { return errors.New("boom") },
	})
	assert.EqualError(t, err, "boom")
}

func TestDefaultServeRunnerBadCatalog(t *testing.T) {
	t.Parallel()

	err := defaultServeRunner(ServeRuntimeOptions{
		Stdin:  strings.NewReader(""),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
		Config: config.Config{TabSize: 2, CatalogPath: "/nonexistent/catalog.yaml"},
	})
	assert.ErrorContains(t, err, "load catalog")
}

func TestDefaultServeRunnerExitsOnEOF(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := defaultServeRunner(ServeRuntimeOptions{
		Stdin:  strings.NewReader(""),
		Stdout: &out,
		Stderr: &bytes.Buffer{},
		Config: *testConfig(),
	})
	require.NoError(t, err, "expected clean exit on EOF")
	assert.Zero(t, out.Len())
}

func TestVersionCommandOutput(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := Run([]string{"version"}, Options{
		Stdin:  strings.NewReader(""),
		Stdout: &out,
		Stderr: &bytes.Buffer{},
		Config: testConfig(),
		BuildInfo: BuildInfo{
			Version:   "0.4.0",
			Commit:    "9f1c2e7",
			BuildDate: "2026-10-01T08:00:00Z\n",
		},
		ServeRunner: func(opts ServeRuntimeOptions) error { return nil },
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "semgrep-lsp version=0.4.0 commit=9f1c2e7 build_date=2026-10-01T08:00:00Z")
}

func TestVersionFlagsRemoved(t *testing.T) {
	t.Parallel()

	opts := Options{
		Stdin:  strings.NewReader(""),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
		Config: testConfig(),
		ServeRunner: func(opts ServeRuntimeOptions) error {
			return errors.New("should not run")
		},
	}

	assert.ErrorContains(t, Run([]string{"--version"}, opts), "--version")
	assert.ErrorContains(t, Run([]string{"-v"}, opts), "-v")
}
