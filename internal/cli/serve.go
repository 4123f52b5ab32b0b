package cli

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/semgrep-lsp/internal/config"
	"github.com/r9s-ai/semgrep-lsp/internal/lsp"
)

type ServeRuntimeOptions struct {
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	BuildInfo BuildInfo
	Config    config.Config
}

type ServeRunner func(opts ServeRuntimeOptions) error

func newServeCmd(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run Semgrep rule language server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServeWithOptions(opts)
		},
	}
}

func runServeWithOptions(opts Options) error {
	return opts.ServeRunner(ServeRuntimeOptions{
		Stdin:     opts.Stdin,
		Stdout:    opts.Stdout,
		Stderr:    opts.Stderr,
		BuildInfo: opts.BuildInfo,
		Config:    *opts.Config,
	})
}

func defaultServeRunner(opts ServeRuntimeOptions) error {
	if opts.BuildInfo.Version != "" {
		lsp.ServerVersion = opts.BuildInfo.Version
	}
	logger := log.New(opts.Stderr, "semgrep-lsp: ", log.LstdFlags|log.Lshortfile)
	cat, err := opts.Config.Catalog()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	srv := lsp.NewServer(opts.Stdin, opts.Stdout, logger, lsp.Options{
		Catalog:   cat,
		Style:     opts.Config.Style(),
		CacheSize: opts.Config.CacheSize,
	})
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	return nil
}
