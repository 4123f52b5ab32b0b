package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/r9s-ai/semgrep-lsp/internal/catalog"
	"github.com/r9s-ai/semgrep-lsp/internal/lsp"
)

// ErrNeedsFormatting is returned by format --check when any input would change.
var ErrNeedsFormatting = errors.New("files need formatting")

type formatOptions struct {
	tabSize     int
	useTabs     bool
	write       bool
	check       bool
	jobs        int
	catalogPath string
}

func newFormatCmd(opts Options) *cobra.Command {
	formatOpts := formatOptions{
		tabSize:     opts.Config.TabSize,
		useTabs:     opts.Config.UseTabs,
		jobs:        runtime.GOMAXPROCS(0),
		catalogPath: opts.Config.CatalogPath,
	}
	cmd := &cobra.Command{
		Use:   "format [file|-]...",
		Short: "Re-indent Semgrep rule documents",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				for _, a := range args {
					if strings.TrimSpace(a) == "-" {
						return errors.New("stdin cannot be combined with file paths")
					}
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := normalizePaths(args)
			if formatOpts.write && formatOpts.check {
				return errors.New("--write and --check are mutually exclusive")
			}
			if len(paths) > 1 && !formatOpts.write && !formatOpts.check {
				return errors.New("formatting multiple files requires --write or --check")
			}

			cat, err := loadCatalog(formatOpts.catalogPath)
			if err != nil {
				return err
			}
			fopts := lsp.FormatOptions{
				TabSize:      formatOpts.tabSize,
				InsertSpaces: !formatOpts.useTabs,
				Catalog:      cat,
			}
			return runFormat(cmd.Context(), paths, opts, formatOpts, fopts)
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&formatOpts.tabSize, "tab-size", formatOpts.tabSize, "tab size when using spaces")
	fs.BoolVar(&formatOpts.useTabs, "tabs", formatOpts.useTabs, "use tabs for indentation")
	fs.BoolVarP(&formatOpts.write, "write", "w", false, "write result back to file")
	fs.BoolVarP(&formatOpts.check, "check", "l", false, "list files whose formatting differs and fail if any")
	fs.IntVarP(&formatOpts.jobs, "jobs", "j", formatOpts.jobs, "number of files formatted in parallel")
	fs.StringVar(&formatOpts.catalogPath, "catalog", formatOpts.catalogPath, "custom keyword catalog (YAML)")
	return cmd
}

func normalizePaths(args []string) []string {
	paths := make([]string, 0, len(args))
	for _, a := range args {
		a = strings.TrimSpace(a)
		if a == "" {
			a = "-"
		}
		paths = append(paths, a)
	}
	if len(paths) == 0 {
		paths = append(paths, "-")
	}
	return paths
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

type formatResult struct {
	path    string
	changed bool
}

func runFormat(ctx context.Context, paths []string, opts Options, formatOpts formatOptions, fopts lsp.FormatOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(paths) == 1 && paths[0] == "-" && formatOpts.write {
		return errors.New("--write requires a file path")
	}

	results := make([]formatResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if formatOpts.jobs > 0 {
		g.SetLimit(formatOpts.jobs)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := readFormatSource(path, opts.Stdin)
			if err != nil {
				return err
			}
			formatted := lsp.FormatText(string(src), fopts)
			results[i] = formatResult{path: path, changed: formatted != string(src)}
			switch {
			case formatOpts.check:
				return nil
			case formatOpts.write:
				return writeFormattedOutput(path, src, formatted)
			default:
				_, err = io.WriteString(opts.Stdout, formatted)
				return err
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if !formatOpts.check {
		return nil
	}
	n := 0
	for _, r := range results {
		if !r.changed {
			continue
		}
		n++
		name := r.path
		if name == "-" {
			name = "<stdin>"
		}
		if _, err := fmt.Fprintln(opts.Stdout, name); err != nil {
			return err
		}
	}
	if n > 0 {
		return fmt.Errorf("%w: %d of %d", ErrNeedsFormatting, n, len(paths))
	}
	return nil
}

func readFormatSource(path string, in io.Reader) ([]byte, error) {
	if path == "-" {
		src, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return src, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %q: %w", path, err)
	}
	return src, nil
}

func writeFormattedOutput(path string, src []byte, formatted string) error {
	if path == "-" {
		return errors.New("--write requires a file path")
	}
	if formatted == string(src) {
		return nil
	}
	mode := os.FileMode(0o644)
	if st, statErr := os.Stat(path); statErr == nil {
		mode = st.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(formatted), mode); err != nil {
		return fmt.Errorf("write file %q: %w", path, err)
	}
	return nil
}
