package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newCatalogCmd(opts Options) *cobra.Command {
	var output string
	catalogPath := opts.Config.CatalogPath
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the keyword catalog in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			switch output {
			case "yaml":
				enc := yaml.NewEncoder(opts.Stdout)
				enc.SetIndent(2)
				if err := enc.Encode(cat); err != nil {
					return fmt.Errorf("encode catalog: %w", err)
				}
				return enc.Close()
			case "json":
				b, err := json.MarshalIndent(cat.Table(), "", "  ")
				if err != nil {
					return fmt.Errorf("encode catalog: %w", err)
				}
				_, err = fmt.Fprintf(opts.Stdout, "%s\n", b)
				return err
			default:
				return fmt.Errorf("unsupported output %q (want yaml or json)", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml or json")
	cmd.Flags().StringVar(&catalogPath, "catalog", catalogPath, "custom keyword catalog (YAML)")
	return cmd
}
