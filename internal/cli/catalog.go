package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"multiparty-params/internal/app"
	"multiparty-params/internal/types"
)

type catalogOptions struct {
	Catalogs  []string
	NoBuiltin bool
}

func newCatalogCommand() *cobra.Command {
	opts := catalogOptions{}
	cmd := &cobra.Command{
		Use:   "catalog [component-type]",
		Short: "List catalog component types or show one descriptor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			component := ""
			if len(args) == 1 {
				component = args[0]
			}
			return runCatalog(cmd, opts, component)
		},
	}
	cmd.Flags().StringSliceVar(&opts.Catalogs, "catalog", nil, "Additional catalog layers, later files win")
	cmd.Flags().BoolVar(&opts.NoBuiltin, "no-builtin-catalog", false, "Do not load the embedded catalog")
	return cmd
}

func runCatalog(cmd *cobra.Command, opts catalogOptions, component string) error {
	result, err := newAppService().Catalog(app.CatalogRequest{
		Catalog:   buildCatalogOptions(cmd, opts.Catalogs, opts.NoBuiltin),
		Component: component,
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if result.Descriptor == nil {
		for _, name := range result.Components {
			fmt.Fprintln(out, name)
		}
		return nil
	}
	return printDescriptor(out, *result.Descriptor)
}

func printDescriptor(out io.Writer, descriptor types.SchemaDescriptor) error {
	fmt.Fprintf(out, "component: %s\n", descriptor.Component)
	if strings.TrimSpace(descriptor.Description) != "" {
		fmt.Fprintf(out, "description: %s\n", descriptor.Description)
	}
	if descriptor.Requires != "" {
		fmt.Fprintf(out, "requires: %s\n", descriptor.Requires)
	}
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(map[string]any{"fields": descriptor.Fields}); err != nil {
		return err
	}
	return encoder.Close()
}
