package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"multiparty-params/internal/app"
	"multiparty-params/internal/types"
)

type resolveOptions struct {
	resolutionOptions
	OutputDir string
	Format    string
}

func newResolveCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a job declaration and write per-party parameter files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd.Context(), cmd, opts)
		},
	}
	addResolutionFlags(cmd, &opts.resolutionOptions)
	cmd.Flags().StringVar(&opts.OutputDir, "output", "out", "Output directory")
	cmd.Flags().StringVar(&opts.Format, "format", string(types.OutputFormatYAML), "Output format: yaml or json")
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("format", cmd.Flags().Lookup("format"))
	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, opts resolveOptions) error {
	validateReq, err := buildValidateRequest(cmd, opts.resolutionOptions)
	if err != nil {
		return err
	}
	format := strings.ToLower(resolveString(cmd, opts.Format, "format", "format"))
	result, err := newAppService().Resolve(ctx, app.ResolveRequest{
		JobPath:     validateReq.JobPath,
		Catalog:     validateReq.Catalog,
		Policy:      validateReq.Policy,
		OutputDir:   resolveString(cmd, opts.OutputDir, "output", "output"),
		Format:      types.OutputFormat(format),
		MetricsFile: validateReq.MetricsFile,
	})
	printResolution(cmd.OutOrStdout(), result.Resolution)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "resolved: %s (%d parties) -> %s\n",
		result.Resolution.ID, len(result.Resolution.Parties), result.BundlePath)
	return nil
}
