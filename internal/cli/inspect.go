package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"multiparty-params/internal/app"
)

type inspectOptions struct {
	OutputDir string
	Role      string
}

func newInspectCommand() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect resolved outputs and diagnostics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.OutputDir, "output", "out", "Output directory")
	cmd.Flags().StringVar(&opts.Role, "role", "", "Only show parties of this role")
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	return cmd
}

func runInspect(cmd *cobra.Command, opts inspectOptions) error {
	service := newAppService()
	result, err := service.Inspect(app.InspectRequest{
		OutputDir: resolveString(cmd, opts.OutputDir, "output", "output"),
		Role:      opts.Role,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.BundlePath == "" {
		fmt.Fprintln(out, "bundle: none (resolution was invalid)")
	} else {
		fmt.Fprintf(out, "bundle: %s\n", result.BundlePath)
	}
	for _, party := range result.Parties {
		fmt.Fprintf(out, "- %s:%d: %d components\n", party.Role, party.PartyID, len(party.Components))
		if len(party.Components) > 0 {
			fmt.Fprintf(out, "  %s\n", strings.Join(party.Components, ", "))
		}
	}
	fmt.Fprintf(out, "diagnostics: %d errors, %d warnings\n", result.Errors, result.Warnings)
	for _, diag := range result.Diagnostics {
		fmt.Fprintf(out, "- %s\n", diag)
	}
	return nil
}
