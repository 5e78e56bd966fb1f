package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"multiparty-params/internal/types"
)

func newValidateCommand() *cobra.Command {
	opts := resolutionOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Resolve a job declaration and report every finding",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), cmd, opts)
		},
	}
	addResolutionFlags(cmd, &opts)
	return cmd
}

func runValidate(ctx context.Context, cmd *cobra.Command, opts resolutionOptions) error {
	req, err := buildValidateRequest(cmd, opts)
	if err != nil {
		return err
	}
	result, err := newAppService().Validate(ctx, req)
	printResolution(cmd.OutOrStdout(), result.Resolution)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "valid: %s (%d parties)\n", result.Resolution.ID, len(result.Resolution.Parties))
	return nil
}

// printResolution writes one line per diagnostic followed by a summary.
func printResolution(out io.Writer, resolution types.ResolutionResult) {
	if resolution.ID == "" {
		return
	}
	for _, diag := range resolution.Diagnostics {
		fmt.Fprintf(out, "- %s\n", diag)
	}
	fmt.Fprintf(out, "errors: %d, warnings: %d\n", len(resolution.Errors()), len(resolution.Warnings()))
}
