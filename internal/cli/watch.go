package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"multiparty-params/internal/app"
)

func newWatchCommand() *cobra.Command {
	opts := resolutionOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-validate a job declaration whenever it or a catalog layer changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, opts)
		},
	}
	addResolutionFlags(cmd, &opts)
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, opts resolutionOptions) error {
	req, err := buildValidateRequest(cmd, opts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	return newAppService().Watch(ctx, app.WatchRequest{
		Validate: req,
		OnResult: func(result app.ValidateResult, err error) {
			printResolution(out, result.Resolution)
			if err != nil {
				fmt.Fprintf(out, "invalid: %s\n", errorMessage(err))
				return
			}
			fmt.Fprintf(out, "valid: %s (%d parties)\n", result.Resolution.ID, len(result.Resolution.Parties))
		},
	})
}
