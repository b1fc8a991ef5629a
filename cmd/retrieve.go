package cmd

import (
	"context"
	"fmt"

	bottlesrender "github.com/bnema/driftbottle/internal/adapters/render/bottles"
	"github.com/bnema/driftbottle/internal/application"
	"github.com/spf13/cobra"
)

const noDriftingBottles = "There are no drifting bottles"

func newRetrieveCmd(app *app) *cobra.Command {
	var retries int

	cmd := &cobra.Command{
		Use:   "retrieve",
		Short: "Retrieve the oldest drifting bottle",
		Long: `Retrieve claims the oldest drifting bottle and releases its coins to the active wallet.

Only the single oldest bottle is considered. When that bottle is your own, retrieve fails
because you cannot retrieve your own bottle, even if other wallets' bottles are drifting; another
wallet has to retrieve yours first.`,
		Args: cobra.NoArgs,
		RunE: app.run(func(cmd *cobra.Command, _ []string) error {
			if retries < 0 {
				return fmt.Errorf("--retries must be >= 0")
			}

			signer, err := app.signer(cmd.Context())
			if err != nil {
				return err
			}

			var (
				result application.ClaimResult
				found  bool
			)
			retrieve := func(ctx context.Context, onSelect func(int, application.Candidate)) error {
				var err error
				result, found, err = app.service.Retrieve(ctx, signer, application.RetrieveCommand{Retries: retries, OnSelect: onSelect})
				return err
			}

			if app.interactive(cmd.ErrOrStderr()) {
				err = runRetrieveSpinner(cmd.Context(), cmd.ErrOrStderr(), retries, retrieve)
			} else {
				err = retrieve(cmd.Context(), nil)
			}
			if err != nil {
				return err
			}

			if !found {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), noDriftingBottles)
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), bottlesrender.RenderClaim(result))
			return err
		}),
	}

	cmd.Flags().IntVar(&retries, "retries", 3, "re-select this many times when another wallet claims the bottle first")

	return cmd
}
