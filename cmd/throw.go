package cmd

import (
	"fmt"

	"github.com/bnema/driftbottle/internal/application"
	"github.com/bnema/driftbottle/internal/domain"
	"github.com/spf13/cobra"
)

func newThrowCmd(app *app) *cobra.Command {
	var (
		message string
		amount  uint64
		id      uint64
	)

	cmd := &cobra.Command{
		Use:   "throw",
		Short: "Throw a bottle with a message and optional coins",
		Example: `  bottle throw --message "hello"
  bottle throw --message "hello" --amount 2 --wallet alice`,
		Args: cobra.NoArgs,
		RunE: app.run(func(cmd *cobra.Command, _ []string) error {
			signer, err := app.signer(cmd.Context())
			if err != nil {
				return err
			}

			bottleID := domain.BottleID(id)
			if !cmd.Flags().Changed("id") {
				bottleID = domain.BottleID(app.now().UnixMilli())
			}

			result, err := app.service.Deposit(cmd.Context(), signer, application.DepositCommand{
				ID:      bottleID,
				Amount:  amount,
				Message: message,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if amount > 0 {
				_, err = fmt.Fprintf(out, "You just threw bottle #%d with %d coins into the sea!\n", result.Bottle.ID, amount)
			} else {
				_, err = fmt.Fprintf(out, "You just threw bottle #%d into the sea!\n", result.Bottle.ID)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "signature %s\n", result.Receipt.Signature)
			return err
		}),
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", fmt.Sprintf("message to put in the bottle (max %d bytes)", domain.MaxMessageSize))
	cmd.Flags().Uint64Var(&amount, "amount", 0, "whole coins to escrow in the bottle")
	cmd.Flags().Uint64Var(&id, "id", 0, "bottle id (default current time in milliseconds)")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}
