package cmd

import (
	"fmt"

	bottlesrender "github.com/bnema/driftbottle/internal/adapters/render/bottles"
	"github.com/bnema/driftbottle/internal/application"
	"github.com/bnema/driftbottle/internal/domain"
	"github.com/spf13/cobra"
)

func newWalletCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Manage local wallets",
	}

	cmd.AddCommand(
		newWalletCreateCmd(app),
		newWalletListCmd(app),
	)

	return cmd
}

func newWalletCreateCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create a wallet (defaults to the --wallet name)",
		Args:  cobra.MaximumNArgs(1),
		RunE: app.run(func(cmd *cobra.Command, args []string) error {
			name := app.walletName()
			if len(args) == 1 {
				name = domain.WalletName(args[0])
			}

			wallet, err := app.wallets.Create(cmd.Context(), application.CreateWalletCommand{Name: name})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Created wallet %s\naddress %s\n", wallet.Name, wallet.Address)
			return err
		}),
	}
}

func newWalletListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List wallets",
		Args:  cobra.NoArgs,
		RunE: app.run(func(cmd *cobra.Command, _ []string) error {
			wallets, err := app.wallets.List(cmd.Context())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), bottlesrender.RenderWallets(wallets, app.walletName()))
			return err
		}),
	}
}
