package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithApp(newApp())
}

func newRootCmdWithApp(app *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bottle",
		Short:         "Throw and retrieve messages in bottles on a local ledger",
		Long:          "bottle throws a message, optionally with coins in escrow, into the sea of drifting bottles, and retrieves the oldest bottle someone else threw. Each wallet may throw and retrieve three bottles a day.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	addPersistentFlags(rootCmd)

	rootCmd.AddCommand(
		newVersionCmd(),
		newThrowCmd(app),
		newRetrieveCmd(app),
		newBottlesCmd(app),
		newWalletCmd(app),
		newAirdropCmd(app),
		newBalanceCmd(app),
	)

	return rootCmd
}
