package cmd

import (
	"fmt"

	"github.com/bnema/driftbottle/internal/domain"
	"github.com/spf13/cobra"
)

func newAirdropCmd(app *app) *cobra.Command {
	var (
		amount uint64
		to     string
	)

	cmd := &cobra.Command{
		Use:   "airdrop",
		Short: "Credit coins to a wallet on the local ledger",
		Args:  cobra.NoArgs,
		RunE: app.run(func(cmd *cobra.Command, _ []string) error {
			if amount == 0 {
				return fmt.Errorf("--amount must be > 0")
			}

			addr, err := app.address(cmd.Context(), to)
			if err != nil {
				return err
			}

			balance, err := app.service.Airdrop(cmd.Context(), addr, amount)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Airdropped %d coins to %s\nbalance %s\n", amount, addr.Short(), formatCoins(balance))
			return err
		}),
	}

	cmd.Flags().Uint64Var(&amount, "amount", 1, "whole coins to credit")
	cmd.Flags().StringVar(&to, "to", "", "hex address to credit (default the active wallet)")

	return cmd
}

func newBalanceCmd(app *app) *cobra.Command {
	var of string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the balance and daily allowance of a wallet",
		Args:  cobra.NoArgs,
		RunE: app.run(func(cmd *cobra.Command, _ []string) error {
			addr, err := app.address(cmd.Context(), of)
			if err != nil {
				return err
			}

			balance, err := app.service.Balance(cmd.Context(), addr)
			if err != nil {
				return err
			}

			allowances, err := app.service.Allowances(cmd.Context(), addr, app.now().Unix())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintf(out, "%s %s\n", addr.Short(), formatCoins(balance)); err != nil {
				return err
			}
			for _, allowance := range allowances {
				if _, err := fmt.Fprintf(out, "%ss left today %d/%d\n", allowance.Kind, allowance.Remaining, domain.MaxBottlesPerDay); err != nil {
					return err
				}
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&of, "address", "", "hex address to inspect (default the active wallet)")

	return cmd
}

func formatCoins(units uint64) string {
	whole := units / domain.UnitsPerCoin
	if frac := units % domain.UnitsPerCoin; frac != 0 {
		return fmt.Sprintf("%d.%09d coins", whole, frac)
	}

	return fmt.Sprintf("%d coins", whole)
}
