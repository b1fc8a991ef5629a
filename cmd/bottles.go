package cmd

import (
	"encoding/json"
	"fmt"

	bottlesrender "github.com/bnema/driftbottle/internal/adapters/render/bottles"
	"github.com/bnema/driftbottle/internal/domain"
	"github.com/spf13/cobra"
)

type bottleJSON struct {
	Address      domain.Address `json:"address"`
	ID           uint64         `json:"id"`
	Sender       domain.Address `json:"sender"`
	Timestamp    int64          `json:"timestamp"`
	Asset        uint64         `json:"asset"`
	Coins        uint64         `json:"coins"`
	AssetAccount domain.Address `json:"asset_account"`
	Message      string         `json:"message"`
}

func newBottlesCmd(app *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "bottles",
		Short: "List drifting bottles, oldest first",
		Args:  cobra.NoArgs,
		RunE: app.run(func(cmd *cobra.Command, _ []string) error {
			candidates, err := app.service.ListDrifting(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				out := make([]bottleJSON, 0, len(candidates))
				for _, c := range candidates {
					out = append(out, bottleJSON{
						Address:      c.Address,
						ID:           uint64(c.Bottle.ID),
						Sender:       c.Bottle.Sender,
						Timestamp:    c.Bottle.Timestamp,
						Asset:        c.Bottle.Asset,
						Coins:        c.Bottle.Coins(),
						AssetAccount: c.Bottle.AssetAccount,
						Message:      c.Bottle.Message,
					})
				}

				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(out)
			}

			opts := bottlesrender.RenderOptions{Now: app.now()}
			// Marking own bottles is best effort: listing works without a wallet.
			if self, err := app.address(cmd.Context(), ""); err == nil {
				opts.Self = self
			}

			rendered, err := app.bottleRenderer(candidates, opts)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		}),
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print bottles as JSON")

	return cmd
}
