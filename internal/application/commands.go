package application

import "github.com/bnema/driftbottle/internal/domain"

type DepositCommand struct {
	ID domain.BottleID
	// Amount is in whole coins.
	Amount  uint64
	Message string
}

type ClaimCommand struct {
	Bottle       domain.Address
	AssetAccount domain.Address
}

type RetrieveCommand struct {
	// Retries is how many times the selector is re-run after losing a claim race.
	Retries int
	// OnSelect, if set, is called with the attempt number (0 first) before
	// each selected bottle is claimed.
	OnSelect func(attempt int, candidate Candidate)
}

type CreateWalletCommand struct {
	Name domain.WalletName
}
