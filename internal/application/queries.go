package application

import "github.com/bnema/driftbottle/internal/domain"

// Candidate is a drifting bottle found by the selector.
type Candidate struct {
	Address domain.Address
	Bottle  domain.Bottle
}

type DepositResult struct {
	Receipt      domain.Receipt
	Bottle       domain.Bottle
	Address      domain.Address
	AssetAccount domain.Address
}

type ClaimResult struct {
	Receipt domain.Receipt
	Address domain.Address
	// Bottle is the record as committed, already in the Retrieved state.
	Bottle domain.Bottle
	// Amount is the released value in smallest units.
	Amount uint64
}

// Allowance is how many more operations of Kind an actor may run today.
type Allowance struct {
	Kind      domain.OperationKind
	Remaining uint8
}
