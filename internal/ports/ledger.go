package ports

import (
	"context"

	"github.com/bnema/driftbottle/internal/domain"
)

// RecordScanner is the read side of the ledger used by the selector.
type RecordScanner interface {
	// GetRecord returns the raw record stored at addr or domain.ErrRecordNotFound.
	GetRecord(ctx context.Context, addr domain.Address) ([]byte, error)
	// GetProgramRecords returns every record matching all filters. When slice
	// is non-nil only that window of each record is returned.
	GetProgramRecords(ctx context.Context, filters []domain.Memcmp, slice *domain.DataSlice) ([]domain.KeyedRecord, error)
}

// Ledger executes signed instructions atomically. Mutations made through the
// LedgerTx passed to fn are committed together or not at all.
type Ledger interface {
	RecordScanner

	Execute(ctx context.Context, ins domain.SignedInstruction, fn func(tx LedgerTx) error) (domain.Receipt, error)
	Balance(ctx context.Context, addr domain.Address) (uint64, error)
	Airdrop(ctx context.Context, addr domain.Address, amount uint64) error
}

type LedgerTx interface {
	// Now is the ledger time, in unix seconds, fixed for the transaction.
	Now() int64
	Signer() domain.Address

	Record(addr domain.Address) ([]byte, bool, error)
	// CreateRecord fails with domain.ErrRecordExists when addr is taken.
	CreateRecord(addr domain.Address, data []byte) error
	PutRecord(addr domain.Address, data []byte) error

	// Transfer moves value out of an account owned by the transaction signer.
	Transfer(from, to domain.Address, amount uint64) error
	// TransferSigned moves value out of a derived account. The ledger re-derives
	// the address from seeds and bump and rejects the transfer on mismatch.
	TransferSigned(from, to domain.Address, amount uint64, seeds [][]byte, bump uint8) error
}
