package badger

import (
	"errors"
	"fmt"
	"math"

	"github.com/bnema/driftbottle/internal/domain"
	"github.com/bnema/driftbottle/internal/ports"
	"github.com/dgraph-io/badger/v4"
)

type ledgerTx struct {
	txn     *badger.Txn
	now     int64
	signer  domain.Address
	deriver ports.AddressDeriver
}

var _ ports.LedgerTx = (*ledgerTx)(nil)

func (t *ledgerTx) Now() int64 {
	return t.now
}

func (t *ledgerTx) Signer() domain.Address {
	return t.signer
}

func (t *ledgerTx) Record(addr domain.Address) ([]byte, bool, error) {
	item, err := t.txn.Get(recordKey(addr))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read record %s: %w", addr, err)
	}

	data, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, fmt.Errorf("read record %s: %w", addr, err)
	}

	return data, true, nil
}

func (t *ledgerTx) CreateRecord(addr domain.Address, data []byte) error {
	_, exists, err := t.Record(addr)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", domain.ErrRecordExists, addr)
	}

	return t.PutRecord(addr, data)
}

func (t *ledgerTx) PutRecord(addr domain.Address, data []byte) error {
	if err := t.txn.Set(recordKey(addr), data); err != nil {
		return fmt.Errorf("write record %s: %w", addr, err)
	}

	return nil
}

func (t *ledgerTx) Transfer(from, to domain.Address, amount uint64) error {
	if from != t.signer {
		return fmt.Errorf("%w: transfer from %s", domain.ErrUnauthorized, from)
	}

	return t.move(from, to, amount)
}

func (t *ledgerTx) TransferSigned(from, to domain.Address, amount uint64, seeds [][]byte, bump uint8) error {
	derived, err := t.deriver.CreateProgramAddress(seeds, bump)
	if err != nil {
		return fmt.Errorf("%w: re-derive %s: %v", domain.ErrUnauthorized, from, err)
	}
	if derived != from {
		return fmt.Errorf("%w: seeds do not derive %s", domain.ErrUnauthorized, from)
	}

	return t.move(from, to, amount)
}

func (t *ledgerTx) move(from, to domain.Address, amount uint64) error {
	if amount == 0 || from == to {
		return nil
	}

	fromBalance, err := readBalance(t.txn, from)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", domain.ErrInsufficientFunds, from, fromBalance, amount)
	}

	toBalance, err := readBalance(t.txn, to)
	if err != nil {
		return err
	}
	if toBalance > math.MaxUint64-amount {
		return fmt.Errorf("%w: credit to %s", domain.ErrAmountOverflow, to)
	}

	if err := writeBalance(t.txn, from, fromBalance-amount); err != nil {
		return err
	}
	return writeBalance(t.txn, to, toBalance+amount)
}
