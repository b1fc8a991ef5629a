// Package badger is a local ledger on BadgerDB. It stores raw records and
// balances by address, verifies instruction signatures and runs each
// instruction in one optimistic transaction. Two transactions writing the
// same key are linearized: the loser is re-run against the winner's state.
package badger

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/bnema/driftbottle/internal/domain"
	"github.com/bnema/driftbottle/internal/logging"
	"github.com/bnema/driftbottle/internal/ports"
	"github.com/dgraph-io/badger/v4"
)

var (
	recordPrefix  = []byte("rec/")
	balancePrefix = []byte("bal/")
	receiptPrefix = []byte("txn/")
)

type Ledger struct {
	db         *badger.DB
	deriver    ports.AddressDeriver
	clock      ports.Clock
	logger     logging.Logger
	maxRetries int

	mu       sync.Mutex
	lastTime int64
}

var _ ports.Ledger = (*Ledger)(nil)

func Open(cfg Config, deriver ports.AddressDeriver, clock ports.Clock, logger logging.Logger) (*Ledger, error) {
	if deriver == nil {
		return nil, errors.New("address deriver is nil")
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = logging.Discard()
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	return &Ledger{
		db:         db,
		deriver:    deriver,
		clock:      clock,
		logger:     logger.With("component", "ledger"),
		maxRetries: cfg.MaxConflictRetries,
	}, nil
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) Execute(ctx context.Context, ins domain.SignedInstruction, fn func(tx ports.LedgerTx) error) (domain.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return domain.Receipt{}, err
	}
	if err := l.verify(ins); err != nil {
		return domain.Receipt{}, err
	}

	receipt := domain.Receipt{
		ID:          ins.Instruction.Nonce,
		Instruction: ins.Instruction.Name,
		Signer:      ins.Instruction.Signer,
		Signature:   base64.StdEncoding.EncodeToString(ins.Signature),
	}

	err := l.update(ctx, func(txn *badger.Txn) error {
		key := receiptKey(receipt.ID)
		if _, err := txn.Get(key); err == nil {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateTransaction, receipt.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("read receipt: %w", err)
		}

		now := l.now()
		if err := fn(&ledgerTx{txn: txn, now: now, signer: ins.Instruction.Signer, deriver: l.deriver}); err != nil {
			return err
		}

		receipt.Time = now
		encoded, err := json.Marshal(receipt)
		if err != nil {
			return fmt.Errorf("encode receipt: %w", err)
		}
		return txn.Set(key, encoded)
	})
	if err != nil {
		return domain.Receipt{}, err
	}

	l.logger.Debug(ctx, "instruction committed", "instruction", receipt.Instruction, "id", receipt.ID, "signer", receipt.Signer)
	return receipt, nil
}

func (l *Ledger) GetRecord(ctx context.Context, addr domain.Address) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(recordKey(addr))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrRecordNotFound, addr)
			}
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return data, nil
}

// GetProgramRecords is a linear scan over every record.
func (l *Ledger) GetProgramRecords(ctx context.Context, filters []domain.Memcmp, slice *domain.DataSlice) ([]domain.KeyedRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]domain.KeyedRecord, 0)
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = recordPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			addr, err := domain.AddressFromBytes(item.Key()[len(recordPrefix):])
			if err != nil {
				return fmt.Errorf("%w: record key %q", domain.ErrCorruptRecord, item.Key())
			}

			err = item.Value(func(val []byte) error {
				for _, filter := range filters {
					if !filter.Match(val) {
						return nil
					}
				}

				record := domain.KeyedRecord{Address: addr}
				if slice != nil {
					record.Data = slice.Apply(val)
				} else {
					record.Data = append([]byte(nil), val...)
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan program records: %w", err)
	}

	return records, nil
}

func (l *Ledger) Balance(ctx context.Context, addr domain.Address) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var balance uint64
	err := l.db.View(func(txn *badger.Txn) error {
		var err error
		balance, err = readBalance(txn, addr)
		return err
	})
	return balance, err
}

// Airdrop credits addr out of thin air, like a localnet faucet.
func (l *Ledger) Airdrop(ctx context.Context, addr domain.Address, amount uint64) error {
	err := l.update(ctx, func(txn *badger.Txn) error {
		balance, err := readBalance(txn, addr)
		if err != nil {
			return err
		}
		if balance > math.MaxUint64-amount {
			return fmt.Errorf("%w: airdrop to %s", domain.ErrAmountOverflow, addr)
		}
		return writeBalance(txn, addr, balance+amount)
	})
	if err != nil {
		return fmt.Errorf("airdrop: %w", err)
	}

	l.logger.Info(ctx, "airdrop", "account", addr, "amount", amount)
	return nil
}

func (l *Ledger) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := l.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) || attempt >= l.maxRetries {
			return err
		}

		l.logger.Debug(ctx, "transaction conflict, re-running", "attempt", attempt+1)
	}
}

func (l *Ledger) verify(ins domain.SignedInstruction) error {
	if ins.Instruction.Program != l.deriver.Program() {
		return fmt.Errorf("instruction targets program %s, ledger serves %s", ins.Instruction.Program, l.deriver.Program())
	}
	if strings.TrimSpace(ins.Instruction.Nonce) == "" {
		return errors.New("instruction nonce is empty")
	}
	if len(ins.Signature) != ed25519.SignatureSize {
		return fmt.Errorf("%w: signature is %d bytes", domain.ErrUnauthorized, len(ins.Signature))
	}

	payload, err := ins.Instruction.SigningBytes()
	if err != nil {
		return err
	}
	if !ed25519.Verify(ed25519.PublicKey(ins.Instruction.Signer[:]), payload, ins.Signature) {
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, ins.Instruction.Signer)
	}

	return nil
}

// now never goes backwards, even if the wall clock does.
func (l *Ledger) now() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now().Unix()
	if now < l.lastTime {
		now = l.lastTime
	}
	l.lastTime = now
	return now
}

func recordKey(addr domain.Address) []byte {
	return append(append([]byte(nil), recordPrefix...), addr[:]...)
}

func balanceKey(addr domain.Address) []byte {
	return append(append([]byte(nil), balancePrefix...), addr[:]...)
}

func receiptKey(id string) []byte {
	return append(append([]byte(nil), receiptPrefix...), id...)
}

func readBalance(txn *badger.Txn, addr domain.Address) (uint64, error) {
	item, err := txn.Get(balanceKey(addr))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("read balance %s: %w", addr, err)
	}

	var balance uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("%w: balance %s is %d bytes", domain.ErrCorruptRecord, addr, len(val))
		}
		balance = binary.LittleEndian.Uint64(val)
		return nil
	})
	return balance, err
}

func writeBalance(txn *badger.Txn, addr domain.Address, balance uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], balance)
	return txn.Set(balanceKey(addr), buf[:])
}
