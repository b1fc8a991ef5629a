package application

import (
	"context"
	"crypto/ed25519"
	"sync"
	"testing"
	"time"

	"github.com/bnema/driftbottle/internal/adapters/derive"
	ledgerbadger "github.com/bnema/driftbottle/internal/adapters/ledger/badger"
	"github.com/bnema/driftbottle/internal/domain"
	"github.com/bnema/driftbottle/internal/logging"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func mockAnyContext() any {
	return mock.Anything
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	service *Service
	ledger  *ledgerbadger.Ledger
	deriver *derive.Deriver
	clock   *testClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	var program domain.Address
	program[0] = 0xd1

	deriver, err := derive.New(program)
	require.NoError(t, err)

	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	ledger, err := ledgerbadger.Open(ledgerbadger.InMemoryConfig(), deriver, clock, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })

	return &harness{
		service: NewService(ledger, deriver, logging.Discard()),
		ledger:  ledger,
		deriver: deriver,
		clock:   clock,
	}
}

// actor returns a signer funded with coins whole units.
func (h *harness) actor(t *testing.T, coins uint64) *KeySigner {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	signer, err := NewKeySigner(priv)
	require.NoError(t, err)

	if coins > 0 {
		_, err := h.service.Airdrop(context.Background(), signer.Address(), coins)
		require.NoError(t, err)
	}

	return signer
}

func (h *harness) balance(t *testing.T, addr domain.Address) uint64 {
	t.Helper()

	balance, err := h.ledger.Balance(context.Background(), addr)
	require.NoError(t, err)
	return balance
}

func (h *harness) bottle(t *testing.T, addr domain.Address) domain.Bottle {
	t.Helper()

	data, err := h.ledger.GetRecord(context.Background(), addr)
	require.NoError(t, err)
	bottle, err := domain.DecodeBottle(data)
	require.NoError(t, err)
	return bottle
}

func (h *harness) bag(t *testing.T, actor domain.Address, kind domain.OperationKind) domain.Bag {
	t.Helper()

	addr, _, err := h.deriver.FindProgramAddress(domain.BagSeeds(actor, kind))
	require.NoError(t, err)

	data, err := h.ledger.GetRecord(context.Background(), addr)
	if err != nil {
		require.ErrorIs(t, err, domain.ErrRecordNotFound)
		return domain.Bag{}
	}
	bag, err := domain.DecodeBag(data)
	require.NoError(t, err)
	return bag
}

func (h *harness) deposit(t *testing.T, signer *KeySigner, id domain.BottleID, coins uint64, message string) DepositResult {
	t.Helper()

	result, err := h.service.Deposit(context.Background(), signer, DepositCommand{ID: id, Amount: coins, Message: message})
	require.NoError(t, err)
	return result
}
