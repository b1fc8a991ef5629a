package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/driftbottle/internal/domain"
	"github.com/bnema/driftbottle/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coin = domain.UnitsPerCoin

func TestDepositMessageLengthLimit(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 10)

	_, err := h.service.Deposit(context.Background(), alice, DepositCommand{ID: 1, Amount: 1, Message: strings.Repeat("x", 401)})
	require.ErrorIs(t, err, domain.ErrMessageTooLong)

	drifting, err := h.service.ListDrifting(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drifting)
	assert.Equal(t, 10*coin, h.balance(t, alice.Address()))
	assert.Equal(t, domain.Bag{}, h.bag(t, alice.Address(), domain.OperationThrow))

	result := h.deposit(t, alice, 2, 0, strings.Repeat("x", 400))
	assert.Len(t, result.Bottle.Message, 400)
}

func TestDepositWithoutAmountSkipsEscrow(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 5)

	result := h.deposit(t, alice, 1, 0, "no coins")

	stored := h.bottle(t, result.Address)
	assert.Equal(t, uint64(0), stored.Asset)
	assert.Equal(t, domain.BottleStateDrifting, stored.State)
	assert.Equal(t, alice.Address(), stored.Sender)
	assert.Equal(t, h.clock.Now().Unix(), stored.Timestamp)
	assert.Equal(t, uint64(0), h.balance(t, result.AssetAccount))
	assert.Equal(t, 5*coin, h.balance(t, alice.Address()))
}

func TestDepositEscrowsAmountInDerivedAccount(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 5)

	result := h.deposit(t, alice, 7, 2, "two coins")

	escrow, bump, err := h.deriver.FindProgramAddress(domain.BottleAssetSeeds(alice.Address(), 7))
	require.NoError(t, err)
	assert.Equal(t, escrow, result.AssetAccount)

	stored := h.bottle(t, result.Address)
	assert.Equal(t, 2*coin, stored.Asset)
	assert.Equal(t, escrow, stored.AssetAccount)
	assert.Equal(t, bump, stored.DerivationNonce)
	assert.Equal(t, 2*coin, h.balance(t, escrow))
	assert.Equal(t, 3*coin, h.balance(t, alice.Address()))
	assert.Equal(t, domain.InstructionThrowABottle, result.Receipt.Instruction)
}

func TestDepositInsufficientFundsCommitsNothing(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 1)

	_, err := h.service.Deposit(context.Background(), alice, DepositCommand{ID: 1, Amount: 2, Message: "too much"})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	drifting, err := h.service.ListDrifting(context.Background())
	require.NoError(t, err)
	assert.Empty(t, drifting)
	assert.Equal(t, domain.Bag{}, h.bag(t, alice.Address(), domain.OperationThrow))
	assert.Equal(t, coin, h.balance(t, alice.Address()))
}

func TestDepositAmountOverflow(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 0)

	_, err := h.service.Deposit(context.Background(), alice, DepositCommand{ID: 1, Amount: ^uint64(0), Message: "huge"})
	require.ErrorIs(t, err, domain.ErrAmountOverflow)
}

func TestDepositDuplicateIDReturnsBottleExists(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 5)
	h.deposit(t, alice, 42, 1, "first")

	_, err := h.service.Deposit(context.Background(), alice, DepositCommand{ID: 42, Amount: 1, Message: "second"})
	require.ErrorIs(t, err, domain.ErrBottleExists)

	assert.Equal(t, uint8(1), h.bag(t, alice.Address(), domain.OperationThrow).Counter)
	assert.Equal(t, 4*coin, h.balance(t, alice.Address()))
}

func TestDepositDailyLimitResetsAfterOneDay(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 0)
	start := h.clock.Now().Unix()

	for id := domain.BottleID(1); id <= 3; id++ {
		h.deposit(t, alice, id, 0, "hi")
	}

	_, err := h.service.Deposit(context.Background(), alice, DepositCommand{ID: 4, Message: "hi"})
	require.ErrorIs(t, err, domain.ErrMaxDailyBottleExceeded)

	h.clock.Advance(24 * time.Hour)
	_, err = h.service.Deposit(context.Background(), alice, DepositCommand{ID: 4, Message: "hi"})
	require.ErrorIs(t, err, domain.ErrMaxDailyBottleExceeded)

	h.clock.Advance(time.Second)
	h.deposit(t, alice, 4, 0, "hi")

	bag := h.bag(t, alice.Address(), domain.OperationThrow)
	assert.Equal(t, uint8(1), bag.Counter)
	assert.Equal(t, start+domain.SecondsPerDay+1, bag.LastOperationTime)
}

func TestClaimOwnBottleAlwaysRejected(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 5)
	bob := h.actor(t, 0)
	result := h.deposit(t, alice, 1, 1, "mine")

	claim := ClaimCommand{Bottle: result.Address, AssetAccount: result.AssetAccount}

	_, err := h.service.Claim(context.Background(), alice, claim)
	require.ErrorIs(t, err, domain.ErrCannotRetrieveOwnBottle)

	_, err = h.service.Claim(context.Background(), bob, claim)
	require.NoError(t, err)

	_, err = h.service.Claim(context.Background(), alice, claim)
	require.ErrorIs(t, err, domain.ErrCannotRetrieveOwnBottle)
	assert.Equal(t, domain.Bag{}, h.bag(t, alice.Address(), domain.OperationRetrieve))
}

func TestClaimOwnBottleRejectedWithFullRetrieveBag(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 0)
	dave := h.actor(t, 0)
	own := h.deposit(t, alice, 1, 0, "mine")
	for id := domain.BottleID(1); id <= 3; id++ {
		deposit := h.deposit(t, dave, id, 0, "from dave")
		_, err := h.service.Claim(context.Background(), alice, ClaimCommand{Bottle: deposit.Address, AssetAccount: deposit.AssetAccount})
		require.NoError(t, err)
	}
	require.Equal(t, domain.MaxBottlesPerDay, h.bag(t, alice.Address(), domain.OperationRetrieve).Counter)

	_, err := h.service.Claim(context.Background(), alice, ClaimCommand{Bottle: own.Address, AssetAccount: own.AssetAccount})
	require.ErrorIs(t, err, domain.ErrCannotRetrieveOwnBottle)
	assert.NotErrorIs(t, err, domain.ErrMaxDailyBottleExceeded)
	assert.Equal(t, domain.BottleStateDrifting, h.bottle(t, own.Address).State)
}

func TestClaimReleasesEscrowAndRetrieves(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 5)
	bob := h.actor(t, 0)
	deposit := h.deposit(t, alice, 1, 3, "three coins")

	h.clock.Advance(time.Minute)
	result, err := h.service.Claim(context.Background(), bob, ClaimCommand{Bottle: deposit.Address, AssetAccount: deposit.AssetAccount})
	require.NoError(t, err)

	assert.Equal(t, 3*coin, result.Amount)
	assert.Equal(t, uint64(3), result.Bottle.Coins())
	assert.Equal(t, "three coins", result.Bottle.Message)
	assert.Equal(t, domain.BottleStateRetrieved, result.Bottle.State)
	assert.Equal(t, domain.InstructionRetrieveABottle, result.Receipt.Instruction)

	stored := h.bottle(t, deposit.Address)
	assert.Equal(t, domain.BottleStateRetrieved, stored.State)
	assert.Equal(t, deposit.Bottle.Timestamp, stored.Timestamp)
	assert.Equal(t, 3*coin, stored.Asset)
	assert.Equal(t, 3*coin, h.balance(t, bob.Address()))
	assert.Equal(t, uint64(0), h.balance(t, deposit.AssetAccount))

	bag := h.bag(t, bob.Address(), domain.OperationRetrieve)
	assert.Equal(t, uint8(1), bag.Counter)
	assert.Equal(t, h.clock.Now().Unix(), bag.LastOperationTime)
}

func TestClaimTwiceFailsWithAlreadyRetrieved(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 5)
	bob := h.actor(t, 0)
	deposit := h.deposit(t, alice, 1, 2, "once")
	claim := ClaimCommand{Bottle: deposit.Address, AssetAccount: deposit.AssetAccount}

	_, err := h.service.Claim(context.Background(), bob, claim)
	require.NoError(t, err)

	_, err = h.service.Claim(context.Background(), bob, claim)
	require.ErrorIs(t, err, domain.ErrBottleAlreadyRetrieved)

	assert.Equal(t, 2*coin, h.balance(t, bob.Address()))
	assert.Equal(t, uint8(1), h.bag(t, bob.Address(), domain.OperationRetrieve).Counter)
	assert.Equal(t, domain.BottleStateRetrieved, h.bottle(t, deposit.Address).State)
}

func TestClaimChecksAssetAccountFirst(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 5)
	bob := h.actor(t, 0)
	deposit := h.deposit(t, alice, 1, 1, "guarded")

	_, err := h.service.Claim(context.Background(), bob, ClaimCommand{Bottle: deposit.Address, AssetAccount: bob.Address()})
	require.ErrorIs(t, err, domain.ErrAssetAccountMismatch)
	assert.Equal(t, domain.BottleStateDrifting, h.bottle(t, deposit.Address).State)
}

func TestClaimUnknownBottle(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	bob := h.actor(t, 0)

	var missing domain.Address
	missing[0] = 0x42

	_, err := h.service.Claim(context.Background(), bob, ClaimCommand{Bottle: missing})
	require.ErrorIs(t, err, domain.ErrBottleNotFound)
}

func TestClaimDailyLimitKeepsBottleDrifting(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 0)
	dave := h.actor(t, 0)
	bob := h.actor(t, 0)

	var deposits []DepositResult
	for id := domain.BottleID(1); id <= 3; id++ {
		deposits = append(deposits, h.deposit(t, alice, id, 0, "from alice"))
	}
	deposits = append(deposits, h.deposit(t, dave, 1, 0, "from dave"))

	for _, deposit := range deposits[:3] {
		_, err := h.service.Claim(context.Background(), bob, ClaimCommand{Bottle: deposit.Address, AssetAccount: deposit.AssetAccount})
		require.NoError(t, err)
	}

	last := deposits[3]
	_, err := h.service.Claim(context.Background(), bob, ClaimCommand{Bottle: last.Address, AssetAccount: last.AssetAccount})
	require.ErrorIs(t, err, domain.ErrMaxDailyBottleExceeded)
	assert.Equal(t, domain.BottleStateDrifting, h.bottle(t, last.Address).State)
}

// failingReleaseLedger makes every escrow release fail inside the transaction.
type failingReleaseLedger struct {
	ports.Ledger
}

func (l failingReleaseLedger) Execute(ctx context.Context, ins domain.SignedInstruction, fn func(tx ports.LedgerTx) error) (domain.Receipt, error) {
	return l.Ledger.Execute(ctx, ins, func(tx ports.LedgerTx) error {
		return fn(failingReleaseTx{LedgerTx: tx})
	})
}

type failingReleaseTx struct {
	ports.LedgerTx
}

var errReleaseFailed = errors.New("release failed")

func (failingReleaseTx) TransferSigned(domain.Address, domain.Address, uint64, [][]byte, uint8) error {
	return errReleaseFailed
}

func TestClaimTransferFailureCommitsNothing(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 5)
	bob := h.actor(t, 0)
	deposit := h.deposit(t, alice, 1, 2, "stuck")

	service := NewService(failingReleaseLedger{Ledger: h.ledger}, h.deriver, nil)
	_, err := service.Claim(context.Background(), bob, ClaimCommand{Bottle: deposit.Address, AssetAccount: deposit.AssetAccount})
	require.ErrorIs(t, err, errReleaseFailed)

	assert.Equal(t, domain.BottleStateDrifting, h.bottle(t, deposit.Address).State)
	assert.Equal(t, 2*coin, h.balance(t, deposit.AssetAccount))
	assert.Equal(t, uint64(0), h.balance(t, bob.Address()))
	assert.Equal(t, domain.Bag{}, h.bag(t, bob.Address(), domain.OperationRetrieve))
}

func TestConcurrentClaimsHaveExactlyOneWinner(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 5)
	deposit := h.deposit(t, alice, 1, 1, "race")

	const claimants = 6
	signers := make([]*KeySigner, claimants)
	for i := range signers {
		signers[i] = h.actor(t, 0)
	}

	errs := make([]error, claimants)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, signer := range signers {
		wg.Add(1)
		go func(i int, signer *KeySigner) {
			defer wg.Done()
			<-start
			_, errs[i] = h.service.Claim(context.Background(), signer, ClaimCommand{Bottle: deposit.Address, AssetAccount: deposit.AssetAccount})
		}(i, signer)
	}
	close(start)
	wg.Wait()

	winners := 0
	var paid uint64
	for i, err := range errs {
		if err == nil {
			winners++
			paid += h.balance(t, signers[i].Address())
			continue
		}
		require.ErrorIs(t, err, domain.ErrBottleAlreadyRetrieved)
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, coin, paid)
}

func TestEndToEndHelloWithTwoCoins(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 10)
	bob := h.actor(t, 0)
	carol := h.actor(t, 0)

	deposit := h.deposit(t, alice, domain.BottleID(h.clock.Now().UnixMilli()), 2, "hello")

	result, found, err := h.service.Retrieve(context.Background(), bob, RetrieveCommand{})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "hello", result.Bottle.Message)
	assert.Equal(t, uint64(2), result.Bottle.Coins())
	assert.Equal(t, 2*coin, h.balance(t, bob.Address()))
	assert.Equal(t, domain.BottleStateRetrieved, h.bottle(t, deposit.Address).State)

	_, err = h.service.Claim(context.Background(), carol, ClaimCommand{Bottle: deposit.Address, AssetAccount: deposit.AssetAccount})
	require.ErrorIs(t, err, domain.ErrBottleAlreadyRetrieved)

	_, found, err = h.service.ClaimOldest(context.Background(), carol)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClaimOldestPicksLowestID(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 0)
	dave := h.actor(t, 0)
	bob := h.actor(t, 0)

	h.deposit(t, alice, 500, 0, "five hundred")
	h.deposit(t, dave, 200, 0, "two hundred")
	h.deposit(t, alice, 800, 0, "eight hundred")

	result, found, err := h.service.ClaimOldest(context.Background(), bob)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.BottleID(200), result.Bottle.ID)

	drifting, err := h.service.ListDrifting(context.Background())
	require.NoError(t, err)
	require.Len(t, drifting, 2)
	assert.Equal(t, domain.BottleID(500), drifting[0].Bottle.ID)
	assert.Equal(t, domain.BottleID(800), drifting[1].Bottle.ID)
}

// staleScanner serves one outdated scan before delegating.
type staleScanner struct {
	ports.RecordScanner
	mu    sync.Mutex
	stale []domain.KeyedRecord
}

func (s *staleScanner) GetProgramRecords(ctx context.Context, filters []domain.Memcmp, slice *domain.DataSlice) ([]domain.KeyedRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stale != nil {
		records := s.stale
		s.stale = nil
		return records, nil
	}

	return s.RecordScanner.GetProgramRecords(ctx, filters, slice)
}

func TestRetrieveReselectsAfterLostRace(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 0)
	bob := h.actor(t, 0)
	carol := h.actor(t, 0)

	h.deposit(t, alice, 1, 0, "first")
	h.deposit(t, alice, 2, 0, "second")

	slice := domain.BottleIDSlice()
	snapshot, err := h.ledger.GetProgramRecords(context.Background(), domain.DriftingBottleFilters(), &slice)
	require.NoError(t, err)

	_, _, err = h.service.ClaimOldest(context.Background(), carol)
	require.NoError(t, err)

	h.service.selector = NewSelector(&staleScanner{RecordScanner: h.ledger, stale: snapshot})
	_, found, err := h.service.Retrieve(context.Background(), bob, RetrieveCommand{Retries: 0})
	require.True(t, found)
	require.ErrorIs(t, err, domain.ErrBottleAlreadyRetrieved)

	type selection struct {
		attempt int
		id      domain.BottleID
	}
	var selected []selection

	h.service.selector = NewSelector(&staleScanner{RecordScanner: h.ledger, stale: snapshot})
	result, found, err := h.service.Retrieve(context.Background(), bob, RetrieveCommand{
		Retries: 1,
		OnSelect: func(attempt int, candidate Candidate) {
			selected = append(selected, selection{attempt: attempt, id: candidate.Bottle.ID})
		},
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "second", result.Bottle.Message)
	assert.Equal(t, []selection{{attempt: 0, id: 1}, {attempt: 1, id: 2}}, selected)
}

func TestRetrieveDoesNotRetryPolicyErrors(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 0)
	h.deposit(t, alice, 1, 0, "mine")

	_, found, err := h.service.Retrieve(context.Background(), alice, RetrieveCommand{Retries: 5})
	require.True(t, found)
	require.ErrorIs(t, err, domain.ErrCannotRetrieveOwnBottle)
}

func TestRetrieveStopsAtOwnOldestBottle(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 0)
	dave := h.actor(t, 0)
	h.deposit(t, alice, 1, 0, "oldest, mine")
	other := h.deposit(t, dave, 2, 0, "newer, dave's")

	_, found, err := h.service.Retrieve(context.Background(), alice, RetrieveCommand{Retries: 3})
	require.True(t, found)
	require.ErrorIs(t, err, domain.ErrCannotRetrieveOwnBottle)
	assert.Equal(t, domain.BottleStateDrifting, h.bottle(t, other.Address).State)
}

func TestAirdropAndBalance(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 0)

	balance, err := h.service.Airdrop(context.Background(), alice.Address(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3*coin, balance)

	balance, err = h.service.Balance(context.Background(), alice.Address())
	require.NoError(t, err)
	assert.Equal(t, 3*coin, balance)
}

func TestAllowancesTrackBothBags(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 0)
	dave := h.actor(t, 0)

	allowances, err := h.service.Allowances(context.Background(), alice.Address(), h.clock.Now().Unix())
	require.NoError(t, err)
	assert.Equal(t, []Allowance{
		{Kind: domain.OperationThrow, Remaining: 3},
		{Kind: domain.OperationRetrieve, Remaining: 3},
	}, allowances)

	for id := domain.BottleID(1); id <= 3; id++ {
		h.deposit(t, alice, id, 0, "hi")
	}
	deposit := h.deposit(t, dave, 1, 0, "for alice")
	_, err = h.service.Claim(context.Background(), alice, ClaimCommand{Bottle: deposit.Address, AssetAccount: deposit.AssetAccount})
	require.NoError(t, err)

	allowances, err = h.service.Allowances(context.Background(), alice.Address(), h.clock.Now().Unix())
	require.NoError(t, err)
	assert.Equal(t, []Allowance{
		{Kind: domain.OperationThrow, Remaining: 0},
		{Kind: domain.OperationRetrieve, Remaining: 2},
	}, allowances)

	nextDay := h.clock.Now().Unix() + domain.SecondsPerDay + 1
	allowances, err = h.service.Allowances(context.Background(), alice.Address(), nextDay)
	require.NoError(t, err)
	assert.Equal(t, uint8(3), allowances[0].Remaining)
}

func TestRemainingRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	_, err := h.service.remaining(context.Background(), h.actor(t, 0).Address(), domain.OperationKind("sail"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown operation kind "sail"`)
}

// recordingLedger keeps every instruction it is asked to execute.
type recordingLedger struct {
	ports.Ledger
	mu           sync.Mutex
	instructions []domain.Instruction
}

func (l *recordingLedger) Execute(ctx context.Context, ins domain.SignedInstruction, fn func(tx ports.LedgerTx) error) (domain.Receipt, error) {
	l.mu.Lock()
	l.instructions = append(l.instructions, ins.Instruction)
	l.mu.Unlock()

	return l.Ledger.Execute(ctx, ins, fn)
}

func TestDepositWritesSignedTerms(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	alice := h.actor(t, 5)
	recorder := &recordingLedger{Ledger: h.service.ledger}
	h.service.ledger = recorder

	result := h.deposit(t, alice, 77, 2, "signed")

	require.Len(t, recorder.instructions, 1)
	ins := recorder.instructions[0]
	assert.Equal(t, domain.InstructionThrowABottle, ins.Name)
	assert.Equal(t, "77", ins.Args["id"])
	assert.Equal(t, "2", ins.Args["amount"])

	stored := h.bottle(t, result.Address)
	assert.Equal(t, domain.BottleID(77), stored.ID)
	assert.Equal(t, 2*coin, stored.Asset)
}

func TestDepositTerms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      map[string]string
		wantID    domain.BottleID
		wantUnits uint64
		wantErr   error
		errText   string
	}{
		{name: "valid", args: map[string]string{"id": "9", "amount": "3"}, wantID: 9, wantUnits: 3 * coin},
		{name: "missing id", args: map[string]string{"amount": "3"}, errText: `missing argument "id"`},
		{name: "malformed amount", args: map[string]string{"id": "9", "amount": "three"}, errText: `argument "amount"`},
		{name: "overflowing amount", args: map[string]string{"id": "9", "amount": "18446744073709551615"}, wantErr: domain.ErrAmountOverflow},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			id, units, err := depositTerms(domain.Instruction{Name: domain.InstructionThrowABottle, Args: tt.args})
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.errText != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errText)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
				assert.Equal(t, tt.wantUnits, units)
			}
		})
	}
}
