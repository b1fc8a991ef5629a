package application

import (
	"context"
	"crypto/ed25519"
	"errors"
	"testing"
	"time"

	"github.com/bnema/driftbottle/internal/domain"
	"github.com/bnema/driftbottle/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWalletServiceCreateStoresKeyAndRegistersWallet(t *testing.T) {
	repo := mocks.NewMockWalletRepository(t)
	keys := mocks.NewMockKeyStore(t)
	clock := mocks.NewMockClock(t)
	service := NewWalletService(repo, keys, clock)

	now := time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)
	var stored ed25519.PrivateKey

	repo.EXPECT().GetByName(mockAnyContext(), domain.WalletName("alice")).Return(domain.Wallet{}, domain.ErrWalletNotFound)
	clock.EXPECT().Now().Return(now)
	keys.EXPECT().Put(mockAnyContext(), "wallet-alice", mock.Anything).
		Run(func(_ context.Context, _ string, key ed25519.PrivateKey) { stored = key }).
		Return(nil)
	repo.EXPECT().Create(mockAnyContext(), mock.MatchedBy(func(w domain.Wallet) bool {
		return w.Name == "alice" && w.SecretRef == "wallet-alice" && w.CreatedAt.Equal(now)
	})).Return(nil)

	wallet, err := service.Create(context.Background(), CreateWalletCommand{Name: "alice"})
	require.NoError(t, err)
	require.Len(t, stored, ed25519.PrivateKeySize)
	assert.Equal(t, stored.Public().(ed25519.PublicKey), ed25519.PublicKey(wallet.Address[:]))
}

func TestWalletServiceCreateExistingNameFails(t *testing.T) {
	repo := mocks.NewMockWalletRepository(t)
	keys := mocks.NewMockKeyStore(t)
	service := NewWalletService(repo, keys, mocks.NewMockClock(t))

	repo.EXPECT().GetByName(mockAnyContext(), domain.WalletName("alice")).Return(domain.Wallet{Name: "alice"}, nil)

	_, err := service.Create(context.Background(), CreateWalletCommand{Name: "alice"})
	require.ErrorIs(t, err, domain.ErrWalletExists)
}

func TestWalletServiceCreateRollsBackKeyWhenRegistrationFails(t *testing.T) {
	repo := mocks.NewMockWalletRepository(t)
	keys := mocks.NewMockKeyStore(t)
	clock := mocks.NewMockClock(t)
	service := NewWalletService(repo, keys, clock)

	saveErr := errors.New("disk full")
	repo.EXPECT().GetByName(mockAnyContext(), domain.WalletName("alice")).Return(domain.Wallet{}, domain.ErrWalletNotFound)
	clock.EXPECT().Now().Return(time.Unix(0, 0))
	keys.EXPECT().Put(mockAnyContext(), "wallet-alice", mock.Anything).Return(nil)
	repo.EXPECT().Create(mockAnyContext(), mock.Anything).Return(saveErr)
	keys.EXPECT().Delete(mockAnyContext(), "wallet-alice").Return(nil)

	_, err := service.Create(context.Background(), CreateWalletCommand{Name: "alice"})
	require.ErrorIs(t, err, saveErr)
	assert.ErrorContains(t, err, "save wallet")
}

func TestWalletServiceCreateReportsRollbackFailure(t *testing.T) {
	repo := mocks.NewMockWalletRepository(t)
	keys := mocks.NewMockKeyStore(t)
	clock := mocks.NewMockClock(t)
	service := NewWalletService(repo, keys, clock)

	saveErr := errors.New("disk full")
	deleteErr := errors.New("permission denied")
	repo.EXPECT().GetByName(mockAnyContext(), domain.WalletName("alice")).Return(domain.Wallet{}, domain.ErrWalletNotFound)
	clock.EXPECT().Now().Return(time.Unix(0, 0))
	keys.EXPECT().Put(mockAnyContext(), "wallet-alice", mock.Anything).Return(nil)
	repo.EXPECT().Create(mockAnyContext(), mock.Anything).Return(saveErr)
	keys.EXPECT().Delete(mockAnyContext(), "wallet-alice").Return(deleteErr)

	_, err := service.Create(context.Background(), CreateWalletCommand{Name: "alice"})
	require.ErrorIs(t, err, saveErr)
	require.ErrorIs(t, err, deleteErr)
}

func TestWalletServiceSignerLoadsMatchingKey(t *testing.T) {
	repo := mocks.NewMockWalletRepository(t)
	keys := mocks.NewMockKeyStore(t)
	service := NewWalletService(repo, keys, nil)

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	addr, err := domain.AddressFromBytes(pub)
	require.NoError(t, err)

	repo.EXPECT().GetByName(mockAnyContext(), domain.WalletName("bob")).Return(domain.Wallet{Name: "bob", Address: addr, SecretRef: "wallet-bob"}, nil)
	keys.EXPECT().Get(mockAnyContext(), "wallet-bob").Return(priv, nil)

	signer, err := service.Signer(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, addr, signer.Address())

	signature, err := signer.Sign(context.Background(), []byte("payload"))
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(pub, []byte("payload"), signature))
}

func TestWalletServiceSignerRejectsMismatchedKey(t *testing.T) {
	repo := mocks.NewMockWalletRepository(t)
	keys := mocks.NewMockKeyStore(t)
	service := NewWalletService(repo, keys, nil)

	_, other, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	repo.EXPECT().GetByName(mockAnyContext(), domain.WalletName("bob")).Return(domain.Wallet{Name: "bob", Address: scanAddress(7), SecretRef: "wallet-bob"}, nil)
	keys.EXPECT().Get(mockAnyContext(), "wallet-bob").Return(other, nil)

	_, err = service.Signer(context.Background(), "bob")
	require.Error(t, err)
	assert.ErrorContains(t, err, "does not match")
}

func TestWalletServiceSignerUnknownWallet(t *testing.T) {
	repo := mocks.NewMockWalletRepository(t)
	service := NewWalletService(repo, mocks.NewMockKeyStore(t), nil)

	repo.EXPECT().GetByName(mockAnyContext(), domain.WalletName("ghost")).Return(domain.Wallet{}, domain.ErrWalletNotFound)

	_, err := service.Signer(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrWalletNotFound)
}

func TestKeySignerCanceledContext(t *testing.T) {
	t.Parallel()

	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	signer, err := NewKeySigner(priv)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = signer.Sign(ctx, []byte("x"))
	require.ErrorIs(t, err, context.Canceled)

	_, err = NewKeySigner(priv[:10])
	require.Error(t, err)
}
