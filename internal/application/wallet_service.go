package application

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/bnema/driftbottle/internal/domain"
	"github.com/bnema/driftbottle/internal/ports"
)

const walletKeyPrefix = "wallet-"

type WalletService struct {
	repo  ports.WalletRepository
	keys  ports.KeyStore
	clock ports.Clock
}

func NewWalletService(repo ports.WalletRepository, keys ports.KeyStore, clock ports.Clock) *WalletService {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &WalletService{repo: repo, keys: keys, clock: clock}
}

// Create generates a keypair, stores the private key and registers the
// wallet. A failed registration removes the stored key again.
func (s *WalletService) Create(ctx context.Context, cmd CreateWalletCommand) (domain.Wallet, error) {
	if _, err := s.repo.GetByName(ctx, cmd.Name); err == nil {
		return domain.Wallet{}, fmt.Errorf("%w: %s", domain.ErrWalletExists, cmd.Name)
	} else if !errors.Is(err, domain.ErrWalletNotFound) {
		return domain.Wallet{}, fmt.Errorf("get wallet by name: %w", err)
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("generate wallet key: %w", err)
	}
	addr, err := domain.AddressFromBytes(pub)
	if err != nil {
		return domain.Wallet{}, err
	}

	wallet := domain.Wallet{
		Name:      cmd.Name,
		Address:   addr,
		SecretRef: walletKeyPrefix + string(cmd.Name),
		CreatedAt: s.clock.Now().UTC(),
	}
	if err := wallet.Validate(); err != nil {
		return domain.Wallet{}, err
	}

	if err := s.keys.Put(ctx, wallet.SecretRef, priv); err != nil {
		return domain.Wallet{}, fmt.Errorf("store wallet key: %w", err)
	}

	if err := s.repo.Create(ctx, wallet); err != nil {
		if rollbackErr := s.keys.Delete(ctx, wallet.SecretRef); rollbackErr != nil {
			return domain.Wallet{}, fmt.Errorf("save wallet and rollback stored key: %w", errors.Join(err, rollbackErr))
		}

		return domain.Wallet{}, fmt.Errorf("save wallet: %w", err)
	}

	return wallet, nil
}

func (s *WalletService) List(ctx context.Context) ([]domain.Wallet, error) {
	return s.repo.List(ctx)
}

func (s *WalletService) Get(ctx context.Context, name domain.WalletName) (domain.Wallet, error) {
	return s.repo.GetByName(ctx, name)
}

// Signer loads the named wallet's key. The key must match the registered
// address.
func (s *WalletService) Signer(ctx context.Context, name domain.WalletName) (*KeySigner, error) {
	wallet, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	key, err := s.keys.Get(ctx, wallet.SecretRef)
	if err != nil {
		return nil, fmt.Errorf("load key for wallet %s: %w", name, err)
	}

	signer, err := NewKeySigner(key)
	if err != nil {
		return nil, err
	}
	if signer.Address() != wallet.Address {
		return nil, fmt.Errorf("key for wallet %s does not match address %s", name, wallet.Address.Short())
	}

	return signer, nil
}

// KeySigner signs instructions with an in-memory ed25519 key.
type KeySigner struct {
	addr domain.Address
	key  ed25519.PrivateKey
}

var _ ports.Signer = (*KeySigner)(nil)

func NewKeySigner(key ed25519.PrivateKey) (*KeySigner, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length %d", len(key))
	}

	addr, err := domain.AddressFromBytes(key.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}

	return &KeySigner{addr: addr, key: key}, nil
}

func (s *KeySigner) Address() domain.Address {
	return s.addr
}

func (s *KeySigner) Sign(ctx context.Context, payload []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return ed25519.Sign(s.key, payload), nil
}
