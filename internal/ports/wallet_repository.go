package ports

import (
	"context"

	"github.com/bnema/driftbottle/internal/domain"
)

type WalletRepository interface {
	GetByName(ctx context.Context, name domain.WalletName) (domain.Wallet, error)
	List(ctx context.Context) ([]domain.Wallet, error)
	// Create fails with domain.ErrWalletExists when the name is taken.
	Create(ctx context.Context, wallet domain.Wallet) error
}
