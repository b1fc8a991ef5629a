package ports

import (
	"context"

	"github.com/bnema/driftbottle/internal/domain"
)

type Signer interface {
	Address() domain.Address
	Sign(ctx context.Context, payload []byte) ([]byte, error)
}
