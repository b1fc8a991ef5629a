package ports

import (
	"context"
	"crypto/ed25519"
)

type KeyStore interface {
	Get(ctx context.Context, ref string) (ed25519.PrivateKey, error)
	Put(ctx context.Context, ref string, key ed25519.PrivateKey) error
	Delete(ctx context.Context, ref string) error
}
