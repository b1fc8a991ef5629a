// Package chain tries a primary key store and falls back to a second one.
package chain

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"

	filekeys "github.com/bnema/driftbottle/internal/adapters/keys/file"
	passkeys "github.com/bnema/driftbottle/internal/adapters/keys/pass"
	"github.com/bnema/driftbottle/internal/ports"
)

type Store struct {
	primary  ports.KeyStore
	fallback ports.KeyStore
}

var _ ports.KeyStore = (*Store)(nil)

var (
	errNilPrimaryStore  = errors.New("primary key store is nil")
	errNilFallbackStore = errors.New("fallback key store is nil")
)

func NewStore(primary ports.KeyStore, fallback ports.KeyStore) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	return &Store{primary: primary, fallback: fallback}, nil
}

func NewPassFirstWithFileFallback(fileRoot string) (*Store, error) {
	return NewStore(passkeys.NewStore(), filekeys.NewStore(fileRoot))
}

func (s *Store) Put(ctx context.Context, ref string, key ed25519.PrivateKey) error {
	err := s.primary.Put(ctx, ref, key)
	if err == nil {
		return nil
	}
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Put(ctx, ref, key)
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", err, fallbackErr)
}

func (s *Store) Get(ctx context.Context, ref string) (ed25519.PrivateKey, error) {
	key, err := s.primary.Get(ctx, ref)
	if err == nil {
		return key, nil
	}
	if shouldSkipFallback(err) {
		return nil, err
	}

	fallbackKey, fallbackErr := s.fallback.Get(ctx, ref)
	if fallbackErr == nil {
		return fallbackKey, nil
	}

	return nil, fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", err, fallbackErr)
}

// Delete removes the key from both backends, since Put may have landed in
// either one.
func (s *Store) Delete(ctx context.Context, ref string) error {
	err := s.primary.Delete(ctx, ref)
	if shouldSkipFallback(err) {
		return err
	}

	fallbackErr := s.fallback.Delete(ctx, ref)
	if err != nil && fallbackErr != nil {
		return fmt.Errorf("primary backend delete failed: %w; fallback backend delete failed: %w", err, fallbackErr)
	}

	return nil
}

func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
