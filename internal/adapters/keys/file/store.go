package file

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bnema/driftbottle/internal/domain"
	"github.com/bnema/driftbottle/internal/ports"
)

const (
	storeDirMode = 0o700
	keyFileMode  = 0o600
)

// Store keeps one base64 ed25519 seed per file under root.
type Store struct {
	root string
	mu   sync.RWMutex
}

var _ ports.KeyStore = (*Store)(nil)

func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

func (s *Store) Put(ctx context.Context, ref string, key ed25519.PrivateKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(key) != ed25519.PrivateKeySize {
		return fmt.Errorf("invalid private key length %d", len(key))
	}

	path, err := s.pathForRef(ref)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), storeDirMode); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(key.Seed())
	if err := os.WriteFile(path, []byte(encoded+"\n"), keyFileMode); err != nil {
		return fmt.Errorf("write key %q: %w", ref, err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, ref string) (ed25519.PrivateKey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.pathForRef(ref)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("key %q: %w", ref, domain.ErrKeyNotFound)
		}
		return nil, fmt.Errorf("read key %q: %w", ref, err)
	}

	seed, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("decode key %q: %w", ref, err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("decode key %q: seed is %d bytes", ref, len(seed))
	}

	return ed25519.NewKeyFromSeed(seed), nil
}

func (s *Store) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathForRef(ref)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete key %q: %w", ref, err)
	}

	return nil
}

func (s *Store) pathForRef(ref string) (string, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return "", errors.New("key ref is empty")
	}

	cleaned := filepath.Clean(trimmed)
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") || cleaned == "." {
		return "", fmt.Errorf("invalid key ref %q", ref)
	}

	return filepath.Join(s.root, cleaned), nil
}
