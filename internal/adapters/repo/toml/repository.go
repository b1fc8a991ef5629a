package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/driftbottle/internal/domain"
	"github.com/bnema/driftbottle/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	WalletsPathKey = "wallets.path"

	walletsFileMode   = 0o600
	walletsDirMode    = 0o700
	walletsConfigDir  = ".bottle"
	walletsConfigFile = "wallets.toml"
	tempFilePattern   = ".wallets-*.toml.tmp"
)

type Repository struct {
	walletsPath string
	mu          *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.WalletRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	walletsPath := cfg.GetString(WalletsPathKey)
	if walletsPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		walletsPath = filepath.Join(homeDir, walletsConfigDir, walletsConfigFile)
	}

	walletsPath, err := normalizeWalletsPath(walletsPath)
	if err != nil {
		return nil, err
	}

	return &Repository{walletsPath: walletsPath, mu: lockForPath(walletsPath)}, nil
}

func (r *Repository) Create(ctx context.Context, wallet domain.Wallet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := wallet.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	for _, entry := range file.Wallets {
		if entry.Name == string(wallet.Name) {
			return fmt.Errorf("%w: %s", domain.ErrWalletExists, wallet.Name)
		}
	}
	file.Wallets = append(file.Wallets, toSchema(wallet))

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) GetByName(ctx context.Context, name domain.WalletName) (domain.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return domain.Wallet{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Wallet{}, err
	}

	for _, entry := range file.Wallets {
		if entry.Name == string(name) {
			return fromSchema(entry)
		}
	}

	return domain.Wallet{}, fmt.Errorf("%w: %s", domain.ErrWalletNotFound, name)
}

func (r *Repository) List(ctx context.Context) ([]domain.Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}

	wallets := make([]domain.Wallet, 0, len(file.Wallets))
	for _, entry := range file.Wallets {
		wallet, err := fromSchema(entry)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, wallet)
	}

	return wallets, nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.walletsPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{Version: currentSchemaVersion}, nil
		}
		return fileSchema{}, fmt.Errorf("read wallets file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode wallets file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func normalizeWalletsPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve wallets path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

// writeSchema replaces the wallets file through a temp file and rename.
func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.walletsPath), walletsDirMode); err != nil {
		return fmt.Errorf("create wallets directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode wallets file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.walletsPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp wallets file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp wallets file: %w", err)
	}

	if err := tempFile.Chmod(walletsFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp wallets file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp wallets file: %w", err)
	}

	if err := os.Rename(tempName, r.walletsPath); err != nil {
		return fmt.Errorf("replace wallets file: %w", err)
	}

	cleanup = false
	return nil
}

func toSchema(wallet domain.Wallet) walletSchema {
	return walletSchema{
		Name:      string(wallet.Name),
		Address:   wallet.Address.String(),
		SecretRef: wallet.SecretRef,
		CreatedAt: formatTime(wallet.CreatedAt),
	}
}

func fromSchema(entry walletSchema) (domain.Wallet, error) {
	addr, err := domain.ParseAddress(entry.Address)
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("wallet %q: %w", entry.Name, err)
	}

	return domain.Wallet{
		Name:      domain.WalletName(entry.Name),
		Address:   addr,
		SecretRef: entry.SecretRef,
		CreatedAt: parseTime(entry.CreatedAt),
	}, nil
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}
