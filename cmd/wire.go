package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bnema/driftbottle/internal/adapters/derive"
	chainkeys "github.com/bnema/driftbottle/internal/adapters/keys/chain"
	filekeys "github.com/bnema/driftbottle/internal/adapters/keys/file"
	ledgerbadger "github.com/bnema/driftbottle/internal/adapters/ledger/badger"
	bottlesrender "github.com/bnema/driftbottle/internal/adapters/render/bottles"
	tomlrepo "github.com/bnema/driftbottle/internal/adapters/repo/toml"
	"github.com/bnema/driftbottle/internal/application"
	"github.com/bnema/driftbottle/internal/domain"
	"github.com/bnema/driftbottle/internal/logging"
	"github.com/bnema/driftbottle/internal/ports"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app is wired per command run. The ledger holds a directory lock, so it is
// opened only for the duration of one RunE.
type app struct {
	config  *viper.Viper
	logger  logging.Logger
	ledger  *ledgerbadger.Ledger
	service *application.Service
	wallets *application.WalletService

	bottleRenderer func([]application.Candidate, bottlesrender.RenderOptions) (string, error)
	now            func() time.Time
	interactive    func(io.Writer) bool
}

func newApp() *app {
	return &app{
		bottleRenderer: bottlesrender.Render,
		now:            time.Now,
		interactive:    isTerminal,
	}
}

type runFunc func(cmd *cobra.Command, args []string) error

// run wires the app around fn and releases the ledger afterwards, on
// success and on error alike.
func (a *app) run(fn runFunc) runFunc {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.wire(cmd); err != nil {
			return err
		}
		defer func() {
			if err := a.close(); err != nil {
				a.logger.Warn(cmd.Context(), "close ledger", "error", err)
			}
		}()

		return fn(cmd, args)
	}
}

func (a *app) wire(cmd *cobra.Command) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.NewText(cmd.ErrOrStderr(), config.GetString(configKeyLogLevel))
	if err != nil {
		return err
	}

	program, err := domain.ParseAddress(config.GetString(configKeyProgramID))
	if err != nil {
		return fmt.Errorf("program id: %w", err)
	}
	deriver, err := derive.New(program)
	if err != nil {
		return fmt.Errorf("wire address deriver: %w", err)
	}

	ledgerCfg := ledgerbadger.DefaultConfig(config.GetString(configKeyLedgerPath))
	ledgerCfg.Logger = logger.Slog().With("component", "badger")
	ledger, err := ledgerbadger.Open(ledgerCfg, deriver, ports.SystemClock{}, logger)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	repo, err := tomlrepo.NewRepository(config)
	if err != nil {
		_ = ledger.Close()
		return fmt.Errorf("wire wallet repository: %w", err)
	}

	keys, err := newKeyStore(config)
	if err != nil {
		_ = ledger.Close()
		return err
	}

	a.config = config
	a.logger = logger
	a.ledger = ledger
	a.service = application.NewService(ledger, deriver, logger)
	a.wallets = application.NewWalletService(repo, keys, ports.SystemClock{})
	return nil
}

const (
	keyBackendFile = "file"
	keyBackendPass = "pass"
)

// newKeyStore selects where wallet keys live. The pass backend falls back to
// key files when pass is missing or fails.
func newKeyStore(config *viper.Viper) (ports.KeyStore, error) {
	root := config.GetString(configKeyKeysPath)

	switch backend := config.GetString(configKeyKeyBackend); backend {
	case keyBackendFile:
		return filekeys.NewStore(root), nil
	case keyBackendPass:
		store, err := chainkeys.NewPassFirstWithFileFallback(root)
		if err != nil {
			return nil, fmt.Errorf("wire key store chain: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown %s %q (want %q or %q)", configKeyKeyBackend, backend, keyBackendFile, keyBackendPass)
	}
}

func (a *app) close() error {
	if a.ledger == nil {
		return nil
	}

	err := a.ledger.Close()
	a.ledger = nil
	return err
}

func (a *app) walletName() domain.WalletName {
	return domain.WalletName(a.config.GetString(configKeyWallet))
}

func (a *app) signer(ctx context.Context) (*application.KeySigner, error) {
	signer, err := a.wallets.Signer(ctx, a.walletName())
	if errors.Is(err, domain.ErrWalletNotFound) {
		return nil, a.missingWallet()
	}
	return signer, err
}

// address resolves an explicit hex address, falling back to the active wallet.
func (a *app) address(ctx context.Context, raw string) (domain.Address, error) {
	if raw != "" {
		return domain.ParseAddress(raw)
	}

	wallet, err := a.wallets.Get(ctx, a.walletName())
	if errors.Is(err, domain.ErrWalletNotFound) {
		return domain.Address{}, a.missingWallet()
	}
	if err != nil {
		return domain.Address{}, err
	}
	return wallet.Address, nil
}

func (a *app) missingWallet() error {
	return fmt.Errorf("%w: %q (create it with `bottle wallet create %s`)", domain.ErrWalletNotFound, a.walletName(), a.walletName())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
