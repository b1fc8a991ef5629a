package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tomlrepo "github.com/bnema/driftbottle/internal/adapters/repo/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".bottle"
	envPrefix  = "BOTTLE"

	configKeyWallet     = "wallet"
	configKeyLedgerPath = "ledger.path"
	configKeyProgramID  = "program_id"
	configKeyKeysPath   = "keys.path"
	configKeyKeyBackend = "keys.backend"
	configKeyLogLevel   = "log.level"

	defaultWallet    = "default"
	defaultProgramID = "03ec52ef5eef3774198a570592ad1d8511614dea345d55de0dec4cf47f7a59d7"
	defaultLogLevel  = "warn"
)

// persistentFlagKeys maps root persistent flags onto config keys.
var persistentFlagKeys = map[string]string{
	"wallet":     configKeyWallet,
	"ledger":     configKeyLedgerPath,
	"program-id": configKeyProgramID,
	"log-level":  configKeyLogLevel,
}

func addPersistentFlags(rootCmd *cobra.Command) {
	flags := rootCmd.PersistentFlags()
	flags.String("wallet", "", "wallet acting as sender or claimant (default \"default\")")
	flags.String("ledger", "", "ledger directory (default ~/.bottle/ledger)")
	flags.String("program-id", "", "hex program id scoping bottle addresses")
	flags.String("log-level", "", "log level: debug, info, warn or error (default \"warn\")")
}

// loadConfig layers flags over BOTTLE_* env vars over ~/.bottle/config.toml
// over defaults.
func loadConfig(cmd *cobra.Command) (*viper.Viper, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	base := filepath.Join(homeDir, configDir)

	cfg := viper.New()
	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(base)

	cfg.SetDefault(configKeyWallet, defaultWallet)
	cfg.SetDefault(configKeyLedgerPath, filepath.Join(base, "ledger"))
	cfg.SetDefault(configKeyProgramID, defaultProgramID)
	cfg.SetDefault(configKeyKeysPath, filepath.Join(base, "keys"))
	cfg.SetDefault(configKeyKeyBackend, keyBackendFile)
	cfg.SetDefault(tomlrepo.WalletsPathKey, filepath.Join(base, "wallets.toml"))
	cfg.SetDefault(configKeyLogLevel, defaultLogLevel)

	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	cfg.AutomaticEnv()

	for flagName, key := range persistentFlagKeys {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := cfg.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("bind --%s: %w", flagName, err)
		}
	}

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return cfg, nil
}
