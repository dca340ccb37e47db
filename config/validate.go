package config

import (
	"fmt"
	"strings"

	"github.com/Klingon-tech/klingnet-walletcore/internal/log"
)

// Validate checks runtime config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir is empty")
	}
	if cfg.Wallet.UTXOKeys < 0 || cfg.Wallet.UTXOKeys > MaxUTXOKeys {
		return fmt.Errorf("wallet.utxokeys must be in range [0, %d]", MaxUTXOKeys)
	}
	if cfg.Wallet.Account >= 1<<31 {
		return fmt.Errorf("wallet.account must be below 2^31")
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if !log.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level %q is not a known level", cfg.Log.Level)
	}
	return nil
}
