// Package config handles application configuration.
//
// Configuration is split into two categories:
//   - Chain parameters: described by a Genesis and encoded into block0
//   - Local settings: where wallets live, how many keys to scan, logging
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// =============================================================================
// Local Configuration
// =============================================================================

// Config holds local runtime configuration for the wallet tools.
type Config struct {
	// Core
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Wallet
	Wallet WalletConfig

	// Logging
	Log LogConfig
}

// MaxUTXOKeys caps how many UTxO keys a wallet derives and scans for.
const MaxUTXOKeys = 1000

// WalletConfig holds wallet derivation settings.
type WalletConfig struct {
	UTXOKeys int    `conf:"wallet.utxokeys"` // UTxO keys derived per wallet
	Account  uint32 `conf:"wallet.account"`  // BIP-44 account index
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// =============================================================================
// Directory helpers
// =============================================================================

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.klingnet-walletcore
//	macOS:   ~/Library/Application Support/KlingnetWalletcore
//	Windows: %APPDATA%\KlingnetWalletcore
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".klingnet-walletcore"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "KlingnetWalletcore")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "KlingnetWalletcore")
		}
		return filepath.Join(home, "AppData", "Roaming", "KlingnetWalletcore")
	default:
		return filepath.Join(home, ".klingnet-walletcore")
	}
}

// NetworkDataDir returns the network-specific data directory.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// KeystoreDir returns the keystore directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.NetworkDataDir(), "keystore")
}

// StateDir returns the wallet state database directory.
func (c *Config) StateDir() string {
	return filepath.Join(c.NetworkDataDir(), "state")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "walletcore.conf")
}
