package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Flags holds the global command-line flags shared by every subcommand.
type Flags struct {
	// Core
	Network string
	Testnet bool
	DataDir string
	Config  string

	// Wallet
	UTXOKeys int
	Account  uint32

	// Logging
	LogLevel string
	LogFile  string
	LogJSON  bool

	cmd *cobra.Command
}

// Register binds f to cmd's persistent flags.
func (f *Flags) Register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()

	pf.StringVar(&f.Network, "network", "", "Network type (mainnet or testnet)")
	pf.BoolVar(&f.Testnet, "testnet", false, "Use testnet (shorthand for --network=testnet)")
	pf.StringVar(&f.DataDir, "datadir", "", "Data directory path")
	pf.StringVarP(&f.Config, "config", "c", "", "Config file path (default: <datadir>/walletcore.conf)")

	pf.IntVar(&f.UTXOKeys, "utxo-keys", 0, "UTxO keys derived and scanned per wallet")
	pf.Uint32Var(&f.Account, "account", 0, "BIP-44 account index")

	pf.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&f.LogFile, "log-file", "", "Log file path")
	pf.BoolVar(&f.LogJSON, "log-json", false, "Output logs as JSON")

	f.cmd = cmd
}

// changed reports whether a flag was explicitly set.
func (f *Flags) changed(name string) bool {
	return f.cmd != nil && f.cmd.PersistentFlags().Changed(name)
}

// network returns the network chosen on the command line, if any.
func (f *Flags) network() NetworkType {
	if f.Testnet {
		return Testnet
	}
	return NetworkType(strings.ToLower(f.Network))
}

// ApplyFlags applies command-line flags to a Config struct.
func ApplyFlags(cfg *Config, f *Flags) {
	if n := f.network(); n != "" {
		cfg.Network = n
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	if f.changed("utxo-keys") {
		cfg.Wallet.UTXOKeys = f.UTXOKeys
	}
	if f.changed("account") {
		cfg.Wallet.Account = f.Account
	}

	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.LogFile != "" {
		cfg.Log.File = f.LogFile
	}
	if f.changed("log-json") {
		cfg.Log.JSON = f.LogJSON
	}
}

// Load loads configuration with the following precedence:
// 1. Default values
// 2. Auto-create data dirs + default config (idempotent)
// 3. Config file
// 4. WALLETCORE_* environment
// 5. Command-line flags
func Load(f *Flags) (*Config, error) {
	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}

	// Network and datadir pick the defaults and the config file, so resolve
	// them from env and flags first.
	network := Mainnet
	if env.Network != "" {
		network = NetworkType(strings.ToLower(env.Network))
	}
	if n := f.network(); n != "" {
		network = n
	}
	cfg := Default(network)
	if env.DataDir != "" {
		cfg.DataDir = env.DataDir
	}
	if f.DataDir != "" {
		cfg.DataDir = f.DataDir
	}

	if err := EnsureDataDirs(cfg); err != nil {
		return nil, fmt.Errorf("ensuring data dirs: %w", err)
	}

	configPath := f.Config
	if configPath == "" {
		configPath = cfg.ConfigFile()
	}
	fileValues, err := LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config file: %w", err)
	}
	if err := ApplyFileConfig(cfg, fileValues); err != nil {
		return nil, fmt.Errorf("applying config file: %w", err)
	}

	ApplyEnv(cfg, env)
	ApplyFlags(cfg, f)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// EnsureDataDirs creates the data directory structure and a default config
// file if they don't already exist. Safe to call on every start.
func EnsureDataDirs(cfg *Config) error {
	dirs := []string{
		cfg.DataDir,
		cfg.NetworkDataDir(),
		cfg.KeystoreDir(),
		cfg.StateDir(),
		cfg.LogsDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	configPath := cfg.ConfigFile()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := WriteDefaultConfig(configPath, cfg.Network); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}
	}
	return nil
}
