package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

func TestDefault(t *testing.T) {
	cfg := Default(Testnet)
	if cfg.Network != Testnet {
		t.Errorf("network = %s, want testnet", cfg.Network)
	}
	if cfg.Wallet.UTXOKeys != DefaultUTXOKeys {
		t.Errorf("utxo keys = %d, want %d", cfg.Wallet.UTXOKeys, DefaultUTXOKeys)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
	if Default("anything").Network != Mainnet {
		t.Error("unknown network should fall back to mainnet")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"ok", func(c *Config) {}, false},
		{"uppercase level", func(c *Config) { c.Log.Level = "DEBUG" }, false},
		{"bad network", func(c *Config) { c.Network = "devnet" }, true},
		{"empty datadir", func(c *Config) { c.DataDir = "" }, true},
		{"negative keys", func(c *Config) { c.Wallet.UTXOKeys = -1 }, true},
		{"too many keys", func(c *Config) { c.Wallet.UTXOKeys = MaxUTXOKeys + 1 }, true},
		{"hardened account", func(c *Config) { c.Wallet.Account = 1 << 31 }, true},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultMainnet()
			tt.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
	if err := Validate(nil); err == nil {
		t.Error("Validate(nil) should fail")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walletcore.conf")
	content := `# comment
network = testnet
wallet.utxokeys = 5
wallet.account = 2
log.level = "debug"
log.json = yes
unknown.key = ignored
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	cfg := DefaultMainnet()
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig() error: %v", err)
	}
	if cfg.Network != Testnet {
		t.Errorf("network = %s, want testnet", cfg.Network)
	}
	if cfg.Wallet.UTXOKeys != 5 || cfg.Wallet.Account != 2 {
		t.Errorf("wallet = %+v, want 5 keys account 2", cfg.Wallet)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Errorf("log = %+v, want debug json", cfg.Log)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	values, err := LoadFile(filepath.Join(dir, "missing.conf"))
	if err != nil || len(values) != 0 {
		t.Errorf("LoadFile(missing) = %v, %v; want empty map", values, err)
	}

	bad := filepath.Join(dir, "bad.conf")
	os.WriteFile(bad, []byte("just words\n"), 0600)
	if _, err := LoadFile(bad); err == nil {
		t.Error("LoadFile() should reject a line without '='")
	}

	cfg := DefaultMainnet()
	if err := ApplyFileConfig(cfg, map[string]string{"wallet.utxokeys": "many"}); err == nil {
		t.Error("ApplyFileConfig() should reject a non-numeric key count")
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("WALLETCORE_NETWORK", "testnet")
	t.Setenv("WALLETCORE_UTXO_KEYS", "7")
	t.Setenv("WALLETCORE_LOG_JSON", "true")

	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv() error: %v", err)
	}
	if env.Account != nil {
		t.Errorf("account = %d, want unset", *env.Account)
	}

	cfg := DefaultMainnet()
	cfg.Wallet.Account = 4
	ApplyEnv(cfg, env)
	if cfg.Network != Testnet {
		t.Errorf("network = %s, want testnet", cfg.Network)
	}
	if cfg.Wallet.UTXOKeys != 7 {
		t.Errorf("utxo keys = %d, want 7", cfg.Wallet.UTXOKeys)
	}
	if cfg.Wallet.Account != 4 {
		t.Errorf("account = %d, want 4 (unchanged)", cfg.Wallet.Account)
	}
	if !cfg.Log.JSON {
		t.Error("log json should be set from env")
	}
}

func TestEnv_NetworkCase(t *testing.T) {
	t.Setenv("WALLETCORE_NETWORK", "Testnet")

	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv() error: %v", err)
	}
	cfg := DefaultMainnet()
	ApplyEnv(cfg, env)
	if cfg.Network != Testnet {
		t.Errorf("network = %s, want testnet", cfg.Network)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestEnv_Invalid(t *testing.T) {
	t.Setenv("WALLETCORE_UTXO_KEYS", "lots")
	if _, err := LoadEnv(); err == nil {
		t.Error("LoadEnv() should reject a non-numeric key count")
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WALLETCORE_UTXO_KEYS", "7")
	t.Setenv("WALLETCORE_LOG_LEVEL", "warn")

	// Seed the config file before Load creates the default one.
	cfg := Default(Testnet)
	cfg.DataDir = dir
	if err := os.WriteFile(cfg.ConfigFile(), []byte("wallet.utxokeys = 3\nwallet.account = 1\nlog.level = debug\n"), 0600); err != nil {
		t.Fatal(err)
	}

	var f Flags
	cmd := &cobra.Command{Use: "test", Run: func(*cobra.Command, []string) {}}
	f.Register(cmd)
	cmd.SetArgs([]string{"--testnet", "--datadir", dir, "--utxo-keys", "9"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	got, err := Load(&f)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Network != Testnet {
		t.Errorf("network = %s, want testnet", got.Network)
	}
	if got.Wallet.UTXOKeys != 9 {
		t.Errorf("utxo keys = %d, want 9 (flag)", got.Wallet.UTXOKeys)
	}
	if got.Wallet.Account != 1 {
		t.Errorf("account = %d, want 1 (file)", got.Wallet.Account)
	}
	if got.Log.Level != "warn" {
		t.Errorf("log level = %s, want warn (env)", got.Log.Level)
	}
	for _, d := range []string{got.KeystoreDir(), got.StateDir(), got.LogsDir()} {
		if _, err := os.Stat(d); err != nil {
			t.Errorf("directory %s not created: %v", d, err)
		}
	}
}

func TestEnsureDataDirs_WritesDefaultConfig(t *testing.T) {
	cfg := Default(Testnet)
	cfg.DataDir = t.TempDir()
	if err := EnsureDataDirs(cfg); err != nil {
		t.Fatalf("EnsureDataDirs() error: %v", err)
	}
	values, err := LoadFile(cfg.ConfigFile())
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if values["network"] != "testnet" {
		t.Errorf("network = %q, want testnet", values["network"])
	}
	if values["wallet.utxokeys"] != "20" {
		t.Errorf("wallet.utxokeys = %q, want 20", values["wallet.utxokeys"])
	}
}
