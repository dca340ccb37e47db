package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read by LoadEnv.
const EnvPrefix = "WALLETCORE"

// Env holds configuration read from WALLETCORE_* environment variables.
// Nil pointers and empty strings mean "not set".
type Env struct {
	Network  string
	DataDir  string `split_words:"true"`
	UTXOKeys *int   `split_words:"true"`
	Account  *uint32
	LogLevel string `split_words:"true"`
	LogFile  string `split_words:"true"`
	LogJSON  *bool  `split_words:"true"`
}

// LoadEnv reads the WALLETCORE_* environment.
func LoadEnv() (*Env, error) {
	env := &Env{}
	if err := envconfig.Process(EnvPrefix, env); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return env, nil
}

// ApplyEnv applies set environment values to cfg.
func ApplyEnv(cfg *Config, env *Env) {
	if env.Network != "" {
		cfg.Network = NetworkType(strings.ToLower(env.Network))
	}
	if env.DataDir != "" {
		cfg.DataDir = env.DataDir
	}
	if env.UTXOKeys != nil {
		cfg.Wallet.UTXOKeys = *env.UTXOKeys
	}
	if env.Account != nil {
		cfg.Wallet.Account = *env.Account
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFile != "" {
		cfg.Log.File = env.LogFile
	}
	if env.LogJSON != nil {
		cfg.Log.JSON = *env.LogJSON
	}
}
