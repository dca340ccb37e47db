// walletcore-cli drives the wallet core from the command line: it builds and
// inspects block0 files, keeps encrypted wallets in a keystore, and writes
// signed vote and conversion fragments for a host to submit.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/klingnet-walletcore/config"
	"github.com/Klingon-tech/klingnet-walletcore/internal/log"
)

var (
	flags config.Flags

	// cfg is loaded in PersistentPreRunE.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "walletcore-cli",
	Short: "Klingnet voting wallet tools",
	Long: `walletcore-cli manages Klingnet voting wallets offline.

It recovers wallets from BIP-39 mnemonics, discovers their funds in block0,
and produces signed vote-cast and conversion fragments. Nothing is sent to
the network: fragments are written out for another tool to submit.

Example:
  walletcore-cli --testnet wallet create --name main
  walletcore-cli --testnet wallet funds --name main --block0 block0.bin
  walletcore-cli --testnet wallet vote --name main --plan <hex> --options 3 --choice 1`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		if cfg, err = config.Load(&flags); err != nil {
			return err
		}
		return log.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File)
	},
}

func init() {
	flags.Register(rootCmd)
	rootCmd.AddCommand(block0Cmd, walletCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
