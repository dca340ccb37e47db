package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/klingnet-walletcore/config"
	"github.com/Klingon-tech/klingnet-walletcore/internal/cipher"
	"github.com/Klingon-tech/klingnet-walletcore/internal/keystore"
	"github.com/Klingon-tech/klingnet-walletcore/internal/log"
	"github.com/Klingon-tech/klingnet-walletcore/internal/wallet"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
}

var (
	walletName     string
	walletWords    int
	walletMnemonic string
)

var walletCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a wallet from a fresh mnemonic",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		mnemonic, err := wallet.GenerateMnemonic(walletWords)
		if err != nil {
			return err
		}
		fmt.Println("Mnemonic (write this down!):")
		fmt.Printf("  %s\n\n", mnemonic)
		return storeWallet(mnemonic)
	},
}

var walletImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a wallet from an existing mnemonic",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		mnemonic := walletMnemonic
		if mnemonic == "" {
			fmt.Print("Mnemonic: ")
			line, err := readLine()
			if err != nil {
				return err
			}
			mnemonic = line
		}
		mnemonic = wallet.NormalizeMnemonic(mnemonic)
		if err := wallet.ValidateMnemonic(mnemonic); err != nil {
			var me *wallet.MnemonicError
			if errors.As(err, &me) {
				for _, w := range me.Words {
					if w.Suggestion != "" {
						fmt.Printf("  word %d %q: did you mean %q?\n", w.Index+1, w.Word, w.Suggestion)
					}
				}
			}
			return err
		}
		return storeWallet(mnemonic)
	},
}

func storeWallet(mnemonic string) error {
	if walletName == "" {
		return errors.New("--name is required")
	}
	ks, err := openKeystore()
	if err != nil {
		return err
	}
	password, err := readNewPassword()
	if err != nil {
		return err
	}
	defer clear(password)

	meta := keystore.Metadata{
		CreatedAt: walletClock.Now().UTC(),
		Network:   string(cfg.Network),
		Account:   cfg.Wallet.Account,
		UTXOKeys:  cfg.Wallet.UTXOKeys,
	}
	if err := ks.Create(walletName, mnemonic, password, meta, cipher.DefaultParams()); err != nil {
		return err
	}

	w, err := wallet.Recover(mnemonic, nil, wallet.WithUTXOKeys(meta.UTXOKeys), wallet.WithAccountIndex(meta.Account), wallet.WithClock(walletClock))
	if err != nil {
		return err
	}
	fmt.Printf("Wallet %q created.\n", walletName)
	fmt.Printf("  Account address: %s\n", w.AccountAddress(discrimination()))
	return nil
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets in the keystore",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ks, err := openKeystore()
		if err != nil {
			return err
		}
		names, err := ks.List()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No wallets found.")
			return nil
		}
		for _, name := range names {
			meta, err := ks.Info(name)
			if err != nil {
				log.CLI.Warn().Err(err).Str("wallet", name).Msg("Unreadable wallet file")
				continue
			}
			fmt.Printf("%-20s %-8s account %-3d keys %-4d created %s\n",
				name, meta.Network, meta.Account, meta.UTXOKeys, meta.CreatedAt.Format(time.DateOnly))
		}
		return nil
	},
}

var walletDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a wallet and its saved state",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		s, err := unlock(walletName)
		if err != nil {
			return err
		}
		id := s.wallet.ID()
		err = s.store.DeleteState(id)
		s.Close()
		if err != nil {
			return err
		}

		ks, err := openKeystore()
		if err != nil {
			return err
		}
		if err := ks.Delete(walletName); err != nil {
			return err
		}
		fmt.Printf("Wallet %q deleted.\n", walletName)
		return nil
	},
}

func init() {
	walletCmd.PersistentFlags().StringVar(&walletName, "name", "", "Wallet name")
	walletCreateCmd.Flags().IntVar(&walletWords, "words", 24, "Mnemonic length (12, 15, 18, 21 or 24)")
	walletImportCmd.Flags().StringVar(&walletMnemonic, "mnemonic", "", "Mnemonic (prompted when omitted)")

	walletCmd.AddCommand(
		walletCreateCmd,
		walletImportCmd,
		walletListCmd,
		walletDeleteCmd,
		walletAddressCmd,
		walletWatchCmd,
		walletFundsCmd,
		walletBalanceCmd,
		walletSetStateCmd,
		walletConfirmCmd,
		walletVoteCmd,
		walletConvertCmd,
	)
}

// discrimination maps the configured network to an address discrimination.
func discrimination() types.Discrimination {
	if cfg.Network == config.Testnet {
		return types.Test
	}
	return types.Production
}
