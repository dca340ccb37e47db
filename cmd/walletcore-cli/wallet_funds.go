package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/Klingon-tech/klingnet-walletcore/config"
	"github.com/Klingon-tech/klingnet-walletcore/internal/log"
	"github.com/Klingon-tech/klingnet-walletcore/internal/wallet"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

var (
	addressUTxO  bool
	addressQR    bool
	addressQRPNG string
	addressXPub  bool

	watchCount int

	fundsBlock0 string

	stateValue   uint64
	stateCounter uint32

	confirmID string
)

var walletAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Show the wallet's account address",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		s, err := unlock(walletName)
		if err != nil {
			return err
		}
		defer s.Close()

		disc := discrimination()
		acct := s.wallet.AccountAddress(disc).String()
		fmt.Printf("Account: %s\n", acct)

		if addressUTxO {
			for i := 0; i < s.wallet.UTxOKeyCount(); i++ {
				addr, err := s.wallet.UTxOAddress(disc, i)
				if err != nil {
					return err
				}
				legacy, _ := s.wallet.LegacyAddress(i)
				fmt.Printf("  [%d] %s  legacy %s\n", i, addr, legacy.Encode(disc))
			}
		}

		if addressXPub {
			xpub, err := s.wallet.ExtendedPublicKey()
			if err != nil {
				return err
			}
			fmt.Printf("UTxO xpub: %s\n", xpub)
		}

		if addressQR || addressQRPNG != "" {
			qr, err := qrcode.New(acct, qrcode.Medium)
			if err != nil {
				return fmt.Errorf("failed to create QR code: %w", err)
			}
			if addressQR {
				fmt.Println(qr.ToSmallString(false))
			}
			if addressQRPNG != "" {
				if err := qr.WriteFile(256, addressQRPNG); err != nil {
					return fmt.Errorf("failed to write QR code: %w", err)
				}
				fmt.Printf("QR code written to %s\n", addressQRPNG)
			}
		}
		return nil
	},
}

var walletWatchCmd = &cobra.Command{
	Use:   "watch <xpub>",
	Short: "List UTxO addresses from an extended public key",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if watchCount < 0 || watchCount > config.MaxUTXOKeys {
			return fmt.Errorf("--count must be between 0 and %d", config.MaxUTXOKeys)
		}
		addrs, err := wallet.WatchAddresses(args[0], discrimination(), watchCount)
		if err != nil {
			return err
		}
		for i, addr := range addrs {
			fmt.Printf("  [%d] %s\n", i, addr)
		}
		return nil
	},
}

var walletFundsCmd = &cobra.Command{
	Use:   "funds",
	Short: "Discover the wallet's funds in a block0 file",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if fundsBlock0 == "" {
			return errors.New("--block0 is required")
		}
		raw, err := os.ReadFile(fundsBlock0)
		if err != nil {
			return fmt.Errorf("reading block0: %w", err)
		}
		s, err := unlock(walletName)
		if err != nil {
			return err
		}
		defer s.Close()

		done := log.Benchmark("retrieve funds")
		st, err := s.wallet.RetrieveFunds(raw)
		done()
		if errors.Is(err, wallet.ErrNoFundsFound) {
			fmt.Println("No funds found for this wallet in block0.")
		} else if err != nil {
			return err
		}
		if st.Discrimination() != discrimination() {
			log.CLI.Warn().Str("block0", st.Discrimination().String()).Str("network", string(cfg.Network)).
				Msg("Block0 discrimination does not match the configured network")
		}
		s.settings = st
		if err := s.save(); err != nil {
			return err
		}
		printBalance(s)
		return nil
	},
}

var walletBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the saved wallet state",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		s, err := unlock(walletName)
		if err != nil {
			return err
		}
		defer s.Close()
		printBalance(s)
		return nil
	},
}

func printBalance(s *session) {
	w := s.wallet
	disc := discrimination()
	fmt.Printf("Wallet:           %s\n", s.name)
	fmt.Printf("Total value:      %s\n", w.TotalValue())
	fmt.Printf("Account value:    %s\n", w.AccountValue())
	fmt.Printf("Spending counter: %d\n", w.SpendingCounter())
	if s.settings != nil {
		fmt.Printf("Block0:           %s\n", s.settings.Block0Hash())
	}
	if utxos := w.UTxOs(); len(utxos) > 0 {
		fmt.Println("UTxOs:")
		for _, u := range utxos {
			addr, _ := w.UTxOAddress(disc, u.KeyIndex)
			fmt.Printf("  %s  %12s  %s\n", u.Outpoint, u.Value, addr)
		}
	}
	if legacy := w.LegacyFunds(); len(legacy) > 0 {
		fmt.Println("Legacy funds:")
		for _, l := range legacy {
			fmt.Printf("  %s  %12s\n", l.Address.Encode(disc), l.Value)
		}
	}
	if pending := w.PendingTransactions(); len(pending) > 0 {
		fmt.Println("Pending:")
		for _, id := range pending {
			fmt.Printf("  %s\n", id)
		}
	}
}

var walletSetStateCmd = &cobra.Command{
	Use:   "set-state",
	Short: "Overwrite the account value and spending counter",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		s, err := unlock(walletName)
		if err != nil {
			return err
		}
		defer s.Close()
		if _, err := s.requireSettings(); err != nil {
			return err
		}
		s.wallet.SetState(types.Value(stateValue), stateCounter)
		if err := s.save(); err != nil {
			return err
		}
		printBalance(s)
		return nil
	},
}

var walletConfirmCmd = &cobra.Command{
	Use:   "confirm",
	Short: "Drop a transaction from the pending list once it is on chain",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		id, err := types.HexToHash(confirmID)
		if err != nil {
			return fmt.Errorf("--id: %w", err)
		}
		s, err := unlock(walletName)
		if err != nil {
			return err
		}
		defer s.Close()
		s.wallet.ConfirmTransaction(id)
		return s.save()
	},
}

func init() {
	walletAddressCmd.Flags().BoolVar(&addressUTxO, "utxo", false, "Also list UTxO and legacy addresses")
	walletAddressCmd.Flags().BoolVar(&addressQR, "qr", false, "Print the account address as a QR code")
	walletAddressCmd.Flags().StringVar(&addressQRPNG, "qr-png", "", "Write the account address QR code to a PNG file")
	walletAddressCmd.Flags().BoolVar(&addressXPub, "xpub", false, "Print the UTxO chain extended public key")

	walletWatchCmd.Flags().IntVar(&watchCount, "count", wallet.DefaultUTXOKeys, "Number of addresses to derive")

	walletFundsCmd.Flags().StringVar(&fundsBlock0, "block0", "", "Block0 file")

	walletSetStateCmd.Flags().Uint64Var(&stateValue, "value", 0, "Account value")
	walletSetStateCmd.Flags().Uint32Var(&stateCounter, "counter", 0, "Spending counter")
	walletSetStateCmd.MarkFlagRequired("value")
	walletSetStateCmd.MarkFlagRequired("counter")

	walletConfirmCmd.Flags().StringVar(&confirmID, "id", "", "Fragment id (hex)")
}
