package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/spf13/cobra"

	"github.com/Klingon-tech/klingnet-walletcore/internal/log"
	"github.com/Klingon-tech/klingnet-walletcore/internal/wallet"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/settings"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

var (
	votePlan          string
	voteIndex         uint8
	voteOptions       uint8
	voteChoice        uint8
	voteEncryptionKey string
	voteOut           string

	validUntilFlag string
	convertOutDir  string
)

// walletClock drives every date the CLI derives from wall-clock time.
var walletClock clock.Clock = clock.NewDefaultClock()

// parseValidUntil reads "epoch.slot". Empty means the latest date the
// settings accept at c's current time.
func parseValidUntil(c clock.Clock, s *settings.Settings, text string) (types.BlockDate, error) {
	if text == "" {
		return s.MaxExpirationDate(c.Now())
	}
	epoch, slot, ok := strings.Cut(text, ".")
	if !ok {
		return types.BlockDate{}, fmt.Errorf("--valid-until %q: expected epoch.slot", text)
	}
	e, err := strconv.ParseUint(epoch, 10, 32)
	if err != nil {
		return types.BlockDate{}, fmt.Errorf("--valid-until epoch: %w", err)
	}
	sl, err := strconv.ParseUint(slot, 10, 32)
	if err != nil {
		return types.BlockDate{}, fmt.Errorf("--valid-until slot: %w", err)
	}
	return types.BlockDate{Epoch: uint32(e), Slot: uint32(sl)}, nil
}

var walletVoteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Sign a vote-cast fragment for a proposal",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		plan, err := types.HexToHash(votePlan)
		if err != nil {
			return fmt.Errorf("--plan: %w", err)
		}
		var p *wallet.Proposal
		if voteEncryptionKey != "" {
			key, err := wallet.ParseVoteEncryptionKey(voteEncryptionKey)
			if err != nil {
				return err
			}
			p, err = wallet.NewPrivateProposal(plan, voteIndex, voteOptions, key)
			if err != nil {
				return err
			}
		} else if p, err = wallet.NewPublicProposal(plan, voteIndex, voteOptions); err != nil {
			return err
		}

		s, err := unlock(walletName)
		if err != nil {
			return err
		}
		defer s.Close()
		st, err := s.requireSettings()
		if err != nil {
			return err
		}
		validUntil, err := parseValidUntil(walletClock, st, validUntilFlag)
		if err != nil {
			return err
		}

		frag, err := s.wallet.Vote(st, p, voteChoice, validUntil)
		if err != nil {
			return err
		}
		if err := s.save(); err != nil {
			return err
		}
		pending := s.wallet.PendingTransactions()
		log.CLI.Info().Str("id", pending[len(pending)-1].String()).Msg("Vote signed")

		if voteOut == "" {
			fmt.Println(hex.EncodeToString(frag))
			return nil
		}
		if err := os.WriteFile(voteOut, frag, 0644); err != nil {
			return fmt.Errorf("writing fragment: %w", err)
		}
		fmt.Printf("Vote fragment written to %s\n", voteOut)
		return nil
	},
}

var walletConvertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Sign transactions moving UTxO and legacy funds to the account",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if convertOutDir == "" {
			return errors.New("--out-dir is required")
		}
		s, err := unlock(walletName)
		if err != nil {
			return err
		}
		defer s.Close()
		st, err := s.requireSettings()
		if err != nil {
			return err
		}
		validUntil, err := parseValidUntil(walletClock, st, validUntilFlag)
		if err != nil {
			return err
		}

		conv, err := s.wallet.Convert(st, validUntil)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(convertOutDir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
		for i, id := range conv.IDs() {
			raw, err := conv.Transaction(i)
			if err != nil {
				return err
			}
			path := filepath.Join(convertOutDir, fmt.Sprintf("%03d-%s.bin", i, id))
			if err := os.WriteFile(path, raw, 0644); err != nil {
				return fmt.Errorf("writing transaction: %w", err)
			}
		}
		if err := s.save(); err != nil {
			return err
		}

		fmt.Printf("%d transaction(s) written to %s\n", conv.Len(), convertOutDir)
		if ignored := conv.Ignored(); len(ignored) > 0 {
			fmt.Printf("%d input(s) worth %s left unconverted (value does not cover the fee)\n",
				len(ignored), conv.IgnoredValue())
		}
		return nil
	},
}

func init() {
	walletVoteCmd.Flags().StringVar(&votePlan, "plan", "", "Vote plan id (hex)")
	walletVoteCmd.Flags().Uint8Var(&voteIndex, "index", 0, "Proposal index within the plan")
	walletVoteCmd.Flags().Uint8Var(&voteOptions, "options", 0, "Number of options of the proposal")
	walletVoteCmd.Flags().Uint8Var(&voteChoice, "choice", 0, "Chosen option")
	walletVoteCmd.Flags().StringVar(&voteEncryptionKey, "encryption-key", "", "Election key for private votes (bech32 or hex)")
	walletVoteCmd.Flags().StringVar(&voteOut, "out", "", "Write the fragment to a file instead of stdout")
	walletVoteCmd.MarkFlagRequired("plan")
	walletVoteCmd.MarkFlagRequired("options")

	walletConvertCmd.Flags().StringVar(&convertOutDir, "out-dir", "", "Directory for the signed transactions")

	for _, c := range []*cobra.Command{walletVoteCmd, walletConvertCmd} {
		c.Flags().StringVar(&validUntilFlag, "valid-until", "", "Validity limit as epoch.slot (default: the latest allowed)")
	}
}
