package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Klingon-tech/klingnet-walletcore/config"
	"github.com/Klingon-tech/klingnet-walletcore/internal/log"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/block0"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/fragment"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/settings"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

var block0Cmd = &cobra.Command{
	Use:   "block0",
	Short: "Build and inspect block0 files",
}

var (
	genesisPath string
	block0Out   string
)

var block0GenesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Write the default genesis description for the network",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if genesisPath == "" {
			return fmt.Errorf("--genesis is required")
		}
		if err := config.DefaultGenesis(cfg.Network).Save(genesisPath); err != nil {
			return err
		}
		fmt.Printf("Genesis written to %s\n", genesisPath)
		return nil
	},
}

var block0BuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Encode a genesis description into block0",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if genesisPath == "" || block0Out == "" {
			return fmt.Errorf("--genesis and --out are required")
		}
		g, err := config.LoadGenesis(genesisPath)
		if err != nil {
			return err
		}
		b, err := block0.Build(g)
		if err != nil {
			return err
		}
		raw, err := b.Encode()
		if err != nil {
			return err
		}
		if err := os.WriteFile(block0Out, raw, 0644); err != nil {
			return fmt.Errorf("writing block0: %w", err)
		}
		log.CLI.Info().Str("hash", b.Hash().String()).Int("bytes", len(raw)).Msg("Block0 built")
		fmt.Printf("Block0 hash: %s\n", b.Hash())
		return nil
	},
}

var block0InspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Print the parameters and contents of a block0 file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading block0: %w", err)
		}
		b, err := block0.Decode(raw)
		if err != nil {
			return err
		}
		s, err := settings.FromBlock(b)
		if err != nil {
			return err
		}
		printBlock0(b, s)
		return nil
	},
}

func printBlock0(b *block0.Block0, s *settings.Settings) {
	era := s.TimeEra()
	fees := s.Fees()
	fmt.Printf("Hash:              %s\n", b.Hash())
	fmt.Printf("Version:           %d\n", b.Header.Version)
	fmt.Printf("Discrimination:    %s\n", s.Discrimination())
	fmt.Printf("Block0 date:       %d\n", s.Block0Date())
	fmt.Printf("Slot duration:     %ds\n", s.SlotDuration())
	fmt.Printf("Slots per epoch:   %d\n", era.SlotsPerEpoch)
	fmt.Printf("Max expiry epochs: %d\n", s.TxMaxExpiryEpochs())
	fmt.Printf("Fees:              constant %d, coefficient %d, certificate %d\n",
		fees.Constant, fees.Coefficient, fees.Certificate)

	kinds := make(map[fragment.Kind]int)
	var outputs, legacy types.Value
	for _, f := range b.Fragments {
		kinds[f.Kind]++
		switch f.Kind {
		case fragment.KindTransaction:
			for _, o := range f.Tx.Outputs {
				outputs = outputs.SaturatingAdd(o.Value)
			}
		case fragment.KindOldUtxoDeclaration:
			for _, e := range f.Legacy {
				legacy = legacy.SaturatingAdd(e.Value)
			}
		}
	}
	fmt.Printf("Fragments:         %d\n", len(b.Fragments))
	for k := fragment.KindInitial; k <= fragment.KindVoteCast; k++ {
		if n := kinds[k]; n > 0 {
			fmt.Printf("  %-22s %d\n", k.String()+":", n)
		}
	}
	fmt.Printf("Output value:      %s\n", outputs)
	fmt.Printf("Legacy value:      %s\n", legacy)
}

func init() {
	block0GenesisCmd.Flags().StringVar(&genesisPath, "genesis", "", "Genesis file to write (.yaml or .json)")
	block0BuildCmd.Flags().StringVar(&genesisPath, "genesis", "", "Genesis file (.yaml or .json)")
	block0BuildCmd.Flags().StringVar(&block0Out, "out", "", "Output block0 file")
	block0Cmd.AddCommand(block0GenesisCmd, block0BuildCmd, block0InspectCmd)
}
