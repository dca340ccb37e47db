package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/tx"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Genesis description (input to block0 construction)
// =============================================================================

// Denomination constants.
// 1 coin = 10^6 base units. All on-chain values are in base units.
const (
	Decimals  = 6
	Coin      = 1_000_000
	MilliCoin = 1_000
)

// Genesis describes the chain parameters and initial funds that get
// encoded into block0.
type Genesis struct {
	// Chain identity (informational, not encoded).
	ChainName string `json:"chain_name" yaml:"chain_name"`

	// Time
	Discrimination    string `json:"discrimination" yaml:"discrimination"` // production or test
	Block0Date        uint64 `json:"block0_date" yaml:"block0_date"`       // Unix seconds
	SlotDuration      uint8  `json:"slot_duration" yaml:"slot_duration"`   // Seconds per slot
	SlotsPerEpoch     uint32 `json:"slots_per_epoch" yaml:"slots_per_epoch"`
	EpochStart        uint32 `json:"epoch_start" yaml:"epoch_start"`
	SlotStart         uint64 `json:"slot_start" yaml:"slot_start"`
	TxMaxExpiryEpochs uint8  `json:"tx_max_expiry_epochs" yaml:"tx_max_expiry_epochs"`

	// Fees
	Fees tx.LinearFee `json:"fees" yaml:"fees"`

	// Initial allocations (bech32 single or account address -> value).
	Alloc map[string]uint64 `json:"alloc" yaml:"alloc"`

	// Legacy declarations (bech32 or hex legacy address -> value).
	Legacy map[string]uint64 `json:"legacy,omitempty" yaml:"legacy,omitempty"`

	// Account spending counters (bech32 account address -> counter).
	Counters map[string]uint32 `json:"counters,omitempty" yaml:"counters,omitempty"`
}

// DefaultGenesis returns a genesis with the stock time and fee parameters
// and no allocations.
func DefaultGenesis(network NetworkType) *Genesis {
	g := &Genesis{
		ChainName:         "Klingnet Voting Mainnet",
		Discrimination:    types.Production.String(),
		Block0Date:        1770734103, // 2026-02-10
		SlotDuration:      2,
		SlotsPerEpoch:     43_200,
		TxMaxExpiryEpochs: 2,
		Fees: tx.LinearFee{
			Constant:    155_381,
			Coefficient: 43_946,
			Certificate: 0,
			PerVote:     tx.PerVoteCertificateFees{VoteCast: 0, VotePlan: 100 * Coin},
		},
		Alloc: map[string]uint64{},
	}
	if network == Testnet {
		g.ChainName = "Klingnet Voting Testnet"
		g.Discrimination = types.Test.String()
		g.Fees.Constant = 10
		g.Fees.Coefficient = 1
	}
	return g
}

// DiscriminationValue parses the Discrimination field.
func (g *Genesis) DiscriminationValue() (types.Discrimination, error) {
	return types.ParseDiscrimination(g.Discrimination)
}

// =============================================================================
// Genesis file I/O
// =============================================================================

// isYAML reports whether path should be read as YAML.
func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadGenesis loads a genesis description from a JSON or YAML file,
// chosen by extension.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genesis file: %w", err)
	}

	var g Genesis
	if isYAML(path) {
		err = yaml.Unmarshal(data, &g)
	} else {
		err = json.Unmarshal(data, &g)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing genesis file: %w", err)
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}
	return &g, nil
}

// Save writes the genesis description to a file, as YAML or JSON by extension.
func (g *Genesis) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(g)
	} else {
		data, err = json.MarshalIndent(g, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encoding genesis: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing genesis file: %w", err)
	}
	return nil
}

// Validate checks that the genesis description can be encoded.
func (g *Genesis) Validate() error {
	disc, err := g.DiscriminationValue()
	if err != nil {
		return err
	}
	if g.SlotDuration == 0 {
		return fmt.Errorf("slot_duration must be positive")
	}
	if g.SlotsPerEpoch == 0 {
		return fmt.Errorf("slots_per_epoch must be positive")
	}

	var total types.Value
	for addrStr, v := range g.Alloc {
		addr, err := types.ParseAddress(addrStr)
		if err != nil {
			return fmt.Errorf("invalid alloc address %q: %w", addrStr, err)
		}
		if addr.Discrimination != disc {
			return fmt.Errorf("alloc address %q is not a %s address", addrStr, disc)
		}
		if v == 0 {
			return fmt.Errorf("alloc for %q is zero", addrStr)
		}
		if total, err = total.Add(types.Value(v)); err != nil {
			return fmt.Errorf("genesis allocations overflow")
		}
	}
	for addrStr, v := range g.Legacy {
		if _, err := types.ParseLegacyAddress(addrStr); err != nil {
			return fmt.Errorf("invalid legacy address %q: %w", addrStr, err)
		}
		if v == 0 {
			return fmt.Errorf("legacy declaration for %q is zero", addrStr)
		}
		if total, err = total.Add(types.Value(v)); err != nil {
			return fmt.Errorf("genesis allocations overflow")
		}
	}
	for addrStr := range g.Counters {
		addr, err := types.ParseAddress(addrStr)
		if err != nil {
			return fmt.Errorf("invalid counter address %q: %w", addrStr, err)
		}
		if addr.Kind != types.KindAccount {
			return fmt.Errorf("counter address %q is not an account address", addrStr)
		}
	}
	return nil
}
