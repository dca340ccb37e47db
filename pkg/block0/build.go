package block0

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/Klingon-tech/klingnet-walletcore/config"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/fragment"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/tx"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

// maxDeclarations bounds the entries per legacy or account state fragment.
const maxDeclarations = 0xffff

// Build creates block0 from a genesis description. Allocations are sorted
// by address so the same description always yields the same block0 hash.
func Build(g *config.Genesis) (*Block0, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}
	disc, _ := g.DiscriminationValue()

	frags := []*fragment.Fragment{fragment.NewInitial(InitialParams(g, disc))}

	outputs := make([]tx.Output, 0, len(g.Alloc))
	for addrStr, v := range g.Alloc {
		addr, _ := types.ParseAddress(addrStr)
		outputs = append(outputs, tx.Output{Address: addr, Value: types.Value(v)})
	}
	slices.SortFunc(outputs, func(a, b tx.Output) int { return a.Address.Compare(b.Address) })
	for chunk := range slices.Chunk(outputs, tx.MaxOutputs) {
		frags = append(frags, fragment.NewTransaction(&tx.Transaction{Outputs: chunk}))
	}

	legacy := make([]fragment.LegacyEntry, 0, len(g.Legacy))
	for addrStr, v := range g.Legacy {
		addr, _ := types.ParseLegacyAddress(addrStr)
		legacy = append(legacy, fragment.LegacyEntry{Address: addr, Value: types.Value(v)})
	}
	slices.SortFunc(legacy, func(a, b fragment.LegacyEntry) int { return bytes.Compare(a.Address[:], b.Address[:]) })
	for chunk := range slices.Chunk(legacy, maxDeclarations) {
		frags = append(frags, fragment.NewOldUtxoDeclaration(chunk))
	}

	accounts := make([]fragment.AccountEntry, 0, len(g.Counters))
	for addrStr, c := range g.Counters {
		addr, _ := types.ParseAddress(addrStr)
		accounts = append(accounts, fragment.AccountEntry{Account: addr.Key, Counter: c})
	}
	slices.SortFunc(accounts, func(a, b fragment.AccountEntry) int { return bytes.Compare(a.Account[:], b.Account[:]) })
	for chunk := range slices.Chunk(accounts, maxDeclarations) {
		frags = append(frags, fragment.NewAccountState(chunk))
	}

	return New(g.Block0Date, frags)
}

// InitialParams returns the initial fragment parameters for g.
func InitialParams(g *config.Genesis, disc types.Discrimination) []fragment.ConfigParam {
	return []fragment.ConfigParam{
		fragment.UintParam(fragment.TagDiscrimination, uint64(disc)),
		fragment.UintParam(fragment.TagBlock0Date, g.Block0Date),
		fragment.UintParam(fragment.TagSlotDuration, uint64(g.SlotDuration)),
		fragment.UintParam(fragment.TagSlotsPerEpoch, uint64(g.SlotsPerEpoch)),
		fragment.UintParam(fragment.TagEpochStart, uint64(g.EpochStart)),
		fragment.UintParam(fragment.TagSlotStart, g.SlotStart),
		fragment.UintParam(fragment.TagTxMaxExpiryEpochs, uint64(g.TxMaxExpiryEpochs)),
		fragment.UintParam(fragment.TagFeeConstant, uint64(g.Fees.Constant)),
		fragment.UintParam(fragment.TagFeeCoefficient, uint64(g.Fees.Coefficient)),
		fragment.UintParam(fragment.TagFeeCertificate, uint64(g.Fees.Certificate)),
		fragment.UintParam(fragment.TagFeeVoteCast, uint64(g.Fees.PerVote.VoteCast)),
		fragment.UintParam(fragment.TagFeeVotePlan, uint64(g.Fees.PerVote.VotePlan)),
		fragment.UintParam(fragment.TagFeePoolRegistration, uint64(g.Fees.PerCertificate.PoolRegistration)),
		fragment.UintParam(fragment.TagFeeStakeDelegation, uint64(g.Fees.PerCertificate.StakeDelegation)),
		fragment.UintParam(fragment.TagFeeOwnerStakeDelegation, uint64(g.Fees.PerCertificate.OwnerStakeDelegation)),
	}
}

// BuildBytes is Build followed by Encode.
func BuildBytes(g *config.Genesis) ([]byte, error) {
	b, err := Build(g)
	if err != nil {
		return nil, err
	}
	return b.Encode()
}
