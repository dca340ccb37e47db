// Package settings holds the immutable chain parameters a wallet needs to
// build and sign fragments: fees, discrimination, block0 identity and the
// time era used to turn wall-clock time into block dates.
package settings

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/block0"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/fragment"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/tx"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

// Settings errors.
var (
	ErrInvalidSettings     = errors.New("invalid settings")
	ErrInvalidValidityDate = errors.New("invalid transaction validity date")
	ErrBeforeBlock0        = errors.New("time is before block0")
)

// TimeEra maps slots elapsed since block0 to epoch/slot dates.
type TimeEra struct {
	EpochStart    uint32 `json:"epoch_start" yaml:"epoch_start"`
	SlotStart     uint64 `json:"slot_start" yaml:"slot_start"`
	SlotsPerEpoch uint32 `json:"slots_per_epoch" yaml:"slots_per_epoch"`
}

// Init carries the fields for direct construction with New.
type Init struct {
	Fees              tx.LinearFee         `json:"fees"`
	Discrimination    types.Discrimination `json:"discrimination"`
	Block0Hash        types.Hash           `json:"block0_hash"`
	Block0Date        uint64               `json:"block0_date"`
	SlotDuration      uint8                `json:"slot_duration"`
	TimeEra           TimeEra              `json:"time_era"`
	TxMaxExpiryEpochs uint8                `json:"tx_max_expiry_epochs"`
}

// Settings is a read-only snapshot of chain parameters.
type Settings struct {
	init Init
}

// New validates in and returns settings built from it.
func New(in Init) (*Settings, error) {
	if in.Discrimination != types.Production && in.Discrimination != types.Test {
		return nil, fmt.Errorf("%w: unknown discrimination %d", ErrInvalidSettings, in.Discrimination)
	}
	if in.SlotDuration == 0 {
		return nil, fmt.Errorf("%w: slot duration must be positive", ErrInvalidSettings)
	}
	if in.TimeEra.SlotsPerEpoch == 0 {
		return nil, fmt.Errorf("%w: slots per epoch must be positive", ErrInvalidSettings)
	}
	return &Settings{init: in}, nil
}

// FromBlock0 parses raw block0 bytes and derives settings from them.
func FromBlock0(raw []byte) (*Settings, error) {
	b, err := block0.Decode(raw)
	if err != nil {
		return nil, err
	}
	return FromBlock(b)
}

// FromBlock derives settings from a decoded block0. Errors wrap
// block0.ErrMalformedBlock0.
func FromBlock(b *block0.Block0) (*Settings, error) {
	initial := b.Initial()
	if initial == nil || initial.Kind != fragment.KindInitial {
		return nil, fmt.Errorf("%w: missing initial fragment", block0.ErrMalformedBlock0)
	}

	in := Init{Block0Hash: b.Hash()}
	seen := make(map[fragment.ParamTag]bool, len(initial.Params))
	for _, p := range initial.Params {
		if seen[p.Tag] {
			return nil, fmt.Errorf("%w: duplicate config param %d", block0.ErrMalformedBlock0, p.Tag)
		}
		seen[p.Tag] = true

		v, err := p.Uint()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", block0.ErrMalformedBlock0, err)
		}
		switch p.Tag {
		case fragment.TagDiscrimination:
			if v > uint64(types.Test) {
				return nil, fmt.Errorf("%w: discrimination %d", block0.ErrMalformedBlock0, v)
			}
			in.Discrimination = types.Discrimination(v)
		case fragment.TagBlock0Date:
			in.Block0Date = v
		case fragment.TagSlotDuration:
			in.SlotDuration = uint8(v)
		case fragment.TagSlotsPerEpoch:
			in.TimeEra.SlotsPerEpoch = uint32(v)
		case fragment.TagEpochStart:
			in.TimeEra.EpochStart = uint32(v)
		case fragment.TagSlotStart:
			in.TimeEra.SlotStart = v
		case fragment.TagTxMaxExpiryEpochs:
			in.TxMaxExpiryEpochs = uint8(v)
		case fragment.TagFeeConstant:
			in.Fees.Constant = types.Value(v)
		case fragment.TagFeeCoefficient:
			in.Fees.Coefficient = types.Value(v)
		case fragment.TagFeeCertificate:
			in.Fees.Certificate = types.Value(v)
		case fragment.TagFeeVoteCast:
			in.Fees.PerVote.VoteCast = types.Value(v)
		case fragment.TagFeeVotePlan:
			in.Fees.PerVote.VotePlan = types.Value(v)
		case fragment.TagFeePoolRegistration:
			in.Fees.PerCertificate.PoolRegistration = types.Value(v)
		case fragment.TagFeeStakeDelegation:
			in.Fees.PerCertificate.StakeDelegation = types.Value(v)
		case fragment.TagFeeOwnerStakeDelegation:
			in.Fees.PerCertificate.OwnerStakeDelegation = types.Value(v)
		}
	}

	for _, tag := range []fragment.ParamTag{
		fragment.TagDiscrimination,
		fragment.TagBlock0Date,
		fragment.TagSlotDuration,
		fragment.TagSlotsPerEpoch,
	} {
		if !seen[tag] {
			return nil, fmt.Errorf("%w: missing config param %d", block0.ErrMalformedBlock0, tag)
		}
	}
	if in.Block0Date != b.Header.Timestamp {
		return nil, fmt.Errorf("%w: header timestamp %d does not match block0 date %d",
			block0.ErrMalformedBlock0, b.Header.Timestamp, in.Block0Date)
	}

	s, err := New(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", block0.ErrMalformedBlock0, err)
	}
	return s, nil
}

// Fees returns the fee policy.
func (s *Settings) Fees() tx.LinearFee { return s.init.Fees }

// Discrimination returns the address discrimination.
func (s *Settings) Discrimination() types.Discrimination { return s.init.Discrimination }

// Block0Hash returns the block0 hash. Witnesses bind to it.
func (s *Settings) Block0Hash() types.Hash { return s.init.Block0Hash }

// Block0Date returns the block0 time in Unix seconds.
func (s *Settings) Block0Date() uint64 { return s.init.Block0Date }

// SlotDuration returns the slot length in seconds.
func (s *Settings) SlotDuration() uint8 { return s.init.SlotDuration }

// TimeEra returns the time era.
func (s *Settings) TimeEra() TimeEra { return s.init.TimeEra }

// TxMaxExpiryEpochs returns how many epochs ahead a transaction may expire.
func (s *Settings) TxMaxExpiryEpochs() uint8 { return s.init.TxMaxExpiryEpochs }

// Init returns a copy of the construction fields.
func (s *Settings) Init() Init { return s.init }
