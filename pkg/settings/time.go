package settings

import (
	"fmt"
	"time"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
	"github.com/lightningnetwork/lnd/clock"
)

// BlockDateAt converts a wall-clock time into the block date of the slot
// containing it.
func (s *Settings) BlockDateAt(t time.Time) (types.BlockDate, error) {
	unix := t.Unix()
	if unix < 0 || uint64(unix) < s.init.Block0Date {
		return types.BlockDate{}, fmt.Errorf("%w: %s", ErrBeforeBlock0, t.UTC().Format(time.RFC3339))
	}
	slot := (uint64(unix) - s.init.Block0Date) / uint64(s.init.SlotDuration)

	era := s.init.TimeEra
	if slot < era.SlotStart {
		return types.BlockDate{}, fmt.Errorf("%w: slot %d precedes time era start %d", ErrBeforeBlock0, slot, era.SlotStart)
	}
	rel := slot - era.SlotStart
	epoch := uint64(era.EpochStart) + rel/uint64(era.SlotsPerEpoch)
	if epoch > uint64(^uint32(0)) {
		return types.BlockDate{}, fmt.Errorf("epoch %d out of range", epoch)
	}
	return types.BlockDate{
		Epoch: uint32(epoch),
		Slot:  uint32(rel % uint64(era.SlotsPerEpoch)),
	}, nil
}

// Now returns the current block date according to c.
func (s *Settings) Now(c clock.Clock) (types.BlockDate, error) {
	return s.BlockDateAt(c.Now())
}

// MaxExpirationDate returns the latest valid_until accepted at time t: the
// last slot of the epoch TxMaxExpiryEpochs after the current one.
func (s *Settings) MaxExpirationDate(t time.Time) (types.BlockDate, error) {
	cur, err := s.BlockDateAt(t)
	if err != nil {
		return types.BlockDate{}, err
	}
	epoch := uint64(cur.Epoch) + uint64(s.init.TxMaxExpiryEpochs)
	if epoch > uint64(^uint32(0)) {
		epoch = uint64(^uint32(0))
	}
	return types.BlockDate{Epoch: uint32(epoch), Slot: s.init.TimeEra.SlotsPerEpoch - 1}, nil
}

// ValidateValidUntil checks that validUntil is neither already past nor
// beyond MaxExpirationDate at time t.
func (s *Settings) ValidateValidUntil(t time.Time, validUntil types.BlockDate) error {
	cur, err := s.BlockDateAt(t)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValidityDate, err)
	}
	if validUntil.Before(cur) {
		return fmt.Errorf("%w: %s is before current date %s", ErrInvalidValidityDate, validUntil, cur)
	}
	if validUntil.Slot >= s.init.TimeEra.SlotsPerEpoch {
		return fmt.Errorf("%w: slot %d beyond epoch length %d", ErrInvalidValidityDate, validUntil.Slot, s.init.TimeEra.SlotsPerEpoch)
	}
	limit, _ := s.MaxExpirationDate(t)
	if validUntil.After(limit) {
		return fmt.Errorf("%w: %s is after max expiration %s", ErrInvalidValidityDate, validUntil, limit)
	}
	return nil
}
