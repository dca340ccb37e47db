package types

import "fmt"

// BlockDate identifies a slot within an epoch.
type BlockDate struct {
	Epoch uint32 `json:"epoch" yaml:"epoch"`
	Slot  uint32 `json:"slot" yaml:"slot"`
}

// Before reports whether d is strictly earlier than o.
func (d BlockDate) Before(o BlockDate) bool {
	if d.Epoch != o.Epoch {
		return d.Epoch < o.Epoch
	}
	return d.Slot < o.Slot
}

// After reports whether d is strictly later than o.
func (d BlockDate) After(o BlockDate) bool {
	return o.Before(d)
}

// String returns "epoch.slot".
func (d BlockDate) String() string {
	return fmt.Sprintf("%d.%d", d.Epoch, d.Slot)
}
