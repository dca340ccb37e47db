package types

import (
	"bytes"
	"cmp"
	"fmt"
)

// Outpoint references a specific output of a fragment.
type Outpoint struct {
	FragmentID FragmentID `json:"fragment_id"`
	Index      uint8      `json:"index"`
}

// IsZero returns true if the outpoint has a zero fragment ID and zero index.
func (o Outpoint) IsZero() bool {
	return o.FragmentID.IsZero() && o.Index == 0
}

// String returns "fragment:index" in hex.
func (o Outpoint) String() string {
	return fmt.Sprintf("%s:%d", o.FragmentID.String(), o.Index)
}

// Compare orders outpoints by fragment ID bytes, then by index.
func (o Outpoint) Compare(p Outpoint) int {
	if c := bytes.Compare(o.FragmentID[:], p.FragmentID[:]); c != 0 {
		return c
	}
	return cmp.Compare(o.Index, p.Index)
}
