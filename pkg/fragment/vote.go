package fragment

import (
	"encoding/binary"
	"fmt"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/wire"
)

// PayloadType says whether a vote choice is in the clear or sealed.
type PayloadType uint8

const (
	PayloadPublic  PayloadType = 1
	PayloadPrivate PayloadType = 2
)

// String returns "public" or "private".
func (p PayloadType) String() string {
	switch p {
	case PayloadPublic:
		return "public"
	case PayloadPrivate:
		return "private"
	}
	return fmt.Sprintf("payload(%d)", uint8(p))
}

// VoteCast is the certificate carried in a vote-cast transaction payload.
// Format: vote_plan(32) | proposal_index(1) | payload_type(1) | choice(1)
// or, for private votes, len(2) | sealed choice.
type VoteCast struct {
	VotePlan      types.Hash
	ProposalIndex uint8
	PayloadType   PayloadType
	Choice        uint8
	Sealed        []byte
}

// Encode returns the payload bytes.
func (v *VoteCast) Encode() ([]byte, error) {
	buf := make([]byte, 0, 36+len(v.Sealed))
	buf = append(buf, v.VotePlan[:]...)
	buf = append(buf, v.ProposalIndex, byte(v.PayloadType))
	switch v.PayloadType {
	case PayloadPublic:
		buf = append(buf, v.Choice)
	case PayloadPrivate:
		if len(v.Sealed) == 0 || len(v.Sealed) > maxEntries {
			return nil, fmt.Errorf("private vote payload of %d bytes", len(v.Sealed))
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(v.Sealed)))
		buf = append(buf, v.Sealed...)
	default:
		return nil, fmt.Errorf("unknown vote payload type %d", v.PayloadType)
	}
	return buf, nil
}

// DecodeVoteCast parses a vote-cast payload.
func DecodeVoteCast(b []byte) (*VoteCast, error) {
	r := wire.NewReader(b)
	v := &VoteCast{}
	r.Copy(v.VotePlan[:])
	v.ProposalIndex = r.U8()
	v.PayloadType = PayloadType(r.U8())
	switch v.PayloadType {
	case PayloadPublic:
		v.Choice = r.U8()
	case PayloadPrivate:
		n := int(r.U16())
		v.Sealed = append([]byte(nil), r.Bytes(n)...)
	default:
		r.Fail(fmt.Errorf("unknown vote payload type %d", v.PayloadType))
	}
	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("%w: vote cast: %v", ErrMalformed, err)
	}
	return v, nil
}
