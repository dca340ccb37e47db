package fragment

import (
	"encoding/binary"
	"fmt"
)

// ParamTag identifies an initial chain parameter.
type ParamTag uint16

const (
	TagDiscrimination    ParamTag = 1
	TagBlock0Date        ParamTag = 2
	TagSlotDuration      ParamTag = 3
	TagSlotsPerEpoch     ParamTag = 4
	TagEpochStart        ParamTag = 5
	TagSlotStart         ParamTag = 6
	TagTxMaxExpiryEpochs ParamTag = 7
	TagFeeConstant       ParamTag = 8
	TagFeeCoefficient    ParamTag = 9
	TagFeeCertificate    ParamTag = 10
	TagFeeVoteCast       ParamTag = 11
	TagFeeVotePlan       ParamTag = 12

	TagFeePoolRegistration     ParamTag = 13
	TagFeeStakeDelegation      ParamTag = 14
	TagFeeOwnerStakeDelegation ParamTag = 15
)

// paramWidth is the encoded width of each known parameter.
var paramWidth = map[ParamTag]int{
	TagDiscrimination:    1,
	TagBlock0Date:        8,
	TagSlotDuration:      1,
	TagSlotsPerEpoch:     4,
	TagEpochStart:        4,
	TagSlotStart:         8,
	TagTxMaxExpiryEpochs: 1,
	TagFeeConstant:       8,
	TagFeeCoefficient:    8,
	TagFeeCertificate:    8,
	TagFeeVoteCast:       8,
	TagFeeVotePlan:       8,

	TagFeePoolRegistration:     8,
	TagFeeStakeDelegation:      8,
	TagFeeOwnerStakeDelegation: 8,
}

// ConfigParam is one tag/value pair of the initial fragment.
type ConfigParam struct {
	Tag   ParamTag
	Value []byte
}

// Uint returns the parameter value as an unsigned integer. The tag must be
// known and the value must have the tag's width.
func (p ConfigParam) Uint() (uint64, error) {
	width, ok := paramWidth[p.Tag]
	if !ok {
		return 0, fmt.Errorf("%w: unknown config param %d", ErrMalformed, p.Tag)
	}
	if len(p.Value) != width {
		return 0, fmt.Errorf("%w: config param %d has %d bytes, want %d", ErrMalformed, p.Tag, len(p.Value), width)
	}
	switch width {
	case 1:
		return uint64(p.Value[0]), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(p.Value)), nil
	default:
		return binary.LittleEndian.Uint64(p.Value), nil
	}
}

// UintParam encodes v at the width of tag. It panics on an unknown tag,
// which is a programming error.
func UintParam(tag ParamTag, v uint64) ConfigParam {
	width, ok := paramWidth[tag]
	if !ok {
		panic(fmt.Sprintf("fragment: unknown config param %d", tag))
	}
	var b []byte
	switch width {
	case 1:
		b = []byte{byte(v)}
	case 4:
		b = binary.LittleEndian.AppendUint32(nil, uint32(v))
	default:
		b = binary.LittleEndian.AppendUint64(nil, v)
	}
	return ConfigParam{Tag: tag, Value: b}
}
