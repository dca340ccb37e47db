package types

import (
	"errors"
	"math"
	"strconv"
)

// Value errors.
var (
	ErrValueOverflow  = errors.New("value overflow")
	ErrValueUnderflow = errors.New("value underflow")
)

// Value is an amount of the chain's native currency in its smallest unit.
type Value uint64

// Add returns v + o, or ErrValueOverflow.
func (v Value) Add(o Value) (Value, error) {
	if v > math.MaxUint64-o {
		return 0, ErrValueOverflow
	}
	return v + o, nil
}

// Sub returns v - o, or ErrValueUnderflow when o > v.
func (v Value) Sub(o Value) (Value, error) {
	if o > v {
		return 0, ErrValueUnderflow
	}
	return v - o, nil
}

// SaturatingAdd returns v + o clamped to the maximum value.
func (v Value) SaturatingAdd(o Value) Value {
	if v > math.MaxUint64-o {
		return math.MaxUint64
	}
	return v + o
}

// SaturatingSub returns v - o clamped at zero.
func (v Value) SaturatingSub(o Value) Value {
	if o > v {
		return 0
	}
	return v - o
}

// String returns the decimal representation.
func (v Value) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

// SumValues adds values with overflow checking.
func SumValues(values ...Value) (Value, error) {
	var total Value
	for _, v := range values {
		var err error
		if total, err = total.Add(v); err != nil {
			return 0, err
		}
	}
	return total, nil
}
