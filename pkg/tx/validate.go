package tx

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

// Validation errors.
var (
	ErrNoInputs       = errors.New("transaction has no inputs")
	ErrTooManyInputs  = errors.New("too many inputs")
	ErrTooManyOutputs = errors.New("too many outputs")
	ErrDuplicateInput = errors.New("duplicate input")
	ErrZeroOutput     = errors.New("output value is zero")
	ErrZeroInput      = errors.New("input value is zero")
	ErrValueOverflow  = errors.New("values overflow")
	ErrUnbalanced     = errors.New("inputs do not equal outputs plus fee")
)

// Validate checks transaction structure. Signatures are checked by
// VerifyWitnesses; balance by CheckBalance.
func (t *Transaction) Validate() error {
	if len(t.Inputs) == 0 {
		return ErrNoInputs
	}
	if len(t.Inputs) > MaxInputs {
		return fmt.Errorf("%w: %d inputs, max %d", ErrTooManyInputs, len(t.Inputs), MaxInputs)
	}
	if len(t.Outputs) > MaxOutputs {
		return fmt.Errorf("%w: %d outputs, max %d", ErrTooManyOutputs, len(t.Outputs), MaxOutputs)
	}
	if len(t.Witnesses) != 0 && len(t.Witnesses) != len(t.Inputs) {
		return fmt.Errorf("%w: %d witnesses, %d inputs", ErrWitnessCount, len(t.Witnesses), len(t.Inputs))
	}

	seenUTxO := make(map[types.Outpoint]bool, len(t.Inputs))
	seenLegacy := make(map[types.LegacyAddress]bool)
	for i, in := range t.Inputs {
		// Zero-value account inputs authorise fee-free certificates.
		if in.Value == 0 && in.Kind != InputAccount {
			return fmt.Errorf("input %d: %w", i, ErrZeroInput)
		}
		switch in.Kind {
		case InputUTxO:
			if seenUTxO[in.Outpoint] {
				return fmt.Errorf("input %d: %w", i, ErrDuplicateInput)
			}
			seenUTxO[in.Outpoint] = true
		case InputLegacy:
			if seenLegacy[in.Legacy] {
				return fmt.Errorf("input %d: %w", i, ErrDuplicateInput)
			}
			seenLegacy[in.Legacy] = true
		}
		if i < len(t.Witnesses) && t.Witnesses[i].Kind != in.Kind {
			return fmt.Errorf("input %d: %w", i, ErrWitnessKind)
		}
	}

	for i, out := range t.Outputs {
		if out.Value == 0 {
			return fmt.Errorf("output %d: %w", i, ErrZeroOutput)
		}
	}
	if _, err := t.TotalInput(); err != nil {
		return fmt.Errorf("inputs: %w", ErrValueOverflow)
	}
	if _, err := t.TotalOutput(); err != nil {
		return fmt.Errorf("outputs: %w", ErrValueOverflow)
	}
	return nil
}

// CheckBalance verifies that inputs equal outputs plus fee exactly.
func (t *Transaction) CheckBalance(fee types.Value) error {
	in, err := t.TotalInput()
	if err != nil {
		return fmt.Errorf("inputs: %w", ErrValueOverflow)
	}
	out, err := t.TotalOutput()
	if err != nil {
		return fmt.Errorf("outputs: %w", ErrValueOverflow)
	}
	want, err := out.Add(fee)
	if err != nil || in != want {
		return fmt.Errorf("%w: in %d, out %d, fee %d", ErrUnbalanced, in, out, fee)
	}
	return nil
}
