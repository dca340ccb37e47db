package tx

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/crypto"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

// Builder constructs transactions incrementally.
type Builder struct {
	tx *Transaction
}

// NewBuilder creates a builder for a transaction valid until the given date.
func NewBuilder(validUntil types.BlockDate) *Builder {
	return &Builder{tx: &Transaction{ValidUntil: validUntil}}
}

// SetPayload attaches a certificate payload.
func (b *Builder) SetPayload(payload []byte) *Builder {
	b.tx.Payload = append([]byte(nil), payload...)
	return b
}

// AddUTxOInput spends an unspent output.
func (b *Builder) AddUTxOInput(op types.Outpoint, value types.Value) *Builder {
	b.tx.Inputs = append(b.tx.Inputs, Input{Kind: InputUTxO, Outpoint: op, Value: value})
	return b
}

// AddAccountInput debits value from the account identified by pubKey.
func (b *Builder) AddAccountInput(pubKey [types.PublicKeySize]byte, value types.Value) *Builder {
	b.tx.Inputs = append(b.tx.Inputs, Input{Kind: InputAccount, Account: pubKey, Value: value})
	return b
}

// AddLegacyInput spends a legacy declaration.
func (b *Builder) AddLegacyInput(addr types.LegacyAddress, value types.Value) *Builder {
	b.tx.Inputs = append(b.tx.Inputs, Input{Kind: InputLegacy, Legacy: addr, Value: value})
	return b
}

// AddOutput credits an address.
func (b *Builder) AddOutput(addr types.Address, value types.Value) *Builder {
	b.tx.Outputs = append(b.tx.Outputs, Output{Address: addr, Value: value})
	return b
}

// Sign witnesses every input. keys[i] signs input i; counter is used for
// account inputs.
func (b *Builder) Sign(block0 types.Hash, counter uint32, keys ...crypto.Signer) error {
	if len(keys) != len(b.tx.Inputs) {
		return fmt.Errorf("%w: %d keys, %d inputs", ErrWitnessCount, len(keys), len(b.tx.Inputs))
	}
	witnesses := make([]Witness, len(keys))
	for i, key := range keys {
		w, err := b.tx.SignInput(i, block0, key, counter)
		if err != nil {
			return err
		}
		witnesses[i] = w
	}
	b.tx.Witnesses = witnesses
	return nil
}

// Build validates the structure and returns the transaction.
func (b *Builder) Build() (*Transaction, error) {
	if err := b.tx.Validate(); err != nil {
		return nil, err
	}
	return b.tx, nil
}
