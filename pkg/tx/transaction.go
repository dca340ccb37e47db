// Package tx defines the transaction body shared by payment, conversion and
// vote-cast fragments, along with its encoding, signing and fee rules.
package tx

import (
	"encoding/binary"
	"fmt"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/crypto"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/wire"
)

// Limits imposed by the one-byte input and output counts.
const (
	MaxInputs  = 255
	MaxOutputs = 255
)

// InputKind identifies what an input spends.
type InputKind uint8

const (
	// InputUTxO spends an unspent output by outpoint.
	InputUTxO InputKind = 0
	// InputAccount debits an account.
	InputAccount InputKind = 1
	// InputLegacy spends a block0 legacy declaration.
	InputLegacy InputKind = 2
)

// String returns the kind name.
func (k InputKind) String() string {
	switch k {
	case InputUTxO:
		return "utxo"
	case InputAccount:
		return "account"
	case InputLegacy:
		return "legacy"
	}
	return fmt.Sprintf("input(%d)", uint8(k))
}

// Input is one source of value. Only the field matching Kind is meaningful.
type Input struct {
	Kind     InputKind                 `json:"kind"`
	Outpoint types.Outpoint            `json:"outpoint,omitempty"`
	Account  [types.PublicKeySize]byte `json:"-"`
	Legacy   types.LegacyAddress       `json:"legacy,omitempty"`
	Value    types.Value               `json:"value"`
}

// Output credits an address.
type Output struct {
	Address types.Address `json:"address"`
	Value   types.Value   `json:"value"`
}

// Witness authorises the input at the same index.
type Witness struct {
	Kind      InputKind `json:"kind"`
	PubKey    []byte    `json:"pubkey,omitempty"`
	Counter   uint32    `json:"counter,omitempty"`
	Signature []byte    `json:"signature"`
}

// Transaction is a set of inputs and outputs with an expiry date and an
// optional certificate payload.
type Transaction struct {
	ValidUntil types.BlockDate `json:"valid_until"`
	Payload    []byte          `json:"payload,omitempty"`
	Inputs     []Input         `json:"inputs"`
	Outputs    []Output        `json:"outputs"`
	Witnesses  []Witness       `json:"witnesses"`
}

// ID hashes the signing bytes. Witnesses are excluded.
func (t *Transaction) ID() types.Hash {
	return crypto.Hash(t.SigningBytes())
}

// SigningBytes returns the canonical encoding without witnesses.
// Format: valid_until(8) | payload_len(4) | payload | in_count(1) | inputs | out_count(1) | outputs
func (t *Transaction) SigningBytes() []byte {
	buf := make([]byte, 0, 14+len(t.Payload)+len(t.Inputs)*42+len(t.Outputs)*42)

	buf = binary.LittleEndian.AppendUint32(buf, t.ValidUntil.Epoch)
	buf = binary.LittleEndian.AppendUint32(buf, t.ValidUntil.Slot)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(t.Payload)))
	buf = append(buf, t.Payload...)

	buf = append(buf, byte(len(t.Inputs)))
	for _, in := range t.Inputs {
		buf = append(buf, byte(in.Kind))
		switch in.Kind {
		case InputUTxO:
			buf = append(buf, in.Outpoint.FragmentID[:]...)
			buf = append(buf, in.Outpoint.Index)
		case InputAccount:
			buf = append(buf, in.Account[:]...)
		case InputLegacy:
			buf = append(buf, in.Legacy[:]...)
		}
		buf = binary.LittleEndian.AppendUint64(buf, uint64(in.Value))
	}

	buf = append(buf, byte(len(t.Outputs)))
	for _, out := range t.Outputs {
		buf = append(buf, out.Address.Bytes()...)
		buf = binary.LittleEndian.AppendUint64(buf, uint64(out.Value))
	}
	return buf
}

// Encode returns the full encoding: signing bytes followed by one witness
// per input.
func (t *Transaction) Encode() []byte {
	buf := t.SigningBytes()
	for _, w := range t.Witnesses {
		buf = append(buf, byte(w.Kind))
		if w.Kind == InputAccount {
			buf = binary.LittleEndian.AppendUint32(buf, w.Counter)
		} else {
			buf = append(buf, w.PubKey...)
		}
		buf = append(buf, w.Signature...)
	}
	return buf
}

// Decode parses an encoded transaction. The whole slice must be consumed.
func Decode(data []byte) (*Transaction, error) {
	r := wire.NewReader(data)
	t := readTransaction(r)
	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return t, nil
}

func readTransaction(r *wire.Reader) *Transaction {
	t := &Transaction{}
	t.ValidUntil.Epoch = r.U32()
	t.ValidUntil.Slot = r.U32()
	if n := int(r.U32()); n > 0 {
		t.Payload = append([]byte(nil), r.Bytes(n)...)
	}

	nIn := int(r.U8())
	t.Inputs = make([]Input, 0, nIn)
	for i := 0; i < nIn && r.Err() == nil; i++ {
		in := Input{Kind: InputKind(r.U8())}
		switch in.Kind {
		case InputUTxO:
			r.Copy(in.Outpoint.FragmentID[:])
			in.Outpoint.Index = r.U8()
		case InputAccount:
			r.Copy(in.Account[:])
		case InputLegacy:
			r.Copy(in.Legacy[:])
		default:
			r.Fail(fmt.Errorf("input %d: unknown kind %d", i, in.Kind))
		}
		in.Value = types.Value(r.U64())
		t.Inputs = append(t.Inputs, in)
	}

	nOut := int(r.U8())
	t.Outputs = make([]Output, 0, nOut)
	for i := 0; i < nOut && r.Err() == nil; i++ {
		addr, err := types.AddressFromBytes(r.Bytes(types.AddressSize))
		if err != nil && r.Err() == nil {
			r.Fail(fmt.Errorf("output %d: %w", i, err))
		}
		t.Outputs = append(t.Outputs, Output{Address: addr, Value: types.Value(r.U64())})
	}

	t.Witnesses = make([]Witness, 0, nIn)
	for i := 0; i < nIn && r.Err() == nil; i++ {
		w := Witness{Kind: InputKind(r.U8())}
		switch w.Kind {
		case InputAccount:
			w.Counter = r.U32()
		case InputUTxO, InputLegacy:
			w.PubKey = append([]byte(nil), r.Bytes(types.PublicKeySize)...)
		default:
			r.Fail(fmt.Errorf("witness %d: unknown kind %d", i, w.Kind))
		}
		w.Signature = append([]byte(nil), r.Bytes(crypto.SignatureSize)...)
		t.Witnesses = append(t.Witnesses, w)
	}
	return t
}

// ReadFrom decodes a transaction from r, leaving any following bytes unread.
func ReadFrom(r *wire.Reader) (*Transaction, error) {
	t := readTransaction(r)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return t, nil
}

// TotalInput returns the sum of input values.
func (t *Transaction) TotalInput() (types.Value, error) {
	var total types.Value
	for _, in := range t.Inputs {
		var err error
		if total, err = total.Add(in.Value); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// TotalOutput returns the sum of output values.
func (t *Transaction) TotalOutput() (types.Value, error) {
	var total types.Value
	for _, out := range t.Outputs {
		var err error
		if total, err = total.Add(out.Value); err != nil {
			return 0, err
		}
	}
	return total, nil
}
