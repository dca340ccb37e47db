// Package fragment encodes the units carried by block0 and produced by the
// wallet: initial chain parameters, legacy declarations, transactions,
// account states and vote casts.
//
// Framing: kind(1) | payload_len(4) | payload. A fragment's ID is the
// BLAKE3 hash of its framed bytes.
package fragment

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/crypto"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/tx"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/wire"
)

// Kind tags a fragment's payload.
type Kind uint8

const (
	KindInitial            Kind = 0
	KindOldUtxoDeclaration Kind = 1
	KindTransaction        Kind = 2
	KindAccountState       Kind = 3
	KindVoteCast           Kind = 4
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInitial:
		return "initial"
	case KindOldUtxoDeclaration:
		return "old-utxo-declaration"
	case KindTransaction:
		return "transaction"
	case KindAccountState:
		return "account-state"
	case KindVoteCast:
		return "vote-cast"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Fragment errors.
var (
	ErrUnknownKind = errors.New("unknown fragment kind")
	ErrMalformed   = errors.New("malformed fragment")
	ErrTooMany     = errors.New("too many entries")
)

// maxEntries bounds the two-byte entry counts.
const maxEntries = 0xffff

// LegacyEntry declares value held by a legacy address at genesis.
type LegacyEntry struct {
	Address types.LegacyAddress `json:"address"`
	Value   types.Value         `json:"value"`
}

// AccountEntry sets an account's spending counter at genesis.
type AccountEntry struct {
	Account [types.PublicKeySize]byte `json:"-"`
	Counter uint32                    `json:"counter"`
}

// Fragment is one decoded fragment. Only the fields for Kind are set.
type Fragment struct {
	Kind     Kind
	Params   []ConfigParam
	Legacy   []LegacyEntry
	Accounts []AccountEntry
	Tx       *tx.Transaction
	Vote     *VoteCast

	raw []byte
}

// NewInitial builds an initial-parameters fragment.
func NewInitial(params []ConfigParam) *Fragment {
	return &Fragment{Kind: KindInitial, Params: params}
}

// NewOldUtxoDeclaration builds a legacy declaration fragment.
func NewOldUtxoDeclaration(entries []LegacyEntry) *Fragment {
	return &Fragment{Kind: KindOldUtxoDeclaration, Legacy: entries}
}

// NewTransaction wraps a plain transaction.
func NewTransaction(t *tx.Transaction) *Fragment {
	return &Fragment{Kind: KindTransaction, Tx: t}
}

// NewAccountState builds an account state fragment.
func NewAccountState(entries []AccountEntry) *Fragment {
	return &Fragment{Kind: KindAccountState, Accounts: entries}
}

// NewVoteCast wraps a transaction whose payload is the encoded vote.
func NewVoteCast(t *tx.Transaction) (*Fragment, error) {
	v, err := DecodeVoteCast(t.Payload)
	if err != nil {
		return nil, err
	}
	return &Fragment{Kind: KindVoteCast, Tx: t, Vote: v}, nil
}

// Encode returns the framed fragment bytes.
func (f *Fragment) Encode() ([]byte, error) {
	if f.raw != nil {
		return append([]byte(nil), f.raw...), nil
	}
	payload, err := f.payload()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 5+len(payload))
	buf = append(buf, byte(f.Kind))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(payload)))
	return append(buf, payload...), nil
}

// ID returns the BLAKE3 hash of the framed bytes.
func (f *Fragment) ID() (types.FragmentID, error) {
	b, err := f.Encode()
	if err != nil {
		return types.FragmentID{}, err
	}
	return crypto.Hash(b), nil
}

func (f *Fragment) payload() ([]byte, error) {
	var buf []byte
	switch f.Kind {
	case KindInitial:
		if len(f.Params) > maxEntries {
			return nil, fmt.Errorf("%w: %d params", ErrTooMany, len(f.Params))
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(f.Params)))
		for _, p := range f.Params {
			if len(p.Value) > maxEntries {
				return nil, fmt.Errorf("param %d: value too long", p.Tag)
			}
			buf = binary.LittleEndian.AppendUint16(buf, uint16(p.Tag))
			buf = binary.LittleEndian.AppendUint16(buf, uint16(len(p.Value)))
			buf = append(buf, p.Value...)
		}
	case KindOldUtxoDeclaration:
		if len(f.Legacy) > maxEntries {
			return nil, fmt.Errorf("%w: %d declarations", ErrTooMany, len(f.Legacy))
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(f.Legacy)))
		for _, e := range f.Legacy {
			buf = append(buf, e.Address[:]...)
			buf = binary.LittleEndian.AppendUint64(buf, uint64(e.Value))
		}
	case KindAccountState:
		if len(f.Accounts) > maxEntries {
			return nil, fmt.Errorf("%w: %d accounts", ErrTooMany, len(f.Accounts))
		}
		buf = binary.LittleEndian.AppendUint16(buf, uint16(len(f.Accounts)))
		for _, e := range f.Accounts {
			buf = append(buf, e.Account[:]...)
			buf = binary.LittleEndian.AppendUint32(buf, e.Counter)
		}
	case KindTransaction, KindVoteCast:
		if f.Tx == nil {
			return nil, fmt.Errorf("%s fragment without transaction", f.Kind)
		}
		buf = f.Tx.Encode()
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, f.Kind)
	}
	return buf, nil
}

// Decode parses exactly one framed fragment.
func Decode(data []byte) (*Fragment, error) {
	r := wire.NewReader(data)
	f, err := ReadFrom(r)
	if err != nil {
		return nil, err
	}
	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return f, nil
}

// ReadFrom parses one framed fragment from r.
func ReadFrom(r *wire.Reader) (*Fragment, error) {
	kind := Kind(r.U8())
	size := int(r.U32())
	payload := r.Bytes(size)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	f, err := decodePayload(kind, payload)
	if err != nil {
		return nil, err
	}
	f.raw = make([]byte, 0, 5+size)
	f.raw = append(f.raw, byte(kind))
	f.raw = binary.LittleEndian.AppendUint32(f.raw, uint32(size))
	f.raw = append(f.raw, payload...)
	return f, nil
}

func decodePayload(kind Kind, payload []byte) (*Fragment, error) {
	f := &Fragment{Kind: kind}
	r := wire.NewReader(payload)

	switch kind {
	case KindInitial:
		n := int(r.U16())
		for i := 0; i < n && r.Err() == nil; i++ {
			tag := ParamTag(r.U16())
			size := int(r.U16())
			f.Params = append(f.Params, ConfigParam{Tag: tag, Value: append([]byte(nil), r.Bytes(size)...)})
		}
	case KindOldUtxoDeclaration:
		n := int(r.U16())
		for i := 0; i < n && r.Err() == nil; i++ {
			var e LegacyEntry
			r.Copy(e.Address[:])
			e.Value = types.Value(r.U64())
			f.Legacy = append(f.Legacy, e)
		}
	case KindAccountState:
		n := int(r.U16())
		for i := 0; i < n && r.Err() == nil; i++ {
			var e AccountEntry
			r.Copy(e.Account[:])
			e.Counter = r.U32()
			f.Accounts = append(f.Accounts, e)
		}
	case KindTransaction, KindVoteCast:
		t, err := tx.ReadFrom(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, kind, err)
		}
		f.Tx = t
		if kind == KindVoteCast {
			v, err := DecodeVoteCast(t.Payload)
			if err != nil {
				return nil, err
			}
			f.Vote = v
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}

	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, kind, err)
	}
	return f, nil
}
