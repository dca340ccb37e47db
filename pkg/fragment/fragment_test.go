package fragment

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/crypto"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/tx"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

func roundtrip(t *testing.T, f *Fragment) *Fragment {
	t.Helper()
	b, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	again, err := got.Encode()
	if err != nil {
		t.Fatalf("re-Encode() error: %v", err)
	}
	if !bytes.Equal(again, b) {
		t.Error("decoded fragment re-encodes differently")
	}
	return got
}

func TestFragment_Initial(t *testing.T) {
	f := NewInitial([]ConfigParam{
		UintParam(TagDiscrimination, 1),
		UintParam(TagBlock0Date, 1_600_000_000),
		UintParam(TagSlotsPerEpoch, 43200),
	})
	got := roundtrip(t, f)
	if got.Kind != KindInitial || len(got.Params) != 3 {
		t.Fatalf("got kind %v with %d params", got.Kind, len(got.Params))
	}
	v, err := got.Params[1].Uint()
	if err != nil || v != 1_600_000_000 {
		t.Errorf("block0 date = %d, %v; want 1600000000", v, err)
	}
}

func TestFragment_OldUtxoDeclaration(t *testing.T) {
	f := NewOldUtxoDeclaration([]LegacyEntry{
		{Address: types.LegacyAddress{0x01}, Value: 10},
		{Address: types.LegacyAddress{0x02}, Value: 20},
	})
	got := roundtrip(t, f)
	if len(got.Legacy) != 2 || got.Legacy[1].Value != 20 {
		t.Errorf("legacy entries = %+v", got.Legacy)
	}
}

func TestFragment_AccountState(t *testing.T) {
	var acct [types.PublicKeySize]byte
	acct[0] = 0x02
	got := roundtrip(t, NewAccountState([]AccountEntry{{Account: acct, Counter: 42}}))
	if len(got.Accounts) != 1 || got.Accounts[0].Counter != 42 || got.Accounts[0].Account != acct {
		t.Errorf("accounts = %+v", got.Accounts)
	}
}

func TestFragment_VoteCast(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	var acct [types.PublicKeySize]byte
	copy(acct[:], key.PublicKey())

	vote := &VoteCast{VotePlan: types.Hash{0xaa}, ProposalIndex: 3, PayloadType: PayloadPublic, Choice: 1}
	payload, err := vote.Encode()
	if err != nil {
		t.Fatalf("VoteCast.Encode() error: %v", err)
	}
	b := tx.NewBuilder(types.BlockDate{Epoch: 1}).SetPayload(payload).AddAccountInput(acct, 5)
	if err := b.Sign(types.Hash{}, 0, key); err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	transaction, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	f, err := NewVoteCast(transaction)
	if err != nil {
		t.Fatalf("NewVoteCast() error: %v", err)
	}

	got := roundtrip(t, f)
	if got.Vote == nil || got.Vote.ProposalIndex != 3 || got.Vote.Choice != 1 {
		t.Errorf("vote = %+v", got.Vote)
	}
	id1, _ := f.ID()
	id2, _ := got.ID()
	if id1 != id2 {
		t.Error("fragment ID should survive roundtrip")
	}
}

func TestVoteCast_Private(t *testing.T) {
	v := &VoteCast{VotePlan: types.Hash{0x01}, PayloadType: PayloadPrivate, Sealed: []byte{1, 2, 3}}
	b, err := v.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	got, err := DecodeVoteCast(b)
	if err != nil {
		t.Fatalf("DecodeVoteCast() error: %v", err)
	}
	if !bytes.Equal(got.Sealed, v.Sealed) {
		t.Errorf("sealed = %x, want %x", got.Sealed, v.Sealed)
	}

	empty := &VoteCast{PayloadType: PayloadPrivate}
	if _, err := empty.Encode(); err == nil {
		t.Error("private vote without payload should fail")
	}
}

func TestDecode_Errors(t *testing.T) {
	good, err := NewOldUtxoDeclaration([]LegacyEntry{{Value: 1}}).Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	// Same entries, but the frame claims one extra payload byte.
	padded := []byte{byte(KindOldUtxoDeclaration), byte(len(good) - 4), 0, 0, 0}
	padded = append(padded, good[5:]...)
	padded = append(padded, 0xff)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrMalformed},
		{"unknown kind", []byte{9, 0, 0, 0, 0}, ErrUnknownKind},
		{"truncated", good[:len(good)-2], ErrMalformed},
		{"payload longer than entries", padded, ErrMalformed},
		{"trailing after frame", append(append([]byte{}, good...), 0x00), ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data); !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigParam_Uint_Errors(t *testing.T) {
	if _, err := (ConfigParam{Tag: 99, Value: []byte{1}}).Uint(); !errors.Is(err, ErrMalformed) {
		t.Errorf("unknown tag error = %v, want ErrMalformed", err)
	}
	if _, err := (ConfigParam{Tag: TagBlock0Date, Value: []byte{1}}).Uint(); !errors.Is(err, ErrMalformed) {
		t.Errorf("bad width error = %v, want ErrMalformed", err)
	}
}
