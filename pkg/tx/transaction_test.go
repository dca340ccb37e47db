package tx

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/crypto"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

func mustKey(t *testing.T) *crypto.PrivateKey {
	t.Helper()
	k, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	return k
}

func accountOf(t *testing.T, k *crypto.PrivateKey) [types.PublicKeySize]byte {
	t.Helper()
	var a [types.PublicKeySize]byte
	copy(a[:], k.PublicKey())
	return a
}

func addressOf(t *testing.T, k *crypto.PrivateKey, kind types.AddressKind) types.Address {
	t.Helper()
	a, err := types.NewAddress(types.Test, kind, k.PublicKey())
	if err != nil {
		t.Fatalf("NewAddress() error: %v", err)
	}
	return a
}

func TestTransaction_EncodeDecode(t *testing.T) {
	block0 := crypto.Hash([]byte("block0"))
	utxoKey, accKey, legacyKey := mustKey(t), mustKey(t), mustKey(t)

	b := NewBuilder(types.BlockDate{Epoch: 3, Slot: 9}).
		SetPayload([]byte{0xca, 0xfe}).
		AddUTxOInput(types.Outpoint{FragmentID: types.Hash{0x01}, Index: 2}, 100).
		AddAccountInput(accountOf(t, accKey), 50).
		AddLegacyInput(crypto.LegacyAddressFromPubKey(legacyKey.PublicKey()), 25).
		AddOutput(addressOf(t, accKey, types.KindAccount), 170)
	if err := b.Sign(block0, 7, utxoKey, accKey, legacyKey); err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	orig, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	decoded, err := Decode(orig.Encode())
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if !bytes.Equal(decoded.Encode(), orig.Encode()) {
		t.Error("re-encoding decoded transaction should reproduce the bytes")
	}
	if decoded.ID() != orig.ID() {
		t.Error("decoded transaction ID mismatch")
	}
	if decoded.Witnesses[1].Counter != 7 {
		t.Errorf("account witness counter = %d, want 7", decoded.Witnesses[1].Counter)
	}
	if err := decoded.VerifyWitnesses(block0); err != nil {
		t.Errorf("VerifyWitnesses() error: %v", err)
	}
	if err := decoded.CheckBalance(5); err != nil {
		t.Errorf("CheckBalance(5) error: %v", err)
	}
}

func TestTransaction_ID_IgnoresWitnesses(t *testing.T) {
	key := mustKey(t)
	b := NewBuilder(types.BlockDate{}).
		AddAccountInput(accountOf(t, key), 10).
		AddOutput(addressOf(t, key, types.KindSingle), 9)
	before := b.tx.ID()
	if err := b.Sign(types.Hash{}, 0, key); err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	if b.tx.ID() != before {
		t.Error("ID() should not change when witnesses are added")
	}
}

func TestDecode_Errors(t *testing.T) {
	key := mustKey(t)
	b := NewBuilder(types.BlockDate{}).AddAccountInput(accountOf(t, key), 10)
	if err := b.Sign(types.Hash{}, 0, key); err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	good := b.tx.Encode()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated", good[:len(good)-1]},
		{"trailing", append(append([]byte{}, good...), 0x00)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data); err == nil {
				t.Error("Decode() should fail")
			}
		})
	}
}

func TestVerifyWitnesses_WrongChain(t *testing.T) {
	key := mustKey(t)
	b := NewBuilder(types.BlockDate{}).AddAccountInput(accountOf(t, key), 10)
	if err := b.Sign(crypto.Hash([]byte("a")), 1, key); err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	err := b.tx.VerifyWitnesses(crypto.Hash([]byte("b")))
	if !errors.Is(err, ErrInvalidSig) {
		t.Errorf("VerifyWitnesses() error = %v, want ErrInvalidSig", err)
	}
}

func TestVerifyWitnesses_CounterBound(t *testing.T) {
	key := mustKey(t)
	block0 := crypto.Hash([]byte("a"))
	b := NewBuilder(types.BlockDate{}).AddAccountInput(accountOf(t, key), 10)
	if err := b.Sign(block0, 1, key); err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	b.tx.Witnesses[0].Counter = 2
	if err := b.tx.VerifyWitnesses(block0); !errors.Is(err, ErrInvalidSig) {
		t.Errorf("VerifyWitnesses() error = %v, want ErrInvalidSig", err)
	}
}

func TestSignInput_WrongKey(t *testing.T) {
	owner, other := mustKey(t), mustKey(t)
	b := NewBuilder(types.BlockDate{}).
		AddAccountInput(accountOf(t, owner), 10).
		AddLegacyInput(crypto.LegacyAddressFromPubKey(owner.PublicKey()), 10)

	for i := range b.tx.Inputs {
		if _, err := b.tx.SignInput(i, types.Hash{}, other, 0); !errors.Is(err, ErrWrongSigningKey) {
			t.Errorf("SignInput(%d) error = %v, want ErrWrongSigningKey", i, err)
		}
	}
}

func TestValidate(t *testing.T) {
	key := mustKey(t)
	out := addressOf(t, key, types.KindSingle)
	op := types.Outpoint{FragmentID: types.Hash{0x09}}

	tests := []struct {
		name    string
		tx      *Transaction
		wantErr error
	}{
		{"no inputs", &Transaction{}, ErrNoInputs},
		{"zero input", &Transaction{Inputs: []Input{{Kind: InputUTxO, Outpoint: op}}}, ErrZeroInput},
		{"duplicate utxo", &Transaction{Inputs: []Input{
			{Kind: InputUTxO, Outpoint: op, Value: 1},
			{Kind: InputUTxO, Outpoint: op, Value: 1},
		}}, ErrDuplicateInput},
		{"zero output", &Transaction{
			Inputs:  []Input{{Kind: InputUTxO, Outpoint: op, Value: 1}},
			Outputs: []Output{{Address: out}},
		}, ErrZeroOutput},
		{"witness count", &Transaction{
			Inputs:    []Input{{Kind: InputUTxO, Outpoint: op, Value: 1}},
			Witnesses: []Witness{{}, {}},
		}, ErrWitnessCount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.tx.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckBalance_Unbalanced(t *testing.T) {
	key := mustKey(t)
	tx := &Transaction{
		Inputs:  []Input{{Kind: InputAccount, Account: accountOf(t, key), Value: 10}},
		Outputs: []Output{{Address: addressOf(t, key, types.KindSingle), Value: 9}},
	}
	if err := tx.CheckBalance(2); !errors.Is(err, ErrUnbalanced) {
		t.Errorf("CheckBalance(2) error = %v, want ErrUnbalanced", err)
	}
	if err := tx.CheckBalance(1); err != nil {
		t.Errorf("CheckBalance(1) error: %v", err)
	}
}
