package tx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/crypto"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

// Witness errors.
var (
	ErrWitnessCount    = errors.New("witness count does not match input count")
	ErrWitnessKind     = errors.New("witness kind does not match input kind")
	ErrInvalidSig      = errors.New("invalid signature")
	ErrWrongSigningKey = errors.New("signing key does not own input")
)

// signingParts returns the message parts a witness signs. Binding the
// block0 hash keeps a witness from being replayed on another chain;
// account witnesses also bind the spending counter.
func signingParts(block0 types.Hash, kind InputKind, counter uint32, body []byte) [][]byte {
	if kind == InputAccount {
		var c [4]byte
		binary.LittleEndian.PutUint32(c[:], counter)
		return [][]byte{block0[:], c[:], body}
	}
	return [][]byte{block0[:], body}
}

// SignInput produces the witness for input i with key. For account inputs,
// counter is the account's current spending counter.
func (t *Transaction) SignInput(i int, block0 types.Hash, key crypto.Signer, counter uint32) (Witness, error) {
	if i < 0 || i >= len(t.Inputs) {
		return Witness{}, fmt.Errorf("sign input %d: out of range", i)
	}
	in := t.Inputs[i]
	pub := key.PublicKey()

	switch in.Kind {
	case InputAccount:
		if !bytes.Equal(pub, in.Account[:]) {
			return Witness{}, fmt.Errorf("input %d: %w", i, ErrWrongSigningKey)
		}
	case InputLegacy:
		if crypto.LegacyAddressFromPubKey(pub) != in.Legacy {
			return Witness{}, fmt.Errorf("input %d: %w", i, ErrWrongSigningKey)
		}
	}

	sig, err := crypto.SignParts(key, signingParts(block0, in.Kind, counter, t.SigningBytes())...)
	if err != nil {
		return Witness{}, fmt.Errorf("sign input %d: %w", i, err)
	}
	w := Witness{Kind: in.Kind, Signature: sig}
	if in.Kind == InputAccount {
		w.Counter = counter
	} else {
		w.PubKey = pub
	}
	return w, nil
}

// VerifyWitnesses checks every witness against its input. UTxO ownership
// (that the witness key owns the referenced output) needs the UTxO set and
// is left to the caller.
func (t *Transaction) VerifyWitnesses(block0 types.Hash) error {
	if len(t.Witnesses) != len(t.Inputs) {
		return fmt.Errorf("%w: %d witnesses, %d inputs", ErrWitnessCount, len(t.Witnesses), len(t.Inputs))
	}
	body := t.SigningBytes()
	for i, in := range t.Inputs {
		w := t.Witnesses[i]
		if w.Kind != in.Kind {
			return fmt.Errorf("input %d: %w", i, ErrWitnessKind)
		}
		pub := w.PubKey
		switch in.Kind {
		case InputAccount:
			pub = in.Account[:]
		case InputLegacy:
			if crypto.LegacyAddressFromPubKey(pub) != in.Legacy {
				return fmt.Errorf("input %d: %w", i, ErrWrongSigningKey)
			}
		}
		if !crypto.VerifyParts(w.Signature, pub, signingParts(block0, in.Kind, w.Counter, body)...) {
			return fmt.Errorf("input %d: %w", i, ErrInvalidSig)
		}
	}
	return nil
}
