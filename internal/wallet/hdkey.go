package wallet

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/crypto"
	"github.com/tyler-smith/go-bip32"
)

// BIP-44 derivation path: m/44'/8888'/account'/chain/index.
const (
	PurposeBIP44     = bip32.FirstHardenedChild + 44
	CoinTypeKlingnet = bip32.FirstHardenedChild + 8888

	// ChainUTxO holds the keys that receive plain outputs.
	ChainUTxO = 0
	// ChainAccount holds the single account key at index 0.
	ChainAccount = 2
)

// HDKey is a BIP-32 extended key.
type HDKey struct {
	key *bip32.Key
}

// NewMasterKey creates a master key from a 64-byte seed.
func NewMasterKey(seed []byte) (*HDKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	return &HDKey{key: master}, nil
}

// DeriveChild derives a child key. Add bip32.FirstHardenedChild to index for
// hardened derivation.
func (k *HDKey) DeriveChild(index uint32) (*HDKey, error) {
	child, err := k.key.NewChildKey(index)
	if err != nil {
		return nil, fmt.Errorf("derive child %d: %w", index, err)
	}
	return &HDKey{key: child}, nil
}

// DerivePath derives along a sequence of indices.
func (k *HDKey) DerivePath(indices ...uint32) (*HDKey, error) {
	current := k
	for _, idx := range indices {
		child, err := current.DeriveChild(idx)
		if err != nil {
			return nil, err
		}
		current = child
	}
	return current, nil
}

// DeriveAccountRoot derives m/44'/8888'/account'.
func (k *HDKey) DeriveAccountRoot(account uint32) (*HDKey, error) {
	return k.DerivePath(PurposeBIP44, CoinTypeKlingnet, bip32.FirstHardenedChild+account)
}

// PrivateKeyBytes returns the 32-byte private key, or nil for a public key.
func (k *HDKey) PrivateKeyBytes() []byte {
	if !k.key.IsPrivate {
		return nil
	}
	// bip32 stores private keys as 33 bytes with a leading zero.
	raw := k.key.Key
	if len(raw) == 33 && raw[0] == 0 {
		return raw[1:]
	}
	return raw
}

// PublicKeyBytes returns the compressed 33-byte public key.
func (k *HDKey) PublicKeyBytes() []byte {
	return k.key.PublicKey().Key
}

// Signer returns the private key as a crypto.PrivateKey.
func (k *HDKey) Signer() (*crypto.PrivateKey, error) {
	priv := k.PrivateKeyBytes()
	if priv == nil {
		return nil, fmt.Errorf("cannot create signer from public key")
	}
	return crypto.PrivateKeyFromBytes(priv)
}

// IsPrivate reports whether the key holds a private key.
func (k *HDKey) IsPrivate() bool {
	return k.key.IsPrivate
}

// Depth returns the derivation depth, 0 for the master.
func (k *HDKey) Depth() uint8 {
	return k.key.Depth
}

// Neuter returns a public-only copy.
func (k *HDKey) Neuter() *HDKey {
	return &HDKey{key: k.key.PublicKey()}
}

// String returns the base58 extended key.
func (k *HDKey) String() string {
	return k.key.String()
}

// ParseExtendedPublicKey decodes a base58 extended public key. Private
// extended keys and keys with an invalid point are rejected.
func ParseExtendedPublicKey(s string) (*HDKey, error) {
	key, err := bip32.B58Deserialize(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	k := &HDKey{key: key}
	if k.IsPrivate() {
		return nil, fmt.Errorf("%w: extended key is private", ErrInvalidKey)
	}
	if !crypto.ValidPublicKey(k.PublicKeyBytes()) {
		return nil, fmt.Errorf("%w: extended key is not on the curve", ErrInvalidKey)
	}
	return k, nil
}
