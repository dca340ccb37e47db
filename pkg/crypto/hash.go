// Package crypto provides the hashing, signing and sealing primitives used
// by the wallet core.
package crypto

import (
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
	"github.com/zeebo/blake3"
)

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// HashParts hashes the concatenation of parts without copying them.
func HashParts(parts ...[]byte) types.Hash {
	h := blake3.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out types.Hash
	h.Sum(out[:0])
	return out
}

// LegacyAddressFromPubKey derives a legacy address from a compressed public key.
// Address = BLAKE3(compressed_pubkey)[:20].
func LegacyAddressFromPubKey(pubKey []byte) types.LegacyAddress {
	h := Hash(pubKey)
	var addr types.LegacyAddress
	copy(addr[:], h[:types.LegacyAddressSize])
	return addr
}
