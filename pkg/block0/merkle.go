package block0

import (
	"github.com/Klingon-tech/klingnet-walletcore/pkg/crypto"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

// ContentHash calculates the merkle root of fragment IDs.
//
// Algorithm:
//   - 0 ids: zero hash
//   - 1 id: that id
//   - otherwise pairwise hash, duplicating the last element on odd count,
//     until one hash remains.
func ContentHash(ids []types.FragmentID) types.Hash {
	switch len(ids) {
	case 0:
		return types.Hash{}
	case 1:
		return ids[0]
	}

	level := make([]types.Hash, len(ids))
	copy(level, ids)
	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]types.Hash, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next[i/2] = crypto.HashParts(level[i][:], level[i+1][:])
		}
		level = next
	}
	return level[0]
}
