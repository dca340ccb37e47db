package wallet

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

// UTxOChainDepth is the depth of m/44'/8888'/account'/0.
const UTxOChainDepth = 4

// ExtendedPublicKey returns the base58 extended public key of the UTxO
// chain. Wallets built with ImportKeys have none.
func (w *Wallet) ExtendedPublicKey() (string, error) {
	if w.utxoChain == nil {
		return "", ErrNoExtendedKey
	}
	return w.utxoChain.String(), nil
}

// WatchAddresses derives the first n UTxO addresses from an extended public
// key exported by ExtendedPublicKey. No private key is needed.
func WatchAddresses(xpub string, d types.Discrimination, n int) ([]types.Address, error) {
	chain, err := ParseExtendedPublicKey(xpub)
	if err != nil {
		return nil, err
	}
	if chain.Depth() != UTxOChainDepth {
		return nil, fmt.Errorf("%w: extended key depth %d, want %d", ErrInvalidKey, chain.Depth(), UTxOChainDepth)
	}

	addrs := make([]types.Address, 0, max(n, 0))
	for i := 0; i < n; i++ {
		child, err := chain.DeriveChild(uint32(i))
		if err != nil {
			return nil, err
		}
		addr, err := types.NewAddress(d, types.KindSingle, child.PublicKeyBytes())
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}
