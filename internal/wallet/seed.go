package wallet

import (
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

// SeedSize is the length of a derived seed in bytes (512 bits).
const SeedSize = 64

// SeedFromMnemonic validates a mnemonic and derives its 512-bit seed using
// PBKDF2-SHA512 as specified in BIP-39. An empty password is allowed.
func SeedFromMnemonic(mnemonic string, password []byte) ([]byte, error) {
	normalized := NormalizeMnemonic(mnemonic)
	if err := ValidateMnemonic(normalized); err != nil {
		return nil, err
	}
	seed, err := bip39.NewSeedWithErrorChecking(normalized, string(password))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	return seed, nil
}
