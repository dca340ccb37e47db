package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// LegacyAddressSize is the length of a legacy (public key hash) address.
const LegacyAddressSize = 20

// Legacy address HRPs.
const (
	LegacyProductionHRP = "kgx"
	LegacyTestHRP       = "tkgx"
)

// LegacyAddress is the hash-of-public-key address used by the first
// generation of wallets. Funds sent to it are declared in block0 and can
// only be moved to the account by conversion.
type LegacyAddress [LegacyAddressSize]byte

// IsZero returns true if the address is all zeros.
func (a LegacyAddress) IsZero() bool {
	return a == LegacyAddress{}
}

// Hex returns the raw hex-encoded address.
func (a LegacyAddress) Hex() string {
	return hex.EncodeToString(a[:])
}

// String returns the bech32 form with the production HRP.
func (a LegacyAddress) String() string {
	return a.Encode(Production)
}

// Encode returns the bech32 form for the given discrimination.
func (a LegacyAddress) Encode(d Discrimination) string {
	hrp := LegacyProductionHRP
	if d == Test {
		hrp = LegacyTestHRP
	}
	s, err := Bech32Encode(hrp, a[:])
	if err != nil {
		return hrp + ":" + a.Hex()
	}
	return s
}

// MarshalText encodes the address as bech32.
func (a LegacyAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText accepts bech32 or raw 40-char hex.
func (a *LegacyAddress) UnmarshalText(text []byte) error {
	parsed, err := ParseLegacyAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON encodes the address as a bech32 string.
func (a LegacyAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a bech32 or hex string.
func (a *LegacyAddress) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return a.UnmarshalText([]byte(s))
}

// ParseLegacyAddress parses a bech32 ("kgx1...", "tkgx1...") or raw hex
// legacy address.
func ParseLegacyAddress(s string) (LegacyAddress, error) {
	var a LegacyAddress
	if s == "" {
		return a, fmt.Errorf("empty address")
	}

	var raw []byte
	if len(s) == 2*LegacyAddressSize {
		if b, err := hex.DecodeString(s); err == nil {
			raw = b
		}
	}
	if raw == nil {
		hrp, data, err := Bech32Decode(s)
		if err != nil {
			return a, fmt.Errorf("invalid legacy address: %w", err)
		}
		if hrp != LegacyProductionHRP && hrp != LegacyTestHRP {
			return a, fmt.Errorf("unexpected legacy address prefix %q", hrp)
		}
		raw = data
	}
	if len(raw) != LegacyAddressSize {
		return a, fmt.Errorf("legacy address must be %d bytes, got %d", LegacyAddressSize, len(raw))
	}
	copy(a[:], raw)
	return a, nil
}
