package types

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// PublicKeySize is the length of a compressed secp256k1 public key.
const PublicKeySize = 33

// AddressSize is the length of an encoded address: one header byte
// followed by the public key.
const AddressSize = 1 + PublicKeySize

// Discrimination separates production addresses from test addresses.
type Discrimination uint8

const (
	Production Discrimination = 0
	Test       Discrimination = 1
)

// String returns "production" or "test".
func (d Discrimination) String() string {
	if d == Test {
		return "test"
	}
	return "production"
}

// ParseDiscrimination parses "production"/"mainnet" or "test"/"testnet".
func ParseDiscrimination(s string) (Discrimination, error) {
	switch strings.ToLower(s) {
	case "production", "mainnet", "":
		return Production, nil
	case "test", "testnet":
		return Test, nil
	}
	return 0, fmt.Errorf("unknown discrimination %q", s)
}

// Address HRPs (human-readable parts) for bech32 encoding.
const (
	ProductionHRP = "ca"
	TestHRP       = "ta"
)

// HRP returns the address HRP for a discrimination.
func (d Discrimination) HRP() string {
	if d == Test {
		return TestHRP
	}
	return ProductionHRP
}

// AddressKind tells which key an address pays to.
type AddressKind uint8

const (
	// KindSingle pays to a UTxO key; outputs create spendable entries.
	KindSingle AddressKind = 0x03
	// KindAccount pays to an account key; outputs credit the account value.
	KindAccount AddressKind = 0x05
)

const testBit = 0x80

// String returns the kind name.
func (k AddressKind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindAccount:
		return "account"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Address is a discriminated, kinded public key.
type Address struct {
	Discrimination Discrimination
	Kind           AddressKind
	Key            [PublicKeySize]byte
}

// NewAddress builds an address for a compressed public key.
func NewAddress(d Discrimination, kind AddressKind, pubKey []byte) (Address, error) {
	if len(pubKey) != PublicKeySize {
		return Address{}, fmt.Errorf("public key must be %d bytes, got %d", PublicKeySize, len(pubKey))
	}
	a := Address{Discrimination: d, Kind: kind}
	copy(a.Key[:], pubKey)
	return a, nil
}

// Bytes returns the binary address: header byte then key.
func (a Address) Bytes() []byte {
	header := byte(a.Kind)
	if a.Discrimination == Test {
		header |= testBit
	}
	out := make([]byte, 0, AddressSize)
	out = append(out, header)
	return append(out, a.Key[:]...)
}

// AddressFromBytes decodes a binary address.
func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != AddressSize {
		return Address{}, fmt.Errorf("address must be %d bytes, got %d", AddressSize, len(b))
	}
	var a Address
	if b[0]&testBit != 0 {
		a.Discrimination = Test
	}
	a.Kind = AddressKind(b[0] &^ testBit)
	if a.Kind != KindSingle && a.Kind != KindAccount {
		return Address{}, fmt.Errorf("unknown address kind 0x%02x", uint8(a.Kind))
	}
	copy(a.Key[:], b[1:])
	return a, nil
}

// Compare orders addresses by their binary form.
func (a Address) Compare(b Address) int {
	return bytes.Compare(a.Bytes(), b.Bytes())
}

// String returns the bech32-encoded address (e.g. "ca1...").
func (a Address) String() string {
	s, err := Bech32Encode(a.Discrimination.HRP(), a.Bytes())
	if err != nil {
		return a.Discrimination.HRP() + ":" + hex.EncodeToString(a.Bytes())
	}
	return s
}

// MarshalText encodes the address as bech32.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes a bech32 address.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON encodes the address as a bech32 string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a bech32 string into an address.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return a.UnmarshalText([]byte(s))
}

// ParseAddress parses a bech32 address. The HRP must agree with the
// discrimination bit of the header byte.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return Address{}, fmt.Errorf("empty address")
	}
	hrp, data, err := Bech32Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid bech32 address: %w", err)
	}
	a, err := AddressFromBytes(data)
	if err != nil {
		return Address{}, err
	}
	if hrp != a.Discrimination.HRP() {
		return Address{}, fmt.Errorf("address prefix %q does not match %s discrimination", hrp, a.Discrimination)
	}
	return a, nil
}
