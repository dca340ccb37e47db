package types

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func testPubKey(fill byte) []byte {
	k := bytes.Repeat([]byte{fill}, PublicKeySize)
	k[0] = 0x02
	return k
}

func TestAddress_BytesRoundtrip(t *testing.T) {
	tests := []struct {
		name string
		d    Discrimination
		kind AddressKind
	}{
		{"production single", Production, KindSingle},
		{"production account", Production, KindAccount},
		{"test single", Test, KindSingle},
		{"test account", Test, KindAccount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAddress(tt.d, tt.kind, testPubKey(0x11))
			if err != nil {
				t.Fatalf("NewAddress() error: %v", err)
			}
			b := a.Bytes()
			if len(b) != AddressSize {
				t.Fatalf("Bytes() length = %d, want %d", len(b), AddressSize)
			}
			got, err := AddressFromBytes(b)
			if err != nil {
				t.Fatalf("AddressFromBytes() error: %v", err)
			}
			if got != a {
				t.Errorf("roundtrip = %+v, want %+v", got, a)
			}
		})
	}
}

func TestAddress_TestBitInHeader(t *testing.T) {
	a, _ := NewAddress(Test, KindAccount, testPubKey(0x22))
	if h := a.Bytes()[0]; h != 0x85 {
		t.Errorf("header = 0x%02x, want 0x85", h)
	}
	p, _ := NewAddress(Production, KindSingle, testPubKey(0x22))
	if h := p.Bytes()[0]; h != 0x03 {
		t.Errorf("header = 0x%02x, want 0x03", h)
	}
}

func TestNewAddress_BadKeyLength(t *testing.T) {
	if _, err := NewAddress(Production, KindSingle, make([]byte, 32)); err == nil {
		t.Error("expected error for 32-byte key")
	}
}

func TestAddressFromBytes_UnknownKind(t *testing.T) {
	b := append([]byte{0x07}, testPubKey(0x01)...)
	if _, err := AddressFromBytes(b); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestParseAddress(t *testing.T) {
	a, _ := NewAddress(Test, KindSingle, testPubKey(0x33))
	s := a.String()
	if !strings.HasPrefix(s, "ta1") {
		t.Fatalf("String() = %q, want ta1 prefix", s)
	}
	got, err := ParseAddress(s)
	if err != nil {
		t.Fatalf("ParseAddress() error: %v", err)
	}
	if got != a {
		t.Errorf("ParseAddress() = %+v, want %+v", got, a)
	}
}

func TestParseAddress_PrefixMismatch(t *testing.T) {
	a, _ := NewAddress(Test, KindSingle, testPubKey(0x33))
	s, err := Bech32Encode(ProductionHRP, a.Bytes())
	if err != nil {
		t.Fatalf("Bech32Encode: %v", err)
	}
	if _, err := ParseAddress(s); err == nil {
		t.Error("expected error for production prefix on test address")
	}
}

func TestAddress_JSON(t *testing.T) {
	a, _ := NewAddress(Production, KindAccount, testPubKey(0x44))
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Address
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != a {
		t.Errorf("JSON roundtrip = %+v, want %+v", got, a)
	}
}

func TestParseDiscrimination(t *testing.T) {
	tests := []struct {
		in      string
		want    Discrimination
		wantErr bool
	}{
		{"production", Production, false},
		{"mainnet", Production, false},
		{"TEST", Test, false},
		{"testnet", Test, false},
		{"devnet", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDiscrimination(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDiscrimination(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDiscrimination(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLegacyAddress_Parse(t *testing.T) {
	var a LegacyAddress
	for i := range a {
		a[i] = byte(i)
	}

	for _, s := range []string{a.String(), a.Encode(Test), a.Hex()} {
		got, err := ParseLegacyAddress(s)
		if err != nil {
			t.Fatalf("ParseLegacyAddress(%q) error: %v", s, err)
		}
		if got != a {
			t.Errorf("ParseLegacyAddress(%q) = %x, want %x", s, got, a)
		}
	}

	if _, err := ParseLegacyAddress("ca1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq"); err == nil {
		t.Error("expected error for non-legacy input")
	}
}
