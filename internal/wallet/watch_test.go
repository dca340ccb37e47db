package wallet

import (
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

func TestWatchAddresses_MatchRecovered(t *testing.T) {
	w, err := Recover(abandonAbout, nil, WithUTXOKeys(5))
	if err != nil {
		t.Fatalf("Recover() error: %v", err)
	}
	xpub, err := w.ExtendedPublicKey()
	if err != nil {
		t.Fatalf("ExtendedPublicKey() error: %v", err)
	}

	// Watch further than the wallet derived; the first five must agree.
	addrs, err := WatchAddresses(xpub, types.Test, 8)
	if err != nil {
		t.Fatalf("WatchAddresses() error: %v", err)
	}
	if len(addrs) != 8 {
		t.Fatalf("got %d addresses, want 8", len(addrs))
	}
	for i := 0; i < w.UTxOKeyCount(); i++ {
		want, _ := w.UTxOAddress(types.Test, i)
		if addrs[i] != want {
			t.Errorf("address %d = %s, want %s", i, addrs[i], want)
		}
	}
}

func TestWatchAddresses_Errors(t *testing.T) {
	master, _ := NewMasterKey(testSeed(t))
	root, _ := master.DeriveAccountRoot(0)

	tests := []struct {
		name string
		xpub string
	}{
		{"garbage", "not-an-xpub"},
		{"private key", master.String()},
		{"wrong depth", root.Neuter().String()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := WatchAddresses(tt.xpub, types.Production, 1); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("WatchAddresses() error = %v, want ErrInvalidKey", err)
			}
		})
	}
}

func TestExtendedPublicKey_ImportedWallet(t *testing.T) {
	key := make([]byte, 32)
	key[31] = 1
	w, err := ImportKeys(key, nil)
	if err != nil {
		t.Fatalf("ImportKeys() error: %v", err)
	}
	if _, err := w.ExtendedPublicKey(); !errors.Is(err, ErrNoExtendedKey) {
		t.Errorf("ExtendedPublicKey() error = %v, want ErrNoExtendedKey", err)
	}
}
