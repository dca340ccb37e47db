package wallet

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/Klingon-tech/klingnet-walletcore/config"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/block0"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/settings"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
	"github.com/lightningnetwork/lnd/clock"
)

// testNow is one hour after the testnet block0 date: epoch 0, slot 1800.
var testNow = time.Unix(1770734103+3600, 0)

func testWallet(t *testing.T, opts ...Option) *Wallet {
	t.Helper()
	opts = append([]Option{WithUTXOKeys(3), WithClock(clock.NewTestClock(testNow))}, opts...)
	w, err := Recover(abandonAbout, nil, opts...)
	if err != nil {
		t.Fatalf("Recover() error: %v", err)
	}
	return w
}

// testBlock0 builds a testnet block0. fund may add allocations for w.
func testBlock0(t *testing.T, w *Wallet, fund func(g *config.Genesis, w *Wallet)) []byte {
	t.Helper()
	g := config.DefaultGenesis(config.Testnet)
	other, err := Recover("legal winner thank year wave sausage worth useful legal winner thank yellow", nil, WithUTXOKeys(1))
	if err != nil {
		t.Fatalf("Recover() error: %v", err)
	}
	g.Alloc[other.AccountAddress(types.Test).String()] = 5_000
	if fund != nil {
		fund(g, w)
	}
	raw, err := block0.BuildBytes(g)
	if err != nil {
		t.Fatalf("BuildBytes() error: %v", err)
	}
	return raw
}

func fundAll(g *config.Genesis, w *Wallet) {
	g.Alloc[w.AccountAddress(types.Test).String()] = 1_000
	for i := 0; i < w.UTxOKeyCount(); i++ {
		addr, _ := w.UTxOAddress(types.Test, i)
		g.Alloc[addr.String()] = uint64(100 * (i + 1))
	}
	legacy, _ := w.LegacyAddress(0)
	g.Legacy = map[string]uint64{legacy.Encode(types.Test): 50}
	g.Counters = map[string]uint32{w.AccountAddress(types.Test).String(): 7}
}

func retrieve(t *testing.T, w *Wallet, raw []byte) *settings.Settings {
	t.Helper()
	s, err := w.RetrieveFunds(raw)
	if err != nil {
		t.Fatalf("RetrieveFunds() error: %v", err)
	}
	return s
}

func TestRecover_AbandonAbout(t *testing.T) {
	w, err := Recover(abandonAbout, nil)
	if err != nil {
		t.Fatalf("Recover() error: %v", err)
	}
	if got := w.TotalValue(); got != 0 {
		t.Errorf("TotalValue() = %d, want 0", got)
	}
	if got := w.SpendingCounter(); got != 0 {
		t.Errorf("SpendingCounter() = %d, want 0", got)
	}
	if got := w.UTxOKeyCount(); got != DefaultUTXOKeys {
		t.Errorf("UTxOKeyCount() = %d, want %d", got, DefaultUTXOKeys)
	}
	if len(w.PendingTransactions()) != 0 {
		t.Error("fresh wallet should have no pending transactions")
	}
}

func TestRecover_Deterministic(t *testing.T) {
	w1 := testWallet(t)
	w2 := testWallet(t)
	if w1.ID() != w2.ID() {
		t.Error("same mnemonic should recover the same account")
	}
	a1, _ := w1.UTxOAddress(types.Test, 2)
	a2, _ := w2.UTxOAddress(types.Test, 2)
	if a1 != a2 {
		t.Error("same mnemonic should recover the same utxo keys")
	}

	w3, _ := Recover(abandonAbout, []byte("password"), WithUTXOKeys(3))
	if w3.ID() == w1.ID() {
		t.Error("password should change the recovered account")
	}
	w4 := testWallet(t, WithAccountIndex(1))
	if w4.ID() == w1.ID() {
		t.Error("account index should change the recovered account")
	}
}

func TestRecover_Errors(t *testing.T) {
	if _, err := Recover("abandon abandon abandon", nil); !errors.Is(err, ErrUnsupportedWordCount) {
		t.Errorf("Recover(3 words) error = %v, want ErrUnsupportedWordCount", err)
	}
	bad := "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon"
	if _, err := Recover(bad, nil); !errors.Is(err, ErrInvalidMnemonic) {
		t.Errorf("Recover(bad checksum) error = %v, want ErrInvalidMnemonic", err)
	}
}

func TestImportKeys(t *testing.T) {
	acct := bytes.Repeat([]byte{0x11}, 32)
	utxo := bytes.Repeat([]byte{0x22}, 32)

	w, err := ImportKeys(acct, [][]byte{utxo})
	if err != nil {
		t.Fatalf("ImportKeys() error: %v", err)
	}
	if w.UTxOKeyCount() != 1 {
		t.Errorf("UTxOKeyCount() = %d, want 1", w.UTxOKeyCount())
	}
	again, _ := ImportKeys(acct, nil)
	if again.ID() != w.ID() {
		t.Error("same account key should give the same id")
	}

	tests := []struct {
		name string
		acct []byte
		utxo [][]byte
	}{
		{"short account", acct[:31], nil},
		{"zero account", make([]byte, 32), nil},
		{"overflow account", bytes.Repeat([]byte{0xff}, 32), nil},
		{"short utxo", acct, [][]byte{utxo[:5]}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ImportKeys(tt.acct, tt.utxo); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("ImportKeys() error = %v, want ErrInvalidKey", err)
			}
		})
	}
}

func TestAddresses(t *testing.T) {
	w := testWallet(t)
	acct := w.AccountAddress(types.Production)
	if acct.Kind != types.KindAccount || acct.Discrimination != types.Production {
		t.Errorf("AccountAddress() = %+v", acct)
	}
	if _, err := w.UTxOAddress(types.Test, 3); !errors.Is(err, ErrUnknownKeyIndex) {
		t.Errorf("UTxOAddress(3) error = %v, want ErrUnknownKeyIndex", err)
	}
	if _, err := w.LegacyAddress(-1); !errors.Is(err, ErrUnknownKeyIndex) {
		t.Errorf("LegacyAddress(-1) error = %v, want ErrUnknownKeyIndex", err)
	}
}

func TestSetState(t *testing.T) {
	w := testWallet(t)
	s := retrieve(t, w, testBlock0(t, w, fundAll))

	p, _ := NewPublicProposal(types.Hash{1}, 0, 3)
	if _, err := w.Vote(s, p, 1, types.BlockDate{Epoch: 1}); err != nil {
		t.Fatalf("Vote() error: %v", err)
	}

	w.SetState(500, 3)
	if got := w.AccountValue(); got != 500 {
		t.Errorf("AccountValue() = %d, want 500", got)
	}
	if got := w.SpendingCounter(); got != 3 {
		t.Errorf("SpendingCounter() = %d, want 3", got)
	}
	// 100 + 200 + 300 utxos and 50 legacy remain discovered.
	if got := w.TotalValue(); got != 1150 {
		t.Errorf("TotalValue() = %d, want 1150", got)
	}
	if len(w.PendingTransactions()) != 0 {
		t.Error("SetState should clear pending transactions")
	}
}

func TestConfirmTransaction(t *testing.T) {
	w := testWallet(t)
	s := retrieve(t, w, testBlock0(t, w, fundAll))
	p, _ := NewPublicProposal(types.Hash{1}, 0, 3)
	for i := 0; i < 3; i++ {
		if _, err := w.Vote(s, p, 0, types.BlockDate{Epoch: 1}); err != nil {
			t.Fatalf("Vote() error: %v", err)
		}
	}
	pending := w.PendingTransactions()
	if len(pending) != 3 {
		t.Fatalf("pending = %d, want 3", len(pending))
	}

	w.ConfirmTransaction(pending[1])
	w.ConfirmTransaction(types.FragmentID{0xee})
	got := w.PendingTransactions()
	if len(got) != 2 || got[0] != pending[0] || got[1] != pending[2] {
		t.Errorf("pending after confirm = %v", got)
	}
}

func TestStateRestore(t *testing.T) {
	w := testWallet(t)
	retrieve(t, w, testBlock0(t, w, fundAll))
	st := w.State()

	fresh := testWallet(t)
	if err := fresh.Restore(st); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if fresh.TotalValue() != w.TotalValue() {
		t.Errorf("TotalValue() = %d, want %d", fresh.TotalValue(), w.TotalValue())
	}
	if fresh.SpendingCounter() != 7 {
		t.Errorf("SpendingCounter() = %d, want 7", fresh.SpendingCounter())
	}

	other := testWallet(t, WithAccountIndex(1))
	if err := other.Restore(st); err == nil {
		t.Error("Restore() should reject another account's state")
	}

	st.UTxOs[0].KeyIndex = 99
	if err := fresh.Restore(st); !errors.Is(err, ErrUnknownKeyIndex) {
		t.Errorf("Restore() error = %v, want ErrUnknownKeyIndex", err)
	}
}
