package wallet

import (
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

// State is a serializable snapshot of the tracked wallet state. Keys are
// not part of it.
type State struct {
	Account string             `json:"account"`
	Value   types.Value        `json:"value"`
	Counter uint32             `json:"counter"`
	UTxOs   []UTxO             `json:"utxos,omitempty"`
	Legacy  []LegacyFund       `json:"legacy,omitempty"`
	Pending []types.FragmentID `json:"pending,omitempty"`
}

// State returns a snapshot of the wallet.
func (w *Wallet) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return State{
		Account: AccountID(w.accountPub).String(),
		Value:   w.value,
		Counter: w.counter,
		UTxOs:   slices.Clone(w.utxos),
		Legacy:  slices.Clone(w.legacy),
		Pending: slices.Clone(w.pending),
	}
}

// Restore replaces the tracked state with st. The snapshot must belong to
// this wallet's account and reference only known UTxO keys.
func (w *Wallet) Restore(st State) error {
	if st.Account != hex.EncodeToString(w.accountPub[:]) {
		return fmt.Errorf("state belongs to account %s", st.Account)
	}
	for _, u := range st.UTxOs {
		if u.KeyIndex < 0 || u.KeyIndex >= len(w.keys) {
			return fmt.Errorf("utxo %s: %w: %d", u.Outpoint, ErrUnknownKeyIndex, u.KeyIndex)
		}
	}
	for _, l := range st.Legacy {
		if l.KeyIndex < 0 || l.KeyIndex >= len(w.keys) || w.keys[l.KeyIndex].legacy != l.Address {
			return fmt.Errorf("legacy %s: %w: %d", l.Address, ErrUnknownKeyIndex, l.KeyIndex)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.value = st.Value
	w.counter = st.Counter
	w.utxos = slices.Clone(st.UTxOs)
	w.legacy = slices.Clone(st.Legacy)
	w.pending = slices.Clone(st.Pending)
	w.recomputeTotal()
	return nil
}
