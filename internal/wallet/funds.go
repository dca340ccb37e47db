package wallet

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-walletcore/internal/log"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/block0"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/fragment"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/settings"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

// scan is the wallet-owned content of one block0.
type scan struct {
	value      types.Value
	counter    uint32
	utxos      []UTxO
	legacy     []LegacyFund
	found      bool
	mismatched int
}

// RetrieveFunds parses block0, rebuilds the wallet's discovered state from
// the fragments addressed to it and returns the chain settings.
//
// Parse errors leave the wallet untouched. When nothing in block0 belongs
// to the wallet, the returned settings are valid and the error is
// ErrNoFundsFound; the wallet is then reset to an empty state.
func (w *Wallet) RetrieveFunds(raw []byte) (*settings.Settings, error) {
	b, err := block0.Decode(raw)
	if err != nil {
		return nil, err
	}
	s, err := settings.FromBlock(b)
	if err != nil {
		return nil, err
	}

	found, err := w.scanBlock0(b, s.Discrimination())
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.value = found.value
	w.counter = found.counter
	w.utxos = found.utxos
	w.legacy = found.legacy
	w.pending = nil
	w.recomputeTotal()
	total := w.total
	w.mu.Unlock()

	logger := log.Wallet.With().
		Str("account", w.ID().String()).
		Str("block0", s.Block0Hash().String()).
		Logger()
	if found.mismatched > 0 {
		logger.Warn().Int("outputs", found.mismatched).Msg("Ignored outputs with foreign discrimination")
	}
	if !found.found {
		logger.Info().Msg("No funds found in block0")
		return s, ErrNoFundsFound
	}
	logger.Info().
		Uint64("total", uint64(total)).
		Int("utxos", len(found.utxos)).
		Int("legacy", len(found.legacy)).
		Msg("Funds retrieved")
	return s, nil
}

func (w *Wallet) scanBlock0(b *block0.Block0, disc types.Discrimination) (*scan, error) {
	out := &scan{}
	for _, f := range b.Fragments {
		switch f.Kind {
		case fragment.KindTransaction:
			id, err := f.ID()
			if err != nil {
				return nil, fmt.Errorf("fragment id: %w", err)
			}
			for i, o := range f.Tx.Outputs {
				if !w.ownsAddress(o.Address) {
					continue
				}
				if o.Address.Discrimination != disc {
					out.mismatched++
					continue
				}
				out.found = true
				if o.Address.Kind == types.KindAccount {
					out.value = out.value.SaturatingAdd(o.Value)
					continue
				}
				out.utxos = append(out.utxos, UTxO{
					Outpoint: types.Outpoint{FragmentID: id, Index: uint8(i)},
					KeyIndex: w.keyIndex(o.Address.Key[:]),
					Value:    o.Value,
				})
			}
		case fragment.KindOldUtxoDeclaration:
			for _, e := range f.Legacy {
				if idx := w.legacyIndex(e.Address); idx >= 0 {
					out.found = true
					out.legacy = append(out.legacy, LegacyFund{Address: e.Address, KeyIndex: idx, Value: e.Value})
				}
			}
		case fragment.KindAccountState:
			for _, e := range f.Accounts {
				if e.Account == w.accountPub {
					out.found = true
					out.counter = e.Counter
				}
			}
		}
	}
	return out, nil
}

// ownsAddress reports whether addr pays the account key or a UTxO key,
// regardless of discrimination.
func (w *Wallet) ownsAddress(addr types.Address) bool {
	switch addr.Kind {
	case types.KindAccount:
		return addr.Key == w.accountPub
	case types.KindSingle:
		return w.keyIndex(addr.Key[:]) >= 0
	}
	return false
}
