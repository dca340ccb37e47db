package wallet

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/Klingon-tech/klingnet-walletcore/internal/log"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/fragment"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/settings"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/tx"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

// IgnoredInput is a fund too small to pay for its own conversion.
type IgnoredInput struct {
	Kind     tx.InputKind        `json:"kind"`
	Outpoint types.Outpoint      `json:"outpoint,omitempty"`
	Legacy   types.LegacyAddress `json:"legacy,omitempty"`
	Value    types.Value         `json:"value"`
}

// Conversion is the immutable result of Convert: one signed transaction
// fragment per converted fund, plus the funds that were skipped.
type Conversion struct {
	fragments [][]byte
	ids       []types.FragmentID
	ignored   []IgnoredInput
}

// Len returns the number of transactions.
func (c *Conversion) Len() int {
	return len(c.fragments)
}

// Transaction returns a copy of fragment i.
func (c *Conversion) Transaction(i int) ([]byte, error) {
	if i < 0 || i >= len(c.fragments) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(c.fragments))
	}
	return slices.Clone(c.fragments[i]), nil
}

// IDs returns the fragment ids in transaction order.
func (c *Conversion) IDs() []types.FragmentID {
	return slices.Clone(c.ids)
}

// Ignored returns the funds that were not converted.
func (c *Conversion) Ignored() []IgnoredInput {
	return slices.Clone(c.ignored)
}

// IgnoredValue sums the value of the ignored funds.
func (c *Conversion) IgnoredValue() types.Value {
	var total types.Value
	for _, in := range c.ignored {
		total = total.SaturatingAdd(in.Value)
	}
	return total
}

// convEntry is one fund considered for conversion.
type convEntry struct {
	source []byte
	utxo   *UTxO
	legacy *LegacyFund
	value  types.Value
	key    int
}

func (e convEntry) compare(o convEntry) int {
	if c := bytes.Compare(e.source, o.source); c != 0 {
		return c
	}
	if e.utxo != nil && o.utxo != nil {
		return e.utxo.Outpoint.Compare(o.utxo.Outpoint)
	}
	return 0
}

// Convert moves every discovered UTxO and legacy fund into the account,
// one transaction per fund. Funds worth no more than the fee of a one-input
// one-output transaction are reported as ignored.
func (w *Wallet) Convert(s *settings.Settings, validUntil types.BlockDate) (*Conversion, error) {
	if err := s.ValidateValidUntil(w.clock.Now(), validUntil); err != nil {
		return nil, err
	}
	disc := s.Discrimination()
	fee := s.Fees().Calculate(1, 1, tx.NoCertificate)
	account := w.AccountAddress(disc)

	w.mu.Lock()
	defer w.mu.Unlock()

	entries := make([]convEntry, 0, len(w.utxos)+len(w.legacy))
	for i := range w.utxos {
		u := &w.utxos[i]
		addr := types.Address{Discrimination: disc, Kind: types.KindSingle, Key: w.keys[u.KeyIndex].pub}
		entries = append(entries, convEntry{source: addr.Bytes(), utxo: u, value: u.Value, key: u.KeyIndex})
	}
	for i := range w.legacy {
		l := &w.legacy[i]
		entries = append(entries, convEntry{source: l.Address[:], legacy: l, value: l.Value, key: l.KeyIndex})
	}
	slices.SortStableFunc(entries, convEntry.compare)

	conv := &Conversion{}
	var (
		credit     types.Value
		keepUTxOs  []UTxO
		keepLegacy []LegacyFund
	)
	for _, e := range entries {
		if e.value <= fee {
			conv.ignored = append(conv.ignored, e.ignored())
			if e.utxo != nil {
				keepUTxOs = append(keepUTxOs, *e.utxo)
			} else {
				keepLegacy = append(keepLegacy, *e.legacy)
			}
			continue
		}
		b := tx.NewBuilder(validUntil)
		if e.utxo != nil {
			b.AddUTxOInput(e.utxo.Outpoint, e.value)
		} else {
			b.AddLegacyInput(e.legacy.Address, e.value)
		}
		b.AddOutput(account, e.value-fee)
		if err := b.Sign(s.Block0Hash(), 0, w.keys[e.key].priv); err != nil {
			return nil, fmt.Errorf("sign conversion: %w", err)
		}
		t, err := b.Build()
		if err != nil {
			return nil, fmt.Errorf("build conversion: %w", err)
		}
		frag := fragment.NewTransaction(t)
		raw, err := frag.Encode()
		if err != nil {
			return nil, err
		}
		id, err := frag.ID()
		if err != nil {
			return nil, err
		}
		conv.fragments = append(conv.fragments, raw)
		conv.ids = append(conv.ids, id)
		credit = credit.SaturatingAdd(e.value - fee)
	}

	w.utxos = keepUTxOs
	w.legacy = keepLegacy
	w.value = w.value.SaturatingAdd(credit)
	w.pending = append(w.pending, conv.ids...)
	w.recomputeTotal()

	log.Wallet.Info().
		Str("account", AccountID(w.accountPub).String()).
		Int("transactions", conv.Len()).
		Int("ignored", len(conv.ignored)).
		Uint64("fee", uint64(fee)).
		Msg("Funds converted")
	return conv, nil
}

func (e convEntry) ignored() IgnoredInput {
	if e.utxo != nil {
		return IgnoredInput{Kind: tx.InputUTxO, Outpoint: e.utxo.Outpoint, Value: e.value}
	}
	return IgnoredInput{Kind: tx.InputLegacy, Legacy: e.legacy.Address, Value: e.value}
}
