package wallet

import (
	"fmt"
	"math"

	"github.com/Klingon-tech/klingnet-walletcore/internal/log"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/fragment"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/settings"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/tx"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

// Vote casts choice on proposal and returns the signed vote-cast fragment.
// The fee is paid from the account. On success the spending counter is
// incremented, the fee is debited and the fragment id becomes pending; on
// error the wallet is unchanged.
func (w *Wallet) Vote(s *settings.Settings, p *Proposal, choice uint8, validUntil types.BlockDate) ([]byte, error) {
	if choice >= p.Options() {
		return nil, fmt.Errorf("%w: choice %d, proposal has %d options", ErrInvalidVoteOption, choice, p.Options())
	}
	if err := s.ValidateValidUntil(w.clock.Now(), validUntil); err != nil {
		return nil, err
	}

	cert, err := p.voteCast(choice)
	if err != nil {
		return nil, err
	}
	payload, err := cert.Encode()
	if err != nil {
		return nil, err
	}
	fee := s.Fees().Calculate(1, 0, tx.CertVoteCast)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.value < fee {
		return nil, fmt.Errorf("%w: have %s, vote fee %s", ErrInsufficientFunds, w.value, fee)
	}
	if w.counter == math.MaxUint32 {
		return nil, ErrCounterExhausted
	}

	b := tx.NewBuilder(validUntil).
		SetPayload(payload).
		AddAccountInput(w.accountPub, fee)
	if err := b.Sign(s.Block0Hash(), w.counter, w.account); err != nil {
		return nil, fmt.Errorf("sign vote: %w", err)
	}
	t, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build vote: %w", err)
	}
	frag, err := fragment.NewVoteCast(t)
	if err != nil {
		return nil, err
	}
	raw, err := frag.Encode()
	if err != nil {
		return nil, err
	}
	id, err := frag.ID()
	if err != nil {
		return nil, err
	}

	w.counter++
	w.value -= fee
	w.pending = append(w.pending, id)
	w.recomputeTotal()

	log.Wallet.Debug().
		Str("account", AccountID(w.accountPub).String()).
		Str("fragment", id.String()).
		Uint8("proposal", p.Index()).
		Str("payload", p.PayloadType().String()).
		Uint64("fee", uint64(fee)).
		Msg("Vote cast")
	return raw, nil
}
