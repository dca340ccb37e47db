// Package walletcore is the handle-based boundary over the wallet core.
//
// Every object a caller holds is an opaque handle owned by a Core. Every
// operation returns a Result code; Success is zero. Byte slices passed in
// are copied, and byte slices returned belong to the caller.
package walletcore

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Klingon-tech/klingnet-walletcore/internal/cipher"
	"github.com/Klingon-tech/klingnet-walletcore/internal/handle"
	"github.com/Klingon-tech/klingnet-walletcore/internal/log"
	"github.com/Klingon-tech/klingnet-walletcore/internal/wallet"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/settings"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/tx"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/rs/zerolog"
)

// Handle types. The zero value of each is the null handle.
type (
	WalletHandle     handle.Handle
	SettingsHandle   handle.Handle
	ProposalHandle   handle.Handle
	ConversionHandle handle.Handle
)

// Core owns the wallets, settings, proposals and conversions created
// through it. It is safe for concurrent use; operations on one wallet are
// serialized by the wallet itself.
type Core struct {
	wallets     *handle.Registry[wallet.Wallet]
	settings    *handle.Registry[settings.Settings]
	proposals   *handle.Registry[wallet.Proposal]
	conversions *handle.Registry[wallet.Conversion]

	clock    clock.Clock
	utxoKeys int
	logger   zerolog.Logger
}

// Option configures a Core.
type Option func(*Core)

// WithClock sets the clock used for validity checks.
func WithClock(c clock.Clock) Option {
	return func(core *Core) { core.clock = c }
}

// WithUTXOKeys sets how many UTxO keys recovered wallets derive.
func WithUTXOKeys(n int) Option {
	return func(core *Core) { core.utxoKeys = n }
}

// WithLogger replaces the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(core *Core) { core.logger = l }
}

// New creates an empty Core.
func New(opts ...Option) *Core {
	c := &Core{
		wallets:     handle.NewRegistry[wallet.Wallet](),
		settings:    handle.NewRegistry[settings.Settings](),
		proposals:   handle.NewRegistry[wallet.Proposal](),
		conversions: handle.NewRegistry[wallet.Conversion](),
		clock:       clock.NewDefaultClock(),
		utxoKeys:    wallet.DefaultUTXOKeys,
		logger:      log.Handles,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default is the process-wide Core.
var Default = New()

// fail logs err and returns its code.
func (c *Core) fail(op string, err error) Result {
	code := CodeOf(err)
	ev := c.logger.Debug()
	if code == Internal {
		ev = c.logger.Error()
	}
	ev.Err(err).Str("op", op).Uint8("result", uint8(code)).Msg("Operation failed")
	return code
}

func (c *Core) walletOptions() []wallet.Option {
	return []wallet.Option{wallet.WithClock(c.clock), wallet.WithUTXOKeys(c.utxoKeys)}
}

func (c *Core) wallet(h WalletHandle) (*wallet.Wallet, error) {
	return c.wallets.Get(handle.Handle(h))
}

func (c *Core) settingsOf(h SettingsHandle) (*settings.Settings, error) {
	return c.settings.Get(handle.Handle(h))
}

// ---------------------------------------------------------------------------
// Wallet lifecycle
// ---------------------------------------------------------------------------

// Recover derives a wallet from a mnemonic and optional password.
func (c *Core) Recover(mnemonic string, password []byte) (WalletHandle, Result) {
	w, err := wallet.Recover(mnemonic, slices.Clone(password), c.walletOptions()...)
	if err != nil {
		return 0, c.fail("recover", err)
	}
	return WalletHandle(c.wallets.Insert(w)), Success
}

// ImportKeys builds a wallet from raw private keys.
func (c *Core) ImportKeys(accountKey []byte, utxoKeys [][]byte) (WalletHandle, Result) {
	keys := make([][]byte, len(utxoKeys))
	for i, k := range utxoKeys {
		keys[i] = slices.Clone(k)
	}
	w, err := wallet.ImportKeys(slices.Clone(accountKey), keys, wallet.WithClock(c.clock))
	if err != nil {
		return 0, c.fail("import_keys", err)
	}
	return WalletHandle(c.wallets.Insert(w)), Success
}

// RetrieveFunds scans block0 for the wallet's funds and returns a settings
// handle. Finding no funds is not an error here: the wallet then simply
// holds no value.
func (c *Core) RetrieveFunds(w WalletHandle, block0 []byte) (SettingsHandle, Result) {
	wal, err := c.wallet(w)
	if err != nil {
		return 0, c.fail("retrieve_funds", err)
	}
	s, err := wal.RetrieveFunds(slices.Clone(block0))
	if err != nil && !errors.Is(err, wallet.ErrNoFundsFound) {
		return 0, c.fail("retrieve_funds", err)
	}
	return SettingsHandle(c.settings.Insert(s)), Success
}

// TotalValue returns the wallet's value, or 0 for an invalid handle.
func (c *Core) TotalValue(w WalletHandle) uint64 {
	wal, err := c.wallet(w)
	if err != nil {
		c.fail("total_value", err)
		return 0
	}
	return uint64(wal.TotalValue())
}

// SpendingCounter returns the account spending counter.
func (c *Core) SpendingCounter(w WalletHandle) (uint32, Result) {
	wal, err := c.wallet(w)
	if err != nil {
		return 0, c.fail("spending_counter", err)
	}
	return wal.SpendingCounter(), Success
}

// WalletID returns the 33-byte account public key.
func (c *Core) WalletID(w WalletHandle) ([]byte, Result) {
	wal, err := c.wallet(w)
	if err != nil {
		return nil, c.fail("wallet_id", err)
	}
	id := wal.ID()
	return id[:], Success
}

// SetState overwrites the account value and spending counter.
func (c *Core) SetState(w WalletHandle, value uint64, counter uint32) Result {
	wal, err := c.wallet(w)
	if err != nil {
		return c.fail("set_state", err)
	}
	wal.SetState(types.Value(value), counter)
	return Success
}

// PendingTransactions returns the ids of unconfirmed fragments.
func (c *Core) PendingTransactions(w WalletHandle) ([]types.FragmentID, Result) {
	wal, err := c.wallet(w)
	if err != nil {
		return nil, c.fail("pending_transactions", err)
	}
	return wal.PendingTransactions(), Success
}

// ConfirmTransaction removes a 32-byte fragment id from the pending list.
func (c *Core) ConfirmTransaction(w WalletHandle, id []byte) Result {
	wal, err := c.wallet(w)
	if err != nil {
		return c.fail("confirm_transaction", err)
	}
	fid, err := types.BytesToHash(id)
	if err != nil {
		return c.fail("confirm_transaction", fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}
	wal.ConfirmTransaction(fid)
	return Success
}

// Vote casts choice on a proposal and returns the vote-cast fragment.
func (c *Core) Vote(w WalletHandle, s SettingsHandle, p ProposalHandle, choice uint8, validUntil types.BlockDate) ([]byte, Result) {
	wal, err := c.wallet(w)
	if err != nil {
		return nil, c.fail("vote", err)
	}
	st, err := c.settingsOf(s)
	if err != nil {
		return nil, c.fail("vote", err)
	}
	prop, err := c.proposals.Get(handle.Handle(p))
	if err != nil {
		return nil, c.fail("vote", err)
	}
	raw, err := wal.Vote(st, prop, choice, validUntil)
	if err != nil {
		return nil, c.fail("vote", err)
	}
	return raw, Success
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

// Convert moves the wallet's UTxO and legacy funds into its account.
func (c *Core) Convert(w WalletHandle, s SettingsHandle, validUntil types.BlockDate) (ConversionHandle, Result) {
	wal, err := c.wallet(w)
	if err != nil {
		return 0, c.fail("convert", err)
	}
	st, err := c.settingsOf(s)
	if err != nil {
		return 0, c.fail("convert", err)
	}
	conv, err := wal.Convert(st, validUntil)
	if err != nil {
		return 0, c.fail("convert", err)
	}
	return ConversionHandle(c.conversions.Insert(conv)), Success
}

func (c *Core) conversion(h ConversionHandle) (*wallet.Conversion, error) {
	return c.conversions.Get(handle.Handle(h))
}

// ConversionLen returns the number of transactions in a conversion.
func (c *Core) ConversionLen(h ConversionHandle) (int, Result) {
	conv, err := c.conversion(h)
	if err != nil {
		return 0, c.fail("conversion_len", err)
	}
	return conv.Len(), Success
}

// ConversionTransaction returns transaction i of a conversion.
func (c *Core) ConversionTransaction(h ConversionHandle, i int) ([]byte, Result) {
	conv, err := c.conversion(h)
	if err != nil {
		return nil, c.fail("conversion_transaction", err)
	}
	raw, err := conv.Transaction(i)
	if err != nil {
		return nil, c.fail("conversion_transaction", err)
	}
	return raw, Success
}

// ConversionIgnored returns the count and total value of funds left
// unconverted.
func (c *Core) ConversionIgnored(h ConversionHandle) (int, uint64, Result) {
	conv, err := c.conversion(h)
	if err != nil {
		return 0, 0, c.fail("conversion_ignored", err)
	}
	return len(conv.Ignored()), uint64(conv.IgnoredValue()), Success
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

// SettingsNew builds settings directly from their fields.
func (c *Core) SettingsNew(in settings.Init) (SettingsHandle, Result) {
	s, err := settings.New(in)
	if err != nil {
		return 0, c.fail("settings_new", err)
	}
	return SettingsHandle(c.settings.Insert(s)), Success
}

// SettingsFees returns the fee parameters.
func (c *Core) SettingsFees(h SettingsHandle) (tx.LinearFee, Result) {
	s, err := c.settingsOf(h)
	if err != nil {
		return tx.LinearFee{}, c.fail("settings_fees", err)
	}
	return s.Fees(), Success
}

// SettingsDiscrimination returns the address discrimination.
func (c *Core) SettingsDiscrimination(h SettingsHandle) (types.Discrimination, Result) {
	s, err := c.settingsOf(h)
	if err != nil {
		return 0, c.fail("settings_discrimination", err)
	}
	return s.Discrimination(), Success
}

// SettingsBlock0Hash returns the 32-byte block0 hash.
func (c *Core) SettingsBlock0Hash(h SettingsHandle) ([]byte, Result) {
	s, err := c.settingsOf(h)
	if err != nil {
		return nil, c.fail("settings_block0_hash", err)
	}
	return s.Block0Hash().Bytes(), Success
}

// BlockDateFromSystemTime converts unix seconds to a block date.
func (c *Core) BlockDateFromSystemTime(h SettingsHandle, unix int64) (types.BlockDate, Result) {
	s, err := c.settingsOf(h)
	if err != nil {
		return types.BlockDate{}, c.fail("block_date_from_system_time", err)
	}
	d, err := s.BlockDateAt(time.Unix(unix, 0))
	if err != nil {
		return types.BlockDate{}, c.fail("block_date_from_system_time", err)
	}
	return d, Success
}

// MaxExpirationDate returns the latest validity date accepted at unix.
func (c *Core) MaxExpirationDate(h SettingsHandle, unix int64) (types.BlockDate, Result) {
	s, err := c.settingsOf(h)
	if err != nil {
		return types.BlockDate{}, c.fail("max_expiration_date", err)
	}
	d, err := s.MaxExpirationDate(time.Unix(unix, 0))
	if err != nil {
		return types.BlockDate{}, c.fail("max_expiration_date", err)
	}
	return d, Success
}

// ---------------------------------------------------------------------------
// Proposals
// ---------------------------------------------------------------------------

// ProposalNewPublic describes a public proposal. votePlan is 32 bytes.
func (c *Core) ProposalNewPublic(votePlan []byte, index, options uint8) (ProposalHandle, Result) {
	plan, err := types.BytesToHash(votePlan)
	if err != nil {
		return 0, c.fail("proposal_new_public", fmt.Errorf("%w: vote plan: %v", ErrInvalidInput, err))
	}
	p, err := wallet.NewPublicProposal(plan, index, options)
	if err != nil {
		return 0, c.fail("proposal_new_public", err)
	}
	return ProposalHandle(c.proposals.Insert(p)), Success
}

// ProposalNewPrivate describes a private proposal. encryptionKey is the
// 32-byte key or its bech32 text form.
func (c *Core) ProposalNewPrivate(votePlan []byte, index, options uint8, encryptionKey []byte) (ProposalHandle, Result) {
	plan, err := types.BytesToHash(votePlan)
	if err != nil {
		return 0, c.fail("proposal_new_private", fmt.Errorf("%w: vote plan: %v", ErrInvalidInput, err))
	}
	key := slices.Clone(encryptionKey)
	if len(key) != 32 {
		if key, err = wallet.ParseVoteEncryptionKey(string(encryptionKey)); err != nil {
			return 0, c.fail("proposal_new_private", err)
		}
	}
	p, err := wallet.NewPrivateProposal(plan, index, options, key)
	if err != nil {
		return 0, c.fail("proposal_new_private", err)
	}
	return ProposalHandle(c.proposals.Insert(p)), Success
}

// ---------------------------------------------------------------------------
// Symmetric cipher
// ---------------------------------------------------------------------------

// SymmetricCipherDecrypt opens data encrypted under password.
func (c *Core) SymmetricCipherDecrypt(password, data []byte) ([]byte, Result) {
	plain, err := cipher.Decrypt(slices.Clone(data), slices.Clone(password))
	if err != nil {
		return nil, c.fail("symmetric_cipher_decrypt", err)
	}
	return plain, Success
}

// ---------------------------------------------------------------------------
// Release
// ---------------------------------------------------------------------------

// DeleteWallet releases a wallet. Null and released handles are ignored.
func (c *Core) DeleteWallet(h WalletHandle) { c.wallets.Release(handle.Handle(h)) }

// DeleteSettings releases settings.
func (c *Core) DeleteSettings(h SettingsHandle) { c.settings.Release(handle.Handle(h)) }

// DeleteProposal releases a proposal.
func (c *Core) DeleteProposal(h ProposalHandle) { c.proposals.Release(handle.Handle(h)) }

// DeleteConversion releases a conversion.
func (c *Core) DeleteConversion(h ConversionHandle) { c.conversions.Release(handle.Handle(h)) }

// Live returns the number of live wallets, settings, proposals and
// conversions.
func (c *Core) Live() (w, s, p, conv int) {
	return c.wallets.Len(), c.settings.Len(), c.proposals.Len(), c.conversions.Len()
}
