package wallet

import (
	"bytes"
	"fmt"
	"slices"
	"sync"

	"github.com/Klingon-tech/klingnet-walletcore/internal/log"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/crypto"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
	"github.com/lightningnetwork/lnd/clock"
)

// DefaultUTXOKeys is the number of UTxO keys derived on recovery.
const DefaultUTXOKeys = 20

// AccountID is the account public key.
type AccountID [types.PublicKeySize]byte

// String returns the hex encoding.
func (id AccountID) String() string {
	return fmt.Sprintf("%x", id[:])
}

// utxoKey is one derived UTxO key and the addresses it controls.
type utxoKey struct {
	priv   *crypto.PrivateKey
	pub    [types.PublicKeySize]byte
	legacy types.LegacyAddress
}

// UTxO is an unspent output owned by one of the wallet's UTxO keys.
type UTxO struct {
	Outpoint types.Outpoint `json:"outpoint"`
	KeyIndex int            `json:"key_index"`
	Value    types.Value    `json:"value"`
}

// LegacyFund is a legacy declaration owned by one of the wallet's UTxO keys.
type LegacyFund struct {
	Address  types.LegacyAddress `json:"address"`
	KeyIndex int                 `json:"key_index"`
	Value    types.Value         `json:"value"`
}

// Wallet holds the recovered keys and the tracked state of one account.
// All methods are safe for concurrent use.
type Wallet struct {
	mu sync.RWMutex

	account    *crypto.PrivateKey
	accountPub [types.PublicKeySize]byte
	keys       []utxoKey
	utxoChain  *HDKey // public m/44'/8888'/account'/0, nil for imported keys
	clock      clock.Clock

	value   types.Value
	counter uint32
	utxos   []UTxO
	legacy  []LegacyFund
	pending []types.FragmentID
	total   types.Value
}

type options struct {
	utxoKeys int
	account  uint32
	clock    clock.Clock
}

// Option configures recovery.
type Option func(*options)

// WithUTXOKeys sets how many UTxO keys are derived.
func WithUTXOKeys(n int) Option {
	return func(o *options) { o.utxoKeys = n }
}

// WithAccountIndex selects the hardened BIP-44 account.
func WithAccountIndex(account uint32) Option {
	return func(o *options) { o.account = account }
}

// WithClock sets the clock used to check validity dates.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

func buildOptions(opts []Option) options {
	o := options{utxoKeys: DefaultUTXOKeys, clock: clock.NewDefaultClock()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.utxoKeys < 0 {
		o.utxoKeys = 0
	}
	return o
}

// Recover derives a wallet from a BIP-39 mnemonic and optional password.
// The account key is m/44'/8888'/account'/2/0 and UTxO key i is
// m/44'/8888'/account'/0/i.
func Recover(mnemonic string, password []byte, opts ...Option) (*Wallet, error) {
	o := buildOptions(opts)

	seed, err := SeedFromMnemonic(mnemonic, password)
	if err != nil {
		return nil, err
	}
	defer clear(seed)

	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	root, err := master.DeriveAccountRoot(o.account)
	if err != nil {
		return nil, err
	}

	acctHD, err := root.DerivePath(ChainAccount, 0)
	if err != nil {
		return nil, err
	}
	account, err := acctHD.Signer()
	if err != nil {
		return nil, err
	}

	chain, err := root.DeriveChild(ChainUTxO)
	if err != nil {
		return nil, err
	}
	keys := make([]*crypto.PrivateKey, 0, o.utxoKeys)
	for i := 0; i < o.utxoKeys; i++ {
		hd, err := chain.DeriveChild(uint32(i))
		if err != nil {
			return nil, err
		}
		k, err := hd.Signer()
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}

	w := newWallet(account, keys, o.clock)
	w.utxoChain = chain.Neuter()
	log.Wallet.Debug().
		Str("account", w.ID().String()).
		Int("utxo_keys", len(keys)).
		Msg("Wallet recovered")
	return w, nil
}

// ImportKeys builds a wallet from raw 32-byte secp256k1 scalars.
func ImportKeys(accountKey []byte, utxoKeys [][]byte, opts ...Option) (*Wallet, error) {
	o := buildOptions(opts)

	account, err := crypto.PrivateKeyFromBytes(accountKey)
	if err != nil {
		return nil, fmt.Errorf("%w: account key: %v", ErrInvalidKey, err)
	}
	keys := make([]*crypto.PrivateKey, 0, len(utxoKeys))
	for i, raw := range utxoKeys {
		k, err := crypto.PrivateKeyFromBytes(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: utxo key %d: %v", ErrInvalidKey, i, err)
		}
		keys = append(keys, k)
	}

	w := newWallet(account, keys, o.clock)
	log.Wallet.Debug().
		Str("account", w.ID().String()).
		Int("utxo_keys", len(keys)).
		Msg("Wallet imported")
	return w, nil
}

func newWallet(account *crypto.PrivateKey, keys []*crypto.PrivateKey, c clock.Clock) *Wallet {
	w := &Wallet{account: account, clock: c}
	copy(w.accountPub[:], account.PublicKey())
	w.keys = make([]utxoKey, len(keys))
	for i, k := range keys {
		pub := k.PublicKey()
		copy(w.keys[i].pub[:], pub)
		w.keys[i].priv = k
		w.keys[i].legacy = crypto.LegacyAddressFromPubKey(pub)
	}
	return w
}

// ID returns the account public key.
func (w *Wallet) ID() AccountID {
	return AccountID(w.accountPub)
}

// AccountAddress returns the account address for discrimination d.
func (w *Wallet) AccountAddress(d types.Discrimination) types.Address {
	return types.Address{Discrimination: d, Kind: types.KindAccount, Key: w.accountPub}
}

// UTxOAddress returns the single address of UTxO key i.
func (w *Wallet) UTxOAddress(d types.Discrimination, i int) (types.Address, error) {
	if i < 0 || i >= len(w.keys) {
		return types.Address{}, fmt.Errorf("%w: %d", ErrUnknownKeyIndex, i)
	}
	return types.Address{Discrimination: d, Kind: types.KindSingle, Key: w.keys[i].pub}, nil
}

// LegacyAddress returns the legacy address of UTxO key i.
func (w *Wallet) LegacyAddress(i int) (types.LegacyAddress, error) {
	if i < 0 || i >= len(w.keys) {
		return types.LegacyAddress{}, fmt.Errorf("%w: %d", ErrUnknownKeyIndex, i)
	}
	return w.keys[i].legacy, nil
}

// UTxOKeyCount returns the number of UTxO keys.
func (w *Wallet) UTxOKeyCount() int {
	return len(w.keys)
}

// TotalValue returns account value plus discovered UTxO and legacy value.
func (w *Wallet) TotalValue() types.Value {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.total
}

// AccountValue returns the account balance alone.
func (w *Wallet) AccountValue() types.Value {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.value
}

// SpendingCounter returns the account spending counter.
func (w *Wallet) SpendingCounter() uint32 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.counter
}

// UTxOs returns a copy of the discovered unspent outputs.
func (w *Wallet) UTxOs() []UTxO {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.utxos)
}

// LegacyFunds returns a copy of the discovered legacy declarations.
func (w *Wallet) LegacyFunds() []LegacyFund {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.legacy)
}

// SetState overwrites the account value and spending counter with values
// observed on chain. Pending transactions are dropped.
func (w *Wallet) SetState(value types.Value, counter uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.value = value
	w.counter = counter
	w.pending = nil
	w.recomputeTotal()

	log.Wallet.Debug().
		Str("account", AccountID(w.accountPub).String()).
		Uint64("value", uint64(value)).
		Uint32("counter", counter).
		Msg("Wallet state set")
}

// PendingTransactions returns the ids of fragments produced by this wallet
// and not yet confirmed, oldest first.
func (w *Wallet) PendingTransactions() []types.FragmentID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return slices.Clone(w.pending)
}

// ConfirmTransaction drops id from the pending list. Unknown ids are ignored.
func (w *Wallet) ConfirmTransaction(id types.FragmentID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = slices.DeleteFunc(w.pending, func(p types.FragmentID) bool { return p == id })
}

// recomputeTotal refreshes the cached total. Callers hold w.mu.
func (w *Wallet) recomputeTotal() {
	total := w.value
	for _, u := range w.utxos {
		total = total.SaturatingAdd(u.Value)
	}
	for _, l := range w.legacy {
		total = total.SaturatingAdd(l.Value)
	}
	w.total = total
}

// keyIndex returns the index of the UTxO key with public key pub, or -1.
func (w *Wallet) keyIndex(pub []byte) int {
	for i := range w.keys {
		if bytes.Equal(w.keys[i].pub[:], pub) {
			return i
		}
	}
	return -1
}

// legacyIndex returns the index of the UTxO key owning addr, or -1.
func (w *Wallet) legacyIndex(addr types.LegacyAddress) int {
	for i := range w.keys {
		if w.keys[i].legacy == addr {
			return i
		}
	}
	return -1
}
