// Package walletdb persists wallet state snapshots and chain settings.
package walletdb

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-walletcore/internal/log"
	"github.com/Klingon-tech/klingnet-walletcore/internal/storage"
	"github.com/Klingon-tech/klingnet-walletcore/internal/wallet"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/settings"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

// Key prefixes.
var (
	prefixState    = []byte("w/") // w/<account id> -> Record JSON
	prefixSettings = []byte("s/") // s/<block0 hash> -> settings.Init JSON
)

// ErrNotFound is returned when no record exists.
var ErrNotFound = errors.New("not found")

// Record is the persisted state of one account.
type Record struct {
	State  wallet.State `json:"state"`
	Block0 types.Hash   `json:"block0"`
}

// Store reads and writes records in a storage.DB.
type Store struct {
	states   *storage.PrefixDB
	settings *storage.PrefixDB
}

// NewStore creates a store backed by db.
func NewStore(db storage.DB) *Store {
	return &Store{
		states:   storage.NewPrefixDB(db, prefixState),
		settings: storage.NewPrefixDB(db, prefixSettings),
	}
}

// SaveState stores a wallet snapshot together with the block0 it was
// retrieved from.
func (s *Store) SaveState(id wallet.AccountID, st wallet.State, block0 types.Hash) error {
	data, err := json.Marshal(Record{State: st, Block0: block0})
	if err != nil {
		return fmt.Errorf("state marshal: %w", err)
	}
	if err := s.states.Put(id[:], data); err != nil {
		return fmt.Errorf("state put: %w", err)
	}
	log.Storage.Debug().Str("account", id.String()).Msg("Wallet state saved")
	return nil
}

// LoadState returns the record of an account.
func (s *Store) LoadState(id wallet.AccountID) (*Record, error) {
	data, err := s.states.Get(id[:])
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("state of %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("state get: %w", err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("state unmarshal: %w", err)
	}
	return &r, nil
}

// DeleteState removes the record of an account.
func (s *Store) DeleteState(id wallet.AccountID) error {
	if err := s.states.Delete(id[:]); err != nil {
		return fmt.Errorf("state delete: %w", err)
	}
	return nil
}

// Accounts lists the accounts that have a stored record.
func (s *Store) Accounts() ([]wallet.AccountID, error) {
	var ids []wallet.AccountID
	err := s.states.ForEach(nil, func(key, _ []byte) error {
		if len(key) != len(wallet.AccountID{}) {
			return nil
		}
		var id wallet.AccountID
		copy(id[:], key)
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return ids, nil
}

// SaveSettings stores chain settings keyed by their block0 hash.
func (s *Store) SaveSettings(st *settings.Settings) error {
	data, err := json.Marshal(st.Init())
	if err != nil {
		return fmt.Errorf("settings marshal: %w", err)
	}
	hash := st.Block0Hash()
	if err := s.settings.Put(hash[:], data); err != nil {
		return fmt.Errorf("settings put: %w", err)
	}
	return nil
}

// LoadSettings returns the settings of block0.
func (s *Store) LoadSettings(block0 types.Hash) (*settings.Settings, error) {
	data, err := s.settings.Get(block0[:])
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("settings of %s: %w", block0, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("settings get: %w", err)
	}
	var in settings.Init
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("settings unmarshal: %w", err)
	}
	return settings.New(in)
}
