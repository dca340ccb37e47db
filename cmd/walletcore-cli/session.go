package main

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-walletcore/internal/keystore"
	"github.com/Klingon-tech/klingnet-walletcore/internal/log"
	"github.com/Klingon-tech/klingnet-walletcore/internal/storage"
	"github.com/Klingon-tech/klingnet-walletcore/internal/wallet"
	"github.com/Klingon-tech/klingnet-walletcore/internal/walletdb"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/settings"
)

// session is an unlocked wallet with its state store open.
type session struct {
	name   string
	meta   keystore.Metadata
	wallet *wallet.Wallet
	db     *storage.BadgerDB
	store  *walletdb.Store

	// block0 settings of the last funds retrieval, nil if never retrieved.
	settings *settings.Settings
}

func openKeystore() (*keystore.Keystore, error) {
	return keystore.New(cfg.KeystoreDir())
}

// unlock prompts for the password of name, recovers the wallet and restores
// its saved state.
func unlock(name string) (*session, error) {
	if name == "" {
		return nil, errors.New("--name is required")
	}
	ks, err := openKeystore()
	if err != nil {
		return nil, err
	}
	password, err := readPassword(fmt.Sprintf("Password for %s: ", name))
	if err != nil {
		return nil, err
	}
	defer clear(password)

	mnemonic, meta, err := ks.Load(name, password)
	if err != nil {
		return nil, err
	}
	if meta.Network != "" && meta.Network != string(cfg.Network) {
		return nil, fmt.Errorf("wallet %s belongs to %s, not %s", name, meta.Network, cfg.Network)
	}
	w, err := wallet.Recover(mnemonic, nil,
		wallet.WithUTXOKeys(meta.UTXOKeys),
		wallet.WithAccountIndex(meta.Account),
		wallet.WithClock(walletClock))
	if err != nil {
		return nil, err
	}

	db, err := storage.NewBadger(cfg.StateDir())
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	s := &session{
		name:   name,
		meta:   meta,
		wallet: w,
		db:     db,
		store:  walletdb.NewStore(db),
	}
	if err := s.restore(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) restore() error {
	rec, err := s.store.LoadState(s.wallet.ID())
	if errors.Is(err, walletdb.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.wallet.Restore(rec.State); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	st, err := s.store.LoadSettings(rec.Block0)
	if err != nil && !errors.Is(err, walletdb.ErrNotFound) {
		return err
	}
	s.settings = st
	return nil
}

// requireSettings fails when funds were never retrieved for this wallet.
func (s *session) requireSettings() (*settings.Settings, error) {
	if s.settings == nil {
		return nil, fmt.Errorf("no block0 known for %s: run 'wallet funds' first", s.name)
	}
	return s.settings, nil
}

// save persists the wallet state, and the settings when they are known.
func (s *session) save() error {
	if s.settings == nil {
		return nil
	}
	if err := s.store.SaveSettings(s.settings); err != nil {
		return err
	}
	return s.store.SaveState(s.wallet.ID(), s.wallet.State(), s.settings.Block0Hash())
}

func (s *session) Close() {
	if err := s.db.Close(); err != nil {
		logger := log.WithComponent("session")
		logger.Warn().Err(err).Str("wallet", s.name).Msg("Closing state store")
	}
}
