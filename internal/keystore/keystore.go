// Package keystore keeps password-encrypted wallet mnemonics on disk, one
// JSON file per wallet.
package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Klingon-tech/klingnet-walletcore/internal/cipher"
	"github.com/Klingon-tech/klingnet-walletcore/internal/log"
)

const (
	fileVersion = 1
	fileExt     = ".wallet"
)

// Keystore errors.
var (
	ErrExists      = errors.New("wallet already exists")
	ErrNotFound    = errors.New("wallet not found")
	ErrInvalidName = errors.New("invalid wallet name")
)

// Metadata is stored in the clear next to the encrypted mnemonic.
type Metadata struct {
	CreatedAt time.Time `json:"created_at"`
	Network   string    `json:"network"`
	Account   uint32    `json:"account"`
	UTXOKeys  int       `json:"utxo_keys"`
}

type keystoreFile struct {
	Version           int      `json:"version"`
	EncryptedMnemonic []byte   `json:"encrypted_mnemonic"`
	Metadata          Metadata `json:"metadata"`
}

// Keystore manages wallet files in one directory.
type Keystore struct {
	path string
}

// New opens the keystore at path, creating the directory if needed.
func New(path string) (*Keystore, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{path: path}, nil
}

func (ks *Keystore) walletPath(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(ks.path, name+fileExt), nil
}

// Create encrypts mnemonic under password and writes a new wallet file.
func (ks *Keystore) Create(name, mnemonic string, password []byte, meta Metadata, params cipher.Params) error {
	path, err := ks.walletPath(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %q", ErrExists, name)
	}

	encrypted, err := cipher.Encrypt([]byte(mnemonic), password, params)
	if err != nil {
		return fmt.Errorf("encrypt mnemonic: %w", err)
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	kf := keystoreFile{
		Version:           fileVersion,
		EncryptedMnemonic: encrypted,
		Metadata:          meta,
	}
	if err := writeFile(path, &kf); err != nil {
		return err
	}
	log.Keystore.Info().Str("wallet", name).Msg("Wallet created")
	return nil
}

// Load decrypts the mnemonic of a wallet.
func (ks *Keystore) Load(name string, password []byte) (string, Metadata, error) {
	kf, err := ks.read(name)
	if err != nil {
		return "", Metadata{}, err
	}
	plain, err := cipher.Decrypt(kf.EncryptedMnemonic, password)
	if err != nil {
		return "", Metadata{}, fmt.Errorf("decrypt wallet %q: %w", name, err)
	}
	return string(plain), kf.Metadata, nil
}

// Info returns a wallet's metadata without decrypting it.
func (ks *Keystore) Info(name string) (Metadata, error) {
	kf, err := ks.read(name)
	if err != nil {
		return Metadata{}, err
	}
	return kf.Metadata, nil
}

// List returns the wallet names in sorted order.
func (ks *Keystore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.path)
	if err != nil {
		return nil, fmt.Errorf("read keystore dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), fileExt); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// Delete removes a wallet file.
func (ks *Keystore) Delete(name string) error {
	path, err := ks.walletPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return fmt.Errorf("delete wallet: %w", err)
	}
	log.Keystore.Info().Str("wallet", name).Msg("Wallet deleted")
	return nil
}

func (ks *Keystore) read(name string) (*keystoreFile, error) {
	path, err := ks.walletPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read wallet: %w", err)
	}
	var kf keystoreFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse wallet: %w", err)
	}
	if kf.Version != fileVersion {
		return nil, fmt.Errorf("unsupported wallet version: %d", kf.Version)
	}
	return &kf, nil
}

func writeFile(path string, kf *keystoreFile) error {
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}
	return nil
}
