package keystore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Klingon-tech/klingnet-walletcore/internal/cipher"
)

const mnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ks, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return ks
}

func TestKeystore_CreateAndLoad(t *testing.T) {
	ks := testKeystore(t)
	meta := Metadata{Network: "testnet", Account: 2, UTXOKeys: 5}

	if err := ks.Create("mywallet", mnemonic, []byte("pw"), meta, cipher.FastParams()); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	got, gotMeta, err := ks.Load("mywallet", []byte("pw"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != mnemonic {
		t.Errorf("mnemonic = %q, want %q", got, mnemonic)
	}
	if gotMeta.Network != "testnet" || gotMeta.Account != 2 || gotMeta.UTXOKeys != 5 {
		t.Errorf("metadata = %+v", gotMeta)
	}
	if gotMeta.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	info, err := ks.Info("mywallet")
	if err != nil {
		t.Fatalf("Info() error: %v", err)
	}
	if info.UTXOKeys != 5 {
		t.Errorf("Info().UTXOKeys = %d, want 5", info.UTXOKeys)
	}
}

func TestKeystore_Errors(t *testing.T) {
	ks := testKeystore(t)
	if err := ks.Create("w", mnemonic, []byte("correct"), Metadata{}, cipher.FastParams()); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if err := ks.Create("w", mnemonic, []byte("x"), Metadata{}, cipher.FastParams()); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate Create() error = %v, want ErrExists", err)
	}
	if _, _, err := ks.Load("w", []byte("wrong")); !errors.Is(err, cipher.ErrInvalidPassword) {
		t.Errorf("Load(wrong) error = %v, want ErrInvalidPassword", err)
	}
	if _, _, err := ks.Load("missing", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrNotFound", err)
	}
	if err := ks.Create("../escape", mnemonic, nil, Metadata{}, cipher.FastParams()); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Create(../escape) error = %v, want ErrInvalidName", err)
	}
}

func TestKeystore_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	ks, _ := New(dir)
	ks.Create("perm", mnemonic, []byte("p"), Metadata{}, cipher.FastParams())

	info, err := os.Stat(filepath.Join(dir, "perm.wallet"))
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}
}

func TestKeystore_ListDelete(t *testing.T) {
	ks := testKeystore(t)
	for _, name := range []string{"beta", "alpha"} {
		if err := ks.Create(name, mnemonic, []byte("p"), Metadata{}, cipher.FastParams()); err != nil {
			t.Fatalf("Create(%s) error: %v", name, err)
		}
	}

	names, err := ks.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("List() = %v, want [alpha beta]", names)
	}

	if err := ks.Delete("alpha"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := ks.Delete("alpha"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	names, _ = ks.List()
	if len(names) != 1 {
		t.Errorf("List() after delete = %v", names)
	}
}
