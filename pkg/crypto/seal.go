package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
)

// SealKeySize is the length of an X25519 public or private key.
const SealKeySize = curve25519.PointSize

// SealOverhead is the number of bytes Seal adds to a plaintext.
const SealOverhead = SealKeySize + chacha20poly1305.Overhead

// ErrSealOpen is returned when a sealed box cannot be opened.
var ErrSealOpen = errors.New("sealed box: authentication failed")

// SealPublicKey derives the X25519 public key for a private scalar.
func SealPublicKey(priv []byte) ([]byte, error) {
	if len(priv) != SealKeySize {
		return nil, fmt.Errorf("seal key must be %d bytes, got %d", SealKeySize, len(priv))
	}
	return curve25519.X25519(priv, curve25519.Basepoint)
}

// Seal encrypts plaintext to an X25519 public key. The output is
// ephemeral_pub(32) | ciphertext+tag. A fresh ephemeral key per message
// allows a fixed zero nonce.
func Seal(recipient, plaintext []byte) ([]byte, error) {
	if len(recipient) != SealKeySize {
		return nil, fmt.Errorf("seal key must be %d bytes, got %d", SealKeySize, len(recipient))
	}
	ephPriv := make([]byte, SealKeySize)
	if _, err := rand.Read(ephPriv); err != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", err)
	}
	ephPub, err := curve25519.X25519(ephPriv, curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("ephemeral public key: %w", err)
	}
	shared, err := curve25519.X25519(ephPriv, recipient)
	if err != nil {
		return nil, fmt.Errorf("key agreement: %w", err)
	}

	aead, err := chacha20poly1305.New(sealKey(shared, ephPub, recipient))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)

	out := make([]byte, 0, SealOverhead+len(plaintext))
	out = append(out, ephPub...)
	return aead.Seal(out, nonce, plaintext, ephPub), nil
}

// Open decrypts a box produced by Seal with the recipient's private key.
func Open(priv, sealed []byte) ([]byte, error) {
	if len(priv) != SealKeySize {
		return nil, fmt.Errorf("seal key must be %d bytes, got %d", SealKeySize, len(priv))
	}
	if len(sealed) < SealOverhead {
		return nil, fmt.Errorf("sealed box too short: %d bytes", len(sealed))
	}
	ephPub := sealed[:SealKeySize]

	recipient, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("recipient public key: %w", err)
	}
	shared, err := curve25519.X25519(priv, ephPub)
	if err != nil {
		return nil, ErrSealOpen
	}

	aead, err := chacha20poly1305.New(sealKey(shared, ephPub, recipient))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	plaintext, err := aead.Open(nil, nonce, sealed[SealKeySize:], ephPub)
	if err != nil {
		return nil, ErrSealOpen
	}
	return plaintext, nil
}

func sealKey(shared, ephPub, recipient []byte) []byte {
	k := HashParts(shared, ephPub, recipient)
	return k[:]
}
