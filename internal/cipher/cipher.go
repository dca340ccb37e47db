// Package cipher encrypts small secrets under a password with Argon2id and
// XChaCha20-Poly1305.
package cipher

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Format: protocol(1) | salt(32) | memory(4) | iterations(4) | parallelism(1) | nonce(24) | ciphertext
const (
	Protocol   = 0x01
	SaltSize   = 32
	headerSize = 1 + SaltSize + 4 + 4 + 1
	minSize    = headerSize + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead
)

// Upper bounds on header-supplied Argon2id cost.
const (
	MaxMemory      = 256 * 1024 // KiB
	MaxIterations  = 16
	MaxParallelism = 16
)

// Cipher errors.
var (
	ErrMalformed       = errors.New("malformed encrypted data")
	ErrInvalidPassword = errors.New("invalid password")
	ErrEmpty           = errors.New("nothing to encrypt")
)

// Params holds Argon2id parameters.
type Params struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
}

// DefaultParams returns the Argon2id parameters used for keystores.
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024, // 64 MB
		Iterations:  3,
		Parallelism: 4,
	}
}

// FastParams are cheap parameters for tests and throwaway data.
func FastParams() Params {
	return Params{Memory: 64, Iterations: 1, Parallelism: 1}
}

func (p Params) valid() bool {
	return p.Memory > 0 && p.Memory <= MaxMemory &&
		p.Iterations > 0 && p.Iterations <= MaxIterations &&
		p.Parallelism > 0 && p.Parallelism <= MaxParallelism
}

func deriveKey(password, salt []byte, p Params) []byte {
	return argon2.IDKey(password, salt, p.Iterations, p.Memory, p.Parallelism, chacha20poly1305.KeySize)
}

// Encrypt seals data under password.
func Encrypt(data, password []byte, params Params) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if !params.valid() {
		return nil, fmt.Errorf("invalid argon2 parameters %+v", params)
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	key := deriveKey(password, salt, params)
	defer clear(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, headerSize+len(nonce)+len(data)+aead.Overhead())
	out = append(out, Protocol)
	out = append(out, salt...)
	out = binary.LittleEndian.AppendUint32(out, params.Memory)
	out = binary.LittleEndian.AppendUint32(out, params.Iterations)
	out = append(out, params.Parallelism)
	out = append(out, nonce...)
	header := append([]byte(nil), out[:headerSize]...)
	return aead.Seal(out, nonce, data, header), nil
}

// Decrypt opens data produced by Encrypt.
func Decrypt(encrypted, password []byte) ([]byte, error) {
	if len(encrypted) < minSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformed, len(encrypted), minSize)
	}
	if encrypted[0] != Protocol {
		return nil, fmt.Errorf("%w: unknown protocol %d", ErrMalformed, encrypted[0])
	}

	header := encrypted[:headerSize]
	salt := header[1 : 1+SaltSize]
	params := Params{
		Memory:      binary.LittleEndian.Uint32(header[1+SaltSize:]),
		Iterations:  binary.LittleEndian.Uint32(header[1+SaltSize+4:]),
		Parallelism: header[1+SaltSize+8],
	}
	if !params.valid() {
		return nil, fmt.Errorf("%w: argon2 parameters %+v", ErrMalformed, params)
	}
	nonce := encrypted[headerSize : headerSize+chacha20poly1305.NonceSizeX]
	ciphertext := encrypted[headerSize+chacha20poly1305.NonceSizeX:]

	key := deriveKey(password, salt, params)
	defer clear(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, header)
	if err != nil {
		return nil, ErrInvalidPassword
	}
	return plaintext, nil
}
