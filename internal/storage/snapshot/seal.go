package snapshot

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// sealMagic prefixes every sealed snapshot.
var sealMagic = []byte("KVDSEAL1")

// Argon2id parameters for passphrase key derivation.
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = chacha20poly1305.KeySize

	// SaltLength is the length of the per-snapshot salt.
	SaltLength = 16

	// MinPassphraseLength is the shortest accepted encryption passphrase.
	MinPassphraseLength = 8
)

var (
	// ErrPassphraseTooShort indicates the passphrase is below MinPassphraseLength.
	ErrPassphraseTooShort = errors.New("snapshot: passphrase too short")

	// ErrSealed indicates a sealed snapshot was read without a passphrase.
	ErrSealed = errors.New("snapshot: snapshot is sealed and no passphrase is configured")

	// ErrNotSealed indicates a plain snapshot was read while a passphrase is configured.
	ErrNotSealed = errors.New("snapshot: expected sealed snapshot")

	// ErrDecrypt indicates authentication of a sealed snapshot failed.
	ErrDecrypt = errors.New("snapshot: decryption failed")
)

// sealer encrypts snapshot text with a key derived from a passphrase.
//
// Layout: magic(8) | salt(16) | nonce(12) | ciphertext+tag.
// A fresh salt and nonce are drawn for every snapshot.
type sealer struct {
	passphrase []byte
}

func newSealer(passphrase string) (*sealer, error) {
	if len(passphrase) < MinPassphraseLength {
		return nil, ErrPassphraseTooShort
	}
	return &sealer{passphrase: []byte(passphrase)}, nil
}

func (s *sealer) deriveKey(salt []byte) []byte {
	return argon2.IDKey(s.passphrase, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
}

func (s *sealer) seal(plain []byte) ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("snapshot: generate salt: %w", err)
	}

	aead, err := chacha20poly1305.New(s.deriveKey(salt))
	if err != nil {
		return nil, fmt.Errorf("snapshot: init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("snapshot: generate nonce: %w", err)
	}

	out := make([]byte, 0, len(sealMagic)+len(salt)+len(nonce)+len(plain)+aead.Overhead())
	out = append(out, sealMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plain, sealMagic), nil
}

func (s *sealer) open(data []byte) ([]byte, error) {
	if !isSealed(data) {
		return nil, ErrNotSealed
	}
	rest := data[len(sealMagic):]
	if len(rest) < SaltLength+chacha20poly1305.NonceSize {
		return nil, ErrDecrypt
	}
	salt := rest[:SaltLength]
	nonce := rest[SaltLength : SaltLength+chacha20poly1305.NonceSize]
	ciphertext := rest[SaltLength+chacha20poly1305.NonceSize:]

	aead, err := chacha20poly1305.New(s.deriveKey(salt))
	if err != nil {
		return nil, fmt.Errorf("snapshot: init cipher: %w", err)
	}

	plain, err := aead.Open(nil, nonce, ciphertext, sealMagic)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}

func isSealed(data []byte) bool {
	return bytes.HasPrefix(data, sealMagic)
}
