// Package vault seals and opens provider credential material. Plaintext
// credentials exist only for the duration of a charge call; the sealed
// form is what provider rows persist.
package vault

import (
	"crypto/rand"

	kerrors "kopa/internal/errors"

	"golang.org/x/crypto/chacha20poly1305"
)

// Vault holds the process-wide sealing key.
type Vault struct {
	key []byte
}

// New builds a vault from a 32-byte key.
func New(key []byte) (*Vault, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, kerrors.ErrCredentialDecryption
	}
	return &Vault{key: key}, nil
}

// Seal encrypts plaintext credential material. The nonce is prepended to
// the ciphertext.
func (v *Vault) Seal(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(v.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts sealed credential material. Any tampering or key mismatch
// surfaces as a decryption fault.
func (v *Vault) Open(ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(v.key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < aead.NonceSize() {
		return nil, kerrors.ErrCredentialDecryption
	}
	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, kerrors.ErrCredentialDecryption
	}
	return plaintext, nil
}
