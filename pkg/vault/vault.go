// Package vault encrypts OAuth tokens at rest with AES-256-GCM.
//
// The vault is deliberately permissive: with no key configured it degrades to
// an identity transform (tokens stored in clear), and a ciphertext that fails
// to decrypt is returned unchanged so a corrupted or mis-keyed token behaves
// like an opaque invalid credential instead of crashing a poll cycle.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"io"

	"go.uber.org/zap"
)

type Vault struct {
	key []byte
	log *zap.Logger
}

// New builds a vault from a hex- or raw-encoded 32-byte key. An empty key is
// allowed but logged as a configuration warning.
func New(key string, log *zap.Logger) *Vault {
	v := &Vault{log: log}
	if key == "" {
		log.Warn("no encryption key configured, OAuth tokens will be stored in clear text")
		return v
	}

	if decoded, err := hex.DecodeString(key); err == nil && len(decoded) == 32 {
		v.key = decoded
		return v
	}
	if len(key) == 32 {
		v.key = []byte(key)
		return v
	}

	log.Warn("encryption key must be 32 bytes (raw or hex), falling back to clear-text storage")
	return v
}

// Enabled reports whether the vault actually encrypts.
func (v *Vault) Enabled() bool {
	return len(v.key) == 32
}

// Encrypt returns the hex-encoded AES-GCM ciphertext of plaintext, or the
// plaintext itself when no key is configured.
func (v *Vault) Encrypt(plaintext string) string {
	if !v.Enabled() || plaintext == "" {
		return plaintext
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		v.log.Error("vault cipher init failed", zap.Error(err))
		return plaintext
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		v.log.Error("vault GCM init failed", zap.Error(err))
		return plaintext
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		v.log.Error("vault nonce generation failed", zap.Error(err))
		return plaintext
	}

	// Nonce is prepended so Decrypt can recover it.
	return hex.EncodeToString(gcm.Seal(nonce, nonce, []byte(plaintext), nil))
}

// Decrypt reverses Encrypt. Any failure returns the input unchanged.
func (v *Vault) Decrypt(ciphertext string) string {
	if !v.Enabled() || ciphertext == "" {
		return ciphertext
	}

	raw, err := hex.DecodeString(ciphertext)
	if err != nil {
		return ciphertext
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		return ciphertext
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return ciphertext
	}
	if len(raw) < gcm.NonceSize() {
		return ciphertext
	}

	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return ciphertext
	}
	return string(plaintext)
}
