package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters for deriving the sealing key from the passphrase.
const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	keyLen       = 32
	saltLen      = 16
	gcmNonceSize = 12
)

// KeySealer encrypts provider API keys at rest. Each Seal derives a fresh
// key via scrypt from the configured passphrase and a random salt, then
// encrypts with AES-256-GCM. Output format: base64(salt || nonce || ciphertext).
type KeySealer struct {
	passphrase []byte
}

// NewKeySealer creates a sealer from the configured passphrase.
func NewKeySealer(passphrase string) (*KeySealer, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("encryption passphrase must not be empty")
	}
	return &KeySealer{passphrase: []byte(passphrase)}, nil
}

// Seal encrypts a plaintext credential for storage.
func (k *KeySealer) Seal(plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := k.cipherFor(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	blob := make([]byte, 0, saltLen+gcmNonceSize+len(sealed))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// Open decrypts a sealed credential. Tampering or a wrong passphrase fails
// the GCM tag check.
func (k *KeySealer) Open(sealed string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed credential: %w", err)
	}
	if len(blob) < saltLen+gcmNonceSize {
		return "", fmt.Errorf("sealed credential is truncated")
	}

	salt := blob[:saltLen]
	nonce := blob[saltLen : saltLen+gcmNonceSize]
	ciphertext := blob[saltLen+gcmNonceSize:]

	gcm, err := k.cipherFor(salt)
	if err != nil {
		return "", err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to open sealed credential: %w", err)
	}
	return string(plaintext), nil
}

// cipherFor derives the AES-GCM cipher for one salt.
func (k *KeySealer) cipherFor(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(k.passphrase, salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
