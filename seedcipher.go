package fixauth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// errSeedCipher marks ciphertext that failed to authenticate, e.g. a
// tampered record or a rotated key. The orchestrator maps it to an
// authentication failure, never a crash.
var errSeedCipher = errors.New("seed cipher failure")

// seedCipher protects TOTP seeds at rest with AES-256-GCM. The stored form
// is base64(nonce || ciphertext); a fresh random nonce is used per
// encryption, so encrypting the same seed twice yields different output.
type seedCipher struct {
	aead cipher.AEAD
}

func newSeedCipher(key []byte) (*seedCipher, error) {
	if len(key) != 32 {
		return nil, errors.New("seed cipher key must be 32 bytes")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &seedCipher{aead: aead}, nil
}

func (c *seedCipher) Encrypt(plain string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *seedCipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errSeedCipher, err)
	}
	if len(raw) < c.aead.NonceSize() {
		return "", errSeedCipher
	}
	nonce, ciphertext := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errSeedCipher, err)
	}
	return string(plain), nil
}
