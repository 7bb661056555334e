// Package crypto seals connection profiles and storage credentials at rest.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
)

// Encryptor provides AES-256-GCM encryption. Ciphertexts are bound to an
// owner id through the GCM additional data, so a sealed value copied onto
// another row fails to open.
type Encryptor struct {
	gcm cipher.AEAD
}

// NewEncryptor creates an Encryptor from a hex-encoded 32-byte key.
func NewEncryptor(hexKey string) (*Encryptor, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return &Encryptor{gcm: gcm}, nil
}

// Encrypt seals plaintext for owner and returns hex-encoded nonce||ciphertext.
func (e *Encryptor) Encrypt(plaintext []byte, owner string) (string, error) {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return hex.EncodeToString(e.gcm.Seal(nonce, nonce, plaintext, []byte(owner))), nil
}

// Decrypt opens a value produced by Encrypt for the same owner.
func (e *Encryptor) Decrypt(sealed, owner string) ([]byte, error) {
	raw, err := hex.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	n := e.gcm.NonceSize()
	if len(raw) < n {
		return nil, fmt.Errorf("ciphertext too short")
	}
	plaintext, err := e.gcm.Open(nil, raw[:n], raw[n:], []byte(owner))
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

// SealJSON marshals v and encrypts it for owner.
func (e *Encryptor) SealJSON(v map[string]any, owner string) (string, error) {
	if v == nil {
		v = map[string]any{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal sealed config: %w", err)
	}
	return e.Encrypt(b, owner)
}

// OpenJSON decrypts a value produced by SealJSON.
func (e *Encryptor) OpenJSON(sealed, owner string) (map[string]any, error) {
	b, err := e.Decrypt(sealed, owner)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("unmarshal sealed config: %w", err)
	}
	return out, nil
}
