package sfs

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Crypto is the process-wide authenticated-encryption provider: one
// CipherEngine built from one key, for the process lifetime (spec.md
// §4.1, §5, §9). It is a plain value, never a package-level singleton —
// callers construct one and thread it explicitly into the Store and both
// stores.
type Crypto struct {
	engine CipherEngine
	cipher CipherSuite
}

// NewCrypto builds a Crypto from a KeyProvider and cipher suite.
func NewCrypto(cipher CipherSuite, provider KeyProvider) (*Crypto, error) {
	if provider == nil {
		return nil, ErrNilKeyProvider
	}

	key, err := provider.Key()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain key: %w", err)
	}

	engine, err := NewCipherEngine(cipher, key)
	if err != nil {
		return nil, fmt.Errorf("failed to build cipher engine: %w", err)
	}

	return &Crypto{engine: engine, cipher: cipher}, nil
}

// EncryptBytes seals plaintext under a fresh random nonce and frames
// nonce||ciphertext into one opaque token. Two calls on identical input
// produce distinct tokens with overwhelming probability (spec.md §8).
func (c *Crypto) EncryptBytes(plaintext []byte) ([]byte, error) {
	nonce, err := GenerateNonce(c.cipher)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext, err := c.engine.Encrypt(nonce, plaintext)
	if err != nil {
		return nil, NewEncryptionError("encrypt", "", err)
	}

	token := make([]byte, 0, len(nonce)+len(ciphertext))
	token = append(token, nonce...)
	token = append(token, ciphertext...)
	return token, nil
}

// DecryptBytes splits a token produced by EncryptBytes and opens it.
// Any failure — truncated framing or AEAD authentication failure — is
// reported as the same outcome: a token that does not decrypt under this
// key is indistinguishable from corrupted data (spec.md §4.1).
func (c *Crypto) DecryptBytes(token []byte) ([]byte, error) {
	nonceSize := c.engine.NonceSize()
	if len(token) < nonceSize+c.engine.Overhead() {
		return nil, ErrInvalidToken
	}

	nonce, ciphertext := token[:nonceSize], token[nonceSize:]

	plaintext, err := c.engine.Decrypt(nonce, ciphertext)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}

// EncryptJSON canonically serializes v, encrypts it, and writes it
// atomically to dir/encrypted_<filename>, stripping any pre-existing
// "encrypted_" prefix from filename first so a double-encrypt never
// doubles the marker (spec.md §4.1).
func (c *Crypto) EncryptJSON(v any, dir, filename string) error {
	if err := ValidateFilePath(filename); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal json: %w", err)
	}

	token, err := c.EncryptBytes(data)
	if err != nil {
		return err
	}

	base := strings.TrimPrefix(filename, encryptedPrefix)
	finalPath := filepath.Join(dir, encryptedPrefix+base)

	return writeFileAtomic(finalPath, token)
}

// DecryptJSON reads, decrypts, and unmarshals the store at path into v.
func (c *Crypto) DecryptJSON(path string, v any) error {
	if err := ValidateFilePath(path); err != nil {
		return err
	}

	token, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	plaintext, err := c.DecryptBytes(token)
	if err != nil {
		return NewCryptoInvalidError(path, err)
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("failed to unmarshal json from %s: %w", path, err)
	}
	return nil
}

// encryptedPrefix marks a store file as holding ciphertext rather than
// plain JSON (spec.md §4.1, §6). It never governs individual on-disk path
// component names — those are always encrypted without the marker.
const encryptedPrefix = "encrypted_"

// IsEncrypted reports whether path's final component carries the
// encrypted_ marker.
func IsEncrypted(path string) bool {
	return strings.HasPrefix(filepath.Base(path), encryptedPrefix)
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", tmp, path, err)
	}
	return nil
}

func encodeKeyText(key []byte) string {
	return base64.URLEncoding.EncodeToString(key)
}

func decodeKeyText(text string) ([]byte, error) {
	return base64.URLEncoding.DecodeString(text)
}

func encodeComponentToken(token []byte) string {
	return base64.RawURLEncoding.EncodeToString(token)
}

func decodeComponentToken(encoded string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(encoded)
}
