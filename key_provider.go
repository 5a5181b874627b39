package sfs

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"os"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// FileKeyProvider loads the process-wide key from a fernet.key file: a
// base64-urlsafe encoded 32-byte key, stored as text, read once at
// construction. This is the only KeyProvider used on the live read/write
// path — spec.md §5 fixes one key for the process lifetime.
type FileKeyProvider struct {
	key []byte
}

// NewFileKeyProvider reads and decodes the key file at path.
func NewFileKeyProvider(path string) (*FileKeyProvider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %s: %w", path, err)
	}

	key, err := decodeKeyText(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode key file %s: %w", path, err)
	}

	if len(key) != 32 {
		return nil, &ValidationError{
			Field:   "key",
			Value:   len(key),
			Message: fmt.Sprintf("fernet.key must decode to 32 bytes, got %d", len(key)),
		}
	}

	return &FileKeyProvider{key: key}, nil
}

// Key returns the loaded key.
func (p *FileKeyProvider) Key() ([]byte, error) {
	if len(p.key) == 0 {
		return nil, ErrInvalidKey
	}
	return p.key, nil
}

// WriteKeyFile generates a fresh random 32-byte key and writes it,
// base64-urlsafe encoded, to path. Used by cmd/sfs-keygen to provision a
// new deployment.
func WriteKeyFile(path string) error {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}
	return os.WriteFile(path, []byte(encodeKeyText(key)), 0o600)
}

// PassphraseKeyProvider derives the process key from an operator passphrase
// instead of reading it directly from disk. It is used only to provision a
// fernet.key file (see cmd/sfs-keygen) — spec.md §4.1 treats the key as
// already materialized on the live path, so this type never appears there.
type PassphraseKeyProvider struct {
	passphrase   []byte
	useArgon2id  bool
	argon2Params Argon2idParams
	pbkdf2Params PBKDF2Params
	salt         []byte
}

// NewPassphraseKeyProviderArgon2id derives a key using Argon2id (recommended).
func NewPassphraseKeyProviderArgon2id(passphrase, salt []byte, params Argon2idParams) *PassphraseKeyProvider {
	if params.Memory == 0 {
		params.Memory = 64 * 1024
	}
	if params.Iterations == 0 {
		params.Iterations = 3
	}
	if params.Parallelism == 0 {
		params.Parallelism = 4
	}
	if params.KeySize == 0 {
		params.KeySize = 32
	}
	return &PassphraseKeyProvider{
		passphrase:   passphrase,
		useArgon2id:  true,
		argon2Params: params,
		salt:         salt,
	}
}

// NewPassphraseKeyProviderPBKDF2 derives a key using PBKDF2.
func NewPassphraseKeyProviderPBKDF2(passphrase, salt []byte, params PBKDF2Params) *PassphraseKeyProvider {
	if params.Iterations == 0 {
		params.Iterations = 200_000
	}
	if params.KeySize == 0 {
		params.KeySize = 32
	}
	return &PassphraseKeyProvider{
		passphrase:   passphrase,
		useArgon2id:  false,
		pbkdf2Params: params,
		salt:         salt,
	}
}

// Key derives and returns the key for the configured passphrase and salt.
func (p *PassphraseKeyProvider) Key() ([]byte, error) {
	if len(p.passphrase) == 0 {
		return nil, fmt.Errorf("passphrase cannot be empty")
	}
	if len(p.salt) == 0 {
		return nil, fmt.Errorf("salt cannot be empty")
	}

	if p.useArgon2id {
		return argon2.IDKey(
			p.passphrase,
			p.salt,
			p.argon2Params.Iterations,
			p.argon2Params.Memory,
			p.argon2Params.Parallelism,
			uint32(p.argon2Params.KeySize),
		), nil
	}

	var hashFn func() hash.Hash
	switch {
	case p.pbkdf2Params.KeySize == 64:
		hashFn = sha512.New
	default:
		hashFn = sha256.New
	}

	return pbkdf2.Key(p.passphrase, p.salt, p.pbkdf2Params.Iterations, p.pbkdf2Params.KeySize, hashFn), nil
}

// GenerateSalt returns a fresh random salt sized for the configured KDF.
func (p *PassphraseKeyProvider) GenerateSalt() ([]byte, error) {
	size := 32
	if p.useArgon2id && p.argon2Params.SaltSize > 0 {
		size = p.argon2Params.SaltSize
	} else if !p.useArgon2id && p.pbkdf2Params.SaltSize > 0 {
		size = p.pbkdf2Params.SaltSize
	}
	salt := make([]byte, size)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}
