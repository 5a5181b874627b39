package sfs

import "errors"

// CipherSuite identifies the AEAD construction the crypto provider uses.
type CipherSuite uint8

const (
	// CipherAES256GCM uses AES-256 with Galois/Counter Mode.
	CipherAES256GCM CipherSuite = iota
	// CipherChaCha20Poly1305 uses the ChaCha20 stream cipher with a Poly1305 MAC.
	CipherChaCha20Poly1305
)

// String returns the human-readable name of the cipher suite.
func (c CipherSuite) String() string {
	switch c {
	case CipherAES256GCM:
		return "aes-256-gcm"
	case CipherChaCha20Poly1305:
		return "chacha20-poly1305"
	default:
		return "unknown"
	}
}

// Argon2idParams controls Argon2id key derivation for PassphraseKeyProvider.
type Argon2idParams struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	SaltSize    int
	KeySize     int
}

// PBKDF2Params controls PBKDF2 key derivation for PassphraseKeyProvider.
type PBKDF2Params struct {
	Iterations int
	SaltSize   int
	KeySize    int
}

// KeyProvider supplies the process-wide symmetric key. Only FileKeyProvider
// is used on the live read/write path; PassphraseKeyProvider exists to
// provision a fernet.key file from an operator passphrase (see cmd/sfs-keygen).
type KeyProvider interface {
	// Key returns the raw symmetric key for the process lifetime.
	Key() ([]byte, error)
}

// Config describes how NewEngine wires the crypto provider to the on-disk
// storage root and the two JSON stores.
type Config struct {
	// Cipher suite used for both path-component and payload encryption.
	Cipher CipherSuite

	// KeyProvider supplies the process-wide key.
	KeyProvider KeyProvider

	// StorageRoot is the host directory backing the encrypted tree ("files/").
	StorageRoot string

	// PermissionsPath and UsersPath are the JSON store paths ("json/permissions.json", ...).
	// A filename prefix of "encrypted_" selects ciphertext persistence.
	PermissionsPath string
	UsersPath       string
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.KeyProvider == nil {
		return ErrNilKeyProvider
	}
	if c.Cipher != CipherAES256GCM && c.Cipher != CipherChaCha20Poly1305 {
		return ErrUnsupportedCipher
	}
	if c.StorageRoot == "" {
		return errors.New("storage root cannot be empty")
	}
	if c.PermissionsPath == "" || c.UsersPath == "" {
		return errors.New("permissions path and users path cannot be empty")
	}
	return nil
}
