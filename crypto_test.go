package sfs

import (
	"bytes"
	"path/filepath"
	"testing"
)

type fixedKeyProvider struct {
	key []byte
}

func (p fixedKeyProvider) Key() ([]byte, error) {
	return p.key, nil
}

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func newTestCrypto(t *testing.T, cipher CipherSuite) *Crypto {
	t.Helper()
	crypto, err := NewCrypto(cipher, fixedKeyProvider{key: testKey()})
	if err != nil {
		t.Fatalf("NewCrypto failed: %v", err)
	}
	return crypto
}

func TestCrypto_EncryptDecryptRoundTrip(t *testing.T) {
	for _, cipher := range []CipherSuite{CipherAES256GCM, CipherChaCha20Poly1305} {
		t.Run(cipher.String(), func(t *testing.T) {
			crypto := newTestCrypto(t, cipher)

			plaintext := []byte("hello, world")
			token, err := crypto.EncryptBytes(plaintext)
			if err != nil {
				t.Fatalf("EncryptBytes failed: %v", err)
			}

			decrypted, err := crypto.DecryptBytes(token)
			if err != nil {
				t.Fatalf("DecryptBytes failed: %v", err)
			}
			if !bytes.Equal(decrypted, plaintext) {
				t.Fatalf("round trip mismatch: got %q, want %q", decrypted, plaintext)
			}
		})
	}
}

func TestCrypto_EncryptBytesIsNonDeterministic(t *testing.T) {
	crypto := newTestCrypto(t, CipherAES256GCM)

	plaintext := []byte("same input twice")
	a, err := crypto.EncryptBytes(plaintext)
	if err != nil {
		t.Fatalf("EncryptBytes failed: %v", err)
	}
	b, err := crypto.EncryptBytes(plaintext)
	if err != nil {
		t.Fatalf("EncryptBytes failed: %v", err)
	}

	if bytes.Equal(a, b) {
		t.Fatal("two encryptions of identical plaintext produced identical tokens")
	}
}

func TestCrypto_DecryptBytesRejectsTamperedToken(t *testing.T) {
	crypto := newTestCrypto(t, CipherAES256GCM)

	token, err := crypto.EncryptBytes([]byte("payload"))
	if err != nil {
		t.Fatalf("EncryptBytes failed: %v", err)
	}
	token[len(token)-1] ^= 0xFF

	if _, err := crypto.DecryptBytes(token); err == nil {
		t.Fatal("expected DecryptBytes to reject a tampered token")
	}
}

func TestCrypto_DecryptBytesRejectsUnderDifferentKey(t *testing.T) {
	crypto := newTestCrypto(t, CipherAES256GCM)
	otherKey := testKey()
	otherKey[0] ^= 0xFF
	other, err := NewCrypto(CipherAES256GCM, fixedKeyProvider{key: otherKey})
	if err != nil {
		t.Fatalf("NewCrypto failed: %v", err)
	}

	token, err := crypto.EncryptBytes([]byte("payload"))
	if err != nil {
		t.Fatalf("EncryptBytes failed: %v", err)
	}

	if _, err := other.DecryptBytes(token); err == nil {
		t.Fatal("expected DecryptBytes under a different key to fail")
	}
}

func TestCrypto_EncryptJSONDecryptJSONRoundTrip(t *testing.T) {
	crypto := newTestCrypto(t, CipherAES256GCM)
	dir := t.TempDir()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	want := []payload{{Name: "alice", Count: 1}, {Name: "bob", Count: 2}}

	if err := crypto.EncryptJSON(want, dir, "store.json"); err != nil {
		t.Fatalf("EncryptJSON failed: %v", err)
	}

	var got []payload
	if err := crypto.DecryptJSON(filepath.Join(dir, "encrypted_store.json"), &got); err != nil {
		t.Fatalf("DecryptJSON failed: %v", err)
	}

	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestCrypto_EncryptJSONStripsExistingPrefix(t *testing.T) {
	crypto := newTestCrypto(t, CipherAES256GCM)
	dir := t.TempDir()

	if err := crypto.EncryptJSON([]int{1, 2, 3}, dir, "encrypted_data.json"); err != nil {
		t.Fatalf("EncryptJSON failed: %v", err)
	}

	var got []int
	if err := crypto.DecryptJSON(filepath.Join(dir, "encrypted_data.json"), &got); err != nil {
		t.Fatalf("DecryptJSON failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("unexpected result: %v", got)
	}
}

func TestIsEncrypted(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"json/permissions.json", false},
		{"json/encrypted_permissions.json", true},
		{"encrypted_users.json", true},
	}
	for _, tc := range tests {
		if got := IsEncrypted(tc.path); got != tc.want {
			t.Errorf("IsEncrypted(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}
