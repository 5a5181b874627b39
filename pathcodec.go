package sfs

import (
	"strings"
	"sync"
)

// encodeComponent seals one plaintext path component (a single directory or
// file name, never a full path) into an opaque on-disk name. Two calls on
// the same plaintext produce different names, by design (doc.go) — so this
// is a one-way operation; recovering the plaintext for an on-disk name
// requires trying to decrypt it, not looking it up.
func encodeComponent(crypto *Crypto, plaintext string) (string, error) {
	token, err := crypto.EncryptBytes([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return encodeComponentToken(token), nil
}

// decodeComponent attempts to recover the plaintext name behind one on-disk
// entry name. ok is false if name isn't validly-framed base64 or doesn't
// authenticate under the process key — the caller treats that as "not one
// of ours" and moves on to the next entry, never as an error (spec.md §4.2,
// §9): a directory can legitimately hold entries belonging to encodings we
// can't open standalone, though in this system every on-disk entry is
// produced by this same process and key, so a failure here normally means
// the entry is unrelated debris, not another tenant's ciphertext.
func decodeComponent(crypto *Crypto, name string) (string, bool) {
	token, err := decodeComponentToken(name)
	if err != nil {
		return "", false
	}
	plaintext, err := crypto.DecryptBytes(token)
	if err != nil {
		return "", false
	}
	return string(plaintext), true
}

// splitLogicalPath breaks a logical slash-separated path into its plaintext
// components, dropping empty segments so "/a//b/" and "a/b" agree.
func splitLogicalPath(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// nameCache remembers, for the lifetime of its Store, the most recent
// on-disk path resolved for a logical path, keyed by that logical path.
// It exists purely to avoid re-walking and re-trial-decrypting directories
// already resolved; it is never authoritative (FindPath re-walks when a
// cached on-disk path no longer exists), and a rename, removal, or MakePath
// invalidates the entries at and beneath the affected logical path.
type nameCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newNameCache() *nameCache {
	return &nameCache{entries: make(map[string]string)}
}

func (c *nameCache) get(logicalPath string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[logicalPath]
	return v, ok
}

func (c *nameCache) put(logicalPath, encodedName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[logicalPath] = encodedName
}

// invalidate drops every cached entry at or beneath logicalPath, since a
// rename or removal there can change the on-disk encoding of every
// descendant's parent chain.
func (c *nameCache) invalidate(logicalPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k == logicalPath || strings.HasPrefix(k, logicalPath+"/") {
			delete(c.entries, k)
		}
	}
}
