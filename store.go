package sfs

import (
	"encoding/json"
	"fmt"
	"os"
)

// jsonStore factors out the one rule graph.go and user.go's persistence
// share: a filename prefixed "encrypted_" holds an AEAD-sealed JSON blob,
// anything else holds plain JSON (spec.md §4.1, §6). Both callers load once
// at construction and persist explicitly after every mutation — there is no
// write-behind or autosave.
type jsonStore struct {
	path      string
	encrypted bool
	crypto    *Crypto
}

func newJSONStore(path string, crypto *Crypto) *jsonStore {
	return &jsonStore{path: path, encrypted: IsEncrypted(path), crypto: crypto}
}

// load unmarshals the store's current contents into v. A missing file is
// not an error: callers treat it as an empty store and create it on first
// persist.
func (s *jsonStore) load(v any) error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}

	if s.encrypted {
		if s.crypto == nil {
			return fmt.Errorf("cannot load encrypted store %s: no crypto provider configured", s.path)
		}
		return s.crypto.DecryptJSON(s.path, v)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// persist marshals v and writes it to the store's path, sealing it first if
// the store is configured as encrypted.
func (s *jsonStore) persist(v any) error {
	if s.encrypted {
		if s.crypto == nil {
			return fmt.Errorf("cannot persist encrypted store %s: no crypto provider configured", s.path)
		}
		dir, filename := splitDirFile(s.path)
		return s.crypto.EncryptJSON(v, dir, filename)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", s.path, err)
	}
	return writeFileAtomic(s.path, data)
}

func splitDirFile(path string) (dir, filename string) {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i], path[i+1:]
		}
	}
	return ".", path
}
