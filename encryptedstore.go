package sfs

import (
	"io"
	"os"
	"path"
	"strings"

	"github.com/absfs/absfs"
)

// Store maps plaintext logical paths onto an on-disk tree whose directory
// and file names are themselves ciphertext. Because every component is
// sealed under a fresh random nonce (doc.go), two entries holding the same
// plaintext name never look alike on disk, so there is no hash or index to
// look a path up in — resolution only ever works by trial-decrypting every
// entry of a directory in turn and recursing into whichever one opens
// (encryptedstore.go, pathcodec.go), exactly as original_source/fileio.go's
// findPath/makePath do. This means directory shape still leaks fan-out and
// depth (doc.go's "not protected against" list): that's an accepted
// trade-off of confidential names, not an oversight.
type Store struct {
	fs     absfs.FileSystem
	crypto *Crypto
	cache  *nameCache
}

// NewStore builds a Store over fs, sealing and opening every on-disk name
// and file body with crypto.
func NewStore(fs absfs.FileSystem, crypto *Crypto) *Store {
	return &Store{fs: fs, crypto: crypto, cache: newNameCache()}
}

// listEncodedEntries lists the raw (still-encrypted) entry names of the
// on-disk directory at dirPath.
func (s *Store) listEncodedEntries(dirPath string) ([]string, error) {
	f, err := s.fs.Open(dirPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.Readdirnames(-1)
}

// findChild trial-decrypts every entry of the on-disk directory dirPath,
// looking for one whose plaintext equals want. Entries that don't decrypt
// (pathcodec.go's decodeComponent) are silently skipped — they are not an
// error, just not a match. If more than one entry happens to decrypt to the
// same plaintext (possible only if something outside this process wrote
// into the storage root), the first one encountered wins.
func (s *Store) findChild(dirPath, want string) (onDiskName string, found bool, err error) {
	entries, err := s.listEncodedEntries(dirPath)
	if err != nil {
		return "", false, err
	}
	for _, e := range entries {
		plain, ok := decodeComponent(s.crypto, e)
		if ok && plain == want {
			return e, true, nil
		}
	}
	return "", false, nil
}

// FindPath resolves a plaintext logical path to its on-disk path by
// trial-decrypting one directory level at a time from the storage root. It
// returns a NotFoundError the moment any component fails to resolve.
func (s *Store) FindPath(logicalPath string) (string, error) {
	if cached, ok := s.cache.get(logicalPath); ok {
		if _, err := s.fs.Stat(cached); err == nil {
			return cached, nil
		}
		s.cache.invalidate(logicalPath)
	}

	components := splitLogicalPath(logicalPath)
	cur := "/"
	for _, comp := range components {
		child, found, err := s.findChild(cur, comp)
		if err != nil || !found {
			return "", NewNotFoundError(logicalPath)
		}
		cur = path.Join(cur, child)
	}

	s.cache.put(logicalPath, cur)
	return cur, nil
}

// MakePath resolves logicalPath like FindPath, but creates any missing
// directory components along the way instead of failing. If isFile is
// true, the final component is not created — MakePath only mints its
// on-disk name and returns it, leaving actual file creation to the caller
// (mirroring original_source/fileio.go's makePath).
func (s *Store) MakePath(logicalPath string, isFile bool) (string, error) {
	components := splitLogicalPath(logicalPath)
	cur := "/"
	for i, comp := range components {
		last := i == len(components)-1

		if last && isFile {
			encoded, err := encodeComponent(s.crypto, comp)
			if err != nil {
				return "", err
			}
			return path.Join(cur, encoded), nil
		}

		child, found, err := s.findChild(cur, comp)
		if err != nil {
			return "", err
		}
		if !found {
			encoded, err := encodeComponent(s.crypto, comp)
			if err != nil {
				return "", err
			}
			newDir := path.Join(cur, encoded)
			if err := s.fs.Mkdir(newDir, 0o755); err != nil {
				return "", err
			}
			child = encoded
		}
		cur = path.Join(cur, child)
	}

	s.cache.invalidate(logicalPath)
	return cur, nil
}

// IsFolder reports whether the on-disk path resolved from a logical path is
// a directory.
func (s *Store) IsFolder(onDiskPath string) (bool, error) {
	info, err := s.fs.Stat(onDiskPath)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// ReadFile returns the decrypted contents of the file at logicalPath.
func (s *Store) ReadFile(logicalPath string) ([]byte, error) {
	onDisk, err := s.FindPath(logicalPath)
	if err != nil {
		return nil, err
	}
	isDir, err := s.IsFolder(onDisk)
	if err != nil {
		return nil, err
	}
	if isDir {
		return nil, NewBadInputError("path", logicalPath+" is a directory, not a file")
	}

	f, err := s.fs.Open(onDisk)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	plaintext, err := s.crypto.DecryptBytes(token)
	if err != nil {
		return nil, NewCryptoInvalidError(logicalPath, err)
	}
	return plaintext, nil
}

// WriteFile seals contents and writes it to logicalPath, creating the file
// and any missing parent directories if they don't already exist. A single
// whole-file AEAD seal is used — there is no chunking, so every write
// replaces the file's ciphertext in full (spec.md's single-shot model).
func (s *Store) WriteFile(logicalPath string, contents []byte) error {
	onDisk, err := s.FindPath(logicalPath)
	if err != nil {
		onDisk, err = s.MakePath(logicalPath, true)
		if err != nil {
			return err
		}
	}

	token, err := s.crypto.EncryptBytes(contents)
	if err != nil {
		return err
	}

	f, err := s.fs.OpenFile(onDisk, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(token); err != nil {
		return err
	}

	s.cache.put(logicalPath, onDisk)
	return nil
}

// ListDir returns the decrypted plaintext names of every entry the current
// process key can open in the directory at logicalPath. Entries that fail
// to decrypt are silently skipped (findChild's rule, applied in reverse).
func (s *Store) ListDir(logicalPath string) ([]string, error) {
	onDisk, err := s.FindPath(logicalPath)
	if err != nil {
		return nil, err
	}
	isDir, err := s.IsFolder(onDisk)
	if err != nil {
		return nil, err
	}
	if !isDir {
		return nil, NewBadInputError("path", logicalPath+" is a file, not a directory")
	}

	entries, err := s.listEncodedEntries(onDisk)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if plain, ok := decodeComponent(s.crypto, e); ok {
			names = append(names, plain)
		}
	}
	return names, nil
}

// RemoveFile deletes the file at logicalPath.
func (s *Store) RemoveFile(logicalPath string) error {
	onDisk, err := s.FindPath(logicalPath)
	if err != nil {
		return err
	}
	isDir, err := s.IsFolder(onDisk)
	if err != nil {
		return err
	}
	if isDir {
		return NewBadInputError("path", logicalPath+" is a directory, not a file")
	}
	if err := s.fs.Remove(onDisk); err != nil {
		return err
	}
	s.cache.invalidate(logicalPath)
	return nil
}

// RemoveDir deletes the empty directory at logicalPath.
func (s *Store) RemoveDir(logicalPath string) error {
	onDisk, err := s.FindPath(logicalPath)
	if err != nil {
		return err
	}
	isDir, err := s.IsFolder(onDisk)
	if err != nil {
		return err
	}
	if !isDir {
		return NewBadInputError("path", logicalPath+" is a file, not a directory")
	}
	if err := s.fs.Remove(onDisk); err != nil {
		return err
	}
	s.cache.invalidate(logicalPath)
	return nil
}

// Rename moves the entry at oldLogicalPath so that it is named newName
// within the same parent directory. It never moves a node to a different
// parent and never descends into children: Graph.RenameNode refuses to
// rename any node that has descendants (SPEC_FULL.md §6) precisely
// because this layer has no way to rekey an entire subtree's chain of
// on-disk names atomically.
func (s *Store) Rename(oldLogicalPath, newName string) (string, error) {
	onDisk, err := s.FindPath(oldLogicalPath)
	if err != nil {
		return "", err
	}

	encodedNewName, err := encodeComponent(s.crypto, newName)
	if err != nil {
		return "", err
	}

	newOnDisk := path.Join(path.Dir(onDisk), encodedNewName)
	if err := s.fs.Rename(onDisk, newOnDisk); err != nil {
		return "", err
	}

	s.cache.invalidate(oldLogicalPath)

	parent := path.Dir(strings.TrimSuffix(oldLogicalPath, "/"))
	if parent == "." || parent == "/" {
		return newName, nil
	}
	newLogicalPath := path.Join(parent, newName)
	return newLogicalPath, nil
}
