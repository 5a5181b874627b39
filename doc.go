// Package sfs implements the storage and access-control engine of a secure
// file system: logical plaintext paths are mapped to an encrypted on-disk
// tree whose directory and file names are themselves ciphertext, and a
// permissions graph authorises every read, write, rename and
// re-permissioning of a node against a user/group store.
//
// # Overview
//
// Three stores cooperate:
//
//   - Store (encryptedstore.go, diskfs.go, pathcodec.go): maps a plaintext
//     logical path to an on-disk path by trial-decrypting directory
//     entries, since every component is encrypted with a fresh random
//     nonce and therefore has no stable ciphertext form to hash or index.
//   - Graph (graph.go, permission.go): a flat map from logical path to
//     Node, the sole source of truth for who may read, write, or
//     re-permission a path.
//   - UserStore (user.go): usernames, bcrypt password hashes, and group
//     memberships.
//
// Coordinator (coordinator.go) composes the three: it authorises a
// (verb, path, user) request against the Graph, then performs the matching
// on-disk change before committing and persisting the Graph and, if
// touched, the UserStore.
//
// # Cipher suites
//
//   - AES-256-GCM
//   - ChaCha20-Poly1305
//
// Both are AEAD constructions: authenticated, tamper-evident, and — the
// property this package depends on — non-deterministic, so two encryptions
// of the same plaintext component never produce the same ciphertext. That
// is what makes trial-decryption (rather than a hash lookup) necessary for
// path resolution, and is the whole point: it hides which directory
// entries share a plaintext name.
//
// # Key management
//
// A single FileKeyProvider loads one 32-byte key from a fernet.key file at
// process start; the key lives for the process and is threaded explicitly
// into the Store and both stores rather than held as a package-level
// global. PassphraseKeyProvider (Argon2id or PBKDF2) exists only to
// provision that file from an operator passphrase; it never appears on the
// live read/write path.
//
// # Security considerations
//
// Protected against: unauthorized reads of file contents and names at
// rest, tampering (AEAD authentication), and equality leakage of identical
// path components across the tree (thanks to non-deterministic
// encryption).
//
// Not protected against: the directory *shape* (which encrypted entry sits
// under which — see Store's doc comment), file sizes, multi-process
// concurrent access, or key rotation. These are explicit trade-offs, not
// omissions to fix later.
package sfs
