package sfs

import (
	"fmt"

	"github.com/absfs/absfs"
	"github.com/rs/zerolog"
)

// Engine bundles the three stores and the Coordinator that operate on them.
// It is the package's equivalent of the teacher's EncryptFS: one validated
// Config in, one ready-to-use object out.
type Engine struct {
	Store       *Store
	Graph       *Graph
	Users       *UserStore
	Coordinator *Coordinator
}

// NewEngine builds a Store over the given base filesystem, loads the
// permissions and user stores named in cfg, and wires them into a
// Coordinator. Grounded on the teacher's New(base, config) constructor:
// validate the config first, then derive everything else from it.
func NewEngine(base absfs.FileSystem, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if base == nil {
		return nil, fmt.Errorf("base filesystem cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	crypto, err := NewCrypto(cfg.Cipher, cfg.KeyProvider)
	if err != nil {
		return nil, fmt.Errorf("build crypto provider: %w", err)
	}

	store := NewStore(base, crypto)

	graph, err := LoadGraph(cfg.PermissionsPath, crypto, store)
	if err != nil {
		return nil, fmt.Errorf("load permissions store: %w", err)
	}

	users, err := LoadUserStore(cfg.UsersPath, crypto)
	if err != nil {
		return nil, fmt.Errorf("load users store: %w", err)
	}

	return &Engine{
		Store:       store,
		Graph:       graph,
		Users:       users,
		Coordinator: NewCoordinator(store, graph, users, logger),
	}, nil
}
