package sfs

import (
	"strings"
	"sync"
)

// ChangePermissionsMode selects one of change-permissions' three coarse
// modes (spec.md §4.3).
type ChangePermissionsMode int

const (
	// OwnerOnly clears both ACLs on the target, leaving only owner/admin access.
	OwnerOnly ChangePermissionsMode = iota
	// GroupShare grants every group the acting user belongs to read+write on
	// the target, and read-only on every ancestor.
	GroupShare
	// WorldShare grants every user ("all") read+write on the target, and
	// read-only on every ancestor.
	WorldShare
)

// Graph is the flat map from logical path to Node: the sole source of truth
// for who may read, write, or re-permission a path. A flat map rather than
// a tree of pointers keeps delete-group, check-path-integrity, and rename
// simple and avoids any cyclic-ownership bookkeeping (original_source's
// Graph class keeps the same flat shape).
type Graph struct {
	mu    sync.Mutex
	store *jsonStore
	nodes map[string]*Node
	fs    *Store
}

// LoadGraph loads (or initializes, if the file doesn't yet exist) a Graph
// from path, wired to fsStore for the on-disk operations list-directory and
// check-path-integrity need.
func LoadGraph(path string, crypto *Crypto, fsStore *Store) (*Graph, error) {
	store := newJSONStore(path, crypto)

	var raw []Node
	if err := store.load(&raw); err != nil {
		return nil, err
	}

	nodes := make(map[string]*Node, len(raw))
	for i := range raw {
		n := raw[i]
		nodes[n.Path] = &n
	}

	return &Graph{store: store, nodes: nodes, fs: fsStore}, nil
}

// Persist writes the current set of nodes back to disk.
func (g *Graph) Persist() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.persistLocked()
}

func (g *Graph) persistLocked() error {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, *n)
	}
	return g.store.persist(out)
}

// GetNode returns the Node at path, or nil if none exists.
func (g *Graph) GetNode(path string) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nodes[path]
}

// ListDirectory returns the pretty child-name listing of path for user:
// readable children show their plaintext name, unreadable ones show their
// encrypted on-disk name (so the caller can see something is there without
// learning what), folders get a trailing "/", and children with no Node at
// all are silently omitted (spec.md §4.3).
func (g *Graph) ListDirectory(path string, user *User) ([]string, error) {
	g.mu.Lock()
	node := g.nodes[path]
	g.mu.Unlock()

	if node == nil || !node.IsReadable(user) {
		return nil, nil
	}

	onDisk, err := g.fs.FindPath(path)
	if err != nil {
		return nil, err
	}
	isDir, err := g.fs.IsFolder(onDisk)
	if err != nil {
		return nil, err
	}
	if !isDir {
		return nil, NewBadInputError("path", path+" is a file, not a directory")
	}

	entries, err := g.fs.listEncodedEntries(onDisk)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, encoded := range entries {
		plain, ok := decodeComponent(g.fs.crypto, encoded)
		displayName := encoded
		childPath := joinLogicalPath(path, encoded)
		if ok {
			childPath = joinLogicalPath(path, plain)
		}

		g.mu.Lock()
		childNode := g.nodes[childPath]
		g.mu.Unlock()
		if childNode == nil {
			continue
		}

		if childNode.IsReadable(user) && ok {
			displayName = plain
		}

		childOnDisk := joinOnDiskPath(onDisk, encoded)
		if childIsDir, err := g.fs.IsFolder(childOnDisk); err == nil && childIsDir {
			displayName += "/"
		}

		out = append(out, displayName)
	}
	return out, nil
}

// InitUserDirectory creates the Node and the on-disk home directory for a
// freshly registered user: owner and sole user-ACL entry are both that
// user, granted read and write.
func (g *Graph) InitUserDirectory(name string) error {
	if _, err := g.fs.MakePath(name, false); err != nil {
		return err
	}

	node := &Node{Path: name, Owner: name, AllowedUsers: []Permission{{Name: name, CanRead: true, CanWrite: true}}}

	g.mu.Lock()
	g.nodes[name] = node
	err := g.persistLocked()
	g.mu.Unlock()
	return err
}

// createNode is shared by CreateFile and CreateFolder: both derive the
// parent path the same way, apply the same writability gate, and insert a
// Node with the same starting ACL shape.
func (g *Graph) createNode(path string, user *User, isFile bool) error {
	parentPath := parentLogicalPath(path)

	g.mu.Lock()
	parent := g.nodes[parentPath]
	g.mu.Unlock()

	if parent == nil {
		return NewNotFoundError(parentPath)
	}
	if !parent.IsWritable(user) {
		return NewDeniedError(path, user.Name, "write")
	}

	if isFile {
		if err := g.fs.WriteFile(path, nil); err != nil {
			return err
		}
	} else {
		if _, err := g.fs.MakePath(path, false); err != nil {
			return err
		}
	}

	node := &Node{Path: path, Owner: user.Name, AllowedGroups: []Permission{}}
	// AddUser upserts by name, so the common case of a user creating a node
	// in their own home (user.Name == parent.Owner) ends up with exactly one
	// user-ACL entry rather than two identical ones — spec.md §3 defines the
	// user-ACL as a set of unique principal names.
	node.AddUser(user.Name, true, true)
	node.AddUser(parent.Owner, true, true)

	g.mu.Lock()
	g.nodes[path] = node
	err := g.persistLocked()
	g.mu.Unlock()
	return err
}

// CreateFile creates an empty file at path and its Node.
func (g *Graph) CreateFile(path string, user *User) error {
	return g.createNode(path, user, true)
}

// CreateFolder creates an empty directory at path and its Node.
func (g *Graph) CreateFolder(path string, user *User) error {
	return g.createNode(path, user, false)
}

// RenameNode moves the Node at oldPath to parent-of-old + "/" + newName and
// renames the matching on-disk entry. It returns a ConflictError if a Node
// already exists at the new path. It refuses to rename any Node that
// has descendants in the graph: original_source's renameNode leaves
// descendant Nodes keyed under the stale path, stranding them, and
// SPEC_FULL.md §6 resolves that open question by forbidding the rename
// outright rather than rekeying or silently orphaning (decided here, not
// guessed).
func (g *Graph) RenameNode(path, newName string) error {
	g.mu.Lock()
	node := g.nodes[path]
	if node == nil {
		g.mu.Unlock()
		return NewNotFoundError(path)
	}

	prefix := path + "/"
	for k := range g.nodes {
		if strings.HasPrefix(k, prefix) {
			g.mu.Unlock()
			return NewConflictError(path, "cannot rename a node with descendants")
		}
	}
	if target := joinLogicalPath(parentLogicalPath(path), newName); g.nodes[target] != nil {
		g.mu.Unlock()
		return NewConflictError(target, "")
	}
	g.mu.Unlock()

	newPath, err := g.fs.Rename(path, newName)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	node.Path = newPath
	g.nodes[newPath] = node
	delete(g.nodes, path)
	return g.persistLocked()
}

// DeleteGroup removes every group-ACL entry named groupName from every
// Node, returning the logical paths that were actually changed (so the
// caller can log what was affected). It performs no authorization check of
// its own — spec.md §9(c) places the admin-only gate in the Coordinator,
// keeping this a plain graph mutation like the rest of Node's predicates.
func (g *Graph) DeleteGroup(groupName string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var affected []string
	for path, node := range g.nodes {
		if node.RemoveGroup(groupName) {
			affected = append(affected, path)
		}
	}

	if err := g.persistLocked(); err != nil {
		return nil, err
	}
	return affected, nil
}

// ChangePermissions applies one of the three change-permissions modes to
// the node at path, on behalf of user. It performs no owner check of its
// own — the Coordinator gates chp on ownership before calling this
// (spec.md §4.3, §6).
func (g *Graph) ChangePermissions(path string, user *User, mode ChangePermissionsMode) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	node := g.nodes[path]
	if node == nil {
		return NewNotFoundError(path)
	}

	switch mode {
	case OwnerOnly:
		node.AllowedUsers = nil
		node.AllowedGroups = nil

	case GroupShare:
		node.RemoveUser("all")

		for _, group := range user.Groups {
			node.AddGroup(group, true, true)
		}
		for _, ancestor := range properAncestors(path) {
			if ancestorNode := g.nodes[ancestor]; ancestorNode != nil {
				for _, group := range user.Groups {
					ancestorNode.AddGroup(group, true, false)
				}
			}
		}

	case WorldShare:
		node.AddUser("all", true, true)
		for _, ancestor := range properAncestors(path) {
			if ancestorNode := g.nodes[ancestor]; ancestorNode != nil {
				ancestorNode.AddUser("all", true, false)
			}
		}
	}

	return g.persistLocked()
}

// CheckPathIntegrity attempts to read every Node whose path starts with
// prefix and which is not an on-disk directory, returning the logical paths
// that fail to decrypt. It is the direct descendant of the teacher's
// WalkEncrypted/VerifyAllEncryption walk-and-collect-failures shape,
// repurposed from whole-filesystem key-rotation verification to a
// subtree-scoped corruption scan.
func (g *Graph) CheckPathIntegrity(prefix string) []string {
	g.mu.Lock()
	paths := make([]string, 0, len(g.nodes))
	for path := range g.nodes {
		if strings.HasPrefix(path, prefix) {
			paths = append(paths, path)
		}
	}
	g.mu.Unlock()

	var corrupt []string
	for _, path := range paths {
		onDisk, err := g.fs.FindPath(path)
		if err != nil {
			continue
		}
		isDir, err := g.fs.IsFolder(onDisk)
		if err != nil || isDir {
			continue
		}
		if _, err := g.fs.ReadFile(path); err != nil {
			corrupt = append(corrupt, path)
		}
	}
	return corrupt
}

// parentLogicalPath returns everything before the last "/" in path.
func parentLogicalPath(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// properAncestors returns every proper prefix of path split on "/", from
// shallowest to deepest, excluding path itself.
func properAncestors(path string) []string {
	parts := splitLogicalPath(path)
	var ancestors []string
	for i := 1; i < len(parts); i++ {
		ancestors = append(ancestors, strings.Join(parts[:i], "/"))
	}
	return ancestors
}

func joinLogicalPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "/" + child
}

func joinOnDiskPath(dir, entry string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + entry
	}
	return dir + "/" + entry
}
