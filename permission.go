package sfs

// Permission grants a single user or group name read and/or write access to
// a Node. The special name "all" stands for every user (spec.md's
// world-share mode), matched the same way a named user or group is.
type Permission struct {
	Name     string `json:"name"`
	CanRead  bool   `json:"isRead"`
	CanWrite bool   `json:"isWrite"`
}

// Node is the sole record of access rights for one logical path. The Graph
// holds Nodes in a flat map keyed by path rather than a pointer tree
// (graph.go) — a Node never references its parent or children directly.
type Node struct {
	Path          string       `json:"name"`
	Owner         string       `json:"owner"`
	AllowedUsers  []Permission `json:"allowedUsers"`
	AllowedGroups []Permission `json:"allowedGroups"`
}

// IsOwner reports whether user owns this node.
func (n *Node) IsOwner(user *User) bool {
	return user != nil && n.Owner == user.Name
}

// IsReadable reports whether user may read this node: ownership, admin
// status, a matching user permission (by name or the "all" wildcard), or a
// matching group permission each grant read access independently.
func (n *Node) IsReadable(user *User) bool {
	if user == nil {
		return false
	}
	if n.IsOwner(user) || user.IsAdmin() {
		return true
	}
	for _, p := range n.AllowedUsers {
		if p.CanRead && (p.Name == user.Name || p.Name == "all") {
			return true
		}
	}
	for _, p := range n.AllowedGroups {
		if p.CanRead && user.InGroup(p.Name) {
			return true
		}
	}
	return false
}

// IsWritable reports whether user may write this node, under the same
// ownership/admin/user/group rules as IsReadable but checking the write bit.
func (n *Node) IsWritable(user *User) bool {
	if user == nil {
		return false
	}
	if n.IsOwner(user) || user.IsAdmin() {
		return true
	}
	for _, p := range n.AllowedUsers {
		if p.CanWrite && (p.Name == user.Name || p.Name == "all") {
			return true
		}
	}
	for _, p := range n.AllowedGroups {
		if p.CanWrite && user.InGroup(p.Name) {
			return true
		}
	}
	return false
}

// AddUser upserts a user-scoped permission entry by name: if name already
// has an entry, its bits are overwritten in place; otherwise a new entry is
// appended. Upsert-by-name keeps principal names unique within a Node's
// user-ACL, per spec.md §3/§4.3 — re-sharing a path never produces a
// duplicate entry for the same principal.
func (n *Node) AddUser(name string, canRead, canWrite bool) {
	for i := range n.AllowedUsers {
		if n.AllowedUsers[i].Name == name {
			n.AllowedUsers[i].CanRead = canRead
			n.AllowedUsers[i].CanWrite = canWrite
			return
		}
	}
	n.AllowedUsers = append(n.AllowedUsers, Permission{Name: name, CanRead: canRead, CanWrite: canWrite})
}

// AddGroup upserts a group-scoped permission entry by name, under the same
// rule as AddUser.
func (n *Node) AddGroup(name string, canRead, canWrite bool) {
	for i := range n.AllowedGroups {
		if n.AllowedGroups[i].Name == name {
			n.AllowedGroups[i].CanRead = canRead
			n.AllowedGroups[i].CanWrite = canWrite
			return
		}
	}
	n.AllowedGroups = append(n.AllowedGroups, Permission{Name: name, CanRead: canRead, CanWrite: canWrite})
}

// RemoveUser deletes the user-ACL entry named name, if any (spec.md §4.3's
// remove-user, defaulting to the "all" principal at call sites that revoke
// world-share).
func (n *Node) RemoveUser(name string) {
	kept := n.AllowedUsers[:0]
	for _, p := range n.AllowedUsers {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	n.AllowedUsers = kept
}

// RemoveGroup deletes every permission entry naming groupName, returning
// whether any entry was removed. Used by Graph.DeleteGroup to purge a
// deleted group from every node in one pass.
func (n *Node) RemoveGroup(groupName string) bool {
	removed := false
	kept := n.AllowedGroups[:0]
	for _, p := range n.AllowedGroups {
		if p.Name == groupName {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	n.AllowedGroups = kept
	return removed
}
