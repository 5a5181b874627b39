package sfs

import (
	"strings"

	"github.com/rs/zerolog"
)

// Status is the single outcome every Coordinator verb returns, collapsing
// the five-kind error taxonomy (errors.go) plus the success case
// (spec.md §4.5).
type Status int

const (
	StatusOK Status = iota
	StatusNotFound
	StatusDenied
	StatusConflict
	StatusCryptoInvalid
	StatusBadInput
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNotFound:
		return "NOT-FOUND"
	case StatusDenied:
		return "DENIED"
	case StatusConflict:
		return "CONFLICT"
	case StatusCryptoInvalid:
		return "CRYPTO-INVALID"
	case StatusBadInput:
		return "BAD-INPUT"
	default:
		return "UNKNOWN"
	}
}

// statusOf maps an error returned by the Store/Graph/UserStore layers onto
// one of the five taxonomy kinds (errors.go's typed errors), defaulting
// unrecognized errors to BAD-INPUT rather than silently reporting success.
func statusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case IsNotFoundError(err):
		return StatusNotFound
	case IsDeniedError(err):
		return StatusDenied
	case IsConflictError(err):
		return StatusConflict
	case IsCryptoInvalidError(err):
		return StatusCryptoInvalid
	default:
		return StatusBadInput
	}
}

// Coordinator composes the Store, Graph, and UserStore: it authorizes a
// (verb, path, user) request against the Graph, performs the on-disk
// change, then commits and persists the Graph and — if touched — the
// UserStore, in that fixed order (spec.md §4.5): on-disk change first,
// then graph update, then graph persist, then user-store persist. A
// failure after the on-disk change leaves a Node-less encrypted entry,
// which list-directory silently omits — strictly less harmful than a
// dangling graph entry pointing at nothing.
type Coordinator struct {
	Store *Store
	Graph *Graph
	Users *UserStore
	log   zerolog.Logger
}

// NewCoordinator wires the three stores together.
func NewCoordinator(store *Store, graph *Graph, users *UserStore, log zerolog.Logger) *Coordinator {
	return &Coordinator{Store: store, Graph: graph, Users: users, log: log}
}

func resolvePath(cwd, path string) string {
	if path == "" {
		return cwd
	}
	if strings.HasPrefix(path, "/") {
		return strings.TrimPrefix(path, "/")
	}
	if cwd == "" {
		return path
	}
	return cwd + "/" + path
}

// Login verifies credentials, transitions the session to AUTHENTICATED, and
// scans the new user's home subtree for corrupted nodes (spec.md §7: the
// integrity scanner surfaces CRYPTO-INVALID results as an informational
// list on login).
func (c *Coordinator) Login(s *Session, username, password string) (Status, []string) {
	user := c.Users.Get(username)
	if user == nil || !user.CheckPassword(password) {
		c.log.Warn().Str("user", username).Msg("login failed")
		return StatusDenied, nil
	}
	s.Authenticate(user)
	c.log.Info().Str("user", username).Str("session", s.ID).Msg("login ok")

	corrupt := c.Graph.CheckPathIntegrity(username + "/")
	return StatusOK, corrupt
}

// Register creates a new user, initializes their home directory, and
// authenticates the new session as that user.
func (c *Coordinator) Register(s *Session, username, password string) Status {
	user, err := c.Users.CreateUser(username, password)
	if err != nil {
		return statusOf(err)
	}
	if err := c.Graph.InitUserDirectory(username); err != nil {
		return statusOf(err)
	}
	if err := c.Users.Persist(); err != nil {
		return statusOf(err)
	}
	s.Authenticate(user)
	c.log.Info().Str("user", username).Msg("registered")
	return StatusOK
}

// Logout transitions the session back to ANONYMOUS.
func (c *Coordinator) Logout(s *Session) Status {
	c.log.Info().Str("user", s.User.Name).Msg("logout")
	s.Logout()
	return StatusOK
}

// Ls lists the session's current directory.
func (c *Coordinator) Ls(s *Session) ([]string, Status) {
	entries, err := c.Graph.ListDirectory(s.Cwd, s.User)
	if err != nil {
		return nil, statusOf(err)
	}
	return entries, StatusOK
}

// Cd moves the session's working directory to path, if it resolves to a
// folder readable by the session's user.
func (c *Coordinator) Cd(s *Session, path string) Status {
	target := resolvePath(s.Cwd, path)

	node := c.Graph.GetNode(target)
	if node == nil {
		return StatusNotFound
	}
	if !node.IsReadable(s.User) {
		return StatusDenied
	}

	onDisk, err := c.Store.FindPath(target)
	if err != nil {
		return statusOf(err)
	}
	isDir, err := c.Store.IsFolder(onDisk)
	if err != nil {
		return statusOf(err)
	}
	if !isDir {
		return StatusBadInput
	}

	s.Cwd = target
	return StatusOK
}

// Pwd returns the session's current directory.
func (c *Coordinator) Pwd(s *Session) string {
	return "/" + s.Cwd
}

// Cat returns the decrypted contents of path.
func (c *Coordinator) Cat(s *Session, path string) (string, Status) {
	target := resolvePath(s.Cwd, path)

	node := c.Graph.GetNode(target)
	if node == nil {
		return "", StatusNotFound
	}
	if !node.IsReadable(s.User) {
		return "", StatusDenied
	}

	contents, err := c.Store.ReadFile(target)
	if err != nil {
		return "", statusOf(err)
	}
	return string(contents), StatusOK
}

// Touch creates an empty file at path.
func (c *Coordinator) Touch(s *Session, path string) Status {
	target := resolvePath(s.Cwd, path)
	if c.Graph.GetNode(target) != nil {
		return StatusConflict
	}
	return statusOf(c.Graph.CreateFile(target, s.User))
}

// Mkdir creates an empty folder at path.
func (c *Coordinator) Mkdir(s *Session, path string) Status {
	target := resolvePath(s.Cwd, path)
	if c.Graph.GetNode(target) != nil {
		return StatusConflict
	}
	return statusOf(c.Graph.CreateFolder(target, s.User))
}

// Echo overwrites the file at path with content.
func (c *Coordinator) Echo(s *Session, path, content string) Status {
	target := resolvePath(s.Cwd, path)

	node := c.Graph.GetNode(target)
	if node == nil {
		return StatusNotFound
	}
	if !node.IsWritable(s.User) {
		return StatusDenied
	}

	return statusOf(c.Store.WriteFile(target, []byte(content)))
}

// Mv renames the node at path to newName within the same parent directory.
func (c *Coordinator) Mv(s *Session, path, newName string) Status {
	target := resolvePath(s.Cwd, path)

	node := c.Graph.GetNode(target)
	if node == nil {
		return StatusNotFound
	}
	if !node.IsWritable(s.User) {
		return StatusDenied
	}

	return statusOf(c.Graph.RenameNode(target, newName))
}

// Chp applies a change-permissions mode to path, gated on ownership.
func (c *Coordinator) Chp(s *Session, path string, mode ChangePermissionsMode) Status {
	target := resolvePath(s.Cwd, path)

	node := c.Graph.GetNode(target)
	if node == nil {
		return StatusNotFound
	}
	if !node.IsOwner(s.User) && !s.User.IsAdmin() {
		return StatusDenied
	}

	return statusOf(c.Graph.ChangePermissions(target, s.User, mode))
}

// CreateGroup is satisfied by adding the given members to a new group name
// via the UserStore; admin gating happens here, not in UserStore, matching
// delete-group's gating (spec.md §9(c)).
func (c *Coordinator) CreateGroup(s *Session, name string, members []string) Status {
	if !s.User.IsAdmin() {
		return StatusDenied
	}
	if err := c.Users.AddUsersToGroup(name, members); err != nil {
		return statusOf(err)
	}
	return statusOf(c.Users.Persist())
}

// UpdateGroup adds and/or removes members from an existing group.
func (c *Coordinator) UpdateGroup(s *Session, name string, add, remove []string) Status {
	if !s.User.IsAdmin() {
		return StatusDenied
	}
	if len(c.Users.UsersInGroup(name)) == 0 {
		return StatusNotFound
	}

	if len(add) > 0 {
		if err := c.Users.AddUsersToGroup(name, add); err != nil {
			return statusOf(err)
		}
	}
	c.Users.RemoveUsersFromGroup(name, remove)

	return statusOf(c.Users.Persist())
}

// DeleteGroup purges a group from every Node's group-ACL and from every
// non-admin user's joined-groups (RemoveUsersFromGroup never removes the
// admin account, so admin keeps its membership), gated to admin here — the
// Graph and UserStore mutations it calls are themselves ungated
// (spec.md §9(c)).
func (c *Coordinator) DeleteGroup(s *Session, name string) Status {
	if !s.User.IsAdmin() {
		return StatusDenied
	}
	if len(c.Users.UsersInGroup(name)) == 0 {
		return StatusNotFound
	}

	affected, err := c.Graph.DeleteGroup(name)
	if err != nil {
		return statusOf(err)
	}
	c.log.Info().Str("group", name).Strs("affected", affected).Msg("group deleted from nodes")

	c.Users.RemoveUsersFromGroup(name, c.Users.UsersInGroup(name))
	return statusOf(c.Users.Persist())
}
