package sfs

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// User is one registered account: a username, a bcrypt password hash, and
// the groups it belongs to. The "admin" username is privileged implicitly
// (original_source/user.py) — there is no separate admin flag to set or
// unset.
type User struct {
	Name         string   `json:"name"`
	PasswordHash string   `json:"password"`
	Groups       []string `json:"joinedGroups"`
}

// IsAdmin reports whether this user is the fixed administrator account.
func (u *User) IsAdmin() bool {
	return u.Name == "admin"
}

// InGroup reports whether the user belongs to the named group.
func (u *User) InGroup(group string) bool {
	for _, g := range u.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// UserStore holds every registered User, keyed by name, loaded once from
// and persisted back to a JSON store (store.go) that may itself be
// AEAD-sealed depending on its filename prefix.
type UserStore struct {
	mu    sync.Mutex
	store *jsonStore
	users map[string]*User
}

// LoadUserStore loads (or initializes, if the file doesn't yet exist) a
// UserStore from path.
func LoadUserStore(path string, crypto *Crypto) (*UserStore, error) {
	store := newJSONStore(path, crypto)

	var raw []User
	if err := store.load(&raw); err != nil {
		return nil, err
	}

	users := make(map[string]*User, len(raw))
	for i := range raw {
		u := raw[i]
		users[u.Name] = &u
	}

	return &UserStore{store: store, users: users}, nil
}

// Persist writes the current set of users back to disk.
func (s *UserStore) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

func (s *UserStore) persistLocked() error {
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	return s.store.persist(out)
}

// Get returns the user by name, or nil if no such user is registered.
func (s *UserStore) Get(name string) *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[name]
}

// CreateUser registers a new account with a freshly bcrypt-hashed password.
// It returns a ConflictError if the name is already taken.
func (s *UserStore) CreateUser(name, password string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[name]; exists {
		return nil, NewConflictError(name, "user already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{Name: name, PasswordHash: string(hash), Groups: []string{}}
	s.users[name] = user
	return user, nil
}

// UsersInGroup returns the names of every user belonging to groupName.
func (s *UserStore) UsersInGroup(groupName string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var names []string
	for name, u := range s.users {
		if u.InGroup(groupName) {
			names = append(names, name)
		}
	}
	return names
}

// AddUsersToGroup adds each named user to groupName, skipping unknown
// names. The admin user is added only if at least one non-admin user was
// also successfully added in the same call — an admin-only group is
// rejected outright, with nothing persisted, rather than silently admitted
// (spec.md §4.4).
func (s *UserStore) AddUsersToGroup(groupName string, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var admins []*User
	addedNonAdmin := false

	for _, name := range names {
		u, ok := s.users[name]
		if !ok {
			continue
		}
		if u.IsAdmin() {
			admins = append(admins, u)
			continue
		}
		if !u.InGroup(groupName) {
			u.Groups = append(u.Groups, groupName)
		}
		addedNonAdmin = true
	}

	if !addedNonAdmin {
		return NewBadInputError("users", "no valid users provided, group creation failed")
	}

	for _, u := range admins {
		if !u.InGroup(groupName) {
			u.Groups = append(u.Groups, groupName)
		}
	}
	return nil
}

// RemoveUsersFromGroup removes each named user from groupName. Unknown
// users, users not currently in the group, and the admin account (who can
// never be removed from a group) are silently skipped rather than treated
// as errors, matching the bulk-operation semantics of original_source's
// deleteUsersFromGroup.
func (s *UserStore) RemoveUsersFromGroup(groupName string, names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range names {
		u, ok := s.users[name]
		if !ok || u.IsAdmin() || !u.InGroup(groupName) {
			continue
		}
		kept := u.Groups[:0]
		for _, g := range u.Groups {
			if g != groupName {
				kept = append(kept, g)
			}
		}
		u.Groups = kept
	}
}
