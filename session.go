package sfs

import "github.com/google/uuid"

// SessionState is the session identity state machine: ANONYMOUS →
// (login|register) → AUTHENTICATED(user) → (logout) → ANONYMOUS. Only the
// authenticated state may invoke any verb except login, register, and quit
// (spec.md §4.5).
type SessionState int

const (
	Anonymous SessionState = iota
	Authenticated
)

// Session tracks one shell session: identity state, current user, and
// working directory. ID is a random session identifier used only to tag
// log lines for correlation — the teacher used the same google/uuid
// dependency to mint opaque on-disk filenames, a use this package's
// trial-decryptable naming scheme forbids (pathcodec.go), so the
// dependency is kept and repointed at session correlation instead.
type Session struct {
	ID    string
	State SessionState
	User  *User
	Cwd   string
}

// NewSession starts a fresh anonymous session rooted at "".
func NewSession() *Session {
	return &Session{ID: uuid.NewString(), State: Anonymous, Cwd: ""}
}

// Authenticate transitions the session to AUTHENTICATED for user and resets
// cwd to that user's home.
func (s *Session) Authenticate(user *User) {
	s.State = Authenticated
	s.User = user
	s.Cwd = user.Name
}

// Logout transitions the session back to ANONYMOUS.
func (s *Session) Logout() {
	s.State = Anonymous
	s.User = nil
	s.Cwd = ""
}

// IsAuthenticated reports whether the session currently has a user.
func (s *Session) IsAuthenticated() bool {
	return s.State == Authenticated && s.User != nil
}
