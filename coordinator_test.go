package sfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/absfs/absfs"
	"github.com/absfs/memfs"
	"github.com/rs/zerolog"
)

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	c, _ := newTestCoordinatorWithFS(t)
	return c
}

func newTestCoordinatorWithFS(t *testing.T) (*Coordinator, absfs.FileSystem) {
	t.Helper()

	base, err := memfs.NewFS()
	if err != nil {
		t.Fatalf("memfs.NewFS failed: %v", err)
	}
	crypto := newTestCrypto(t, CipherAES256GCM)
	store := NewStore(base, crypto)

	dir := t.TempDir()
	graph, err := LoadGraph(filepath.Join(dir, "permissions.json"), crypto, store)
	if err != nil {
		t.Fatalf("LoadGraph failed: %v", err)
	}
	users, err := LoadUserStore(filepath.Join(dir, "users.json"), crypto)
	if err != nil {
		t.Fatalf("LoadUserStore failed: %v", err)
	}

	return NewCoordinator(store, graph, users, zerolog.Nop()), base
}

// TestScenario_RegisterTouchCat exercises spec.md §8 scenario 1.
func TestScenario_RegisterTouchCat(t *testing.T) {
	c := newTestCoordinator(t)
	session := NewSession()

	if status := c.Register(session, "alice", "s3cret"); status != StatusOK {
		t.Fatalf("Register: got %v", status)
	}
	if !session.IsAuthenticated() || session.User.Name != "alice" {
		t.Fatal("expected session authenticated as alice")
	}
	if session.Cwd != "alice" {
		t.Fatalf("expected cwd to be alice's home, got %q", session.Cwd)
	}

	if status := c.Touch(session, "hello.txt"); status != StatusOK {
		t.Fatalf("Touch: got %v", status)
	}
	if status := c.Echo(session, "hello.txt", "world"); status != StatusOK {
		t.Fatalf("Echo: got %v", status)
	}

	contents, status := c.Cat(session, "hello.txt")
	if status != StatusOK {
		t.Fatalf("Cat: got %v", status)
	}
	if contents != "world" {
		t.Fatalf("Cat: got %q, want %q", contents, "world")
	}

	entries, status := c.Ls(session)
	if status != StatusOK {
		t.Fatalf("Ls: got %v", status)
	}
	if len(entries) != 1 || entries[0] != "hello.txt" {
		t.Fatalf("Ls: got %v, want [hello.txt]", entries)
	}
}

// TestScenario_CrossUserIsolation exercises spec.md §8 scenario 2.
func TestScenario_CrossUserIsolation(t *testing.T) {
	c := newTestCoordinator(t)

	adminSession := NewSession()
	if status := c.Register(adminSession, "admin", "rootpw"); status != StatusOK {
		t.Fatalf("Register admin: got %v", status)
	}

	aliceSession := NewSession()
	if status := c.Register(aliceSession, "alice", "pw1"); status != StatusOK {
		t.Fatalf("Register alice: got %v", status)
	}
	bobSession := NewSession()
	if status := c.Register(bobSession, "bob", "pw2"); status != StatusOK {
		t.Fatalf("Register bob: got %v", status)
	}

	if status := c.Touch(aliceSession, "secret"); status != StatusOK {
		t.Fatalf("Touch: got %v", status)
	}

	if _, status := c.Cat(bobSession, "/alice/secret"); status != StatusDenied {
		t.Fatalf("expected bob reading alice's secret to be DENIED, got %v", status)
	}

	if status := c.Cd(bobSession, "/alice"); status != StatusDenied {
		t.Fatalf("bob should not be able to cd into alice's unreadable home (bob has no ACL entry there), got %v", status)
	}
}

// TestScenario_GroupShare exercises spec.md §8 scenario 3.
func TestScenario_GroupShare(t *testing.T) {
	c := newTestCoordinator(t)

	adminSession := NewSession()
	if status := c.Register(adminSession, "admin", "rootpw"); status != StatusOK {
		t.Fatalf("Register admin: got %v", status)
	}
	aliceSession := NewSession()
	if status := c.Register(aliceSession, "alice", "pw1"); status != StatusOK {
		t.Fatalf("Register alice: got %v", status)
	}
	bobSession := NewSession()
	if status := c.Register(bobSession, "bob", "pw2"); status != StatusOK {
		t.Fatalf("Register bob: got %v", status)
	}

	if status := c.CreateGroup(adminSession, "team", []string{"alice", "bob"}); status != StatusOK {
		t.Fatalf("CreateGroup: got %v", status)
	}

	// No reload of group membership is needed: sessions hold the *User
	// pointer obtained at registration time, sharing state with the store.
	if status := c.Touch(aliceSession, "note"); status != StatusOK {
		t.Fatalf("Touch: got %v", status)
	}
	if status := c.Chp(aliceSession, "note", GroupShare); status != StatusOK {
		t.Fatalf("Chp: got %v", status)
	}

	if _, status := c.Cat(bobSession, "/alice/note"); status != StatusOK {
		t.Fatalf("expected bob to read group-shared note, got %v", status)
	}

	if status := c.Touch(bobSession, "/alice/x"); status != StatusDenied {
		t.Fatalf("expected bob writing into alice's home to stay DENIED, got %v", status)
	}
}

func TestCoordinator_LoginRejectsWrongPassword(t *testing.T) {
	c := newTestCoordinator(t)
	session := NewSession()
	if status := c.Register(session, "alice", "s3cret"); status != StatusOK {
		t.Fatalf("Register: got %v", status)
	}
	c.Logout(session)

	if status, _ := c.Login(session, "alice", "wrong"); status != StatusDenied {
		t.Fatalf("expected DENIED for wrong password, got %v", status)
	}
	if session.IsAuthenticated() {
		t.Fatal("session must not be authenticated after a failed login")
	}
}

func TestCoordinator_MvRenamesFile(t *testing.T) {
	c := newTestCoordinator(t)
	session := NewSession()
	if status := c.Register(session, "alice", "pw"); status != StatusOK {
		t.Fatalf("Register: got %v", status)
	}
	if status := c.Touch(session, "old.txt"); status != StatusOK {
		t.Fatalf("Touch: got %v", status)
	}
	if status := c.Mv(session, "old.txt", "new.txt"); status != StatusOK {
		t.Fatalf("Mv: got %v", status)
	}
	if _, status := c.Cat(session, "new.txt"); status != StatusOK {
		t.Fatalf("expected renamed file to still be readable, got %v", status)
	}
	if _, status := c.Cat(session, "old.txt"); status != StatusNotFound {
		t.Fatalf("expected old name to be gone, got %v", status)
	}
}

func TestCoordinator_DeleteGroupRequiresAdmin(t *testing.T) {
	c := newTestCoordinator(t)
	session := NewSession()
	if status := c.Register(session, "alice", "pw"); status != StatusOK {
		t.Fatalf("Register: got %v", status)
	}

	if status := c.DeleteGroup(session, "team"); status != StatusDenied {
		t.Fatalf("expected non-admin delete-group to be DENIED, got %v", status)
	}
}

// TestScenario_IntegrityDetection exercises spec.md §8 scenario 6: a
// tampered ciphertext is reported as corrupted when its owner next logs in.
func TestScenario_IntegrityDetection(t *testing.T) {
	c, base := newTestCoordinatorWithFS(t)
	session := NewSession()

	if status := c.Register(session, "alice", "s3cret"); status != StatusOK {
		t.Fatalf("Register: got %v", status)
	}
	if status := c.Touch(session, "x"); status != StatusOK {
		t.Fatalf("Touch: got %v", status)
	}
	if status := c.Echo(session, "x", "hi"); status != StatusOK {
		t.Fatalf("Echo: got %v", status)
	}
	c.Logout(session)

	onDisk, err := c.Store.FindPath("alice/x")
	if err != nil {
		t.Fatalf("FindPath failed: %v", err)
	}
	corruptFile(t, base, onDisk)

	status, corrupt := c.Login(session, "alice", "s3cret")
	if status != StatusOK {
		t.Fatalf("Login: got %v", status)
	}
	if len(corrupt) != 1 || corrupt[0] != "alice/x" {
		t.Fatalf("expected alice/x reported corrupt, got %v", corrupt)
	}
}

// corruptFile flips a byte in the on-disk ciphertext at path, simulating
// tampering or bit rot for integrity-scan tests.
func corruptFile(t *testing.T, fs absfs.FileSystem, path string) {
	t.Helper()

	f, err := fs.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer f.Close()

	buf := make([]byte, 1)
	if _, err := f.Read(buf); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	buf[0] ^= 0xFF
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if _, err := f.Write(buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
}
