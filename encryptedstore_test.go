package sfs

import (
	"testing"

	"github.com/absfs/memfs"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	base, err := memfs.NewFS()
	if err != nil {
		t.Fatalf("memfs.NewFS failed: %v", err)
	}
	crypto := newTestCrypto(t, CipherAES256GCM)
	return NewStore(base, crypto)
}

func TestStore_WriteFileThenReadFile(t *testing.T) {
	store := newTestStore(t)

	if err := store.WriteFile("alice/notes/todo.txt", []byte("buy milk")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := store.ReadFile("alice/notes/todo.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "buy milk" {
		t.Fatalf("got %q, want %q", got, "buy milk")
	}
}

func TestStore_ReadFileMissingIsNotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.ReadFile("nope"); !IsNotFoundError(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestStore_OnDiskNamesAreNotStable(t *testing.T) {
	store := newTestStore(t)

	if err := store.WriteFile("a/file.txt", []byte("x")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	onDiskA, err := store.FindPath("a/file.txt")
	if err != nil {
		t.Fatalf("FindPath failed: %v", err)
	}
	if err := store.RemoveFile("a/file.txt"); err != nil {
		t.Fatalf("RemoveFile failed: %v", err)
	}

	if err := store.WriteFile("a/file.txt", []byte("x")); err != nil {
		t.Fatalf("second WriteFile failed: %v", err)
	}
	onDiskB, err := store.FindPath("a/file.txt")
	if err != nil {
		t.Fatalf("second FindPath failed: %v", err)
	}

	if onDiskA == onDiskB {
		t.Fatal("identical logical path produced identical on-disk encoding across writes")
	}
}

func TestStore_ListDirSkipsUndecryptableEntries(t *testing.T) {
	store := newTestStore(t)

	if err := store.WriteFile("dir/keep.txt", []byte("v")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	onDisk, err := store.FindPath("dir")
	if err != nil {
		t.Fatalf("FindPath failed: %v", err)
	}
	// Simulate foreign debris landing in the directory: a name that isn't a
	// valid encoding under this process's key at all.
	f, err := store.fs.Create(onDisk + "/not-ours")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	f.Close()

	names, err := store.ListDir("dir")
	if err != nil {
		t.Fatalf("ListDir failed: %v", err)
	}
	if len(names) != 1 || names[0] != "keep.txt" {
		t.Fatalf("got %v, want [keep.txt]", names)
	}
}

func TestStore_RenamePreservesContents(t *testing.T) {
	store := newTestStore(t)

	if err := store.WriteFile("a/old.txt", []byte("payload")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	newPath, err := store.Rename("a/old.txt", "new.txt")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if newPath != "a/new.txt" {
		t.Fatalf("got new logical path %q, want %q", newPath, "a/new.txt")
	}

	got, err := store.ReadFile("a/new.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("got %q, want %q", got, "payload")
	}

	if _, err := store.ReadFile("a/old.txt"); !IsNotFoundError(err) {
		t.Fatalf("expected old path to be gone, got %v", err)
	}
}

func TestStore_RemoveDirFailsOnFile(t *testing.T) {
	store := newTestStore(t)

	if err := store.WriteFile("a/file.txt", []byte("x")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := store.RemoveDir("a/file.txt"); !IsBadInputError(err) {
		t.Fatalf("expected BadInputError removing a file as a dir, got %v", err)
	}
}

func TestStore_IsFolder(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.MakePath("some/dir", false); err != nil {
		t.Fatalf("MakePath failed: %v", err)
	}
	onDisk, err := store.FindPath("some/dir")
	if err != nil {
		t.Fatalf("FindPath failed: %v", err)
	}

	isDir, err := store.IsFolder(onDisk)
	if err != nil {
		t.Fatalf("IsFolder failed: %v", err)
	}
	if !isDir {
		t.Fatal("expected directory to report IsFolder = true")
	}
}
