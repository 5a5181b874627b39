package sfs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/absfs/absfs"
)

// DiskFS is a minimal absfs.FileSystem backed directly by the host
// filesystem, rooted at a single directory. It is the production
// counterpart of the teacher's test-only osTestFS: every path absfs hands
// it is joined under root before touching the real os package, so a Store
// built on DiskFS can never escape its storage root. It carries no
// encryption of its own — that's the Store's job, one layer up — DiskFS
// only ever sees and writes the opaque on-disk names the Store already
// produced.
type DiskFS struct {
	root string
	cwd  string
}

// NewDiskFS creates the storage root directory if needed and returns a
// DiskFS rooted there.
func NewDiskFS(root string) (*DiskFS, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &DiskFS{root: root, cwd: "/"}, nil
}

func (fs *DiskFS) join(name string) string {
	return filepath.Join(fs.root, name)
}

func (fs *DiskFS) OpenFile(name string, flag int, perm os.FileMode) (absfs.File, error) {
	return os.OpenFile(fs.join(name), flag, perm)
}

func (fs *DiskFS) Open(name string) (absfs.File, error) {
	return fs.OpenFile(name, os.O_RDONLY, 0)
}

func (fs *DiskFS) Create(name string) (absfs.File, error) {
	return fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
}

func (fs *DiskFS) Mkdir(name string, perm os.FileMode) error {
	return os.Mkdir(fs.join(name), perm)
}

func (fs *DiskFS) MkdirAll(name string, perm os.FileMode) error {
	return os.MkdirAll(fs.join(name), perm)
}

func (fs *DiskFS) Remove(name string) error {
	return os.Remove(fs.join(name))
}

func (fs *DiskFS) RemoveAll(path string) error {
	return os.RemoveAll(fs.join(path))
}

func (fs *DiskFS) Rename(oldpath, newpath string) error {
	return os.Rename(fs.join(oldpath), fs.join(newpath))
}

func (fs *DiskFS) Stat(name string) (os.FileInfo, error) {
	return os.Stat(fs.join(name))
}

func (fs *DiskFS) Chmod(name string, mode os.FileMode) error {
	return os.Chmod(fs.join(name), mode)
}

func (fs *DiskFS) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(fs.join(name), atime, mtime)
}

func (fs *DiskFS) Chown(name string, uid, gid int) error {
	return os.Chown(fs.join(name), uid, gid)
}

func (fs *DiskFS) Truncate(name string, size int64) error {
	return os.Truncate(fs.join(name), size)
}

func (fs *DiskFS) Separator() uint8 {
	return os.PathSeparator
}

func (fs *DiskFS) ListSeparator() uint8 {
	return os.PathListSeparator
}

func (fs *DiskFS) Chdir(dir string) error {
	fs.cwd = dir
	return nil
}

func (fs *DiskFS) Getwd() (string, error) {
	if fs.cwd == "" {
		return "/", nil
	}
	return fs.cwd, nil
}

func (fs *DiskFS) TempDir() string {
	return os.TempDir()
}
