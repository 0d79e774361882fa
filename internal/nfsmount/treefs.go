// Package nfsmount exposes a vfs.Tree over NFSv3. It adapts the tree to
// billy.Filesystem for use with willscott/go-nfs. Nothing is mounted on the
// host; clients connect to the listener themselves.
package nfsmount

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/chroot"

	"github.com/agentic-research/vfsh/internal/vfs"
)

var errReadOnly = errors.New("read-only filesystem")

// InfoFile is a virtual file at the root holding the vfs-info report.
const InfoFile = "_vfs_info"

// TreeFS adapts a vfs.Tree to billy.Filesystem.
// File content is served decoded, exactly as cat prints it. Directory
// creation is the only supported mutation.
type TreeFS struct {
	mu       sync.RWMutex
	tree     *vfs.Tree
	info     []byte
	openTime time.Time
}

// NewTreeFS creates a billy.Filesystem backed by tree. The TreeFS must be the
// only user of tree while it is being served.
func NewTreeFS(tree *vfs.Tree) *TreeFS {
	return &TreeFS{
		tree:     tree,
		info:     []byte(tree.Info()),
		openTime: time.Now(),
	}
}

// --- billy.Basic ---

func (fs *TreeFS) Create(filename string) (billy.File, error) {
	return nil, errReadOnly
}

func (fs *TreeFS) Open(filename string) (billy.File, error) {
	return fs.OpenFile(filename, os.O_RDONLY, 0)
}

func (fs *TreeFS) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	filename = cleanPath(filename)

	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND) != 0 {
		return nil, errReadOnly
	}

	if filename == "/"+InfoFile {
		return &bytesFile{name: InfoFile, data: fs.info}, nil
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	node, err := fs.tree.Lookup(vfs.Split(filename))
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: filename, Err: os.ErrNotExist}
	}
	if node.IsDir() {
		return nil, &os.PathError{Op: "open", Path: filename, Err: errors.New("is a directory")}
	}
	return &bytesFile{name: filename, data: []byte(vfs.Decode(node.Data))}, nil
}

func (fs *TreeFS) Stat(filename string) (os.FileInfo, error) {
	return fs.Lstat(filename)
}

func (fs *TreeFS) Rename(oldpath, newpath string) error {
	return errReadOnly
}

func (fs *TreeFS) Remove(filename string) error {
	return errReadOnly
}

func (fs *TreeFS) Join(elem ...string) string {
	return filepath.Join(elem...)
}

// --- billy.TempFile ---

func (fs *TreeFS) TempFile(dir, prefix string) (billy.File, error) {
	return nil, billy.ErrNotSupported
}

// --- billy.Dir ---

func (fs *TreeFS) ReadDir(path string) ([]os.FileInfo, error) {
	path = cleanPath(path)

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	node, err := fs.tree.Lookup(vfs.Split(path))
	if err != nil {
		return nil, &os.PathError{Op: "readdir", Path: path, Err: os.ErrNotExist}
	}
	if !node.IsDir() {
		return nil, &os.PathError{Op: "readdir", Path: path, Err: vfs.ErrNotADirectory}
	}

	names := node.ChildNames()
	infos := make([]os.FileInfo, 0, len(names)+1)
	if path == "/" {
		infos = append(infos, fs.infoFileInfo())
	}
	for _, name := range names {
		infos = append(infos, nodeToFileInfo(node.Children[name]))
	}
	return infos, nil
}

// MkdirAll creates path and any missing parents in the tree. An existing
// directory is not an error here, unlike the shell's mkdir.
func (fs *TreeFS) MkdirAll(filename string, perm os.FileMode) error {
	filename = cleanPath(filename)
	components := vfs.Split(filename)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if node, err := fs.tree.Lookup(components); err == nil {
		if node.IsDir() {
			return nil
		}
		return &os.PathError{Op: "mkdir", Path: filename, Err: vfs.ErrNotADirectory}
	}
	return fs.tree.Mkdir(components)
}

// --- billy.Symlink ---

func (fs *TreeFS) Lstat(filename string) (os.FileInfo, error) {
	filename = cleanPath(filename)

	if filename == "/" {
		return &staticFileInfo{
			name:    "/",
			mode:    os.ModeDir | 0o755,
			modTime: fs.openTime,
		}, nil
	}
	if filename == "/"+InfoFile {
		return fs.infoFileInfo(), nil
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	node, err := fs.tree.Lookup(vfs.Split(filename))
	if err != nil {
		return nil, &os.PathError{Op: "lstat", Path: filename, Err: os.ErrNotExist}
	}
	return nodeToFileInfo(node), nil
}

func (fs *TreeFS) Symlink(target, link string) error {
	return billy.ErrNotSupported
}

func (fs *TreeFS) Readlink(link string) (string, error) {
	return "", billy.ErrNotSupported
}

// --- billy.Chroot ---

func (fs *TreeFS) Chroot(path string) (billy.Filesystem, error) {
	return chroot.New(fs, path), nil
}

func (fs *TreeFS) Root() string {
	return "/"
}

// --- billy.Capable ---

func (fs *TreeFS) Capabilities() billy.Capability {
	return billy.ReadCapability | billy.SeekCapability
}

// --- internals ---

func (fs *TreeFS) infoFileInfo() os.FileInfo {
	return &staticFileInfo{
		name:    InfoFile,
		size:    int64(len(fs.info)),
		mode:    0o444,
		modTime: fs.openTime,
	}
}

// cleanPath normalizes a billy path to a clean absolute path.
func cleanPath(path string) string {
	path = filepath.Clean("/" + path)
	if path == "." {
		return "/"
	}
	return path
}

// nodeToFileInfo converts a vfs.Node to os.FileInfo. Sizes are those of the
// decoded content.
func nodeToFileInfo(n *vfs.Node) os.FileInfo {
	if n.IsDir() {
		return &staticFileInfo{name: n.Name, mode: os.ModeDir | 0o755, modTime: n.ModTime}
	}
	return &staticFileInfo{
		name:    n.Name,
		size:    int64(len(vfs.Decode(n.Data))),
		mode:    0o444,
		modTime: n.ModTime,
	}
}

// staticFileInfo implements os.FileInfo with static values.
type staticFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
}

func (fi *staticFileInfo) Name() string       { return fi.name }
func (fi *staticFileInfo) Size() int64        { return fi.size }
func (fi *staticFileInfo) Mode() os.FileMode  { return fi.mode }
func (fi *staticFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *staticFileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *staticFileInfo) Sys() interface{}   { return nil }

// Compile-time interface checks.
var (
	_ billy.Filesystem = (*TreeFS)(nil)
	_ billy.Capable    = (*TreeFS)(nil)
	_ billy.File       = (*bytesFile)(nil)
)
