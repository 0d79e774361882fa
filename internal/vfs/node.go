// Package vfs implements the in-memory virtual filesystem behind the shell:
// the node tree loaded from a source description, path resolution, and the
// session operations (cd, ls, mkdir, cp, read) built on top of them.
package vfs

import (
	"io/fs"
	"sort"
	"time"
)

// Node is either a directory or a file.
// The Mode field declares which one; fs.ModeDir marks directories.
type Node struct {
	Name     string
	Mode     fs.FileMode      // fs.ModeDir for directories, 0 for regular files
	ModTime  time.Time        // Creation time within the session
	Data     []byte           // Stored payload (files only), raw text or base64
	Children map[string]*Node // Owned children keyed by name (directories only)
}

// NewDir returns an empty directory node.
func NewDir(name string) *Node {
	return &Node{
		Name:     name,
		Mode:     fs.ModeDir | 0o755,
		ModTime:  time.Now(),
		Children: make(map[string]*Node),
	}
}

// NewFile returns a file node holding a private copy of data.
func NewFile(name string, data []byte) *Node {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Node{
		Name:    name,
		Mode:    0o644,
		ModTime: time.Now(),
		Data:    buf,
	}
}

// IsDir reports whether n is a directory.
func (n *Node) IsDir() bool {
	return n.Mode.IsDir()
}

// ChildNames returns the names of n's children in lexicographic order.
// A file has no children.
func (n *Node) ChildNames() []string {
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the stored payload length.
func (n *Node) Size() int64 {
	return int64(len(n.Data))
}

// count returns the number of directories and files below n, n excluded.
func (n *Node) count() (dirs, files int) {
	for _, c := range n.Children {
		if c.IsDir() {
			dirs++
			d, f := c.count()
			dirs += d
			files += f
		} else {
			files++
		}
	}
	return dirs, files
}
