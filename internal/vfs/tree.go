package vfs

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"unicode/utf8"
)

// DefaultName is reported when the source description carries no name.
const DefaultName = "unnamed_vfs"

// Tree is a loaded virtual filesystem. It exclusively owns Root.
type Tree struct {
	Name   string
	Digest string // hex SHA-256 of the source bytes
	Format Format
	Root   *Node
}

// Stats summarises a tree for diagnostics.
type Stats struct {
	Dirs  int
	Files int
}

// Stats counts directories and files below the root.
func (t *Tree) Stats() Stats {
	d, f := t.Root.count()
	return Stats{Dirs: d, Files: f}
}

// Info renders the vfs-info report.
func (t *Tree) Info() string {
	return fmt.Sprintf("VFS Name: %s\nSHA-256: %s\n", t.Name, t.Digest)
}

// Lookup walks components from the root. The empty sequence is the root.
func (t *Tree) Lookup(components []string) (*Node, error) {
	node := t.Root
	for _, name := range components {
		if !node.IsDir() {
			return nil, ErrNotFound
		}
		child, ok := node.Children[name]
		if !ok {
			return nil, ErrNotFound
		}
		node = child
	}
	return node, nil
}

// Mkdir creates the directory at components together with any missing
// parents. The target itself must not exist yet.
func (t *Tree) Mkdir(components []string) error {
	if _, err := t.Lookup(components); err == nil {
		return pathErr("mkdir", components, ErrAlreadyExists)
	}

	node := t.Root
	for i, name := range components {
		child, ok := node.Children[name]
		if !ok {
			child = NewDir(name)
			node.Children[name] = child
		} else if !child.IsDir() {
			return pathErr("mkdir", components[:i+1], ErrNotADirectory)
		}
		node = child
	}
	return nil
}

// Copy duplicates the file at src to dst. An existing directory at dst
// receives the copy under the source's own name. The parent of the final
// target must already exist as a directory.
func (t *Tree) Copy(src, dst []string) error {
	source, err := t.Lookup(src)
	if err != nil {
		return pathErr("cp", src, ErrNotFound)
	}
	if source.IsDir() {
		return pathErr("cp", src, ErrNotAFile)
	}

	target := append([]string(nil), dst...)
	if node, err := t.Lookup(target); err == nil && node.IsDir() {
		target = append(target, src[len(src)-1])
	}
	if _, err := t.Lookup(target); err == nil {
		return pathErr("cp", target, ErrAlreadyExists)
	}

	parentPath := target[:len(target)-1]
	parent, err := t.Lookup(parentPath)
	if err != nil || !parent.IsDir() {
		return pathErr("cp", parentPath, ErrNotADirectory)
	}

	name := target[len(target)-1]
	parent.Children[name] = NewFile(name, source.Data)
	return nil
}

// Digest returns the hex SHA-256 of src. It is shown to users and never
// used to verify anything.
func Digest(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// Decode returns the readable text of a stored payload: the base64-decoded
// text when data is padded standard base64 of valid UTF-8 on a single line,
// otherwise data unchanged.
func Decode(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	// StdEncoding skips line breaks; a payload with them is raw text.
	if bytes.ContainsAny(data, "\r\n") {
		return string(data)
	}
	decoded, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil || !utf8.Valid(decoded) {
		return string(data)
	}
	return string(decoded)
}
