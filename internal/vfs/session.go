package vfs

// Session is one shell's view of a tree: the tree plus the current working
// path. A Session is not safe for concurrent use.
type Session struct {
	tree *Tree
	cwd  []string
}

// NewSession starts a session at the root of tree.
func NewSession(tree *Tree) *Session {
	return &Session{tree: tree, cwd: []string{}}
}

// Tree returns the underlying tree.
func (s *Session) Tree() *Tree {
	return s.tree
}

// Pwd renders the current working path; the root is "/".
func (s *Session) Pwd() string {
	return Join(s.cwd)
}

// Resolve resolves path against the current working path.
func (s *Session) Resolve(path string) []string {
	return Resolve(s.cwd, path)
}

// Cd changes the current working path. It is left untouched on failure.
func (s *Session) Cd(path string) error {
	target := s.Resolve(path)
	node, err := s.tree.Lookup(target)
	if err != nil {
		return pathErr("cd", target, ErrNotFound)
	}
	if !node.IsDir() {
		return pathErr("cd", target, ErrNotADirectory)
	}
	s.cwd = target
	return nil
}

// Ls lists the sorted child names of the directory at path, or of the
// current directory when path is empty. It never changes the current path.
func (s *Session) Ls(path string) ([]string, error) {
	target := s.cwd
	if path != "" {
		target = s.Resolve(path)
	}
	node, err := s.tree.Lookup(target)
	if err != nil {
		return nil, pathErr("ls", target, ErrNotFound)
	}
	if !node.IsDir() {
		return nil, pathErr("ls", target, ErrNotADirectory)
	}
	return node.ChildNames(), nil
}

// Mkdir creates the directory at path and any missing parents.
func (s *Session) Mkdir(path string) error {
	return s.tree.Mkdir(s.Resolve(path))
}

// Cp copies the file at src to dst.
func (s *Session) Cp(src, dst string) error {
	return s.tree.Copy(s.Resolve(src), s.Resolve(dst))
}

// ReadFile returns the decoded content of the file at path.
func (s *Session) ReadFile(path string) (string, error) {
	target := s.Resolve(path)
	node, err := s.tree.Lookup(target)
	if err != nil || node.IsDir() {
		return "", pathErr("read", target, ErrNotFound)
	}
	return Decode(node.Data), nil
}
