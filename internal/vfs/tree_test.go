package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTree(t *testing.T) *Tree {
	t.Helper()
	tree, err := Load([]byte(sampleXML), FormatXML)
	require.NoError(t, err)
	return tree
}

func TestLookup(t *testing.T) {
	tree := newTestTree(t)

	root, err := tree.Lookup(nil)
	require.NoError(t, err)
	assert.Same(t, tree.Root, root)

	_, err = tree.Lookup([]string{"missing"})
	assert.ErrorIs(t, err, ErrNotFound)

	// Walking through a file fails.
	_, err = tree.Lookup([]string{"readme", "child"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTreeMkdirCreatesParents(t *testing.T) {
	tree := newTestTree(t)

	require.NoError(t, tree.Mkdir([]string{"x", "y", "z"}))
	for _, p := range [][]string{{"x"}, {"x", "y"}, {"x", "y", "z"}} {
		n, err := tree.Lookup(p)
		require.NoError(t, err)
		assert.True(t, n.IsDir(), Join(p))
	}
}

func TestTreeMkdirErrors(t *testing.T) {
	tree := newTestTree(t)

	assert.ErrorIs(t, tree.Mkdir(nil), ErrAlreadyExists)
	assert.ErrorIs(t, tree.Mkdir([]string{"docs"}), ErrAlreadyExists)
	assert.ErrorIs(t, tree.Mkdir([]string{"readme"}), ErrAlreadyExists)

	err := tree.Mkdir([]string{"readme", "sub"})
	assert.ErrorIs(t, err, ErrNotADirectory)
	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "/readme", pe.Path)
}

func TestTreeCopyIsIndependent(t *testing.T) {
	tree := newTestTree(t)

	require.NoError(t, tree.Copy([]string{"docs", "a.txt"}, []string{"copy.txt"}))
	src, err := tree.Lookup([]string{"docs", "a.txt"})
	require.NoError(t, err)
	dst, err := tree.Lookup([]string{"copy.txt"})
	require.NoError(t, err)

	assert.Equal(t, src.Data, dst.Data)
	dst.Data[0] = 'J'
	assert.Equal(t, "hello", string(src.Data))
}

func TestTreeCopyIntoDirectoryUsesSourceName(t *testing.T) {
	tree := newTestTree(t)

	require.NoError(t, tree.Copy([]string{"readme"}, []string{"docs", "empty"}))
	n, err := tree.Lookup([]string{"docs", "empty", "readme"})
	require.NoError(t, err)
	assert.Equal(t, "padded", string(n.Data))

	require.NoError(t, tree.Copy([]string{"docs", "a.txt"}, nil))
	_, err = tree.Lookup([]string{"a.txt"})
	assert.NoError(t, err)
}

func TestTreeCopyErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     []string
		dst     []string
		wantErr error
	}{
		{name: "missing source", src: []string{"nope"}, dst: []string{"x"}, wantErr: ErrNotFound},
		{name: "directory source", src: []string{"docs"}, dst: []string{"x"}, wantErr: ErrNotAFile},
		{name: "root source", src: nil, dst: []string{"x"}, wantErr: ErrNotAFile},
		{name: "existing file target", src: []string{"readme"}, dst: []string{"docs", "a.txt"}, wantErr: ErrAlreadyExists},
		{name: "existing name inside directory", src: []string{"docs", "a.txt"}, dst: []string{"docs"}, wantErr: ErrAlreadyExists},
		{name: "missing parent", src: []string{"readme"}, dst: []string{"no", "such", "file"}, wantErr: ErrNotADirectory},
		{name: "file parent", src: []string{"readme"}, dst: []string{"docs", "a.txt", "x"}, wantErr: ErrNotADirectory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := newTestTree(t)
			assert.ErrorIs(t, tree.Copy(tt.src, tt.dst), tt.wantErr)
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "base64 text", in: "aGVsbG8=", want: "hello"},
		{name: "raw text", in: "hello", want: "hello"},
		{name: "invalid alphabet", in: "hello world!", want: "hello world!"},
		{name: "truncated", in: "aGVsbG8", want: "aGVsbG8"},
		{name: "decodes to binary", in: "//79", want: "//79"},
		{name: "line break inside", in: "aGVs\nbG8=", want: "aGVs\nbG8="},
		{name: "carriage return inside", in: "aGVs\r\nbG8=", want: "aGVs\r\nbG8="},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode([]byte(tt.in)))
		})
	}
}

func TestDigestIsDeterministic(t *testing.T) {
	a := Digest([]byte("<vfs/>"))
	assert.Equal(t, a, Digest([]byte("<vfs/>")))
	assert.NotEqual(t, a, Digest([]byte("<vfs />")))
	assert.Len(t, a, 64)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Digest(nil))
}

func TestInfo(t *testing.T) {
	tree := newTestTree(t)
	assert.Equal(t, "VFS Name: sample\nSHA-256: "+tree.Digest+"\n", tree.Info())
}
