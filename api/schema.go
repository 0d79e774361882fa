package api

// Entry kinds understood by the loader. Any other kind is ignored.
const (
	KindDir  = "dir"
	KindFile = "file"
)

// Document is the structured (JSON or YAML) form of a tree description.
// It mirrors the XML form: a single "vfs" wrapper holding nested entries.
type Document struct {
	// VFS is the wrapping root. A document without it is rejected.
	VFS *Root `json:"vfs" yaml:"vfs"`
}

// Root is the wrapping element of a tree description.
type Root struct {
	// Name is shown by vfs-info. Optional.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Entries are the children of the root directory.
	Entries []Entry `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// Entry is a directory or a file in the description.
type Entry struct {
	// Type is KindDir or KindFile.
	Type string `json:"type" yaml:"type"`
	// Name of the entry within its parent. Entries without a name are skipped.
	Name string `json:"name" yaml:"name"`
	// Content is the file payload: empty, raw text, or base64 text.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
	// Entries are the children of a directory.
	Entries []Entry `json:"entries,omitempty" yaml:"entries,omitempty"`
}
