// Package source abstracts where file content is read from: the working
// tree or a git revision.
package source

import (
	"os"
)

// ContentSource provides file content.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// FileReader is implemented by vcs.Tree.
type FileReader interface {
	File(path string) ([]byte, error)
}

// TreeSource reads files from a git revision. Paths are relative to the
// repository root.
type TreeSource struct {
	tree FileReader
}

// NewTree creates a source that reads from a git tree.
func NewTree(tree FileReader) *TreeSource {
	return &TreeSource{tree: tree}
}

// Read implements ContentSource.
func (t *TreeSource) Read(path string) ([]byte, error) {
	return t.tree.File(path)
}

// MemorySource serves content from a map. Used by the MCP server for
// inline snippets and by tests.
type MemorySource map[string][]byte

// Read implements ContentSource.
func (m MemorySource) Read(path string) ([]byte, error) {
	content, ok := m[path]
	if !ok {
		return nil, &os.PathError{Op: "read", Path: path, Err: os.ErrNotExist}
	}
	return content, nil
}
