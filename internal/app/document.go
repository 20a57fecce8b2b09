package app

import (
	"path/filepath"
	"sync/atomic"

	"github.com/dshills/imagenode/internal/document"
)

// Document is an open document file.
type Document struct {
	// Path is the file path (empty for unsaved documents).
	Path string

	// Name is the display name.
	Name string

	tree     *document.Tree
	modified atomic.Bool
}

// NewDocument wraps tree. A nil tree creates an empty document.
func NewDocument(path string, tree *document.Tree) *Document {
	if tree == nil {
		tree = document.NewTree()
	}
	name := "Untitled"
	if path != "" {
		name = filepath.Base(path)
	}
	return &Document{Path: path, Name: name, tree: tree}
}

// OpenDocument loads the document at path.
func OpenDocument(path string) (*Document, error) {
	tree, err := document.Load(path)
	if err != nil {
		return nil, NewOperationError("open", path, err)
	}
	return NewDocument(path, tree), nil
}

// Tree returns the document tree.
func (d *Document) Tree() *document.Tree {
	return d.tree
}

// Dir returns the directory of the document file, or "" if unsaved.
func (d *Document) Dir() string {
	if d.Path == "" {
		return ""
	}
	return filepath.Dir(d.Path)
}

// IsModified returns true if the document has unsaved changes.
func (d *Document) IsModified() bool {
	return d.modified.Load()
}

// SetModified sets the modified flag.
func (d *Document) SetModified(modified bool) {
	d.modified.Store(modified)
}

// Save writes the document to its path.
func (d *Document) Save() error {
	if d.Path == "" {
		return NewOperationError("save", d.Name, ErrNoPath)
	}
	return d.SaveAs(d.Path)
}

// SaveAs writes the document to path and makes it the document's path.
func (d *Document) SaveAs(path string) error {
	if err := document.Save(path, d.tree); err != nil {
		return NewOperationError("save", path, err)
	}
	d.Path = path
	d.Name = filepath.Base(path)
	d.SetModified(false)
	return nil
}
