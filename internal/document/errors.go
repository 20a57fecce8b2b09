package document

import (
	"errors"
	"fmt"
)

// Document errors.
var (
	// ErrInvalidDimension indicates a width or height that is neither
	// "inherit" nor a non-negative pixel count.
	ErrInvalidDimension = errors.New("document: invalid dimension")

	// ErrNodeNotFound indicates the node key is not in the tree.
	ErrNodeNotFound = errors.New("document: node not found")

	// ErrNodeDetached indicates a mutation on a node already removed.
	ErrNodeDetached = errors.New("document: node is detached")

	// ErrDuplicateKey indicates a node was inserted with a key already in use.
	ErrDuplicateKey = errors.New("document: duplicate node key")

	// ErrUnsupportedFormat indicates an unknown document file extension.
	ErrUnsupportedFormat = errors.New("document: unsupported file format")

	// ErrEmptySource indicates an image node without a source.
	ErrEmptySource = errors.New("document: image source is empty")
)

// ParseError describes a document file that could not be decoded.
type ParseError struct {
	// Path is the file path, or "<reader>".
	Path string
	// Index is the node index that failed, or -1 for whole-file errors.
	Index int
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("parse error in %s at node %d: %v", e.Path, e.Index, e.Err)
	}
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
