package document

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeKey is the opaque identity of a node within a tree.
type NodeKey string

// NewKey returns a fresh random node key.
func NewKey() NodeKey {
	return NodeKey(uuid.New().String())
}

// Node types.
const (
	TypeImage     = "image"
	TypeParagraph = "paragraph"
)

// Node is an element of the document tree.
type Node interface {
	// Key returns the node's identity.
	Key() NodeKey

	// Type returns the node type name ("image", "paragraph").
	Type() string

	// IsAttached returns true while the node is part of a tree.
	IsAttached() bool

	// Remove detaches the node from its tree. Removing a detached node is a no-op.
	Remove()
}

// base holds the fields shared by all node kinds.
type base struct {
	key  NodeKey
	tree *Tree
}

// Key returns the node key.
func (b *base) Key() NodeKey {
	return b.key
}

// IsAttached returns true if the node belongs to a tree.
func (b *base) IsAttached() bool {
	return b.tree != nil
}

// Remove detaches the node from its tree.
func (b *base) Remove() {
	if b.tree == nil {
		return
	}
	b.tree.remove(b.key)
}

// ImageAttrs are the user-visible attributes of an image node.
type ImageAttrs struct {
	// Src is the image source URI or path.
	Src string

	// AltText describes the image for accessibility and fallback rendering.
	AltText string

	// Width is the display width; Inherit lets layout decide.
	Width Dimension

	// Height is the display height; Inherit lets layout decide.
	Height Dimension

	// MaxWidth bounds the display width in pixels.
	MaxWidth int

	// Resizable enables the interactive resize handle.
	Resizable bool

	// Caption is optional text shown under the image.
	Caption string

	// ShowCaption toggles caption display.
	ShowCaption bool
}

// ImageNode is an embedded image.
type ImageNode struct {
	base
	attrs ImageAttrs
}

// NewImageNode creates a detached image node with a fresh key.
func NewImageNode(attrs ImageAttrs) *ImageNode {
	return NewImageNodeWithKey(NewKey(), attrs)
}

// NewImageNodeWithKey creates a detached image node with the given key.
func NewImageNodeWithKey(key NodeKey, attrs ImageAttrs) *ImageNode {
	return &ImageNode{base: base{key: key}, attrs: attrs}
}

// Type implements Node.
func (n *ImageNode) Type() string {
	return TypeImage
}

// Attrs returns a snapshot of the node attributes.
func (n *ImageNode) Attrs() ImageAttrs {
	return n.attrs
}

// Src returns the image source.
func (n *ImageNode) Src() string {
	return n.attrs.Src
}

// Width returns the display width.
func (n *ImageNode) Width() Dimension {
	return n.attrs.Width
}

// Height returns the display height.
func (n *ImageNode) Height() Dimension {
	return n.attrs.Height
}

// SetWidthAndHeight commits new display dimensions.
func (n *ImageNode) SetWidthAndHeight(width, height Dimension) error {
	if n.tree == nil {
		return fmt.Errorf("set size of %s: %w", n.key, ErrNodeDetached)
	}
	n.attrs.Width = width
	n.attrs.Height = height
	n.tree.touch()
	return nil
}

// ParagraphNode is a block of plain text.
type ParagraphNode struct {
	base
	text string
}

// NewParagraphNode creates a detached paragraph with a fresh key.
func NewParagraphNode(text string) *ParagraphNode {
	return NewParagraphNodeWithKey(NewKey(), text)
}

// NewParagraphNodeWithKey creates a detached paragraph with the given key.
func NewParagraphNodeWithKey(key NodeKey, text string) *ParagraphNode {
	return &ParagraphNode{base: base{key: key}, text: text}
}

// Type implements Node.
func (n *ParagraphNode) Type() string {
	return TypeParagraph
}

// Text returns the paragraph text.
func (n *ParagraphNode) Text() string {
	return n.text
}

// IsImageNode reports whether node is a non-nil image node.
func IsImageNode(node Node) bool {
	img, ok := node.(*ImageNode)
	return ok && img != nil
}

// AsImageNode returns node as an image node, or nil.
func AsImageNode(node Node) *ImageNode {
	img, ok := node.(*ImageNode)
	if !ok {
		return nil
	}
	return img
}
