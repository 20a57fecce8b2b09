package editor

import (
	"fmt"

	"github.com/dshills/imagenode/internal/document"
	"github.com/dshills/imagenode/internal/selection"
)

// Txn is the mutation handle passed to Update.
type Txn struct {
	ed *Editor
}

// Selection returns the selection as of this point in the transaction.
func (tx *Txn) Selection() selection.State {
	return tx.ed.sel
}

// SetSelection replaces the global selection. Nil and empty node
// selections become None.
func (tx *Txn) SetSelection(state selection.State) {
	tx.ed.sel = selection.Normalize(state)
}

// ClearSelection empties a node selection. Other variants are left alone.
func (tx *Txn) ClearSelection() {
	if selection.Kind(tx.ed.sel) == selection.VariantNode {
		tx.ed.sel = selection.None{}
	}
}

// SetNodeSelected adds or removes key from the node selection. Adding to a
// non-node selection replaces it with a node selection of just key.
func (tx *Txn) SetNodeSelected(key document.NodeKey, selected bool) {
	current, isNode := selection.AsNode(tx.ed.sel)
	switch {
	case selected && isNode:
		tx.SetSelection(current.With(key))
	case selected:
		tx.SetSelection(selection.Only(key))
	case isNode:
		tx.SetSelection(current.Without(key))
	}
}

// GetNodeByKey returns the node with key, or nil.
func (tx *Txn) GetNodeByKey(key document.NodeKey) document.Node {
	return tx.ed.tree.GetNodeByKey(key)
}

// RemoveNode removes the node with key and drops it from a node selection.
// It returns false if the node does not exist.
func (tx *Txn) RemoveNode(key document.NodeKey) bool {
	node := tx.ed.tree.GetNodeByKey(key)
	if node == nil {
		return false
	}
	node.Remove()
	tx.SetNodeSelected(key, false)
	return true
}

// SetImageSize commits new dimensions to the image node with key.
func (tx *Txn) SetImageSize(key document.NodeKey, width, height document.Dimension) error {
	img := document.AsImageNode(tx.ed.tree.GetNodeByKey(key))
	if img == nil {
		return fmt.Errorf("set size of %s: %w", key, document.ErrNodeNotFound)
	}
	return img.SetWidthAndHeight(width, height)
}

// Insert appends node to the document.
func (tx *Txn) Insert(node document.Node) error {
	return tx.ed.tree.Insert(node)
}
