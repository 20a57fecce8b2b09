package imageelem

import (
	"github.com/dshills/imagenode/internal/document"
	"github.com/dshills/imagenode/internal/editor"
	"github.com/dshills/imagenode/internal/selection"
)

// SelectMode chooses how Select changes the node selection.
type SelectMode uint8

const (
	// SelectExclusive replaces the selection with this node only.
	SelectExclusive SelectMode = iota
	// SelectToggle flips this node's membership and keeps the others.
	SelectToggle
)

// String returns the mode name.
func (m SelectMode) String() string {
	if m == SelectToggle {
		return "toggle"
	}
	return "exclusive"
}

// SelectionBridge links one node key to the editor's global selection.
// It keeps no state of its own; every query reads the editor.
type SelectionBridge struct {
	ed  *editor.Editor
	key document.NodeKey
}

// NewSelectionBridge creates a bridge for key.
func NewSelectionBridge(ed *editor.Editor, key document.NodeKey) *SelectionBridge {
	return &SelectionBridge{ed: ed, key: key}
}

// Key returns the node key.
func (b *SelectionBridge) Key() document.NodeKey {
	return b.key
}

// IsSelected returns true if the current selection is a node selection
// containing the key.
func (b *SelectionBridge) IsSelected() bool {
	return selection.IsNodeSelected(b.ed.Selection(), b.key)
}

// Select changes the selection in a single transaction.
func (b *SelectionBridge) Select(mode SelectMode) {
	b.ed.Update(func(tx *editor.Txn) {
		switch mode {
		case SelectToggle:
			tx.SetNodeSelected(b.key, !selection.IsNodeSelected(tx.Selection(), b.key))
		default:
			tx.SetSelection(selection.Only(b.key))
		}
	}, "select-"+mode.String())
}

// Clear removes the key from the node selection if present.
func (b *SelectionBridge) Clear() {
	if !b.IsSelected() {
		return
	}
	b.ed.Update(func(tx *editor.Txn) {
		tx.SetNodeSelected(b.key, false)
	}, "deselect")
}
