// Package document provides the node tree that backs an imagenode editor.
//
// The tree is a flat, ordered list of nodes addressed by an opaque NodeKey.
// Two node kinds exist:
//
//   - ImageNode: an embedded image with source, alt text, and a resizable box
//   - ParagraphNode: a block of plain text between images
//
// Dimensions:
//
// Image width and height are Dimension values. A Dimension is either the
// sentinel Inherit, meaning the surrounding layout decides, or a
// non-negative pixel count:
//
//	d := document.Pixels(200)
//	d.IsInherit()  // false
//	d.Px()         // 200
//	document.Inherit.String() // "inherit"
//
// Mutation:
//
// Nodes are created and destroyed by the tree. Image nodes expose two
// mutators, Remove and SetWidthAndHeight. The editor package wraps both in
// transactions so listeners observe a consistent state after each update.
//
// Files:
//
// Load and Save read and write documents as YAML (.yaml, .yml) or TOML
// (.toml), chosen by file extension.
//
// Thread Safety:
//
// Tree is not safe for concurrent use. It is owned by the editor's UI
// goroutine.
package document
