// Package selection models the editor's single global selection.
//
// A selection is exactly one of four variants:
//
//   - None: nothing is selected
//   - NodeSelection: a set of whole nodes, addressed by key
//   - RangeSelection: a text range between an anchor and a focus point
//   - GridSelection: a rectangular block of table cells
//
// Variants are immutable values implementing State. Callers inspect a state
// through the helpers in this package (Kind, AsNode, IsNodeSelected) rather
// than type-switching inline.
package selection

import (
	"sort"
	"strings"

	"github.com/dshills/imagenode/internal/document"
)

// Variant identifies which selection variant a State holds.
type Variant uint8

const (
	// VariantNone is the empty selection.
	VariantNone Variant = iota
	// VariantNode is a node selection.
	VariantNode
	// VariantRange is a text range selection.
	VariantRange
	// VariantGrid is a table cell selection.
	VariantGrid
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case VariantNone:
		return "none"
	case VariantNode:
		return "node"
	case VariantRange:
		return "range"
	case VariantGrid:
		return "grid"
	default:
		return "unknown"
	}
}

// State is a selection value. The set of implementations is closed.
type State interface {
	// Variant returns which variant this state is.
	Variant() Variant

	// Equal reports whether two states select the same thing.
	Equal(other State) bool

	// String returns a short description for logs.
	String() string

	isState()
}

// None is the empty selection.
type None struct{}

// Variant implements State.
func (None) Variant() Variant { return VariantNone }

// Equal implements State.
func (None) Equal(other State) bool { return Kind(other) == VariantNone }

// String implements State.
func (None) String() string { return "none" }

func (None) isState() {}

// NodeSelection selects whole nodes by key.
type NodeSelection struct {
	keys map[document.NodeKey]struct{}
}

// NewNodeSelection creates a node selection containing keys.
func NewNodeSelection(keys ...document.NodeKey) NodeSelection {
	m := make(map[document.NodeKey]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return NodeSelection{keys: m}
}

// Variant implements State.
func (NodeSelection) Variant() Variant { return VariantNode }

// Has returns true if key is selected.
func (s NodeSelection) Has(key document.NodeKey) bool {
	_, ok := s.keys[key]
	return ok
}

// Len returns the number of selected nodes.
func (s NodeSelection) Len() int {
	return len(s.keys)
}

// IsEmpty returns true if no node is selected.
func (s NodeSelection) IsEmpty() bool {
	return len(s.keys) == 0
}

// Keys returns the selected keys in sorted order.
func (s NodeSelection) Keys() []document.NodeKey {
	out := make([]document.NodeKey, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// With returns a copy of the selection with key added.
func (s NodeSelection) With(key document.NodeKey) NodeSelection {
	m := make(map[document.NodeKey]struct{}, len(s.keys)+1)
	for k := range s.keys {
		m[k] = struct{}{}
	}
	m[key] = struct{}{}
	return NodeSelection{keys: m}
}

// Without returns a copy of the selection with key removed.
func (s NodeSelection) Without(key document.NodeKey) NodeSelection {
	m := make(map[document.NodeKey]struct{}, len(s.keys))
	for k := range s.keys {
		if k != key {
			m[k] = struct{}{}
		}
	}
	return NodeSelection{keys: m}
}

// Only returns a selection containing just key.
func Only(key document.NodeKey) NodeSelection {
	return NewNodeSelection(key)
}

// Equal implements State.
func (s NodeSelection) Equal(other State) bool {
	o, ok := AsNode(other)
	if !ok || o.Len() != s.Len() {
		return false
	}
	for k := range s.keys {
		if !o.Has(k) {
			return false
		}
	}
	return true
}

// String implements State.
func (s NodeSelection) String() string {
	keys := s.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k)
	}
	return "node{" + strings.Join(parts, ",") + "}"
}

func (NodeSelection) isState() {}

// Point is a text position inside a node.
type Point struct {
	Key    document.NodeKey
	Offset int
}

// RangeSelection selects text between Anchor and Focus.
type RangeSelection struct {
	Anchor Point
	Focus  Point
}

// Variant implements State.
func (RangeSelection) Variant() Variant { return VariantRange }

// IsCollapsed returns true if anchor and focus coincide.
func (s RangeSelection) IsCollapsed() bool {
	return s.Anchor == s.Focus
}

// Equal implements State.
func (s RangeSelection) Equal(other State) bool {
	o, ok := other.(RangeSelection)
	return ok && o == s
}

// String implements State.
func (s RangeSelection) String() string {
	return "range{" + string(s.Anchor.Key) + ".." + string(s.Focus.Key) + "}"
}

func (RangeSelection) isState() {}

// GridSelection selects a block of cells within a table node.
type GridSelection struct {
	Table  document.NodeKey
	Anchor document.NodeKey
	Focus  document.NodeKey
}

// Variant implements State.
func (GridSelection) Variant() Variant { return VariantGrid }

// Equal implements State.
func (s GridSelection) Equal(other State) bool {
	o, ok := other.(GridSelection)
	return ok && o == s
}

// String implements State.
func (s GridSelection) String() string {
	return "grid{" + string(s.Table) + "}"
}

func (GridSelection) isState() {}

// Kind returns the variant of state. A nil state is VariantNone.
func Kind(state State) Variant {
	if state == nil {
		return VariantNone
	}
	return state.Variant()
}

// AsNode returns state as a NodeSelection if it is one.
func AsNode(state State) (NodeSelection, bool) {
	s, ok := state.(NodeSelection)
	return s, ok
}

// IsNodeSelected returns true iff state is a NodeSelection containing key.
func IsNodeSelected(state State, key document.NodeKey) bool {
	s, ok := AsNode(state)
	return ok && s.Has(key)
}

// Normalize maps nil and empty node selections to None.
func Normalize(state State) State {
	if state == nil {
		return None{}
	}
	if s, ok := AsNode(state); ok && s.IsEmpty() {
		return None{}
	}
	return state
}
