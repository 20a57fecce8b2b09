package document

import "fmt"

// Tree is an ordered collection of nodes addressed by key.
type Tree struct {
	order   []NodeKey
	nodes   map[NodeKey]Node
	version uint64
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: make(map[NodeKey]Node)}
}

// Insert appends a detached node to the end of the tree.
func (t *Tree) Insert(node Node) error {
	key := node.Key()
	if _, exists := t.nodes[key]; exists {
		return fmt.Errorf("insert %s: %w", key, ErrDuplicateKey)
	}
	switch n := node.(type) {
	case *ImageNode:
		n.tree = t
	case *ParagraphNode:
		n.tree = t
	default:
		return fmt.Errorf("insert %s: unsupported node type %T", key, node)
	}
	t.nodes[key] = node
	t.order = append(t.order, key)
	t.touch()
	return nil
}

// GetNodeByKey returns the node with the given key, or nil.
func (t *Tree) GetNodeByKey(key NodeKey) Node {
	node, ok := t.nodes[key]
	if !ok {
		return nil
	}
	return node
}

// Keys returns all node keys in document order.
func (t *Tree) Keys() []NodeKey {
	out := make([]NodeKey, len(t.order))
	copy(out, t.order)
	return out
}

// Nodes returns all nodes in document order.
func (t *Tree) Nodes() []Node {
	out := make([]Node, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.nodes[key])
	}
	return out
}

// Images returns all image nodes in document order.
func (t *Tree) Images() []*ImageNode {
	var out []*ImageNode
	for _, key := range t.order {
		if img := AsImageNode(t.nodes[key]); img != nil {
			out = append(out, img)
		}
	}
	return out
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.order)
}

// Version increases on every structural or attribute change.
func (t *Tree) Version() uint64 {
	return t.version
}

// remove detaches the node with key. Returns false if absent.
func (t *Tree) remove(key NodeKey) bool {
	node, ok := t.nodes[key]
	if !ok {
		return false
	}
	delete(t.nodes, key)
	for i, k := range t.order {
		if k == key {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	switch n := node.(type) {
	case *ImageNode:
		n.tree = nil
	case *ParagraphNode:
		n.tree = nil
	}
	t.touch()
	return true
}

func (t *Tree) touch() {
	t.version++
}
