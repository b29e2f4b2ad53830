package tree

import "github.com/mesh-intelligence/arbor/pkg/types"

// Node is one entry of the tree arena. Edges are identifiers resolved
// through the node store index, never pointers, so parent and child links
// cannot form an ownership cycle.
type Node struct {
	ID       string
	Parent   string   // empty for the root
	Children []string // insertion order
	Height   int
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool {
	return n.Parent == ""
}

// record returns the persisted form of n. The children slice is copied so
// the record never aliases live state.
func (n *Node) record() types.Record {
	parent := n.Parent
	if parent == "" {
		parent = types.NoParent
	}
	children := make([]string, len(n.Children))
	copy(children, n.Children)
	return types.Record{
		ID:       n.ID,
		Parent:   parent,
		Children: children,
		Height:   n.Height,
	}
}

// removeChild drops id from the child list, keeping the order of the rest.
func (n *Node) removeChild(id string) bool {
	for i, c := range n.Children {
		if c == id {
			n.Children = append(n.Children[:i:i], n.Children[i+1:]...)
			return true
		}
	}
	return false
}

// hasChild reports whether id is a direct child of n.
func (n *Node) hasChild(id string) bool {
	for _, c := range n.Children {
		if c == id {
			return true
		}
	}
	return false
}
