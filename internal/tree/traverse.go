package tree

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mesh-intelligence/arbor/pkg/types"
)

// DefaultLayerDepth bounds Layers when the caller passes a non-positive depth.
const DefaultLayerDepth = 10

// walk visits the subtree rooted at start in pre-order, children in
// insertion order, until visit returns false. A visited set guards against
// identifiers listed under more than one parent.
func (m *Manager) walk(start *Node, visit func(*Node) bool) {
	seen := make(map[string]bool)
	var rec func(n *Node) bool
	rec = func(n *Node) bool {
		if seen[n.ID] {
			return true
		}
		seen[n.ID] = true
		if !visit(n) {
			return false
		}
		for _, id := range n.Children {
			child, ok := m.store.Find(id)
			if !ok {
				continue
			}
			if !rec(child) {
				return false
			}
		}
		return true
	}
	rec(start)
}

// DumpSubtree returns snapshots of every node in the subtree rooted at id,
// in pre-order. The result is fully materialized.
func (m *Manager) DumpSubtree(ctx context.Context, id string) (snaps []types.Snapshot, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := m.begin(ctx, opDump, attribute.String("node.id", id))
	defer func() { end(err) }()

	return m.dumpSubtree(id)
}

func (m *Manager) dumpSubtree(id string) ([]types.Snapshot, error) {
	start, ok := m.store.Find(id)
	if !ok {
		return nil, fmt.Errorf("node %q: %w", id, types.ErrNotFound)
	}
	var snaps []types.Snapshot
	m.walk(start, func(n *Node) bool {
		snaps = append(snaps, m.snapshot(n))
		return true
	})
	return snaps, nil
}

// DumpAll returns DumpSubtree of the root.
func (m *Manager) DumpAll(ctx context.Context) ([]types.Snapshot, error) {
	return m.DumpSubtree(ctx, m.RootID())
}

// IsDescendant reports whether candidate lies in the subtree rooted at
// nodeID, nodeID itself included. Unknown identifiers yield false.
func (m *Manager) IsDescendant(candidate, nodeID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isDescendant(candidate, nodeID)
}

func (m *Manager) isDescendant(candidate, nodeID string) bool {
	start, ok := m.store.Find(nodeID)
	if !ok {
		return false
	}
	found := false
	m.walk(start, func(n *Node) bool {
		found = n.ID == candidate
		return !found
	})
	return found
}

// Layers returns node identifiers grouped by distance from the root, breadth
// first, stopping at the first empty layer or after maxDepth layers.
func (m *Manager) Layers(maxDepth int) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if maxDepth <= 0 {
		maxDepth = DefaultLayerDepth
	}
	root, ok := m.store.Root()
	if !ok {
		return nil
	}
	seen := map[string]bool{root.ID: true}
	layers := [][]string{{root.ID}}
	for len(layers) < maxDepth {
		var next []string
		for _, id := range layers[len(layers)-1] {
			n, _ := m.store.Find(id)
			for _, c := range n.Children {
				if seen[c] || !m.store.Exists(c) {
					continue
				}
				seen[c] = true
				next = append(next, c)
			}
		}
		if len(next) == 0 {
			break
		}
		layers = append(layers, next)
	}
	return layers
}
