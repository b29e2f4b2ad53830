package tree

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mesh-intelligence/arbor/pkg/types"
)

// Move reparents sourceID, with its whole subtree, under destID.
//
// The move is rejected with types.ErrInvalidMove when destID is sourceID or
// one of its descendants. Memory is updated first; records are then written
// in this order: old parent, source, each descendant of source in pre-order,
// destination. A failed write stops the sequence and returns
// types.ErrPersistence, leaving later records stale on disk.
func (m *Manager) Move(ctx context.Context, destID, sourceID string) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := m.begin(ctx, opMove, attribute.String("move.dest", destID), attribute.String("move.source", sourceID))
	defer func() { end(err) }()

	if err := m.move(destID, sourceID); err != nil {
		return err
	}
	m.logger.Debug("moved node", "node", sourceID, "dest", destID)
	return nil
}

func (m *Manager) move(destID, sourceID string) error {
	dest, ok := m.store.Find(destID)
	if !ok {
		return fmt.Errorf("destination %q: %w", destID, types.ErrNotFound)
	}
	source, ok := m.store.Find(sourceID)
	if !ok {
		return fmt.Errorf("source %q: %w", sourceID, types.ErrNotFound)
	}
	if m.isDescendant(dest.ID, source.ID) {
		return fmt.Errorf("%w: %q is %q or one of its descendants", types.ErrInvalidMove, destID, sourceID)
	}
	if source.IsRoot() {
		return fmt.Errorf("%w: cannot move root %q", types.ErrInvalidMove, sourceID)
	}
	oldParent, ok := m.store.Find(source.Parent)
	if !ok {
		return fmt.Errorf("parent %q of %q: %w", source.Parent, sourceID, types.ErrNotFound)
	}

	// Detach and reattach.
	oldParent.removeChild(source.ID)
	dest.Children = append(dest.Children, source.ID)
	source.Parent = dest.ID
	source.Height = dest.Height + 1

	// Heights below source follow their parents.
	var below []*Node
	m.walk(source, func(n *Node) bool {
		if n != source {
			if p, ok := m.store.Find(n.Parent); ok {
				n.Height = p.Height + 1
			}
			below = append(below, n)
		}
		return true
	})

	if err := m.store.Persist(oldParent); err != nil {
		return err
	}
	if err := m.store.Persist(source); err != nil {
		return err
	}
	for _, n := range below {
		if err := m.store.Persist(n); err != nil {
			return err
		}
	}
	return m.store.Persist(dest)
}
