// Package tree implements the node store and the tree manager: the in-memory
// arena of nodes indexed by identifier, its structural operations (attach,
// move, subtree dump, descendant test, height maintenance), and the
// persistence calls that keep the record store in step with memory.
package tree

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mesh-intelligence/arbor/internal/observability"
	"github.com/mesh-intelligence/arbor/pkg/types"
)

// NodeStore owns the identifier index and per-node persistence. It has no
// locking of its own; the Manager serializes every call.
type NodeStore struct {
	records types.RecordStore
	nodes   map[string]*Node
	rootID  string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewNodeStore returns an empty node store writing through records.
func NewNodeStore(records types.RecordStore, logger *slog.Logger, metrics *observability.Metrics) *NodeStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &NodeStore{
		records: records,
		nodes:   make(map[string]*Node),
		logger:  logger,
		metrics: metrics,
	}
}

// Exists reports whether id is in the index.
func (s *NodeStore) Exists(id string) bool {
	_, ok := s.nodes[id]
	return ok
}

// Find returns the node for id. Absence is not an error; callers decide.
func (s *NodeStore) Find(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Root returns the root node, or false when no tree is installed.
func (s *NodeStore) Root() (*Node, bool) {
	if s.rootID == "" {
		return nil, false
	}
	return s.Find(s.rootID)
}

// RootID returns the identifier of the installed root, or "".
func (s *NodeStore) RootID() string {
	return s.rootID
}

// Len returns the number of indexed nodes.
func (s *NodeStore) Len() int {
	return len(s.nodes)
}

// register adds n to the index, replacing any node with the same id.
func (s *NodeStore) register(n *Node) {
	s.nodes[n.ID] = n
	if n.IsRoot() && s.rootID == "" {
		s.rootID = n.ID
	}
}

// unregister drops id from the index, reinstating prev when it is non-nil.
func (s *NodeStore) unregister(id string, prev *Node) {
	if prev != nil {
		s.nodes[id] = prev
		return
	}
	delete(s.nodes, id)
}

// clear drops every node from memory. Records are untouched.
func (s *NodeStore) clear() {
	s.nodes = make(map[string]*Node)
	s.rootID = ""
}

// Persist writes the full snapshot of n, replacing its earlier record.
// Failures wrap types.ErrPersistence.
func (s *NodeStore) Persist(n *Node) error {
	err := s.records.Save(n.record())
	s.metrics.RecordWrite(err)
	if err != nil {
		return fmt.Errorf("%w: node %q: %w", types.ErrPersistence, n.ID, err)
	}
	return nil
}

// Remove deletes the record of id. Failures wrap types.ErrPersistence.
func (s *NodeStore) Remove(id string) error {
	err := s.records.Delete(id)
	s.metrics.RecordWrite(err)
	if err != nil {
		return fmt.Errorf("%w: removing node %q: %w", types.ErrPersistence, id, err)
	}
	return nil
}

// Stale returns, sorted, the identifiers of persisted records that have no
// node in the index.
func (s *NodeStore) Stale() ([]string, error) {
	recs, err := s.records.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	var stale []string
	for _, rec := range recs {
		if _, ok := s.nodes[rec.ID]; !ok {
			stale = append(stale, rec.ID)
		}
	}
	sort.Strings(stale)
	return stale, nil
}

// RestoreAll replaces the in-memory tree with the one described by the
// record store and returns its root. An empty store yields a nil root and
// no error. Records are linked in two passes: every node is materialized
// first, then parent and child identifiers are resolved against the complete
// index.
func (s *NodeStore) RestoreAll() (*Node, error) {
	recs, err := s.records.LoadAll()
	if err != nil {
		if errors.Is(err, types.ErrCorruptStore) {
			return nil, err
		}
		return nil, fmt.Errorf("loading records: %w", err)
	}
	if len(recs) == 0 {
		s.clear()
		return nil, nil
	}

	nodes := make(map[string]*Node, len(recs))
	for _, rec := range recs {
		if _, dup := nodes[rec.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate record %q", types.ErrCorruptStore, rec.ID)
		}
		nodes[rec.ID] = &Node{ID: rec.ID, Height: rec.Height}
	}

	root, ok := nodes[types.RootID]
	if !ok {
		return nil, fmt.Errorf("%w: no %q record among %d", types.ErrCorruptStore, types.RootID, len(recs))
	}

	for _, rec := range recs {
		n := nodes[rec.ID]
		if !rec.IsRoot() {
			if _, ok := nodes[rec.Parent]; !ok {
				return nil, fmt.Errorf("%w: node %q references missing parent %q", types.ErrCorruptStore, rec.ID, rec.Parent)
			}
			n.Parent = rec.Parent
		}
		n.Children = make([]string, 0, len(rec.Children))
		for _, c := range rec.Children {
			if _, ok := nodes[c]; !ok {
				return nil, fmt.Errorf("%w: node %q references missing child %q", types.ErrCorruptStore, rec.ID, c)
			}
			n.Children = append(n.Children, c)
		}
	}
	if !root.IsRoot() {
		return nil, fmt.Errorf("%w: root record has parent %q", types.ErrCorruptStore, root.Parent)
	}

	// A crash between the writes of one move can leave edges that only one
	// side agrees on. Keep them and say so.
	for _, n := range nodes {
		for _, c := range n.Children {
			if nodes[c].Parent != n.ID {
				s.logger.Warn("asymmetric edge in restored tree",
					"parent", n.ID, "child", c, "child_parent", nodes[c].Parent)
			}
		}
		if n.IsRoot() && n.ID != root.ID {
			s.logger.Warn("restored node has no parent", "node", n.ID)
		}
	}

	if lost := unreachable(root.ID, nodes); len(lost) > 0 {
		s.logger.Error("restored records unreachable from root", "nodes", lost)
	}

	s.nodes = nodes
	s.rootID = root.ID
	return root, nil
}

// Wipe deletes every persisted record. The in-memory index is untouched.
func (s *NodeStore) Wipe() error {
	if err := s.records.Wipe(); err != nil {
		return fmt.Errorf("wiping records: %w", err)
	}
	return nil
}

// unreachable returns, sorted, the nodes no child list leads to from rootID.
func unreachable(rootID string, nodes map[string]*Node) []string {
	reached := map[string]bool{rootID: true}
	stack := []string{rootID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range nodes[id].Children {
			if !reached[c] {
				reached[c] = true
				stack = append(stack, c)
			}
		}
	}
	var lost []string
	for id := range nodes {
		if !reached[id] {
			lost = append(lost, id)
		}
	}
	sort.Strings(lost)
	return lost
}
