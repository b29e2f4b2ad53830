package tree

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/arbor/pkg/types"
)

var errDiskFull = errors.New("disk full")

// memStore is an in-memory types.RecordStore that logs save order and can be
// told to fail.
type memStore struct {
	mu       sync.Mutex
	recs     map[string]types.Record
	saves    []string
	failOn   map[string]bool
	failWipe bool
}

func newMemStore() *memStore {
	return &memStore{recs: map[string]types.Record{}, failOn: map[string]bool{}}
}

func (s *memStore) Save(rec types.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn[rec.ID] {
		return errDiskFull
	}
	s.recs[rec.ID] = rec
	s.saves = append(s.saves, rec.ID)
	return nil
}

func (s *memStore) LoadAll() ([]types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Record
	for _, r := range s.recs {
		out = append(out, r)
	}
	return out, nil
}

func (s *memStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.recs, id)
	return nil
}

func (s *memStore) Wipe() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWipe {
		return errDiskFull
	}
	s.recs = map[string]types.Record{}
	return nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) resetSaves() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = nil
}

// seededManager returns a manager holding the seed tree over a fresh memStore.
func seededManager(t *testing.T, opts ...Option) (*Manager, *memStore) {
	t.Helper()
	store := newMemStore()
	m, err := Open(context.Background(), store, opts...)
	require.NoError(t, err)
	store.resetSaves()
	return m, store
}

// heights returns the height of every live node keyed by id.
func heights(m *Manager) map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int{}
	for id, n := range m.store.nodes {
		out[id] = n.Height
	}
	return out
}

// records returns the persisted form of every live node keyed by id.
func records(m *Manager) map[string]types.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]types.Record{}
	for id, n := range m.store.nodes {
		out[id] = n.record()
	}
	return out
}

// requireInvariants checks every structural invariant of the tree.
func requireInvariants(t *testing.T, m *Manager) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	root, ok := m.store.Root()
	require.True(t, ok, "tree has no root")
	require.Equal(t, 0, root.Height, "root height")
	require.True(t, root.IsRoot(), "root has a parent")

	for id, n := range m.store.nodes {
		require.Equal(t, id, n.ID, "index key")
		for _, c := range n.Children {
			cn, ok := m.store.Find(c)
			require.True(t, ok, "child %q of %q missing", c, id)
			require.Equal(t, id, cn.Parent, "parent of %q", c)
		}
		if n == root {
			continue
		}
		p, ok := m.store.Find(n.Parent)
		require.True(t, ok, "parent %q of %q missing", n.Parent, id)
		require.True(t, p.hasChild(id), "%q not listed under its parent %q", id, n.Parent)
		require.Equal(t, p.Height+1, n.Height, "height of %q", id)
	}

	reached := 0
	m.walk(root, func(*Node) bool { reached++; return true })
	require.Equal(t, len(m.store.nodes), reached, "every node reachable from root exactly once")
}
