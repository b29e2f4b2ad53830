package tree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/arbor/pkg/types"
)

func ids(snaps []types.Snapshot) []string {
	out := make([]string, len(snaps))
	for i, s := range snaps {
		out[i] = s.ID
	}
	return out
}

func TestDumpSubtree(t *testing.T) {
	m, _ := seededManager(t)

	snaps, err := m.DumpSubtree(context.Background(), "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "D", "E", "F F", "G G"}, ids(snaps))
	assert.Equal(t, types.Snapshot{ID: "F F", ParentID: "E", Height: 3, Root: "ROOT"}, snaps[3])
}

func TestDumpSubtreeLeaf(t *testing.T) {
	m, _ := seededManager(t)

	snaps, err := m.DumpSubtree(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, ids(snaps))
}

func TestDumpSubtreeUnknown(t *testing.T) {
	m, _ := seededManager(t)

	_, err := m.DumpSubtree(context.Background(), "Z")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDumpAll(t *testing.T) {
	m, _ := seededManager(t)

	snaps, err := m.DumpAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ROOT", "A", "B", "D", "E", "F F", "G G", "C"}, ids(snaps))
	assert.Equal(t, types.NoParent, snaps[0].ParentID)
}

func TestDumpAfterMove(t *testing.T) {
	m, _ := seededManager(t)
	require.NoError(t, m.Move(context.Background(), "C", "B"))

	snaps, err := m.DumpAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ROOT", "A", "C", "B", "D", "E", "F F", "G G"}, ids(snaps))
}

func TestIsDescendant(t *testing.T) {
	m, _ := seededManager(t)

	tests := []struct {
		candidate, node string
		want            bool
	}{
		{"B", "B", true},
		{"G G", "B", true},
		{"E", "ROOT", true},
		{"B", "E", false},
		{"C", "B", false},
		{"Z", "B", false},
		{"B", "Z", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, m.IsDescendant(tt.candidate, tt.node), "%q under %q", tt.candidate, tt.node)
	}
}

func TestLayers(t *testing.T) {
	m, _ := seededManager(t)

	assert.Equal(t, [][]string{
		{"ROOT"},
		{"A", "B", "C"},
		{"D", "E"},
		{"F F", "G G"},
	}, m.Layers(0))

	assert.Equal(t, [][]string{{"ROOT"}, {"A", "B", "C"}}, m.Layers(2))
}

func TestLayersEmptyTree(t *testing.T) {
	m := New(newMemStore())
	assert.Nil(t, m.Layers(0))
}
