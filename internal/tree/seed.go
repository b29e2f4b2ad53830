package tree

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/arbor/pkg/types"
)

// seedEdge attaches id under parent in the seed tree.
type seedEdge struct {
	parent string
	id     string
}

// seedEdges is the deterministic sample topology installed on first start
// and on reset:
//
//	ROOT
//	├── A
//	├── B
//	│   ├── D
//	│   └── E
//	│       ├── F F
//	│       └── G G
//	└── C
var seedEdges = []seedEdge{
	{types.RootID, "A"},
	{types.RootID, "B"},
	{types.RootID, "C"},
	{"B", "D"},
	{"B", "E"},
	{"E", "F F"},
	{"E", "G G"},
}

// Seed installs the seed tree on an empty manager and persists every node.
func (m *Manager) Seed(ctx context.Context) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := m.begin(ctx, opSeed)
	defer func() { end(err) }()

	return m.seed()
}

func (m *Manager) seed() error {
	if err := m.initializeRoot(types.RootID); err != nil {
		return fmt.Errorf("seeding root: %w", err)
	}
	for _, e := range seedEdges {
		if _, err := m.add(e.parent, e.id); err != nil {
			return fmt.Errorf("seeding %q under %q: %w", e.id, e.parent, err)
		}
	}
	return nil
}
