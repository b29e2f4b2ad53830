package sqlite

// Schema DDL. The nodes table is the durable copy of the tree: one row per
// node, children kept as a JSON array to preserve insertion order.
const (
	createNodes = `CREATE TABLE IF NOT EXISTS nodes (
    node_id TEXT PRIMARY KEY,
    parent_id TEXT NOT NULL,
    children TEXT NOT NULL,
    height INTEGER NOT NULL
);`

	idxNodesParent = `CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id);`
)

// schemaDDL lists the statements run on every Open, in order.
var schemaDDL = []string{
	createNodes,
	idxNodesParent,
}

// Statements used by Store.
const (
	upsertNode = `INSERT INTO nodes (node_id, parent_id, children, height) VALUES (?, ?, ?, ?)
ON CONFLICT(node_id) DO UPDATE SET
    parent_id = excluded.parent_id,
    children = excluded.children,
    height = excluded.height`

	selectNodes = `SELECT node_id, parent_id, children, height FROM nodes ORDER BY node_id`

	deleteNode = `DELETE FROM nodes WHERE node_id = ?`

	deleteNodes = `DELETE FROM nodes`
)
