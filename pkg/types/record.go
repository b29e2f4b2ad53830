package types

// RootID is the reserved identifier of the tree root.
const RootID = "ROOT"

// NoParent is the parent value persisted and reported for the root.
const NoParent = "none"

// Record is the persisted snapshot of one node. Parent and Children hold
// identifiers, never references.
type Record struct {
	ID       string   `json:"id"`
	Parent   string   `json:"parent"`
	Children []string `json:"children"`
	Height   int      `json:"height"`
}

// IsRoot reports whether the record has no parent.
func (r Record) IsRoot() bool {
	return r.Parent == NoParent || r.Parent == ""
}

// Snapshot is the read view of a node handed to callers of the tree manager.
type Snapshot struct {
	ID       string `json:"id" yaml:"id"`
	ParentID string `json:"parent-id" yaml:"parent-id"`
	Height   int    `json:"height" yaml:"height"`
	Root     string `json:"root" yaml:"root"`
}
