package tree

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mesh-intelligence/arbor/internal/observability"
	"github.com/mesh-intelligence/arbor/pkg/types"
)

const tracerName = "github.com/mesh-intelligence/arbor/internal/tree"

// Operation names used for spans and metrics.
const (
	opInit    = "initialize_root"
	opAdd     = "add"
	opMove    = "move"
	opDump    = "dump"
	opDetails = "details"
	opReset   = "reset"
	opSeed    = "seed"
	opRestore = "restore"
)

// Manager implements the structural operations of the tree on top of a
// NodeStore. One mutex is held for the whole of every operation, persistence
// writes included, so callers observe each operation as a unit.
type Manager struct {
	mu        sync.Mutex
	store     *NodeStore
	strictIDs bool
	logger    *slog.Logger
	metrics   *observability.Metrics
	tracer    trace.Tracer
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

// WithStrictIDs selects the duplicate check used by Add. Strict (the
// default) rejects an identifier that exists anywhere in the tree; non-strict
// only rejects one that is already a child of the same parent.
func WithStrictIDs(strict bool) Option {
	return func(m *Manager) { m.strictIDs = strict }
}

// New returns a Manager with no tree installed. Call InitializeRoot, Seed,
// or Restore before anything else, or use Open.
func New(records types.RecordStore, opts ...Option) *Manager {
	m := &Manager{
		strictIDs: true,
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.store = NewNodeStore(records, m.logger, m.metrics)
	return m
}

// Open restores the tree from records, or installs the seed tree when the
// store holds no records.
func Open(ctx context.Context, records types.RecordStore, opts ...Option) (*Manager, error) {
	m := New(records, opts...)
	restored, err := m.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if restored {
		return m, nil
	}
	m.logger.Info("no persisted records, installing seed tree")
	if err := m.Seed(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// begin starts the span and timer for one operation. The returned function
// must be called with the operation's result.
func (m *Manager) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) func(error) {
	start := time.Now()
	_, span := m.tracer.Start(ctx, "tree."+op, trace.WithAttributes(attrs...))
	return func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		m.metrics.ObserveOperation(op, start, err)
		m.metrics.SetNodes(m.store.Len())
	}
}

// Restore replaces the in-memory tree with the persisted one. It reports
// false, with no error, when the store is empty.
func (m *Manager) Restore(ctx context.Context) (restored bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := m.begin(ctx, opRestore)
	defer func() { end(err) }()

	root, err := m.store.RestoreAll()
	if err != nil {
		return false, err
	}
	if root == nil {
		return false, nil
	}
	m.logger.Info("restored tree", "root", root.ID, "nodes", m.store.Len())
	return true, nil
}

// InitializeRoot installs and persists the root. It must be the first
// operation on an empty tree, and id must be types.RootID since restore
// recognizes the root by that identifier.
func (m *Manager) InitializeRoot(ctx context.Context, id string) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := m.begin(ctx, opInit, attribute.String("node.id", id))
	defer func() { end(err) }()

	return m.initializeRoot(id)
}

func (m *Manager) initializeRoot(id string) error {
	if id != types.RootID {
		return fmt.Errorf("%w: root must be %q, got %q", types.ErrInvalidID, types.RootID, id)
	}
	if root, ok := m.store.Root(); ok {
		return fmt.Errorf("root %q: %w", root.ID, types.ErrAlreadyExists)
	}
	root := &Node{ID: id, Height: 0}
	m.store.register(root)
	return m.store.Persist(root)
}

// Add attaches a new node newID under parentID, persisting the new node and
// then the parent. See WithStrictIDs for the duplicate check.
func (m *Manager) Add(ctx context.Context, parentID, newID string) (snap types.Snapshot, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := m.begin(ctx, opAdd, attribute.String("node.parent", parentID), attribute.String("node.id", newID))
	defer func() { end(err) }()

	n, err := m.add(parentID, newID)
	if err != nil {
		return types.Snapshot{}, err
	}
	m.logger.Debug("attached node", "node", newID, "parent", parentID, "height", n.Height)
	return m.snapshot(n), nil
}

func (m *Manager) add(parentID, newID string) (*Node, error) {
	if newID == "" {
		return nil, fmt.Errorf("%w: empty identifier", types.ErrInvalidID)
	}
	parent, ok := m.store.Find(parentID)
	if !ok {
		return nil, fmt.Errorf("parent %q: %w", parentID, types.ErrNotFound)
	}
	if parent.hasChild(newID) {
		return nil, fmt.Errorf("%q is already a child of %q: %w", newID, parentID, types.ErrAlreadyExists)
	}
	if m.strictIDs && m.store.Exists(newID) {
		return nil, fmt.Errorf("node %q: %w", newID, types.ErrAlreadyExists)
	}

	prev, _ := m.store.Find(newID)
	child := &Node{ID: newID, Parent: parent.ID, Height: parent.Height + 1}
	parent.Children = append(parent.Children, newID)
	m.store.register(child)

	if err := m.store.Persist(child); err != nil {
		m.undoAdd(parent, child, prev, false)
		return nil, err
	}
	if err := m.store.Persist(parent); err != nil {
		m.undoAdd(parent, child, prev, true)
		return nil, err
	}
	return child, nil
}

// undoAdd detaches child after a failed write and puts prev back in the
// index. When the child record already reached the store it is deleted, or
// rewritten from prev if the child had replaced it.
func (m *Manager) undoAdd(parent, child, prev *Node, written bool) {
	parent.removeChild(child.ID)
	m.store.unregister(child.ID, prev)
	if !written {
		return
	}
	var err error
	if prev != nil {
		err = m.store.Persist(prev)
	} else {
		err = m.store.Remove(child.ID)
	}
	if err != nil {
		m.logger.Error("add: record of detached node left in store", "node", child.ID, "error", err)
	}
}

// FindByID returns the snapshot of id, or false if it does not resolve.
func (m *Manager) FindByID(id string) (types.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.store.Find(id)
	if !ok {
		return types.Snapshot{}, false
	}
	return m.snapshot(n), true
}

// NodeDetails returns the snapshot of id or types.ErrNotFound.
func (m *Manager) NodeDetails(ctx context.Context, id string) (snap types.Snapshot, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := m.begin(ctx, opDetails, attribute.String("node.id", id))
	defer func() { end(err) }()

	n, ok := m.store.Find(id)
	if !ok {
		return types.Snapshot{}, fmt.Errorf("node %q: %w", id, types.ErrNotFound)
	}
	return m.snapshot(n), nil
}

// RootID returns the identifier of the installed root, or "".
func (m *Manager) RootID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.RootID()
}

// Len returns the number of live nodes.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Len()
}

// Reset discards the tree, wipes the record store, and installs the seed
// tree. A failed wipe does not fail the reset; it is logged at error level
// with the records the seed did not overwrite.
func (m *Manager) Reset(ctx context.Context) (err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	end := m.begin(ctx, opReset)
	defer func() { end(err) }()

	wipeErr := m.store.Wipe()
	m.store.clear()
	if err := m.seed(); err != nil {
		return err
	}
	if wipeErr != nil {
		stale, err := m.store.Stale()
		if err != nil {
			m.logger.Error("reset: wipe failed", "error", wipeErr, "list_error", err)
		} else {
			m.logger.Error("reset: wipe failed, stale records remain", "error", wipeErr, "stale", stale)
		}
	}
	return nil
}

func (m *Manager) snapshot(n *Node) types.Snapshot {
	parent := n.Parent
	if parent == "" {
		parent = types.NoParent
	}
	return types.Snapshot{
		ID:       n.ID,
		ParentID: parent,
		Height:   n.Height,
		Root:     m.store.RootID(),
	}
}
