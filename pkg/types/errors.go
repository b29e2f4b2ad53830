package types

import "errors"

// Tree operation errors. Callers test them with errors.Is; the request layer
// maps each one onto a distinct response status.
var (
	// ErrNotFound indicates that an identifier does not resolve to a node.
	ErrNotFound = errors.New("node not found")

	// ErrAlreadyExists indicates a duplicate attach of the same identifier.
	ErrAlreadyExists = errors.New("node already exists")

	// ErrInvalidMove indicates a move that would place a node under itself
	// or one of its descendants.
	ErrInvalidMove = errors.New("invalid move")
)

// Persistence errors.
var (
	// ErrCorruptStore indicates persisted records that cannot be assembled
	// into a tree: a dangling reference, an undecodable record, or a
	// non-empty store without a root record.
	ErrCorruptStore = errors.New("corrupt record store")

	// ErrPersistence indicates that a durable write did not complete.
	ErrPersistence = errors.New("persistence failure")

	// ErrInvalidID indicates an identifier the backend cannot key a record by.
	ErrInvalidID = errors.New("invalid node identifier")
)
