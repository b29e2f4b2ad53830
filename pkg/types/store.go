package types

import "errors"

// RecordStore is the durable medium behind the node store. Each node is kept
// as one Record keyed by its identifier; Save overwrites any earlier record
// for the same identifier. No guarantee spans more than one Save.
type RecordStore interface {
	// Save writes rec, replacing any prior record with the same ID.
	Save(rec Record) error

	// LoadAll returns every persisted record in no particular order.
	// An empty store returns a nil slice and no error.
	LoadAll() ([]Record, error)

	// Delete removes the record for id. Deleting a missing record is not an
	// error.
	Delete(id string) error

	// Wipe deletes every record at the store location.
	Wipe() error

	// Close releases backend resources. Close is idempotent.
	Close() error
}

// Store lifecycle errors.
var (
	ErrStoreClosed = errors.New("record store is closed")
)
