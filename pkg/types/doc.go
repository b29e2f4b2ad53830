// Package types defines the node record and snapshot types, the RecordStore
// interface implemented by every storage backend, backend configuration, and
// the standard errors of the arbor tree service.
package types
