// Package storage defines the object store abstraction Thryv persists into.
//
// A store holds a fixed set of named collections described by a Schema.
// Records are JSON-shaped documents; each collection has a primary key field
// and zero or more secondary indexes. The abstraction mirrors a browser-side
// object store so full-database snapshots transfer without shape changes,
// while allowing the backend (SQLite here) to be swapped without touching
// the repository layer.
package storage

import "context"

// Record is a single JSON-shaped document in a collection. The primary key
// appears under the collection's KeyPath field.
type Record = map[string]any

// KeyMode selects how a collection's primary keys are produced.
type KeyMode int

const (
	// KeyNatural keys are supplied by the caller (string), never generated.
	KeyNatural KeyMode = iota

	// KeySequence keys are auto-incrementing integers assigned by the store
	// when a record arrives without one.
	KeySequence

	// KeyUUID keys are random UUID strings assigned by the store when a
	// record arrives without one.
	KeyUUID
)

// Collection describes one named collection: its primary key field, how keys
// are generated, and which document fields carry secondary indexes.
type Collection struct {
	Name    string
	KeyPath string
	Keys    KeyMode
	Indexes []string
}

// Schema describes a complete database: a version number and the full set
// of collections. Opening a store creates anything missing; opening an
// existing store at the current version re-runs nothing.
type Schema struct {
	Version     int
	Collections []Collection
}

// Ops is the operation set shared by a store and a transaction within it.
//
// Reads reflect a consistent snapshot. Get returns (nil, nil) when the key
// is absent. Put inserts or replaces and returns the record's key, assigning
// one first if the collection generates keys and the record has none; Add is
// the same but fails with ErrDuplicateKey instead of replacing. Delete of an
// absent key is a no-op.
type Ops interface {
	Get(ctx context.Context, collection string, key any) (Record, error)
	GetAll(ctx context.Context, collection string) ([]Record, error)
	GetAllByIndex(ctx context.Context, collection, index string, value any) ([]Record, error)
	Put(ctx context.Context, collection string, rec Record) (any, error)
	Add(ctx context.Context, collection string, rec Record) (any, error)
	Delete(ctx context.Context, collection string, key any) error
	Clear(ctx context.Context, collection string) error
}

// Tx is a transaction spanning any number of collections. All operations
// issued through it commit or roll back as one unit.
type Tx interface {
	Ops
}

// Store is the object store engine. Implementations serialize conflicting
// writes internally; callers never coordinate.
type Store interface {
	Ops

	// Update runs fn inside a single transaction. A nil return commits;
	// an error (or panic) rolls everything back and the error is returned.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the underlying resources.
	Close() error
}
