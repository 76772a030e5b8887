package engine

import "errors"

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplMemory Implementation = "memory"
	ImplBolt   Implementation = "bolt"
)

// Feature represents engine features as bit flags
type Feature uint64

const (
	FeatureGet         Feature = 1 << iota // Support for Get operations
	FeatureGetAll                          // Support for GetAll operations
	FeaturePut                             // Support for Put operations (single and batched)
	FeatureDelete                          // Support for Delete operations
	FeatureClear                           // Support for Clear operations
	FeatureCount                           // Support for Count operations
	FeaturePersistence                     // Data survives Close and reopen
)

func (f Feature) String() string {
	switch f {
	case FeatureGet:
		return "Get"
	case FeatureGetAll:
		return "GetAll"
	case FeaturePut:
		return "Put"
	case FeatureDelete:
		return "Delete"
	case FeatureClear:
		return "Clear"
	case FeatureCount:
		return "Count"
	case FeaturePersistence:
		return "Persistence"
	default:
		return "Unknown"
	}
}

// KeyValue is a single entry handed to Put. Batched puts pass multiple
// pairs which must be written within one read-write transaction.
type KeyValue struct {
	Key   string
	Value []byte
}

// StoreInfo describes one object store of a database.
type StoreInfo struct {
	Name    string `json:"name"`
	KeyPath string `json:"key_path"`
}

type DatabaseInfo struct {
	Name              string         `json:"name"`
	Version           uint64         `json:"version"`
	SizeBytes         int            `json:"size_bytes"`
	DbType            Implementation `json:"db_type"`
	Stores            []StoreInfo    `json:"stores"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrStoreNotFound is returned (wrapped) by all operations that target an
	// object store the database does not contain.
	ErrStoreNotFound = errors.New("store not found")

	// ErrClosed is returned by operations issued after Close.
	ErrClosed = errors.New("database is closed")
)

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// DB defines an interface for transactional object-store engine implementations.
// A database holds named object stores, each keyed by a key path that is fixed
// when the store is created. The schema methods (Version, SetVersion,
// CreateStore, ...) are synchronous and only used during open/upgrade; all data
// operations are asynchronous and report completion through a callback that the
// engine invokes exactly once - either with the result or with an error. This
// models engines whose native API signals completion via success/error events.
//
// Transaction semantics every implementation must provide:
//   - Each operation runs in its own transaction against a single store.
//   - Read-write transactions (Put, Delete, Clear) against the same store are
//     serialized; read-only transactions (Get, GetAll, Count) may run
//     concurrently with each other.
//   - A batched Put writes all pairs within one transaction: after completion
//     either all pairs are visible or, on error, none.
//   - Operations against an unknown store must fail with an error wrapping
//     ErrStoreNotFound.
type DB interface {

	// --------------------------------------------------------------------------
	// Schema Operations (synchronous, used during open/upgrade)
	// --------------------------------------------------------------------------

	// Version returns the current schema version of the database.
	// A freshly created database has version 0.
	Version() uint64

	// SetVersion sets the schema version. Implementations with persistence
	// must store the version durably.
	SetVersion(v uint64) error

	// CreateStore creates an object store with the given key path.
	// Creating a store that already exists is a no-op; the key path of an
	// existing store is never changed.
	CreateStore(name, keyPath string) error

	// HasStore reports whether the named object store exists.
	HasStore(name string) bool

	// StoreKeyPath returns the key path of the named store.
	// The boolean return value indicates whether the store exists.
	StoreKeyPath(name string) (keyPath string, ok bool)

	// --------------------------------------------------------------------------
	// Read Operations (read-only transactions)
	// --------------------------------------------------------------------------

	// Get retrieves the value for an exact key. The callback receives the
	// value (a copy, safe to retain) and whether the key was found. A missing
	// key is not an error.
	Get(store, key string, done func(value []byte, found bool, err error))

	// GetAll retrieves all values of the store in engine-defined order.
	GetAll(store string, done func(values [][]byte, err error))

	// Count reports the number of entries in the store.
	Count(store string, done func(n uint64, err error))

	// --------------------------------------------------------------------------
	// Write Operations (read-write transactions)
	// --------------------------------------------------------------------------

	// Put inserts or updates the given pairs within a single transaction.
	// Existing values for the same key are overwritten.
	Put(store string, pairs []KeyValue, done func(err error))

	// Delete removes the entry with the given key. Deleting a missing key
	// is not an error.
	Delete(store, key string, done func(err error))

	// Clear removes all entries of the store.
	Clear(store string, done func(err error))

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the engine supports the specified feature.
	// Multiple features can be checked at once using bitwise OR (|).
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// Close closes the database. Callbacks of operations issued before Close
	// are still invoked; operations issued after Close fail with ErrClosed.
	Close() (err error)
}
