// Package engine provides a standardized interface for transactional
// object-store engine implementations. It defines the DB interface that allows
// consistent interaction with different storage backends while abstracting
// implementation details.
//
// The package focuses on:
//   - A unified interface for object-store operations (get, get-all, put,
//     delete, clear, count) with per-operation transactions
//   - Asynchronous completion through callbacks invoked exactly once
//   - Feature discovery through capability flags
//   - Standardized metadata reporting
//
// Key Components:
//
//   - DB Interface: The core interface all engine implementations must satisfy.
//     Schema operations (Version, SetVersion, CreateStore, HasStore,
//     StoreKeyPath) are synchronous and reserved for the open/upgrade phase.
//     Data operations are asynchronous: the engine runs each in its own
//     transaction and reports the outcome through a completion callback, the
//     Go rendition of a success/error event handler pair.
//
//   - Feature Flags: The Feature type defines capability flags that
//     implementations advertise through SupportsFeature, allowing clients to
//     discover supported operations at runtime.
//
//   - Implementation Identifiers: The Implementation type provides string
//     constants for the shipped backends ("memory" and "bolt").
//
//   - Database Information: The DatabaseInfo structure provides standardized
//     reporting on database state, including size estimates, schema version,
//     and the set of object stores with their key paths. Size statistics are
//     estimates since a precise calculation can be expensive.
//
// Note on Concurrency:
//   - Read-write transactions against the same store are serialized by the
//     engine; read-only transactions may run concurrently. Callers get no
//     ordering guarantee between operations beyond what the engine's internal
//     transaction queue provides.
//   - Completion callbacks are invoked from an engine goroutine. Callers must
//     not block inside them.
//
// Related Packages:
//
// The engines/memory package provides a volatile in-memory implementation
// backed by sharded concurrent maps, suitable for tests and caching setups.
// The engines/bolt package provides a durable implementation backed by a
// bbolt file, mapping object stores onto buckets and read-only/read-write
// transactions onto bbolt View/Update transactions.
//
// The testing package (github.com/ValentinKolb/oDB/lib/engine/testing)
// contains a conformance suite and benchmarks that every implementation of
// the DB interface is expected to pass.
package engine
