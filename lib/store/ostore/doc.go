// Package ostore implements the canonical local object store based on the
// store.IHandle interface. It provides a promise-based wrapper around any
// engine.DB implementation with per-database connection memoization and
// automatic schema upgrades on first open.
//
// Key Features:
//   - Promise-based API: every operation returns immediately and settles later
//   - One shared connection per database name, memoized inside a Factory
//   - Automatic schema upgrade (store creation) when a database is opened fresh
//   - Canonical key encoding so JSON round trips never change a record's key
//   - Feature detection to handle unsupported operations gracefully
//   - Thread-safe operations for concurrent access
//
// Implementation Details:
//
//   - Connection Memoization: A Factory keeps one promise per database name in
//     a concurrent map. Every Open call for the same name returns the same
//     promise, whether it is still pending, resolved or rejected. Connection
//     state is therefore scoped to the Factory instance rather than to the
//     process, so tests and embedders can run isolated factories side by side.
//
//   - Schema Upgrade: A database at version 0 is considered fresh. The first
//     open creates the single object store (named "<dbName>_store") with the
//     requested key path and bumps the version to 1. A database already at
//     version 1 is used as-is; its store keeps the key path it was created
//     with, regardless of the options passed to Open.
//
//   - Callback Adaptation: The underlying engine reports completion through
//     callbacks. The handle wraps every callback in a settle-once promise, so
//     callers get a uniform await-style API regardless of the engine.
//
//   - Composition Architecture: The store.DBFactory function injects the
//     underlying engine.DB implementation. This allows the object store to
//     work with the in-memory engine, the bolt engine or any other
//     engine.DB-compatible backend without modification.
//
// Usage Example:
//
//	// Create a factory with an in-memory backend
//	factory := ostore.NewFactory(func(dbName string) (engine.DB, error) {
//		return memory.NewMemoryDB(dbName), nil
//	})
//
//	// Open a database (the promise settles once the upgrade ran)
//	handle, err := factory.Open("inventory", nil).Await(ctx)
//
//	// Store and load a record
//	_, err = handle.Put(store.Record{"id": 1, "name": "bolt"}).Await(ctx)
//	entry, err := handle.GetEntry(1).Await(ctx)
//
// Suitable Use Cases:
//
//	The object store is ideal for:
//	- Embedding a small document store into a single process
//	- Sharing one database connection across independent application parts
//	- Testing and development environments
//
// For remote access to the same interface, consider the rpc/client package,
// which provides a store.IHandle implementation that forwards every operation
// to an oDB server.
package ostore
