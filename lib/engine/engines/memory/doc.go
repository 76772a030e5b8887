// Package memory provides a volatile in-memory implementation of the
// engine.DB interface, backed by concurrent maps from the xsync package.
//
// Each object store keeps its entries in an xsync.MapOf guarded by an
// RWMutex that models the engine's transaction semantics: write operations
// (Put, Delete, Clear) are serialized per store while read operations (Get,
// GetAll, Count) run concurrently. Every operation executes asynchronously
// on its own goroutine and reports completion through its callback.
//
// The implementation is primarily used by tests and by server setups that do
// not need durability; for persistent storage see the sibling bolt package.
package memory
