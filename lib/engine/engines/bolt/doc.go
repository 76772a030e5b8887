// Package bolt provides a durable implementation of the engine.DB interface
// backed by a single bbolt file per database.
//
// Object stores map onto bbolt buckets, read-only operations onto View
// transactions and write operations onto Update transactions. bbolt natively
// serializes writers while allowing concurrent readers, which is exactly the
// transaction model the engine interface requires. A reserved meta bucket
// holds the schema version and the key path of every store so that both
// survive process restarts.
package bolt
