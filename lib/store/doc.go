// Package store provides a high-level, promise-based interface for object
// storage operations with record keying, key canonicalization and unified
// error handling. It serves as an abstraction layer over the lower-level
// engine.DB implementations, adding functionality such as JSON record
// encoding and standardized error reporting.
//
// The package focuses on:
//   - A unified interface (IHandle) for object-store operations across different backends
//   - Pluggable storage backend architecture through the DBFactory pattern
//   - A canonical key encoding so JSON round trips never change a record's identity
//
// Key Components:
//
//   - IHandle Interface: The core abstraction defining operations for interacting
//     with an object store. Every operation returns a promise that settles once
//     the underlying database has completed the request. Rejections carry custom
//     Error values that provide detailed information about operation results.
//
//   - Error System: A structured error reporting mechanism using typed error codes
//     and descriptive messages. This system allows applications to make informed
//     decisions based on specific error conditions rather than generic errors.
//
//   - Key Canonicalization: EncodeKey maps each valid key (string, boolean or
//     number) to a type-tagged canonical string. Numbers are normalized so that
//     the integer 1 and the float 1.0 address the same record.
//
//   - DBFactory: A function type that abstracts the creation of underlying
//     engine.DB instances, providing dependency injection and flexible
//     configuration of storage backends.
//
// Implementations:
//
//	The package includes one local implementation of the IHandle interface and
//	a remote one:
//
//	- Object Store (ostore): The canonical implementation. It opens a database
//	  through a Factory that memoizes connections per database name, performs
//	  the initial schema upgrade and adapts the engine's callback completions
//	  into promises. Available in the
//	  "github.com/ValentinKolb/oDB/lib/store/ostore" package.
//
//	- RPC Client Handle: An IHandle implementation that forwards every
//	  operation to a remote server over a pluggable transport. Available in the
//	  "github.com/ValentinKolb/oDB/rpc/client" package.
//
// This interface-driven approach allows applications to:
//   - Switch between local and remote storage depending on deployment requirements
//   - Handle errors in a consistent and type-safe manner across implementations
//   - Abstract storage implementation details from application logic
package store
