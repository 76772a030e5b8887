// Package server implements the RPC server of the object database system.
// It provides an adapter for handling RPC requests against object store
// handles, along with the core server implementation that manages the
// served databases and request routing.
//
// The package focuses on:
//   - Server-side RPC request handling for all object store operations
//   - Adapter pattern to decouple application logic from RPC mechanisms
//   - Flexible database configuration with per-database storage engines
//   - Eager opening of all configured databases through a shared factory
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for all server
//     adapters, with the Handle method that processes incoming requests
//     against a store.IHandle.
//
//   - NewHandleServerAdapter: Factory function creating the adapter for
//     object store operations, translating RPC messages into store.IHandle
//     calls and awaiting their promises.
//
//   - NewRPCServer: Factory function creating a configured server with the
//     specified transport and serializer mechanisms.
//
// Usage Example:
//
//	// Create server configuration
//	config := common.ServerConfig{
//	  Databases: []common.ServerDatabase{
//	    {Name: "orders", Engine: common.EngineTypeMemory},
//	    {Name: "users", Engine: common.EngineTypeBolt},
//	  },
//	  KeyPath: "id",
//	  DataDir: "/var/lib/odb",
//	  Endpoint: "0.0.0.0:8080",
//	  TimeoutSecond: 5,
//	  LogLevel: "info",
//	}
//
//	// Create and start the server
//	s := server.NewRPCServer(
//	  config,
//	  tcp.NewTCPDefaultServerTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//
//	// Start the server
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Every served database is opened during startup, so misconfigured engines
// or unwritable data directories fail Serve instead of the first client
// request. Requests are routed purely by the database name carried in the
// transport frame; a request for an unserved database yields an error
// response, never a panic.
package server
