// Package client provides the RPC client of the object database system.
// It implements the store.IHandle interface on top of the RPC transport
// layer, so a remote database can be used exactly like a local one.
//
// The package focuses on:
//   - Client-side implementation of all object store operations
//   - Transparent serialization of keys and records as JSON
//   - Promise based results matching the local store implementation
//   - Composition pattern sharing one adapter between all operations
//
// Key Components:
//
//   - NewRPCHandle: Factory function creating a store.IHandle that forwards
//     every operation to a remote server, addressed by database name.
//
// Usage Example:
//
//	// Create client configuration
//	config := common.ClientConfig{
//	  Endpoints: []string{"localhost:8080"},
//	  TimeoutSecond: 5,
//	  RetryCount: 3,
//	  ConnectionsPerEndpoint: 4,
//	}
//
//	// Create the handle for one database
//	handle, err := client.NewRPCHandle(
//	  "orders",
//	  config,
//	  tcp.NewTCPClientTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//	if err != nil {
//	  log.Fatalf("Client error: %v", err)
//	}
//
//	// Use the handle like a local store
//	record, err := handle.GetEntry("a81a4c2d").Await(ctx)
//
// Each operation spawns a goroutine that performs the request and settles
// the returned promise, so callers decide themselves whether to await the
// result or fan out many operations concurrently.
package client
