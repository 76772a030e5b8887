// Package common provides core data structures and utilities shared across
// the object store system. It defines fundamental types, configuration
// structures, and protocol elements used by other packages.
//
// The package focuses on:
//   - Message protocol definition for inter-component communication
//   - Configuration structures for client and server components
//   - Custom logging implementation shared by all components
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication between components,
//     with a flexible structure that adapts to different operation types.
//     Includes factory methods for creating various request and response messages.
//     Keys and records travel as their JSON encoding so the wire format stays
//     independent of the Go types a caller used.
//
//   - MessageType: Enumeration defining all supported operation types in the
//     system, covering the object store operations and control messages.
//
//   - ServerConfig: Comprehensive configuration for the server, including the
//     served databases with their storage backends, storage settings, network
//     configuration and timeouts.
//
//   - ClientConfig: Configuration for client components, controlling connection
//     parameters, timeouts, and retry behavior.
//
//   - Logger: Custom logging implementation providing consistent formatting
//     across the application.
package common
