// Package testing provides standardised tests and benchmarks for
// database implementations that satisfy the engine.DB interface.
//
// The package contains:
//   - testing: A conformance suite validating schema operations, the asynchronous
//     data operations and the store-not-found error contract
//   - benchmark: Performance tests for measuring throughput of common operations
//
// Because the engine API reports completion via callbacks, the suite ships
// synchronous wrappers that block on a channel until the callback fires.
// Tests can therefore be written in plain sequential style.
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func() engine.DB {
//		return NewMyEngine()
//	}
//
//	// Running the standard test suite
//	testing.RunEngineTests(t, "MyEngine", factory)
//
//	// Running performance benchmarks
//	testing.RunEngineBenchmarks(b, "MyEngine", factory)
package testing
