// Package promise provides a minimal deferred/promise primitive used to adapt
// callback based completion into awaitable results.
//
// The package focuses on:
//   - A generic Promise type settled exactly once (resolve or reject)
//   - Context aware awaiting without exposing cancellation of the underlying work
//   - Pre-settled constructors for synchronous failure paths
//
// Key Components:
//
//   - Promise: The eventual result of an asynchronous operation. A promise is
//     created unsettled via New, which also returns the resolve and reject
//     functions. Only the first settlement takes effect; all later calls are
//     discarded. This matches the semantics of engines that report completion
//     through success/error event handlers which may in principle fire more
//     than once.
//
//   - Await: Blocks the calling goroutine until the promise settles or the
//     provided context is cancelled. Cancellation only abandons the wait -
//     the operation behind the promise always runs to completion or failure.
//
// The store packages (github.com/ValentinKolb/oDB/lib/store/...) build their
// entire public surface on this type: every handle operation returns a promise
// that is settled from the completion callback of the underlying engine.
package promise
