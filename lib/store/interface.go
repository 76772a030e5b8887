package store

import (
	"fmt"

	"github.com/ValentinKolb/oDB/lib/engine"
	"github.com/ValentinKolb/oDB/lib/promise"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Record is a single object stored in a database. Records are plain maps so
// that arbitrary JSON-shaped objects can be stored; the field named by the
// handle's key path carries the record's key.
type Record = map[string]any

// DBFactory is a function type that creates a new db used by the store.
// This is used to abstract the creation of the db from the store implementation.
// The factory is called at most once per database name.
type DBFactory func(dbName string) (engine.DB, error)

// IHandle is the generic interface for interacting with an object store.
// Every operation returns immediately with a promise that settles once the
// underlying database has completed the request. A returned promise is
// rejected with a *Error describing the failure, never with a bare error.
type IHandle interface {
	// GetEntry loads the record stored under the given key. The promise
	// resolves to nil if no record exists for the key.
	GetEntry(key any) *promise.Promise[Record]
	// GetAll loads every record in the store.
	GetAll() *promise.Promise[[]Record]
	// Put inserts or updates a single record. The key is taken from the
	// record's key path field. The promise resolves to that key.
	Put(entry Record) *promise.Promise[any]
	// PutAll inserts or updates multiple records in a single operation.
	PutAll(entries []Record) *promise.Promise[promise.Void]
	// Add inserts a record. In contrast to other databases Add does not fail
	// on an existing key but overwrites it, exactly like Put.
	Add(entry Record) *promise.Promise[any]
	// DeleteEntry removes the record stored under the given key. Deleting a
	// missing key is not an error.
	DeleteEntry(key any) *promise.Promise[promise.Void]
	// DeleteAll removes every record from the store. The store itself
	// survives and can be written to again.
	DeleteAll() *promise.Promise[promise.Void]
	// Flush is an alias for DeleteAll.
	Flush() *promise.Promise[promise.Void]
	// Count returns the number of records in the store.
	Count() *promise.Promise[uint64]
	// GetDBInfo returns metadata about the database underlying the store.
	// It is not guaranteed that all fields are filled in or that the information is up-to-date!
	GetDBInfo() (info engine.DatabaseInfo, err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCInternalError:
		errorCode = "InternalError"
	case RetCUnsupportedOperation:
		errorCode = "UnsupportedOperation"
	case RetCInvalidOperation:
		errorCode = "InvalidOperation"
	case RetCStoreNotFound:
		errorCode = "StoreNotFound"
	case RetCInvalidKey:
		errorCode = "InvalidKey"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("ObjectStoreError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new ObjectStoreError with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCUnsupportedOperation                // 2: Operation is not supported by underlying database.
	RetCInvalidOperation                    // 3: Invalid operation.
	RetCStoreNotFound                       // 4: The requested object store does not exist in the database.
	RetCInvalidKey                          // 5: The given key (or key path field) is not a valid key.
)
