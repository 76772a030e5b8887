package ostore

import (
	"fmt"

	"github.com/ValentinKolb/oDB/lib/engine"
	"github.com/ValentinKolb/oDB/lib/promise"
	"github.com/ValentinKolb/oDB/lib/store"
	"github.com/puzpuzpuz/xsync/v3"
)

const (
	// schemaVersion is the only schema this package knows. A fresh database
	// is upgraded to it on first open.
	schemaVersion = 1

	// DefaultKeyPath is the record field used as key when OpenOptions does
	// not name one.
	DefaultKeyPath = "id"
)

// StoreName returns the name of the single object store kept in the
// database with the given name.
func StoreName(dbName string) string {
	return dbName + "_store"
}

// OpenOptions configures Factory.Open. A nil options value selects the
// defaults.
type OpenOptions struct {
	// KeyPath is the record field carrying the key (default "id"). It only
	// takes effect when the store is created; an existing store keeps the
	// key path it was created with.
	KeyPath string
}

// Factory opens databases and hands out object store handles. Opening the
// same database name twice returns the same memoized promise, so every
// caller shares one connection per name. A Factory replaces any global
// connection registry: its scope decides how far the memoization reaches.
//
// Thread-safety: all methods are safe for concurrent use.
type Factory struct {
	dbFactory store.DBFactory
	handles   *xsync.MapOf[string, *promise.Promise[store.IHandle]]
	dbs       *xsync.MapOf[string, engine.DB]
}

// NewFactory creates a factory that opens databases through the given
// store.DBFactory.
func NewFactory(dbFactory store.DBFactory) *Factory {
	return &Factory{
		dbFactory: dbFactory,
		handles:   xsync.NewMapOf[string, *promise.Promise[store.IHandle]](),
		dbs:       xsync.NewMapOf[string, engine.DB](),
	}
}

// Open returns a promise for a handle on the object store of the named
// database. The first call for a name opens the database and runs the
// schema upgrade; later calls return the same promise, whether it resolved
// or rejected. There are no retries.
func (f *Factory) Open(dbName string, opts *OpenOptions) *promise.Promise[store.IHandle] {
	keyPath := DefaultKeyPath
	if opts != nil && opts.KeyPath != "" {
		keyPath = opts.KeyPath
	}

	p, _ := f.handles.LoadOrCompute(dbName, func() *promise.Promise[store.IHandle] {
		p, resolve, reject := promise.New[store.IHandle]()
		go f.open(dbName, keyPath, resolve, reject)
		return p
	})
	return p
}

// open connects to the database, upgrades a fresh one to the current schema
// and settles the memoized promise exactly once.
func (f *Factory) open(dbName, keyPath string, resolve func(store.IHandle), reject func(error)) {
	db, err := f.dbFactory(dbName)
	if err != nil {
		reject(store.NewError(store.RetCInternalError, fmt.Sprintf("failed to open database %q: %v", dbName, err)))
		return
	}

	storeName := StoreName(dbName)

	if db.Version() < schemaVersion {
		// upgrade path: create the store, then bump the version
		if err := db.CreateStore(storeName, keyPath); err != nil {
			reject(store.NewError(store.RetCInternalError, fmt.Sprintf("failed to create store %q: %v", storeName, err)))
			return
		}
		if err := db.SetVersion(schemaVersion); err != nil {
			reject(store.NewError(store.RetCInternalError, fmt.Sprintf("failed to set version of database %q: %v", dbName, err)))
			return
		}
	} else if !db.HasStore(storeName) {
		// the database claims the current schema but the store is gone
		reject(store.NewError(store.RetCStoreNotFound, fmt.Sprintf("store %q does not exist in database %q", storeName, dbName)))
		return
	}

	// an existing store keeps its original key path
	if existing, ok := db.StoreKeyPath(storeName); ok {
		keyPath = existing
	}

	f.dbs.Store(dbName, db)
	resolve(newHandle(db, storeName, keyPath))
}

// Close closes every database the factory has opened and forgets all
// memoized handles. The factory can be used again afterwards; databases are
// then re-opened on demand.
func (f *Factory) Close() error {
	var firstErr error
	f.dbs.Range(func(dbName string, db engine.DB) bool {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close database %q: %w", dbName, err)
		}
		f.dbs.Delete(dbName)
		f.handles.Delete(dbName)
		return true
	})
	return firstErr
}
