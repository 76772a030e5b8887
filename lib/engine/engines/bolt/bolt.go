package bolt

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ValentinKolb/oDB/lib/engine"
	bbolt "go.etcd.io/bbolt"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	metaBucket    = "_meta"    // holds schema version and key paths
	versionKey    = "version"  // 8-byte big endian schema version
	keyPathPrefix = "keypath:" // keyPathPrefix+<store> -> key path
)

// --------------------------------------------------------------------------
// Core bolt database structure
// --------------------------------------------------------------------------

// boltImpl implements a durable object-store engine backed by a single
// bbolt file. Object stores map onto buckets; the engine's read-only and
// read-write transactions map onto bbolt View and Update transactions,
// which gives the required single-writer/concurrent-reader semantics
// natively.
type boltImpl struct {
	name    string
	db      *bbolt.DB
	version atomic.Uint64
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewBoltDB opens (creating if absent) the bbolt file at path as the
// database with the given name. The meta bucket and the persisted schema
// version are initialized on first open.
//
// Thread-safety: the returned DB is safe for concurrent use; this function
// itself should only be called once per path during initialization.
func NewBoltDB(name, path string) (engine.DB, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	impl := &boltImpl{name: name, db: db}

	// ensure the meta bucket exists and load the stored version
	err = db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists([]byte(metaBucket))
		if err != nil {
			return err
		}
		if raw := meta.Get([]byte(versionKey)); len(raw) == 8 {
			impl.version.Store(binary.BigEndian.Uint64(raw))
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing bolt db: %w", err)
	}

	return impl, nil
}

// --------------------------------------------------------------------------
// Schema Operations
// --------------------------------------------------------------------------

func (b *boltImpl) Version() uint64 {
	return b.version.Load()
}

func (b *boltImpl) SetVersion(v uint64) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		raw := make([]byte, 8)
		binary.BigEndian.PutUint64(raw, v)
		return tx.Bucket([]byte(metaBucket)).Put([]byte(versionKey), raw)
	})
	if err != nil {
		return b.mapErr(err)
	}
	b.version.Store(v)
	return nil
}

func (b *boltImpl) CreateStore(name, keyPath string) error {
	if name == metaBucket {
		return fmt.Errorf("store name %q is reserved", metaBucket)
	}
	return b.mapErr(b.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(name)) != nil {
			return nil // key path of an existing store is never changed
		}
		if _, err := tx.CreateBucket([]byte(name)); err != nil {
			return err
		}
		return tx.Bucket([]byte(metaBucket)).Put([]byte(keyPathPrefix+name), []byte(keyPath))
	}))
}

func (b *boltImpl) HasStore(name string) bool {
	found := false
	_ = b.db.View(func(tx *bbolt.Tx) error {
		found = name != metaBucket && tx.Bucket([]byte(name)) != nil
		return nil
	})
	return found
}

func (b *boltImpl) StoreKeyPath(name string) (string, bool) {
	var (
		keyPath string
		found   bool
	)
	_ = b.db.View(func(tx *bbolt.Tx) error {
		if name == metaBucket || tx.Bucket([]byte(name)) == nil {
			return nil
		}
		found = true
		keyPath = string(tx.Bucket([]byte(metaBucket)).Get([]byte(keyPathPrefix + name)))
		return nil
	})
	return keyPath, found
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// bucket resolves the store's bucket within a transaction.
func bucket(tx *bbolt.Tx, store string) (*bbolt.Bucket, error) {
	if store == metaBucket {
		return nil, fmt.Errorf("%w: %q", engine.ErrStoreNotFound, store)
	}
	bkt := tx.Bucket([]byte(store))
	if bkt == nil {
		return nil, fmt.Errorf("%w: %q", engine.ErrStoreNotFound, store)
	}
	return bkt, nil
}

// mapErr translates bbolt errors into the engine's sentinel errors.
func (b *boltImpl) mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return fmt.Errorf("%w: %v", engine.ErrClosed, err)
	}
	return err
}

// --------------------------------------------------------------------------
// Read Operations
// --------------------------------------------------------------------------

// Get retrieves the value for a key in a read-only transaction.
// The callback receives a copy of the stored data.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (b *boltImpl) Get(store, key string, done func(value []byte, found bool, err error)) {
	go func() {
		var (
			value []byte
			found bool
		)
		err := b.db.View(func(tx *bbolt.Tx) error {
			bkt, err := bucket(tx, store)
			if err != nil {
				return err
			}
			// bbolt values are only valid inside the transaction
			if raw := bkt.Get([]byte(key)); raw != nil {
				value = make([]byte, len(raw))
				copy(value, raw)
				found = true
			}
			return nil
		})
		done(value, found, b.mapErr(err))
	}()
}

// GetAll retrieves copies of all values of the store in key order
// (bbolt iterates buckets in byte-sorted key order).
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (b *boltImpl) GetAll(store string, done func(values [][]byte, err error)) {
	go func() {
		var values [][]byte
		err := b.db.View(func(tx *bbolt.Tx) error {
			bkt, err := bucket(tx, store)
			if err != nil {
				return err
			}
			values = make([][]byte, 0, bkt.Stats().KeyN)
			return bkt.ForEach(func(_, raw []byte) error {
				value := make([]byte, len(raw))
				copy(value, raw)
				values = append(values, value)
				return nil
			})
		})
		if err != nil {
			done(nil, b.mapErr(err))
			return
		}
		done(values, nil)
	}()
}

// Count reports the number of entries in the store.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (b *boltImpl) Count(store string, done func(n uint64, err error)) {
	go func() {
		var n uint64
		err := b.db.View(func(tx *bbolt.Tx) error {
			bkt, err := bucket(tx, store)
			if err != nil {
				return err
			}
			n = uint64(bkt.Stats().KeyN)
			return nil
		})
		done(n, b.mapErr(err))
	}()
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// Put inserts or updates the given pairs within a single read-write
// transaction: after completion either all pairs are durable or none.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (b *boltImpl) Put(store string, pairs []engine.KeyValue, done func(err error)) {
	go func() {
		done(b.mapErr(b.db.Update(func(tx *bbolt.Tx) error {
			bkt, err := bucket(tx, store)
			if err != nil {
				return err
			}
			for _, pair := range pairs {
				if err := bkt.Put([]byte(pair.Key), pair.Value); err != nil {
					return err
				}
			}
			return nil
		})))
	}()
}

// Delete removes the entry with the given key. Deleting a missing key is
// not an error.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (b *boltImpl) Delete(store, key string, done func(err error)) {
	go func() {
		done(b.mapErr(b.db.Update(func(tx *bbolt.Tx) error {
			bkt, err := bucket(tx, store)
			if err != nil {
				return err
			}
			return bkt.Delete([]byte(key))
		})))
	}()
}

// Clear removes all entries of the store by dropping and recreating its
// bucket; the key path entry in the meta bucket is left untouched.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (b *boltImpl) Clear(store string, done func(err error)) {
	go func() {
		done(b.mapErr(b.db.Update(func(tx *bbolt.Tx) error {
			if _, err := bucket(tx, store); err != nil {
				return err
			}
			if err := tx.DeleteBucket([]byte(store)); err != nil {
				return err
			}
			_, err := tx.CreateBucket([]byte(store))
			return err
		})))
	}()
}

// --------------------------------------------------------------------------
// Features and Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the database. SizeBytes is the size of
// the underlying bbolt file, which includes free pages.
func (b *boltImpl) GetInfo() engine.DatabaseInfo {
	var (
		stores    []engine.StoreInfo
		entries   int64
		sizeBytes int
	)

	_ = b.db.View(func(tx *bbolt.Tx) error {
		sizeBytes = int(tx.Size())
		meta := tx.Bucket([]byte(metaBucket))
		return tx.ForEach(func(name []byte, bkt *bbolt.Bucket) error {
			if string(name) == metaBucket {
				return nil
			}
			stores = append(stores, engine.StoreInfo{
				Name:    string(name),
				KeyPath: string(meta.Get([]byte(keyPathPrefix + string(name)))),
			})
			entries += int64(bkt.Stats().KeyN)
			return nil
		})
	})

	meta := &struct {
		Entries int64  `json:"entries"`
		Path    string `json:"path"`
	}{
		Entries: entries,
		Path:    b.db.Path(),
	}

	return engine.DatabaseInfo{
		Name:      b.name,
		Version:   b.version.Load(),
		SizeBytes: sizeBytes,
		DbType:    engine.ImplBolt,
		Stores:    stores,
		SupportedFeatures: []engine.Feature{
			engine.FeatureGet, engine.FeatureGetAll, engine.FeatureCount,
			engine.FeaturePut, engine.FeatureDelete, engine.FeatureClear,
			engine.FeaturePersistence,
		},
		Metadata: meta,
	}
}

// SupportsFeature checks if this implementation supports a specific feature
func (b *boltImpl) SupportsFeature(feature engine.Feature) bool {
	supportedFeatures := engine.FeatureGet |
		engine.FeatureGetAll |
		engine.FeatureCount |
		engine.FeaturePut |
		engine.FeatureDelete |
		engine.FeatureClear |
		engine.FeaturePersistence
	return supportedFeatures&feature == feature
}

// Close closes the underlying bbolt file. Operations issued after Close
// fail with engine.ErrClosed.
func (b *boltImpl) Close() error {
	return b.db.Close()
}
