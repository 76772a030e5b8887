package memory

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/oDB/lib/engine"
	"github.com/ValentinKolb/oDB/lib/engine/util"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Core memory database structure
// --------------------------------------------------------------------------

// objectStore holds the entries of a single object store.
// The RWMutex models the transaction semantics of the engine interface:
// read-write transactions take the write lock, read-only transactions the
// read lock, so writers are serialized while readers run concurrently.
type objectStore struct {
	keyPath string
	mu      sync.RWMutex
	data    *xsync.MapOf[string, []byte]
}

// memoryImpl implements a volatile object-store engine backed by
// concurrent maps. All data is lost when the process exits.
type memoryImpl struct {
	name      string
	version   atomic.Uint64
	stores    *xsync.MapOf[string, *objectStore]
	closed    atomic.Bool
	histogram *util.SizeHistogram
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewMemoryDB creates a new in-memory database with the given name.
//
// Thread-safety: the returned DB is safe for concurrent use; this function
// itself should only be called once per database during initialization.
func NewMemoryDB(name string) engine.DB {
	return &memoryImpl{
		name:      name,
		stores:    xsync.NewMapOf[string, *objectStore](),
		histogram: util.NewSizeHistogram(),
	}
}

// --------------------------------------------------------------------------
// Schema Operations
// --------------------------------------------------------------------------

func (m *memoryImpl) Version() uint64 {
	return m.version.Load()
}

func (m *memoryImpl) SetVersion(v uint64) error {
	m.version.Store(v)
	return nil
}

func (m *memoryImpl) CreateStore(name, keyPath string) error {
	if m.closed.Load() {
		return engine.ErrClosed
	}

	// LoadOrCompute makes re-creation a no-op and keeps the original key path
	m.stores.LoadOrCompute(name, func() *objectStore {
		return &objectStore{
			keyPath: keyPath,
			data:    xsync.NewMapOf[string, []byte](),
		}
	})
	return nil
}

func (m *memoryImpl) HasStore(name string) bool {
	_, ok := m.stores.Load(name)
	return ok
}

func (m *memoryImpl) StoreKeyPath(name string) (string, bool) {
	os, ok := m.stores.Load(name)
	if !ok {
		return "", false
	}
	return os.keyPath, true
}

// lookup resolves the named store for an operation, checking the closed flag.
func (m *memoryImpl) lookup(store string) (*objectStore, error) {
	if m.closed.Load() {
		return nil, engine.ErrClosed
	}
	os, ok := m.stores.Load(store)
	if !ok {
		return nil, fmt.Errorf("%w: %q", engine.ErrStoreNotFound, store)
	}
	return os, nil
}

// --------------------------------------------------------------------------
// Read Operations
// --------------------------------------------------------------------------

// Get retrieves the value for a key. The callback receives a copy of the
// stored data, safe to retain and modify.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memoryImpl) Get(store, key string, done func(value []byte, found bool, err error)) {
	go func() {
		os, err := m.lookup(store)
		if err != nil {
			done(nil, false, err)
			return
		}

		os.mu.RLock()
		defer os.mu.RUnlock()

		value, ok := os.data.Load(key)
		if !ok {
			done(nil, false, nil)
			return
		}

		valueCopy := make([]byte, len(value))
		copy(valueCopy, value)
		done(valueCopy, true, nil)
	}()
}

// GetAll retrieves copies of all values of the store. The iteration order of
// the underlying map is not defined, matching the engine-defined order the
// interface allows.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memoryImpl) GetAll(store string, done func(values [][]byte, err error)) {
	go func() {
		os, err := m.lookup(store)
		if err != nil {
			done(nil, err)
			return
		}

		os.mu.RLock()
		defer os.mu.RUnlock()

		values := make([][]byte, 0, os.data.Size())
		os.data.Range(func(_ string, value []byte) bool {
			valueCopy := make([]byte, len(value))
			copy(valueCopy, value)
			values = append(values, valueCopy)
			return true
		})
		done(values, nil)
	}()
}

// Count reports the number of entries in the store.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memoryImpl) Count(store string, done func(n uint64, err error)) {
	go func() {
		os, err := m.lookup(store)
		if err != nil {
			done(0, err)
			return
		}

		os.mu.RLock()
		defer os.mu.RUnlock()

		done(uint64(os.data.Size()), nil)
	}()
}

// --------------------------------------------------------------------------
// Write Operations
// --------------------------------------------------------------------------

// Put inserts or updates the given pairs within a single write transaction.
// Values are copied before storing to prevent memory corruption through the
// caller's slices.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memoryImpl) Put(store string, pairs []engine.KeyValue, done func(err error)) {
	go func() {
		os, err := m.lookup(store)
		if err != nil {
			done(err)
			return
		}

		os.mu.Lock()
		defer os.mu.Unlock()

		for _, pair := range pairs {
			valueCopy := make([]byte, len(pair.Value))
			copy(valueCopy, pair.Value)
			os.data.Store(pair.Key, valueCopy)
			m.histogram.AddSample(len(valueCopy))
		}
		done(nil)
	}()
}

// Delete removes the entry with the given key. Deleting a missing key is
// not an error.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memoryImpl) Delete(store, key string, done func(err error)) {
	go func() {
		os, err := m.lookup(store)
		if err != nil {
			done(err)
			return
		}

		os.mu.Lock()
		defer os.mu.Unlock()

		os.data.Delete(key)
		done(nil)
	}()
}

// Clear removes all entries of the store.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *memoryImpl) Clear(store string, done func(err error)) {
	go func() {
		os, err := m.lookup(store)
		if err != nil {
			done(err)
			return
		}

		os.mu.Lock()
		defer os.mu.Unlock()

		os.data.Clear()
		done(nil)
	}()
}

// --------------------------------------------------------------------------
// Features and Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the database. All size values are
// estimates derived from the write-side size histogram.
func (m *memoryImpl) GetInfo() engine.DatabaseInfo {
	var (
		stores     []engine.StoreInfo
		storeSizes []float64
		entries    int64
	)

	m.stores.Range(func(name string, os *objectStore) bool {
		stores = append(stores, engine.StoreInfo{Name: name, KeyPath: os.keyPath})
		storeSizes = append(storeSizes, float64(os.data.Size()))
		entries += int64(os.data.Size())
		return true
	})

	// weighted estimate (60% median, 40% average) of the per-record size
	recordSize := (m.histogram.MedianEstimate()*60 + m.histogram.AverageSize()*40) / 100

	meta := &struct {
		Entries           int64      `json:"entries"`
		StoreDistribution util.Stats `json:"store_distribution"`
		Info              string     `json:"info"`
	}{
		Entries:           entries,
		StoreDistribution: util.NewStats(storeSizes),
		Info:              "All size values are estimates and may vary depending on the database state.",
	}

	return engine.DatabaseInfo{
		Name:      m.name,
		Version:   m.version.Load(),
		SizeBytes: recordSize * int(entries),
		DbType:    engine.ImplMemory,
		Stores:    stores,
		SupportedFeatures: []engine.Feature{
			engine.FeatureGet, engine.FeatureGetAll, engine.FeatureCount,
			engine.FeaturePut, engine.FeatureDelete, engine.FeatureClear,
		},
		Metadata: meta,
	}
}

// SupportsFeature checks if this implementation supports a specific feature
func (m *memoryImpl) SupportsFeature(feature engine.Feature) bool {
	supportedFeatures := engine.FeatureGet |
		engine.FeatureGetAll |
		engine.FeatureCount |
		engine.FeaturePut |
		engine.FeatureDelete |
		engine.FeatureClear
	return supportedFeatures&feature == feature
}

// Close marks the database as closed. Data is discarded with the process.
func (m *memoryImpl) Close() error {
	m.closed.Store(true)
	return nil
}
