package testing

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ValentinKolb/oDB/lib/engine"
)

// DBFactory is a function that creates a new instance of an engine implementation
type DBFactory func() engine.DB

// RunEngineTests runs a comprehensive conformance suite for a DB implementation.
func RunEngineTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Schema", func(t *testing.T) {
			testSchema(t, factory())
		})

		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, factory())
		})

		t.Run("PutBatch", func(t *testing.T) {
			testPutBatch(t, factory())
		})

		t.Run("GetAll", func(t *testing.T) {
			testGetAll(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Clear", func(t *testing.T) {
			testClear(t, factory())
		})

		t.Run("Count", func(t *testing.T) {
			testCount(t, factory())
		})

		t.Run("StoreNotFound", func(t *testing.T) {
			testStoreNotFound(t, factory())
		})

		t.Run("ConcurrentAccess", func(t *testing.T) {
			testConcurrentAccess(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Synchronous helpers
// --------------------------------------------------------------------------

// The engine API reports completion through callbacks; the helpers below
// block until the callback fires so tests can be written sequentially.

func syncGet(db engine.DB, store, key string) ([]byte, bool, error) {
	type result struct {
		value []byte
		found bool
		err   error
	}
	ch := make(chan result, 1)
	db.Get(store, key, func(value []byte, found bool, err error) {
		ch <- result{value, found, err}
	})
	r := <-ch
	return r.value, r.found, r.err
}

func syncGetAll(db engine.DB, store string) ([][]byte, error) {
	type result struct {
		values [][]byte
		err    error
	}
	ch := make(chan result, 1)
	db.GetAll(store, func(values [][]byte, err error) {
		ch <- result{values, err}
	})
	r := <-ch
	return r.values, r.err
}

func syncPut(db engine.DB, store string, pairs ...engine.KeyValue) error {
	ch := make(chan error, 1)
	db.Put(store, pairs, func(err error) { ch <- err })
	return <-ch
}

func syncDelete(db engine.DB, store, key string) error {
	ch := make(chan error, 1)
	db.Delete(store, key, func(err error) { ch <- err })
	return <-ch
}

func syncClear(db engine.DB, store string) error {
	ch := make(chan error, 1)
	db.Clear(store, func(err error) { ch <- err })
	return <-ch
}

func syncCount(db engine.DB, store string) (uint64, error) {
	type result struct {
		n   uint64
		err error
	}
	ch := make(chan result, 1)
	db.Count(store, func(n uint64, err error) {
		ch <- result{n, err}
	})
	r := <-ch
	return r.n, r.err
}

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database engine.DB, feature engine.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

// mustCreateStore creates the default test store or fails the test
func mustCreateStore(t testing.TB, database engine.DB, store string) {
	t.Helper()
	if err := database.CreateStore(store, "id"); err != nil {
		t.Fatalf("CreateStore failed: %v", err)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSchema(t *testing.T, database engine.DB) {
	defer database.Close()

	if v := database.Version(); v != 0 {
		t.Errorf("Expected fresh database to have version 0, got %d", v)
	}

	if err := database.SetVersion(1); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	if v := database.Version(); v != 1 {
		t.Errorf("Expected version 1, got %d", v)
	}

	if database.HasStore("items") {
		t.Errorf("Expected store to not exist before creation")
	}

	mustCreateStore(t, database, "items")

	if !database.HasStore("items") {
		t.Errorf("Expected store to exist after creation")
	}

	keyPath, ok := database.StoreKeyPath("items")
	if !ok || keyPath != "id" {
		t.Errorf("Expected key path %q, got %q (ok=%v)", "id", keyPath, ok)
	}

	// re-creation is a no-op and must not change the key path
	if err := database.CreateStore("items", "other"); err != nil {
		t.Fatalf("Re-creating store failed: %v", err)
	}
	keyPath, _ = database.StoreKeyPath("items")
	if keyPath != "id" {
		t.Errorf("Expected key path to stay %q after re-creation, got %q", "id", keyPath)
	}

	if _, ok := database.StoreKeyPath("missing"); ok {
		t.Errorf("Expected StoreKeyPath to report missing store")
	}
}

func testPutGet(t *testing.T, database engine.DB) {
	defer database.Close()

	requireFeature(t, database, engine.FeaturePut)
	requireFeature(t, database, engine.FeatureGet)

	mustCreateStore(t, database, "items")

	testKey := "test-key"
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	if err := syncPut(database, "items", engine.KeyValue{Key: testKey, Value: testValue1}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	result, exists, err := syncGet(database, "items", testKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !exists {
		t.Errorf("Expected key %s to exist after Put", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	// overwrite
	if err := syncPut(database, "items", engine.KeyValue{Key: testKey, Value: testValue2}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	result, exists, _ = syncGet(database, "items", testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after overwrite", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	// missing key is not an error
	_, exists, err = syncGet(database, "items", "nonexistent-key")
	if err != nil {
		t.Errorf("Expected no error for missing key, got %v", err)
	}
	if exists {
		t.Errorf("Expected nonexistent key to return found=false")
	}

	// the returned value must be a copy
	retrievedValue, _, _ := syncGet(database, "items", testKey)
	retrievedValue[0] = 'X'
	originalValue, _, _ := syncGet(database, "items", testKey)
	if bytes.Equal(retrievedValue, originalValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}
}

func testPutBatch(t *testing.T, database engine.DB) {
	defer database.Close()

	requireFeature(t, database, engine.FeaturePut)
	requireFeature(t, database, engine.FeatureCount)

	mustCreateStore(t, database, "items")

	pairs := make([]engine.KeyValue, 0, 10)
	for i := 0; i < 10; i++ {
		pairs = append(pairs, engine.KeyValue{
			Key:   fmt.Sprintf("key-%d", i),
			Value: []byte(fmt.Sprintf("value-%d", i)),
		})
	}

	if err := syncPut(database, "items", pairs...); err != nil {
		t.Fatalf("Batched put failed: %v", err)
	}

	n, err := syncCount(database, "items")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 10 {
		t.Errorf("Expected 10 entries after batched put, got %d", n)
	}

	for _, pair := range pairs {
		value, exists, _ := syncGet(database, "items", pair.Key)
		if !exists || !bytes.Equal(value, pair.Value) {
			t.Errorf("Expected %s=%s after batched put, got %s (found=%v)", pair.Key, pair.Value, value, exists)
		}
	}
}

func testGetAll(t *testing.T, database engine.DB) {
	defer database.Close()

	requireFeature(t, database, engine.FeaturePut)
	requireFeature(t, database, engine.FeatureGetAll)

	mustCreateStore(t, database, "items")

	// empty store yields an empty (or nil) slice, not an error
	values, err := syncGetAll(database, "items")
	if err != nil {
		t.Fatalf("GetAll on empty store failed: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("Expected no values in empty store, got %d", len(values))
	}

	want := map[string]bool{}
	for i := 0; i < 5; i++ {
		value := fmt.Sprintf("value-%d", i)
		want[value] = true
		if err := syncPut(database, "items", engine.KeyValue{Key: fmt.Sprintf("key-%d", i), Value: []byte(value)}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	values, err = syncGetAll(database, "items")
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(values) != len(want) {
		t.Fatalf("Expected %d values, got %d", len(want), len(values))
	}

	// order is engine-defined, only membership is asserted
	for _, value := range values {
		if !want[string(value)] {
			t.Errorf("GetAll returned unexpected value %s", value)
		}
	}
}

func testDelete(t *testing.T, database engine.DB) {
	defer database.Close()

	requireFeature(t, database, engine.FeaturePut)
	requireFeature(t, database, engine.FeatureDelete)

	mustCreateStore(t, database, "items")

	if err := syncPut(database, "items", engine.KeyValue{Key: "doomed", Value: []byte("x")}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := syncDelete(database, "items", "doomed"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, exists, _ := syncGet(database, "items", "doomed")
	if exists {
		t.Errorf("Expected key to be gone after Delete")
	}

	// deleting a missing key is not an error
	if err := syncDelete(database, "items", "never-existed"); err != nil {
		t.Errorf("Expected no error deleting missing key, got %v", err)
	}
}

func testClear(t *testing.T, database engine.DB) {
	defer database.Close()

	requireFeature(t, database, engine.FeaturePut)
	requireFeature(t, database, engine.FeatureClear)
	requireFeature(t, database, engine.FeatureCount)

	mustCreateStore(t, database, "items")

	for i := 0; i < 20; i++ {
		if err := syncPut(database, "items", engine.KeyValue{Key: fmt.Sprintf("key-%d", i), Value: []byte("v")}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	if err := syncClear(database, "items"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	n, err := syncCount(database, "items")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 entries after Clear, got %d", n)
	}

	// the store itself survives Clear
	if !database.HasStore("items") {
		t.Errorf("Expected store to still exist after Clear")
	}
	if err := syncPut(database, "items", engine.KeyValue{Key: "after", Value: []byte("v")}); err != nil {
		t.Errorf("Expected Put to work after Clear, got %v", err)
	}
}

func testCount(t *testing.T, database engine.DB) {
	defer database.Close()

	requireFeature(t, database, engine.FeaturePut)
	requireFeature(t, database, engine.FeatureDelete)
	requireFeature(t, database, engine.FeatureCount)

	mustCreateStore(t, database, "items")

	n, err := syncCount(database, "items")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected empty store to count 0, got %d", n)
	}

	for i := 0; i < 7; i++ {
		_ = syncPut(database, "items", engine.KeyValue{Key: fmt.Sprintf("key-%d", i), Value: []byte("v")})
	}

	// overwriting must not change the count
	_ = syncPut(database, "items", engine.KeyValue{Key: "key-0", Value: []byte("other")})

	n, _ = syncCount(database, "items")
	if n != 7 {
		t.Errorf("Expected 7 entries, got %d", n)
	}

	_ = syncDelete(database, "items", "key-0")
	n, _ = syncCount(database, "items")
	if n != 6 {
		t.Errorf("Expected 6 entries after delete, got %d", n)
	}
}

func testStoreNotFound(t *testing.T, database engine.DB) {
	defer database.Close()

	// every operation against an unknown store must wrap ErrStoreNotFound
	if _, _, err := syncGet(database, "missing", "k"); !errors.Is(err, engine.ErrStoreNotFound) {
		t.Errorf("Get: expected ErrStoreNotFound, got %v", err)
	}
	if _, err := syncGetAll(database, "missing"); !errors.Is(err, engine.ErrStoreNotFound) {
		t.Errorf("GetAll: expected ErrStoreNotFound, got %v", err)
	}
	if err := syncPut(database, "missing", engine.KeyValue{Key: "k", Value: []byte("v")}); !errors.Is(err, engine.ErrStoreNotFound) {
		t.Errorf("Put: expected ErrStoreNotFound, got %v", err)
	}
	if err := syncDelete(database, "missing", "k"); !errors.Is(err, engine.ErrStoreNotFound) {
		t.Errorf("Delete: expected ErrStoreNotFound, got %v", err)
	}
	if err := syncClear(database, "missing"); !errors.Is(err, engine.ErrStoreNotFound) {
		t.Errorf("Clear: expected ErrStoreNotFound, got %v", err)
	}
	if _, err := syncCount(database, "missing"); !errors.Is(err, engine.ErrStoreNotFound) {
		t.Errorf("Count: expected ErrStoreNotFound, got %v", err)
	}
}

func testConcurrentAccess(t *testing.T, database engine.DB) {
	defer database.Close()

	requireFeature(t, database, engine.FeaturePut)
	requireFeature(t, database, engine.FeatureGet)
	requireFeature(t, database, engine.FeatureCount)

	mustCreateStore(t, database, "items")

	const (
		writers       = 8
		keysPerWriter = 50
	)

	var wg sync.WaitGroup
	wg.Add(writers)

	for w := 0; w < writers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < keysPerWriter; i++ {
				key := fmt.Sprintf("w%d-k%d", w, i)
				if err := syncPut(database, "items", engine.KeyValue{Key: key, Value: []byte(key)}); err != nil {
					t.Errorf("Concurrent put failed: %v", err)
					return
				}
				// interleave reads with the writes of other goroutines
				if _, _, err := syncGet(database, "items", key); err != nil {
					t.Errorf("Concurrent get failed: %v", err)
					return
				}
			}
		}(w)
	}

	wg.Wait()

	n, err := syncCount(database, "items")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != writers*keysPerWriter {
		t.Errorf("Expected %d entries after concurrent writes, got %d", writers*keysPerWriter, n)
	}
}
