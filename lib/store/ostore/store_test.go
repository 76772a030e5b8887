package ostore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/oDB/lib/engine"
	"github.com/ValentinKolb/oDB/lib/engine/engines/bolt"
	"github.com/ValentinKolb/oDB/lib/engine/engines/memory"
	"github.com/ValentinKolb/oDB/lib/store"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func memoryFactory() *Factory {
	return NewFactory(func(dbName string) (engine.DB, error) {
		return memory.NewMemoryDB(dbName), nil
	})
}

func openHandle(t *testing.T, factory *Factory, dbName string) store.IHandle {
	t.Helper()
	handle, err := factory.Open(dbName, nil).Await(testContext(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return handle
}

func TestOpenCreatesStore(t *testing.T) {
	factory := memoryFactory()
	defer factory.Close()

	handle := openHandle(t, factory, "inventory")

	info, err := handle.GetDBInfo()
	if err != nil {
		t.Fatalf("GetDBInfo failed: %v", err)
	}
	if info.Version != 1 {
		t.Errorf("Expected database version 1 after open, got %d", info.Version)
	}
	if len(info.Stores) != 1 || info.Stores[0].Name != "inventory_store" {
		t.Errorf("Expected single store %q, got %v", "inventory_store", info.Stores)
	}
	if info.Stores[0].KeyPath != "id" {
		t.Errorf("Expected default key path %q, got %q", "id", info.Stores[0].KeyPath)
	}
}

func TestOpenCustomKeyPath(t *testing.T) {
	factory := memoryFactory()
	defer factory.Close()

	handle, err := factory.Open("users", &OpenOptions{KeyPath: "email"}).Await(testContext(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := handle.Put(store.Record{"email": "a@example.com", "name": "a"}).Await(testContext(t)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	entry, err := handle.GetEntry("a@example.com").Await(testContext(t))
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if entry == nil || entry["name"] != "a" {
		t.Errorf("Expected record keyed by email, got %v", entry)
	}

	// a record without the key path field is rejected
	if _, err := handle.Put(store.Record{"id": 1}).Await(testContext(t)); err == nil {
		t.Errorf("Expected Put without key path field to fail")
	}
}

func TestOpenMemoization(t *testing.T) {
	var opens atomic.Int64
	factory := NewFactory(func(dbName string) (engine.DB, error) {
		opens.Add(1)
		return memory.NewMemoryDB(dbName), nil
	})
	defer factory.Close()

	// concurrent opens of the same name share one connection
	const callers = 16
	handles := make([]store.IHandle, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			handle, err := factory.Open("shared", nil).Await(testContext(t))
			if err != nil {
				t.Errorf("Open failed: %v", err)
				return
			}
			handles[i] = handle
		}(i)
	}
	wg.Wait()

	if n := opens.Load(); n != 1 {
		t.Errorf("Expected the db factory to be called once, got %d", n)
	}
	for i := 1; i < callers; i++ {
		if handles[i] != handles[0] {
			t.Errorf("Expected all callers to share the same handle")
		}
	}

	// a different name opens a different database
	other := openHandle(t, factory, "other")
	if other == handles[0] {
		t.Errorf("Expected distinct handles for distinct database names")
	}
	if n := opens.Load(); n != 2 {
		t.Errorf("Expected two factory calls for two names, got %d", n)
	}

	// writes through one handle are visible through another of the same name
	if _, err := handles[0].Put(store.Record{"id": "k", "v": float64(1)}).Await(testContext(t)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	entry, err := openHandle(t, factory, "shared").GetEntry("k").Await(testContext(t))
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if entry == nil || entry["v"] != float64(1) {
		t.Errorf("Expected shared connection to see the write, got %v", entry)
	}
}

func TestOpenFailureIsMemoized(t *testing.T) {
	var opens atomic.Int64
	factory := NewFactory(func(dbName string) (engine.DB, error) {
		opens.Add(1)
		return nil, errors.New("backend unavailable")
	})
	defer factory.Close()

	_, err := factory.Open("broken", nil).Await(testContext(t))
	if err == nil {
		t.Fatalf("Expected Open to fail")
	}
	var storeErr *store.Error
	if !errors.As(err, &storeErr) || storeErr.Code != store.RetCInternalError {
		t.Errorf("Expected RetCInternalError, got %v", err)
	}

	// no retry on a second open
	_, err2 := factory.Open("broken", nil).Await(testContext(t))
	if err2 == nil {
		t.Fatalf("Expected second Open to fail as well")
	}
	if n := opens.Load(); n != 1 {
		t.Errorf("Expected no retry after a failed open, factory was called %d times", n)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	factory := memoryFactory()
	defer factory.Close()
	handle := openHandle(t, factory, "items")

	entry := store.Record{"id": float64(1), "name": "bolt", "tags": []any{"a", "b"}}
	key, err := handle.Put(entry).Await(testContext(t))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if key != float64(1) {
		t.Errorf("Expected Put to resolve to the record key, got %v", key)
	}

	loaded, err := handle.GetEntry(float64(1)).Await(testContext(t))
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if loaded["name"] != "bolt" {
		t.Errorf("Expected record to round trip, got %v", loaded)
	}

	// integer and float keys address the same record
	loaded, err = handle.GetEntry(1).Await(testContext(t))
	if err != nil {
		t.Fatalf("GetEntry with int key failed: %v", err)
	}
	if loaded == nil || loaded["name"] != "bolt" {
		t.Errorf("Expected int key 1 to find record stored under 1.0, got %v", loaded)
	}

	// a missing key resolves to nil, it does not reject
	loaded, err = handle.GetEntry("missing").Await(testContext(t))
	if err != nil {
		t.Errorf("Expected missing key to resolve, got %v", err)
	}
	if loaded != nil {
		t.Errorf("Expected nil record for missing key, got %v", loaded)
	}
}

func TestAddOverwrites(t *testing.T) {
	factory := memoryFactory()
	defer factory.Close()
	handle := openHandle(t, factory, "items")

	if _, err := handle.Add(store.Record{"id": "k", "v": "old"}).Await(testContext(t)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := handle.Add(store.Record{"id": "k", "v": "new"}).Await(testContext(t)); err != nil {
		t.Fatalf("Add of existing key failed: %v", err)
	}

	entry, err := handle.GetEntry("k").Await(testContext(t))
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if entry["v"] != "new" {
		t.Errorf("Expected Add to overwrite like Put, got %v", entry)
	}

	n, err := handle.Count().Await(testContext(t))
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 record after overwrite, got %d", n)
	}
}

func TestPutAll(t *testing.T) {
	factory := memoryFactory()
	defer factory.Close()
	handle := openHandle(t, factory, "items")

	entries := make([]store.Record, 0, 10)
	for i := 0; i < 10; i++ {
		entries = append(entries, store.Record{"id": float64(i), "n": float64(i)})
	}
	if _, err := handle.PutAll(entries).Await(testContext(t)); err != nil {
		t.Fatalf("PutAll failed: %v", err)
	}

	n, err := handle.Count().Await(testContext(t))
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 10 {
		t.Errorf("Expected 10 records after PutAll, got %d", n)
	}

	// one invalid record rejects the whole batch before any write
	bad := []store.Record{
		{"id": "valid"},
		{"name": "missing key path"},
	}
	if _, err := handle.PutAll(bad).Await(testContext(t)); err == nil {
		t.Fatalf("Expected PutAll with invalid record to fail")
	}
	entry, _ := handle.GetEntry("valid").Await(testContext(t))
	if entry != nil {
		t.Errorf("Expected rejected batch to write nothing, found %v", entry)
	}
}

func TestGetAll(t *testing.T) {
	factory := memoryFactory()
	defer factory.Close()
	handle := openHandle(t, factory, "items")

	entries, err := handle.GetAll().Await(testContext(t))
	if err != nil {
		t.Fatalf("GetAll on empty store failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no records in fresh store, got %d", len(entries))
	}

	for i := 0; i < 5; i++ {
		if _, err := handle.Put(store.Record{"id": fmt.Sprintf("k%d", i)}).Await(testContext(t)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	entries, err = handle.GetAll().Await(testContext(t))
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("Expected 5 records, got %d", len(entries))
	}
}

func TestDelete(t *testing.T) {
	factory := memoryFactory()
	defer factory.Close()
	handle := openHandle(t, factory, "items")

	if _, err := handle.Put(store.Record{"id": "doomed"}).Await(testContext(t)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if _, err := handle.DeleteEntry("doomed").Await(testContext(t)); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	entry, _ := handle.GetEntry("doomed").Await(testContext(t))
	if entry != nil {
		t.Errorf("Expected record to be gone after DeleteEntry")
	}

	// deleting a missing key is not an error
	if _, err := handle.DeleteEntry("never-existed").Await(testContext(t)); err != nil {
		t.Errorf("Expected no error deleting a missing key, got %v", err)
	}
}

func TestDeleteAllAndFlush(t *testing.T) {
	factory := memoryFactory()
	defer factory.Close()
	handle := openHandle(t, factory, "items")

	for i := 0; i < 10; i++ {
		if _, err := handle.Put(store.Record{"id": float64(i)}).Await(testContext(t)); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	if _, err := handle.DeleteAll().Await(testContext(t)); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	n, _ := handle.Count().Await(testContext(t))
	if n != 0 {
		t.Errorf("Expected empty store after DeleteAll, got %d records", n)
	}

	// the store survives and Flush behaves identically
	if _, err := handle.Put(store.Record{"id": "again"}).Await(testContext(t)); err != nil {
		t.Fatalf("Put after DeleteAll failed: %v", err)
	}
	if _, err := handle.Flush().Await(testContext(t)); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	n, _ = handle.Count().Await(testContext(t))
	if n != 0 {
		t.Errorf("Expected empty store after Flush, got %d records", n)
	}
}

func TestInvalidKeyRejection(t *testing.T) {
	factory := memoryFactory()
	defer factory.Close()
	handle := openHandle(t, factory, "items")

	_, err := handle.GetEntry(nil).Await(testContext(t))
	var storeErr *store.Error
	if !errors.As(err, &storeErr) || storeErr.Code != store.RetCInvalidKey {
		t.Errorf("Expected RetCInvalidKey for nil key, got %v", err)
	}

	_, err = handle.Put(store.Record{"id": map[string]any{"nested": true}}).Await(testContext(t))
	if !errors.As(err, &storeErr) || storeErr.Code != store.RetCInvalidKey {
		t.Errorf("Expected RetCInvalidKey for map key, got %v", err)
	}
}

func TestBoltBackedStore(t *testing.T) {
	dir := t.TempDir()
	factory := NewFactory(func(dbName string) (engine.DB, error) {
		return bolt.NewBoltDB(dbName, filepath.Join(dir, dbName+".db"))
	})

	handle := openHandle(t, factory, "persistent")
	if _, err := handle.Put(store.Record{"id": "k", "v": "stored"}).Await(testContext(t)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := factory.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// a fresh factory re-opens the same file and finds the record
	factory = NewFactory(func(dbName string) (engine.DB, error) {
		return bolt.NewBoltDB(dbName, filepath.Join(dir, dbName+".db"))
	})
	defer factory.Close()

	handle = openHandle(t, factory, "persistent")
	entry, err := handle.GetEntry("k").Await(testContext(t))
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if entry == nil || entry["v"] != "stored" {
		t.Errorf("Expected record to survive factory restart, got %v", entry)
	}
}
