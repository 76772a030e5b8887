package bolt

import (
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/oDB/lib/engine"
	enginetesting "github.com/ValentinKolb/oDB/lib/engine/testing"
)

func Test(t *testing.T) {
	enginetesting.RunEngineTests(t, "BoltDB", func() engine.DB {
		database, err := NewBoltDB("testdb", filepath.Join(t.TempDir(), "test.db"))
		if err != nil {
			t.Fatalf("Failed to open bolt database: %v", err)
		}
		return database
	})
}

// Bolt persists across re-opens, which the shared suite (fresh database per
// test) cannot cover. Exercised here directly.
func TestPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")

	database, err := NewBoltDB("testdb", path)
	if err != nil {
		t.Fatalf("Failed to open bolt database: %v", err)
	}
	if err := database.CreateStore("items", "id"); err != nil {
		t.Fatalf("CreateStore failed: %v", err)
	}
	if err := database.SetVersion(1); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}

	done := make(chan error, 1)
	database.Put("items", []engine.KeyValue{{Key: "k", Value: []byte("v")}}, func(err error) { done <- err })
	if err := <-done; err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := database.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	database, err = NewBoltDB("testdb", path)
	if err != nil {
		t.Fatalf("Failed to re-open bolt database: %v", err)
	}
	defer database.Close()

	if v := database.Version(); v != 1 {
		t.Errorf("Expected version 1 after re-open, got %d", v)
	}
	if !database.HasStore("items") {
		t.Errorf("Expected store to survive re-open")
	}
	if keyPath, ok := database.StoreKeyPath("items"); !ok || keyPath != "id" {
		t.Errorf("Expected key path %q after re-open, got %q (ok=%v)", "id", keyPath, ok)
	}

	type result struct {
		value []byte
		found bool
		err   error
	}
	ch := make(chan result, 1)
	database.Get("items", "k", func(value []byte, found bool, err error) {
		ch <- result{value, found, err}
	})
	r := <-ch
	if r.err != nil {
		t.Fatalf("Get failed: %v", r.err)
	}
	if !r.found || string(r.value) != "v" {
		t.Errorf("Expected value %q after re-open, got %q (found=%v)", "v", r.value, r.found)
	}
}

func Benchmark(b *testing.B) {
	enginetesting.RunEngineBenchmarks(b, "BoltDB", func() engine.DB {
		database, err := NewBoltDB("testdb", filepath.Join(b.TempDir(), "bench.db"))
		if err != nil {
			b.Fatalf("Failed to open bolt database: %v", err)
		}
		return database
	})
}
