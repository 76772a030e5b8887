package testing

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/ValentinKolb/oDB/lib/engine"
)

// RunEngineBenchmarks runs all benchmarks for a DB implementation
func RunEngineBenchmarks(b *testing.B, name string, factory DBFactory) {
	b.Run(name, func(b *testing.B) {
		b.Run("Put", func(b *testing.B) {
			benchmarkPut(b, factory())
		})

		b.Run("PutExisting", func(b *testing.B) {
			benchmarkPutExisting(b, factory())
		})

		b.Run("PutBatch", func(b *testing.B) {
			benchmarkPutBatch(b, factory())
		})

		b.Run("Get", func(b *testing.B) {
			benchmarkGet(b, factory())
		})

		b.Run("Count", func(b *testing.B) {
			benchmarkCount(b, factory())
		})

		b.Run("MixedUsage", func(b *testing.B) {
			benchmarkMixedUsage(b, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for Put with unique keys
func benchmarkPut(b *testing.B, database engine.DB) {
	defer database.Close()
	mustCreateStore(b, database, "items")

	value := []byte("benchmark-value")

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("key-%d-%d", rand.Int63(), i)
			if err := syncPut(database, "items", engine.KeyValue{Key: key, Value: value}); err != nil {
				b.Fatalf("Put failed: %v", err)
			}
			i++
		}
	})
}

// Benchmark for Put overwriting existing keys
func benchmarkPutExisting(b *testing.B, database engine.DB) {
	defer database.Close()
	mustCreateStore(b, database, "items")

	const keySpace = 1000
	value := []byte("benchmark-value")
	for i := 0; i < keySpace; i++ {
		_ = syncPut(database, "items", engine.KeyValue{Key: fmt.Sprintf("key-%d", i), Value: value})
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			key := fmt.Sprintf("key-%d", rand.Intn(keySpace))
			if err := syncPut(database, "items", engine.KeyValue{Key: key, Value: value}); err != nil {
				b.Fatalf("Put failed: %v", err)
			}
		}
	})
}

// Benchmark for Put with multiple pairs per call
func benchmarkPutBatch(b *testing.B, database engine.DB) {
	defer database.Close()
	mustCreateStore(b, database, "items")

	const batchSize = 32
	value := []byte("benchmark-value")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pairs := make([]engine.KeyValue, 0, batchSize)
		for j := 0; j < batchSize; j++ {
			pairs = append(pairs, engine.KeyValue{Key: fmt.Sprintf("key-%d-%d", i, j), Value: value})
		}
		if err := syncPut(database, "items", pairs...); err != nil {
			b.Fatalf("Batched put failed: %v", err)
		}
	}
}

// Benchmark for Get on a prefilled store
func benchmarkGet(b *testing.B, database engine.DB) {
	defer database.Close()
	mustCreateStore(b, database, "items")

	const keySpace = 1000
	for i := 0; i < keySpace; i++ {
		_ = syncPut(database, "items", engine.KeyValue{Key: fmt.Sprintf("key-%d", i), Value: []byte("benchmark-value")})
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			key := fmt.Sprintf("key-%d", rand.Intn(keySpace))
			if _, _, err := syncGet(database, "items", key); err != nil {
				b.Fatalf("Get failed: %v", err)
			}
		}
	})
}

// Benchmark for Count on a prefilled store
func benchmarkCount(b *testing.B, database engine.DB) {
	defer database.Close()
	mustCreateStore(b, database, "items")

	for i := 0; i < 1000; i++ {
		_ = syncPut(database, "items", engine.KeyValue{Key: fmt.Sprintf("key-%d", i), Value: []byte("benchmark-value")})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := syncCount(database, "items"); err != nil {
			b.Fatalf("Count failed: %v", err)
		}
	}
}

// Benchmark for a mixed read/write workload (80% reads, 15% writes, 5% deletes)
func benchmarkMixedUsage(b *testing.B, database engine.DB) {
	defer database.Close()
	mustCreateStore(b, database, "items")

	const keySpace = 1000
	value := []byte("benchmark-value")
	for i := 0; i < keySpace; i++ {
		_ = syncPut(database, "items", engine.KeyValue{Key: fmt.Sprintf("key-%d", i), Value: value})
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			key := fmt.Sprintf("key-%d", rand.Intn(keySpace))
			switch n := rand.Intn(100); {
			case n < 80:
				_, _, _ = syncGet(database, "items", key)
			case n < 95:
				_ = syncPut(database, "items", engine.KeyValue{Key: key, Value: value})
			default:
				_ = syncDelete(database, "items", key)
			}
		}
	})
}
