package memory

import (
	"testing"

	"github.com/ValentinKolb/oDB/lib/engine"
	enginetesting "github.com/ValentinKolb/oDB/lib/engine/testing"
)

func Test(t *testing.T) {
	enginetesting.RunEngineTests(t, "MemoryDB", func() engine.DB {
		return NewMemoryDB("testdb")
	})
}

func Benchmark(b *testing.B) {
	enginetesting.RunEngineBenchmarks(b, "MemoryDB", func() engine.DB {
		return NewMemoryDB("testdb")
	})
}
