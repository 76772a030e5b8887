package db

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/oDB/cmd/util"
	"github.com/ValentinKolb/oDB/lib/store"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for oDB servers",
		Long:    "",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix         = "__test"
	perfLargeRecordSizeKB = 100
	perfNumThreads        = 10
	perfKeySpread         = 100
	perfSkip              = make([]string, 0)

	// per-test latency timers, reported next to the benchmark results
	perfRegistry = gometrics.NewRegistry()
)

func init() {
	// add flags
	key := "skip"
	DatabaseCommands.PersistentFlags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. put,get)"))
	key = "threads"
	DatabaseCommands.PersistentFlags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-record-size"
	DatabaseCommands.PersistentFlags().Int(key, 1000, util.WrapString("How large the record for the put-large test should be (in KB)"))
	key = "keys"
	DatabaseCommands.PersistentFlags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeRecordSizeKB = viper.GetInt("large-record-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

// --------------------------------------------------------------------------
// Timed handle operations
// --------------------------------------------------------------------------

func perfPut(test string, record store.Record) error {
	var err error
	timerFor(test).Time(func() {
		ctx, cancel := opCtx()
		defer cancel()
		_, err = rpcHandle.Put(record).Await(ctx)
	})
	return err
}

func perfGet(test string, key any) (store.Record, error) {
	var record store.Record
	var err error
	timerFor(test).Time(func() {
		ctx, cancel := opCtx()
		defer cancel()
		record, err = rpcHandle.GetEntry(key).Await(ctx)
	})
	return record, err
}

func perfDelete(test string, key any) error {
	var err error
	timerFor(test).Time(func() {
		ctx, cancel := opCtx()
		defer cancel()
		_, err = rpcHandle.DeleteEntry(key).Await(ctx)
	})
	return err
}

func perfCount(test string) (uint64, error) {
	var count uint64
	var err error
	timerFor(test).Time(func() {
		ctx, cancel := opCtx()
		defer cancel()
		count, err = rpcHandle.Count().Await(ctx)
	})
	return count, err
}

func timerFor(test string) gometrics.Timer {
	return gometrics.GetOrRegisterTimer(test, perfRegistry)
}

func run(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for oDB servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	// Create results map
	results := make(map[string]testing.BenchmarkResult)

	putResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("put") {
			return
		}

		// prepare keys
		getKey, iter := getKeys("put")

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if err := perfDelete("put-cleanup", k); err != nil {
					log.Printf("(put) - error deleting key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				err := perfPut("put", store.Record{"id": getKey(counter), "value": "test"})
				if err != nil {
					log.Printf("(put) - error putting record: %v\n", err)
				}
				counter++
			}
		})
	})

	results["put"] = putResult
	printResult("put", putResult)

	putLargeResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("put-large") {
			return
		}

		// prepare large payload
		largeValue := strings.Repeat("x", perfLargeRecordSizeKB*1024)

		// prepare keys
		getKey, iter := getKeys("put-large")

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if err := perfDelete("put-large-cleanup", k); err != nil {
					log.Printf("(put-large) - error deleting key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				err := perfPut("put-large", store.Record{"id": getKey(counter), "value": largeValue})
				if err != nil {
					log.Printf("(put-large) - error putting record: %v\n", err)
				}
				counter++
			}
		})
	})

	results["put-large"] = putLargeResult
	printResult("put-large", putLargeResult)

	getResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("get") {
			return
		}

		// prepare keys
		getKey, iter := getKeys("get")

		// put records
		iter(func(k string) {
			if err := perfPut("get-setup", store.Record{"id": k, "value": "test"}); err != nil {
				log.Printf("(get) - error putting record: %v\n", err)
			}
		})

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if err := perfDelete("get-cleanup", k); err != nil {
					log.Printf("(get) - error deleting key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				_, err := perfGet("get", getKey(counter))
				if err != nil {
					log.Printf("(get) - error getting record: %v\n", err)
				}
				counter++
			}
		})
	})

	results["get"] = getResult
	printResult("get", getResult)

	getMissingResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("get-missing") {
			return
		}

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				key := fmt.Sprintf("%s/get-missing-%d", perfKeyPrefix, counter%100)
				_, err := perfGet("get-missing", key) // nil record expected
				if err != nil {
					log.Printf("(get-missing) - error getting record: %v\n", err)
				}
				counter++
			}
		})
	})

	results["get-missing"] = getMissingResult
	printResult("get-missing", getMissingResult)

	deleteResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("delete") {
			return
		}

		// prepare keys
		getKey, iter := getKeys("delete")

		// put records
		iter(func(k string) {
			if err := perfPut("delete-setup", store.Record{"id": k, "value": "test"}); err != nil {
				log.Printf("(delete) - error putting record: %v\n", err)
			}
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				if err := perfDelete("delete", getKey(counter)); err != nil {
					log.Printf("(delete) - error deleting key: %v\n", err)
				}
				counter++
			}
		})
	})

	results["delete"] = deleteResult
	printResult("delete", deleteResult)

	countResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("count") {
			return
		}

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				if _, err := perfCount("count"); err != nil {
					log.Printf("(count) - error counting records: %v\n", err)
				}
			}
		})
	})

	results["count"] = countResult
	printResult("count", countResult)

	mixedUsageResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("mixed") {
			return
		}

		// prepare keys
		getKey, iter := getKeys("mixed")

		// put records
		iter(func(k string) {
			if err := perfPut("mixed-setup", store.Record{"id": k, "value": "test"}); err != nil {
				log.Printf("(mixed) - error putting record: %v\n", err)
			}
		})

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if err := perfDelete("mixed-cleanup", k); err != nil {
					log.Printf("(mixed) - error deleting key: %v\n", err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				key := getKey(counter)
				var err error
				switch counter % 4 {
				case 0: // put
					err = perfPut("mixed", store.Record{"id": key, "value": "test"})
				case 1: // get
					_, err = perfGet("mixed", key)
				case 2: // delete
					err = perfDelete("mixed", key)
				case 3: // count
					_, err = perfCount("mixed")
				}

				if err != nil {
					log.Printf("(mixed) - error performing operation (%d): %v\n", counter%4, err)
				}
				counter++
			}
		})
	})

	results["mixed"] = mixedUsageResult
	printResult("mixed", mixedUsageResult)

	// Print latency percentiles collected by the timers
	printLatencies()

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// printLatencies prints p50/p95/p99 latencies for every test timer
func printLatencies() {
	fmt.Println()
	fmt.Println("Latencies:")
	perfRegistry.Each(func(name string, metric any) {
		timer, ok := metric.(gometrics.Timer)
		if !ok || timer.Count() == 0 {
			return
		}
		ps := timer.Percentiles([]float64{0.5, 0.95, 0.99})
		fmt.Printf("%-20sp50=%s\tp95=%s\tp99=%s\n",
			name,
			time.Duration(ps[0]),
			time.Duration(ps[1]),
			time.Duration(ps[2]),
		)
	})
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult) error {
	config := util.GetClientConfig()

	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint",
		"Database", "Serializer", "Transport",
		"Threads", "LargeRecordSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
			nsPerOp = 0
			opsPerSec = 0
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			strings.Join(config.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
			strconv.Itoa(config.ConnectionsPerEndpoint),
			util.GetDatabase(),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeRecordSizeKB),
			strconv.Itoa(perfKeySpread),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %v", err)
		}
	}

	return nil
}
