package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ValentinKolb/oDB/lib/promise"
	"github.com/ValentinKolb/oDB/lib/store"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the record for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opCtx()
			defer cancel()
			key := parseKey(args[0])
			record, err := rpcHandle.GetEntry(key).Await(ctx)
			if err != nil {
				return err
			}
			if record == nil {
				fmt.Printf("key=%v, found=false\n", key)
				return nil
			}
			data, err := json.Marshal(record)
			if err != nil {
				return err
			}
			fmt.Printf("key=%v, found=true, record=%s\n", key, data)
			return nil
		},
	}
	getAllCmd = &cobra.Command{
		Use:   "getall",
		Short: "Reads every record in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opCtx()
			defer cancel()
			records, err := rpcHandle.GetAll().Await(ctx)
			if err != nil {
				return err
			}
			for _, record := range records {
				data, err := json.Marshal(record)
				if err != nil {
					return err
				}
				fmt.Println(string(data))
			}
			fmt.Printf("%d record(s)\n", len(records))
			return nil
		},
	}
	putCmd = &cobra.Command{
		Use:   "put [record]",
		Short: "Inserts or updates a record (given as JSON object)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return putRecord(cmd, args[0], rpcHandle.Put)
		},
	}
	addCmd = &cobra.Command{
		Use:   "add [record]",
		Short: "Adds a record (given as JSON object), overwriting an existing key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return putRecord(cmd, args[0], rpcHandle.Add)
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes the record for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opCtx()
			defer cancel()
			if _, err := rpcHandle.DeleteEntry(parseKey(args[0])).Await(ctx); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Deletes every record in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opCtx()
			defer cancel()
			if _, err := rpcHandle.DeleteAll().Await(ctx); err != nil {
				return err
			}
			fmt.Println("clear successfully")
			return nil
		},
	}
	countCmd = &cobra.Command{
		Use:   "count",
		Short: "Counts the records in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opCtx()
			defer cancel()
			count, err := rpcHandle.Count().Await(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("count=%d\n", count)
			return nil
		},
	}
)

func init() {
	putCmd.Flags().Bool("gen-id", false, "Generate a UUID for the record's key field if it is missing")
	putCmd.Flags().String("key-path", "id", "The record field carrying the key")
	addCmd.Flags().Bool("gen-id", false, "Generate a UUID for the record's key field if it is missing")
	addCmd.Flags().String("key-path", "id", "The record field carrying the key")
}

// opCtx returns a context bounded by the configured client timeout
func opCtx() (context.Context, context.CancelFunc) {
	timeout := time.Duration(viper.GetInt("timeout")) * time.Second
	return context.WithTimeout(context.Background(), timeout)
}

// parseKey interprets a command line argument as a key. Numbers and booleans
// are passed through as such, everything else stays a string.
func parseKey(arg string) any {
	var key any
	if err := json.Unmarshal([]byte(arg), &key); err != nil {
		return arg
	}
	switch key.(type) {
	case string, float64, bool:
		return key
	default:
		return arg
	}
}

// putRecord implements the put and add commands, which only differ in the
// handle operation they invoke
func putRecord(cmd *cobra.Command, arg string, op func(store.Record) *promise.Promise[any]) error {
	ctx, cancel := opCtx()
	defer cancel()

	var record store.Record
	if err := json.Unmarshal([]byte(arg), &record); err != nil {
		return fmt.Errorf("record must be a JSON object: %w", err)
	}

	// Optionally generate a key
	genID, _ := cmd.Flags().GetBool("gen-id")
	keyPath, _ := cmd.Flags().GetString("key-path")
	if genID {
		if _, ok := record[keyPath]; !ok {
			record[keyPath] = uuid.NewString()
		}
	}

	key, err := op(record).Await(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("stored record with key=%v\n", key)
	return nil
}
