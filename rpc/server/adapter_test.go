package server

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ValentinKolb/oDB/lib/engine"
	"github.com/ValentinKolb/oDB/lib/engine/engines/memory"
	"github.com/ValentinKolb/oDB/lib/store"
	"github.com/ValentinKolb/oDB/lib/store/ostore"
	"github.com/ValentinKolb/oDB/rpc/common"
)

// newTestHandle creates a memory backed object store handle for adapter tests
func newTestHandle(t *testing.T) store.IHandle {
	t.Helper()

	factory := ostore.NewFactory(func(dbName string) (engine.DB, error) {
		return memory.NewMemoryDB(dbName), nil
	})
	t.Cleanup(func() {
		if err := factory.Close(); err != nil {
			t.Errorf("failed to close factory: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	handle, err := factory.Open("testdb", nil).Await(ctx)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	return handle
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal %v: %v", v, err)
	}
	return data
}

func TestAdapterNilHandle(t *testing.T) {
	adapter := NewHandleServerAdapter(5 * time.Second)

	resp := adapter.Handle(common.NewCountRequest(), nil)
	if resp.MsgType != common.MsgTError {
		t.Errorf("expected error response, got %s", resp.MsgType)
	}
}

func TestAdapterPutGetDelete(t *testing.T) {
	adapter := NewHandleServerAdapter(5 * time.Second)
	handle := newTestHandle(t)

	// put a record
	record := store.Record{"id": "a", "value": "hello"}
	resp := adapter.Handle(common.NewPutRequest(mustMarshal(t, record)), handle)
	if resp.Err != "" {
		t.Fatalf("put failed: %s", resp.Err)
	}

	// the response carries the record's key
	var key any
	if err := json.Unmarshal(resp.Key, &key); err != nil {
		t.Fatalf("failed to decode key: %v", err)
	}
	if key != "a" {
		t.Errorf("key = %v, want a", key)
	}

	// get it back
	resp = adapter.Handle(common.NewGetRequest(mustMarshal(t, "a")), handle)
	if resp.Err != "" {
		t.Fatalf("get failed: %s", resp.Err)
	}
	if !resp.Ok {
		t.Fatal("expected record to be found")
	}
	var loaded store.Record
	if err := json.Unmarshal(resp.Record, &loaded); err != nil {
		t.Fatalf("failed to decode record: %v", err)
	}
	if loaded["value"] != "hello" {
		t.Errorf("value = %v, want hello", loaded["value"])
	}

	// delete it
	resp = adapter.Handle(common.NewDeleteRequest(mustMarshal(t, "a")), handle)
	if resp.Err != "" {
		t.Fatalf("delete failed: %s", resp.Err)
	}

	// now it is gone
	resp = adapter.Handle(common.NewGetRequest(mustMarshal(t, "a")), handle)
	if resp.Err != "" {
		t.Fatalf("get failed: %s", resp.Err)
	}
	if resp.Ok {
		t.Error("expected record to be gone after delete")
	}
}

func TestAdapterGetMissing(t *testing.T) {
	adapter := NewHandleServerAdapter(5 * time.Second)
	handle := newTestHandle(t)

	resp := adapter.Handle(common.NewGetRequest(mustMarshal(t, "nope")), handle)
	if resp.Err != "" {
		t.Fatalf("get failed: %s", resp.Err)
	}
	if resp.Ok {
		t.Error("expected missing record to report ok=false")
	}
}

func TestAdapterNumericKeyEquivalence(t *testing.T) {
	adapter := NewHandleServerAdapter(5 * time.Second)
	handle := newTestHandle(t)

	// store a record whose key is the integer 1
	resp := adapter.Handle(common.NewPutRequest(mustMarshal(t, store.Record{"id": 1, "value": "one"})), handle)
	if resp.Err != "" {
		t.Fatalf("put failed: %s", resp.Err)
	}

	// a lookup with 1.0 addresses the same record
	resp = adapter.Handle(common.NewGetRequest(mustMarshal(t, 1.0)), handle)
	if resp.Err != "" {
		t.Fatalf("get failed: %s", resp.Err)
	}
	if !resp.Ok {
		t.Error("expected lookup with 1.0 to find record stored under 1")
	}
}

func TestAdapterPutAllAndGetAll(t *testing.T) {
	adapter := NewHandleServerAdapter(5 * time.Second)
	handle := newTestHandle(t)

	records := [][]byte{
		mustMarshal(t, store.Record{"id": "a", "n": 1}),
		mustMarshal(t, store.Record{"id": "b", "n": 2}),
		mustMarshal(t, store.Record{"id": "c", "n": 3}),
	}
	resp := adapter.Handle(common.NewPutAllRequest(records), handle)
	if resp.Err != "" {
		t.Fatalf("putAll failed: %s", resp.Err)
	}

	resp = adapter.Handle(common.NewGetAllRequest(), handle)
	if resp.Err != "" {
		t.Fatalf("getAll failed: %s", resp.Err)
	}
	if len(resp.Records) != 3 {
		t.Errorf("got %d records, want 3", len(resp.Records))
	}
}

func TestAdapterCountAndClear(t *testing.T) {
	adapter := NewHandleServerAdapter(5 * time.Second)
	handle := newTestHandle(t)

	for _, id := range []string{"a", "b"} {
		resp := adapter.Handle(common.NewPutRequest(mustMarshal(t, store.Record{"id": id})), handle)
		if resp.Err != "" {
			t.Fatalf("put failed: %s", resp.Err)
		}
	}

	resp := adapter.Handle(common.NewCountRequest(), handle)
	if resp.Err != "" {
		t.Fatalf("count failed: %s", resp.Err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}

	resp = adapter.Handle(common.NewClearRequest(), handle)
	if resp.Err != "" {
		t.Fatalf("clear failed: %s", resp.Err)
	}

	resp = adapter.Handle(common.NewCountRequest(), handle)
	if resp.Err != "" {
		t.Fatalf("count failed: %s", resp.Err)
	}
	if resp.Count != 0 {
		t.Errorf("count after clear = %d, want 0", resp.Count)
	}
}

func TestAdapterAddOverwrites(t *testing.T) {
	adapter := NewHandleServerAdapter(5 * time.Second)
	handle := newTestHandle(t)

	resp := adapter.Handle(common.NewAddRequest(mustMarshal(t, store.Record{"id": "a", "v": "old"})), handle)
	if resp.Err != "" {
		t.Fatalf("add failed: %s", resp.Err)
	}

	// adding again with the same key overwrites, it does not fail
	resp = adapter.Handle(common.NewAddRequest(mustMarshal(t, store.Record{"id": "a", "v": "new"})), handle)
	if resp.Err != "" {
		t.Fatalf("second add failed: %s", resp.Err)
	}

	resp = adapter.Handle(common.NewGetRequest(mustMarshal(t, "a")), handle)
	var loaded store.Record
	if err := json.Unmarshal(resp.Record, &loaded); err != nil {
		t.Fatalf("failed to decode record: %v", err)
	}
	if loaded["v"] != "new" {
		t.Errorf("v = %v, want new", loaded["v"])
	}
}

func TestAdapterInvalidRequests(t *testing.T) {
	adapter := NewHandleServerAdapter(5 * time.Second)
	handle := newTestHandle(t)

	// unknown message type
	resp := adapter.Handle(&common.Message{MsgType: common.MsgTCustom}, handle)
	if resp.MsgType != common.MsgTError {
		t.Errorf("expected error response for custom message, got %s", resp.MsgType)
	}

	// get without a key
	resp = adapter.Handle(&common.Message{MsgType: common.MsgTOSGet}, handle)
	if resp.MsgType != common.MsgTError {
		t.Errorf("expected error response for keyless get, got %s", resp.MsgType)
	}

	// put without a record
	resp = adapter.Handle(&common.Message{MsgType: common.MsgTOSPut}, handle)
	if resp.Err == "" {
		t.Error("expected error for recordless put")
	}

	// put with a record missing the key field
	resp = adapter.Handle(common.NewPutRequest(mustMarshal(t, store.Record{"value": "no id"})), handle)
	if resp.Err == "" {
		t.Error("expected error for record without key field")
	}
}
