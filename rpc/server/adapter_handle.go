package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ValentinKolb/oDB/lib/store"
	"github.com/ValentinKolb/oDB/rpc/common"
)

// NewHandleServerAdapter creates an adapter that translates RPC messages
// into object store operations. The timeout bounds how long the adapter
// waits for a single operation to settle.
func NewHandleServerAdapter(timeout time.Duration) IRPCServerAdapter {
	return &handleServerAdapterImpl{timeout: timeout}
}

type handleServerAdapterImpl struct {
	timeout time.Duration
}

func (adapter *handleServerAdapterImpl) Handle(req *common.Message, handle store.IHandle) *common.Message {
	// Check for nil handle
	if handle == nil {
		return common.NewErrorResponse("handler: store handle is nil")
	}

	ctx, cancel := context.WithTimeout(context.Background(), adapter.timeout)
	defer cancel()

	// Handle different message types
	switch req.MsgType {
	case common.MsgTOSGet:
		key, err := decodeKey(req.Key)
		if err != nil {
			return common.NewErrorResponse(err.Error())
		}
		record, err := handle.GetEntry(key).Await(ctx)
		if err != nil {
			return common.NewGetResponse(nil, false, err)
		}
		if record == nil {
			return common.NewGetResponse(nil, false, nil)
		}
		data, err := json.Marshal(record)
		if err != nil {
			return common.NewGetResponse(nil, false, err)
		}
		return common.NewGetResponse(data, true, nil)

	case common.MsgTOSGetAll:
		records, err := handle.GetAll().Await(ctx)
		if err != nil {
			return common.NewGetAllResponse(nil, err)
		}
		encoded := make([][]byte, 0, len(records))
		for _, record := range records {
			data, err := json.Marshal(record)
			if err != nil {
				return common.NewGetAllResponse(nil, err)
			}
			encoded = append(encoded, data)
		}
		return common.NewGetAllResponse(encoded, nil)

	case common.MsgTOSPut:
		entry, err := decodeRecord(req.Record)
		if err != nil {
			return common.NewPutResponse(nil, err)
		}
		key, err := handle.Put(entry).Await(ctx)
		if err != nil {
			return common.NewPutResponse(nil, err)
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return common.NewPutResponse(nil, err)
		}
		return common.NewPutResponse(encodedKey, nil)

	case common.MsgTOSPutAll:
		entries := make([]store.Record, 0, len(req.Records))
		for _, data := range req.Records {
			entry, err := decodeRecord(data)
			if err != nil {
				return common.NewPutAllResponse(err)
			}
			entries = append(entries, entry)
		}
		_, err := handle.PutAll(entries).Await(ctx)
		return common.NewPutAllResponse(err)

	case common.MsgTOSAdd:
		entry, err := decodeRecord(req.Record)
		if err != nil {
			return common.NewAddResponse(nil, err)
		}
		key, err := handle.Add(entry).Await(ctx)
		if err != nil {
			return common.NewAddResponse(nil, err)
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return common.NewAddResponse(nil, err)
		}
		return common.NewAddResponse(encodedKey, nil)

	case common.MsgTOSDelete:
		key, err := decodeKey(req.Key)
		if err != nil {
			return common.NewErrorResponse(err.Error())
		}
		_, err = handle.DeleteEntry(key).Await(ctx)
		return common.NewDeleteResponse(err)

	case common.MsgTOSClear:
		_, err := handle.DeleteAll().Await(ctx)
		return common.NewClearResponse(err)

	case common.MsgTOSCount:
		count, err := handle.Count().Await(ctx)
		return common.NewCountResponse(count, err)

	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC HandleAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}

// decodeKey decodes the JSON encoded key of a request. JSON numbers arrive
// as float64 which the store layer canonicalizes, so a key written as 1 and
// one queried as 1.0 address the same record.
func decodeKey(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("request contains no key")
	}
	var key any
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("failed to decode key: %w", err)
	}
	return key, nil
}

// decodeRecord decodes the JSON encoded record of a request.
func decodeRecord(data []byte) (store.Record, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("request contains no record")
	}
	var entry store.Record
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return entry, nil
}
