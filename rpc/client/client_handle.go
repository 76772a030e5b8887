package client

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/oDB/lib/engine"
	"github.com/ValentinKolb/oDB/lib/promise"
	"github.com/ValentinKolb/oDB/lib/store"
	"github.com/ValentinKolb/oDB/rpc/common"
	"github.com/ValentinKolb/oDB/rpc/serializer"
	"github.com/ValentinKolb/oDB/rpc/transport"
)

// NewRPCHandle creates a new RPC backed object store handle
// The function takes a database name, a config, a transport and a serializer as parameters
// It returns a store.IHandle and an error
func NewRPCHandle(
	database string,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.IHandle, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	// Create a new RPC handle
	h := rpcHandle{
		rpcClientAdapter{
			database:   database,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}

	// Return the RPC handle
	return &h, nil
}

type rpcHandle struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (h *rpcHandle) GetEntry(key any) *promise.Promise[store.Record] {
	p, resolve, reject := promise.New[store.Record]()
	go func() {
		encodedKey, err := json.Marshal(key)
		if err != nil {
			reject(store.NewError(store.RetCInvalidKey, fmt.Sprintf("failed to encode key: %v", err)))
			return
		}
		resp, err := invokeRPCRequest(h.database, common.NewGetRequest(encodedKey), h.transport, h.serializer)
		if err != nil {
			reject(wrapRPCErr(err))
			return
		}
		if !resp.Ok {
			resolve(nil)
			return
		}
		var record store.Record
		if err := json.Unmarshal(resp.Record, &record); err != nil {
			reject(store.NewError(store.RetCInternalError, fmt.Sprintf("failed to decode record: %v", err)))
			return
		}
		resolve(record)
	}()
	return p
}

func (h *rpcHandle) GetAll() *promise.Promise[[]store.Record] {
	p, resolve, reject := promise.New[[]store.Record]()
	go func() {
		resp, err := invokeRPCRequest(h.database, common.NewGetAllRequest(), h.transport, h.serializer)
		if err != nil {
			reject(wrapRPCErr(err))
			return
		}
		records := make([]store.Record, 0, len(resp.Records))
		for _, data := range resp.Records {
			var record store.Record
			if err := json.Unmarshal(data, &record); err != nil {
				reject(store.NewError(store.RetCInternalError, fmt.Sprintf("failed to decode record: %v", err)))
				return
			}
			records = append(records, record)
		}
		resolve(records)
	}()
	return p
}

func (h *rpcHandle) Put(entry store.Record) *promise.Promise[any] {
	return h.putRecord(entry, common.NewPutRequest)
}

func (h *rpcHandle) Add(entry store.Record) *promise.Promise[any] {
	return h.putRecord(entry, common.NewAddRequest)
}

// putRecord implements Put and Add, which only differ in the request they
// send.
func (h *rpcHandle) putRecord(entry store.Record, newRequest func([]byte) *common.Message) *promise.Promise[any] {
	p, resolve, reject := promise.New[any]()
	go func() {
		data, err := json.Marshal(entry)
		if err != nil {
			reject(store.NewError(store.RetCInternalError, fmt.Sprintf("failed to encode record: %v", err)))
			return
		}
		resp, err := invokeRPCRequest(h.database, newRequest(data), h.transport, h.serializer)
		if err != nil {
			reject(wrapRPCErr(err))
			return
		}
		var key any
		if err := json.Unmarshal(resp.Key, &key); err != nil {
			reject(store.NewError(store.RetCInternalError, fmt.Sprintf("failed to decode key: %v", err)))
			return
		}
		resolve(key)
	}()
	return p
}

func (h *rpcHandle) PutAll(entries []store.Record) *promise.Promise[promise.Void] {
	p, resolve, reject := promise.New[promise.Void]()
	go func() {
		records := make([][]byte, 0, len(entries))
		for _, entry := range entries {
			data, err := json.Marshal(entry)
			if err != nil {
				reject(store.NewError(store.RetCInternalError, fmt.Sprintf("failed to encode record: %v", err)))
				return
			}
			records = append(records, data)
		}
		if _, err := invokeRPCRequest(h.database, common.NewPutAllRequest(records), h.transport, h.serializer); err != nil {
			reject(wrapRPCErr(err))
			return
		}
		resolve(promise.Void{})
	}()
	return p
}

func (h *rpcHandle) DeleteEntry(key any) *promise.Promise[promise.Void] {
	p, resolve, reject := promise.New[promise.Void]()
	go func() {
		encodedKey, err := json.Marshal(key)
		if err != nil {
			reject(store.NewError(store.RetCInvalidKey, fmt.Sprintf("failed to encode key: %v", err)))
			return
		}
		if _, err := invokeRPCRequest(h.database, common.NewDeleteRequest(encodedKey), h.transport, h.serializer); err != nil {
			reject(wrapRPCErr(err))
			return
		}
		resolve(promise.Void{})
	}()
	return p
}

func (h *rpcHandle) DeleteAll() *promise.Promise[promise.Void] {
	p, resolve, reject := promise.New[promise.Void]()
	go func() {
		if _, err := invokeRPCRequest(h.database, common.NewClearRequest(), h.transport, h.serializer); err != nil {
			reject(wrapRPCErr(err))
			return
		}
		resolve(promise.Void{})
	}()
	return p
}

func (h *rpcHandle) Flush() *promise.Promise[promise.Void] {
	return h.DeleteAll()
}

func (h *rpcHandle) Count() *promise.Promise[uint64] {
	p, resolve, reject := promise.New[uint64]()
	go func() {
		resp, err := invokeRPCRequest(h.database, common.NewCountRequest(), h.transport, h.serializer)
		if err != nil {
			reject(wrapRPCErr(err))
			return
		}
		resolve(resp.Count)
	}()
	return p
}

// GetDBInfo is not implemented for rpc
func (h *rpcHandle) GetDBInfo() (info engine.DatabaseInfo, err error) {
	return engine.DatabaseInfo{}, fmt.Errorf("the GetDBInfo() method is not implemented in the rpc client adapter")
}

// wrapRPCErr turns a transport or server error into a *store.Error so that
// promises returned by the handle always reject with the store error type.
func wrapRPCErr(err error) *store.Error {
	return store.NewError(store.RetCInternalError, err.Error())
}
