package ostore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ValentinKolb/oDB/lib/engine"
	"github.com/ValentinKolb/oDB/lib/promise"
	"github.com/ValentinKolb/oDB/lib/store"
)

type handleImpl struct {
	db        engine.DB
	storeName string
	keyPath   string
}

// newHandle creates a handle for a single object store within an already
// opened and upgraded database. Handles are created via Factory.Open.
func newHandle(db engine.DB, storeName, keyPath string) store.IHandle {
	return &handleImpl{
		db:        db,
		storeName: storeName,
		keyPath:   keyPath,
	}
}

// wrapErr translates an engine error into the store error taxonomy. Errors
// that already carry a return code pass through unchanged.
func wrapErr(err error) *store.Error {
	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		return storeErr
	}
	if errors.Is(err, engine.ErrStoreNotFound) {
		return store.NewError(store.RetCStoreNotFound, err.Error())
	}
	if errors.Is(err, engine.ErrClosed) {
		return store.NewError(store.RetCInvalidOperation, err.Error())
	}
	return store.NewError(store.RetCInternalError, err.Error())
}

// encodeRecord converts a record into its canonical engine pair. The key is
// taken from the record's key path field.
func (h *handleImpl) encodeRecord(entry store.Record) (engine.KeyValue, any, error) {
	key, err := store.ExtractKey(entry, h.keyPath)
	if err != nil {
		return engine.KeyValue{}, nil, err
	}
	encodedKey, err := store.EncodeKey(key)
	if err != nil {
		return engine.KeyValue{}, nil, err
	}
	value, err := json.Marshal(entry)
	if err != nil {
		return engine.KeyValue{}, nil, store.NewError(store.RetCInternalError, fmt.Sprintf("failed to encode record: %v", err))
	}
	return engine.KeyValue{Key: encodedKey, Value: value}, key, nil
}

func decodeRecord(value []byte) (store.Record, error) {
	var entry store.Record
	if err := json.Unmarshal(value, &entry); err != nil {
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("failed to decode record: %v", err))
	}
	return entry, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (h *handleImpl) GetEntry(key any) *promise.Promise[store.Record] {
	if !h.db.SupportsFeature(engine.FeatureGet) {
		return promise.Rejected[store.Record](store.NewError(store.RetCUnsupportedOperation, "GetEntry operation is not supported"))
	}
	encodedKey, err := store.EncodeKey(key)
	if err != nil {
		return promise.Rejected[store.Record](wrapErr(err))
	}

	p, resolve, reject := promise.New[store.Record]()
	h.db.Get(h.storeName, encodedKey, func(value []byte, found bool, err error) {
		if err != nil {
			reject(wrapErr(err))
			return
		}
		if !found {
			resolve(nil)
			return
		}
		entry, err := decodeRecord(value)
		if err != nil {
			reject(wrapErr(err))
			return
		}
		resolve(entry)
	})
	return p
}

func (h *handleImpl) GetAll() *promise.Promise[[]store.Record] {
	if !h.db.SupportsFeature(engine.FeatureGetAll) {
		return promise.Rejected[[]store.Record](store.NewError(store.RetCUnsupportedOperation, "GetAll operation is not supported"))
	}

	p, resolve, reject := promise.New[[]store.Record]()
	h.db.GetAll(h.storeName, func(values [][]byte, err error) {
		if err != nil {
			reject(wrapErr(err))
			return
		}
		entries := make([]store.Record, 0, len(values))
		for _, value := range values {
			entry, err := decodeRecord(value)
			if err != nil {
				reject(wrapErr(err))
				return
			}
			entries = append(entries, entry)
		}
		resolve(entries)
	})
	return p
}

func (h *handleImpl) Put(entry store.Record) *promise.Promise[any] {
	if !h.db.SupportsFeature(engine.FeaturePut) {
		return promise.Rejected[any](store.NewError(store.RetCUnsupportedOperation, "Put operation is not supported"))
	}
	pair, key, err := h.encodeRecord(entry)
	if err != nil {
		return promise.Rejected[any](wrapErr(err))
	}

	p, resolve, reject := promise.New[any]()
	h.db.Put(h.storeName, []engine.KeyValue{pair}, func(err error) {
		if err != nil {
			reject(wrapErr(err))
			return
		}
		resolve(key)
	})
	return p
}

func (h *handleImpl) PutAll(entries []store.Record) *promise.Promise[promise.Void] {
	if !h.db.SupportsFeature(engine.FeaturePut) {
		return promise.Rejected[promise.Void](store.NewError(store.RetCUnsupportedOperation, "PutAll operation is not supported"))
	}

	// encode everything up front so an invalid record rejects the whole
	// batch before any write happens
	pairs := make([]engine.KeyValue, 0, len(entries))
	for _, entry := range entries {
		pair, _, err := h.encodeRecord(entry)
		if err != nil {
			return promise.Rejected[promise.Void](wrapErr(err))
		}
		pairs = append(pairs, pair)
	}

	p, resolve, reject := promise.New[promise.Void]()
	h.db.Put(h.storeName, pairs, func(err error) {
		if err != nil {
			reject(wrapErr(err))
			return
		}
		resolve(promise.Void{})
	})
	return p
}

func (h *handleImpl) Add(entry store.Record) *promise.Promise[any] {
	// Add keeps Put's overwrite semantics, see store.IHandle
	return h.Put(entry)
}

func (h *handleImpl) DeleteEntry(key any) *promise.Promise[promise.Void] {
	if !h.db.SupportsFeature(engine.FeatureDelete) {
		return promise.Rejected[promise.Void](store.NewError(store.RetCUnsupportedOperation, "DeleteEntry operation is not supported"))
	}
	encodedKey, err := store.EncodeKey(key)
	if err != nil {
		return promise.Rejected[promise.Void](wrapErr(err))
	}

	p, resolve, reject := promise.New[promise.Void]()
	h.db.Delete(h.storeName, encodedKey, func(err error) {
		if err != nil {
			reject(wrapErr(err))
			return
		}
		resolve(promise.Void{})
	})
	return p
}

func (h *handleImpl) DeleteAll() *promise.Promise[promise.Void] {
	if !h.db.SupportsFeature(engine.FeatureClear) {
		return promise.Rejected[promise.Void](store.NewError(store.RetCUnsupportedOperation, "DeleteAll operation is not supported"))
	}

	p, resolve, reject := promise.New[promise.Void]()
	h.db.Clear(h.storeName, func(err error) {
		if err != nil {
			reject(wrapErr(err))
			return
		}
		resolve(promise.Void{})
	})
	return p
}

func (h *handleImpl) Flush() *promise.Promise[promise.Void] {
	return h.DeleteAll()
}

func (h *handleImpl) Count() *promise.Promise[uint64] {
	if !h.db.SupportsFeature(engine.FeatureCount) {
		return promise.Rejected[uint64](store.NewError(store.RetCUnsupportedOperation, "Count operation is not supported"))
	}

	p, resolve, reject := promise.New[uint64]()
	h.db.Count(h.storeName, func(n uint64, err error) {
		if err != nil {
			reject(wrapErr(err))
			return
		}
		resolve(n)
	})
	return p
}

func (h *handleImpl) GetDBInfo() (engine.DatabaseInfo, error) {
	return h.db.GetInfo(), nil
}
