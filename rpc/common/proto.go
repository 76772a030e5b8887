package common

import (
	"encoding/json"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
//
// Keys and records travel as their JSON encoding so the server never needs
// to know the Go type a key arrived in; the store layer canonicalizes keys
// on both ends.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key     []byte   `json:"key,omitempty"`     // Used for: Get, Delete (request), Put, Add (response)
	Record  []byte   `json:"record,omitempty"`  // Used for: Put, Add (request), Get (response)
	Records [][]byte `json:"records,omitempty"` // Used for: PutAll (request), GetAll (response)

	// Response only fields
	Ok    bool   `json:"ok,omitempty"`    // Used for: Get response (record found)
	Count uint64 `json:"count,omitempty"` // Used for: Count response
	Err   string `json:"err,omitempty"`   // Empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Unused, can be used for additional Adapters
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewGetRequest creates a new GetEntry request
func NewGetRequest(key []byte) *Message {
	return &Message{
		MsgType: MsgTOSGet,
		Key:     key,
	}
}

// NewGetResponse creates a new GetEntry response
func NewGetResponse(record []byte, ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTOSGet,
		Record:  record,
		Ok:      ok,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewGetAllRequest creates a new GetAll request
func NewGetAllRequest() *Message {
	return &Message{
		MsgType: MsgTOSGetAll,
	}
}

// NewGetAllResponse creates a new GetAll response
func NewGetAllResponse(records [][]byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTOSGetAll,
		Records: records,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewPutRequest creates a new Put request
func NewPutRequest(record []byte) *Message {
	return &Message{
		MsgType: MsgTOSPut,
		Record:  record,
	}
}

// NewPutResponse creates a new Put response carrying the record's key
func NewPutResponse(key []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTOSPut,
		Key:     key,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewPutAllRequest creates a new PutAll request
func NewPutAllRequest(records [][]byte) *Message {
	return &Message{
		MsgType: MsgTOSPutAll,
		Records: records,
	}
}

// NewPutAllResponse creates a new PutAll response
func NewPutAllResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTOSPutAll,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewAddRequest creates a new Add request
func NewAddRequest(record []byte) *Message {
	return &Message{
		MsgType: MsgTOSAdd,
		Record:  record,
	}
}

// NewAddResponse creates a new Add response carrying the record's key
func NewAddResponse(key []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTOSAdd,
		Key:     key,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewDeleteRequest creates a new DeleteEntry request
func NewDeleteRequest(key []byte) *Message {
	return &Message{
		MsgType: MsgTOSDelete,
		Key:     key,
	}
}

// NewDeleteResponse creates a new DeleteEntry response
func NewDeleteResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTOSDelete,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewClearRequest creates a new DeleteAll request
func NewClearRequest() *Message {
	return &Message{
		MsgType: MsgTOSClear,
	}
}

// NewClearResponse creates a new DeleteAll response
func NewClearResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTOSClear,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewCountRequest creates a new Count request
func NewCountRequest() *Message {
	return &Message{
		MsgType: MsgTOSCount,
	}
}

// NewCountResponse creates a new Count response
func NewCountResponse(count uint64, err error) *Message {
	msg := &Message{
		MsgType: MsgTOSCount,
		Count:   count,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewCustomRequest creates a new Custom request
func NewCustomRequest(meta []byte) *Message {
	return &Message{
		MsgType: MsgTCustom,
		Meta:    meta,
	}
}

// NewCustomResponse creates a new Custom response
func NewCustomResponse(meta []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTCustom,
		Meta:    meta,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

const (
	MsgTOSGet MessageType = iota
	MsgTOSGetAll
	MsgTOSPut
	MsgTOSPutAll
	MsgTOSAdd
	MsgTOSDelete
	MsgTOSClear
	MsgTOSCount
	MsgTCustom
	MsgTError
	MsgTSuccess
)

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTOSGet:
		return "get"
	case MsgTOSGetAll:
		return "getAll"
	case MsgTOSPut:
		return "put"
	case MsgTOSPutAll:
		return "putAll"
	case MsgTOSAdd:
		return "add"
	case MsgTOSDelete:
		return "delete"
	case MsgTOSClear:
		return "clear"
	case MsgTOSCount:
		return "count"
	case MsgTCustom:
		return "custom"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "get":
		*t = MsgTOSGet
	case "getAll":
		*t = MsgTOSGetAll
	case "put":
		*t = MsgTOSPut
	case "putAll":
		*t = MsgTOSPutAll
	case "add":
		*t = MsgTOSAdd
	case "delete":
		*t = MsgTOSDelete
	case "clear":
		*t = MsgTOSClear
	case "count":
		*t = MsgTOSCount
	case "custom":
		*t = MsgTCustom
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		*t = MsgTError
	}
	return nil
}
