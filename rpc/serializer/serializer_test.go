package serializer

import (
	"reflect"
	"testing"

	"github.com/ValentinKolb/oDB/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSuccess},

		// Get request
		{
			MsgType: common.MsgTOSGet,
			Key:     []byte(`"test-key"`),
		},

		// Get response
		{
			MsgType: common.MsgTOSGet,
			Record:  []byte(`{"id":"test-key","name":"test"}`),
			Ok:      true,
		},

		// Put request
		{
			MsgType: common.MsgTOSPut,
			Record:  []byte(`{"id":1,"name":"test"}`),
		},

		// PutAll request
		{
			MsgType: common.MsgTOSPutAll,
			Records: [][]byte{
				[]byte(`{"id":1}`),
				[]byte(`{"id":2}`),
			},
		},

		// Count response
		{
			MsgType: common.MsgTOSCount,
			Count:   42,
		},

		// Error response
		{
			MsgType: common.MsgTError,
			Err:     "test error message",
		},

		// Message with all fields filled
		{
			MsgType: common.MsgTOSGetAll,
			Key:     []byte(`"test-key"`),
			Record:  []byte(`{"id":"test-key"}`),
			Records: [][]byte{[]byte(`{"id":1}`)},
			Ok:      true,
			Count:   1,
			Err:     "",
			Meta:    []byte("test-meta-data"),
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range messages {
				// Serialize
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message %d: %v", i, err)
					continue
				}

				// Deserialize
				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message %d: %v", i, err)
					continue
				}

				// Compare
				if !reflect.DeepEqual(msg, result) {
					t.Errorf("Message %d doesn't match after round trip:\nOriginal: %+v\nResult: %+v",
						i, msg, result)
				}
			}
		})
	}
}

// TestMessageTypes tests each message type with each serializer
func TestMessageTypes(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			// Test each message type
			for msgType := common.MsgTOSGet; msgType <= common.MsgTSuccess; msgType++ {
				msg := common.Message{MsgType: msgType}

				// Serialize
				data, err := serializer.Serialize(msg)
				if err != nil {
					t.Errorf("Failed to serialize message type %s: %v", msgType.String(), err)
					continue
				}

				// Deserialize
				var result common.Message
				err = serializer.Deserialize(data, &result)
				if err != nil {
					t.Errorf("Failed to deserialize message type %s: %v", msgType.String(), err)
					continue
				}

				// Check type
				if result.MsgType != msgType {
					t.Errorf("Message type doesn't match after round trip: Expected %s, got %s",
						msgType.String(), result.MsgType.String())
				}
			}
		})
	}
}

// TestBinarySerializerReuse tests that deserializing into a reused message
// clears every field from the previous message
func TestBinarySerializerReuse(t *testing.T) {
	serializer := NewBinarySerializer()

	full := common.Message{
		MsgType: common.MsgTOSGetAll,
		Key:     []byte(`"k"`),
		Record:  []byte(`{}`),
		Records: [][]byte{[]byte(`{}`)},
		Ok:      true,
		Count:   7,
		Err:     "previous error",
		Meta:    []byte("meta"),
	}
	empty := common.Message{MsgType: common.MsgTSuccess}

	var msg common.Message

	data, err := serializer.Serialize(full)
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}
	if err := serializer.Deserialize(data, &msg); err != nil {
		t.Fatalf("Failed to deserialize: %v", err)
	}

	data, err = serializer.Serialize(empty)
	if err != nil {
		t.Fatalf("Failed to serialize: %v", err)
	}
	if err := serializer.Deserialize(data, &msg); err != nil {
		t.Fatalf("Failed to deserialize: %v", err)
	}

	if !reflect.DeepEqual(empty, msg) {
		t.Errorf("Reused message carries stale state:\nExpected: %+v\nResult: %+v", empty, msg)
	}
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectError: true,
		},
		{
			name:        "Too short header",
			data:        []byte{1}, // Only message type, no flags
			expectError: true,
		},
		{
			name:        "Valid header only",
			data:        []byte{1, 0}, // Message type 1, no flags
			expectError: false,
		},
		{
			name:        "Invalid length for key",
			data:        []byte{1, 1, 0, 0, 0, 5, 'a', 'b', 'c'}, // Claims key length 5 but only 3 bytes provided
			expectError: true,
		},
		{
			name:        "Invalid length for record",
			data:        []byte{1, 2, 0, 0, 0, 10}, // Claims record length 10 but no bytes provided
			expectError: true,
		},
		{
			name:        "Truncated records list",
			data:        []byte{1, 4, 0, 0, 0, 2, 0, 0, 0, 1, 'a'}, // Claims 2 records but only 1 present
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var msg common.Message
			err := serializer.Deserialize(tc.data, &msg)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}
