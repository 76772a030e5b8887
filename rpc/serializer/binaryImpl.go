package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/oDB/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasKey     byte = 1 << 0
	hasRecord  byte = 1 << 1
	hasRecords byte = 1 << 2
	hasOk      byte = 1 << 3
	hasCount   byte = 1 << 4
	hasErr     byte = 1 << 5
	hasMeta    byte = 1 << 6
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	// Calculate total size needed
	totalSize := b.sizeBytes(msg)
	result := make([]byte, totalSize)

	// Write message type
	result[0] = byte(msg.MsgType)

	// Initialize flags byte
	var flags byte = 0

	// Set position for writing
	pos := 2 // Start after MsgType and flags

	// Handle Key
	if msg.Key != nil {
		flags |= hasKey
		keyLen := len(msg.Key)

		// Write key length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(keyLen))
		pos += 4

		// Write key data
		if keyLen > 0 {
			copy(result[pos:pos+keyLen], msg.Key)
			pos += keyLen
		}
	}

	// Handle Record
	if msg.Record != nil {
		flags |= hasRecord
		recordLen := len(msg.Record)

		// Write record length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(recordLen))
		pos += 4

		// Write record data
		if recordLen > 0 {
			copy(result[pos:pos+recordLen], msg.Record)
			pos += recordLen
		}
	}

	// Handle Records
	if msg.Records != nil {
		flags |= hasRecords

		// Write number of records
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(msg.Records)))
		pos += 4

		// Write each record prefixed with its length
		for _, record := range msg.Records {
			recordLen := len(record)
			binary.BigEndian.PutUint32(result[pos:pos+4], uint32(recordLen))
			pos += 4
			if recordLen > 0 {
				copy(result[pos:pos+recordLen], record)
				pos += recordLen
			}
		}
	}

	// Handle Ok
	if msg.Ok {
		flags |= hasOk
		result[pos] = 1
		pos += 1
	}

	// Handle Count
	if msg.Count > 0 {
		flags |= hasCount
		binary.BigEndian.PutUint64(result[pos:pos+8], msg.Count)
		pos += 8
	}

	// Handle Err
	if msg.Err != "" {
		flags |= hasErr
		errBytes := []byte(msg.Err)
		errLen := len(errBytes)

		// Write error length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(errLen))
		pos += 4

		// Write error data
		copy(result[pos:pos+errLen], errBytes)
		pos += errLen
	}

	// Handle Meta
	if msg.Meta != nil {
		flags |= hasMeta
		metaLen := len(msg.Meta)

		// Write meta length
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(metaLen))
		pos += 4

		// Write meta data
		if metaLen > 0 {
			copy(result[pos:pos+metaLen], msg.Meta)
			pos += metaLen
		}
	}

	// Set flags byte after knowing which fields are present
	result[1] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	// Read message type
	msg.MsgType = common.MessageType(data[0])

	// Read flags
	flags := data[1]
	pos := 2

	// reset optional fields so a reused message carries no stale state
	msg.Key = nil
	msg.Record = nil
	msg.Records = nil
	msg.Ok = false
	msg.Count = 0
	msg.Err = ""
	msg.Meta = nil

	// Handle Key
	if flags&hasKey != 0 {
		keyLen, err := readLength(data, pos)
		if err != nil {
			return fmt.Errorf("key: %v", err)
		}
		pos += 4
		if pos+keyLen > len(data) {
			return fmt.Errorf("data too short for key")
		}
		msg.Key = append([]byte(nil), data[pos:pos+keyLen]...)
		pos += keyLen
	}

	// Handle Record
	if flags&hasRecord != 0 {
		recordLen, err := readLength(data, pos)
		if err != nil {
			return fmt.Errorf("record: %v", err)
		}
		pos += 4
		if pos+recordLen > len(data) {
			return fmt.Errorf("data too short for record")
		}
		msg.Record = append([]byte(nil), data[pos:pos+recordLen]...)
		pos += recordLen
	}

	// Handle Records
	if flags&hasRecords != 0 {
		count, err := readLength(data, pos)
		if err != nil {
			return fmt.Errorf("records: %v", err)
		}
		pos += 4
		msg.Records = make([][]byte, 0, count)
		for i := 0; i < count; i++ {
			recordLen, err := readLength(data, pos)
			if err != nil {
				return fmt.Errorf("records[%d]: %v", i, err)
			}
			pos += 4
			if pos+recordLen > len(data) {
				return fmt.Errorf("data too short for records[%d]", i)
			}
			msg.Records = append(msg.Records, append([]byte(nil), data[pos:pos+recordLen]...))
			pos += recordLen
		}
	}

	// Handle Ok
	if flags&hasOk != 0 {
		if pos+1 > len(data) {
			return fmt.Errorf("data too short for ok flag")
		}
		msg.Ok = data[pos] == 1
		pos += 1
	}

	// Handle Count
	if flags&hasCount != 0 {
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for count")
		}
		msg.Count = binary.BigEndian.Uint64(data[pos : pos+8])
		pos += 8
	}

	// Handle Err
	if flags&hasErr != 0 {
		errLen, err := readLength(data, pos)
		if err != nil {
			return fmt.Errorf("err: %v", err)
		}
		pos += 4
		if pos+errLen > len(data) {
			return fmt.Errorf("data too short for error message")
		}
		msg.Err = string(data[pos : pos+errLen])
		pos += errLen
	}

	// Handle Meta
	if flags&hasMeta != 0 {
		metaLen, err := readLength(data, pos)
		if err != nil {
			return fmt.Errorf("meta: %v", err)
		}
		pos += 4
		if pos+metaLen > len(data) {
			return fmt.Errorf("data too short for meta")
		}
		msg.Meta = append([]byte(nil), data[pos:pos+metaLen]...)
		pos += metaLen
	}

	return nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// readLength reads a 4 byte big endian length prefix at pos
func readLength(data []byte, pos int) (int, error) {
	if pos+4 > len(data) {
		return 0, fmt.Errorf("data too short for length prefix")
	}
	return int(binary.BigEndian.Uint32(data[pos : pos+4])), nil
}

// sizeBytes calculates the total number of bytes needed to serialize the message
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	size := 2 // MsgType + flags

	if msg.Key != nil {
		size += 4 + len(msg.Key)
	}
	if msg.Record != nil {
		size += 4 + len(msg.Record)
	}
	if msg.Records != nil {
		size += 4
		for _, record := range msg.Records {
			size += 4 + len(record)
		}
	}
	if msg.Ok {
		size += 1
	}
	if msg.Count > 0 {
		size += 8
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta)
	}

	return size
}
