package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/rpc")

// frameHeaderSize is the fixed part of every frame:
// 4 bytes database name length + 8 bytes requestID + 4 bytes data length
const frameHeaderSize = 16

// maxDatabaseNameLen guards against malformed frames claiming huge names
const maxDatabaseNameLen = 4 * 1024

// writeFrame writes a frame to the connection with the format:
// - 4 bytes: database name length (uint32, big endian)
// - 8 bytes: requestID (uint64, big endian)
// - 4 bytes: data length (uint32, big endian)
// - N bytes: database name
// - M bytes: data payload
func writeFrame(conn net.Conn, database string, requestID uint64, data []byte) error {
	header := make([]byte, frameHeaderSize)
	binary.BigEndian.PutUint32(header[:4], uint32(len(database)))
	binary.BigEndian.PutUint64(header[4:12], requestID)
	binary.BigEndian.PutUint32(header[12:16], uint32(len(data)))

	b := net.Buffers{header, []byte(database), data}
	_, err := b.WriteTo(conn)
	return err
}

// readFrame reads a frame from the connection using the provided buffer
// If the buffer is too small, it will allocate a new temporary buffer for the data
func readFrame(conn net.Conn, buf []byte) (string, uint64, []byte, error) {
	// Check if buffer is large enough for header
	if buf == nil || len(buf) < frameHeaderSize {
		buf = make([]byte, frameHeaderSize) // create header buffer
	}

	// Read header
	if _, err := io.ReadFull(conn, buf[:frameHeaderSize]); err != nil {
		return "", 0, nil, err
	}

	// Parse header
	nameLength := binary.BigEndian.Uint32(buf[:4])
	requestID := binary.BigEndian.Uint64(buf[4:12])
	contentLength := binary.BigEndian.Uint32(buf[12:16])

	if nameLength > maxDatabaseNameLen {
		return "", 0, nil, fmt.Errorf("database name length %d exceeds limit", nameLength)
	}

	// Read database name
	nameBuf := make([]byte, nameLength)
	if _, err := io.ReadFull(conn, nameBuf); err != nil {
		return "", 0, nil, err
	}
	database := string(nameBuf)

	// If no data, return empty slice
	if contentLength == 0 {
		return database, requestID, []byte{}, nil
	}

	// Check if buffer is large enough for data
	if len(buf) < int(contentLength) {
		buf = make([]byte, contentLength)
	}

	// Read data
	if _, err := io.ReadFull(conn, buf[:contentLength]); err != nil {
		return "", 0, nil, err
	}

	// Return data
	return database, requestID, buf[:contentLength], nil
}
