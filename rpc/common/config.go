package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerEngineType selects the storage backend of a served database.
type ServerEngineType string

const (
	EngineTypeMemory ServerEngineType = "memory"
	EngineTypeBolt   ServerEngineType = "bolt"
)

// ServerDatabase describes one database the server exposes.
type ServerDatabase struct {
	// Name is the database name clients address their requests to
	Name string
	// Engine is the storage backend for this database
	Engine ServerEngineType
}

// SocketTuning holds low level socket options shared by client and server
// transports. Zero values leave the kernel defaults untouched.
type SocketTuning struct {
	// Disable Nagle's algorithm on TCP connections
	TCPNoDelay bool
	// Keep-alive period in seconds, 0 disables keep-alive
	TCPKeepAliveSec int
	// Linger in seconds, negative leaves the default
	TCPLingerSec int
	// Socket buffer sizes in bytes
	ReadBufferSize  int
	WriteBufferSize int
}

// ServerConfig holds all configuration parameters for the RPC server.
type ServerConfig struct {
	// Databases the server serves, each with its own storage backend
	Databases []ServerDatabase

	// KeyPath is the record field used as key for newly created stores
	KeyPath string

	// DataDir is where persistent engines keep their files
	DataDir string

	// Timeout for a single operation
	TimeoutSecond int64

	// RPC api settings
	Endpoint string

	// MaxWorkersPerConn limits the number of requests a single connection
	// processes concurrently (minimum 1)
	MaxWorkersPerConn int

	// Socket holds socket level tuning for the listener
	Socket SocketTuning

	// Logging configuration
	LogLevel string
}

// HasPersistentDatabase checks if the configuration contains any database
// that needs the data directory
func (c *ServerConfig) HasPersistentDatabase() bool {
	for _, database := range c.Databases {
		if database.Engine == EngineTypeBolt {
			return true
		}
	}
	return false
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	// Databases
	addSection("Databases")
	addField("Key Path", c.KeyPath)
	for _, database := range c.Databases {
		addField(database.Name, string(database.Engine))
	}

	if c.HasPersistentDatabase() {
		addSection("Storage")
		addField("Data Directory", c.DataDir)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints              []string
	TimeoutSecond          int
	RetryCount             int
	ConnectionsPerEndpoint int

	// Socket holds socket level tuning for outgoing connections
	Socket SocketTuning
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(int(math.Max(1, float64(c.ConnectionsPerEndpoint)))))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
