package tcp

import (
	"net"
	"time"

	"github.com/ValentinKolb/oDB/rpc/common"
	"github.com/ValentinKolb/oDB/rpc/transport"
	"github.com/ValentinKolb/oDB/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for TCP sockets
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "tcp"
}

func (c *clientConnector) Connect(endpoint string) (net.Conn, error) {
	return net.Dial("tcp", endpoint)
}

// UpgradeConnection applies socket tuning from the client configuration
func (c *clientConnector) UpgradeConnection(conn net.Conn, config common.ClientConfig) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil // Not a TCP connection, nothing to upgrade
	}
	return applySocketTuning(tcpConn, config.Socket)
}

// applySocketTuning applies the shared socket options to a TCP connection
func applySocketTuning(tcpConn *net.TCPConn, tuning common.SocketTuning) error {
	// Disable Nagle's algorithm (TCPNoDelay) if configured
	if err := tcpConn.SetNoDelay(tuning.TCPNoDelay); err != nil {
		return err
	}

	// Set socket write buffer size if configured
	if tuning.WriteBufferSize > 0 {
		if err := tcpConn.SetWriteBuffer(tuning.WriteBufferSize); err != nil {
			return err
		}
	}

	// Set socket read buffer size if configured
	if tuning.ReadBufferSize > 0 {
		if err := tcpConn.SetReadBuffer(tuning.ReadBufferSize); err != nil {
			return err
		}
	}

	// Enable TCP keep-alive if configured
	if tuning.TCPKeepAliveSec > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}

		// Set keep-alive period
		keepAlivePeriod := time.Duration(tuning.TCPKeepAliveSec) * time.Second
		if err := tcpConn.SetKeepAlivePeriod(keepAlivePeriod); err != nil {
			return err
		}
	}

	// Set TCP linger option if configured
	if tuning.TCPLingerSec >= 0 {
		if err := tcpConn.SetLinger(tuning.TCPLingerSec); err != nil {
			return err
		}
	}

	return nil
}

// --------------------------------------------------------------------------
// Client Transport Factory Method
// --------------------------------------------------------------------------

// NewTCPClientTransport creates a new TCP client transport
func NewTCPClientTransport() transport.IRPCClientTransport {
	return base.NewBaseClientTransport(&clientConnector{})
}
