package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/ValentinKolb/oDB/lib/engine"
	"github.com/ValentinKolb/oDB/lib/engine/engines/bolt"
	"github.com/ValentinKolb/oDB/lib/engine/engines/memory"
	"github.com/ValentinKolb/oDB/lib/promise"
	"github.com/ValentinKolb/oDB/lib/store"
	"github.com/ValentinKolb/oDB/lib/store/ostore"
	"github.com/ValentinKolb/oDB/rpc/common"
	"github.com/ValentinKolb/oDB/rpc/serializer"
	"github.com/ValentinKolb/oDB/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("rpc")

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		tcp.NewTCPDefaultServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	 }
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) rpcServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	// Create the RPC server
	return rpcServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		handles:    xsync.NewMapOf[string, store.IHandle](),
	}
}

type rpcServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	factory    *ostore.Factory
	adapter    IRPCServerAdapter
	handles    *xsync.MapOf[string, store.IHandle]
}

func (s *rpcServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(database string, req []byte) []byte {
		var msg common.Message
		var respMsg common.Message

		metrics.GetOrCreateCounter(fmt.Sprintf(`odb_rpc_requests_total{database=%q}`, database)).Inc()

		// Get the handle for the addressed database
		handle, ok := s.handles.Load(database)

		// Case database is not served -> error
		if !ok {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("database %q not found", database),
			}
		} else {
			// Decode the request
			err := s.serializer.Deserialize(req, &msg)

			if err != nil {
				respMsg = common.Message{
					MsgType: common.MsgTError,
					Err:     fmt.Sprintf("failed to deserialize request: %s", err),
				}
			} else {
				// Let the adapter handle the request
				respMsg = *s.adapter.Handle(&msg, handle)
			}
		}

		if respMsg.MsgType == common.MsgTError || respMsg.Err != "" {
			metrics.GetOrCreateCounter(fmt.Sprintf(`odb_rpc_errors_total{database=%q}`, database)).Inc()
		}

		// Return result
		val, err := s.serializer.Serialize(respMsg)
		if err != nil {
			respMsg = common.Message{
				MsgType: common.MsgTError,
				Err:     fmt.Sprintf("failed to serialize response: %s", err),
			}
		}
		return val
	})
}

func (s *rpcServer) init() error {

	// Init logger
	common.InitLoggers(s.config)

	if s.config.HasPersistentDatabase() {
		if s.config.DataDir == "" {
			return fmt.Errorf("data dir required for persistent databases")
		}
		if err := os.MkdirAll(s.config.DataDir, 0o700); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	// Look up the configured engine for a database name. The factory is
	// shared across all served databases so handles are memoized in one
	// place.
	engines := make(map[string]common.ServerEngineType, len(s.config.Databases))
	for _, database := range s.config.Databases {
		engines[database.Name] = database.Engine
	}

	s.factory = ostore.NewFactory(func(dbName string) (engine.DB, error) {
		switch engines[dbName] {
		case common.EngineTypeMemory:
			return memory.NewMemoryDB(dbName), nil
		case common.EngineTypeBolt:
			return bolt.NewBoltDB(dbName, filepath.Join(s.config.DataDir, dbName+".db"))
		default:
			return nil, fmt.Errorf("unknown engine type %q for database %q", engines[dbName], dbName)
		}
	})

	timeout := time.Duration(s.config.TimeoutSecond) * time.Second
	s.adapter = NewHandleServerAdapter(timeout)

	opts := &ostore.OpenOptions{KeyPath: s.config.KeyPath}

	// Open every configured database up front so a broken configuration
	// fails the server start instead of the first request.
	for _, database := range s.config.Databases {
		handle, err := waitFor(s.factory.Open(database.Name, opts), timeout)
		if err != nil {
			return fmt.Errorf("failed to open database %q: %w", database.Name, err)
		}
		s.handles.Store(database.Name, handle)
		Logger.Infof("opened database %q (engine %s)", database.Name, database.Engine)
	}

	Logger.Infof("oDB setup completed successfully")

	// Configure the transport layer
	s.registerTransportHandler()

	return nil
}

// Serve starts the RPC server
// This function will also initialize the server plus its databases and
// start the transport layer
func (s *rpcServer) Serve() error {
	err := s.init()
	if err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}

// Close shuts down every database the server has opened.
func (s *rpcServer) Close() error {
	if s.factory == nil {
		return nil
	}
	return s.factory.Close()
}

// waitFor awaits a promise with a fresh timeout context.
func waitFor[T any](p *promise.Promise[T], timeout time.Duration) (T, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return p.Await(ctx)
}
