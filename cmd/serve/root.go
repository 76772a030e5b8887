package serve

import (
	"fmt"
	"strings"

	cmdUtil "github.com/ValentinKolb/oDB/cmd/util"
	"github.com/ValentinKolb/oDB/rpc/common"
	"github.com/ValentinKolb/oDB/rpc/serializer"
	"github.com/ValentinKolb/oDB/rpc/server"
	"github.com/ValentinKolb/oDB/rpc/transport"
	"github.com/ValentinKolb/oDB/rpc/transport/http"
	"github.com/ValentinKolb/oDB/rpc/transport/tcp"
	"github.com/ValentinKolb/oDB/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the oDB server",
		Long:    `Start the oDB server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is ODB_<flag> (e.g. ODB_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "databases"
	ServeCmd.PersistentFlags().String(key, "default=memory", cmdUtil.WrapString("Comma-separated list of databases to serve. Format: NAME=ENGINE where ENGINE is one of: memory, bolt"))

	key = "key-path"
	ServeCmd.PersistentFlags().String(key, "id", cmdUtil.WrapString("The record field used as key for newly created object stores"))

	key = "data-dir"
	ServeCmd.PersistentFlags().String(key, "data", cmdUtil.WrapString("DataDir is the directory used for storing the database files of persistent engines"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("Timeout in seconds for a single operation"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen (e.g. localhost:8080, /tmp/odb.sock, ...)"))

	key = "max-workers-per-conn"
	ServeCmd.PersistentFlags().Int(key, 16, cmdUtil.WrapString("The maximum number of concurrently handled requests per connection (ignored for http)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// parse databases
	databasesConfig := viper.GetString("databases")
	serveCmdConfig.Databases = []common.ServerDatabase{}
	for _, databaseConfig := range strings.Split(databasesConfig, ",") {
		parts := strings.Split(databaseConfig, "=")
		if len(parts) != 2 {
			return fmt.Errorf("invalid database format: %s (expected NAME=ENGINE)", databaseConfig)
		}

		// Parse database name
		name := strings.TrimSpace(parts[0])
		if name == "" {
			return fmt.Errorf("invalid database name in: %s", databaseConfig)
		}

		// Parse engine type
		engineType := strings.TrimSpace(parts[1])
		var serverEngineType common.ServerEngineType

		switch engineType {
		case "memory":
			serverEngineType = common.EngineTypeMemory
		case "bolt":
			serverEngineType = common.EngineTypeBolt
		default:
			return fmt.Errorf("invalid engine type: %s (expected one of: memory, bolt)", engineType)
		}

		serveCmdConfig.Databases = append(serveCmdConfig.Databases, common.ServerDatabase{
			Name:   name,
			Engine: serverEngineType,
		})
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.KeyPath = viper.GetString("key-path")
	serveCmdConfig.DataDir = viper.GetString("data-dir")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.MaxWorkersPerConn = viper.GetInt("max-workers-per-conn")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	return nil
}

// run starts the oDB server
func run(_ *cobra.Command, _ []string) error {

	// parse the serializer
	var s serializer.IRPCSerializer
	switch viper.GetString("serializer") {
	case "json":
		s = serializer.NewJSONSerializer()
	case "gob":
		s = serializer.NewGOBSerializer()
	case "binary":
		s = serializer.NewBinarySerializer()
	default:
		return fmt.Errorf("invalid serializer %s", viper.GetString("serializer"))
	}

	// Parse the transport
	var t transport.IRPCServerTransport
	switch viper.GetString("transport") {
	case "http":
		t = http.NewHttpServerTransport()
	case "tcp":
		t = tcp.NewTCPDefaultServerTransport()
	case "unix":
		t = unix.NewUnixDefaultServerTransport()
	default:
		return fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		t,
		s,
	)

	return serv.Serve()
}

// initConfig reads in serveCmdConfig file and ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("odb")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
