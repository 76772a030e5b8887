package db

import (
	"github.com/ValentinKolb/oDB/cmd/util"
	"github.com/ValentinKolb/oDB/lib/store"
	"github.com/ValentinKolb/oDB/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcHandle store.IHandle

	// DatabaseCommands represents the db command group
	DatabaseCommands = &cobra.Command{
		Use:               "db",
		Short:             "Perform object store operations",
		PersistentPreRunE: setupDBClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the db command
	util.SetupRPCClientFlags(DatabaseCommands)

	// The database every subcommand addresses
	DatabaseCommands.PersistentFlags().String("database", "default", util.WrapString("Name of the database to connect to"))

	// Add subcommands
	DatabaseCommands.AddCommand(getCmd)
	DatabaseCommands.AddCommand(getAllCmd)
	DatabaseCommands.AddCommand(putCmd)
	DatabaseCommands.AddCommand(addCmd)
	DatabaseCommands.AddCommand(delCmd)
	DatabaseCommands.AddCommand(clearCmd)
	DatabaseCommands.AddCommand(countCmd)
	DatabaseCommands.AddCommand(perfTestCmd)
}

// setupDBClient initializes the RPC handle client
func setupDBClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()
	database := util.GetDatabase()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the handle client
	rpcHandle, err = client.NewRPCHandle(
		database,
		*config,
		t,
		s,
	)

	return err
}
