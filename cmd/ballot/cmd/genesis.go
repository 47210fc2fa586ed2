package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/ballot/cmd/ballot/common"
	"boscoin.io/ballot/lib/common/keypair"
	ballotErrors "boscoin.io/ballot/lib/errors"
	"boscoin.io/ballot/lib/journal"
	"boscoin.io/ballot/lib/storage"
)

func init() {
	genesisCmd := &cobra.Command{
		Use:   "genesis <chairperson address> <proposal name> [<proposal name>...]",
		Short: "Create new ballot",
		Args:  cobra.MinimumNArgs(2),
		Run: func(c *cobra.Command, args []string) {
			flagName, err := MakeGenesis(args[0], args[1:], flagNetworkID, flagStorageConfigString)
			if len(flagName) != 0 || err != nil {
				cmdcommon.PrintFlagsError(c, flagName, err)
			}

			fmt.Println("successfully created genesis")
		},
	}

	addStorageFlags(genesisCmd.Flags())

	rootCmd.AddCommand(genesisCmd)
}

// MakeGenesis writes the genesis of new ballot into the storage. If
// failed, the name of the wrong flag or argument is returned with the
// error.
func MakeGenesis(chairperson string, proposals []string, networkID, storageURI string) (string, error) {
	if !keypair.IsValidAddress(chairperson) {
		return "<chairperson address>", errors.New("not public address")
	}

	if len(networkID) < 1 {
		return "--network-id", errors.New("--network-id must be given")
	}

	if len(storageURI) < 1 {
		var err error
		if storageURI, err = defaultStorageConfigString(); err != nil {
			return "--storage", err
		}
	}

	storageConfig, err := storage.NewConfigFromString(storageURI)
	if err != nil {
		return "--storage", err
	}

	st, err := storage.NewStorage(storageConfig)
	if err != nil {
		return "--storage", fmt.Errorf("failed to initialize storage: %v", err)
	}
	defer st.Close()

	if err = journal.SaveGenesis(st, journal.NewGenesis(chairperson, proposals, []byte(networkID))); err != nil {
		if ballotErrors.Is(err, ballotErrors.GenesisAlreadyExists) {
			return "--storage", err
		}
		return "<proposal name>", err
	}

	return "", nil
}
