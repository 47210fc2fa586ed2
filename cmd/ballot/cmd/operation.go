package cmd

import (
	"errors"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/ballot/cmd/ballot/common"
	"boscoin.io/ballot/lib/client"
	"boscoin.io/ballot/lib/common/keypair"
	"boscoin.io/ballot/lib/operation"
)

type makeOperation func(source string) (operation.Operation, error)

func init() {
	giveRightCmd := &cobra.Command{
		Use:   "give-right <voter address>",
		Short: "Give the right to vote; only chairperson can",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			runSubmit(c, func(source string) (operation.Operation, error) {
				return operation.NewGiveRightToVote(source, args[0])
			})
		},
	}

	delegateCmd := &cobra.Command{
		Use:   "delegate <voter address>",
		Short: "Delegate the vote to another voter",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			runSubmit(c, func(source string) (operation.Operation, error) {
				return operation.NewDelegate(source, args[0])
			})
		},
	}

	voteCmd := &cobra.Command{
		Use:   "vote <proposal index>",
		Short: "Vote to the proposal",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			index, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<proposal index>", err)
			}

			runSubmit(c, func(source string) (operation.Operation, error) {
				return operation.NewVote(source, index)
			})
		},
	}

	for _, c := range []*cobra.Command{giveRightCmd, delegateCmd, voteCmd} {
		addSignerFlags(c.Flags())
		rootCmd.AddCommand(c)
	}
}

func parseSecretSeed(seed string) (*keypair.Full, error) {
	if len(seed) < 1 {
		return nil, errors.New("--secret-seed must be given")
	}

	kp, err := keypair.Parse(seed)
	if err != nil {
		return nil, err
	}

	full, ok := kp.(*keypair.Full)
	if !ok {
		return nil, errors.New("not secret seed")
	}

	return full, nil
}

// submit signs the operation made by makeOp and posts it to the node of
// endpoint. Without networkID, the network id of node is used.
func submit(endpoint, seed, networkID string, makeOp makeOperation) (record client.Record, flagName string, err error) {
	var kp *keypair.Full
	if kp, err = parseSecretSeed(seed); err != nil {
		flagName = "--secret-seed"
		return
	}

	var op operation.Operation
	if op, err = makeOp(kp.Address()); err != nil {
		flagName = "<argument>"
		return
	}

	var c *client.Client
	if c, err = client.NewClient(endpoint); err != nil {
		flagName = "--endpoint"
		return
	}
	defer c.Close()

	if len(networkID) < 1 {
		var b client.Ballot
		if b, err = c.LoadBallot(); err != nil {
			return
		}
		networkID = b.NetworkID
	}

	op.Sign(kp, []byte(networkID))

	record, err = c.SubmitOperation(op)
	return
}

func runSubmit(c *cobra.Command, makeOp makeOperation) {
	encode, found := cmdcommon.GetEncode(flagFormat)
	if !found {
		cmdcommon.PrintFlagsError(c, "--format", errors.New("unknown format"))
	}

	record, flagName, err := submit(flagEndpointString, flagSecretSeed, flagNetworkID, makeOp)
	if len(flagName) > 0 {
		cmdcommon.PrintFlagsError(c, flagName, err)
	} else if err != nil {
		cmdcommon.ExitWithError(err)
	}

	if err := encode(record, os.Stdout); err != nil {
		cmdcommon.ExitWithError(err)
	}
}
