package cmd

import (
	"context"
	"errors"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/ballot/cmd/ballot/common"
	"boscoin.io/ballot/lib/client"
	"boscoin.io/ballot/lib/common"
)

type queryFunc func(c *client.Client) (interface{}, error)

var flagStream bool = common.GetENVValue("BALLOT_STREAM", "0") == "1"

var (
	flagLimit   uint64
	flagCursor  uint64
	flagReverse bool
)

func init() {
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show the ballot",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			runQuery(c, func(cl *client.Client) (interface{}, error) {
				return cl.LoadBallot()
			})
		},
	}

	proposalsCmd := &cobra.Command{
		Use:   "proposals [<proposal index>]",
		Short: "Show the proposals",
		Args:  cobra.MaximumNArgs(1),
		Run: func(c *cobra.Command, args []string) {
			if len(args) < 1 {
				runQuery(c, func(cl *client.Client) (interface{}, error) {
					page, err := cl.LoadProposals()
					return page.Embedded.Records, err
				})
				return
			}

			index, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<proposal index>", err)
			}
			runQuery(c, func(cl *client.Client) (interface{}, error) {
				return cl.LoadProposal(index)
			})
		},
	}

	winnerCmd := &cobra.Command{
		Use:   "winner",
		Short: "Show the winning proposal",
		Args:  cobra.NoArgs,
		Run: func(c *cobra.Command, args []string) {
			if flagStream {
				runStreamWinner(c)
				return
			}

			runQuery(c, func(cl *client.Client) (interface{}, error) {
				return cl.LoadWinner()
			})
		},
	}
	winnerCmd.Flags().BoolVar(&flagStream, "stream", flagStream, "keep printing the winner whenever it changes")

	voterCmd := &cobra.Command{
		Use:   "voter <voter address>",
		Short: "Show the voter",
		Args:  cobra.ExactArgs(1),
		Run: func(c *cobra.Command, args []string) {
			runQuery(c, func(cl *client.Client) (interface{}, error) {
				return cl.LoadVoter(args[0])
			})
		},
	}

	operationsCmd := &cobra.Command{
		Use:   "operations [<seq>]",
		Short: "Show the applied operations",
		Args:  cobra.MaximumNArgs(1),
		Run: func(c *cobra.Command, args []string) {
			if len(args) > 0 {
				seq, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					cmdcommon.PrintFlagsError(c, "<seq>", err)
				}
				runQuery(c, func(cl *client.Client) (interface{}, error) {
					return cl.LoadRecord(seq)
				})
				return
			}

			runQuery(c, func(cl *client.Client) (interface{}, error) {
				page, err := cl.LoadRecords(recordsQueries(flagLimit, flagCursor, flagReverse)...)
				return page.Embedded.Records, err
			})
		},
	}
	operationsCmd.Flags().Uint64Var(&flagLimit, "limit", 0, "number of operations")
	operationsCmd.Flags().Uint64Var(&flagCursor, "cursor", 0, "operations after the seq")
	operationsCmd.Flags().BoolVar(&flagReverse, "reverse", false, "from the last operation")

	for _, c := range []*cobra.Command{infoCmd, proposalsCmd, winnerCmd, voterCmd, operationsCmd} {
		addClientFlags(c.Flags())
		rootCmd.AddCommand(c)
	}
}

func recordsQueries(limit, cursor uint64, reverse bool) (queries []client.Q) {
	if limit > 0 {
		queries = append(queries, client.Q{Key: client.QueryLimit, Value: strconv.FormatUint(limit, 10)})
	}
	if cursor > 0 {
		queries = append(queries, client.Q{Key: client.QueryCursor, Value: strconv.FormatUint(cursor, 10)})
	}
	if reverse {
		queries = append(queries, client.Q{Key: client.QueryReverse, Value: "true"})
	}

	return
}

func query(endpoint string, f queryFunc) (interface{}, error) {
	c, err := client.NewClient(endpoint)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	return f(c)
}

func runQuery(c *cobra.Command, f queryFunc) {
	encode, found := cmdcommon.GetEncode(flagFormat)
	if !found {
		cmdcommon.PrintFlagsError(c, "--format", errors.New("unknown format"))
	}

	v, err := query(flagEndpointString, f)
	if err != nil {
		cmdcommon.ExitWithError(err)
	}

	if err := encode(v, os.Stdout); err != nil {
		cmdcommon.ExitWithError(err)
	}
}

func runStreamWinner(c *cobra.Command) {
	encode, found := cmdcommon.GetEncode(flagFormat)
	if !found {
		cmdcommon.PrintFlagsError(c, "--format", errors.New("unknown format"))
	}

	cl, err := client.NewClient(flagEndpointString)
	if err != nil {
		cmdcommon.PrintFlagsError(c, "--endpoint", err)
	}
	defer cl.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		cmdcommon.Interrupt(ctx.Done())
		cancel()
	}()

	err = cl.StreamWinner(ctx, func(w client.Winner) {
		encode(w, os.Stdout)
	})
	cancel()

	if err != nil {
		cmdcommon.ExitWithError(err)
	}
}
