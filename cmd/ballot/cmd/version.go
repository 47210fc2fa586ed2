package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/ballot/cmd/ballot/common"
	"boscoin.io/ballot/lib/version"
)

func init() {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(c *cobra.Command, args []string) {
			format, _ := c.Flags().GetString("format")
			if len(format) < 1 {
				fmt.Println(version.ToDetailVersion())
				return
			}

			encode, found := cmdcommon.DefaultEncodes[format]
			if !found {
				cmdcommon.PrintFlagsError(c, "--format", fmt.Errorf("%q not recognized", format))
			}
			encode(version.Get(), os.Stdout)
		},
	}
	versionCmd.Flags().String("format", "", "output format, {json, prettyjson, yaml}")

	rootCmd.AddCommand(versionCmd)
}
