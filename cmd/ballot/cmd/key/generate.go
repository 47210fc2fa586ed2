package key

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/spf13/cobra"

	cmdcommon "boscoin.io/ballot/cmd/ballot/common"
	"boscoin.io/ballot/lib/common/keypair"
)

var (
	GenerateCmd *cobra.Command

	flagParse  bool
	flagFormat string
)

type keyPair struct {
	Seed    string `json:"seed" yaml:"seed"`
	Address string `json:"address" yaml:"address"`
}

var defaultTemplate = template.Must(template.New("").Parse(`   Secret Seed: {{ .Seed }}
Public Address: {{ .Address }}
`))

func defaultEncode(v interface{}, w io.Writer) error {
	return defaultTemplate.Execute(w, v)
}

func onelineEncode(v interface{}, w io.Writer) error {
	kp := v.(keyPair)
	_, err := fmt.Fprintf(w, "%s %s\n", kp.Seed, kp.Address)
	return err
}

var encoders = map[string]cmdcommon.Encode{
	"default":    defaultEncode,
	"oneline":    onelineEncode,
	"json":       cmdcommon.DefaultEncodes["json"],
	"prettyjson": cmdcommon.DefaultEncodes["prettyjson"],
	"yaml":       cmdcommon.DefaultEncodes["yaml"],
}

func init() {
	GenerateCmd = &cobra.Command{
		Use:   "generate [<secret seed>]",
		Short: "Generate keypair",
		Args:  cobra.MaximumNArgs(1),
		Run: func(c *cobra.Command, args []string) {
			input := strings.TrimSpace(strings.Join(args, " "))
			if flagParse && len(input) < 1 {
				cmdcommon.PrintFlagsError(c, "--parse", errors.New("--parse needs <secret seed>"))
			}

			encode, found := encoders[flagFormat]
			if !found {
				cmdcommon.PrintFlagsError(c, "--format", fmt.Errorf("%q not recognized", flagFormat))
			}

			kp, err := generateKP(input)
			if err != nil {
				cmdcommon.PrintFlagsError(c, "<secret seed>", err)
			}

			if err := encode(keyPair{Seed: kp.Seed(), Address: kp.Address()}, os.Stdout); err != nil {
				cmdcommon.ExitWithError(err)
			}
		},
	}

	GenerateCmd.Flags().BoolVar(&flagParse, "parse", false, "parse secret seed")
	GenerateCmd.Flags().StringVar(&flagFormat, "format", "default", "format, {default, oneline, json, prettyjson, yaml}")
}

// generateKP makes random keypair, or parses the secret seed.
func generateKP(seed string) (*keypair.Full, error) {
	if len(seed) < 1 {
		return keypair.RandomCanFail()
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
