package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"boscoin.io/ballot/lib/common"
)

const defaultEndpoint string = "http://127.0.0.1:12345"

var (
	flagNetworkID           string = common.GetENVValue("BALLOT_NETWORK_ID", "")
	flagStorageConfigString string = common.GetENVValue("BALLOT_STORAGE", "")
	flagEndpointString      string = common.GetENVValue("BALLOT_ENDPOINT", defaultEndpoint)
	flagSecretSeed          string = common.GetENVValue("BALLOT_SECRET_SEED", "")
	flagFormat              string = common.GetENVValue("BALLOT_FORMAT", "prettyjson")
)

// defaultStorageConfigString is `file://<current directory>/db`.
func defaultStorageConfigString() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if dir, err = filepath.Abs(dir); err != nil {
		return "", err
	}

	return fmt.Sprintf("file://%s", filepath.Join(dir, "db")), nil
}

func addStorageFlags(fs *pflag.FlagSet) {
	fs.StringVar(&flagNetworkID, "network-id", flagNetworkID, "network id")
	fs.StringVar(&flagStorageConfigString, "storage", flagStorageConfigString, "storage uri, 'memory://' or 'file:///<path>' (default: 'file://<current directory>/db')")
}

func addClientFlags(fs *pflag.FlagSet) {
	fs.StringVar(&flagEndpointString, "endpoint", flagEndpointString, "endpoint of node")
	fs.StringVar(&flagFormat, "format", flagFormat, "output format, {json, prettyjson, yaml}")
}

func addSignerFlags(fs *pflag.FlagSet) {
	addClientFlags(fs)
	fs.StringVar(&flagSecretSeed, "secret-seed", flagSecretSeed, "secret seed of the caller")
	fs.StringVar(&flagNetworkID, "network-id", flagNetworkID, "network id; if empty, it is loaded from node")
}
