package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	logging "github.com/inconshreveable/log15"
	"github.com/mattn/go-isatty"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"

	cmdcommon "boscoin.io/ballot/cmd/ballot/common"
	"boscoin.io/ballot/lib/ballot"
	"boscoin.io/ballot/lib/common"
	"boscoin.io/ballot/lib/journal"
	"boscoin.io/ballot/lib/metrics"
	"boscoin.io/ballot/lib/network"
	"boscoin.io/ballot/lib/network/api"
	"boscoin.io/ballot/lib/network/api/resource"
	"boscoin.io/ballot/lib/network/httpcache"
	"boscoin.io/ballot/lib/network/jsonrpc"
	"boscoin.io/ballot/lib/runner"
	"boscoin.io/ballot/lib/storage"
	"boscoin.io/ballot/lib/version"
)

const (
	defaultBindURL  string      = "http://0.0.0.0:12345"
	defaultLogLevel logging.Lvl = logging.LvlInfo

	MetricsHandlerPattern = "/metrics"
	JSONRPCHandlerPattern = "/jsonrpc"
)

var (
	flagBindURL     string = common.GetENVValue("BALLOT_BIND", defaultBindURL)
	flagLogLevel    string = common.GetENVValue("BALLOT_LOG_LEVEL", defaultLogLevel.String())
	flagLogFormat   string = common.GetENVValue("BALLOT_LOG_FORMAT", "")
	flagLogOutput   string = common.GetENVValue("BALLOT_LOG_OUTPUT", "")
	flagVerbose     bool   = common.GetENVValue("BALLOT_VERBOSE", "0") == "1"
	flagTLSCertFile string = common.GetENVValue("BALLOT_TLS_CERT", "ballot.crt")
	flagTLSKeyFile  string = common.GetENVValue("BALLOT_TLS_KEY", "ballot.key")
	flagHTTPCache   string = common.GetENVValue("BALLOT_HTTP_CACHE", "memory://")
	flagRateLimit   string = common.GetENVValue("BALLOT_RATE_LIMIT", "")
	flagCORSOrigins cmdcommon.ListFlags
)

var (
	nodeCmd *cobra.Command

	bindEndpoint  *url.URL
	storageConfig *storage.Config
	logLevel      logging.Lvl
	logHandler    logging.Handler
	log           logging.Logger = logging.New("module", "main")
)

func init() {
	nodeCmd = &cobra.Command{
		Use:   "node",
		Short: "Run ballot node",
		Run: func(c *cobra.Command, args []string) {
			if flagName, err := parseFlagsNode(); err != nil {
				cmdcommon.PrintFlagsError(c, flagName, err)
			}

			if err := runNode(); err != nil {
				cmdcommon.ExitWithError(err)
			}
		},
	}

	addStorageFlags(nodeCmd.Flags())
	nodeCmd.Flags().StringVar(&flagBindURL, "bind", flagBindURL, "bind to listen on, 'http://0.0.0.0:12345' or 'https://0.0.0.0:12345'")
	nodeCmd.Flags().StringVar(&flagLogLevel, "log-level", flagLogLevel, "log level, {crit, error, warn, info, debug}")
	nodeCmd.Flags().StringVar(&flagLogFormat, "log-format", flagLogFormat, "log format, {terminal, json}; without it, json unless stdout is terminal")
	nodeCmd.Flags().StringVar(&flagLogOutput, "log-output", flagLogOutput, "set log output file")
	nodeCmd.Flags().BoolVar(&flagVerbose, "verbose", flagVerbose, "verbose")
	nodeCmd.Flags().StringVar(&flagTLSCertFile, "tls-cert", flagTLSCertFile, "tls certificate file")
	nodeCmd.Flags().StringVar(&flagTLSKeyFile, "tls-key", flagTLSKeyFile, "tls key file")
	nodeCmd.Flags().StringVar(&flagHTTPCache, "http-cache", flagHTTPCache, "cache of operation records, 'memory://?size=1000' or 'redis://<host:port>,...'; empty to disable")
	nodeCmd.Flags().StringVar(&flagRateLimit, "rate-limit", flagRateLimit, "rate limit of posting operations by client, '<limit>-<S|M|H>'; empty to disable")
	nodeCmd.Flags().Var(&flagCORSOrigins, "cors-origin", "allowed cors origin; can be given multiple times")

	rootCmd.AddCommand(nodeCmd)
}

func parseBindURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("unsupported scheme, %q", u.Scheme)
	}

	if len(u.Port()) < 1 {
		return nil, errors.New("port must be given")
	}

	return u, nil
}

func parseLogging(level, format, output string) (lvl logging.Lvl, handler logging.Handler, flagName string, err error) {
	if lvl, err = logging.LvlFromString(level); err != nil {
		flagName = "--log-level"
		return
	}

	var formatter logging.Format
	switch format {
	case "":
		if isatty.IsTerminal(os.Stdout.Fd()) {
			formatter = logging.TerminalFormat()
		} else {
			formatter = common.JsonFormatEx(false, true)
		}
	case "terminal":
		formatter = logging.TerminalFormat()
	case "json":
		formatter = common.JsonFormatEx(false, true)
	default:
		flagName = "--log-format"
		err = fmt.Errorf("unknown log format, %q", format)
		return
	}

	if len(output) < 1 {
		handler = logging.StreamHandler(os.Stdout, formatter)
		return
	}

	if handler, err = logging.FileHandler(output, common.JsonFormatEx(false, true)); err != nil {
		flagName = "--log-output"
	}

	return
}

func setLogging(level logging.Lvl, handler logging.Handler) {
	log.SetHandler(logging.LvlFilterHandler(level, handler))

	common.SetLogging(level, handler)
	ballot.SetLogging(level, handler)
	journal.SetLogging(level, handler)
	runner.SetLogging(level, handler)
	network.SetLogging(level, handler)
	api.SetLogging(level, handler)
	httpcache.SetLogging(level, handler)
}

func parseFlagsNode() (flagName string, err error) {
	if bindEndpoint, err = parseBindURL(flagBindURL); err != nil {
		return "--bind", err
	}

	if bindEndpoint.Scheme == "https" {
		if _, err = os.Stat(flagTLSCertFile); os.IsNotExist(err) {
			return "--tls-cert", err
		}
		if _, err = os.Stat(flagTLSKeyFile); os.IsNotExist(err) {
			return "--tls-key", err
		}
	}

	if len(flagStorageConfigString) < 1 {
		if flagStorageConfigString, err = defaultStorageConfigString(); err != nil {
			return "--storage", err
		}
	}
	if storageConfig, err = storage.NewConfigFromString(flagStorageConfigString); err != nil {
		return "--storage", err
	}

	if logLevel, logHandler, flagName, err = parseLogging(flagLogLevel, flagLogFormat, flagLogOutput); err != nil {
		return
	}
	setLogging(logLevel, logHandler)

	log.Info("Starting ballot node", "version", version.Version, "git", version.GitCommit)

	// print flags
	parsedFlags := []interface{}{}
	parsedFlags = append(parsedFlags, "\n\tnetwork-id", flagNetworkID)
	parsedFlags = append(parsedFlags, "\n\tbind", flagBindURL)
	parsedFlags = append(parsedFlags, "\n\tstorage", storageConfig.String())
	parsedFlags = append(parsedFlags, "\n\ttls-cert", flagTLSCertFile)
	parsedFlags = append(parsedFlags, "\n\ttls-key", flagTLSKeyFile)
	parsedFlags = append(parsedFlags, "\n\tlog-level", flagLogLevel)
	parsedFlags = append(parsedFlags, "\n\tlog-format", flagLogFormat)
	parsedFlags = append(parsedFlags, "\n\tlog-output", flagLogOutput)
	parsedFlags = append(parsedFlags, "\n\thttp-cache", flagHTTPCache)
	parsedFlags = append(parsedFlags, "\n\trate-limit", flagRateLimit)
	parsedFlags = append(parsedFlags, "\n\tcors-origin", flagCORSOrigins.String())

	log.Debug("parsed flags:", parsedFlags...)

	if flagVerbose {
		http2.VerboseLogs = true
	}

	return "", nil
}

type nodeOptions struct {
	HTTPCache   string
	RateLimit   string
	CORSOrigins []string
}

// newNodeHandler makes the http handler of node; the returned closer
// releases the cache adapter.
func newNodeHandler(r *runner.BallotRunner, options nodeOptions) (handler http.Handler, closer func(), flagName string, err error) {
	closer = func() {}

	router := mux.NewRouter()
	router.Use(network.RecoverMiddleware(logLevel == logging.LvlDebug))
	router.Use(network.MetricsMiddleware(metrics.API))

	var middlewares api.Middlewares

	if len(options.HTTPCache) > 0 {
		var adapter httpcache.Adapter
		if adapter, err = httpcache.NewAdapter(options.HTTPCache); err != nil {
			flagName = "--http-cache"
			return
		}
		if c, ok := adapter.(io.Closer); ok {
			closer = func() { c.Close() }
		}

		var cache *httpcache.Client
		cache, err = httpcache.NewClient(
			httpcache.WithAdapter(adapter),
			httpcache.WithStatusCode(http.StatusNotFound, time.Second),
			httpcache.WithLogger(log),
		)
		if err != nil {
			flagName = "--http-cache"
			return
		}
		middlewares.Cache = cache.Middleware
	}

	if len(options.RateLimit) > 0 {
		if middlewares.PostOperation, err = network.RateLimitMiddleware(options.RateLimit); err != nil {
			flagName = "--rate-limit"
			return
		}
	}

	api.NewNetworkHandlerAPI(r, resource.APIPrefix).RegisterHandlers(router, middlewares)

	router.Handle(MetricsHandlerPattern, promhttp.Handler()).Methods("GET")
	router.Handle(JSONRPCHandlerPattern, jsonrpc.NewJSONRPCServer(r)).Methods("POST", "OPTIONS")

	handler = router
	if len(options.CORSOrigins) > 0 {
		handler = handlers.CORS(
			handlers.AllowedOrigins(options.CORSOrigins),
			handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Accept", "Content-Type", "X-Request-Id"}),
		)(router)
	}

	return
}

// openRunner opens the ballot of storage. Without network id, the one of
// genesis is used.
func openRunner(config *storage.Config, networkID string) (*runner.BallotRunner, error) {
	st, err := storage.NewStorage(config)
	if err != nil {
		return nil, err
	}

	if len(networkID) < 1 {
		genesis, err := journal.GetGenesis(st)
		if err != nil {
			st.Close()
			return nil, err
		}
		networkID = genesis.NetworkID
	}

	r, err := runner.NewBallotRunner([]byte(networkID), st)
	if err != nil {
		st.Close()
		return nil, err
	}

	return r, nil
}

// openNodeRunner prepares the prometheus metrics before the ballot is
// loaded, so the loaded ballot is reported.
func openNodeRunner(config *storage.Config, networkID string) (*runner.BallotRunner, error) {
	metrics.InitPrometheusMetrics()
	metrics.SetVersion()

	return openRunner(config, networkID)
}

func runNode() error {
	r, err := openNodeRunner(storageConfig, flagNetworkID)
	if err != nil {
		log.Crit("failed to open ballot", "error", err)
		return err
	}
	defer r.Storage().Close()

	handler, closer, flagName, err := newNodeHandler(r, nodeOptions{
		HTTPCache:   flagHTTPCache,
		RateLimit:   flagRateLimit,
		CORSOrigins: flagCORSOrigins,
	})
	if err != nil {
		cmdcommon.PrintFlagsError(nodeCmd, flagName, err)
	}
	defer closer()

	server, err := network.NewHTTPServer(network.HTTPServerConfig{
		Endpoint:          bindEndpoint,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
		TLSCertFile:       flagTLSCertFile,
		TLSKeyFile:        flagTLSKeyFile,
	}, handler)
	if err != nil {
		log.Crit("failed to create http server", "error", err)
		return err
	}

	var g run.Group
	{
		g.Add(func() error {
			if err := server.Start(); err != nil {
				log.Crit("failed to start http server", "error", err)
				return err
			}
			return nil
		}, func(error) {
			server.Stop()
		})
	}
	{
		cancel := make(chan struct{})
		g.Add(func() error {
			return cmdcommon.Interrupt(cancel)
		}, func(error) {
			close(cancel)
		})
	}

	err = g.Run()
	log.Info("ballot node stopped", "reason", err)

	return nil
}
