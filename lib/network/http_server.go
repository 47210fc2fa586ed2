package network

import (
	"context"
	stdlog "log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http2"
)

type HTTPServerConfig struct {
	Endpoint *url.URL

	ReadTimeout,
	ReadHeaderTimeout,
	WriteTimeout,
	IdleTimeout time.Duration

	TLSCertFile,
	TLSKeyFile string
}

// HTTPServer serves the handler thru HTTP2; without tls certificates it
// falls back to HTTP/1.1.
type HTTPServer struct {
	config HTTPServerConfig
	server *http.Server
}

func NewHTTPServer(config HTTPServerConfig, handler http.Handler) (*HTTPServer, error) {
	server := &http.Server{
		Addr:              config.Endpoint.Host,
		Handler:           NewLogHandler(log, handler),
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		WriteTimeout:      config.WriteTimeout,
		ErrorLog:          stdlog.New(HTTPErrorLog15Writer{log}, "", 0),
	}
	server.SetKeepAlivesEnabled(true)

	if err := http2.ConfigureServer(server, &http2.Server{IdleTimeout: config.IdleTimeout}); err != nil {
		return nil, err
	}

	return &HTTPServer{config: config, server: server}, nil
}

func (s *HTTPServer) IsSecure() bool {
	return s.config.Endpoint.Scheme == "https"
}

// Start blocks until the server is stopped.
func (s *HTTPServer) Start() (err error) {
	log.Info("start http server", "endpoint", s.config.Endpoint.String())

	if s.IsSecure() {
		err = s.server.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
	} else {
		err = s.server.ListenAndServe()
	}

	if err == http.ErrServerClosed {
		return nil
	}

	return err
}

func (s *HTTPServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}
