package network

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	logging "github.com/inconshreveable/log15"

	"boscoin.io/ballot/lib/common"
)

const HeaderRequestID = "X-Request-Id"

// HTTPErrorLog15Writer sends the error log of `http.Server` to log15.
type HTTPErrorLog15Writer struct {
	l logging.Logger
}

func (w HTTPErrorLog15Writer) Write(b []byte) (int, error) {
	w.l.Error("error", "error", string(b))
	return len(b), nil
}

// ResponseLogWriter keeps the status and size of the response. It is also
// `http.Flusher` for the event stream.
type ResponseLogWriter struct {
	w      http.ResponseWriter
	status int
	size   int
}

func NewResponseLogWriter(w http.ResponseWriter) *ResponseLogWriter {
	return &ResponseLogWriter{w: w}
}

func (l *ResponseLogWriter) Header() http.Header {
	return l.w.Header()
}

func (l *ResponseLogWriter) Write(b []byte) (int, error) {
	if l.status == 0 {
		l.status = http.StatusOK
	}
	size, err := l.w.Write(b)
	l.size += size
	return size, err
}

func (l *ResponseLogWriter) WriteHeader(s int) {
	l.w.WriteHeader(s)
	l.status = s
}

func (l *ResponseLogWriter) Status() int {
	if l.status == 0 {
		return http.StatusOK
	}
	return l.status
}

func (l *ResponseLogWriter) Size() int {
	return l.size
}

func (l *ResponseLogWriter) Flush() {
	if f, ok := l.w.(http.Flusher); ok {
		f.Flush()
	}
}

var HeaderKeyFiltered []string = []string{
	"Content-Length",
	"Content-Type",
	"Accept",
	"Accept-Encoding",
	"User-Agent",
}

// RequestID returns the `X-Request-Id` of the request if it is valid uuid,
// or the new one.
func RequestID(r *http.Request) string {
	if id := r.Header.Get(HeaderRequestID); len(id) > 0 {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}

	return common.GenerateUUID()
}

// LogHandler logs in 2 phase, when request received and response sent. This
// was derived from github.com/gorilla/handlers/handlers.go
type LogHandler struct {
	log     logging.Logger
	handler http.Handler
}

func NewLogHandler(l logging.Logger, handler http.Handler) LogHandler {
	return LogHandler{log: l, handler: handler}
}

func (l LogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	uid := RequestID(r)
	w.Header().Set(HeaderRequestID, uid)

	uri := r.RequestURI
	if uri == "" {
		uri = r.URL.RequestURI()
	}

	header := http.Header{}
	for key, value := range r.Header {
		if _, found := common.InStringArray(HeaderKeyFiltered, key); found {
			continue
		}
		header[key] = value
	}

	l.log.Debug(
		"request",
		"content-length", r.ContentLength,
		"content-type", r.Header.Get("Content-Type"),
		"headers", header,
		"host", r.Host,
		"id", uid,
		"method", r.Method,
		"proto", r.Proto,
		"remote", r.RemoteAddr,
		"uri", uri,
		"user-agent", r.UserAgent(),
	)

	writer := NewResponseLogWriter(w)
	l.handler.ServeHTTP(writer, r)

	l.log.Debug(
		"response",
		"id", uid,
		"status", writer.Status(),
		"size", writer.Size(),
		"elapsed", time.Since(started),
	)
}
