package network

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"
	"github.com/ulule/limiter"
	"github.com/ulule/limiter/drivers/middleware/stdlib"
	"github.com/ulule/limiter/drivers/store/memory"

	"boscoin.io/ballot/lib/metrics"
	"boscoin.io/ballot/lib/network/httputils"
)

func RecoverMiddleware(printStack bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = fmt.Errorf("panic: %v", r)
					}
					httputils.WriteJSONError(w, err)
					log.Error("recover an panic", "error", err)
					if printStack {
						debug.PrintStack()
					}
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// MetricsMiddleware records the requests by the path template of the
// matched route.
func MetricsMiddleware(m *metrics.APIMetrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()

			endpoint := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tmpl, err := route.GetPathTemplate(); err == nil {
					endpoint = tmpl
				}
			}

			writer := NewResponseLogWriter(w)
			next.ServeHTTP(writer, r)

			m.AddRequest(endpoint, r.Method, writer.Status(), time.Since(started))
		})
	}
}

// RateLimitMiddleware limits the requests by the client ip. rate is
// formatted like "100-S" or "1000-H".
func RateLimitMiddleware(rate string) (mux.MiddlewareFunc, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}

	middleware := stdlib.NewMiddleware(limiter.New(memory.NewStore(), parsed))

	return middleware.Handler, nil
}
