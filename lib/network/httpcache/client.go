package httpcache

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"time"

	logging "github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"boscoin.io/ballot/lib/common"
)

// Client serves the cached response of the request if it exists, or
// caches the response of the wrapped handler.
type Client struct {
	adapter     Adapter
	ttl         time.Duration
	methods     map[string]bool
	statusCodes map[int]time.Duration
	logger      logging.Logger
}

type ClientOption func(c *Client) error

func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		methods:     map[string]bool{"GET": true},
		statusCodes: map[int]time.Duration{},
		logger:      common.NopLogger(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.adapter == nil {
		return nil, errors.New("cache client adapter is nil")
	}

	return c, nil
}

func WithAdapter(a Adapter) ClientOption {
	return func(c *Client) error {
		c.adapter = a
		return nil
	}
}

func WithExpire(ttl time.Duration) ClientOption {
	return func(c *Client) error {
		c.ttl = ttl
		return nil
	}
}

// WithStatusCode caches the response of code with ttl. Without it only
// the responses under 400 are cached.
func WithStatusCode(code int, ttl time.Duration) ClientOption {
	return func(c *Client) error {
		c.statusCodes[code] = ttl
		return nil
	}
}

func WithLogger(logger logging.Logger) ClientOption {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

func (c *Client) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !c.methods[r.Method] {
			next.ServeHTTP(w, r)
			return
		}
		c.serve(next, w, r)
	})
}

func (c *Client) WrapHandlerFunc(handlerFunc http.HandlerFunc) http.HandlerFunc {
	return c.Middleware(handlerFunc).ServeHTTP
}

func (c *Client) serve(next http.Handler, w http.ResponseWriter, r *http.Request) {
	key := cacheKey(r.URL)

	if resp, ok := c.adapter.Get(key); ok {
		if !resp.Expired() {
			c.logger.Debug("cache hit", "key", key)
			writeResponse(w, resp)
			return
		}
		c.adapter.Remove(key)
	}

	rec := httptest.NewRecorder()
	next.ServeHTTP(rec, r)

	result := rec.Result()
	resp := &Response{
		Value:      rec.Body.Bytes(),
		StatusCode: result.StatusCode,
		Header:     result.Header,
	}

	if expiration, ok := c.expiration(resp.StatusCode); ok {
		resp.Expiration = expiration
		c.adapter.Set(key, resp, expiration)
		c.logger.Debug("cached", "key", key, "status", resp.StatusCode, "expiration", expiration)
	}

	writeResponse(w, resp)
}

func (c *Client) expiration(code int) (time.Time, bool) {
	if ttl, ok := c.statusCodes[code]; ok {
		return expiration(ttl), true
	} else if code < 400 {
		return expiration(c.ttl), true
	}

	return time.Time{}, false
}

func expiration(ttl time.Duration) time.Time {
	if ttl == 0 {
		return time.Time{}
	}

	return time.Now().Add(ttl)
}

func writeResponse(w http.ResponseWriter, resp *Response) {
	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(resp.StatusCode)
	w.Write(resp.Value)
}

// cacheKey sorts the query values, so the same query in different order
// shares the cache.
func cacheKey(u *url.URL) string {
	params := u.Query()
	for _, p := range params {
		sort.Strings(p)
	}

	k := *u
	k.RawQuery = params.Encode()

	return k.String()
}
