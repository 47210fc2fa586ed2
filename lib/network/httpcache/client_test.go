package httpcache

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var _ Adapter = (*MemCacheAdapter)(nil)
var _ Adapter = (*RedisCacheAdapter)(nil)

func TestMiddleware(t *testing.T) {
	a, err := NewMemCacheAdapter(10)
	require.NoError(t, err)
	a.Set("http://foo?bar=1", &Response{Value: []byte("value 1"), StatusCode: 200}, time.Time{})

	c, err := NewClient(WithAdapter(a))
	require.NoError(t, err)

	var called int
	handler := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called++
		if r.URL.Query().Get("bar") == "404" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "new value:%d", called)
	}))

	serve := func(method, url string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(method, url, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	{ // cached
		w := serve("GET", "http://foo?bar=1")
		require.Equal(t, 200, w.Code)
		require.Equal(t, "value 1", w.Body.String())
		require.Equal(t, 0, called)
	}

	{ // not yet cached, and then cached
		w := serve("GET", "http://foo?bar=2&a=1")
		require.Equal(t, "new value:1", w.Body.String())
		require.Equal(t, "text/plain", w.Header().Get("Content-Type"))

		w = serve("GET", "http://foo?a=1&bar=2")
		require.Equal(t, "new value:1", w.Body.String())
		require.Equal(t, 1, called)
	}

	{ // error response is not cached
		serve("GET", "http://foo?bar=404")
		w := serve("GET", "http://foo?bar=404")
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, 3, called)
	}

	{ // other methods are not cached
		serve("POST", "http://foo?bar=2&a=1")
		w := serve("POST", "http://foo?bar=2&a=1")
		require.Equal(t, "new value:5", w.Body.String())
	}
}

func TestMiddlewareExpiration(t *testing.T) {
	a, err := NewMemCacheAdapter(10)
	require.NoError(t, err)

	c, err := NewClient(WithAdapter(a), WithExpire(time.Millisecond*50))
	require.NoError(t, err)

	var called int
	handler := c.WrapHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called++
	})

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "http://foo", nil))
	}
	require.Equal(t, 1, called)

	time.Sleep(time.Millisecond * 100)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "http://foo", nil))
	require.Equal(t, 2, called)
}

func TestNewClientWithoutAdapter(t *testing.T) {
	_, err := NewClient()
	require.Error(t, err)
}

func TestNewAdapter(t *testing.T) {
	{
		a, err := NewAdapter("memory://")
		require.NoError(t, err)
		require.IsType(t, &MemCacheAdapter{}, a)
	}

	{
		_, err := NewAdapter("memory://?size=0")
		require.Error(t, err)
	}

	{
		a, err := NewAdapter("redis://127.0.0.1:6379,127.0.0.1:6380")
		require.NoError(t, err)
		require.IsType(t, &RedisCacheAdapter{}, a)
		a.(*RedisCacheAdapter).Close()
	}

	{
		_, err := NewAdapter("redis://")
		require.Error(t, err)
	}

	{
		_, err := NewAdapter("findme://")
		require.Error(t, err)
	}
}

func TestMemCacheAdapter(t *testing.T) {
	a, err := NewMemCacheAdapter(1)
	require.NoError(t, err)

	resp := &Response{Value: []byte("hello"), StatusCode: 200}
	a.Set("key", resp, time.Time{})

	cached, ok := a.Get("key")
	require.True(t, ok)
	require.Equal(t, resp, cached)

	// size is 1
	a.Set("another", resp, time.Time{})
	_, ok = a.Get("key")
	require.False(t, ok)

	a.Remove("another")
	_, ok = a.Get("another")
	require.False(t, ok)
}
