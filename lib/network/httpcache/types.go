// Package httpcache keeps the responses of immutable api resources, like
// the journaled operations.
package httpcache

import (
	"net/http"
	"time"
)

type Adapter interface {
	Get(key string) (*Response, bool)
	Set(key string, response *Response, expiration time.Time)
	Remove(key string)
}

type Response struct {
	Value      []byte
	StatusCode int
	Header     http.Header
	Expiration time.Time
}

// Expired checks the expiration; zero expiration never expires.
func (r Response) Expired() bool {
	return !r.Expiration.IsZero() && !r.Expiration.After(time.Now())
}
