package httputils

import (
	"net/http"

	"github.com/nvellon/hal"

	"boscoin.io/ballot/lib/common"
)

type HALResource interface {
	Resource() *hal.Resource
}

// WriteJSON writes the value v to the http response as json encoding
func WriteJSON(w http.ResponseWriter, code int, v interface{}) error {
	if h, ok := v.(HALResource); ok {
		w.Header().Set("Content-Type", "application/hal+json")
		v = h.Resource()
	} else if e, ok := v.(error); ok {
		w.Header().Set("Content-Type", "application/problem+json")
		v = NewErrorProblem(e, code)
	} else if _, ok := v.(Problem); ok {
		w.Header().Set("Content-Type", "application/problem+json")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}

	bs, err := common.JSONMarshalWithoutEscapeHTML(v)
	if err != nil {
		return err
	}

	w.WriteHeader(code)
	_, err = w.Write(bs)

	return err
}

// WriteJSONError writes err as problem with the status of `StatusCode()`.
func WriteJSONError(w http.ResponseWriter, err error) error {
	return WriteJSON(w, StatusCode(err), err)
}
