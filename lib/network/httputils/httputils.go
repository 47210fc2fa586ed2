package httputils

import (
	"net/http"

	"boscoin.io/ballot/lib/errors"
)

// IsEventStream checks request header accept is text/event-stream
func IsEventStream(r *http.Request) bool {
	return r.Header.Get("Accept") == "text/event-stream"
}

// ErrorsToStatus maps `errors.Error.Code` to http status. Unknown codes are
// 400.
var ErrorsToStatus = map[uint]int{
	errors.Unauthorized.Code:              http.StatusForbidden,
	errors.OperationAlreadyProcessed.Code: http.StatusConflict,

	errors.StorageRecordDoesNotExist.Code:  http.StatusNotFound,
	errors.StorageRecordAlreadyExists.Code: http.StatusConflict,
	errors.StorageCoreError.Code:           http.StatusInternalServerError,
	errors.GenesisDoesNotExist.Code:        http.StatusNotFound,
	errors.GenesisAlreadyExists.Code:       http.StatusConflict,
	errors.JournalCorrupted.Code:           http.StatusInternalServerError,

	errors.ContentTypeNotJSON.Code: http.StatusUnsupportedMediaType,
}

func StatusCode(err error) int {
	if e, ok := err.(*errors.Error); ok {
		if status, found := ErrorsToStatus[e.Code]; found {
			return status
		}
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
