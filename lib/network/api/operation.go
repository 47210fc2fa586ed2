package api

import (
	"io/ioutil"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"boscoin.io/ballot/lib/common/observer"
	"boscoin.io/ballot/lib/errors"
	"boscoin.io/ballot/lib/journal"
	"boscoin.io/ballot/lib/network/api/resource"
	"boscoin.io/ballot/lib/network/httputils"
	"boscoin.io/ballot/lib/operation"
)

// MaxOperationBodySize limits the body of `POST /operations`.
const MaxOperationBodySize int64 = 8 * 1024

func (api NetworkHandlerAPI) GetOperationsHandler(w http.ResponseWriter, r *http.Request) {
	p, err := httputils.NewPageQuery(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	records, err := api.runner.Records(p.Cursor(), p.Limit(), p.Reverse())
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if httputils.IsEventStream(r) {
		event := observer.NewEvent(observer.ResourceOperation, observer.ConditionAll, "").String()
		es := NewDefaultEventStream(w, r)
		run := es.Start(observer.OperationObserver, event)
		for i := range records {
			es.Render(&records[i])
		}
		run()
		return
	}

	var list []resource.Resource
	for _, record := range records {
		list = append(list, resource.NewRecord(record))
	}

	var prev, next string
	if len(records) > 0 {
		prev = p.PrevLink(records[0].Seq)
		next = p.NextLink(records[len(records)-1].Seq)
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewResourceList(list, p.SelfLink(), next, prev))
}

func (api NetworkHandlerAPI) GetOperationHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	seq, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("id", id))
		return
	}

	record, err := api.runner.Record(seq)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewRecord(record))
}

// PostOperationHandler submits the signed operation in the body. The
// journaled record is returned.
func (api NetworkHandlerAPI) PostOperationHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mediaType != "application/json" {
		httputils.WriteJSONError(w, errors.ContentTypeNotJSON)
		return
	}

	body, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, MaxOperationBodySize))
	if err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("error", err.Error()))
		return
	}

	op, err := operation.NewOperationFromJSON(body)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	var record journal.Record
	if record, err = api.runner.Submit(op); err != nil {
		log.Debug("operation rejected", "hash", op.GetHash(), "error", err)
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewRecord(record))
}
