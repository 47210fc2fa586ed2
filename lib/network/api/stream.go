package api

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"sync"

	observable "github.com/GianlucaGuarini/go-observable"

	"boscoin.io/ballot/lib/common/observer"
	"boscoin.io/ballot/lib/errors"
	"boscoin.io/ballot/lib/journal"
	"boscoin.io/ballot/lib/network/api/resource"
	"boscoin.io/ballot/lib/network/httputils"
	"boscoin.io/ballot/lib/runner"
)

// DefaultContentType is "application/json"
const DefaultContentType = "application/json"

// EventStream writes one json line for each observed event, and flushes it
// at once.
type EventStream struct {
	contentType string
	renderFunc  RenderFunc
	request     *http.Request
	writer      http.ResponseWriter
	flusher     http.Flusher
	err         error
	rendered    bool
}

// RenderFunc gets the event name as the first argument and the triggered
// values after it.
type RenderFunc func(args ...interface{}) ([]byte, error)

var RenderJSONFunc = func(args ...interface{}) ([]byte, error) {
	if len(args) <= 1 {
		return nil, errors.BadRequestParameter.Clone().SetData("render", "value is empty")
	}
	v := args[1]
	if v == nil {
		return nil, nil
	}

	return json.Marshal(v)
}

// renderEventStream renders the ballot values as hal resources.
func renderEventStream(args ...interface{}) ([]byte, error) {
	if len(args) <= 1 {
		return nil, errors.BadRequestParameter.Clone().SetData("render", "value is empty")
	}

	switch v := args[1].(type) {
	case *journal.Record:
		return json.Marshal(resource.NewRecord(*v).Resource())
	case *runner.Winner:
		return json.Marshal(resource.NewWinner(*v).Resource())
	case httputils.HALResource:
		return json.Marshal(v.Resource())
	}

	return RenderJSONFunc(args...)
}

func NewDefaultEventStream(w http.ResponseWriter, r *http.Request) *EventStream {
	return NewEventStream(w, r, renderEventStream, DefaultContentType)
}

// NewEventStream makes *EventStream; w must be http.Flusher.
func NewEventStream(w http.ResponseWriter, r *http.Request, renderFunc RenderFunc, ct string) *EventStream {
	es := &EventStream{
		request:     r,
		writer:      w,
		renderFunc:  renderFunc,
		contentType: ct,
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		es.err = fmt.Errorf("http: can't do chunked response")
	} else {
		es.flusher = flusher
	}

	return es
}

// Render writes the values before the events are observed.
func (s *EventStream) Render(args ...interface{}) {
	if s.err != nil {
		return
	}

	renderArgs := append([]interface{}{"pre"}, args...)

	var bs []byte
	if payload, err := s.renderFunc(renderArgs...); err != nil {
		bs = s.errMessage(err)
	} else {
		bs = payload
	}

	s.writeHeader()
	fmt.Fprintf(s.writer, "%s\n", bs)
	s.flusher.Flush()
}

func (s *EventStream) writeHeader() {
	if s.rendered {
		return
	}

	s.writer.Header().Set("Content-Type", s.contentType)
	s.writer.WriteHeader(http.StatusOK)
	s.rendered = true
}

// Run observes events until the request is closed.
//
// 	event := observer.NewEvent(observer.ResourceWinner, observer.ConditionAll, "").String()
// 	es := NewDefaultEventStream(w, r)
// 	es.Render(winner)
// 	es.Run(observer.OperationObserver, event)
func (s *EventStream) Run(ob *observable.Observable, events ...string) {
	s.Start(ob, events...)()
}

// Start registers the observer and returns the func which writes the
// events. Events triggered between Start and the returned func are kept.
// The observer never waits for the writer, so the events are queued.
func (s *EventStream) Start(ob *observable.Observable, events ...string) func() {
	if s.err != nil {
		http.Error(s.writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return func() {}
	}

	event := strings.Join(events, " ")
	multiple := len(strings.Fields(event)) > 1

	var (
		lock    sync.Mutex
		pending [][]byte
	)
	notify := make(chan struct{}, 1)

	onFunc := func(args ...interface{}) {
		// go-observable already puts the triggered event name in front of
		// the arguments when the callback has multiple events.
		if !multiple {
			args = append([]interface{}{event}, args...)
		}

		payload, err := s.renderFunc(args...)
		if err != nil {
			payload = s.errMessage(err)
		}

		lock.Lock()
		pending = append(pending, payload)
		lock.Unlock()

		select {
		case notify <- struct{}{}:
		default:
		}
	}
	ob.On(event, onFunc)

	return func() {
		defer ob.Off(event, onFunc)

		s.writeHeader()
		s.flusher.Flush()

		for {
			select {
			case <-notify:
				lock.Lock()
				payloads := pending
				pending = nil
				lock.Unlock()

				for _, payload := range payloads {
					fmt.Fprintf(s.writer, "%s\n", payload)
				}
				s.flusher.Flush()
			case <-s.request.Context().Done():
				return
			}
		}
	}
}

func (s *EventStream) errMessage(err error) []byte {
	p := httputils.NewErrorProblem(err, httputils.StatusCode(err))
	b, err := json.Marshal(p)
	if err != nil {
		b = []byte{}
	}

	return b
}

// PostSubscribeHandler streams the operations and winner changes of the
// subscribed events; the request body is `observer.Subscribe`.
func (api NetworkHandlerAPI) PostSubscribeHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("error", err.Error()))
		return
	}

	var subscribe observer.Subscribe
	if err := json.Unmarshal(body, &subscribe); err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("error", err.Error()))
		return
	}
	if len(subscribe.Events) < 1 {
		httputils.WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("events", "empty"))
		return
	}

	for _, e := range subscribe.Events {
		switch e.Resource {
		case observer.ResourceOperation, observer.ResourceWinner:
		default:
			httputils.WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("resource", e.Resource))
			return
		}
	}

	log.Debug("subscribe", "events", subscribe.String())

	es := NewDefaultEventStream(w, r)
	es.Run(observer.OperationObserver, subscribe.String())
}
