// Package api serves the ballot over http. Resources are rendered as
// hal+json and errors as problem+json.
package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"boscoin.io/ballot/lib/runner"
)

const APIVersionV1 = "v1"

// API Endpoint patterns
const (
	GetBallotHandlerPattern     = "/"
	GetProposalsHandlerPattern  = "/proposals"
	GetProposalHandlerPattern   = "/proposals/{id}"
	GetWinnerHandlerPattern     = "/winner"
	GetVoterHandlerPattern      = "/voters/{id}"
	GetOperationsHandlerPattern = "/operations"
	GetOperationHandlerPattern  = "/operations/{id}"
	PostOperationHandlerPattern = "/operations"
	PostSubscribePattern        = "/subscribe"
)

type NetworkHandlerAPI struct {
	runner    *runner.BallotRunner
	urlPrefix string
	version   string
}

func NewNetworkHandlerAPI(r *runner.BallotRunner, urlPrefix string) *NetworkHandlerAPI {
	return &NetworkHandlerAPI{
		runner:    r,
		urlPrefix: urlPrefix,
		version:   APIVersionV1,
	}
}

func (api NetworkHandlerAPI) HandlerURLPattern(pattern string) string {
	if pattern == GetBallotHandlerPattern {
		return fmt.Sprintf("%s/%s", api.urlPrefix, api.version)
	}

	return fmt.Sprintf("%s/%s%s", api.urlPrefix, api.version, pattern)
}

// Middlewares wrap some handlers; `cache` for the immutable resources and
// `postOperation` for submitting operation.
type Middlewares struct {
	Cache         mux.MiddlewareFunc
	PostOperation mux.MiddlewareFunc
}

func wrap(m mux.MiddlewareFunc, h http.HandlerFunc) http.Handler {
	if m == nil {
		return h
	}

	return m(h)
}

// RegisterHandlers adds the ballot handlers to router.
func (api NetworkHandlerAPI) RegisterHandlers(router *mux.Router, m Middlewares) {
	p := api.HandlerURLPattern

	router.HandleFunc(p(GetBallotHandlerPattern), api.GetBallotHandler).Methods("GET")
	router.HandleFunc(p(GetProposalsHandlerPattern), api.GetProposalsHandler).Methods("GET")
	router.HandleFunc(p(GetProposalHandlerPattern), api.GetProposalHandler).Methods("GET")
	router.HandleFunc(p(GetWinnerHandlerPattern), api.GetWinnerHandler).Methods("GET")
	router.HandleFunc(p(GetVoterHandlerPattern), api.GetVoterHandler).Methods("GET")
	router.HandleFunc(p(GetOperationsHandlerPattern), api.GetOperationsHandler).Methods("GET")
	router.Handle(p(GetOperationHandlerPattern), wrap(m.Cache, api.GetOperationHandler)).Methods("GET")
	router.Handle(p(PostOperationHandlerPattern), wrap(m.PostOperation, api.PostOperationHandler)).Methods("POST")
	router.HandleFunc(p(PostSubscribePattern), api.PostSubscribeHandler).Methods("POST")
}
