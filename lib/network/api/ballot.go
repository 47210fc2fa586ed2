package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"boscoin.io/ballot/lib/common/keypair"
	"boscoin.io/ballot/lib/common/observer"
	"boscoin.io/ballot/lib/errors"
	"boscoin.io/ballot/lib/network/api/resource"
	"boscoin.io/ballot/lib/network/httputils"
)

func (api NetworkHandlerAPI) GetBallotHandler(w http.ResponseWriter, r *http.Request) {
	httputils.WriteJSON(w, http.StatusOK, resource.NewBallot(api.runner.Info()))
}

func (api NetworkHandlerAPI) GetProposalsHandler(w http.ResponseWriter, r *http.Request) {
	var list []resource.Resource
	for i, p := range api.runner.Proposals() {
		list = append(list, resource.NewProposal(uint64(i), p))
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewResourceList(list, r.URL.String(), "", ""))
}

// GetProposalHandler returns 404 for the index out of range.
func (api NetworkHandlerAPI) GetProposalHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	index, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		httputils.WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("id", id))
		return
	}

	p, err := api.runner.Proposal(index)
	if err != nil {
		httputils.WriteJSON(w, http.StatusNotFound, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewProposal(index, p))
}

// GetWinnerHandler keeps streaming the winner after every applied operation
// with `Accept: text/event-stream`.
func (api NetworkHandlerAPI) GetWinnerHandler(w http.ResponseWriter, r *http.Request) {
	if httputils.IsEventStream(r) {
		event := observer.NewEvent(observer.ResourceWinner, observer.ConditionAll, "").String()
		es := NewDefaultEventStream(w, r)
		run := es.Start(observer.OperationObserver, event)

		winner := api.runner.Winner()
		es.Render(&winner)
		run()
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewWinner(api.runner.Winner()))
}

// GetVoterHandler returns the voter of address. The address without any
// right is also the voter with zero weight.
func (api NetworkHandlerAPI) GetVoterHandler(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["id"]
	if !keypair.IsValidAddress(address) {
		httputils.WriteJSONError(w, errors.BadPublicAddress.Clone().SetData("address", address))
		return
	}

	v, _ := api.runner.Voter(address)

	httputils.WriteJSON(w, http.StatusOK, resource.NewVoter(address, v))
}
