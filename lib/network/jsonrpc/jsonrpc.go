// Package jsonrpc serves the ballot queries thru JSON-RPC 1.0 over http.
package jsonrpc

import (
	"net/http"

	"github.com/gorilla/rpc"
	jsonrpc "github.com/gorilla/rpc/json"

	"boscoin.io/ballot/lib/ballot"
	"boscoin.io/ballot/lib/common/keypair"
	"boscoin.io/ballot/lib/errors"
	"boscoin.io/ballot/lib/journal"
	"boscoin.io/ballot/lib/operation"
	"boscoin.io/ballot/lib/runner"
)

type EchoArgs string
type EchoResult string

type InfoArgs struct{}
type InfoResult runner.Info

type WinnerArgs struct{}
type WinnerResult runner.Winner

type ProposalsArgs struct{}
type ProposalsResult []ballot.Proposal

type VoterArgs string
type VoterResult struct {
	Address string       `json:"address"`
	State   string       `json:"state"`
	Voter   ballot.Voter `json:"voter"`
}

type SubmitArgs operation.Operation
type SubmitResult journal.Record

type RecordArgs uint64
type RecordResult journal.Record

type BallotApp struct {
	runner *runner.BallotRunner
}

func (b *BallotApp) Echo(r *http.Request, args *EchoArgs, result *EchoResult) error {
	*result = EchoResult(string(*args))
	return nil
}

func (b *BallotApp) Info(r *http.Request, args *InfoArgs, result *InfoResult) error {
	*result = InfoResult(b.runner.Info())
	return nil
}

func (b *BallotApp) Winner(r *http.Request, args *WinnerArgs, result *WinnerResult) error {
	*result = WinnerResult(b.runner.Winner())
	return nil
}

func (b *BallotApp) Proposals(r *http.Request, args *ProposalsArgs, result *ProposalsResult) error {
	*result = ProposalsResult(b.runner.Proposals())
	return nil
}

func (b *BallotApp) Voter(r *http.Request, args *VoterArgs, result *VoterResult) error {
	address := string(*args)
	if !keypair.IsValidAddress(address) {
		return errors.BadPublicAddress.Clone().SetData("address", address)
	}

	v, _ := b.runner.Voter(address)
	*result = VoterResult{Address: address, State: v.State().String(), Voter: v}

	return nil
}

func (b *BallotApp) Submit(r *http.Request, args *SubmitArgs, result *SubmitResult) error {
	record, err := b.runner.Submit(operation.Operation(*args))
	if err != nil {
		return err
	}

	*result = SubmitResult(record)
	return nil
}

func (b *BallotApp) Record(r *http.Request, args *RecordArgs, result *RecordResult) error {
	record, err := b.runner.Record(uint64(*args))
	if err != nil {
		return err
	}

	*result = RecordResult(record)
	return nil
}

type JSONRPCServer struct {
	*rpc.Server
}

func NewJSONRPCServer(r *runner.BallotRunner) *JSONRPCServer {
	s := &JSONRPCServer{Server: rpc.NewServer()}
	s.RegisterCodec(jsonrpc.NewCodec(), "application/json")
	s.RegisterCodec(jsonrpc.NewCodec(), "application/json;charset=UTF-8")

	if err := s.RegisterService(&BallotApp{runner: r}, "Ballot"); err != nil {
		panic(err)
	}

	return s
}

func (s *JSONRPCServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set(
		"Access-Control-Allow-Headers",
		"Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization",
	)

	if r.Method == "OPTIONS" {
		return
	}

	s.Server.ServeHTTP(w, r)
}
