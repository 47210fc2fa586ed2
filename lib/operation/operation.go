// Package operation defines the signed requests which change a ballot. The
// source address of a well formed operation is the caller identity given to
// the ballot state.
package operation

import (
	"encoding/json"

	"github.com/btcsuite/btcutil/base58"

	"boscoin.io/ballot/lib/ballot"
	"boscoin.io/ballot/lib/common"
	"boscoin.io/ballot/lib/common/keypair"
	"boscoin.io/ballot/lib/errors"
)

const Version string = "1"

type OperationType string

const (
	TypeGiveRightToVote OperationType = "give-right-to-vote"
	TypeDelegate        OperationType = "delegate"
	TypeVote            OperationType = "vote"
)

func IsValidOperationType(oType string) bool {
	_, b := common.InStringArray([]string{
		string(TypeGiveRightToVote),
		string(TypeDelegate),
		string(TypeVote),
	}, oType)
	return b
}

type Operation struct {
	H Header `json:"H"`
	B Body   `json:"B"`
}

type Header struct {
	Version   string `json:"version"`
	Created   string `json:"created"`
	Hash      string `json:"hash"`
	Signature string `json:"signature"`
}

type Body struct {
	Type     OperationType `json:"type"`
	Source   string        `json:"source"`
	Target   string        `json:"target,omitempty"`
	Proposal uint64        `json:"proposal"`
}

func (b Body) MakeHash() []byte {
	return common.MustMakeObjectHash(b)
}

func (b Body) MakeHashString() string {
	return base58.Encode(b.MakeHash())
}

func NewOperation(body Body) (op Operation, err error) {
	if !IsValidOperationType(string(body.Type)) {
		err = errors.UnknownOperationType
		return
	}

	op = Operation{
		H: Header{
			Version: Version,
			Created: common.NowISO8601(),
			Hash:    body.MakeHashString(),
		},
		B: body,
	}

	return
}

func NewGiveRightToVote(source, target string) (Operation, error) {
	return NewOperation(Body{Type: TypeGiveRightToVote, Source: source, Target: target})
}

func NewDelegate(source, to string) (Operation, error) {
	return NewOperation(Body{Type: TypeDelegate, Source: source, Target: to})
}

func NewVote(source string, proposal uint64) (Operation, error) {
	return NewOperation(Body{Type: TypeVote, Source: source, Proposal: proposal})
}

func NewOperationFromJSON(b []byte) (op Operation, err error) {
	if err = json.Unmarshal(b, &op); err != nil {
		err = errors.InvalidOperation.Clone().SetData("error", err.Error())
		return
	}

	return
}

func (o Operation) GetHash() string {
	return o.H.Hash
}

func (o Operation) Source() string {
	return o.B.Source
}

func (o Operation) Serialize() (encoded []byte, err error) {
	encoded, err = json.Marshal(o)
	return
}

func (o Operation) String() string {
	encoded, _ := json.MarshalIndent(o, "", "  ")
	return string(encoded)
}

func (o *Operation) Sign(kp keypair.KP, networkID []byte) {
	o.H.Hash = o.B.MakeHashString()
	signature, _ := keypair.MakeSignature(kp, networkID, o.H.Hash)

	o.H.Signature = base58.Encode(signature)
}

var WellFormedCheckerFuncs = []common.CheckerFunc{
	CheckVersion,
	CheckCreated,
	CheckType,
	CheckSource,
	CheckTarget,
	CheckHash,
	CheckVerifySignature,
}

func (o Operation) IsWellFormed(networkID []byte) (err error) {
	checker := &Checker{
		DefaultChecker: common.DefaultChecker{Funcs: WellFormedCheckerFuncs},
		NetworkID:      networkID,
		Operation:      o,
	}
	if err = common.RunChecker(checker, common.DefaultDeferFunc); err != nil {
		return
	}

	return
}

// Apply runs the operation against state with the source address as the
// caller.
func (o Operation) Apply(state *ballot.BallotState) error {
	switch o.B.Type {
	case TypeGiveRightToVote:
		return state.GiveRightToVote(o.B.Source, o.B.Target)
	case TypeDelegate:
		return state.Delegate(o.B.Source, o.B.Target)
	case TypeVote:
		return state.Vote(o.B.Source, o.B.Proposal)
	default:
		return errors.UnknownOperationType
	}
}
