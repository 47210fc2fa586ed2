package resource

import (
	"strconv"
	"strings"

	"github.com/nvellon/hal"

	"boscoin.io/ballot/lib/journal"
	"boscoin.io/ballot/lib/operation"
)

type Record struct {
	r journal.Record
}

func NewRecord(r journal.Record) *Record {
	return &Record{r: r}
}

func (r Record) GetMap() hal.Entry {
	op := r.r.Operation
	entry := hal.Entry{
		"seq":       r.r.Seq,
		"hash":      op.GetHash(),
		"type":      op.B.Type,
		"source":    op.B.Source,
		"created":   op.H.Created,
		"applied":   r.r.Applied,
		"signature": op.H.Signature,
	}

	switch op.B.Type {
	case operation.TypeVote:
		entry["proposal"] = op.B.Proposal
	default:
		entry["target"] = op.B.Target
	}

	return entry
}

func (r Record) Resource() *hal.Resource {
	res := hal.NewResource(r, r.LinkSelf())

	op := r.r.Operation
	res.AddLink("source", hal.NewLink(strings.Replace(URLVoter, "{id}", op.B.Source, -1)))
	switch op.B.Type {
	case operation.TypeVote:
		index := strconv.FormatUint(op.B.Proposal, 10)
		res.AddLink("proposal", hal.NewLink(strings.Replace(URLProposal, "{id}", index, -1)))
	default:
		res.AddLink("target", hal.NewLink(strings.Replace(URLVoter, "{id}", op.B.Target, -1)))
	}

	return res
}

func (r Record) LinkSelf() string {
	return strings.Replace(URLOperation, "{id}", strconv.FormatUint(r.r.Seq, 10), -1)
}
