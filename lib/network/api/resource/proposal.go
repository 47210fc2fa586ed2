package resource

import (
	"strconv"
	"strings"

	"github.com/nvellon/hal"

	"boscoin.io/ballot/lib/ballot"
	"boscoin.io/ballot/lib/runner"
)

type Proposal struct {
	index uint64
	p     ballot.Proposal
}

func NewProposal(index uint64, p ballot.Proposal) *Proposal {
	return &Proposal{index: index, p: p}
}

func (p Proposal) GetMap() hal.Entry {
	return hal.Entry{
		"index":      p.index,
		"name":       p.p.Name.String(),
		"vote_count": p.p.VoteCount,
	}
}

func (p Proposal) Resource() *hal.Resource {
	return hal.NewResource(p, p.LinkSelf())
}

func (p Proposal) LinkSelf() string {
	return strings.Replace(URLProposal, "{id}", strconv.FormatUint(p.index, 10), -1)
}

type Winner struct {
	w runner.Winner
}

func NewWinner(w runner.Winner) *Winner {
	return &Winner{w: w}
}

func (w Winner) GetMap() hal.Entry {
	return hal.Entry{
		"index":      w.w.Index,
		"name":       w.w.Name,
		"vote_count": w.w.VoteCount,
	}
}

func (w Winner) Resource() *hal.Resource {
	r := hal.NewResource(w, w.LinkSelf())
	r.AddLink("proposal", hal.NewLink(NewProposal(w.w.Index, ballot.Proposal{}).LinkSelf()))

	return r
}

func (w Winner) LinkSelf() string {
	return URLWinner
}
