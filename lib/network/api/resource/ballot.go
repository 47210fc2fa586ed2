package resource

import (
	"github.com/nvellon/hal"

	"boscoin.io/ballot/lib/runner"
)

type Ballot struct {
	info runner.Info
}

func NewBallot(info runner.Info) *Ballot {
	return &Ballot{info: info}
}

func (b Ballot) GetMap() hal.Entry {
	return hal.Entry{
		"chairperson": b.info.Chairperson,
		"network_id":  b.info.NetworkID,
		"created":     b.info.Created,
		"proposals":   b.info.Proposals,
		"voters":      b.info.Voters,
		"records":     b.info.Records,
		"winner":      b.info.Winner,
	}
}

func (b Ballot) Resource() *hal.Resource {
	r := hal.NewResource(b, b.LinkSelf())
	r.AddLink("proposals", hal.NewLink(URLProposals))
	r.AddLink("winner", hal.NewLink(URLWinner))
	r.AddLink("voter", hal.NewLink(URLVoter, hal.LinkAttr{"templated": true}))
	r.AddLink("operations", hal.NewLink(URLOperations+"{?cursor,limit,reverse}", hal.LinkAttr{"templated": true}))
	r.AddLink("subscribe", hal.NewLink(URLSubscribe))

	return r
}

func (b Ballot) LinkSelf() string {
	return URLBallot
}
