package resource

import (
	"strings"

	"github.com/nvellon/hal"

	"boscoin.io/ballot/lib/ballot"
)

type Voter struct {
	address string
	v       ballot.Voter
}

func NewVoter(address string, v ballot.Voter) *Voter {
	return &Voter{address: address, v: v}
}

func (v Voter) GetMap() hal.Entry {
	entry := hal.Entry{
		"address": v.address,
		"weight":  v.v.Weight,
		"voted":   v.v.Voted,
		"state":   v.v.State().String(),
	}
	if len(v.v.Delegate) > 0 {
		entry["delegate"] = v.v.Delegate
	}
	if v.v.Vote != nil {
		entry["vote"] = *v.v.Vote
	}

	return entry
}

func (v Voter) Resource() *hal.Resource {
	r := hal.NewResource(v, v.LinkSelf())
	if len(v.v.Delegate) > 0 {
		r.AddLink("delegate", hal.NewLink(strings.Replace(URLVoter, "{id}", v.v.Delegate, -1)))
	}

	return r
}

func (v Voter) LinkSelf() string {
	return strings.Replace(URLVoter, "{id}", v.address, -1)
}
