// Package ballot implements the voting and delegation rules of a single
// ballot. BallotState is not safe for concurrent use; the host must
// serialize every call.
package ballot

import (
	"boscoin.io/ballot/lib/errors"
)

type BallotState struct {
	chairperson string
	proposals   []Proposal
	voters      map[string]*Voter
}

// New creates the ballot. The chairperson starts with weight 1 and the
// proposals keep the given order, which is also the tie-break order.
func New(chairperson string, names []string) (*BallotState, error) {
	if len(chairperson) < 1 {
		return nil, errors.InvalidChairperson
	}
	if len(names) < 1 {
		return nil, errors.EmptyProposals
	}

	proposals := make([]Proposal, len(names))
	for i, s := range names {
		name, err := NewProposalName(s)
		if err != nil {
			return nil, err
		}
		proposals[i] = Proposal{Name: name}
	}

	b := &BallotState{
		chairperson: chairperson,
		proposals:   proposals,
		voters: map[string]*Voter{
			chairperson: &Voter{Weight: 1},
		},
	}

	log.Debug("ballot created", "chairperson", chairperson, "proposals", len(proposals))

	return b, nil
}

func (b *BallotState) Chairperson() string {
	return b.chairperson
}

// Proposals returns a copy of the proposals.
func (b *BallotState) Proposals() []Proposal {
	proposals := make([]Proposal, len(b.proposals))
	copy(proposals, b.proposals)

	return proposals
}

func (b *BallotState) Proposal(index uint64) (Proposal, error) {
	if index >= uint64(len(b.proposals)) {
		return Proposal{}, errors.InvalidProposal
	}

	return b.proposals[index], nil
}

// Voter returns a copy of the voter record of address. Unknown addresses
// are reported with `found == false` and the zero Voter.
func (b *BallotState) Voter(address string) (voter Voter, found bool) {
	var v *Voter
	if v, found = b.voters[address]; !found {
		return
	}
	voter = v.copy()

	return
}

func (b *BallotState) VotersCount() int {
	return len(b.voters)
}

func (b *BallotState) voter(address string) Voter {
	if v, found := b.voters[address]; found {
		return *v
	}

	return Voter{}
}

func (b *BallotState) setVoter(address string, v Voter) {
	b.voters[address] = &v
}

// GiveRightToVote gives weight 1 to target. Only the chairperson can call
// it.
func (b *BallotState) GiveRightToVote(caller, target string) error {
	if caller != b.chairperson {
		return errors.Unauthorized.Clone().SetData("caller", caller)
	}

	v := b.voter(target)
	if v.Voted {
		return errors.AlreadyVoted.Clone().SetData("voter", target)
	}
	if v.Weight != 0 {
		return errors.AlreadyEnrolled.Clone().SetData("voter", target)
	}

	v.Weight = 1
	b.setVoter(target, v)

	log.Debug("right to vote given", "voter", target)

	return nil
}

// Delegate passes the weight of caller to `to`. When the delegation chain of
// `to` ends at a voter who already voted, the weight is added to the voted
// proposal at once.
func (b *BallotState) Delegate(caller, to string) error {
	sender := b.voter(caller)
	if sender.Voted {
		return errors.AlreadyVoted.Clone().SetData("voter", caller)
	}
	if to == caller {
		return errors.SelfDelegation
	}
	if len(to) < 1 {
		return errors.BadPublicAddress
	}

	resolved, err := b.resolveDelegate(caller, to)
	if err != nil {
		return err
	}

	target := b.voter(resolved)
	var index uint64
	if target.Voted {
		if target.Vote == nil {
			return errors.DelegationLoop.Clone().SetData("to", resolved)
		}
		index = *target.Vote
		if index >= uint64(len(b.proposals)) {
			return errors.InvalidProposal
		}
	}

	sender.Voted = true
	sender.Delegate = to
	b.setVoter(caller, sender)

	if target.Voted {
		b.proposals[index].VoteCount += sender.Weight
	} else {
		target.Weight += sender.Weight
		b.setVoter(resolved, target)
	}

	log.Debug(
		"vote delegated",
		"voter", caller,
		"to", to,
		"resolved", resolved,
		"weight", sender.Weight,
	)

	return nil
}

// resolveDelegate follows the delegation chain from `to` until it reaches a
// voter who has not delegated. The number of hops is bounded by the number
// of known voters.
func (b *BallotState) resolveDelegate(caller, to string) (string, error) {
	visited := map[string]struct{}{}
	hops := len(b.voters)

	current := to
	for {
		if current == caller {
			return "", errors.SelfDelegation
		}
		if _, found := visited[current]; found {
			return "", errors.DelegationLoop.Clone().SetData("to", to)
		}
		visited[current] = struct{}{}

		v, found := b.voters[current]
		if !found || !v.Voted || len(v.Delegate) < 1 {
			return current, nil
		}

		if hops < 1 {
			return "", errors.DelegationLoop.Clone().SetData("to", to)
		}
		hops--
		current = v.Delegate
	}
}

// Vote adds the whole weight of caller to the proposal at index.
func (b *BallotState) Vote(caller string, index uint64) error {
	v := b.voter(caller)
	if v.Weight == 0 {
		return errors.NoRightToVote.Clone().SetData("voter", caller)
	}
	if v.Voted {
		return errors.AlreadyVoted.Clone().SetData("voter", caller)
	}
	if index >= uint64(len(b.proposals)) {
		return errors.InvalidProposal.Clone().SetData("index", index)
	}

	v.Voted = true
	v.Vote = &index
	b.setVoter(caller, v)
	b.proposals[index].VoteCount += v.Weight

	log.Debug("voted", "voter", caller, "proposal", index, "weight", v.Weight)

	return nil
}

// WinningProposal returns the index of the first proposal with the greatest
// vote count. With no votes at all it is 0.
func (b *BallotState) WinningProposal() uint64 {
	var winner uint64
	var max uint64
	for i, p := range b.proposals {
		if p.VoteCount > max {
			max = p.VoteCount
			winner = uint64(i)
		}
	}

	return winner
}

func (b *BallotState) WinnerName() ProposalName {
	return b.proposals[b.WinningProposal()].Name
}
