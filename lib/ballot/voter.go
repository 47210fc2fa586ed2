package ballot

type VoterState uint

const (
	VoterStateNORIGHTS VoterState = iota
	VoterStateHASRIGHTS
	VoterStateVOTED
)

func (s VoterState) String() string {
	switch s {
	case VoterStateNORIGHTS:
		return "NO-RIGHTS"
	case VoterStateHASRIGHTS:
		return "HAS-RIGHTS"
	case VoterStateVOTED:
		return "VOTED"
	default:
		return ""
	}
}

func (s VoterState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Voter struct {
	Weight uint64 `json:"weight"`
	Voted  bool   `json:"voted"`

	// Delegate is the address the voter delegated to, before the chain
	// was resolved.
	Delegate string  `json:"delegate,omitempty"`
	Vote     *uint64 `json:"vote,omitempty"`
}

func (v Voter) State() VoterState {
	if v.Voted {
		return VoterStateVOTED
	}
	if v.Weight > 0 {
		return VoterStateHASRIGHTS
	}

	return VoterStateNORIGHTS
}

func (v Voter) copy() Voter {
	n := v
	if v.Vote != nil {
		index := *v.Vote
		n.Vote = &index
	}

	return n
}
