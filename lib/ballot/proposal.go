package ballot

import (
	"bytes"
	"encoding/json"

	"boscoin.io/ballot/lib/errors"
)

const ProposalNameSize int = 32

// ProposalName is a fixed width label; shorter names are padded with NUL.
type ProposalName [ProposalNameSize]byte

func NewProposalName(s string) (n ProposalName, err error) {
	if len(s) > ProposalNameSize {
		err = errors.ProposalNameTooLong.Clone().SetData("name", s)
		return
	}
	copy(n[:], s)

	return
}

func (n ProposalName) String() string {
	return string(bytes.TrimRight(n[:], "\x00"))
}

func (n ProposalName) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

func (n *ProposalName) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	name, err := NewProposalName(s)
	if err != nil {
		return err
	}
	*n = name

	return nil
}

type Proposal struct {
	Name      ProposalName `json:"name"`
	VoteCount uint64       `json:"vote_count"`
}
