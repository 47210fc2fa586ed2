package operation

import (
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"boscoin.io/ballot/lib/ballot"
	"boscoin.io/ballot/lib/common/keypair"
	"boscoin.io/ballot/lib/errors"
)

type OperationTestSuite struct {
	suite.Suite
	networkID []byte
	kp        *keypair.Full
}

func (suite *OperationTestSuite) SetupTest() {
	suite.networkID = []byte("ballot-test-network")
	suite.kp = keypair.Random()
}

func (suite *OperationTestSuite) TestIsWellFormed() {
	for _, oType := range []OperationType{TypeGiveRightToVote, TypeDelegate, TypeVote} {
		op := TestMakeOperation(suite.networkID, suite.kp, oType)
		require.NoError(suite.T(), op.IsWellFormed(suite.networkID), string(oType))
	}
}

func (suite *OperationTestSuite) TestJSON() {
	op := TestMakeOperation(suite.networkID, suite.kp, TypeDelegate)

	b, err := op.Serialize()
	require.NoError(suite.T(), err)

	decoded, err := NewOperationFromJSON(b)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), op, decoded)
	require.NoError(suite.T(), decoded.IsWellFormed(suite.networkID))

	_, err = NewOperationFromJSON([]byte("{"))
	require.True(suite.T(), errors.Is(err, errors.InvalidOperation))
}

func (suite *OperationTestSuite) TestUnknownType() {
	_, err := NewOperation(Body{Type: "findme", Source: suite.kp.Address()})
	require.Equal(suite.T(), errors.UnknownOperationType, err)

	op := TestMakeOperation(suite.networkID, suite.kp, TypeVote)
	op.B.Type = "findme"
	op.Sign(suite.kp, suite.networkID)
	require.Equal(suite.T(), errors.UnknownOperationType, op.IsWellFormed(suite.networkID))
}

func (suite *OperationTestSuite) TestWrongVersion() {
	op := TestMakeOperation(suite.networkID, suite.kp, TypeVote)
	op.H.Version = "0"
	require.True(suite.T(), errors.Is(op.IsWellFormed(suite.networkID), errors.InvalidOperation))
}

func (suite *OperationTestSuite) TestWrongCreated() {
	op := TestMakeOperation(suite.networkID, suite.kp, TypeVote)
	op.H.Created = "2018-08-25 14:12:10"
	require.True(suite.T(), errors.Is(op.IsWellFormed(suite.networkID), errors.InvalidOperation))
}

func (suite *OperationTestSuite) TestBadSource() {
	op, err := NewVote("showme", 0)
	require.NoError(suite.T(), err)
	op.Sign(suite.kp, suite.networkID)
	require.True(suite.T(), errors.Is(op.IsWellFormed(suite.networkID), errors.BadPublicAddress))

	// secret seed is not an address
	op, _ = NewVote(suite.kp.Seed(), 0)
	op.Sign(suite.kp, suite.networkID)
	require.True(suite.T(), errors.Is(op.IsWellFormed(suite.networkID), errors.BadPublicAddress))
}

func (suite *OperationTestSuite) TestBadTarget() {
	{ // delegate without target
		op, _ := NewDelegate(suite.kp.Address(), "")
		op.Sign(suite.kp, suite.networkID)
		require.True(suite.T(), errors.Is(op.IsWellFormed(suite.networkID), errors.BadPublicAddress))
	}

	{ // vote with target
		op, _ := NewOperation(Body{
			Type:   TypeVote,
			Source: suite.kp.Address(),
			Target: keypair.Random().Address(),
		})
		op.Sign(suite.kp, suite.networkID)
		require.True(suite.T(), errors.Is(op.IsWellFormed(suite.networkID), errors.OperationBodyInvalid))
	}

	{ // give-right-to-vote with proposal
		op, _ := NewOperation(Body{
			Type:     TypeGiveRightToVote,
			Source:   suite.kp.Address(),
			Target:   keypair.Random().Address(),
			Proposal: 3,
		})
		op.Sign(suite.kp, suite.networkID)
		require.True(suite.T(), errors.Is(op.IsWellFormed(suite.networkID), errors.OperationBodyInvalid))
	}
}

func (suite *OperationTestSuite) TestHashDoesNotMatch() {
	op := TestMakeOperation(suite.networkID, suite.kp, TypeVote)
	op.B.Proposal = 1
	require.Equal(suite.T(), errors.HashDoesNotMatch, op.IsWellFormed(suite.networkID))
}

func (suite *OperationTestSuite) TestSignature() {
	{ // other network
		op := TestMakeOperation(suite.networkID, suite.kp, TypeVote)
		require.Equal(suite.T(), errors.SignatureVerificationFail, op.IsWellFormed([]byte("another-network")))
	}

	{ // signed by other keypair
		op, _ := NewVote(suite.kp.Address(), 0)
		op.Sign(keypair.Random(), suite.networkID)
		require.Equal(suite.T(), errors.SignatureVerificationFail, op.IsWellFormed(suite.networkID))
	}

	{ // broken signature
		op := TestMakeOperation(suite.networkID, suite.kp, TypeVote)
		op.H.Signature = base58.Encode([]byte("findme"))
		require.Equal(suite.T(), errors.SignatureVerificationFail, op.IsWellFormed(suite.networkID))
	}
}

func TestOperationTestSuite(t *testing.T) {
	suite.Run(t, new(OperationTestSuite))
}

func TestOperationApply(t *testing.T) {
	chair := keypair.Random()
	voter1 := keypair.Random()
	voter2 := keypair.Random()

	state, err := ballot.New(chair.Address(), []string{"P1", "P2"})
	require.NoError(t, err)

	ops := []Operation{}
	for _, f := range []func() (Operation, error){
		func() (Operation, error) { return NewGiveRightToVote(chair.Address(), voter1.Address()) },
		func() (Operation, error) { return NewGiveRightToVote(chair.Address(), voter2.Address()) },
		func() (Operation, error) { return NewDelegate(voter1.Address(), voter2.Address()) },
		func() (Operation, error) { return NewVote(voter2.Address(), 1) },
	} {
		op, err := f()
		require.NoError(t, err)
		ops = append(ops, op)
	}

	for _, op := range ops {
		require.NoError(t, op.Apply(state))
	}

	require.Equal(t, uint64(1), state.WinningProposal())
	require.Equal(t, uint64(2), state.Proposals()[1].VoteCount)

	// the source is the caller
	op, _ := NewGiveRightToVote(voter1.Address(), chair.Address())
	require.True(t, errors.Is(op.Apply(state), errors.Unauthorized))

	op.B.Type = "findme"
	require.Equal(t, errors.UnknownOperationType, op.Apply(state))
}

func TestOperationHashCoversBody(t *testing.T) {
	kp := keypair.Random()

	a, _ := NewVote(kp.Address(), 0)
	b, _ := NewVote(kp.Address(), 1)
	require.NotEqual(t, a.GetHash(), b.GetHash())

	c, _ := NewVote(kp.Address(), 0)
	require.Equal(t, a.GetHash(), c.GetHash())
}
