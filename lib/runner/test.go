package runner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"boscoin.io/ballot/lib/common/keypair"
	"boscoin.io/ballot/lib/journal"
	"boscoin.io/ballot/lib/operation"
	"boscoin.io/ballot/lib/storage"
)

var networkID []byte = []byte("ballot-test-network")

// TestMakeBallotRunner makes BallotRunner over memory storage with random
// chairperson.
func TestMakeBallotRunner(t *testing.T, proposals ...string) (*BallotRunner, *keypair.Full) {
	st := storage.NewTestStorage()
	chair := keypair.Random()

	genesis := journal.NewGenesis(chair.Address(), proposals, networkID)
	require.NoError(t, journal.SaveGenesis(st, genesis))

	r, err := NewBallotRunner(networkID, st)
	require.NoError(t, err)

	return r, chair
}

func testSign(kp *keypair.Full, op operation.Operation, err error) operation.Operation {
	if err != nil {
		panic(err)
	}
	op.Sign(kp, networkID)

	return op
}

func TestMakeGiveRightToVote(kp *keypair.Full, target string) operation.Operation {
	op, err := operation.NewGiveRightToVote(kp.Address(), target)
	return testSign(kp, op, err)
}

func TestMakeDelegate(kp *keypair.Full, to string) operation.Operation {
	op, err := operation.NewDelegate(kp.Address(), to)
	return testSign(kp, op, err)
}

func TestMakeVote(kp *keypair.Full, index uint64) operation.Operation {
	op, err := operation.NewVote(kp.Address(), index)
	return testSign(kp, op, err)
}
