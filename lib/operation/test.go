package operation

import (
	"boscoin.io/ballot/lib/common/keypair"
)

// TestMakeOperation makes signed operation of given type. For
// `TypeGiveRightToVote` and `TypeDelegate` a random target is used.
func TestMakeOperation(networkID []byte, kp keypair.KP, oType OperationType) Operation {
	body := Body{Type: oType, Source: kp.Address()}
	if oType != TypeVote {
		body.Target = keypair.Random().Address()
	}

	op, err := NewOperation(body)
	if err != nil {
		panic(err)
	}
	op.Sign(kp, networkID)

	return op
}
