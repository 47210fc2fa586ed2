package operation

import (
	"github.com/btcsuite/btcutil/base58"

	"boscoin.io/ballot/lib/common"
	"boscoin.io/ballot/lib/common/keypair"
	"boscoin.io/ballot/lib/errors"
)

type Checker struct {
	common.DefaultChecker

	NetworkID []byte
	Operation Operation
}

func CheckVersion(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*Checker)
	if checker.Operation.H.Version != Version {
		err = errors.InvalidOperation.Clone().SetData("version", checker.Operation.H.Version)
		return
	}

	return
}

func CheckCreated(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*Checker)
	if _, err = common.ParseISO8601(checker.Operation.H.Created); err != nil {
		err = errors.InvalidOperation.Clone().SetData("created", checker.Operation.H.Created)
		return
	}

	return
}

func CheckType(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*Checker)
	if !IsValidOperationType(string(checker.Operation.B.Type)) {
		err = errors.UnknownOperationType
		return
	}

	return
}

func CheckSource(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*Checker)
	if !keypair.IsValidAddress(checker.Operation.B.Source) {
		err = errors.BadPublicAddress.Clone().SetData("source", checker.Operation.B.Source)
		return
	}

	return
}

// CheckTarget checks the fields of body which the type does not use are
// empty, so one request has only one hash.
func CheckTarget(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*Checker)
	body := checker.Operation.B

	switch body.Type {
	case TypeGiveRightToVote, TypeDelegate:
		if !keypair.IsValidAddress(body.Target) {
			err = errors.BadPublicAddress.Clone().SetData("target", body.Target)
			return
		}
		if body.Proposal != 0 {
			err = errors.OperationBodyInvalid.Clone().SetData("proposal", body.Proposal)
			return
		}
	case TypeVote:
		if len(body.Target) > 0 {
			err = errors.OperationBodyInvalid.Clone().SetData("target", body.Target)
			return
		}
	}

	return
}

func CheckHash(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*Checker)
	if checker.Operation.H.Hash != checker.Operation.B.MakeHashString() {
		err = errors.HashDoesNotMatch
		return
	}

	return
}

func CheckVerifySignature(c common.Checker, args ...interface{}) (err error) {
	checker := c.(*Checker)

	err = keypair.VerifySignature(
		checker.Operation.B.Source,
		checker.NetworkID,
		checker.Operation.H.Hash,
		base58.Decode(checker.Operation.H.Signature),
	)
	if err != nil {
		err = errors.SignatureVerificationFail
		return
	}

	return
}
