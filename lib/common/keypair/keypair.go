// Package keypair wraps stellar's keypair package. Ballot callers are
// identified by the public address of their keypair.
package keypair

import (
	stellar "github.com/stellar/go/keypair"
)

// Aliases to stellar types
type Full = stellar.Full
type KP = stellar.KP

// Aliases to stellar functions
var Master = stellar.Master
var Parse = stellar.Parse
var RandomCanFail = stellar.Random

// MakeSignature makes signature from given hash string
func MakeSignature(kp KP, networkID []byte, hash string) ([]byte, error) {
	return kp.Sign(append(networkID, []byte(hash)...))
}

// VerifySignature checks signature was made by the keypair of address over
// networkID and hash.
func VerifySignature(address string, networkID []byte, hash string, signature []byte) error {
	kp, err := stellar.Parse(address)
	if err != nil {
		return err
	}

	return kp.Verify(append(networkID, []byte(hash)...), signature)
}

// IsValidAddress reports whether address parses as a public address.
func IsValidAddress(address string) bool {
	kp, err := stellar.Parse(address)
	if err != nil {
		return false
	}
	_, isFull := kp.(*stellar.Full)

	return !isFull
}
