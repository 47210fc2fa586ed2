package keypair

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	networkID := []byte("ballot-test-network")
	kp := Random()

	signature, err := MakeSignature(kp, networkID, "findme")
	require.NoError(t, err)

	require.NoError(t, VerifySignature(kp.Address(), networkID, "findme", signature))
	require.Error(t, VerifySignature(kp.Address(), networkID, "showme", signature))
	require.Error(t, VerifySignature(kp.Address(), []byte("another-network"), "findme", signature))
	require.Error(t, VerifySignature(Random().Address(), networkID, "findme", signature))
}

func TestIsValidAddress(t *testing.T) {
	kp := Random()
	require.True(t, IsValidAddress(kp.Address()))
	require.False(t, IsValidAddress(kp.Seed()))
	require.False(t, IsValidAddress("not-an-address"))
	require.False(t, IsValidAddress(""))
}
