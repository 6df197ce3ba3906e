package cryptokeys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)

	msg := []byte("header.payload")
	sig, err := kp.Sign(msg)
	require.NoError(t, err)
	require.Len(t, sig, sigLen)

	ok, err := kp.PublicKey().Verify(sig, msg)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)

	sig, err := kp.Sign([]byte("original"))
	require.NoError(t, err)

	ok, err := kp.PublicKey().Verify(sig, []byte("tampered"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestECDHIsSymmetric(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	sharedA, err := a.ECDH(b.PublicKey())
	require.NoError(t, err)
	sharedB, err := b.ECDH(a.PublicKey())
	require.NoError(t, err)

	require.Equal(t, sharedA, sharedB)
	require.Len(t, sharedA, coordLen)
}

func TestRawPointRoundTrip(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)

	raw := kp.PublicKey().Raw()
	require.Len(t, raw, rawPointLen)

	parsed, err := PublicKeyFromRaw(raw)
	require.NoError(t, err)
	require.Equal(t, raw, parsed.Raw())
}

func TestSPKIRoundTrip(t *testing.T) {
	kp, err := Generate()
	require.NoError(t, err)

	der, err := kp.PublicKey().MarshalSPKI()
	require.NoError(t, err)

	parsed, err := ParseSPKI(der)
	require.NoError(t, err)
	require.Equal(t, kp.PublicKey().Raw(), parsed.Raw())
}

func TestParseSPKIRejectsGarbage(t *testing.T) {
	_, err := ParseSPKI([]byte{0x01, 0x02, 0x03})
	require.Error(t, err)
}
