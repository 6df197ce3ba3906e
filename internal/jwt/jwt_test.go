package jwt

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	cryptokeys "bedrock-login-server/internal/crypto"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	kp, err := cryptokeys.Generate()
	require.NoError(t, err)

	claims := map[string]string{"myname": "tetsu360", "kk": "a"}
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	token, err := Encode(string(payload), kp)
	require.NoError(t, err)

	decoded, err := Decode(token, kp.PublicKey())
	require.NoError(t, err)
	require.JSONEq(t, string(payload), decoded.Payload)
	require.Equal(t, "ES384", decoded.Header.Alg)
}

func TestDecodeRejectsWrongKey(t *testing.T) {
	kp, err := cryptokeys.Generate()
	require.NoError(t, err)
	other, err := cryptokeys.Generate()
	require.NoError(t, err)

	token, err := Encode(`{"a":1}`, kp)
	require.NoError(t, err)

	_, err = Decode(token, other.PublicKey())
	require.Error(t, err)
}

func TestDecodeRejectsNonES384(t *testing.T) {
	_, err := Decode("eyJhbGciOiJIUzI1NiJ9.e30.c2ln", nil)
	require.Error(t, err)
}
