package session

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"bedrock-login-server/internal/cipher"
	"bedrock-login-server/internal/codec"
	cryptokeys "bedrock-login-server/internal/crypto"
	"bedrock-login-server/internal/jwt"
	"bedrock-login-server/internal/login"
	"bedrock-login-server/internal/packet"
)

type saltClaim struct {
	Salt string `json:"salt"`
}

func sha256Concat(a, b []byte) []byte {
	h := sha256.New()
	h.Write(a)
	h.Write(b)
	return h.Sum(nil)
}

var testB64 = base64.URLEncoding.WithPadding(base64.NoPadding)

func buildToken(t *testing.T, signer *cryptokeys.KeyPair, x5u string, claims any) string {
	t.Helper()
	header := map[string]string{"alg": "ES384", "x5u": x5u}
	headerJSON, err := json.Marshal(header)
	require.NoError(t, err)
	claimsJSON, err := json.Marshal(claims)
	require.NoError(t, err)
	message := testB64.EncodeToString(headerJSON) + "." + testB64.EncodeToString(claimsJSON)
	sig, err := signer.Sign([]byte(message))
	require.NoError(t, err)
	return message + "." + testB64.EncodeToString(sig)
}

func spkiB64(t *testing.T, kp *cryptokeys.KeyPair) string {
	t.Helper()
	der, err := kp.PublicKey().MarshalSPKI()
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(der)
}

// buildTrustedChain returns a two-link chain JSON and the identity
// keypair the final link claims, mirroring the shape the chain verifier
// requires: a self-signed bootstrap link pointing at the identity key,
// and an identity-signed link whose header x5u is the literal Mojang
// root string.
func buildTrustedChain(t *testing.T) (string, *cryptokeys.KeyPair) {
	t.Helper()
	selfSigned, err := cryptokeys.Generate()
	require.NoError(t, err)
	identity, err := cryptokeys.Generate()
	require.NoError(t, err)

	identityX5U := spkiB64(t, identity)
	link0 := buildToken(t, selfSigned, spkiB64(t, selfSigned), map[string]string{
		"identityPublicKey": identityX5U,
	})
	link1 := buildToken(t, identity, login.MojangRootKey, map[string]any{
		"identityPublicKey": identityX5U,
		"extraData": map[string]string{
			"XUID":        "1",
			"identity":    "11111111-1111-1111-1111-111111111111",
			"displayName": "Steve",
			"titleId":     "title",
		},
	})
	doc, err := json.Marshal(map[string][]string{"chain": {link0, link1}})
	require.NoError(t, err)
	return string(doc), identity
}

// envelopePlain frames, deflates, and prepends the magic byte to a
// single inner packet body — an unencrypted datagram.
func envelopePlain(t *testing.T, body []byte) []byte {
	t.Helper()
	w := codec.NewWriter()
	w.WriteVarUint32(uint32(len(body)))
	w.WriteBytes(body)
	compressed, err := deflate(w.Bytes())
	require.NoError(t, err)
	return append([]byte{envelopeMagic}, compressed...)
}

// decodePlain strips magic and inflates, returning the split inner frames.
func decodePlain(t *testing.T, datagram []byte) [][]byte {
	t.Helper()
	require.Equal(t, envelopeMagic, datagram[0])
	inflated, err := inflate(datagram[1:])
	require.NoError(t, err)
	return splitFrames(inflated)
}

func decodeCiphered(t *testing.T, c *cipher.Cipher, datagram []byte) [][]byte {
	t.Helper()
	require.Equal(t, envelopeMagic, datagram[0])
	plain, err := c.Decode(append([]byte(nil), datagram[1:]...))
	require.NoError(t, err)
	inflated, err := inflate(plain)
	require.NoError(t, err)
	return splitFrames(inflated)
}

// performLogin drives a session through the full login flow, returning
// the session and a client-side cipher the test can use to read further
// encrypted sends.
func performLogin(t *testing.T) (*Session, *cipher.Cipher) {
	t.Helper()
	chainJSON, identity := buildTrustedChain(t)
	skinJWT := buildToken(t, identity, spkiB64(t, identity), map[string]string{"SkinId": "Standard_Custom"})

	var sent [][]byte
	s := New("127.0.0.1:1", func(data []byte) error {
		sent = append(sent, append([]byte(nil), data...))
		return nil
	}, zerolog.Nop())

	login := &packet.Login{ProtocolVersion: ProtocolVersion, Chain: chainJSON, PlayerData: skinJWT}
	s.HandleDatagram(envelopePlain(t, packet.Encode(login)))

	require.Equal(t, StateKeyExchanged, s.State())
	require.Len(t, sent, 1)

	frames := decodePlain(t, sent[0])
	require.Len(t, frames, 1)
	var handshake packet.ServerToClientHandshake
	require.NoError(t, packet.Decode(frames[0], &handshake))

	header, err := jwt.DecodeHeader(handshake.JWT)
	require.NoError(t, err)
	serverSPKI, err := base64.StdEncoding.DecodeString(header.X5U)
	require.NoError(t, err)
	serverPub, err := cryptokeys.ParseSPKI(serverSPKI)
	require.NoError(t, err)

	decoded, err := jwt.Decode(handshake.JWT, serverPub)
	require.NoError(t, err)
	var claims saltClaim
	require.NoError(t, json.Unmarshal([]byte(decoded.Payload), &claims))
	salt, err := base64.StdEncoding.DecodeString(claims.Salt)
	require.NoError(t, err)

	shared, err := identity.ECDH(serverPub)
	require.NoError(t, err)
	sessionKey := sha256Concat(salt, shared)

	clientCipher, err := cipher.New(sessionKey)
	require.NoError(t, err)

	handshakeBody := packet.Encode(&packet.ClientToServerHandshake{})
	w := codec.NewWriter()
	w.WriteVarUint32(uint32(len(handshakeBody)))
	w.WriteBytes(handshakeBody)
	compressed, err := deflate(w.Bytes())
	require.NoError(t, err)
	encrypted := clientCipher.Encode(compressed)
	datagram := append([]byte{envelopeMagic}, encrypted...)

	s.HandleDatagram(datagram)
	require.Equal(t, StateEncrypted, s.State())
	require.Len(t, sent, 2)

	frames = decodeCiphered(t, clientCipher, sent[1])
	require.Len(t, frames, 2)
	var status packet.PlayStatus
	require.NoError(t, packet.Decode(frames[0], &status))
	require.Equal(t, packet.StatusLoginSuccess, status.Status)

	var info packet.ResourcePacksInfo
	require.NoError(t, packet.Decode(frames[1], &info))
	require.False(t, info.ForceAccept)
	require.Empty(t, info.Behavior)
	require.Empty(t, info.Texture)

	// Exact wire bytes for the default, empty-lists case.
	require.Equal(t, []byte{0x06, 0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00}, frames[1])

	return s, clientCipher
}

func TestLoginFlowEndToEnd(t *testing.T) {
	performLogin(t)
}

func TestProtocolVersionMismatchTerminates(t *testing.T) {
	var sent [][]byte
	s := New("127.0.0.1:2", func(data []byte) error {
		sent = append(sent, data)
		return nil
	}, zerolog.Nop())

	login := &packet.Login{ProtocolVersion: 474, Chain: "{}", PlayerData: ""}
	s.HandleDatagram(envelopePlain(t, packet.Encode(login)))

	require.Equal(t, StateBad, s.State())
	require.Len(t, sent, 1)

	frames := decodePlain(t, sent[0])
	require.Len(t, frames, 1)
	var status packet.PlayStatus
	require.NoError(t, packet.Decode(frames[0], &status))
	require.Equal(t, packet.StatusFailedClient, status.Status)
}

func TestUntrustedChainDisconnects(t *testing.T) {
	selfSigned, err := cryptokeys.Generate()
	require.NoError(t, err)
	identity, err := cryptokeys.Generate()
	require.NoError(t, err)
	identityX5U := spkiB64(t, identity)

	link0 := buildToken(t, selfSigned, spkiB64(t, selfSigned), map[string]string{"identityPublicKey": identityX5U})
	link1 := buildToken(t, identity, identityX5U, map[string]any{
		"identityPublicKey": identityX5U,
		"extraData":         map[string]string{"XUID": "1", "identity": "11111111-1111-1111-1111-111111111111", "displayName": "Steve", "titleId": "t"},
	})
	doc, err := json.Marshal(map[string][]string{"chain": {link0, link1}})
	require.NoError(t, err)

	var sent [][]byte
	s := New("127.0.0.1:3", func(data []byte) error {
		sent = append(sent, data)
		return nil
	}, zerolog.Nop())

	login := &packet.Login{ProtocolVersion: ProtocolVersion, Chain: string(doc), PlayerData: ""}
	s.HandleDatagram(envelopePlain(t, packet.Encode(login)))

	require.Equal(t, StateBad, s.State())
	require.Len(t, sent, 1)
	frames := decodePlain(t, sent[0])
	var disc packet.Disconnect
	require.NoError(t, packet.Decode(frames[0], &disc))
}

func TestBadPacketAfterLoginStopsProcessing(t *testing.T) {
	s, clientCipher := performLogin(t)
	_ = clientCipher

	tampered := append([]byte{envelopeMagic}, bytes.Repeat([]byte{0x00}, 16)...)
	s.HandleDatagram(tampered)
	require.Equal(t, StateBad, s.State())

	// Further frames from this peer are ignored once bad.
	s.HandleDatagram(tampered)
	require.Equal(t, StateBad, s.State())
}

func TestUnknownPacketIDIsDroppedNotDisconnecting(t *testing.T) {
	s, clientCipher := performLogin(t)

	body := []byte{0xEE, 0x01, 0x02}
	w := codec.NewWriter()
	w.WriteVarUint32(uint32(len(body)))
	w.WriteBytes(body)
	compressed, err := deflate(w.Bytes())
	require.NoError(t, err)
	encrypted := clientCipher.Encode(compressed)
	s.HandleDatagram(append([]byte{envelopeMagic}, encrypted...))

	require.Equal(t, StateEncrypted, s.State())
}
