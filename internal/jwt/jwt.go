// Package jwt implements the three-part ES384 JSON Web Tokens the login
// chain and key-exchange handshake are carried in: base64url-no-pad
// header.payload.signature, signed with ECDSA-P384-SHA384, the signer's
// own SPKI DER embedded (base64) in the header's x5u field.
package jwt

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	cryptokeys "bedrock-login-server/internal/crypto"
	"bedrock-login-server/internal/protoerr"
)

// Header is the decoded JWT header. Only ES384 tokens are accepted.
type Header struct {
	Alg string `json:"alg"`
	X5U string `json:"x5u"`
}

// Token is a decoded, signature-verified JWT.
type Token struct {
	Header  Header
	Payload string // raw, not-yet-unmarshaled claims JSON
}

var b64 = base64.URLEncoding.WithPadding(base64.NoPadding)

// DecodeHeader reads just the header segment of a token without
// verifying its signature — used by the chain verifier to find the key
// that signed the *first* link before any key is known.
func DecodeHeader(token string) (Header, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Header{}, protoerr.New(protoerr.KindJWTDecoding, "token must have 3 segments")
	}
	raw, err := b64.DecodeString(parts[0])
	if err != nil {
		return Header{}, protoerr.Wrap(protoerr.KindJWTDecoding, "invalid base64 header", err)
	}
	var h Header
	if err := json.Unmarshal(raw, &h); err != nil {
		return Header{}, protoerr.Wrap(protoerr.KindJWTDecoding, "invalid header json", err)
	}
	return h, nil
}

// Decode verifies a token's signature against key and returns its header
// and payload. Structural/alg problems surface as KindJWTDecoding;
// signature mismatches surface as KindJWTVerify.
func Decode(token string, key *cryptokeys.PublicKey) (*Token, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, protoerr.New(protoerr.KindJWTDecoding, "token must have 3 segments")
	}
	headerB64, payloadB64, sigB64 := parts[0], parts[1], parts[2]

	headerRaw, err := b64.DecodeString(headerB64)
	if err != nil {
		return nil, protoerr.Wrap(protoerr.KindJWTDecoding, "invalid base64 header", err)
	}
	var header Header
	if err := json.Unmarshal(headerRaw, &header); err != nil {
		return nil, protoerr.Wrap(protoerr.KindJWTDecoding, "invalid header json", err)
	}
	if header.Alg != "ES384" {
		return nil, protoerr.New(protoerr.KindJWTDecoding, fmt.Sprintf("unsupported alg %q", header.Alg))
	}

	sig, err := b64.DecodeString(sigB64)
	if err != nil {
		return nil, protoerr.Wrap(protoerr.KindJWTDecoding, "invalid base64 signature", err)
	}

	message := headerB64 + "." + payloadB64
	ok, err := key.Verify(sig, []byte(message))
	if err != nil || !ok {
		return nil, protoerr.New(protoerr.KindJWTVerify, "signature does not verify")
	}

	payloadRaw, err := b64.DecodeString(payloadB64)
	if err != nil {
		return nil, protoerr.Wrap(protoerr.KindJWTDecoding, "invalid base64 payload", err)
	}

	return &Token{Header: header, Payload: string(payloadRaw)}, nil
}

// Encode signs payload (already-serialized JSON) with signer, embedding
// signer's own SPKI DER (base64) as x5u.
func Encode(payload string, signer *cryptokeys.KeyPair) (string, error) {
	spki, err := signer.PublicKey().MarshalSPKI()
	if err != nil {
		return "", fmt.Errorf("jwt: marshal spki: %w", err)
	}
	header := Header{Alg: "ES384", X5U: base64.StdEncoding.EncodeToString(spki)}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("jwt: marshal header: %w", err)
	}

	message := b64.EncodeToString(headerJSON) + "." + b64.EncodeToString([]byte(payload))
	sig, err := signer.Sign([]byte(message))
	if err != nil {
		return "", fmt.Errorf("jwt: sign: %w", err)
	}

	return message + "." + b64.EncodeToString(sig), nil
}
