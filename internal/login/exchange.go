package login

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	cryptokeys "bedrock-login-server/internal/crypto"
	"bedrock-login-server/internal/cipher"
	"bedrock-login-server/internal/jwt"
)

type saltClaim struct {
	Salt string `json:"salt"`
}

// Exchange performs the server side of the ECDH key exchange: a fresh
// ephemeral P-384 keypair, ECDH with the client's identity key, 16
// random salt bytes, session key = SHA-256(salt || Z), and a signed
// ES384 JWT carrying the base64 salt for the client to derive the same
// key from. It returns that JWT (to be sent as the Server→Client
// Handshake) and the installed Cipher.
func Exchange(identityKey *cryptokeys.PublicKey) (string, *cipher.Cipher, error) {
	ephemeral, err := cryptokeys.Generate()
	if err != nil {
		return "", nil, fmt.Errorf("login: generate ephemeral keypair: %w", err)
	}

	shared, err := ephemeral.ECDH(identityKey)
	if err != nil {
		return "", nil, fmt.Errorf("login: ecdh: %w", err)
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", nil, fmt.Errorf("login: generate salt: %w", err)
	}

	h := sha256.New()
	h.Write(salt)
	h.Write(shared)
	sessionKey := h.Sum(nil)

	claims, err := json.Marshal(saltClaim{Salt: base64.StdEncoding.EncodeToString(salt)})
	if err != nil {
		return "", nil, fmt.Errorf("login: marshal salt claim: %w", err)
	}

	token, err := jwt.Encode(string(claims), ephemeral)
	if err != nil {
		return "", nil, fmt.Errorf("login: encode handshake jwt: %w", err)
	}

	c, err := cipher.New(sessionKey)
	if err != nil {
		return "", nil, fmt.Errorf("login: install cipher: %w", err)
	}

	return token, c, nil
}
