// Package login implements the identity-chain walk, skin/client-data
// verification, and ECDH key exchange that make up the login flow.
package login

import (
	"encoding/base64"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	cryptokeys "bedrock-login-server/internal/crypto"
	"bedrock-login-server/internal/jwt"
	"bedrock-login-server/internal/protoerr"
)

// MojangRootKey is the Mojang signing key's SPKI, base64-encoded exactly
// as it appears in a chain link's x5u header. At least one link in a
// valid chain must be signed by this key.
const MojangRootKey = "MHYwEAYHKoZIzj0CAQYFK4EEACIDYgAE8ELkixyLcwlZryUQcu1TvPOmI2B7vX83ndnWRUaXm74wFfa5f/lwQNTfrLVHa2PmenpGI6JhIMUJaWZrjmMj90NoKNFSNBuKdm8rYiXsfaz3K36x/1U26HpG0ZxK/V1V"

// ExtraData is the identity information carried by whichever chain link
// has an extraData claim.
type ExtraData struct {
	XUID        string
	Identity    uuid.UUID
	DisplayName string
	TitleID     string
}

type extraDataClaim struct {
	XUID        string `json:"XUID"`
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName"`
	TitleID     string `json:"titleId"`
}

// chainClaim only names the fields the verifier needs; json.Unmarshal
// silently ignores everything else, matching the "tolerant" schema note.
type chainClaim struct {
	IdentityPublicKey string          `json:"identityPublicKey"`
	ExtraData         *extraDataClaim `json:"extraData,omitempty"`
}

type chainDoc struct {
	Chain []string `json:"chain"`
}

// VerifyResult is the immutable record produced once per session by the
// chain walk: the terminal identity public key and the recorded extra
// data.
type VerifyResult struct {
	IdentityKey *cryptokeys.PublicKey
	ExtraData   ExtraData
}

func spkiFromX5U(x5u string) (*cryptokeys.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(x5u)
	if err != nil {
		return nil, protoerr.Wrap(protoerr.KindJWTDecoding, "invalid x5u base64", err)
	}
	key, err := cryptokeys.ParseSPKI(der)
	if err != nil {
		return nil, protoerr.Wrap(protoerr.KindJWTDecoding, "invalid x5u SPKI", err)
	}
	return key, nil
}

// VerifyChain walks chainJSON (the raw `{"chain": [...]}` login payload),
// re-keying per link, and requires at least one link whose header x5u is
// the Mojang root. It returns the terminal identity key and the extra
// data of the last link that carried one (zero-valued if none did).
func VerifyChain(chainJSON string, log zerolog.Logger) (*VerifyResult, error) {
	var doc chainDoc
	if err := json.Unmarshal([]byte(chainJSON), &doc); err != nil {
		return nil, protoerr.Wrap(protoerr.KindJWTDecoding, "invalid chain json", err)
	}
	if len(doc.Chain) == 0 {
		return nil, protoerr.New(protoerr.KindJWTDecoding, "empty chain")
	}

	firstHeader, err := jwt.DecodeHeader(doc.Chain[0])
	if err != nil {
		return nil, err
	}
	verifyKey, err := spkiFromX5U(firstHeader.X5U)
	if err != nil {
		return nil, err
	}

	trusted := false
	var extra ExtraData

	for _, link := range doc.Chain {
		token, err := jwt.Decode(link, verifyKey)
		if err != nil {
			return nil, err
		}

		header, err := jwt.DecodeHeader(link)
		if err != nil {
			return nil, err
		}
		if header.X5U == MojangRootKey {
			trusted = true
		}

		var claims chainClaim
		if err := json.Unmarshal([]byte(token.Payload), &claims); err != nil {
			return nil, protoerr.Wrap(protoerr.KindJWTDecoding, "invalid claims json", err)
		}
		if claims.IdentityPublicKey == "" {
			return nil, protoerr.New(protoerr.KindJWTDecoding, "chain link missing identityPublicKey")
		}

		verifyKey, err = spkiFromX5U(claims.IdentityPublicKey)
		if err != nil {
			return nil, err
		}

		if claims.ExtraData != nil {
			id, parseErr := uuid.Parse(claims.ExtraData.Identity)
			if parseErr != nil {
				log.Warn().Str("identity", claims.ExtraData.Identity).Msg("extraData.identity is not a UUID, using zero UUID")
				id = uuid.Nil
			}
			extra = ExtraData{
				XUID:        claims.ExtraData.XUID,
				Identity:    id,
				DisplayName: claims.ExtraData.DisplayName,
				TitleID:     claims.ExtraData.TitleID,
			}
		}
	}

	if !trusted {
		return nil, protoerr.New(protoerr.KindUnexpectedChain, "Unexpected chain")
	}
	return &VerifyResult{IdentityKey: verifyKey, ExtraData: extra}, nil
}

// VerifySkin verifies the client's player-data ("skin") JWT with the
// terminal identity key from VerifyChain and decodes it into ClientData.
// The schema is tolerant of unknown fields.
func VerifySkin(skinJWT string, identityKey *cryptokeys.PublicKey) (*ClientData, error) {
	token, err := jwt.Decode(skinJWT, identityKey)
	if err != nil {
		return nil, err
	}
	var data ClientData
	if err := json.Unmarshal([]byte(token.Payload), &data); err != nil {
		return nil, protoerr.Wrap(protoerr.KindJWTDecoding, "invalid player data json", err)
	}
	return &data, nil
}
