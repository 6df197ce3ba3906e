// Package cryptokeys implements P-384 ECDSA keypair generation, ECDH
// shared-secret derivation, and SPKI DER <-> raw public-key conversion.
//
// No library surfaced by the example corpus performs ES384/P-384 signing
// or ECDH directly, so this package is built on the standard library
// (crypto/ecdsa, crypto/ecdh, crypto/elliptic) — see DESIGN.md for the
// justification. SPKI encoding/decoding, however, is built with
// golang.org/x/crypto/cryptobyte rather than crypto/x509, to keep the
// exact ASN.1 shape the protocol names (two OIDs plus a bit string)
// explicit rather than accepting whatever shape x509 happens to produce.
package cryptokeys

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha512"
	"encoding/asn1"
	"errors"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

var (
	oidECPublicKey = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidSecp384r1   = asn1.ObjectIdentifier{1, 3, 132, 0, 34}
)

// ErrNotP384 is returned when a parsed SPKI key is not an EC key on P-384.
var ErrNotP384 = errors.New("cryptokeys: key is not an EC P-384 key")

// ErrMalformedSPKI is returned when a DER blob doesn't parse as the
// two-OID/bit-string SPKI shape this protocol expects.
var ErrMalformedSPKI = errors.New("cryptokeys: malformed SubjectPublicKeyInfo")

const (
	rawPointLen = 97 // 0x04 || 48-byte X || 48-byte Y
	coordLen    = 48
	sigLen      = 2 * coordLen
)

// KeyPair is a P-384 ECDSA keypair usable for both signing (identity
// chain / JWT) and ECDH (key exchange).
type KeyPair struct {
	priv *ecdsa.PrivateKey
}

// Generate creates a fresh random P-384 keypair.
func Generate() (*KeyPair, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &KeyPair{priv: priv}, nil
}

// PublicKey returns the keypair's public half.
func (kp *KeyPair) PublicKey() *PublicKey {
	return &PublicKey{pub: &kp.priv.PublicKey}
}

// Sign produces a 96-byte fixed-width (r||s) ECDSA-P384-SHA384 signature
// over msg, the IEEE format the wire JWTs use.
func (kp *KeyPair) Sign(msg []byte) ([]byte, error) {
	digest := sha512.Sum384(msg)
	r, s, err := ecdsa.Sign(rand.Reader, kp.priv, digest[:])
	if err != nil {
		return nil, err
	}
	out := make([]byte, sigLen)
	r.FillBytes(out[:coordLen])
	s.FillBytes(out[coordLen:])
	return out, nil
}

// ECDH derives the 48-byte X-coordinate of the shared point with peer.
func (kp *KeyPair) ECDH(peer *PublicKey) ([]byte, error) {
	localECDH, err := kp.priv.ECDH()
	if err != nil {
		return nil, err
	}
	peerECDH, err := peer.pub.ECDH()
	if err != nil {
		return nil, err
	}
	return localECDH.ECDH(peerECDH)
}

// PublicKey wraps a parsed P-384 ECDSA public key.
type PublicKey struct {
	pub *ecdsa.PublicKey
}

// Verify checks a 96-byte fixed-width ECDSA-P384-SHA384 signature over msg.
func (pk *PublicKey) Verify(sig, msg []byte) (bool, error) {
	if len(sig) != sigLen {
		return false, errors.New("cryptokeys: signature must be 96 bytes")
	}
	r := new(big.Int).SetBytes(sig[:coordLen])
	s := new(big.Int).SetBytes(sig[coordLen:])
	digest := sha512.Sum384(msg)
	return ecdsa.Verify(pk.pub, digest[:], r, s), nil
}

// Raw returns the uncompressed point encoding 0x04 || X || Y (97 bytes).
func (pk *PublicKey) Raw() []byte {
	return elliptic.Marshal(pk.pub.Curve, pk.pub.X, pk.pub.Y) //nolint:staticcheck // raw point format is part of the wire contract
}

// PublicKeyFromRaw parses a 97-byte uncompressed P-384 point.
func PublicKeyFromRaw(raw []byte) (*PublicKey, error) {
	if len(raw) != rawPointLen {
		return nil, errors.New("cryptokeys: raw public key must be 97 bytes")
	}
	curve := elliptic.P384()
	x, y := elliptic.Unmarshal(curve, raw) //nolint:staticcheck // matches the wire's raw point format
	if x == nil {
		return nil, errors.New("cryptokeys: invalid point encoding")
	}
	return &PublicKey{pub: &ecdsa.PublicKey{Curve: curve, X: x, Y: y}}, nil
}

// MarshalSPKI encodes the public key as the DER SubjectPublicKeyInfo the
// protocol embeds (base64'd) into a JWT's x5u header field:
//
//	SEQUENCE {
//	  SEQUENCE { OID ecPublicKey, OID secp384r1 },
//	  BIT STRING raw-point
//	}
func (pk *PublicKey) MarshalSPKI() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(cbasn1.SEQUENCE, func(seq *cryptobyte.Builder) {
		seq.AddASN1(cbasn1.SEQUENCE, func(alg *cryptobyte.Builder) {
			alg.AddASN1ObjectIdentifier(oidECPublicKey)
			alg.AddASN1ObjectIdentifier(oidSecp384r1)
		})
		seq.AddASN1BitString(pk.Raw())
	})
	return b.Bytes()
}

// ParseSPKI decodes a DER SubjectPublicKeyInfo of the shape MarshalSPKI
// produces, verifying both OIDs name an EC P-384 key.
func ParseSPKI(der []byte) (*PublicKey, error) {
	input := cryptobyte.String(der)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cbasn1.SEQUENCE) {
		return nil, ErrMalformedSPKI
	}

	var algSeq cryptobyte.String
	if !seq.ReadASN1(&algSeq, cbasn1.SEQUENCE) {
		return nil, ErrMalformedSPKI
	}
	var keyOID, curveOID asn1.ObjectIdentifier
	if !algSeq.ReadASN1ObjectIdentifier(&keyOID) {
		return nil, ErrMalformedSPKI
	}
	if !algSeq.ReadASN1ObjectIdentifier(&curveOID) {
		return nil, ErrMalformedSPKI
	}
	if !keyOID.Equal(oidECPublicKey) {
		return nil, ErrNotP384
	}
	if !curveOID.Equal(oidSecp384r1) {
		return nil, ErrNotP384
	}

	var bitString asn1.BitString
	if !seq.ReadASN1BitString(&bitString) {
		return nil, ErrMalformedSPKI
	}

	return PublicKeyFromRaw(bitString.Bytes)
}
