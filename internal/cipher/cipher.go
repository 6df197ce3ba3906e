// Package cipher implements the per-session AES-256-CTR stream cipher
// with the trailing 8-byte truncated-SHA-256 checksum that binds each
// frame to a monotonically increasing per-direction counter.
package cipher

import (
	"crypto/aes"
	stdcipher "crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"bedrock-login-server/internal/protoerr"
)

const checksumLen = 8

// Cipher holds one session's installed encryption state: the shared
// secret, independent inbound/outbound AES-256-CTR stream positions, and
// their paired counters. Once constructed it is never replaced — the
// counters only ever advance by exactly one per successfully processed
// frame in their direction.
type Cipher struct {
	secret  []byte
	encrypt stdcipher.Stream
	decrypt stdcipher.Stream
	send    uint64
	recv    uint64
}

// New builds a Cipher from a 32-byte session key. The IV is
// key[0:12] || 0x00000002, shared by both directions; the two directions
// are kept aligned by construction (each gets its own Stream instance
// seeked to 0) and must never be driven by the other direction's bytes.
func New(key []byte) (*Cipher, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("cipher: key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	iv := make([]byte, 16)
	copy(iv, key[:12])
	binary.BigEndian.PutUint32(iv[12:], 2)

	return &Cipher{
		secret:  append([]byte(nil), key...),
		encrypt: stdcipher.NewCTR(block, iv),
		decrypt: stdcipher.NewCTR(block, iv),
	}, nil
}

func checksum(counter uint64, payload, secret []byte) []byte {
	var ctrBytes [8]byte
	binary.LittleEndian.PutUint64(ctrBytes[:], counter)

	h := sha256.New()
	h.Write(ctrBytes[:])
	h.Write(payload)
	h.Write(secret)
	sum := h.Sum(nil)
	return sum[:checksumLen]
}

// Encode appends the outbound checksum to payload and encrypts the
// result in place with the outbound keystream, advancing the send
// counter by one.
func (c *Cipher) Encode(payload []byte) []byte {
	sum := checksum(c.send, payload, c.secret)
	out := append(payload, sum...)
	c.encrypt.XORKeyStream(out, out)
	c.send++
	return out
}

// Decode decrypts payload in place with the inbound keystream, splits
// off the trailing checksum, and verifies it against the receive
// counter. On success the receive counter advances by one and the
// plaintext (without the checksum) is returned. On mismatch, a
// *protoerr.Error of KindBadPacket is returned and the counter is left
// untouched — the caller must not trust the returned bytes nor retry.
func (c *Cipher) Decode(payload []byte) ([]byte, error) {
	if len(payload) < checksumLen {
		return nil, protoerr.New(protoerr.KindBadPacket, "frame shorter than checksum")
	}
	c.decrypt.XORKeyStream(payload, payload)

	plain := payload[:len(payload)-checksumLen]
	sum := payload[len(payload)-checksumLen:]

	want := checksum(c.recv, plain, c.secret)
	if !constantTimeEqual(want, sum) {
		return nil, protoerr.New(protoerr.KindBadPacket, "checksum mismatch")
	}
	c.recv++
	return plain, nil
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var v byte
	for i := range a {
		v |= a[i] ^ b[i]
	}
	return v == 0
}

// SendCounter returns the current outbound frame counter (exported for tests).
func (c *Cipher) SendCounter() uint64 { return c.send }

// RecvCounter returns the current inbound frame counter (exported for tests).
func (c *Cipher) RecvCounter() uint64 { return c.recv }
