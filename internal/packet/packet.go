// Package packet implements the typed encoders/decoders for the fixed
// set of login/handshake/status packets the core exchanges. Each packet
// is a pure value type: encode/decode operate over a byte slice with no
// side effects.
package packet

import (
	"bedrock-login-server/internal/codec"
	"bedrock-login-server/internal/protoerr"
)

// Packet IDs, as they appear at offset 0 of a decoded inner frame.
const (
	IDLogin                     = 0x01
	IDPlayStatus                = 0x02
	IDServerToClientHandshake   = 0x03
	IDClientToServerHandshake   = 0x04
	IDDisconnect                = 0x05
	IDResourcePacksInfo         = 0x06
	IDResourcePackStack         = 0x07
	IDResourcePackClientResp    = 0x08
)

// Packet is implemented by every packet body this core knows how to
// read and write.
type Packet interface {
	ID() byte
	Write(w *codec.Writer)
	Read(r *codec.Reader) error
}

// Encode produces the full frame body ([ID] || body) for p.
func Encode(p Packet) []byte {
	w := codec.NewWriter()
	w.WriteUint8(p.ID())
	p.Write(w)
	return w.Bytes()
}

// Decode reads p's body from buf, which must start with p's own ID byte
// at offset 0 (the caller is expected to have dispatched on that byte
// already; Decode checks it again and fails with KindMalformedPacketBody
// if it does not match p.ID()).
func Decode(buf []byte, p Packet) error {
	if len(buf) < 1 {
		return protoerr.New(protoerr.KindMalformedPacketBody, "empty packet")
	}
	if buf[0] != p.ID() {
		return protoerr.New(protoerr.KindMalformedPacketBody, "packet ID mismatch")
	}
	r := codec.NewReader(buf[1:])
	if err := p.Read(r); err != nil {
		return protoerr.Wrap(protoerr.KindMalformedPacketBody, "decode failed", err)
	}
	return nil
}
