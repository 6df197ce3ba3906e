package packet

import "bedrock-login-server/internal/codec"

// ServerToClientHandshake (0x03, outbound): a single length-prefixed
// string, the server-issued ES384 JWT carrying the ECDH salt.
type ServerToClientHandshake struct {
	JWT string
}

func (p *ServerToClientHandshake) ID() byte { return IDServerToClientHandshake }

func (p *ServerToClientHandshake) Write(w *codec.Writer) {
	w.WriteString(p.JWT)
}

func (p *ServerToClientHandshake) Read(r *codec.Reader) error {
	jwt, err := r.ReadString()
	if err != nil {
		return err
	}
	p.JWT = jwt
	return nil
}

// ClientToServerHandshake (0x04, inbound): empty body, acknowledges the
// server's handshake and arms encryption on send.
type ClientToServerHandshake struct{}

func (p *ClientToServerHandshake) ID() byte { return IDClientToServerHandshake }

func (p *ClientToServerHandshake) Write(w *codec.Writer) {}

func (p *ClientToServerHandshake) Read(r *codec.Reader) error { return nil }
